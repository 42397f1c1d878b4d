// Package decay extracts decay envelopes from oscillating time series and fits
// a single-exponential model to a selected window.
//
// The pipeline has four stages:
//
//   - [Resample]: bring an irregularly sampled table onto a uniform grid whose
//     step is the spacing of the first two raw samples. The grid is half-open,
//     so the last raw sample is not part of it.
//   - [Envelopes]: analytic-signal magnitude of every resampled channel.
//   - [ResolveWindow]: map two continuous positions to an ordered, inclusive
//     index window on the grid.
//   - [Fitter]: initial guess plus Levenberg-Marquardt refinement of
//     y(t) = A*exp(-(t-t0)/tau) + C over a window.
//
// # Usage
//
//	series, err := decay.Resample(t, channels)
//	env, err := decay.Envelopes(series)
//	w := decay.ResolveWindow(series.Time, 1e-9, 4e-9)
//	res, err := decay.NewFitter().FitWindow(series.Time, env[0], w)
//	fmt.Printf("tau = %.3g s (converged=%v)\n", res.Params.Tau, res.Converged)
package decay
