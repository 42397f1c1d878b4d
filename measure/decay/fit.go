package decay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-decay/dsp/core"
	timestats "github.com/cwbudde/algo-decay/stats/time"
)

const (
	defaultMaxIterations = 200
	defaultTolerance     = 1e-10
)

// Result is the outcome of one fit request.
type Result struct {
	Params Params
	Guess  Params

	// Time and Curve are the fitted slice and the model evaluated on it.
	Time  []float64
	Curve []float64

	SSR         float64 // sum of squared residuals
	RSquared    float64
	ResidualRMS float64

	Iterations int
	// Converged is false when the optimizer failed; Params then equals Guess.
	Converged bool
}

// Fitter fits the single-exponential model. The zero value is not usable;
// construct with [NewFitter].
type Fitter struct {
	maxIterations int
	tolerance     float64
}

// Option configures a [Fitter].
type Option func(*Fitter)

// WithMaxIterations caps Levenberg-Marquardt iterations.
func WithMaxIterations(n int) Option {
	return func(f *Fitter) {
		if n > 0 {
			f.maxIterations = n
		}
	}
}

// WithTolerance sets the relative cost-reduction and step tolerance.
func WithTolerance(tol float64) Option {
	return func(f *Fitter) {
		if tol > 0 && !math.IsInf(tol, 0) {
			f.tolerance = tol
		}
	}
}

// NewFitter creates a fitter with defaults of 200 iterations and 1e-10
// tolerance.
func NewFitter(opts ...Option) *Fitter {
	f := &Fitter{
		maxIterations: defaultMaxIterations,
		tolerance:     defaultTolerance,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// MaxIterations returns the configured iteration cap.
func (f *Fitter) MaxIterations() int {
	return f.maxIterations
}

// Tolerance returns the configured convergence tolerance.
func (f *Fitter) Tolerance() float64 {
	return f.tolerance
}

// FitWindow fits values[w.Lo..w.Hi] against grid[w.Lo..w.Hi]. Both ends are
// included, so a window with Hi == Lo+1 fits two samples, not one.
func (f *Fitter) FitWindow(grid, values []float64, w Window) (*Result, error) {
	if len(grid) != len(values) {
		return nil, fmt.Errorf("%w: grid has %d samples, values %d", ErrInvalidInput, len(grid), len(values))
	}

	if w.Lo < 0 || w.Hi >= len(grid) || w.Lo > w.Hi {
		if len(grid) == 0 {
			return nil, fmt.Errorf("%w: empty grid", ErrInsufficientData)
		}

		return nil, fmt.Errorf("%w: window [%d, %d] outside grid of %d samples",
			ErrInvalidInput, w.Lo, w.Hi, len(grid))
	}

	return f.Fit(grid[w.Lo:w.Hi+1], values[w.Lo:w.Hi+1])
}

// Fit fits y against t. t must be strictly increasing.
//
// Fewer than two samples fail with [ErrInsufficientData] before the optimizer
// runs. A failing optimizer is not an error: the result then carries the
// initial guess with Converged = false.
func (f *Fitter) Fit(t, y []float64) (*Result, error) {
	if len(t) != len(y) {
		return nil, fmt.Errorf("%w: t has %d samples, y %d", ErrInvalidInput, len(t), len(y))
	}

	if len(t) < 2 {
		return nil, fmt.Errorf("%w: window has %d sample(s)", ErrInsufficientData, len(t))
	}

	if ok, idx := core.AllFinite(t); !ok {
		return nil, fmt.Errorf("%w: non-finite time at %d", ErrInvalidInput, idx)
	}

	if ok, idx := core.AllFinite(y); !ok {
		return nil, fmt.Errorf("%w: non-finite value at %d", ErrInvalidInput, idx)
	}

	if ok, idx := core.StrictlyIncreasing(t); !ok {
		return nil, fmt.Errorf("%w: time not strictly increasing at %d", ErrInvalidInput, idx)
	}

	guess := Guess(t, y)

	t0 := t[0]
	duration := t[len(t)-1] - t0

	scale := timestats.Calculate(y).Peak
	if scale == 0 {
		scale = 1
	}

	lp := &lmProblem{
		u:       make([]float64, len(t)),
		y:       make([]float64, len(y)),
		maxIter: f.maxIterations,
		ftol:    f.tolerance,
		xtol:    f.tolerance,
	}

	for i := range t {
		lp.u[i] = (t[i] - t0) / duration
		lp.y[i] = y[i] / scale
	}

	start := [3]float64{
		guess.Amplitude / scale,
		duration * guess.Rate(),
		guess.Offset / scale,
	}

	sol := lp.solve(start)

	params := guess
	if sol.converged {
		params = Params{
			Amplitude: sol.p[0] * scale,
			Tau:       tauFromRate(sol.p[1], duration),
			Offset:    sol.p[2] * scale,
			T0:        t0,
		}
	}

	res := &Result{
		Params:     params,
		Guess:      guess,
		Time:       append([]float64(nil), t...),
		Curve:      params.Curve(t),
		Iterations: sol.iterations,
		Converged:  sol.converged,
	}

	res.score(y)

	return res, nil
}

// score fills the goodness-of-fit fields from the observed values.
func (r *Result) score(y []float64) {
	residuals := make([]float64, len(y))
	for i := range y {
		residuals[i] = y[i] - r.Curve[i]
	}

	r.SSR = timestats.SumSquares(residuals)
	r.ResidualRMS = timestats.RMS(residuals)

	sst := timestats.Calculate(y).Variance * float64(len(y))

	switch {
	case sst > 0:
		r.RSquared = 1 - r.SSR/sst
	case r.SSR == 0:
		r.RSquared = 1
	default:
		r.RSquared = 0
	}
}

func tauFromRate(k, duration float64) float64 {
	if k == 0 {
		return math.Inf(1)
	}

	return duration / k
}
