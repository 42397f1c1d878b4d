// Package interp provides grid construction and interpolation primitives used
// to bring irregularly sampled series onto a uniform time base.
//
// Available functions:
//
//   - [Arange]:  half-open uniform grid, start + i*step for values < stop
//   - [Linear2]: 2-point linear interpolation
//   - [Linear]:  piecewise-linear interpolation of (xp, fp) at query points
//
// [Linear] requires a strictly increasing abscissa and rejects queries outside
// [xp[0], xp[len-1]] instead of extrapolating.
package interp
