// Package core holds small numeric helpers shared by the dsp and measure
// packages.
package core

import "math"

const defaultEpsilon = 1e-12

// NearlyEqual reports whether a and b are equal within eps, either absolute
// or relative to the larger magnitude.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// AllFinite reports whether every value in xs is finite. It returns the
// index of the first offending value, or -1.
func AllFinite(xs []float64) (bool, int) {
	for i, v := range xs {
		if !IsFinite(v) {
			return false, i
		}
	}

	return true, -1
}

// StrictlyIncreasing reports whether xs[i] < xs[i+1] for all i. It returns the
// index i+1 of the first violation, or -1. Slices shorter than two are
// trivially increasing.
func StrictlyIncreasing(xs []float64) (bool, int) {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return false, i
		}
	}

	return true, -1
}
