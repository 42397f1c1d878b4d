package interp

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-decay/dsp/core"
)

var (
	// ErrLengthMismatch indicates that abscissa and ordinate differ in length.
	ErrLengthMismatch = errors.New("interp: xp and fp must have same length")
	// ErrTooShort indicates fewer than two support points.
	ErrTooShort = errors.New("interp: at least two support points required")
	// ErrNotIncreasing indicates a non strictly increasing abscissa.
	ErrNotIncreasing = errors.New("interp: xp must be strictly increasing")
	// ErrOutOfRange indicates a query outside the support interval.
	ErrOutOfRange = errors.New("interp: query outside support interval")
	// ErrInvalidStep indicates a non-positive or non-finite grid step.
	ErrInvalidStep = errors.New("interp: step must be positive and finite")
)

// Linear2 interpolates between x0 and x1 at frac in [0,1].
func Linear2(frac, x0, x1 float64) float64 {
	return x0 + frac*(x1-x0)
}

// Linear evaluates the piecewise-linear function through (xp, fp) at every
// point of x. Queries that coincide with a support point return its value
// exactly.
func Linear(xp, fp, x []float64) ([]float64, error) {
	out := make([]float64, len(x))

	err := LinearTo(out, xp, fp, x)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// LinearTo is like [Linear] but writes into dst, which must have len(x).
func LinearTo(dst, xp, fp, x []float64) error {
	if len(xp) != len(fp) {
		return fmt.Errorf("%w: xp=%d fp=%d", ErrLengthMismatch, len(xp), len(fp))
	}

	if len(xp) < 2 {
		return ErrTooShort
	}

	if len(dst) != len(x) {
		return fmt.Errorf("%w: dst=%d x=%d", ErrLengthMismatch, len(dst), len(x))
	}

	if ok, idx := core.StrictlyIncreasing(xp); !ok {
		return fmt.Errorf("%w: at index %d", ErrNotIncreasing, idx)
	}

	lo, hi := xp[0], xp[len(xp)-1]
	last := len(xp) - 1

	for i, q := range x {
		if math.IsNaN(q) || q < lo || q > hi {
			return fmt.Errorf("%w: x[%d]=%g not in [%g, %g]", ErrOutOfRange, i, q, lo, hi)
		}

		// First support point >= q.
		j := sort.SearchFloat64s(xp, q)
		if j <= last && xp[j] == q {
			dst[i] = fp[j]
			continue
		}

		x0, x1 := xp[j-1], xp[j]
		dst[i] = Linear2((q-x0)/(x1-x0), fp[j-1], fp[j])
	}

	return nil
}

// maxGridLen caps the number of points Arange will allocate.
const maxGridLen = 1 << 26

// Arange returns start + i*step for all i with start + i*step < stop, the
// half-open convention of a uniform range. The element count is
// ceil((stop-start)/step); values that rounding pushes to or beyond stop are
// dropped so every element stays strictly inside [start, stop). A step that
// would need more than maxGridLen points fails with [ErrInvalidStep].
func Arange(start, stop, step float64) ([]float64, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidStep, step)
	}

	if !core.IsFinite(start) || !core.IsFinite(stop) {
		return nil, fmt.Errorf("interp: non-finite range [%g, %g)", start, stop)
	}

	if stop <= start {
		return []float64{}, nil
	}

	count := math.Ceil((stop - start) / step)
	if !core.IsFinite(count) || count > maxGridLen {
		return nil, fmt.Errorf("%w: %g over [%g, %g) needs %g points, limit %d",
			ErrInvalidStep, step, start, stop, count, maxGridLen)
	}

	n := int(count)
	out := make([]float64, 0, n)

	for i := range n {
		v := start + float64(i)*step
		if v >= stop {
			break
		}

		out = append(out, v)
	}

	return out, nil
}
