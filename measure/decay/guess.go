package decay

import (
	"math"

	timestats "github.com/cwbudde/algo-decay/stats/time"
)

// baselineMargin places the guessed baseline this fraction of the data range
// outside the data so that the log transform stays defined.
const baselineMargin = 0.01

// Guess estimates starting parameters for t, y (len >= 2, equal lengths).
//
// The direction of the decay follows the endpoints: a slice that ends lower
// than it starts decays towards a baseline just below its minimum, otherwise
// it approaches a baseline just above its maximum. The rate comes from a
// log-linear regression of |y - baseline| over the interior samples. Flat
// data gives a zero amplitude, a non-decaying trend falls back to a time
// constant equal to the slice duration.
func Guess(t, y []float64) Params {
	n := len(y)
	if n == 0 || len(t) != n {
		return Params{Tau: math.Inf(1)}
	}

	t0 := t[0]
	duration := t[n-1] - t0
	if !(duration > 0) {
		duration = 1
	}

	st := timestats.Calculate(y)
	if !(st.Range > 0) {
		return Params{Amplitude: 0, Tau: duration, Offset: y[0], T0: t0}
	}

	dir := 1.0
	baseline := st.Min - baselineMargin*st.Range

	if y[n-1] > y[0] {
		dir = -1
		baseline = st.Max + baselineMargin*st.Range
	}

	lo, hi := 0, n
	if n >= 4 {
		lo, hi = 1, n-1
	}

	slope, ok := logLinearSlope(t[lo:hi], y[lo:hi], t0, baseline, dir)

	tau := duration
	if ok && slope < 0 {
		tau = -1 / slope
	}

	return Params{
		Amplitude: y[0] - baseline,
		Tau:       tau,
		Offset:    baseline,
		T0:        t0,
	}
}

// logLinearSlope regresses ln(dir*(y-baseline)) on t-t0 and returns the
// slope. ok is false when the regression is undefined.
func logLinearSlope(t, y []float64, t0, baseline, dir float64) (float64, bool) {
	var sumX, sumY, sumXX, sumXY float64

	count := 0

	for i := range y {
		v := dir * (y[i] - baseline)
		if !(v > 0) {
			continue
		}

		x := t[i] - t0
		z := math.Log(v)
		sumX += x
		sumY += z
		sumXX += x * x
		sumXY += x * z
		count++
	}

	if count < 2 {
		return 0, false
	}

	nf := float64(count)

	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return 0, false
	}

	slope := (nf*sumXY - sumX*sumY) / denom
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, false
	}

	return slope, true
}
