package decay

import "math"

// Params describes y(t) = Amplitude*exp(-(t-T0)/Tau) + Offset.
//
// T0 is the first time of the fitted slice, which keeps the amplitude on the
// scale of the data even when the slice starts far from t = 0. Tau is +Inf
// for a flat model and negative for a growing one.
type Params struct {
	Amplitude float64
	Tau       float64
	Offset    float64
	T0        float64
}

// Rate returns 1/Tau, or 0 for an infinite time constant.
func (p Params) Rate() float64 {
	if math.IsInf(p.Tau, 0) {
		return 0
	}

	return 1 / p.Tau
}

// Eval evaluates the model at t.
func (p Params) Eval(t float64) float64 {
	return p.Amplitude*math.Exp(-(t-p.T0)*p.Rate()) + p.Offset
}

// Curve evaluates the model at every point of t.
func (p Params) Curve(t []float64) []float64 {
	out := make([]float64, len(t))
	for i, x := range t {
		out[i] = p.Eval(x)
	}

	return out
}

// AmplitudeAtZero converts the amplitude to the A*exp(-t/Tau) + C form,
// referenced to t = 0. It may overflow to ±Inf when T0 is many time constants
// away from zero.
func (p Params) AmplitudeAtZero() float64 {
	return p.Amplitude * math.Exp(p.T0*p.Rate())
}
