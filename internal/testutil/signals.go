package testutil

import (
	"math"
	"math/rand"
)

// TimeAxis returns start + i*step for i in [0, length).
func TimeAxis(start, step float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// ExpDecay evaluates amplitude*exp(-t/tau) + offset at every t.
func ExpDecay(t []float64, amplitude, tau, offset float64) []float64 {
	out := make([]float64, len(t))
	for i, x := range t {
		out[i] = amplitude*math.Exp(-x/tau) + offset
	}
	return out
}

// DampedCosine evaluates amplitude*exp(-t/tau)*cos(2*pi*freq*t) at every t,
// the ringdown shape of a precessing magnetization component.
func DampedCosine(t []float64, amplitude, tau, freq float64) []float64 {
	out := make([]float64, len(t))
	for i, x := range t {
		out[i] = amplitude * math.Exp(-x/tau) * math.Cos(2*math.Pi*freq*x)
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
