package session

import "github.com/cwbudde/algo-decay/measure/decay"

// Range is a closed interval [Min, Max].
type Range struct {
	Min float64
	Max float64
}

// Viewport describes what the surface should display after a bound change.
type Viewport struct {
	Channel int
	Window  decay.Window

	// X and Y are the visible axis ranges.
	X Range
	Y Range

	// Lower and Upper are the allowed ranges of the two boundary controls.
	Lower Range
	Upper Range
}

// FitCurve is the single fitted curve a surface shows for a dataset.
type FitCurve struct {
	Channel   int
	Time      []float64
	Values    []float64
	Params    decay.Params
	Converged bool
}

// Surface is the presentation boundary. Open and Close bracket each dataset;
// ShowFit replaces the current curve wholesale.
type Surface interface {
	Open(ds *Dataset) error
	ShowFit(curve FitCurve)
	SetViewport(vp Viewport)
	Close()
}
