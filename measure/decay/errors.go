package decay

import "errors"

// Errors returned by the decay pipeline.
var (
	// ErrInvalidInput reports malformed input: too few samples, a time axis
	// that is not strictly increasing, mismatched lengths or non-finite values.
	ErrInvalidInput = errors.New("decay: invalid input")
	// ErrInsufficientData reports a fit window with fewer than two samples.
	ErrInsufficientData = errors.New("decay: insufficient data for fit")
)
