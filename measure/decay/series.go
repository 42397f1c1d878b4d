package decay

import (
	"fmt"

	"github.com/cwbudde/algo-decay/dsp/core"
	"github.com/cwbudde/algo-decay/dsp/interp"
)

// Series is a set of channels sampled on a shared uniform time grid.
type Series struct {
	Time     []float64
	Channels [][]float64
	Step     float64
}

// Len returns the number of grid points.
func (s *Series) Len() int {
	return len(s.Time)
}

// NumChannels returns the number of channels.
func (s *Series) NumChannels() int {
	return len(s.Channels)
}

// Resample interpolates every channel of a raw table onto a uniform grid.
//
// The grid starts at t[0], uses step t[1]-t[0] and stops before t[len-1]
// (half-open). Each channel is linearly interpolated; grid points that
// coincide with raw samples keep the raw value exactly.
func Resample(t []float64, channels [][]float64) (*Series, error) {
	if len(t) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 time samples, got %d", ErrInvalidInput, len(t))
	}

	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidInput)
	}

	if ok, idx := core.AllFinite(t); !ok {
		return nil, fmt.Errorf("%w: non-finite time at row %d", ErrInvalidInput, idx)
	}

	if ok, idx := core.StrictlyIncreasing(t); !ok {
		return nil, fmt.Errorf("%w: time not strictly increasing at row %d (%g after %g)",
			ErrInvalidInput, idx, t[idx], t[idx-1])
	}

	for c, ch := range channels {
		if len(ch) != len(t) {
			return nil, fmt.Errorf("%w: channel %d has %d samples, time has %d",
				ErrInvalidInput, c, len(ch), len(t))
		}

		if ok, idx := core.AllFinite(ch); !ok {
			return nil, fmt.Errorf("%w: non-finite value in channel %d at row %d", ErrInvalidInput, c, idx)
		}
	}

	step := t[1] - t[0]

	grid, err := interp.Arange(t[0], t[len(t)-1], step)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	out := &Series{
		Time:     grid,
		Channels: make([][]float64, len(channels)),
		Step:     step,
	}

	for c, ch := range channels {
		values, err := interp.Linear(t, ch, grid)
		if err != nil {
			return nil, fmt.Errorf("%w: channel %d: %w", ErrInvalidInput, c, err)
		}

		out.Channels[c] = values
	}

	return out, nil
}
