package decay

import (
	"fmt"

	"github.com/cwbudde/algo-decay/dsp/hilbert"
)

// Envelopes returns the Hilbert envelope of every channel in s. Each envelope
// has s.Len() non-negative samples.
func Envelopes(s *Series) ([][]float64, error) {
	tr, err := hilbert.NewTransformer(s.Len())
	if err != nil {
		return nil, err
	}

	out := make([][]float64, len(s.Channels))
	for c, ch := range s.Channels {
		env, err := tr.Envelope(ch)
		if err != nil {
			return nil, fmt.Errorf("decay: envelope of channel %d: %w", c, err)
		}

		out[c] = env
	}

	return out, nil
}
