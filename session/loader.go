package session

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-decay/dataset"
	"github.com/cwbudde/algo-decay/measure/decay"
)

// Dataset is a loaded folder: the resampled channels and their envelopes.
type Dataset struct {
	Folder    string
	Series    *decay.Series
	Envelopes [][]float64
	// Columns names the source column of each channel, when known.
	Columns []string
}

// Grid returns the uniform time grid.
func (d *Dataset) Grid() []float64 {
	return d.Series.Time
}

// NumChannels returns the number of channels.
func (d *Dataset) NumChannels() int {
	return len(d.Envelopes)
}

// Loader turns a folder into a [Dataset].
type Loader interface {
	Load(ctx context.Context, folder string) (*Dataset, error)
}

// LoaderFunc adapts a function to [Loader].
type LoaderFunc func(ctx context.Context, folder string) (*Dataset, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, folder string) (*Dataset, error) {
	return f(ctx, folder)
}

// PipelineLoader reads a table from Source, resamples it and extracts the
// envelope of every channel.
type PipelineLoader struct {
	Source    dataset.Source
	Channels  int
	Component string
}

// Load implements [Loader].
func (p PipelineLoader) Load(ctx context.Context, folder string) (*Dataset, error) {
	tbl, err := dataset.Load(ctx, p.Source, folder, p.Channels, p.Component)
	if err != nil {
		return nil, err
	}

	series, err := decay.Resample(tbl.Time, tbl.Channels)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", folder, err)
	}

	env, err := decay.Envelopes(series)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", folder, err)
	}

	return &Dataset{
		Folder:    folder,
		Series:    series,
		Envelopes: env,
		Columns:   tbl.Columns,
	}, nil
}
