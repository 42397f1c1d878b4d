package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-decay/internal/testutil"
	"github.com/cwbudde/algo-decay/measure/decay"
)

const (
	testStep = 1e-11
	testTau  = 2e-10
)

type fakeSurface struct {
	events    []string
	curves    []FitCurve
	viewports []Viewport
	openErr   error
	isOpen    bool
}

func (f *fakeSurface) Open(ds *Dataset) error {
	if f.isOpen {
		return errors.New("surface already open")
	}

	if f.openErr != nil {
		return f.openErr
	}

	f.isOpen = true
	f.events = append(f.events, "open:"+ds.Folder)

	return nil
}

func (f *fakeSurface) ShowFit(c FitCurve) { f.curves = append(f.curves, c) }

func (f *fakeSurface) SetViewport(vp Viewport) { f.viewports = append(f.viewports, vp) }

func (f *fakeSurface) Close() {
	f.isOpen = false
	f.events = append(f.events, "close")
}

type fakeLoader struct {
	datasets map[string]*Dataset
	failures map[string]int
	calls    []string
}

func (f *fakeLoader) Load(_ context.Context, folder string) (*Dataset, error) {
	f.calls = append(f.calls, folder)

	if f.failures[folder] > 0 {
		f.failures[folder]--
		return nil, fmt.Errorf("%w: corrupt table", decay.ErrInvalidInput)
	}

	ds, ok := f.datasets[folder]
	if !ok {
		return nil, fmt.Errorf("%w: no such folder %s", decay.ErrInvalidInput, folder)
	}

	return ds, nil
}

// decayDataset builds two channels of clean exponential envelopes; channel 1
// decays twice as slowly as channel 0.
func decayDataset(folder string, n int) *Dataset {
	grid := testutil.TimeAxis(0, testStep, n)
	ch0 := testutil.ExpDecay(grid, 2, testTau, 0.1)
	ch1 := testutil.ExpDecay(grid, 1, 2*testTau, 0)

	return &Dataset{
		Folder:    folder,
		Series:    &decay.Series{Time: grid, Channels: [][]float64{ch0, ch1}, Step: testStep},
		Envelopes: [][]float64{ch0, ch1},
	}
}

func newLoader(folders ...string) *fakeLoader {
	l := &fakeLoader{datasets: map[string]*Dataset{}, failures: map[string]int{}}
	for _, f := range folders {
		l.datasets[f] = decayDataset(f, 100)
	}

	return l
}

func TestSessionWalksAllDatasets(t *testing.T) {
	ctx := context.Background()
	folders := []string{"a", "b", "c"}
	surface := &fakeSurface{}
	s := New(folders, newLoader(folders...), surface)

	assert.Equal(t, Idle, s.State())
	require.NoError(t, s.Start(ctx))

	for i := range folders {
		assert.Equal(t, Loaded, s.State())
		assert.Equal(t, i, s.Index())
		assert.Equal(t, folders[i], s.Current().Folder)
		require.NotNil(t, s.LastFit())
		assert.Equal(t, decay.FullWindow(100), s.Window())

		require.NoError(t, s.Advance(ctx))
	}

	assert.Equal(t, Done, s.State())
	assert.Equal(t, 3, s.Index())
	assert.Nil(t, s.Current())
	assert.Equal(t, []string{"open:a", "close", "open:b", "close", "open:c", "close"}, surface.events)

	require.ErrorIs(t, s.Advance(ctx), ErrSessionDone)
	_, err := s.SetBounds(0, 1)
	require.ErrorIs(t, err, ErrSessionDone)
	_, err = s.Fit()
	require.ErrorIs(t, err, ErrSessionDone)
	require.ErrorIs(t, s.Retry(ctx), ErrSessionDone)
	require.ErrorIs(t, s.Start(ctx), ErrSessionDone)
}

func TestSessionEmptyFolderList(t *testing.T) {
	surface := &fakeSurface{}
	s := New(nil, newLoader(), surface)

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, Done, s.State())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, surface.events)
}

func TestSessionLoadRunsFullRangeFit(t *testing.T) {
	surface := &fakeSurface{}
	s := New([]string{"a"}, newLoader("a"), surface)
	require.NoError(t, s.Start(context.Background()))

	res := s.LastFit()
	require.NotNil(t, res)
	assert.True(t, res.Converged)
	testutil.RequireRelClose(t, "tau", res.Params.Tau, testTau, 1e-3)
	testutil.RequireRelClose(t, "amplitude", res.Params.Amplitude, 2, 1e-3)

	require.Len(t, surface.curves, 1)
	assert.Equal(t, 0, surface.curves[0].Channel)
	assert.Len(t, surface.curves[0].Values, 100)

	require.Len(t, surface.viewports, 1)
	grid := s.Current().Grid()
	assert.Equal(t, Range{Min: grid[0], Max: grid[99]}, surface.viewports[0].X)
}

func TestSetBoundsViewport(t *testing.T) {
	grid := []float64{0, 1, 2, 3, 4}
	env := []float64{5, 4, 3, 2, 1}
	loader := &fakeLoader{datasets: map[string]*Dataset{
		"a": {
			Folder:    "a",
			Series:    &decay.Series{Time: grid, Channels: [][]float64{env}, Step: 1},
			Envelopes: [][]float64{env},
		},
	}}
	surface := &fakeSurface{}
	s := New([]string{"a"}, loader, surface)
	require.NoError(t, s.Start(context.Background()))

	curves := len(surface.curves)

	w, err := s.SetBounds(1.2, 3.4)
	require.NoError(t, err)
	assert.Equal(t, decay.Window{Lo: 1, Hi: 3}, w)
	assert.Equal(t, Windowed, s.State())

	vp := surface.viewports[len(surface.viewports)-1]
	assert.Equal(t, Range{Min: 1, Max: 3}, vp.X)
	assert.Equal(t, 0.0, vp.Y.Min)
	assert.InDelta(t, 4.4, vp.Y.Max, 1e-12)
	assert.Equal(t, Range{Min: 0, Max: 3}, vp.Lower)
	assert.Equal(t, Range{Min: 1, Max: 4}, vp.Upper)

	// Moving the bounds never fits on its own.
	assert.Len(t, surface.curves, curves)
}

func TestFitReplacesCurve(t *testing.T) {
	surface := &fakeSurface{}
	s := New([]string{"a"}, newLoader("a"), surface)
	require.NoError(t, s.Start(context.Background()))

	grid := s.Current().Grid()
	_, err := s.SetBounds(grid[10], grid[80])
	require.NoError(t, err)

	res, err := s.Fit()
	require.NoError(t, err)
	assert.Same(t, res, s.LastFit())
	assert.Len(t, res.Time, 71)
	assert.Equal(t, grid[10], res.Params.T0)
	testutil.RequireRelClose(t, "tau", res.Params.Tau, testTau, 1e-3)

	require.Len(t, surface.curves, 2)
	assert.Equal(t, res.Curve, surface.curves[1].Values)
	assert.Equal(t, res.Time, surface.curves[1].Time)
}

func TestInvertedBoundsKeepPreviousCurve(t *testing.T) {
	surface := &fakeSurface{}
	s := New([]string{"a"}, newLoader("a"), surface)
	require.NoError(t, s.Start(context.Background()))

	prev := s.LastFit()
	grid := s.Current().Grid()

	w, err := s.SetBounds(grid[50], grid[10])
	require.NoError(t, err)
	assert.Equal(t, decay.Window{Lo: 10, Hi: 10}, w)

	_, err = s.Fit()
	require.ErrorIs(t, err, decay.ErrInsufficientData)
	assert.Same(t, prev, s.LastFit())
	assert.Len(t, surface.curves, 1)
	assert.Equal(t, Windowed, s.State())
}

func TestFailedLoadAndRetry(t *testing.T) {
	ctx := context.Background()
	loader := newLoader("a", "b", "c")
	loader.failures["b"] = 1
	surface := &fakeSurface{}
	s := New([]string{"a", "b", "c"}, loader, surface)
	require.NoError(t, s.Start(ctx))

	err := s.Advance(ctx)
	require.ErrorIs(t, err, decay.ErrInvalidInput)
	assert.Equal(t, Failed, s.State())
	assert.Equal(t, 1, s.Index())
	assert.Nil(t, s.Current())
	assert.Nil(t, s.LastFit())

	_, err = s.SetBounds(0, 1)
	require.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.Fit()
	require.ErrorIs(t, err, ErrNotLoaded)

	require.NoError(t, s.Retry(ctx))
	assert.Equal(t, Loaded, s.State())
	assert.Equal(t, 1, s.Index())
	assert.Equal(t, []string{"a", "b", "b"}, loader.calls)
	assert.Equal(t, []string{"open:a", "close", "open:b"}, surface.events)
}

func TestAdvanceSkipsFailedDataset(t *testing.T) {
	ctx := context.Background()
	loader := newLoader("a", "b", "c")
	loader.failures["b"] = 1
	s := New([]string{"a", "b", "c"}, loader, &fakeSurface{})
	require.NoError(t, s.Start(ctx))
	require.Error(t, s.Advance(ctx))

	require.NoError(t, s.Advance(ctx))
	assert.Equal(t, Loaded, s.State())
	assert.Equal(t, 2, s.Index())
	assert.Equal(t, "c", s.Current().Folder)
}

func TestLoadFailureWrapsOtherErrors(t *testing.T) {
	boom := errors.New("connection reset")
	loader := LoaderFunc(func(context.Context, string) (*Dataset, error) {
		return nil, boom
	})
	s := New([]string{"a"}, loader, &fakeSurface{})

	err := s.Start(context.Background())
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, decay.ErrInvalidInput)
	assert.Equal(t, Failed, s.State())
}

func TestSurfaceOpenFailure(t *testing.T) {
	surface := &fakeSurface{openErr: errors.New("no display")}
	s := New([]string{"a"}, newLoader("a"), surface)

	require.ErrorIs(t, s.Start(context.Background()), decay.ErrInvalidInput)
	assert.Equal(t, Failed, s.State())

	surface.openErr = nil
	require.NoError(t, s.Retry(context.Background()))
	assert.Equal(t, Loaded, s.State())
}

func TestSelectChannel(t *testing.T) {
	surface := &fakeSurface{}
	s := New([]string{"a"}, newLoader("a"), surface)
	require.NoError(t, s.Start(context.Background()))

	grid := s.Current().Grid()
	_, err := s.SetBounds(grid[20], grid[40])
	require.NoError(t, err)

	require.NoError(t, s.SelectChannel(1))
	assert.Equal(t, 1, s.Channel())
	assert.Equal(t, Loaded, s.State())
	assert.Equal(t, decay.FullWindow(100), s.Window())

	last := surface.curves[len(surface.curves)-1]
	assert.Equal(t, 1, last.Channel)
	testutil.RequireRelClose(t, "tau", s.LastFit().Params.Tau, 2*testTau, 1e-3)
	assert.Equal(t, 1, surface.viewports[len(surface.viewports)-1].Channel)

	require.ErrorIs(t, s.SelectChannel(2), decay.ErrInvalidInput)
	require.ErrorIs(t, s.SelectChannel(-1), decay.ErrInvalidInput)
	assert.Equal(t, 1, s.Channel())
}

func TestWithChannelOutOfRange(t *testing.T) {
	s := New([]string{"a"}, newLoader("a"), &fakeSurface{}, WithChannel(5))

	require.ErrorIs(t, s.Start(context.Background()), decay.ErrInvalidInput)
	assert.Equal(t, Failed, s.State())
}

func TestWithChannelAndFitter(t *testing.T) {
	fitter := decay.NewFitter(decay.WithMaxIterations(1))
	s := New([]string{"a"}, newLoader("a"), &fakeSurface{}, WithChannel(1), WithFitter(fitter))
	require.NoError(t, s.Start(context.Background()))

	assert.Equal(t, 1, s.Channel())
	require.NotNil(t, s.LastFit())
	assert.LessOrEqual(t, s.LastFit().Iterations, 1)
}

func TestShortDatasetLoadsWithoutCurve(t *testing.T) {
	loader := &fakeLoader{datasets: map[string]*Dataset{"a": decayDataset("a", 1)}}
	surface := &fakeSurface{}
	s := New([]string{"a"}, loader, surface)

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, Loaded, s.State())
	assert.Nil(t, s.LastFit())
	assert.Empty(t, surface.curves)

	require.Len(t, surface.viewports, 1)
	assert.Equal(t, Range{Min: 0, Max: 0}, surface.viewports[0].X)
}

func TestQuit(t *testing.T) {
	surface := &fakeSurface{}
	s := New([]string{"a", "b"}, newLoader("a", "b"), surface)
	require.NoError(t, s.Start(context.Background()))

	s.Quit()
	s.Quit()
	assert.Equal(t, Done, s.State())
	assert.Equal(t, []string{"open:a", "close"}, surface.events)
	require.ErrorIs(t, s.Advance(context.Background()), ErrSessionDone)
}

func TestMisuse(t *testing.T) {
	ctx := context.Background()
	s := New([]string{"a"}, newLoader("a"), &fakeSurface{})

	require.ErrorIs(t, s.Advance(ctx), ErrNotLoaded)
	require.ErrorIs(t, s.SelectChannel(0), ErrNotLoaded)
	require.ErrorIs(t, s.Retry(ctx), ErrNotFailed)

	require.NoError(t, s.Start(ctx))
	require.ErrorIs(t, s.Start(ctx), ErrStarted)
	require.ErrorIs(t, s.Retry(ctx), ErrNotFailed)
}

func TestSessionIDsDiffer(t *testing.T) {
	a := New(nil, newLoader(), &fakeSurface{})
	b := New(nil, newLoader(), &fakeSurface{})
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestStateString(t *testing.T) {
	for st, want := range map[State]string{
		Idle: "idle", Loaded: "loaded", Windowed: "windowed",
		Advancing: "advancing", Failed: "failed", Done: "done", State(42): "unknown",
	} {
		assert.Equal(t, want, st.String())
	}
}

func TestViewportFiniteForDecay(t *testing.T) {
	surface := &fakeSurface{}
	s := New([]string{"a"}, newLoader("a"), surface)
	require.NoError(t, s.Start(context.Background()))

	vp := surface.viewports[0]
	assert.False(t, math.IsNaN(vp.Y.Max))
	assert.InDelta(t, 1.1*2.1, vp.Y.Max, 1e-12)
}
