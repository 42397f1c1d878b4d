package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-decay/measure/decay"
	timestats "github.com/cwbudde/algo-decay/stats/time"
)

// viewHeadroom scales the envelope maximum to the top of the Y range.
const viewHeadroom = 1.1

var (
	// ErrSessionDone is returned by every event after the session ended.
	ErrSessionDone = errors.New("session: done")
	// ErrNotLoaded is returned by events that need a dataset on screen.
	ErrNotLoaded = errors.New("session: no dataset loaded")
	// ErrNotFailed is returned by Retry when no load has failed.
	ErrNotFailed = errors.New("session: nothing to retry")
	// ErrStarted is returned by a second Start.
	ErrStarted = errors.New("session: already started")
)

// Session walks a fixed list of dataset folders. It is not safe for
// concurrent use.
type Session struct {
	id      uuid.UUID
	folders []string
	loader  Loader
	surface Surface
	fitter  *decay.Fitter
	log     zerolog.Logger

	state   State
	index   int
	channel int
	open    bool

	current *Dataset
	window  decay.Window
	lastFit *decay.Result
}

// Option configures a [Session].
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithFitter replaces the default fitter.
func WithFitter(f *decay.Fitter) Option {
	return func(s *Session) {
		if f != nil {
			s.fitter = f
		}
	}
}

// WithChannel selects the channel fitted after each load.
func WithChannel(c int) Option {
	return func(s *Session) {
		if c >= 0 {
			s.channel = c
		}
	}
}

// New creates an idle session over folders.
func New(folders []string, loader Loader, surface Surface, opts ...Option) *Session {
	s := &Session{
		id:      uuid.New(),
		folders: append([]string(nil), folders...),
		loader:  loader,
		surface: surface,
		fitter:  decay.NewFitter(),
		log:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.log = s.log.With().Str("session", s.id.String()).Logger()

	return s
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID { return s.id }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Index returns the position of the current (or failed) dataset. After the
// list is exhausted it equals Len.
func (s *Session) Index() int { return s.index }

// Len returns the number of folders.
func (s *Session) Len() int { return len(s.folders) }

// Current returns the loaded dataset, or nil.
func (s *Session) Current() *Dataset { return s.current }

// Channel returns the selected channel.
func (s *Session) Channel() int { return s.channel }

// Window returns the active fit window.
func (s *Session) Window() decay.Window { return s.window }

// LastFit returns the curve currently shown, or nil.
func (s *Session) LastFit() *decay.Result { return s.lastFit }

// Start loads the first dataset. An empty folder list ends the session.
func (s *Session) Start(ctx context.Context) error {
	switch s.state {
	case Idle:
	case Done:
		return ErrSessionDone
	default:
		return ErrStarted
	}

	s.log.Info().Int("datasets", len(s.folders)).Msg("session started")

	return s.load(ctx, 0)
}

// SetBounds resolves two boundary positions into the fit window and updates
// the viewport. It does not fit.
func (s *Session) SetBounds(pos1, pos2 float64) (decay.Window, error) {
	if err := s.requireActive(); err != nil {
		return decay.Window{}, err
	}

	grid := s.current.Grid()
	if len(grid) == 0 {
		return decay.Window{}, fmt.Errorf("session: %w: empty grid", decay.ErrInsufficientData)
	}

	s.window = decay.ResolveWindow(grid, pos1, pos2)
	s.state = Windowed

	s.log.Debug().
		Float64("pos1", pos1).
		Float64("pos2", pos2).
		Int("lo", s.window.Lo).
		Int("hi", s.window.Hi).
		Msg("bounds changed")

	s.surface.SetViewport(s.viewport())

	return s.window, nil
}

// Fit fits the active window of the selected channel and replaces the curve
// on the surface. On [decay.ErrInsufficientData] the previous curve stays.
func (s *Session) Fit() (*decay.Result, error) {
	if err := s.requireActive(); err != nil {
		return nil, err
	}

	return s.fit()
}

// Advance closes the current dataset and loads the next one. Advancing from
// a failed load skips that dataset. Past the last folder the session ends.
func (s *Session) Advance(ctx context.Context) error {
	switch s.state {
	case Done:
		return ErrSessionDone
	case Idle, Advancing:
		return ErrNotLoaded
	}

	s.closeSurface()

	if s.state == Failed {
		s.log.Warn().Str("dataset", s.folders[s.index]).Msg("skipping dataset")
	}

	return s.load(ctx, s.index+1)
}

// Retry reloads the dataset whose load failed.
func (s *Session) Retry(ctx context.Context) error {
	switch s.state {
	case Done:
		return ErrSessionDone
	case Failed:
		return s.load(ctx, s.index)
	default:
		return ErrNotFailed
	}
}

// SelectChannel switches the fitted channel, resets the window to the full
// range and refits.
func (s *Session) SelectChannel(c int) error {
	if err := s.requireActive(); err != nil {
		return err
	}

	if c < 0 || c >= s.current.NumChannels() {
		return fmt.Errorf("session: %w: channel %d not in [0, %d)",
			decay.ErrInvalidInput, c, s.current.NumChannels())
	}

	s.channel = c
	s.log.Info().Int("channel", c).Msg("channel selected")
	s.showFullRange()

	return nil
}

// Quit closes the surface and ends the session. It is idempotent.
func (s *Session) Quit() {
	if s.state == Done {
		return
	}

	s.closeSurface()
	s.finish()
}

func (s *Session) requireActive() error {
	switch {
	case s.state == Done:
		return ErrSessionDone
	case !s.state.active():
		return ErrNotLoaded
	default:
		return nil
	}
}

func (s *Session) load(ctx context.Context, i int) error {
	s.current = nil
	s.lastFit = nil
	s.window = decay.Window{}

	if i >= len(s.folders) {
		s.index = len(s.folders)
		s.finish()

		return nil
	}

	s.state = Advancing
	s.index = i
	folder := s.folders[i]

	ds, err := s.loader.Load(ctx, folder)
	if err == nil && s.channel >= ds.NumChannels() {
		err = fmt.Errorf("channel %d not in [0, %d)", s.channel, ds.NumChannels())
	}

	if err != nil {
		return s.fail(folder, err)
	}

	if err := s.surface.Open(ds); err != nil {
		return s.fail(folder, err)
	}

	s.open = true
	s.current = ds
	s.state = Loaded

	s.log.Info().
		Str("dataset", folder).
		Int("index", i).
		Int("samples", len(ds.Grid())).
		Int("channels", ds.NumChannels()).
		Msg("dataset loaded")

	s.showFullRange()

	return nil
}

func (s *Session) fail(folder string, err error) error {
	s.state = Failed

	if !errors.Is(err, decay.ErrInvalidInput) {
		err = fmt.Errorf("%w: %w", decay.ErrInvalidInput, err)
	}

	s.log.Warn().Err(err).Str("dataset", folder).Int("index", s.index).Msg("dataset failed to load")

	return fmt.Errorf("session: load %s: %w", folder, err)
}

// showFullRange resets the window, pushes the viewport and runs the
// full-range fit. A dataset too short to fit stays loaded without a curve.
func (s *Session) showFullRange() {
	s.window = decay.FullWindow(len(s.current.Grid()))
	s.state = Loaded

	if len(s.current.Grid()) > 0 {
		s.surface.SetViewport(s.viewport())
	}

	if _, err := s.fit(); err != nil && !errors.Is(err, decay.ErrInsufficientData) {
		s.log.Warn().Err(err).Msg("full-range fit failed")
	}
}

func (s *Session) fit() (*decay.Result, error) {
	ds := s.current

	res, err := s.fitter.FitWindow(ds.Grid(), ds.Envelopes[s.channel], s.window)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("dataset", ds.Folder).
			Int("lo", s.window.Lo).
			Int("hi", s.window.Hi).
			Msg("fit rejected")

		return nil, fmt.Errorf("session: %w", err)
	}

	s.lastFit = res

	s.log.Info().
		Str("dataset", ds.Folder).
		Int("channel", s.channel).
		Float64("amplitude", res.Params.Amplitude).
		Float64("tau", res.Params.Tau).
		Float64("offset", res.Params.Offset).
		Int("iterations", res.Iterations).
		Bool("converged", res.Converged).
		Msg("fit")

	s.surface.ShowFit(FitCurve{
		Channel:   s.channel,
		Time:      res.Time,
		Values:    res.Curve,
		Params:    res.Params,
		Converged: res.Converged,
	})

	return res, nil
}

func (s *Session) viewport() Viewport {
	grid := s.current.Grid()
	env := s.current.Envelopes[s.channel]
	lo, hi := s.window.Lo, s.window.Hi

	peak, _ := timestats.Max(env[lo : hi+1])

	return Viewport{
		Channel: s.channel,
		Window:  s.window,
		X:       Range{Min: grid[lo], Max: grid[hi]},
		Y:       Range{Min: 0, Max: viewHeadroom * peak},
		Lower:   Range{Min: grid[0], Max: grid[hi]},
		Upper:   Range{Min: grid[lo], Max: grid[len(grid)-1]},
	}
}

func (s *Session) closeSurface() {
	if s.open {
		s.surface.Close()
		s.open = false
	}
}

func (s *Session) finish() {
	s.state = Done
	s.current = nil
	s.lastFit = nil

	s.log.Info().Msg("session done")
}
