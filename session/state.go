package session

// State is the lifecycle state of a [Session].
type State int

const (
	// Idle is the state after construction.
	Idle State = iota
	// Loaded means the current dataset is shown with the full-range window.
	Loaded
	// Windowed means the user has moved the bounds of the current dataset.
	Windowed
	// Advancing is held while a dataset loads.
	Advancing
	// Failed means the dataset at Index could not be loaded.
	Failed
	// Done is terminal.
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loaded:
		return "loaded"
	case Windowed:
		return "windowed"
	case Advancing:
		return "advancing"
	case Failed:
		return "failed"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// active reports whether a dataset is on screen.
func (s State) active() bool {
	return s == Loaded || s == Windowed
}
