package interactor

import "github.com/goliatone/go-country-cache/country"

// Status is the position of a result in the Idle → InProgress → Success|Failure sequence.
type Status int

const (
	// StatusIdle is the state before any action ran. Process never emits it.
	StatusIdle Status = iota
	// StatusInProgress is the first signal of every processed action.
	StatusInProgress
	// StatusSuccess ends a stream whose action completed; Countries holds the data.
	StatusSuccess
	// StatusFailure ends a stream whose action failed; Err holds the cause.
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusInProgress:
		return "in_progress"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a result stream.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// Result is one signal produced while processing an Action.
type Result struct {
	Action    Action
	RequestID string
	Status    Status
	// Refreshing is set on the InProgress signal of a refreshing load.
	Refreshing bool
	// Countries holds the data of a Success signal.
	Countries []country.Country
	// Err holds the cause of a Failure signal.
	Err error
}

// Collect drains ch and returns every result in order.
func Collect(ch <-chan Result) []Result {
	var out []Result
	for r := range ch {
		out = append(out, r)
	}
	return out
}

// State is the view of a screen driven by results.
type State struct {
	Loading    bool
	Refreshing bool
	Countries  []country.Country
	Err        error
	Initial    bool
}

// Idle returns the state before any action ran.
func Idle() State {
	return State{
		Countries: []country.Country{},
		Initial:   true,
	}
}

// Reduce folds r into s. A failure keeps the countries already shown.
func Reduce(s State, r Result) State {
	switch r.Status {
	case StatusInProgress:
		s.Loading = true
		s.Refreshing = r.Refreshing
		s.Initial = false
	case StatusSuccess:
		s.Loading = false
		s.Refreshing = false
		s.Countries = r.Countries
		s.Err = nil
		s.Initial = false
	case StatusFailure:
		s.Loading = false
		s.Refreshing = false
		s.Err = r.Err
		s.Initial = false
	}
	return s
}
