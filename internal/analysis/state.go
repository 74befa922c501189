package analysis

import "fmt"

// State is a step in an artifact's lifecycle.
type State string

const (
	StatePending    State = "pending"
	StateReading    State = "reading"
	StateSkipped    State = "skipped"
	StateQueued     State = "queued"
	StateRequesting State = "requesting"
	StateRetrying   State = "retrying"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

var transitions = map[State][]State{
	StatePending:    {StateReading},
	StateReading:    {StateSkipped, StateQueued},
	StateQueued:     {StateRequesting, StateFailed},
	StateRequesting: {StateRetrying, StateSucceeded, StateFailed},
	StateRetrying:   {StateRequesting, StateFailed},
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateSkipped || s == StateSucceeded || s == StateFailed
}

// CanTransition reports whether moving from one state to another is
// allowed.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// tracker records the state of one artifact and rejects illegal moves.
type tracker struct {
	state State
}

func newTracker() *tracker {
	return &tracker{state: StatePending}
}

func (t *tracker) to(next State) error {
	if !CanTransition(t.state, next) {
		return fmt.Errorf("invalid transition from %s to %s", t.state, next)
	}
	t.state = next
	return nil
}

// status maps a terminal state to the report status.
func (s State) status() Status {
	switch s {
	case StateSkipped:
		return StatusSkipped
	case StateSucceeded:
		return StatusSucceeded
	default:
		return StatusFailed
	}
}
