// Package events carries progress notifications from the analysis pipeline
// to whoever is watching it.
//
// The invoker and the analyzer never print. They emit [Event] values to an
// [Observer]; the CLI installs a log-backed observer, tests install a
// [Recorder] or nothing at all.
package events

import (
	"sync"
	"time"
)

// Kind identifies what happened.
type Kind string

const (
	ArtifactSkipped   Kind = "artifact_skipped"
	ArtifactQueued    Kind = "artifact_queued"
	ArtifactDuplicate Kind = "artifact_duplicate"
	RequestStarted    Kind = "request_started"
	RetryScheduled    Kind = "retry_scheduled"
	RequestFailed     Kind = "request_failed"
	ExtractWarning    Kind = "extract_warning"
	ArtifactSucceeded Kind = "artifact_succeeded"
	ArtifactFailed    Kind = "artifact_failed"
	RunAborted        Kind = "run_aborted"
)

// Event is a single progress notification. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind     Kind
	Artifact string
	Provider string
	Attempt  int
	Delay    time.Duration
	Count    int
	Message  string
	Err      error
}

// Observer receives events. Implementations must be safe for concurrent
// use; artifact tasks emit from their own goroutines.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// Nop discards every event.
var Nop Observer = ObserverFunc(func(Event) {})

// OrNop returns o, or Nop when o is nil.
func OrNop(o Observer) Observer {
	if o == nil {
		return Nop
	}
	return o
}

// Recorder keeps every event it sees.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many recorded events have the given kind.
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}
