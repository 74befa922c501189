package events

import (
	"log"
	"sync"
)

// LogObserver writes events as single lines to a log.Logger.
//
// Retries, failures, warnings and aborts are always written. Per-request
// and per-artifact progress lines are written only when Verbose is set.
// Label, when set, renders the "Warning:" and "Error:" prefixes.
type LogObserver struct {
	Logger  *log.Logger
	Verbose bool
	Label   func(string) string

	mu sync.Mutex
}

// NewLogObserver returns an observer writing to logger, or to
// log.Default() when logger is nil.
func NewLogObserver(logger *log.Logger, verbose bool) *LogObserver {
	if logger == nil {
		logger = log.Default()
	}
	return &LogObserver{Logger: logger, Verbose: verbose}
}

func (l *LogObserver) Observe(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch e.Kind {
	case RetryScheduled:
		l.Logger.Printf("%s %s: retrying %s call (attempt %d) after %s: %v",
			l.label("Warning:"), e.Artifact, e.Provider, e.Attempt, e.Delay, e.Err)
	case RequestFailed:
		l.Logger.Printf("%s %s: %s call failed after %d attempt(s): %v",
			l.label("Warning:"), e.Artifact, e.Provider, e.Attempt, e.Err)
	case ExtractWarning:
		l.Logger.Printf("%s %s: %s", l.label("Warning:"), e.Artifact, e.Message)
	case ArtifactDuplicate:
		l.Logger.Printf("%s %s: duplicate input ignored", l.label("Warning:"), e.Artifact)
	case ArtifactFailed:
		l.Logger.Printf("%s %s: %s", l.label("Error:"), e.Artifact, e.Message)
	case RunAborted:
		l.Logger.Printf("%s run aborted: %v", l.label("Error:"), e.Err)
	default:
		if !l.Verbose {
			return
		}
		switch e.Kind {
		case ArtifactSkipped:
			l.Logger.Printf("%s: skipped (%s)", e.Artifact, e.Message)
		case ArtifactQueued:
			l.Logger.Printf("%s: queued", e.Artifact)
		case RequestStarted:
			l.Logger.Printf("%s: calling %s (attempt %d)", e.Artifact, e.Provider, e.Attempt)
		case ArtifactSucceeded:
			l.Logger.Printf("%s: %d suggestion(s)", e.Artifact, e.Count)
		}
	}
}

func (l *LogObserver) label(s string) string {
	if l.Label == nil {
		return s
	}
	return l.Label(s)
}
