package analysis

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/mythra/internal/events"
	"github.com/dshills/mythra/internal/providers"
)

// Reasons recorded for artifacts that never reach a provider.
const (
	ReasonEmptyFile = "Empty file"
	readErrorPrefix = "Read error: "
)

// DefaultTemperature is the sampling temperature sent with every request.
const DefaultTemperature = 0.1

// FatalError is returned by Run when a fatal provider failure aborted the
// run. Err is the underlying *providers.InvokeError.
type FatalError struct {
	Artifact string
	Err      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("run aborted while analyzing %s: %v", e.Artifact, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// DialFunc builds a provider client for a resolved spec.
type DialFunc func(ctx context.Context, spec providers.Spec) (providers.Provider, error)

// Analyzer runs a batch of artifacts through one model.
type Analyzer struct {
	Router *providers.Router
	Dial   DialFunc

	Observer       events.Observer
	MaxRetries     int
	BaseDelay      time.Duration
	Timeout        time.Duration
	Temperature    float64
	MaxTokens      int // 0 selects the catalog bound for the provider
	MaxConcurrency int // 0 dispatches every artifact at once
	AbortOnFatal   bool
	Sleep          func(ctx context.Context, d time.Duration) error
}

// NewAnalyzer returns an analyzer with default settings that talks to the
// public provider endpoints.
func NewAnalyzer(router *providers.Router) *Analyzer {
	return &Analyzer{
		Router: router,
		Dial: func(ctx context.Context, spec providers.Spec) (providers.Provider, error) {
			return providers.New(ctx, spec, providers.Options{})
		},
		MaxRetries:   providers.DefaultMaxRetries,
		BaseDelay:    providers.DefaultBaseDelay,
		Timeout:      providers.DefaultTimeout,
		Temperature:  DefaultTemperature,
		AbortOnFatal: true,
	}
}

type task struct {
	artifact Artifact
	tracker  *tracker
}

// Run analyzes artifacts with model. Routing errors are returned before
// anything is dispatched. A fatal provider failure returns *FatalError
// when AbortOnFatal is set; cancellation of ctx returns ctx.Err().
func (a *Analyzer) Run(ctx context.Context, artifacts []Artifact, model string, creds providers.Credentials) (*Report, error) {
	obs := events.OrNop(a.Observer)

	spec, err := a.Router.Resolve(model, creds)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Outcomes: make(map[string]Outcome, len(artifacts)),
		Metadata: Metadata{ModelUsed: strings.TrimSpace(model)},
	}

	var tasks []task
	seen := make(map[string]bool, len(artifacts))
	for _, art := range artifacts {
		if seen[art.Path] {
			obs.Observe(events.Event{Kind: events.ArtifactDuplicate, Artifact: art.Path, Message: "duplicate identifier, keeping first occurrence"})
			continue
		}
		seen[art.Path] = true

		tr := newTracker()
		if err := tr.to(StateReading); err != nil {
			return nil, err
		}
		reason := ""
		switch {
		case art.Err != nil:
			reason = readErrorPrefix + art.Err.Error()
		case strings.TrimSpace(art.Content) == "":
			reason = ReasonEmptyFile
		}
		if reason != "" {
			if err := tr.to(StateSkipped); err != nil {
				return nil, err
			}
			report.Outcomes[art.Path] = Outcome{Status: tr.state.status(), Reason: reason}
			obs.Observe(events.Event{Kind: events.ArtifactSkipped, Artifact: art.Path, Message: reason})
			continue
		}
		if err := tr.to(StateQueued); err != nil {
			return nil, err
		}
		tasks = append(tasks, task{artifact: art, tracker: tr})
		obs.Observe(events.Event{Kind: events.ArtifactQueued, Artifact: art.Path})
	}

	if len(tasks) > 0 {
		provider, err := a.Dial(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("creating %s client: %w", spec.Kind, err)
		}
		results, err := a.dispatch(ctx, provider, spec, tasks)
		if err != nil {
			var fe *FatalError
			if errors.As(err, &fe) {
				obs.Observe(events.Event{Kind: events.RunAborted, Artifact: fe.Artifact, Err: fe.Err})
			}
			return nil, err
		}
		for i, t := range tasks {
			if !t.tracker.state.Terminal() {
				return nil, fmt.Errorf("%s settled in non-terminal state %s", t.artifact.Path, t.tracker.state)
			}
			report.Outcomes[t.artifact.Path] = results[i]
		}
	}

	report.finalize()
	return report, nil
}

// dispatch runs one goroutine per task. Each task owns one slot of the
// result slice; the slice is read only after every task has returned.
func (a *Analyzer) dispatch(ctx context.Context, p providers.Provider, spec providers.Spec, tasks []task) ([]Outcome, error) {
	maxTokens := a.MaxTokens
	if maxTokens <= 0 {
		maxTokens = providers.DefaultCatalog().MaxTokens(spec.Kind)
	}
	base := providers.Request{
		SystemPrompt: SystemPrompt(),
		MaxTokens:    maxTokens,
		Temperature:  a.Temperature,
	}

	results := make([]Outcome, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	if a.MaxConcurrency > 0 {
		g.SetLimit(a.MaxConcurrency)
	}
	for i, t := range tasks {
		g.Go(func() error {
			out, err := a.analyze(gctx, p, base, t)
			results[i] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		var fe *FatalError
		if errors.As(err, &fe) {
			return nil, fe
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// analyze carries one artifact from Queued to a terminal state. It returns
// an error only when the run must stop: a fatal failure under the abort
// policy, or cancellation.
func (a *Analyzer) analyze(ctx context.Context, p providers.Provider, base providers.Request, t task) (Outcome, error) {
	obs := events.OrNop(a.Observer)
	path := t.artifact.Path
	tr := t.tracker

	inv := &providers.Invoker{
		Provider:   p,
		MaxRetries: a.MaxRetries,
		BaseDelay:  a.BaseDelay,
		Timeout:    a.Timeout,
		Sleep:      a.Sleep,
		Observer: events.ObserverFunc(func(e events.Event) {
			switch e.Kind {
			case events.RequestStarted:
				_ = tr.to(StateRequesting)
			case events.RetryScheduled:
				_ = tr.to(StateRetrying)
			}
			obs.Observe(e)
		}),
	}

	req := base
	req.UserPrompt = BuildPrompt(t.artifact.Content, filepath.Base(path))
	text, err := inv.Invoke(ctx, path, req)
	if err != nil {
		var ie *providers.InvokeError
		if !errors.As(err, &ie) {
			return Outcome{Status: StatusFailed, Reason: "Cancelled"}, err
		}
		if terr := tr.to(StateFailed); terr != nil {
			return Outcome{}, terr
		}
		reason := fmt.Sprintf("Analysis failed (%s after %d attempt(s)): %v", ie.Class, ie.Attempts, ie.Err)
		obs.Observe(events.Event{Kind: events.ArtifactFailed, Artifact: path, Provider: ie.Provider, Message: reason, Err: ie})
		out := Outcome{Status: tr.state.status(), Reason: reason}
		if providers.IsFatal(ie) && a.AbortOnFatal {
			return out, &FatalError{Artifact: path, Err: ie}
		}
		return out, nil
	}

	suggestions, warnings := ExtractDiagnostics(text)
	for _, w := range warnings {
		obs.Observe(events.Event{Kind: events.ExtractWarning, Artifact: path, Message: w})
	}
	SortSuggestions(suggestions)

	if err := tr.to(StateSucceeded); err != nil {
		return Outcome{}, err
	}
	obs.Observe(events.Event{Kind: events.ArtifactSucceeded, Artifact: path, Count: len(suggestions)})
	return Outcome{Status: tr.state.status(), Suggestions: suggestions}, nil
}
