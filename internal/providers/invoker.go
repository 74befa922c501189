package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/mythra/internal/events"
)

// Invoker defaults.
const (
	DefaultMaxRetries = 2
	DefaultBaseDelay  = 2 * time.Second
	DefaultTimeout    = 90 * time.Second
)

// InvokeError is returned when an invocation gives up. Class tells the
// caller whether the failure is local to the artifact or fatal to the run.
type InvokeError struct {
	Provider string
	Class    Class
	Attempts int
	Err      error
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("%s %s after %d attempt(s): %v", e.Provider, e.Class, e.Attempts, e.Err)
}

func (e *InvokeError) Unwrap() error { return e.Err }

// IsFatal reports whether err is an invocation failure classified as fatal.
func IsFatal(err error) bool {
	var ie *InvokeError
	return errors.As(err, &ie) && ie.Class.Fatal()
}

// Invoker performs one logical completion against a provider, retrying
// transient failures with exponential back-off.
type Invoker struct {
	Provider   Provider
	MaxRetries int
	BaseDelay  time.Duration
	Timeout    time.Duration
	Observer   events.Observer
	// Sleep waits for d or until ctx is done. Tests replace it to avoid
	// real delays.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewInvoker returns an invoker with default retry settings.
func NewInvoker(p Provider) *Invoker {
	return &Invoker{
		Provider:   p,
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		Timeout:    DefaultTimeout,
	}
}

// Invoke sends req on behalf of artifact. It returns the raw response text,
// ctx.Err() if the parent context ends, or an *InvokeError.
func (inv *Invoker) Invoke(ctx context.Context, artifact string, req Request) (string, error) {
	obs := events.OrNop(inv.Observer)
	sleep := inv.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	retries := max(inv.MaxRetries, 0)
	name := inv.Provider.Name()

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		obs.Observe(events.Event{Kind: events.RequestStarted, Artifact: artifact, Provider: name, Attempt: attempt + 1})
		text, err := inv.attempt(ctx, req)
		if err == nil {
			return text, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		class := inv.Provider.Classify(err)
		lastErr = err
		if class != Transient {
			obs.Observe(events.Event{Kind: events.RequestFailed, Artifact: artifact, Provider: name, Attempt: attempt + 1, Message: class.String(), Err: err})
			return "", &InvokeError{Provider: name, Class: class, Attempts: attempt + 1, Err: err}
		}
		if attempt == retries {
			break
		}

		delay := inv.BaseDelay * time.Duration(1<<attempt)
		obs.Observe(events.Event{Kind: events.RetryScheduled, Artifact: artifact, Provider: name, Attempt: attempt + 1, Delay: delay, Err: err})
		if err := sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	obs.Observe(events.Event{Kind: events.RequestFailed, Artifact: artifact, Provider: name, Attempt: retries + 1, Message: "retries exhausted", Err: lastErr})
	return "", &InvokeError{Provider: name, Class: Transient, Attempts: retries + 1, Err: lastErr}
}

func (inv *Invoker) attempt(ctx context.Context, req Request) (string, error) {
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}
	text, err := inv.Provider.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("request timed out after %s: %w", inv.Timeout, err)
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
