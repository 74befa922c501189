package providers

import (
	"context"
	"fmt"
	"net/http"
)

// Request contains the data sent to an LLM for one artifact.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Provider is the capability every backend exposes. Complete performs a
// single attempt; retrying is the invoker's job. Classify maps the errors
// Complete returns onto the shared taxonomy.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
	Classify(err error) Class
}

// Options configures provider clients. Empty base URLs select the public
// endpoints.
type Options struct {
	OpenAIBaseURL    string
	AnthropicBaseURL string
	GeminiBaseURL    string
	HTTPClient       *http.Client
}

// New creates the provider client for a resolved spec.
func New(ctx context.Context, spec Spec, opts Options) (Provider, error) {
	if spec.APIKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredential, spec.Kind)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	switch spec.Kind {
	case KindOpenAI:
		return NewOpenAI(spec.APIKey, spec.Model, opts.OpenAIBaseURL, client), nil
	case KindAnthropic:
		return NewAnthropic(spec.APIKey, spec.Model, opts.AnthropicBaseURL, client), nil
	case KindGemini:
		return NewGemini(ctx, spec.APIKey, spec.Model, opts.GeminiBaseURL, client)
	default:
		return nil, fmt.Errorf("unknown provider: %s", spec.Kind)
	}
}
