package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Gemini implements Provider for Google's Gemini API via the genai SDK.
type Gemini struct {
	cli   *genai.Client
	model string
}

// NewGemini creates a new Gemini provider. baseURL overrides the public
// endpoint and is used by tests.
func NewGemini(ctx context.Context, apiKey, model, baseURL string, client *http.Client) (*Gemini, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: client,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{cli: cli, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 8192
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Temperature:     genai.Ptr(float32(req.Temperature)),
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: req.UserPrompt}}}},
		cfg,
	)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no candidates in response", ErrEmptyResponse)
	}

	var content strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		content.WriteString(part.Text)
	}
	if content.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return content.String(), nil
}

// Classify maps SDK errors onto the shared taxonomy. The SDK reports
// HTTP failures as genai.APIError carrying the status code and the
// canonical status string.
func (g *Gemini) Classify(err error) Class {
	if errors.Is(err, ErrEmptyResponse) || errors.Is(err, ErrMalformedResponse) {
		return Unusable
	}
	ae, ok := geminiError(err)
	if !ok {
		return Transient
	}
	code, status := ae.Code, ae.Status
	switch {
	case code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED":
		return Transient
	case code == http.StatusUnauthorized || code == http.StatusForbidden ||
		status == "PERMISSION_DENIED" || status == "UNAUTHENTICATED":
		return FatalAuth
	// A rejected key comes back as 400 INVALID_ARGUMENT.
	case status == "INVALID_ARGUMENT" && strings.Contains(strings.ToLower(ae.Message), "api key"):
		return FatalAuth
	case code >= 400 && code < 500:
		return FatalBadRequest
	default:
		return Transient
	}
}

func geminiError(err error) (genai.APIError, bool) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch ae := any(e).(type) {
		case genai.APIError:
			return ae, true
		case *genai.APIError:
			if ae != nil {
				return *ae, true
			}
		}
	}
	return genai.APIError{}, false
}
