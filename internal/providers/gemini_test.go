package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func newTestGemini(t *testing.T, server *httptest.Server) *Gemini {
	t.Helper()
	g, err := NewGemini(context.Background(), "test-key", "models/gemini-1.5-pro-latest", server.URL, server.Client())
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}
	return g
}

func TestGemini_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify the API key is passed as a header
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Error("Missing API key in x-goog-api-key header")
		}
		if !strings.Contains(r.URL.Path, "gemini-1.5-pro-latest:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if _, ok := body["systemInstruction"]; !ok {
			t.Error("expected systemInstruction in request")
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"[]"}]}}]}`)
	}))
	defer server.Close()

	g := newTestGemini(t, server)
	text, err := g.Complete(context.Background(), Request{
		SystemPrompt: "sys",
		UserPrompt:   "user",
		MaxTokens:    8192,
		Temperature:  0.1,
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if text != "[]" {
		t.Errorf("text = %q, want %q", text, "[]")
	}
}

func TestGemini_PermissionDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)
	}))
	defer server.Close()

	g := newTestGemini(t, server)
	_, err := g.Complete(context.Background(), Request{UserPrompt: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := g.Classify(err); got != FatalAuth {
		t.Errorf("Classify = %v, want FatalAuth (err: %v)", got, err)
	}
}

func TestGemini_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer server.Close()

	g := newTestGemini(t, server)
	_, err := g.Complete(context.Background(), Request{UserPrompt: "x"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err = %v, want ErrEmptyResponse", err)
	}
	if g.Classify(err) != Unusable {
		t.Errorf("class = %v, want Unusable", g.Classify(err))
	}
}

func TestGemini_Classify(t *testing.T) {
	g := &Gemini{}
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"rate limited", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, Transient},
		{"unauthenticated", genai.APIError{Code: 401, Status: "UNAUTHENTICATED"}, FatalAuth},
		{"wrapped permission", fmt.Errorf("call: %w", genai.APIError{Code: 403}), FatalAuth},
		{"invalid argument", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, FatalBadRequest},
		{"invalid key", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."}, FatalAuth},
		{"not found", genai.APIError{Code: 404, Status: "NOT_FOUND"}, FatalBadRequest},
		{"internal", genai.APIError{Code: 500, Status: "INTERNAL"}, Transient},
		{"transport", errors.New("connection reset"), Transient},
		{"empty", ErrEmptyResponse, Unusable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Classify(tt.err); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}
