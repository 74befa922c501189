package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestOpenAI(server *httptest.Server) *OpenAI {
	return NewOpenAI("test-key", "gpt-4o", server.URL, server.Client())
}

func TestOpenAI_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("Missing or wrong Authorization header")
		}

		var req openaiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Model != "gpt-4o" {
			t.Errorf("model = %q, want gpt-4o", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.MaxTokens != 4000 {
			t.Errorf("max_tokens = %d, want 4000", req.MaxTokens)
		}
		if req.Temperature == nil || *req.Temperature != 0.1 {
			t.Errorf("temperature = %v, want 0.1", req.Temperature)
		}

		resp := openaiResponse{
			Choices: []openaiChoice{
				{Message: openaiMessage{Role: "assistant", Content: "[]"}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	o := newTestOpenAI(server)
	text, err := o.Complete(context.Background(), Request{
		SystemPrompt: "sys",
		UserPrompt:   "user",
		MaxTokens:    4000,
		Temperature:  0.1,
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if text != "[]" {
		t.Errorf("text = %q, want %q", text, "[]")
	}
}

func TestOpenAI_StatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Class
	}{
		{"unauthorized", http.StatusUnauthorized, FatalAuth},
		{"forbidden", http.StatusForbidden, FatalAuth},
		{"bad request", http.StatusBadRequest, FatalBadRequest},
		{"model not found", http.StatusNotFound, FatalBadRequest},
		{"rate limited", http.StatusTooManyRequests, Transient},
		{"server error", http.StatusInternalServerError, Transient},
		{"unavailable", http.StatusServiceUnavailable, Transient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"nope"}`))
			}))
			defer server.Close()

			o := newTestOpenAI(server)
			_, err := o.Complete(context.Background(), Request{UserPrompt: "x"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := o.Classify(err); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpenAI_EmptyContent(t *testing.T) {
	for _, body := range []string{`{"choices":[]}`, `{"choices":[{"message":{"role":"assistant","content":""}}]}`} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		o := newTestOpenAI(server)
		_, err := o.Complete(context.Background(), Request{UserPrompt: "x"})
		server.Close()

		if !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("body %s: err = %v, want ErrEmptyResponse", body, err)
		}
		if o.Classify(err) != Unusable {
			t.Errorf("body %s: class = %v, want Unusable", body, o.Classify(err))
		}
	}
}

func TestOpenAI_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	o := newTestOpenAI(server)
	_, err := o.Complete(context.Background(), Request{UserPrompt: "x"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
	if o.Classify(err) != Unusable {
		t.Errorf("class = %v, want Unusable", o.Classify(err))
	}
}

func TestOpenAI_ZeroTemperatureSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		temp, ok := body["temperature"]
		if !ok || temp != float64(0) {
			t.Errorf("temperature = %v (present %v), want explicit 0", temp, ok)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[]"}}]}`))
	}))
	defer server.Close()

	p := newTestOpenAI(server)
	if _, err := p.Complete(context.Background(), Request{UserPrompt: "x", Temperature: 0}); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
}
