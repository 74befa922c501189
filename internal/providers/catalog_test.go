package providers

import (
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	for _, k := range []Kind{KindGemini, KindOpenAI, KindAnthropic} {
		if _, ok := c.Entry(k); !ok {
			t.Errorf("missing catalog entry for %s", k)
		}
	}
	if got := c.MaxTokens(KindGemini); got != 8192 {
		t.Errorf("gemini max tokens = %d, want 8192", got)
	}
	if got := c.MaxTokens(KindOpenAI); got != 4000 {
		t.Errorf("openai max tokens = %d, want 4000", got)
	}
	if !c.Supported("gpt-4o") || !c.Supported("CLAUDE-3-OPUS-20240229") {
		t.Error("expected listed models to be supported")
	}
	if c.Supported("gpt-5") {
		t.Error("gpt-5 should not be listed")
	}
}

func TestLoadCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown kind", "providers:\n  - kind: ollama\n    prefixes: [llama]\n", "unknown provider kind"},
		{"duplicate", "providers:\n  - kind: openai\n    prefixes: [gpt-]\n  - kind: openai\n    prefixes: [o1-]\n", "duplicate"},
		{"no prefixes", "providers:\n  - kind: openai\n", "no model prefixes"},
		{"bad yaml", "providers: [", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestCredentialsFromEnv(t *testing.T) {
	env := map[string]string{
		"OPENAI_API_KEY":    "sk-openai",
		"GEMINI_API_KEY":    "fallback-google",
		"ANTHROPIC_API_KEY": "  ",
	}
	creds := CredentialsFromEnv(func(k string) string { return env[k] })
	if creds.OpenAI != "sk-openai" {
		t.Errorf("OpenAI = %q", creds.OpenAI)
	}
	if creds.Google != "fallback-google" {
		t.Errorf("Google = %q, want fallback from GEMINI_API_KEY", creds.Google)
	}
	if creds.Anthropic != "" {
		t.Errorf("Anthropic = %q, want empty for blank env", creds.Anthropic)
	}

	env["GOOGLE_API_KEY"] = "primary-google"
	creds = CredentialsFromEnv(func(k string) string { return env[k] })
	if creds.Google != "primary-google" {
		t.Errorf("Google = %q, want GOOGLE_API_KEY to take precedence", creds.Google)
	}
}
