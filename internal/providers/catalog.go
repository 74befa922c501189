package providers

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var catalogYAML []byte

// Kind names one of the supported backends.
type Kind string

const (
	KindGemini    Kind = "gemini"
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
)

// Entry describes one provider in the model catalog.
type Entry struct {
	Kind      Kind     `yaml:"kind"`
	Label     string   `yaml:"label"`
	Prefixes  []string `yaml:"prefixes"`
	Env       []string `yaml:"env"`
	MaxTokens int      `yaml:"maxTokens"`
	Models    []string `yaml:"models"`
}

// Catalog is the set of known providers and their supported models.
type Catalog struct {
	Providers []Entry `yaml:"providers"`
}

// LoadCatalog parses a YAML catalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("providers.LoadCatalog: parse: %w", err)
	}
	seen := make(map[Kind]bool)
	for _, e := range c.Providers {
		switch e.Kind {
		case KindGemini, KindOpenAI, KindAnthropic:
		default:
			return nil, fmt.Errorf("providers.LoadCatalog: unknown provider kind %q", e.Kind)
		}
		if seen[e.Kind] {
			return nil, fmt.Errorf("providers.LoadCatalog: duplicate provider kind %q", e.Kind)
		}
		seen[e.Kind] = true
		if len(e.Prefixes) == 0 {
			return nil, fmt.Errorf("providers.LoadCatalog: %s has no model prefixes", e.Kind)
		}
	}
	return &c, nil
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := LoadCatalog(catalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Entry returns the catalog entry for a provider kind.
func (c *Catalog) Entry(k Kind) (Entry, bool) {
	for _, e := range c.Providers {
		if e.Kind == k {
			return e, true
		}
	}
	return Entry{}, false
}

// MaxTokens returns the output-token bound for a provider, or 4096 when
// the catalog does not set one.
func (c *Catalog) MaxTokens(k Kind) int {
	if e, ok := c.Entry(k); ok && e.MaxTokens > 0 {
		return e.MaxTokens
	}
	return 4096
}

// Supported reports whether model is one of the listed models.
func (c *Catalog) Supported(model string) bool {
	for _, e := range c.Providers {
		for _, m := range e.Models {
			if strings.EqualFold(m, model) {
				return true
			}
		}
	}
	return false
}

// Credentials holds one API key per provider. Empty fields are unset.
type Credentials struct {
	OpenAI    string
	Google    string
	Anthropic string
}

// For returns the key for a provider kind.
func (c Credentials) For(k Kind) string {
	switch k {
	case KindOpenAI:
		return c.OpenAI
	case KindGemini:
		return c.Google
	case KindAnthropic:
		return c.Anthropic
	default:
		return ""
	}
}

// With returns a copy of c with the key for k replaced.
func (c Credentials) With(k Kind, key string) Credentials {
	switch k {
	case KindOpenAI:
		c.OpenAI = key
	case KindGemini:
		c.Google = key
	case KindAnthropic:
		c.Anthropic = key
	}
	return c
}

// CredentialsFromEnv reads default keys using the environment variable
// names listed in the default catalog. The first non-empty variable wins.
func CredentialsFromEnv(getenv func(string) string) Credentials {
	var creds Credentials
	for _, e := range DefaultCatalog().Providers {
		for _, name := range e.Env {
			if v := strings.TrimSpace(getenv(name)); v != "" {
				creds = creds.With(e.Kind, v)
				break
			}
		}
	}
	return creds
}
