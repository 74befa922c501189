package providers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownProvider is returned when no provider prefix matches.
	ErrUnknownProvider = errors.New("unsupported or unknown model name")
	// ErrMissingCredential is returned when neither an override nor an
	// environment default supplies a key for the matched provider.
	ErrMissingCredential = errors.New("no API key provided or found in environment")
)

// precedence is the order in which prefix lists are checked. It is fixed
// so that overlapping prefix sets always resolve the same way.
var precedence = []Kind{KindGemini, KindOpenAI, KindAnthropic}

// Spec is a resolved routing decision for one run.
type Spec struct {
	Kind   Kind
	APIKey string
	Model  string
}

// Router maps model identifiers to providers and credentials.
type Router struct {
	catalog  *Catalog
	defaults Credentials
}

// NewRouter returns a router over the default catalog. defaults are the
// environment-sourced keys used when no override is given.
func NewRouter(defaults Credentials) *Router {
	return &Router{catalog: DefaultCatalog(), defaults: defaults}
}

// Resolve picks the provider for model, selects its API key and
// canonicalizes the model name. An override for the matched provider
// takes precedence over the router's default.
func (r *Router) Resolve(model string, overrides Credentials) (Spec, error) {
	model = strings.TrimSpace(model)
	kind, ok := r.match(model)
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownProvider, model)
	}

	key := strings.TrimSpace(overrides.For(kind))
	if key == "" {
		key = strings.TrimSpace(r.defaults.For(kind))
	}
	if key == "" {
		return Spec{}, fmt.Errorf("%w: %s model %q requested", ErrMissingCredential, kind, model)
	}

	return Spec{Kind: kind, APIKey: key, Model: canonicalModel(kind, model)}, nil
}

func (r *Router) match(model string) (Kind, bool) {
	lower := strings.ToLower(model)
	for _, k := range precedence {
		e, ok := r.catalog.Entry(k)
		if !ok {
			continue
		}
		for _, p := range e.Prefixes {
			if strings.HasPrefix(lower, strings.ToLower(p)) {
				return k, true
			}
		}
	}
	return "", false
}

// canonicalModel normalizes provider naming quirks. The Gemini API
// addresses models as "models/<name>".
func canonicalModel(k Kind, model string) string {
	if k == KindGemini && !strings.HasPrefix(model, "models/") {
		return "models/" + model
	}
	return model
}
