// Package providers routes model identifiers to LLM backends and talks to
// them.
//
// Supported providers: Google (Gemini, via the genai SDK), OpenAI (GPT) and
// Anthropic (Claude). The model catalog, including routing prefixes and the
// environment variables holding default keys, is embedded from models.yaml.
//
// Each [Provider] performs exactly one attempt per call and classifies its
// own failures into a shared [Class]. The [Invoker] wraps a provider with
// per-attempt timeouts and exponential back-off for transient failures.
// HTTP clients are injectable so that tests can redirect calls to local
// httptest servers without making live API requests.
//
// Use [Router.Resolve] to pick a provider and key, then [New] to build it.
package providers
