// Package config loads and merges mythra configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (MYTHRA_MODEL, MYTHRA_TIMEOUT, MYTHRA_MAX_RETRIES, etc.)
//  3. Config file ($XDG_CONFIG_HOME/mythra/config.yaml)
//  4. Built-in defaults
//
// Provider API keys are read from the environment only (OPENAI_API_KEY,
// GOOGLE_API_KEY or GEMINI_API_KEY, ANTHROPIC_API_KEY), optionally seeded
// from a .env file by [LoadDotEnv]. They are never persisted.
//
// Use [Load] to obtain a merged [Config], [Save] to write the config file,
// and [SetField] to update a single key.
package config
