package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dshills/mythra/internal/providers"
)

// Config represents the mythra configuration.
type Config struct {
	Model                 string    `yaml:"model"`
	Format                string    `yaml:"format"`
	TimeoutSeconds        int       `yaml:"timeoutSeconds"`
	MaxRetries            int       `yaml:"maxRetries"`
	RetryBaseDelaySeconds float64   `yaml:"retryBaseDelaySeconds"`
	Temperature           float64   `yaml:"temperature"`
	MaxConcurrency        int       `yaml:"maxConcurrency"`
	AbortOnFatal          bool      `yaml:"abortOnFatal"`
	Extensions            []string  `yaml:"extensions"`
	Exclude               []string  `yaml:"exclude"`
	RedactSecrets         bool      `yaml:"redactSecrets"`
	Endpoints             Endpoints `yaml:"endpoints,omitempty"`

	// Credentials come from the environment and .env only; they are never
	// written to the config file.
	Credentials providers.Credentials `yaml:"-"`
}

// Endpoints overrides provider base URLs, for proxies and gateways.
type Endpoints struct {
	OpenAI    string `yaml:"openai,omitempty"`
	Anthropic string `yaml:"anthropic,omitempty"`
	Gemini    string `yaml:"gemini,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Format:                "text",
		TimeoutSeconds:        int(providers.DefaultTimeout / time.Second),
		MaxRetries:            providers.DefaultMaxRetries,
		RetryBaseDelaySeconds: providers.DefaultBaseDelay.Seconds(),
		Temperature:           0.1,
		AbortOnFatal:          true,
		Extensions:            []string{".sol"},
		Exclude:               []string{"**/node_modules/**"},
	}
}

// Timeout returns the per-attempt timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryBaseDelay returns the first back-off delay.
func (c Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelaySeconds * float64(time.Second))
}

// ProviderOptions returns the client options derived from the endpoints.
func (c Config) ProviderOptions() providers.Options {
	return providers.Options{
		OpenAIBaseURL:    c.Endpoints.OpenAI,
		AnthropicBaseURL: c.Endpoints.Anthropic,
		GeminiBaseURL:    c.Endpoints.Gemini,
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.Format {
	case "text", "json", "markdown", "md":
	default:
		return fmt.Errorf("unsupported format %q (want text, json or markdown)", c.Format)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeoutSeconds must be positive, got %d", c.TimeoutSeconds)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("maxRetries must not be negative, got %d", c.MaxRetries)
	}
	if c.RetryBaseDelaySeconds < 0 {
		return fmt.Errorf("retryBaseDelaySeconds must not be negative, got %v", c.RetryBaseDelaySeconds)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("maxConcurrency must not be negative, got %d", c.MaxConcurrency)
	}
	return nil
}

// ConfigDir returns the platform-appropriate config directory for mythra.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mythra"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "mythra"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "mythra"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "mythra"), nil
	default:
		return filepath.Join(home, ".config", "mythra"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// loadFile decodes the config file over cfg, so keys absent from the file
// keep their current values. A missing file is not an error.
func loadFile(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// LoadFile returns the defaults with the config file applied.
func LoadFile() (Config, error) {
	cfg := Default()
	if err := loadFile(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadDotEnv loads variables from .env files into the process environment.
// Variables already set are not overridden and missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only flags the user set should
// be present).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()
	if err := loadFile(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	cfg.Credentials = providers.CredentialsFromEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var envKeys = map[string]string{
	"MYTHRA_MODEL":              "model",
	"MYTHRA_FORMAT":             "format",
	"MYTHRA_TIMEOUT":            "timeoutSeconds",
	"MYTHRA_MAX_RETRIES":        "maxRetries",
	"MYTHRA_RETRY_BASE_DELAY":   "retryBaseDelaySeconds",
	"MYTHRA_MAX_CONCURRENCY":    "maxConcurrency",
	"MYTHRA_OPENAI_BASE_URL":    "endpoints.openai",
	"MYTHRA_ANTHROPIC_BASE_URL": "endpoints.anthropic",
	"MYTHRA_GEMINI_BASE_URL":    "endpoints.gemini",
}

func mergeEnv(cfg *Config) error {
	for env, key := range envKeys {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return fmt.Errorf("flag override: %w", err)
		}
	}
	return nil
}

// Keys lists the settable config keys.
var Keys = []string{
	"model", "format", "timeoutSeconds", "maxRetries", "retryBaseDelaySeconds",
	"temperature", "maxConcurrency", "abortOnFatal", "extensions", "exclude", "redactSecrets",
	"endpoints.openai", "endpoints.anthropic", "endpoints.gemini",
}

// SetField sets a single config field by key name. Returns error if key is unknown.
// List values are comma-separated.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "model":
		cfg.Model = strings.TrimSpace(value)
	case "format":
		cfg.Format = value
	case "timeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeoutSeconds must be an integer: %w", err)
		}
		cfg.TimeoutSeconds = n
	case "maxRetries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxRetries must be an integer: %w", err)
		}
		cfg.MaxRetries = n
	case "retryBaseDelaySeconds":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("retryBaseDelaySeconds must be a number: %w", err)
		}
		cfg.RetryBaseDelaySeconds = f
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "maxConcurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxConcurrency must be an integer: %w", err)
		}
		cfg.MaxConcurrency = n
	case "abortOnFatal":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("abortOnFatal must be true or false: %w", err)
		}
		cfg.AbortOnFatal = b
	case "extensions":
		cfg.Extensions = splitList(value)
	case "exclude":
		cfg.Exclude = splitList(value)
	case "redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("redactSecrets must be true or false: %w", err)
		}
		cfg.RedactSecrets = b
	case "endpoints.openai":
		cfg.Endpoints.OpenAI = value
	case "endpoints.anthropic":
		cfg.Endpoints.Anthropic = value
	case "endpoints.gemini":
		cfg.Endpoints.Gemini = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
