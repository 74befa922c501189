package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/mythra/internal/analysis"
	"github.com/dshills/mythra/internal/collect"
	"github.com/dshills/mythra/internal/config"
	"github.com/dshills/mythra/internal/events"
	"github.com/dshills/mythra/internal/output"
	"github.com/dshills/mythra/internal/providers"
	"github.com/dshills/mythra/internal/redact"
)

// Analyze flags
var (
	flagModel          string
	flagOpenAIKey      string
	flagGoogleKey      string
	flagAnthropicKey   string
	flagOutput         string
	flagFormat         string
	flagTimeout        int
	flagMaxRetries     int
	flagMaxConcurrency int
	flagContinue       bool
	flagExt            string
	flagExclude        string
	flagRedact         bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <target>",
	Short: "Analyze Solidity files for gas optimizations",
	Long: `Analyze a Solidity file, a directory (searched recursively) or a glob
pattern such as "contracts/**/*.sol". Each file is sent to the selected
model and the suggestions are aggregated into one report.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		exitCode = runAnalyze(ctx, cmd, args[0])
		return nil
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&flagModel, "model", "m", "", "Model name (e.g. gpt-4o, claude-3-opus-20240229, gemini-1.5-pro-latest)")
	f.StringVar(&flagOpenAIKey, "openai-key", "", "OpenAI API key (overrides OPENAI_API_KEY)")
	f.StringVar(&flagGoogleKey, "google-key", "", "Google API key (overrides GOOGLE_API_KEY)")
	f.StringVar(&flagAnthropicKey, "anthropic-key", "", "Anthropic API key (overrides ANTHROPIC_API_KEY)")
	f.StringVarP(&flagOutput, "output", "o", "", "Save the JSON report to this file")
	f.StringVar(&flagFormat, "format", "", "Console output format (text, json, markdown)")
	f.IntVar(&flagTimeout, "timeout", 0, "Per-request timeout in seconds")
	f.IntVar(&flagMaxRetries, "max-retries", 0, "Retries after the first attempt for transient failures")
	f.IntVar(&flagMaxConcurrency, "max-concurrency", 0, "Maximum concurrent requests (0 = unbounded)")
	f.BoolVar(&flagContinue, "continue-on-fatal", false, "Keep analyzing other files after an authentication or bad-request failure")
	f.StringVar(&flagExt, "ext", "", "Source file extensions (comma-separated, default .sol)")
	f.StringVar(&flagExclude, "exclude", "", "Exclude path globs (comma-separated)")
	f.BoolVar(&flagRedact, "redact", false, "Replace secret-looking literals (private keys, mnemonics, RPC keys) before sending")
}

// buildOverrides collects the config keys set on the command line.
func buildOverrides(cmd *cobra.Command) map[string]string {
	m := make(map[string]string)
	f := cmd.Flags()
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if f.Changed("timeout") {
		m["timeoutSeconds"] = strconv.Itoa(flagTimeout)
	}
	if f.Changed("max-retries") {
		m["maxRetries"] = strconv.Itoa(flagMaxRetries)
	}
	if f.Changed("max-concurrency") {
		m["maxConcurrency"] = strconv.Itoa(flagMaxConcurrency)
	}
	if flagContinue {
		m["abortOnFatal"] = "false"
	}
	if flagExt != "" {
		m["extensions"] = flagExt
	}
	if flagExclude != "" {
		m["exclude"] = flagExclude
	}
	if flagRedact {
		m["redactSecrets"] = "true"
	}
	return m
}

func flagCredentials() providers.Credentials {
	return providers.Credentials{
		OpenAI:    flagOpenAIKey,
		Google:    flagGoogleKey,
		Anthropic: flagAnthropicKey,
	}
}

func runAnalyze(ctx context.Context, cmd *cobra.Command, target string) int {
	con := newConsole(cmd.OutOrStdout(), cmd.ErrOrStderr())

	if err := config.LoadDotEnv(); err != nil {
		con.warnf("%v", err)
	}
	cfg, err := config.Load(buildOverrides(cmd))
	if err != nil {
		con.errorf("%v", err)
		return ExitUsageError
	}
	if cfg.Model == "" {
		con.errorf("no model specified; pass --model or run 'mythra config set model <name>'")
		fmt.Fprintln(con.err, "Run 'mythra models list' to see known models.")
		return ExitUsageError
	}
	if !providers.DefaultCatalog().Supported(cfg.Model) {
		con.warnf("model %q is not in the known model list; routing by name prefix", cfg.Model)
	}

	artifacts, err := collect.Collect(target, collect.Options{
		Extensions: cfg.Extensions,
		Exclude:    cfg.Exclude,
	})
	if err != nil {
		con.errorf("%v", err)
		return ExitUsageError
	}
	if cfg.RedactSecrets {
		redactArtifacts(con, artifacts)
	}
	fmt.Fprintf(con.err, "Analyzing %d file(s) with %s\n", len(artifacts), cfg.Model)

	obs := events.NewLogObserver(log.New(con.err, "", 0), flagVerbose)
	obs.Label = con.label

	opts := cfg.ProviderOptions()
	a := analysis.NewAnalyzer(providers.NewRouter(cfg.Credentials))
	a.Dial = func(ctx context.Context, spec providers.Spec) (providers.Provider, error) {
		return providers.New(ctx, spec, opts)
	}
	a.Observer = obs
	a.MaxRetries = cfg.MaxRetries
	a.BaseDelay = cfg.RetryBaseDelay()
	a.Timeout = cfg.Timeout()
	a.Temperature = cfg.Temperature
	a.MaxConcurrency = cfg.MaxConcurrency
	a.AbortOnFatal = cfg.AbortOnFatal

	report, err := a.Run(ctx, artifacts, cfg.Model, flagCredentials())
	if err != nil {
		code := exitCodeFor(err)
		reportRunError(con, err, code)
		return code
	}
	report.Metadata.Command = commandLine
	report.Metadata.TargetPath = target

	if err := output.WriteReport(con.out, report, cfg.Format); err != nil {
		con.errorf("writing output: %v", err)
		return ExitRuntimeError
	}

	if flagOutput != "" {
		if err := output.WriteFile(flagOutput, report); err != nil {
			if cfg.Format != "text" {
				_ = output.WriteReport(con.out, report, "text")
			}
			con.errorf("failed to write output file %s: %v", flagOutput, err)
			return ExitRuntimeError
		}
		con.successf("Results saved to %s", flagOutput)
	}
	return ExitSuccess
}

// redactArtifacts scrubs secrets from readable artifacts in place.
func redactArtifacts(con *console, artifacts []analysis.Artifact) {
	for i := range artifacts {
		if artifacts[i].Err != nil {
			continue
		}
		content, n := redact.Secrets(artifacts[i].Content)
		if n > 0 {
			artifacts[i].Content = content
			con.warnf("%s: redacted %d secret-looking value(s) before sending", artifacts[i].Path, n)
		}
	}
}

func reportRunError(con *console, err error, code int) {
	var fe *analysis.FatalError
	switch {
	case code == ExitInterrupted:
		con.warnf("analysis interrupted")
	case errors.As(err, &fe):
		// The observer already logged the failure and the abort.
		if code == ExitAuthError {
			fmt.Fprintln(con.err, "Check the API key for the selected model's provider.")
		}
	case errors.Is(err, providers.ErrMissingCredential):
		con.errorf("%v", err)
		fmt.Fprintln(con.err, "Set OPENAI_API_KEY, GOOGLE_API_KEY (or GEMINI_API_KEY) or ANTHROPIC_API_KEY, or pass --openai-key, --google-key or --anthropic-key.")
	default:
		con.errorf("%v", err)
	}
}

// exitCodeFor maps a run error to a process exit code.
func exitCodeFor(err error) int {
	var ie *providers.InvokeError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, providers.ErrUnknownProvider),
		errors.Is(err, providers.ErrMissingCredential),
		errors.Is(err, collect.ErrNoFiles):
		return ExitUsageError
	case errors.As(err, &ie) && ie.Class == providers.FatalAuth:
		return ExitAuthError
	case providers.IsAuthError(err):
		return ExitAuthError
	default:
		return ExitRuntimeError
	}
}
