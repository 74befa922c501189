// Package cli wires together the Cobra command tree for the mythra binary.
//
// It defines the root command and all subcommands (analyze, config, models,
// version), binds flags, reads configuration, runs the analyzer, and maps
// failures to exit codes: 2 for usage and configuration errors, 3 for
// authentication failures, 4 for other runtime errors and 130 when
// interrupted.
package cli
