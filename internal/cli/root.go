package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
	ExitInterrupted  = 130
)

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:   "mythra",
	Short: "LLM-assisted Solidity gas optimization",
	Long:  "Mythra sends Solidity sources to an LLM provider and collects structured gas optimization suggestions.",
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// commandLine is the invocation recorded in report metadata.
var commandLine string

// Run executes the root command with the process arguments and returns an
// exit code.
func Run() int {
	return Execute(os.Args[1:], os.Stdout, os.Stderr)
}

// Execute runs the command tree with args, writing to stdout and stderr.
func Execute(args []string, stdout, stderr io.Writer) int {
	exitCode = ExitSuccess
	commandLine = strings.TrimSpace("mythra " + strings.Join(args, " "))

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}
	return exitCode
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print mythra version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mythra version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log every request and per-file progress to stderr")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(versionCmd)
}
