package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/mythra/internal/config"
	"github.com/dshills/mythra/internal/providers"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Provider and model information",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers, models and credential variables",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, e := range providers.DefaultCatalog().Providers {
			status := "no key"
			for _, env := range e.Env {
				if os.Getenv(env) != "" {
					status = "key set via " + env
					break
				}
			}
			fmt.Fprintf(out, "%s (%s):\n", e.Label, status)
			fmt.Fprintf(out, "  prefixes: %s\n", strings.Join(e.Prefixes, ", "))
			fmt.Fprintf(out, "  env:      %s\n", strings.Join(e.Env, ", "))
			for _, m := range e.Models {
				fmt.Fprintf(out, "  - %s\n", m)
			}
			fmt.Fprintln(out)
		}
	},
}

var modelsRouteCmd = &cobra.Command{
	Use:   "route <model>",
	Short: "Show which provider and credential a model name resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		con := newConsole(cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err := config.LoadDotEnv(); err != nil {
			con.warnf("%v", err)
		}
		router := providers.NewRouter(providers.CredentialsFromEnv(os.Getenv))
		spec, err := router.Resolve(args[0], providers.Credentials{})
		if err != nil {
			con.errorf("%v", err)
			exitCode = exitCodeFor(err)
			return nil
		}
		fmt.Fprintf(con.out, "provider: %s\nmodel:    %s\nkey:      %s\n", spec.Kind, spec.Model, maskKey(spec.APIKey))
		return nil
	},
}

// maskKey hides all but the last four characters of a key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsRouteCmd)
}
