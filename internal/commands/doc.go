// Package commands provides the command-line interface for the obxr tool.
//
// It implements commands for:
//   - box: encrypt and tag
//   - unbox: authenticate and decrypt
//
// The package handles command-line parsing, configuration validation,
// environment variable binding through cobra and viper, password entry and
// the mapping of failures to exit codes.
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/obxr/internal/config"
)

// envPrefix is prepended to every flag when read from the environment, e.g. OBXR_THREADS.
const envPrefix = "OBXR"

// preRun returns a PreRunE handler that merges flags and environment into cfg,
// stores the positional args as cfg.Files and validates the configuration.
func preRun(cfg *config.Config) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		v := viper.New()

		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		v.AutomaticEnv()

		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("binding flags: %w", err)
		}

		if err := v.Unmarshal(cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}

		cfg.Files = args

		return cfg.Validate()
	}
}
