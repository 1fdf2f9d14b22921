package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/obxr/internal/config"
)

// NewUnboxCommand creates a new cobra command for the unbox subcommand.
func NewUnboxCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "unbox [flags] files...",
		Short: "Authenticate and decrypt files, writing <stem><unbox-ext>",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Unbox = true

			return preRun(cfg)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfg)
		},
	}
}
