package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/obxr/internal/config"
)

// NewBoxCommand creates a new cobra command for the box subcommand.
func NewBoxCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "box [flags] files...",
		Short: "Encrypt and tag files, writing <stem><box-ext>",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Unbox = false

			return preRun(cfg)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfg)
		},
	}
}
