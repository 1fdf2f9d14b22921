package commands

import (
	"fmt"
	"io"

	"github.com/awnumar/memguard"
	"github.com/goccy/go-yaml"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/idelchi/obxr/internal/config"
	"github.com/idelchi/obxr/internal/logic"
	"github.com/idelchi/obxr/internal/prompt"
)

// run obtains the password and hands the files to the logic layer.
func run(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.Show {
		return show(cmd.OutOrStdout(), cfg)
	}

	password, err := password(cfg, prompt.NewReader())
	if err != nil {
		return err
	}

	return logic.Run(cmd.Context(), cfg, password, newLogger(cmd.ErrOrStderr(), cfg))
}

// password reads the password from the configured file or prompts for it,
// asking for a confirmation on both box and unbox.
func password(cfg *config.Config, reader *prompt.Reader) (*memguard.Enclave, error) {
	if cfg.PasswordFile != "" {
		return prompt.FromFile(cfg.PasswordFile)
	}

	return reader.Password(true)
}

func newLogger(w io.Writer, cfg *config.Config) *logrus.Logger {
	log := logrus.New()

	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	switch {
	case cfg.Verbose:
		log.SetLevel(logrus.DebugLevel)
	case cfg.Quiet:
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

func show(w io.Writer, cfg *config.Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling configuration: %w", err)
	}

	_, err = w.Write(out)

	return err
}
