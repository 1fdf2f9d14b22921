// Package config holds the runtime configuration of obxr.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/idelchi/obxr/internal/kdf"
)

// Suffixes are the extensions given to produced files.
type Suffixes struct {
	// Box replaces the input's extension on encryption
	Box string `mapstructure:"box-ext" validate:"required,startswith=."`
	// Unbox replaces the container's extension on decryption
	Unbox string `mapstructure:"unbox-ext" validate:"required,startswith=."`
}

// Config holds the application configuration.
type Config struct {
	// Threads bounds both the worker pool and the key derivation parallelism
	Threads int `validate:"min=1,max=255"`

	// Memory is the chunk size in KB
	Memory int `validate:"min=1,max=4194304"`

	// Argon is the key derivation memory cost in KiB
	Argon int `validate:"min=8,max=4194304"`

	// Passes is the key derivation time cost
	Passes int `validate:"min=1,max=64"`

	// Suffixes for produced files
	Suffixes `mapstructure:",squash"`

	// Include selects files when walking directories
	Include []string

	// Exclude drops files when walking directories
	Exclude []string

	// IncludeFile is a JSONC file with more include patterns
	IncludeFile string `mapstructure:"include-file" validate:"omitempty,file"`

	// ExcludeFile is a JSONC file with more exclude patterns
	ExcludeFile string `mapstructure:"exclude-file" validate:"omitempty,file"`

	// PasswordFile reads the password from a file instead of prompting
	PasswordFile string `mapstructure:"password-file" validate:"omitempty,file"`

	// Show the configuration and exit
	Show bool

	// Quiet suppresses non-error output
	Quiet bool `validate:"exclusive=Verbose"`

	// Verbose logs progress of each step
	Verbose bool

	// Stats prints a summary after processing
	Stats bool

	// Delete the input after it was processed successfully
	Delete bool

	// PreserveTimestamps copies the modification time of the input
	PreserveTimestamps bool `mapstructure:"preserve-timestamps"`

	// Unbox selects decryption instead of encryption
	Unbox bool `mapstructure:"-"`

	// Files are the positional arguments
	Files []string `mapstructure:"-" validate:"min=1,dive,required"`
}

// ChunkSize returns the memory budget per chunk in bytes.
func (c Config) ChunkSize() int {
	const kilobyte = 1024

	return c.Memory * kilobyte
}

// KDF returns the key derivation cost.
func (c Config) KDF() (kdf.Params, error) {
	return kdf.NewParams(c.Passes, c.Argon, c.Threads)
}

// Extension returns the extension for outputs of the selected operation.
func (c Config) Extension() string {
	if c.Unbox {
		return c.Suffixes.Unbox
	}

	return c.Suffixes.Box
}

// Validate validates the configuration against the struct tags and the key derivation limits.
func (c Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := registerExclusive(validate); err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			return fmt.Errorf("validating configuration: %s", describe(fieldErrors))
		}

		return fmt.Errorf("validating configuration: %w", err)
	}

	if _, err := c.KDF(); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	return nil
}

// describe renders validation failures as flag-oriented messages.
func describe(errs validator.ValidationErrors) string {
	messages := make([]string, 0, len(errs))

	for _, fe := range errs {
		name := strings.ToLower(fe.Field())

		switch fe.Tag() {
		case "exclusive":
			messages = append(messages, fmt.Sprintf("%s and %s are mutually exclusive", name, strings.ToLower(fe.Param())))
		case "min", "max":
			messages = append(messages, fmt.Sprintf("%s must be %s %s, got %v", name, bound(fe.Tag()), fe.Param(), fe.Value()))
		case "file":
			messages = append(messages, fmt.Sprintf("%s %q does not exist", name, fe.Value()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %q validation", name, fe.Tag()))
		}
	}

	return strings.Join(messages, "; ")
}

func bound(tag string) string {
	if tag == "min" {
		return "at least"
	}

	return "at most"
}
