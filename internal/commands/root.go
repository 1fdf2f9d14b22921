package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/obxr/internal/config"
	"github.com/idelchi/obxr/internal/encryption"
	"github.com/idelchi/obxr/internal/kdf"
)

// NewRootCommand creates the root command with common configuration.
// All tuning flags are persistent so they can follow the subcommand.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "obxr [flags] command [flags]",
		Short: "Password-based file encryption",
		Long: `A password-based file encryption utility.

box encrypts and tags a file, unbox authenticates and decrypts it.
Key material is derived from the password with Argon2id; the file is
encrypted with XChaCha20 in parallel chunks and authenticated as a whole
with keyed BLAKE2b before any plaintext is released.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	flags := root.PersistentFlags()

	flags.IntP("threads", "t", encryption.DefaultThreads, "Maximum worker threads, also used as key derivation parallelism")
	flags.IntP("memory", "m", encryption.DefaultChunkSize/1024, "Maximum buffer (chunk) size in KB")
	flags.IntP("argon", "a", kdf.DefaultMemoryKiB, "Key derivation memory cost in KiB")
	flags.Int("passes", kdf.DefaultPasses, "Key derivation time cost")

	flags.String("box-ext", ".bin", "Extension given to boxed files")
	flags.String("unbox-ext", ".out", "Extension given to unboxed files")
	flags.StringSlice("include", nil, "Glob selecting files inside directory arguments (repeatable)")
	flags.StringSlice("exclude", nil, "Glob dropping files inside directory arguments (repeatable)")
	flags.String("include-file", "", "JSONC file with an array of include globs")
	flags.String("exclude-file", "", "JSONC file with an array of exclude globs")
	flags.String("password-file", "", "Read the password from the first line of this file instead of prompting")

	flags.BoolP("show", "s", false, "Show the configuration and exit")
	flags.BoolP("quiet", "q", false, "Suppress non-error output")
	flags.BoolP("verbose", "v", false, "Log each processing step")
	flags.Bool("stats", false, "Print a summary after processing")
	flags.BoolP("delete", "d", false, "Delete the input after successful processing")
	flags.BoolP("preserve-timestamps", "p", false, "Copy the input's modification time to the output")

	root.AddCommand(NewBoxCommand(cfg), NewUnboxCommand(cfg))

	return root
}
