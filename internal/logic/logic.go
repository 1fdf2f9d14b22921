// Package logic runs box or unbox over the files selected on the command line.
package logic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/awnumar/memguard"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/idelchi/obxr/internal/config"
	"github.com/idelchi/obxr/internal/encryption"
)

// Run boxes or unboxes every file selected by cfg.Files using the password sealed in password.
// Directory arguments are expanded with Files. Files are processed one after another, each with the full thread budget. A failing
// file does not stop the others; all failures are returned joined.
func Run(ctx context.Context, cfg *config.Config, password *memguard.Enclave, log *logrus.Logger) error {
	start := time.Now()

	proc, err := NewProcessor(cfg, log)
	if err != nil {
		return fmt.Errorf("creating processor: %w", err)
	}

	files, scanned, err := Files(cfg)
	if err != nil {
		return err
	}

	var (
		processed, errored int
		totalSize          int64
		errs               []error
	)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)

			break
		}

		result := process(ctx, proc, cfg, file, password)

		if result.Error != nil {
			errored++

			fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", result.Input, result.Error)

			errs = append(errs, result.Error)

			continue
		}

		processed++

		totalSize += result.OutputSize

		report(cfg, result)
	}

	if cfg.Stats {
		printStats(os.Stderr, scanned, len(files), processed, errored, totalSize, time.Since(start))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d file(s) failed: %w", errored, len(files), errors.Join(errs...))
	}

	return nil
}

// NewProcessor builds the encryption engine from the configuration.
func NewProcessor(cfg *config.Config, log *logrus.Logger) (*encryption.Processor, error) {
	params, err := cfg.KDF()
	if err != nil {
		return nil, err
	}

	opts := encryption.DefaultOptions()

	opts.Threads = cfg.Threads
	opts.ChunkSize = cfg.ChunkSize()
	opts.KDF = params
	opts.PreserveTimestamps = cfg.PreserveTimestamps
	opts.Logger = log

	return encryption.New(opts)
}

// process runs a single file with a fresh copy of the password.
func process(
	ctx context.Context,
	proc *encryption.Processor,
	cfg *config.Config,
	file string,
	password *memguard.Enclave,
) encryption.Result {
	buf, err := password.Open()
	if err != nil {
		return encryption.Result{Input: file, Error: fmt.Errorf("opening password enclave: %w", err)}
	}
	defer buf.Destroy()

	// The engine wipes the password it is given, so it needs a writable buffer.
	buf.Melt()

	output := encryption.OutputPath(file, cfg.Extension())

	var result encryption.Result

	if cfg.Unbox {
		result, err = proc.Unbox(ctx, file, output, buf.Bytes())
	} else {
		result, err = proc.Box(ctx, file, output, buf.Bytes())
	}

	if err != nil {
		return encryption.Result{Input: file, Error: err}
	}

	return result
}

// report prints the outcome of a successful file and deletes the input if requested.
func report(cfg *config.Config, result encryption.Result) {
	verb := "Boxed"
	if cfg.Unbox {
		verb = "Unboxed"
	}

	if !cfg.Quiet {
		fmt.Printf("%s %q -> %q\n", verb, result.Input, result.Output) //nolint:forbidigo
	}

	if !cfg.Delete {
		return
	}

	if err := os.Remove(result.Input); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting %q: %v\n", result.Input, err)
	} else if !cfg.Quiet {
		fmt.Printf("Deleted %q\n", result.Input) //nolint:forbidigo
	}
}

func printStats(w io.Writer, scanned, total, processed, errored int, totalSize int64, duration time.Duration) {
	fmt.Fprintf(w, "\nStats\n")
	fmt.Fprintf(w, "  Scanned:   %d\n", scanned)
	fmt.Fprintf(w, "  Files:     %d\n", total)
	fmt.Fprintf(w, "  Processed: %d\n", processed)
	fmt.Fprintf(w, "  Errors:    %d\n", errored)
	//nolint:gosec // totalSize is always non-negative (sum of file sizes)
	fmt.Fprintf(w, "  Size:      %s\n", humanize.IBytes(uint64(max(0, totalSize))))
	fmt.Fprintf(w, "  Duration:  %s\n", duration.Round(time.Millisecond))
}
