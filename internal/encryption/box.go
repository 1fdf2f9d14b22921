package encryption

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/awnumar/memguard"
	"github.com/sirupsen/logrus"

	"github.com/idelchi/obxr/internal/auth"
	"github.com/idelchi/obxr/internal/container"
	"github.com/idelchi/obxr/internal/fileutil"
	"github.com/idelchi/obxr/internal/kdf"
	"github.com/idelchi/obxr/internal/schedule"
	"github.com/idelchi/obxr/internal/secret"
	"github.com/idelchi/obxr/internal/stream"
)

// Box encrypts input into a container at output.
// password is wiped before Box returns, whatever the outcome.
func (p *Processor) Box(ctx context.Context, input, output string, password []byte) (Result, error) {
	guard := memguard.NewBufferFromBytes(password)
	defer guard.Destroy()

	if err := checkPaths(input, output); err != nil {
		return Result{}, err
	}

	log := p.log.WithFields(logrus.Fields{"op": "box", "input": input})

	salt, err := p.newSalt()
	if err != nil {
		return Result{}, err
	}

	log.Info("Checking password...")
	log.WithFields(logrus.Fields{
		"passes": p.opts.KDF.Passes, "memory_kib": p.opts.KDF.MemoryKiB, "threads": p.opts.KDF.Threads,
	}).Debug("Deriving key")

	sec, err := kdf.Derive(guard.Bytes(), salt, p.opts.Context, p.opts.KDF)
	guard.Destroy()

	if err != nil {
		return Result{}, fmt.Errorf("deriving secret: %w", err)
	}
	defer sec.Destroy()

	return p.encryptFile(ctx, log, input, output, sec, salt)
}

// encryptFile writes the ciphertext body into a temp file, then the header, then renames.
//
//nolint:funlen
func (p *Processor) encryptFile(
	ctx context.Context,
	log *logrus.Entry,
	input, output string,
	sec *secret.Secret,
	salt []byte,
) (result Result, err error) {
	inFile, err := os.Open(filepath.Clean(input))
	if err != nil {
		return Result{}, fmt.Errorf("opening input file: %w", err)
	}
	defer inFile.Close()

	info, err := inFile.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("getting file info for %q: %w", input, err)
	}

	if !info.Mode().IsRegular() {
		return Result{}, fmt.Errorf("%q is not a regular file", input)
	}

	cipher, err := stream.New(sec.Key(), sec.Nonce())
	if err != nil {
		return Result{}, err
	}

	mac, err := auth.New(sec.MACKey())
	if err != nil {
		return Result{}, err
	}

	plan, err := schedule.NewPlan(info.Size(), p.opts.ChunkSize)
	if err != nil {
		return Result{}, err
	}

	if plan.Length > stream.MaxLength {
		return Result{}, fmt.Errorf("%w: %q is larger than %d bytes", stream.ErrCipher, input, stream.MaxLength)
	}

	tc, err := fileutil.NewTempContext(input, output)
	if err != nil {
		return Result{}, fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	pool := newBufferPool(p.opts.ChunkSize)

	work := func(_ context.Context, chunk schedule.Chunk) ([]byte, error) {
		buf := pool.get(chunk.Size)

		if err := readChunk(inFile, buf, chunk.Offset); err != nil {
			pool.put(buf)

			return nil, fmt.Errorf("reading plaintext: %w", err)
		}

		if err := cipher.Process(chunk.Offset, buf); err != nil {
			pool.put(buf)

			return nil, err
		}

		if _, err := tc.TmpFile.WriteAt(buf, container.BodyOffset+chunk.Offset); err != nil {
			pool.put(buf)

			return nil, fmt.Errorf("writing ciphertext: %w", err)
		}

		return buf, nil
	}

	deliver := func(res schedule.Result) error {
		defer pool.put(res.Data)

		return mac.Update(res.Chunk.Index, res.Data)
	}

	log.WithFields(logrus.Fields{"chunks": plan.Count(), "threads": p.opts.Threads}).Info("Encrypting...")

	if err := schedule.New(plan, p.opts.Threads).Run(ctx, work, deliver); err != nil {
		return Result{}, fmt.Errorf("encrypting %q: %w", input, err)
	}

	if err := covered(mac, plan); err != nil {
		return Result{}, fmt.Errorf("encrypting %q: %w", input, err)
	}

	tag := mac.Sum()

	header, err := container.NewHeader(tag[:], salt)
	if err != nil {
		return Result{}, err
	}

	if err := tc.Close(); err != nil {
		return Result{}, err
	}

	log.WithFields(logrus.Fields{"chunks": mac.Chunks(), "bytes": mac.Size()}).Info("Tagging...")

	if err := container.WriteHeaderFile(tc.TmpName, header); err != nil {
		return Result{}, fmt.Errorf("writing header: %w", err)
	}

	if err := tc.Commit(); err != nil {
		return Result{}, err
	}

	size, err := fileutil.FinalizeOutput(output, p.opts.PreserveTimestamps, tc.SrcInfo.ModTime())
	if err != nil {
		return Result{}, fmt.Errorf("finalizing output: %w", err)
	}

	return Result{Input: input, Output: output, OutputSize: size, Chunks: plan.Count()}, nil
}
