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

// Unbox authenticates the container at input and decrypts it to output.
// Nothing is written to output unless the whole body authenticates.
// password is wiped before Unbox returns, whatever the outcome.
func (p *Processor) Unbox(ctx context.Context, input, output string, password []byte) (Result, error) {
	guard := memguard.NewBufferFromBytes(password)
	defer guard.Destroy()

	if err := checkPaths(input, output); err != nil {
		return Result{}, err
	}

	log := p.log.WithFields(logrus.Fields{"op": "unbox", "input": input})

	inFile, err := os.Open(filepath.Clean(input))
	if err != nil {
		return Result{}, fmt.Errorf("opening input file: %w", err)
	}
	defer inFile.Close()

	header, err := container.ReadHeader(inFile)
	if err != nil {
		return Result{}, fmt.Errorf("reading %q: %w", input, err)
	}

	info, err := inFile.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("getting file info for %q: %w", input, err)
	}

	plan, err := schedule.NewPlan(info.Size()-container.BodyOffset, p.opts.ChunkSize)
	if err != nil {
		return Result{}, err
	}

	log.Info("Checking password...")
	log.WithFields(logrus.Fields{
		"passes": p.opts.KDF.Passes, "memory_kib": p.opts.KDF.MemoryKiB, "threads": p.opts.KDF.Threads,
	}).Debug("Deriving key")

	sec, err := kdf.Derive(guard.Bytes(), header.Salt[:], p.opts.Context, p.opts.KDF)
	guard.Destroy()

	if err != nil {
		return Result{}, fmt.Errorf("deriving secret: %w", err)
	}
	defer sec.Destroy()

	log.WithFields(logrus.Fields{"chunks": plan.Count(), "threads": p.opts.Threads}).Info("Authenticating...")

	if err := p.authenticate(ctx, inFile, plan, sec, header.Tag[:]); err != nil {
		return Result{}, fmt.Errorf("unboxing %q: %w", input, err)
	}

	log.Info("Decrypting...")

	return p.decryptFile(ctx, inFile, input, output, plan, sec, header.Tag[:])
}

// authenticate recomputes the tag over the whole body without producing plaintext.
func (p *Processor) authenticate(ctx context.Context, inFile *os.File, plan schedule.Plan, sec *secret.Secret, tag []byte) error {
	mac, err := auth.New(sec.MACKey())
	if err != nil {
		return err
	}

	pool := newBufferPool(p.opts.ChunkSize)

	work := func(_ context.Context, chunk schedule.Chunk) ([]byte, error) {
		buf := pool.get(chunk.Size)

		if err := readChunk(inFile, buf, container.BodyOffset+chunk.Offset); err != nil {
			pool.put(buf)

			return nil, fmt.Errorf("reading ciphertext: %w", err)
		}

		return buf, nil
	}

	deliver := func(res schedule.Result) error {
		defer pool.put(res.Data)

		return mac.Update(res.Chunk.Index, res.Data)
	}

	if err := schedule.New(plan, p.opts.Threads).Run(ctx, work, deliver); err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}

	if err := covered(mac, plan); err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}

	if !mac.Verify(tag) {
		return ErrAuthentication
	}

	return nil
}

// decryptFile decrypts an authenticated body into a temp file. The tag is recomputed
// from the ciphertext actually decrypted and checked again before the rename, so a
// container modified after the first pass never reaches output.
//
//nolint:funlen
func (p *Processor) decryptFile(
	ctx context.Context,
	inFile *os.File,
	input, output string,
	plan schedule.Plan,
	sec *secret.Secret,
	tag []byte,
) (result Result, err error) {
	cipher, err := stream.New(sec.Key(), sec.Nonce())
	if err != nil {
		return Result{}, err
	}

	mac, err := auth.New(sec.MACKey())
	if err != nil {
		return Result{}, err
	}

	tc, err := fileutil.NewTempContext(input, output)
	if err != nil {
		return Result{}, fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	pool := newBufferPool(p.opts.ChunkSize)

	work := func(_ context.Context, chunk schedule.Chunk) ([]byte, error) {
		sealed := pool.get(chunk.Size)

		if err := readChunk(inFile, sealed, container.BodyOffset+chunk.Offset); err != nil {
			pool.put(sealed)

			return nil, fmt.Errorf("reading ciphertext: %w", err)
		}

		plain := pool.get(chunk.Size)
		defer pool.put(plain)

		copy(plain, sealed)

		if err := cipher.Process(chunk.Offset, plain); err != nil {
			pool.put(sealed)

			return nil, err
		}

		if _, err := tc.TmpFile.WriteAt(plain, chunk.Offset); err != nil {
			pool.put(sealed)

			return nil, fmt.Errorf("writing plaintext: %w", err)
		}

		return sealed, nil
	}

	deliver := func(res schedule.Result) error {
		defer pool.put(res.Data)

		return mac.Update(res.Chunk.Index, res.Data)
	}

	if err := schedule.New(plan, p.opts.Threads).Run(ctx, work, deliver); err != nil {
		return Result{}, fmt.Errorf("decrypting %q: %w", input, err)
	}

	if err := covered(mac, plan); err != nil {
		return Result{}, fmt.Errorf("decrypting %q: %w", input, err)
	}

	if !mac.Verify(tag) {
		return Result{}, fmt.Errorf("%w: %q changed during decryption", ErrAuthentication, input)
	}

	if err := tc.Close(); err != nil {
		return Result{}, err
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
