package encryption

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tink-crypto/tink-go/v2/subtle/random"

	"github.com/idelchi/obxr/internal/auth"
	"github.com/idelchi/obxr/internal/container"
	"github.com/idelchi/obxr/internal/kdf"
	"github.com/idelchi/obxr/internal/schedule"
	"github.com/idelchi/obxr/internal/stream"
)

const (
	// DefaultThreads is the default worker count.
	DefaultThreads = 4
	// DefaultChunkSize is the default chunk size (16 MiB).
	DefaultChunkSize = 16 * 1024 * 1024
)

// DefaultContext binds derived secrets to this container format.
var DefaultContext = []byte("obxr/box/v1") //nolint:gochecknoglobals

// Options configure a Processor.
type Options struct {
	// Threads bounds the number of chunks processed concurrently.
	Threads int
	// ChunkSize is the memory budget per chunk in bytes; a multiple of 64.
	ChunkSize int
	// KDF holds the key derivation cost.
	KDF kdf.Params
	// Context is bound into the derived secret. Defaults to DefaultContext.
	Context []byte
	// PreserveTimestamps copies the input's modification time to the output.
	PreserveTimestamps bool
	// Logger receives progress messages. Defaults to a discarding logger.
	Logger *logrus.Logger
	// Rand overrides the salt source. Defaults to tink's system randomness.
	Rand io.Reader
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		Threads:   DefaultThreads,
		ChunkSize: DefaultChunkSize,
		KDF:       kdf.DefaultParams(),
	}
}

// Processor boxes and unboxes files. A Processor holds no key material; every
// call derives, uses and destroys its own secret, so calls may run concurrently.
type Processor struct {
	opts Options
	log  *logrus.Logger
}

// New validates opts and returns a Processor.
func New(opts Options) (*Processor, error) {
	if opts.Threads < 1 {
		return nil, fmt.Errorf("threads must be at least 1, got %d", opts.Threads)
	}

	if opts.ChunkSize < stream.BlockSize || opts.ChunkSize%stream.BlockSize != 0 {
		return nil, fmt.Errorf("chunk size must be a positive multiple of %d bytes, got %d", stream.BlockSize, opts.ChunkSize)
	}

	if err := opts.KDF.Validate(); err != nil {
		return nil, fmt.Errorf("validating key derivation cost: %w", err)
	}

	if opts.Context == nil {
		opts.Context = DefaultContext
	}

	log := opts.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	return &Processor{opts: opts, log: log}, nil
}

// newSalt returns a fresh salt for one box call.
func (p *Processor) newSalt() ([]byte, error) {
	if p.opts.Rand == nil {
		return random.GetRandomBytes(container.SaltSize), nil
	}

	salt := make([]byte, container.SaltSize)
	if _, err := io.ReadFull(p.opts.Rand, salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	return salt, nil
}

// OutputPath replaces the extension of input with ext, keeping the directory and stem.
// Inputs without a stem (".profile") keep their full name.
func OutputPath(input, ext string) string {
	stem := strings.TrimSuffix(input, filepath.Ext(input))
	if stem == "" || os.IsPathSeparator(stem[len(stem)-1]) {
		stem = input
	}

	return stem + ext
}

// checkPaths rejects an output that would clobber the input.
func checkPaths(input, output string) error {
	in, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", input, err)
	}

	out, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", output, err)
	}

	if in == out {
		return fmt.Errorf("%w: %q", ErrSameFile, input)
	}

	return nil
}

// covered reports an error unless mac consumed exactly the chunks and bytes of plan.
func covered(mac *auth.Authenticator, plan schedule.Plan) error {
	if mac.Chunks() != plan.Count() || mac.Size() != plan.Length {
		return fmt.Errorf("%w: authenticated %d chunks (%d bytes), planned %d (%d bytes)",
			schedule.ErrScheduler, mac.Chunks(), mac.Size(), plan.Count(), plan.Length)
	}

	return nil
}

// readChunk fills buf from r at off. A short read means the file shrank underneath us.
func readChunk(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}

	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}

	return fmt.Errorf("reading %d bytes at offset %d: %w", len(buf), off, err)
}
