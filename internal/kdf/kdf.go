// Package kdf turns a password and salt into the per-invocation secret.
//
// Argon2id provides the memory-hard stretching; HKDF-SHA512 expands the Argon2
// output into the full secret and binds it to a caller supplied context.
package kdf

import (
	"crypto/sha512"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"github.com/idelchi/obxr/internal/secret"
)

const (
	// SaltSize is the required salt length.
	SaltSize = 16

	// DefaultThreads is the default Argon2 parallelism.
	DefaultThreads = 4
	// DefaultMemoryKiB is the default Argon2 memory cost (128 MiB).
	DefaultMemoryKiB = 128 * 1024
	// DefaultPasses is the default Argon2 time cost.
	DefaultPasses = 3

	// MaxMemoryKiB caps the memory cost so a bad flag fails cleanly instead of exhausting the process.
	MaxMemoryKiB = 4 * 1024 * 1024

	masterKeySize = 64
)

// ErrKeyDerivation is returned for every failure to derive a secret.
var ErrKeyDerivation = errors.New("key derivation error")

// Params are the Argon2id cost parameters.
type Params struct {
	// Passes is the number of passes over memory (time cost).
	Passes uint32
	// MemoryKiB is the memory cost in KiB.
	MemoryKiB uint32
	// Threads is the degree of parallelism.
	Threads uint8
}

// DefaultParams returns the default cost parameters.
func DefaultParams() Params {
	return Params{
		Passes:    DefaultPasses,
		MemoryKiB: DefaultMemoryKiB,
		Threads:   DefaultThreads,
	}
}

// NewParams converts caller supplied budgets into Params, rejecting values that don't fit.
func NewParams(passes, memoryKiB, threads int) (Params, error) {
	switch {
	case passes < 1 || int64(passes) > math.MaxUint32:
		return Params{}, fmt.Errorf("%w: passes out of range: %d", ErrKeyDerivation, passes)
	case threads < 1 || threads > math.MaxUint8:
		return Params{}, fmt.Errorf("%w: threads out of range (1-%d): %d", ErrKeyDerivation, math.MaxUint8, threads)
	case memoryKiB < 1 || memoryKiB > MaxMemoryKiB:
		return Params{}, fmt.Errorf("%w: memory cost out of range (1-%d KiB): %d", ErrKeyDerivation, MaxMemoryKiB, memoryKiB)
	}

	params := Params{
		Passes:    uint32(passes),    //nolint:gosec // range checked above
		MemoryKiB: uint32(memoryKiB), //nolint:gosec // range checked above
		Threads:   uint8(threads),    //nolint:gosec // range checked above
	}

	return params, params.Validate()
}

// Validate checks the parameters against the limits of Argon2id.
func (p Params) Validate() error {
	switch {
	case p.Passes < 1:
		return fmt.Errorf("%w: at least one pass is required", ErrKeyDerivation)
	case p.Threads < 1:
		return fmt.Errorf("%w: at least one thread is required", ErrKeyDerivation)
	case p.MemoryKiB < 8*uint32(p.Threads):
		return fmt.Errorf("%w: memory cost must be at least 8 KiB per thread, got %d KiB for %d threads",
			ErrKeyDerivation, p.MemoryKiB, p.Threads)
	case p.MemoryKiB > MaxMemoryKiB:
		return fmt.Errorf("%w: memory cost %d KiB exceeds limit of %d KiB", ErrKeyDerivation, p.MemoryKiB, MaxMemoryKiB)
	}

	return nil
}

// Derive computes the secret for password and salt.
// The same inputs always produce the same secret. The caller owns the returned
// secret and must Destroy it; the caller also remains responsible for wiping password.
func Derive(password, salt, context []byte, params Params) (*secret.Secret, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: empty password", ErrKeyDerivation)
	}

	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrKeyDerivation, SaltSize, len(salt))
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	master := argon2.IDKey(password, salt, params.Passes, params.MemoryKiB, params.Threads, masterKeySize)
	defer memguard.WipeBytes(master)

	out := secret.New()

	if _, err := io.ReadFull(hkdf.New(sha512.New, master, salt, context), out.Bytes()); err != nil {
		out.Destroy()

		return nil, fmt.Errorf("%w: expanding secret: %w", ErrKeyDerivation, err)
	}

	return out, nil
}
