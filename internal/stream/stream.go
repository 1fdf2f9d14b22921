// Package stream provides the seekable XChaCha20 keystream used to encrypt chunks.
//
// A chunk at byte offset o of the body is transformed with the keystream
// starting at block o/64, so chunks can be processed in any order and on any
// goroutine while producing exactly the bytes a single sequential pass would.
package stream

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20"
)

const (
	// KeySize is the required key length.
	KeySize = chacha20.KeySize
	// NonceSize is the required (extended) nonce length.
	NonceSize = chacha20.NonceSizeX
	// BlockSize is the keystream block size. Chunk offsets must be aligned to it.
	BlockSize = 64

	// MaxLength is the amount of keystream available under one key and nonce.
	MaxLength = int64(1) << 32 * BlockSize
)

// ErrCipher reports a malformed key, nonce or keystream position.
var ErrCipher = errors.New("cipher error")

// Cipher holds the key and base nonce of one invocation. It is safe for concurrent use.
type Cipher struct {
	key   []byte
	nonce []byte
}

// New validates key and nonce. The slices are retained, not copied, so they
// stay under the caller's wipe-on-destroy control.
func New(key, nonce []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", ErrCipher, KeySize, len(key))
	}

	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrCipher, NonceSize, len(nonce))
	}

	return &Cipher{key: key, nonce: nonce}, nil
}

// Process XORs data in place with the keystream starting at byte offset.
// Encryption and decryption are the same operation.
func (c *Cipher) Process(offset int64, data []byte) error {
	if offset < 0 || offset%BlockSize != 0 {
		return fmt.Errorf("%w: offset %d is not aligned to %d bytes", ErrCipher, offset, BlockSize)
	}

	if offset+int64(len(data)) > MaxLength {
		return fmt.Errorf("%w: range [%d,%d) exceeds keystream limit", ErrCipher, offset, offset+int64(len(data)))
	}

	if len(data) == 0 {
		return nil
	}

	stream, err := chacha20.NewUnauthenticatedCipher(c.key, c.nonce)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCipher, err)
	}

	stream.SetCounter(uint32(offset / BlockSize)) //nolint:gosec // bounded by MaxLength
	stream.XORKeyStream(data, data)

	return nil
}
