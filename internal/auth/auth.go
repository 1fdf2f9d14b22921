// Package auth computes the whole-file authentication tag.
//
// The tag is keyed BLAKE2b-512 over the ciphertext body, fed chunk by chunk in
// index order. Chunk boundaries do not influence the tag; order does.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// TagSize is the length of an authentication tag.
const TagSize = blake2b.Size

// ErrOutOfOrder is returned when chunks are not fed strictly in index order.
var ErrOutOfOrder = errors.New("chunk fed out of order")

// Tag is a whole-file authentication tag.
type Tag [TagSize]byte

// Authenticator accumulates ciphertext chunks. It is not safe for concurrent use.
type Authenticator struct {
	mac  hash.Hash
	next int
	size int64
}

// New returns an authenticator keyed with key (1 to 64 bytes).
func New(key []byte) (*Authenticator, error) {
	mac, err := blake2b.New512(key)
	if err != nil {
		return nil, fmt.Errorf("creating authenticator: %w", err)
	}

	return &Authenticator{mac: mac}, nil
}

// Update feeds the ciphertext of chunk index. Indices must start at 0 and increase by one.
func (a *Authenticator) Update(index int, chunk []byte) error {
	if index != a.next {
		return fmt.Errorf("%w: got chunk %d, want %d", ErrOutOfOrder, index, a.next)
	}

	a.mac.Write(chunk)
	a.next++
	a.size += int64(len(chunk))

	return nil
}

// Chunks returns the number of chunks fed so far.
func (a *Authenticator) Chunks() int {
	return a.next
}

// Size returns the number of bytes fed so far.
func (a *Authenticator) Size() int64 {
	return a.size
}

// Sum returns the tag over everything fed so far. It does not change the state.
func (a *Authenticator) Sum() Tag {
	var tag Tag

	a.mac.Sum(tag[:0])

	return tag
}

// Verify compares candidate against the computed tag in constant time.
func (a *Authenticator) Verify(candidate []byte) bool {
	tag := a.Sum()

	return subtle.ConstantTimeCompare(tag[:], candidate) == 1
}
