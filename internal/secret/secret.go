// Package secret holds key material derived for a single box/unbox invocation.
//
// The material lives in a memguard.LockedBuffer: it is kept out of swap, guarded
// by canary pages and wiped when Destroy is called. Callers are expected to
// `defer s.Destroy()` right after acquisition so every exit path wipes it.
package secret

import (
	"github.com/awnumar/memguard"
)

const (
	// KeySize is the length of the stream cipher key.
	KeySize = 32
	// NonceSize is the length of the extended (XChaCha20) base nonce.
	NonceSize = 24
	// MACKeySize is the length of the authenticator key.
	MACKeySize = 32
	// Size is the total length of the derived secret.
	Size = KeySize + NonceSize + MACKeySize
)

// Secret is the derived key material, partitioned as key || nonce || mac key.
type Secret struct {
	buf *memguard.LockedBuffer
}

// New allocates a zeroed, mutable secret of Size bytes.
func New() *Secret {
	return &Secret{buf: memguard.NewBuffer(Size)}
}

// Bytes returns the whole secret. The slice is only valid until Destroy.
func (s *Secret) Bytes() []byte {
	return s.buf.Bytes()
}

// Key returns bytes [0,32).
func (s *Secret) Key() []byte {
	return s.buf.Bytes()[:KeySize]
}

// Nonce returns bytes [32,56).
func (s *Secret) Nonce() []byte {
	return s.buf.Bytes()[KeySize : KeySize+NonceSize]
}

// MACKey returns bytes [56,88).
func (s *Secret) MACKey() []byte {
	return s.buf.Bytes()[KeySize+NonceSize:]
}

// Destroy wipes and releases the secret. It is safe to call more than once.
func (s *Secret) Destroy() {
	s.buf.Destroy()
}
