package secret_test

import (
	"bytes"
	"testing"

	"github.com/idelchi/obxr/internal/secret"
)

func TestPartition(t *testing.T) {
	t.Parallel()

	s := secret.New()
	defer s.Destroy()

	for i := range s.Bytes() {
		s.Bytes()[i] = byte(i)
	}

	if got := len(s.Key()); got != secret.KeySize {
		t.Fatalf("key length = %d, want %d", got, secret.KeySize)
	}

	if got := len(s.Nonce()); got != secret.NonceSize {
		t.Fatalf("nonce length = %d, want %d", got, secret.NonceSize)
	}

	if got := len(s.MACKey()); got != secret.MACKeySize {
		t.Fatalf("mac key length = %d, want %d", got, secret.MACKeySize)
	}

	if s.Key()[0] != 0 || s.Nonce()[0] != secret.KeySize || s.MACKey()[0] != secret.KeySize+secret.NonceSize {
		t.Fatalf("unexpected partition offsets")
	}

	joined := append(append(append([]byte{}, s.Key()...), s.Nonce()...), s.MACKey()...)
	if !bytes.Equal(joined, s.Bytes()) {
		t.Fatalf("partitions do not cover the secret")
	}
}

func TestDestroy(t *testing.T) {
	t.Parallel()

	s := secret.New()
	if len(s.Bytes()) != secret.Size {
		t.Fatalf("len(Bytes()) = %d, want %d", len(s.Bytes()), secret.Size)
	}

	s.Destroy()
	s.Destroy()

	if len(s.Bytes()) != 0 {
		t.Fatal("destroyed secret should not expose bytes")
	}
}
