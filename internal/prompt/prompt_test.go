package prompt_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/awnumar/memguard"

	"github.com/idelchi/obxr/internal/prompt"
)

func open(t *testing.T, enclave *memguard.Enclave) string {
	t.Helper()

	buf, err := enclave.Open()
	if err != nil {
		t.Fatalf("opening enclave: %v", err)
	}
	defer buf.Destroy()

	// Copy out before Destroy unmaps the guarded pages.
	return string(buf.Bytes())
}

func pipeReader(t *testing.T, input string) *prompt.Reader {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(path, []byte(input), 0o600); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(path) //nolint:gosec
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { file.Close() })

	return &prompt.Reader{In: file, Out: &bytes.Buffer{}}
}

func TestPasswordConfirmed(t *testing.T) {
	t.Parallel()

	enclave, err := pipeReader(t, "s3cret\ns3cret\n").Password(true)
	if err != nil {
		t.Fatalf("Password: %v", err)
	}

	if got := open(t, enclave); got != "s3cret" {
		t.Fatalf("password = %q", got)
	}
}

func TestPasswordCRLF(t *testing.T) {
	t.Parallel()

	enclave, err := pipeReader(t, "s3cret\r\n").Password(false)
	if err != nil {
		t.Fatalf("Password: %v", err)
	}

	if got := open(t, enclave); got != "s3cret" {
		t.Fatalf("password = %q", got)
	}
}

func TestPasswordMismatch(t *testing.T) {
	t.Parallel()

	if _, err := pipeReader(t, "one\ntwo\n").Password(true); !errors.Is(err, prompt.ErrMismatch) {
		t.Fatalf("error = %v, want %v", err, prompt.ErrMismatch)
	}
}

func TestPasswordEmpty(t *testing.T) {
	t.Parallel()

	if _, err := pipeReader(t, "\n").Password(false); !errors.Is(err, prompt.ErrEmpty) {
		t.Fatalf("error = %v, want %v", err, prompt.ErrEmpty)
	}
}

func TestFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pw")
	if err := os.WriteFile(path, []byte("from-file\nignored\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	enclave, err := prompt.FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}

	if got := open(t, enclave); got != "from-file" {
		t.Fatalf("password = %q", got)
	}

	if _, err := prompt.FromFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
