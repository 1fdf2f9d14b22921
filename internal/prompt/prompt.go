// Package prompt obtains the password for box and unbox.
package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/awnumar/memguard"
	"golang.org/x/term"
)

var (
	// ErrMismatch is returned when the confirmation differs from the password.
	ErrMismatch = errors.New("passwords do not match")
	// ErrEmpty is returned for an empty password.
	ErrEmpty = errors.New("empty password")
)

// Reader reads a password, optionally with a confirmation.
type Reader struct {
	// In is the source; when it is a terminal, echo is disabled.
	In *os.File
	// Out receives the prompts.
	Out io.Writer
}

// NewReader reads from stdin and prompts on stderr.
func NewReader() *Reader {
	return &Reader{In: os.Stdin, Out: os.Stderr}
}

// Password prompts for the password and, if confirm is set, for a confirmation.
// The returned enclave holds the only copy; all intermediate buffers are wiped.
func (r *Reader) Password(confirm bool) (*memguard.Enclave, error) {
	password, err := r.read("Password: ")
	if err != nil {
		return nil, err
	}

	if len(password) == 0 {
		return nil, ErrEmpty
	}

	if confirm {
		again, err := r.read("Confirm: ")
		if err != nil {
			memguard.WipeBytes(password)

			return nil, err
		}

		equal := bytes.Equal(password, again)
		memguard.WipeBytes(again)

		if !equal {
			memguard.WipeBytes(password)

			return nil, ErrMismatch
		}
	}

	return memguard.NewEnclave(password), nil
}

func (r *Reader) read(label string) ([]byte, error) {
	fmt.Fprint(r.Out, label)

	fd := int(r.In.Fd()) //nolint:gosec // file descriptors fit in int

	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)

		fmt.Fprintln(r.Out)

		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}

		return password, nil
	}

	return readLine(r.In)
}

// FromFile reads the first line of path as the password.
func FromFile(path string) (*memguard.Enclave, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("opening password file: %w", err)
	}
	defer file.Close()

	password, err := readLine(file)
	if err != nil {
		return nil, err
	}

	if len(password) == 0 {
		return nil, ErrEmpty
	}

	return memguard.NewEnclave(password), nil
}

// readLine reads up to the first newline, dropping the line terminator.
// It reads one byte at a time so a following line (the confirmation) stays unread.
func readLine(r io.Reader) ([]byte, error) {
	const initialCap = 128

	line := make([]byte, 0, initialCap)
	buf := make([]byte, 1)

	for {
		n, err := r.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				break
			}

			if len(line) == cap(line) {
				grown := make([]byte, len(line), 2*cap(line))
				copy(grown, line)
				memguard.WipeBytes(line)
				line = grown
			}

			line = append(line, buf[0])
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			memguard.WipeBytes(line)

			return nil, fmt.Errorf("reading password: %w", err)
		}
	}

	buf[0] = 0

	return bytes.TrimSuffix(line, []byte("\r")), nil
}
