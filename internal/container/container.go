// Package container reads and writes the on-disk container format.
//
//	offset  length  field
//	0       64      authentication tag
//	64      16      key-derivation salt
//	80      -       ciphertext body, same length as the plaintext
package container

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// TagSize is the length of the authentication tag field.
	TagSize = 64
	// SaltSize is the length of the salt field.
	SaltSize = 16
	// HeaderSize is the length of the fixed header.
	HeaderSize = TagSize + SaltSize
	// BodyOffset is where the ciphertext body starts.
	BodyOffset = int64(HeaderSize)
)

var (
	// ErrContainer indicates a malformed container.
	ErrContainer = errors.New("container error")
	// ErrTruncated is returned for files shorter than the header.
	ErrTruncated = fmt.Errorf("%w: truncated header", ErrContainer)
)

// Header is the fixed container header.
type Header struct {
	Tag  [TagSize]byte
	Salt [SaltSize]byte
}

// NewHeader builds a header from tag and salt slices of the exact field lengths.
func NewHeader(tag, salt []byte) (Header, error) {
	var header Header

	if len(tag) != TagSize {
		return header, fmt.Errorf("%w: tag must be %d bytes, got %d", ErrContainer, TagSize, len(tag))
	}

	if len(salt) != SaltSize {
		return header, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrContainer, SaltSize, len(salt))
	}

	copy(header.Tag[:], tag)
	copy(header.Salt[:], salt)

	return header, nil
}

// MarshalBinary encodes the header as tag || salt.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)

	copy(buf, h.Tag[:])
	copy(buf[TagSize:], h.Salt[:])

	return buf, nil
}

// ParseHeader decodes the first HeaderSize bytes of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: got %d of %d bytes", ErrTruncated, len(data), HeaderSize)
	}

	return NewHeader(data[:TagSize], data[TagSize:HeaderSize])
}

// ReadHeader reads exactly HeaderSize bytes from r.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)

	n, err := io.ReadFull(r, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Header{}, fmt.Errorf("%w: got %d of %d bytes", ErrTruncated, n, HeaderSize)
	}

	if err != nil {
		return Header{}, fmt.Errorf("reading header: %w", err)
	}

	return ParseHeader(buf)
}

// WriteHeader overwrites bytes [0,HeaderSize) of w. Nothing past the header is touched.
func WriteHeader(w io.WriterAt, h Header) error {
	buf, err := h.MarshalBinary()
	if err != nil {
		return err
	}

	if _, err := w.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	return nil
}

// ReadHeaderFile reads the header of the container at path.
func ReadHeaderFile(path string) (Header, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Header{}, fmt.Errorf("opening container: %w", err)
	}
	defer file.Close()

	return ReadHeader(file)
}

// WriteHeaderFile opens the existing file at path and overwrites its header in place.
// It must only be called once the body is complete; the file is neither created nor truncated.
func WriteHeaderFile(path string, h Header) (err error) {
	file, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("opening container: %w", err)
	}

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing container: %w", cerr)
		}
	}()

	if err := WriteHeader(file, h); err != nil {
		return err
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing container: %w", err)
	}

	return nil
}
