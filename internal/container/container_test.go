package container_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/idelchi/obxr/internal/container"
)

func header(t *testing.T) container.Header {
	t.Helper()

	h, err := container.NewHeader(bytes.Repeat([]byte{0xAA}, container.TagSize), bytes.Repeat([]byte{0x55}, container.SaltSize))
	if err != nil {
		t.Fatalf("NewHeader: %v", err)
	}

	return h
}

func TestMarshalLayout(t *testing.T) {
	t.Parallel()

	buf, err := header(t).MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	if len(buf) != container.HeaderSize || container.BodyOffset != 80 {
		t.Fatalf("header is %d bytes, body offset %d", len(buf), container.BodyOffset)
	}

	if buf[0] != 0xAA || buf[63] != 0xAA || buf[64] != 0x55 || buf[79] != 0x55 {
		t.Fatalf("unexpected layout: % x", buf)
	}

	parsed, err := container.ParseHeader(buf)
	if err != nil {
		t.Fatal(err)
	}

	if parsed != header(t) {
		t.Fatal("parsed header differs")
	}
}

func TestWriteHeaderFilePreservesBody(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "file.bin")
	body := []byte("ciphertext body that must survive")

	// Simulate a finished body with an unset header.
	if err := os.WriteFile(path, append(make([]byte, container.HeaderSize), body...), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := container.WriteHeaderFile(path, header(t)); err != nil {
		t.Fatalf("WriteHeaderFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(data) != container.HeaderSize+len(body) {
		t.Fatalf("file length = %d, want %d", len(data), container.HeaderSize+len(body))
	}

	if !bytes.Equal(data[container.HeaderSize:], body) {
		t.Fatal("body was modified")
	}

	got, err := container.ReadHeaderFile(path)
	if err != nil {
		t.Fatalf("ReadHeaderFile: %v", err)
	}

	if got != header(t) {
		t.Fatal("read header differs from written header")
	}
}

func TestWriteHeaderFileRequiresExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.bin")

	if err := container.WriteHeaderFile(path, header(t)); err == nil {
		t.Fatal("expected error for missing file")
	}

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("WriteHeaderFile created the file")
	}
}

func TestTruncated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, size := range []int{0, 1, 63, 64, 79} {
		path := filepath.Join(dir, "short")
		if err := os.WriteFile(path, make([]byte, size), 0o600); err != nil {
			t.Fatal(err)
		}

		_, err := container.ReadHeaderFile(path)
		if !errors.Is(err, container.ErrTruncated) || !errors.Is(err, container.ErrContainer) {
			t.Errorf("size %d: error = %v, want %v", size, err, container.ErrTruncated)
		}
	}

	if _, err := container.ParseHeader(make([]byte, 79)); !errors.Is(err, container.ErrTruncated) {
		t.Errorf("ParseHeader: error = %v", err)
	}

	if _, err := container.ReadHeader(bytes.NewReader(make([]byte, 80))); err != nil {
		t.Errorf("exact header: %v", err)
	}
}

func TestNewHeaderLengths(t *testing.T) {
	t.Parallel()

	if _, err := container.NewHeader(make([]byte, 32), make([]byte, container.SaltSize)); !errors.Is(err, container.ErrContainer) {
		t.Errorf("short tag: error = %v", err)
	}

	if _, err := container.NewHeader(make([]byte, container.TagSize), make([]byte, 8)); !errors.Is(err, container.ErrContainer) {
		t.Errorf("short salt: error = %v", err)
	}
}
