package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/obxr/internal/config"
	"github.com/idelchi/obxr/internal/prompt"
)

func stdin(t *testing.T, input string) *prompt.Reader {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(path, []byte(input), 0o600))

	file, err := os.Open(path) //nolint:gosec
	require.NoError(t, err)

	t.Cleanup(func() { file.Close() })

	return &prompt.Reader{In: file, Out: &bytes.Buffer{}}
}

func TestPasswordConfirmedForBothOperations(t *testing.T) {
	for _, unbox := range []bool{false, true} {
		cfg := &config.Config{Unbox: unbox}

		_, err := password(cfg, stdin(t, "first\nsecond\n"))
		require.ErrorIs(t, err, prompt.ErrMismatch, "unbox=%v", unbox)

		enclave, err := password(cfg, stdin(t, "same\nsame\n"))
		require.NoError(t, err, "unbox=%v", unbox)

		buf, err := enclave.Open()
		require.NoError(t, err)
		require.Equal(t, "same", string(buf.Bytes()))
		buf.Destroy()
	}
}

func TestLoggerLevel(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want logrus.Level
	}{
		{name: "default shows progress", want: logrus.InfoLevel},
		{name: "verbose", cfg: config.Config{Verbose: true}, want: logrus.DebugLevel},
		{name: "quiet", cfg: config.Config{Quiet: true}, want: logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, newLogger(&bytes.Buffer{}, &tt.cfg).GetLevel())
		})
	}
}
