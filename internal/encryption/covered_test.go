package encryption

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/obxr/internal/auth"
	"github.com/idelchi/obxr/internal/kdf"
	"github.com/idelchi/obxr/internal/schedule"
)

func TestCovered(t *testing.T) {
	t.Parallel()

	plan, err := schedule.NewPlan(100, 64)
	require.NoError(t, err)

	mac, err := auth.New(make([]byte, 32))
	require.NoError(t, err)

	require.NoError(t, mac.Update(0, make([]byte, 64)))
	require.ErrorIs(t, covered(mac, plan), schedule.ErrScheduler)

	require.NoError(t, mac.Update(1, make([]byte, 36)))
	require.NoError(t, covered(mac, plan))
}

func TestBoxLogsProgress(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	log := logrus.New()
	log.SetOutput(&out)
	log.SetLevel(logrus.InfoLevel)

	params, err := kdf.NewParams(1, 64, 1)
	require.NoError(t, err)

	proc, err := New(Options{Threads: 2, ChunkSize: 1024, KDF: params, Logger: log})
	require.NoError(t, err)

	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(input, make([]byte, 3000), 0o600))

	_, err = proc.Box(context.Background(), input, filepath.Join(dir, "in.bin"), []byte("pw"))
	require.NoError(t, err)

	logged := out.String()
	require.Contains(t, logged, "Checking password...")
	require.Contains(t, logged, "Encrypting...")
	require.Contains(t, logged, "bytes=3000")
	require.Contains(t, logged, "chunks=3")
	require.NotContains(t, logged, "Deriving key")
}
