package commands

import (
	"errors"
	"io/fs"

	"github.com/idelchi/obxr/internal/container"
	"github.com/idelchi/obxr/internal/encryption"
	"github.com/idelchi/obxr/internal/kdf"
	"github.com/idelchi/obxr/internal/schedule"
	"github.com/idelchi/obxr/internal/stream"
)

// Exit codes reported by the process.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitAuthentication = 2
	ExitContainer      = 3
	ExitKeyDerivation  = 4
	ExitIO             = 5
	ExitCipher         = 6
)

// ExitCode maps an error returned by the root command to a process exit code.
// When several files failed, the most significant failure wins.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, encryption.ErrAuthentication):
		return ExitAuthentication
	case errors.Is(err, container.ErrContainer):
		return ExitContainer
	case errors.Is(err, kdf.ErrKeyDerivation):
		return ExitKeyDerivation
	case errors.Is(err, stream.ErrCipher):
		return ExitCipher
	case errors.Is(err, schedule.ErrScheduler), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ExitIO
	default:
		return ExitFailure
	}
}
