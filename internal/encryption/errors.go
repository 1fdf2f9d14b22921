package encryption

import "errors"

var (
	// ErrAuthentication is returned when the stored tag does not match the body,
	// which covers a wrong password as well as a modified container.
	ErrAuthentication = errors.New("authentication failed")
	// ErrSameFile is returned when input and output resolve to the same path.
	ErrSameFile = errors.New("output would overwrite input")
)
