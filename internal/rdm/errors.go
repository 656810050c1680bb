package rdm

import "errors"

// Domain errors for the rdm package.
var (
	// ErrInvalidUID is returned when a UID string cannot be parsed.
	ErrInvalidUID = errors.New("rdm: invalid uid")

	// ErrUnknownPID is returned when a request names a parameter the
	// gateway has no handler for.
	ErrUnknownPID = errors.New("rdm: unknown pid")
)
