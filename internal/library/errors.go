package library

import "errors"

var (
	// ErrValidation marks requests rejected before any work is queued.
	ErrValidation = errors.New("invalid request")

	// ErrPermissionDenied is returned by every data operation while access
	// to the library is not granted.
	ErrPermissionDenied = errors.New("Permission Denial: This application is not allowed to access photo data.")

	// ErrNotFound covers malformed ids, vanished records and media that
	// could not be turned into the requested file.
	ErrNotFound = errors.New("Asset not found")
)

// ValidationError carries the message shown to the caller and matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(message string) error {
	return &ValidationError{Message: message}
}
