package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict reports a write rejected because the stored row changed underneath it.
	ErrConflict = errors.New("conflict")
	// ErrAlreadyExists reports a create that collided with a unique key.
	ErrAlreadyExists = errors.New("already exists")
)
