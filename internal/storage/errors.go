package storage

import "errors"

// Storage errors shared by all implementations.
var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLeaseNotHeld is returned when releasing a tick lease that the
	// caller does not hold.
	ErrLeaseNotHeld = errors.New("tick lease not held")
)
