package model

import "errors"

// The three failure kinds every registry operation can surface. Operations
// wrap these with context via %w so callers can classify with errors.Is.
var (
	// ErrUnauthorized is returned when the caller lacks the role or
	// record-specific permission an operation requires.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrModuleInactive is returned when a referenced training module is
	// absent or deactivated at record-creation time.
	ErrModuleInactive = errors.New("training module missing or inactive")

	// ErrRecordInactive is returned when a referenced training record is
	// absent or inactive at completion time.
	ErrRecordInactive = errors.New("training record missing or inactive")
)
