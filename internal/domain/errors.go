package domain

import "errors"

var (
	// ErrDuplicateAssignment is returned when an order already holds a
	// non-cancelled planning entry.
	ErrDuplicateAssignment = errors.New("order already has an active planning entry")

	ErrTerminalState     = errors.New("planning entry is in a terminal state")
	ErrInvalidTransition = errors.New("invalid planning status transition")
	ErrInvalidProgress   = errors.New("progress must be between 0 and 100")
)
