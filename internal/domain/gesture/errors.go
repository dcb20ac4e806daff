package gesture

import "errors"

// Errors for gesture parsing.
var (
	// ErrUnknownKind indicates an unrecognized gesture kind spelling.
	ErrUnknownKind = errors.New("unknown gesture kind")

	// ErrUnknownDirection indicates an unrecognized swipe direction spelling.
	ErrUnknownDirection = errors.New("unknown gesture direction")
)
