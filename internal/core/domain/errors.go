package domain

import "errors"

// Sentinel errors returned by the core. All are recoverable caller errors;
// adapters translate them into transport-level responses (HTTP 400/409/404).
var (
	// ErrInvalidInput signals a malformed or out-of-range argument,
	// e.g. a non-positive progress amount.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIllegalTransition signals an operation that is not legal in the
	// current state, e.g. re-reviewing a progress entry that is no longer
	// pending.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrNotFound signals a reference to an unknown entity id.
	ErrNotFound = errors.New("not found")
)
