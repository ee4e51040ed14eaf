package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound is returned when no account exists for an id
	ErrAccountNotFound = errors.New("account not found")

	// ErrEntryNotFound is returned when no ledger entry exists for an id
	ErrEntryNotFound = errors.New("ledger entry not found")

	// ErrInvalidTransition is returned for any status change other than
	// pending -> completed or pending -> failed
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports a malformed field on a requested operation.
// It is rejected synchronously; no state is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
