package models

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by repositories and services. Handlers map these
// onto HTTP statuses; nothing in the core retries them.
var (
	// ErrNotFound means the operation targeted an id with no record.
	ErrNotFound = errors.New("donation not found")

	// ErrUnavailable means the datastore is not initialized or unreachable.
	ErrUnavailable = errors.New("database not initialized")
)

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports a lifecycle transition attempted from a state that
// does not permit it. Current carries the status found at decision time.
type ConflictError struct {
	Op      string
	Current string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot %s donation in status %q", e.Op, e.Current)
}
