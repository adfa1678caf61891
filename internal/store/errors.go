package store

import (
	"errors"
	"fmt"
)

// StoreError kinds. io_failure halts a run (continuing would silently
// lose data); conflict is retried once with a fresh read first.
const (
	ErrKindConflict  = "conflict"
	ErrKindIOFailure = "io_failure"
)

type StoreError struct {
	Kind string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store: %s: %v", e.Kind, e.Err)
	}
	return "store: " + e.Kind
}

func (e *StoreError) Unwrap() error { return e.Err }

var ErrNotFound = errors.New("posting not found")

// IsIOFailure reports whether err should abort the whole run.
func IsIOFailure(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == ErrKindIOFailure
}
