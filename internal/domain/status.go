package domain

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of a posting. Mutated only through the
// curation interface or the explicit reset operation, never by re-scraping.
type Status string

const (
	StatusNew      Status = "new"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusApplied  Status = "applied"
	StatusIgnored  Status = "ignored"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// ParseStatus validates a status string from an external caller.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusApproved, StatusRejected, StatusApplied, StatusIgnored:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Terminal states admit no transition except the explicit reset.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusApplied, StatusIgnored:
		return true
	}
	return false
}

// transitions is the full table. Reset to "new" is intentionally absent:
// it goes through ResetStatus, not UpdateStatus.
var transitions = map[Status][]Status{
	StatusNew:      {StatusApproved, StatusRejected, StatusIgnored},
	StatusApproved: {StatusApplied, StatusIgnored},
}

// CanTransition reports whether from → to is allowed by curation or a
// terminal pipeline step.
func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Transition validates from → to, returning ErrInvalidTransition with
// context when the table forbids it.
func Transition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
