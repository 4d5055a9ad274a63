package service

import (
	"errors"
	"fmt"
)

// ErrAlreadyActive is returned when a clock-in is attempted while the worker
// already has an active shift. The action is rejected; no retry is implied.
var ErrAlreadyActive = errors.New("worker already has an active shift")

// ErrNoActiveShift is returned when a clock-out is attempted with no active
// shift.
var ErrNoActiveShift = errors.New("no active shift")

// ErrMissingReason is returned when a rejection is attempted with an empty
// reason. The caller must supply one and retry.
var ErrMissingReason = errors.New("rejection reason is required")

// InvalidTransitionError reports a transition attempted from a state that
// does not permit it.
type InvalidTransitionError struct {
	ShiftID string
	From    string
	To      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for shift %s: %s -> %s", e.ShiftID, e.From, e.To)
}
