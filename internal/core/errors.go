package core

import "errors"

var (
	// ErrNotConfirmed means ConfirmTermination ran without an open gate or
	// while a deletion was already in flight. Nothing was sent.
	ErrNotConfirmed = errors.New("termination not confirmed")

	// ErrBusy means a login or signup is already in flight.
	ErrBusy = errors.New("request already in flight")
)

// ValidationError is a local input problem. No request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// RejectedError carries the message to show the user for a failed login or
// signup. Err is the underlying cause.
type RejectedError struct {
	Message string
	Err     error
}

func (e *RejectedError) Error() string { return e.Message }

func (e *RejectedError) Unwrap() error { return e.Err }
