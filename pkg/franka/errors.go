package franka

import (
	"errors"
	"fmt"
)

// Sentinel errors for the franka package.
var (
	// ErrServerUnavailable indicates the action endpoint did not become
	// reachable within the connect window. No goal was submitted.
	ErrServerUnavailable = errors.New("franka: action server connection timed out")

	// ErrSubmitTimeout indicates a submitted goal stayed pending past
	// the submit window. The goal is canceled before this is returned.
	ErrSubmitTimeout = errors.New("franka: goal submission timed out")

	// ErrStopTimeout indicates the controller did not reach an idle
	// state within the stop window after a cancel.
	ErrStopTimeout = errors.New("franka: stop timed out")

	// ErrNotConnected indicates the action endpoint is not connected.
	ErrNotConnected = errors.New("franka: not connected to action server")

	// ErrConnectionClosed indicates the action connection was closed
	// while a goal was in flight.
	ErrConnectionClosed = errors.New("franka: action connection closed")
)

// GainError reports a stiffness or damping vector of the wrong length.
// It is returned before any request is sent.
type GainError struct {
	// Field is "stiffness" or "damping".
	Field string

	// Len is the length the caller supplied.
	Len int
}

// Error implements the error interface.
func (e *GainError) Error() string {
	return fmt.Sprintf("franka: %s must have %d entries, got %d", e.Field, gainDim, e.Len)
}

// GoalAbortedError reports that the daemon aborted a regulation goal.
// Detail carries the daemon's status payload for diagnostics.
type GoalAbortedError struct {
	GoalID string
	Detail string
}

// Error implements the error interface.
func (e *GoalAbortedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("franka: goal %s aborted", e.GoalID)
	}
	return fmt.Sprintf("franka: goal %s aborted: %s", e.GoalID, e.Detail)
}

// Error checking helpers.

// IsTimeout returns true if the error is any of the client's bounded
// waits expiring.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrServerUnavailable) ||
		errors.Is(err, ErrSubmitTimeout) ||
		errors.Is(err, ErrStopTimeout)
}

// IsAborted returns true if the error reports an aborted goal.
func IsAborted(err error) bool {
	var abortErr *GoalAbortedError
	return errors.As(err, &abortErr)
}
