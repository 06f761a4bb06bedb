package transport

import (
	"errors"
	"fmt"
)

// Transport errors.
var (
	// ErrInvalidState indicates an operation called from a state that does
	// not permit it. The transport state is unchanged.
	ErrInvalidState = errors.New("invalid transport state")

	// ErrTerminationUnsupported indicates a zero-length send on a channel
	// without an in-band end-of-session marker (L2CAP).
	ErrTerminationUnsupported = errors.New("transport-specific termination not available with L2CAP")

	// ErrClosedWhileWaiting indicates WaitForMessage ended because the
	// transport was closed. Callers may treat it as a graceful shutdown.
	ErrClosedWhileWaiting = errors.New("transport closed while waiting for message")

	// ErrClosed is the cancellation cause of an operation interrupted by Close.
	ErrClosed = errors.New("transport closed")

	// ErrConnectionLost indicates the inbound queue ended without a close.
	ErrConnectionLost = errors.New("connection lost")
)

// Error reports a failed transport operation. The transport is FAILED
// when an Error is returned, and Err holds the original cause.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalidState(op string, want, got State) error {
	return fmt.Errorf("%w: %s expects %s, got %s", ErrInvalidState, op, want, got)
}
