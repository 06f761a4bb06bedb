package transport

import "github.com/mdoc-proximity/mdoc-go/pkg/log"

// State is the lifecycle state of a transport.
type State int

const (
	// StateIdle is the initial state.
	StateIdle State = iota

	// StateScanning indicates the radio is powering on or scanning.
	StateScanning

	// StateConnecting indicates the peer was found and the link is being set up.
	StateConnecting

	// StateConnected indicates messages can be exchanged.
	StateConnected

	// StateFailed is terminal: an error ended the transport.
	StateFailed

	// StateClosed is terminal: the transport was closed by either side.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateScanning:
		return "SCANNING"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateFailed:
		return "FAILED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s State) IsTerminal() bool {
	return s == StateFailed || s == StateClosed
}

// canTransitionTo reports whether next is reachable from s. Progress is
// strictly forward; terminal states are reachable from any non-terminal one.
func (s State) canTransitionTo(next State) bool {
	if s.IsTerminal() {
		return false
	}
	if next.IsTerminal() {
		return true
	}
	return next > s
}

// Role is the party the local endpoint represents.
type Role int

const (
	// RoleHolder presents credentials.
	RoleHolder Role = iota

	// RoleReader requests and verifies credentials.
	RoleReader
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleHolder:
		return "HOLDER"
	case RoleReader:
		return "READER"
	default:
		return "UNKNOWN"
	}
}

func (r Role) logRole() log.Role {
	if r == RoleReader {
		return log.RoleReader
	}
	return log.RoleHolder
}
