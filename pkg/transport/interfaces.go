package transport

import (
	"context"
	"crypto/ecdh"
	"time"

	"github.com/mdoc-proximity/mdoc-go/pkg/connmethod"
)

// Transport is a connection-oriented proximity channel.
// Implemented by BleTransport.
type Transport interface {
	// Role returns the party this endpoint represents.
	Role() Role

	// ConnectionMethod describes how the peer finds this transport.
	ConnectionMethod() connmethod.Method

	// State returns the current lifecycle state.
	State() State

	// Watch streams state changes, starting with the current state.
	Watch(ctx context.Context) <-chan State

	// ScanningDuration returns the time spent scanning, once known.
	ScanningDuration() (time.Duration, bool)

	// Advertise makes the transport discoverable, where that applies.
	Advertise(ctx context.Context) error

	// Open connects to the peer. eSenderKey is the peer's ephemeral key
	// from engagement, used to authenticate it.
	Open(ctx context.Context, eSenderKey *ecdh.PublicKey) error

	// SendMessage sends one message. An empty message ends the session.
	SendMessage(ctx context.Context, msg []byte) error

	// WaitForMessage blocks until one message arrives.
	WaitForMessage(ctx context.Context) ([]byte, error)

	// Close ends the transport. It is idempotent and always returns nil.
	Close() error
}

// Compile-time interface satisfaction checks.
var _ Transport = (*BleTransport)(nil)
