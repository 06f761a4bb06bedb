package transport

import (
	"context"
	"crypto/ecdh"
	"fmt"

	"github.com/mdoc-proximity/mdoc-go/pkg/connmethod"
	"github.com/mdoc-proximity/mdoc-go/pkg/log"
)

// bootstrapper is the mode-specific half of a BLE transport. The set of
// implementations is closed; only central client mode exists in this
// package.
type bootstrapper interface {
	// bootstrap takes the transport from IDLE to CONNECTED. Runs with the
	// transport lock held.
	bootstrap(ctx context.Context, eSenderKey *ecdh.PublicKey) error
	advertise(ctx context.Context) error
	send(ctx context.Context, msg []byte) error
	writeEnd(ctx context.Context) error
	incoming() <-chan []byte
	channel() log.Channel
}

// BleTransport is a transport over Bluetooth Low Energy.
type BleTransport struct {
	*machine
	method  connmethod.BLE
	variant bootstrapper
}

// ConnectionMethod returns the BLE connection method for this transport.
func (t *BleTransport) ConnectionMethod() connmethod.Method {
	return t.method.Clone()
}

// Advertise is a no-op in central mode.
func (t *BleTransport) Advertise(ctx context.Context) error {
	return t.variant.advertise(ctx)
}

// Open connects to the peer. It must be called exactly once, from IDLE.
// On failure the transport is FAILED and the returned *Error wraps the cause.
func (t *BleTransport) Open(ctx context.Context, eSenderKey *ecdh.PublicKey) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s := t.State(); s != StateIdle {
		return invalidState("open", StateIdle, s)
	}

	err := t.runTask(ctx, func(ctx context.Context) error {
		return t.variant.bootstrap(ctx, eSenderKey)
	})
	if err != nil {
		t.failLocked(err)
		return &Error{Op: "open", Err: err}
	}
	return nil
}

// SendMessage sends msg to the peer. An empty msg ends the session by
// writing END to the state characteristic; on L2CAP, where no such marker
// exists, it fails with ErrTerminationUnsupported and the state is kept.
func (t *BleTransport) SendMessage(ctx context.Context, msg []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s := t.State(); s != StateConnected {
		return invalidState("send", StateConnected, s)
	}
	if len(msg) == 0 && t.variant.channel() == log.ChannelL2CAP {
		return ErrTerminationUnsupported
	}

	err := t.runTask(ctx, func(ctx context.Context) error {
		if len(msg) == 0 {
			return t.variant.writeEnd(ctx)
		}
		return t.variant.send(ctx, msg)
	})
	if err != nil {
		t.failLocked(err)
		return &Error{Op: "send", Err: err}
	}
	return nil
}

// WaitForMessage blocks until a message arrives, ctx is done, or the link
// ends. The transport lock is not held while blocked.
//
// When the link ends because the transport was closed, ErrClosedWhileWaiting
// is returned. Otherwise the transport fails. The classification is best
// effort: a close racing with a link failure may be reported either way.
func (t *BleTransport) WaitForMessage(ctx context.Context) ([]byte, error) {
	t.mu.Lock()
	s := t.State()
	t.mu.Unlock()
	if s != StateConnected {
		return nil, invalidState("wait", StateConnected, s)
	}

	select {
	case msg, ok := <-t.variant.incoming():
		if ok {
			t.logEvent(log.Event{
				Direction: log.DirectionIn,
				Layer:     log.LayerTransport,
				Category:  log.CategoryMessage,
				Channel:   t.variant.channel(),
				Frame:     log.NewFrameEvent(msg),
			})
			return msg, nil
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if t.State() == StateClosed {
		return nil, ErrClosedWhileWaiting
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State() == StateClosed {
		return nil, ErrClosedWhileWaiting
	}
	err := ErrConnectionLost
	if t.failCause != nil {
		err = fmt.Errorf("%w: %w", ErrConnectionLost, t.failCause)
	}
	t.failLocked(err)
	return nil, &Error{Op: "wait", Err: err}
}

// Close cancels any operation in flight, then closes the transport and
// releases the radio. Closing a FAILED or CLOSED transport does nothing.
func (t *BleTransport) Close() error {
	t.cancelInFlight(ErrClosed)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked("closed by application")
	return nil
}

// onError handles an asynchronous radio failure.
func (t *BleTransport) onError(err error) {
	if err == nil {
		err = ErrConnectionLost
	}
	t.cancelInFlight(err)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.failLocked(err)
}

// onClosed handles a disconnect initiated by the peer or the radio.
func (t *BleTransport) onClosed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked("closed by peer")
}
