package transport

import (
	"context"
	"crypto/ecdh"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mdoc-proximity/mdoc-go/pkg/ble"
	"github.com/mdoc-proximity/mdoc-go/pkg/connmethod"
	"github.com/mdoc-proximity/mdoc-go/pkg/log"
)

// central drives a CentralManager through the central client mode
// bootstrap: the holder scans for the reader and connects as GATT client.
type central struct {
	m           *machine
	manager     ble.CentralManager
	serviceUUID uuid.UUID
	psm         *int
}

// NewBleCentralTransport creates a transport that scans for a peripheral
// advertising serviceUUID. If psm is non-nil it was received during
// engagement and the transport connects to it directly, skipping GATT.
//
// The transport takes ownership of manager and registers its callbacks.
// manager must not invoke them synchronously from within its own methods.
func NewBleCentralTransport(role Role, opts Options, manager ble.CentralManager, serviceUUID uuid.UUID, psm *int) *BleTransport {
	opts = opts.withDefaults()
	if psm != nil {
		p := *psm
		psm = &p
	}

	c := &central{
		manager:     manager,
		serviceUUID: serviceUUID,
		psm:         psm,
	}
	t := &BleTransport{
		method:  connmethod.NewCentralClientMode(serviceUUID, psm),
		variant: c,
	}
	t.machine = newMachine(role, opts, serviceUUID.String(), manager.Close)
	c.m = t.machine

	manager.SetUUIDs(ble.CentralClientModeUUIDs(opts.UseL2CAP))
	manager.SetCallbacks(t.onError, t.onClosed)
	return t
}

func (c *central) bootstrap(ctx context.Context, eSenderKey *ecdh.PublicKey) error {
	c.m.setStateLocked(StateScanning, "open")

	if err := c.step(ctx, "wait for power on", c.manager.WaitForPowerOn); err != nil {
		return err
	}
	started := time.Now()
	err := c.step(ctx, "scan", func(ctx context.Context) error {
		return c.manager.WaitForPeripheralWithUUID(ctx, c.serviceUUID)
	})
	if err != nil {
		return err
	}
	c.m.recordScanningDurationLocked(time.Since(started))
	c.m.setStateLocked(StateConnecting, "peripheral found")

	if c.psm != nil {
		c.m.logger.Info("connecting directly to PSM", "psm", *c.psm)
		if err := c.connectL2CAP(ctx, *c.psm); err != nil {
			return err
		}
	} else if err := c.connectGATT(ctx, eSenderKey); err != nil {
		return err
	}

	c.m.setStateLocked(StateConnected, c.channel().String())
	return nil
}

func (c *central) connectGATT(ctx context.Context, eSenderKey *ecdh.PublicKey) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"connect", c.manager.ConnectToPeripheral},
		{"request mtu", c.manager.RequestMTU},
		{"discover services", func(ctx context.Context) error {
			return c.manager.PeripheralDiscoverServices(ctx, c.serviceUUID)
		}},
		{"discover characteristics", c.manager.PeripheralDiscoverCharacteristics},
		{"check reader ident", func(ctx context.Context) error {
			return c.manager.CheckReaderIdentMatches(ctx, eSenderKey)
		}},
	}
	for _, s := range steps {
		if err := c.step(ctx, s.name, s.fn); err != nil {
			return err
		}
	}

	if psm, ok := c.manager.L2CAPPSM(); ok {
		c.m.logger.Info("peer offers L2CAP", "psm", psm)
		return c.connectL2CAP(ctx, psm)
	}
	if err := c.step(ctx, "subscribe", c.manager.SubscribeToCharacteristics); err != nil {
		return err
	}
	return c.writeMarker(ctx, ble.StateStart)
}

func (c *central) connectL2CAP(ctx context.Context, psm int) error {
	return c.step(ctx, fmt.Sprintf("connect l2cap psm %d", psm), func(ctx context.Context) error {
		return c.manager.ConnectL2CAP(ctx, psm)
	})
}

// step runs one radio operation. It refuses to start once ctx is done so a
// cancelled bootstrap issues no further radio calls.
func (c *central) step(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := fn(ctx); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (c *central) writeMarker(ctx context.Context, value byte) error {
	err := c.step(ctx, "write state characteristic", func(ctx context.Context) error {
		return c.manager.WriteToStateCharacteristic(ctx, value)
	})
	if err != nil {
		return err
	}
	c.m.logEvent(log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerRadio,
		Category:  log.CategoryControl,
		Channel:   log.ChannelGATT,
		Marker:    &log.MarkerEvent{Type: log.MarkerType(value)},
	})
	return nil
}

func (c *central) advertise(context.Context) error {
	return nil
}

func (c *central) send(ctx context.Context, msg []byte) error {
	if err := c.manager.SendMessage(ctx, msg); err != nil {
		return err
	}
	c.m.logEvent(log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerTransport,
		Category:  log.CategoryMessage,
		Channel:   c.channel(),
		Frame:     log.NewFrameEvent(msg),
	})
	return nil
}

func (c *central) writeEnd(ctx context.Context) error {
	return c.writeMarker(ctx, ble.StateEnd)
}

func (c *central) incoming() <-chan []byte {
	return c.manager.IncomingMessages()
}

func (c *central) channel() log.Channel {
	if c.manager.UsingL2CAP() {
		return log.ChannelL2CAP
	}
	return log.ChannelGATT
}
