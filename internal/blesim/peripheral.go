package blesim

import (
	"context"
	"crypto/ecdh"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/mdoc-proximity/mdoc-go/pkg/ble"
)

// Peripheral errors.
var (
	ErrPeripheralBusy = errors.New("peripheral already connected")
	ErrNotConnected   = errors.New("not connected")
	ErrWrongPSM       = errors.New("no L2CAP listener on psm")
)

// PeripheralConfig describes a simulated reader.
type PeripheralConfig struct {
	ServiceUUID uuid.UUID

	// EReaderKey is the reader's ephemeral key. The identification
	// characteristic is derived from it unless Ident is set.
	EReaderKey *ecdh.PublicKey
	Ident      []byte

	// PSM is published on the L2CAP characteristic. Zero means no L2CAP.
	PSM int

	// MTU is the largest MTU the peripheral accepts (default 185).
	MTU int
}

// Peripheral is a simulated reader GATT server.
type Peripheral struct {
	cfg PeripheralConfig
	air *Air

	mu      sync.Mutex
	central *Central
	l2cap   *ble.Framer
	conn    net.Conn
	stop    chan struct{}
	reasm   *ble.Reassembler

	inbox   chan []byte
	markers chan byte
}

// Advertise starts a peripheral on air.
func (a *Air) Advertise(cfg PeripheralConfig) (*Peripheral, error) {
	if cfg.MTU == 0 {
		cfg.MTU = 185
	}
	if cfg.Ident == nil && cfg.EReaderKey != nil {
		ident, err := ble.ComputeIdent(cfg.EReaderKey)
		if err != nil {
			return nil, fmt.Errorf("compute ident: %w", err)
		}
		cfg.Ident = ident
	}

	p := &Peripheral{
		cfg:     cfg,
		air:     a,
		reasm:   ble.NewReassembler(0),
		inbox:   make(chan []byte, 64),
		markers: make(chan byte, 16),
	}
	a.advertise(p)
	return p, nil
}

// Stop withdraws the advertisement. An existing connection is kept.
func (p *Peripheral) Stop() {
	p.air.withdraw(p)
}

// Receive returns the next message written by the central.
func (p *Peripheral) Receive(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-p.inbox:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Markers delivers values written to the state characteristic.
func (p *Peripheral) Markers() <-chan byte {
	return p.markers
}

// Send delivers msg to the connected central, over L2CAP if open and as
// notification chunks otherwise.
func (p *Peripheral) Send(ctx context.Context, msg []byte) error {
	p.mu.Lock()
	c, framer := p.central, p.l2cap
	p.mu.Unlock()

	if c == nil {
		return ErrNotConnected
	}
	if framer != nil {
		return framer.WriteFrame(msg)
	}

	chunks, err := ble.Fragment(msg, c.negotiatedMTU())
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.notify(chunk); err != nil {
			return err
		}
	}
	return nil
}

// Disconnect drops the link from the peripheral side.
func (p *Peripheral) Disconnect() {
	p.mu.Lock()
	c, conn := p.central, p.conn
	p.central, p.l2cap, p.conn = nil, nil, nil
	p.stopL2CAPLocked()
	p.reasm.Reset()
	p.mu.Unlock()

	if conn != nil {
		// The central's reader sees EOF and reports the disconnect.
		conn.Close()
		return
	}
	if c != nil {
		go c.linkLost(nil)
	}
}

func (p *Peripheral) attach(c *Central) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.central != nil && p.central != c {
		return ErrPeripheralBusy
	}
	p.central = c
	return nil
}

func (p *Peripheral) detach(c *Central) {
	p.mu.Lock()
	if p.central != c {
		p.mu.Unlock()
		return
	}
	conn := p.conn
	p.central, p.l2cap, p.conn = nil, nil, nil
	p.stopL2CAPLocked()
	p.reasm.Reset()
	p.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// writeChunk blocks while the inbox is full, like a peer that stops
// acknowledging writes.
func (p *Peripheral) writeChunk(ctx context.Context, chunk []byte) error {
	p.mu.Lock()
	msg, err := p.reasm.Add(chunk)
	p.mu.Unlock()
	if err != nil || msg == nil {
		return err
	}
	select {
	case p.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Peripheral) writeState(v byte) {
	select {
	case p.markers <- v:
	default:
	}
}

func (p *Peripheral) acceptL2CAP(c *Central, psm int, conn net.Conn) error {
	if p.cfg.PSM == 0 || psm != p.cfg.PSM {
		return fmt.Errorf("%w %d", ErrWrongPSM, psm)
	}

	framer := ble.NewFramer(conn)
	p.mu.Lock()
	if p.central != nil && p.central != c {
		p.mu.Unlock()
		return ErrPeripheralBusy
	}
	p.stopL2CAPLocked()
	stop := make(chan struct{})
	p.central, p.l2cap, p.conn, p.stop = c, framer, conn, stop
	p.mu.Unlock()

	go func() {
		for {
			msg, err := framer.ReadFrame()
			if err != nil {
				return
			}
			select {
			case p.inbox <- msg:
			case <-stop:
				return
			}
		}
	}()
	return nil
}

func (p *Peripheral) stopL2CAPLocked() {
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}
