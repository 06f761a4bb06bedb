package blesim

import (
	"context"
	"crypto/ecdh"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mdoc-proximity/mdoc-go/pkg/ble"
	"github.com/mdoc-proximity/mdoc-go/pkg/log"
)

// Op names a CentralManager operation for fault injection and call tracing.
type Op string

// Operations.
const (
	OpPowerOn                 Op = "WaitForPowerOn"
	OpScan                    Op = "WaitForPeripheralWithUUID"
	OpConnect                 Op = "ConnectToPeripheral"
	OpRequestMTU              Op = "RequestMTU"
	OpDiscoverServices        Op = "PeripheralDiscoverServices"
	OpDiscoverCharacteristics Op = "PeripheralDiscoverCharacteristics"
	OpCheckIdent              Op = "CheckReaderIdentMatches"
	OpConnectL2CAP            Op = "ConnectL2CAP"
	OpSubscribe               Op = "SubscribeToCharacteristics"
	OpWriteState              Op = "WriteToStateCharacteristic"
	OpSend                    Op = "SendMessage"
)

// Central errors.
var (
	ErrIdentMismatch   = errors.New("reader ident mismatch")
	ErrServiceNotFound = errors.New("service not found")
	ErrQueueFull       = errors.New("incoming queue full")
	ErrLinkDown        = errors.New("link down")
)

// MaxMTU is the largest ATT MTU a central requests.
const MaxMTU = 517

type fault struct {
	err   error
	block bool
}

// Option configures a Central.
type Option func(*Central)

// WithPoweredOff starts the central with the adapter off. Call PowerOn.
func WithPoweredOff() Option {
	return func(c *Central) {
		c.powered = make(chan struct{})
	}
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Central) {
		c.logger = l
	}
}

// WithProtocolLogger captures L2CAP frames at the radio layer.
func WithProtocolLogger(l log.Logger, connID string) Option {
	return func(c *Central) {
		c.plog, c.connID = l, connID
	}
}

// Central is a simulated BLE central implementing ble.CentralManager.
type Central struct {
	air    *Air
	logger *slog.Logger
	plog   log.Logger
	connID string

	powerOnce sync.Once
	powered   chan struct{}

	mu         sync.Mutex
	uuids      ble.CharacteristicUUIDs
	onError    func(error)
	onClosed   func()
	peer       *Peripheral
	mtu        int
	discovered bool
	psm        *int
	subscribed bool
	conn       net.Conn
	framer     *ble.Framer
	reasm      *ble.Reassembler
	incoming   chan []byte
	queueDone  bool
	linkDown   bool
	closed     bool
	closeCount int
	faults     map[Op]fault
	calls      []Op
}

// NewCentral creates a central scanning air. It is powered on unless
// WithPoweredOff is given.
func NewCentral(air *Air, opts ...Option) *Central {
	c := &Central{
		air:      air,
		logger:   slog.Default(),
		mtu:      ble.DefaultMTU,
		reasm:    ble.NewReassembler(0),
		incoming: make(chan []byte, 64),
		faults:   make(map[Op]fault),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.powered == nil {
		c.powered = make(chan struct{})
		c.PowerOn()
	}
	return c
}

// SetProtocolLogger is WithProtocolLogger for a central that already
// exists, typically because connID is only known once a transport owns it.
// It affects L2CAP channels opened afterwards.
func (c *Central) SetProtocolLogger(l log.Logger, connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plog, c.connID = l, connID
}

// PowerOn turns the adapter on.
func (c *Central) PowerOn() {
	c.powerOnce.Do(func() { close(c.powered) })
}

// FailOn makes op return err.
func (c *Central) FailOn(op Op, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faults[op] = fault{err: err}
}

// BlockOn makes op block until its context is done.
func (c *Central) BlockOn(op Op) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faults[op] = fault{block: true}
}

// InjectError reports err through the error callback, asynchronously,
// as a driver would.
func (c *Central) InjectError(err error) {
	go c.linkLost(err)
}

// Calls returns the operations issued so far, in order.
func (c *Central) Calls() []Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Op(nil), c.calls...)
}

// CloseCount returns how many times Close was called.
func (c *Central) CloseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCount
}

// begin records op and applies injected faults.
func (c *Central) begin(ctx context.Context, op Op) error {
	c.mu.Lock()
	c.calls = append(c.calls, op)
	f, hasFault := c.faults[op]
	closed := c.closed || c.linkDown
	c.mu.Unlock()

	c.logger.Debug("blesim op", "op", op)
	if closed {
		return fmt.Errorf("%s: %w", op, ErrLinkDown)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if hasFault {
		if f.block {
			<-ctx.Done()
			return ctx.Err()
		}
		return f.err
	}
	return nil
}

// SetUUIDs implements ble.CentralManager.
func (c *Central) SetUUIDs(uuids ble.CharacteristicUUIDs) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uuids = uuids
}

// SetCallbacks implements ble.CentralManager.
func (c *Central) SetCallbacks(onError func(error), onClosed func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError, c.onClosed = onError, onClosed
}

// WaitForPowerOn implements ble.CentralManager.
func (c *Central) WaitForPowerOn(ctx context.Context) error {
	if err := c.begin(ctx, OpPowerOn); err != nil {
		return err
	}
	select {
	case <-c.powered:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitForPeripheralWithUUID implements ble.CentralManager.
func (c *Central) WaitForPeripheralWithUUID(ctx context.Context, serviceUUID uuid.UUID) error {
	if err := c.begin(ctx, OpScan); err != nil {
		return err
	}
	p, err := c.air.scan(ctx, serviceUUID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.peer = p
	c.mu.Unlock()
	return nil
}

// ConnectToPeripheral implements ble.CentralManager.
func (c *Central) ConnectToPeripheral(ctx context.Context) error {
	if err := c.begin(ctx, OpConnect); err != nil {
		return err
	}
	p, err := c.foundPeer()
	if err != nil {
		return err
	}
	return p.attach(c)
}

// RequestMTU implements ble.CentralManager.
func (c *Central) RequestMTU(ctx context.Context) error {
	if err := c.begin(ctx, OpRequestMTU); err != nil {
		return err
	}
	p, err := c.foundPeer()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.mtu = min(p.cfg.MTU, MaxMTU)
	c.mu.Unlock()
	return nil
}

// PeripheralDiscoverServices implements ble.CentralManager.
func (c *Central) PeripheralDiscoverServices(ctx context.Context, serviceUUID uuid.UUID) error {
	if err := c.begin(ctx, OpDiscoverServices); err != nil {
		return err
	}
	p, err := c.foundPeer()
	if err != nil {
		return err
	}
	if p.cfg.ServiceUUID != serviceUUID {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, serviceUUID)
	}
	return nil
}

// PeripheralDiscoverCharacteristics implements ble.CentralManager. The
// L2CAP PSM is read only when an L2CAP characteristic UUID was configured.
func (c *Central) PeripheralDiscoverCharacteristics(ctx context.Context) error {
	if err := c.begin(ctx, OpDiscoverCharacteristics); err != nil {
		return err
	}
	p, err := c.foundPeer()
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discovered = true
	if c.uuids.L2CAP != nil && p.cfg.PSM != 0 {
		psm := p.cfg.PSM
		c.psm = &psm
	}
	return nil
}

// CheckReaderIdentMatches implements ble.CentralManager.
func (c *Central) CheckReaderIdentMatches(ctx context.Context, eSenderKey *ecdh.PublicKey) error {
	if err := c.begin(ctx, OpCheckIdent); err != nil {
		return err
	}
	p, err := c.foundPeer()
	if err != nil {
		return err
	}
	ok, err := ble.IdentMatches(p.cfg.Ident, eSenderKey)
	if err != nil {
		return err
	}
	if !ok {
		return ErrIdentMismatch
	}
	return nil
}

// ConnectL2CAP implements ble.CentralManager.
func (c *Central) ConnectL2CAP(ctx context.Context, psm int) error {
	if err := c.begin(ctx, OpConnectL2CAP); err != nil {
		return err
	}
	p, err := c.foundPeer()
	if err != nil {
		return err
	}

	local, remote := net.Pipe()
	if err := p.acceptL2CAP(c, psm, remote); err != nil {
		local.Close()
		remote.Close()
		return err
	}

	framer := ble.NewFramer(local)
	c.mu.Lock()
	if c.plog != nil {
		framer.SetLogger(c.plog, c.connID)
	}
	c.conn, c.framer = local, framer
	c.mu.Unlock()

	go c.readL2CAP(framer)
	return nil
}

func (c *Central) readL2CAP(framer *ble.Framer) {
	for {
		msg, err := framer.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				c.linkLost(nil)
			} else {
				c.linkLost(err)
			}
			return
		}
		if err := c.deliver(msg); err != nil {
			c.linkLost(err)
			return
		}
	}
}

// SubscribeToCharacteristics implements ble.CentralManager.
func (c *Central) SubscribeToCharacteristics(ctx context.Context) error {
	if err := c.begin(ctx, OpSubscribe); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.discovered {
		return fmt.Errorf("subscribe: %w", ErrNotConnected)
	}
	c.subscribed = true
	return nil
}

// WriteToStateCharacteristic implements ble.CentralManager.
func (c *Central) WriteToStateCharacteristic(ctx context.Context, value byte) error {
	if err := c.begin(ctx, OpWriteState); err != nil {
		return err
	}
	p, err := c.foundPeer()
	if err != nil {
		return err
	}
	p.writeState(value)
	return nil
}

// SendMessage implements ble.CentralManager.
func (c *Central) SendMessage(ctx context.Context, msg []byte) error {
	if err := c.begin(ctx, OpSend); err != nil {
		return err
	}

	c.mu.Lock()
	framer, conn, peer, mtu := c.framer, c.conn, c.peer, c.mtu
	c.mu.Unlock()

	if framer != nil {
		// net.Pipe only gives up a blocked write on a deadline.
		stop := context.AfterFunc(ctx, func() { conn.SetWriteDeadline(time.Unix(1, 0)) })
		defer stop()
		if err := framer.WriteFrame(msg); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		return nil
	}

	if peer == nil {
		return ErrNotConnected
	}
	chunks, err := ble.Fragment(msg, mtu)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := peer.writeChunk(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

// IncomingMessages implements ble.CentralManager.
func (c *Central) IncomingMessages() <-chan []byte {
	return c.incoming
}

// UsingL2CAP implements ble.CentralManager.
func (c *Central) UsingL2CAP() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.framer != nil
}

// L2CAPPSM implements ble.CentralManager.
func (c *Central) L2CAPPSM() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.psm == nil {
		return 0, false
	}
	return *c.psm, true
}

// Close implements ble.CentralManager. It never invokes the callbacks.
func (c *Central) Close() {
	c.mu.Lock()
	c.closeCount++
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	peer, conn := c.peer, c.conn
	c.framer, c.conn = nil, nil
	c.closeQueueLocked()
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if peer != nil {
		peer.detach(c)
	}
}

func (c *Central) foundPeer() (*Peripheral, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.peer == nil {
		return nil, ErrNotConnected
	}
	return c.peer, nil
}

func (c *Central) negotiatedMTU() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mtu
}

// notify receives a server-to-client chunk from the peripheral.
func (c *Central) notify(chunk []byte) error {
	c.mu.Lock()
	if !c.subscribed {
		c.mu.Unlock()
		return fmt.Errorf("notify: %w", ErrNotConnected)
	}
	msg, err := c.reasm.Add(chunk)
	c.mu.Unlock()
	if err != nil || msg == nil {
		return err
	}
	return c.deliver(msg)
}

func (c *Central) deliver(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queueDone {
		return ErrLinkDown
	}
	select {
	case c.incoming <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// linkLost reports a link that went away without Close. The callback runs
// before the queue is closed, so a transport sees its terminal state
// before a waiting reader sees the closed queue.
func (c *Central) linkLost(cause error) {
	c.mu.Lock()
	if c.closed || c.linkDown {
		c.mu.Unlock()
		return
	}
	c.linkDown = true
	onError, onClosed := c.onError, c.onClosed
	c.mu.Unlock()

	switch {
	case cause != nil && onError != nil:
		onError(cause)
	case cause == nil && onClosed != nil:
		onClosed()
	}

	c.mu.Lock()
	c.closeQueueLocked()
	c.mu.Unlock()
}

func (c *Central) closeQueueLocked() {
	if !c.queueDone {
		c.queueDone = true
		close(c.incoming)
	}
}

// Compile-time interface satisfaction check.
var _ ble.CentralManager = (*Central)(nil)
