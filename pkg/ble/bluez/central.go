package bluez

import (
	"context"
	"crypto/ecdh"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"

	"github.com/mdoc-proximity/mdoc-go/pkg/ble"
	"github.com/mdoc-proximity/mdoc-go/pkg/log"
)

// Central errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrNotConnected    = errors.New("not connected")
	ErrIdentMismatch   = errors.New("reader ident mismatch")
	ErrLinkDown        = errors.New("link down")
	ErrQueueFull       = errors.New("incoming queue full")
	ErrUnexpectedValue = errors.New("unexpected characteristic value")
)

// Defaults.
const (
	DefaultAdapter      = "hci0"
	DefaultPollInterval = 200 * time.Millisecond

	incomingQueueSize = 64
	disconnectTimeout = 5 * time.Second
)

// Option configures a Central.
type Option func(*Central)

// WithAdapter selects the HCI adapter, e.g. "hci1".
func WithAdapter(name string) Option {
	return func(c *Central) {
		c.adapter = name
	}
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Central) {
		c.logger = l
	}
}

// WithPollInterval sets how often adapter, scan and service resolution
// state is polled.
func WithPollInterval(d time.Duration) Option {
	return func(c *Central) {
		c.poll = d
	}
}

// WithDialer replaces the L2CAP socket dialer.
func WithDialer(d Dialer) Option {
	return func(c *Central) {
		c.dial = d
	}
}

// Central drives one connection to a reader through BlueZ.
type Central struct {
	bus     Bus
	adapter string
	logger  *slog.Logger
	poll    time.Duration
	dial    Dialer

	mu          sync.Mutex
	uuids       ble.CharacteristicUUIDs
	onError     func(error)
	onClosed    func()
	plog        log.Logger
	connID      string
	device      dbus.ObjectPath
	address     string
	addressType string
	service     dbus.ObjectPath
	stateChar   dbus.ObjectPath
	c2sChar     dbus.ObjectPath
	s2cChar     dbus.ObjectPath
	identChar   dbus.ObjectPath
	mtu         int
	psm         *int
	conn        io.ReadWriteCloser
	framer      *ble.Framer
	reasm       *ble.Reassembler
	stops       []func()
	notifying   []dbus.ObjectPath
	incoming    chan []byte
	queueDone   bool
	linkDown    bool
	closed      bool
}

// NewCentral creates a central on bus.
func NewCentral(bus Bus, opts ...Option) *Central {
	c := &Central{
		bus:      bus,
		adapter:  DefaultAdapter,
		logger:   slog.Default(),
		poll:     DefaultPollInterval,
		dial:     dialL2CAP,
		mtu:      ble.DefaultMTU,
		reasm:    ble.NewReassembler(0),
		incoming: make(chan []byte, incomingQueueSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("adapter", c.adapter)
	return c
}

// SetProtocolLogger captures L2CAP frames at the radio layer for channels
// opened afterwards.
func (c *Central) SetProtocolLogger(l log.Logger, connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plog, c.connID = l, connID
}

// MTU returns the ATT MTU in use for characteristic writes.
func (c *Central) MTU() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mtu
}

func (c *Central) adapterPath() dbus.ObjectPath {
	return dbus.ObjectPath("/org/bluez/" + c.adapter)
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

func (c *Central) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.linkDown {
		return ErrLinkDown
	}
	return nil
}

// pollUntil calls check every poll interval until it reports done or ctx
// ends. check runs once immediately.
func (c *Central) pollUntil(ctx context.Context, check func() (bool, error)) error {
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()
	for {
		done, err := check()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitForPowerOn implements ble.CentralManager.
func (c *Central) WaitForPowerOn(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	path := c.adapterPath()
	return c.pollUntil(ctx, func() (bool, error) {
		powered, err := property[bool](c.bus, path, bluezAdapter1, "Powered")
		if err != nil {
			return false, fmt.Errorf("adapter %s: %w", c.adapter, err)
		}
		return powered, nil
	})
}

// WaitForPeripheralWithUUID implements ble.CentralManager. Discovery is
// filtered to LE devices advertising serviceUUID and stopped on return.
func (c *Central) WaitForPeripheralWithUUID(ctx context.Context, serviceUUID uuid.UUID) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	adapter := c.adapterPath()

	filter := map[string]dbus.Variant{
		"Transport": dbus.MakeVariant("le"),
		"UUIDs":     dbus.MakeVariant([]string{serviceUUID.String()}),
	}
	if _, err := c.bus.Call(ctx, adapter, bluezAdapter1+".SetDiscoveryFilter", filter); err != nil {
		return fmt.Errorf("failed to set discovery filter: %w", err)
	}
	if _, err := c.bus.Call(ctx, adapter, bluezAdapter1+".StartDiscovery"); err != nil && errorName(err) != errInProgress {
		return fmt.Errorf("failed to start discovery: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		if _, err := c.bus.Call(sctx, adapter, bluezAdapter1+".StopDiscovery"); err != nil {
			c.logger.Debug("stop discovery", "error", err)
		}
	}()

	prefix := string(adapter) + "/"
	want := serviceUUID.String()

	return c.pollUntil(ctx, func() (bool, error) {
		objects, err := c.bus.ManagedObjects(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			c.logger.Debug("scan poll", "error", err)
			return false, nil
		}
		for path, ifaces := range objects {
			props, ok := ifaces[bluezDevice1]
			if !ok || !strings.HasPrefix(string(path), prefix) {
				continue
			}
			uuids, _ := props["UUIDs"].Value().([]string)
			if !containsUUID(uuids, want) {
				continue
			}
			address, _ := props["Address"].Value().(string)
			addrType, _ := props["AddressType"].Value().(string)

			c.mu.Lock()
			c.device, c.address, c.addressType = path, address, addrType
			c.mu.Unlock()
			c.logger.Info("found reader", "address", address, "address_type", addrType, "path", path)
			return true, nil
		}
		return false, nil
	})
}

func containsUUID(list []string, want string) bool {
	for _, u := range list {
		if strings.EqualFold(u, want) {
			return true
		}
	}
	return false
}

func (c *Central) devicePath() (dbus.ObjectPath, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == "" {
		return "", ErrNotConnected
	}
	return c.device, nil
}

// ConnectToPeripheral implements ble.CentralManager. A Connected=false
// change on the device afterwards is reported as a closed link.
func (c *Central) ConnectToPeripheral(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	device, err := c.devicePath()
	if err != nil {
		return err
	}

	if _, err := c.bus.Call(ctx, device, bluezDevice1+".Connect"); err != nil && errorName(err) != errAlreadyConnected {
		return fmt.Errorf("BlueZ Connect failed for %s: %w", device, err)
	}

	signals, stop, err := c.bus.WatchProperties(device)
	if err != nil {
		return err
	}
	if !c.addStop(stop) {
		return ErrLinkDown
	}
	go func() {
		for sig := range signals {
			if v, ok := changedValue(sig, "Connected"); ok {
				if connected, _ := v.(bool); !connected {
					c.logger.Info("reader disconnected", "path", device)
					c.linkLost(nil)
					return
				}
			}
		}
	}()
	return nil
}

// addStop registers a watcher cleanup. It reports false, after running
// stop, when the central is already shut down.
func (c *Central) addStop(stop func()) bool {
	c.mu.Lock()
	if c.closed || c.linkDown {
		c.mu.Unlock()
		stop()
		return false
	}
	c.stops = append(c.stops, stop)
	c.mu.Unlock()
	return true
}

// RequestMTU implements ble.CentralManager. BlueZ exchanges the MTU
// itself on connect; this reads back the result when the device exposes
// it. Characteristic discovery may refine it.
func (c *Central) RequestMTU(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	device, err := c.devicePath()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	mtu, err := property[uint16](c.bus, device, bluezDevice1, "MTU")
	if err != nil {
		c.logger.Debug("could not read MTU, keeping default", "error", err, "mtu", ble.DefaultMTU)
		return nil
	}
	c.setMTU(int(mtu))
	return nil
}

func (c *Central) setMTU(mtu int) {
	if mtu < ble.DefaultMTU {
		return
	}
	c.mu.Lock()
	c.mtu = mtu
	c.mu.Unlock()
	c.logger.Debug("negotiated MTU", "mtu", mtu)
}

// PeripheralDiscoverServices implements ble.CentralManager. It waits for
// BlueZ to resolve services and then locates serviceUUID.
func (c *Central) PeripheralDiscoverServices(ctx context.Context, serviceUUID uuid.UUID) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	device, err := c.devicePath()
	if err != nil {
		return err
	}

	err = c.pollUntil(ctx, func() (bool, error) {
		resolved, err := property[bool](c.bus, device, bluezDevice1, "ServicesResolved")
		return err == nil && resolved, nil
	})
	if err != nil {
		return fmt.Errorf("waiting for services: %w", err)
	}

	objects, err := c.bus.ManagedObjects(ctx)
	if err != nil {
		return err
	}
	prefix := string(device) + "/"
	want := serviceUUID.String()
	for path, ifaces := range objects {
		props, ok := ifaces[bluezGattService]
		if !ok || !strings.HasPrefix(string(path), prefix) {
			continue
		}
		if u, _ := props["UUID"].Value().(string); strings.EqualFold(u, want) {
			c.mu.Lock()
			c.service = path
			c.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("service %s: %w", serviceUUID, ErrNotFound)
}

// PeripheralDiscoverCharacteristics implements ble.CentralManager. The
// identification and L2CAP characteristics are only looked for when their
// UUIDs are configured; a missing L2CAP characteristic is not an error.
func (c *Central) PeripheralDiscoverCharacteristics(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	service, uuids := c.service, c.uuids
	c.mu.Unlock()
	if service == "" {
		return fmt.Errorf("service: %w", ErrNotFound)
	}

	objects, err := c.bus.ManagedObjects(ctx)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]dbus.ObjectPath)
	prefix := string(service) + "/"
	for path, ifaces := range objects {
		props, ok := ifaces[bluezGattChar]
		if !ok || !strings.HasPrefix(string(path), prefix) {
			continue
		}
		s, _ := props["UUID"].Value().(string)
		if u, err := uuid.Parse(s); err == nil {
			found[u] = path
		}
	}

	required := []struct {
		name string
		id   uuid.UUID
	}{
		{"state", uuids.State},
		{"client2server", uuids.Client2Server},
		{"server2client", uuids.Server2Client},
	}
	if uuids.Ident != uuid.Nil {
		required = append(required, struct {
			name string
			id   uuid.UUID
		}{"ident", uuids.Ident})
	}
	for _, r := range required {
		if _, ok := found[r.id]; !ok {
			return fmt.Errorf("%s characteristic %s: %w", r.name, r.id, ErrNotFound)
		}
	}

	c.mu.Lock()
	c.stateChar = found[uuids.State]
	c.c2sChar = found[uuids.Client2Server]
	c.s2cChar = found[uuids.Server2Client]
	c.identChar = found[uuids.Ident]
	c.mu.Unlock()

	if mtu, err := property[uint16](c.bus, found[uuids.Client2Server], bluezGattChar, "MTU"); err == nil {
		c.setMTU(int(mtu))
	}

	if uuids.L2CAP == nil {
		return nil
	}
	path, ok := found[*uuids.L2CAP]
	if !ok {
		c.logger.Debug("reader offers no L2CAP characteristic")
		return nil
	}
	value, err := c.readValue(ctx, path)
	if err != nil {
		return fmt.Errorf("read l2cap characteristic: %w", err)
	}
	psm, err := parsePSM(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedValue, err)
	}
	c.mu.Lock()
	c.psm = &psm
	c.mu.Unlock()
	c.logger.Debug("reader offers L2CAP", "psm", psm)
	return nil
}

func (c *Central) readValue(ctx context.Context, path dbus.ObjectPath) ([]byte, error) {
	body, err := c.bus.Call(ctx, path, bluezGattChar+".ReadValue", map[string]dbus.Variant{})
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, ErrUnexpectedValue
	}
	data, ok := body[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedValue, body[0])
	}
	return data, nil
}

func (c *Central) writeValue(ctx context.Context, path dbus.ObjectPath, data []byte) error {
	_, err := c.bus.Call(ctx, path, bluezGattChar+".WriteValue", data, map[string]dbus.Variant{
		"type": dbus.MakeVariant("command"),
	})
	return err
}

// CheckReaderIdentMatches implements ble.CentralManager.
func (c *Central) CheckReaderIdentMatches(ctx context.Context, eSenderKey *ecdh.PublicKey) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	path := c.identChar
	c.mu.Unlock()
	if path == "" {
		return fmt.Errorf("ident characteristic: %w", ErrNotFound)
	}

	got, err := c.readValue(ctx, path)
	if err != nil {
		return fmt.Errorf("read ident: %w", err)
	}
	ok, err := ble.IdentMatches(got, eSenderKey)
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
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	address, addrType := c.address, c.addressType
	c.mu.Unlock()
	if address == "" {
		return ErrNotConnected
	}

	conn, err := c.dial(ctx, address, addrType, psm)
	if err != nil {
		return err
	}

	framer := ble.NewFramer(conn)
	c.mu.Lock()
	if c.closed || c.linkDown {
		c.mu.Unlock()
		conn.Close()
		return ErrLinkDown
	}
	if c.plog != nil {
		framer.SetLogger(c.plog, c.connID)
	}
	c.conn, c.framer = conn, framer
	c.mu.Unlock()

	c.logger.Info("L2CAP channel open", "psm", psm)
	go c.readL2CAP(framer)
	return nil
}

func (c *Central) readL2CAP(framer *ble.Framer) {
	for {
		msg, err := framer.ReadFrame()
		if err != nil {
			if isClosedErr(err) {
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

// abortWrite unblocks a pending write on an L2CAP channel. A channel
// without write deadlines is closed instead, which ends the link.
func abortWrite(conn io.ReadWriteCloser) {
	if d, ok := conn.(interface{ SetWriteDeadline(time.Time) error }); ok {
		if err := d.SetWriteDeadline(time.Unix(1, 0)); err == nil {
			return
		}
	}
	conn.Close()
}

func isClosedErr(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed)
}

// SubscribeToCharacteristics implements ble.CentralManager.
// Server-to-client notifications are reassembled into messages; END on the
// state characteristic closes the link.
func (c *Central) SubscribeToCharacteristics(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	s2c, state := c.s2cChar, c.stateChar
	c.mu.Unlock()
	if s2c == "" || state == "" {
		return fmt.Errorf("subscribe: %w", ErrNotConnected)
	}

	if err := c.startNotify(ctx, s2c, c.onServer2Client); err != nil {
		return fmt.Errorf("subscribe server2client: %w", err)
	}
	if err := c.startNotify(ctx, state, c.onState); err != nil {
		return fmt.Errorf("subscribe state: %w", err)
	}
	return nil
}

func (c *Central) startNotify(ctx context.Context, path dbus.ObjectPath, handle func([]byte)) error {
	signals, stop, err := c.bus.WatchProperties(path)
	if err != nil {
		return err
	}
	if !c.addStop(stop) {
		return ErrLinkDown
	}
	go func() {
		for sig := range signals {
			v, ok := changedValue(sig, "Value")
			if !ok {
				continue
			}
			if data, ok := v.([]byte); ok {
				handle(data)
			}
		}
	}()

	if _, err := c.bus.Call(ctx, path, bluezGattChar+".StartNotify"); err != nil {
		return fmt.Errorf("StartNotify failed: %w", err)
	}
	c.mu.Lock()
	c.notifying = append(c.notifying, path)
	c.mu.Unlock()
	return nil
}

func (c *Central) onServer2Client(chunk []byte) {
	c.mu.Lock()
	msg, err := c.reasm.Add(chunk)
	c.mu.Unlock()
	if err != nil {
		c.linkLost(err)
		return
	}
	if msg == nil {
		return
	}
	if err := c.deliver(msg); err != nil {
		c.linkLost(err)
	}
}

func (c *Central) onState(value []byte) {
	if len(value) == 1 && value[0] == ble.StateEnd {
		c.logger.Info("reader ended the session")
		c.linkLost(nil)
		return
	}
	c.logger.Debug("ignoring state notification", "value", fmt.Sprintf("%x", value))
}

// WriteToStateCharacteristic implements ble.CentralManager.
func (c *Central) WriteToStateCharacteristic(ctx context.Context, value byte) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	path := c.stateChar
	c.mu.Unlock()
	if path == "" {
		return fmt.Errorf("state characteristic: %w", ErrNotFound)
	}
	return c.writeValue(ctx, path, []byte{value})
}

// SendMessage implements ble.CentralManager.
func (c *Central) SendMessage(ctx context.Context, msg []byte) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	framer, conn, path, mtu := c.framer, c.conn, c.c2sChar, c.mtu
	c.mu.Unlock()

	if framer != nil {
		stop := context.AfterFunc(ctx, func() { abortWrite(conn) })
		defer stop()
		if err := framer.WriteFrame(msg); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		return nil
	}
	if path == "" {
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
		if err := c.writeValue(ctx, path, chunk); err != nil {
			return fmt.Errorf("write client2server: %w", err)
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

// Close implements ble.CentralManager. It stops notifications, closes the
// L2CAP channel and disconnects the device. Callbacks are not invoked.
func (c *Central) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	stops, notifying := c.stops, c.notifying
	conn, device := c.conn, c.device
	c.stops, c.notifying = nil, nil
	c.framer, c.conn = nil, nil
	c.closeQueueLocked()
	c.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
	if conn != nil {
		conn.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	for _, path := range notifying {
		if _, err := c.bus.Call(ctx, path, bluezGattChar+".StopNotify"); err != nil {
			c.logger.Debug("stop notify", "path", path, "error", err)
		}
	}
	if device != "" {
		if _, err := c.bus.Call(ctx, device, bluezDevice1+".Disconnect"); err != nil {
			c.logger.Debug("disconnect", "path", device, "error", err)
		}
	}
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
	stops := c.stops
	c.stops = nil
	c.mu.Unlock()

	for _, stop := range stops {
		stop()
	}

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
