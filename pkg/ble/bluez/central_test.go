package bluez

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdoc-proximity/mdoc-go/pkg/ble"
)

type fakeCall struct {
	path   dbus.ObjectPath
	method string
	args   []any
}

type fakeBus struct {
	mu       sync.Mutex
	props    map[dbus.ObjectPath]map[string]dbus.Variant
	objects  ManagedObjects
	calls    []fakeCall
	handlers map[string]func(path dbus.ObjectPath, args []any) ([]any, error)
	watchers map[dbus.ObjectPath][]chan *dbus.Signal
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		props:    make(map[dbus.ObjectPath]map[string]dbus.Variant),
		objects:  make(ManagedObjects),
		handlers: make(map[string]func(dbus.ObjectPath, []any) ([]any, error)),
		watchers: make(map[dbus.ObjectPath][]chan *dbus.Signal),
	}
}

func (b *fakeBus) Call(ctx context.Context, path dbus.ObjectPath, method string, args ...any) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.calls = append(b.calls, fakeCall{path: path, method: method, args: args})
	h := b.handlers[method]
	b.mu.Unlock()
	if h == nil {
		return nil, nil
	}
	return h(path, args)
}

func (b *fakeBus) Property(path dbus.ObjectPath, name string) (dbus.Variant, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.props[path][name]
	if !ok {
		return dbus.Variant{}, dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", []any{"No such property " + name})
	}
	return v, nil
}

func (b *fakeBus) ManagedObjects(ctx context.Context) (ManagedObjects, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(ManagedObjects, len(b.objects))
	for path, ifaces := range b.objects {
		out[path] = ifaces
	}
	return out, nil
}

func (b *fakeBus) WatchProperties(path dbus.ObjectPath) (<-chan *dbus.Signal, func(), error) {
	ch := make(chan *dbus.Signal, 64)
	b.mu.Lock()
	b.watchers[path] = append(b.watchers[path], ch)
	b.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := b.watchers[path]
			for i, w := range list {
				if w == ch {
					b.watchers[path] = append(list[:i], list[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
	return ch, stop, nil
}

func (b *fakeBus) setProp(path dbus.ObjectPath, name string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.props[path] == nil {
		b.props[path] = make(map[string]dbus.Variant)
	}
	b.props[path][name] = dbus.MakeVariant(value)
}

func (b *fakeBus) addObject(path dbus.ObjectPath, iface string, props map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := make(map[string]dbus.Variant, len(props))
	for k, v := range props {
		m[k] = dbus.MakeVariant(v)
	}
	if b.objects[path] == nil {
		b.objects[path] = make(map[string]map[string]dbus.Variant)
	}
	b.objects[path][iface] = m
}

func (b *fakeBus) removeObject(path dbus.ObjectPath) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, path)
}

func (b *fakeBus) handle(method string, h func(dbus.ObjectPath, []any) ([]any, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[method] = h
}

// emit sends a PropertiesChanged signal for path.
func (b *fakeBus) emit(path dbus.ObjectPath, iface, name string, value any) {
	sig := &dbus.Signal{
		Path: path,
		Name: propertiesChanged,
		Body: []any{iface, map[string]dbus.Variant{name: dbus.MakeVariant(value)}, []string{}},
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.watchers[path] {
		ch <- sig
	}
}

func (b *fakeBus) callsTo(method string) []fakeCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []fakeCall
	for _, c := range b.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

const (
	adapterPath = dbus.ObjectPath("/org/bluez/hci0")
	devicePath  = dbus.ObjectPath("/org/bluez/hci0/dev_C0_11_22_33_44_55")
	servicePath = devicePath + "/service0010"
	stateChar   = servicePath + "/char0011"
	c2sChar     = servicePath + "/char0013"
	s2cChar     = servicePath + "/char0015"
	identChar   = servicePath + "/char0017"
	l2capChar   = servicePath + "/char0019"
)

// reader is a BlueZ object tree for one mdoc reader.
type reader struct {
	bus     *fakeBus
	service uuid.UUID
	uuids   ble.CharacteristicUUIDs
	key     *ecdh.PrivateKey
}

func newReader(t *testing.T, psm []byte) *reader {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	ident, err := ble.ComputeIdent(key.PublicKey())
	require.NoError(t, err)

	r := &reader{
		bus:     newFakeBus(),
		service: uuid.New(),
		uuids:   ble.CentralClientModeUUIDs(true),
		key:     key,
	}
	b := r.bus
	b.setProp(adapterPath, bluezAdapter1+".Powered", true)
	b.setProp(devicePath, bluezDevice1+".ServicesResolved", true)
	b.setProp(devicePath, bluezDevice1+".MTU", uint16(185))
	b.setProp(c2sChar, bluezGattChar+".MTU", uint16(64))

	b.addObject(devicePath, bluezDevice1, map[string]any{
		"Address":     "C0:11:22:33:44:55",
		"AddressType": "random",
		"UUIDs":       []string{strings.ToUpper(r.service.String())},
	})
	b.addObject(servicePath, bluezGattService, map[string]any{"UUID": r.service.String()})
	b.addObject(stateChar, bluezGattChar, map[string]any{"UUID": r.uuids.State.String()})
	b.addObject(c2sChar, bluezGattChar, map[string]any{"UUID": r.uuids.Client2Server.String()})
	b.addObject(s2cChar, bluezGattChar, map[string]any{"UUID": r.uuids.Server2Client.String()})
	b.addObject(identChar, bluezGattChar, map[string]any{"UUID": r.uuids.Ident.String()})
	if psm != nil {
		b.addObject(l2capChar, bluezGattChar, map[string]any{"UUID": r.uuids.L2CAP.String()})
	}

	b.handle(bluezGattChar+".ReadValue", func(path dbus.ObjectPath, _ []any) ([]any, error) {
		switch path {
		case identChar:
			return []any{ident}, nil
		case l2capChar:
			return []any{psm}, nil
		}
		return nil, dbus.NewError("org.bluez.Error.NotPermitted", nil)
	})
	return r
}

type callbacks struct {
	errs      chan error
	closed    chan struct{}
	closeOnce sync.Once
}

func newCentral(t *testing.T, r *reader, opts ...Option) (*Central, *callbacks) {
	t.Helper()
	opts = append([]Option{
		WithPollInterval(5 * time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	c := NewCentral(r.bus, opts...)
	t.Cleanup(c.Close)

	cb := &callbacks{errs: make(chan error, 4), closed: make(chan struct{})}
	c.SetUUIDs(r.uuids)
	c.SetCallbacks(
		func(err error) { cb.errs <- err },
		func() { cb.closeOnce.Do(func() { close(cb.closed) }) },
	)
	return c, cb
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// connect runs the GATT bootstrap up to characteristic discovery.
func connect(t *testing.T, ctx context.Context, c *Central, r *reader) {
	t.Helper()
	require.NoError(t, c.WaitForPowerOn(ctx))
	require.NoError(t, c.WaitForPeripheralWithUUID(ctx, r.service))
	require.NoError(t, c.ConnectToPeripheral(ctx))
	require.NoError(t, c.RequestMTU(ctx))
	require.NoError(t, c.PeripheralDiscoverServices(ctx, r.service))
	require.NoError(t, c.PeripheralDiscoverCharacteristics(ctx))
}

func waitClosed(t *testing.T, cb *callbacks) {
	t.Helper()
	select {
	case <-cb.closed:
	case <-time.After(time.Second):
		t.Fatal("onClosed not called")
	}
}

func drained(t *testing.T, ch <-chan []byte) {
	t.Helper()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "incoming queue should be closed")
	case <-time.After(time.Second):
		t.Fatal("incoming queue not closed")
	}
}

func TestWaitForPowerOnPolls(t *testing.T) {
	r := newReader(t, nil)
	r.bus.setProp(adapterPath, bluezAdapter1+".Powered", false)
	c, _ := newCentral(t, r)

	go func() {
		time.Sleep(20 * time.Millisecond)
		r.bus.setProp(adapterPath, bluezAdapter1+".Powered", true)
	}()
	require.NoError(t, c.WaitForPowerOn(testCtx(t)))
}

func TestWaitForPowerOnHonoursContext(t *testing.T) {
	r := newReader(t, nil)
	r.bus.setProp(adapterPath, bluezAdapter1+".Powered", false)
	c, _ := newCentral(t, r)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.WaitForPowerOn(ctx), context.DeadlineExceeded)
}

func TestWaitForPowerOnMissingAdapter(t *testing.T) {
	r := newReader(t, nil)
	c, _ := newCentral(t, r, WithAdapter("hci7"))
	assert.Error(t, c.WaitForPowerOn(testCtx(t)))
}

func TestScanFindsReaderOnAdapter(t *testing.T) {
	r := newReader(t, nil)
	dev := r.bus.objects[devicePath][bluezDevice1]
	r.bus.removeObject(devicePath)

	// Same service on another adapter is ignored.
	other := dbus.ObjectPath("/org/bluez/hci1/dev_C0_11_22_33_44_66")
	r.bus.addObject(other, bluezDevice1, map[string]any{
		"Address": "C0:11:22:33:44:66",
		"UUIDs":   []string{r.service.String()},
	})

	c, _ := newCentral(t, r)
	go func() {
		time.Sleep(20 * time.Millisecond)
		r.bus.mu.Lock()
		r.bus.objects[devicePath] = map[string]map[string]dbus.Variant{bluezDevice1: dev}
		r.bus.mu.Unlock()
	}()

	require.NoError(t, c.WaitForPeripheralWithUUID(testCtx(t), r.service))

	c.mu.Lock()
	assert.Equal(t, devicePath, c.device)
	assert.Equal(t, "C0:11:22:33:44:55", c.address)
	assert.Equal(t, "random", c.addressType)
	c.mu.Unlock()

	filters := r.bus.callsTo(bluezAdapter1 + ".SetDiscoveryFilter")
	require.Len(t, filters, 1)
	filter := filters[0].args[0].(map[string]dbus.Variant)
	assert.Equal(t, "le", filter["Transport"].Value())
	assert.Equal(t, []string{r.service.String()}, filter["UUIDs"].Value())

	assert.Len(t, r.bus.callsTo(bluezAdapter1+".StartDiscovery"), 1)
	assert.Len(t, r.bus.callsTo(bluezAdapter1+".StopDiscovery"), 1)
}

func TestScanToleratesDiscoveryInProgress(t *testing.T) {
	r := newReader(t, nil)
	r.bus.handle(bluezAdapter1+".StartDiscovery", func(dbus.ObjectPath, []any) ([]any, error) {
		return nil, dbus.NewError(errInProgress, nil)
	})
	c, _ := newCentral(t, r)
	require.NoError(t, c.WaitForPeripheralWithUUID(testCtx(t), r.service))
}

func TestScanStopsDiscoveryOnCancel(t *testing.T) {
	r := newReader(t, nil)
	c, _ := newCentral(t, r)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.WaitForPeripheralWithUUID(ctx, uuid.New()), context.DeadlineExceeded)
	assert.Len(t, r.bus.callsTo(bluezAdapter1+".StopDiscovery"), 1)
}

func TestDiscoveryReadsMTUAndPSM(t *testing.T) {
	r := newReader(t, []byte{0x00, 0xC0})
	c, _ := newCentral(t, r)
	ctx := testCtx(t)

	require.NoError(t, c.WaitForPeripheralWithUUID(ctx, r.service))
	require.NoError(t, c.ConnectToPeripheral(ctx))
	require.NoError(t, c.RequestMTU(ctx))
	assert.Equal(t, 185, c.MTU())

	require.NoError(t, c.PeripheralDiscoverServices(ctx, r.service))
	require.NoError(t, c.PeripheralDiscoverCharacteristics(ctx))
	assert.Equal(t, 64, c.MTU())

	psm, ok := c.L2CAPPSM()
	assert.True(t, ok)
	assert.Equal(t, 192, psm)
	assert.Len(t, r.bus.callsTo(bluezDevice1+".Connect"), 1)
}

func TestDiscoveryWithoutL2CAPCharacteristic(t *testing.T) {
	r := newReader(t, nil)
	c, _ := newCentral(t, r)
	connect(t, testCtx(t), c, r)

	_, ok := c.L2CAPPSM()
	assert.False(t, ok)
}

func TestDiscoveryMissingCharacteristic(t *testing.T) {
	r := newReader(t, nil)
	r.bus.removeObject(s2cChar)
	c, _ := newCentral(t, r)
	ctx := testCtx(t)

	require.NoError(t, c.WaitForPeripheralWithUUID(ctx, r.service))
	require.NoError(t, c.ConnectToPeripheral(ctx))
	require.NoError(t, c.PeripheralDiscoverServices(ctx, r.service))
	assert.ErrorIs(t, c.PeripheralDiscoverCharacteristics(ctx), ErrNotFound)
}

func TestDiscoverServicesUnknownService(t *testing.T) {
	r := newReader(t, nil)
	c, _ := newCentral(t, r)
	ctx := testCtx(t)

	require.NoError(t, c.WaitForPeripheralWithUUID(ctx, r.service))
	require.NoError(t, c.ConnectToPeripheral(ctx))
	assert.ErrorIs(t, c.PeripheralDiscoverServices(ctx, uuid.New()), ErrNotFound)
}

func TestConnectBeforeScan(t *testing.T) {
	r := newReader(t, nil)
	c, _ := newCentral(t, r)
	assert.ErrorIs(t, c.ConnectToPeripheral(testCtx(t)), ErrNotConnected)
}

func TestCheckReaderIdent(t *testing.T) {
	r := newReader(t, nil)
	c, _ := newCentral(t, r)
	ctx := testCtx(t)
	connect(t, ctx, c, r)

	require.NoError(t, c.CheckReaderIdentMatches(ctx, r.key.PublicKey()))

	other, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	assert.ErrorIs(t, c.CheckReaderIdentMatches(ctx, other.PublicKey()), ErrIdentMismatch)
}

func TestGATTMessages(t *testing.T) {
	r := newReader(t, nil)
	c, _ := newCentral(t, r)
	ctx := testCtx(t)
	connect(t, ctx, c, r)
	require.NoError(t, c.SubscribeToCharacteristics(ctx))
	assert.Len(t, r.bus.callsTo(bluezGattChar+".StartNotify"), 2)

	require.NoError(t, c.WriteToStateCharacteristic(ctx, ble.StateStart))

	// Inbound chunks are reassembled.
	r.bus.emit(s2cChar, bluezGattChar, "Value", []byte{0x01, 'a', 'b'})
	r.bus.emit(s2cChar, bluezGattChar, "Value", []byte{0x00, 'c'})
	select {
	case msg := <-c.IncomingMessages():
		assert.Equal(t, []byte("abc"), msg)
	case <-ctx.Done():
		t.Fatal("no message")
	}

	// 130 bytes at MTU 64 is three 60-byte-payload writes.
	msg := make([]byte, 130)
	require.NoError(t, c.SendMessage(ctx, msg))

	var state, data [][]byte
	for _, call := range r.bus.callsTo(bluezGattChar + ".WriteValue") {
		opts := call.args[1].(map[string]dbus.Variant)
		assert.Equal(t, "command", opts["type"].Value())
		switch call.path {
		case stateChar:
			state = append(state, call.args[0].([]byte))
		case c2sChar:
			data = append(data, call.args[0].([]byte))
		}
	}
	assert.Equal(t, [][]byte{{ble.StateStart}}, state)
	require.Len(t, data, 3)
	assert.Equal(t, byte(0x01), data[0][0])
	assert.Len(t, data[0], 61)
	assert.Equal(t, byte(0x00), data[2][0])
	assert.False(t, c.UsingL2CAP())
}

func TestSendEmptyMessageRejected(t *testing.T) {
	r := newReader(t, nil)
	c, _ := newCentral(t, r)
	ctx := testCtx(t)
	connect(t, ctx, c, r)
	assert.ErrorIs(t, c.SendMessage(ctx, nil), ble.ErrMessageEmpty)
}

func TestReaderEndClosesLink(t *testing.T) {
	r := newReader(t, nil)
	c, cb := newCentral(t, r)
	ctx := testCtx(t)
	connect(t, ctx, c, r)
	require.NoError(t, c.SubscribeToCharacteristics(ctx))

	r.bus.emit(stateChar, bluezGattChar, "Value", []byte{ble.StateEnd})

	waitClosed(t, cb)
	drained(t, c.IncomingMessages())
	assert.ErrorIs(t, c.SendMessage(ctx, []byte{1}), ErrLinkDown)
}

func TestDeviceDisconnectReportsClosed(t *testing.T) {
	r := newReader(t, nil)
	c, cb := newCentral(t, r)
	ctx := testCtx(t)
	connect(t, ctx, c, r)

	r.bus.emit(devicePath, bluezDevice1, "RSSI", int16(-40))
	r.bus.emit(devicePath, bluezDevice1, "Connected", false)

	waitClosed(t, cb)
	drained(t, c.IncomingMessages())
}

func TestInvalidChunkReportsError(t *testing.T) {
	r := newReader(t, nil)
	c, cb := newCentral(t, r)
	ctx := testCtx(t)
	connect(t, ctx, c, r)
	require.NoError(t, c.SubscribeToCharacteristics(ctx))

	r.bus.emit(s2cChar, bluezGattChar, "Value", []byte{0x07, 'x'})

	select {
	case err := <-cb.errs:
		assert.ErrorIs(t, err, ble.ErrInvalidChunk)
	case <-time.After(time.Second):
		t.Fatal("onError not called")
	}
	drained(t, c.IncomingMessages())
}

func TestL2CAPChannel(t *testing.T) {
	r := newReader(t, []byte{0x00, 0x00, 0x00, 0xC0})
	local, remote := net.Pipe()
	defer remote.Close()

	var dialed struct {
		address, addrType string
		psm               int
	}
	dialer := func(ctx context.Context, address, addrType string, psm int) (io.ReadWriteCloser, error) {
		dialed.address, dialed.addrType, dialed.psm = address, addrType, psm
		return local, nil
	}
	c, cb := newCentral(t, r, WithDialer(dialer))
	ctx := testCtx(t)
	connect(t, ctx, c, r)

	psm, ok := c.L2CAPPSM()
	require.True(t, ok)
	require.NoError(t, c.ConnectL2CAP(ctx, psm))
	assert.True(t, c.UsingL2CAP())
	assert.Equal(t, "C0:11:22:33:44:55", dialed.address)
	assert.Equal(t, "random", dialed.addrType)
	assert.Equal(t, 192, dialed.psm)

	in, err := cbor.Marshal(map[string]int{"seq": 1})
	require.NoError(t, err)
	go remote.Write(in)
	select {
	case msg := <-c.IncomingMessages():
		assert.Equal(t, in, msg)
	case <-ctx.Done():
		t.Fatal("no message")
	}

	out, err := cbor.Marshal("response")
	require.NoError(t, err)
	errc := make(chan error, 1)
	go func() { errc <- c.SendMessage(ctx, out) }()
	buf := make([]byte, 64)
	n, err := remote.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, out, buf[:n])
	require.NoError(t, <-errc)

	// No characteristic writes on L2CAP.
	assert.Empty(t, r.bus.callsTo(bluezGattChar+".WriteValue"))

	remote.Close()
	waitClosed(t, cb)
	drained(t, c.IncomingMessages())
}

// A reader that stops reading must not pin a send past its context.
func TestL2CAPSendCancelled(t *testing.T) {
	tests := []struct {
		name     string
		wrap     func(net.Conn) io.ReadWriteCloser
		linkLost bool
	}{
		{"deadline", func(c net.Conn) io.ReadWriteCloser { return c }, false},
		{"no deadline", func(c net.Conn) io.ReadWriteCloser { return struct{ io.ReadWriteCloser }{c} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReader(t, []byte{0x00, 0xC0})
			local, remote := net.Pipe()
			defer remote.Close()
			c, cb := newCentral(t, r, WithDialer(func(context.Context, string, string, int) (io.ReadWriteCloser, error) {
				return tt.wrap(local), nil
			}))
			ctx := testCtx(t)
			connect(t, ctx, c, r)
			require.NoError(t, c.ConnectL2CAP(ctx, 192))

			out, err := cbor.Marshal("never read")
			require.NoError(t, err)
			sendCtx, cancel := context.WithCancel(ctx)
			errc := make(chan error, 1)
			go func() { errc <- c.SendMessage(sendCtx, out) }()

			time.Sleep(20 * time.Millisecond)
			cancel()
			select {
			case err := <-errc:
				assert.ErrorIs(t, err, context.Canceled)
			case <-time.After(time.Second):
				t.Fatal("send ignored cancellation")
			}

			if tt.linkLost {
				waitClosed(t, cb)
				return
			}
			select {
			case <-cb.closed:
				t.Fatal("link dropped on a cancelled send")
			case <-time.After(20 * time.Millisecond):
			}
		})
	}
}

func TestL2CAPDialFailure(t *testing.T) {
	r := newReader(t, nil)
	dialErr := errors.New("connection refused")
	c, _ := newCentral(t, r, WithDialer(func(context.Context, string, string, int) (io.ReadWriteCloser, error) {
		return nil, dialErr
	}))
	ctx := testCtx(t)
	connect(t, ctx, c, r)

	assert.ErrorIs(t, c.ConnectL2CAP(ctx, 192), dialErr)
	assert.False(t, c.UsingL2CAP())
}

func TestCloseIsIdempotentAndSilent(t *testing.T) {
	r := newReader(t, nil)
	c, cb := newCentral(t, r)
	ctx := testCtx(t)
	connect(t, ctx, c, r)
	require.NoError(t, c.SubscribeToCharacteristics(ctx))

	c.Close()
	c.Close()

	assert.Len(t, r.bus.callsTo(bluezDevice1+".Disconnect"), 1)
	assert.Len(t, r.bus.callsTo(bluezGattChar+".StopNotify"), 2)
	drained(t, c.IncomingMessages())

	// Signals after Close reach nobody.
	r.bus.emit(devicePath, bluezDevice1, "Connected", false)
	select {
	case <-cb.closed:
		t.Fatal("onClosed called after Close")
	case err := <-cb.errs:
		t.Fatalf("onError called after Close: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	assert.ErrorIs(t, c.WriteToStateCharacteristic(ctx, ble.StateEnd), ErrLinkDown)
}

func TestParsePSM(t *testing.T) {
	tests := []struct {
		name    string
		value   []byte
		want    int
		wantErr bool
	}{
		{"two bytes", []byte{0x00, 0xC0}, 192, false},
		{"four bytes", []byte{0x00, 0x00, 0x10, 0x01}, 0x1001, false},
		{"empty", nil, 0, true},
		{"three bytes", []byte{1, 2, 3}, 0, true},
		{"zero", []byte{0, 0}, 0, true},
		{"too large", []byte{0x00, 0x01, 0x00, 0x00}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePSM(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := parseAddress("C0:11:22:33:44:5F")
	require.NoError(t, err)
	assert.Equal(t, [6]byte{0xC0, 0x11, 0x22, 0x33, 0x44, 0x5F}, addr)

	for _, bad := range []string{"", "C0:11:22:33:44", "C0:11:22:33:44:GG", "C011:22:33:44:55:66"} {
		_, err := parseAddress(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, addrLERandom, leAddressType("random"))
	assert.Equal(t, addrLEPublic, leAddressType("public"))
	assert.Equal(t, addrLEPublic, leAddressType(""))
}
