package bluez

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

// BlueZ D-Bus names.
const (
	bluezBus          = "org.bluez"
	bluezAdapter1     = "org.bluez.Adapter1"
	bluezDevice1      = "org.bluez.Device1"
	bluezGattService  = "org.bluez.GattService1"
	bluezGattChar     = "org.bluez.GattCharacteristic1"
	dbusProperties    = "org.freedesktop.DBus.Properties"
	dbusObjectManager = "org.freedesktop.DBus.ObjectManager"

	propertiesChanged = dbusProperties + ".PropertiesChanged"
)

// BlueZ error names tolerated by the central.
const (
	errInProgress       = "org.bluez.Error.InProgress"
	errAlreadyConnected = "org.bluez.Error.AlreadyConnected"
)

// ManagedObjects is the reply of ObjectManager.GetManagedObjects: object
// path to interface name to property map.
type ManagedObjects map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// Bus is the part of the system bus the central uses. All calls address
// the org.bluez service.
type Bus interface {
	// Call invokes a fully qualified method on path and returns the reply
	// body.
	Call(ctx context.Context, path dbus.ObjectPath, method string, args ...any) ([]any, error)

	// Property reads a fully qualified property of path.
	Property(path dbus.ObjectPath, name string) (dbus.Variant, error)

	// ManagedObjects lists every object BlueZ exports.
	ManagedObjects(ctx context.Context) (ManagedObjects, error)

	// WatchProperties delivers PropertiesChanged signals emitted by path
	// until stop is called. The channel is closed after stop.
	WatchProperties(path dbus.ObjectPath) (signals <-chan *dbus.Signal, stop func(), err error)
}

// systemBus implements Bus on a godbus connection.
type systemBus struct {
	conn *dbus.Conn
}

// SystemBus connects to the shared D-Bus system bus.
func SystemBus() (Bus, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system D-Bus: %w", err)
	}
	return NewBus(conn), nil
}

// NewBus wraps an existing connection.
func NewBus(conn *dbus.Conn) Bus {
	return &systemBus{conn: conn}
}

func (b *systemBus) Call(ctx context.Context, path dbus.ObjectPath, method string, args ...any) ([]any, error) {
	call := b.conn.Object(bluezBus, path).CallWithContext(ctx, method, 0, args...)
	if call.Err != nil {
		return nil, call.Err
	}
	return call.Body, nil
}

func (b *systemBus) Property(path dbus.ObjectPath, name string) (dbus.Variant, error) {
	return b.conn.Object(bluezBus, path).GetProperty(name)
}

func (b *systemBus) ManagedObjects(ctx context.Context) (ManagedObjects, error) {
	var objects ManagedObjects
	call := b.conn.Object(bluezBus, "/").CallWithContext(ctx, dbusObjectManager+".GetManagedObjects", 0)
	if call.Err != nil {
		return nil, fmt.Errorf("GetManagedObjects failed: %w", call.Err)
	}
	if err := call.Store(&objects); err != nil {
		return nil, fmt.Errorf("failed to parse managed objects: %w", err)
	}
	return objects, nil
}

func (b *systemBus) WatchProperties(path dbus.ObjectPath) (<-chan *dbus.Signal, func(), error) {
	rule := fmt.Sprintf(
		"type='signal',sender='%s',interface='%s',member='PropertiesChanged',path='%s'",
		bluezBus, dbusProperties, path,
	)
	if call := b.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule); call.Err != nil {
		return nil, nil, fmt.Errorf("failed to add signal match: %w", call.Err)
	}

	in := make(chan *dbus.Signal, 64)
	out := make(chan *dbus.Signal, 64)
	done := make(chan struct{})
	b.conn.Signal(in)

	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case sig, ok := <-in:
				if !ok {
					return
				}
				// The connection fans every signal out to every channel.
				if sig.Path != path || sig.Name != propertiesChanged {
					continue
				}
				select {
				case out <- sig:
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			b.conn.RemoveSignal(in)
			b.conn.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, rule)
		})
	}
	return out, stop, nil
}

// property reads iface.name from path as a T.
func property[T any](bus Bus, path dbus.ObjectPath, iface, name string) (T, error) {
	var zero T
	variant, err := bus.Property(path, iface+"."+name)
	if err != nil {
		return zero, err
	}
	val, ok := variant.Value().(T)
	if !ok {
		return zero, fmt.Errorf("property %s.%s has unexpected type %T", iface, name, variant.Value())
	}
	return val, nil
}

// changedValue extracts a changed property from a PropertiesChanged
// signal body: (interface, changed map, invalidated list).
func changedValue(sig *dbus.Signal, name string) (any, bool) {
	if len(sig.Body) < 2 {
		return nil, false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return nil, false
	}
	v, ok := changed[name]
	if !ok {
		return nil, false
	}
	return v.Value(), true
}

// errorName returns the D-Bus error name carried by err, if any.
func errorName(err error) string {
	var e dbus.Error
	if errors.As(err, &e) {
		return e.Name
	}
	var pe *dbus.Error
	if errors.As(err, &pe) {
		return pe.Name
	}
	return ""
}
