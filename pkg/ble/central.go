package ble

import (
	"context"
	"crypto/ecdh"

	"github.com/google/uuid"
)

// CentralManager is the BLE central role as seen by a transport.
//
// Blocking methods must return promptly with ctx.Err() once ctx is done.
// Callbacks registered with SetCallbacks may fire from any goroutine, at
// any time, including while a blocking method is in progress.
type CentralManager interface {
	// SetUUIDs assigns the characteristic identifiers. Must be called
	// before any connection attempt.
	SetUUIDs(uuids CharacteristicUUIDs)

	// SetCallbacks registers the asynchronous error and disconnect
	// notifications.
	SetCallbacks(onError func(err error), onClosed func())

	// WaitForPowerOn blocks until the adapter is powered on.
	WaitForPowerOn(ctx context.Context) error

	// WaitForPeripheralWithUUID scans until a peripheral advertising
	// serviceUUID is found.
	WaitForPeripheralWithUUID(ctx context.Context, serviceUUID uuid.UUID) error

	// ConnectToPeripheral opens the GATT link to the found peripheral.
	ConnectToPeripheral(ctx context.Context) error

	// RequestMTU negotiates the ATT MTU.
	RequestMTU(ctx context.Context) error

	// PeripheralDiscoverServices discovers the service with the given UUID.
	PeripheralDiscoverServices(ctx context.Context, serviceUUID uuid.UUID) error

	// PeripheralDiscoverCharacteristics discovers the configured
	// characteristics, including the optional L2CAP PSM characteristic.
	PeripheralDiscoverCharacteristics(ctx context.Context) error

	// CheckReaderIdentMatches reads the identification characteristic and
	// verifies it against the ident derived from eSenderKey.
	CheckReaderIdentMatches(ctx context.Context, eSenderKey *ecdh.PublicKey) error

	// ConnectL2CAP opens an L2CAP channel on psm. All subsequent I/O uses it.
	ConnectL2CAP(ctx context.Context, psm int) error

	// SubscribeToCharacteristics enables notifications on the
	// server-to-client characteristic and the state characteristic.
	SubscribeToCharacteristics(ctx context.Context) error

	// WriteToStateCharacteristic writes a single marker byte.
	WriteToStateCharacteristic(ctx context.Context, value byte) error

	// SendMessage writes one complete message on the active channel.
	SendMessage(ctx context.Context, msg []byte) error

	// IncomingMessages delivers complete inbound messages. The channel is
	// closed when the link goes away.
	IncomingMessages() <-chan []byte

	// UsingL2CAP reports whether the active channel is L2CAP.
	UsingL2CAP() bool

	// L2CAPPSM returns the PSM read from the L2CAP characteristic, if any.
	L2CAPPSM() (int, bool)

	// Close releases all radio resources. It is idempotent.
	Close()
}
