// Package bluez implements ble.CentralManager on Linux using BlueZ over the
// D-Bus system bus.
//
// Scanning, connection and GATT access go through the org.bluez object
// tree: Adapter1 discovery with a service UUID filter, Device1.Connect,
// GattCharacteristic1 ReadValue/WriteValue and notifications delivered as
// PropertiesChanged signals. BlueZ exchanges the ATT MTU on its own; the
// result is read back from the device or characteristic properties.
//
// L2CAP connection-oriented channels are not exposed on D-Bus, so
// ConnectL2CAP opens an AF_BLUETOOTH socket directly. That part is
// Linux-only.
//
// The system bus connection is shared with the rest of the process and is
// never closed here.
package bluez
