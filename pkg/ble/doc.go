// Package ble defines the radio capability consumed by the proximity
// transports and the BLE-level encodings they depend on.
//
// The CentralManager interface is the boundary to the platform's BLE
// stack: power state, scanning, GATT client operations and L2CAP sockets.
// A transport owns exactly one CentralManager and releases it with Close.
//
// Besides the interface, the package provides:
//   - characteristic UUID sets for central client and peripheral server mode
//   - the BLE Ident derivation used to authenticate the reader
//   - GATT chunking (Fragment, Reassembler) for characteristic-based framing
//   - a CBOR-delimited Framer for L2CAP channels
package ble
