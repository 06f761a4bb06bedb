// Package blesim is an in-memory BLE radio for tests and the simulator CLI.
//
// An Air connects simulated reader peripherals with simulated centrals.
// Central implements ble.CentralManager: it scans the Air, connects to a
// Peripheral, exchanges GATT chunks with it or opens an L2CAP channel
// backed by net.Pipe. Faults can be injected per operation, and either side
// can drop the link.
package blesim
