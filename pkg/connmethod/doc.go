// Package connmethod describes how an mdoc peer can be reached.
//
// A connection method is an immutable descriptor derived from engagement
// or configuration. It is encoded as a DeviceRetrievalMethod:
//
//	DeviceRetrievalMethod = [
//	    type: uint,        ; 2 = BLE
//	    version: uint,     ; 1
//	    options: { * int => any }
//	]
//
// Only BLE is implemented; NFC and Wi-Fi Aware retrieval are not.
package connmethod
