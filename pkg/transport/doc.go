// Package transport provides the mdoc proximity transport layer.
//
// A transport moves opaque byte frames between a credential holder and a
// reader. It does not encrypt: session establishment happens above it.
//
// The transport layer handles:
//   - Connection bootstrap over BLE (scan, GATT discovery, ident check)
//   - Optional L2CAP takeover of the data path
//   - The zero-length end-of-session sentinel
//   - Lifecycle state and its propagation from asynchronous radio events
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   Session (SessionEstablish,   │
//	│   SessionData, opaque here)    │
//	├────────────────────────────────┤
//	│ GATT chunks  │ CBOR over L2CAP │
//	├────────────────────────────────┤
//	│        BLE (central mode)      │
//	└────────────────────────────────┘
//
// # State Machine
//
//	IDLE → SCANNING → CONNECTING → CONNECTED
//	  └────────┴───────────┴───────────┴──→ FAILED | CLOSED
//
// FAILED and CLOSED are terminal. A failed transport is never retried;
// construct a new one instead. Entering a terminal state releases the
// radio exactly once.
//
// # Concurrency
//
// Every state change happens under a per-transport mutex. Open and
// SendMessage hold it for the whole operation and run it as a single
// cancellable task. Close and the radio's error callback cancel that task
// before taking the mutex, so a bootstrap blocked deep in the radio
// unwinds instead of deadlocking. WaitForMessage never blocks while
// holding the mutex.
package transport
