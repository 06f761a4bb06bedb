// Package log provides structured protocol capture for mdoc proximity
// transports.
//
// This package defines the Logger interface and Event types for capturing
// transport-level events: raw frames moved over the radio, state
// characteristic markers, transport state changes, and errors. It is
// separate from operational logging (slog) - protocol capture provides a
// complete machine-readable event trace for debugging and analysis.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	opts.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	opts.ProtocolLogger, _ = log.NewFileLogger("/var/log/mdoc/holder.mlog")
//
//	// Both: use MultiLogger
//	opts.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at two layers:
//   - Radio: frame bytes written to or read from the GATT or L2CAP channel (FrameEvent),
//     and START/END writes to the state characteristic (MarkerEvent)
//   - Transport: state machine transitions (StateChangeEvent) and failures (ErrorEventData)
//
// # File Format
//
// Log files use CBOR encoding with .mlog extension. The mdoc-log CLI tool
// provides viewing and statistics.
package log
