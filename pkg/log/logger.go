package log

// Logger receives protocol events from transports, radio backends and
// L2CAP framers. A nil Logger disables capture.
//
// Log is called from radio goroutines and with the transport lock held,
// so implementations must be safe for concurrent use and must not block.
type Logger interface {
	Log(event Event)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(Event)

// Log calls f(event).
func (f LoggerFunc) Log(event Event) { f(event) }

// NoopLogger discards all events.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

var (
	_ Logger = NoopLogger{}
	_ Logger = LoggerFunc(nil)
)
