package transport

import (
	"log/slog"

	"github.com/mdoc-proximity/mdoc-go/pkg/log"
)

// Options configures a transport. Options are copied at construction and
// never change afterwards.
type Options struct {
	// UseL2CAP permits upgrading the data path to an L2CAP channel when the
	// peer offers one. A PSM known at engagement is used regardless.
	UseL2CAP bool

	// Logger receives operational logs (default: slog.Default()).
	Logger *slog.Logger

	// ProtocolLogger receives protocol capture events (nil = disabled).
	ProtocolLogger log.Logger
}

// DefaultOptions returns the default transport options.
func DefaultOptions() Options {
	return Options{
		Logger: slog.Default(),
	}
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.ProtocolLogger == nil {
		o.ProtocolLogger = log.NoopLogger{}
	}
	return o
}
