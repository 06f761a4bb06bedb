// Command mdoc-sim runs an mdoc holder's BLE central transport against a
// simulated reader, or against a real one through BlueZ.
//
// The holder scans for the reader's service UUID, connects over GATT (or
// L2CAP when a PSM is known or offered), answers a number of CBOR requests
// and ends the session.
//
// Usage:
//
//	mdoc-sim [flags]
//
// Flags:
//
//	-config string        YAML file with settings overrides
//	-state-dir string     Directory for persistent settings (SQLite); empty keeps them in memory
//	-psm int              L2CAP PSM learned during engagement (0 = none)
//	-reader-psm int       L2CAP PSM published by the simulated reader (0 = GATT only)
//	-mtu int              Largest MTU the simulated reader accepts (default 185)
//	-l2cap string         Override the L2CAP setting: on, off (default: from settings)
//	-requests int         Number of reader requests to answer (default 3)
//	-open-attempts int    Connection attempts before giving up (default 1)
//	-doctype string       Document type carried in the requests
//	-timeout duration     Overall timeout (default 30s)
//	-protocol-log string  File path for protocol event logging (CBOR format)
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-interactive          Drive the session from a command shell
//	-adapter string       Talk to a real reader through BlueZ on this adapter (e.g. hci0)
//	-method string        Reader's DeviceRetrievalMethod, hex CBOR (with -adapter)
//	-reader-key string    Reader's ephemeral COSE_Key, hex CBOR (with -adapter)
//
// Examples:
//
//	# GATT session answering five requests
//	mdoc-sim -requests 5
//
//	# Reader offers L2CAP, capture everything
//	mdoc-sim -reader-psm 192 -protocol-log /tmp/session.mlog -log-level debug
//
//	# Explore by hand
//	mdoc-sim -interactive -reader-psm 192
//
//	# Real reader on the first adapter
//	mdoc-sim -adapter hci0 -method 0x8302... -reader-key 0xa401...
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mdoc-proximity/mdoc-go/cmd/mdoc-sim/interactive"
	"github.com/mdoc-proximity/mdoc-go/pkg/log"
	"github.com/mdoc-proximity/mdoc-go/pkg/settings"
	"github.com/mdoc-proximity/mdoc-go/pkg/storage"
	"github.com/mdoc-proximity/mdoc-go/pkg/transport"
)

// Config holds the simulator configuration.
type Config struct {
	ConfigFile  string
	StateDir    string
	PSM         int
	ReaderPSM   int
	MTU         int
	L2CAP       string
	Requests    int
	Attempts    int
	DocType     string
	Timeout     time.Duration
	ProtocolLog string
	LogLevel    string
	Interactive bool
	Adapter     string
	Method      string
	ReaderKey   string
}

var config Config

func init() {
	flag.StringVar(&config.ConfigFile, "config", "", "YAML file with settings overrides")
	flag.StringVar(&config.StateDir, "state-dir", "", "Directory for persistent settings (empty = in memory)")
	flag.IntVar(&config.PSM, "psm", 0, "L2CAP PSM learned during engagement (0 = none)")
	flag.IntVar(&config.ReaderPSM, "reader-psm", 0, "L2CAP PSM published by the simulated reader (0 = GATT only)")
	flag.IntVar(&config.MTU, "mtu", 185, "Largest MTU the simulated reader accepts")
	flag.StringVar(&config.L2CAP, "l2cap", "", "Override the L2CAP setting: on, off")
	flag.IntVar(&config.Requests, "requests", 3, "Number of reader requests to answer")
	flag.IntVar(&config.Attempts, "open-attempts", 1, "Connection attempts before giving up")
	flag.StringVar(&config.DocType, "doctype", "org.iso.18013.5.1.mDL", "Document type carried in the requests")
	flag.DurationVar(&config.Timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.StringVar(&config.ProtocolLog, "protocol-log", "", "File path for protocol event logging (CBOR format)")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&config.Interactive, "interactive", false, "Drive the session from a command shell")
	flag.StringVar(&config.Adapter, "adapter", "", "Talk to a real reader through BlueZ on this adapter (e.g. hci0)")
	flag.StringVar(&config.Method, "method", "", "Reader's DeviceRetrievalMethod, hex CBOR (with -adapter)")
	flag.StringVar(&config.ReaderKey, "reader-key", "", "Reader's ephemeral COSE_Key, hex CBOR (with -adapter)")
}

func main() {
	flag.Parse()

	if err := validateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	logger := setupLogging(config.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cancel, logger); err != nil {
		logger.Error("mdoc-sim failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger) error {
	store, closeStore, err := openStore(config.StateDir)
	if err != nil {
		return err
	}
	defer closeStore()

	model, err := settings.Open(ctx, store, false)
	if err != nil {
		return err
	}
	if config.ConfigFile != "" {
		if err := model.LoadYAMLFile(ctx, config.ConfigFile); err != nil {
			return err
		}
		logger.Info("applied settings overrides", "file", config.ConfigFile)
	}

	var fileLogger *log.FileLogger
	if config.ProtocolLog != "" {
		fileLogger, err = log.NewFileLogger(config.ProtocolLog)
		if err != nil {
			return fmt.Errorf("open protocol log: %w", err)
		}
		defer fileLogger.Close()
		logger.Info("protocol logging", "path", config.ProtocolLog)
	}

	cfg := simConfig{
		Options:      transportOptions(model, logger, fileLogger),
		ReaderPSM:    config.ReaderPSM,
		MTU:          config.MTU,
		DocType:      config.DocType,
		OpenAttempts: config.Attempts,
	}
	if config.PSM != 0 {
		psm := config.PSM
		cfg.EngagementPSM = &psm
	}

	if config.Adapter != "" {
		target, err := parseLiveTarget(config.Method, config.ReaderKey)
		if err != nil {
			return err
		}
		if cfg.EngagementPSM != nil {
			target.PSM = cfg.EngagementPSM
		}
		ctx, stop := context.WithTimeout(ctx, config.Timeout)
		defer stop()

		res, err := runLive(ctx, target, cfg.Options, config.Requests, logger)
		if err != nil {
			return err
		}
		logResult(logger, res)
		return nil
	}

	sess, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	if config.Interactive {
		shell, err := interactive.New(sess, model, config.Timeout)
		if err != nil {
			return err
		}
		shell.Run(ctx, cancel)
		return nil
	}

	ctx, stop := context.WithTimeout(ctx, config.Timeout)
	defer stop()

	res, err := runExchange(ctx, sess, config.Requests)
	if err != nil {
		return err
	}
	logResult(logger, res)
	return nil
}

func logResult(logger *slog.Logger, res exchangeResult) {
	logger.Info("session complete",
		"conn_id", res.ConnectionID,
		"requests", res.Requests,
		"open_attempts", res.OpenAttempts,
		"l2cap", res.L2CAP,
		"end_marker", res.EndMarker,
		"scanning", res.ScanningDuration,
		"elapsed", res.Elapsed)
}

func setupLogging(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

func validateConfig() error {
	if config.PSM < 0 || config.PSM > 0xFFFF {
		return fmt.Errorf("psm must be 0-65535, got %d", config.PSM)
	}
	if config.ReaderPSM < 0 || config.ReaderPSM > 0xFFFF {
		return fmt.Errorf("reader-psm must be 0-65535, got %d", config.ReaderPSM)
	}
	if config.MTU < 23 || config.MTU > 517 {
		return fmt.Errorf("mtu must be 23-517, got %d", config.MTU)
	}
	if config.Attempts < 1 {
		return fmt.Errorf("open-attempts must be at least 1, got %d", config.Attempts)
	}
	if config.Requests < 0 {
		return fmt.Errorf("requests must not be negative, got %d", config.Requests)
	}
	switch config.L2CAP {
	case "", "on", "off":
	default:
		return fmt.Errorf("l2cap must be on or off, got %q", config.L2CAP)
	}
	if config.Adapter != "" {
		if config.Interactive {
			return fmt.Errorf("interactive mode needs the simulated reader; drop -adapter")
		}
		if config.Method == "" || config.ReaderKey == "" {
			return fmt.Errorf("-adapter needs -method and -reader-key")
		}
	}
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", config.LogLevel)
	}
	return nil
}

// openStore returns SQLite storage under dir, or ephemeral storage when dir
// is empty.
func openStore(dir string) (storage.Storage, func(), error) {
	if dir == "" {
		return storage.NewEphemeralStorage(), func() {}, nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create state dir: %w", err)
	}
	db, err := storage.OpenSQLite(filepath.Join(dir, "settings.db"))
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = db.Close() }, nil
}

// transportOptions derives holder options from the settings and applies
// the command-line override.
func transportOptions(model *settings.Model, logger *slog.Logger, fileLogger *log.FileLogger) transport.Options {
	opts := model.TransportOptions(transport.RoleHolder)
	switch config.L2CAP {
	case "on":
		opts.UseL2CAP = true
	case "off":
		opts.UseL2CAP = false
	}
	opts.Logger = logger
	if plog := protocolLogger(fileLogger, logger); plog != nil {
		opts.ProtocolLogger = plog
	}
	return opts
}
