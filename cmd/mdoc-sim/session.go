package main

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/mdoc-proximity/mdoc-go/cmd/mdoc-sim/interactive"
	"github.com/mdoc-proximity/mdoc-go/internal/blesim"
	"github.com/mdoc-proximity/mdoc-go/pkg/ble"
	"github.com/mdoc-proximity/mdoc-go/pkg/log"
	"github.com/mdoc-proximity/mdoc-go/pkg/transport"
)

// simConfig describes one simulated holder/reader pair.
type simConfig struct {
	Options transport.Options

	// EngagementPSM is the PSM learned during engagement. Nil means the
	// holder discovers the data path over GATT.
	EngagementPSM *int

	// ReaderPSM is published by the simulated reader. Zero disables L2CAP
	// on the reader side.
	ReaderPSM int

	// MTU is the largest MTU the reader accepts.
	MTU int

	// DocType is carried in the simulated requests.
	DocType string

	// OpenAttempts bounds how often runExchange tries to open the holder
	// transport. Values below one mean a single attempt.
	OpenAttempts int
	Backoff      BackoffConfig
}

// session pairs a holder transport with a simulated reader. A transport is
// single use, so reset builds a fresh central, peripheral and transport on
// the same air and service UUID.
type session struct {
	cfg         simConfig
	logger      *slog.Logger
	air         *blesim.Air
	serviceUUID uuid.UUID
	readerKey   *ecdh.PrivateKey

	mu         sync.Mutex
	peripheral *blesim.Peripheral
	central    *blesim.Central
	transport  *transport.BleTransport
}

func newSession(cfg simConfig) (*session, error) {
	readerKey, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate reader key: %w", err)
	}
	logger := cfg.Options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &session{
		cfg:         cfg,
		logger:      logger,
		air:         blesim.NewAir(),
		serviceUUID: uuid.New(),
		readerKey:   readerKey,
	}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset discards the current transport and reader and starts over.
func (s *session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()

	p, err := s.air.Advertise(blesim.PeripheralConfig{
		ServiceUUID: s.serviceUUID,
		EReaderKey:  s.readerKey.PublicKey(),
		PSM:         s.cfg.ReaderPSM,
		MTU:         s.cfg.MTU,
	})
	if err != nil {
		return fmt.Errorf("advertise reader: %w", err)
	}

	c := blesim.NewCentral(s.air, blesim.WithLogger(s.logger.With("component", "central")))
	t := transport.NewBleCentralTransport(transport.RoleHolder, s.cfg.Options, c, s.serviceUUID, s.cfg.EngagementPSM)
	if s.cfg.Options.ProtocolLogger != nil {
		c.SetProtocolLogger(s.cfg.Options.ProtocolLogger, t.ConnectionID())
	}

	s.peripheral, s.central, s.transport = p, c, t
	s.logger.Info("session ready",
		"conn_id", t.ConnectionID(),
		"service_uuid", s.serviceUUID,
		"use_l2cap", s.cfg.Options.UseL2CAP,
		"reader_psm", s.cfg.ReaderPSM)
	return nil
}

func (s *session) teardownLocked() {
	if s.transport != nil {
		_ = s.transport.Close()
	}
	if s.peripheral != nil {
		s.peripheral.Stop()
		s.peripheral.Disconnect()
	}
}

// Close releases the transport and withdraws the reader.
func (s *session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}

func (s *session) current() (*transport.BleTransport, *blesim.Peripheral, *blesim.Central) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport, s.peripheral, s.central
}

// Holder returns the current holder transport.
func (s *session) Holder() interactive.Transport {
	t, _, _ := s.current()
	return t
}

// Open connects the holder to the reader.
func (s *session) Open(ctx context.Context) error {
	t, _, _ := s.current()
	return t.Open(ctx, s.readerKey.PublicKey())
}

// UsingL2CAP reports whether the data path is an L2CAP channel.
func (s *session) UsingL2CAP() bool {
	_, _, c := s.current()
	return c.UsingL2CAP()
}

// ReaderSend sends msg from the reader to the holder.
func (s *session) ReaderSend(ctx context.Context, msg []byte) error {
	_, p, _ := s.current()
	return p.Send(ctx, msg)
}

// ReaderReceive waits for the next message from the holder.
func (s *session) ReaderReceive(ctx context.Context) ([]byte, error) {
	_, p, _ := s.current()
	return p.Receive(ctx)
}

// ReaderMarkers delivers state characteristic writes seen by the reader.
func (s *session) ReaderMarkers() <-chan byte {
	_, p, _ := s.current()
	return p.Markers()
}

// Disconnect drops the link from the reader side.
func (s *session) Disconnect() {
	_, p, _ := s.current()
	p.Disconnect()
}

type simRequest struct {
	Seq     int    `cbor:"1,keyasint"`
	DocType string `cbor:"2,keyasint"`
}

type simResponse struct {
	Seq     int    `cbor:"1,keyasint"`
	DocType string `cbor:"2,keyasint"`
	Status  uint   `cbor:"3,keyasint"`
}

// exchangeResult summarizes a completed run.
type exchangeResult struct {
	ConnectionID     string
	Requests         int
	OpenAttempts     int
	L2CAP            bool
	EndMarker        bool
	ScanningDuration time.Duration
	Elapsed          time.Duration
}

// runExchange opens the holder transport and answers n reader requests,
// then ends the session. On GATT the holder writes END and the reader waits
// for it; on L2CAP the holder just closes.
func runExchange(ctx context.Context, s *session, n int) (exchangeResult, error) {
	started := time.Now()
	res := exchangeResult{Requests: n}

	attempts, err := openWithRetry(ctx, s, s.cfg.OpenAttempts, NewBackoff(s.cfg.Backoff))
	res.OpenAttempts = attempts
	if err != nil {
		return res, err
	}
	t, _, _ := s.current()
	res.ConnectionID = t.ConnectionID()
	res.L2CAP = s.UsingL2CAP()
	res.ScanningDuration, _ = t.ScanningDuration()

	readerDone := make(chan error, 1)
	go func() {
		readerDone <- runReader(ctx, s, n, res.L2CAP)
	}()

	endMarker, err := serveHolder(ctx, t, n, s.logger)
	if err != nil {
		return res, err
	}
	res.EndMarker = endMarker

	if err := <-readerDone; err != nil {
		return res, fmt.Errorf("reader: %w", err)
	}
	_ = t.Close()

	res.Elapsed = time.Since(started)
	return res, nil
}

// serveHolder answers n requests on an open holder transport and then ends
// the session. It reports whether the END marker was written; on L2CAP
// there is none and the caller just closes.
func serveHolder(ctx context.Context, t interactive.Transport, n int, logger *slog.Logger) (bool, error) {
	for i := 0; i < n; i++ {
		msg, err := t.WaitForMessage(ctx)
		if err != nil {
			return false, fmt.Errorf("request %d: %w", i, err)
		}
		var req simRequest
		if err := cbor.Unmarshal(msg, &req); err != nil {
			return false, fmt.Errorf("request %d: decode: %w", i, err)
		}
		resp, err := cbor.Marshal(simResponse{Seq: req.Seq, DocType: req.DocType})
		if err != nil {
			return false, err
		}
		if err := t.SendMessage(ctx, resp); err != nil {
			return false, fmt.Errorf("response %d: %w", i, err)
		}
	}

	err := t.SendMessage(ctx, nil)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, transport.ErrTerminationUnsupported):
		logger.Debug("session termination not supported on L2CAP, closing")
		return false, nil
	default:
		return false, fmt.Errorf("end session: %w", err)
	}
}

func runReader(ctx context.Context, s *session, n int, l2cap bool) error {
	for i := 0; i < n; i++ {
		req, err := cbor.Marshal(simRequest{Seq: i, DocType: s.cfg.DocType})
		if err != nil {
			return err
		}
		if err := s.ReaderSend(ctx, req); err != nil {
			return fmt.Errorf("send request %d: %w", i, err)
		}
		msg, err := s.ReaderReceive(ctx)
		if err != nil {
			return fmt.Errorf("receive response %d: %w", i, err)
		}
		var resp simResponse
		if err := cbor.Unmarshal(msg, &resp); err != nil {
			return fmt.Errorf("decode response %d: %w", i, err)
		}
		if resp.Seq != i {
			return fmt.Errorf("response %d: got seq %d", i, resp.Seq)
		}
	}
	if l2cap {
		return nil
	}

	for {
		select {
		case m := <-s.ReaderMarkers():
			if m == ble.StateEnd {
				return nil
			}
		case <-ctx.Done():
			return fmt.Errorf("waiting for END: %w", ctx.Err())
		}
	}
}

// protocolLogger combines an optional capture file with debug logging of
// each event.
func protocolLogger(file *log.FileLogger, logger *slog.Logger) log.Logger {
	var loggers []log.Logger
	if file != nil {
		loggers = append(loggers, file)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		loggers = append(loggers, log.NewSlogAdapter(logger))
	}
	if len(loggers) == 0 {
		return nil
	}
	return log.NewMultiLogger(loggers...)
}
