package main

import (
	"context"
	"crypto/ecdh"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mdoc-proximity/mdoc-go/pkg/ble"
	"github.com/mdoc-proximity/mdoc-go/pkg/ble/bluez"
	"github.com/mdoc-proximity/mdoc-go/pkg/connmethod"
	"github.com/mdoc-proximity/mdoc-go/pkg/cose"
	"github.com/mdoc-proximity/mdoc-go/pkg/log"
	"github.com/mdoc-proximity/mdoc-go/pkg/transport"
)

// liveTarget is a reader reached through a real adapter, as learned from
// its engagement.
type liveTarget struct {
	ServiceUUID uuid.UUID
	PSM         *int
	ReaderKey   *ecdh.PublicKey
}

// liveCentral is a radio the holder can drive outside the simulator.
type liveCentral interface {
	ble.CentralManager
	SetProtocolLogger(l log.Logger, connID string)
}

// parseLiveTarget decodes a hex DeviceRetrievalMethod and a hex COSE_Key.
func parseLiveTarget(methodHex, keyHex string) (liveTarget, error) {
	raw, err := decodeHex(methodHex)
	if err != nil {
		return liveTarget{}, fmt.Errorf("method: %w", err)
	}
	m, err := connmethod.Decode(raw)
	if err != nil {
		return liveTarget{}, fmt.Errorf("method: %w", err)
	}
	if !m.SupportsCentralClientMode || m.CentralClientModeUUID == nil {
		return liveTarget{}, fmt.Errorf("method %s has no central client mode UUID", m)
	}

	raw, err = decodeHex(keyHex)
	if err != nil {
		return liveTarget{}, fmt.Errorf("reader key: %w", err)
	}
	key, err := cose.DecodePublicKey(raw)
	if err != nil {
		return liveTarget{}, fmt.Errorf("reader key: %w", err)
	}

	return liveTarget{
		ServiceUUID: *m.CentralClientModeUUID,
		PSM:         m.PeripheralServerModePSM,
		ReaderKey:   key,
	}, nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}

// runLive connects to a reader through BlueZ on the configured adapter.
func runLive(ctx context.Context, target liveTarget, opts transport.Options, n int, logger *slog.Logger) (exchangeResult, error) {
	bus, err := bluez.SystemBus()
	if err != nil {
		return exchangeResult{}, err
	}
	central := bluez.NewCentral(bus,
		bluez.WithAdapter(config.Adapter),
		bluez.WithLogger(logger.With("component", "bluez")))
	return runLiveWith(ctx, central, target, opts, n, logger)
}

// runLiveWith opens one holder transport on central and answers n
// requests. There is no retry; a live reader expects a new engagement.
func runLiveWith(ctx context.Context, central liveCentral, target liveTarget, opts transport.Options, n int, logger *slog.Logger) (exchangeResult, error) {
	started := time.Now()

	t := transport.NewBleCentralTransport(transport.RoleHolder, opts, central, target.ServiceUUID, target.PSM)
	defer t.Close()
	if opts.ProtocolLogger != nil {
		central.SetProtocolLogger(opts.ProtocolLogger, t.ConnectionID())
	}

	res := exchangeResult{ConnectionID: t.ConnectionID(), Requests: n, OpenAttempts: 1}
	logger.Info("connecting to reader", "conn_id", res.ConnectionID, "method", t.ConnectionMethod())
	if err := t.Open(ctx, target.ReaderKey); err != nil {
		return res, fmt.Errorf("open: %w", err)
	}
	res.L2CAP = central.UsingL2CAP()
	res.ScanningDuration, _ = t.ScanningDuration()

	endMarker, err := serveHolder(ctx, t, n, logger)
	if err != nil {
		return res, err
	}
	res.EndMarker = endMarker
	res.Elapsed = time.Since(started)
	return res, nil
}
