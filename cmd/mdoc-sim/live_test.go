package main

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdoc-proximity/mdoc-go/internal/blesim"
	"github.com/mdoc-proximity/mdoc-go/pkg/ble"
	"github.com/mdoc-proximity/mdoc-go/pkg/connmethod"
	"github.com/mdoc-proximity/mdoc-go/pkg/cose"
)

func TestParseLiveTarget(t *testing.T) {
	service := uuid.New()
	psm := 192
	method, err := connmethod.Encode(connmethod.NewCentralClientMode(service, &psm))
	require.NoError(t, err)

	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	coseKey, err := cose.EncodePublicKey(key.PublicKey())
	require.NoError(t, err)

	target, err := parseLiveTarget("0x"+hex.EncodeToString(method), hex.EncodeToString(coseKey))
	require.NoError(t, err)
	assert.Equal(t, service, target.ServiceUUID)
	require.NotNil(t, target.PSM)
	assert.Equal(t, 192, *target.PSM)
	assert.True(t, key.PublicKey().Equal(target.ReaderKey))

	_, err = parseLiveTarget("zz", hex.EncodeToString(coseKey))
	assert.Error(t, err)
	_, err = parseLiveTarget(hex.EncodeToString(method), "a0")
	assert.Error(t, err)

	peripheralOnly, err := connmethod.Encode(connmethod.BLE{SupportsPeripheralServerMode: true, PeripheralServerModeUUID: &service})
	require.NoError(t, err)
	_, err = parseLiveTarget(hex.EncodeToString(peripheralOnly), hex.EncodeToString(coseKey))
	assert.Error(t, err)
}

// A live run drives any central; here the simulated one stands in for
// BlueZ.
func TestRunLiveWithGATT(t *testing.T) {
	ctx := testCtx(t)
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	service := uuid.New()

	air := blesim.NewAir()
	p, err := air.Advertise(blesim.PeripheralConfig{ServiceUUID: service, EReaderKey: key.PublicKey(), MTU: 100})
	require.NoError(t, err)
	defer p.Stop()

	readerDone := make(chan error, 1)
	go func() {
		readerDone <- func() error {
			req, err := cbor.Marshal(simRequest{Seq: 0, DocType: "org.iso.18013.5.1.mDL"})
			if err != nil {
				return err
			}
			if err := p.Send(ctx, req); err != nil {
				return err
			}
			if _, err := p.Receive(ctx); err != nil {
				return err
			}
			for m := range p.Markers() {
				if m == ble.StateEnd {
					return nil
				}
			}
			return nil
		}()
	}()

	cfg := testConfig(false, 0)
	central := blesim.NewCentral(air, blesim.WithLogger(quietLogger()))
	target := liveTarget{ServiceUUID: service, ReaderKey: key.PublicKey()}

	res, err := runLiveWith(ctx, central, target, cfg.Options, 1, quietLogger())
	require.NoError(t, err)
	require.NoError(t, <-readerDone)

	assert.Equal(t, 1, res.OpenAttempts)
	assert.False(t, res.L2CAP)
	assert.True(t, res.EndMarker)
	assert.NotEmpty(t, res.ConnectionID)
}

func TestRunLiveWithOpenFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(testCtx(t))
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	central := blesim.NewCentral(blesim.NewAir(), blesim.WithLogger(quietLogger()))
	central.BlockOn(blesim.OpScan)
	cancel()

	cfg := testConfig(false, 0)
	_, err = runLiveWith(ctx, central, liveTarget{ServiceUUID: uuid.New(), ReaderKey: key.PublicKey()}, cfg.Options, 1, quietLogger())
	assert.Error(t, err)
}

func TestValidateConfigAdapter(t *testing.T) {
	saved := config
	t.Cleanup(func() { config = saved })

	valid := Config{MTU: 185, Requests: 1, Attempts: 1, LogLevel: "info", Adapter: "hci0", Method: "00", ReaderKey: "00"}

	config = valid
	assert.NoError(t, validateConfig())

	config = valid
	config.Method = ""
	assert.Error(t, validateConfig())

	config = valid
	config.Interactive = true
	assert.Error(t, validateConfig())
}
