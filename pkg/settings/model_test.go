package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdoc-proximity/mdoc-go/pkg/storage"
	"github.com/mdoc-proximity/mdoc-go/pkg/transport"
)

func TestDefaults(t *testing.T) {
	ctx := context.Background()
	m, err := Open(ctx, storage.NewEphemeralStorage(), false)
	require.NoError(t, err)

	assert.True(t, m.PresentmentBleCentralClientModeEnabled.Get())
	assert.False(t, m.PresentmentBlePeripheralServerModeEnabled.Get())
	assert.Equal(t, CurveP256, m.PresentmentSessionEncryptionCurve.Get())
	assert.Equal(t, DefaultHandoverOrder, m.PresentmentNegotiatedHandoverPreferredOrder.Get())
	assert.True(t, m.ReaderBleL2CapEnabled.Get())
	assert.Len(t, m.Keys(), 17)
}

func TestSetPersists(t *testing.T) {
	ctx := context.Background()
	store := storage.NewEphemeralStorage()

	m, err := Open(ctx, store, false)
	require.NoError(t, err)
	require.NoError(t, m.PresentmentBleL2CapEnabled.Set(ctx, false))
	require.NoError(t, m.PresentmentSessionEncryptionCurve.Set(ctx, CurveP384))
	require.NoError(t, m.PresentmentNegotiatedHandoverPreferredOrder.Set(ctx, []string{"nfc:"}))
	// Second write of the same key goes through Update.
	require.NoError(t, m.PresentmentBleL2CapEnabled.Set(ctx, false))

	reopened, err := Open(ctx, store, true)
	require.NoError(t, err)
	assert.False(t, reopened.PresentmentBleL2CapEnabled.Get())
	assert.Equal(t, CurveP384, reopened.PresentmentSessionEncryptionCurve.Get())
	assert.Equal(t, []string{"nfc:"}, reopened.PresentmentNegotiatedHandoverPreferredOrder.Get())
}

func TestReadOnlyDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	store := storage.NewEphemeralStorage()

	ro, err := Open(ctx, store, true)
	require.NoError(t, err)
	assert.True(t, ro.ReadOnly())
	require.NoError(t, ro.ReaderAllowMultipleRequests.Set(ctx, true))
	assert.True(t, ro.ReaderAllowMultipleRequests.Get())

	table, err := store.GetTable(ctx, TableSpec)
	require.NoError(t, err)
	keys, err := table.Enumerate(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestInvalidCurveRejected(t *testing.T) {
	ctx := context.Background()
	m, err := Open(ctx, storage.NewEphemeralStorage(), false)
	require.NoError(t, err)

	err = m.PresentmentSessionEncryptionCurve.Set(ctx, Curve("P999"))
	assert.Error(t, err)
	assert.Equal(t, CurveP256, m.PresentmentSessionEncryptionCurve.Get())
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := storage.NewEphemeralStorage()
	m, err := Open(ctx, store, false)
	require.NoError(t, err)

	require.NoError(t, m.PresentmentShowConsentPrompt.Set(ctx, false))
	require.NoError(t, m.Reset(ctx))
	assert.True(t, m.PresentmentShowConsentPrompt.Get())

	reopened, err := Open(ctx, store, true)
	require.NoError(t, err)
	assert.True(t, reopened.PresentmentShowConsentPrompt.Get())
}

func TestApplyYAML(t *testing.T) {
	ctx := context.Background()
	m, err := Open(ctx, storage.NewEphemeralStorage(), false)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
presentmentBleL2CapEnabled: false
presentmentSessionEncryptionCurve: P521
presentmentNegotiatedHandoverPreferredOrder:
  - "nfc:"
  - "ble:central_client_mode:"
`), 0o600))

	require.NoError(t, m.LoadYAMLFile(ctx, path))
	assert.False(t, m.PresentmentBleL2CapEnabled.Get())
	assert.Equal(t, CurveP521, m.PresentmentSessionEncryptionCurve.Get())
	assert.Equal(t, []string{"nfc:", "ble:central_client_mode:"}, m.PresentmentNegotiatedHandoverPreferredOrder.Get())

	err = m.ApplyYAML(ctx, []byte("noSuchSetting: true\n"))
	assert.ErrorIs(t, err, ErrUnknownSetting)

	err = m.ApplyYAML(ctx, []byte("presentmentBleL2CapEnabled: [1, 2]\n"))
	assert.Error(t, err)
}

func TestSetString(t *testing.T) {
	ctx := context.Background()
	m, err := Open(ctx, storage.NewEphemeralStorage(), false)
	require.NoError(t, err)

	require.NoError(t, m.SetString(ctx, "readerAutomaticallySelectTransport", "true"))
	assert.True(t, m.ReaderAutomaticallySelectTransport.Get())
	assert.Equal(t, true, m.Snapshot()["readerAutomaticallySelectTransport"])

	assert.ErrorIs(t, m.SetString(ctx, "bogus", "1"), ErrUnknownSetting)
	assert.Error(t, m.SetString(ctx, "readerAutomaticallySelectTransport", ""))
}

func TestTransportOptions(t *testing.T) {
	ctx := context.Background()
	m, err := Open(ctx, storage.NewEphemeralStorage(), false)
	require.NoError(t, err)

	require.NoError(t, m.PresentmentBleL2CapEnabled.Set(ctx, false))
	assert.False(t, m.TransportOptions(transport.RoleHolder).UseL2CAP)
	assert.True(t, m.TransportOptions(transport.RoleReader).UseL2CAP)
	assert.NotNil(t, m.TransportOptions(transport.RoleHolder).Logger)
}

func TestSQLiteBacked(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.db")

	store, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	m, err := Open(ctx, store, false)
	require.NoError(t, err)
	require.NoError(t, m.ReaderNfcDataTransferEnabled.Set(ctx, false))
	require.NoError(t, store.Close())

	store, err = storage.OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()
	m, err = Open(ctx, store, true)
	require.NoError(t, err)
	assert.False(t, m.ReaderNfcDataTransferEnabled.Get())
}
