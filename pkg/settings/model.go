package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/mdoc-proximity/mdoc-go/pkg/storage"
	"github.com/mdoc-proximity/mdoc-go/pkg/transport"
)

// ErrUnknownSetting is returned for keys no setting is bound to.
var ErrUnknownSetting = errors.New("unknown setting")

// TableSpec is the storage table holding settings.
var TableSpec = storage.TableSpec{Name: "AppSettings"}

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create settings CBOR encoder mode: %v", err))
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create settings CBOR decoder mode: %v", err))
	}
}

// Curve names an elliptic curve for session encryption.
type Curve string

const (
	CurveP256            Curve = "P256"
	CurveP384            Curve = "P384"
	CurveP521            Curve = "P521"
	CurveBrainpoolP256R1 Curve = "BRAINPOOLP256R1"
	CurveX25519          Curve = "X25519"
	CurveX448            Curve = "X448"
)

func validateCurve(c Curve) error {
	switch c {
	case CurveP256, CurveP384, CurveP521, CurveBrainpoolP256R1, CurveX25519, CurveX448:
		return nil
	}
	return fmt.Errorf("unknown curve %q", string(c))
}

// DefaultHandoverOrder is the default preference for negotiated handover.
var DefaultHandoverOrder = []string{
	"ble:central_client_mode:",
	"ble:peripheral_server_mode:",
	"nfc:",
}

// Model holds all application settings.
type Model struct {
	table    storage.Table
	readOnly bool
	writeMu  sync.Mutex
	bindings []binding

	PresentmentBleCentralClientModeEnabled      *Value[bool]
	PresentmentBlePeripheralServerModeEnabled   *Value[bool]
	PresentmentNfcDataTransferEnabled           *Value[bool]
	PresentmentSessionEncryptionCurve           *Value[Curve]
	PresentmentBleL2CapEnabled                  *Value[bool]
	PresentmentUseNegotiatedHandover            *Value[bool]
	PresentmentAllowMultipleRequests            *Value[bool]
	PresentmentNegotiatedHandoverPreferredOrder *Value[[]string]
	PresentmentShowConsentPrompt                *Value[bool]
	PresentmentRequireAuthentication            *Value[bool]
	PresentmentPreferSignatureToKeyAgreement    *Value[bool]

	ReaderBleCentralClientModeEnabled    *Value[bool]
	ReaderBlePeripheralServerModeEnabled *Value[bool]
	ReaderNfcDataTransferEnabled         *Value[bool]
	ReaderBleL2CapEnabled                *Value[bool]
	ReaderAutomaticallySelectTransport   *Value[bool]
	ReaderAllowMultipleRequests          *Value[bool]
}

// Open loads the settings stored in store. A read-only model never writes
// back; Set only changes the in-memory value.
func Open(ctx context.Context, store storage.Storage, readOnly bool) (*Model, error) {
	table, err := store.GetTable(ctx, TableSpec)
	if err != nil {
		return nil, fmt.Errorf("settings: open table: %w", err)
	}
	m := &Model{table: table, readOnly: readOnly}

	var errs []error
	boolean := func(dst **Value[bool], key string, def bool) {
		v, err := bind(ctx, m, key, def, nil)
		errs = append(errs, err)
		*dst = v
	}

	boolean(&m.PresentmentBleCentralClientModeEnabled, "presentmentBleCentralClientModeEnabled", true)
	boolean(&m.PresentmentBlePeripheralServerModeEnabled, "presentmentBlePeripheralServerModeEnabled", false)
	boolean(&m.PresentmentNfcDataTransferEnabled, "presentmentNfcDataTransferEnabled", false)
	m.PresentmentSessionEncryptionCurve, err = bind(ctx, m, "presentmentSessionEncryptionCurve", CurveP256, validateCurve)
	errs = append(errs, err)
	boolean(&m.PresentmentBleL2CapEnabled, "presentmentBleL2CapEnabled", true)
	boolean(&m.PresentmentUseNegotiatedHandover, "presentmentUseNegotiatedHandover", true)
	boolean(&m.PresentmentAllowMultipleRequests, "presentmentAllowMultipleRequests", false)
	m.PresentmentNegotiatedHandoverPreferredOrder, err = bind(ctx, m, "presentmentNegotiatedHandoverPreferredOrder",
		append([]string(nil), DefaultHandoverOrder...), nil)
	errs = append(errs, err)
	boolean(&m.PresentmentShowConsentPrompt, "presentmentShowConsentPrompt", true)
	boolean(&m.PresentmentRequireAuthentication, "presentmentRequireAuthentication", true)
	boolean(&m.PresentmentPreferSignatureToKeyAgreement, "presentmentPreferSignatureToKeyAgreement", false)

	boolean(&m.ReaderBleCentralClientModeEnabled, "readerBleCentralClientModeEnabled", true)
	boolean(&m.ReaderBlePeripheralServerModeEnabled, "readerBlePeripheralServerModeEnabled", true)
	boolean(&m.ReaderNfcDataTransferEnabled, "readerNfcDataTransferEnabled", true)
	boolean(&m.ReaderBleL2CapEnabled, "readerBleL2CapEnabled", true)
	boolean(&m.ReaderAutomaticallySelectTransport, "readerAutomaticallySelectTransport", false)
	boolean(&m.ReaderAllowMultipleRequests, "readerAllowMultipleRequests", false)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// ReadOnly reports whether the model writes to storage.
func (m *Model) ReadOnly() bool { return m.readOnly }

func (m *Model) write(ctx context.Context, key string, data []byte) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	existing, err := m.table.Get(ctx, key)
	if err != nil {
		return err
	}
	if existing == nil {
		_, err = m.table.Insert(ctx, key, data)
	} else {
		err = m.table.Update(ctx, key, data)
	}
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// Reset puts every setting back to its default.
func (m *Model) Reset(ctx context.Context) error {
	for _, b := range m.bindings {
		if err := b.reset(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns the current value of every setting keyed by name.
func (m *Model) Snapshot() map[string]any {
	out := make(map[string]any, len(m.bindings))
	for _, b := range m.bindings {
		out[b.Key()] = b.current()
	}
	return out
}

// Keys returns the setting names in sorted order.
func (m *Model) Keys() []string {
	keys := make([]string, 0, len(m.bindings))
	for _, b := range m.bindings {
		keys = append(keys, b.Key())
	}
	sort.Strings(keys)
	return keys
}

func (m *Model) lookup(key string) (binding, error) {
	for _, b := range m.bindings {
		if b.Key() == key {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
}

// SetString sets a setting from its YAML text form, e.g. "true", "P384" or
// "[nfc:, ble:central_client_mode:]".
func (m *Model) SetString(ctx context.Context, key, value string) error {
	b, err := m.lookup(key)
	if err != nil {
		return err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(value), &doc); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	if len(doc.Content) == 0 {
		return fmt.Errorf("setting %s: empty value", key)
	}
	return b.setYAML(ctx, doc.Content[0])
}

// ApplyYAML applies a YAML mapping of setting names to values.
func (m *Model) ApplyYAML(ctx context.Context, data []byte) error {
	var overrides map[string]yaml.Node
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("settings: parse YAML: %w", err)
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b, err := m.lookup(k)
		if err != nil {
			return err
		}
		node := overrides[k]
		if err := b.setYAML(ctx, &node); err != nil {
			return err
		}
	}
	return nil
}

// LoadYAMLFile applies the overrides in the YAML file at path.
func (m *Model) LoadYAMLFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	return m.ApplyYAML(ctx, data)
}

// TransportOptions derives transport options for the given role from the
// settings. Loggers are left at their defaults.
func (m *Model) TransportOptions(role transport.Role) transport.Options {
	opts := transport.DefaultOptions()
	switch role {
	case transport.RoleHolder:
		opts.UseL2CAP = m.PresentmentBleL2CapEnabled.Get()
	case transport.RoleReader:
		opts.UseL2CAP = m.ReaderBleL2CapEnabled.Get()
	}
	return opts
}
