package connmethod

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Retrieval method types and versions.
const (
	// TypeBLE is the DeviceRetrievalMethod type for Bluetooth Low Energy.
	TypeBLE uint = 2

	// VersionBLE is the supported BLE retrieval method version.
	VersionBLE uint = 1
)

// BLE option keys.
const (
	OptionSupportsPeripheralServerMode = 0
	OptionSupportsCentralClientMode    = 1
	OptionPeripheralServerModeUUID     = 10
	OptionCentralClientModeUUID        = 11
	OptionPeripheralServerModeAddress  = 20
	OptionPeripheralServerModePSM      = 2023
)

// Decoding errors.
var (
	ErrMalformed       = errors.New("malformed device retrieval method")
	ErrUnsupportedType = errors.New("unsupported device retrieval method type")
)

var encMode cbor.EncMode

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCoreDeterministic,
		IndefLength: cbor.IndefLengthForbidden,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create connection method encoder mode: %v", err))
	}
}

// Method is a way of reaching a peer.
type Method interface {
	// Type returns the DeviceRetrievalMethod type.
	Type() uint

	// String returns a human-readable description.
	String() string
}

// BLE describes a Bluetooth Low Energy connection method.
type BLE struct {
	SupportsPeripheralServerMode bool
	SupportsCentralClientMode    bool

	// PeripheralServerModeUUID is the service UUID when the mdoc acts as
	// a GATT server.
	PeripheralServerModeUUID *uuid.UUID

	// CentralClientModeUUID is the service UUID when the mdoc acts as a
	// GATT client scanning for the reader.
	CentralClientModeUUID *uuid.UUID

	// PeripheralServerModePSM is an L2CAP PSM known at engagement time.
	PeripheralServerModePSM *int

	// PeripheralServerModeAddress is the BLE device address, if known.
	PeripheralServerModeAddress []byte
}

// NewCentralClientMode returns a BLE method for central client mode only.
// psm is copied.
func NewCentralClientMode(serviceUUID uuid.UUID, psm *int) BLE {
	return BLE{
		SupportsCentralClientMode: true,
		CentralClientModeUUID:     &serviceUUID,
		PeripheralServerModePSM:   copyPtr(psm),
	}
}

// Clone returns a copy of m that shares no memory with it.
func (m BLE) Clone() BLE {
	m.PeripheralServerModeUUID = copyPtr(m.PeripheralServerModeUUID)
	m.CentralClientModeUUID = copyPtr(m.CentralClientModeUUID)
	m.PeripheralServerModePSM = copyPtr(m.PeripheralServerModePSM)
	if m.PeripheralServerModeAddress != nil {
		m.PeripheralServerModeAddress = append([]byte(nil), m.PeripheralServerModeAddress...)
	}
	return m
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Type returns TypeBLE.
func (m BLE) Type() uint { return TypeBLE }

// String returns a description such as "ble:central_client_mode:uuid=...".
func (m BLE) String() string {
	var b strings.Builder
	b.WriteString("ble")
	if m.SupportsCentralClientMode {
		b.WriteString(":central_client_mode")
		if m.CentralClientModeUUID != nil {
			b.WriteString(":uuid=" + m.CentralClientModeUUID.String())
		}
	}
	if m.SupportsPeripheralServerMode {
		b.WriteString(":peripheral_server_mode")
		if m.PeripheralServerModeUUID != nil {
			b.WriteString(":uuid=" + m.PeripheralServerModeUUID.String())
		}
	}
	if m.PeripheralServerModePSM != nil {
		fmt.Fprintf(&b, ":psm=%d", *m.PeripheralServerModePSM)
	}
	return b.String()
}

// MarshalCBOR encodes the method as a DeviceRetrievalMethod array.
func (m BLE) MarshalCBOR() ([]byte, error) {
	options := map[int]any{
		OptionSupportsPeripheralServerMode: m.SupportsPeripheralServerMode,
		OptionSupportsCentralClientMode:    m.SupportsCentralClientMode,
	}
	if m.PeripheralServerModeUUID != nil {
		options[OptionPeripheralServerModeUUID] = m.PeripheralServerModeUUID[:]
	}
	if m.CentralClientModeUUID != nil {
		options[OptionCentralClientModeUUID] = m.CentralClientModeUUID[:]
	}
	if len(m.PeripheralServerModeAddress) > 0 {
		options[OptionPeripheralServerModeAddress] = m.PeripheralServerModeAddress
	}
	if m.PeripheralServerModePSM != nil {
		options[OptionPeripheralServerModePSM] = *m.PeripheralServerModePSM
	}
	return encMode.Marshal([]any{TypeBLE, VersionBLE, options})
}

// UnmarshalCBOR decodes a DeviceRetrievalMethod array of type BLE.
func (m *BLE) UnmarshalCBOR(data []byte) error {
	var parts []cbor.RawMessage
	if err := cbor.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(parts) != 3 {
		return fmt.Errorf("%w: expected 3 elements, got %d", ErrMalformed, len(parts))
	}

	var typ, version uint
	if err := cbor.Unmarshal(parts[0], &typ); err != nil {
		return fmt.Errorf("%w: type: %v", ErrMalformed, err)
	}
	if typ != TypeBLE {
		return fmt.Errorf("%w: %d", ErrUnsupportedType, typ)
	}
	if err := cbor.Unmarshal(parts[1], &version); err != nil {
		return fmt.Errorf("%w: version: %v", ErrMalformed, err)
	}
	if version != VersionBLE {
		return fmt.Errorf("%w: version %d", ErrUnsupportedType, version)
	}

	var options map[int]cbor.RawMessage
	if err := cbor.Unmarshal(parts[2], &options); err != nil {
		return fmt.Errorf("%w: options: %v", ErrMalformed, err)
	}

	var out BLE
	for key, raw := range options {
		var err error
		switch key {
		case OptionSupportsPeripheralServerMode:
			err = cbor.Unmarshal(raw, &out.SupportsPeripheralServerMode)
		case OptionSupportsCentralClientMode:
			err = cbor.Unmarshal(raw, &out.SupportsCentralClientMode)
		case OptionPeripheralServerModeUUID:
			out.PeripheralServerModeUUID, err = decodeUUID(raw)
		case OptionCentralClientModeUUID:
			out.CentralClientModeUUID, err = decodeUUID(raw)
		case OptionPeripheralServerModeAddress:
			err = cbor.Unmarshal(raw, &out.PeripheralServerModeAddress)
		case OptionPeripheralServerModePSM:
			var psm int
			err = cbor.Unmarshal(raw, &psm)
			out.PeripheralServerModePSM = &psm
		}
		if err != nil {
			return fmt.Errorf("%w: option %d: %v", ErrMalformed, key, err)
		}
	}

	*m = out
	return nil
}

// Encode returns the DeviceRetrievalMethod encoding of m.
func Encode(m BLE) ([]byte, error) {
	return m.MarshalCBOR()
}

// Decode parses a BLE DeviceRetrievalMethod.
func Decode(data []byte) (BLE, error) {
	var m BLE
	err := m.UnmarshalCBOR(data)
	return m, err
}

func decodeUUID(raw cbor.RawMessage) (*uuid.UUID, error) {
	var b []byte
	if err := cbor.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	u, err := uuid.FromBytes(b)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Compile-time interface satisfaction check.
var _ Method = BLE{}
