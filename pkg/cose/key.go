package cose

import (
	"crypto/ecdh"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// COSE key type and curve identifiers.
const (
	// KeyTypeEC2 is the COSE kty value for double-coordinate curves.
	KeyTypeEC2 = 2

	// CurveP256 is the COSE crv value for NIST P-256.
	CurveP256 = 1
	// CurveP384 is the COSE crv value for NIST P-384.
	CurveP384 = 2
	// CurveP521 is the COSE crv value for NIST P-521.
	CurveP521 = 3

	// TagEncodedCBOR is the CBOR tag for embedded encoded CBOR data items.
	TagEncodedCBOR = 24
)

// Key errors.
var (
	ErrUnsupportedKeyType = errors.New("unsupported COSE key type")
	ErrUnsupportedCurve   = errors.New("unsupported COSE curve")
	ErrInvalidKey         = errors.New("invalid COSE key")
)

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCoreDeterministic,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create COSE CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthAllowed,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create COSE CBOR decoder mode: %v", err))
	}
}

// Key is an EC2 COSE_Key holding a public key.
type Key struct {
	Kty int    `cbor:"1,keyasint"`
	Crv int    `cbor:"-1,keyasint"`
	X   []byte `cbor:"-2,keyasint"`
	Y   []byte `cbor:"-3,keyasint"`
}

// FromPublicKey converts an ECDH public key to a COSE_Key.
func FromPublicKey(pub *ecdh.PublicKey) (*Key, error) {
	if pub == nil {
		return nil, fmt.Errorf("%w: nil public key", ErrInvalidKey)
	}

	crv, size, err := curveParams(pub.Curve())
	if err != nil {
		return nil, err
	}

	// NIST public keys are uncompressed points: 0x04 || X || Y.
	raw := pub.Bytes()
	if len(raw) != 1+2*size || raw[0] != 0x04 {
		return nil, fmt.Errorf("%w: unexpected point encoding", ErrInvalidKey)
	}

	return &Key{
		Kty: KeyTypeEC2,
		Crv: crv,
		X:   append([]byte(nil), raw[1:1+size]...),
		Y:   append([]byte(nil), raw[1+size:]...),
	}, nil
}

// PublicKey converts the COSE_Key back to an ECDH public key.
func (k *Key) PublicKey() (*ecdh.PublicKey, error) {
	if k.Kty != KeyTypeEC2 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedKeyType, k.Kty)
	}

	var curve ecdh.Curve
	switch k.Crv {
	case CurveP256:
		curve = ecdh.P256()
	case CurveP384:
		curve = ecdh.P384()
	case CurveP521:
		curve = ecdh.P521()
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCurve, k.Crv)
	}

	_, size, _ := curveParams(curve)
	if len(k.X) != size || len(k.Y) != size {
		return nil, fmt.Errorf("%w: coordinate length mismatch", ErrInvalidKey)
	}

	raw := make([]byte, 0, 1+2*size)
	raw = append(raw, 0x04)
	raw = append(raw, k.X...)
	raw = append(raw, k.Y...)

	pub, err := curve.NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return pub, nil
}

// Marshal encodes the key as a CBOR map with integer labels.
func (k *Key) Marshal() ([]byte, error) {
	return encMode.Marshal(k)
}

// Unmarshal decodes a CBOR-encoded COSE_Key.
func Unmarshal(data []byte) (*Key, error) {
	var k Key
	if err := decMode.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("failed to decode COSE key: %w", err)
	}
	return &k, nil
}

// EncodePublicKey encodes an ECDH public key as a COSE_Key.
func EncodePublicKey(pub *ecdh.PublicKey) ([]byte, error) {
	k, err := FromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return k.Marshal()
}

// DecodePublicKey decodes a CBOR-encoded COSE_Key into an ECDH public key.
func DecodePublicKey(data []byte) (*ecdh.PublicKey, error) {
	k, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return k.PublicKey()
}

// EncodeTaggedKeyBytes returns #6.24(bstr .cbor COSE_Key) for the key, the
// form ISO/IEC 18013-5 uses for EDeviceKeyBytes and EReaderKeyBytes.
func EncodeTaggedKeyBytes(pub *ecdh.PublicKey) ([]byte, error) {
	encoded, err := EncodePublicKey(pub)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(cbor.Tag{Number: TagEncodedCBOR, Content: encoded})
}

func curveParams(curve ecdh.Curve) (crv int, size int, err error) {
	switch curve {
	case ecdh.P256():
		return CurveP256, 32, nil
	case ecdh.P384():
		return CurveP384, 48, nil
	case ecdh.P521():
		return CurveP521, 66, nil
	default:
		return 0, 0, fmt.Errorf("%w: %v", ErrUnsupportedCurve, curve)
	}
}
