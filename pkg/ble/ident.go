package ble

import (
	"crypto/ecdh"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/mdoc-proximity/mdoc-go/pkg/cose"
)

// IdentSize is the length of the BLE Ident value.
const IdentSize = 16

const identInfo = "BLEIdent"

// ComputeIdent derives the value the reader exposes on the identification
// characteristic: HKDF-SHA256 over #6.24(bstr .cbor COSE_Key) of eSenderKey,
// no salt, info "BLEIdent".
func ComputeIdent(eSenderKey *ecdh.PublicKey) ([]byte, error) {
	ikm, err := cose.EncodeTaggedKeyBytes(eSenderKey)
	if err != nil {
		return nil, fmt.Errorf("encode sender key: %w", err)
	}

	reader := hkdf.New(sha256.New, ikm, nil, []byte(identInfo))
	ident := make([]byte, IdentSize)
	if _, err := io.ReadFull(reader, ident); err != nil {
		return nil, fmt.Errorf("derive ident: %w", err)
	}
	return ident, nil
}

// IdentMatches reports whether got equals the ident derived from eSenderKey.
func IdentMatches(got []byte, eSenderKey *ecdh.PublicKey) (bool, error) {
	want, err := ComputeIdent(eSenderKey)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
