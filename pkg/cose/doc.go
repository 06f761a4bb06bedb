// Package cose encodes elliptic-curve public keys as COSE_Key structures
// (RFC 9052 / RFC 9053) as used by ISO/IEC 18013-5 session engagement.
//
// Only EC2 keys on the NIST curves are supported; keys are carried as
// crypto/ecdh public keys. CBOR encoding is deterministic so the encoded
// bytes can be fed into key derivation (for example the BLE Ident).
package cose
