package sdjwt

import "fmt"

// Algorithm is a JOSE signature algorithm.
type Algorithm string

// Supported algorithms. The ES* names leave the curve to the key and are not
// fully specified; ESP* and the EdDSA variants name a single curve.
const (
	AlgES256   Algorithm = "ES256"
	AlgES384   Algorithm = "ES384"
	AlgES512   Algorithm = "ES512"
	AlgEdDSA   Algorithm = "EdDSA"
	AlgESP256  Algorithm = "ESP256"
	AlgESP384  Algorithm = "ESP384"
	AlgESP512  Algorithm = "ESP512"
	AlgEd25519 Algorithm = "Ed25519"
	AlgEd448   Algorithm = "Ed448"
)

type algorithmInfo struct {
	coseID         int
	fullySpecified bool
}

var algorithms = map[Algorithm]algorithmInfo{
	AlgES256:   {coseID: -7},
	AlgES384:   {coseID: -35},
	AlgES512:   {coseID: -36},
	AlgEdDSA:   {coseID: -8},
	AlgESP256:  {coseID: -9, fullySpecified: true},
	AlgESP384:  {coseID: -51, fullySpecified: true},
	AlgESP512:  {coseID: -52, fullySpecified: true},
	AlgEd25519: {coseID: -19, fullySpecified: true},
	AlgEd448:   {coseID: -53, fullySpecified: true},
}

// FullySpecified reports whether the algorithm identifies a single curve.
func (a Algorithm) FullySpecified() bool {
	return algorithms[a].fullySpecified
}

// COSEIdentifier returns the COSE algorithm identifier.
func (a Algorithm) COSEIdentifier() (int, error) {
	info, ok := algorithms[a]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(a))
	}
	return info.coseID, nil
}
