package sdjwt

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// Issuer errors.
var (
	ErrUnknownAlgorithm  = errors.New("unknown algorithm")
	ErrNotFullySpecified = errors.New("signing algorithm for issuer must be fully specified")
	ErrMissingIssuer     = errors.New("issuer URL is required")
)

// HeaderType is the typ header of SD-JWT VC credentials.
const HeaderType = "dc+sd-jwt"

// Issuer describes who signs an SD-JWT.
type Issuer struct {
	// Iss is the issuer URL, copied into the payload.
	Iss string

	// Alg is the signature algorithm, copied into the header.
	Alg Algorithm

	// Kid optionally identifies the signing key.
	Kid string

	// X5C is an optional certificate chain, signer first.
	X5C []*x509.Certificate
}

// NewIssuer validates and returns issuer metadata.
func NewIssuer(iss string, alg Algorithm, kid string, x5c []*x509.Certificate) (*Issuer, error) {
	if iss == "" {
		return nil, ErrMissingIssuer
	}
	if _, ok := algorithms[alg]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(alg))
	}
	if !alg.FullySpecified() {
		return nil, fmt.Errorf("%w: %s", ErrNotFullySpecified, alg)
	}
	return &Issuer{Iss: iss, Alg: alg, Kid: kid, X5C: x5c}, nil
}

// HeaderParams returns the JOSE header parameters for a JWT signed by this
// issuer.
func (i *Issuer) HeaderParams() map[string]any {
	h := map[string]any{
		"typ": HeaderType,
		"alg": string(i.Alg),
	}
	if i.Kid != "" {
		h["kid"] = i.Kid
	}
	if len(i.X5C) > 0 {
		chain := make([]string, len(i.X5C))
		for n, cert := range i.X5C {
			// x5c uses standard base64, not base64url.
			chain[n] = base64.StdEncoding.EncodeToString(cert.Raw)
		}
		h["x5c"] = chain
	}
	return h
}

// PayloadClaims returns the claims the issuer contributes to the payload.
func (i *Issuer) PayloadClaims() map[string]any {
	return map[string]any{"iss": i.Iss}
}

// EncodeHeader returns the base64url-encoded JSON header.
func (i *Issuer) EncodeHeader() (string, error) {
	data, err := json.Marshal(i.HeaderParams())
	if err != nil {
		return "", fmt.Errorf("encode JOSE header: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// SigningInput returns header.payload for the given payload claims, with the
// issuer claims merged in. Claims already present in payload win.
func (i *Issuer) SigningInput(payload map[string]any) (string, error) {
	header, err := i.EncodeHeader()
	if err != nil {
		return "", err
	}
	claims := i.PayloadClaims()
	for k, v := range payload {
		claims[k] = v
	}
	data, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("encode JWT payload: %w", err)
	}
	return header + "." + base64.RawURLEncoding.EncodeToString(data), nil
}
