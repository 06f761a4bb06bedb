package cose

import (
	"bytes"
	"crypto/ecdh"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func TestEncodeDecodePublicKey(t *testing.T) {
	curves := []struct {
		name  string
		curve ecdh.Curve
		crv   int
	}{
		{"P256", ecdh.P256(), CurveP256},
		{"P384", ecdh.P384(), CurveP384},
		{"P521", ecdh.P521(), CurveP521},
	}

	for _, tc := range curves {
		t.Run(tc.name, func(t *testing.T) {
			priv, err := tc.curve.GenerateKey(rand.Reader)
			if err != nil {
				t.Fatalf("GenerateKey: %v", err)
			}

			data, err := EncodePublicKey(priv.PublicKey())
			if err != nil {
				t.Fatalf("EncodePublicKey: %v", err)
			}

			k, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if k.Kty != KeyTypeEC2 {
				t.Errorf("Kty = %d, want %d", k.Kty, KeyTypeEC2)
			}
			if k.Crv != tc.crv {
				t.Errorf("Crv = %d, want %d", k.Crv, tc.crv)
			}

			pub, err := k.PublicKey()
			if err != nil {
				t.Fatalf("PublicKey: %v", err)
			}
			if !pub.Equal(priv.PublicKey()) {
				t.Error("decoded key does not match original")
			}
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	priv, _ := ecdh.P256().GenerateKey(rand.Reader)

	a, err := EncodePublicKey(priv.PublicKey())
	if err != nil {
		t.Fatalf("EncodePublicKey: %v", err)
	}
	b, err := EncodePublicKey(priv.PublicKey())
	if err != nil {
		t.Fatalf("EncodePublicKey: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("encoding is not deterministic")
	}
}

func TestEncodeTaggedKeyBytes(t *testing.T) {
	priv, _ := ecdh.P256().GenerateKey(rand.Reader)

	tagged, err := EncodeTaggedKeyBytes(priv.PublicKey())
	if err != nil {
		t.Fatalf("EncodeTaggedKeyBytes: %v", err)
	}

	var tag cbor.Tag
	if err := cbor.Unmarshal(tagged, &tag); err != nil {
		t.Fatalf("failed to decode tag: %v", err)
	}
	if tag.Number != TagEncodedCBOR {
		t.Errorf("tag = %d, want %d", tag.Number, TagEncodedCBOR)
	}

	inner, ok := tag.Content.([]byte)
	if !ok {
		t.Fatalf("tag content is %T, want []byte", tag.Content)
	}
	pub, err := DecodePublicKey(inner)
	if err != nil {
		t.Fatalf("DecodePublicKey: %v", err)
	}
	if !pub.Equal(priv.PublicKey()) {
		t.Error("embedded key does not match original")
	}
}

func TestFromPublicKeyRejectsX25519(t *testing.T) {
	priv, _ := ecdh.X25519().GenerateKey(rand.Reader)

	_, err := FromPublicKey(priv.PublicKey())
	if !errors.Is(err, ErrUnsupportedCurve) {
		t.Errorf("error = %v, want ErrUnsupportedCurve", err)
	}
}

func TestPublicKeyValidation(t *testing.T) {
	t.Run("WrongKeyType", func(t *testing.T) {
		k := &Key{Kty: 1, Crv: CurveP256}
		if _, err := k.PublicKey(); !errors.Is(err, ErrUnsupportedKeyType) {
			t.Errorf("error = %v, want ErrUnsupportedKeyType", err)
		}
	})

	t.Run("UnknownCurve", func(t *testing.T) {
		k := &Key{Kty: KeyTypeEC2, Crv: 42}
		if _, err := k.PublicKey(); !errors.Is(err, ErrUnsupportedCurve) {
			t.Errorf("error = %v, want ErrUnsupportedCurve", err)
		}
	})

	t.Run("ShortCoordinates", func(t *testing.T) {
		k := &Key{Kty: KeyTypeEC2, Crv: CurveP256, X: []byte{1}, Y: []byte{2}}
		if _, err := k.PublicKey(); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("error = %v, want ErrInvalidKey", err)
		}
	})

	t.Run("PointNotOnCurve", func(t *testing.T) {
		k := &Key{Kty: KeyTypeEC2, Crv: CurveP256, X: make([]byte, 32), Y: make([]byte, 32)}
		if _, err := k.PublicKey(); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("error = %v, want ErrInvalidKey", err)
		}
	})
}
