package ble

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/hkdf"

	"github.com/mdoc-proximity/mdoc-go/pkg/cose"
)

func newKey(t *testing.T) *ecdh.PublicKey {
	t.Helper()
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	return priv.PublicKey()
}

func TestComputeIdent(t *testing.T) {
	key := newKey(t)

	ident, err := ComputeIdent(key)
	require.NoError(t, err)
	assert.Len(t, ident, IdentSize)

	ikm, err := cose.EncodeTaggedKeyBytes(key)
	require.NoError(t, err)
	want := make([]byte, IdentSize)
	_, err = io.ReadFull(hkdf.New(sha256.New, ikm, nil, []byte("BLEIdent")), want)
	require.NoError(t, err)
	assert.Equal(t, want, ident)

	again, err := ComputeIdent(key)
	require.NoError(t, err)
	assert.Equal(t, ident, again, "ident must be deterministic")
}

func TestIdentMatches(t *testing.T) {
	key := newKey(t)
	other := newKey(t)

	ident, err := ComputeIdent(key)
	require.NoError(t, err)

	ok, err := IdentMatches(ident, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IdentMatches(ident, other)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IdentMatches(ident[:8], key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestComputeIdentNilKey(t *testing.T) {
	_, err := ComputeIdent(nil)
	assert.Error(t, err)
}
