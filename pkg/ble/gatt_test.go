package ble

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragment(t *testing.T) {
	msg := bytes.Repeat([]byte{0xab}, 45)

	chunks, err := Fragment(msg, DefaultMTU)
	require.NoError(t, err)

	// 20 bytes per chunk, 19 of them payload.
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.LessOrEqual(t, len(c), ChunkSize(DefaultMTU))
		if i < len(chunks)-1 {
			assert.Equal(t, byte(0x01), c[0])
		} else {
			assert.Equal(t, byte(0x00), c[0])
		}
	}
	assert.Len(t, chunks[2], 1+45-2*19)
}

func TestFragmentSingleChunk(t *testing.T) {
	chunks, err := Fragment([]byte{1, 2, 3}, 512)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{0x00, 1, 2, 3}}, chunks)
}

func TestFragmentErrors(t *testing.T) {
	_, err := Fragment(nil, DefaultMTU)
	assert.ErrorIs(t, err, ErrMessageEmpty)

	_, err = Fragment([]byte{1}, 4)
	assert.ErrorIs(t, err, ErrMTUTooSmall)
}

func TestReassembler(t *testing.T) {
	msg := make([]byte, 1000)
	for i := range msg {
		msg[i] = byte(i)
	}
	chunks, err := Fragment(msg, 185)
	require.NoError(t, err)

	r := NewReassembler(0)
	for i, c := range chunks {
		got, err := r.Add(c)
		require.NoError(t, err)
		if i < len(chunks)-1 {
			assert.Nil(t, got)
			assert.Positive(t, r.Pending())
		} else {
			assert.Equal(t, msg, got)
		}
	}
	assert.Zero(t, r.Pending())
}

func TestReassemblerErrors(t *testing.T) {
	r := NewReassembler(4)

	_, err := r.Add(nil)
	assert.ErrorIs(t, err, ErrInvalidChunk)

	_, err = r.Add([]byte{0x07, 1})
	assert.ErrorIs(t, err, ErrInvalidChunk)

	_, err = r.Add([]byte{0x01, 1, 2, 3})
	require.NoError(t, err)
	_, err = r.Add([]byte{0x00, 4, 5})
	assert.ErrorIs(t, err, ErrMessageTooLarge)
	assert.Zero(t, r.Pending(), "partial message dropped after error")

	got, err := r.Add([]byte{0x00, 9})
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, got)

	got, err = r.Add([]byte{0x00})
	assert.ErrorIs(t, err, ErrMessageEmpty)
	assert.Nil(t, got)

	_, err = r.Add([]byte{0x01})
	require.NoError(t, err)
	_, err = r.Add([]byte{0x00})
	assert.ErrorIs(t, err, ErrMessageEmpty)
}
