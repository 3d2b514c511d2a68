package storage_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adfsio/storage"
)

func TestNewReaderReadsEntireStream(t *testing.T) {
	r, err := storage.NewReader(bytes.NewReader([]byte{1, 2, 3, 4}))
	require.NoError(t, err)
	assert.Equal(t, 4, r.Len())
}

func TestLittleEndianReads(t *testing.T) {
	buf := []byte{0x00, 0xAA, 0xBB, 0xCC, 0xDD, 0x01, 0x02, 0x03, 0x04}
	r := storage.NewReaderFromBytes(buf)

	v16, err := r.Uint16At(1)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBBAA), v16)

	v24, err := r.Uint24At(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x00CCBBAA), v24)

	v32, err := r.Uint32At(5)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x04030201), v32)
}

func TestOutOfRangeReadsError(t *testing.T) {
	r := storage.NewReaderFromBytes([]byte{1, 2})
	_, err := r.Uint32At(0)
	assert.Error(t, err)
}

func TestSafeStringStripsHighBitAndStopsAtControl(t *testing.T) {
	// 'H','e','l','l','o' with top bits set on a couple of bytes, then a
	// space (0x20) terminator, then trailing junk that must be ignored.
	buf := []byte{'H', 'e' | 0x80, 'l', 'l' | 0x80, 'o', 0x20, 'X', 'Y'}
	r := storage.NewReaderFromBytes(buf)
	assert.Equal(t, "Hello", r.SafeString(0, len(buf)))
}

func TestSafeBytesDropsHighBitControlBytes(t *testing.T) {
	// A byte whose top bit is set and which maps to a control code once
	// stripped (e.g. 0x80 -> 0x00) must be dropped, not emitted.
	buf := []byte{'A', 0x80, 'B'}
	assert.Equal(t, "AB", storage.SafeBytes(buf))
}
