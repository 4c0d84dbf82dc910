package sysex

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSingleGroup(t *testing.T) {
	// High bits set on data bytes 0 and 2.
	enc := []byte{0x05, 0x01, 0x02, 0x03}
	out, err := Decode(enc, 16)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x81, 0x02, 0x83}, out)
}

func TestDecodeShortFinalGroup(t *testing.T) {
	enc := []byte{
		0x7f, 1, 2, 3, 4, 5, 6, 7,
		0x02, 0x10, 0x11,
	}
	out, err := Decode(enc, 16)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87, 0x10, 0x91}, out)
	assert.Len(t, out, DecodedLen(len(enc)))
}

func TestDecodeEmpty(t *testing.T) {
	out, err := Decode(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, out)

	// A lone MSB byte carries no data.
	out, err = Decode([]byte{0x00}, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDecodeOverflowIsAtomic(t *testing.T) {
	enc := Encode([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9})

	out, err := Decode(enc, 8)
	assert.ErrorIs(t, err, ErrBufferOverflow)
	assert.Nil(t, out)

	dst := bytes.Repeat([]byte{0xee}, 8)
	n, err := DecodeInto(dst, enc)
	assert.ErrorIs(t, err, ErrBufferOverflow)
	assert.Zero(t, n)
	assert.Equal(t, bytes.Repeat([]byte{0xee}, 8), dst)
}

func TestDecodeMalformed(t *testing.T) {
	dst := make([]byte, 4)
	n, err := DecodeInto(dst, []byte{0x00, 0x01, 0x80})
	assert.ErrorIs(t, err, ErrMalformedByte)
	assert.Zero(t, n)
	assert.Equal(t, make([]byte, 4), dst)
}

func TestRoundTrip(t *testing.T) {
	for _, size := range []int{0, 1, 6, 7, 8, 13, 14, 15, 100, 256} {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i*37 + 11)
		}
		enc := Encode(data)
		assert.Len(t, enc, EncodedLen(size))
		require.NoError(t, Check7Bit(enc), "size %d", size)

		out, err := Decode(enc, size)
		require.NoError(t, err, "size %d", size)
		assert.Equal(t, data, out, "size %d", size)
	}
}

func TestLengths(t *testing.T) {
	assert.Equal(t, 0, DecodedLen(0))
	assert.Equal(t, 0, DecodedLen(1))
	assert.Equal(t, 7, DecodedLen(8))
	assert.Equal(t, 7, DecodedLen(9))
	assert.Equal(t, 8, DecodedLen(10))
	assert.Equal(t, 8, EncodedLen(7))
	assert.Equal(t, 10, EncodedLen(8))
}

func TestUnwrap(t *testing.T) {
	assert.Equal(t, []byte{0x7d, 0x01}, Unwrap([]byte{Start, 0x7d, 0x01, End}))
	assert.Equal(t, []byte{0x7d, 0x01}, Unwrap([]byte{0x7d, 0x01}))
	assert.Empty(t, Unwrap([]byte{Start, End}))
}

func TestParse(t *testing.T) {
	id := ManufacturerID{NonCommercial}

	f, err := Parse([]byte{0x7d, 0x10, 0x00, 0x41}, id, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(0x10), f.Command)
	assert.Equal(t, []byte{0x00, 0x41}, f.Body)

	_, err = Parse([]byte{0x7d}, id, 0)
	assert.ErrorIs(t, err, ErrShortFrame)

	_, err = Parse(nil, id, 0)
	assert.ErrorIs(t, err, ErrShortFrame)

	_, err = Parse([]byte{0x43, 0x10}, id, 0)
	assert.ErrorIs(t, err, ErrManufacturerMismatch)

	_, err = Parse([]byte{0x7d, 0x10, 0x90}, id, 0)
	assert.ErrorIs(t, err, ErrMalformedByte)

	_, err = Parse([]byte{0x7d, 0x10, 0, 0, 0}, id, 4)
	assert.ErrorIs(t, err, ErrFrameTooLong)
}

func TestParseThreeByteID(t *testing.T) {
	id := ManufacturerID{0x00, 0x20, 0x29}
	require.True(t, id.Valid())

	_, err := Parse([]byte{0x00, 0x20}, id, 0)
	assert.ErrorIs(t, err, ErrShortFrame)

	f, err := Parse([]byte{0x00, 0x20, 0x29, 0x02}, id, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), f.Command)
	assert.Empty(t, f.Body)
}

func TestBuild(t *testing.T) {
	msg, err := Build(ManufacturerID{NonCommercial}, 0x01, []byte{0xff, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x7d, 0x01, 0x01, 0x7f, 0x00}, msg)

	f, err := Parse(msg, ManufacturerID{NonCommercial}, 0)
	require.NoError(t, err)
	out, err := Decode(f.Body, 16)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0x00}, out)

	_, err = Build(ManufacturerID{0x00, 0x01}, 0x01, nil)
	assert.ErrorIs(t, err, ErrInvalidManufacturer)

	_, err = Build(ManufacturerID{NonCommercial}, 0x81, nil)
	assert.ErrorIs(t, err, ErrMalformedByte)
}
