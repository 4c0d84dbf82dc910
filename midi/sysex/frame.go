package sysex

import (
	"bytes"
	"errors"
	"fmt"
)

const (
	Start byte = 0xf0
	End   byte = 0xf7

	// NonCommercial is the manufacturer ID reserved for educational and
	// development use.
	NonCommercial byte = 0x7d
)

var (
	ErrShortFrame           = errors.New("sysex: frame shorter than manufacturer id and command")
	ErrFrameTooLong         = errors.New("sysex: frame exceeds maximum length")
	ErrManufacturerMismatch = errors.New("sysex: manufacturer id mismatch")
	ErrInvalidManufacturer  = errors.New("sysex: invalid manufacturer id")
)

// ManufacturerID is either a single byte or three bytes starting with 0x00.
type ManufacturerID []byte

// Valid reports whether id has a legal length and 7-bit content.
func (id ManufacturerID) Valid() bool {
	switch len(id) {
	case 1:
		return id[0] != 0 && id[0]&highBit == 0
	case 3:
		return id[0] == 0 && Check7Bit(id) == nil
	default:
		return false
	}
}

func (id ManufacturerID) String() string {
	return fmt.Sprintf("% X", []byte(id))
}

// Frame is a SysEx message addressed to us. Body is still 7-bit packed.
type Frame struct {
	Command byte
	Body    []byte
}

// Unwrap strips the 0xF0 / 0xF7 framing bytes when present.
func Unwrap(data []byte) []byte {
	if len(data) > 0 && data[0] == Start {
		data = data[1:]
	}
	if len(data) > 0 && data[len(data)-1] == End {
		data = data[:len(data)-1]
	}
	return data
}

// Parse validates an unframed SysEx message against id and splits it into
// command byte and packed body. maxLen <= 0 disables the length check.
// The returned Body aliases data.
func Parse(data []byte, id ManufacturerID, maxLen int) (Frame, error) {
	if maxLen > 0 && len(data) > maxLen {
		return Frame{}, fmt.Errorf("%w: %d > %d", ErrFrameTooLong, len(data), maxLen)
	}
	if len(data) < len(id)+1 {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(data))
	}
	if err := Check7Bit(data); err != nil {
		return Frame{}, err
	}
	if !bytes.Equal(data[:len(id)], id) {
		return Frame{}, ErrManufacturerMismatch
	}
	return Frame{
		Command: data[len(id)],
		Body:    data[len(id)+1:],
	}, nil
}

// Build returns the unframed bytes of a message carrying payload: the
// manufacturer id, the command byte and the packed payload.
func Build(id ManufacturerID, cmd byte, payload []byte) ([]byte, error) {
	if !id.Valid() {
		return nil, ErrInvalidManufacturer
	}
	if cmd&highBit != 0 {
		return nil, ErrMalformedByte
	}
	out := make([]byte, 0, len(id)+1+EncodedLen(len(payload)))
	out = append(out, id...)
	out = append(out, cmd)
	return AppendEncode(out, payload), nil
}
