// Package controller holds the value types shared by the MIDI decoding
// packages: 7-bit and 14-bit values, controller numbers and the
// control-change callback signature.
package controller

const (
	NumChannels = 16
	NumControls = 128

	// AllChannels is the extra callback slot that receives a control on
	// every channel. Use with AddCallback.
	AllChannels = NumChannels

	MaxValue   Value   = 0x7f
	MaxValue14 Value14 = 0x3fff

	// ValueUninitialized marks a 7-bit field that has not been received.
	ValueUninitialized Value = 128
)

// Standard controller numbers that take part in an NRPN transaction.
const (
	DataEntryMSB Control = 6
	DataEntryLSB Control = 38
	NRPNLSB      Control = 98
	NRPNMSB      Control = 99
)

// Control is a MIDI controller number in the range [0, NumControls).
type Control int

// Value is a 7-bit MIDI data byte.
type Value uint8

// Value14 is a 14-bit quantity built from an MSB/LSB pair.
type Value14 uint16

// Callback is called for control changes that are not consumed by the
// NRPN assembler. Register with AddCallback.
type Callback func(midiChan int, control Control, value Value)

// Input is implemented by anything that delivers control changes to
// registered callbacks.
type Input interface {
	AddCallback(ch int, con Control, cb Callback)

	AllChannels() int
}

// Valid reports whether v fits in 7 bits.
func (v Value) Valid() bool {
	return v <= MaxValue
}

// Float maps v onto [0, 1] with the center detent at 64 returning 0.5.
func (v Value) Float() float64 {
	switch {
	case v == 0:
		return 0
	case v == 64:
		return 0.5
	case v >= 127:
		return 1
	case v < 64:
		return float64(v) / 128
	default:
		return float64(v-1) / 126
	}
}

// Valid reports whether c is a controller number.
func (c Control) Valid() bool {
	return c >= 0 && c < NumControls
}

// Combine merges a 7-bit MSB and LSB into a 14-bit value. It returns false
// when either byte is outside the 7-bit range.
func Combine(msb, lsb Value) (Value14, bool) {
	if !msb.Valid() || !lsb.Valid() {
		return 0, false
	}
	return Value14(msb)<<7 | Value14(lsb), true
}

// Split is the inverse of Combine. Bits above the 14th are discarded.
func (v Value14) Split() (msb, lsb Value) {
	v &= MaxValue14
	return Value(v >> 7), Value(v & 0x7f)
}

func (v Value14) Float() float64 {
	if v >= MaxValue14 {
		return 1
	}
	return float64(v) / float64(MaxValue14)
}

// ValidChannel reports whether ch is a MIDI channel number (0-15).
func ValidChannel(ch uint8) bool {
	return ch < NumChannels
}
