// Copyright 2013 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sysex converts System Exclusive payloads between the 7-bit
// packed wire format and 8-bit data, and parses manufacturer frames.
//
// The packed format stores data in groups of up to eight bytes: one byte
// carrying the high bits, followed by up to seven data bytes with their
// high bit cleared. Bit k of the leading byte is bit 7 of data byte k.
package sysex

import "errors"

const (
	// GroupSize is the number of data bytes covered by one MSB byte.
	GroupSize = 7

	dataMask = 0x7f
	highBit  = 0x80
)

var (
	ErrBufferOverflow = errors.New("sysex: decoded data exceeds buffer capacity")
	ErrMalformedByte  = errors.New("sysex: byte outside 7-bit range")
)

// DecodedLen returns the number of bytes produced by decoding n packed bytes.
func DecodedLen(n int) int {
	if n <= 0 {
		return 0
	}
	groups := (n + GroupSize) / (GroupSize + 1)
	return n - groups
}

// EncodedLen returns the number of packed bytes needed to carry n data bytes.
func EncodedLen(n int) int {
	if n <= 0 {
		return 0
	}
	return n + (n+GroupSize-1)/GroupSize
}

// Decode unpacks encoded into a new slice. If the result would be longer
// than capacity it returns ErrBufferOverflow and no data.
func Decode(encoded []byte, capacity int) ([]byte, error) {
	n := DecodedLen(len(encoded))
	if n > capacity {
		return nil, ErrBufferOverflow
	}
	out := make([]byte, n)
	if _, err := DecodeInto(out, encoded); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeInto unpacks encoded into dst and returns the number of bytes
// written. Nothing is written to dst when an error is returned.
func DecodeInto(dst, encoded []byte) (int, error) {
	if DecodedLen(len(encoded)) > len(dst) {
		return 0, ErrBufferOverflow
	}
	if err := Check7Bit(encoded); err != nil {
		return 0, err
	}

	n := 0
	for i := 0; i < len(encoded); {
		msb := encoded[i]
		i++
		for k := 0; k < GroupSize && i < len(encoded); k++ {
			b := encoded[i]
			i++
			if msb&(1<<k) != 0 {
				b |= highBit
			}
			dst[n] = b
			n++
		}
	}
	return n, nil
}

// Encode packs data into the 7-bit wire format.
func Encode(data []byte) []byte {
	return AppendEncode(make([]byte, 0, EncodedLen(len(data))), data)
}

// AppendEncode appends the packed form of data to dst.
func AppendEncode(dst, data []byte) []byte {
	for len(data) > 0 {
		group := data
		if len(group) > GroupSize {
			group = group[:GroupSize]
		}
		data = data[len(group):]

		var msb byte
		for k, b := range group {
			if b&highBit != 0 {
				msb |= 1 << k
			}
		}
		dst = append(dst, msb)
		for _, b := range group {
			dst = append(dst, b&dataMask)
		}
	}
	return dst
}

// Check7Bit returns ErrMalformedByte if any byte has its high bit set.
func Check7Bit(data []byte) error {
	for _, b := range data {
		if b&highBit != 0 {
			return ErrMalformedByte
		}
	}
	return nil
}
