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

// Package nrpn assembles Non-Registered Parameter Number transactions
// from the four control changes that carry them.
//
// A transaction is CC 99 (parameter MSB), CC 98 (parameter LSB), CC 6
// (data entry MSB) and CC 38 (data entry LSB). Once a parameter is
// selected, further data entry pairs update it without resending 99/98.
package nrpn

import (
	"fmt"

	"github.com/jmacd/midistick/midi/controller"
	gomidi "gitlab.com/gomidi/midi/v2"
)

const unset int16 = -1

// Parameter is a completed NRPN transaction.
type Parameter struct {
	Channel uint8
	Number  controller.Value14
	Value   controller.Value14
}

func (p Parameter) String() string {
	return fmt.Sprintf("nrpn ch=%d param=%d value=%d", p.Channel, p.Number, p.Value)
}

// Status is the outcome of offering a control change to the Assembler.
type Status int

const (
	// NotNRPN means the controller is not part of an NRPN transaction and
	// the caller should handle it as a plain control change.
	NotNRPN Status = iota
	// Pending means the byte was stored and more are needed.
	Pending
	// Complete means a Parameter was assembled.
	Complete
	// Dropped means the byte was consumed without being stored.
	Dropped
)

func (s Status) String() string {
	switch s {
	case NotNRPN:
		return "not-nrpn"
	case Pending:
		return "pending"
	case Complete:
		return "complete"
	case Dropped:
		return "dropped"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Phase describes how far a slot has progressed through a transaction.
type Phase int

const (
	Idle Phase = iota
	IdentifierPartial
	IdentifierComplete
	ValuePartial
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case IdentifierPartial:
		return "identifier-partial"
	case IdentifierComplete:
		return "identifier-complete"
	case ValuePartial:
		return "value-partial"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

type state struct {
	idMSB, idLSB   int16
	valMSB, valLSB int16
}

func (s *state) reset() {
	*s = state{unset, unset, unset, unset}
}

func (s *state) clearValue() {
	s.valMSB, s.valLSB = unset, unset
}

func (s *state) hasIdentifier() bool {
	return s.idMSB != unset && s.idLSB != unset
}

func (s *state) phase() Phase {
	switch {
	case s.idMSB == unset && s.idLSB == unset:
		return Idle
	case !s.hasIdentifier():
		return IdentifierPartial
	case s.valMSB == unset && s.valLSB == unset:
		return IdentifierComplete
	default:
		return ValuePartial
	}
}

// Assembler accumulates NRPN control changes. It is not safe for
// concurrent use; the owner serializes calls.
type Assembler struct {
	shared bool
	slots  [controller.NumChannels]state
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithSharedState makes all channels share one accumulator, so that
// interleaved transactions on different channels overwrite each other.
func WithSharedState() Option {
	return func(a *Assembler) {
		a.shared = true
	}
}

func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{}
	for _, opt := range opts {
		opt(a)
	}
	a.Reset()
	return a
}

// Reset abandons every in-flight transaction.
func (a *Assembler) Reset() {
	for i := range a.slots {
		a.slots[i].reset()
	}
}

// IsController reports whether cc takes part in an NRPN transaction.
func IsController(cc uint8) bool {
	switch controller.Control(cc) {
	case controller.NRPNMSB, controller.NRPNLSB, controller.DataEntryMSB, controller.DataEntryLSB:
		return true
	}
	return false
}

// Phase reports the progress of the transaction on channel ch.
func (a *Assembler) Phase(ch uint8) Phase {
	if !controller.ValidChannel(ch) {
		return Idle
	}
	return a.slot(ch).phase()
}

func (a *Assembler) slot(ch uint8) *state {
	if a.shared {
		return &a.slots[0]
	}
	return &a.slots[ch]
}

// ControlChange offers one control change to the assembler. The returned
// Parameter is only meaningful when the Status is Complete.
func (a *Assembler) ControlChange(ch, cc, value uint8) (Parameter, Status) {
	if !IsController(cc) {
		return Parameter{}, NotNRPN
	}
	if !controller.ValidChannel(ch) || !controller.Value(value).Valid() {
		return Parameter{}, Dropped
	}

	s := a.slot(ch)
	v := int16(value)

	switch controller.Control(cc) {
	case controller.NRPNMSB:
		s.idMSB = v
		s.clearValue()
		return Parameter{}, Pending
	case controller.NRPNLSB:
		s.idLSB = v
		s.clearValue()
		return Parameter{}, Pending
	case controller.DataEntryMSB:
		if !s.hasIdentifier() {
			return Parameter{}, Dropped
		}
		s.valMSB = v
	case controller.DataEntryLSB:
		if !s.hasIdentifier() {
			return Parameter{}, Dropped
		}
		s.valLSB = v
	}

	if s.valMSB == unset || s.valLSB == unset {
		return Parameter{}, Pending
	}

	number, ok1 := controller.Combine(controller.Value(s.idMSB), controller.Value(s.idLSB))
	val, ok2 := controller.Combine(controller.Value(s.valMSB), controller.Value(s.valLSB))
	s.clearValue()
	if !ok1 || !ok2 {
		return Parameter{}, Dropped
	}
	return Parameter{Channel: ch, Number: number, Value: val}, Complete
}

// Messages returns the four control changes that set parameter number to
// value on channel ch.
func Messages(ch uint8, number, value controller.Value14) []gomidi.Message {
	nMSB, nLSB := number.Split()
	vMSB, vLSB := value.Split()
	return []gomidi.Message{
		gomidi.ControlChange(ch, uint8(controller.NRPNMSB), uint8(nMSB)),
		gomidi.ControlChange(ch, uint8(controller.NRPNLSB), uint8(nLSB)),
		gomidi.ControlChange(ch, uint8(controller.DataEntryMSB), uint8(vMSB)),
		gomidi.ControlChange(ch, uint8(controller.DataEntryLSB), uint8(vLSB)),
	}
}
