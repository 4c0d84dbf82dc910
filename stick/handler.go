package stick

import "github.com/jmacd/midistick/midi/nrpn"

// Handler receives the events decoded by a Stick. Methods are called on
// the goroutine that drives the Stick and must not block for long.
type Handler interface {
	NoteOn(ch, pitch, velocity uint8)
	NoteOff(ch, pitch, velocity uint8)

	// ControlChange receives control changes that are not part of an
	// NRPN transaction.
	ControlChange(ch, control, value uint8)

	// Parameter receives completed NRPN transactions.
	Parameter(p nrpn.Parameter)

	// UnknownSysEx receives SysEx frames addressed to us whose command has
	// no registered CommandFunc. payload is only valid during the call.
	UnknownSysEx(command byte, payload []byte)
}

// Funcs adapts a set of functions to a Handler. Nil fields are ignored.
type Funcs struct {
	OnNoteOn        func(ch, pitch, velocity uint8)
	OnNoteOff       func(ch, pitch, velocity uint8)
	OnControlChange func(ch, control, value uint8)
	OnParameter     func(p nrpn.Parameter)
	OnUnknownSysEx  func(command byte, payload []byte)
}

var _ Handler = Funcs{}

func (f Funcs) NoteOn(ch, pitch, velocity uint8) {
	if f.OnNoteOn != nil {
		f.OnNoteOn(ch, pitch, velocity)
	}
}

func (f Funcs) NoteOff(ch, pitch, velocity uint8) {
	if f.OnNoteOff != nil {
		f.OnNoteOff(ch, pitch, velocity)
	}
}

func (f Funcs) ControlChange(ch, control, value uint8) {
	if f.OnControlChange != nil {
		f.OnControlChange(ch, control, value)
	}
}

func (f Funcs) Parameter(p nrpn.Parameter) {
	if f.OnParameter != nil {
		f.OnParameter(p)
	}
}

func (f Funcs) UnknownSysEx(command byte, payload []byte) {
	if f.OnUnknownSysEx != nil {
		f.OnUnknownSysEx(command, payload)
	}
}
