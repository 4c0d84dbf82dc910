package stick

import (
	"errors"
	"fmt"

	"github.com/jmacd/midistick/midi/controller"
	"github.com/jmacd/midistick/midi/nrpn"
	"github.com/jmacd/midistick/midi/sysex"
	gomidi "gitlab.com/gomidi/midi/v2"
)

// Event is one message as delivered by a Port. SysEx is set (and Status
// is 0xF0) for System Exclusive messages.
type Event struct {
	Timestamp int32
	Status    byte
	Data1     byte
	Data2     byte
	SysEx     []byte
}

func (s *Stick) event(evt Event) {
	if evt.Status == sysex.Start || len(evt.SysEx) != 0 {
		s.SysEx(evt.SysEx)
		return
	}

	midiChannel := evt.Status & MIDIChannelMask
	switch evt.Status & MIDIStatusCodeMask {
	case MIDIStatusNoteOn:
		s.NoteOn(midiChannel, evt.Data1, evt.Data2)
	case MIDIStatusNoteOff:
		s.NoteOff(midiChannel, evt.Data1, evt.Data2)
	case MIDIStatusControlChange:
		s.ControlChange(midiChannel, evt.Data1, evt.Data2)
	default:
		s.log.Debug().
			Str("msg", gomidi.Message([]byte{evt.Status, evt.Data1, evt.Data2}).String()).
			Msg("ignored message")
	}
}

// NoteOn handles a Note On message. A velocity of zero is a Note Off.
func (s *Stick) NoteOn(ch, pitch, velocity uint8) {
	s.log.Debug().Uint8("channel", ch).Uint8("pitch", pitch).Uint8("velocity", velocity).Msg("note on")

	if !s.checkVoice("note on", ch, pitch, velocity) {
		return
	}
	if velocity == 0 {
		s.NoteOff(ch, pitch, velocity)
		return
	}

	s.lock.Lock()
	s.stats.NoteOn++
	s.lock.Unlock()

	s.handler.NoteOn(ch, pitch, velocity)
}

func (s *Stick) NoteOff(ch, pitch, velocity uint8) {
	s.log.Debug().Uint8("channel", ch).Uint8("pitch", pitch).Uint8("velocity", velocity).Msg("note off")

	if !s.checkVoice("note off", ch, pitch, velocity) {
		return
	}

	s.lock.Lock()
	s.stats.NoteOff++
	s.lock.Unlock()

	s.handler.NoteOff(ch, pitch, velocity)
}

// ControlChange offers the message to the NRPN assembler and forwards it
// as a plain control change when it is not part of an NRPN transaction.
func (s *Stick) ControlChange(ch, control, value uint8) {
	s.log.Debug().Uint8("channel", ch).Uint8("control", control).Uint8("value", value).Msg("control change")

	if !s.checkVoice("control change", ch, control, value) {
		return
	}

	var cbs, acbs []controller.Callback

	s.lock.Lock()
	s.stats.ControlChanges++
	param, status := s.nrpn.ControlChange(ch, control, value)
	switch status {
	case nrpn.NotNRPN:
		cbs = s.calls[ch][control]
		acbs = s.calls[controller.AllChannels][control]
	case nrpn.Complete:
		s.stats.Parameters++
	case nrpn.Dropped:
		s.stats.Dropped++
	}
	s.lock.Unlock()

	switch status {
	case nrpn.NotNRPN:
		s.handler.ControlChange(ch, control, value)
		for _, cb := range cbs {
			cb(int(ch), controller.Control(control), controller.Value(value))
		}
		for _, cb := range acbs {
			cb(int(ch), controller.Control(control), controller.Value(value))
		}
	case nrpn.Complete:
		s.log.Debug().
			Uint8("channel", param.Channel).
			Uint16("parameter", uint16(param.Number)).
			Uint16("value", uint16(param.Value)).
			Msg("nrpn")
		s.handler.Parameter(param)
	case nrpn.Dropped:
		s.log.Debug().Uint8("channel", ch).Uint8("control", control).Msg("nrpn data entry without parameter")
	}
}

// SysEx handles one System Exclusive message, with or without the 0xF0
// and 0xF7 framing bytes.
func (s *Stick) SysEx(data []byte) {
	s.log.Debug().Int("length", len(data)).Str("data", fmt.Sprintf("% X", data)).Msg("sysex")

	frame, err := sysex.Parse(sysex.Unwrap(data), s.manufacturer, s.maxSysEx)
	if err != nil {
		s.lock.Lock()
		switch {
		case errors.Is(err, sysex.ErrManufacturerMismatch):
			s.stats.Foreign++
		case errors.Is(err, sysex.ErrMalformedByte):
			s.stats.Malformed++
		default:
			s.stats.Rejected++
		}
		s.lock.Unlock()

		if errors.Is(err, sysex.ErrManufacturerMismatch) {
			s.log.Debug().Err(err).Msg("sysex ignored")
		} else {
			s.log.Warn().Err(err).Msg("sysex rejected")
		}
		return
	}

	payload, err := sysex.Decode(frame.Body, s.capacity)
	if err != nil {
		s.lock.Lock()
		if errors.Is(err, sysex.ErrBufferOverflow) {
			s.stats.Overflows++
		} else {
			s.stats.Malformed++
		}
		s.lock.Unlock()

		s.log.Warn().Err(err).Hex("command", []byte{frame.Command}).Int("capacity", s.capacity).Msg("sysex discarded")
		return
	}

	s.lock.Lock()
	s.stats.SysEx++
	fn := s.commands[frame.Command]
	if fn == nil {
		s.stats.UnknownSysEx++
	}
	s.lock.Unlock()

	if fn == nil {
		s.log.Info().
			Err(fmt.Errorf("%w 0x%02X", ErrUnknownCommand, frame.Command)).
			Int("payload", len(payload)).
			Msg("sysex ignored")
		s.handler.UnknownSysEx(frame.Command, payload)
		return
	}
	if err := fn(payload); err != nil {
		s.log.Warn().Err(err).Hex("command", []byte{frame.Command}).Msg("sysex command failed")
	}
}

func (s *Stick) checkVoice(kind string, ch, data1, data2 uint8) bool {
	if controller.ValidChannel(ch) && controller.Value(data1).Valid() && controller.Value(data2).Valid() {
		return true
	}

	s.lock.Lock()
	s.stats.Malformed++
	s.lock.Unlock()

	s.log.Warn().
		Err(sysex.ErrMalformedByte).
		Str("kind", kind).
		Uint8("channel", ch).
		Uint8("data1", data1).
		Uint8("data2", data2).
		Msg("message dropped")
	return false
}
