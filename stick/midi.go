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

package stick

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmacd/midistick/midi/controller"
	"github.com/jmacd/midistick/midi/nrpn"
	"github.com/jmacd/midistick/midi/sysex"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

const (
	DeviceName = "MIDI Stick"

	MIDIStatusNoteOff       = 0x80
	MIDIStatusNoteOn        = 0x90
	MIDIStatusControlChange = 0xb0
	MIDIStatusCodeMask      = 0xf0
	MIDIChannelMask         = 0x0f

	MaxEventsPerPoll = 1024
	ReadBufferDepth  = 256
	PollingPeriod    = 10 * time.Millisecond

	DefaultMaxSysExLength = 256
	DefaultDecodeCapacity = 224
)

var ErrNoDevice = errors.New("stick: no midi stick is connected")

// Open finds the input port whose name contains name (DeviceName when
// empty) and returns a Stick reading from it. When a matching output port
// exists it is used by the Send methods.
func Open(name string, h Handler, opts ...Option) (*Stick, error) {
	if name == "" {
		name = DeviceName
	}
	in, out, err := discover(name)
	if err != nil {
		return nil, err
	}

	if out != nil {
		send, err := gomidi.SendTo(out)
		if err != nil {
			return nil, fmt.Errorf("stick: open output: %w", err)
		}
		opts = append([]Option{WithOutput(send)}, opts...)
	}
	s := New(nil, h, opts...)
	s.port = NewListenPort(in, s.readDepth)
	return s, nil
}

// discover finds the connected device. The output port is optional.
func discover(name string) (drivers.In, drivers.Out, error) {
	in, err := gomidi.FindInPort(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: input %q: %v", ErrNoDevice, name, err)
	}

	out, err := gomidi.FindOutPort(name)
	if err != nil {
		return in, nil, nil
	}
	return in, out, nil
}

func (s *Stick) write(msg gomidi.Message) error {
	if s.send == nil {
		return ErrNoOutput
	}
	if err := s.send(msg); err != nil {
		return fmt.Errorf("stick: send %s: %w", msg, err)
	}
	return nil
}

func (s *Stick) SendNoteOn(ch, pitch, velocity uint8) error {
	return s.write(gomidi.NoteOn(ch, pitch, velocity))
}

func (s *Stick) SendNoteOff(ch, pitch uint8) error {
	return s.write(gomidi.NoteOff(ch, pitch))
}

// SendNRPN sends the four control changes that set parameter number.
func (s *Stick) SendNRPN(ch uint8, number, value controller.Value14) error {
	for _, msg := range nrpn.Messages(ch, number, value) {
		if err := s.write(msg); err != nil {
			return err
		}
	}
	return nil
}

// SendSysEx packs payload and sends it under our manufacturer id.
func (s *Stick) SendSysEx(cmd byte, payload []byte) error {
	data, err := sysex.Build(s.manufacturer, cmd, payload)
	if err != nil {
		return fmt.Errorf("stick: build sysex: %w", err)
	}
	return s.write(gomidi.SysEx(data))
}
