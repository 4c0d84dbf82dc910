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

// Package stick interprets the MIDI traffic received by a MIDI Stick:
// channel voice messages are decoded and forwarded to a Handler, NRPN
// control changes are assembled into parameter events, and SysEx frames
// addressed to the device are unpacked and dispatched by command byte.
package stick

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmacd/midistick/midi/controller"
	"github.com/jmacd/midistick/midi/nrpn"
	"github.com/jmacd/midistick/midi/sysex"
	"github.com/rs/zerolog"
	gomidi "gitlab.com/gomidi/midi/v2"
)

var (
	ErrNoPort         = errors.New("stick: no input port")
	ErrNoOutput       = errors.New("stick: no output port")
	ErrUnknownCommand = errors.New("stick: unrecognized sysex command")
)

// CommandFunc handles the decoded payload of one SysEx command. The
// payload is only valid for the duration of the call.
type CommandFunc func(payload []byte) error

// Stats counts what the dispatcher has seen since it was created.
type Stats struct {
	NoteOn         uint64
	NoteOff        uint64
	ControlChanges uint64
	Parameters     uint64
	SysEx          uint64
	UnknownSysEx   uint64
	Foreign        uint64 // SysEx for another manufacturer
	Malformed      uint64
	Overflows      uint64
	Rejected       uint64
	Dropped        uint64 // NRPN bytes consumed without being stored
}

// Stick dispatches MIDI events read from a Port to a Handler.
type Stick struct {
	port    Port
	handler Handler
	log     zerolog.Logger
	send    func(gomidi.Message) error

	manufacturer sysex.ManufacturerID
	maxSysEx     int
	capacity     int
	pollPeriod   time.Duration
	readDepth    int
	nrpnOpts     []nrpn.Option

	beginOnce sync.Once
	beginErr  error
	errorChan chan error

	lock     sync.Mutex
	nrpn     *nrpn.Assembler
	stats    Stats
	commands map[byte]CommandFunc

	// calls have an additional entry representing AllChannels.
	calls [controller.NumChannels + 1][controller.NumControls][]controller.Callback
}

var _ controller.Input = (*Stick)(nil)

// New returns a Stick reading from port. A nil handler discards events.
func New(port Port, h Handler, opts ...Option) *Stick {
	if h == nil {
		h = Funcs{}
	}
	s := &Stick{
		port:         port,
		handler:      h,
		log:          zerolog.Nop(),
		manufacturer: sysex.ManufacturerID{sysex.NonCommercial},
		maxSysEx:     DefaultMaxSysExLength,
		capacity:     DefaultDecodeCapacity,
		pollPeriod:   PollingPeriod,
		readDepth:    ReadBufferDepth,
		errorChan:    make(chan error, 1),
		commands:     map[byte]CommandFunc{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.manufacturer.Valid() {
		s.log.Warn().Stringer("manufacturer", s.manufacturer).Msg("invalid manufacturer id, using non-commercial id")
		s.manufacturer = sysex.ManufacturerID{sysex.NonCommercial}
	}
	s.nrpn = nrpn.NewAssembler(s.nrpnOpts...)
	return s
}

// Begin starts delivery of events from the port. Calling it again has no
// effect and returns the first result.
func (s *Stick) Begin() error {
	s.beginOnce.Do(func() {
		if s.port == nil {
			s.beginErr = ErrNoPort
			return
		}
		if err := s.port.Begin(); err != nil {
			s.beginErr = fmt.Errorf("stick: begin: %w", err)
			return
		}
		s.log.Info().
			Stringer("manufacturer", s.manufacturer).
			Int("max_sysex", s.maxSysEx).
			Msg("listening")
	})
	return s.beginErr
}

// AddCallback registers cb for plain control changes of control on
// midiChan, or on every channel when midiChan is AllChannels.
func (s *Stick) AddCallback(midiChan int, control controller.Control, cb controller.Callback) {
	if midiChan < 0 || midiChan > controller.AllChannels || !control.Valid() || cb == nil {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	s.calls[midiChan][control] = append(s.calls[midiChan][control], cb)
}

func (s *Stick) AllChannels() int {
	return controller.AllChannels
}

// HandleSysEx registers fn for SysEx command cmd. A nil fn removes it.
func (s *Stick) HandleSysEx(cmd byte, fn CommandFunc) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if fn == nil {
		delete(s.commands, cmd)
		return
	}
	s.commands[cmd] = fn
}

func (s *Stick) Stats() Stats {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.stats
}

// Poll reads the events currently available from the port and dispatches
// them on the calling goroutine. It never blocks waiting for input.
func (s *Stick) Poll() (int, error) {
	if s.port == nil {
		return 0, ErrNoPort
	}
	evts, err := s.port.Read(MaxEventsPerPoll)
	if err != nil {
		return 0, s.handleError(fmt.Errorf("stick: read: %w", err))
	}
	for _, evt := range evts {
		s.event(evt)
	}
	return len(evts), nil
}

// Run begins listening and polls the port until the context is canceled
// or the port fails.
func (s *Stick) Run(ctx context.Context) error {
	if err := s.Begin(); err != nil {
		return err
	}

	ticker := time.NewTicker(s.pollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-s.errorChan:
			return err
		case <-ticker.C:
			for {
				n, err := s.Poll()
				if err != nil {
					return err
				}
				if n < MaxEventsPerPoll {
					break
				}
			}
		}
	}
}

func (s *Stick) Close() error {
	if s.port == nil {
		return nil
	}
	if err := s.port.Close(); err != nil {
		return s.handleError(fmt.Errorf("stick: close: %w", err))
	}
	return nil
}

func (s *Stick) handleError(err error) error {
	if err == nil {
		return err
	}
	select {
	case s.errorChan <- err:
	default:
	}
	return err
}
