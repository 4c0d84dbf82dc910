package stick

import (
	"errors"
	"fmt"

	"github.com/jmacd/midistick/midi/sysex"
)

// Drivers accepted by OpenDriver.
const (
	DriverRtMidi   = "rtmidi"
	DriverPortMIDI = "portmidi"
)

var (
	ErrUnknownDriver = errors.New("stick: unknown driver")
	ErrNoPortMIDI    = errors.New("stick: built without portmidi support (use -tags portmidi)")
)

// OpenDriver opens the device through the named driver. An empty driver
// selects DriverRtMidi.
func OpenDriver(driver, name string, h Handler, opts ...Option) (*Stick, error) {
	switch driver {
	case "", DriverRtMidi:
		return Open(name, h, opts...)
	case DriverPortMIDI:
		return openPortMIDI(name, h, opts...)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownDriver, driver)
}

// portMIDIEvent converts one message read from a portmidi stream. Only
// channel messages are kept; portmidi splits SysEx into words that arrive
// as data-status events.
func portMIDIEvent(timestamp, status, data1, data2 int64) (Event, bool) {
	if status < MIDIStatusNoteOff || status >= int64(sysex.Start) {
		return Event{}, false
	}
	return Event{
		Timestamp: int32(timestamp),
		Status:    byte(status),
		Data1:     byte(data1),
		Data2:     byte(data2),
	}, true
}
