//go:build portmidi

package stick

import (
	"fmt"
	"strings"

	"github.com/jmacd/midistick/midi/sysex"
	"github.com/rakyll/portmidi"
	gomidi "gitlab.com/gomidi/midi/v2"
)

// PortMIDIPort reads channel voice messages with portmidi's polling API.
// SysEx is not carried on this port.
type PortMIDIPort struct {
	in  *portmidi.Stream
	out *portmidi.Stream
}

var _ Port = (*PortMIDIPort)(nil)

// OpenPortMIDI opens the first input device whose name contains name, and
// a matching output device when there is one.
func OpenPortMIDI(name string) (*PortMIDIPort, error) {
	if name == "" {
		name = DeviceName
	}
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("stick: portmidi init: %w", err)
	}
	inID, outID, err := discoverPortMIDI(name)
	if err != nil {
		_ = portmidi.Terminate()
		return nil, err
	}
	in, err := portmidi.NewInputStream(inID, MaxEventsPerPoll)
	if err != nil {
		_ = portmidi.Terminate()
		return nil, fmt.Errorf("stick: portmidi input: %w", err)
	}
	p := &PortMIDIPort{in: in}
	if outID >= 0 {
		if p.out, err = portmidi.NewOutputStream(outID, MaxEventsPerPoll, 0); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("stick: portmidi output: %w", err)
		}
	}
	return p, nil
}

// discoverPortMIDI returns the input and output devices matching name.
// The output id is -1 when there is none.
func discoverPortMIDI(name string) (portmidi.DeviceID, portmidi.DeviceID, error) {
	inID, outID := portmidi.DeviceID(-1), portmidi.DeviceID(-1)
	for i := 0; i < portmidi.CountDevices(); i++ {
		id := portmidi.DeviceID(i)
		info := portmidi.Info(id)
		if info == nil || !strings.Contains(info.Name, name) {
			continue
		}
		if info.IsInputAvailable && inID < 0 {
			inID = id
		}
		if info.IsOutputAvailable && outID < 0 {
			outID = id
		}
	}
	if inID < 0 {
		return inID, outID, fmt.Errorf("%w: input %q", ErrNoDevice, name)
	}
	return inID, outID, nil
}

func openPortMIDI(name string, h Handler, opts ...Option) (*Stick, error) {
	p, err := OpenPortMIDI(name)
	if err != nil {
		return nil, err
	}
	if p.out != nil {
		opts = append([]Option{WithOutput(p.Send)}, opts...)
	}
	return New(p, h, opts...), nil
}

func (p *PortMIDIPort) Begin() error {
	return nil
}

func (p *PortMIDIPort) Read(max int) ([]Event, error) {
	ready, err := p.in.Poll()
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, nil
	}
	pevts, err := p.in.Read(max)
	if err != nil {
		return nil, err
	}
	return portMIDIEvents(pevts), nil
}

func portMIDIEvents(pevts []portmidi.Event) []Event {
	evts := make([]Event, 0, len(pevts))
	for _, pe := range pevts {
		if evt, ok := portMIDIEvent(int64(pe.Timestamp), pe.Status, pe.Data1, pe.Data2); ok {
			evts = append(evts, evt)
		}
	}
	return evts
}

// Send writes msg to the output device.
func (p *PortMIDIPort) Send(msg gomidi.Message) error {
	if p.out == nil {
		return ErrNoOutput
	}
	if len(msg) == 0 {
		return nil
	}
	if msg[0] == sysex.Start {
		return p.out.WriteSysExBytes(portmidi.Time(), msg)
	}
	var data [3]int64
	for i := 0; i < len(msg) && i < len(data); i++ {
		data[i] = int64(msg[i])
	}
	return p.out.WriteShort(data[0], data[1], data[2])
}

func (p *PortMIDIPort) Close() error {
	err := p.in.Close()
	if p.out != nil {
		if oerr := p.out.Close(); err == nil {
			err = oerr
		}
	}
	if terr := portmidi.Terminate(); err == nil {
		err = terr
	}
	return err
}
