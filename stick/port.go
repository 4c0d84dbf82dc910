package stick

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jmacd/midistick/midi/sysex"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Port delivers decoded MIDI messages. Read must not block.
type Port interface {
	Begin() error
	Read(max int) ([]Event, error)
	Close() error
}

// ListenPort adapts a gomidi input to the Port interface. Messages arrive
// on the driver's goroutine and are buffered until Read; when the buffer
// is full new messages are dropped.
type ListenPort struct {
	in     drivers.In
	events chan Event

	lock   sync.Mutex
	stopFn func()
	err    error

	dropped uint64
}

var _ Port = (*ListenPort)(nil)

func NewListenPort(in drivers.In, depth int) *ListenPort {
	if depth <= 0 {
		depth = ReadBufferDepth
	}
	return &ListenPort{
		in:     in,
		events: make(chan Event, depth),
	}
}

func (p *ListenPort) Begin() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.stopFn != nil {
		return nil
	}
	if !p.in.IsOpen() {
		if err := p.in.Open(); err != nil {
			return fmt.Errorf("stick: open %s: %w", p.in, err)
		}
	}

	lcfg := drivers.ListenConfig{
		TimeCode:    false,
		ActiveSense: false,
		SysEx:       true,
		OnErr:       p.setError,
	}
	stop, err := p.in.Listen(p.receive, lcfg)
	if err != nil {
		return fmt.Errorf("stick: listen %s: %w", p.in, err)
	}
	p.stopFn = stop
	return nil
}

func (p *ListenPort) receive(msg []byte, milliseconds int32) {
	evt, ok := toEvent(msg, milliseconds)
	if !ok {
		return
	}
	select {
	case p.events <- evt:
	default:
		atomic.AddUint64(&p.dropped, 1)
	}
}

func (p *ListenPort) setError(err error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.err == nil {
		p.err = err
	}
}

func (p *ListenPort) Read(max int) ([]Event, error) {
	p.lock.Lock()
	err := p.err
	p.err = nil
	p.lock.Unlock()
	if err != nil {
		return nil, err
	}

	var evts []Event
	for len(evts) < max {
		select {
		case evt := <-p.events:
			evts = append(evts, evt)
		default:
			return evts, nil
		}
	}
	return evts, nil
}

// Dropped returns the number of messages lost to a full buffer.
func (p *ListenPort) Dropped() uint64 {
	return atomic.LoadUint64(&p.dropped)
}

func (p *ListenPort) Close() error {
	p.lock.Lock()
	stop := p.stopFn
	p.stopFn = nil
	p.lock.Unlock()

	if stop != nil {
		stop()
	}
	return p.in.Close()
}

// toEvent copies a raw driver message, which may be reused by the driver
// after the callback returns.
func toEvent(raw []byte, milliseconds int32) (Event, bool) {
	if len(raw) == 0 {
		return Event{}, false
	}
	if raw[0] == sysex.Start {
		var data []byte
		if !gomidi.Message(raw).GetSysEx(&data) {
			data = sysex.Unwrap(raw)
		}
		return Event{
			Timestamp: milliseconds,
			Status:    sysex.Start,
			SysEx:     append([]byte(nil), data...),
		}, true
	}

	evt := Event{Timestamp: milliseconds, Status: raw[0]}
	if len(raw) > 1 {
		evt.Data1 = raw[1]
	}
	if len(raw) > 2 {
		evt.Data2 = raw[2]
	}
	return evt, true
}
