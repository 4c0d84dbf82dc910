package stick

import (
	"time"

	"github.com/jmacd/midistick/midi/nrpn"
	"github.com/jmacd/midistick/midi/sysex"
	"github.com/rs/zerolog"
	gomidi "gitlab.com/gomidi/midi/v2"
)

// Option configures a Stick.
type Option func(*Stick)

// WithLogger sets the diagnostic log. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Stick) {
		s.log = l
	}
}

// WithManufacturerID sets the id that SysEx frames must start with.
func WithManufacturerID(id sysex.ManufacturerID) Option {
	return func(s *Stick) {
		s.manufacturer = append(sysex.ManufacturerID(nil), id...)
	}
}

// WithMaxSysExLength bounds the unframed length of accepted SysEx frames.
func WithMaxSysExLength(n int) Option {
	return func(s *Stick) {
		if n > 0 {
			s.maxSysEx = n
		}
	}
}

// WithDecodeCapacity bounds the decoded size of a SysEx payload.
func WithDecodeCapacity(n int) Option {
	return func(s *Stick) {
		if n >= 0 {
			s.capacity = n
		}
	}
}

// WithSharedNRPNState uses one NRPN accumulator for all channels.
func WithSharedNRPNState() Option {
	return func(s *Stick) {
		s.nrpnOpts = append(s.nrpnOpts, nrpn.WithSharedState())
	}
}

func WithPollPeriod(d time.Duration) Option {
	return func(s *Stick) {
		if d > 0 {
			s.pollPeriod = d
		}
	}
}

// WithReadBufferDepth sets how many messages Open buffers between polls.
func WithReadBufferDepth(n int) Option {
	return func(s *Stick) {
		if n > 0 {
			s.readDepth = n
		}
	}
}

// WithOutput sets the function used by the Send methods.
func WithOutput(send func(gomidi.Message) error) Option {
	return func(s *Stick) {
		s.send = send
	}
}
