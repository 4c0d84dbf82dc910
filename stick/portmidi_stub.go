//go:build !portmidi

package stick

func openPortMIDI(name string, h Handler, opts ...Option) (*Stick, error) {
	return nil, ErrNoPortMIDI
}
