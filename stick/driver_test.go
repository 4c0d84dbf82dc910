package stick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortMIDIEventFilter(t *testing.T) {
	evt, ok := portMIDIEvent(1234, 0x91, 60, 100)
	require.True(t, ok)
	assert.Equal(t, Event{Timestamp: 1234, Status: 0x91, Data1: 60, Data2: 100}, evt)

	evt, ok = portMIDIEvent(5, 0xbf, 99, 0)
	require.True(t, ok)
	assert.Equal(t, byte(0xbf), evt.Status)

	for _, status := range []int64{0x00, 0x7d, 0x7f, 0xf0, 0xf7, 0xf8, 0xfe} {
		_, ok := portMIDIEvent(0, status, 1, 2)
		assert.False(t, ok, "status 0x%02x", status)
	}
}

func TestPortMIDIEventsDispatch(t *testing.T) {
	s, rec, port := newTestStick(t)

	for _, raw := range [][4]int64{
		{1, 0x90, 60, 100},
		{2, 0x7d, 0x01, 0x02},
		{3, 0x80, 60, 0},
	} {
		if evt, ok := portMIDIEvent(raw[0], raw[1], raw[2], raw[3]); ok {
			port.push(evt)
		}
	}
	_, err := s.Poll()
	require.NoError(t, err)
	assert.Equal(t, 2, rec.noteCount())
}

func TestOpenDriverUnknown(t *testing.T) {
	_, err := OpenDriver("jack", "", nil)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
