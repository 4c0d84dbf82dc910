package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmacd/midistick/midi/sysex"
	"github.com/jmacd/midistick/stick"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "midistick.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadEmpty(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[port]
driver = "PortMIDI"
name = " Teensy MIDI "
poll_interval = "5ms"
buffer = 64

[sysex]
manufacturer_id = [0, 33, 9]
max_length = 512
decode_capacity = 0

[nrpn]
shared_state = true

[log]
level = "warn"
timestamp = false
no_color = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, stick.DriverPortMIDI, cfg.Port.Driver)
	assert.Equal(t, "Teensy MIDI", cfg.Port.Name)
	assert.Equal(t, 5*time.Millisecond, cfg.Port.PollInterval)
	assert.Equal(t, 64, cfg.Port.Buffer)
	assert.Equal(t, sysex.ManufacturerID{0x00, 0x21, 0x09}, cfg.SysEx.ManufacturerID)
	assert.Equal(t, 512, cfg.SysEx.MaxLength)
	assert.Equal(t, 0, cfg.SysEx.DecodeCapacity)
	assert.True(t, cfg.NRPN.SharedState)
	assert.Equal(t, zerolog.WarnLevel, cfg.Log.Level)
	assert.False(t, cfg.Log.Timestamp)
	assert.True(t, cfg.Log.NoColor)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[log]\nlevel = \"error\"\n"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, zerolog.ErrorLevel, cfg.Log.Level)
	assert.Equal(t, def.Log.Timestamp, cfg.Log.Timestamp)
	assert.Equal(t, def.Port, cfg.Port)
	assert.Equal(t, def.SysEx, cfg.SysEx)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "[port]\nspeed = 3\n",
		"unknown driver":   "[port]\ndriver = \"jack\"\n",
		"bad duration":     "[port]\npoll_interval = \"soon\"\n",
		"zero duration":    "[port]\npoll_interval = \"0s\"\n",
		"bad buffer":       "[port]\nbuffer = 0\n",
		"byte range":       "[sysex]\nmanufacturer_id = [128]\n",
		"zero id":          "[sysex]\nmanufacturer_id = [0]\n",
		"two byte id":      "[sysex]\nmanufacturer_id = [0, 1]\n",
		"short max":        "[sysex]\nmax_length = 1\n",
		"negative decode":  "[sysex]\ndecode_capacity = -1\n",
		"unknown level":    "[log]\nlevel = \"loud\"\n",
		"syntax":           "[port\n",
		"wrong value type": "[nrpn]\nshared_state = \"yes\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestStickOptions(t *testing.T) {
	cfg := Default()
	cfg.SysEx.ManufacturerID = sysex.ManufacturerID{0x42}
	cfg.NRPN.SharedState = true

	var sent [][]byte
	opts := append(cfg.StickOptions(zerolog.Nop()), stick.WithOutput(func(msg gomidi.Message) error {
		sent = append(sent, msg)
		return nil
	}))
	s := stick.New(nil, nil, opts...)

	require.NoError(t, s.SendSysEx(0x01, []byte{0x7f}))
	require.Len(t, sent, 1)
	assert.Equal(t, []byte{0xf0, 0x42, 0x01, 0x00, 0x7f, 0xf7}, sent[0])
}
