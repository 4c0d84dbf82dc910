package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
	}
	for raw, want := range cases {
		lvl, ok := ParseLevel(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, lvl, raw)
	}

	_, ok := ParseLevel("")
	assert.False(t, ok)
	_, ok = ParseLevel("loud")
	assert.False(t, ok)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "nope")

	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	assert.Equal(t, zerolog.WarnLevel, cfg.Level)
	assert.False(t, cfg.Timestamp)
	assert.False(t, cfg.NoColor)
}

func TestNewWritesToFile(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "stick.log")

	cfg := DefaultConfig()
	cfg.File = path
	cfg.Level = zerolog.InfoLevel
	log, closeFn, err := New("midistick", cfg)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Uint8("channel", 3).Msg("note on")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"app":"midistick"`)
	assert.Contains(t, string(data), `"channel":3`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNewBadFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.File = filepath.Join(t.TempDir(), "missing", "stick.log")
	_, _, err := New("midistick", cfg)
	assert.Error(t, err)
}
