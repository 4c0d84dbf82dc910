// Package logging builds the diagnostic log. Writes go through a diode so
// a slow or broken sink drops lines instead of stalling MIDI dispatch.
package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
)

const (
	EnvLogLevel     = "MIDISTICK_LOG_LEVEL"
	EnvLogTimestamp = "MIDISTICK_LOG_TIMESTAMP"
	EnvLogNoColor   = "MIDISTICK_LOG_NOCOLOR"

	diodeSize     = 1000
	diodeInterval = 10 * time.Millisecond
)

type Config struct {
	Level     zerolog.Level
	File      string
	Timestamp bool
	NoColor   bool
}

func DefaultConfig() Config {
	return Config{
		Level:     zerolog.DebugLevel,
		Timestamp: true,
	}
}

// New returns a logger for app and a function that flushes and closes the
// sink. Environment variables override cfg.
func New(app string, cfg Config) (zerolog.Logger, func() error, error) {
	ApplyEnv(&cfg)

	var out io.Writer
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logging: open %s: %w", cfg.File, err)
		}
		out = f
	} else {
		cw := zerolog.ConsoleWriter{
			Out:     os.Stderr,
			NoColor: cfg.NoColor,
		}
		if cfg.Timestamp {
			cw.TimeFormat = "15:04:05.000"
		} else {
			cw.PartsExclude = []string{zerolog.TimestampFieldName}
		}
		out = cw
	}

	dw := diode.NewWriter(out, diodeSize, diodeInterval, func(missed int) {
		fmt.Fprintf(os.Stderr, "logging: dropped %d messages\n", missed)
	})

	ctx := zerolog.New(dw).Level(cfg.Level).With().Str("app", app)
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	// Closing the diode drains it and closes the file, if any.
	return ctx.Logger(), dw.Close, nil
}

func ApplyEnv(cfg *Config) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
}

// ParseLevel accepts the level names used in config files and the
// environment. The second result is false for empty or unknown input.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
