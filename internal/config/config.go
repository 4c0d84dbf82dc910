package config

import (
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jmacd/midistick/internal/logging"
	"github.com/jmacd/midistick/midi/sysex"
	"github.com/jmacd/midistick/stick"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type PortConfig struct {
	Driver       string
	Name         string
	PollInterval time.Duration
	Buffer       int
}

type SysExConfig struct {
	ManufacturerID sysex.ManufacturerID
	MaxLength      int
	DecodeCapacity int
}

type NRPNConfig struct {
	SharedState bool
}

type Config struct {
	Port  PortConfig
	SysEx SysExConfig
	NRPN  NRPNConfig
	Log   logging.Config
}

type fileConfig struct {
	Port struct {
		Driver       string `toml:"driver"`
		Name         string `toml:"name"`
		PollInterval string `toml:"poll_interval"`
		Buffer       int    `toml:"buffer"`
	} `toml:"port"`
	SysEx struct {
		ManufacturerID []int `toml:"manufacturer_id"`
		MaxLength      int   `toml:"max_length"`
		DecodeCapacity int   `toml:"decode_capacity"`
	} `toml:"sysex"`
	NRPN struct {
		SharedState bool `toml:"shared_state"`
	} `toml:"nrpn"`
	Log struct {
		Level     string `toml:"level"`
		File      string `toml:"file"`
		Timestamp bool   `toml:"timestamp"`
		NoColor   bool   `toml:"no_color"`
	} `toml:"log"`
}

func Default() Config {
	return Config{
		Port: PortConfig{
			Driver:       stick.DriverRtMidi,
			Name:         stick.DeviceName,
			PollInterval: stick.PollingPeriod,
			Buffer:       stick.ReadBufferDepth,
		},
		SysEx: SysExConfig{
			ManufacturerID: sysex.ManufacturerID{sysex.NonCommercial},
			MaxLength:      stick.DefaultMaxSysExLength,
			DecodeCapacity: stick.DefaultDecodeCapacity,
		},
		Log: logging.DefaultConfig(),
	}
}

// Load reads a TOML file and applies the keys it defines over Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		return Config{}, errors.Errorf("config %s: unknown key %s", path, undecoded[0])
	}

	if meta.IsDefined("port", "driver") {
		cfg.Port.Driver = strings.ToLower(strings.TrimSpace(raw.Port.Driver))
	}
	if meta.IsDefined("port", "name") {
		cfg.Port.Name = strings.TrimSpace(raw.Port.Name)
	}
	if meta.IsDefined("port", "poll_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Port.PollInterval))
		if err != nil {
			return Config{}, errors.Wrap(err, "parse port.poll_interval")
		}
		cfg.Port.PollInterval = d
	}
	if meta.IsDefined("port", "buffer") {
		cfg.Port.Buffer = raw.Port.Buffer
	}

	if meta.IsDefined("sysex", "manufacturer_id") {
		id := make(sysex.ManufacturerID, 0, len(raw.SysEx.ManufacturerID))
		for _, b := range raw.SysEx.ManufacturerID {
			if b < 0 || b > 0x7f {
				return Config{}, errors.Errorf("sysex.manufacturer_id: byte %d out of range", b)
			}
			id = append(id, byte(b))
		}
		cfg.SysEx.ManufacturerID = id
	}
	if meta.IsDefined("sysex", "max_length") {
		cfg.SysEx.MaxLength = raw.SysEx.MaxLength
	}
	if meta.IsDefined("sysex", "decode_capacity") {
		cfg.SysEx.DecodeCapacity = raw.SysEx.DecodeCapacity
	}

	if meta.IsDefined("nrpn", "shared_state") {
		cfg.NRPN.SharedState = raw.NRPN.SharedState
	}

	if meta.IsDefined("log", "level") {
		lvl, ok := logging.ParseLevel(raw.Log.Level)
		if !ok {
			return Config{}, errors.Errorf("log.level: unknown level %q", raw.Log.Level)
		}
		cfg.Log.Level = lvl
	}
	if meta.IsDefined("log", "file") {
		cfg.Log.File = strings.TrimSpace(raw.Log.File)
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Log.Timestamp = raw.Log.Timestamp
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}

	if err := Validate(cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	switch cfg.Port.Driver {
	case stick.DriverRtMidi, stick.DriverPortMIDI:
	default:
		return errors.Errorf("port.driver %q: want %q or %q", cfg.Port.Driver, stick.DriverRtMidi, stick.DriverPortMIDI)
	}
	if cfg.Port.PollInterval <= 0 {
		return errors.New("port.poll_interval must be positive")
	}
	if cfg.Port.Buffer <= 0 {
		return errors.New("port.buffer must be positive")
	}
	if !cfg.SysEx.ManufacturerID.Valid() {
		return errors.Errorf("sysex.manufacturer_id %s: want one byte, or three starting with 0", cfg.SysEx.ManufacturerID)
	}
	if cfg.SysEx.MaxLength <= len(cfg.SysEx.ManufacturerID) {
		return errors.Errorf("sysex.max_length %d leaves no room for a command", cfg.SysEx.MaxLength)
	}
	if cfg.SysEx.DecodeCapacity < 0 {
		return errors.New("sysex.decode_capacity must not be negative")
	}
	return nil
}

// StickOptions converts cfg into options for stick.New and stick.Open.
func (cfg Config) StickOptions(log zerolog.Logger) []stick.Option {
	opts := []stick.Option{
		stick.WithLogger(log),
		stick.WithManufacturerID(cfg.SysEx.ManufacturerID),
		stick.WithMaxSysExLength(cfg.SysEx.MaxLength),
		stick.WithDecodeCapacity(cfg.SysEx.DecodeCapacity),
		stick.WithPollPeriod(cfg.Port.PollInterval),
		stick.WithReadBufferDepth(cfg.Port.Buffer),
	}
	if cfg.NRPN.SharedState {
		opts = append(opts, stick.WithSharedNRPNState())
	}
	return opts
}
