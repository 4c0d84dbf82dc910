package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmacd/midistick/internal/config"
	"github.com/jmacd/midistick/internal/logging"
	"github.com/jmacd/midistick/midi/controller"
	"github.com/jmacd/midistick/midi/nrpn"
	"github.com/jmacd/midistick/stick"
	"github.com/rs/zerolog"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

const (
	cmdPing = 0x01
	cmdText = 0x02
)

func main() {
	configPath := flag.String("config", "", "TOML configuration file")
	portName := flag.String("port", "", "MIDI port name (overrides the configuration)")
	driver := flag.String("driver", "", "MIDI driver, rtmidi or portmidi (overrides the configuration)")
	flag.Parse()

	if err := run(*configPath, *portName, *driver); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "midistick:", err)
		os.Exit(1)
	}
}

func run(configPath, portName, driver string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if portName != "" {
		cfg.Port.Name = portName
	}
	if driver != "" {
		cfg.Port.Driver = driver
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}

	log, closeLog, err := logging.New("midistick", cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := stick.OpenDriver(cfg.Port.Driver, cfg.Port.Name, logHandler(log), cfg.StickOptions(log)...)
	if err != nil {
		return err
	}
	defer s.Close()

	s.HandleSysEx(cmdPing, func(payload []byte) error {
		return s.SendSysEx(cmdPing, payload)
	})
	s.HandleSysEx(cmdText, func(payload []byte) error {
		log.Info().Str("text", string(payload)).Msg("message")
		return nil
	})
	s.AddCallback(s.AllChannels(), controller.Control(7), func(ch int, _ controller.Control, v controller.Value) {
		log.Debug().Int("channel", ch).Float64("volume", v.Float()).Msg("volume")
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = s.Run(ctx)
	st := s.Stats()
	log.Info().
		Uint64("notes", st.NoteOn+st.NoteOff).
		Uint64("control_changes", st.ControlChanges).
		Uint64("parameters", st.Parameters).
		Uint64("sysex", st.SysEx).
		Uint64("rejected", st.Rejected+st.Malformed+st.Overflows).
		Msg("stopped")
	return err
}

func logHandler(log zerolog.Logger) stick.Handler {
	return stick.Funcs{
		OnNoteOn: func(ch, pitch, velocity uint8) {
			log.Info().Uint8("channel", ch).Uint8("pitch", pitch).Uint8("velocity", velocity).Msg("note on")
		},
		OnNoteOff: func(ch, pitch, velocity uint8) {
			log.Info().Uint8("channel", ch).Uint8("pitch", pitch).Uint8("velocity", velocity).Msg("note off")
		},
		OnControlChange: func(ch, control, value uint8) {
			log.Info().Uint8("channel", ch).Uint8("control", control).Uint8("value", value).Msg("control change")
		},
		OnParameter: func(p nrpn.Parameter) {
			log.Info().Uint8("channel", p.Channel).Uint16("number", uint16(p.Number)).Uint16("value", uint16(p.Value)).Msg("nrpn")
		},
		OnUnknownSysEx: func(command byte, payload []byte) {
			log.Info().Uint8("command", command).Hex("payload", payload).Msg("unhandled sysex")
		},
	}
}
