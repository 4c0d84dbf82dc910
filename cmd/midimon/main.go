package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jmacd/midistick/internal/config"
	"github.com/jmacd/midistick/internal/logging"
	"github.com/jmacd/midistick/midi/nrpn"
	"github.com/jmacd/midistick/stick"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	configPath := flag.String("config", "", "TOML configuration file")
	portName := flag.String("port", "", "MIDI port name (overrides the configuration)")
	logFile := flag.String("log", "midimon.log", "log file; the terminal belongs to the monitor")
	flag.Parse()

	if err := run(*configPath, *portName, *logFile); err != nil {
		fmt.Fprintln(os.Stderr, "midimon:", err)
		os.Exit(1)
	}
}

func run(configPath, portName, logFile string) error {
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
	cfg.Log.File = logFile

	log, closeLog, err := logging.New("midimon", cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	var p *tea.Program
	send := func(msg tea.Msg) {
		if p != nil {
			p.Send(msg)
		}
	}
	h := stick.Funcs{
		OnNoteOn: func(ch, pitch, velocity uint8) {
			send(noteMsg{on: true, channel: ch, pitch: pitch, velocity: velocity})
		},
		OnNoteOff: func(ch, pitch, velocity uint8) {
			send(noteMsg{channel: ch, pitch: pitch, velocity: velocity})
		},
		OnControlChange: func(ch, control, value uint8) {
			send(controlMsg{channel: ch, control: control, value: value})
		},
		OnParameter: func(param nrpn.Parameter) {
			send(parameterMsg(param))
		},
		OnUnknownSysEx: func(command byte, payload []byte) {
			send(sysexMsg{command: command, size: len(payload)})
		},
	}

	s, err := stick.OpenDriver(cfg.Port.Driver, cfg.Port.Name, h, cfg.StickOptions(log)...)
	if err != nil {
		return err
	}
	defer s.Close()

	p = tea.NewProgram(newModel(cfg.Port.Name, s), tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		err := s.Run(ctx)
		if ctx.Err() == nil {
			p.Send(stoppedMsg{err: err})
		}
	}()

	_, err = p.Run()
	return err
}
