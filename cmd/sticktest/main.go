package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jmacd/midistick/midi/controller"
	"github.com/jmacd/midistick/midi/nrpn"
	"github.com/jmacd/midistick/midi/sysex"
	"github.com/jmacd/midistick/stick"
	"gitlab.com/gomidi/midi/v2"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	port := flag.String("port", stick.DeviceName, "output port name")
	ch := flag.Uint("ch", 0, "MIDI channel (0-15)")
	count := flag.Int("n", 4, "how many notes to send")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	if *ch >= controller.NumChannels {
		fmt.Fprintf(os.Stderr, "channel %d out of range\n", *ch)
		os.Exit(2)
	}

	var err error
	switch flag.Arg(0) {
	case "list":
		listPorts()
	case "notes":
		err = withPort(*port, func(send func(midi.Message) error) error {
			return sendNotes(send, uint8(*ch), *count)
		})
	case "nrpn":
		err = withPort(*port, func(send func(midi.Message) error) error {
			return sendNRPN(send, uint8(*ch), flag.Args()[1:])
		})
	case "sysex":
		err = withPort(*port, func(send func(midi.Message) error) error {
			return sendSysEx(send, flag.Args()[1:])
		})
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "sticktest:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Stick test sender")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                    - List all MIDI ports")
	fmt.Println("  notes                   - Send middle C on and off, one second apart")
	fmt.Println("  nrpn <number> <value>   - Send one NRPN transaction")
	fmt.Println("  sysex <cmd> [text]      - Send a 7-bit packed SysEx command")
	fmt.Println("")
	flag.PrintDefaults()
}

func listPorts() {
	defer midi.CloseDriver()

	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range midi.GetInPorts() {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range midi.GetOutPorts() {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

func withPort(name string, fn func(send func(midi.Message) error) error) error {
	defer midi.CloseDriver()

	out, err := midi.FindOutPort(name)
	if err != nil {
		return fmt.Errorf("no output port matching %q: %w", name, err)
	}
	fmt.Println("Opened port:", out.String())
	send, err := midi.SendTo(out)
	if err != nil {
		return err
	}
	return fn(send)
}

func sendNotes(send func(midi.Message) error, ch uint8, count int) error {
	fmt.Println("Start sending notes.")
	for i := 0; i < count; i++ {
		if err := send(midi.NoteOn(ch, 60, 112)); err != nil {
			return err
		}
		time.Sleep(time.Second)
		if err := send(midi.NoteOff(ch, 60)); err != nil {
			return err
		}
		time.Sleep(time.Second)
	}
	return nil
}

func sendNRPN(send func(midi.Message) error, ch uint8, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("nrpn: want <number> <value>")
	}
	number, err := parse14(args[0])
	if err != nil {
		return err
	}
	value, err := parse14(args[1])
	if err != nil {
		return err
	}
	for _, msg := range nrpn.Messages(ch, number, value) {
		if err := send(msg); err != nil {
			return err
		}
	}
	fmt.Printf("Sent NRPN %d = %d on channel %d\n", number, value, ch)
	return nil
}

func sendSysEx(send func(midi.Message) error, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("sysex: want <cmd> [text]")
	}
	cmd, err := strconv.ParseUint(args[0], 0, 7)
	if err != nil {
		return fmt.Errorf("sysex: command: %w", err)
	}
	var payload []byte
	if len(args) > 1 {
		payload = []byte(args[1])
	}
	data, err := sysex.Build(sysex.ManufacturerID{sysex.NonCommercial}, byte(cmd), payload)
	if err != nil {
		return err
	}
	msg := midi.SysEx(data)
	if err := send(msg); err != nil {
		return err
	}
	fmt.Printf("Sent % X\n", []byte(msg))
	return nil
}

func parse14(s string) (controller.Value14, error) {
	v, err := strconv.ParseUint(s, 0, 14)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, err)
	}
	return controller.Value14(v), nil
}
