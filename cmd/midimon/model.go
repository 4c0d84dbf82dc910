package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jmacd/midistick/midi/controller"
	"github.com/jmacd/midistick/midi/nrpn"
	"github.com/jmacd/midistick/stick"
)

const (
	historySize = 16
	barWidth    = 32
	refresh     = 250 * time.Millisecond
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#fff")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f"))
)

type noteMsg struct {
	on       bool
	channel  uint8
	pitch    uint8
	velocity uint8
}

type controlMsg struct {
	channel, control, value uint8
}

type parameterMsg nrpn.Parameter

type sysexMsg struct {
	command byte
	size    int
}

type stoppedMsg struct{ err error }

type tickMsg time.Time

type paramKey struct {
	channel uint8
	number  controller.Value14
}

type model struct {
	port    string
	stick   *stick.Stick
	stats   stick.Stats
	history []string
	params  map[paramKey]controller.Value14
	err     error
}

func newModel(port string, s *stick.Stick) model {
	return model{
		port:   port,
		stick:  s,
		params: map[paramKey]controller.Value14{},
	}
}

func tick() tea.Cmd {
	return tea.Tick(refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "c":
			m.history = nil
			m.params = map[paramKey]controller.Value14{}
		}

	case tickMsg:
		m.stats = m.stick.Stats()
		return m, tick()

	case noteMsg:
		kind := "note off"
		if msg.on {
			kind = "note on "
		}
		m.record(fmt.Sprintf("ch%-2d %s pitch %3d vel %3d", msg.channel+1, kind, msg.pitch, msg.velocity))

	case controlMsg:
		m.record(fmt.Sprintf("ch%-2d cc       %3d = %3d  %s", msg.channel+1, msg.control, msg.value,
			bar(controller.Value(msg.value).Float(), barWidth/2)))

	case parameterMsg:
		m.params[paramKey{msg.Channel, msg.Number}] = msg.Value
		m.record(fmt.Sprintf("ch%-2d nrpn   %5d = %5d", msg.Channel+1, msg.Number, msg.Value))

	case sysexMsg:
		m.record(fmt.Sprintf("sysex  cmd 0x%02x  %d bytes", msg.command, msg.size))

	case stoppedMsg:
		m.err = msg.err
	}
	return m, nil
}

func (m *model) record(line string) {
	m.history = append(m.history, line)
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
}

func bar(f float64, width int) string {
	n := int(f*float64(width) + 0.5)
	if n < 0 {
		n = 0
	}
	if n > width {
		n = width
	}
	return barStyle.Render(strings.Repeat("█", n)) + dimStyle.Render(strings.Repeat("·", width-n))
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("midimon  " + m.port))
	b.WriteString("\n")
	st := m.stats
	b.WriteString(statusStyle.Render(fmt.Sprintf(
		"on %d  off %d  cc %d  nrpn %d  sysex %d/%d  foreign %d  rejected %d  malformed %d  overflow %d",
		st.NoteOn, st.NoteOff, st.ControlChanges, st.Parameters, st.SysEx, st.UnknownSysEx,
		st.Foreign, st.Rejected, st.Malformed, st.Overflows)))
	b.WriteString("\n\n")

	keys := make([]paramKey, 0, len(m.params))
	for k := range m.params {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].channel != keys[j].channel {
			return keys[i].channel < keys[j].channel
		}
		return keys[i].number < keys[j].number
	})
	for _, k := range keys {
		v := m.params[k]
		b.WriteString(fmt.Sprintf("ch%-2d %5d %s %5d\n", k.channel+1, k.number, bar(v.Float(), barWidth), v))
	}
	if len(keys) != 0 {
		b.WriteString("\n")
	}

	for _, line := range m.history {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("stopped: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("c:clear  q:quit"))
	return b.String()
}
