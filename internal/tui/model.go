// Package tui is the terminal front end for a running synth.
package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/icco/scopesynth/internal/event"
	"github.com/icco/scopesynth/internal/param"
)

const (
	maxMessageHistory = 20
	frameRate         = 30
	scopeWidth        = 64
	scopeHeight       = 9
	meterWidth        = 32
	keyHold           = 300 * time.Millisecond
)

// Synth is the engine surface the UI drives. Submit is only ever called
// from the bubbletea update loop, which keeps it single-producer.
type Synth interface {
	Submit(event.Note) bool
	SetParameterID(id param.ID, value float64)
	ParameterValues() [param.NumParams]float64
	ReadVisualizationWindow(dst []float32) int
	ActiveVoices() int
	Dropped() uint64
}

// Options configures the model.
type Options struct {
	Title string
	// Info lines shown under the title, e.g. the MIDI port.
	Info []string
	// Keyboard lets the computer keyboard play notes.
	Keyboard bool
	// PatternFile enables the step pattern, saved to this path.
	PatternFile string
}

// NoteMsg delivers a note event from outside the update loop, such as a MIDI
// callback. Channel and Source are for display only.
type NoteMsg struct {
	Note    event.Note
	Channel uint8
	Source  string
}

// StatusMsg replaces the status line.
type StatusMsg string

// ErrMsg shows a fatal error.
type ErrMsg struct{ Err error }

type frameMsg time.Time

type releaseMsg struct {
	key uint8
	seq int
}

type focus int

const (
	focusPlay focus = iota
	focusPattern
)

// Model is the bubbletea model.
type Model struct {
	synth Synth
	opts  Options

	window []float32
	shown  []float32
	level  float64
	vel    float64
	spring harmonica.Spring

	selected param.ID
	active   map[uint8]bool
	presses  map[uint8]int
	octave   int

	pattern *pattern
	focus   focus

	status         string
	messageHistory []string
	messageCount   int
	err            error
	width          int
	height         int
}

// NewModel builds the UI around s.
func NewModel(s Synth, opts Options) *Model {
	m := &Model{
		synth:          s,
		opts:           opts,
		window:         make([]float32, 1024),
		spring:         harmonica.NewSpring(harmonica.FPS(frameRate), 6.0, 0.5),
		active:         make(map[uint8]bool),
		presses:        make(map[uint8]int),
		octave:         4,
		messageHistory: make([]string, 0, maxMessageHistory),
	}
	if opts.PatternFile != "" {
		p := newPattern(opts.PatternFile)
		p.message = "New pattern"
		if _, err := os.Stat(opts.PatternFile); err == nil {
			if err := p.load(opts.PatternFile); err != nil {
				p.message = err.Error()
			}
		}
		m.pattern = &p
	}
	return m
}

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Init starts the redraw clock.
func (m *Model) Init() tea.Cmd {
	return frameTick()
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case frameMsg:
		m.pullScope()
		return m, frameTick()

	case NoteMsg:
		m.play(msg.Note, msg.Channel, msg.Source)
		return m, nil

	case releaseMsg:
		if m.presses[msg.key] == msg.seq {
			delete(m.presses, msg.key)
			m.play(event.Off(msg.key, event.Immediate), 0, "keys")
		}
		return m, nil

	case stepMsg:
		if m.pattern == nil || !m.pattern.playing {
			return m, nil
		}
		for _, n := range m.pattern.advance() {
			m.submit(n)
		}
		return m, tickWithBPM(m.pattern.bpm)

	case StatusMsg:
		m.status = string(msg)
		return m, nil

	case ErrMsg:
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) pullScope() {
	n := m.synth.ReadVisualizationWindow(m.window)
	m.shown = m.window[:n]

	var target float64
	for _, s := range m.shown {
		target = max(target, float64(max(s, -s)))
	}
	m.level, m.vel = m.spring.Update(m.level, m.vel, min(target, 1))
}

// submit sends n to the engine and tracks which keys are down.
func (m *Model) submit(n event.Note) {
	if !m.synth.Submit(n) {
		m.logf("Dropped:  %s (event queue full)", n)
		return
	}
	switch {
	case n.Kind == event.NoteOn && n.Velocity > 0:
		m.active[n.Key] = true
	case n.Kind == event.NoteOn, n.Kind == event.NoteOff:
		delete(m.active, n.Key)
	case n.Kind == event.AllNotesOff:
		m.active = make(map[uint8]bool)
	}
}

func (m *Model) play(n event.Note, channel uint8, source string) {
	m.submit(n)
	m.messageCount++
	switch {
	case n.Kind == event.NoteOn && n.Velocity > 0:
		m.logf("Note On:  Ch%d %-4s vel:%d  [%s]", channel+1, noteName(int(n.Key)), n.Velocity, source)
	case n.Kind == event.AllNotesOff:
		m.logf("All Off:  Ch%d  [%s]", channel+1, source)
	default:
		m.logf("Note Off: Ch%d %-4s  [%s]", channel+1, noteName(int(n.Key)), source)
	}
}

func (m *Model) logf(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	m.messageHistory = append([]string{message}, m.messageHistory...)
	if len(m.messageHistory) > maxMessageHistory {
		m.messageHistory = m.messageHistory[:maxMessageHistory]
	}
}

// View renders the whole screen.
func (m *Model) View() string {
	var b strings.Builder

	title := m.opts.Title
	if title == "" {
		title = "SCOPESYNTH"
	}
	b.WriteString(titleStyle.Render("🎹 "+title) + "\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
		b.WriteString(helpStyle.Render("Press Ctrl+C to quit"))
		return b.String()
	}

	for _, line := range m.opts.Info {
		b.WriteString(subtitleStyle.Render(line) + "\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render("● "+m.status) + "\n")
	}
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Voices: %d  Dropped: %d", m.synth.ActiveVoices(), m.synth.Dropped())) + "\n\n")

	b.WriteString(renderScope(m.shown, scopeWidth, scopeHeight) + "\n")
	b.WriteString(renderMeter(m.level, meterWidth) + "\n\n")

	b.WriteString(m.viewParams() + "\n")

	b.WriteString(subtitleStyle.Render("Active Notes:") + "\n")
	if len(m.active) == 0 {
		b.WriteString("  (no notes playing)\n")
	} else {
		names := make([]string, 0, len(m.active))
		for key := 0; key < 128; key++ {
			if m.active[uint8(key)] {
				names = append(names, noteName(key))
			}
		}
		b.WriteString("  " + noteStyle.Render(strings.Join(names, " ")) + "\n")
	}
	b.WriteString(renderKeyboard(m.active) + "\n\n")

	if m.pattern != nil {
		b.WriteString(m.pattern.view() + "\n")
	}

	b.WriteString(m.viewLog() + "\n")
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m *Model) viewParams() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("Parameters:") + "\n")
	values := m.synth.ParameterValues()
	for _, info := range param.Layout() {
		line := fmt.Sprintf("%-18s %s", info.Label, info.Format(values[info.ID]))
		if info.ID == m.selected && m.focus == focusPlay {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}

func (m *Model) viewLog() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Message Log: [%d total]", m.messageCount)) + "\n")
	if len(m.messageHistory) == 0 {
		b.WriteString("  " + logStyle.Render("(waiting for input)") + "\n")
		return b.String()
	}
	for i, msg := range m.messageHistory[:min(len(m.messageHistory), 10)] {
		if i == 0 {
			b.WriteString("  " + logHighlightStyle.Render("▶ "+msg) + "\n")
		} else {
			b.WriteString("  " + logStyle.Render("  "+msg) + "\n")
		}
	}
	return b.String()
}

func (m *Model) help() string {
	if m.focus == focusPattern {
		return "↑↓←→/hjkl: move • space: toggle • w/s: note • +/-: tempo • p: play/stop • c: clear lane • ctrl+s: save • tab: back"
	}
	h := "↑/↓: select parameter • ←/→: adjust • ctrl+c: quit"
	if m.opts.Keyboard {
		h = "a-k: play • z/x: octave • " + h
	}
	if m.pattern != nil {
		h += " • tab: pattern"
	}
	return h
}
