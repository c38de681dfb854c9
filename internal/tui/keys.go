package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/icco/scopesynth/internal/event"
	"github.com/icco/scopesynth/internal/param"
)

const (
	keyUp    = "up"
	keyDown  = "down"
	keyLeft  = "left"
	keyRight = "right"
)

// keyOffsets maps the home row to semitones, piano style.
var keyOffsets = map[string]int{
	"a": 0, "w": 1, "s": 2, "e": 3, "d": 4, "f": 5, "t": 6,
	"g": 7, "y": 8, "h": 9, "u": 10, "j": 11, "k": 12,
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.pattern != nil {
			for _, n := range m.pattern.stop() {
				m.submit(n)
			}
		}
		m.submit(event.AllOff(event.Immediate))
		return m, tea.Quit
	case "tab":
		if m.pattern != nil {
			if m.focus == focusPlay {
				m.focus = focusPattern
			} else {
				m.focus = focusPlay
			}
		}
		return m, nil
	}

	if m.focus == focusPattern {
		return m.handlePatternKey(msg)
	}

	switch msg.String() {
	case keyUp:
		m.selected = (m.selected + param.NumParams - 1) % param.NumParams
	case keyDown:
		m.selected = (m.selected + 1) % param.NumParams
	case keyLeft:
		m.nudge(-1)
	case keyRight:
		m.nudge(1)
	case "z":
		if m.opts.Keyboard && m.octave > 0 {
			m.octave--
		}
	case "x":
		if m.opts.Keyboard && m.octave < 8 {
			m.octave++
		}
	default:
		if offset, ok := keyOffsets[msg.String()]; ok && m.opts.Keyboard {
			return m, m.pressKey(offset)
		}
	}
	return m, nil
}

func (m *Model) nudge(dir float64) {
	info, _ := param.Lookup(m.selected)
	values := m.synth.ParameterValues()
	next := info.Clamp(values[m.selected] + dir*info.Step())
	if info.Kind == param.Choice && next == values[m.selected] {
		// Choices wrap around.
		next = info.Min
		if dir < 0 {
			next = info.Max
		}
	}
	m.synth.SetParameterID(m.selected, next)
}

// pressKey plays a note and schedules its release; repeated presses extend
// the hold.
func (m *Model) pressKey(offset int) tea.Cmd {
	note := min(max((m.octave+1)*12+offset, 0), 127)
	key := uint8(note) //nolint:gosec // clamped to 0-127

	m.presses[key]++
	seq := m.presses[key]
	m.play(event.On(key, 100, event.Immediate), 0, "keys")
	return tea.Tick(keyHold, func(time.Time) tea.Msg {
		return releaseMsg{key: key, seq: seq}
	})
}

func (m *Model) handlePatternKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.pattern
	save := func() {
		if err := p.save(); err != nil {
			p.message = fmt.Sprintf("Error saving: %v", err)
		}
	}

	switch msg.String() {
	case keyLeft, "h":
		if p.cursorX > 0 {
			p.cursorX--
		}
	case keyRight, "l":
		if p.cursorX < numSteps-1 {
			p.cursorX++
		}
	case keyUp, "k":
		if p.cursorY > 0 {
			p.cursorY--
		}
	case keyDown, "j":
		if p.cursorY < numLanes-1 {
			p.cursorY++
		}
	case " ":
		p.steps[p.cursorY][p.cursorX] = !p.steps[p.cursorY][p.cursorX]
	case "w":
		p.nudgeNote(1)
	case "s":
		p.nudgeNote(-1)
	case "+", "=":
		p.bpm = min(p.bpm+5, maxBPM)
	case "-", "_":
		p.bpm = max(p.bpm-5, minBPM)
	case "c":
		for i := 0; i < numSteps; i++ {
			p.steps[p.cursorY][i] = false
		}
	case "ctrl+s":
		save()
	case "p":
		if p.playing {
			for _, n := range p.stop() {
				m.submit(n)
			}
			return m, nil
		}
		p.playing = true
		p.current = 0
		return m, func() tea.Msg { return stepMsg(time.Now()) }
	}
	return m, nil
}
