package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/icco/scopesynth/internal/event"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	numSteps            = 16
	numLanes            = 4
	ticksPerQuarterNote = 960 // Standard MIDI resolution
	patternVelocity     = 100
	minBPM              = 20
	maxBPM              = 300
)

// stepMsg advances pattern playback.
type stepMsg time.Time

// pattern is a 16-step, 4-lane note grid played through the synth and
// stored as a Standard MIDI File, one track per lane.
type pattern struct {
	filePath string
	bpm      int
	steps    [numLanes][numSteps]bool
	notes    [numLanes][numSteps]int
	cursorX  int
	cursorY  int
	playing  bool
	current  int
	sounding [numLanes]int // note held by each lane, -1 for none
	message  string
}

func newPattern(path string) pattern {
	p := pattern{filePath: path, bpm: 120}
	defaultNotes := [numLanes]int{48, 55, 60, 64}
	for lane := 0; lane < numLanes; lane++ {
		for step := 0; step < numSteps; step++ {
			p.notes[lane][step] = defaultNotes[lane]
		}
		p.sounding[lane] = -1
	}
	return p
}

// load replaces the grid with the notes in path. A missing file leaves the
// default grid in place.
func (p *pattern) load(path string) error {
	*p = newPattern(path)

	rd, err := smf.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read pattern: %w", err)
	}

	if tempoChanges := rd.TempoChanges(); len(tempoChanges) > 0 {
		p.bpm = int(tempoChanges[0].BPM)
	}

	// One bar = 4 beats = 16 steps
	ticksPerStep := uint32(ticksPerQuarterNote / 4)

	// Track 0 is the tempo track
	for trackIdx := 1; trackIdx < len(rd.Tracks) && trackIdx <= numLanes; trackIdx++ {
		lane := trackIdx - 1
		var tick uint32
		for _, ev := range rd.Tracks[trackIdx] {
			tick += ev.Delta
			var channel, key, velocity uint8
			if midi.Message(ev.Message).GetNoteStart(&channel, &key, &velocity) {
				step := int(tick / ticksPerStep)
				if step < numSteps {
					p.notes[lane][step] = int(key)
					p.steps[lane][step] = true
				}
			}
		}
	}

	p.message = fmt.Sprintf("Loaded: %s", path)
	return nil
}

func (p *pattern) save() error {
	if p.filePath == "" {
		return fmt.Errorf("no pattern file set")
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarterNote)
	ticksPerStep := uint32(ticksPerQuarterNote / 4)

	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(4, 4))
	track0.Add(0, smf.MetaTempo(float64(p.bpm)))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return fmt.Errorf("error adding tempo track: %w", err)
	}

	for lane := 0; lane < numLanes; lane++ {
		var track smf.Track
		var lastTick uint32
		for step := 0; step < numSteps; step++ {
			if !p.steps[lane][step] {
				continue
			}
			pos := uint32(step) * ticksPerStep //nolint:gosec // step is bounded by numSteps
			key := uint8(p.notes[lane][step])   //nolint:gosec // notes are kept in 0-127
			ch := uint8(lane)                   //nolint:gosec // lane is bounded by numLanes
			track.Add(pos-lastTick, midi.NoteOn(ch, key, patternVelocity))
			track.Add(ticksPerStep-1, midi.NoteOff(ch, key))
			lastTick = pos + ticksPerStep - 1
		}
		endTick := uint32(numSteps) * ticksPerStep
		if lastTick < endTick {
			track.Close(endTick - lastTick)
		} else {
			track.Close(0)
		}
		if err := sm.Add(track); err != nil {
			return fmt.Errorf("error adding track %d: %w", lane, err)
		}
	}

	if err := sm.WriteFile(p.filePath); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	p.message = fmt.Sprintf("Saved: %s", p.filePath)
	return nil
}

// advance releases the notes of the previous step and starts those of the
// current one, then moves to the next step.
func (p *pattern) advance() []event.Note {
	var out []event.Note
	for lane := 0; lane < numLanes; lane++ {
		if p.sounding[lane] >= 0 {
			out = append(out, event.Off(uint8(p.sounding[lane]), event.Immediate)) //nolint:gosec // notes are kept in 0-127
			p.sounding[lane] = -1
		}
		if p.steps[lane][p.current] {
			key := p.notes[lane][p.current]
			out = append(out, event.On(uint8(key), patternVelocity, event.Immediate)) //nolint:gosec // notes are kept in 0-127
			p.sounding[lane] = key
		}
	}
	p.current = (p.current + 1) % numSteps
	return out
}

// stop ends playback and releases anything still sounding.
func (p *pattern) stop() []event.Note {
	p.playing = false
	var out []event.Note
	for lane := 0; lane < numLanes; lane++ {
		if p.sounding[lane] >= 0 {
			out = append(out, event.Off(uint8(p.sounding[lane]), event.Immediate)) //nolint:gosec // notes are kept in 0-127
			p.sounding[lane] = -1
		}
	}
	return out
}

func (p *pattern) nudgeNote(delta int) {
	n := p.notes[p.cursorY][p.cursorX] + delta
	p.notes[p.cursorY][p.cursorX] = min(max(n, 0), 127)
}

func stepInterval(bpm int) time.Duration {
	// 16 steps per bar of 4 beats, so each step is a 16th note
	return time.Duration(60000/bpm/4) * time.Millisecond
}

func tickWithBPM(bpm int) tea.Cmd {
	return tea.Tick(stepInterval(bpm), func(t time.Time) tea.Msg {
		return stepMsg(t)
	})
}

func (p *pattern) view() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Pattern  BPM: %d  File: %s", p.bpm, p.filePath)) + "\n")
	b.WriteString(renderClockBar(p.playing, p.current) + "\n")

	b.WriteString("Lane    Note  ")
	hexDigits := "0123456789ABCDEF"
	for i := 0; i < numSteps; i++ {
		b.WriteString(fmt.Sprintf(" %c ", hexDigits[i]))
	}
	b.WriteString("\n")

	for lane := 0; lane < numLanes; lane++ {
		label := fmt.Sprintf("L%-6d", lane+1)
		name := fmt.Sprintf("%-5s ", noteName(p.notes[lane][p.cursorX]))
		if lane == p.cursorY {
			label = selectedStyle.Render(label)
			name = selectedStyle.Render(name)
		}
		b.WriteString(label + name)

		for step := 0; step < numSteps; step++ {
			cell := " · "
			if p.steps[lane][step] {
				cell = " ● "
			}
			cellStyle := lipgloss.NewStyle().Width(3)
			if lane == p.cursorY && step == p.cursorX {
				cellStyle = cellStyle.Background(lipgloss.Color("#7D56F4"))
			}
			if p.steps[lane][step] {
				cellStyle = cellStyle.Foreground(lipgloss.Color("#FFD700"))
			} else {
				cellStyle = cellStyle.Foreground(lipgloss.Color("#666666"))
			}
			if p.playing && step == (p.current+numSteps-1)%numSteps {
				cellStyle = cellStyle.Bold(true)
			}
			b.WriteString(cellStyle.Render(cell))
		}
		b.WriteString("\n")
	}
	if p.message != "" {
		b.WriteString(noteStyle.Render(p.message) + "\n")
	}
	return b.String()
}

func renderClockBar(isPlaying bool, next int) string {
	// Gradient from cyan to magenta
	colors := []string{
		"#00FFFF", "#00E5FF", "#00CCFF", "#00B2FF",
		"#0099FF", "#0080FF", "#0066FF", "#1A4DFF",
		"#3333FF", "#4D1AFF", "#6600FF", "#8000FF",
		"#9900FF", "#B300FF", "#CC00FF", "#FF00FF",
	}
	playing := (next + numSteps - 1) % numSteps

	var bar strings.Builder
	bar.WriteString("Clock         ")
	for i := 0; i < numSteps; i++ {
		var cell string
		var cellStyle lipgloss.Style
		switch {
		case isPlaying && i == playing:
			cell = " ▶ "
			cellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color(colors[i])).
				Bold(true)
		case isPlaying && i < playing:
			cell = " █ "
			cellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colors[i]))
		default:
			cell = " · "
			cellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
		}
		bar.WriteString(cellStyle.Render(cell))
	}

	if isPlaying {
		bar.WriteString(statusStyle.Render(" Playing"))
	} else {
		bar.WriteString(subtitleStyle.Render(" Stopped"))
	}
	return bar.String()
}
