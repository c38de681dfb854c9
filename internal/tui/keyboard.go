package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderKeyboard(active map[uint8]bool) string {
	// Two octaves from C3 (48) to B4 (71)
	whiteStyle := lipgloss.NewStyle().Background(lipgloss.Color("#FFFFFF")).Foreground(lipgloss.Color("#000000"))
	blackStyle := lipgloss.NewStyle().Background(lipgloss.Color("#000000")).Foreground(lipgloss.Color("#FFFFFF"))
	activeWhite := lipgloss.NewStyle().Background(lipgloss.Color("#00FF00")).Foreground(lipgloss.Color("#000000"))
	activeBlack := lipgloss.NewStyle().Background(lipgloss.Color("#00AA00")).Foreground(lipgloss.Color("#FFFFFF"))

	whiteKeys := []uint8{0, 2, 4, 5, 7, 9, 11}
	blackKeys := []int{1, 3, -1, 6, 8, 10, -1}

	var top, bottom strings.Builder
	for octave := 3; octave <= 4; octave++ {
		base := uint8(octave*12 + 12) //nolint:gosec // octave is 3 or 4

		for _, offset := range blackKeys {
			if offset < 0 {
				top.WriteString("  ")
				continue
			}
			note := base + uint8(offset) //nolint:gosec // offset is a semitone within the octave
			if active[note] {
				top.WriteString(activeBlack.Render("█"))
			} else {
				top.WriteString(blackStyle.Render("█"))
			}
			top.WriteString(" ")
		}

		for _, offset := range whiteKeys {
			if active[base+offset] {
				bottom.WriteString(activeWhite.Render("█"))
			} else {
				bottom.WriteString(whiteStyle.Render("█"))
			}
			bottom.WriteString(" ")
		}
	}

	return top.String() + "\n" + bottom.String()
}

func noteName(note int) string {
	notes := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	if note < 0 {
		note = 0
	}
	octave := (note / 12) - 1
	return fmt.Sprintf("%s%d", notes[note%12], octave)
}
