package tui

import (
	"fmt"
	"strings"

	"github.com/icco/scopesynth/internal/scope"
)

// minScale keeps near-silence from being blown up into noise.
const minScale = 0.05

// renderScope draws window as a width x height trace, starting at the first
// rising zero crossing and auto-scaled to the window peak.
func renderScope(window []float32, width, height int) string {
	var b strings.Builder
	peak := scope.Peak(window)

	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Oscilloscope  peak %.3f", peak)) + "\n")

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	mid := height / 2

	start := scope.TriggerIndex(window, 0)
	span := window[start:]
	step := max(1, len(span)/2/max(width, 1))
	scale := max(peak, minScale)

	toRow := func(v float32) int {
		r := int(float32(mid) - v/scale*float32(height-1)/2)
		return min(max(r, 0), height-1)
	}

	for c := 0; c < width; c++ {
		lo, hi := c*step, (c+1)*step
		if lo >= len(span) {
			break
		}
		hi = min(hi, len(span))
		minV, maxV := span[lo], span[lo]
		for _, v := range span[lo:hi] {
			minV = min(minV, v)
			maxV = max(maxV, v)
		}
		for r := toRow(maxV); r <= toRow(minV); r++ {
			grid[r][c] = '•'
		}
	}

	b.WriteString(gridStyle.Render("┌"+strings.Repeat("─", width)+"┐") + "\n")
	for r, row := range grid {
		line := string(row)
		if r == mid {
			line = strings.ReplaceAll(line, " ", "·")
		}
		b.WriteString(gridStyle.Render("│") + traceStyle.Render(line) + gridStyle.Render("│") + "\n")
	}
	b.WriteString(gridStyle.Render("└"+strings.Repeat("─", width)+"┘"))
	return b.String()
}

// renderMeter draws a horizontal level bar for level in [0, 1].
func renderMeter(level float64, width int) string {
	filled := int(level * float64(width))
	filled = min(max(filled, 0), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return subtitleStyle.Render("Level ") + statusStyle.Render(bar)
}
