// Package param holds the synth's automatable parameters: their fixed layout,
// lock-free targets written by any goroutine, and the per-sample smoothing
// read by the audio goroutine.
package param

import (
	"fmt"
	"math"
)

// ID identifies a parameter in the fixed layout.
type ID int

const (
	OscType ID = iota
	FilterCutoff
	FilterResonance
	AmpAttack
	AmpDecay
	AmpSustain
	AmpRelease

	// NumParams is the number of parameters in the layout.
	NumParams
)

// Kind tells whether a parameter is a continuous range or a discrete choice.
type Kind int

const (
	Continuous Kind = iota
	Choice
)

// Oscillator shape choices, in layout order.
const (
	ShapeSaw  = 0
	ShapeSine = 1
)

// Info describes one parameter.
type Info struct {
	ID      ID
	Key     string
	Label   string
	Unit    string
	Kind    Kind
	Min     float64
	Max     float64
	Choices []string
	Default float64
}

var layout = [NumParams]Info{
	{ID: OscType, Key: "osc1Type", Label: "Osc 1 Type", Kind: Choice, Min: 0, Max: 1, Choices: []string{"saw", "sin"}, Default: ShapeSaw},
	{ID: FilterCutoff, Key: "filterCutoff", Label: "Filter Cutoff", Unit: "hz", Kind: Continuous, Min: 20, Max: 10000, Default: 1000},
	{ID: FilterResonance, Key: "filterResonance", Label: "Filter Resonance", Kind: Continuous, Min: 0, Max: 0.9, Default: 0.3},
	{ID: AmpAttack, Key: "ampEnvAttack", Label: "Amp Env Attack", Unit: "s", Kind: Continuous, Min: 0.001, Max: 2, Default: 0.001},
	{ID: AmpDecay, Key: "ampEnvDecay", Label: "Amp Env Decay", Unit: "s", Kind: Continuous, Min: 0, Max: 2, Default: 0},
	{ID: AmpSustain, Key: "ampEnvSustain", Label: "Amp Env Sustain", Kind: Continuous, Min: 0, Max: 1, Default: 1},
	{ID: AmpRelease, Key: "ampEnvRelease", Label: "Amp Env Release", Unit: "s", Kind: Continuous, Min: 0.001, Max: 2, Default: 0.5},
}

// Layout returns the parameter layout in ID order.
func Layout() []Info {
	out := make([]Info, len(layout))
	copy(out, layout[:])
	return out
}

// Lookup returns the layout entry for id.
func Lookup(id ID) (Info, bool) {
	if id < 0 || id >= NumParams {
		return Info{}, false
	}
	return layout[id], true
}

// ByKey finds a parameter by its host-facing key.
func ByKey(key string) (ID, bool) {
	for _, info := range layout {
		if info.Key == key {
			return info.ID, true
		}
	}
	return 0, false
}

// Clamp maps raw into the parameter's domain. Choice values are rounded to
// the nearest index.
func (i Info) Clamp(raw float64) float64 {
	if i.Kind == Choice {
		raw = math.Round(raw)
	}
	return math.Max(i.Min, math.Min(i.Max, raw))
}

// Format renders v for display, e.g. "1000.0 hz" or "saw".
func (i Info) Format(v float64) string {
	if i.Kind == Choice {
		idx := int(i.Clamp(v))
		if idx >= 0 && idx < len(i.Choices) {
			return i.Choices[idx]
		}
		return fmt.Sprintf("%d", idx)
	}
	s := fmt.Sprintf("%.3f", v)
	if i.Max > 100 {
		s = fmt.Sprintf("%.1f", v)
	}
	if i.Unit != "" {
		s += " " + i.Unit
	}
	return s
}

// Step is the increment used when nudging the value from a keyboard.
func (i Info) Step() float64 {
	if i.Kind == Choice {
		return 1
	}
	return (i.Max - i.Min) / 100
}
