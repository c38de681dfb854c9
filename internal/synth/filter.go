package synth

import (
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// Cutoff and resonance limits for Filter.
const (
	MinCutoff     = 20.0
	MaxCutoff     = 10000.0
	MaxResonance  = 0.9
	cutoffNyquist = 0.45
)

// Filter is a resonant two-pole low-pass. Resonance r maps to Q = 1/(2-2r),
// so 0 gives Q 0.5 and the 0.9 cap gives Q 5. Coefficients are redesigned
// only when cutoff, resonance or sample rate change; the section state
// carries over so a moving cutoff stays continuous.
type Filter struct {
	section biquad.Section
	ready   bool

	cutoff, resonance, sampleRate float64
	fc, q                         float64
}

// Reset clears the filter state.
func (f *Filter) Reset() {
	f.section.Reset()
}

func (f *Filter) update(cutoff, resonance, sampleRate float64) {
	if f.ready && cutoff == f.cutoff && resonance == f.resonance && sampleRate == f.sampleRate {
		return
	}
	f.fc = max(MinCutoff, min(cutoff, MaxCutoff, cutoffNyquist*sampleRate))
	f.q = 1 / (2 - 2*max(0, min(resonance, MaxResonance)))
	f.section.Coefficients = design.Lowpass(f.fc, f.q, sampleRate)

	f.ready = true
	f.cutoff = cutoff
	f.resonance = resonance
	f.sampleRate = sampleRate
}

// Process filters one sample.
func (f *Filter) Process(x, cutoff, resonance, sampleRate float64) float64 {
	f.update(cutoff, resonance, sampleRate)
	return f.section.ProcessSample(x)
}
