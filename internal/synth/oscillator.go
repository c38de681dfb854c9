// Package synth contains the per-voice signal chain (oscillator, low-pass
// filter, amplitude envelope) and the fixed voice pool that mixes them.
// Nothing in this package allocates or locks once constructed.
package synth

import "math"

// Shape selects the oscillator waveform.
type Shape int

const (
	Saw Shape = iota
	Sine
)

// Oscillator is a phase accumulator in [0, 1).
type Oscillator struct {
	phase float64
}

// Reset returns the phase to zero.
func (o *Oscillator) Reset() { o.phase = 0 }

// Phase returns the current phase.
func (o *Oscillator) Phase() float64 { return o.phase }

// Next produces one sample of shape at the current phase, then advances the
// phase by freq/sampleRate.
func (o *Oscillator) Next(shape Shape, freq, sampleRate float64) float64 {
	var s float64
	switch shape {
	case Sine:
		s = math.Sin(2 * math.Pi * o.phase)
	default:
		s = 2*o.phase - 1
	}

	o.phase += freq / sampleRate
	if o.phase >= 1 {
		o.phase -= math.Floor(o.phase)
	}
	return s
}

// NoteFrequency converts a MIDI note number to Hz, A4 (69) = 440 Hz.
func NoteFrequency(note uint8) float64 {
	return 440.0 * math.Pow(2.0, (float64(note)-69.0)/12.0)
}
