package synth

// velocityRamp is how long a retriggered voice takes to glide to its new
// velocity gain, in seconds.
const velocityRamp = 0.005

// voice is one sounding note: oscillator into filter, scaled by the
// amplitude envelope and the note's velocity.
type voice struct {
	osc    Oscillator
	filter Filter
	env    Envelope

	note     uint8
	velocity uint8
	freq     float64
	gain     float64
	target   float64

	active bool
	held   bool

	seq         uint64
	triggeredAt int64
	releasedAt  int64
}

func (v *voice) start(note, velocity uint8, seq uint64, at int64) {
	v.osc.Reset()
	v.filter.Reset()
	v.env.Reset()
	v.note = note
	v.freq = NoteFrequency(note)
	v.retrigger(velocity, seq, at)
}

// retrigger restarts the envelope from the current output amplitude. When
// the velocity changes, the envelope level is rescaled so level*gain is
// unchanged; if that would push the level above 1 the voice keeps its
// amplitude and glides down to the new gain instead.
func (v *voice) retrigger(velocity uint8, seq uint64, at int64) {
	v.velocity = velocity
	v.target = float64(velocity) / 127.0
	amp := v.env.Level() * v.gain
	switch {
	case !v.active || v.target <= 0:
		v.gain = v.target
	case amp <= v.target:
		v.env.setLevel(amp / v.target)
		v.gain = v.target
	default:
		v.env.setLevel(1)
		v.gain = amp
	}
	v.active = true
	v.held = true
	v.seq = seq
	v.triggeredAt = at
	v.releasedAt = 0
	v.env.Trigger()
}

func (v *voice) release(at int64) {
	if !v.held {
		return
	}
	v.held = false
	v.releasedAt = at
	v.env.Release()
}

func (v *voice) releasing() bool {
	return v.active && !v.held
}

func (v *voice) stop() {
	v.active = false
	v.held = false
	v.env.Reset()
}

// render accumulates samples [start, end) into out. It stops after the
// sample on which the envelope finishes.
func (v *voice) render(out []float32, start, end int, ctl *Controls, sampleRate, gain float64) {
	glide := 1 / (velocityRamp * sampleRate)
	for i := start; i < end; i++ {
		if v.gain != v.target {
			v.gain = approach(v.gain, v.target, glide)
		}
		x := v.osc.Next(ctl.Shape[i], v.freq, sampleRate)
		y := v.filter.Process(x, ctl.Cutoff[i], ctl.Resonance[i], sampleRate)
		level, finished := v.env.Next(ctl.Attack[i], ctl.Decay[i], ctl.Sustain[i], ctl.Release[i], sampleRate)
		out[i] += float32(y * level * v.gain * gain)
		if finished {
			v.stop()
			return
		}
	}
}

func approach(x, target, step float64) float64 {
	if x < target {
		return min(x+step, target)
	}
	return max(x-step, target)
}
