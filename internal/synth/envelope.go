package synth

// Stage is a position in the ADSR state machine.
type Stage int

const (
	Idle Stage = iota
	Attack
	Decay
	Sustain
	Release
)

func (s Stage) String() string {
	switch s {
	case Attack:
		return "attack"
	case Decay:
		return "decay"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	default:
		return "idle"
	}
}

// MinStageTime is the shortest attack, decay or release, in seconds.
const MinStageTime = 0.001

// Envelope is a linear ADSR generator. Stage times and the sustain level are
// read per sample so they can follow smoothed parameters.
type Envelope struct {
	stage       Stage
	level       float64
	releaseFrom float64
}

// Stage returns the current stage.
func (e *Envelope) Stage() Stage { return e.stage }

// Level returns the last output value.
func (e *Envelope) Level() float64 { return e.level }

// Reset stops the envelope at zero.
func (e *Envelope) Reset() {
	e.stage = Idle
	e.level = 0
	e.releaseFrom = 0
}

// Trigger enters Attack from the current level. A retrigger during release
// ramps up from wherever the release had reached.
func (e *Envelope) Trigger() {
	e.stage = Attack
}

func (e *Envelope) setLevel(level float64) {
	e.level = max(0, min(level, 1))
}

// Release enters the release stage from the current level.
func (e *Envelope) Release() {
	if e.stage == Idle || e.stage == Release {
		return
	}
	e.stage = Release
	e.releaseFrom = e.level
}

// Next advances one sample and returns the amplitude. finished is true on
// the sample where the release reaches zero; the envelope is then Idle.
func (e *Envelope) Next(attack, decay, sustain, release, sampleRate float64) (level float64, finished bool) {
	switch e.stage {
	case Attack:
		e.level += 1 / (clampTime(attack) * sampleRate)
		if e.level >= 1 {
			e.level = 1
			e.stage = Decay
		}
	case Decay:
		e.level -= (1 - sustain) / (clampTime(decay) * sampleRate)
		if e.level <= sustain {
			e.level = sustain
			e.stage = Sustain
		}
	case Sustain:
		e.level = sustain
	case Release:
		e.level -= e.releaseFrom / (clampTime(release) * sampleRate)
		if e.level <= 0 {
			e.level = 0
			e.stage = Idle
			return 0, true
		}
	default:
		return 0, false
	}
	return e.level, false
}

func clampTime(t float64) float64 {
	if t < MinStageTime {
		return MinStageTime
	}
	return t
}
