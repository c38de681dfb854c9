package synth

// DefaultGain scales the voice mix so a few full-velocity notes stay below
// full scale.
const DefaultGain = 0.25

// VoiceInfo is a read-only view of one pool slot.
type VoiceInfo struct {
	Note     uint8
	Velocity uint8
	Stage    Stage
	Level    float64
	Active   bool
}

// VoiceManager owns a fixed pool of voices. Allocation, stealing and release
// never allocate; the pool size is fixed at construction.
type VoiceManager struct {
	voices     []voice
	sampleRate float64
	gain       float64
	seq        uint64
}

// NewVoiceManager creates a pool of polyphony voices.
func NewVoiceManager(polyphony int) *VoiceManager {
	return &VoiceManager{
		voices:     make([]voice, max(polyphony, 1)),
		sampleRate: 48000,
		gain:       DefaultGain,
	}
}

// SetSampleRate sets the rate used for oscillator and envelope timing.
func (m *VoiceManager) SetSampleRate(sampleRate float64) {
	m.sampleRate = sampleRate
}

// SetGain sets the mix gain applied to every voice.
func (m *VoiceManager) SetGain(gain float64) {
	m.gain = gain
}

// Polyphony returns the pool capacity.
func (m *VoiceManager) Polyphony() int { return len(m.voices) }

// Active returns the number of sounding voices.
func (m *VoiceManager) Active() int {
	n := 0
	for i := range m.voices {
		if m.voices[i].active {
			n++
		}
	}
	return n
}

// NoteOn starts note at absolute sample time at. Velocity 0 is a note-off.
//
// A voice already sounding the same note is retriggered from its current
// level. Otherwise a free voice is used; with none free, the voice that has
// been releasing longest is stolen, or failing that the oldest-triggered
// voice.
func (m *VoiceManager) NoteOn(note, velocity uint8, at int64) {
	if note > 127 {
		return
	}
	if velocity == 0 {
		m.NoteOff(note, at)
		return
	}
	if velocity > 127 {
		velocity = 127
	}
	m.seq++

	if v := m.sounding(note); v != nil {
		v.retrigger(velocity, m.seq, at)
		return
	}
	m.allocate().start(note, velocity, m.seq, at)
}

// NoteOff releases the most recently triggered held voice playing note.
func (m *VoiceManager) NoteOff(note uint8, at int64) {
	var target *voice
	for i := range m.voices {
		v := &m.voices[i]
		if v.active && v.held && v.note == note && (target == nil || v.seq > target.seq) {
			target = v
		}
	}
	if target != nil {
		target.release(at)
	}
}

// AllNotesOff releases every held voice.
func (m *VoiceManager) AllNotesOff(at int64) {
	for i := range m.voices {
		if m.voices[i].active {
			m.voices[i].release(at)
		}
	}
}

// Reset silences every voice immediately.
func (m *VoiceManager) Reset() {
	for i := range m.voices {
		m.voices[i].stop()
	}
}

// RenderBlock accumulates every active voice into out[start:end], reading
// per-sample controls from ctl at the same indices.
func (m *VoiceManager) RenderBlock(out []float32, start, end int, ctl *Controls) {
	if start >= end {
		return
	}
	for i := range m.voices {
		if m.voices[i].active {
			m.voices[i].render(out, start, end, ctl, m.sampleRate, m.gain)
		}
	}
}

// Voices copies the pool state into dst, which must hold Polyphony entries.
func (m *VoiceManager) Voices(dst []VoiceInfo) int {
	n := min(len(dst), len(m.voices))
	for i := 0; i < n; i++ {
		v := &m.voices[i]
		dst[i] = VoiceInfo{
			Note:     v.note,
			Velocity: v.velocity,
			Stage:    v.env.Stage(),
			Level:    v.env.Level(),
			Active:   v.active,
		}
	}
	return n
}

// sounding returns the most recent active voice playing note, if any.
func (m *VoiceManager) sounding(note uint8) *voice {
	var found *voice
	for i := range m.voices {
		v := &m.voices[i]
		if v.active && v.note == note && (found == nil || v.seq > found.seq) {
			found = v
		}
	}
	return found
}

func (m *VoiceManager) allocate() *voice {
	for i := range m.voices {
		if !m.voices[i].active {
			return &m.voices[i]
		}
	}
	return m.steal()
}

// steal picks the voice released earliest, else the oldest trigger.
func (m *VoiceManager) steal() *voice {
	var released, oldest *voice
	for i := range m.voices {
		v := &m.voices[i]
		if v.releasing() {
			if released == nil || v.releasedAt < released.releasedAt ||
				(v.releasedAt == released.releasedAt && v.seq < released.seq) {
				released = v
			}
		}
		if oldest == nil || v.seq < oldest.seq {
			oldest = v
		}
	}
	if released != nil {
		return released
	}
	return oldest
}
