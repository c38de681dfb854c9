package param

// Smoother ramps linearly from its current value to a target over a fixed
// number of samples, then holds. A new target restarts the ramp from the
// current value, so the output never jumps.
type Smoother struct {
	current   float64
	target    float64
	step      float64
	remaining int
	ramp      int
}

// Reset sets the ramp length and snaps the output to value.
func (s *Smoother) Reset(value float64, rampSamples int) {
	s.ramp = max(rampSamples, 0)
	s.current = value
	s.target = value
	s.step = 0
	s.remaining = 0
}

// SetTarget starts a ramp toward target.
func (s *Smoother) SetTarget(target float64) {
	if target == s.target {
		return
	}
	s.target = target
	if s.ramp == 0 {
		s.current = target
		s.remaining = 0
		return
	}
	s.step = (target - s.current) / float64(s.ramp)
	s.remaining = s.ramp
}

// Next advances one sample and returns the new value.
func (s *Smoother) Next() float64 {
	if s.remaining == 0 {
		return s.current
	}
	s.remaining--
	if s.remaining == 0 {
		s.current = s.target
	} else {
		s.current += s.step
	}
	return s.current
}

// Current returns the value without advancing.
func (s *Smoother) Current() float64 { return s.current }

// Target returns the value being ramped toward.
func (s *Smoother) Target() float64 { return s.target }

// IsSmoothing reports whether a ramp is in progress.
func (s *Smoother) IsSmoothing() bool { return s.remaining > 0 }
