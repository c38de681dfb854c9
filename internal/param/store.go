package param

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"
)

// DefaultRamp is the smoothing time applied to continuous parameters.
const DefaultRamp = 20 * time.Millisecond

// Store holds the target of every parameter plus its smoother.
//
// Set and SetKey may be called from any goroutine. Refresh and Next belong
// to the audio goroutine only. Targets are float64 bits in an atomic word, so
// a reader never sees a torn value.
type Store struct {
	targets   [NumParams]atomic.Uint64
	smoothers [NumParams]Smoother
}

// NewStore returns a store holding the layout defaults.
func NewStore() *Store {
	s := &Store{}
	for _, info := range layout {
		s.targets[info.ID].Store(math.Float64bits(info.Default))
		s.smoothers[info.ID].Reset(info.Default, 0)
	}
	return s
}

// Set clamps raw into the parameter's domain and publishes it. NaN and
// unknown IDs are ignored.
func (s *Store) Set(id ID, raw float64) {
	info, ok := Lookup(id)
	if !ok || math.IsNaN(raw) {
		return
	}
	s.targets[id].Store(math.Float64bits(info.Clamp(raw)))
}

// SetKey is Set addressed by the parameter key.
func (s *Store) SetKey(key string, raw float64) error {
	id, ok := ByKey(key)
	if !ok {
		return fmt.Errorf("%q: %w", key, ErrUnknownParameter)
	}
	s.Set(id, raw)
	return nil
}

// Target returns the last published value of id.
func (s *Store) Target(id ID) float64 {
	if id < 0 || id >= NumParams {
		return 0
	}
	return math.Float64frombits(s.targets[id].Load())
}

// Targets copies every published value, in ID order.
func (s *Store) Targets() [NumParams]float64 {
	var out [NumParams]float64
	for i := range out {
		out[i] = math.Float64frombits(s.targets[i].Load())
	}
	return out
}

// Reset sizes the ramps for sampleRate and snaps every smoother to its
// target. Choice parameters never ramp.
func (s *Store) Reset(sampleRate float64, ramp time.Duration) {
	samples := int(math.Round(ramp.Seconds() * sampleRate))
	for _, info := range layout {
		n := samples
		if info.Kind == Choice {
			n = 0
		}
		s.smoothers[info.ID].Reset(s.Target(info.ID), n)
	}
}

// Refresh loads the published targets into the smoothers. Call once per
// block before the first Next.
func (s *Store) Refresh() {
	for i := range s.smoothers {
		s.smoothers[i].SetTarget(math.Float64frombits(s.targets[i].Load()))
	}
}

// Next advances id's smoother by one sample and returns the live value.
func (s *Store) Next(id ID) float64 {
	return s.smoothers[id].Next()
}

// Current returns id's live value without advancing.
func (s *Store) Current(id ID) float64 {
	return s.smoothers[id].Current()
}
