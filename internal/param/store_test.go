package param

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestStoreDefaults(t *testing.T) {
	s := NewStore()
	for _, info := range Layout() {
		if got := s.Target(info.ID); got != info.Default {
			t.Errorf("Target(%s) = %v, want %v", info.Key, got, info.Default)
		}
	}
}

func TestStoreSetClamps(t *testing.T) {
	tests := []struct {
		id   ID
		raw  float64
		want float64
	}{
		{FilterCutoff, 50000, 10000},
		{FilterCutoff, -3, 20},
		{FilterResonance, 2, 0.9},
		{AmpSustain, -1, 0},
		{AmpAttack, 0, 0.001},
		{OscType, 0.6, ShapeSine},
		{OscType, 7, ShapeSine},
		{OscType, -2, ShapeSaw},
	}

	for _, tt := range tests {
		s := NewStore()
		s.Set(tt.id, tt.raw)
		if got := s.Target(tt.id); got != tt.want {
			t.Errorf("Set(%d, %v) -> %v, want %v", tt.id, tt.raw, got, tt.want)
		}
	}
}

func TestStoreIgnoresNaN(t *testing.T) {
	s := NewStore()
	s.Set(FilterCutoff, math.NaN())
	if got := s.Target(FilterCutoff); got != 1000 {
		t.Fatalf("Target after NaN = %v, want 1000", got)
	}
}

func TestStoreSetKey(t *testing.T) {
	s := NewStore()
	if err := s.SetKey("filterCutoff", 2500); err != nil {
		t.Fatalf("SetKey() error = %v, want nil", err)
	}
	if got := s.Target(FilterCutoff); got != 2500 {
		t.Errorf("Target = %v, want 2500", got)
	}

	err := s.SetKey("lfoRate", 1)
	if !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("SetKey(unknown) error = %v, want ErrUnknownParameter", err)
	}
}

func TestSmoothedStepBound(t *testing.T) {
	const sampleRate = 48000.0
	s := NewStore()
	s.Reset(sampleRate, DefaultRamp)
	rampSamples := DefaultRamp.Seconds() * sampleRate

	s.Set(FilterCutoff, 5000)
	s.Refresh()

	prev := s.Current(FilterCutoff)
	bound := (5000.0-1000.0)/rampSamples + 1e-6
	for i := 0; i < int(rampSamples)*2; i++ {
		v := s.Next(FilterCutoff)
		if d := math.Abs(v - prev); d > bound {
			t.Fatalf("sample %d: step %v exceeds %v", i, d, bound)
		}
		prev = v
	}
	if prev != 5000 {
		t.Fatalf("value after ramp = %v, want 5000", prev)
	}
}

func TestSmoothedRetargetMidRamp(t *testing.T) {
	s := NewStore()
	s.Reset(1000, 100*time.Millisecond)

	s.Set(AmpSustain, 0)
	s.Refresh()
	for i := 0; i < 50; i++ {
		s.Next(AmpSustain)
	}
	mid := s.Current(AmpSustain)
	if mid <= 0.4 || mid >= 0.6 {
		t.Fatalf("mid-ramp value = %v, want about 0.5", mid)
	}

	s.Set(AmpSustain, 1)
	s.Refresh()
	prev := mid
	for i := 0; i < 100; i++ {
		v := s.Next(AmpSustain)
		if v < prev {
			t.Fatalf("sample %d: value fell from %v to %v", i, prev, v)
		}
		prev = v
	}
	if prev != 1 {
		t.Fatalf("value after ramp = %v, want 1", prev)
	}
}

func TestChoiceSwitchesImmediately(t *testing.T) {
	s := NewStore()
	s.Reset(48000, DefaultRamp)
	s.Set(OscType, ShapeSine)
	s.Refresh()
	if got := s.Next(OscType); got != ShapeSine {
		t.Fatalf("Next(OscType) = %v, want %v", got, ShapeSine)
	}
}

func TestInfoFormat(t *testing.T) {
	cutoff, _ := Lookup(FilterCutoff)
	if got := cutoff.Format(1000); got != "1000.0 hz" {
		t.Errorf("Format(cutoff) = %q", got)
	}
	osc, _ := Lookup(OscType)
	if got := osc.Format(1); got != "sin" {
		t.Errorf("Format(osc) = %q", got)
	}
}
