package engine

import (
	"time"

	"github.com/icco/scopesynth/internal/param"
	"github.com/icco/scopesynth/internal/synth"
)

// Defaults for Options.
const (
	DefaultPolyphony      = 16
	DefaultScopeSize      = 4096
	DefaultEventQueueSize = 256
	DefaultHostEvents     = 512
)

// Options sizes the fixed pools an Engine allocates.
type Options struct {
	Polyphony      int
	ScopeSize      int
	EventQueueSize int
	// HostEvents bounds the events passed to one RenderNextBlock call;
	// extras are dropped and counted.
	HostEvents int
	Ramp       time.Duration
	Gain       float64
}

// Option customizes an Engine.
type Option func(*Options)

// WithPolyphony sets the number of voices.
func WithPolyphony(n int) Option {
	return func(o *Options) { o.Polyphony = n }
}

// WithScopeSize sets how many recent samples the visualization queue keeps.
func WithScopeSize(n int) Option {
	return func(o *Options) { o.ScopeSize = n }
}

// WithEventQueueSize sets the capacity of the control-to-audio event queue.
func WithEventQueueSize(n int) Option {
	return func(o *Options) { o.EventQueueSize = n }
}

// WithRamp sets the parameter smoothing time.
func WithRamp(d time.Duration) Option {
	return func(o *Options) { o.Ramp = d }
}

// WithGain sets the voice mix gain.
func WithGain(g float64) Option {
	return func(o *Options) { o.Gain = g }
}

func defaultOptions() Options {
	return Options{
		Polyphony:      DefaultPolyphony,
		ScopeSize:      DefaultScopeSize,
		EventQueueSize: DefaultEventQueueSize,
		HostEvents:     DefaultHostEvents,
		Ramp:           param.DefaultRamp,
		Gain:           synth.DefaultGain,
	}
}
