// Package config holds the runtime settings shared by every command.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/icco/scopesynth/internal/engine"
	"github.com/icco/scopesynth/internal/param"
	"github.com/spf13/pflag"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config is the engine format plus logging.
type Config struct {
	SampleRate     int
	BlockSize      int
	Channels       int
	Polyphony      int
	ScopeSize      int
	EventQueueSize int
	Ramp           time.Duration
	LogLevel       string
	LogFile        string
}

// Default returns the settings used when no flags are given.
func Default() Config {
	return Config{
		SampleRate:     48000,
		BlockSize:      512,
		Channels:       2,
		Polyphony:      engine.DefaultPolyphony,
		ScopeSize:      engine.DefaultScopeSize,
		EventQueueSize: engine.DefaultEventQueueSize,
		Ramp:           param.DefaultRamp,
		LogLevel:       "info",
	}
}

// BindFlags registers c's fields on fs, using c's current values as defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.SampleRate, "sample-rate", c.SampleRate, "output sample rate in Hz")
	fs.IntVar(&c.BlockSize, "block-size", c.BlockSize, "maximum samples rendered per block")
	fs.IntVar(&c.Channels, "channels", c.Channels, "output channels (1 or 2)")
	fs.IntVar(&c.Polyphony, "polyphony", c.Polyphony, "maximum simultaneous voices")
	fs.IntVar(&c.ScopeSize, "scope-size", c.ScopeSize, "samples kept for the oscilloscope")
	fs.IntVar(&c.EventQueueSize, "event-queue", c.EventQueueSize, "capacity of the note event queue")
	fs.DurationVar(&c.Ramp, "ramp", c.Ramp, "parameter smoothing time")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "write logs to this file instead of stderr")
}

// Validate checks ranges the engine would otherwise reject later.
func (c Config) Validate() error {
	switch {
	case c.SampleRate < engine.MinSampleRate || c.SampleRate > engine.MaxSampleRate:
		return fmt.Errorf("%w: sample rate %d outside %d-%d", ErrInvalid, c.SampleRate, engine.MinSampleRate, engine.MaxSampleRate)
	case c.BlockSize < 1 || c.BlockSize > engine.MaxBlockSize:
		return fmt.Errorf("%w: block size %d outside 1-%d", ErrInvalid, c.BlockSize, engine.MaxBlockSize)
	case c.Channels < 1 || c.Channels > engine.MaxChannels:
		return fmt.Errorf("%w: %d channels, want 1 or 2", ErrInvalid, c.Channels)
	case c.Polyphony < 1:
		return fmt.Errorf("%w: polyphony %d", ErrInvalid, c.Polyphony)
	case c.ScopeSize < 1:
		return fmt.Errorf("%w: scope size %d", ErrInvalid, c.ScopeSize)
	case c.EventQueueSize < 2:
		return fmt.Errorf("%w: event queue size %d", ErrInvalid, c.EventQueueSize)
	case c.Ramp < 0:
		return fmt.Errorf("%w: negative ramp %s", ErrInvalid, c.Ramp)
	}
	return nil
}

// NewEngine validates c and returns a prepared engine.
func (c Config) NewEngine() (*engine.Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	e := engine.New(
		engine.WithPolyphony(c.Polyphony),
		engine.WithScopeSize(c.ScopeSize),
		engine.WithEventQueueSize(c.EventQueueSize),
		engine.WithRamp(c.Ramp),
	)
	if err := e.Prepare(float64(c.SampleRate), c.BlockSize, c.Channels); err != nil {
		return nil, fmt.Errorf("failed to prepare engine: %w", err)
	}
	return e, nil
}
