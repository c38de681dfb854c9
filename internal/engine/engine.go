// Package engine renders the synth block by block for an audio host.
//
// Three goroutines share an Engine: the audio goroutine calls
// RenderNextBlock, one control goroutine calls SetParameter and Submit, and
// one UI goroutine calls ReadVisualizationWindow. They share nothing but
// atomics; every buffer is allocated in New or Prepare.
package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/icco/scopesynth/internal/event"
	"github.com/icco/scopesynth/internal/param"
	"github.com/icco/scopesynth/internal/scope"
	"github.com/icco/scopesynth/internal/synth"
)

// Format limits accepted by Prepare.
const (
	MinSampleRate = 8000
	MaxSampleRate = 192000
	MaxBlockSize  = 8192
	MaxChannels   = 2
)

// Engine is the synth core.
type Engine struct {
	opts   Options
	params *param.Store
	voices *synth.VoiceManager
	queue  *event.Queue
	scope  *scope.Queue

	sampleRate float64
	maxBlock   int
	channels   int
	prepared   atomic.Bool

	ctl     *synth.Controls
	mono    []float32
	pending []event.Note
	batch   []event.Note

	now     atomic.Int64
	active  atomic.Int32
	dropped atomic.Uint64
}

// New builds an engine. Call Prepare before rendering.
func New(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.Polyphony = max(o.Polyphony, 1)
	o.EventQueueSize = max(o.EventQueueSize, 2)
	o.HostEvents = max(o.HostEvents, 1)

	e := &Engine{
		opts:   o,
		params: param.NewStore(),
		voices: synth.NewVoiceManager(o.Polyphony),
		queue:  event.NewQueue(o.EventQueueSize),
		scope:  scope.NewQueue(o.ScopeSize),
	}
	e.voices.SetGain(o.Gain)
	return e
}

// Prepare sets the output format and allocates render buffers. It must not
// run concurrently with RenderNextBlock. Calling it again resets all voices.
func (e *Engine) Prepare(sampleRate float64, maxBlockSize, channels int) error {
	if sampleRate < MinSampleRate || sampleRate > MaxSampleRate {
		return fmt.Errorf("%v Hz: %w", sampleRate, ErrUnsupportedSampleRate)
	}
	if maxBlockSize < 1 || maxBlockSize > MaxBlockSize {
		return fmt.Errorf("%d samples: %w", maxBlockSize, ErrUnsupportedBlockSize)
	}
	if channels < 1 || channels > MaxChannels {
		return fmt.Errorf("%d channels: %w", channels, ErrUnsupportedChannels)
	}

	e.prepared.Store(false)
	e.sampleRate = sampleRate
	e.maxBlock = maxBlockSize
	e.channels = channels

	e.params.Reset(sampleRate, e.opts.Ramp)
	e.voices.Reset()
	e.voices.SetSampleRate(sampleRate)

	e.ctl = synth.NewControls(maxBlockSize)
	e.mono = make([]float32, maxBlockSize)
	e.pending = make([]event.Note, 0, e.queue.Cap())
	e.batch = make([]event.Note, 0, 2*e.queue.Cap()+e.opts.HostEvents)

	e.now.Store(0)
	e.active.Store(0)
	e.prepared.Store(true)
	return nil
}

// SampleRate returns the prepared sample rate.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// MaxBlockSize returns the prepared block size.
func (e *Engine) MaxBlockSize() int { return e.maxBlock }

// Channels returns the prepared channel count.
func (e *Engine) Channels() int { return e.channels }

// Parameters describes every automatable control.
func (e *Engine) Parameters() []param.Info { return param.Layout() }

// SetParameter publishes a new target for key. Values outside the domain are
// clamped; only an unknown key is an error.
func (e *Engine) SetParameter(key string, value float64) error {
	return e.params.SetKey(key, value)
}

// SetParameterID is SetParameter addressed by ID.
func (e *Engine) SetParameterID(id param.ID, value float64) {
	e.params.Set(id, value)
}

// ParameterValues returns the published target of every parameter.
func (e *Engine) ParameterValues() [param.NumParams]float64 {
	return e.params.Targets()
}

// Submit queues a note event for the audio goroutine. Time is an absolute
// sample position (see Now) or event.Immediate. Only one goroutine may
// submit. It returns false, and the event is dropped, when the queue is full.
func (e *Engine) Submit(n event.Note) bool {
	return e.queue.Push(n)
}

// Now returns the sample position of the next block to render.
func (e *Engine) Now() int64 { return e.now.Load() }

// ActiveVoices returns the number of voices sounding after the last block.
func (e *Engine) ActiveVoices() int { return int(e.active.Load()) }

// Dropped counts events lost to a full queue or a full block batch.
func (e *Engine) Dropped() uint64 { return e.queue.Dropped() + e.dropped.Load() }

// ReadVisualizationWindow copies the most recent rendered mono samples into
// dst and returns how many were available. It never blocks the audio
// goroutine.
func (e *Engine) ReadVisualizationWindow(dst []float32) int {
	return e.scope.Pop(dst)
}

// Snapshot reports engine state for diagnostics.
type Snapshot struct {
	SampleRate   float64
	BlockSize    int
	Channels     int
	Position     int64
	ActiveVoices int
	Polyphony    int
	Queued       int
	Dropped      uint64
	Params       [param.NumParams]float64
}

// Snapshot collects diagnostics without touching audio-goroutine state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		SampleRate:   e.sampleRate,
		BlockSize:    e.maxBlock,
		Channels:     e.channels,
		Position:     e.Now(),
		ActiveVoices: e.ActiveVoices(),
		Polyphony:    e.opts.Polyphony,
		Queued:       e.queue.Len(),
		Dropped:      e.Dropped(),
		Params:       e.params.Targets(),
	}
}
