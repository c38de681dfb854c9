package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Player plays a Stream on the default audio device.
type Player struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	paused bool
}

// NewPlayer opens the audio device at sampleRate and starts pulling from
// stream. oto allows one context per process.
func NewPlayer(stream *Stream, sampleRate int, channels int) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	p := &Player{ctx: ctx}
	p.player = ctx.NewPlayer(stream)
	p.player.Play()
	return p, nil
}

// SetPaused suspends or resumes device output.
func (p *Player) SetPaused(paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if paused == p.paused {
		return nil
	}
	p.paused = paused
	if paused {
		return p.ctx.Suspend()
	}
	return p.ctx.Resume()
}

// Err reports an asynchronous device error, if any.
func (p *Player) Err() error {
	return p.ctx.Err()
}

// Close stops playback.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player != nil {
		p.player.Pause()
		p.player = nil
	}
	return nil
}
