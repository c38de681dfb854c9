package engine

import (
	"github.com/icco/scopesynth/internal/event"
	"github.com/icco/scopesynth/internal/param"
	"github.com/icco/scopesynth/internal/synth"
)

// RenderNextBlock renders length samples into out[ch][start:start+length]
// for every channel in out, overwriting what was there.
//
// events are this block's host events; their Time is the sample offset from
// start and is clamped into the block. Events queued with Submit are merged
// in at their absolute time. Blocks longer than the prepared size are
// rendered in pieces. Before Prepare the output is silence.
func (e *Engine) RenderNextBlock(out [][]float32, events []event.Note, start, length int) {
	if len(out) == 0 || length <= 0 || start < 0 {
		return
	}
	for _, ch := range out {
		length = min(length, len(ch)-start)
	}
	if length <= 0 {
		return
	}
	if !e.prepared.Load() {
		for _, ch := range out {
			clear(ch[start : start+length])
		}
		return
	}

	for off := 0; off < length; off += e.maxBlock {
		n := min(e.maxBlock, length-off)
		e.renderChunk(out, events, start+off, off, n, length)
	}
}

func (e *Engine) renderChunk(out [][]float32, host []event.Note, at, off, n, length int) {
	blockStart := e.now.Load()

	e.params.Refresh()
	e.fillControls(n)
	e.collect(host, blockStart, off, n, length)

	mono := e.mono[:n]
	clear(mono)
	cursor := 0
	for _, ev := range e.batch {
		pos := int(ev.Time)
		if pos > cursor {
			e.voices.RenderBlock(mono, cursor, pos, e.ctl)
			cursor = pos
		}
		e.dispatch(ev, blockStart+int64(pos))
	}
	e.voices.RenderBlock(mono, cursor, n, e.ctl)

	for _, ch := range out {
		copy(ch[at:at+n], mono)
	}
	e.scope.Push(mono)

	e.active.Store(int32(e.voices.Active()))
	e.now.Store(blockStart + int64(n))
}

// fillControls advances every smoother once per sample.
func (e *Engine) fillControls(n int) {
	ctl := e.ctl
	for i := 0; i < n; i++ {
		ctl.Shape[i] = synth.Shape(e.params.Next(param.OscType))
		ctl.Cutoff[i] = e.params.Next(param.FilterCutoff)
		ctl.Resonance[i] = e.params.Next(param.FilterResonance)
		ctl.Attack[i] = e.params.Next(param.AmpAttack)
		ctl.Decay[i] = e.params.Next(param.AmpDecay)
		ctl.Sustain[i] = e.params.Next(param.AmpSustain)
		ctl.Release[i] = e.params.Next(param.AmpRelease)
	}
}

// collect gathers this chunk's events into e.batch, sorted by offset within
// the chunk. Queued events due after the chunk wait in e.pending.
func (e *Engine) collect(host []event.Note, blockStart int64, off, n, length int) {
	e.batch = e.batch[:0]
	end := blockStart + int64(n)

	kept := e.pending[:0]
	for _, ev := range e.pending {
		if ev.Time < end {
			e.add(ev, ev.Time-blockStart)
		} else {
			kept = append(kept, ev)
		}
	}
	e.pending = kept

	for {
		ev, ok := e.queue.Pop()
		if !ok {
			break
		}
		switch {
		case ev.Time == event.Immediate || ev.Time < end:
			e.add(ev, ev.Time-blockStart)
		case len(e.pending) < cap(e.pending):
			e.pending = append(e.pending, ev)
		default:
			e.dropped.Add(1)
		}
	}

	for _, ev := range host {
		t := min(max(int(ev.Time), 0), length-1)
		if t >= off && t < off+n {
			e.add(ev, int64(t-off))
		}
	}
}

// add inserts ev at offset pos (clamped to the chunk) keeping e.batch
// ordered; events with equal offsets keep arrival order.
func (e *Engine) add(ev event.Note, pos int64) {
	if len(e.batch) == cap(e.batch) {
		e.dropped.Add(1)
		return
	}
	ev.Time = max(pos, 0)

	e.batch = append(e.batch, ev)
	i := len(e.batch) - 1
	for i > 0 && e.batch[i-1].Time > ev.Time {
		e.batch[i] = e.batch[i-1]
		i--
	}
	e.batch[i] = ev
}

func (e *Engine) dispatch(ev event.Note, at int64) {
	switch ev.Kind {
	case event.NoteOn:
		e.voices.NoteOn(ev.Key, ev.Velocity, at)
	case event.NoteOff:
		e.voices.NoteOff(ev.Key, at)
	case event.AllNotesOff:
		e.voices.AllNotesOff(at)
	}
}
