// Package render drives the engine offline, from a note list or a Standard
// MIDI File to a WAV file.
package render

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/icco/scopesynth/internal/audio"
	"github.com/icco/scopesynth/internal/event"
	"github.com/icco/scopesynth/internal/midiin"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrNoMetricTicks is returned for SMF files timed in SMPTE frames.
var ErrNoMetricTicks = errors.New("only metric tick time format is supported")

// Engine is the part of the engine an offline render needs.
type Engine interface {
	audio.Renderer
	SampleRate() float64
}

// Sink receives rendered blocks.
type Sink interface {
	WriteBlock(chans [][]float32, frames int) error
}

// Score is a list of note events with absolute sample times, sorted.
type Score []event.Note

// Length returns the time of the last event.
func (s Score) Length() int64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Time
}

// Run renders score through its last event plus tail more samples into sink,
// one engine block at a time. It returns the number of frames written.
func Run(e Engine, score Score, tail int64, sink Sink) (int64, error) {
	block := e.MaxBlockSize()
	bufs := make([][]float32, e.Channels())
	for i := range bufs {
		bufs[i] = make([]float32, block)
	}

	total := max(tail, 0)
	if len(score) > 0 {
		// the last event lands on the first sample after the score
		total += score.Length() + 1
	}
	events := make([]event.Note, 0, 64)
	next := 0
	for pos := int64(0); pos < total; pos += int64(block) {
		n := int(min(int64(block), total-pos))
		events = events[:0]
		for next < len(score) && score[next].Time < pos+int64(n) {
			ev := score[next]
			ev.Time -= pos
			events = append(events, ev)
			next++
		}
		e.RenderNextBlock(bufs, events, 0, n)
		if err := sink.WriteBlock(bufs, n); err != nil {
			return pos, err
		}
	}
	return total, nil
}

// Demo returns a short phrase: a rising arpeggio and a held chord.
func Demo(sampleRate float64) Score {
	at := func(beat float64) int64 { return int64(beat * 0.5 * sampleRate) }
	var s Score
	for i, key := range []uint8{48, 55, 60, 64, 67, 72} {
		s = append(s, event.On(key, 100, at(float64(i)*0.5)))
		s = append(s, event.Off(key, at(float64(i)*0.5+0.45)))
	}
	for _, key := range []uint8{53, 57, 60, 65} {
		s = append(s, event.On(key, 90, at(3)))
		s = append(s, event.Off(key, at(6)))
	}
	sortScore(s)
	return s
}

type timedMessage struct {
	tick  int64
	track int
	msg   smf.Message
}

// LoadSMF reads every track of an SMF file and converts its note events to
// sample times at sampleRate, following the file's tempo changes.
func LoadSMF(path string, sampleRate float64) (Score, error) {
	rd, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return fromSMF(rd, sampleRate)
}

func fromSMF(rd *smf.SMF, sampleRate float64) (Score, error) {
	ticks, ok := rd.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, ErrNoMetricTicks
	}
	resolution := float64(uint16(ticks))

	var all []timedMessage
	for i, track := range rd.Tracks {
		var tick int64
		for _, ev := range track {
			tick += int64(ev.Delta)
			all = append(all, timedMessage{tick: tick, track: i, msg: ev.Message})
		}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].tick < all[b].tick })

	var score Score
	bpm := 120.0
	seconds := 0.0
	lastTick := int64(0)
	for _, tm := range all {
		seconds += float64(tm.tick-lastTick) * 60 / (bpm * resolution)
		lastTick = tm.tick

		var tempo float64
		if tm.msg.GetMetaTempo(&tempo) && tempo > 0 {
			bpm = tempo
			continue
		}
		n, ok := midiin.Translate(midi.Message(tm.msg), midiin.Omni)
		if !ok {
			continue
		}
		n.Time = int64(math.Round(seconds * sampleRate))
		score = append(score, n)
	}
	return score, nil
}

func sortScore(s Score) {
	sort.SliceStable(s, func(a, b int) bool { return s[a].Time < s[b].Time })
}
