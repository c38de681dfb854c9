package render

import (
	"path/filepath"
	"testing"

	"github.com/icco/scopesynth/internal/engine"
	"github.com/icco/scopesynth/internal/event"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type captureSink struct {
	frames int
	peak   float32
	chans  int
}

func (c *captureSink) WriteBlock(chans [][]float32, frames int) error {
	c.frames += frames
	c.chans = len(chans)
	for _, ch := range chans {
		for _, v := range ch[:frames] {
			c.peak = max(c.peak, v, -v)
		}
	}
	return nil
}

func TestRunDemo(t *testing.T) {
	e := engine.New()
	if err := e.Prepare(22050, 256, 2); err != nil {
		t.Fatal(err)
	}
	score := Demo(e.SampleRate())
	if len(score) != 20 {
		t.Fatalf("Demo() has %d events, want 20", len(score))
	}

	sink := &captureSink{}
	n, err := Run(e, score, 11025, sink)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if want := score.Length() + 1 + 11025; n != want || int64(sink.frames) != want {
		t.Errorf("Run() wrote %d frames (sink %d), want %d", n, sink.frames, want)
	}
	if sink.peak == 0 {
		t.Error("render is silent")
	}
	if sink.chans != 2 {
		t.Errorf("sink saw %d channels, want 2", sink.chans)
	}
}

func TestRunPlaysLastEventWithoutTail(t *testing.T) {
	e := engine.New()
	if err := e.Prepare(8000, 64, 1); err != nil {
		t.Fatal(err)
	}
	score := Score{
		event.On(60, 100, 0),
		event.On(64, 100, 128),
	}

	sink := &captureSink{}
	n, err := Run(e, score, 0, sink)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if n != 129 {
		t.Errorf("Run() wrote %d frames, want 129", n)
	}
	if got := e.ActiveVoices(); got != 2 {
		t.Errorf("ActiveVoices() = %d, want 2: last event was not rendered", got)
	}
}

func TestLoadSMFTempoMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tempo.mid")

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var tempo smf.Track
	tempo.Add(0, smf.MetaTempo(120))
	tempo.Add(960, smf.MetaTempo(60))
	tempo.Close(0)
	if err := s.Add(tempo); err != nil {
		t.Fatal(err)
	}

	var notes smf.Track
	notes.Add(0, midi.NoteOn(0, 60, 100))
	notes.Add(480, midi.NoteOff(0, 60))
	notes.Add(960, midi.NoteOn(1, 62, 80))
	notes.Add(480, midi.NoteOn(1, 62, 0))
	notes.Close(0)
	if err := s.Add(notes); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFile(path); err != nil {
		t.Fatal(err)
	}

	score, err := LoadSMF(path, 1000)
	if err != nil {
		t.Fatalf("LoadSMF() error = %v, want nil", err)
	}
	want := Score{
		event.On(60, 100, 0),
		event.Off(60, 500),
		// tick 1440: 960 ticks at 120 bpm (1s) then 480 at 60 bpm (1s)
		event.On(62, 80, 2000),
		event.Off(62, 3000),
	}
	if len(score) != len(want) {
		t.Fatalf("LoadSMF() = %v, want %v", score, want)
	}
	for i := range want {
		if score[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, score[i], want[i])
		}
	}
}

func TestLoadSMFMissing(t *testing.T) {
	if _, err := LoadSMF(filepath.Join(t.TempDir(), "nope.mid"), 48000); err == nil {
		t.Fatal("LoadSMF() of a missing file returned nil error")
	}
}
