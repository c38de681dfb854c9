package engine

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/icco/scopesynth/internal/event"
	"github.com/icco/scopesynth/internal/param"
)

const (
	rate  = 48000.0
	block = 512
)

func prepared(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e := New(opts...)
	if err := e.Prepare(rate, block, 2); err != nil {
		t.Fatalf("Prepare() error = %v, want nil", err)
	}
	return e
}

// renderMono renders n samples in host-sized blocks and returns channel 0.
func renderMono(e *Engine, n int, events map[int][]event.Note) []float32 {
	left := make([]float32, block)
	right := make([]float32, block)
	out := make([]float32, 0, n)
	for pos := 0; pos < n; pos += block {
		size := min(block, n-pos)
		e.RenderNextBlock([][]float32{left, right}, events[pos], 0, size)
		out = append(out, left[:size]...)
	}
	return out
}

func peak(s []float32) float64 {
	p := 0.0
	for _, v := range s {
		p = math.Max(p, math.Abs(float64(v)))
	}
	return p
}

func maxStep(s []float32) float64 {
	d := 0.0
	for i := 1; i < len(s); i++ {
		d = math.Max(d, math.Abs(float64(s[i]-s[i-1])))
	}
	return d
}

func seconds(s float64) int { return int(s * rate) }

func TestPrepareRejectsFormats(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		block    int
		channels int
		want     error
	}{
		{"low rate", 4000, 512, 2, ErrUnsupportedSampleRate},
		{"high rate", 384000, 512, 2, ErrUnsupportedSampleRate},
		{"zero block", 48000, 0, 2, ErrUnsupportedBlockSize},
		{"huge block", 48000, 1 << 20, 2, ErrUnsupportedBlockSize},
		{"surround", 48000, 512, 6, ErrUnsupportedChannels},
		{"no channels", 48000, 512, 0, ErrUnsupportedChannels},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Prepare(tt.rate, tt.block, tt.channels)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Prepare() error = %v, want %v", err, tt.want)
			}
		})
	}

	if err := New().Prepare(44100, 256, 1); err != nil {
		t.Fatalf("Prepare(mono) error = %v, want nil", err)
	}
}

func TestPrepareStartsSmoothersAtTargets(t *testing.T) {
	e := prepared(t)
	if err := e.SetParameter("filterCutoff", 5000); err != nil {
		t.Fatal(err)
	}
	if err := e.Prepare(rate, block, 2); err != nil {
		t.Fatal(err)
	}

	renderMono(e, block, nil)
	if got := e.params.Current(param.FilterCutoff); got != 5000 {
		t.Errorf("cutoff after first block = %v, want 5000", got)
	}
}

func TestRenderBeforePrepareIsSilent(t *testing.T) {
	e := New()
	buf := []float32{1, 1, 1, 1}
	e.RenderNextBlock([][]float32{buf}, []event.Note{event.On(60, 100, 0)}, 0, 4)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("buf[%d] = %v, want 0", i, v)
		}
	}
}

func TestNoteSustainsThenReleasesToSilence(t *testing.T) {
	e := prepared(t)

	hold := seconds(2)
	out := renderMono(e, hold, map[int][]event.Note{0: {event.On(60, 100, 0)}})

	early := peak(out[seconds(0.05):seconds(0.15)])
	late := peak(out[seconds(1.8):])
	if early == 0 {
		t.Fatal("no output while note held")
	}
	if math.Abs(early-late)/late > 0.02 {
		t.Errorf("sustain peak drifted from %v to %v", early, late)
	}
	if e.ActiveVoices() != 1 {
		t.Errorf("ActiveVoices() = %d, want 1", e.ActiveVoices())
	}
	sustainStep := maxStep(out[seconds(1):])

	tail := renderMono(e, seconds(0.6), map[int][]event.Note{0: {event.Off(60, 0)}})
	if d := math.Abs(float64(tail[0] - out[len(out)-1])); d > sustainStep*1.05 {
		t.Errorf("note-off jumped by %v (sustain max step %v)", d, sustainStep)
	}
	if s := maxStep(tail); s > sustainStep*1.05 {
		t.Errorf("release max step %v exceeds sustain max step %v", s, sustainStep)
	}
	if p := peak(tail[seconds(0.3):seconds(0.35)]); p >= late*0.5 {
		t.Errorf("peak 300ms into release = %v, want below %v", p, late*0.5)
	}
	if p := peak(tail[seconds(0.52):]); p != 0 {
		t.Errorf("output after release = %v, want silence", p)
	}
	if e.ActiveVoices() != 0 {
		t.Errorf("ActiveVoices() = %d after release, want 0", e.ActiveVoices())
	}
}

func TestCutoffJumpIsSmoothed(t *testing.T) {
	e := prepared(t)
	if err := e.SetParameter("osc1Type", param.ShapeSine); err != nil {
		t.Fatal(err)
	}

	renderMono(e, seconds(0.2), map[int][]event.Note{0: {event.On(60, 100, 0)}})

	if err := e.SetParameter("filterCutoff", 5000); err != nil {
		t.Fatal(err)
	}
	transition := renderMono(e, seconds(0.1), nil)
	steady := renderMono(e, seconds(0.2), nil)

	bound := maxStep(steady) * 1.1
	if got := maxStep(transition); got > bound {
		t.Errorf("max step during cutoff change = %v, want <= %v", got, bound)
	}
}

func TestHostEventIsSampleAccurate(t *testing.T) {
	e := prepared(t)
	buf := make([]float32, block)
	e.RenderNextBlock([][]float32{buf}, []event.Note{event.On(64, 127, 100)}, 0, block)

	for i := 0; i < 100; i++ {
		if buf[i] != 0 {
			t.Fatalf("buf[%d] = %v before onset", i, buf[i])
		}
	}
	if buf[100] == 0 {
		t.Fatal("no output at onset sample")
	}
}

func TestQueuedEventAtAbsoluteTime(t *testing.T) {
	e := prepared(t)
	if !e.Submit(event.On(60, 100, 1000)) {
		t.Fatal("Submit() = false")
	}

	out := renderMono(e, 2*block, nil)
	for i := 0; i < 1000; i++ {
		if out[i] != 0 {
			t.Fatalf("out[%d] = %v before scheduled onset", i, out[i])
		}
	}
	if out[1000] == 0 {
		t.Fatal("no output at scheduled onset")
	}
	if e.Now() != 2*block {
		t.Errorf("Now() = %d, want %d", e.Now(), 2*block)
	}
}

func TestImmediateEventStartsNextBlock(t *testing.T) {
	e := prepared(t)
	renderMono(e, block, nil)
	e.Submit(event.On(60, 100, event.Immediate))
	out := renderMono(e, block, nil)
	if out[0] == 0 {
		t.Fatal("immediate note did not sound at block start")
	}
}

func TestLongBlockIsChunked(t *testing.T) {
	e := New()
	if err := e.Prepare(rate, 256, 1); err != nil {
		t.Fatal(err)
	}
	buf := make([]float32, 1000)
	e.RenderNextBlock([][]float32{buf}, []event.Note{event.On(60, 100, 700)}, 0, 1000)
	if buf[699] != 0 || buf[700] == 0 {
		t.Fatalf("onset misplaced: buf[699]=%v buf[700]=%v", buf[699], buf[700])
	}
	if e.Now() != 1000 {
		t.Errorf("Now() = %d, want 1000", e.Now())
	}
}

func TestChannelsAreDuplicatedAndScoped(t *testing.T) {
	e := prepared(t)
	left := make([]float32, block)
	right := make([]float32, block)
	e.RenderNextBlock([][]float32{left, right}, []event.Note{event.On(69, 100, 0)}, 0, block)

	for i := range left {
		if left[i] != right[i] {
			t.Fatalf("channel mismatch at %d: %v vs %v", i, left[i], right[i])
		}
	}

	window := make([]float32, 128)
	n := e.ReadVisualizationWindow(window)
	if n != 128 {
		t.Fatalf("ReadVisualizationWindow() = %d, want 128", n)
	}
	for i := 0; i < n; i++ {
		if window[i] != left[block-128+i] {
			t.Fatalf("window[%d] = %v, want %v", i, window[i], left[block-128+i])
		}
	}
}

func TestPolyphonyThroughEngine(t *testing.T) {
	e := prepared(t, WithPolyphony(8))
	var notes []event.Note
	for i := 0; i < 20; i++ {
		notes = append(notes, event.On(uint8(40+i), 90, int64(i)))
	}
	renderMono(e, block, map[int][]event.Note{0: notes})
	if got := e.ActiveVoices(); got != 8 {
		t.Errorf("ActiveVoices() = %d, want 8", got)
	}
}

func TestAllNotesOff(t *testing.T) {
	e := prepared(t)
	renderMono(e, block, map[int][]event.Note{0: {event.On(60, 100, 0), event.On(64, 100, 0)}})
	e.Submit(event.AllOff(event.Immediate))
	renderMono(e, seconds(0.6), nil)
	if got := e.ActiveVoices(); got != 0 {
		t.Errorf("ActiveVoices() = %d, want 0", got)
	}
}

func TestSetParameterUnknownKey(t *testing.T) {
	e := New()
	if err := e.SetParameter("nope", 1); !errors.Is(err, param.ErrUnknownParameter) {
		t.Fatalf("SetParameter() error = %v, want ErrUnknownParameter", err)
	}
	if len(e.Parameters()) != int(param.NumParams) {
		t.Errorf("Parameters() has %d entries", len(e.Parameters()))
	}
}

func TestConcurrentControlAndVisualization(t *testing.T) {
	e := prepared(t)
	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		key := uint8(48)
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			_ = e.SetParameter("filterCutoff", float64(200+i%5000))
			if i%50 == 0 {
				e.Submit(event.On(key, 100, event.Immediate))
				e.Submit(event.Off(key-1, event.Immediate))
				key = 48 + uint8(i/50%24)
			}
		}
	}()
	go func() {
		defer wg.Done()
		window := make([]float32, 1024)
		for {
			select {
			case <-stop:
				return
			default:
			}
			e.ReadVisualizationWindow(window)
			_ = e.Snapshot()
		}
	}()

	out := renderMono(e, seconds(1), nil)
	close(stop)
	wg.Wait()

	for i, v := range out {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("out[%d] = %v", i, v)
		}
	}
}
