// Package audio moves rendered engine output to the outside world: a PCM
// io.Reader for the audio device and WAV files for offline renders.
package audio

import (
	"io"

	"github.com/icco/scopesynth/internal/event"
)

const bytesPerSample = 2 // 16-bit

// Renderer is the part of the engine a Stream pulls from.
type Renderer interface {
	RenderNextBlock(out [][]float32, events []event.Note, start, length int)
	MaxBlockSize() int
	Channels() int
}

// Stream renders on demand and encodes interleaved signed 16-bit
// little-endian PCM.
type Stream struct {
	r    Renderer
	bufs [][]float32
}

// NewStream allocates block buffers for r, which must already be prepared.
func NewStream(r Renderer) *Stream {
	bufs := make([][]float32, r.Channels())
	for i := range bufs {
		bufs[i] = make([]float32, r.MaxBlockSize())
	}
	return &Stream{r: r, bufs: bufs}
}

// FrameSize is the number of bytes per interleaved frame.
func (s *Stream) FrameSize() int { return len(s.bufs) * bytesPerSample }

// Read fills p with whole frames. It never returns an error unless p is
// smaller than one frame.
func (s *Stream) Read(p []byte) (int, error) {
	frames := len(p) / s.FrameSize()
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}

	pos := 0
	for done := 0; done < frames; {
		n := min(len(s.bufs[0]), frames-done)
		s.r.RenderNextBlock(s.bufs, nil, 0, n)
		for i := 0; i < n; i++ {
			for _, ch := range s.bufs {
				v := Float32ToInt16(ch[i])
				p[pos] = byte(v)
				p[pos+1] = byte(v >> 8)
				pos += bytesPerSample
			}
		}
		done += n
	}
	return pos, nil
}

// Float32ToInt16 clamps x to [-1, 1] and scales it to 16 bits.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return int16(x * 32767.0)
}
