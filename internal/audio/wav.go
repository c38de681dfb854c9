package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const pcmFormat = 1

// WAVWriter writes rendered blocks to a 16-bit PCM WAV file.
type WAVWriter struct {
	enc      *wav.Encoder
	buf      *goaudio.IntBuffer
	channels int
}

// NewWAVWriter starts a WAV file on w. The header is finalized by Close,
// which is why w must be seekable.
func NewWAVWriter(w io.WriteSeeker, sampleRate, channels int) *WAVWriter {
	return &WAVWriter{
		enc: wav.NewEncoder(w, sampleRate, 16, channels, pcmFormat),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
		channels: channels,
	}
}

// WriteBlock interleaves frames from the channel buffers and appends them.
func (w *WAVWriter) WriteBlock(chans [][]float32, frames int) error {
	data := w.buf.Data[:0]
	for i := 0; i < frames; i++ {
		for ch := 0; ch < w.channels; ch++ {
			src := chans[min(ch, len(chans)-1)]
			data = append(data, int(Float32ToInt16(src[i])))
		}
	}
	w.buf.Data = data
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("failed to write wav data: %w", err)
	}
	return nil
}

// Close writes the final header sizes.
func (w *WAVWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav: %w", err)
	}
	return nil
}
