// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audmix/utils"
)

// Writer encodes interleaved float32 samples as integer PCM WAV.
type Writer struct {
	enc      *gowav.Encoder
	buf      goaudio.IntBuffer
	bitDepth int
	channels int
	frames   int64
}

// NewWriter writes a WAV stream to w. bitDepth must be 8, 16, 24 or 32.
// The header is finalized by Close, which does not close w.
func NewWriter(w io.WriteSeeker, sampleRate, channels, bitDepth int) (*Writer, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels", ErrUnsupportedFormat, sampleRate, channels)
	}

	return &Writer{
		enc:      gowav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM),
		bitDepth: bitDepth,
		channels: channels,
		buf: goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Write encodes whole frames from samples. Values are clamped to [-1, 1].
func (w *Writer) Write(samples []float32) error {
	if len(samples)%w.channels != 0 {
		return fmt.Errorf("wav: %d samples is not a whole number of %d-channel frames", len(samples), w.channels)
	}
	if len(samples) == 0 {
		return nil
	}

	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]

	for i, v := range samples {
		pcm := utils.Float32ToInt(v, w.bitDepth)
		if w.bitDepth == 8 {
			pcm += 128
		}
		w.buf.Data[i] = pcm
	}

	if err := w.enc.Write(&w.buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	w.frames += int64(len(samples) / w.channels)

	return nil
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int64 { return w.frames }

// Close writes the final chunk sizes.
func (w *Writer) Close() error {
	if w.frames == 0 {
		// emit the header and an empty data chunk
		w.buf.Data = w.buf.Data[:0]
		if err := w.enc.Write(&w.buf); err != nil {
			return fmt.Errorf("wav: %w", err)
		}
	}
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}
