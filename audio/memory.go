// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Memory is a fully decoded source held in RAM. Reads copy from a shared
// sample slice and never allocate, so a Memory can be read directly from the
// real-time goroutine. Use Clone to play the same data several times at once.
type Memory struct {
	samples    []float32
	sampleRate int
	channels   int
	pos        int
}

// NewMemory wraps interleaved samples. The slice is not copied.
func NewMemory(sampleRate, channels int, samples []float32) *Memory {
	n := len(samples) - len(samples)%max(channels, 1)

	return &Memory{
		samples:    samples[:n],
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// ReadAll drains src into a Memory and closes it.
func ReadAll(src Source) (*Memory, error) {
	defer src.Close()

	bufSize := src.BufSize()
	if bufSize <= 0 {
		bufSize = 4096
	}
	channels := src.Channels()
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedConversion, channels)
	}
	bufSize -= bufSize % channels
	if bufSize == 0 {
		bufSize = channels
	}

	var samples []float32
	buf := make([]float32, bufSize)
	for {
		n, err := src.ReadSamples(buf)
		samples = append(samples, buf[:n]...)

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read source: %w", err)
		}
		if n == 0 {
			// sources handed to ReadAll are expected to block until data or EOF
			return nil, fmt.Errorf("read source: %w", io.ErrNoProgress)
		}
	}

	return NewMemory(src.SampleRate(), channels, samples), nil
}

func (m *Memory) SampleRate() int { return m.sampleRate }
func (m *Memory) Channels() int   { return m.channels }
func (m *Memory) BufSize() int    { return 4096 }
func (m *Memory) Close() error    { return nil }

// Frames returns the total length in frames.
func (m *Memory) Frames() int64 {
	return int64(len(m.samples) / m.channels)
}

// Duration returns the play time of the whole buffer.
func (m *Memory) Duration() time.Duration {
	if m.sampleRate <= 0 {
		return 0
	}
	return time.Duration(m.Frames()) * time.Second / time.Duration(m.sampleRate)
}

// Samples exposes the underlying interleaved data.
func (m *Memory) Samples() []float32 { return m.samples }

func (m *Memory) ReadSamples(dst []float32) (int, error) {
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if m.pos >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(dst, m.samples[m.pos:])
	m.pos += n

	return n, nil
}

func (m *Memory) SeekFrame(frame int64) error {
	if frame < 0 || frame > m.Frames() {
		return fmt.Errorf("%w: frame %d of %d", ErrSeekOutOfRange, frame, m.Frames())
	}
	m.pos = int(frame) * m.channels

	return nil
}

// Clone returns an independent reader over the same samples, positioned at
// the start.
func (m *Memory) Clone() *Memory {
	return &Memory{
		samples:    m.samples,
		sampleRate: m.sampleRate,
		channels:   m.channels,
	}
}
