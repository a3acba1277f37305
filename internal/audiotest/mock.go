// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides deterministic sources for tests. It does not
// import the audio package so any package can use it.
package audiotest

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"
)

// ErrSeek is returned by MockSource.SeekFrame for positions outside the stream.
var ErrSeek = errors.New("audiotest: seek out of range")

// MockSource generates a waveform. It implements audio.Source and
// audio.Seeker.
type MockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // frames to generate
	generated    int // frames generated so far
	waveform     func(sample int, channel int) float32

	// FailAt makes ReadSamples return Err once this many frames were produced.
	FailAt int
	Err    error

	closed atomic.Bool
	seeks  atomic.Int64
}

// NewMockSource creates a source of totalSamples frames.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
		FailAt:       -1,
	}
}

func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return 0.0
	})
}

func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return value
	})
}

// NewFailingSource produces value for failAt frames and then returns err.
func NewFailingSource(sampleRate, channels, failAt int, value float32, err error) *MockSource {
	m := NewConstantSource(sampleRate, channels, math.MaxInt32, value)
	m.FailAt = failAt
	m.Err = err
	return m
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed.Load() }

// Seeks returns how many times SeekFrame succeeded.
func (m *MockSource) Seeks() int64 { return m.seeks.Load() }

// Reset rewinds the generator.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) SeekFrame(frame int64) error {
	if frame < 0 || frame > int64(m.totalSamples) {
		return fmt.Errorf("%w: %d", ErrSeek, frame)
	}
	m.generated = int(frame)
	m.seeks.Add(1)
	return nil
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.FailAt >= 0 && m.generated >= m.FailAt {
		return 0, m.Err
	}
	if m.generated >= m.totalSamples {
		return 0, io.EOF
	}

	framesToWrite := min(len(dst)/m.channels, m.totalSamples-m.generated)
	if m.FailAt >= 0 {
		framesToWrite = min(framesToWrite, m.FailAt-m.generated)
	}

	for frame := range framesToWrite {
		sampleIndex := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(sampleIndex, ch)
		}
	}

	m.generated += framesToWrite
	samplesWritten := framesToWrite * m.channels

	if m.generated >= m.totalSamples {
		return samplesWritten, io.EOF
	}

	return samplesWritten, nil
}

// StallSource never has data: every read returns (0, nil).
type StallSource struct {
	Rate int
	Ch   int

	reads  atomic.Int64
	closed atomic.Bool
}

func (s *StallSource) SampleRate() int { return s.Rate }
func (s *StallSource) Channels() int   { return s.Ch }
func (s *StallSource) BufSize() int    { return 4096 }

func (s *StallSource) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *StallSource) Closed() bool { return s.closed.Load() }

// Reads returns how many times ReadSamples was called.
func (s *StallSource) Reads() int64 { return s.reads.Load() }

func (s *StallSource) ReadSamples([]float32) (int, error) {
	s.reads.Add(1)
	return 0, nil
}

// Stream hides any Seeker implemented by the wrapped source.
type Stream struct {
	Src interface {
		SampleRate() int
		Channels() int
		ReadSamples(dst []float32) (int, error)
		BufSize() int
		Close() error
	}
}

func (s Stream) SampleRate() int                        { return s.Src.SampleRate() }
func (s Stream) Channels() int                          { return s.Src.Channels() }
func (s Stream) ReadSamples(dst []float32) (int, error) { return s.Src.ReadSamples(dst) }
func (s Stream) BufSize() int                           { return s.Src.BufSize() }
func (s Stream) Close() error                           { return s.Src.Close() }
