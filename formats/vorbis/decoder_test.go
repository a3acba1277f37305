// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audmix/audio"
)

// mockOggVorbisReader simulates the oggvorbis.Reader for testing
type mockOggVorbisReader struct {
	sampleRate  int
	channels    int
	samples     []float32
	offset      int // in values
	packet      int // values per Read, 0 for as many as fit
	eofWithData bool
	err         error
}

func (m *mockOggVorbisReader) SampleRate() int { return m.sampleRate }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }
func (m *mockOggVorbisReader) Length() int64   { return int64(len(m.samples) / m.channels) }

func (m *mockOggVorbisReader) SetPosition(pos int64) error {
	m.offset = int(pos) * m.channels
	return nil
}

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	size := len(buf) - len(buf)%m.channels
	if m.packet > 0 {
		size = min(size, m.packet)
	}
	n := copy(buf[:size], m.samples[m.offset:])
	m.offset += n

	if m.eofWithData && m.offset >= len(m.samples) {
		return n, io.EOF
	}
	return n, nil
}

func newTestSource(m *mockOggVorbisReader) *source {
	return &source{dec: m, sampleRate: m.sampleRate, channels: m.channels}
}

func ramp(n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(i%1000) / 1000
	}
	return s
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("This is not Ogg Vorbis data")},
		{"empty", nil},
		{"bare capture pattern", []byte("OggS")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrNotVorbisFile) {
				t.Errorf("Decode() error = %v, want ErrNotVorbisFile", err)
			}
		})
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := newTestSource(&mockOggVorbisReader{sampleRate: 44100, channels: 2, samples: make([]float32, 100)})

	if src.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if src.BufSize() <= 0 {
		t.Errorf("BufSize() = %d, want positive value", src.BufSize())
	}
	if src.Frames() != 50 {
		t.Errorf("Frames() = %d, want 50", src.Frames())
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestSource_ReadSamples_MultipleChannels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		samples  int
	}{
		{"Mono", 1, 100},
		{"Stereo", 2, 100},
		{"5.1 Surround", 6, 120},
		{"7.1 Surround", 8, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			want := ramp(tt.samples)
			src := newTestSource(&mockOggVorbisReader{sampleRate: 48000, channels: tt.channels, samples: want})

			dst := make([]float32, tt.samples)
			n, err := src.ReadSamples(dst)
			if err != nil || n != tt.samples {
				t.Fatalf("ReadSamples() = %d, %v; want %d, nil", n, err, tt.samples)
			}
			for i := range n {
				if dst[i] != want[i] {
					t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want[i])
				}
			}

			if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
				t.Errorf("ReadSamples() at end = %d, %v; want 0, io.EOF", n, err)
			}
		})
	}
}

// Read reports values, not frames; a stereo packet of 6 values is 3 frames.
func TestSource_ReadSamples_CountsValues(t *testing.T) {
	t.Parallel()

	src := newTestSource(&mockOggVorbisReader{sampleRate: 44100, channels: 2, samples: ramp(12), packet: 6})

	dst := make([]float32, 12)
	n, err := src.ReadSamples(dst)
	if err != nil || n != 6 {
		t.Fatalf("ReadSamples() = %d, %v; want 6, nil", n, err)
	}
	n, err = src.ReadSamples(dst)
	if err != nil || n != 6 {
		t.Fatalf("second ReadSamples() = %d, %v; want 6, nil", n, err)
	}
	if dst[5] != float32(11)/1000 {
		t.Errorf("dst[5] = %v, want 0.011", dst[5])
	}
}

func TestSource_ReadSamples_EOFWithData(t *testing.T) {
	t.Parallel()

	src := newTestSource(&mockOggVorbisReader{sampleRate: 8000, channels: 2, samples: ramp(4), eofWithData: true})

	dst := make([]float32, 8)
	n, err := src.ReadSamples(dst)
	if n != 4 || err != nil {
		t.Fatalf("ReadSamples() = %d, %v; want 4, nil", n, err)
	}

	n, err = src.ReadSamples(dst)
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after tail = %d, %v; want 0, io.EOF", n, err)
	}
}

func TestSource_ReadSamples_Errors(t *testing.T) {
	t.Parallel()

	src := newTestSource(&mockOggVorbisReader{sampleRate: 8000, channels: 2, samples: ramp(8), err: io.ErrUnexpectedEOF})

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want io.ErrUnexpectedEOF", err)
	}
	if _, err := src.ReadSamples(make([]float32, 3)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("ReadSamples(3) error = %v, want ErrInvalidDstSize", err)
	}
	if n, err := src.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v; want 0, nil", n, err)
	}
}

func TestSource_SeekFrame(t *testing.T) {
	t.Parallel()

	mock := &mockOggVorbisReader{sampleRate: 8000, channels: 2, samples: ramp(20)}
	src := newTestSource(mock)

	dst := make([]float32, 20)
	if _, err := src.ReadSamples(dst); err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}

	if err := src.SeekFrame(3); err != nil {
		t.Fatalf("SeekFrame(3) error = %v", err)
	}
	n, err := src.ReadSamples(dst[:2])
	if err != nil || n != 2 {
		t.Fatalf("ReadSamples() after seek = %d, %v", n, err)
	}
	if dst[0] != 0.006 || dst[1] != 0.007 {
		t.Errorf("frame 3 = %v, want [0.006 0.007]", dst[:2])
	}

	for _, frame := range []int64{-1, 11} {
		if err := src.SeekFrame(frame); !errors.Is(err, audio.ErrSeekOutOfRange) {
			t.Errorf("SeekFrame(%d) error = %v, want ErrSeekOutOfRange", frame, err)
		}
	}
}

func TestSource_VariousSampleRates(t *testing.T) {
	t.Parallel()

	for _, rate := range []int{8000, 16000, 22050, 44100, 48000, 96000} {
		src := newTestSource(&mockOggVorbisReader{sampleRate: rate, channels: 2, samples: make([]float32, 100)})
		if src.SampleRate() != rate {
			t.Errorf("SampleRate() = %d, want %d", src.SampleRate(), rate)
		}
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	mock := &mockOggVorbisReader{sampleRate: 44100, channels: 2, samples: ramp(44100 * 10)}
	src := newTestSource(mock)
	dst := make([]float32, 4096)

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		mock.offset = 0
		_, _ = src.ReadSamples(dst)
	}
}
