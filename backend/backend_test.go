// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ik5/audmix/formats/wav"
)

// rampRenderer writes a counter into every sample.
type rampRenderer struct {
	next  float32
	calls int
}

func (r *rampRenderer) Render(out []float32) {
	r.calls++
	for i := range out {
		out[i] = r.next
		r.next += 0.001
	}
}

type constRenderer float32

func (c constRenderer) Render(out []float32) {
	for i := range out {
		out[i] = float32(c)
	}
}

var (
	_ Backend = (*Oto)(nil)
	_ Backend = (*Offline)(nil)
)

func TestPCMReader_EncodesFloat32LE(t *testing.T) {
	t.Parallel()

	r := &rampRenderer{}
	pcm := newPCMReader(r, 2, 4)

	b := make([]byte, 4*2*3+5) // three frames plus a partial one
	n, err := pcm.Read(b)
	if err != nil {
		t.Fatal(err)
	}
	if n != 24 {
		t.Fatalf("Read() = %d bytes, want 24 (whole frames only)", n)
	}

	for i := range 6 {
		got := math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		want := float32(0)
		for range i {
			want += 0.001
		}
		if got != want {
			t.Errorf("sample %d = %v, want %v", i, got, want)
		}
	}
}

func TestPCMReader_ShortBuffer(t *testing.T) {
	t.Parallel()

	r := &rampRenderer{}
	pcm := newPCMReader(r, 2, 4)

	n, err := pcm.Read(make([]byte, 7))
	if n != 0 || err != nil {
		t.Errorf("Read() = %d, %v; want 0, nil", n, err)
	}
	if r.calls != 0 {
		t.Errorf("Render called %d times for less than a frame", r.calls)
	}
}

func TestPCMReader_GrowsThenReuses(t *testing.T) {
	pcm := newPCMReader(constRenderer(0.5), 1, 4)
	b := make([]byte, 4*256)

	if _, err := pcm.Read(b); err != nil {
		t.Fatal(err)
	}
	allocs := testing.AllocsPerRun(100, func() {
		_, _ = pcm.Read(b)
	})
	if allocs > 0 {
		t.Errorf("Read() allocated %v times after warm up, want 0", allocs)
	}
}

func TestNewOto_InvalidFormat(t *testing.T) {
	t.Parallel()

	if _, err := NewOto(0, 2); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("NewOto(0, 2) error = %v, want ErrInvalidFormat", err)
	}
	if _, err := NewOto(48000, 0); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("NewOto(48000, 0) error = %v, want ErrInvalidFormat", err)
	}
}

func TestOto_CloseBeforeStart(t *testing.T) {
	t.Parallel()

	o, err := NewOto(48000, 2, WithBufferSize(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := o.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := o.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
	if err := o.Start(constRenderer(0)); !errors.Is(err, ErrClosed) {
		t.Errorf("Start() after Close error = %v, want ErrClosed", err)
	}
}

func TestOffline_Lifecycle(t *testing.T) {
	t.Parallel()

	o, err := NewOffline(1000, 2, 8)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := o.Pump(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Pump() before Start error = %v, want ErrNotStarted", err)
	}

	r := &rampRenderer{}
	if err := o.Start(r); err != nil {
		t.Fatal(err)
	}
	if err := o.Start(r); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}

	out, err := o.Pump()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 16 || r.calls != 1 {
		t.Errorf("Pump() returned %d samples after %d renders, want 16 after 1", len(out), r.calls)
	}

	if err := o.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Pump(); !errors.Is(err, ErrClosed) {
		t.Errorf("Pump() after Close error = %v, want ErrClosed", err)
	}
}

func TestNewOffline_InvalidFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                         string
		sampleRate, channels, period int
	}{
		{"rate", 0, 2, 8},
		{"channels", 1000, 0, 8},
		{"period", 1000, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewOffline(tt.sampleRate, tt.channels, tt.period); !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("error = %v, want ErrInvalidFormat", err)
			}
		})
	}
}

func TestOffline_Bounce(t *testing.T) {
	t.Parallel()

	o, err := NewOffline(8000, 2, 256)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.Start(constRenderer(0.5)); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "bounce.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	frames, err := o.Bounce(f, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Bounce() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if frames != 800 {
		t.Errorf("Bounce() wrote %d frames, want 800", frames)
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	src, err := wav.Decoder{}.Decode(in)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 8000 || src.Channels() != 2 {
		t.Errorf("format = %d Hz %d ch, want 8000 Hz 2 ch", src.SampleRate(), src.Channels())
	}

	var total int
	buf := make([]float32, 512)
	for {
		n, err := src.ReadSamples(buf)
		for _, v := range buf[:n] {
			if math.Abs(float64(v-0.5)) > 1e-3 {
				t.Fatalf("sample = %v, want about 0.5", v)
			}
		}
		total += n
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
	}
	if total != 1600 {
		t.Errorf("decoded %d samples, want 1600", total)
	}
}

func TestOffline_BounceNotStarted(t *testing.T) {
	t.Parallel()

	o, _ := NewOffline(8000, 1, 64)
	if _, err := o.Bounce(nil, time.Second); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Bounce() error = %v, want ErrNotStarted", err)
	}
}

func TestDurationToFrames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    time.Duration
		rate int
		want int64
	}{
		{"zero", 0, 48000, 0},
		{"negative", -time.Second, 48000, 0},
		{"rounds down", 100*time.Millisecond + time.Microsecond, 8000, 800},
		{"mixed", 2*time.Second + 500*time.Millisecond, 44100, 110250},
		{"100 hours", 100 * time.Hour, 48000, 100 * 3600 * 48000},
		{"max duration", time.Duration(math.MaxInt64), 192000,
			int64(math.MaxInt64/int64(time.Second))*192000 +
				(math.MaxInt64%int64(time.Second))*192000/int64(time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := durationToFrames(tt.d, tt.rate)
			if got != tt.want {
				t.Errorf("durationToFrames(%v, %d) = %d, want %d", tt.d, tt.rate, got, tt.want)
			}
			if got < 0 {
				t.Errorf("durationToFrames(%v, %d) overflowed to %d", tt.d, tt.rate, got)
			}
		})
	}
}
