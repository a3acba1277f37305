// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ik5/audmix/formats/wav"
)

// Offline renders on demand instead of following a device clock. It drives
// tests and bounces to files.
type Offline struct {
	sampleRate int
	channels   int
	period     int // frames per Render call

	mu     sync.Mutex
	r      Renderer
	buf    []float32
	closed bool
}

// NewOffline returns a backend rendering period frames per call.
func NewOffline(sampleRate, channels, period int) (*Offline, error) {
	if sampleRate <= 0 || channels <= 0 || period <= 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels, period %d",
			ErrInvalidFormat, sampleRate, channels, period)
	}

	return &Offline{
		sampleRate: sampleRate,
		channels:   channels,
		period:     period,
		buf:        make([]float32, period*channels),
	}, nil
}

func (o *Offline) Start(r Renderer) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case o.closed:
		return ErrClosed
	case o.r != nil:
		return ErrAlreadyStarted
	}
	o.r = r
	return nil
}

// Pump renders one period and returns it. The slice is reused by the next
// call.
func (o *Offline) Pump() ([]float32, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.ready(); err != nil {
		return nil, err
	}
	o.r.Render(o.buf)
	return o.buf, nil
}

// Bounce renders d of audio and writes it to w as 16-bit PCM WAV. It returns
// the number of frames written.
func (o *Offline) Bounce(w io.WriteSeeker, d time.Duration) (int64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.ready(); err != nil {
		return 0, err
	}

	out, err := wav.NewWriter(w, o.sampleRate, o.channels, 16)
	if err != nil {
		return 0, err
	}

	total := durationToFrames(d, o.sampleRate)
	for left := total; left > 0; {
		frames := int(min(left, int64(o.period)))
		chunk := o.buf[:frames*o.channels]
		o.r.Render(chunk)
		if err := out.Write(chunk); err != nil {
			return out.Frames(), fmt.Errorf("bounce: %w", err)
		}
		left -= int64(frames)
	}

	if err := out.Close(); err != nil {
		return out.Frames(), fmt.Errorf("bounce: %w", err)
	}
	return out.Frames(), nil
}

func (o *Offline) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.closed = true
	o.r = nil
	return nil
}

// durationToFrames rounds down; whole seconds and the remainder are scaled
// separately so long durations do not overflow.
func durationToFrames(d time.Duration, sampleRate int) int64 {
	if d <= 0 {
		return 0
	}
	rate := int64(sampleRate)
	return int64(d/time.Second)*rate + int64(d%time.Second)*rate/int64(time.Second)
}

// ready requires o.mu.
func (o *Offline) ready() error {
	switch {
	case o.closed:
		return ErrClosed
	case o.r == nil:
		return ErrNotStarted
	}
	return nil
}
