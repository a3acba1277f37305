// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/ik5/audmix/internal/log"
)

// Oto plays through the system audio device. oto allows a single context per
// process, so only one Oto should be started at a time.
type Oto struct {
	sampleRate int
	channels   int
	bufferSize time.Duration
	log        *slog.Logger

	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	closed bool
}

// OtoOption configures an Oto backend.
type OtoOption func(*Oto)

// WithBufferSize sets the device buffer length. Zero lets oto choose.
func WithBufferSize(d time.Duration) OtoOption {
	return func(o *Oto) { o.bufferSize = d }
}

// WithLogger sets the logger used for device events.
func WithLogger(l *slog.Logger) OtoOption {
	return func(o *Oto) {
		if l != nil {
			o.log = l
		}
	}
}

// NewOto returns a backend producing float32 samples at sampleRate with the
// given channel count. The device is opened by Start.
func NewOto(sampleRate, channels int, opts ...OtoOption) (*Oto, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels", ErrInvalidFormat, sampleRate, channels)
	}

	o := &Oto{
		sampleRate: sampleRate,
		channels:   channels,
		log:        log.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Start opens the device and starts playing r. It returns once the device
// is ready.
func (o *Oto) Start(r Renderer) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case o.closed:
		return ErrClosed
	case o.player != nil:
		return ErrAlreadyStarted
	}

	if o.ctx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   o.sampleRate,
			ChannelCount: o.channels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   o.bufferSize,
		})
		if err != nil {
			return fmt.Errorf("open audio device: %w", err)
		}
		<-ready
		o.ctx = ctx
	}

	o.player = o.ctx.NewPlayer(newPCMReader(r, o.channels, 1024))
	o.player.Play()

	o.log.Info("audio device started",
		"sample_rate", o.sampleRate,
		"channels", o.channels,
		"buffer", o.bufferSize)

	return nil
}

// Err reports an error raised by the device after Start.
func (o *Oto) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctx == nil {
		return nil
	}
	return o.ctx.Err()
}

// Close stops the player and suspends the device.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	var err error
	if o.player != nil {
		o.player.Pause()
		err = o.player.Close()
		o.player = nil
	}
	if o.ctx != nil {
		if serr := o.ctx.Suspend(); serr != nil && err == nil {
			err = serr
		}
	}

	o.log.Info("audio device closed", "err", err)
	return err
}

// pcmReader turns Render calls into the little endian float32 byte stream
// oto pulls from its own goroutine.
type pcmReader struct {
	r        Renderer
	channels int
	buf      []float32
}

func newPCMReader(r Renderer, channels, frames int) *pcmReader {
	return &pcmReader{
		r:        r,
		channels: channels,
		buf:      make([]float32, frames*channels),
	}
}

// Read fills p with whole frames only.
func (p *pcmReader) Read(b []byte) (int, error) {
	frameBytes := 4 * p.channels
	frames := len(b) / frameBytes
	if frames == 0 {
		return 0, nil
	}

	// grow only; oto reads with a stable size after warm up
	if need := frames * p.channels; cap(p.buf) < need {
		p.buf = make([]float32, need)
	}
	samples := p.buf[:frames*p.channels]
	p.r.Render(samples)

	for i, v := range samples {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return frames * frameBytes, nil
}
