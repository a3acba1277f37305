// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/audmix/utils"
)

// Resampler streams from src to a target sample rate using cubic
// interpolation. Works on interleaved samples and preserves channel count.
// A one-pole low-pass filter runs on the input when downsampling.
type Resampler struct {
	src      Source
	srcRate  float64
	dstRate  float64
	ratio    float64 // source frames per output frame
	channels int

	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames   [4][]float32
	hasFrame [4]bool
	primed   bool

	// fractional position between frames[1] and frames[2]
	pos float64

	srcBuf []float32
	eof    bool

	filterState []float32
	useFilter   bool
	filterAlpha float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		srcRate:     float64(src.SampleRate()),
		dstRate:     float64(dstRate),
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, channels),
		useFilter:   ratio > 1.0,
		filterState: make([]float32, channels),
	}
	if r.useFilter {
		r.filterAlpha = 0.5
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// SeekFrame positions the stream at an output frame. The source is moved to
// the nearest preceding source frame and the interpolation state restarts.
func (r *Resampler) SeekFrame(frame int64) error {
	s, ok := r.src.(Seeker)
	if !ok {
		return ErrNotSeekable
	}

	srcPos := float64(frame) * r.ratio
	whole := math.Floor(srcPos)
	if err := s.SeekFrame(int64(whole)); err != nil {
		return fmt.Errorf("resampler seek: %w", err)
	}

	r.primed = false
	r.eof = false
	r.pos = srcPos - whole
	r.hasFrame = [4]bool{}
	clear(r.filterState)

	return nil
}

// readFrame reads one source frame into dst and filters it.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	n, err := r.src.ReadSamples(r.srcBuf)
	got := n >= r.channels
	if got {
		copy(dst, r.srcBuf)
		if r.useFilter {
			for c := range r.channels {
				dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
				r.filterState[c] = dst[c]
			}
		}
	}

	if errors.Is(err, io.EOF) {
		r.eof = true
		return got, nil
	}
	if err != nil {
		return got, fmt.Errorf("%w", err)
	}

	return got, nil
}

// prime fills the interpolation window; frames[0] duplicates the first frame.
func (r *Resampler) prime() error {
	for i := 1; i < 4 && !r.eof; i++ {
		// seed the filter with the first sample to avoid warm-up transients
		if i == 1 && r.useFilter {
			n, err := r.src.ReadSamples(r.srcBuf)
			if n >= r.channels {
				copy(r.filterState, r.srcBuf)
				copy(r.frames[1], r.srcBuf)
				r.hasFrame[1] = true
			}
			if errors.Is(err, io.EOF) {
				r.eof = true
			} else if err != nil {
				return fmt.Errorf("%w", err)
			}
			continue
		}

		got, err := r.readFrame(r.frames[i])
		if err != nil {
			return err
		}
		r.hasFrame[i] = got
	}

	if !r.hasFrame[1] {
		return io.EOF
	}

	copy(r.frames[0], r.frames[1])
	r.hasFrame[0] = true

	// duplicate the last valid frame into empty slots
	for i := 2; i < 4; i++ {
		if !r.hasFrame[i] && r.eof {
			copy(r.frames[i], r.frames[i-1])
		}
	}
	r.primed = true

	return nil
}

// advance shifts the window by one source frame.
func (r *Resampler) advance() error {
	if !r.hasFrame[2] {
		return io.EOF
	}

	copy(r.frames[0], r.frames[1])
	copy(r.frames[1], r.frames[2])
	copy(r.frames[2], r.frames[3])
	r.hasFrame[0] = r.hasFrame[1]
	r.hasFrame[1] = r.hasFrame[2]
	r.hasFrame[2] = r.hasFrame[3]
	r.hasFrame[3] = false

	if r.eof {
		copy(r.frames[3], r.frames[2])
		return nil
	}

	got, err := r.readFrame(r.frames[3])
	if err != nil {
		return err
	}
	r.hasFrame[3] = got
	if !got {
		copy(r.frames[3], r.frames[2])
	}

	return nil
}

// ReadSamples produces dst samples at the target rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			if err := r.advance(); err != nil {
				return r.finish(written, err)
			}
			r.pos -= 1.0
		}

		// the final source frame is emitted once, then the stream ends
		if !r.hasFrame[2] {
			if r.pos > 0 {
				return r.finish(written, io.EOF)
			}
		}

		alpha := float32(r.pos)
		utils.CubicFrame(dst[written*r.channels:(written+1)*r.channels],
			r.frames[0], r.frames[1], r.frames[2], r.frames[3], alpha)

		written++
		r.pos += r.ratio
		if !r.hasFrame[2] {
			r.pos = math.Max(r.pos, 1)
		}
	}

	return written * r.channels, nil
}

func (r *Resampler) finish(written int, err error) (int, error) {
	if written == 0 {
		return 0, err
	}
	if errors.Is(err, io.EOF) {
		return written * r.channels, nil
	}
	return written * r.channels, err
}
