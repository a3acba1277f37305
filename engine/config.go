// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"time"
)

// Config fixes the output format and the capacity of the engine. Nothing in
// it can change after New.
type Config struct {
	// SampleRate of the output in Hz.
	SampleRate int
	// Channels of the interleaved output buffer.
	Channels int
	// FramesPerBuffer is the largest chunk pulled from a source at once. It
	// sizes the mixer's scratch buffer, not the render period.
	FramesPerBuffer int
	// QueueCapacity is the number of intents that can wait for the next
	// render call. It is rounded up to a power of two.
	QueueCapacity int
	// MaxSlots is the number of sounds mixed at once. A play beyond it
	// finishes immediately.
	MaxSlots int
	// PrefetchFrames sizes the decode-ahead ring given to streamed sources.
	// Zero disables prefetching; sources are then read on the render
	// goroutine.
	PrefetchFrames int
	// PrimeTimeout bounds how long Play waits for a prefetch ring to fill.
	// Zero means Play does not wait.
	PrimeTimeout time.Duration
}

// DefaultConfig returns a 48kHz stereo configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:      48000,
		Channels:        2,
		FramesPerBuffer: 1024,
		QueueCapacity:   1024,
		MaxSlots:        64,
		PrefetchFrames:  16384,
		PrimeTimeout:    100 * time.Millisecond,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: SampleRate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	case c.Channels <= 0:
		return fmt.Errorf("%w: Channels must be positive, got %d", ErrInvalidConfig, c.Channels)
	case c.FramesPerBuffer <= 0:
		return fmt.Errorf("%w: FramesPerBuffer must be positive, got %d", ErrInvalidConfig, c.FramesPerBuffer)
	case c.QueueCapacity <= 0:
		return fmt.Errorf("%w: QueueCapacity must be positive, got %d", ErrInvalidConfig, c.QueueCapacity)
	case c.MaxSlots <= 0:
		return fmt.Errorf("%w: MaxSlots must be positive, got %d", ErrInvalidConfig, c.MaxSlots)
	case c.PrefetchFrames < 0:
		return fmt.Errorf("%w: PrefetchFrames must not be negative, got %d", ErrInvalidConfig, c.PrefetchFrames)
	case c.PrimeTimeout < 0:
		return fmt.Errorf("%w: PrimeTimeout must not be negative, got %v", ErrInvalidConfig, c.PrimeTimeout)
	}
	return nil
}

// FramesToDuration converts a frame count at c.SampleRate to a duration.
func (c Config) FramesToDuration(frames uint64) time.Duration {
	rate := uint64(c.SampleRate)
	return time.Duration(frames/rate)*time.Second +
		time.Duration(frames%rate)*time.Second/time.Duration(rate)
}

// DurationToFrames converts d to frames at c.SampleRate, rounding down.
func (c Config) DurationToFrames(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	rate := uint64(c.SampleRate)
	return uint64(d/time.Second)*rate + uint64(d%time.Second)*rate/uint64(time.Second)
}
