// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"default", func(*Config) {}, ""},
		{"zero rate", func(c *Config) { c.SampleRate = 0 }, "SampleRate"},
		{"negative channels", func(c *Config) { c.Channels = -1 }, "Channels"},
		{"zero buffer", func(c *Config) { c.FramesPerBuffer = 0 }, "FramesPerBuffer"},
		{"zero queue", func(c *Config) { c.QueueCapacity = 0 }, "QueueCapacity"},
		{"zero slots", func(c *Config) { c.MaxSlots = 0 }, "MaxSlots"},
		{"negative prefetch", func(c *Config) { c.PrefetchFrames = -1 }, "PrefetchFrames"},
		{"no prefetch", func(c *Config) { c.PrefetchFrames = 0 }, ""},
		{"negative timeout", func(c *Config) { c.PrimeTimeout = -time.Second }, "PrimeTimeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestConfig_FrameConversions(t *testing.T) {
	t.Parallel()

	cfg := Config{SampleRate: 48000}

	tests := []struct {
		frames uint64
		d      time.Duration
	}{
		{0, 0},
		{48, time.Millisecond},
		{480, 10 * time.Millisecond},
		{48000, time.Second},
		{48000 * 3600, time.Hour},
	}

	for _, tt := range tests {
		if got := cfg.FramesToDuration(tt.frames); got != tt.d {
			t.Errorf("FramesToDuration(%d) = %v, want %v", tt.frames, got, tt.d)
		}
		if got := cfg.DurationToFrames(tt.d); got != tt.frames {
			t.Errorf("DurationToFrames(%v) = %d, want %d", tt.d, got, tt.frames)
		}
	}

	if got := cfg.DurationToFrames(-time.Second); got != 0 {
		t.Errorf("DurationToFrames(-1s) = %d, want 0", got)
	}
	// rounds down
	if got := cfg.DurationToFrames(30 * time.Microsecond); got != 1 {
		t.Errorf("DurationToFrames(30µs) = %d, want 1", got)
	}
}

func TestStateAndGroupStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		got, want string
	}{
		{Pending.String(), "pending"},
		{Transitioning.String(), "transitioning"},
		{Finished.String(), "finished"},
		{State(42).String(), "state(42)"},
		{GroupMusic.String(), "music"},
		{Group(7).String(), "group(7)"},
		{IntentFadeOut.String(), "fade_out"},
		{IntentKind(99).String(), "intent(99)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}

	for _, s := range []State{Pending, Playing, Paused, Transitioning} {
		if s.Terminal() {
			t.Errorf("%v.Terminal() = true", s)
		}
	}
	if !Stopped.Terminal() || !Finished.Terminal() {
		t.Error("stopped and finished must be terminal")
	}
}
