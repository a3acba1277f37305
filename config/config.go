// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ik5/audmix/engine"
	"github.com/ik5/audmix/spatial"
	"github.com/ik5/audmix/transition"
	"gopkg.in/ini.v1"
)

// Settings describes an audio setup: the output format, the volumes and the
// music and effect files to preload.
type Settings struct {
	Audio  Audio  `ini:"audio"`
	Volume Volume `ini:"volume"`
	Music  Music  `ini:"music"`
	Effect Effect `ini:"effect"`
}

// Audio is the [audio] section.
type Audio struct {
	SampleRate    int `ini:"sample_rate"`
	Channels      int `ini:"channels"`
	Period        int `ini:"period"` // frames per buffer
	QueueCapacity int `ini:"queue_capacity"`
	MaxSlots      int `ini:"max_slots"`
	Prefetch      int `ini:"prefetch"` // frames decoded ahead for streams
	// PrimeTimeout and BufferSize accept Go durations ("100ms").
	PrimeTimeout time.Duration `ini:"prime_timeout"`
	BufferSize   time.Duration `ini:"buffer_size"`
}

// Volume is the [volume] section. Every value lies in [0,1].
type Volume struct {
	Global float32 `ini:"global"`
	Music  float32 `ini:"music"`
	Effect float32 `ini:"effect"`
}

// Music is the [music] section. Tracks are relative to Dir and are
// addressed by their index.
type Music struct {
	Dir                string        `ini:"dir"`
	Tracks             []string      `ini:"tracks" delim:","`
	Loop               bool          `ini:"loop"`
	Transition         string        `ini:"transition"`
	TransitionDuration time.Duration `ini:"transition_duration"`
}

// Effect is the [effect] section. Files are relative to Dir and are
// addressed by their index.
type Effect struct {
	Dir           string   `ini:"dir"`
	Files         []string `ini:"files" delim:","`
	DistanceModel string   `ini:"distance_model"`
	Near          float32  `ini:"near"`
	Far           float32  `ini:"far"`
}

// Default returns 44.1kHz stereo settings at half volume with no files.
func Default() Settings {
	cfg := engine.DefaultConfig()

	return Settings{
		Audio: Audio{
			SampleRate:    44100,
			Channels:      2,
			Period:        cfg.FramesPerBuffer,
			QueueCapacity: cfg.QueueCapacity,
			MaxSlots:      cfg.MaxSlots,
			Prefetch:      cfg.PrefetchFrames,
			PrimeTimeout:  cfg.PrimeTimeout,
			BufferSize:    50 * time.Millisecond,
		},
		Volume: Volume{Global: 0.5, Music: 0.5, Effect: 0.5},
		Music: Music{
			Loop:       true,
			Transition: transition.KindInstant.String(),
		},
		Effect: Effect{
			DistanceModel: spatial.DefaultModel.Falloff.String(),
			Near:          spatial.DefaultModel.Near,
			Far:           spatial.DefaultModel.Far,
		},
	}
}

var loadOptions = ini.LoadOptions{
	Insensitive:         true,
	IgnoreInlineComment: false,
}

// Load reads settings from an INI file. Keys missing from the file keep
// their Default value.
func Load(path string) (Settings, error) {
	return parse(path)
}

// Parse reads settings from INI data.
func Parse(data []byte) (Settings, error) {
	return parse(data)
}

func parse(source any) (Settings, error) {
	s := Default()

	f, err := ini.LoadSources(loadOptions, source)
	if err != nil {
		return s, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if err := f.StrictMapTo(&s); err != nil {
		return s, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}

	return s, nil
}

// Save writes s as INI.
func (s Settings) Save(w io.Writer) error {
	f := ini.Empty()
	if err := ini.ReflectFrom(f, &s); err != nil {
		return fmt.Errorf("reflect settings: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting, named section.key.
func (s Settings) Validate() error {
	a := s.Audio
	switch {
	case a.SampleRate <= 0:
		return invalid("audio.sample_rate", a.SampleRate)
	case a.Channels <= 0:
		return invalid("audio.channels", a.Channels)
	case a.Period <= 0:
		return invalid("audio.period", a.Period)
	case a.QueueCapacity <= 0:
		return invalid("audio.queue_capacity", a.QueueCapacity)
	case a.MaxSlots <= 0:
		return invalid("audio.max_slots", a.MaxSlots)
	case a.Prefetch < 0:
		return invalid("audio.prefetch", a.Prefetch)
	case a.PrimeTimeout < 0:
		return invalid("audio.prime_timeout", a.PrimeTimeout)
	case a.BufferSize < 0:
		return invalid("audio.buffer_size", a.BufferSize)
	}

	volumes := []struct {
		key string
		v   float32
	}{
		{"volume.global", s.Volume.Global},
		{"volume.music", s.Volume.Music},
		{"volume.effect", s.Volume.Effect},
	}
	for _, vol := range volumes {
		if !(vol.v >= 0 && vol.v <= 1) {
			return invalid(vol.key, vol.v)
		}
	}

	if _, err := s.MusicTransition(); err != nil {
		return fmt.Errorf("%w: music: %w", ErrInvalidSetting, err)
	}
	if _, err := s.DistanceModel(); err != nil {
		return fmt.Errorf("%w: effect: %w", ErrInvalidSetting, err)
	}

	return nil
}

func invalid(key string, v any) error {
	return fmt.Errorf("%w: %s = %v", ErrInvalidSetting, key, v)
}

// EngineConfig returns the engine configuration of the [audio] section.
func (s Settings) EngineConfig() engine.Config {
	return engine.Config{
		SampleRate:      s.Audio.SampleRate,
		Channels:        s.Audio.Channels,
		FramesPerBuffer: s.Audio.Period,
		QueueCapacity:   s.Audio.QueueCapacity,
		MaxSlots:        s.Audio.MaxSlots,
		PrefetchFrames:  s.Audio.Prefetch,
		PrimeTimeout:    s.Audio.PrimeTimeout,
	}
}

// MusicTransition returns the policy used when one track replaces another.
func (s Settings) MusicTransition() (transition.Spec, error) {
	kind, err := transition.ParseKind(s.Music.Transition)
	if err != nil {
		return transition.Spec{}, err
	}

	t := transition.Spec{Kind: kind, Duration: s.Music.TransitionDuration}
	if err := t.Validate(); err != nil {
		return transition.Spec{}, err
	}
	return t, nil
}

// DistanceModel returns the model used to attenuate positioned effects.
func (s Settings) DistanceModel() (spatial.Model, error) {
	falloff, err := spatial.ParseFalloff(s.Effect.DistanceModel)
	if err != nil {
		return spatial.Model{}, err
	}

	m := spatial.Model{Falloff: falloff, Near: s.Effect.Near, Far: s.Effect.Far}
	if err := m.Validate(); err != nil {
		return spatial.Model{}, err
	}
	return m, nil
}

// MusicPaths returns the track files joined with the music directory.
func (s Settings) MusicPaths() []string {
	return join(s.Music.Dir, s.Music.Tracks)
}

// EffectPaths returns the effect files joined with the effect directory.
func (s Settings) EffectPaths() []string {
	return join(s.Effect.Dir, s.Effect.Files)
}

func join(dir string, files []string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = filepath.Join(dir, f)
	}
	return out
}
