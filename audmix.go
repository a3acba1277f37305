// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/engine"
	"github.com/ik5/audmix/internal/log"
	"github.com/ik5/audmix/spatial"
)

// player is the process wide audio state created by Init.
type player struct {
	eng      *engine.Engine
	out      backend.Backend
	decoders *audio.Registry
	log      *slog.Logger

	settings config.Settings
	music    []string
	effects  []*audio.Memory
}

var (
	mu    sync.Mutex
	state *player
)

type initOptions struct {
	backend  backend.Backend
	logger   *slog.Logger
	decoders *audio.Registry
}

// InitOption configures Init.
type InitOption func(*initOptions)

// WithBackend plays through b instead of the system audio device. b must
// produce the sample rate and channel count of the settings.
func WithBackend(b backend.Backend) InitOption {
	return func(o *initOptions) { o.backend = b }
}

// WithLogger sets the logger handed to the engine and the backend.
func WithLogger(l *slog.Logger) InitOption {
	return func(o *initOptions) { o.logger = l }
}

// WithDecoders replaces DefaultDecoders.
func WithDecoders(reg *audio.Registry) InitOption {
	return func(o *initOptions) { o.decoders = reg }
}

// Init creates the engine described by s, preloads its effects and starts
// playing. It fails with ErrAlreadyInitialized until Close is called.
func Init(s config.Settings, opts ...InitOption) error {
	mu.Lock()
	defer mu.Unlock()

	if state != nil {
		return ErrAlreadyInitialized
	}
	if err := s.Validate(); err != nil {
		return err
	}

	o := initOptions{logger: log.L(), decoders: DefaultDecoders()}
	for _, opt := range opts {
		opt(&o)
	}

	model, _ := s.DistanceModel()
	trans, _ := s.MusicTransition()

	eng, err := engine.New(s.EngineConfig(),
		engine.WithLogger(o.logger),
		engine.WithDistanceModel(model),
		engine.WithMusicTransition(trans))
	if err != nil {
		return err
	}

	p := &player{eng: eng, decoders: o.decoders, log: o.logger}
	if err := p.apply(s); err != nil {
		return errors.Join(err, eng.Close())
	}

	out := o.backend
	if out == nil {
		out, err = backend.NewOto(s.Audio.SampleRate, s.Audio.Channels,
			backend.WithBufferSize(s.Audio.BufferSize),
			backend.WithLogger(o.logger))
		if err != nil {
			return errors.Join(err, eng.Close())
		}
	}
	if err := out.Start(eng); err != nil {
		return errors.Join(fmt.Errorf("start backend: %w", err), eng.Close())
	}
	p.out = out

	state = p
	o.logger.Info("audio initialized",
		"sample_rate", s.Audio.SampleRate,
		"channels", s.Audio.Channels,
		"effects", len(p.effects),
		"music", len(p.music))

	return nil
}

// Close stops the output and releases every source. Init may be called
// again afterwards.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if state == nil {
		return ErrNotInitialized
	}
	p := state
	state = nil

	// the backend stops calling Render before the engine is closed
	err := errors.Join(p.out.Close(), p.eng.Close())
	p.log.Info("audio closed", "err", err)

	return err
}

// Reset applies s to the running engine: volumes, music transition,
// distance model, music list and effects. The [audio] section cannot change
// without Close and Init; doing so fails with ErrRestartRequired.
func Reset(s config.Settings) error {
	mu.Lock()
	defer mu.Unlock()

	if state == nil {
		return ErrNotInitialized
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Audio.SampleRate != state.settings.Audio.SampleRate ||
		s.Audio.Channels != state.settings.Audio.Channels {
		return fmt.Errorf("%w: %d Hz %d channels", ErrRestartRequired, s.Audio.SampleRate, s.Audio.Channels)
	}

	model, _ := s.DistanceModel()
	trans, _ := s.MusicTransition()
	if err := state.eng.SetDistanceModel(model); err != nil {
		return err
	}
	if err := state.eng.SetMusicTransition(trans); err != nil {
		return err
	}

	return state.apply(s)
}

// apply loads the effects of s and sets its volumes. Effects are replaced
// only when every file loads.
func (p *player) apply(s config.Settings) error {
	effects := make([]*audio.Memory, 0, len(s.Effect.Files))
	for _, path := range s.EffectPaths() {
		mem, err := LoadAs(p.decoders, path, s.Audio.SampleRate, s.Audio.Channels)
		if err != nil {
			return fmt.Errorf("load effect: %w", err)
		}
		effects = append(effects, mem)
	}

	err := errors.Join(
		p.eng.SetMasterVolume(s.Volume.Global),
		p.eng.SetGroupVolume(engine.GroupMusic, s.Volume.Music),
		p.eng.SetGroupVolume(engine.GroupEffect, s.Volume.Effect),
	)
	if err != nil {
		return err
	}

	p.settings = s
	p.music = s.MusicPaths()
	p.effects = effects
	return nil
}

// Engine returns the running engine for direct control.
func Engine() (*engine.Engine, error) {
	mu.Lock()
	defer mu.Unlock()

	if state == nil {
		return nil, ErrNotInitialized
	}
	return state.eng, nil
}

// Settings returns the settings last applied by Init or Reset.
func Settings() (config.Settings, error) {
	mu.Lock()
	defer mu.Unlock()

	if state == nil {
		return config.Settings{}, ErrNotInitialized
	}
	return state.settings, nil
}

// PlayMusic makes the track at index the current music.
func PlayMusic(index int) (engine.SlotID, error) {
	mu.Lock()
	defer mu.Unlock()

	path, err := musicPath(index)
	if err != nil {
		return 0, err
	}
	src, err := OpenWith(state.decoders, path)
	if err != nil {
		return 0, err
	}
	return state.eng.PlayMusic(path, src, 1, state.settings.Music.Loop)
}

// PlayOrContinueMusic plays the track at index unless it is already the
// current music.
func PlayOrContinueMusic(index int) (engine.SlotID, error) {
	mu.Lock()
	defer mu.Unlock()

	path, err := musicPath(index)
	if err != nil {
		return 0, err
	}
	open := func() (audio.Source, error) { return OpenWith(state.decoders, path) }
	return state.eng.PlayOrContinueMusic(path, open, 1, state.settings.Music.Loop)
}

// MusicIndex returns the index of the current music.
func MusicIndex() (int, bool) {
	mu.Lock()
	defer mu.Unlock()

	if state == nil {
		return 0, false
	}
	name, _, ok := state.eng.CurrentMusic()
	if !ok {
		return 0, false
	}
	for i, path := range state.music {
		if path == name {
			return i, true
		}
	}
	return 0, false
}

// StopMusic ends the current music.
func StopMusic() error {
	eng, err := Engine()
	if err != nil {
		return err
	}
	return eng.StopMusic()
}

// PauseMusic pauses the current music.
func PauseMusic() error {
	eng, err := Engine()
	if err != nil {
		return err
	}
	return eng.PauseMusic()
}

// ResumeMusic resumes the current music.
func ResumeMusic() error {
	eng, err := Engine()
	if err != nil {
		return err
	}
	return eng.ResumeMusic()
}

// musicPath requires mu.
func musicPath(index int) (string, error) {
	if state == nil {
		return "", ErrNotInitialized
	}
	if index < 0 || index >= len(state.music) {
		return "", fmt.Errorf("%w: %d", ErrUnknownMusic, index)
	}
	return state.music[index], nil
}

// PlayEffect plays the effect at index heard from pos. Positions out of
// hearing range play nothing and fail with engine.ErrInaudible.
func PlayEffect(index int, pos spatial.Vec3) (engine.SlotID, error) {
	mu.Lock()
	defer mu.Unlock()

	mem, err := effect(index)
	if err != nil {
		return 0, err
	}
	return state.eng.PlayAt(mem.Clone(), 1, pos)
}

// PlayEffectOnListener plays the effect at index at full spatial gain.
func PlayEffectOnListener(index int) (engine.SlotID, error) {
	mu.Lock()
	defer mu.Unlock()

	mem, err := effect(index)
	if err != nil {
		return 0, err
	}
	return state.eng.Play(mem.Clone(), 1, false)
}

// PlayPersistentEffect loops the effect at index from the given emitter
// positions. Move it with Engine().AddPositions and UpdateAllSpatial.
func PlayPersistentEffect(index int, positions ...spatial.Vec3) (engine.SlotID, error) {
	mu.Lock()
	defer mu.Unlock()

	mem, err := effect(index)
	if err != nil {
		return 0, err
	}
	if positions == nil {
		positions = []spatial.Vec3{}
	}
	return state.eng.PlayWith(mem.Clone(), engine.PlayOptions{
		Volume:    1,
		Looping:   true,
		Group:     engine.GroupEffect,
		Positions: positions,
	})
}

// StopAllEffects stops every playing effect.
func StopAllEffects() error {
	eng, err := Engine()
	if err != nil {
		return err
	}
	return eng.StopGroup(engine.GroupEffect)
}

// PauseEffects silences every effect, including effects started while
// paused, until ResumeEffects.
func PauseEffects() error {
	eng, err := Engine()
	if err != nil {
		return err
	}
	return eng.PauseGroup(engine.GroupEffect)
}

// ResumeEffects undoes PauseEffects.
func ResumeEffects() error {
	eng, err := Engine()
	if err != nil {
		return err
	}
	return eng.ResumeGroup(engine.GroupEffect)
}

// EffectsPaused reports whether effects are paused. It is false before Init.
func EffectsPaused() bool {
	eng, err := Engine()
	if err != nil {
		return false
	}
	return eng.GroupPaused(engine.GroupEffect)
}

// effect requires mu.
func effect(index int) (*audio.Memory, error) {
	if state == nil {
		return nil, ErrNotInitialized
	}
	if index < 0 || index >= len(state.effects) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEffect, index)
	}
	return state.effects[index], nil
}

// SetGlobalVolume scales the whole mix.
func SetGlobalVolume(v float32) error {
	return setVolume(func(s *config.Settings) { s.Volume.Global = v },
		func(e *engine.Engine) error { return e.SetMasterVolume(v) })
}

// SetMusicVolume scales the music group.
func SetMusicVolume(v float32) error {
	return setVolume(func(s *config.Settings) { s.Volume.Music = v },
		func(e *engine.Engine) error { return e.SetGroupVolume(engine.GroupMusic, v) })
}

// SetEffectVolume scales the effect group.
func SetEffectVolume(v float32) error {
	return setVolume(func(s *config.Settings) { s.Volume.Effect = v },
		func(e *engine.Engine) error { return e.SetGroupVolume(engine.GroupEffect, v) })
}

func setVolume(record func(*config.Settings), send func(*engine.Engine) error) error {
	mu.Lock()
	defer mu.Unlock()

	if state == nil {
		return ErrNotInitialized
	}
	if err := send(state.eng); err != nil {
		return err
	}
	record(&state.settings)
	return nil
}

// Reap forgets ended sounds and closes their sources. Interactive programs
// call it periodically.
func Reap() (int, error) {
	eng, err := Engine()
	if err != nil {
		return 0, err
	}
	return eng.Reap(), nil
}
