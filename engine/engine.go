// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/log"
	"github.com/ik5/audmix/spatial"
	"github.com/ik5/audmix/transition"
)

// PlayOptions describe a new slot.
type PlayOptions struct {
	Volume  float32
	Looping bool
	Group   Group
	// Delay postpones the start; the slot is Pending until it elapses.
	Delay time.Duration
	// FadeIn, when it has a positive Duration, ramps the slot from silence
	// to Volume once it starts. Its Target is ignored.
	FadeIn transition.Spec
	// Positions makes the slot positional: its gain is the spatial model's
	// sum over them, recomputed by UpdateSpatial. A positional slot without
	// positions is silent.
	Positions []spatial.Vec3
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used on control paths. Render never logs.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithDistanceModel sets the initial spatial model.
func WithDistanceModel(m spatial.Model) Option {
	return func(e *Engine) { e.model = m }
}

// WithMusicTransition sets the initial music switch policy.
func WithMusicTransition(t transition.Spec) Option {
	return func(e *Engine) { e.music.transition = t }
}

// Engine is the public face of the mixer. Its control methods are safe for
// concurrent use and never wait for the render goroutine. Render must be
// driven by exactly one goroutine, normally a backend.
type Engine struct {
	cfg   Config
	log   *slog.Logger
	ch    *Channel
	reg   *Registry
	mixer *Mixer

	mu       sync.Mutex // guards listener, model, music and paused
	listener spatial.Vec3
	model    spatial.Model
	music    musicState
	paused   [numGroups]bool // as last sent to the mixer

	closed atomic.Bool
}

// New validates cfg and preallocates the mixer.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ch := NewChannel(cfg.QueueCapacity)
	e := &Engine{
		cfg:   cfg,
		log:   log.Discard(),
		ch:    ch,
		reg:   NewRegistry(ch),
		mixer: NewMixer(cfg, ch),
		model: spatial.DefaultModel,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.model.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := e.music.transition.Validate(); err != nil {
		return nil, fmt.Errorf("%w: music transition: %w", ErrInvalidConfig, err)
	}

	e.log.Debug("engine created",
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels,
		"max_slots", cfg.MaxSlots,
		"queue", ch.Cap())

	return e, nil
}

// Config returns the configuration the engine was created with.
func (e *Engine) Config() Config { return e.cfg }

// Render fills out with interleaved float32 samples in the engine format.
// It is the real-time entry point: it never blocks, allocates or locks.
func (e *Engine) Render(out []float32) { e.mixer.Render(out) }

// Play starts src as a sound effect. See PlayWith.
func (e *Engine) Play(src audio.Source, volume float32, looping bool) (SlotID, error) {
	return e.PlayWith(src, PlayOptions{Volume: volume, Looping: looping, Group: GroupEffect})
}

// PlayAt starts src as an effect heard from pos. Its spatial gain is computed
// once from the current listener and distance model. A position with zero
// gain plays nothing and fails with ErrInaudible.
func (e *Engine) PlayAt(src audio.Source, volume float32, pos spatial.Vec3) (SlotID, error) {
	e.mu.Lock()
	gain := e.model.Gain(pos, e.listener)
	e.mu.Unlock()

	if gain == 0 {
		_ = src.Close()
		return 0, fmt.Errorf("%w: %v", ErrInaudible, pos)
	}
	return e.play(src, PlayOptions{Volume: volume, Group: GroupEffect}, gain)
}

// PlayWith converts src to the engine format and queues it. The returned id
// is usable immediately.
//
// Play takes ownership of src: it is closed by Reap after the slot ends, by
// Close, or before PlayWith returns an error. Streamed sources are decoded
// ahead on their own goroutine when Config.PrefetchFrames is positive;
// an *audio.Memory is read directly.
func (e *Engine) PlayWith(src audio.Source, opts PlayOptions) (SlotID, error) {
	gain := float32(1)
	if opts.Positions != nil {
		e.mu.Lock()
		gain = e.model.Sum(opts.Positions, e.listener)
		e.mu.Unlock()
	}
	return e.play(src, opts, gain)
}

func (e *Engine) play(src audio.Source, opts PlayOptions, spatialGain float32) (id SlotID, err error) {
	defer func() {
		if err != nil {
			_ = src.Close()
		}
	}()

	if e.closed.Load() {
		return 0, ErrChannelClosed
	}
	if err := checkVolume(opts.Volume); err != nil {
		return 0, err
	}
	if !opts.Group.valid() {
		return 0, fmt.Errorf("%w: %v", ErrUnknownGroup, opts.Group)
	}
	if err := opts.FadeIn.Validate(); err != nil {
		return 0, fmt.Errorf("fade in: %w", err)
	}
	_, seekable := src.(audio.Seeker)
	if opts.Looping && !seekable {
		return 0, ErrNotSeekable
	}

	conformed, err := audio.Conform(src, e.cfg.SampleRate, e.cfg.Channels)
	if err != nil {
		return 0, fmt.Errorf("conform source: %w", err)
	}
	src = e.prefetch(conformed)

	play := Intent{
		Source:      src,
		Volume:      opts.Volume,
		Spatial:     spatialGain,
		Looping:     opts.Looping,
		Group:       opts.Group,
		DelayFrames: e.cfg.DurationToFrames(opts.Delay),
	}
	if opts.FadeIn.Duration > 0 && opts.FadeIn.Kind != transition.KindInstant {
		play.Transition = opts.FadeIn
		play.Transition.Target = opts.Volume
		play.HasTransition = true
	}

	id, err = e.reg.Create(play, seekable, opts.Positions)
	if err != nil {
		e.log.Warn("play rejected", "group", opts.Group, "err", err)
		return 0, err
	}

	e.log.Debug("play", "slot", id, "group", opts.Group, "volume", opts.Volume, "looping", opts.Looping)
	return id, nil
}

// prefetch moves decoding of streamed sources off the render goroutine.
func (e *Engine) prefetch(src audio.Source) audio.Source {
	if _, inMemory := src.(*audio.Memory); inMemory || e.cfg.PrefetchFrames == 0 {
		return src
	}

	p := audio.NewPrefetcher(src, e.cfg.PrefetchFrames)
	if e.cfg.PrimeTimeout > 0 {
		timer := time.NewTimer(e.cfg.PrimeTimeout)
		defer timer.Stop()

		select {
		case <-p.Primed():
		case <-timer.C:
			e.log.Debug("prefetch not primed in time", "timeout", e.cfg.PrimeTimeout)
		}
	}
	return p
}

// Stop ends the slot at the next render call.
func (e *Engine) Stop(id SlotID) error {
	return e.send(id, Intent{Kind: IntentStop})
}

// SetVolume changes the slot volume. During a fade the new volume becomes
// the fade target; during a fade out it is ignored.
func (e *Engine) SetVolume(id SlotID, volume float32) error {
	if err := checkVolume(volume); err != nil {
		return err
	}
	return e.send(id, Intent{Kind: IntentSetVolume, Volume: volume})
}

// SetLooping turns looping on or off. Looping a source that cannot seek
// fails with ErrNotSeekable.
func (e *Engine) SetLooping(id SlotID, looping bool) error {
	return e.send(id, Intent{Kind: IntentSetLooping, Looping: looping})
}

// SetTransition starts moving the slot volume to t.Target. It replaces any
// transition in progress, a fade out included.
func (e *Engine) SetTransition(id SlotID, t transition.Spec) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return e.send(id, Intent{Kind: IntentSetTransition, Transition: t})
}

// FadeOut ramps the slot to silence over d and then stops it. A
// non-positive d stops it at the next render call.
func (e *Engine) FadeOut(id SlotID, d time.Duration) error {
	return e.fadeOut(id, transition.Overlap(max(d, 0), 0))
}

func (e *Engine) fadeOut(id SlotID, t transition.Spec) error {
	return e.send(id, Intent{Kind: IntentFadeOut, Transition: t})
}

// Pause silences the slot and holds its position and transition.
func (e *Engine) Pause(id SlotID) error {
	return e.send(id, Intent{Kind: IntentPause})
}

// Resume undoes Pause.
func (e *Engine) Resume(id SlotID) error {
	return e.send(id, Intent{Kind: IntentResume})
}

// Status returns the latest status published by the mixer. It reports false
// for ids that were never issued or already reaped.
func (e *Engine) Status(id SlotID) (Status, bool) {
	return e.reg.Status(id)
}

// Live returns the ids of all slots that have not ended.
func (e *Engine) Live() []SlotID { return e.reg.Live() }

// Reap drops the bookkeeping of ended slots and closes their sources. Call
// it periodically from a control goroutine.
func (e *Engine) Reap() int {
	n, err := e.reg.RemoveOnFinished()
	if err != nil {
		e.log.Warn("closing finished sources", "err", err)
	}
	if n > 0 {
		e.log.Debug("reaped slots", "count", n)
	}
	return n
}

// SetMasterVolume scales the whole mix.
func (e *Engine) SetMasterVolume(volume float32) error {
	if err := checkVolume(volume); err != nil {
		return err
	}
	return e.broadcast(Intent{Kind: IntentSetMasterVolume, Volume: volume})
}

// SetGroupVolume scales every slot of g.
func (e *Engine) SetGroupVolume(g Group, volume float32) error {
	if err := checkVolume(volume); err != nil {
		return err
	}
	return e.broadcast(Intent{Kind: IntentSetGroupVolume, Group: g, Volume: volume})
}

// PauseGroup pauses every slot of g, including slots started later.
func (e *Engine) PauseGroup(g Group) error {
	return e.setGroupPaused(g, true)
}

// ResumeGroup undoes PauseGroup. Slots paused on their own stay paused.
func (e *Engine) ResumeGroup(g Group) error {
	return e.setGroupPaused(g, false)
}

// GroupPaused reports whether g was last paused by PauseGroup. Unknown groups
// are never paused.
func (e *Engine) GroupPaused(g Group) bool {
	if !g.valid() {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.paused[g]
}

func (e *Engine) setGroupPaused(g Group, paused bool) error {
	// e.mu orders the sends so the recorded flag matches the last intent
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.broadcast(Intent{Kind: IntentSetGroupPaused, Group: g, Paused: paused}); err != nil {
		return err
	}
	e.paused[g] = paused
	return nil
}

// StopGroup stops every slot of g that the mixer knows about when the intent
// is applied.
func (e *Engine) StopGroup(g Group) error {
	return e.broadcast(Intent{Kind: IntentStopGroup, Group: g})
}

// Close rejects further control calls and closes every remaining source.
// The render goroutine must have stopped before Close is called.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.ch.Close()

	err := e.reg.Close()
	e.log.Debug("engine closed", "err", err)
	return err
}

func (e *Engine) send(id SlotID, in Intent) error {
	if e.closed.Load() {
		return ErrChannelClosed
	}
	err := e.reg.Send(id, in)
	if errors.Is(err, ErrBackpressure) {
		e.log.Warn("control channel full", "slot", id, "intent", in.Kind)
	}
	return err
}

func (e *Engine) broadcast(in Intent) error {
	if e.closed.Load() {
		return ErrChannelClosed
	}
	if !in.Group.valid() {
		return fmt.Errorf("%w: %v", ErrUnknownGroup, in.Group)
	}
	err := e.reg.Broadcast(in)
	if errors.Is(err, ErrBackpressure) {
		e.log.Warn("control channel full", "intent", in.Kind)
	}
	return err
}

func checkVolume(v float32) error {
	if !(v >= 0 && v <= 1) {
		return fmt.Errorf("%w: %v", ErrInvalidVolume, v)
	}
	return nil
}
