// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/transition"
)

// musicState tracks the one music slot that is considered current.
type musicState struct {
	name       string
	id         SlotID
	transition transition.Spec
}

// PlayMusic makes src, known as name, the current music track. The previous
// track, if still playing, is replaced according to the music transition:
//
//	instant  the old track stops and the new one starts at once
//	overlap  the old track fades out while the new one fades in
//	smooth   the old track fades out, then the new one fades in
func (e *Engine) PlayMusic(name string, src audio.Source, volume float32, looping bool) (SlotID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.switchMusic(name, src, volume, looping)
}

// PlayOrContinueMusic plays the track called name unless it is already the
// current track. open is only called when a new track has to start.
func (e *Engine) PlayOrContinueMusic(name string, open func() (audio.Source, error), volume float32, looping bool) (SlotID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.music.name == name && e.live(e.music.id) {
		return e.music.id, nil
	}

	src, err := open()
	if err != nil {
		return 0, err
	}
	return e.switchMusic(name, src, volume, looping)
}

// switchMusic requires e.mu.
func (e *Engine) switchMusic(name string, src audio.Source, volume float32, looping bool) (SlotID, error) {
	t := e.music.transition
	old := e.music.id
	replacing := e.live(old)
	fade := t.Kind != transition.KindInstant && t.Duration > 0

	opts := PlayOptions{Volume: volume, Looping: looping, Group: GroupMusic}
	if replacing && fade {
		opts.FadeIn = transition.Spec{Kind: t.Kind, Duration: t.Duration}
		if t.Kind == transition.KindSmooth {
			opts.Delay = t.Duration
		}
	}

	// the new track is queued first so a rejected play leaves the old one
	// untouched
	id, err := e.play(src, opts, 1)
	if err != nil {
		return 0, err
	}

	if replacing {
		if err := e.endMusic(old); err != nil {
			e.log.Warn("ending previous music", "slot", old, "err", err)
		}
	}

	e.music.name = name
	e.music.id = id
	e.log.Debug("music", "name", name, "slot", id, "transition", t.Kind)

	return id, nil
}

// endMusic stops or fades out id following the music transition. e.mu must
// be held.
func (e *Engine) endMusic(id SlotID) error {
	t := e.music.transition
	if t.Kind == transition.KindInstant || t.Duration <= 0 {
		return e.Stop(id)
	}
	return e.fadeOut(id, transition.Spec{Kind: t.Kind, Duration: t.Duration})
}

// StopMusic ends the current track using the music transition's fade. It is
// a no-op without a current track.
func (e *Engine) StopMusic() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.music.id
	e.music.name, e.music.id = "", 0
	if !e.live(id) {
		return nil
	}

	err := e.endMusic(id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// PauseMusic pauses the current track.
func (e *Engine) PauseMusic() error {
	e.mu.Lock()
	id := e.music.id
	e.mu.Unlock()

	return e.Pause(id)
}

// ResumeMusic resumes the current track.
func (e *Engine) ResumeMusic() error {
	e.mu.Lock()
	id := e.music.id
	e.mu.Unlock()

	return e.Resume(id)
}

// CurrentMusic returns the current track, if one is still playing.
func (e *Engine) CurrentMusic() (name string, id SlotID, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.live(e.music.id) {
		return "", 0, false
	}
	return e.music.name, e.music.id, true
}

// SetMusicTransition sets the policy used by the next music switch. Its
// Target is ignored. A switch already in progress is not affected.
func (e *Engine) SetMusicTransition(t transition.Spec) error {
	t.Target = 0
	if err := t.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	e.music.transition = t
	e.mu.Unlock()

	return nil
}

// MusicTransition returns the current music switch policy.
func (e *Engine) MusicTransition() transition.Spec {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.music.transition
}

func (e *Engine) live(id SlotID) bool {
	if id == 0 {
		return false
	}
	st, ok := e.reg.Status(id)
	return ok && !st.State.Terminal()
}
