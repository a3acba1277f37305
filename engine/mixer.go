// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"io"
	"time"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/transition"
	"github.com/ik5/audmix/utils"
)

// slot is the mixer-private state of one playing sound.
type slot struct {
	id     SlotID
	src    audio.Source
	seeker audio.Seeker
	cell   *statusCell
	group  Group

	state    State // never Paused; pausing is tracked by paused
	paused   bool
	looping  bool
	rewound  bool   // sought to 0 and nothing read since
	position uint64 // frames
	delay    uint64 // frames left before a Pending slot starts

	volume  float32
	spatial float32

	trans      transition.Spec
	hasTrans   bool
	stopOnDone bool
}

// level is the slot gain at now, before spatial, group and master gain.
func (s *slot) level(now time.Duration) float32 {
	if !s.hasTrans {
		return s.volume
	}
	if s.state == Pending {
		return s.trans.From
	}
	return transition.GainAt(s.trans, now-s.trans.Start)
}

type groupState struct {
	volume float32
	paused bool
}

// Mixer owns the slot table and renders it. Everything except NewMixer runs
// on the render goroutine: it never blocks, locks, allocates or logs.
type Mixer struct {
	cfg      Config
	channels int
	ch       *Channel

	intents []Intent
	slots   []slot
	scratch []float32

	clock  uint64 // frames rendered so far
	master float32
	groups [numGroups]groupState
}

// NewMixer preallocates every buffer the mixer needs for cfg.
func NewMixer(cfg Config, ch *Channel) *Mixer {
	m := &Mixer{
		cfg:      cfg,
		channels: cfg.Channels,
		ch:       ch,
		intents:  make([]Intent, 0, ch.Cap()),
		slots:    make([]slot, 0, cfg.MaxSlots),
		scratch:  make([]float32, cfg.FramesPerBuffer*cfg.Channels),
		master:   1,
	}
	for g := range m.groups {
		m.groups[g].volume = 1
	}
	return m
}

// Active returns the number of slots in the table. Call it only from the
// render goroutine.
func (m *Mixer) Active() int { return len(m.slots) }

// Clock returns the number of frames rendered so far.
func (m *Mixer) Clock() uint64 { return m.clock }

func (m *Mixer) now() time.Duration { return m.cfg.FramesToDuration(m.clock) }

// Render fills out with the next len(out)/Channels frames. Pending intents
// are applied first, then every live slot is mixed additively and the sum is
// clamped to [-1, 1]. Slots that stopped or finished are published and
// dropped before Render returns.
func (m *Mixer) Render(out []float32) {
	m.intents = m.ch.Drain(m.intents[:0])
	for i := range m.intents {
		m.apply(&m.intents[i])
		m.intents[i] = Intent{}
	}

	clear(out)
	frames := len(out) / m.channels
	out = out[:frames*m.channels]

	now := m.now()
	for i := range m.slots {
		m.mix(&m.slots[i], out, frames, now)
	}
	for i, v := range out {
		out[i] = utils.ClampSample(v)
	}

	m.clock += uint64(frames)
	m.publish()
}

func (m *Mixer) apply(in *Intent) {
	switch in.Kind {
	case IntentPlay:
		m.insert(in)
		return
	case IntentSetGroupVolume:
		if in.Group.valid() {
			m.groups[in.Group].volume = gainOr(in.Volume, m.groups[in.Group].volume)
		}
		return
	case IntentSetGroupPaused:
		if in.Group.valid() {
			m.groups[in.Group].paused = in.Paused
		}
		return
	case IntentStopGroup:
		for i := range m.slots {
			if s := &m.slots[i]; s.group == in.Group && !s.state.Terminal() {
				s.state = Stopped
			}
		}
		return
	case IntentSetMasterVolume:
		m.master = gainOr(in.Volume, m.master)
		return
	}

	s := m.find(in.ID)
	if s == nil || s.state.Terminal() {
		return
	}

	switch in.Kind {
	case IntentStop:
		s.state = Stopped
	case IntentSetVolume:
		s.volume = gainOr(in.Volume, s.volume)
		if s.hasTrans && !s.stopOnDone {
			s.trans.Target = s.volume
		}
	case IntentSetLooping:
		s.looping = in.Looping && s.seeker != nil
	case IntentSetTransition:
		m.startTransition(s, in.Transition, false)
	case IntentFadeOut:
		t := in.Transition
		t.Target = 0
		m.startTransition(s, t, true)
	case IntentPause:
		s.paused = true
	case IntentResume:
		s.paused = false
	case IntentSetSpatialGain:
		s.spatial = gainOr(in.Volume, s.spatial)
	}
}

func (m *Mixer) find(id SlotID) *slot {
	for i := range m.slots {
		if m.slots[i].id == id {
			return &m.slots[i]
		}
	}
	return nil
}

// insert adds the slot of a Play intent. Intents that did not come from a
// Registry carry no status cell and are dropped along with sourceless ones.
func (m *Mixer) insert(in *Intent) {
	if in.cell == nil || in.Source == nil {
		return
	}
	if len(m.slots) == cap(m.slots) {
		in.cell.store(Finished, 0, 0)
		return
	}

	s := slot{
		id:      in.ID,
		src:     in.Source,
		cell:    in.cell,
		group:   in.Group,
		state:   Pending,
		delay:   in.DelayFrames,
		volume:  gainOr(in.Volume, 0),
		spatial: gainOr(in.Spatial, 0),
	}
	s.seeker, _ = in.Source.(audio.Seeker)
	s.looping = in.Looping && s.seeker != nil
	if !s.group.valid() {
		s.group = GroupEffect
	}
	if in.HasTransition {
		// fade in from silence; Start is set when the slot begins playing
		s.trans = in.Transition
		s.trans.From = 0
		s.trans.Target = gainOr(s.trans.Target, s.volume)
		s.hasTrans = true
	}

	m.slots = append(m.slots, s)
}

func (m *Mixer) startTransition(s *slot, t transition.Spec, stop bool) {
	now := m.now()
	t.From = s.level(now)
	t.Start = now
	t.Target = gainOr(t.Target, t.From)

	s.trans = t
	s.hasTrans = true
	s.stopOnDone = stop
	if s.state == Playing {
		s.state = Transitioning
	}
}

func (m *Mixer) mix(s *slot, out []float32, frames int, now time.Duration) {
	if s.state.Terminal() || frames == 0 {
		return
	}

	g := &m.groups[s.group]
	if s.paused || g.paused {
		// freeze the transition along with the position
		if s.hasTrans && s.state != Pending {
			s.trans.Start += m.cfg.FramesToDuration(uint64(frames))
		}
		return
	}

	offset := 0
	if s.state == Pending {
		if s.delay >= uint64(frames) {
			s.delay -= uint64(frames)
			return
		}
		offset = int(s.delay)
		s.delay = 0
		s.state = Playing
		if s.hasTrans {
			s.state = Transitioning
			s.trans.Start = now + m.cfg.FramesToDuration(uint64(offset))
		}
	}

	start := now + m.cfg.FramesToDuration(uint64(offset))
	end := now + m.cfg.FramesToDuration(uint64(frames))

	g0, g1 := s.volume, s.volume
	if s.hasTrans {
		g0 = transition.GainAt(s.trans, start-s.trans.Start)
		g1 = transition.GainAt(s.trans, end-s.trans.Start)
	}

	if n := frames - offset; n > 0 {
		scale := s.spatial * g.volume * m.master
		m.pull(s, out[offset*m.channels:], n, g0*scale, g1*scale)
	}

	if s.hasTrans && !s.state.Terminal() && transition.Done(s.trans, end-s.trans.Start) {
		s.volume = s.trans.Target
		s.hasTrans = false
		switch {
		case s.stopOnDone:
			s.state = Stopped
		case s.state == Transitioning:
			s.state = Playing
		}
	}
}

// pull reads up to frames frames from the slot source and adds them to out,
// ramping the gain linearly from g0 to g1 across the window.
func (m *Mixer) pull(s *slot, out []float32, frames int, g0, g1 float32) {
	ch := m.channels
	step := (g1 - g0) / float32(frames)

	done := 0
	for done < frames {
		want := min(frames-done, m.cfg.FramesPerBuffer)
		n, err := s.src.ReadSamples(m.scratch[:want*ch])
		got := min(n/ch, want)

		if got > 0 {
			s.rewound = false
			src := m.scratch[:got*ch]
			dst := out[done*ch : (done+got)*ch]
			gain := g0 + step*float32(done)
			for f := range got {
				for c := range ch {
					// NaN samples become silence instead of poisoning the sum
					dst[f*ch+c] += utils.ClampSample(src[f*ch+c]) * gain
				}
				gain += step
			}
			done += got
			s.position += uint64(got)
		}

		if err != nil {
			// a looping source that ends right after a rewind is empty
			if errors.Is(err, io.EOF) && s.looping && !s.rewound && s.seeker.SeekFrame(0) == nil {
				s.position = 0
				s.rewound = true
				continue
			}
			s.state = Finished
			return
		}
		if got == 0 {
			// underrun: the rest of the window stays silent
			return
		}
	}
}

// publish stores every slot status and compacts the table in place.
func (m *Mixer) publish() {
	now := m.now()
	live := m.slots[:0]
	for i := range m.slots {
		s := &m.slots[i]

		state := s.state
		if !state.Terminal() && state != Pending && (s.paused || m.groups[s.group].paused) {
			state = Paused
		}
		s.cell.store(state, s.position, s.level(now))

		if !s.state.Terminal() {
			live = append(live, *s)
		}
	}
	clear(m.slots[len(live):])
	m.slots = live
}

// gainOr clamps v to [0, 1], or returns prev when v is NaN.
func gainOr(v, prev float32) float32 {
	switch {
	case v != v:
		return prev
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
