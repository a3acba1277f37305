// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/spatial"
)

type entry struct {
	src      audio.Source
	cell     *statusCell
	group    Group
	seekable bool

	// positional entries take their spatial gain from positions
	positional bool
	positions  []spatial.Vec3
}

// Registry is the control side bookkeeping of slots: it mints ids, checks
// them before intents are queued, and closes sources once the mixer is done
// with them. It is never touched by the render goroutine.
type Registry struct {
	mu      sync.Mutex
	ch      *Channel
	next    SlotID
	entries map[SlotID]*entry
}

func NewRegistry(ch *Channel) *Registry {
	return &Registry{
		ch:      ch,
		entries: make(map[SlotID]*entry),
	}
}

// Create mints an id for play.Source and queues the play intent. Kind, ID
// and the status cell of play are filled in here. The id is valid as soon
// as Create returns, before the mixer has seen the slot. On backpressure the
// id is burned and nothing is recorded.
//
// A non-nil positions makes the slot positional, see AddPositions.
func (r *Registry) Create(play Intent, seekable bool, positions []spatial.Vec3) (SlotID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	id := r.next

	play.Kind = IntentPlay
	play.ID = id
	play.cell = newStatusCell(id)
	play.cell.store(Pending, 0, play.Volume)

	if err := r.ch.Send(play); err != nil {
		return 0, err
	}

	r.entries[id] = &entry{
		src:        play.Source,
		cell:       play.cell,
		group:      play.Group,
		seekable:   seekable,
		positional: positions != nil,
		positions:  slices.Clone(positions),
	}

	return id, nil
}

// lookup returns the entry of a live slot. r.mu must be held.
func (r *Registry) lookup(id SlotID) (*entry, error) {
	e, ok := r.entries[id]
	if !ok || e.cell.load().State.Terminal() {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return e, nil
}

// Send queues in for slot id.
func (r *Registry) Send(id SlotID, in Intent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	if in.Kind == IntentSetLooping && in.Looping && !e.seekable {
		return fmt.Errorf("%w: slot %d", ErrNotSeekable, id)
	}

	in.ID = id
	return r.ch.Send(in)
}

// Broadcast queues an intent that is not addressed to a slot, such as a
// group volume change.
func (r *Registry) Broadcast(in Intent) error {
	return r.ch.Send(in)
}

// Status returns the latest status published for id. Terminal statuses stay
// visible until RemoveOnFinished drops the slot.
func (r *Registry) Status(id SlotID) (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return Status{}, false
	}
	return e.cell.load(), true
}

// Len returns the number of slots with bookkeeping.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// Live returns the ids of every slot that has not ended, in ascending order.
func (r *Registry) Live() []SlotID {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]SlotID, 0, len(r.entries))
	for id, e := range r.entries {
		if !e.cell.load().State.Terminal() {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// RemoveOnFinished drops every slot whose terminal status was published and
// closes its source. It returns how many slots were removed.
func (r *Registry) RemoveOnFinished() (int, error) {
	r.mu.Lock()
	var done []audio.Source
	for id, e := range r.entries {
		if e.cell.load().State.Terminal() {
			done = append(done, e.src)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	var errs []error
	for _, src := range done {
		if err := src.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return len(done), errors.Join(errs...)
}

// AddPositions appends emitter positions to slot id and makes it positional.
func (r *Registry) AddPositions(id SlotID, positions ...spatial.Vec3) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	e.positional = true
	e.positions = append(e.positions, positions...)
	return nil
}

// ClearPositions removes every position of slot id. The slot stays
// positional, so its next spatial update silences it.
func (r *Registry) ClearPositions(id SlotID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	e.positions = e.positions[:0]
	return nil
}

// ClearAllPositions clears the positions of every slot.
func (r *Registry) ClearAllPositions() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		e.positions = e.positions[:0]
	}
}

// Positions returns a copy of the positions of slot id and whether the slot
// is positional.
func (r *Registry) Positions(id SlotID) ([]spatial.Vec3, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(id)
	if err != nil {
		return nil, false, err
	}
	return slices.Clone(e.positions), e.positional, nil
}

// Positional returns a copy of the positions of every live positional slot.
func (r *Registry) Positional() map[SlotID][]spatial.Vec3 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[SlotID][]spatial.Vec3)
	for id, e := range r.entries {
		if e.positional && !e.cell.load().State.Terminal() {
			out[id] = slices.Clone(e.positions)
		}
	}
	return out
}

// Close closes the source of every slot still recorded and forgets them.
// The render goroutine must no longer be running.
func (r *Registry) Close() error {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[SlotID]*entry)
	r.mu.Unlock()

	var errs []error
	for _, id := range slices.Sorted(maps.Keys(entries)) {
		if err := entries[id].src.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close slot %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
