// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/ik5/audmix/spatial"
)

// Spatial gain is never computed by the mixer. Positions and the listener
// live on the control side and a slot's gain changes only when
// UpdateSpatial or UpdateAllSpatial sends it.

// SetListener moves the listener. Playing slots keep their gain until the
// next update.
func (e *Engine) SetListener(pos spatial.Vec3) {
	e.mu.Lock()
	e.listener = pos
	e.mu.Unlock()
}

// Listener returns the listener position.
func (e *Engine) Listener() spatial.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.listener
}

// SetDistanceModel replaces the model used by later gain computations.
func (e *Engine) SetDistanceModel(m spatial.Model) error {
	if err := m.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	e.model = m
	e.mu.Unlock()

	return nil
}

// DistanceModel returns the current distance model.
func (e *Engine) DistanceModel() spatial.Model {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.model
}

// AddPosition adds an emitter position to a slot and makes it positional.
func (e *Engine) AddPosition(id SlotID, pos spatial.Vec3) error {
	return e.reg.AddPositions(id, pos)
}

// AddPositions adds several emitter positions to a slot.
func (e *Engine) AddPositions(id SlotID, positions ...spatial.Vec3) error {
	return e.reg.AddPositions(id, positions...)
}

// AddPositionsForAll adds positions to several slots. Every slot is tried;
// the returned error joins the failures.
func (e *Engine) AddPositionsForAll(all map[SlotID][]spatial.Vec3) error {
	var errs []error
	for _, id := range slices.Sorted(maps.Keys(all)) {
		if err := e.reg.AddPositions(id, all[id]...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ClearPositions removes every position of a slot.
func (e *Engine) ClearPositions(id SlotID) error {
	return e.reg.ClearPositions(id)
}

// ClearAllPositions removes the positions of every slot.
func (e *Engine) ClearAllPositions() {
	e.reg.ClearAllPositions()
}

// UpdateSpatial recomputes the gain of a positional slot from its positions
// and the listener and sends it to the mixer. Slots that are not positional
// are left alone.
func (e *Engine) UpdateSpatial(id SlotID) error {
	positions, positional, err := e.reg.Positions(id)
	if err != nil || !positional {
		return err
	}

	return e.send(id, Intent{Kind: IntentSetSpatialGain, Volume: e.spatialGain(positions)})
}

// UpdateAllSpatial runs UpdateSpatial for every positional slot. Slots that
// ended meanwhile are skipped; other failures are joined.
func (e *Engine) UpdateAllSpatial() error {
	all := e.reg.Positional()

	var errs []error
	for _, id := range slices.Sorted(maps.Keys(all)) {
		err := e.send(id, Intent{Kind: IntentSetSpatialGain, Volume: e.spatialGain(all[id])})
		if err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, fmt.Errorf("slot %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) spatialGain(positions []spatial.Vec3) float32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.model.Sum(positions, e.listener)
}
