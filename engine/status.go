// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"
	"sync/atomic"
)

// Status is the mixer's view of a slot after the most recent render call.
type Status struct {
	ID       SlotID
	State    State
	Position uint64 // frames played since the start or the last loop
	Volume   float32
}

// statusCell publishes the latest Status of one slot. The mixer is the only
// writer; any goroutine may read. It is a sequence lock: the writer makes seq
// odd while it updates the fields, and readers retry until they observe the
// same even seq before and after reading. Fields are atomics so readers
// never race with the writer.
type statusCell struct {
	seq      atomic.Uint64
	id       SlotID
	state    atomic.Uint32
	position atomic.Uint64
	volume   atomic.Uint32
}

func newStatusCell(id SlotID) *statusCell {
	c := &statusCell{id: id}
	c.state.Store(uint32(Pending))
	return c
}

func (c *statusCell) store(state State, position uint64, volume float32) {
	c.seq.Add(1)
	c.state.Store(uint32(state))
	c.position.Store(position)
	c.volume.Store(math.Float32bits(volume))
	c.seq.Add(1)
}

func (c *statusCell) load() Status {
	for {
		before := c.seq.Load()
		if before&1 != 0 {
			continue
		}

		st := Status{
			ID:       c.id,
			State:    State(c.state.Load()),
			Position: c.position.Load(),
			Volume:   math.Float32frombits(c.volume.Load()),
		}

		if c.seq.Load() == before {
			return st
		}
	}
}
