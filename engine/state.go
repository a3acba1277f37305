// SPDX-License-Identifier: EPL-2.0

package engine

import "fmt"

// SlotID identifies one playing sound. Ids start at 1 and are never reused by
// an engine; the zero value never names a slot.
type SlotID uint64

// State is the lifecycle stage of a slot.
type State uint8

const (
	// Pending slots are queued for the mixer or waiting out a start delay.
	Pending State = iota
	Playing
	Paused
	// Transitioning slots are playing while their gain moves to a new target.
	Transitioning
	// Stopped is terminal: a stop or a completed fade out ended the slot.
	Stopped
	// Finished is terminal: the source ended, failed or there was no room
	// in the mixer.
	Finished
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Transitioning:
		return "transitioning"
	case Stopped:
		return "stopped"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Terminal reports whether no further intent can affect the slot.
func (s State) Terminal() bool {
	return s == Stopped || s == Finished
}

// Group is a mixing bus. Every slot belongs to exactly one group and its
// output is scaled by the group volume and the master volume.
type Group uint8

const (
	GroupEffect Group = iota
	GroupMusic

	numGroups
)

func (g Group) String() string {
	switch g {
	case GroupEffect:
		return "effect"
	case GroupMusic:
		return "music"
	default:
		return fmt.Sprintf("group(%d)", uint8(g))
	}
}

func (g Group) valid() bool { return g < numGroups }
