// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"strconv"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/transition"
)

// IntentKind selects what an Intent does when the mixer applies it.
type IntentKind uint8

const (
	IntentPlay IntentKind = iota + 1
	IntentStop
	IntentSetVolume
	IntentSetLooping
	IntentSetTransition
	IntentFadeOut
	IntentPause
	IntentResume
	IntentSetSpatialGain
	// group and engine wide intents ignore ID
	IntentSetGroupVolume
	IntentSetGroupPaused
	IntentStopGroup
	IntentSetMasterVolume
)

// Intent is a control message for the mixer. It is copied by value through
// the control channel, so sending one never allocates.
//
// Which fields are read depends on Kind:
//
//	IntentPlay            Source, Volume, Looping, Group, DelayFrames, Spatial,
//	                      Transition if HasTransition (a fade in)
//	IntentSetVolume       Volume
//	IntentSetLooping      Looping
//	IntentSetTransition   Transition
//	IntentFadeOut         Transition (its Target is forced to 0)
//	IntentSetSpatialGain  Volume
//	IntentSetGroupVolume  Group, Volume
//	IntentSetGroupPaused  Group, Paused
//	IntentStopGroup       Group
//	IntentSetMasterVolume Volume
type Intent struct {
	Kind IntentKind
	ID   SlotID

	Source        audio.Source
	Volume        float32
	Spatial       float32
	Looping       bool
	Paused        bool
	Group         Group
	DelayFrames   uint64
	Transition    transition.Spec
	HasTransition bool

	cell *statusCell
}

func (k IntentKind) String() string {
	switch k {
	case IntentPlay:
		return "play"
	case IntentStop:
		return "stop"
	case IntentSetVolume:
		return "set_volume"
	case IntentSetLooping:
		return "set_looping"
	case IntentSetTransition:
		return "set_transition"
	case IntentFadeOut:
		return "fade_out"
	case IntentPause:
		return "pause"
	case IntentResume:
		return "resume"
	case IntentSetSpatialGain:
		return "set_spatial_gain"
	case IntentSetGroupVolume:
		return "set_group_volume"
	case IntentSetGroupPaused:
		return "set_group_paused"
	case IntentStopGroup:
		return "stop_group"
	case IntentSetMasterVolume:
		return "set_master_volume"
	default:
		return "intent(" + strconv.Itoa(int(k)) + ")"
	}
}
