// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	// ErrNotFound is returned for ids that were never issued or whose slot
	// already stopped or finished.
	ErrNotFound = errors.New("slot not found")

	// ErrBackpressure is returned when the control channel is full. The
	// intent was not queued; callers retry later or drop it.
	ErrBackpressure = errors.New("control channel full")

	// ErrChannelClosed is returned once the engine has been closed.
	ErrChannelClosed = errors.New("control channel closed")

	// ErrNotSeekable is returned when looping is requested for a source that
	// cannot seek back to its start.
	ErrNotSeekable = errors.New("source is not seekable")

	// ErrInvalidConfig wraps every Config validation failure.
	ErrInvalidConfig = errors.New("invalid engine config")

	// ErrInvalidVolume is returned for volumes outside [0, 1].
	ErrInvalidVolume = errors.New("volume out of range [0, 1]")

	// ErrUnknownGroup is returned for group values other than GroupMusic and
	// GroupEffect.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrInaudible is returned by PlayAt when the position is beyond the
	// reach of the distance model. The source is closed and no slot is used.
	ErrInaudible = errors.New("position is out of hearing range")
)
