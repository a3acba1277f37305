// SPDX-License-Identifier: EPL-2.0

// Package engine mixes any number of sources into one interleaved float32
// stream and lets other goroutines control them while it plays.
//
// # Threads
//
// Render runs on the audio device's callback goroutine. It never blocks,
// locks, allocates or logs. Everything else (Play, Stop, SetVolume and the
// rest) may be called from any goroutine. Control calls do not touch the
// mixer: they validate their arguments, mint or look up a SlotID and queue
// an Intent on a bounded lock-free channel. Render drains the channel at the
// start of every call, so a change is heard at the next callback.
//
// A full channel makes the call fail with ErrBackpressure instead of waiting.
//
// # Slots
//
// Every Play returns a SlotID that is valid at once. Its Status moves
// through
//
//	Pending -> Playing <-> Transitioning -> Stopped | Finished
//
// and reports Paused while the slot or its group is paused. Stopped and
// Finished are terminal; control calls on a terminal slot fail with
// ErrNotFound. Reap forgets terminal slots and closes their sources.
//
// # Gain
//
// The gain of a slot is the product of its volume (or the current value of
// its transition), its spatial gain, its group volume and the master
// volume. Transitions are timed in output frames and ramp per frame within
// a render call.
//
// # Music
//
// PlayMusic keeps one current track in the music group and replaces it
// following the music transition: instant, overlap (cross fade) or smooth
// (fade out, then fade in).
//
// # Spatial
//
// Slots played with positions have their gain computed from the listener
// and the distance model. The gain is recomputed only by UpdateSpatial or
// UpdateAllSpatial.
package engine
