// SPDX-License-Identifier: EPL-2.0

// Package audmix is the application facing side of the mixer: one process
// wide engine configured from a settings file, a list of music tracks and a
// list of preloaded sound effects addressed by index.
//
// # Quick Start
//
//	s, err := config.Load("audio.ini")
//	if err != nil {
//		return err
//	}
//	if err := audmix.Init(s); err != nil {
//		return err
//	}
//	defer audmix.Close()
//
//	audmix.PlayOrContinueMusic(0)
//	audmix.PlayEffect(2, spatial.Vec3{12, 0, 3})
//
// Init opens the system audio device through backend.NewOto unless
// WithBackend supplies another backend; backend.Offline renders on demand
// for tests and file bounces.
//
// # Sounds
//
// Effects are decoded once by Init, converted to the output format and kept
// in memory. Every PlayEffect call plays its own copy. Music is streamed from
// disk and decoded ahead of the mixer when the [audio] prefetch setting is
// positive.
//
// Ended sounds keep their slot until Reap is called. Interactive programs
// call Reap from a ticker.
//
// # Decoding
//
// Open, Load and LoadAs pick a decoder by file extension:
//   - WAV (PCM 8/16/24/32-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF via formats/aiff
//
// WithDecoders replaces the registry used by Init.
//
// # Direct control
//
// Engine returns the running *engine.Engine for everything the indexed
// helpers do not cover: per-slot volume and transitions, pause and resume,
// emitter positions and the listener.
package audmix
