// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio with github.com/jfreymuth/oggvorbis.
//
//	file, _ := os.Open("theme.ogg")
//	source, err := vorbis.Decoder{}.Decode(file)
//
// Samples are interleaved float32 in [-1, 1] with the file's own channel
// count and rate. Sources implement audio.Seeker; inputs without Seek are
// buffered in memory first.
package vorbis
