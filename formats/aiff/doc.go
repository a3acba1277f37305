// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff. Big-endian signed PCM at 8, 16,
// 24 and 32 bits is supported with any channel count and sample rate:
//
//	file, _ := os.Open("audio.aif")
//	source, err := aiff.Decoder{}.Decode(file)
//
// go-audio/aiff cannot seek inside the sound data chunk, so SeekFrame reparses
// the header and decodes forward. Looping short AIFF effects is better served
// by loading them with audio.ReadAll first.
package aiff
