// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG Layer III audio with github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit stereo, so every source from this package
// reports two channels regardless of the file's layout:
//
//	file, _ := os.Open("music.mp3")
//	source, err := mp3.Decoder{}.Decode(file)
//
// Sources implement audio.Seeker. Seeking is sample accurate because go-mp3
// re-decodes the MPEG frame preceding the target. Inputs without Seek are
// read into memory first so that looping works for every source.
package mp3
