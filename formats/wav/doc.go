// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes RIFF/WAVE files on top of
// github.com/go-audio/wav.
//
// # Decoding
//
// Decoder handles 8, 16, 24 and 32-bit integer PCM as well as 32-bit IEEE
// float data, with any channel count and sample rate:
//
//	file, _ := os.Open("audio.wav")
//	source, err := wav.Decoder{}.Decode(file)
//
// The returned source implements audio.Seeker. Seeking rewinds to the data
// chunk and skips forward, so looping a file costs one rewind per loop.
// Inputs that do not implement io.ReadSeeker are read into memory first.
// When the input implements io.Closer it is closed together with the source.
//
// # Encoding
//
// Writer turns interleaved float32 samples into integer PCM:
//
//	w, _ := wav.NewWriter(file, 48000, 2, 16)
//	_ = w.Write(samples)
//	_ = w.Close()
//
// Close patches the chunk sizes and leaves the file open.
package wav
