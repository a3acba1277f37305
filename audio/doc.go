// SPDX-License-Identifier: EPL-2.0

// Package audio provides the frame sources consumed by the mixing engine and
// the adapters that bring a decoded stream into the engine's format.
//
// # Source Interface
//
// Every decoder and processor implements Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// ReadSamples returns interleaved float32 values in [-1, 1]. (0, io.EOF)
// marks the end of the stream and (0, nil) means no data is ready yet.
// Sources that can reposition themselves also implement Seeker.
//
// # Adapters
//
//   - Resampler changes the sample rate using cubic interpolation.
//   - ChannelMixer changes the channel layout (NewMonoMixer for mono).
//   - Conform chains the two to reach a target format.
//   - Memory holds a fully decoded stream and reads without allocating.
//   - Prefetcher decodes on a background goroutine so reads never block.
//
// A typical chain for the engine is decoder -> Conform -> Prefetcher for
// long streams and decoder -> ReadAll -> Memory for short effects.
//
// # Format Registry
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	src, err := registry.Decode("wav", file)
package audio
