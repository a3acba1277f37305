// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// Conform adapts src to the given sample rate and channel count. The source
// is returned unchanged when it already matches.
//
// Channel reduction runs before resampling and channel expansion after it,
// so the resampler always works on the smaller layout.
func Conform(src Source, sampleRate, channels int) (Source, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: target %d Hz, %d channels", ErrUnsupportedConversion, sampleRate, channels)
	}
	if src.SampleRate() <= 0 || src.Channels() <= 0 {
		return nil, fmt.Errorf("%w: source %d Hz, %d channels",
			ErrUnsupportedConversion, src.SampleRate(), src.Channels())
	}

	out := src
	if out.Channels() > channels {
		out = NewChannelMixer(out, channels)
	}
	if out.SampleRate() != sampleRate {
		out = NewResampler(out, sampleRate)
	}
	if out.Channels() < channels {
		out = NewChannelMixer(out, channels)
	}

	return out, nil
}
