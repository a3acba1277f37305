// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer converts the channel layout of a source.
//
//   - N -> 1 averages all channels.
//   - 1 -> M duplicates the mono channel.
//   - N -> M with N > M averages input channel c into output c % M.
//   - N -> M with N < M copies input channel o % N into output o.
type ChannelMixer struct {
	src Source
	in  int
	out int
	tmp []float32
}

func NewChannelMixer(src Source, channels int) *ChannelMixer {
	return &ChannelMixer{
		src: src,
		in:  src.Channels(),
		out: channels,
		tmp: make([]float32, 4096),
	}
}

// NewMonoMixer converts src to a single channel.
func NewMonoMixer(src Source) *ChannelMixer {
	return NewChannelMixer(src, 1)
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.out }
func (m *ChannelMixer) BufSize() int    { return m.src.BufSize() }

func (m *ChannelMixer) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *ChannelMixer) SeekFrame(frame int64) error {
	s, ok := m.src.(Seeker)
	if !ok {
		return ErrNotSeekable
	}
	return s.SeekFrame(frame)
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if m.in == m.out {
		return m.src.ReadSamples(dst)
	}
	if len(dst)%m.out != 0 {
		return 0, ErrInvalidDstSize
	}

	frames := len(dst) / m.out
	samplesNeeded := frames * m.in

	// grow only; never shrink to avoid thrashing
	if cap(m.tmp) < samplesNeeded {
		m.tmp = make([]float32, max(samplesNeeded, 8192))
	}
	tmp := m.tmp[:samplesNeeded]

	n, err := m.src.ReadSamples(tmp)
	if n == 0 {
		return 0, err
	}
	frames = n / m.in

	switch {
	case m.out == 1:
		m.downmixMono(dst, tmp, frames)
	case m.in == 1:
		for f := range frames {
			v := tmp[f]
			o := dst[f*m.out : f*m.out+m.out]
			for c := range o {
				o[c] = v
			}
		}
	case m.in > m.out:
		m.downmix(dst, tmp, frames)
	default:
		for f := range frames {
			src := tmp[f*m.in : f*m.in+m.in]
			o := dst[f*m.out : f*m.out+m.out]
			for c := range o {
				o[c] = src[c%m.in]
			}
		}
	}

	return frames * m.out, err
}

func (m *ChannelMixer) downmixMono(dst, tmp []float32, frames int) {
	switch m.in {
	case 2:
		for f := range frames {
			idx := f << 1
			dst[f] = (tmp[idx] + tmp[idx+1]) * 0.5
		}
	default:
		inv := float32(1) / float32(m.in)
		for f := range frames {
			var sum float32
			for _, v := range tmp[f*m.in : f*m.in+m.in] {
				sum += v
			}
			dst[f] = sum * inv
		}
	}
}

func (m *ChannelMixer) downmix(dst, tmp []float32, frames int) {
	for f := range frames {
		src := tmp[f*m.in : f*m.in+m.in]
		o := dst[f*m.out : f*m.out+m.out]
		clear(o)
		for c, v := range src {
			o[c%m.out] += v
		}
		for c := range o {
			// number of input channels folded into output c
			k := m.in / m.out
			if c < m.in%m.out {
				k++
			}
			o[c] /= float32(k)
		}
	}
}
