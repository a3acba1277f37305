// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/utils"
)

const (
	formatPCM   = 1
	formatFloat = 3
)

// pcmReader is the subset of gowav.Decoder used by source, so tests can
// inject a fake.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
	Rewind() error
}

type source struct {
	dec        pcmReader
	skip       io.Reader // PCM payload, used to skip frames after Rewind
	closer     io.Closer
	sampleRate int
	channels   int
	bitDepth   int
	float      bool
	frames     int64
	buf        goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return cap(s.buf.Data) }

// Frames returns the stream length in frames.
func (s *source) Frames() int64 { return s.frames }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	if cap(s.buf.Data) < len(dst) {
		s.buf.Data = make([]int, len(dst))
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(&s.buf)
	if err != nil {
		return 0, fmt.Errorf("wav: %w", err)
	}
	n -= n % s.channels
	if n == 0 {
		return 0, io.EOF
	}

	data := s.buf.Data[:n]
	switch {
	case s.float:
		for i, v := range data {
			dst[i] = utils.ClampSample(math.Float32frombits(uint32(int32(v))))
		}
	case s.bitDepth == 8:
		// 8-bit WAV is unsigned
		for i, v := range data {
			dst[i] = utils.IntToFloat32(v-128, 8)
		}
	default:
		for i, v := range data {
			dst[i] = utils.IntToFloat32(v, s.bitDepth)
		}
	}

	return n, nil
}

// SeekFrame rewinds to the data chunk and skips forward to frame.
func (s *source) SeekFrame(frame int64) error {
	if frame < 0 || (s.frames > 0 && frame > s.frames) {
		return fmt.Errorf("%w: frame %d of %d", audio.ErrSeekOutOfRange, frame, s.frames)
	}
	if err := s.dec.Rewind(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	if frame == 0 {
		return nil
	}

	skip := frame * int64(s.channels) * int64(s.bitDepth/8)
	if _, err := io.CopyN(io.Discard, s.skip, skip); err != nil {
		return fmt.Errorf("wav: skip %d frames: %w", frame, err)
	}
	return nil
}

// Decoder decodes RIFF/WAVE files holding 8, 16, 24 or 32-bit integer PCM,
// or 32-bit IEEE float samples.
type Decoder struct{}

// Decode parses the header and positions the stream at the first sample.
// Readers that cannot seek are buffered in memory. If r is an io.Closer it is
// closed with the source.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	dec.ReadInfo()
	if dec.Err() != nil || dec.NumChans == 0 {
		return nil, ErrNotWavFile
	}

	s := &source{
		dec:        dec,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		bitDepth:   int(dec.BitDepth),
		buf:        goaudio.IntBuffer{Data: make([]int, 4096)},
	}
	s.closer, _ = r.(io.Closer)

	switch {
	case dec.WavAudioFormat == formatFloat && s.bitDepth == 32:
		s.float = true
	case dec.WavAudioFormat != formatPCM:
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}
	switch s.bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, s.bitDepth)
	}

	if err := dec.FwdToPCM(); err != nil || dec.PCMChunk == nil {
		return nil, ErrNoPCMData
	}
	s.skip = pcmPayload{dec}
	s.frames = dec.PCMLen() / int64(s.channels*s.bitDepth/8)

	return s, nil
}

// pcmPayload reads the current data chunk of dec; Rewind replaces the chunk.
type pcmPayload struct {
	dec *gowav.Decoder
}

func (p pcmPayload) Read(b []byte) (int, error) {
	return p.dec.PCMChunk.R.Read(b)
}
