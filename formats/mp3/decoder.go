// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/utils"
)

// go-mp3 always yields 16-bit little-endian stereo.
const (
	channels      = 2
	bytesPerFrame = 4
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	SampleRate() int
	Length() int64
}

type source struct {
	dec        mp3Reader
	closer     io.Closer
	sampleRate int
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) BufSize() int    { return cap(s.buf) / 2 } // sample capacity, not bytes

// Frames returns the decoded length in frames, or -1 when unknown.
func (s *source) Frames() int64 {
	l := s.dec.Length()
	if l < 0 {
		return -1
	}
	return l / bytesPerFrame
}

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
	if len(dst)%channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	n, err := io.ReadFull(s.dec, s.buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	n -= n % bytesPerFrame
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("mp3: %w", err)
	}

	samples := n / 2
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
		dst[i] = utils.IntToFloat32(int(v), 16)
	}

	return samples, nil
}

// SeekFrame seeks the decoded stream. go-mp3 decodes the preceding MPEG frame
// again so the first samples after the seek are correct.
func (s *source) SeekFrame(frame int64) error {
	if frame < 0 {
		return fmt.Errorf("%w: frame %d", audio.ErrSeekOutOfRange, frame)
	}
	if total := s.Frames(); total >= 0 && frame > total {
		return fmt.Errorf("%w: frame %d of %d", audio.ErrSeekOutOfRange, frame, total)
	}

	if _, err := s.dec.Seek(frame*bytesPerFrame, io.SeekStart); err != nil {
		return fmt.Errorf("mp3: %w", err)
	}
	return nil
}

// Decoder decodes MPEG-1/2 Layer III streams. Output is always stereo.
type Decoder struct{}

// Decode reads the stream header. Inputs that cannot seek are buffered in
// memory so the source stays seekable.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	in := r
	if _, ok := r.(io.ReadSeeker); !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading mp3 data: %w", err)
		}
		in = bytes.NewReader(data)
	}

	dec, err := gomp3.NewDecoder(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}

	s := &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}
	s.closer, _ = r.(io.Closer)

	return s, nil
}
