// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/utils"
)

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source wraps go-audio aiff.Decoder to implement audio.Source
type source struct {
	dec        aiffReader
	reopen     func() (aiffReader, error) // fresh decoder positioned at frame 0
	closer     io.Closer
	sampleRate int
	channels   int
	bitDepth   int
	buf        goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }

func (s *source) BufSize() int {
	if c := cap(s.buf.Data); c > 0 {
		return c
	}
	return 4096
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
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	n, err := s.read(len(dst))
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("aiff: %w", err)
	}

	// AIFF samples are signed at every depth, 8-bit included.
	for i, v := range s.buf.Data[:n] {
		dst[i] = utils.IntToFloat32(v, s.bitDepth)
	}

	return n, nil
}

// read decodes up to size samples into s.buf, trimmed to whole frames.
func (s *source) read(size int) (int, error) {
	if cap(s.buf.Data) < size {
		s.buf.Data = make([]int, size)
	}
	s.buf.Data = s.buf.Data[:size]

	n, err := s.dec.PCMBuffer(&s.buf)
	n -= n % s.channels
	return n, err
}

// SeekFrame reparses the header and decodes forward to frame. go-audio/aiff
// has no random access, so the cost grows with the distance from the start.
func (s *source) SeekFrame(frame int64) error {
	if frame < 0 {
		return fmt.Errorf("%w: frame %d", audio.ErrSeekOutOfRange, frame)
	}
	if s.reopen == nil {
		return audio.ErrNotSeekable
	}

	dec, err := s.reopen()
	if err != nil {
		return fmt.Errorf("aiff: %w", err)
	}
	s.dec = dec

	remaining := frame * int64(s.channels)
	for remaining > 0 {
		n, err := s.read(int(min(remaining, int64(s.BufSize()))))
		if n == 0 {
			if err == nil || errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: frame %d", audio.ErrSeekOutOfRange, frame)
			}
			return fmt.Errorf("aiff: %w", err)
		}
		remaining -= int64(n)
	}
	return nil
}

// Decoder decodes AIFF files holding 8, 16, 24 or 32-bit PCM.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec, err := open(rs)
	if err != nil {
		return nil, err
	}

	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 || format.SampleRate <= 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	s := &source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   int(dec.BitDepth),
		buf:        goaudio.IntBuffer{Format: format, Data: make([]int, 4096)},
		reopen: func() (aiffReader, error) {
			if _, err := rs.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}
			return open(rs)
		},
	}
	s.closer, _ = r.(io.Closer)

	return s, nil
}

func open(rs io.ReadSeeker) (*aiff.Decoder, error) {
	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()
	return dec, nil
}
