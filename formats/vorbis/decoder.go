// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audmix/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read returns the number of values decoded, a multiple of Channels().
	Read([]float32) (int, error)
	SetPosition(pos int64) error
	Length() int64
}

type source struct {
	dec        oggReader
	closer     io.Closer
	sampleRate int
	channels   int
	pending    error // error that arrived together with data
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }

// BufSize is the preferred read size in samples. oggvorbis decodes straight
// into the caller's slice, so the source keeps no buffer of its own.
func (s *source) BufSize() int { return 4096 }

// Frames returns the stream length, or -1 if the container did not tell.
func (s *source) Frames() int64 {
	if l := s.dec.Length(); l > 0 {
		return l
	}
	return -1
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
	if s.pending != nil {
		err := s.pending
		s.pending = nil
		return 0, err
	}

	n, err := s.dec.Read(dst)
	n -= n % s.channels
	if err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("vorbis: %w", err)
	}
	if n > 0 {
		s.pending = err
		return n, nil
	}
	if err == nil {
		// header or empty packet, nothing decoded yet
		return 0, nil
	}
	return 0, err
}

func (s *source) SeekFrame(frame int64) error {
	if frame < 0 {
		return fmt.Errorf("%w: frame %d", audio.ErrSeekOutOfRange, frame)
	}
	if total := s.Frames(); total >= 0 && frame > total {
		return fmt.Errorf("%w: frame %d of %d", audio.ErrSeekOutOfRange, frame, total)
	}
	if err := s.dec.SetPosition(frame); err != nil {
		return fmt.Errorf("vorbis: %w", err)
	}
	s.pending = nil
	return nil
}

// Decoder decodes Ogg Vorbis streams.
type Decoder struct{}

// Decode reads the three Vorbis headers. Readers that cannot seek are
// buffered in memory, since oggvorbis needs io.Seeker for SetPosition.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	in := r
	if _, ok := r.(io.ReadSeeker); !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading vorbis data: %w", err)
		}
		in = bytes.NewReader(data)
	}

	dec, err := oggvorbis.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotVorbisFile, err)
	}
	if dec.Channels() <= 0 || dec.SampleRate() <= 0 {
		return nil, ErrNotVorbisFile
	}

	s := &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}
	s.closer, _ = r.(io.Closer)

	return s, nil
}
