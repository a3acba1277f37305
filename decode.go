// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/aiff"
	"github.com/ik5/audmix/formats/mp3"
	"github.com/ik5/audmix/formats/vorbis"
	"github.com/ik5/audmix/formats/wav"
)

// DefaultDecoders returns a registry with every bundled format, keyed by
// file extension.
func DefaultDecoders() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})

	return reg
}

// Format returns the registry key for path: its extension, lower case and
// without the dot.
func Format(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Open decodes path with DefaultDecoders. The returned source owns the
// file and closes it on Close.
func Open(path string) (audio.Source, error) {
	return OpenWith(DefaultDecoders(), path)
}

// OpenWith decodes path with the decoder reg has for its extension.
func OpenWith(reg *audio.Registry, path string) (audio.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	src, err := reg.Decode(Format(path), f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return src, nil
}

// Load decodes the whole of path into memory in its own format.
func Load(path string) (*audio.Memory, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	return audio.ReadAll(src)
}

// LoadAs decodes the whole of path into memory, converted to sampleRate and
// channels. Short effects are loaded this way once and cloned for each play
// so the mixer never converts them.
func LoadAs(reg *audio.Registry, path string, sampleRate, channels int) (*audio.Memory, error) {
	src, err := OpenWith(reg, path)
	if err != nil {
		return nil, err
	}

	conformed, err := audio.Conform(src, sampleRate, channels)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	mem, err := audio.ReadAll(conformed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mem, nil
}
