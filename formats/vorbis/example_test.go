// SPDX-License-Identifier: EPL-2.0

package vorbis_test

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/vorbis"
)

// ExampleDecoder_Decode loads a short effect fully into memory.
func ExampleDecoder_Decode() {
	f, err := os.Open("input.ogg")
	if err != nil {
		log.Println(err)
		return
	}

	src, err := vorbis.Decoder{}.Decode(f)
	if err != nil {
		log.Println(err)
		return
	}

	mem, err := audio.ReadAll(src) // closes src and f
	if err != nil {
		log.Println(err)
		return
	}

	fmt.Printf("%d frames at %d Hz\n", mem.Frames(), mem.SampleRate())
}

// ExampleDecoder_Decode_errorHandling shows the error for undecodable input.
func ExampleDecoder_Decode_errorHandling() {
	_, err := vorbis.Decoder{}.Decode(bytes.NewReader([]byte("not an ogg file")))
	fmt.Println(errors.Is(err, vorbis.ErrNotVorbisFile))
	// Output:
	// true
}
