// SPDX-License-Identifier: EPL-2.0

package audmix_test

import (
	"fmt"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/config"
)

func Example() {
	s := config.Default()
	s.Audio.SampleRate = 8000
	s.Audio.Channels = 1
	s.Audio.Period = 4

	out, _ := backend.NewOffline(8000, 1, 4)
	if err := audmix.Init(s, audmix.WithBackend(out)); err != nil {
		fmt.Println(err)
		return
	}
	defer audmix.Close()

	eng, _ := audmix.Engine()
	_, _ = eng.Play(audio.NewMemory(8000, 1, []float32{1, 1, 1, 1}), 1, false)

	// global volume 0.5, effect volume 0.5
	buf, _ := out.Pump()
	fmt.Println(buf)
	// Output: [0.25 0.25 0.25 0.25]
}
