// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/internal/log"
)

// render mixes files, or the first music track when there are none, into a
// 16-bit WAV file at path lasting d. The output has the sample rate and
// channel count of s, so a single file is simply converted.
func render(s config.Settings, path string, d time.Duration, files []string) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}

	// rendering runs faster than real time; a prefetch ring would underrun
	s.Audio.Prefetch = 0

	out, err := backend.NewOffline(s.Audio.SampleRate, s.Audio.Channels, s.Audio.Period)
	if err != nil {
		return err
	}
	if err := audmix.Init(s, audmix.WithBackend(out), audmix.WithLogger(log.L())); err != nil {
		return err
	}
	defer func() {
		if err := audmix.Close(); err != nil {
			log.Warn("close", "err", err)
		}
	}()

	if err := start(files, len(s.Music.Tracks) > 0); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	frames, err := out.Bounce(f, d)
	if err := errors.Join(err, f.Close()); err != nil {
		return err
	}

	log.Info("rendered", "path", path, "frames", frames,
		"sample_rate", s.Audio.SampleRate, "channels", s.Audio.Channels)
	return nil
}

func start(files []string, music bool) error {
	eng, err := audmix.Engine()
	if err != nil {
		return err
	}

	if len(files) == 0 {
		if !music {
			return errors.New("nothing to render: no files and no music tracks")
		}
		_, err := audmix.PlayMusic(0)
		return err
	}

	for _, path := range files {
		src, err := audmix.Open(path)
		if err != nil {
			return err
		}
		id, err := eng.Play(src, 1, false)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		log.Debug("render", "file", path, "slot", id)
	}
	return nil
}
