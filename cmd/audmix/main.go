// SPDX-License-Identifier: EPL-2.0

// Command audmix plays sounds through the mixer from an interactive shell,
// or renders files through it into a WAV file.
//
//	audmix -config audio.ini
//	audmix -config audio.ini -render mix.wav -duration 30s intro.ogg steps.wav
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/internal/log"
)

func main() {
	if err := run(); err != nil {
		log.Error("audmix", "err", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "settings file (INI); built in defaults when empty")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	renderPath := flag.String("render", "", "render the given files into this WAV file instead of playing")
	duration := flag.Duration("duration", 10*time.Second, "length of the rendered file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [file ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log.Init(*logLevel)

	s, err := loadSettings(*configPath)
	if err != nil {
		return err
	}

	if *renderPath != "" {
		return render(s, *renderPath, *duration, flag.Args())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return interactive(ctx, s, flag.Args())
}

func loadSettings(path string) (config.Settings, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
