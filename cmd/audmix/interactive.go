// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/internal/log"
)

// reapInterval is how often ended slots are released while the shell runs.
const reapInterval = 500 * time.Millisecond

var completer = readline.NewPrefixCompleter(
	readline.PcItem("play"),
	readline.PcItem("effect"),
	readline.PcItem("music", readline.PcItem("stop"), readline.PcItem("pause"), readline.PcItem("resume")),
	readline.PcItem("effects", readline.PcItem("pause"), readline.PcItem("resume")),
	readline.PcItem("stop"),
	readline.PcItem("vol"),
	readline.PcItem("loop"),
	readline.PcItem("fade",
		readline.PcItem("instant"), readline.PcItem("overlap"), readline.PcItem("smooth"), readline.PcItem("out")),
	readline.PcItem("pause"),
	readline.PcItem("resume"),
	readline.PcItem("status"),
	readline.PcItem("listener"),
	readline.PcItem("pos"),
	readline.PcItem("clearpos"),
	readline.PcItem("update"),
	readline.PcItem("master"),
	readline.PcItem("group", readline.PcItem("effect"), readline.PcItem("music")),
	readline.PcItem("stopall"),
	readline.PcItem("help"),
	readline.PcItem("quit"),
)

// interactive plays through the audio device and reads commands until quit,
// end of input or ctx is done. files are started before the prompt opens.
func interactive(ctx context.Context, s config.Settings, files []string) error {
	if err := audmix.Init(s, audmix.WithLogger(log.L())); err != nil {
		return err
	}
	defer func() {
		if err := audmix.Close(); err != nil {
			log.Warn("close", "err", err)
		}
	}()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "audmix> ",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return err
	}

	sh, err := newShell(rl.Stdout())
	if err != nil {
		_ = rl.Close()
		return err
	}
	for _, f := range files {
		if err := sh.exec("play " + f); err != nil {
			log.Warn("play", "file", f, "err", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return sh.run(rl)
	})
	g.Go(func() error {
		return reapLoop(gctx, reapInterval)
	})
	g.Go(func() error {
		// unblocks Readline on a signal
		<-gctx.Done()
		return rl.Close()
	})

	return g.Wait()
}

// run reads lines from rl until quit or end of input.
func (sh *shell) run(rl *readline.Instance) error {
	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if strings.TrimSpace(line) == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		err = sh.exec(line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			sh.printf("error: %v\n", err)
		}
	}
}

// reapLoop releases ended slots every interval until ctx is done.
func reapLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := audmix.Reap()
			if err != nil {
				return err
			}
			if n > 0 {
				log.Debug("reaped", "slots", n)
			}
		}
	}
}
