// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/engine"
	"github.com/ik5/audmix/spatial"
	"github.com/ik5/audmix/transition"
)

var (
	errQuit    = errors.New("quit")
	errUsage   = errors.New("usage")
	errCommand = errors.New("unknown command")
)

type command struct {
	usage string
	run   func(sh *shell, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"play":     {"play <file> [volume] [loop]", (*shell).play},
		"effect":   {"effect <index> [x y z]", (*shell).effect},
		"music":    {"music <index>|stop|pause|resume", (*shell).music},
		"effects":  {"effects pause|resume", (*shell).effects},
		"stop":     {"stop <id>", (*shell).stop},
		"vol":      {"vol <id> <volume>", (*shell).volume},
		"loop":     {"loop <id> on|off", (*shell).loop},
		"fade":     {"fade <id> instant|overlap|smooth <duration> <target> | fade <id> out <duration>", (*shell).fade},
		"pause":    {"pause <id>", (*shell).pause},
		"resume":   {"resume <id>", (*shell).resume},
		"status":   {"status [id]", (*shell).status},
		"listener": {"listener <x> <y> <z>", (*shell).listener},
		"pos":      {"pos <id> <x> <y> <z>", (*shell).pos},
		"clearpos": {"clearpos <id>", (*shell).clearpos},
		"update":   {"update [id]", (*shell).update},
		"master":   {"master <volume>", (*shell).master},
		"group":    {"group effect|music <volume>", (*shell).group},
		"stopall":  {"stopall", (*shell).stopall},
		"help":     {"help", (*shell).help},
		"quit":     {"quit", func(*shell, []string) error { return errQuit }},
	}
}

// shell runs control commands against the running engine.
type shell struct {
	eng *engine.Engine
	out io.Writer
}

func newShell(out io.Writer) (*shell, error) {
	eng, err := audmix.Engine()
	if err != nil {
		return nil, err
	}
	return &shell{eng: eng, out: out}, nil
}

func (sh *shell) printf(format string, args ...any) {
	fmt.Fprintf(sh.out, format, args...)
}

// exec runs one command line. Blank lines do nothing.
func (sh *shell) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd, ok := commands[strings.ToLower(fields[0])]
	if !ok {
		return fmt.Errorf("%w: %s", errCommand, fields[0])
	}

	err := cmd.run(sh, fields[1:])
	if errors.Is(err, errUsage) {
		return fmt.Errorf("%w: %s", errUsage, cmd.usage)
	}
	return err
}

func (sh *shell) play(args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return errUsage
	}

	volume := float32(1)
	if len(args) > 1 {
		v, err := parseVolume(args[1])
		if err != nil {
			return err
		}
		volume = v
	}
	looping := len(args) > 2 && args[2] == "loop"

	src, err := audmix.Open(args[0])
	if err != nil {
		return err
	}
	id, err := sh.eng.Play(src, volume, looping)
	if err != nil {
		return err
	}
	sh.printf("slot %d\n", id)
	return nil
}

func (sh *shell) effect(args []string) error {
	var (
		id  engine.SlotID
		err error
	)
	switch len(args) {
	case 1:
		index, perr := strconv.Atoi(args[0])
		if perr != nil {
			return errUsage
		}
		id, err = audmix.PlayEffectOnListener(index)
	case 4:
		index, perr := strconv.Atoi(args[0])
		if perr != nil {
			return errUsage
		}
		pos, perr := parseVec(args[1:])
		if perr != nil {
			return perr
		}
		id, err = audmix.PlayEffect(index, pos)
	default:
		return errUsage
	}
	if err != nil {
		return err
	}

	sh.printf("slot %d\n", id)
	return nil
}

func (sh *shell) music(args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	switch args[0] {
	case "stop":
		return audmix.StopMusic()
	case "pause":
		return sh.eng.PauseMusic()
	case "resume":
		return sh.eng.ResumeMusic()
	}

	index, err := strconv.Atoi(args[0])
	if err != nil {
		return errUsage
	}
	id, err := audmix.PlayOrContinueMusic(index)
	if err != nil {
		return err
	}
	sh.printf("slot %d\n", id)
	return nil
}

func (sh *shell) effects(args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	switch args[0] {
	case "pause":
		return audmix.PauseEffects()
	case "resume":
		return audmix.ResumeEffects()
	default:
		return errUsage
	}
}

func (sh *shell) stop(args []string) error {
	return sh.withID(args, sh.eng.Stop)
}

func (sh *shell) pause(args []string) error {
	return sh.withID(args, sh.eng.Pause)
}

func (sh *shell) resume(args []string) error {
	return sh.withID(args, sh.eng.Resume)
}

func (sh *shell) clearpos(args []string) error {
	return sh.withID(args, sh.eng.ClearPositions)
}

func (sh *shell) withID(args []string, fn func(engine.SlotID) error) error {
	if len(args) != 1 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return fn(id)
}

func (sh *shell) volume(args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	v, err := parseVolume(args[1])
	if err != nil {
		return err
	}
	return sh.eng.SetVolume(id, v)
}

func (sh *shell) loop(args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var on bool
	switch args[1] {
	case "on":
		on = true
	case "off":
	default:
		return errUsage
	}
	return sh.eng.SetLooping(id, on)
}

func (sh *shell) fade(args []string) error {
	if len(args) < 3 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	d, err := time.ParseDuration(args[2])
	if err != nil {
		return fmt.Errorf("duration: %w", err)
	}

	if args[1] == "out" {
		if len(args) != 3 {
			return errUsage
		}
		return sh.eng.FadeOut(id, d)
	}

	if len(args) != 4 {
		return errUsage
	}
	kind, err := transition.ParseKind(args[1])
	if err != nil {
		return err
	}
	target, err := parseVolume(args[3])
	if err != nil {
		return err
	}
	return sh.eng.SetTransition(id, transition.Spec{Kind: kind, Duration: d, Target: target})
}

func (sh *shell) status(args []string) error {
	ids := sh.eng.Live()
	if len(args) == 1 {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ids = []engine.SlotID{id}
	} else if len(args) > 1 {
		return errUsage
	}

	cfg := sh.eng.Config()
	for _, id := range ids {
		st, ok := sh.eng.Status(id)
		if !ok {
			return fmt.Errorf("%w: %d", engine.ErrNotFound, id)
		}
		sh.printf("%d\t%s\t%.2f\t%v\n", st.ID, st.State, st.Volume,
			cfg.FramesToDuration(st.Position).Round(time.Millisecond))
	}
	if name, id, ok := sh.eng.CurrentMusic(); ok {
		sh.printf("music\t%d\t%s\n", id, name)
	}
	if sh.eng.GroupPaused(engine.GroupEffect) {
		sh.printf("effects paused\n")
	}
	return nil
}

func (sh *shell) listener(args []string) error {
	pos, err := parseVec(args)
	if err != nil {
		return err
	}
	sh.eng.SetListener(pos)
	return nil
}

func (sh *shell) pos(args []string) error {
	if len(args) != 4 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	pos, err := parseVec(args[1:])
	if err != nil {
		return err
	}
	return sh.eng.AddPosition(id, pos)
}

func (sh *shell) update(args []string) error {
	switch len(args) {
	case 0:
		return sh.eng.UpdateAllSpatial()
	case 1:
		return sh.withID(args, sh.eng.UpdateSpatial)
	default:
		return errUsage
	}
}

func (sh *shell) master(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	v, err := parseVolume(args[0])
	if err != nil {
		return err
	}
	return audmix.SetGlobalVolume(v)
}

func (sh *shell) group(args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	v, err := parseVolume(args[1])
	if err != nil {
		return err
	}

	switch args[0] {
	case engine.GroupEffect.String():
		return audmix.SetEffectVolume(v)
	case engine.GroupMusic.String():
		return audmix.SetMusicVolume(v)
	default:
		return errUsage
	}
}

func (sh *shell) stopall([]string) error {
	return audmix.StopAllEffects()
}

func (sh *shell) help([]string) error {
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		sh.printf("  %s\n", commands[name].usage)
	}
	return nil
}

func parseID(s string) (engine.SlotID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("slot id %q: %w", s, err)
	}
	return engine.SlotID(n), nil
}

func parseVolume(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("volume %q: %w", s, err)
	}
	return float32(v), nil
}

func parseVec(args []string) (spatial.Vec3, error) {
	var v spatial.Vec3
	if len(args) != len(v) {
		return v, errUsage
	}
	for i, s := range args {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return v, fmt.Errorf("coordinate %q: %w", s, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}
