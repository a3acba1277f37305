// SPDX-License-Identifier: EPL-2.0

// Package transition computes the gain curves used when a playing sound moves
// from one volume to another.
//
// Curves are pure functions of the elapsed time and the transition
// description, so they can be evaluated on the real-time goroutine without
// any state beyond the Spec itself.
package transition

import (
	"fmt"
	"strings"
	"time"

	"github.com/ik5/audmix/utils"
)

// Kind selects the shape of a transition.
type Kind uint8

const (
	// KindInstant jumps to the target volume.
	KindInstant Kind = iota
	// KindOverlap interpolates linearly.
	KindOverlap
	// KindSmooth interpolates with an eased (smoothstep) curve.
	KindSmooth
)

func (k Kind) String() string {
	switch k {
	case KindInstant:
		return "instant"
	case KindOverlap:
		return "overlap"
	case KindSmooth:
		return "smooth"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind parses the names produced by Kind.String, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "instant", "":
		return KindInstant, nil
	case "overlap", "linear":
		return KindOverlap, nil
	case "smooth":
		return KindSmooth, nil
	default:
		return KindInstant, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Spec describes a single transition.
//
// Kind, Duration and Target are chosen by the caller. From and Start are
// filled in by the mixer when the transition is applied to a slot: From is
// the slot volume at that moment and Start the engine clock.
type Spec struct {
	Kind     Kind
	Duration time.Duration
	Target   float32

	From  float32
	Start time.Duration
}

// Instant returns a transition that reaches target within one render call.
func Instant(target float32) Spec {
	return Spec{Kind: KindInstant, Target: target}
}

// Overlap returns a linear transition to target lasting d.
func Overlap(d time.Duration, target float32) Spec {
	return Spec{Kind: KindOverlap, Duration: d, Target: target}
}

// Smooth returns an eased transition to target lasting d.
func Smooth(d time.Duration, target float32) Spec {
	return Spec{Kind: KindSmooth, Duration: d, Target: target}
}

// Validate checks the caller supplied fields.
func (s Spec) Validate() error {
	if s.Duration < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeDuration, s.Duration)
	}
	if s.Target < 0 || s.Target > 1 {
		return fmt.Errorf("%w: %v", ErrTargetOutOfRange, s.Target)
	}
	if s.Kind > KindSmooth {
		return fmt.Errorf("%w: %v", ErrUnknownKind, s.Kind)
	}
	return nil
}

// GainAt returns the gain elapsed after the transition started.
// The result always lies between From and Target, hence in [0,1] for valid
// specs.
func GainAt(s Spec, elapsed time.Duration) float32 {
	if s.Kind == KindInstant || s.Duration <= 0 || elapsed >= s.Duration {
		return s.Target
	}
	if elapsed <= 0 {
		return s.From
	}

	t := float32(float64(elapsed) / float64(s.Duration))
	if s.Kind == KindSmooth {
		t = Smoothstep(t)
	}

	return utils.Lerp(s.From, s.Target, t)
}

// Done reports whether the transition has reached its target after elapsed.
// A zero length transition is done immediately.
func Done(s Spec, elapsed time.Duration) bool {
	return s.Kind == KindInstant || s.Duration <= 0 || elapsed >= s.Duration
}

// Smoothstep maps t in [0,1] onto 3t^2 - 2t^3, clamping outside values.
func Smoothstep(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}
