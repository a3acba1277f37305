// SPDX-License-Identifier: EPL-2.0

// Package spatial turns listener and emitter positions into a gain factor.
//
// Gains are computed on control goroutines and handed to the mixer as plain
// numbers; nothing in this package is used by the real-time render path.
package spatial

import (
	"fmt"
	"math"
	"strings"
)

// Vec3 is a position in world units.
type Vec3 [3]float32

// Distance returns the euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float32 {
	var sum float64
	for i := range v {
		d := float64(v[i] - o[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}

// Falloff selects how gain decreases between Near and Far.
type Falloff uint8

const (
	// Linear: 1 - (d-near)/(far-near).
	Linear Falloff = iota
	// Pow2: (1 - (d-near)/(far-near))^2.
	Pow2
)

func (f Falloff) String() string {
	switch f {
	case Linear:
		return "linear"
	case Pow2:
		return "pow2"
	default:
		return fmt.Sprintf("falloff(%d)", uint8(f))
	}
}

// ParseFalloff parses "linear" or "pow2".
func ParseFalloff(s string) (Falloff, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "":
		return Linear, nil
	case "pow2", "square":
		return Pow2, nil
	default:
		return Linear, fmt.Errorf("%w: %q", ErrUnknownFalloff, s)
	}
}

// Model maps a distance to a gain in [0,1]. Emitters closer than Near play
// at full gain, emitters beyond Far are silent.
type Model struct {
	Falloff Falloff
	Near    float32
	Far     float32
}

// DefaultModel is a linear falloff from 10 to 110 units.
var DefaultModel = Model{Falloff: Linear, Near: 10, Far: 110}

// Validate checks that the model describes a usable range.
func (m Model) Validate() error {
	if m.Near < 0 || m.Far < m.Near {
		return fmt.Errorf("%w: near=%v far=%v", ErrInvalidRange, m.Near, m.Far)
	}
	if m.Falloff > Pow2 {
		return fmt.Errorf("%w: %v", ErrUnknownFalloff, m.Falloff)
	}
	return nil
}

// Gain returns the gain of an emitter at pos heard from listener.
func (m Model) Gain(pos, listener Vec3) float32 {
	d := pos.Distance(listener)

	switch {
	case d <= m.Near:
		return 1
	case d > m.Far:
		return 0
	}

	g := 1 - (d-m.Near)/(m.Far-m.Near)
	if m.Falloff == Pow2 {
		g *= g
	}
	return g
}

// Sum adds the gains of every position and caps the result at 1.
// An empty slice yields 0.
func (m Model) Sum(positions []Vec3, listener Vec3) float32 {
	var total float32
	for _, p := range positions {
		total += m.Gain(p, listener)
		if total >= 1 {
			return 1
		}
	}
	return total
}
