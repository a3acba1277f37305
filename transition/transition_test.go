// SPDX-License-Identifier: EPL-2.0

package transition

import (
	"errors"
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestGainAt_Instant(t *testing.T) {
	t.Parallel()

	spec := Instant(0.7)
	spec.From = 0.1

	for _, elapsed := range []time.Duration{0, time.Nanosecond, time.Millisecond, time.Hour} {
		if got := GainAt(spec, elapsed); got != 0.7 {
			t.Errorf("GainAt(Instant, %v) = %v, want 0.7", elapsed, got)
		}
		if !Done(spec, elapsed) {
			t.Errorf("Done(Instant, %v) = false, want true", elapsed)
		}
	}
}

func TestGainAt_Endpoints(t *testing.T) {
	t.Parallel()

	const d = 100 * time.Millisecond

	tests := []struct {
		name string
		spec Spec
	}{
		{"overlap up", Spec{Kind: KindOverlap, Duration: d, From: 0.0, Target: 1.0}},
		{"overlap down", Spec{Kind: KindOverlap, Duration: d, From: 0.8, Target: 0.2}},
		{"smooth up", Spec{Kind: KindSmooth, Duration: d, From: 0.25, Target: 0.75}},
		{"smooth down", Spec{Kind: KindSmooth, Duration: d, From: 1.0, Target: 0.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := GainAt(tt.spec, 0); got != tt.spec.From {
				t.Errorf("GainAt(0) = %v, want From=%v", got, tt.spec.From)
			}
			if got := GainAt(tt.spec, d); got != tt.spec.Target {
				t.Errorf("GainAt(d) = %v, want Target=%v", got, tt.spec.Target)
			}
			if got := GainAt(tt.spec, 2*d); got != tt.spec.Target {
				t.Errorf("GainAt(2d) = %v, want Target=%v", got, tt.spec.Target)
			}
			if Done(tt.spec, d-time.Nanosecond) {
				t.Error("Done() before duration = true, want false")
			}
			if !Done(tt.spec, d) {
				t.Error("Done() at duration = false, want true")
			}
		})
	}
}

func TestGainAt_OverlapIsLinear(t *testing.T) {
	t.Parallel()

	spec := Spec{Kind: KindOverlap, Duration: time.Second, From: 0, Target: 1}

	tests := []struct {
		elapsed time.Duration
		want    float32
	}{
		{250 * time.Millisecond, 0.25},
		{500 * time.Millisecond, 0.5},
		{750 * time.Millisecond, 0.75},
	}

	for _, tt := range tests {
		if got := GainAt(spec, tt.elapsed); !almostEqual(got, tt.want) {
			t.Errorf("GainAt(%v) = %v, want %v", tt.elapsed, got, tt.want)
		}
	}
}

func TestGainAt_SmoothIsEased(t *testing.T) {
	t.Parallel()

	spec := Spec{Kind: KindSmooth, Duration: time.Second, From: 0, Target: 1}

	// symmetric around the midpoint, slower than linear at the start
	if got := GainAt(spec, 500*time.Millisecond); !almostEqual(got, 0.5) {
		t.Errorf("GainAt(mid) = %v, want 0.5", got)
	}
	if got := GainAt(spec, 100*time.Millisecond); got >= 0.1 {
		t.Errorf("GainAt(10%%) = %v, want < 0.1 for an eased curve", got)
	}
	if got := GainAt(spec, 900*time.Millisecond); got <= 0.9 {
		t.Errorf("GainAt(90%%) = %v, want > 0.9 for an eased curve", got)
	}
}

func TestGainAt_Monotonic(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{KindOverlap, KindSmooth} {
		up := Spec{Kind: kind, Duration: time.Second, From: 0.1, Target: 0.9}
		down := Spec{Kind: kind, Duration: time.Second, From: 0.9, Target: 0.1}

		prevUp, prevDown := GainAt(up, 0), GainAt(down, 0)
		for ms := 1; ms <= 1000; ms++ {
			elapsed := time.Duration(ms) * time.Millisecond

			gUp := GainAt(up, elapsed)
			if gUp < prevUp {
				t.Fatalf("%v up: GainAt(%v) = %v decreased from %v", kind, elapsed, gUp, prevUp)
			}
			prevUp = gUp

			gDown := GainAt(down, elapsed)
			if gDown > prevDown {
				t.Fatalf("%v down: GainAt(%v) = %v increased from %v", kind, elapsed, gDown, prevDown)
			}
			prevDown = gDown
		}
	}
}

func TestGainAt_ZeroDurationIsInstant(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{KindOverlap, KindSmooth} {
		spec := Spec{Kind: kind, Duration: 0, From: 0.2, Target: 0.6}
		if got := GainAt(spec, 0); got != 0.6 {
			t.Errorf("%v: GainAt(0) with zero duration = %v, want 0.6", kind, got)
		}
		if !Done(spec, 0) {
			t.Errorf("%v: Done(0) with zero duration = false, want true", kind)
		}
	}
}

func TestSpec_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    Spec
		wantErr error
	}{
		{"instant ok", Instant(1), nil},
		{"overlap ok", Overlap(time.Second, 0), nil},
		{"smooth zero duration ok", Smooth(0, 0.5), nil},
		{"negative duration", Overlap(-time.Millisecond, 0.5), ErrNegativeDuration},
		{"target above one", Smooth(time.Second, 1.5), ErrTargetOutOfRange},
		{"target below zero", Instant(-0.1), ErrTargetOutOfRange},
		{"unknown kind", Spec{Kind: Kind(42)}, ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.spec.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"instant", KindInstant, false},
		{"", KindInstant, false},
		{"Overlap", KindOverlap, false},
		{" smooth ", KindSmooth, false},
		{"linear", KindOverlap, false},
		{"crossfade", KindInstant, true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSmoothstep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want float32
	}{
		{-1, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{2, 1},
	}

	for _, tt := range tests {
		if got := Smoothstep(tt.in); !almostEqual(got, tt.want) {
			t.Errorf("Smoothstep(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGainAt_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	spec := Smooth(time.Second, 1)
	allocs := testing.AllocsPerRun(1000, func() {
		_ = GainAt(spec, 300*time.Millisecond)
	})
	if allocs > 0 {
		t.Errorf("GainAt allocated %v times, want 0", allocs)
	}
}

func BenchmarkGainAt(b *testing.B) {
	spec := Smooth(time.Second, 1)
	var g float32

	b.ResetTimer()
	b.ReportAllocs()

	for i := range b.N {
		g = GainAt(spec, time.Duration(i%1000)*time.Millisecond)
	}
	_ = g
}
