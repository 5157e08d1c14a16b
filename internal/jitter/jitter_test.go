package jitter

import (
	"math"
	"testing"
)

func TestHaltonFirstSamples(t *testing.T) {
	// Base 2: 1/2, 1/4, 3/4, 1/8 ...
	want2 := []float64{0.5, 0.25, 0.75, 0.125}
	for i, w := range want2 {
		if got := Halton(uint64(i), 2); math.Abs(got-w) > 1e-12 {
			t.Fatalf("Halton(%d,2) = %v, want %v", i, got, w)
		}
	}
	// Base 3: 1/3, 2/3, 1/9 ...
	want3 := []float64{1.0 / 3, 2.0 / 3, 1.0 / 9}
	for i, w := range want3 {
		if got := Halton(uint64(i), 3); math.Abs(got-w) > 1e-12 {
			t.Fatalf("Halton(%d,3) = %v, want %v", i, got, w)
		}
	}
}

func TestIndexZeroNonZero(t *testing.T) {
	j := New()
	x, y := j.Current()
	if x == 0 && y == 0 {
		t.Fatal("index 0 must not be the origin")
	}
}

func TestDeterministicSequence(t *testing.T) {
	a := New()
	b := New()
	for i := 0; i < 64; i++ {
		ax, ay := a.Current()
		bx, by := b.Current()
		if ax != bx || ay != by {
			t.Fatalf("divergence at %d", i)
		}
		a.Advance(1.0 / 60)
		b.Advance(1.0 / 60)
	}
	if a.Index() != 64 {
		t.Fatalf("index = %d, want 64", a.Index())
	}
}

func TestCenteredAndScaled(t *testing.T) {
	j := New()
	j.Configure(Params{Enabled: true, Strength: 2})
	for i := 0; i < 256; i++ {
		x, y := j.Current()
		if x < -1 || x > 1 || y < -1 || y > 1 {
			t.Fatalf("sample %d outside [-0.5,0.5]*strength: (%v,%v)", i, x, y)
		}
		j.Advance(0)
	}
}

func TestDisabledAndClamped(t *testing.T) {
	j := New()
	j.Configure(Params{Enabled: false, Strength: 1})
	if x, y := j.Current(); x != 0 || y != 0 {
		t.Fatal("disabled jitter must be zero")
	}
	j.Configure(Params{Enabled: true, Strength: -5})
	if p := j.Params(); p.Strength != 0 {
		t.Fatalf("negative strength must clamp to 0, got %v", p.Strength)
	}
}

func TestReset(t *testing.T) {
	j := New()
	x0, y0 := j.Current()
	j.Advance(0)
	j.Advance(0)
	j.Reset()
	x, y := j.Current()
	if x != x0 || y != y0 {
		t.Fatal("reset must rewind to index 0")
	}
}
