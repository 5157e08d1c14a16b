package curves

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLissajousKnownPoints(t *testing.T) {
	// t=0 with no phase: both components start at 0.
	p := Lissajous(0, 1, 1, 1, 2, 0)
	if !near(p.X, 0) || !near(p.Y, 0) {
		t.Fatalf("origin expected, got %+v", p)
	}
	// Quarter period of the x oscillator peaks at ax.
	p = Lissajous(0.25, 3, 1, 1, 2, 0)
	if !near(p.X, 3) {
		t.Fatalf("x peak expected 3, got %v", p.X)
	}
	// Phase shifts x only.
	a := Lissajous(0.1, 1, 1, 1, 1, 0)
	b := Lissajous(0.1, 1, 1, 1, 1, math.Pi/2)
	if near(a.X, b.X) {
		t.Fatal("phase must shift x")
	}
	if !near(a.Y, b.Y) {
		t.Fatal("phase must not affect y")
	}
}

func TestLissajousPeriodicity(t *testing.T) {
	a := Lissajous(0.3, 2, 1, 3, 2, 0.5)
	b := Lissajous(1.3, 2, 1, 3, 2, 0.5)
	if !near(a.X, b.X) || !near(a.Y, b.Y) {
		t.Fatalf("unit period expected: %+v vs %+v", a, b)
	}
}

func TestBernoulliKnownPoints(t *testing.T) {
	// t=0: sin=0, cos=1 -> (a, 0).
	p := Bernoulli(0, 2)
	if !near(p.X, 2) || !near(p.Y, 0) {
		t.Fatalf("(2,0) expected, got %+v", p)
	}
	// t=0.25: cos=0 -> origin crossing.
	p = Bernoulli(0.25, 2)
	if !near(p.X, 0) || !near(p.Y, 0) {
		t.Fatalf("origin expected, got %+v", p)
	}
}

func TestBernoulliSymmetry(t *testing.T) {
	// The lemniscate is symmetric under t -> 1-t with y negated.
	a := Bernoulli(0.1, 1.5)
	b := Bernoulli(0.9, 1.5)
	if !near(a.X, b.X) || !near(a.Y, -b.Y) {
		t.Fatalf("symmetry broken: %+v vs %+v", a, b)
	}
}
