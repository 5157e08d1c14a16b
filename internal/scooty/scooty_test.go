package scooty

import (
	"math"
	"strings"
	"testing"
)

func TestBumpAndTailOrder(t *testing.T) {
	r := New(4)
	for _, v := range []float64{1, 2, 3} {
		r.Bump(v)
	}
	got := r.Tail(0)
	want := []float64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("tail %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tail order %v", got)
		}
	}
}

func TestOverflowEvictsOldest(t *testing.T) {
	r := New(3)
	for v := 1.0; v <= 5; v++ {
		r.Bump(v)
	}
	got := r.Tail(0)
	want := []float64{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("after overflow: %v", got)
		}
	}
	if r.Len() != 3 {
		t.Fatalf("len %d", r.Len())
	}
}

func TestTailSubset(t *testing.T) {
	r := New(8)
	for v := 1.0; v <= 6; v++ {
		r.Bump(v)
	}
	got := r.Tail(2)
	if len(got) != 2 || got[0] != 5 || got[1] != 6 {
		t.Fatalf("tail(2) = %v", got)
	}
	if got := r.Tail(100); len(got) != 6 {
		t.Fatalf("oversized n should return all, got %d", len(got))
	}
}

func TestSnapshotStats(t *testing.T) {
	r := New(16)
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		r.Bump(v)
	}
	s := r.Snapshot()
	if s.Count != 8 || s.Min != 2 || s.Max != 9 || s.Last != 9 {
		t.Fatalf("stats %+v", s)
	}
	if math.Abs(s.Mean-5) > 1e-12 {
		t.Fatalf("mean %v", s.Mean)
	}
	if math.Abs(s.StdDev-2) > 1e-12 {
		t.Fatalf("stddev %v", s.StdDev)
	}
}

func TestEmptySnapshot(t *testing.T) {
	r := New(4)
	if s := r.Snapshot(); s != (Stats{}) {
		t.Fatalf("empty stats %+v", s)
	}
	if !strings.Contains(r.FramedText(0), "(empty)") {
		t.Fatal("framed text should mark empty rings")
	}
}

func TestNonFiniteDropped(t *testing.T) {
	r := New(4)
	r.Bump(math.NaN())
	r.Bump(math.Inf(1))
	r.Bump(1)
	if r.Len() != 1 {
		t.Fatalf("non-finite samples must be dropped, len %d", r.Len())
	}
}

func TestFramedTextShape(t *testing.T) {
	r := New(4)
	r.Bump(1.5)
	r.Bump(2.5)
	out := r.FramedText(2)
	if !strings.HasPrefix(out, "+---") || !strings.Contains(out, "1.500000") {
		t.Fatalf("framed text:\n%s", out)
	}
}
