package fold

import (
	"math"
	"testing"
)

func TestEmptyFieldIsIdentity(t *testing.T) {
	f := New()
	for _, x := range []float64{-10, -0.5, 0, 3.25, 99} {
		if got := f.Evaluate(x); got != x {
			t.Fatalf("Evaluate(%v) = %v on empty field", x, got)
		}
	}
}

func TestDisabledCreasesAreIdentity(t *testing.T) {
	f := New()
	if err := f.SetCrease(Crease{Name: "a", Position: 0, Radius: 1, Gain: 1, Enabled: false}); err != nil {
		t.Fatal(err)
	}
	if got := f.Evaluate(0.5); got != 0.5 {
		t.Fatalf("disabled crease must not act, got %v", got)
	}
}

func TestKernelBoundaries(t *testing.T) {
	for _, k := range []Kernel{KernelLinear, KernelSmooth, KernelCosine, KernelHermite} {
		if got := k.eval(0); math.Abs(got-1) > 1e-12 {
			t.Fatalf("%s: K(0) = %v, want 1", k, got)
		}
		if got := k.eval(1); got != 0 {
			t.Fatalf("%s: K(1) = %v, want 0", k, got)
		}
		if got := k.eval(1.5); got != 0 {
			t.Fatalf("%s: K(1.5) = %v, want 0", k, got)
		}
	}
}

func TestNoEffectAtRadius(t *testing.T) {
	f := New()
	_ = f.SetCrease(Crease{Name: "a", Position: 0, Radius: 2, Gain: 1, Enabled: true})
	// |x - pos| == radius: kernel is 0, the value passes unchanged.
	if got := f.Evaluate(2); got != 2 {
		t.Fatalf("at the radius boundary the field must be identity, got %v", got)
	}
	if got := f.Evaluate(-2); got != -2 {
		t.Fatalf("at -radius the field must be identity, got %v", got)
	}
}

func TestUnitGainSnapsAtCenterDistanceZero(t *testing.T) {
	f := New()
	_ = f.SetCrease(Crease{Name: "a", Position: 3, Radius: 1, Gain: 1, Enabled: true})
	// K(0)=1 and gain 1 pulls fully onto the crease position.
	if got := f.Evaluate(3); got != 3 {
		t.Fatalf("Evaluate(pos) = %v", got)
	}
}

func TestPullTowardPosition(t *testing.T) {
	f := New()
	_ = f.SetCrease(Crease{Name: "a", Position: 0, Radius: 2, Gain: 0.5, Enabled: true})
	x := 1.0
	y := f.Evaluate(x)
	if !(math.Abs(y) < math.Abs(x)) {
		t.Fatalf("crease must pull toward position: %v -> %v", x, y)
	}
	// linear kernel: t=0.5, K=0.5, y = 1 + 0.5*0.5*(0-1) = 0.75
	if math.Abs(y-0.75) > 1e-12 {
		t.Fatalf("y = %v, want 0.75", y)
	}
}

func TestPriorityOrderMatters(t *testing.T) {
	// A configuration where application order genuinely diverges:
	f1 := New()
	_ = f1.SetCrease(Crease{Name: "a", Position: 2, Radius: 4, Gain: 1, Priority: 0, Enabled: true})
	_ = f1.SetCrease(Crease{Name: "b", Position: -2, Radius: 1, Gain: 1, Priority: 1, Enabled: true})
	f2 := New()
	_ = f2.SetCrease(Crease{Name: "a", Position: 2, Radius: 4, Gain: 1, Priority: 1, Enabled: true})
	_ = f2.SetCrease(Crease{Name: "b", Position: -2, Radius: 1, Gain: 1, Priority: 0, Enabled: true})
	if f1.Evaluate(-1.5) == f2.Evaluate(-1.5) {
		t.Fatal("priority order should change the composition here")
	}
}

func TestNameTiebreak(t *testing.T) {
	f := New()
	_ = f.SetCrease(Crease{Name: "b", Position: 1, Radius: 1, Gain: 1, Priority: 0, Enabled: true})
	_ = f.SetCrease(Crease{Name: "a", Position: 0, Radius: 1, Gain: 1, Priority: 0, Enabled: true})
	ordered := f.ordered()
	if ordered[0].Name != "a" || ordered[1].Name != "b" {
		t.Fatalf("tiebreak order: %v", ordered)
	}
}

func TestDerivativeMatchesNumeric(t *testing.T) {
	f := New()
	_ = f.SetCrease(Crease{Name: "a", Position: 1, Radius: 3, Gain: 0.4, Enabled: true, Kernel: KernelSmooth})
	_ = f.SetCrease(Crease{Name: "b", Position: -1, Radius: 2, Gain: 0.3, Priority: 1, Enabled: true, Kernel: KernelCosine})
	const h = 1e-6
	for _, x := range []float64{-2.5, -0.3, 0.7, 1.9, 3.5} {
		numeric := (f.Evaluate(x+h) - f.Evaluate(x-h)) / (2 * h)
		analytic := f.Derivative(x)
		if math.Abs(numeric-analytic) > 1e-4 {
			t.Fatalf("x=%v: numeric %v vs analytic %v", x, numeric, analytic)
		}
	}
}

func TestEvaluateMany(t *testing.T) {
	f := New()
	_ = f.SetCrease(Crease{Name: "a", Position: 0, Radius: 2, Gain: 0.5, Enabled: true})
	xs := []float64{-3, -1, 0, 1, 3}
	got := f.EvaluateMany(xs)
	for i, x := range xs {
		if want := f.Evaluate(x); got[i] != want {
			t.Fatalf("bulk[%d] = %v, want %v", i, got[i], want)
		}
	}
}

func TestValidation(t *testing.T) {
	f := New()
	if err := f.SetCrease(Crease{Name: "", Radius: 1}); err == nil {
		t.Fatal("empty name must fail")
	}
	if err := f.SetCrease(Crease{Name: "a", Radius: 0}); err == nil {
		t.Fatal("zero radius must fail")
	}
	if err := f.SetCrease(Crease{Name: "a", Radius: 1, Kernel: "mystery"}); err == nil {
		t.Fatal("unknown kernel must fail")
	}
}

func TestJSONConfigureSnapshotRoundTrip(t *testing.T) {
	f := New()
	doc := `{"creases":[{"name":"a","position":1,"radius":2,"gain":0.5,"priority":3,"enabled":true,"kernel":"hermite"}]}`
	if err := f.ConfigureJSON([]byte(doc)); err != nil {
		t.Fatal(err)
	}
	out, err := f.SnapshotJSON()
	if err != nil {
		t.Fatal(err)
	}
	g := New()
	if err := g.ConfigureJSON(out); err != nil {
		t.Fatal(err)
	}
	if g.Evaluate(1.5) != f.Evaluate(1.5) {
		t.Fatal("round-tripped field differs")
	}
}

func TestConfigureJSONRejectsAndKeeps(t *testing.T) {
	f := New()
	_ = f.SetCrease(Crease{Name: "keep", Position: 0, Radius: 1, Gain: 1, Enabled: true})
	if err := f.ConfigureJSON([]byte(`{"creases":[{"name":"x","radius":0}]}`)); err == nil {
		t.Fatal("invalid crease must fail")
	}
	if len(f.Snapshot()) != 1 {
		t.Fatal("failed configure must keep the existing set")
	}
}
