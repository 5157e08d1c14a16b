package impound

import "testing"

func TestLiteralMatch(t *testing.T) {
	s := New()
	s.AddLiteral("v_sport2_quadra_type66")
	if !s.IsImpounded("v_sport2_quadra_type66") {
		t.Fatal("literal must match")
	}
	if s.IsImpounded("v_sport2_quadra_type67") {
		t.Fatal("near-literal must not match")
	}
}

func TestGlobStar(t *testing.T) {
	s := New()
	if err := s.AddRule("v_police_*"); err != nil {
		t.Fatalf("rule: %v", err)
	}
	for _, name := range []string{"v_police_", "v_police_cruiser", "v_police_av_unit"} {
		if !s.IsImpounded(name) {
			t.Fatalf("%q should match (star spans any length incl. empty)", name)
		}
	}
	if s.IsImpounded("v_civilian_sedan") {
		t.Fatal("unrelated name matched")
	}
}

func TestGlobQuestion(t *testing.T) {
	s := New()
	if err := s.AddRule("unit_?"); err != nil {
		t.Fatalf("rule: %v", err)
	}
	if !s.IsImpounded("unit_7") {
		t.Fatal("? must match exactly one char")
	}
	if s.IsImpounded("unit_") || s.IsImpounded("unit_77") {
		t.Fatal("? must match exactly one char, not zero or two")
	}
}

func TestRemoveAndClear(t *testing.T) {
	s := New()
	s.AddLiteral("bad")
	_ = s.AddRule("worse_*")
	s.Remove("bad")
	if s.IsImpounded("bad") {
		t.Fatal("removed literal still matches")
	}
	s.Clear()
	if s.IsImpounded("worse_one") {
		t.Fatal("cleared rules still match")
	}
}

func TestSnapshotSorted(t *testing.T) {
	s := New()
	s.AddLiteral("zeta")
	s.AddLiteral("alpha")
	_ = s.AddRule("m_*")
	lits, rules := s.Snapshot()
	if len(lits) != 2 || lits[0] != "alpha" || len(rules) != 1 {
		t.Fatalf("snapshot: %v %v", lits, rules)
	}
}

func TestEmptyServiceMatchesNothing(t *testing.T) {
	s := New()
	if s.IsImpounded("anything") {
		t.Fatal("empty service must match nothing")
	}
}
