package telemetry

import (
	"strings"
	"sync"
	"testing"
)

func TestPushAndSnapshotOrder(t *testing.T) {
	r := NewRing(8, nil)
	r.Push(Event{Name: "first"})
	r.Push(Event{Name: "second"})
	r.Push(Event{Name: "third"})
	events := r.Snapshot(0)
	if len(events) != 3 {
		t.Fatalf("snapshot len %d", len(events))
	}
	for i, want := range []string{"first", "second", "third"} {
		if events[i].Name != want {
			t.Fatalf("order broken: %v", events)
		}
	}
	if events[0].Seq != 1 || events[2].Seq != 3 {
		t.Fatalf("sequence stamps wrong: %v", events)
	}
	if events[0].Time.IsZero() {
		t.Fatal("push must stamp time")
	}
}

func TestOverflowEvictsOldest(t *testing.T) {
	r := NewRing(3, nil)
	for i := 0; i < 5; i++ {
		r.Push(Event{Name: string(rune('a' + i))})
	}
	events := r.Snapshot(0)
	if len(events) != 3 || events[0].Name != "c" || events[2].Name != "e" {
		t.Fatalf("eviction wrong: %v", events)
	}
	pushed, evicted := r.Counters()
	if pushed != 5 || evicted != 2 {
		t.Fatalf("counters pushed=%d evicted=%d", pushed, evicted)
	}
}

func TestSnapshotMax(t *testing.T) {
	r := NewRing(10, nil)
	for i := 0; i < 6; i++ {
		r.Push(Event{A: float64(i)})
	}
	events := r.Snapshot(2)
	if len(events) != 2 || events[0].A != 4 || events[1].A != 5 {
		t.Fatalf("snapshot(2) = %v", events)
	}
}

func TestTableRendersRows(t *testing.T) {
	r := NewRing(4, nil)
	r.Push(Event{Name: "frame", A: 1.5, Tag: "hot"})
	out := r.Table(0, "perf")
	if !strings.Contains(out, "== perf ==") || !strings.Contains(out, "frame") || !strings.Contains(out, "hot") {
		t.Fatalf("table:\n%s", out)
	}
	if !strings.Contains(out, "(1 shown)") {
		t.Fatalf("row count missing:\n%s", out)
	}
}

func TestConcurrentPush(t *testing.T) {
	r := NewRing(64, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Push(Event{Name: "n"})
			}
		}()
	}
	wg.Wait()
	pushed, _ := r.Counters()
	if pushed != 800 {
		t.Fatalf("pushed %d", pushed)
	}
	if r.Len() != 64 {
		t.Fatalf("retained %d", r.Len())
	}
}
