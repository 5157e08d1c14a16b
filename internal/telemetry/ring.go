// Package telemetry keeps a bounded in-memory ring of diagnostic events
// exposed through the telem.* operations.
package telemetry

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/OliviaAI-TGDK/MirrorBlade/internal/metrics"
)

// DefaultLimit bounds the ring when no limit is configured.
const DefaultLimit = 512

// Event is one telemetry record.
type Event struct {
	Seq  uint64    `json:"seq"`
	Time time.Time `json:"time"`
	Name string    `json:"name"`
	A    float64   `json:"a"`
	B    float64   `json:"b"`
	C    float64   `json:"c"`
	Tag  string    `json:"tag,omitempty"`
}

// Ring is a bounded FIFO of events; the oldest event is evicted on
// overflow. Push assigns a monotonic sequence number so consumers can
// detect eviction gaps.
type Ring struct {
	mu     sync.Mutex
	events []Event
	start  int
	count  int
	seq    uint64

	pushed  uint64
	evicted uint64

	rec metrics.Recorder
}

// NewRing builds a ring with the given capacity (DefaultLimit when <= 0).
func NewRing(limit int, rec metrics.Recorder) *Ring {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if rec == nil {
		rec = metrics.Nop()
	}
	return &Ring{events: make([]Event, limit), rec: rec}
}

// Push appends an event, stamping sequence and time when unset.
func (r *Ring) Push(ev Event) {
	r.mu.Lock()
	r.seq++
	ev.Seq = r.seq
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	evicted := false
	if r.count < len(r.events) {
		r.events[(r.start+r.count)%len(r.events)] = ev
		r.count++
	} else {
		r.events[r.start] = ev
		r.start = (r.start + 1) % len(r.events)
		evicted = true
	}
	r.pushed++
	if evicted {
		r.evicted++
	}
	r.mu.Unlock()

	r.rec.EventPushed(evicted)
}

// Len reports the retained event count.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Counters returns lifetime pushed/evicted totals.
func (r *Ring) Counters() (pushed, evicted uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pushed, r.evicted
}

// Snapshot returns the most recent max events in chronological order.
// max <= 0 yields everything retained.
func (r *Ring) Snapshot(max int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.count
	if max > 0 && max < n {
		n = max
	}
	out := make([]Event, n)
	first := r.count - n
	for i := 0; i < n; i++ {
		out[i] = r.events[(r.start+first+i)%len(r.events)]
	}
	return out
}

// Table renders the most recent max events as a fixed-width text table.
func (r *Ring) Table(max int, title string) string {
	events := r.Snapshot(max)
	if title == "" {
		title = "telemetry"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", title)
	fmt.Fprintf(&b, "%-6s %-24s %12s %12s %12s  %s\n", "seq", "name", "a", "b", "c", "tag")
	for _, ev := range events {
		fmt.Fprintf(&b, "%-6d %-24s %12.4f %12.4f %12.4f  %s\n", ev.Seq, ev.Name, ev.A, ev.B, ev.C, ev.Tag)
	}
	fmt.Fprintf(&b, "(%d shown)\n", len(events))
	return b.String()
}
