// Package jitter produces deterministic low-discrepancy camera jitter from
// the Halton(2,3) sequence. The index advances by one per frame; the same
// index always yields the same offset.
package jitter

import "sync"

// Params are the jitter controls. Values are clamped on ingest.
type Params struct {
	Enabled  bool    `json:"enabled"`
	Strength float64 `json:"strength"`
}

// Jitter owns a Halton(2,3) cursor.
type Jitter struct {
	mu       sync.Mutex
	index    uint64
	enabled  bool
	strength float64
}

// New returns a jitter source at index 0 with strength 1.
func New() *Jitter {
	return &Jitter{enabled: true, strength: 1}
}

// Configure applies params, clamping strength to >= 0.
func (j *Jitter) Configure(p Params) {
	if p.Strength < 0 {
		p.Strength = 0
	}
	j.mu.Lock()
	j.enabled = p.Enabled
	j.strength = p.Strength
	j.mu.Unlock()
}

// Params returns the current controls.
func (j *Jitter) Params() Params {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Params{Enabled: j.enabled, Strength: j.strength}
}

// Advance moves the sequence cursor one step. dt is accepted for interface
// symmetry with the other per-frame evaluators; the sequence is frame
// indexed, not time indexed.
func (j *Jitter) Advance(dt float64) {
	j.mu.Lock()
	j.index++
	j.mu.Unlock()
}

// Reset rewinds the cursor to index 0.
func (j *Jitter) Reset() {
	j.mu.Lock()
	j.index = 0
	j.mu.Unlock()
}

// Index returns the current sequence position.
func (j *Jitter) Index() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.index
}

// Current returns the centered jitter offset: Halton(2,3) shifted to
// [-0.5, 0.5] and scaled by strength. Disabled sources return (0, 0).
func (j *Jitter) Current() (x, y float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.enabled {
		return 0, 0
	}
	return (Halton(j.index, 2) - 0.5) * j.strength,
		(Halton(j.index, 3) - 0.5) * j.strength
}

// Halton returns the radical inverse of i+1 in the given base, in (0, 1).
// The +1 skips the degenerate zero sample so index 0 is already non-zero.
func Halton(i uint64, base uint64) float64 {
	n := i + 1
	f := 1.0
	r := 0.0
	for n > 0 {
		f /= float64(base)
		r += f * float64(n%base)
		n /= base
	}
	return r
}
