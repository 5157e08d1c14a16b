package config

import "sync"

// External sink contracts. Each sink is optional; absent sinks are no-ops.

// UpscalerSink receives the runtime upscaler toggle.
type UpscalerSink interface {
	SetEnabled(enabled bool)
}

// TrafficSink receives the runtime traffic multiplier.
type TrafficSink interface {
	SetMultiplier(mult float64)
}

// LogSink receives the runtime log level.
type LogSink interface {
	SetLevel(name string)
}

// Appliers is the registry of runtime consumers broadcast to by
// ApplyRuntime. Registration and application are safe from any goroutine.
type Appliers struct {
	mu       sync.RWMutex
	upscaler UpscalerSink
	traffic  TrafficSink
	log      LogSink
}

// NewAppliers returns an empty registry.
func NewAppliers() *Appliers { return &Appliers{} }

// RegisterUpscaler installs (or clears) the upscaler sink.
func (a *Appliers) RegisterUpscaler(s UpscalerSink) {
	a.mu.Lock()
	a.upscaler = s
	a.mu.Unlock()
}

// RegisterTraffic installs (or clears) the traffic sink.
func (a *Appliers) RegisterTraffic(s TrafficSink) {
	a.mu.Lock()
	a.traffic = s
	a.mu.Unlock()
}

// RegisterLog installs (or clears) the log sink.
func (a *Appliers) RegisterLog(s LogSink) {
	a.mu.Lock()
	a.log = s
	a.mu.Unlock()
}

// Apply pushes the snapshot's runtime effects to every registered sink.
// Idempotent and callable from any thread.
func (a *Appliers) Apply(snap Snapshot) {
	a.mu.RLock()
	upscaler, traffic, log := a.upscaler, a.traffic, a.log
	a.mu.RUnlock()
	if upscaler != nil {
		upscaler.SetEnabled(snap.UpscalerEnabled)
	}
	if traffic != nil {
		traffic.SetMultiplier(snap.TrafficBoost)
	}
	if log != nil {
		log.SetLevel(snap.LogLevel)
	}
}
