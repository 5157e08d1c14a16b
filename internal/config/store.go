// Package config owns the hot runtime configuration: typed atomic storage,
// JSON persistence with atomic replace, and the debounced mtime watcher
// that keeps the in-memory state synchronized with the on-disk file.
package config

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// Traffic boost clamp bounds.
const (
	TrafficBoostMin = 0.10
	TrafficBoostMax = 50.0
)

// Canonical field names of the persisted document.
const (
	KeyUpscalerEnabled = "upscaler_enabled"
	KeyTrafficBoost    = "traffic_boost"
	KeyIPCEnabled      = "ipc_enabled"
	KeyIPCPipeName     = "ipc_pipe_name"
	KeyLogLevel        = "log_level"
)

// DefaultPipeName is the transport endpoint identifier used when the file
// carries none.
const DefaultPipeName = `\\.\pipe\MirrorBladeBridge-v1`

var logLevelNames = map[string]struct{}{
	"trace": {}, "debug": {}, "info": {}, "warn": {}, "error": {},
}

// normalizeLogLevel folds unknown level names to info.
func normalizeLogLevel(name string) string {
	if _, ok := logLevelNames[name]; ok {
		return name
	}
	return "info"
}

// ClampTrafficBoost applies the documented ingest clamp.
func ClampTrafficBoost(v float64) float64 {
	if math.IsNaN(v) {
		return TrafficBoostMin
	}
	if v < TrafficBoostMin {
		return TrafficBoostMin
	}
	if v > TrafficBoostMax {
		return TrafficBoostMax
	}
	return v
}

// Snapshot is a consistent by-value view of the store.
type Snapshot struct {
	UpscalerEnabled bool    `json:"upscaler_enabled"`
	TrafficBoost    float64 `json:"traffic_boost"`
	IPCEnabled      bool    `json:"ipc_enabled"`
	IPCPipeName     string  `json:"ipc_pipe_name"`
	LogLevel        string  `json:"log_level"`
	Version         int     `json:"version"`
}

// Defaults returns the built-in configuration.
func Defaults() Snapshot {
	return Snapshot{
		UpscalerEnabled: false,
		TrafficBoost:    1.0,
		IPCEnabled:      true,
		IPCPipeName:     DefaultPipeName,
		LogLevel:        "info",
		Version:         1,
	}
}

// Store holds the runtime configuration. Scalar fields are atomics so hot
// readers never block; the string fields share one exclusion, which Replace
// and Snapshot also hold so a snapshot never mixes two Replace calls.
type Store struct {
	upscalerEnabled atomic.Bool
	ipcEnabled      atomic.Bool
	trafficBoost    atomic.Uint64 // float64 bits
	version         atomic.Int64

	mu          sync.Mutex
	ipcPipeName string
	logLevel    string
}

// NewStore builds a store populated with Defaults.
func NewStore() *Store {
	s := &Store{}
	s.Replace(Defaults())
	return s
}

// Replace installs a full snapshot, clamping on ingest.
func (s *Store) Replace(v Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upscalerEnabled.Store(v.UpscalerEnabled)
	s.ipcEnabled.Store(v.IPCEnabled)
	s.trafficBoost.Store(math.Float64bits(ClampTrafficBoost(v.TrafficBoost)))
	s.version.Store(int64(v.Version))
	s.ipcPipeName = v.IPCPipeName
	s.logLevel = normalizeLogLevel(v.LogLevel)
}

// Snapshot returns a consistent by-value copy.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		UpscalerEnabled: s.upscalerEnabled.Load(),
		TrafficBoost:    math.Float64frombits(s.trafficBoost.Load()),
		IPCEnabled:      s.ipcEnabled.Load(),
		IPCPipeName:     s.ipcPipeName,
		LogLevel:        s.logLevel,
		Version:         int(s.version.Load()),
	}
}

// UpscalerEnabled reads the upscaler toggle lock-free.
func (s *Store) UpscalerEnabled() bool { return s.upscalerEnabled.Load() }

// SetUpscalerEnabled writes the upscaler toggle.
func (s *Store) SetUpscalerEnabled(v bool) { s.upscalerEnabled.Store(v) }

// TrafficBoost reads the traffic multiplier lock-free.
func (s *Store) TrafficBoost() float64 { return math.Float64frombits(s.trafficBoost.Load()) }

// SetTrafficBoost clamps and stores the traffic multiplier, returning the
// stored value.
func (s *Store) SetTrafficBoost(v float64) float64 {
	c := ClampTrafficBoost(v)
	s.trafficBoost.Store(math.Float64bits(c))
	return c
}

// IPCEnabled reports whether the RPC server serves requests; while false,
// sessions still connect but every request is answered with Unavailable.
func (s *Store) IPCEnabled() bool { return s.ipcEnabled.Load() }

// SetIPCEnabled toggles whether the RPC server serves requests.
func (s *Store) SetIPCEnabled(v bool) { s.ipcEnabled.Store(v) }

// IPCPipeName returns the transport endpoint identifier.
func (s *Store) IPCPipeName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ipcPipeName
}

// SetIPCPipeName replaces the transport endpoint identifier.
func (s *Store) SetIPCPipeName(name string) {
	s.mu.Lock()
	s.ipcPipeName = name
	s.mu.Unlock()
}

// LogLevel returns the configured level name.
func (s *Store) LogLevel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logLevel
}

// SetLogLevel stores a level name, folding unknown names to info.
func (s *Store) SetLogLevel(name string) {
	s.mu.Lock()
	s.logLevel = normalizeLogLevel(name)
	s.mu.Unlock()
}

// Get reads one field by canonical name.
func (s *Store) Get(key string) (any, error) {
	switch key {
	case KeyUpscalerEnabled:
		return s.UpscalerEnabled(), nil
	case KeyTrafficBoost:
		return s.TrafficBoost(), nil
	case KeyIPCEnabled:
		return s.IPCEnabled(), nil
	case KeyIPCPipeName:
		return s.IPCPipeName(), nil
	case KeyLogLevel:
		return s.LogLevel(), nil
	default:
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
}

// Set writes one field by canonical name, applying the field's ingest
// policy, and returns the stored value.
func (s *Store) Set(key string, value any) (any, error) {
	switch key {
	case KeyUpscalerEnabled:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%s requires a boolean", key)
		}
		s.SetUpscalerEnabled(b)
		return b, nil
	case KeyTrafficBoost:
		f, ok := value.(float64)
		if !ok {
			return nil, fmt.Errorf("%s requires a number", key)
		}
		return s.SetTrafficBoost(f), nil
	case KeyIPCEnabled:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%s requires a boolean", key)
		}
		s.SetIPCEnabled(b)
		return b, nil
	case KeyIPCPipeName:
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s requires a string", key)
		}
		s.SetIPCPipeName(str)
		return str, nil
	case KeyLogLevel:
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s requires a string", key)
		}
		s.SetLogLevel(str)
		return s.LogLevel(), nil
	default:
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
}
