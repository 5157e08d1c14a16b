// Package smooth implements the one-dimensional recovery smoother: a
// spring-damper follower with a hysteresis hold band, a jump-triggered
// cooldown that temporarily softens the spring, an optional output clamp
// and a velocity cap.
package smooth

import (
	"math"
	"sync"
)

// Params configures a Smoother. Zero values resolve via Defaults.
type Params struct {
	// Enabled false turns the smoother into a pass-through.
	Enabled bool `json:"enabled"`
	// AbideEmptiness forces output and velocity to zero regardless of input.
	AbideEmptiness bool `json:"abide_emptiness"`
	// Stiffness is the spring constant pulling output toward input.
	Stiffness float64 `json:"stiffness"`
	// Damping opposes velocity.
	Damping float64 `json:"damping"`
	// HysteresisBand holds the output still while |input-output| stays inside.
	HysteresisBand float64 `json:"hysteresis_band"`
	// JumpThreshold triggers a cooldown when |input-output| exceeds it; 0
	// disables jump detection.
	JumpThreshold float64 `json:"jump_threshold"`
	// CooldownSeconds is how long the softened spring persists after a jump.
	CooldownSeconds float64 `json:"cooldown_seconds"`
	// CooldownScale multiplies stiffness during cooldown (0..1].
	CooldownScale float64 `json:"cooldown_scale"`
	// MaxVelocity caps |velocity|; 0 means uncapped.
	MaxVelocity float64 `json:"max_velocity"`
	// ClampEnabled bounds the output to [ClampMin, ClampMax].
	ClampEnabled bool    `json:"clamp_enabled"`
	ClampMin     float64 `json:"clamp_min"`
	ClampMax     float64 `json:"clamp_max"`
	// SnapFirstSample adopts the first input directly instead of springing
	// toward it from zero.
	SnapFirstSample bool `json:"snap_first_sample"`
}

// Defaults returns an enabled smoother with moderate recovery behavior.
func Defaults() Params {
	return Params{
		Enabled:         true,
		Stiffness:       40,
		Damping:         12,
		HysteresisBand:  0,
		JumpThreshold:   0,
		CooldownSeconds: 0.5,
		CooldownScale:   0.25,
		SnapFirstSample: true,
	}
}

type state struct {
	y        float64
	v        float64
	cooldown float64
	primed   bool
}

// Smoother owns one follower. Safe for concurrent use.
type Smoother struct {
	mu sync.Mutex
	p  Params
	s  state
}

// New builds a smoother with the given params (Defaults when zero-valued
// Stiffness).
func New(p Params) *Smoother {
	if p.Stiffness <= 0 {
		def := Defaults()
		def.Enabled = p.Enabled
		def.AbideEmptiness = p.AbideEmptiness
		p = def
	}
	if p.CooldownScale <= 0 || p.CooldownScale > 1 {
		p.CooldownScale = 0.25
	}
	return &Smoother{p: p}
}

// Configure replaces the params, keeping motion state.
func (sm *Smoother) Configure(p Params) {
	if p.CooldownScale <= 0 || p.CooldownScale > 1 {
		p.CooldownScale = 0.25
	}
	sm.mu.Lock()
	sm.p = p
	sm.mu.Unlock()
}

// Params returns the current configuration.
func (sm *Smoother) Params() Params {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.p
}

// Reset clears motion state.
func (sm *Smoother) Reset() {
	sm.mu.Lock()
	sm.s = state{}
	sm.mu.Unlock()
}

// Velocity returns the follower's current velocity.
func (sm *Smoother) Velocity() float64 {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.s.v
}

// Step advances the follower by dt toward x and returns the new output.
func (sm *Smoother) Step(dt, x float64) float64 {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	next := advance(sm.p, sm.s, dt, x)
	sm.s = next
	return next.y
}

// PeekNext simulates one Step without mutating the follower.
func (sm *Smoother) PeekNext(dt, x float64) float64 {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return advance(sm.p, sm.s, dt, x).y
}

func advance(p Params, s state, dt, x float64) state {
	if p.AbideEmptiness {
		return state{y: 0, v: 0, primed: true}
	}
	if !p.Enabled {
		// Pass-through tracks the input so re-enabling starts in place.
		return state{y: x, v: 0, primed: true}
	}
	if dt < 0 {
		dt = 0
	}
	if !s.primed {
		s.primed = true
		if p.SnapFirstSample {
			s.y = x
			s.v = 0
			return s
		}
	}

	err := x - s.y
	if p.JumpThreshold > 0 && math.Abs(err) >= p.JumpThreshold {
		s.cooldown = p.CooldownSeconds
	}
	if p.HysteresisBand > 0 && math.Abs(err) <= p.HysteresisBand {
		s.v = 0
		s.cooldown = math.Max(0, s.cooldown-dt)
		return s
	}

	k := p.Stiffness
	if s.cooldown > 0 {
		k *= p.CooldownScale
		s.cooldown = math.Max(0, s.cooldown-dt)
	}

	accel := k*err - p.Damping*s.v
	s.v += accel * dt
	if p.MaxVelocity > 0 {
		if s.v > p.MaxVelocity {
			s.v = p.MaxVelocity
		} else if s.v < -p.MaxVelocity {
			s.v = -p.MaxVelocity
		}
	}
	s.y += s.v * dt
	if p.ClampEnabled {
		if s.y < p.ClampMin {
			s.y = p.ClampMin
			if s.v < 0 {
				s.v = 0
			}
		} else if s.y > p.ClampMax {
			s.y = p.ClampMax
			if s.v > 0 {
				s.v = 0
			}
		}
	}
	return s
}
