// Package compound resolves named equation entities in declaration order.
// Each computed entity is exposed to subsequent equations under its own
// name, so later entities can chain on earlier results.
package compound

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/OliviaAI-TGDK/MirrorBlade/internal/expr"
)

// Entity is one named equation.
type Entity struct {
	Name     string `json:"name"`
	Equation string `json:"equation"`
}

// Resolved is an entity with its computed value.
type Resolved struct {
	Name     string  `json:"name"`
	Equation string  `json:"equation"`
	Value    float64 `json:"value"`
}

// Service owns the currently loaded entity set and its resolved values.
type Service struct {
	mu       sync.RWMutex
	resolved []Resolved
	values   map[string]float64
}

// New returns an empty service.
func New() *Service {
	return &Service{values: make(map[string]float64)}
}

type configDoc struct {
	Compound *struct {
		Entities []Entity `json:"entities"`
	} `json:"compound"`
	Entities []Entity `json:"entities"`
}

// parseEntities accepts {"compound":{"entities":[...]}} or the bare
// {"entities":[...]} form.
func parseEntities(data []byte) ([]Entity, error) {
	var doc configDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse compound config: %w", err)
	}
	if doc.Compound != nil {
		return doc.Compound.Entities, nil
	}
	return doc.Entities, nil
}

// Load compiles and resolves entities against env, then replaces the
// service state. On any failure the previous state is kept.
func (s *Service) Load(entities []Entity, env map[string]float64) error {
	scope := make(map[string]float64, len(env)+len(entities))
	for k, v := range env {
		scope[k] = v
	}
	resolved := make([]Resolved, 0, len(entities))
	values := make(map[string]float64, len(entities))
	for i, e := range entities {
		if e.Name == "" {
			return fmt.Errorf("compound entity %d: name required", i)
		}
		v, err := expr.Eval(e.Equation, scope)
		if err != nil {
			return fmt.Errorf("compound entity %q: %w", e.Name, err)
		}
		scope[e.Name] = v
		values[e.Name] = v
		resolved = append(resolved, Resolved{Name: e.Name, Equation: e.Equation, Value: v})
	}

	s.mu.Lock()
	s.resolved = resolved
	s.values = values
	s.mu.Unlock()
	return nil
}

// LoadJSON parses a config document and loads it.
func (s *Service) LoadJSON(data []byte, env map[string]float64) error {
	entities, err := parseEntities(data)
	if err != nil {
		return err
	}
	return s.Load(entities, env)
}

// LoadFile reads a config document from disk and loads it.
func (s *Service) LoadFile(path string, env map[string]float64) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read compound config: %w", err)
	}
	return s.LoadJSON(data, env)
}

// Get returns a resolved entity value.
func (s *Service) Get(name string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// Snapshot returns the resolved entities in declaration order.
func (s *Service) Snapshot() []Resolved {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Resolved, len(s.resolved))
	copy(out, s.resolved)
	return out
}
