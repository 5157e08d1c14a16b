// Package impound answers "is this name forbidden" against a set of
// literal names and a set of glob rules. Rules use '*' (any span, including
// empty) and '?' (exactly one character).
package impound

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gobwas/glob"
)

// Service holds the literal set and compiled rules.
type Service struct {
	mu       sync.RWMutex
	literals map[string]struct{}
	rules    map[string]glob.Glob
}

// New returns an empty service.
func New() *Service {
	return &Service{
		literals: make(map[string]struct{}),
		rules:    make(map[string]glob.Glob),
	}
}

// AddLiteral registers an exact forbidden name.
func (s *Service) AddLiteral(name string) {
	if name == "" {
		return
	}
	s.mu.Lock()
	s.literals[name] = struct{}{}
	s.mu.Unlock()
}

// AddRule compiles and registers a glob rule.
func (s *Service) AddRule(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("empty impound rule")
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compile impound rule %q: %w", pattern, err)
	}
	s.mu.Lock()
	s.rules[pattern] = g
	s.mu.Unlock()
	return nil
}

// Remove drops a literal or rule by its exact text.
func (s *Service) Remove(name string) {
	s.mu.Lock()
	delete(s.literals, name)
	delete(s.rules, name)
	s.mu.Unlock()
}

// Clear empties both sets.
func (s *Service) Clear() {
	s.mu.Lock()
	s.literals = make(map[string]struct{})
	s.rules = make(map[string]glob.Glob)
	s.mu.Unlock()
}

// IsImpounded reports whether name matches a literal or any rule.
func (s *Service) IsImpounded(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.literals[name]; ok {
		return true
	}
	for _, g := range s.rules {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Snapshot lists the configured literals and rule patterns, sorted.
func (s *Service) Snapshot() (literals, rules []string) {
	s.mu.RLock()
	for name := range s.literals {
		literals = append(literals, name)
	}
	for pattern := range s.rules {
		rules = append(rules, pattern)
	}
	s.mu.RUnlock()
	sort.Strings(literals)
	sort.Strings(rules)
	return literals, rules
}
