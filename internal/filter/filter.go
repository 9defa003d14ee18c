// Package filter decides which bodies a trigger may act on.
package filter

import (
	"sync"

	"github.com/Versifine/catapult/internal/world"
)

// Predicate reports whether a body passes. A nil Predicate passes everything;
// use Allows to apply that rule.
type Predicate interface {
	Passes(b *world.Body) bool
}

type Func func(b *world.Body) bool

func (f Func) Passes(b *world.Body) bool {
	return f(b)
}

// Allows applies p, treating a nil predicate as "no filter".
func Allows(p Predicate, b *world.Body) bool {
	if p == nil {
		return true
	}
	return p.Passes(b)
}

// Class matches the body's classname.
type Class struct {
	Class   string
	Negated bool
}

func (c Class) Passes(b *world.Body) bool {
	if b == nil {
		return false
	}
	return (b.Class == c.Class) != c.Negated
}

// Name matches the body's targetname.
type Name struct {
	Name    string
	Negated bool
}

func (n Name) Passes(b *world.Body) bool {
	if b == nil {
		return false
	}
	return (b.Name == n.Name) != n.Negated
}

type not struct{ p Predicate }

func (n not) Passes(b *world.Body) bool {
	return !Allows(n.p, b)
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return not{p: p}
}

// Set is the named filters of a level.
type Set struct {
	mu      sync.RWMutex
	filters map[string]Predicate
}

func NewSet() *Set {
	return &Set{filters: make(map[string]Predicate)}
}

func (s *Set) Add(name string, p Predicate) {
	if name == "" || p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters[name] = p
}

func (s *Set) Lookup(name string) (Predicate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.filters[name]
	return p, ok
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filters)
}
