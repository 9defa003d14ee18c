package filter

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Versifine/catapult/internal/logger"
	"github.com/Versifine/catapult/internal/world"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Script is a filter written in tengo. The source sees the candidate body as
// `activator` and decides by assigning `pass`:
//
//	pass = activator.class == "prop_physics" && activator.pos[2] > 64
//
// Anything that goes wrong at run time rejects the body.
type Script struct {
	name     string
	mu       sync.Mutex
	compiled *tengo.Compiled
}

func NewScript(name, src string) (*Script, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("filter %q: empty script", name)
	}

	script := tengo.NewScript([]byte(src))
	_ = script.Add("activator", map[string]any{})
	_ = script.Add("pass", false)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("filter %q: compile: %w", name, err)
	}
	return &Script{name: name, compiled: compiled}, nil
}

func (s *Script) Passes(b *world.Body) bool {
	if s == nil || b == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.compiled.Set("activator", activatorMap(b)); err != nil {
		logger.L().Debug("filter script rejected body", "filter", s.name, "body", b.String(), "error", err)
		return false
	}
	if err := s.compiled.Set("pass", false); err != nil {
		return false
	}
	if err := s.compiled.Run(); err != nil {
		logger.L().Debug("filter script rejected body", "filter", s.name, "body", b.String(), "error", err)
		return false
	}
	return s.compiled.Get("pass").Bool()
}

func activatorMap(b *world.Body) map[string]any {
	return map[string]any{
		"id":       int64(b.ID),
		"name":     b.Name,
		"class":    b.Class,
		"kind":     b.Kind.String(),
		"player":   b.IsPlayer(),
		"grounded": b.Grounded(),
		"pos":      []any{b.Position.X(), b.Position.Y(), b.Position.Z()},
		"vel":      []any{b.Velocity.X(), b.Velocity.Y(), b.Velocity.Z()},
	}
}
