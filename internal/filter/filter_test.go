package filter

import (
	"testing"

	"github.com/Versifine/catapult/internal/world"
	"github.com/go-gl/mathgl/mgl64"
)

func TestClassAndNameFilters(t *testing.T) {
	player := world.NewPlayer("chell", mgl64.Vec3{})
	crate := world.NewProp("cube", mgl64.Vec3{})

	tests := []struct {
		name string
		p    Predicate
		body *world.Body
		want bool
	}{
		{"class match", Class{Class: "player"}, player, true},
		{"class miss", Class{Class: "player"}, crate, false},
		{"class negated", Class{Class: "player", Negated: true}, crate, true},
		{"name match", Name{Name: "cube"}, crate, true},
		{"name negated", Name{Name: "cube", Negated: true}, crate, false},
		{"nil body", Class{Class: "player", Negated: true}, nil, false},
		{"not", Not(Class{Class: "player"}), player, false},
		{"func", Func(func(b *world.Body) bool { return b.Grounded() }), player, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Passes(tt.body); got != tt.want {
				t.Fatalf("Passes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllowsNilPredicate(t *testing.T) {
	if !Allows(nil, world.NewProp("", mgl64.Vec3{})) {
		t.Fatal("nil predicate should allow everything")
	}
}

func TestSetLookup(t *testing.T) {
	s := NewSet()
	s.Add("only_players", Class{Class: "player"})
	s.Add("", Class{})
	s.Add("nil", nil)

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if _, ok := s.Lookup("only_players"); !ok {
		t.Fatal("Lookup(only_players) failed")
	}
	if _, ok := s.Lookup("missing"); ok {
		t.Fatal("Lookup(missing) should fail")
	}
}

func TestScriptFilter(t *testing.T) {
	s, err := NewScript("high_props", `pass = activator.class == "prop_physics" && activator.pos[2] > 64`)
	if err != nil {
		t.Fatalf("NewScript() error = %v", err)
	}

	high := world.NewProp("a", mgl64.Vec3{0, 0, 100})
	low := world.NewProp("b", mgl64.Vec3{0, 0, 10})
	player := world.NewPlayer("p", mgl64.Vec3{0, 0, 100})

	if !s.Passes(high) {
		t.Error("high prop should pass")
	}
	if s.Passes(low) {
		t.Error("low prop should not pass")
	}
	if s.Passes(player) {
		t.Error("player should not pass")
	}
	// pass resets between runs
	if s.Passes(low) {
		t.Error("result leaked from a previous run")
	}
}

func TestScriptFilterUsesStdlib(t *testing.T) {
	s, err := NewScript("named", `
text := import("text")
pass = text.has_prefix(activator.name, "cube_")
`)
	if err != nil {
		t.Fatalf("NewScript() error = %v", err)
	}
	if !s.Passes(world.NewProp("cube_01", mgl64.Vec3{})) {
		t.Error("cube_01 should pass")
	}
	if s.Passes(world.NewProp("crate", mgl64.Vec3{})) {
		t.Error("crate should not pass")
	}
}

func TestScriptFilterFailsClosed(t *testing.T) {
	s, err := NewScript("broken", `pass = activator.id / 0 > 0`)
	if err != nil {
		t.Fatalf("NewScript() error = %v", err)
	}
	if s.Passes(world.NewProp("x", mgl64.Vec3{})) {
		t.Fatal("a failing script must reject the body")
	}
}

func TestNewScriptErrors(t *testing.T) {
	if _, err := NewScript("empty", "   "); err == nil {
		t.Error("empty script should fail")
	}
	if _, err := NewScript("bad", "pass = = 1"); err == nil {
		t.Error("syntax error should fail to compile")
	}
}
