package sim

import (
	"github.com/Versifine/catapult/internal/physics"
	"github.com/Versifine/catapult/internal/world"
)

// Trigger is a static volume that offers every touching body to OnEnter.
// A body OnEnter accepts is latched and not offered again until it leaves;
// a rejected body is offered again on every step it stays inside.
type Trigger struct {
	Name    string
	Bounds  physics.AABB
	OnEnter func(b *world.Body) bool
	// Active, when set and false, makes the trigger forget its occupants and
	// fire nothing.
	Active func() bool

	inside map[int32]struct{}
}

func (t *Trigger) Enabled() bool {
	return t.Active == nil || t.Active()
}

func (t *Trigger) update(reg *world.Registry) {
	if !t.Enabled() {
		clear(t.inside)
		return
	}
	if t.inside == nil {
		t.inside = make(map[int32]struct{})
	}

	touching := reg.Overlapping(t.Bounds)
	now := make(map[int32]struct{}, len(touching))
	for _, b := range touching {
		if _, was := t.inside[b.ID]; was {
			now[b.ID] = struct{}{}
			continue
		}
		if t.OnEnter != nil && t.OnEnter(b) {
			now[b.ID] = struct{}{}
		}
	}
	t.inside = now
}

// Occupants reports how many accepted bodies were still inside after the
// last step.
func (t *Trigger) Occupants() int {
	return len(t.inside)
}
