package proximity

import (
	"testing"
	"time"

	"github.com/Versifine/catapult/internal/physics"
	"github.com/Versifine/catapult/internal/sim"
	"github.com/Versifine/catapult/internal/world"
	"github.com/go-gl/mathgl/mgl64"
)

type fakeActuator struct {
	pressed   bool
	presses   int
	unpresses int
}

func (a *fakeActuator) Pressed() bool { return a.pressed }

func (a *fakeActuator) Press() {
	a.pressed = true
	a.presses++
}

func (a *fakeActuator) Unpress() {
	a.pressed = false
	a.unpresses++
}

// everything ignores the box so the poller's own check is what counts
type everything []*world.Body

func (e everything) BodiesIn(physics.AABB) []*world.Body { return e }

func newRegistryPoller(act Actuator) (*world.Registry, *Poller) {
	reg := world.NewRegistry(0)
	p := NewPoller(reg, act, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{32, 32, 16}, 100*time.Millisecond)
	return reg, p
}

func TestPollPressesAndReleases(t *testing.T) {
	act := &fakeActuator{}
	reg, p := newRegistryPoller(act)

	if p.Poll() != 0 || act.presses != 0 {
		t.Fatal("empty plate should not press")
	}

	id := reg.Add(world.NewProp("cube", mgl64.Vec3{0, 0, 8}))
	if p.Poll() != 1 || !act.pressed {
		t.Fatal("cube on plate should press")
	}

	reg.Move(id, mgl64.Vec3{500, 0, 8})
	p.Poll()
	if act.pressed || act.unpresses != 1 {
		t.Fatalf("pressed = %v unpresses = %d, want released once", act.pressed, act.unpresses)
	}
}

func TestSeveralOccupantsPressOnce(t *testing.T) {
	act := &fakeActuator{}
	reg, p := newRegistryPoller(act)
	reg.Add(world.NewProp("a", mgl64.Vec3{-10, 0, 8}))
	reg.Add(world.NewPlayer("b", mgl64.Vec3{10, 0, 0}))

	for i := 0; i < 5; i++ {
		p.Poll()
	}
	if p.Count() != 2 || act.presses != 1 {
		t.Fatalf("count = %d presses = %d, want 2 occupants and one press", p.Count(), act.presses)
	}
}

func TestOnlyPropsAndPlayersCount(t *testing.T) {
	act := &fakeActuator{}
	other := &world.Body{ID: 1, Kind: world.KindOther, Position: mgl64.Vec3{}}
	p := NewPoller(everything{other, nil}, act, mgl64.Vec3{}, mgl64.Vec3{32, 32, 16}, 0)

	if p.Poll() != 0 || act.pressed {
		t.Fatal("non-prop bodies must not press the plate")
	}
	if p.Interval() != DefaultInterval {
		t.Fatalf("Interval() = %v, want default", p.Interval())
	}
}

func TestBoundComparesMatchingAxes(t *testing.T) {
	// half extents differ per axis so a swapped component would be caught
	tests := []struct {
		name string
		pos  mgl64.Vec3
		want int
	}{
		{"inside", mgl64.Vec3{0, 0, 0}, 1},
		{"x beyond x but within y", mgl64.Vec3{40, 0, 0}, 0},
		{"y within y beyond x", mgl64.Vec3{0, 60, 0}, 1},
		{"z beyond z within x", mgl64.Vec3{0, 0, 20}, 0},
		{"x within z extent", mgl64.Vec3{15, 0, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := &fakeActuator{}
			body := world.NewProp("cube", tt.pos)
			p := NewPoller(everything{body}, act, mgl64.Vec3{}, mgl64.Vec3{32, 64, 16}, time.Second)
			if got := p.Poll(); got != tt.want {
				t.Fatalf("Poll() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStartPollsEveryInterval(t *testing.T) {
	act := &fakeActuator{}
	reg, p := newRegistryPoller(act)
	sched := sim.NewScheduler()
	p.Start(sched)

	id := reg.Add(world.NewProp("cube", mgl64.Vec3{0, 0, 8}))
	sched.Advance(99 * time.Millisecond)
	if act.pressed {
		t.Fatal("pressed before the first poll")
	}
	sched.Advance(100 * time.Millisecond)
	if !act.pressed || !p.Running() {
		t.Fatal("first poll should press and re-arm")
	}

	reg.Move(id, mgl64.Vec3{900, 0, 8})
	sched.Advance(200 * time.Millisecond)
	if act.pressed {
		t.Fatal("emptiness for a full interval should release")
	}

	p.Stop()
	reg.Move(id, mgl64.Vec3{0, 0, 8})
	sched.Advance(time.Second)
	if act.pressed || p.Running() {
		t.Fatal("stopped poller must not poll")
	}
}

func TestShortContactBetweenPollsIsMissed(t *testing.T) {
	act := &fakeActuator{}
	reg, p := newRegistryPoller(act)
	sched := sim.NewScheduler()
	p.Start(sched)

	sched.Advance(100 * time.Millisecond)
	id := reg.Add(world.NewProp("cube", mgl64.Vec3{0, 0, 8}))
	sched.Advance(150 * time.Millisecond)
	reg.Move(id, mgl64.Vec3{900, 0, 8})
	sched.Advance(200 * time.Millisecond)

	if act.presses != 0 {
		t.Fatalf("presses = %d, a visit between samples should go unseen", act.presses)
	}
}
