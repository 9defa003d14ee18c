package sim

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Versifine/catapult/internal/logger"
	"github.com/Versifine/catapult/internal/physics"
	"github.com/Versifine/catapult/internal/world"
	"github.com/go-gl/mathgl/mgl64"
)

type Options struct {
	TickInterval time.Duration
	Gravity      float64
	// Floor is the height of the landing plane under every body.
	Floor float64
}

// World owns the tick. Every mutation of simulation state, including debug
// commands from other goroutines, goes through Step or Do so actuators never
// observe a half-finished tick.
type World struct {
	mu       sync.Mutex
	clock    *Clock
	sched    *Scheduler
	reg      *world.Registry
	gravity  float64
	floor    float64
	triggers []*Trigger
	paused   atomic.Bool
	log      *slog.Logger
}

func NewWorld(reg *world.Registry, opts Options) *World {
	if reg == nil {
		reg = world.NewRegistry(world.DefaultCellSize)
	}
	if opts.Gravity <= 0 {
		opts.Gravity = physics.DefaultGravity
	}
	return &World{
		clock:   NewClock(opts.TickInterval),
		sched:   NewScheduler(),
		reg:     reg,
		gravity: opts.Gravity,
		floor:   opts.Floor,
		log:     logger.L().With("component", "sim"),
	}
}

// Gravity is the world's downward acceleration in units/s².
func (w *World) Gravity() float64 {
	return w.gravity
}

func (w *World) Floor() float64 {
	return w.floor
}

func (w *World) Registry() *world.Registry {
	return w.reg
}

func (w *World) Scheduler() *Scheduler {
	return w.sched
}

func (w *World) Clock() *Clock {
	return w.clock
}

// AddTrigger registers t. Triggers are evaluated in the order they were added.
func (w *World) AddTrigger(t *Trigger) {
	if t == nil {
		return
	}
	w.triggers = append(w.triggers, t)
}

func (w *World) Triggers() []*Trigger {
	return w.triggers
}

// Do runs fn between ticks.
func (w *World) Do(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn()
}

// Step advances one tick: due timers fire, bodies move, then triggers see
// who entered them.
func (w *World) Step() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step()
}

// StepN runs n ticks back to back.
func (w *World) StepN(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := 0; i < n; i++ {
		w.step()
	}
}

func (w *World) step() {
	now := w.clock.Advance()
	w.sched.Advance(now)

	dt := w.clock.Seconds()
	for _, b := range w.reg.Bodies() {
		w.integrate(b, dt)
	}
	w.reg.Reindex()

	for _, t := range w.triggers {
		t.update(w.reg)
	}
}

func (w *World) integrate(b *world.Body, dt float64) {
	switch b.MoveType {
	case world.MoveNone, world.MovePush:
		return
	}
	if b.Parent != 0 {
		return
	}
	if b.MoveType == world.MoveFly {
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
		return
	}

	state := physics.PhysicsState{
		Position: b.Position,
		Velocity: b.Velocity,
		OnGround: b.Grounded(),
	}
	floorZ := w.floor + b.HalfExtents.Z()
	if physics.PhysicsTick(&state, w.gravity*b.EffectiveGravityScale(), floorZ, dt) {
		b.GroundEntity = world.FloorEntity
		b.AngularVelocity = mgl64.Vec3{}
		w.log.Debug("body landed", "body", b.String(), "pos", state.Position, "tick", w.clock.Tick())
	}
	b.Position = state.Position
	b.Velocity = state.Velocity
}

// SetPaused stops Run from stepping. Step and StepN still work.
func (w *World) SetPaused(paused bool) {
	w.paused.Store(paused)
}

func (w *World) Paused() bool {
	return w.paused.Load()
}

// Run steps the world on a wall-clock ticker until ctx is cancelled.
func (w *World) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.clock.Interval())
	defer ticker.Stop()

	w.log.Info("simulation started", "tick", w.clock.Interval(), "gravity", w.gravity)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("simulation stopped", "ticks", w.clock.Tick())
			return nil
		case <-ticker.C:
			if !w.paused.Load() {
				w.Step()
			}
		}
	}
}
