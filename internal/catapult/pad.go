// Package catapult implements launch pads: trigger volumes that throw a body
// either onto a named target or along a fixed direction.
package catapult

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/Versifine/catapult/internal/event"
	"github.com/Versifine/catapult/internal/filter"
	"github.com/Versifine/catapult/internal/logger"
	"github.com/Versifine/catapult/internal/physics"
	"github.com/Versifine/catapult/internal/trajectory"
	"github.com/Versifine/catapult/internal/world"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrNegativeApexHeight = errors.New("catapult: min apex height must not be negative")
	ErrInvalidBounds      = errors.New("catapult: mins must not exceed maxs")
)

// Locator resolves a named entity to its current position.
type Locator interface {
	PositionOf(name string) (mgl64.Vec3, bool)
}

type GravitySource interface {
	Gravity() float64
}

// ConstantGravity is a fixed GravitySource.
type ConstantGravity float64

func (g ConstantGravity) Gravity() float64 {
	return float64(g)
}

type Config struct {
	ID     int32
	Name   string
	Origin mgl64.Vec3
	// Angles is (pitch, yaw, roll) in degrees.
	Angles mgl64.Vec3
	// Mins and Maxs bound the trigger volume relative to Origin.
	Mins, Maxs mgl64.Vec3

	// Target is the name of the landing entity. Empty means fixed-direction
	// launches only.
	Target string
	// LaunchDirection is in the pad's local frame; zero means straight up.
	LaunchDirection mgl64.Vec3
	PlayerSpeed     float64
	PhysicsSpeed    float64
	MinApexHeight   float64
	GravityScale    float64
	RandomRotation  bool
	StartDisabled   bool
}

type Deps struct {
	Locator Locator
	Gravity GravitySource
	Filter  filter.Predicate
	Events  event.Publisher
	Rand    *rand.Rand
}

type Mode int

const (
	ModeDirection Mode = iota
	ModeTarget
)

func (m Mode) String() string {
	if m == ModeTarget {
		return "target"
	}
	return "direction"
}

// Plan is the launch a pad would give a body right now.
type Plan struct {
	Mode     Mode
	Velocity mgl64.Vec3
	// Target and Arc are only set in target mode.
	Target mgl64.Vec3
	Arc    trajectory.Result
}

type Pad struct {
	cfg       Config
	direction mgl64.Vec3
	bounds    physics.AABB
	locator   Locator
	gravity   GravitySource
	filter    filter.Predicate
	events    event.Publisher
	rng       *rand.Rand
	log       *slog.Logger
	disabled  bool
}

func New(cfg Config, deps Deps) (*Pad, error) {
	if !(cfg.PlayerSpeed > 0) {
		return nil, fmt.Errorf("catapult %q: playerSpeed %g: %w", cfg.Name, cfg.PlayerSpeed, trajectory.ErrNonPositiveSpeedCap)
	}
	if !(cfg.PhysicsSpeed > 0) {
		return nil, fmt.Errorf("catapult %q: physicsSpeed %g: %w", cfg.Name, cfg.PhysicsSpeed, trajectory.ErrNonPositiveSpeedCap)
	}
	if cfg.MinApexHeight < 0 {
		return nil, fmt.Errorf("catapult %q: %w", cfg.Name, ErrNegativeApexHeight)
	}
	bounds := physics.BoxFromBounds(cfg.Origin, cfg.Mins, cfg.Maxs)
	if !bounds.Valid() {
		return nil, fmt.Errorf("catapult %q: mins %v maxs %v: %w", cfg.Name, cfg.Mins, cfg.Maxs, ErrInvalidBounds)
	}
	if cfg.GravityScale == 0 {
		cfg.GravityScale = 1
	}
	if cfg.LaunchDirection == (mgl64.Vec3{}) {
		cfg.LaunchDirection = mgl64.Vec3{0, 0, 1}
	}
	if deps.Gravity == nil {
		deps.Gravity = ConstantGravity(physics.DefaultGravity)
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	p := &Pad{
		cfg:      cfg,
		bounds:   bounds,
		locator:  deps.Locator,
		gravity:  deps.Gravity,
		filter:   deps.Filter,
		events:   deps.Events,
		rng:      deps.Rand,
		log:      logger.L().With("component", "catapult", "pad", cfg.Name),
		disabled: cfg.StartDisabled,
	}
	p.direction = orientation(cfg.Angles).Rotate(cfg.LaunchDirection.Normalize())
	return p, nil
}

// orientation turns (pitch, yaw, roll) degrees into a rotation. Yaw turns
// about Z, pitch about Y, roll about X; positive pitch points down.
func orientation(angles mgl64.Vec3) mgl64.Quat {
	return mgl64.AnglesToQuat(
		mgl64.DegToRad(angles.Y()),
		mgl64.DegToRad(angles.X()),
		mgl64.DegToRad(angles.Z()),
		mgl64.ZYX,
	)
}

func (p *Pad) ID() int32            { return p.cfg.ID }
func (p *Pad) Name() string         { return p.cfg.Name }
func (p *Pad) Bounds() physics.AABB { return p.bounds }
func (p *Pad) Config() Config       { return p.cfg }

// Enable and Disable gate every activation. A disabled pad launches nothing,
// including bodies already standing in it.
func (p *Pad) Enable()       { p.disabled = false }
func (p *Pad) Disable()      { p.disabled = true }
func (p *Pad) Enabled() bool { return !p.disabled }

// Direction is the world-space unit vector used for fixed-direction launches.
func (p *Pad) Direction() mgl64.Vec3 {
	return p.direction
}

// Activate launches b if it qualifies and reports whether it did. Bodies
// that do not qualify are ignored without error.
func (p *Pad) Activate(b *world.Body) bool {
	if !p.accepts(b) {
		return false
	}

	plan := p.Plan(b)

	b.ClearGround()
	b.Velocity = plan.Velocity
	if b.IsPlayer() {
		b.AngularVelocity = mgl64.Vec3{}
	} else {
		b.AngularVelocity = p.spin()
	}

	p.log.Debug("launched",
		"body", b.String(),
		"mode", plan.Mode.String(),
		"velocity", plan.Velocity,
		"apex", plan.Arc.Apex,
		"flight", plan.Arc.FlightTime(),
	)
	if p.events != nil {
		p.events.Publish(event.EventLaunched, event.ActuatorEvent{Entity: p.cfg.ID, Name: p.cfg.Name})
	}
	return true
}

func (p *Pad) accepts(b *world.Body) bool {
	if p.disabled || b == nil || !b.Solid {
		return false
	}
	if b.MoveType == world.MovePush || b.MoveType == world.MoveNone {
		return false
	}
	if !filter.Allows(p.filter, b) {
		return false
	}
	if b.Parent != 0 {
		return false
	}
	// only players and simulated props take an imposed velocity
	return b.IsPlayer() || (b.Kind == world.KindPhysics && b.MoveType == world.MoveVPhysics)
}

// Plan computes the launch for b without touching it. The target is looked
// up again on every call so a target spawned later is picked up.
func (p *Pad) Plan(b *world.Body) Plan {
	speed := p.cfg.PhysicsSpeed
	if b.IsPlayer() {
		speed = p.cfg.PlayerSpeed
	}

	if target, ok := p.resolveTarget(); ok {
		g := p.gravity.Gravity() * p.cfg.GravityScale * b.EffectiveGravityScale()
		arc, err := trajectory.Solve(b.Position, target, g, p.cfg.MinApexHeight, speed)
		if err == nil {
			return Plan{Mode: ModeTarget, Velocity: arc.Velocity, Target: target, Arc: arc}
		}
		logger.WarnOnce(p.warnKey("gravity"), "catapult cannot solve arc, launching by direction",
			"pad", p.cfg.Name, "gravity", g, "error", err)
	}

	return Plan{Mode: ModeDirection, Velocity: p.direction.Mul(speed)}
}

func (p *Pad) resolveTarget() (mgl64.Vec3, bool) {
	if p.cfg.Target == "" {
		return mgl64.Vec3{}, false
	}
	key := p.warnKey("target")
	if p.locator != nil {
		if pos, ok := p.locator.PositionOf(p.cfg.Target); ok {
			logger.ForgetWarning(key)
			return pos, true
		}
	}
	logger.WarnOnce(key, "catapult target not found, launching by direction",
		"pad", p.cfg.Name, "origin", p.cfg.Origin, "target", p.cfg.Target)
	return mgl64.Vec3{}, false
}

func (p *Pad) warnKey(kind string) string {
	return fmt.Sprintf("catapult:%d:%s:%s:%s", p.cfg.ID, p.cfg.Name, kind, p.cfg.Target)
}

func (p *Pad) spin() mgl64.Vec3 {
	if !p.cfg.RandomRotation {
		return mgl64.Vec3{}
	}
	limit := p.cfg.PhysicsSpeed / 10
	var v mgl64.Vec3
	for axis := range v {
		v[axis] = (p.rng.Float64()*2 - 1) * limit
	}
	return v
}
