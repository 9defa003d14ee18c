package world

import (
	"fmt"

	"github.com/Versifine/catapult/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// FloorEntity is the ground reference for bodies resting on the level floor.
const FloorEntity int32 = -1

type Kind int

const (
	KindOther Kind = iota
	KindPlayer
	KindPhysics
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindPhysics:
		return "physics"
	default:
		return "other"
	}
}

type MoveType int

const (
	MoveNone MoveType = iota
	MoveWalk
	MoveFly
	MovePush
	MoveVPhysics
)

func (m MoveType) String() string {
	switch m {
	case MoveWalk:
		return "walk"
	case MoveFly:
		return "fly"
	case MovePush:
		return "push"
	case MoveVPhysics:
		return "vphysics"
	default:
		return "none"
	}
}

// Body is a moving entity the actuators can act on. The registry owns it;
// actuators only hold it for the duration of a call.
type Body struct {
	ID       int32
	Name     string
	Class    string
	Kind     Kind
	MoveType MoveType
	Solid    bool
	// Parent is the movement parent. Attached bodies ride their parent and
	// cannot be launched on their own.
	Parent int32

	Position        mgl64.Vec3
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	HalfExtents     mgl64.Vec3

	// GroundEntity is the entity the body stands on, 0 when airborne.
	GroundEntity int32
	GravityScale float64
}

// NewPlayer returns a solid walking body with the standard player hull.
func NewPlayer(name string, pos mgl64.Vec3) *Body {
	return &Body{
		Name:         name,
		Class:        "player",
		Kind:         KindPlayer,
		MoveType:     MoveWalk,
		Solid:        true,
		Position:     pos,
		HalfExtents:  physics.PlayerHalfExtents(),
		GravityScale: 1,
	}
}

// NewProp returns a solid physics-simulated body.
func NewProp(name string, pos mgl64.Vec3) *Body {
	return &Body{
		Name:         name,
		Class:        "prop_physics",
		Kind:         KindPhysics,
		MoveType:     MoveVPhysics,
		Solid:        true,
		Position:     pos,
		HalfExtents:  physics.PropHalfExtents(),
		GravityScale: 1,
	}
}

func (b *Body) IsPlayer() bool {
	return b != nil && b.Kind == KindPlayer
}

func (b *Body) Grounded() bool {
	return b != nil && b.GroundEntity != 0
}

func (b *Body) ClearGround() {
	if b == nil {
		return
	}
	b.GroundEntity = 0
}

// EffectiveGravityScale treats an unset scale as normal gravity.
func (b *Body) EffectiveGravityScale() float64 {
	if b == nil || b.GravityScale == 0 {
		return 1
	}
	return b.GravityScale
}

func (b *Body) Bounds() physics.AABB {
	return physics.BoxAround(b.Position, b.HalfExtents)
}

func (b *Body) String() string {
	if b == nil {
		return "<nil body>"
	}
	name := b.Name
	if name == "" {
		name = "-"
	}
	return fmt.Sprintf("%s#%d(%s) pos=(%.1f, %.1f, %.1f) vel=(%.1f, %.1f, %.1f)",
		b.Class, b.ID, name,
		b.Position.X(), b.Position.Y(), b.Position.Z(),
		b.Velocity.X(), b.Velocity.Y(), b.Velocity.Z(),
	)
}
