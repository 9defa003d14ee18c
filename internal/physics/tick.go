package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type PhysicsState struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	OnGround bool
}

// BallisticPosition is the closed-form position after t seconds of free
// flight under gravity pulling along -Z. No drag.
func BallisticPosition(start, velocity mgl64.Vec3, gravity, t float64) mgl64.Vec3 {
	pos := start.Add(velocity.Mul(t))
	pos[2] -= 0.5 * gravity * t * t
	return pos
}

// PhysicsTick advances state by dt seconds against a horizontal floor at
// floorZ and reports whether the body landed during this tick.
//
// A grounded body keeps zero vertical velocity no matter what was written to
// it; callers that want a body to leave the ground must clear OnGround first.
func PhysicsTick(state *PhysicsState, gravity, floorZ, dt float64) bool {
	if state == nil || dt <= 0 {
		return false
	}

	if state.OnGround {
		state.Velocity[2] = 0
		friction := math.Exp(-GroundFriction * dt)
		state.Velocity[0] *= friction
		state.Velocity[1] *= friction
		state.Position = state.Position.Add(state.Velocity.Mul(dt))
		zeroResidualVelocity(&state.Velocity)
		return false
	}

	state.Position = BallisticPosition(state.Position, state.Velocity, gravity, dt)
	state.Velocity[2] -= gravity * dt

	if state.Position.Z() <= floorZ && state.Velocity.Z() <= 0 {
		state.Position[2] = floorZ
		state.Velocity[2] = 0
		state.OnGround = true
		return true
	}
	return false
}

func zeroResidualVelocity(v *mgl64.Vec3) {
	if v == nil {
		return
	}
	for axis := 0; axis < 3; axis++ {
		if math.Abs(v[axis]) < MinimumResidualSpeed {
			v[axis] = 0
		}
	}
}
