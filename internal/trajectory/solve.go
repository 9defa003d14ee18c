// Package trajectory inverts projectile motion: given where a body is and
// where it has to land, it finds the launch velocity.
package trajectory

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrNonPositiveSpeedCap = errors.New("trajectory: max horizontal speed must be positive")
	ErrNonPositiveGravity  = errors.New("trajectory: gravity must be positive")
)

// Result describes one computed arc. It is only valid for the inputs it was
// solved from; targets and launch points move, so never cache it.
type Result struct {
	Velocity         mgl64.Vec3
	Apex             mgl64.Vec3
	ApexHeight       float64
	TimeToApex       float64
	TimeApexToTarget float64
}

func (r Result) FlightTime() float64 {
	return r.TimeToApex + r.TimeApexToTarget
}

// HorizontalSpeed is the XY magnitude of the launch velocity.
func (r Result) HorizontalSpeed() float64 {
	return math.Hypot(r.Velocity.X(), r.Velocity.Y())
}

// Solve computes the launch velocity that carries a body from start to end
// under gravity (pulling along -Z), rising at least minApexHeight above start.
//
// maxHorizontalSpeed only sets a minimum flight time. The velocity is never
// clamped afterwards: when the step up to the target dominates the apex, the
// horizontal speed can exceed the cap, up to twice its value.
func Solve(start, end mgl64.Vec3, gravity, minApexHeight, maxHorizontalSpeed float64) (Result, error) {
	if !(maxHorizontalSpeed > 0) {
		return Result{}, ErrNonPositiveSpeedCap
	}
	if !(gravity > 0) {
		return Result{}, ErrNonPositiveGravity
	}

	stepHeight := end.Z() - start.Z()

	horizontal := end.Sub(start)
	horizontal[2] = 0
	distance := horizontal.Len()
	var dir mgl64.Vec3
	if distance > 0 {
		dir = horizontal.Mul(1 / distance)
	}

	// hang in the air long enough that the cap is never needed
	minHorzTime := distance / maxHorizontalSpeed
	halfTime := minHorzTime * 0.5
	minHorzHeight := 0.5 * gravity * halfTime * halfTime

	apexHeight := math.Max(minApexHeight, math.Max(minHorzHeight, stepHeight))

	t0 := math.Sqrt(2 * apexHeight / gravity)
	t1 := math.Sqrt(2 * math.Abs(apexHeight-stepHeight) / gravity)

	var horzSpeed float64
	if flight := t0 + t1; flight > 0 {
		horzSpeed = distance / flight
	}

	velocity := dir.Mul(horzSpeed)
	velocity[2] = math.Sqrt(2 * gravity * apexHeight)

	apex := start.Add(dir.Mul(horzSpeed * t0))
	apex[2] += apexHeight

	return Result{
		Velocity:         velocity,
		Apex:             apex,
		ApexHeight:       apexHeight,
		TimeToApex:       t0,
		TimeApexToTarget: t1,
	}, nil
}
