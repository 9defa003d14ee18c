package physics

import "github.com/go-gl/mathgl/mgl64"

// AABB is an axis-aligned box in world units.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// BoxAround builds a box centered on center with the given half extents.
func BoxAround(center, half mgl64.Vec3) AABB {
	return AABB{
		Min: center.Sub(half),
		Max: center.Add(half),
	}
}

// BoxFromBounds builds a box from mins/maxs relative to origin, the way
// brush entities describe their volume.
func BoxFromBounds(origin, mins, maxs mgl64.Vec3) AABB {
	return AABB{
		Min: origin.Add(mins),
		Max: origin.Add(maxs),
	}
}

func PlayerHalfExtents() mgl64.Vec3 {
	return mgl64.Vec3{PlayerHalfWidth, PlayerHalfWidth, PlayerHalfHeight}
}

func PropHalfExtents() mgl64.Vec3 {
	return mgl64.Vec3{PropHalfExtent, PropHalfExtent, PropHalfExtent}
}

func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) HalfExtents() mgl64.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Valid reports whether Min <= Max on every axis.
func (b AABB) Valid() bool {
	for axis := 0; axis < 3; axis++ {
		if b.Min[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Contains tests p against the box one axis at a time, bounds inclusive.
func (b AABB) Contains(p mgl64.Vec3) bool {
	for axis := 0; axis < 3; axis++ {
		if p[axis] < b.Min[axis]-CollisionAxisTolerance || p[axis] > b.Max[axis]+CollisionAxisTolerance {
			return false
		}
	}
	return true
}

// Intersects reports overlap with positive volume; touching faces do not count.
func (b AABB) Intersects(o AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if b.Max[axis] <= o.Min[axis] || b.Min[axis] >= o.Max[axis] {
			return false
		}
	}
	return true
}
