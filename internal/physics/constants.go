package physics

const (
	// DefaultGravity matches the stock sv_gravity of the level format, in units/s².
	DefaultGravity = 600.0

	GroundFriction         = 4.0
	MinimumResidualSpeed   = 1e-4
	CollisionAxisTolerance = 1e-9

	PlayerHalfWidth  = 16.0
	PlayerHalfHeight = 36.0
	PropHalfExtent   = 8.0
)
