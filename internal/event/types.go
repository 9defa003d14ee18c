package event

const (
	EventLaunched        = "catapult.launched"
	EventButtonPressed   = "button.pressed"
	EventButtonUnpressed = "button.unpressed"
	EventButtonReset     = "button.reset"
	EventButtonUseLocked = "button.use_locked"
)

// ActuatorEvent identifies the actuator that fired. Outputs carry no other
// payload.
type ActuatorEvent struct {
	Entity int32
	Name   string
}
