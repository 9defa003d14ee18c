// Package sim is the tick-driven host the actuators run inside: a fixed-step
// clock, a deadline scheduler, and a world that integrates bodies and raises
// trigger enter events.
package sim

import "time"

// Clock counts fixed ticks. Simulation time only moves when Advance is called.
type Clock struct {
	tick     uint64
	interval time.Duration
}

func NewClock(interval time.Duration) *Clock {
	if interval <= 0 {
		interval = 15 * time.Millisecond
	}
	return &Clock{interval: interval}
}

// Advance moves the clock forward one tick and returns the new time.
func (c *Clock) Advance() time.Duration {
	c.tick++
	return c.Now()
}

func (c *Clock) Now() time.Duration {
	return time.Duration(c.tick) * c.interval
}

func (c *Clock) Tick() uint64 {
	return c.tick
}

func (c *Clock) Interval() time.Duration {
	return c.interval
}

// Seconds is the tick length as the float dt the integrator expects.
func (c *Clock) Seconds() float64 {
	return c.interval.Seconds()
}
