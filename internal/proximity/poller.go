// Package proximity presses and releases an actuator depending on whether
// anything is standing on it, sampled at a fixed interval.
package proximity

import (
	"time"

	"github.com/Versifine/catapult/internal/physics"
	"github.com/Versifine/catapult/internal/sim"
	"github.com/Versifine/catapult/internal/world"
	"github.com/go-gl/mathgl/mgl64"
)

const DefaultInterval = 100 * time.Millisecond

type Query interface {
	BodiesIn(box physics.AABB) []*world.Body
}

type Actuator interface {
	Pressed() bool
	Press()
	Unpress()
}

// Poller counts props and players inside a box around the actuator. It only
// reacts when the count crosses between zero and non-zero, so several
// occupants still mean a single press. Visits shorter than one interval can
// go unnoticed.
type Poller struct {
	query    Query
	target   Actuator
	bounds   physics.AABB
	interval time.Duration
	timer    *sim.Timer
	count    int
}

func NewPoller(query Query, target Actuator, center, halfExtents mgl64.Vec3, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		query:    query,
		target:   target,
		bounds:   physics.BoxAround(center, halfExtents),
		interval: interval,
	}
}

func (p *Poller) Bounds() physics.AABB {
	return p.bounds
}

func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Count is the number of occupants seen by the last poll.
func (p *Poller) Count() int {
	return p.count
}

// Poll samples the box once and updates the actuator.
func (p *Poller) Poll() int {
	count := 0
	for _, b := range p.query.BodiesIn(p.bounds) {
		if !occupies(b) {
			continue
		}
		// the query may answer coarsely; the origin decides
		if !p.bounds.Contains(b.Position) {
			continue
		}
		count++
	}
	p.count = count

	switch {
	case count == 0 && p.target.Pressed():
		p.target.Unpress()
	case count > 0 && !p.target.Pressed():
		p.target.Press()
	}
	return count
}

func occupies(b *world.Body) bool {
	return b != nil && (b.Kind == world.KindPhysics || b.Kind == world.KindPlayer)
}

// Start polls every interval on sched until Stop.
func (p *Poller) Start(sched *sim.Scheduler) {
	if p.timer == nil {
		p.timer = sched.NewTimer()
	}
	p.timer.Arm(p.interval, p.tick)
}

func (p *Poller) tick() {
	p.Poll()
	p.timer.Arm(p.interval, p.tick)
}

func (p *Poller) Stop() {
	if p.timer != nil {
		p.timer.Cancel()
	}
}

func (p *Poller) Running() bool {
	return p.timer != nil && p.timer.Pending()
}
