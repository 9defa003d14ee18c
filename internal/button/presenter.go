package button

import (
	"time"

	"github.com/Versifine/catapult/internal/sim"
)

const DefaultSequenceTime = 500 * time.Millisecond

// TimedPresenter stands in for animation playback: every sequence except
// idle "finishes" a fixed time after it starts.
type TimedPresenter struct {
	lengths map[string]time.Duration
	timer   *sim.Timer
	done    func(name string)
	skin    int
	current string
}

// NewTimedPresenter knows the idle, down and up sequences, all lasting
// length. Zero or negative length uses DefaultSequenceTime.
func NewTimedPresenter(sched *sim.Scheduler, length time.Duration) *TimedPresenter {
	if length <= 0 {
		length = DefaultSequenceTime
	}
	return NewTimedPresenterWith(sched, map[string]time.Duration{
		SeqIdle: 0,
		SeqDown: length,
		SeqUp:   length,
	})
}

// NewTimedPresenterWith knows exactly the sequences in lengths.
func NewTimedPresenterWith(sched *sim.Scheduler, lengths map[string]time.Duration) *TimedPresenter {
	return &TimedPresenter{lengths: lengths, timer: sched.NewTimer()}
}

func (p *TimedPresenter) HasSequence(name string) bool {
	_, ok := p.lengths[name]
	return ok
}

func (p *TimedPresenter) PlaySequence(name string) {
	p.current = name
	if name == SeqIdle {
		p.timer.Cancel()
		return
	}
	p.timer.Arm(p.lengths[name], func() {
		if p.done != nil {
			p.done(name)
		}
	})
}

func (p *TimedPresenter) SetSkin(skin int) {
	p.skin = skin
}

func (p *TimedPresenter) OnSequenceFinished(fn func(name string)) {
	p.done = fn
}

func (p *TimedPresenter) Skin() int {
	return p.skin
}

func (p *TimedPresenter) Current() string {
	return p.current
}
