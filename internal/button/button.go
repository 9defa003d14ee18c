// Package button implements timed, re-entrant buttons. A button is pressed by
// use, by a scripted input or by a proximity poller, and releases itself a
// fixed time after its press animation ends unless it is set to stay down.
package button

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Versifine/catapult/internal/event"
	"github.com/Versifine/catapult/internal/logger"
	"github.com/Versifine/catapult/internal/sim"
	"github.com/Versifine/catapult/internal/world"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultModel = "models/props/switch001.mdl"

	SeqIdle = "idle"
	SeqDown = "down"
	SeqUp   = "up"
)

var ErrMissingSequence = errors.New("button: model is missing a required sequence")

type State int

const (
	Idle State = iota
	Pressed
)

func (s State) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "idle"
}

// Presenter plays the button's model animations. It must report the end of
// every non-idle sequence back through SequenceFinished.
type Presenter interface {
	HasSequence(name string) bool
	PlaySequence(name string)
	SetSkin(skin int)
}

type SoundEmitter interface {
	Precache(name string)
	Emit(name string)
}

// completionNotifier is implemented by presenters that can call the button
// back themselves, such as TimedPresenter.
type completionNotifier interface {
	OnSequenceFinished(fn func(name string))
}

type Config struct {
	ID     int32
	Name   string
	Origin mgl64.Vec3
	Model  string
	Skin   int
	// Wait is how long the button stays down after the press animation.
	// Negative means it stays down until something releases it.
	Wait       time.Duration
	CantCancel bool
	DownSound  string
	UpSound    string
}

type Deps struct {
	Scheduler *sim.Scheduler
	Presenter Presenter
	Sounds    SoundEmitter
	Events    event.Publisher
	Variant   Variant
}

type Button struct {
	cfg       Config
	state     State
	locked    bool
	downDone  bool
	sequence  string
	timer     *sim.Timer
	presenter Presenter
	sounds    SoundEmitter
	events    event.Publisher
	variant   Variant
	log       *slog.Logger
}

func New(cfg Config, deps Deps) (*Button, error) {
	if deps.Scheduler == nil {
		return nil, fmt.Errorf("button %q: nil scheduler", cfg.Name)
	}
	if deps.Presenter == nil {
		return nil, fmt.Errorf("button %q: nil presenter", cfg.Name)
	}
	for _, seq := range []string{SeqIdle, SeqDown, SeqUp} {
		if !deps.Presenter.HasSequence(seq) {
			return nil, fmt.Errorf("button %q: %w: %q", cfg.Name, ErrMissingSequence, seq)
		}
	}
	if cfg.Model == "" {
		logger.WarnOnce(fmt.Sprintf("button:%d:%s:model", cfg.ID, cfg.Name),
			"button missing modelname, using default",
			"button", cfg.Name, "origin", cfg.Origin, "model", DefaultModel)
		cfg.Model = DefaultModel
	}
	if deps.Variant == nil {
		deps.Variant = Standard{}
	}

	b := &Button{
		cfg:       cfg,
		timer:     deps.Scheduler.NewTimer(),
		presenter: deps.Presenter,
		sounds:    deps.Sounds,
		events:    deps.Events,
		variant:   deps.Variant,
		log:       logger.L().With("component", "button", "button", cfg.Name),
	}
	if n, ok := deps.Presenter.(completionNotifier); ok {
		n.OnSequenceFinished(b.SequenceFinished)
	}
	if b.sounds != nil {
		for _, s := range []string{cfg.DownSound, cfg.UpSound} {
			if s != "" {
				b.sounds.Precache(s)
			}
		}
	}

	b.presenter.SetSkin(cfg.Skin)
	b.play(SeqIdle)
	return b, nil
}

func (b *Button) ID() int32        { return b.cfg.ID }
func (b *Button) Name() string     { return b.cfg.Name }
func (b *Button) Model() string    { return b.cfg.Model }
func (b *Button) Config() Config   { return b.cfg }
func (b *Button) State() State     { return b.state }
func (b *Button) Pressed() bool    { return b.state == Pressed }
func (b *Button) Locked() bool     { return b.locked }
func (b *Button) Sequence() string { return b.sequence }
func (b *Button) Variant() Variant { return b.variant }
func (b *Button) Stay() bool       { return b.cfg.Wait < 0 }

// Releasing reports whether a deferred release is pending.
func (b *Button) Releasing() bool {
	return b.state == Pressed && b.timer.Pending()
}

// ReleaseAt reports the scheduler time of the pending release.
func (b *Button) ReleaseAt() (time.Duration, bool) {
	if b.state != Pressed {
		return 0, false
	}
	return b.timer.Deadline()
}

// SetSkin switches the model skin. Variants pass absolute indices.
func (b *Button) SetSkin(skin int) {
	b.presenter.SetSkin(skin)
}

// BaseSkin is the configured idle skin.
func (b *Button) BaseSkin() int {
	return b.cfg.Skin
}

func (b *Button) Press() {
	if b.locked || b.state == Pressed {
		return
	}
	b.state = Pressed
	b.downDone = false
	b.timer.Cancel()
	b.variant.OnPress(b)
	b.publish(event.EventButtonPressed)
	b.emit(b.cfg.DownSound)
	b.play(SeqDown)
	b.log.Debug("pressed")
}

func (b *Button) Unpress() {
	if b.locked || b.state == Idle {
		return
	}
	b.state = Idle
	b.downDone = false
	b.timer.Cancel()
	b.variant.OnUnpress(b)
	b.publish(event.EventButtonUnpressed)
	b.emit(b.cfg.UpSound)
	b.play(SeqUp)
	b.log.Debug("unpressed")
}

// Use is a player interaction. It presses an idle button and, when
// cancelling is allowed, releases a pressed one.
func (b *Button) Use(activator *world.Body) {
	if b.locked {
		b.publish(event.EventButtonUseLocked)
		b.log.Debug("use while locked", "activator", activator.String())
		return
	}
	if b.state == Idle {
		b.Press()
		return
	}
	if !b.cfg.CantCancel {
		b.Unpress()
	}
}

// InputPress presses the button regardless of use semantics.
func (b *Button) InputPress() {
	b.Press()
}

// InputUnpress releases the button even when it cannot be cancelled by use.
func (b *Button) InputUnpress() {
	b.Unpress()
}

// Lock freezes the button in its current state and drops any pending release.
func (b *Button) Lock() {
	b.locked = true
	b.timer.Cancel()
}

// Unlock re-enables transitions. A pressed button whose press animation has
// already finished starts its release countdown again.
func (b *Button) Unlock() {
	if !b.locked {
		return
	}
	b.locked = false
	if b.state == Pressed && b.downDone {
		b.armRelease()
	}
}

// SequenceFinished is the presenter's completion callback. Completions for
// a sequence that is no longer playing are ignored.
func (b *Button) SequenceFinished(name string) {
	if name != b.sequence {
		return
	}
	switch name {
	case SeqDown:
		if b.state != Pressed {
			return
		}
		b.downDone = true
		b.armRelease()
	case SeqUp:
		if b.state != Idle {
			return
		}
		b.publish(event.EventButtonReset)
		b.variant.OnReset(b)
		b.play(SeqIdle)
	}
}

func (b *Button) armRelease() {
	if b.Stay() || b.locked {
		return
	}
	b.timer.Arm(b.cfg.Wait, b.Unpress)
}

func (b *Button) play(seq string) {
	b.sequence = seq
	b.presenter.PlaySequence(seq)
}

func (b *Button) emit(sound string) {
	if sound == "" || b.sounds == nil {
		return
	}
	b.sounds.Emit(sound)
}

func (b *Button) publish(name string) {
	if b.events == nil {
		return
	}
	b.events.Publish(name, event.ActuatorEvent{Entity: b.cfg.ID, Name: b.cfg.Name})
}
