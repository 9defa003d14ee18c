package level

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/Versifine/catapult/internal/button"
	"github.com/Versifine/catapult/internal/catapult"
	"github.com/Versifine/catapult/internal/event"
	"github.com/Versifine/catapult/internal/filter"
	"github.com/Versifine/catapult/internal/logger"
	"github.com/Versifine/catapult/internal/proximity"
	"github.com/Versifine/catapult/internal/sim"
	"github.com/Versifine/catapult/internal/world"
	"github.com/go-gl/mathgl/mgl64"
)

type SpawnOptions struct {
	Events event.Publisher
	Sounds button.SoundEmitter
	Rand   *rand.Rand
}

// Scene is everything a level put into a world.
type Scene struct {
	World   *sim.World
	Filters *filter.Set
	Pads    []*catapult.Pad
	Buttons []*button.Button
	Pollers []*proximity.Poller
}

func (s *Scene) Pad(name string) (*catapult.Pad, bool) {
	for _, p := range s.Pads {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

func (s *Scene) Button(name string) (*button.Button, bool) {
	for _, b := range s.Buttons {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// Stop halts every poller so the world can be dropped.
func (s *Scene) Stop() {
	for _, p := range s.Pollers {
		p.Stop()
	}
}

type bodyEntry struct {
	body   *world.Body
	parent string
}

// Spawn places the level into w. Filters, targets and bodies go first so
// pads and buttons can resolve names against them.
func (l *Level) Spawn(w *sim.World, opts SpawnOptions) (*Scene, error) {
	if l.ids == nil {
		if err := l.check(); err != nil {
			return nil, err
		}
	}
	if opts.Sounds == nil {
		opts.Sounds = LogSounds{}
	}

	log := logger.L().With("component", "level", "level", l.Name)
	scene := &Scene{World: w, Filters: filter.NewSet()}
	reg := w.Registry()

	var bodies []bodyEntry
	var errs []error
	for i, e := range l.Entities {
		id := l.ids[i]
		switch e.Class() {
		case ClassFilterClass, ClassFilterName, ClassFilterScript:
			p, err := l.buildFilter(e)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			scene.Filters.Add(e.Name(), p)
		case ClassTarget:
			pos, _ := e.Vector("origin", mgl64.Vec3{})
			reg.AddTarget(e.Name(), pos)
		case ClassPlayer, ClassPhysicsProp:
			entry, _ := bodySpec(e, id)
			reg.Add(entry.body)
			bodies = append(bodies, entry)
		}
	}

	for _, entry := range bodies {
		if entry.parent == "" {
			continue
		}
		parent, ok := reg.FindByName(entry.parent)
		if !ok {
			logger.WarnOnce(fmt.Sprintf("level:%s:%d:parent", l.Name, entry.body.ID),
				"parentname does not resolve, body left unattached",
				"body", entry.body.String(), "parent", entry.parent)
			continue
		}
		entry.body.Parent = parent.ID
	}

	for i, e := range l.Entities {
		id := l.ids[i]
		switch e.Class() {
		case ClassCatapult:
			pad, err := l.spawnPad(w, scene, e, id, opts)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			scene.Pads = append(scene.Pads, pad)
		case ClassButton, ClassUnderButton, ClassFloorButton:
			b, poller, err := l.spawnButton(w, e, id, opts)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			scene.Buttons = append(scene.Buttons, b)
			if poller != nil {
				scene.Pollers = append(scene.Pollers, poller)
			}
		case ClassTarget, ClassPlayer, ClassPhysicsProp,
			ClassFilterClass, ClassFilterName, ClassFilterScript:
		default:
			logger.WarnOnce(fmt.Sprintf("level:%s:class:%s", l.Name, e.Class()),
				"unknown classname, entity skipped", "classname", e.Class(), "targetname", e.Name())
		}
	}

	if err := errors.Join(errs...); err != nil {
		scene.Stop()
		return nil, fmt.Errorf("level %s: %w", l.Name, err)
	}
	log.Info("level spawned",
		slog.Int("bodies", reg.Len()),
		slog.Int("pads", len(scene.Pads)),
		slog.Int("buttons", len(scene.Buttons)),
		slog.Int("filters", scene.Filters.Len()),
	)
	return scene, nil
}

func bodySpec(e Entity, id int32) (bodyEntry, error) {
	pos, err := e.Vector("origin", mgl64.Vec3{})
	if err != nil {
		return bodyEntry{}, err
	}
	var b *world.Body
	if e.Class() == ClassPlayer {
		b = world.NewPlayer(e.Name(), pos)
	} else {
		b = world.NewProp(e.Name(), pos)
	}
	b.ID = id

	var errs []error
	if b.Velocity, err = e.Vector("velocity", mgl64.Vec3{}); err != nil {
		errs = append(errs, err)
	}
	if b.HalfExtents, err = e.Vector("extents", b.HalfExtents); err != nil {
		errs = append(errs, err)
	}
	if b.GravityScale, err = e.Float("gravityScale", 1); err != nil {
		errs = append(errs, err)
	}
	return bodyEntry{body: b, parent: e.String("parentname", "")}, errors.Join(errs...)
}

func (l *Level) buildFilter(e Entity) (filter.Predicate, error) {
	negated, _ := e.Bool("negated", false)
	switch e.Class() {
	case ClassFilterClass:
		return filter.Class{Class: e.String("filterclass", ""), Negated: negated}, nil
	case ClassFilterName:
		return filter.Name{Name: e.String("filtername", ""), Negated: negated}, nil
	}

	src := e.String("script", "")
	if file := e.String("scriptfile", ""); file != "" {
		data, err := os.ReadFile(l.resolve(file))
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", e.Name(), err)
		}
		src = string(data)
	}
	s, err := filter.NewScript(e.Name(), src)
	if err != nil {
		return nil, err
	}
	if negated {
		return filter.Not(s), nil
	}
	return s, nil
}

func (l *Level) spawnPad(w *sim.World, scene *Scene, e Entity, id int32, opts SpawnOptions) (*catapult.Pad, error) {
	cfg, err := padConfig(e, id)
	if err != nil {
		return nil, err
	}

	var pred filter.Predicate
	if name := e.String("filtername", ""); name != "" {
		p, ok := scene.Filters.Lookup(name)
		if !ok {
			logger.WarnOnce(fmt.Sprintf("level:%s:%d:filter", l.Name, id),
				"catapult filter not found, accepting every body", "pad", cfg.Name, "filter", name)
		}
		pred = p
	}

	pad, err := catapult.New(cfg, catapult.Deps{
		Locator: w.Registry(),
		Gravity: w,
		Filter:  pred,
		Events:  opts.Events,
		Rand:    opts.Rand,
	})
	if err != nil {
		return nil, err
	}
	w.AddTrigger(&sim.Trigger{
		Name:    cfg.Name,
		Bounds:  pad.Bounds(),
		OnEnter: pad.Activate,
		Active:  pad.Enabled,
	})
	return pad, nil
}

func (l *Level) spawnButton(w *sim.World, e Entity, id int32, opts SpawnOptions) (*button.Button, *proximity.Poller, error) {
	cfg, seqTime, err := buttonConfig(e, id)
	if err != nil {
		return nil, nil, err
	}
	variant, _ := button.VariantFor(e.Class())

	sched := w.Scheduler()
	b, err := button.New(cfg, button.Deps{
		Scheduler: sched,
		Presenter: button.NewTimedPresenter(sched, seqTime),
		Sounds:    opts.Sounds,
		Events:    opts.Events,
		Variant:   variant,
	})
	if err != nil {
		return nil, nil, err
	}
	if e.Class() != ClassFloorButton {
		return b, nil, nil
	}

	pl, err := plateConfig(e)
	if err != nil {
		return nil, nil, err
	}
	poller := proximity.NewPoller(w.Registry(), b, cfg.Origin, pl.extents, pl.interval)
	poller.Start(sched)
	return b, poller, nil
}

// LogSounds is the sound collaborator for hosts without audio. It records
// what would have played at debug level.
type LogSounds struct{}

func (LogSounds) Precache(name string) {
	logger.L().Debug("sound precached", "sound", name)
}

func (LogSounds) Emit(name string) {
	logger.L().Debug("sound", "sound", name)
}
