// Package level reads entity placement files and spawns them into a world.
package level

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Versifine/catapult/internal/button"
	"github.com/Versifine/catapult/internal/catapult"
	"github.com/Versifine/catapult/internal/physics"
	"github.com/Versifine/catapult/internal/proximity"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	ClassCatapult     = "trigger_catapult"
	ClassButton       = "prop_button"
	ClassUnderButton  = "prop_under_button"
	ClassFloorButton  = "prop_floor_button"
	ClassTarget       = "info_target"
	ClassPlayer       = "player"
	ClassPhysicsProp  = "prop_physics"
	ClassFilterClass  = "filter_activator_class"
	ClassFilterName   = "filter_activator_name"
	ClassFilterScript = "filter_script"
)

var ErrNoClassname = errors.New("level: entity has no classname")

var (
	defaultPadMins      = mgl64.Vec3{-32, -32, 0}
	defaultPadMaxs      = mgl64.Vec3{32, 32, 16}
	// tall enough to hold the origin of a player standing on the plate
	defaultPlateExtents = mgl64.Vec3{32, 32, physics.PlayerHalfHeight + 12}
)

type Level struct {
	Name     string   `yaml:"name"`
	Entities []Entity `yaml:"entities"`

	// dir resolves relative script files.
	dir string
	ids []int32
}

// Parse decodes a level and checks every entity it knows how to spawn, so a
// bad value fails here instead of mid-simulation.
func Parse(data []byte) (*Level, error) {
	l := &Level{}
	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("level: %w", err)
	}
	if err := l.check(); err != nil {
		return nil, err
	}
	return l, nil
}

func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.dir = filepath.Dir(path)
	if l.Name == "" {
		l.Name = filepath.Base(path)
	}
	return l, nil
}

// ScriptFiles lists the external filter scripts the level refers to.
func (l *Level) ScriptFiles() []string {
	var out []string
	for _, e := range l.Entities {
		if e.Class() != ClassFilterScript {
			continue
		}
		if f := e.String("scriptfile", ""); f != "" {
			out = append(out, l.resolve(f))
		}
	}
	return out
}

func (l *Level) resolve(path string) string {
	if filepath.IsAbs(path) || l.dir == "" {
		return path
	}
	return filepath.Join(l.dir, path)
}

func (l *Level) check() error {
	l.ids = make([]int32, len(l.Entities))
	seen := make(map[int32]int, len(l.Entities))
	var errs []error
	for i, e := range l.Entities {
		if e == nil || e.Class() == "" {
			errs = append(errs, fmt.Errorf("entity %d: %w", i, ErrNoClassname))
			continue
		}
		id, err := e.Int("id", i+1)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, dup := seen[int32(id)]; dup {
			errs = append(errs, fmt.Errorf("entity %d: id %d already used by entity %d", i, id, prev))
			continue
		}
		seen[int32(id)] = i
		l.ids[i] = int32(id)

		if err := checkEntity(e, int32(id)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func checkEntity(e Entity, id int32) error {
	switch e.Class() {
	case ClassCatapult:
		_, err := padConfig(e, id)
		return err
	case ClassButton, ClassUnderButton, ClassFloorButton:
		_, _, err := buttonConfig(e, id)
		if err != nil {
			return err
		}
		if e.Class() == ClassFloorButton {
			_, err = plateConfig(e)
		}
		return err
	case ClassTarget:
		_, err := e.Vector("origin", mgl64.Vec3{})
		return err
	case ClassPlayer, ClassPhysicsProp:
		_, err := bodySpec(e, id)
		return err
	case ClassFilterClass, ClassFilterName, ClassFilterScript:
		_, err := e.Bool("negated", false)
		return err
	}
	return nil
}

func padConfig(e Entity, id int32) (catapult.Config, error) {
	cfg := catapult.Config{ID: id, Name: e.Name(), Target: e.String("launchTarget", "")}
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	var err error
	cfg.Origin, err = e.Vector("origin", mgl64.Vec3{})
	collect(err)
	cfg.Angles, err = e.Vector("angles", mgl64.Vec3{})
	collect(err)
	cfg.Mins, err = e.Vector("mins", defaultPadMins)
	collect(err)
	cfg.Maxs, err = e.Vector("maxs", defaultPadMaxs)
	collect(err)
	cfg.LaunchDirection, err = e.Vector("launchDirection", mgl64.Vec3{0, 0, 1})
	collect(err)
	cfg.PlayerSpeed, err = e.Float("playerSpeed", 450)
	collect(err)
	cfg.PhysicsSpeed, err = e.Float("physicsSpeed", 450)
	collect(err)
	cfg.MinApexHeight, err = e.Float("minApexHeight", 0)
	collect(err)
	cfg.GravityScale, err = e.Float("gravityScale", 1)
	collect(err)
	cfg.RandomRotation, err = e.Bool("applyAngularImpulse", false)
	collect(err)
	cfg.StartDisabled, err = e.Bool("StartDisabled", false)
	collect(err)

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	// reuse the constructor checks
	if _, err := catapult.New(cfg, catapult.Deps{}); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func buttonConfig(e Entity, id int32) (button.Config, time.Duration, error) {
	cfg := button.Config{
		ID:        id,
		Name:      e.Name(),
		Model:     e.String("modelname", ""),
		DownSound: e.String("downSound", ""),
		UpSound:   e.String("upSound", ""),
	}
	var errs []error
	var err error
	cfg.Origin, err = e.Vector("origin", mgl64.Vec3{})
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Skin, err = e.Int("skin", 0)
	if err != nil {
		errs = append(errs, err)
	}
	defaultDelay := 1.0
	if e.Class() == ClassFloorButton {
		defaultDelay = -1
	}
	delay, err := e.Float("delay", defaultDelay)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Wait = seconds(delay)
	cfg.CantCancel, err = e.Bool("cantCancel", false)
	if err != nil {
		errs = append(errs, err)
	}
	seqTime, err := e.Float("sequenceTime", button.DefaultSequenceTime.Seconds())
	if err != nil {
		errs = append(errs, err)
	}
	return cfg, seconds(seqTime), errors.Join(errs...)
}

type plate struct {
	extents  mgl64.Vec3
	interval time.Duration
}

func plateConfig(e Entity) (plate, error) {
	extents, err := e.Vector("extents", defaultPlateExtents)
	if err != nil {
		return plate{}, err
	}
	interval, err := e.Float("pollInterval", proximity.DefaultInterval.Seconds())
	if err != nil {
		return plate{}, err
	}
	return plate{extents: extents, interval: seconds(interval)}, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
