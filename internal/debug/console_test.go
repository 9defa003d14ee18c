package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Versifine/catapult/internal/event"
	"github.com/Versifine/catapult/internal/level"
	"github.com/Versifine/catapult/internal/sim"
	"github.com/Versifine/catapult/internal/world"
)

const testLevel = `
entities:
  - classname: info_target
    targetname: ledge
    origin: 600 0 100
  - classname: player
    targetname: chell
    origin: -500 0 36
  - classname: trigger_catapult
    targetname: pad
    launchTarget: ledge
  - classname: prop_button
    targetname: btn
    modelname: models/props/switch001.mdl
    delay: 2
`

type staticScene struct{ scene *level.Scene }

func (s staticScene) Scene() *level.Scene { return s.scene }

func newTestConsole(t *testing.T) (*Console, *bytes.Buffer, *level.Scene) {
	t.Helper()
	l, err := level.Parse([]byte(testLevel))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	w := sim.NewWorld(world.NewRegistry(0), sim.Options{TickInterval: 10 * time.Millisecond})
	scene, err := l.Spawn(w, level.SpawnOptions{Events: event.NewBus()})
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	out := &bytes.Buffer{}
	c := NewConsole(staticScene{scene})
	c.out = out
	return c, out, scene
}

func TestExecuteButtonCommands(t *testing.T) {
	c, out, scene := newTestConsole(t)
	b, _ := scene.Button("btn")

	c.Execute("use btn chell")
	if !b.Pressed() {
		t.Fatal(":use should press the button")
	}
	c.Execute("lock btn")
	c.Execute("unpress btn")
	if !b.Pressed() {
		t.Fatal("locked button must ignore :unpress")
	}
	c.Execute("unlock btn")
	c.Execute("unpress btn")
	if b.Pressed() {
		t.Fatal(":unpress should release after unlock")
	}
	if !strings.Contains(out.String(), "use btn -> pressed") {
		t.Fatalf("output = %q", out.String())
	}

	out.Reset()
	c.Execute("press nope")
	if !strings.Contains(out.String(), `button "nope" not found`) {
		t.Fatalf("output = %q", out.String())
	}
}

func TestExecuteStepAndStatus(t *testing.T) {
	c, out, scene := newTestConsole(t)

	c.Execute("step 5")
	if scene.World.Clock().Tick() != 5 {
		t.Fatalf("tick = %d, want 5", scene.World.Clock().Tick())
	}
	c.Execute("step -1")
	if !strings.Contains(out.String(), "usage: :step") {
		t.Fatalf("output = %q", out.String())
	}

	out.Reset()
	c.Execute("status")
	for _, want := range []string{"tick=5", "button btn", "pad    pad", "target=ledge"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("status output %q missing %q", out.String(), want)
		}
	}
}

func TestExecutePreviewAndLaunch(t *testing.T) {
	c, out, scene := newTestConsole(t)

	c.Execute("preview pad chell")
	if !strings.Contains(out.String(), "mode=target") || !strings.Contains(out.String(), "lands=(600.0, 0.0, 100.0)") {
		t.Fatalf("preview output = %q", out.String())
	}

	out.Reset()
	c.Execute("launch pad chell")
	player, _ := scene.World.Registry().FindByName("chell")
	if !strings.Contains(out.String(), "true") || player.Velocity.Z() <= 0 {
		t.Fatalf("launch output = %q velocity = %v", out.String(), player.Velocity)
	}
}

func TestExecuteEnableDisablePad(t *testing.T) {
	c, out, scene := newTestConsole(t)
	player, _ := scene.World.Registry().FindByName("chell")

	c.Execute("disable pad")
	c.Execute("tp chell 0 0 36")
	c.Execute("step 3")
	if player.Velocity.Z() > 0 {
		t.Fatalf("velocity = %v, a disabled pad should not launch", player.Velocity)
	}
	out.Reset()
	c.Execute("status")
	if !strings.Contains(out.String(), "disabled") || !strings.Contains(out.String(), "inside=0") {
		t.Fatalf("status output = %q", out.String())
	}

	c.Execute("enable pad")
	c.Execute("step")
	if player.Velocity.Z() <= 0 {
		t.Fatalf("velocity = %v, want a launch after :enable", player.Velocity)
	}
	c.Execute("enable")
	if !strings.Contains(out.String(), "usage: :enable <pad>") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestStatusShowsPendingRelease(t *testing.T) {
	c, out, _ := newTestConsole(t)

	c.Execute("use btn")
	c.Execute("step 60")
	out.Reset()
	c.Execute("status")
	if !strings.Contains(out.String(), "release=1.9s") {
		t.Fatalf("status output = %q, want the remaining release time", out.String())
	}
}

func TestExecuteTeleportAndUnknown(t *testing.T) {
	c, out, scene := newTestConsole(t)

	c.Execute("tp chell 10 20 300")
	player, _ := scene.World.Registry().FindByName("chell")
	if player.Position.X() != 10 || player.Position.Z() != 300 {
		t.Fatalf("position = %v", player.Position)
	}
	c.Execute("tp chell a b c")
	c.Execute("fly")
	for _, want := range []string{"invalid tp args", "unknown command: fly"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output %q missing %q", out.String(), want)
		}
	}
}

func TestHandleKeyCommandMode(t *testing.T) {
	c, _, scene := newTestConsole(t)

	for _, b := range []byte(":step 3") {
		c.handleKey(b)
	}
	c.handleKey(127)
	c.handleKey('2')
	c.handleKey(13)
	if scene.World.Clock().Tick() != 2 {
		t.Fatalf("tick = %d, want 2 after typing :step 2", scene.World.Clock().Tick())
	}

	c.handleKey('p')
	if !scene.World.Paused() {
		t.Fatal("'p' should pause the world")
	}
	if !c.handleKey('q') {
		t.Fatal("'q' should ask to quit")
	}
}
