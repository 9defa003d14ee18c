package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Versifine/catapult/internal/catapult"
	"github.com/Versifine/catapult/internal/level"
	"github.com/Versifine/catapult/internal/physics"
	"github.com/Versifine/catapult/internal/world"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"
)

const defaultRefreshInterval = 200 * time.Millisecond

// SceneProvider hands out the live scene. It changes when the level reloads.
type SceneProvider interface {
	Scene() *level.Scene
}

type Console struct {
	scenes          SceneProvider
	out             io.Writer
	refreshInterval time.Duration

	mu          sync.Mutex
	commandMode bool
	commandBuf  []rune
	statusWidth int
}

func NewConsole(scenes SceneProvider) *Console {
	return &Console{
		scenes:          scenes,
		out:             os.Stdout,
		refreshInterval: defaultRefreshInterval,
	}
}

func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.scenes == nil {
		return fmt.Errorf("console scene provider is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(c.out, "\r\n")
	}()

	fmt.Fprint(c.out, "[debug] console started (p pause, n step, s status, : command, q quit)\r\n")
	c.renderStatusLine()

	go c.refreshLoop(ctx)

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		if c.handleKey(b) {
			return nil
		}
	}
}

func (c *Console) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.renderStatusLine()
		}
	}
}

// handleKey reports whether the operator asked to quit.
func (c *Console) handleKey(b byte) bool {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return false
	}

	switch b {
	case ':':
		c.enterCommandMode()
		return false
	case 'p', 'P':
		if scene := c.scenes.Scene(); scene != nil {
			paused := !scene.World.Paused()
			scene.World.SetPaused(paused)
			slog.Debug("debug pause toggled", "paused", paused)
		}
	case 'n', 'N':
		c.Execute("step")
	case 's', 'S':
		fmt.Fprint(c.out, "\r\n")
		c.Execute("status")
	case 'q', 'Q', 3: // Ctrl-C arrives as a byte in raw mode
		return true
	}
	c.renderStatusLine()
	return false
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			c.Execute(cmd)
		}
		c.renderStatusLine()
		return
	case 27: // ESC
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Fprint(c.out, "\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s ", buf)
		fmt.Fprintf(c.out, "\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s", buf)
	}
}

// Execute runs one command line against the current scene. All scene access
// happens between ticks.
func (c *Console) Execute(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}
	scene := c.scenes.Scene()
	if scene == nil {
		fmt.Fprint(c.out, "[debug] no level loaded\r\n")
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "use", "press", "unpress", "lock", "unlock":
		c.buttonCommand(scene, parts)
	case "status":
		scene.World.Do(func() { c.printStatus(scene) })
	case "snap":
		scene.World.Do(func() {
			fmt.Fprintf(c.out, "[debug] %s\r\n", strings.ReplaceAll(scene.World.Registry().Snapshot().String(), "\n", "\r\n"))
		})
	case "step":
		n := 1
		if len(parts) == 2 {
			v, err := strconv.Atoi(parts[1])
			if err != nil || v <= 0 {
				fmt.Fprint(c.out, "[debug] usage: :step [ticks]\r\n")
				return
			}
			n = v
		}
		scene.World.StepN(n)
		fmt.Fprintf(c.out, "[debug] stepped %d tick(s)\r\n", n)
	case "tp":
		c.teleport(scene, parts)
	case "preview", "launch", "enable", "disable":
		c.padCommand(scene, parts)
	default:
		fmt.Fprintf(c.out, "[debug] unknown command: %s\r\n", parts[0])
	}
}

func (c *Console) buttonCommand(scene *level.Scene, parts []string) {
	if len(parts) < 2 {
		fmt.Fprintf(c.out, "[debug] usage: :%s <button> [activator]\r\n", parts[0])
		return
	}
	b, ok := scene.Button(parts[1])
	if !ok {
		fmt.Fprintf(c.out, "[debug] button %q not found\r\n", parts[1])
		return
	}

	scene.World.Do(func() {
		switch parts[0] {
		case "use":
			var activator *world.Body
			if len(parts) == 3 {
				activator, _ = scene.World.Registry().FindByName(parts[2])
			}
			b.Use(activator)
		case "press":
			b.InputPress()
		case "unpress":
			b.InputUnpress()
		case "lock":
			b.Lock()
		case "unlock":
			b.Unlock()
		}
		fmt.Fprintf(c.out, "[debug] %s %s -> %s locked=%t releasing=%t\r\n",
			parts[0], b.Name(), b.State(), b.Locked(), b.Releasing())
	})
}

func (c *Console) teleport(scene *level.Scene, parts []string) {
	if len(parts) != 5 {
		fmt.Fprint(c.out, "[debug] usage: :tp <body> <x> <y> <z>\r\n")
		return
	}
	pos, err := parseVec(parts[2:5])
	if err != nil {
		fmt.Fprint(c.out, "[debug] invalid tp args\r\n")
		return
	}
	scene.World.Do(func() {
		reg := scene.World.Registry()
		b, ok := reg.FindByName(parts[1])
		if !ok {
			fmt.Fprintf(c.out, "[debug] body %q not found\r\n", parts[1])
			return
		}
		b.ClearGround()
		b.Velocity = mgl64.Vec3{}
		reg.Move(b.ID, pos)
		fmt.Fprintf(c.out, "[debug] %s moved to %s\r\n", b, formatVec(pos))
	})
}

func (c *Console) padCommand(scene *level.Scene, parts []string) {
	toggle := parts[0] == "enable" || parts[0] == "disable"
	if (toggle && len(parts) != 2) || (!toggle && len(parts) != 3) {
		if toggle {
			fmt.Fprintf(c.out, "[debug] usage: :%s <pad>\r\n", parts[0])
		} else {
			fmt.Fprintf(c.out, "[debug] usage: :%s <pad> <body>\r\n", parts[0])
		}
		return
	}
	pad, ok := scene.Pad(parts[1])
	if !ok {
		fmt.Fprintf(c.out, "[debug] pad %q not found\r\n", parts[1])
		return
	}
	if toggle {
		scene.World.Do(func() {
			if parts[0] == "enable" {
				pad.Enable()
			} else {
				pad.Disable()
			}
		})
		fmt.Fprintf(c.out, "[debug] %s %s\r\n", pad.Name(), enabledLabel(pad.Enabled()))
		return
	}
	scene.World.Do(func() {
		b, ok := scene.World.Registry().FindByName(parts[2])
		if !ok {
			fmt.Fprintf(c.out, "[debug] body %q not found\r\n", parts[2])
			return
		}
		if parts[0] == "launch" {
			fmt.Fprintf(c.out, "[debug] launch %s -> %s: %t vel=%s\r\n", pad.Name(), b, pad.Activate(b), formatVec(b.Velocity))
			return
		}
		plan := pad.Plan(b)
		fmt.Fprintf(c.out, "[debug] %s mode=%s vel=%s\r\n", pad.Name(), plan.Mode, formatVec(plan.Velocity))
		if plan.Mode == catapult.ModeTarget {
			g := scene.World.Gravity() * pad.Config().GravityScale * b.EffectiveGravityScale()
			landing := physics.BallisticPosition(b.Position, plan.Velocity, g, plan.Arc.FlightTime())
			fmt.Fprintf(c.out, "[debug]   apex=%s t=%.3fs lands=%s target=%s\r\n",
				formatVec(plan.Arc.Apex), plan.Arc.FlightTime(), formatVec(landing), formatVec(plan.Target))
		}
	})
}

func (c *Console) printStatus(scene *level.Scene) {
	clock := scene.World.Clock()
	fmt.Fprintf(c.out, "[debug] tick=%d t=%s bodies=%d\r\n", clock.Tick(), clock.Now(), scene.World.Registry().Len())

	buttons := append(scene.Buttons[:0:0], scene.Buttons...)
	sort.Slice(buttons, func(i, j int) bool { return buttons[i].Name() < buttons[j].Name() })
	for _, b := range buttons {
		release := "-"
		if at, ok := b.ReleaseAt(); ok {
			release = (at - clock.Now()).String()
		}
		fmt.Fprintf(c.out, "  button %-20s %-7s %-18s locked=%t release=%s seq=%s\r\n",
			b.Name(), b.State(), b.Variant().Kind(), b.Locked(), release, b.Sequence())
	}
	occupants := make(map[string]int, len(scene.Pads))
	for _, t := range scene.World.Triggers() {
		occupants[t.Name] = t.Occupants()
	}
	for _, p := range scene.Pads {
		cfg := p.Config()
		target := cfg.Target
		if target == "" {
			target = "-"
		}
		fmt.Fprintf(c.out, "  pad    %-20s %-8s target=%s dir=%s inside=%d\r\n",
			p.Name(), enabledLabel(p.Enabled()), target, formatVec(p.Direction()), occupants[p.Name()])
	}
	for _, p := range scene.Pollers {
		fmt.Fprintf(c.out, "  plate  %-20s running=%t count=%d every=%s\r\n",
			formatVec(p.Bounds().Center()), p.Running(), p.Count(), p.Interval())
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] keys:\r\n")
	fmt.Fprint(c.out, "  P: pause/resume the simulation\r\n")
	fmt.Fprint(c.out, "  N: step one tick\r\n")
	fmt.Fprint(c.out, "  S: print status\r\n")
	fmt.Fprint(c.out, "  Q: quit\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "[debug] commands:\r\n")
	fmt.Fprint(c.out, "  :use <button> [activator]\r\n")
	fmt.Fprint(c.out, "  :press <button>\r\n")
	fmt.Fprint(c.out, "  :unpress <button>\r\n")
	fmt.Fprint(c.out, "  :lock <button>\r\n")
	fmt.Fprint(c.out, "  :unlock <button>\r\n")
	fmt.Fprint(c.out, "  :preview <pad> <body>\r\n")
	fmt.Fprint(c.out, "  :launch <pad> <body>\r\n")
	fmt.Fprint(c.out, "  :enable <pad>\r\n")
	fmt.Fprint(c.out, "  :disable <pad>\r\n")
	fmt.Fprint(c.out, "  :tp <body> <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :step [ticks]\r\n")
	fmt.Fprint(c.out, "  :status\r\n")
	fmt.Fprint(c.out, "  :snap\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	width := c.statusWidth
	c.mu.Unlock()

	scene := c.scenes.Scene()
	if scene == nil {
		return
	}
	var tick uint64
	var now time.Duration
	pressed := 0
	scene.World.Do(func() {
		tick = scene.World.Clock().Tick()
		now = scene.World.Clock().Now()
		for _, b := range scene.Buttons {
			if b.Pressed() {
				pressed++
			}
		}
	})

	line := fmt.Sprintf("[RUN:%s | tick:%d t:%s | buttons:%d/%d pads:%d]",
		boolLabel(!scene.World.Paused()), tick, now.Truncate(time.Millisecond), pressed, len(scene.Buttons), len(scene.Pads))

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func parseVec(parts []string) (mgl64.Vec3, error) {
	var v mgl64.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return mgl64.Vec3{}, err
		}
		v[i] = f
	}
	return v, nil
}

func formatVec(v mgl64.Vec3) string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", v.X(), v.Y(), v.Z())
}

func enabledLabel(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
