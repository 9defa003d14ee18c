package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Versifine/catapult/internal/config"
	"github.com/Versifine/catapult/internal/debug"
	"github.com/Versifine/catapult/internal/event"
	"github.com/Versifine/catapult/internal/level"
	"github.com/Versifine/catapult/internal/logger"
	"github.com/Versifine/catapult/internal/sim"
	"github.com/Versifine/catapult/internal/world"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if cfg.Level.Path == "" {
		slog.Error("No level configured", "config", *configPath)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := newHost(cfg)
	if err := h.load(ctx); err != nil {
		slog.Error("Failed to load level", "error", err)
		os.Exit(1)
	}
	defer h.shutdown()

	if cfg.Level.Watch {
		go h.watch(ctx)
	}

	if cfg.Debug.Console {
		console := debug.NewConsole(h)
		if err := console.Start(ctx); err != nil {
			slog.Error("Debug console failed", "error", err)
		}
		return
	}
	<-ctx.Done()
}

// host owns the running world and swaps it out when the level file changes.
type host struct {
	cfg *config.Config
	bus *event.Bus
	rng *rand.Rand

	mu     sync.Mutex
	scene  *level.Scene
	files  []string
	cancel context.CancelFunc
	done   chan struct{}
}

func newHost(cfg *config.Config) *host {
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	bus := event.NewBus()
	bus.SubscribeAll(func(name string, evt any) {
		if e, ok := evt.(event.ActuatorEvent); ok {
			slog.Info("Output fired", "event", name, "entity", e.Entity, "name", e.Name)
		}
	})
	return &host{
		cfg: cfg,
		bus: bus,
		rng: rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

func (h *host) Scene() *level.Scene {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scene
}

// load builds a fresh world from the level file and starts it, replacing
// whatever was running. A level that fails to load leaves the old one up.
func (h *host) load(ctx context.Context) error {
	l, err := level.Load(h.cfg.Level.Path)
	if err != nil {
		return err
	}
	w := sim.NewWorld(world.NewRegistry(world.DefaultCellSize), sim.Options{
		TickInterval: h.cfg.Simulation.TickInterval,
		Gravity:      h.cfg.Simulation.Gravity,
		Floor:        h.cfg.Simulation.Floor,
	})
	scene, err := l.Spawn(w, level.SpawnOptions{Events: h.bus, Rand: h.rng})
	if err != nil {
		return err
	}

	h.shutdown()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Run(runCtx); err != nil {
			slog.Error("Simulation stopped", "error", err)
		}
	}()

	h.mu.Lock()
	h.scene = scene
	h.files = append([]string{h.cfg.Level.Path}, l.ScriptFiles()...)
	h.cancel = cancel
	h.done = done
	h.mu.Unlock()

	slog.Info("Level running", "level", l.Name, "path", h.cfg.Level.Path)
	return nil
}

func (h *host) shutdown() {
	h.mu.Lock()
	cancel, done, scene := h.cancel, h.done, h.scene
	h.cancel, h.done = nil, nil
	h.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	if scene != nil {
		scene.World.Do(scene.Stop)
	}
}

func (h *host) watch(ctx context.Context) {
	h.mu.Lock()
	files := h.files
	h.mu.Unlock()

	w, err := level.NewWatcher(files...)
	if err != nil {
		slog.Error("Failed to watch level", "error", err)
		return
	}
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-w.Events:
			if !ok {
				return
			}
			slog.Info("Level changed, reloading", "file", name)
			if err := h.load(ctx); err != nil {
				slog.Error("Reload failed, keeping the running level", "error", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Warn("Level watcher error", "error", err)
		}
	}
}
