package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTickInterval = 15 * time.Millisecond
	DefaultGravity      = 600.0
)

type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Level      LevelConfig      `yaml:"level"`
	Logging    LoggingConfig    `yaml:"logging"`
	Debug      DebugConfig      `yaml:"debug"`
}

type SimulationConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Gravity      float64       `yaml:"gravity"`
	// Floor is the height of the infinite landing plane.
	Floor float64 `yaml:"floor"`
	// Seed feeds the angular-velocity randomizer; 0 picks one from the clock.
	Seed uint64 `yaml:"seed"`
}

type LevelConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type DebugConfig struct {
	Console bool `yaml:"console"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Simulation.TickInterval == 0 {
		c.Simulation.TickInterval = DefaultTickInterval
	}
	if c.Simulation.Gravity == 0 {
		c.Simulation.Gravity = DefaultGravity
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Simulation.TickInterval < 0 {
		errs = append(errs, fmt.Errorf("simulation.tick_interval must be positive, got %s", c.Simulation.TickInterval))
	}
	if c.Simulation.Gravity < 0 {
		errs = append(errs, fmt.Errorf("simulation.gravity must be positive, got %g", c.Simulation.Gravity))
	}
	switch c.Logging.Format {
	case "", "console", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not one of console, text, json", c.Logging.Format))
	}
	if c.Level.Watch && c.Level.Path == "" {
		errs = append(errs, errors.New("level.watch needs level.path"))
	}
	return errors.Join(errs...)
}
