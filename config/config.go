// Package config provides configuration loading and access for the simulator.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulator configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Particles  ParticlesConfig  `yaml:"particles"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Hand       HandConfig       `yaml:"hand"`
	Simulation SimulationConfig `yaml:"simulation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ParticlesConfig holds the initial particle set.
type ParticlesConfig struct {
	Count   int         `yaml:"count"`
	Radius  float64     `yaml:"radius"`
	Spacing float64     `yaml:"spacing"`
	Color   ColorConfig `yaml:"color,flow"`
}

// ColorConfig is an RGBA color with components in [0,1].
type ColorConfig struct {
	R float32 `yaml:"r"`
	G float32 `yaml:"g"`
	B float32 `yaml:"b"`
	A float32 `yaml:"a"`
}

// PhysicsConfig holds the fluid model parameters.
type PhysicsConfig struct {
	Gravity           float64 `yaml:"gravity"`
	BoundaryDamping   float64 `yaml:"boundary_damping"`
	CollisionDamping  float64 `yaml:"collision_damping"`
	Substeps          int     `yaml:"substeps"`
	RestDensity       float64 `yaml:"rest_density"`
	PressureConstant  float64 `yaml:"pressure_constant"`
	SmoothingRadius   float64 `yaml:"smoothing_radius"`
	ResolveCollisions bool    `yaml:"resolve_collisions"` // Pairwise penetration stage (O(n²))
}

// HandConfig holds the pointer interaction parameters.
type HandConfig struct {
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"`
}

// SimulationConfig holds execution parameters.
type SimulationConfig struct {
	Capacity     int     `yaml:"capacity"`       // Buffer size; count can grow up to this
	Workers      int     `yaml:"workers"`        // 0 = GOMAXPROCS
	Seed         uint64  `yaml:"seed"`           // Seeds the coincident-pair fallback direction
	FrameTime    float64 `yaml:"frame_time"`     // Fixed frame time for headless runs
	MaxFrameTime float64 `yaml:"max_frame_time"` // Clamp for measured frame times
}

// TelemetryConfig holds stats collection parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Simulated seconds per stats window
	PerfWindow  int     `yaml:"perf_window"`  // Frames averaged in perf stats
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32
	ScreenH32 float32
	Aspect    float64 // Screen width / height
	// Bounding box following the window aspect: [-Aspect, Aspect] x [-1, 1]
	BoxLeft, BoxRight, BoxBottom, BoxTop float64
	StatsWindowFrames                    int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks the values the simulator cannot run with.
// Physical ranges (damping, radii) are checked again by the sph setters.
func (c *Config) Validate() error {
	switch {
	case c.Screen.Width <= 0 || c.Screen.Height <= 0:
		return fmt.Errorf("screen %dx%d: %w", c.Screen.Width, c.Screen.Height, ErrInvalid)
	case c.Simulation.Capacity <= 0:
		return fmt.Errorf("simulation.capacity %d: %w", c.Simulation.Capacity, ErrInvalid)
	case c.Particles.Count < 0 || c.Particles.Count > c.Simulation.Capacity:
		return fmt.Errorf("particles.count %d (capacity %d): %w", c.Particles.Count, c.Simulation.Capacity, ErrInvalid)
	case c.Physics.Substeps < 1:
		return fmt.Errorf("physics.substeps %d: %w", c.Physics.Substeps, ErrInvalid)
	case !(c.Physics.SmoothingRadius > 0):
		return fmt.Errorf("physics.smoothing_radius %g: %w", c.Physics.SmoothingRadius, ErrInvalid)
	case !(c.Simulation.FrameTime > 0):
		return fmt.Errorf("simulation.frame_time %g: %w", c.Simulation.FrameTime, ErrInvalid)
	case c.Simulation.MaxFrameTime < c.Simulation.FrameTime:
		return fmt.Errorf("simulation.max_frame_time %g below frame_time: %w", c.Simulation.MaxFrameTime, ErrInvalid)
	case c.Telemetry.PerfWindow < 1:
		return fmt.Errorf("telemetry.perf_window %d: %w", c.Telemetry.PerfWindow, ErrInvalid)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	c.Derived.Aspect = float64(c.Screen.Width) / float64(c.Screen.Height)
	c.Derived.BoxLeft = -c.Derived.Aspect
	c.Derived.BoxRight = c.Derived.Aspect
	c.Derived.BoxBottom = -1
	c.Derived.BoxTop = 1

	frames := int(c.Telemetry.StatsWindow/c.Simulation.FrameTime + 0.5)
	if frames < 1 {
		frames = 1
	}
	c.Derived.StatsWindowFrames = frames
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
