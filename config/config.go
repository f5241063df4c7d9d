// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world" toml:"world"`
	Particle   ParticleConfig   `yaml:"particle" toml:"particle"`
	Population PopulationConfig `yaml:"population" toml:"population"`
	Emitter    EmitterConfig    `yaml:"emitter" toml:"emitter"`
	Seeker     SeekerConfig     `yaml:"seeker" toml:"seeker"`
	Motion     MotionConfig     `yaml:"motion" toml:"motion"`
	Sim        SimConfig        `yaml:"sim" toml:"sim"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" toml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-" toml:"-"`
}

// WorldConfig holds the toroidal domain dimensions.
type WorldConfig struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

// ParticleConfig holds parameters shared by every particle kind.
type ParticleConfig struct {
	Radius float64 `yaml:"radius" toml:"radius"` // Physical radius, also the near-field floor for sensing
}

// PopulationConfig holds population counts. The population is fixed for a run.
type PopulationConfig struct {
	Emitters int `yaml:"emitters" toml:"emitters"`
	Seekers  int `yaml:"seekers" toml:"seekers"`
}

// EmitterConfig holds emitter parameters.
type EmitterConfig struct {
	Intensity float64 `yaml:"intensity" toml:"intensity"` // Negative values repel seekers
}

// SeekerConfig holds seeker parameters.
type SeekerConfig struct {
	ResponseRate float64 `yaml:"response_rate" toml:"response_rate"` // Displacement per unit sensed force
	Cohesion     float64 `yaml:"cohesion" toml:"cohesion"`           // Pull toward exposed seekers in joining radius (0 = off)
}

// MotionConfig holds radii, velocity cap and the oscillation guard.
type MotionConfig struct {
	InfluenceRadius float64 `yaml:"influence_radius" toml:"influence_radius"` // 0 = intensity * radius / 2
	JoiningRadius   float64 `yaml:"joining_radius" toml:"joining_radius"`     // 0 = world width / 2
	MaxVelocity     float64 `yaml:"max_velocity" toml:"max_velocity"`         // Per-axis cap
	History         int     `yaml:"history" toml:"history"`                   // Recent positions kept per particle
	RepeatThreshold float64 `yaml:"repeat_threshold" toml:"repeat_threshold"` // 0 = radius / 2
}

// SimConfig holds driver parameters.
type SimConfig struct {
	Workers      int     `yaml:"workers" toml:"workers"`               // 0 or 1 = single-threaded
	GridCellSize float64 `yaml:"grid_cell_size" toml:"grid_cell_size"` // 0 = derived from influence radius
}

// TelemetryConfig holds trace and logging parameters.
type TelemetryConfig struct {
	TraceInterval int `yaml:"trace_interval" toml:"trace_interval"` // Ticks between position rows (0 = off)
	LogInterval   int `yaml:"log_interval" toml:"log_interval"`     // Ticks between stats log lines
	PerfWindow    int `yaml:"perf_window" toml:"perf_window"`       // Ticks in the perf rolling window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	InfluenceRadius float64
	JoiningRadius   float64
	RepeatThreshold float64
	GridCellSize    float64
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

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML or TOML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates the config and recomputes derived values.
// Call it again after modifying a loaded config in place.
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.computeDerived()
	return nil
}

// Validate reports every configuration error at once.
func (c *Config) Validate() error {
	var errs []error
	if c.World.Width <= 0 || c.World.Height <= 0 {
		errs = append(errs, fmt.Errorf("world size must be positive, got %gx%g", c.World.Width, c.World.Height))
	}
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"particle.radius", c.Particle.Radius},
		{"motion.influence_radius", c.Motion.InfluenceRadius},
		{"motion.joining_radius", c.Motion.JoiningRadius},
		{"motion.max_velocity", c.Motion.MaxVelocity},
		{"motion.repeat_threshold", c.Motion.RepeatThreshold},
		{"seeker.cohesion", c.Seeker.Cohesion},
		{"sim.grid_cell_size", c.Sim.GridCellSize},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %g", f.name, f.value))
		}
	}
	if c.Population.Emitters < 0 {
		errs = append(errs, fmt.Errorf("population.emitters must not be negative, got %d", c.Population.Emitters))
	}
	if c.Population.Seekers <= 0 {
		errs = append(errs, fmt.Errorf("population.seekers must be positive, got %d", c.Population.Seekers))
	}
	if c.Motion.History < 0 {
		errs = append(errs, fmt.Errorf("motion.history must not be negative, got %d", c.Motion.History))
	}
	if c.Sim.Workers < 0 {
		errs = append(errs, fmt.Errorf("sim.workers must not be negative, got %d", c.Sim.Workers))
	}
	if c.Telemetry.TraceInterval < 0 || c.Telemetry.LogInterval < 0 || c.Telemetry.PerfWindow < 0 {
		errs = append(errs, errors.New("telemetry intervals must not be negative"))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.InfluenceRadius = c.Motion.InfluenceRadius
	if c.Derived.InfluenceRadius == 0 {
		c.Derived.InfluenceRadius = abs(c.Emitter.Intensity) * c.Particle.Radius / 2
	}

	c.Derived.JoiningRadius = c.Motion.JoiningRadius
	if c.Derived.JoiningRadius == 0 {
		c.Derived.JoiningRadius = c.World.Width / 2
	}

	c.Derived.RepeatThreshold = c.Motion.RepeatThreshold
	if c.Derived.RepeatThreshold == 0 {
		c.Derived.RepeatThreshold = c.Particle.Radius / 2
	}

	// Grid cells no finer than 1/64 of the world keep the cell count bounded
	c.Derived.GridCellSize = c.Sim.GridCellSize
	if c.Derived.GridCellSize == 0 {
		c.Derived.GridCellSize = max(c.Derived.InfluenceRadius, max(c.World.Width, c.World.Height)/64)
	}
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

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
