// Package config handles converter configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all converter settings.
type Config struct {
	Mass    MassConfig    `yaml:"mass"`
	Normals NormalsConfig `yaml:"normals"`
	Bound   BoundConfig   `yaml:"bound"`
	Workers int           `yaml:"workers"`
	Logging LoggingConfig `yaml:"logging"`
}

// MassConfig holds mass properties settings.
type MassConfig struct {
	Density float64 `yaml:"density"`
}

// NormalsConfig holds vertex normal recalculation settings.
type NormalsConfig struct {
	Enabled        bool    `yaml:"enabled"`
	MaxSmoothAngle float64 `yaml:"max_smooth_angle"` // degrees
}

// BoundConfig holds bound model synthesis settings.
type BoundConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Layers        int     `yaml:"layers"`
	AreaThreshold float64 `yaml:"area_threshold"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mass: MassConfig{
			Density: 1,
		},
		Normals: NormalsConfig{
			Enabled:        true,
			MaxSmoothAngle: 30,
		},
		Bound: BoundConfig{
			Enabled:       true,
			Layers:        10,
			AreaThreshold: 0.5,
		},
		Workers: 1,
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every out of range setting at once.
func (c *Config) Validate() error {
	var err error
	invalid := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if math.IsNaN(c.Mass.Density) || c.Mass.Density <= 0 {
		invalid("mass.density must be positive, got %g", c.Mass.Density)
	}
	if math.IsNaN(c.Normals.MaxSmoothAngle) || c.Normals.MaxSmoothAngle < 0 || c.Normals.MaxSmoothAngle > 180 {
		invalid("normals.max_smooth_angle must be in [0, 180], got %g", c.Normals.MaxSmoothAngle)
	}
	if c.Bound.Layers < 2 {
		invalid("bound.layers must be at least 2, got %d", c.Bound.Layers)
	}
	if math.IsNaN(c.Bound.AreaThreshold) || c.Bound.AreaThreshold <= 0 || c.Bound.AreaThreshold > 1 {
		invalid("bound.area_threshold must be in (0, 1], got %g", c.Bound.AreaThreshold)
	}
	if c.Workers < 1 {
		invalid("workers must be at least 1, got %d", c.Workers)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		invalid("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return err
}
