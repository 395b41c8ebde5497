package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up when no path is given.
const FileName = "volint.yaml"

// Overrides are command line settings applied over the file. Zero values
// leave the loaded setting alone.
type Overrides struct {
	Debug         bool
	Density       float64
	Layers        int
	AreaThreshold float64
	Workers       int
	NoNormals     bool
	NoBound       bool
	LogFile       string

	// Degrees. A pointer since zero is a valid angle.
	MaxSmoothAngle *float64
}

// Load loads configuration with priority: defaults < file < overrides.
// An empty path searches the standard locations; finding nothing is not an
// error.
func Load(path string, o Overrides) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	o.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply writes the set overrides into cfg.
func (o Overrides) Apply(cfg *Config) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.Density > 0 {
		cfg.Mass.Density = o.Density
	}
	if o.Layers > 0 {
		cfg.Bound.Layers = o.Layers
	}
	if o.AreaThreshold > 0 {
		cfg.Bound.AreaThreshold = o.AreaThreshold
	}
	if o.MaxSmoothAngle != nil {
		cfg.Normals.MaxSmoothAngle = *o.MaxSmoothAngle
	}
	if o.Workers > 0 {
		cfg.Workers = o.Workers
	}
	if o.NoNormals {
		cfg.Normals.Enabled = false
	}
	if o.NoBound {
		cfg.Bound.Enabled = false
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{"./" + FileName}
	if dir, err := ConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "volint"), nil
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
