// Package config holds build options for the logosc CLI, loaded from a
// YAML file with defaults for everything left unset.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the project-level config file picked up when no
// explicit path is given.
const DefaultFileName = "logos.yaml"

// Config holds all build options for one logosc invocation.
type Config struct {
	// ModuleName names the unit in generated artifacts; empty uses the
	// name carried inside the compiled unit.
	ModuleName string `yaml:"module_name"`

	// OutputDir receives every generated file.
	OutputDir string `yaml:"output_dir"`

	// Emit flags select the extra artifacts written next to the Rust
	// source during build.
	EmitHeader     bool `yaml:"emit_header"`
	EmitPython     bool `yaml:"emit_python"`
	EmitTypeScript bool `yaml:"emit_typescript"`

	// MaxIterations overrides the readonly fixed-point cap when positive.
	MaxIterations int `yaml:"max_iterations"`

	// Verbose prints a phase banner per pass.
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputDir: ".",
	}
}

// Load reads the project-level config file when present, otherwise
// returns the defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(DefaultFileName)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", DefaultFileName, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", DefaultFileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path.
// Fields absent from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects option combinations that cannot work.
func (c *Config) Validate() error {
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must not be negative, got %d", c.MaxIterations)
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	return nil
}
