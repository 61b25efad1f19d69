// Package config loads the application configuration from YAML, with
// defaults that make a config file optional.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration loaded from YAML.
type Config struct {
	// Database configures the SQLite backend.
	Database DatabaseConfig `yaml:"database"`

	// Planner configures the proposal collaborator.
	Planner PlannerConfig `yaml:"planner"`

	// Plan configures the daily planning policy.
	Plan PlanConfig `yaml:"plan"`
}

// DatabaseConfig configures storage.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path"`
}

// PlannerConfig configures the external proposal collaborator.
type PlannerConfig struct {
	// Model overrides the plan-generation model.
	Model string `yaml:"model,omitempty"`

	// SwapModel overrides the swap-suggestion model.
	SwapModel string `yaml:"swap_model,omitempty"`

	// Disabled turns off the collaborator entirely; every proposal then
	// degrades to "nothing generated".
	Disabled bool `yaml:"disabled,omitempty"`
}

// PlanConfig configures the planning policy.
type PlanConfig struct {
	// DayEnd is the default day-end cutoff as "HH:MM" local time, applied
	// to profiles that have none configured.
	DayEnd string `yaml:"day_end,omitempty"`

	// MinutesCap is the default daily time budget in minutes.
	MinutesCap int `yaml:"minutes_cap,omitempty"`

	// ExtraDenylist adds title tokens to the built-in denylist.
	ExtraDenylist []string `yaml:"extra_denylist,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: defaultDBPath()},
		Plan:     PlanConfig{MinutesCap: 60},
	}
}

// Load reads a YAML config file, overlaying it on the defaults. A missing
// file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = defaultDBPath()
	}
	if cfg.Plan.MinutesCap <= 0 {
		cfg.Plan.MinutesCap = 60
	}
	return cfg, nil
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sunstone/config.yaml"
	}
	return filepath.Join(home, ".sunstone", "config.yaml")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sunstone/sunstone.db"
	}
	return filepath.Join(home, ".sunstone", "sunstone.db")
}
