// Package config loads gridmix runtime configuration from a YAML file with
// environment overrides, falling back to the reference deployment's
// defaults when no file is present.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gridmix/gridmix/internal/scenario"
)

// Config holds all application configuration.
type Config struct {
	Dataset struct {
		// CSVPath points at the hourly capacity-factor CSV. Empty selects
		// the embedded sample dataset.
		CSVPath string `yaml:"csv_path"`
	} `yaml:"dataset"`
	Server struct {
		Listen string `yaml:"listen"`
	} `yaml:"server"`
	Mix struct {
		Baseload string             `yaml:"baseload"`
		Weights  map[string]float64 `yaml:"weights"`
	} `yaml:"mix"`
	Scenarios struct {
		// BaseloadFractions lists the baseload shares evaluated side by
		// side, one scenario per entry.
		BaseloadFractions []float64 `yaml:"baseload_fractions"`
		// WindowDays is the default evaluation window length when a
		// request names only a start date.
		WindowDays int `yaml:"window_days"`
	} `yaml:"scenarios"`
	// Colors maps series names to display colors. Presentation metadata
	// passed through to rendering clients, never used in computation.
	Colors map[string]string `yaml:"colors"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; the defaults
// describe the reference deployment (solar-heavy mix, Nuclear baseload,
// scenarios at 0% and 20%, 7-day window).
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("GRIDMIX_DATA"); v != "" {
		cfg.Dataset.CSVPath = v
	}
	if v := os.Getenv("GRIDMIX_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}

	// Defaults
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8051"
	}
	if cfg.Mix.Baseload == "" {
		cfg.Mix.Baseload = scenario.DefaultMix().Baseload
	}
	if len(cfg.Mix.Weights) == 0 {
		cfg.Mix.Weights = scenario.DefaultMix().Weights
	}
	if len(cfg.Scenarios.BaseloadFractions) == 0 {
		cfg.Scenarios.BaseloadFractions = []float64{0, 0.20}
	}
	if cfg.Scenarios.WindowDays == 0 {
		cfg.Scenarios.WindowDays = 7
	}
	if len(cfg.Colors) == 0 {
		cfg.Colors = map[string]string{
			"Nuclear":                         "#9B59B6",
			"Wind offshore":                   "#4A90E2",
			"Wind onshore":                    "#7CB9E8",
			"Solar":                           "#FDB813",
			"Storage potential":               "#2ECC71",
			"Storage consumption requirement": "#E74C3C",
			"Load":                            "#000000",
		}
	}

	return cfg, nil
}

// ScenarioMix builds the evaluator mix from the configured baseload and
// weights.
func (c *Config) ScenarioMix() scenario.Mix {
	return scenario.Mix{
		Baseload: c.Mix.Baseload,
		Weights:  c.Mix.Weights,
	}
}

// Validate checks that all required fields are set and well-formed.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if err := c.ScenarioMix().Validate(); err != nil {
		return fmt.Errorf("mix: %w", err)
	}
	if len(c.Scenarios.BaseloadFractions) == 0 {
		return fmt.Errorf("scenarios.baseload_fractions is required")
	}
	for _, f := range c.Scenarios.BaseloadFractions {
		// YAML ".nan" decodes to NaN, which evades plain bounds checks.
		if math.IsNaN(f) || f < 0 || f > 1 {
			return fmt.Errorf("scenarios.baseload_fractions: %g outside [0,1]", f)
		}
	}
	if c.Scenarios.WindowDays < 1 {
		return fmt.Errorf("scenarios.window_days must be at least 1")
	}
	return nil
}
