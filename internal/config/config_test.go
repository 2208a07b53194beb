package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8051", cfg.Server.Listen)
	assert.Empty(t, cfg.Dataset.CSVPath)
	assert.Equal(t, "Nuclear", cfg.Mix.Baseload)
	assert.Len(t, cfg.Mix.Weights, 3)

	var sum float64
	for _, w := range cfg.Mix.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	assert.Equal(t, []float64{0, 0.20}, cfg.Scenarios.BaseloadFractions)
	assert.Equal(t, 7, cfg.Scenarios.WindowDays)
	assert.Equal(t, "#FDB813", cfg.Colors["Solar"])
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridmix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataset:
  csv_path: /data/week.csv
server:
  listen: ":9000"
mix:
  baseload: Hydro
  weights:
    Solar: 0.7
    Wind onshore: 0.3
scenarios:
  baseload_fractions: [0.1, 0.5, 0.9]
  window_days: 3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/week.csv", cfg.Dataset.CSVPath)
	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, "Hydro", cfg.Mix.Baseload)
	assert.Equal(t, map[string]float64{"Solar": 0.7, "Wind onshore": 0.3}, cfg.Mix.Weights)
	assert.Equal(t, []float64{0.1, 0.5, 0.9}, cfg.Scenarios.BaseloadFractions)
	assert.Equal(t, 3, cfg.Scenarios.WindowDays)

	// Absent sections still pick up defaults.
	assert.Equal(t, "#9B59B6", cfg.Colors["Nuclear"])
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridmix.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset: [not: a mapping"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridmix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataset:
  csv_path: /data/file.csv
server:
  listen: ":9000"
`), 0o644))

	t.Setenv("GRIDMIX_DATA", "/env/override.csv")
	t.Setenv("GRIDMIX_LISTEN", ":7777")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/env/override.csv", cfg.Dataset.CSVPath)
	assert.Equal(t, ":7777", cfg.Server.Listen)
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing listen",
			mutate:  func(c *Config) { c.Server.Listen = "" },
			wantErr: "server.listen is required",
		},
		{
			name:    "missing baseload",
			mutate:  func(c *Config) { c.Mix.Baseload = "" },
			wantErr: "mix:",
		},
		{
			name:    "negative weight",
			mutate:  func(c *Config) { c.Mix.Weights = map[string]float64{"Solar": -1} },
			wantErr: "negative weight",
		},
		{
			name:    "NaN weight",
			mutate:  func(c *Config) { c.Mix.Weights = map[string]float64{"Solar": math.NaN()} },
			wantErr: "is NaN",
		},
		{
			name:    "no fractions",
			mutate:  func(c *Config) { c.Scenarios.BaseloadFractions = nil },
			wantErr: "baseload_fractions is required",
		},
		{
			name:    "fraction out of range",
			mutate:  func(c *Config) { c.Scenarios.BaseloadFractions = []float64{0.2, 1.5} },
			wantErr: "outside [0,1]",
		},
		{
			name:    "NaN fraction",
			mutate:  func(c *Config) { c.Scenarios.BaseloadFractions = []float64{0.2, math.NaN()} },
			wantErr: "outside [0,1]",
		},
		{
			name:    "window days below one",
			mutate:  func(c *Config) { c.Scenarios.WindowDays = -2 },
			wantErr: "window_days must be at least 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestScenarioMix(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	mix := cfg.ScenarioMix()
	assert.Equal(t, "Nuclear", mix.Baseload)
	assert.Equal(t, cfg.Mix.Weights, mix.Weights)
	assert.NoError(t, mix.Validate())
}
