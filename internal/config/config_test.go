package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultSchedule(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Stages, 6)
	assert.False(t, cfg.Stages[0].Resume, "first stage starts from a fresh network")
	for _, s := range cfg.Stages[1:] {
		assert.True(t, s.Resume)
	}
	assert.Equal(t, "random", cfg.Stages[0].Player1)
	assert.Equal(t, "network", cfg.Stages[0].Player2)
	assert.Equal(t, 0.001, cfg.Stages[5].LearningRate)
	assert.Equal(t, 100, cfg.Stages[5].BatchSize)
	assert.Len(t, cfg.Evaluations, 2)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
board_size: 4
in_a_row: 3
hidden_layers: [16]
delta_mode: discard
stages:
  - player1: network
    player2: minimax
    batch_size: 10
    num_batches: 2
    learning_rate: 0.05
    positive_mod: 1
    negative_mod: -1
    draw_mod: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.BoardSize)
	assert.Equal(t, []int{16}, cfg.HiddenLayers)
	assert.Equal(t, "discard", cfg.DeltaMode)
	assert.Equal(t, "weights.txt", cfg.WeightsPath, "unset keys keep defaults")
	require.Len(t, cfg.Stages, 1)
	assert.Equal(t, 0.0, cfg.Stages[0].DrawMod)
	assert.Len(t, cfg.Evaluations, 2, "evaluations fall back to the stock list")
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	for name, body := range map[string]string{"empty": "", "comment only": "# nothing yet\n"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, body))
			require.NoError(t, err)
			assert.Equal(t, Default(), cfg)
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "board_sise: 3\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"board":      func(c *Config) { c.BoardSize = 0 },
		"in a row":   func(c *Config) { c.InARow = 4 },
		"weights":    func(c *Config) { c.WeightsPath = "" },
		"hidden":     func(c *Config) { c.HiddenLayers = []int{0} },
		"activation": func(c *Config) { c.HiddenActivation = "softmax" },
		"delta":      func(c *Config) { c.DeltaMode = "sometimes" },
		"workers":    func(c *Config) { c.NumWorkers = 0 },
		"player":     func(c *Config) { c.Stages[0].Player1 = "oracle" },
		"batch":      func(c *Config) { c.Stages[0].BatchSize = 0 },
		"batches":    func(c *Config) { c.Stages[0].NumBatches = 0 },
		"rate":       func(c *Config) { c.Stages[0].LearningRate = -1 },
		"eval games": func(c *Config) { c.Evaluations[0].Games = 0 },
		"empty":      func(c *Config) { c.Stages, c.Evaluations = nil, nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides(Overrides{WeightsPath: "w.txt", Seed: 9, NumWorkers: 4, DeltaMode: "discard"})
	assert.Equal(t, "w.txt", cfg.WeightsPath)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.Equal(t, 4, cfg.NumWorkers)
	assert.Equal(t, "discard", cfg.DeltaMode)
	assert.Equal(t, 1, cfg.LogEvery, "zero overrides leave values alone")
}

func TestShippedConfigMatchesDefault(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "default.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
