package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"selfplay-forge/internal/game"
	"selfplay-forge/internal/model"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	BoardSize        int          `yaml:"board_size"`
	InARow           int          `yaml:"in_a_row"`
	WeightsPath      string       `yaml:"weights_path"`
	HistoryPath      string       `yaml:"history_path"`
	HiddenLayers     []int        `yaml:"hidden_layers"`
	HiddenActivation string       `yaml:"hidden_activation"`
	DeltaMode        string       `yaml:"delta_mode"`
	Seed             int64        `yaml:"seed"`
	NumWorkers       int          `yaml:"num_workers"`
	LogEvery         int          `yaml:"log_every"`
	Stages           []Stage      `yaml:"stages"`
	Evaluations      []Evaluation `yaml:"evaluations"`
}

// Stage is one block of training batches against a fixed opponent.
type Stage struct {
	Player1 string `yaml:"player1"`
	Player2 string `yaml:"player2"`
	// Resume loads the weights file before training instead of starting
	// from a fresh random network.
	Resume       bool    `yaml:"resume"`
	BatchSize    int     `yaml:"batch_size"`
	NumBatches   int     `yaml:"num_batches"`
	LearningRate float64 `yaml:"learning_rate"`
	PositiveMod  float64 `yaml:"positive_mod"`
	NegativeMod  float64 `yaml:"negative_mod"`
	DrawMod      float64 `yaml:"draw_mod"`
}

// Evaluation plays untrained games with the saved weights and reports the results.
type Evaluation struct {
	Player1 string `yaml:"player1"`
	Player2 string `yaml:"player2"`
	Games   int    `yaml:"games"`
	Show    bool   `yaml:"show"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	WeightsPath string
	HistoryPath string
	DeltaMode   string
	Seed        int64
	NumWorkers  int
	LogEvery    int
}

// Default returns the stock schedule: alternate sides against a random
// opponent with shrinking learning rates, then evaluate both sides.
func Default() *Config {
	cfg := &Config{
		BoardSize:        3,
		InARow:           3,
		WeightsPath:      "weights.txt",
		HiddenLayers:     []int{20, 20},
		HiddenActivation: "sigmoid",
		DeltaMode:        "propagate",
		Seed:             42,
		NumWorkers:       1,
		LogEvery:         1,
	}
	schedule := []struct {
		batch, batches int
		lr             float64
	}{
		{500, 200, 0.1},
		{300, 1000, 0.01},
		{100, 1000, 0.001},
	}
	for i, s := range schedule {
		for _, sides := range [][2]string{{"random", "network"}, {"network", "random"}} {
			cfg.Stages = append(cfg.Stages, Stage{
				Player1:      sides[0],
				Player2:      sides[1],
				Resume:       i > 0 || sides[0] == "network",
				BatchSize:    s.batch,
				NumBatches:   s.batches,
				LearningRate: s.lr,
				PositiveMod:  1,
				NegativeMod:  -1,
				DrawMod:      0.5,
			})
		}
	}
	cfg.Evaluations = []Evaluation{
		{Player1: "network", Player2: "random", Games: 10000},
		{Player1: "random", Player2: "network", Games: 10000},
	}
	return cfg
}

// Load reads and validates a Config from YAML. Unset top-level scalars keep
// their Default values, so an empty file yields Default(); a file that lists
// stages replaces the stock schedule.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	def := Default()
	cfg.Stages, cfg.Evaluations = nil, nil

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Stages == nil {
		cfg.Stages = def.Stages
	}
	if cfg.Evaluations == nil {
		cfg.Evaluations = def.Evaluations
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.WeightsPath != "" {
		c.WeightsPath = o.WeightsPath
	}
	if o.HistoryPath != "" {
		c.HistoryPath = o.HistoryPath
	}
	if o.DeltaMode != "" {
		c.DeltaMode = o.DeltaMode
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.NumWorkers > 0 {
		c.NumWorkers = o.NumWorkers
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.BoardSize <= 0 {
		return fmt.Errorf("board_size must be > 0 (got %d)", c.BoardSize)
	}
	if c.InARow <= 0 || c.InARow > c.BoardSize {
		return fmt.Errorf("in_a_row must be in 1..%d (got %d)", c.BoardSize, c.InARow)
	}
	if c.WeightsPath == "" {
		return errors.New("weights_path must be set")
	}
	for i, h := range c.HiddenLayers {
		if h <= 0 {
			return fmt.Errorf("hidden_layers[%d] must be > 0 (got %d)", i, h)
		}
	}
	hidden, err := model.ParseActivation(c.HiddenActivation)
	if err != nil {
		return fmt.Errorf("hidden_activation: %w", err)
	}
	if hidden == model.Softmax {
		return errors.New("hidden_activation: softmax is reserved for the output layer")
	}
	if _, err := model.ParseDeltaMode(c.DeltaMode); err != nil {
		return fmt.Errorf("delta_mode: %w", err)
	}
	if c.NumWorkers <= 0 {
		return fmt.Errorf("num_workers must be > 0 (got %d)", c.NumWorkers)
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 1
	}
	if len(c.Stages) == 0 && len(c.Evaluations) == 0 {
		return errors.New("nothing to do: no stages or evaluations")
	}
	for i, s := range c.Stages {
		if err := s.validate(); err != nil {
			return fmt.Errorf("stages[%d]: %w", i, err)
		}
	}
	for i, e := range c.Evaluations {
		if err := validatePlayers(e.Player1, e.Player2); err != nil {
			return fmt.Errorf("evaluations[%d]: %w", i, err)
		}
		if e.Games <= 0 {
			return fmt.Errorf("evaluations[%d]: games must be > 0 (got %d)", i, e.Games)
		}
	}
	return nil
}

func (s Stage) validate() error {
	if err := validatePlayers(s.Player1, s.Player2); err != nil {
		return err
	}
	if s.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", s.BatchSize)
	}
	if s.NumBatches <= 0 {
		return fmt.Errorf("num_batches must be > 0 (got %d)", s.NumBatches)
	}
	if s.LearningRate < 0 {
		return fmt.Errorf("learning_rate must be >= 0 (got %g)", s.LearningRate)
	}
	return nil
}

func validatePlayers(p1, p2 string) error {
	if _, err := game.ParseKind(p1); err != nil {
		return fmt.Errorf("player1: %w", err)
	}
	if _, err := game.ParseKind(p2); err != nil {
		return fmt.Errorf("player2: %w", err)
	}
	return nil
}
