package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"selfplay-forge/internal/config"
	"selfplay-forge/internal/game"
	"selfplay-forge/internal/model"
	"selfplay-forge/internal/trainer"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (empty uses the built-in schedule)")
	weightsPath := flag.String("weights", "", "Override weights file path")
	historyPath := flag.String("history", "", "Record per-batch results in this SQLite file")
	seed := flag.Int64("seed", 0, "PRNG seed")
	numWorkers := flag.Int("workers", 0, "Number of self-play workers")
	deltaMode := flag.String("delta-mode", "", "Hidden-layer delta handling: propagate or discard")
	logEvery := flag.Int("log-every", 0, "Log every N batches")

	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	cfg.ApplyOverrides(config.Overrides{
		WeightsPath: *weightsPath,
		HistoryPath: *historyPath,
		DeltaMode:   *deltaMode,
		Seed:        *seed,
		NumWorkers:  *numWorkers,
		LogEvery:    *logEvery,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	runCfg, err := runConfig(cfg)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := trainer.Run(ctx, runCfg); err != nil {
		log.Fatalf("training failed: %v", err)
	}
}

// runConfig converts validated config strings into trainer types.
func runConfig(cfg *config.Config) (trainer.RunConfig, error) {
	hidden, err := model.ParseActivation(cfg.HiddenActivation)
	if err != nil {
		return trainer.RunConfig{}, err
	}
	delta, err := model.ParseDeltaMode(cfg.DeltaMode)
	if err != nil {
		return trainer.RunConfig{}, err
	}
	rc := trainer.RunConfig{
		BoardSize:        cfg.BoardSize,
		InARow:           cfg.InARow,
		WeightsPath:      cfg.WeightsPath,
		HistoryPath:      cfg.HistoryPath,
		Hidden:           cfg.HiddenLayers,
		HiddenActivation: hidden,
		DeltaMode:        delta,
		Seed:             cfg.Seed,
		NumWorkers:       cfg.NumWorkers,
		LogEvery:         cfg.LogEvery,
	}
	for _, s := range cfg.Stages {
		p1, p2, err := kinds(s.Player1, s.Player2)
		if err != nil {
			return trainer.RunConfig{}, err
		}
		rc.Stages = append(rc.Stages, trainer.Stage{
			Player1:      p1,
			Player2:      p2,
			Resume:       s.Resume,
			BatchSize:    s.BatchSize,
			NumBatches:   s.NumBatches,
			LearningRate: s.LearningRate,
			Modifiers: trainer.Modifiers{
				Positive: s.PositiveMod,
				Negative: s.NegativeMod,
				Draw:     s.DrawMod,
			},
		})
	}
	for _, e := range cfg.Evaluations {
		p1, p2, err := kinds(e.Player1, e.Player2)
		if err != nil {
			return trainer.RunConfig{}, err
		}
		rc.Evaluations = append(rc.Evaluations, trainer.Evaluation{Player1: p1, Player2: p2, Games: e.Games, Show: e.Show})
	}
	return rc, nil
}

func kinds(a, b string) (game.Kind, game.Kind, error) {
	p1, err := game.ParseKind(a)
	if err != nil {
		return 0, 0, err
	}
	p2, err := game.ParseKind(b)
	if err != nil {
		return 0, 0, err
	}
	return p1, p2, nil
}
