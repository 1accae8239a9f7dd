package trainer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"selfplay-forge/internal/dataset"
	"selfplay-forge/internal/game"
	"selfplay-forge/internal/history"
	"selfplay-forge/internal/metrics"
	"selfplay-forge/internal/model"
)

// Stage is a block of training batches with fixed players and hyperparameters.
type Stage struct {
	Player1, Player2 game.Kind
	// Resume starts from the weights file instead of a fresh network.
	Resume       bool
	BatchSize    int
	NumBatches   int
	LearningRate float64
	Modifiers    Modifiers
}

// Evaluation plays Games games with the saved weights without training.
type Evaluation struct {
	Player1, Player2 game.Kind
	Games            int
	Show             bool
}

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	BoardSize        int
	InARow           int
	WeightsPath      string
	HistoryPath      string
	Hidden           []int
	HiddenActivation model.Activation
	DeltaMode        model.DeltaMode
	Seed             int64
	NumWorkers       int
	LogEvery         int
	Stages           []Stage
	Evaluations      []Evaluation
	// Input and Output serve human players and shown games. They default to
	// stdin and stdout.
	Input  io.Reader
	Output io.Writer
}

// Trainer owns the state threaded through a run.
type Trainer struct {
	cfg     RunConfig
	rng     *rand.Rand
	history *history.Store
	human   *game.Human
}

// New validates cfg and returns a trainer. Call Close when done.
func New(ctx context.Context, cfg RunConfig) (*Trainer, error) {
	if cfg.BoardSize <= 0 {
		return nil, errors.New("trainer: board size must be > 0")
	}
	if cfg.InARow <= 0 || cfg.InARow > cfg.BoardSize {
		return nil, fmt.Errorf("trainer: in-a-row must be in 1..%d", cfg.BoardSize)
	}
	if cfg.WeightsPath == "" {
		return nil, errors.New("trainer: weights path must be set")
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 1
	}
	if cfg.Input == nil {
		cfg.Input = os.Stdin
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	t := &Trainer{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
	if cfg.HistoryPath != "" {
		store, err := history.Open(ctx, cfg.HistoryPath)
		if err != nil {
			return nil, err
		}
		t.history = store
	}
	return t, nil
}

// Close releases the history ledger, if any.
func (t *Trainer) Close() error {
	if t.history == nil {
		return nil
	}
	return t.history.Close()
}

// Run executes every stage and then every evaluation.
func Run(ctx context.Context, cfg RunConfig) error {
	t, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer t.Close()

	for i, s := range cfg.Stages {
		log.Printf("stage=%d player1=%v player2=%v batch_size=%d num_batches=%d learning_rate=%g",
			i+1, s.Player1, s.Player2, s.BatchSize, s.NumBatches, s.LearningRate)
		if _, _, err := t.Train(ctx, i+1, s); err != nil {
			return fmt.Errorf("stage %d: %w", i+1, err)
		}
	}
	for i, e := range cfg.Evaluations {
		snap, err := t.Evaluate(ctx, e)
		if err != nil {
			return fmt.Errorf("evaluation %d: %w", i+1, err)
		}
		log.Printf("evaluation=%d player1=%v player2=%v p1_wins=%d draws=%d p2_wins=%d",
			i+1, e.Player1, e.Player2, snap.P1Wins, snap.Draws, snap.P2Wins)
	}
	return nil
}

func (t *Trainer) sizes() []int {
	cells := t.cfg.BoardSize * t.cfg.BoardSize
	sizes := append([]int{cells}, t.cfg.Hidden...)
	return append(sizes, cells)
}

// Train runs one stage and returns the trained network and per-batch results.
// The context is only consulted between batches.
func (t *Trainer) Train(ctx context.Context, stageNo int, s Stage) (*model.Network, []metrics.Snapshot, error) {
	if s.BatchSize <= 0 || s.NumBatches <= 0 {
		return nil, nil, errors.New("trainer: batch size and batch count must be > 0")
	}

	var net *model.Network
	var err error
	if s.Resume {
		net, err = model.LoadFile(t.cfg.WeightsPath)
	} else {
		net, err = model.New(t.sizes(), t.cfg.HiddenActivation, t.rng)
	}
	if err != nil {
		return nil, nil, err
	}
	if net.InputDim() != t.cfg.BoardSize*t.cfg.BoardSize || net.OutputDim() != t.cfg.BoardSize*t.cfg.BoardSize {
		return nil, nil, fmt.Errorf("trainer: network %d->%d does not fit a %dx%d board",
			net.InputDim(), net.OutputDim(), t.cfg.BoardSize, t.cfg.BoardSize)
	}
	net.SetDeltaMode(t.cfg.DeltaMode)

	// Players read their own copy so that the weights they see change only
	// through the file, after each step.
	playerNet := net.Clone()
	usesNetwork := s.Player1 == game.NetworkKind || s.Player2 == game.NetworkKind

	games, err := t.games(s.Player1, s.Player2, playerNet)
	if err != nil {
		return nil, nil, err
	}
	collect := dataset.CollectOptions{
		NewGame:    func(w int) (*game.Game, error) { return games[w], nil },
		Games:      s.BatchSize,
		NumWorkers: len(games),
		Eligible:   func(r *game.Record) bool { return Eligible(r, s.Modifiers.Draw) },
	}

	var tally metrics.Tally
	snaps := make([]metrics.Snapshot, 0, s.NumBatches)
	for batch := 1; batch <= s.NumBatches; batch++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		startPlay := time.Now()
		records, err := dataset.Collect(context.WithoutCancel(ctx), collect)
		if err != nil {
			return nil, nil, err
		}
		playTime := time.Since(startPlay)

		startCompute := time.Now()
		grad, moves := AccumulateBatch(net, records, s.Modifiers)
		if moves > 0 {
			net.Step(grad, s.LearningRate, float64(moves))
		}
		computeTime := time.Since(startCompute)

		if err := net.Save(t.cfg.WeightsPath); err != nil {
			return nil, nil, err
		}
		if usesNetwork {
			if err := playerNet.Load(t.cfg.WeightsPath); err != nil {
				return nil, nil, err
			}
		}

		for _, r := range records {
			tally.Record(r.Outcome())
		}
		tally.AddMoves(moves)
		tally.Time(playTime, computeTime)
		snap := tally.Snapshot()
		snaps = append(snaps, snap)

		if batch%t.cfg.LogEvery == 0 {
			log.Printf("stage=%d batch=%d p1_wins=%d draws=%d p2_wins=%d moves=%d games_per_sec=%.1f compute_ms=%.2f",
				stageNo, batch, snap.P1Wins, snap.Draws, snap.P2Wins, snap.Moves, snap.GamesPerSec, snap.ComputeMS)
		}
		if t.history != nil {
			err := t.history.Append(context.WithoutCancel(ctx), history.Report{
				Stage:       stageNo,
				Batch:       batch,
				P1Wins:      snap.P1Wins,
				Draws:       snap.Draws,
				P2Wins:      snap.P2Wins,
				Moves:       snap.Moves,
				GamesPerSec: snap.GamesPerSec,
			})
			if err != nil {
				return nil, nil, err
			}
		}
	}
	return net, snaps, nil
}

// Evaluate plays e.Games games with network players loaded from the weights
// file and returns the outcome counts.
func (t *Trainer) Evaluate(ctx context.Context, e Evaluation) (metrics.Snapshot, error) {
	var net *model.Network
	if e.Player1 == game.NetworkKind || e.Player2 == game.NetworkKind {
		var err error
		if net, err = model.LoadFile(t.cfg.WeightsPath); err != nil {
			return metrics.Snapshot{}, err
		}
	}
	p1, err := t.newPlayer(e.Player1, 1, net)
	if err != nil {
		return metrics.Snapshot{}, err
	}
	p2, err := t.newPlayer(e.Player2, 2, net)
	if err != nil {
		return metrics.Snapshot{}, err
	}
	g, err := game.New(t.cfg.BoardSize, t.cfg.InARow, p1, p2)
	if err != nil {
		return metrics.Snapshot{}, err
	}
	var show io.Writer
	if e.Show {
		show = t.cfg.Output
	}

	var tally metrics.Tally
	start := time.Now()
	for k := 0; k < e.Games; k++ {
		if err := ctx.Err(); err != nil {
			return metrics.Snapshot{}, err
		}
		o, err := g.Play(show)
		if err != nil {
			return metrics.Snapshot{}, err
		}
		tally.Record(o)
	}
	tally.Time(time.Since(start), 0)
	return tally.Snapshot(), nil
}

// games builds one game per worker. Human players force a single worker.
func (t *Trainer) games(k1, k2 game.Kind, net *model.Network) ([]*game.Game, error) {
	workers := t.cfg.NumWorkers
	if k1 == game.HumanKind || k2 == game.HumanKind {
		workers = 1
	}
	games := make([]*game.Game, workers)
	for w := range games {
		p1, err := t.newPlayer(k1, 1, net)
		if err != nil {
			return nil, err
		}
		p2, err := t.newPlayer(k2, 2, net)
		if err != nil {
			return nil, err
		}
		if games[w], err = game.New(t.cfg.BoardSize, t.cfg.InARow, p1, p2); err != nil {
			return nil, err
		}
	}
	return games, nil
}

func (t *Trainer) newPlayer(k game.Kind, slot int, net *model.Network) (game.Player, error) {
	rng := rand.New(rand.NewSource(t.rng.Int63()))
	switch k {
	case game.HumanKind:
		if t.human == nil {
			t.human = game.NewHuman(t.cfg.Input, t.cfg.Output)
		}
		return t.human, nil
	case game.NetworkKind:
		if net == nil {
			return nil, game.ErrNoNetwork
		}
		return game.NewNetworkPlayer(net, rng), nil
	case game.RandomKind:
		return game.NewRandom(rng), nil
	case game.MinimaxKind:
		return game.NewMinimax(t.cfg.InARow, slot, rng), nil
	}
	return nil, fmt.Errorf("trainer: unknown player kind %v", k)
}
