package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"selfplay-forge/internal/game"
)

// CollectOptions configures a batch of self-play games.
type CollectOptions struct {
	// NewGame builds the game a worker plays. Each worker owns its game and
	// players; network weights may be shared since playouts only read them.
	NewGame func(worker int) (*game.Game, error)
	// Games is the number of eligible records to return.
	Games      int
	NumWorkers int
	// Eligible filters finished games; nil keeps every game.
	Eligible func(*game.Record) bool
}

// Collect plays games until opts.Games eligible records are gathered. With a
// single worker games are played in the calling goroutine and the records
// come back in playout order.
func Collect(parent context.Context, opts CollectOptions) ([]*game.Record, error) {
	if opts.NewGame == nil {
		return nil, errors.New("collector: no game factory")
	}
	if opts.Games <= 0 {
		return nil, fmt.Errorf("collector: games must be > 0 (got %d)", opts.Games)
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 1
	}
	if opts.Eligible == nil {
		opts.Eligible = func(*game.Record) bool { return true }
	}

	games := make([]*game.Game, opts.NumWorkers)
	for i := range games {
		g, err := opts.NewGame(i)
		if err != nil {
			return nil, fmt.Errorf("collector: worker %d: %w", i, err)
		}
		games[i] = g
	}

	if opts.NumWorkers == 1 {
		return collectSerial(parent, games[0], opts)
	}
	return collectParallel(parent, games, opts)
}

func collectSerial(ctx context.Context, g *game.Game, opts CollectOptions) ([]*game.Record, error) {
	records := make([]*game.Record, 0, opts.Games)
	for len(records) < opts.Games {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := g.RecordedPlay()
		if err != nil {
			return nil, err
		}
		if opts.Eligible(rec) {
			records = append(records, rec)
		}
	}
	return records, nil
}

type result struct {
	rec *game.Record
	err error
}

func collectParallel(parent context.Context, games []*game.Game, opts CollectOptions) ([]*game.Record, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	out := make(chan result, len(games))
	var wg sync.WaitGroup
	for _, g := range games {
		wg.Add(1)
		go func(g *game.Game) {
			defer wg.Done()
			worker(ctx, g, out)
		}(g)
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	records := make([]*game.Record, 0, opts.Games)
	var err error
	for res := range out {
		if res.err != nil {
			err = res.err
			break
		}
		if opts.Eligible(res.rec) {
			records = append(records, res.rec)
			if len(records) == opts.Games {
				break
			}
		}
	}
	cancel()
	for range out {
	}
	if err != nil {
		return nil, err
	}
	if len(records) < opts.Games {
		if cerr := parent.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, errors.New("collector: workers stopped early")
	}
	return records, nil
}

func worker(ctx context.Context, g *game.Game, out chan<- result) {
	for {
		if ctx.Err() != nil {
			return
		}
		rec, err := g.RecordedPlay()
		select {
		case <-ctx.Done():
			return
		case out <- result{rec: rec, err: err}:
		}
		if err != nil {
			return
		}
	}
}
