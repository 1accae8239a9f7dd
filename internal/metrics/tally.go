package metrics

import (
	"time"

	"selfplay-forge/internal/game"
)

// Tally accumulates game outcomes and timing across a batch.
type Tally struct {
	p1Wins  int
	p2Wins  int
	draws   int
	moves   int
	play    time.Duration
	compute time.Duration
}

// Record adds one finished game.
func (t *Tally) Record(o game.Outcome) {
	switch o {
	case game.Player1Win:
		t.p1Wins++
	case game.Player2Win:
		t.p2Wins++
	default:
		t.draws++
	}
}

// AddMoves counts moves folded into a gradient.
func (t *Tally) AddMoves(n int) { t.moves += n }

// Time adds measured playout and gradient time.
func (t *Tally) Time(play, compute time.Duration) {
	t.play += play
	t.compute += compute
}

// Snapshot returns the aggregated numbers and resets the tally.
func (t *Tally) Snapshot() Snapshot {
	snap := Snapshot{
		P1Wins: t.p1Wins,
		P2Wins: t.p2Wins,
		Draws:  t.draws,
		Moves:  t.moves,
	}
	if t.play > 0 {
		snap.GamesPerSec = float64(snap.Games()) / t.play.Seconds()
	}
	snap.PlayMS = t.play.Seconds() * 1000
	snap.ComputeMS = t.compute.Seconds() * 1000

	*t = Tally{}
	return snap
}

// Snapshot represents loggable batch metrics.
type Snapshot struct {
	P1Wins      int
	P2Wins      int
	Draws       int
	Moves       int
	GamesPerSec float64
	PlayMS      float64
	ComputeMS   float64
}

// Games is the number of games recorded.
func (s Snapshot) Games() int { return s.P1Wins + s.P2Wins + s.Draws }
