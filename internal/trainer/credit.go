package trainer

import (
	"selfplay-forge/internal/game"
	"selfplay-forge/internal/model"
)

// Modifiers scale each move's gradient by how its game ended for the mover.
type Modifiers struct {
	Positive float64 // moves by the eventual winner
	Negative float64 // moves by the eventual loser
	Draw     float64 // every move of a drawn game
}

// Direction is the learning direction for a move by mover in a game that
// ended with o.
func Direction(o game.Outcome, mover int, m Modifiers) float64 {
	switch o.Winner() {
	case 0:
		return m.Draw
	case mover:
		return m.Positive
	}
	return m.Negative
}

// Eligible reports whether a game belongs in a batch. Drawn games are dropped
// only when the draw modifier is exactly zero.
func Eligible(r *game.Record, drawMod float64) bool {
	return r.Outcome() != game.Draw || drawMod != 0
}

// AccumulateBatch folds the gradient of every recorded move into one batch
// gradient, each scaled by its Direction, and returns it with the number of
// moves folded in.
func AccumulateBatch(net *model.Network, records []*game.Record, m Modifiers) (*model.Gradient, int) {
	grad := net.NewGradient()
	moves := 0
	for _, r := range records {
		for i := 0; i < r.Len(); i++ {
			target := r.Move(i).Index(r.Dim())
			grad.Accumulate(net.Gradient(r.Board(i), target), Direction(r.Outcome(), r.Mover(i), m))
			moves++
		}
	}
	return grad, moves
}
