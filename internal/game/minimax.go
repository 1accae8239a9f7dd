package game

import "math/rand"

// Minimax plays a provably optimal move by searching the whole game tree.
// On an empty board it plays a random square instead, which keeps training
// games varied.
type Minimax struct {
	inARow int
	player int
	rng    *rand.Rand
	memo   map[string]int
}

// NewMinimax returns a searcher playing as player (1 or 2). A nil rng is
// seeded with 1.
func NewMinimax(inARow, player int, rng *rand.Rand) *Minimax {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Minimax{inARow: inARow, player: player, rng: rng, memo: make(map[string]int)}
}

// Move implements Player.
func (m *Minimax) Move(b Board) (Coord, error) {
	if b.Full() {
		return Coord{}, ErrNoMove
	}
	if b.IsEmpty() {
		return randomMove(b, m.rng)
	}
	work := b.Clone()
	best := -2
	var move Coord
	for x := range work {
		for y := range work[x] {
			if work[x][y] != Empty {
				continue
			}
			c := Coord{X: x, Y: y}
			work[x][y] = m.player
			if CheckVictory(work, c, m.inARow) != InProgress {
				return c, nil
			}
			v := -m.value(work, opponent(m.player))
			work[x][y] = Empty
			if v > best {
				best, move = v, c
			}
		}
	}
	return move, nil
}

// value is the game value for pl to move on b under optimal play: 1 win,
// 0 draw, -1 loss. b is restored before returning.
func (m *Minimax) value(b Board, pl int) int {
	key := b.Key() + string(rune('0'+pl))
	if v, ok := m.memo[key]; ok {
		return v
	}
	best := -1
search:
	for x := range b {
		for y := range b[x] {
			if b[x][y] != Empty {
				continue
			}
			b[x][y] = pl
			switch CheckVictory(b, Coord{X: x, Y: y}, m.inARow) {
			case Won:
				b[x][y] = Empty
				best = 1
				break search
			case Drawn:
				b[x][y] = Empty
				if best < 0 {
					best = 0
				}
				continue
			}
			v := -m.value(b, opponent(pl))
			b[x][y] = Empty
			if v > best {
				best = v
				if best == 1 {
					break search
				}
			}
		}
	}
	m.memo[key] = best
	return best
}

func opponent(pl int) int { return pl%2 + 1 }
