package game

// Status is the state of a game right after a move.
type Status int

const (
	InProgress Status = iota
	Drawn
	Won
)

var lines = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {-1, 1}}

// CheckVictory inspects the four lines through last. Won means the player who
// owns last has inARow marks in a line; Drawn means the board filled up without
// that.
func CheckVictory(b Board, last Coord, inARow int) Status {
	pl := b[last.X][last.Y]
	dim := len(b)
	for _, d := range lines {
		run := 1
		for _, sign := range [2]int{1, -1} {
			x, y := last.X+sign*d[0], last.Y+sign*d[1]
			for x >= 0 && x < dim && y >= 0 && y < dim && b[x][y] == pl {
				run++
				x += sign * d[0]
				y += sign * d[1]
			}
		}
		if run >= inARow {
			return Won
		}
	}
	if b.Full() {
		return Drawn
	}
	return InProgress
}
