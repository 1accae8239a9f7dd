package game

import "fmt"

// Outcome is the terminal result of a game.
type Outcome int

const (
	Draw Outcome = iota
	Player1Win
	Player2Win
)

func (o Outcome) String() string {
	switch o {
	case Draw:
		return "draw"
	case Player1Win:
		return "player1"
	case Player2Win:
		return "player2"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Winner returns the winning player number, or 0 for a draw.
func (o Outcome) Winner() int {
	switch o {
	case Player1Win:
		return 1
	case Player2Win:
		return 2
	}
	return 0
}

// WinFor is the outcome in which player pl wins.
func WinFor(pl int) Outcome {
	if pl == 1 {
		return Player1Win
	}
	return Player2Win
}

// Record is the trace of one finished game. Boards are the encoded position
// before each move, seen from the mover's side.
type Record struct {
	dim     int
	moves   []Coord
	boards  [][]float64
	movers  []int
	outcome Outcome
}

// Len is the number of moves.
func (r *Record) Len() int { return len(r.moves) }

// Dim is the board side length the game was played on.
func (r *Record) Dim() int { return r.dim }

// Move returns the i-th move.
func (r *Record) Move(i int) Coord { return r.moves[i] }

// Board returns a copy of the encoded board the i-th move was made on.
func (r *Record) Board(i int) []float64 { return append([]float64(nil), r.boards[i]...) }

// Mover returns the player number (1 or 2) that made the i-th move.
func (r *Record) Mover(i int) int { return r.movers[i] }

// Outcome is the result of the game.
func (r *Record) Outcome() Outcome { return r.outcome }

// Recorder collects moves for a Record in progress.
type Recorder struct {
	rec      *Record
	finished bool
}

// NewRecorder starts a record for a dim×dim game.
func NewRecorder(dim int) *Recorder {
	return &Recorder{rec: &Record{dim: dim}}
}

// Add appends a move, the encoded board it was made on and the mover.
func (r *Recorder) Add(board []float64, move Coord, mover int) {
	if r.finished {
		panic("game: add to a finished record")
	}
	if mover != 1 && mover != 2 {
		panic(fmt.Sprintf("game: mover %d", mover))
	}
	r.rec.boards = append(r.rec.boards, append([]float64(nil), board...))
	r.rec.moves = append(r.rec.moves, move)
	r.rec.movers = append(r.rec.movers, mover)
}

// Finish sets the outcome and returns the completed record. It may be called once.
func (r *Recorder) Finish(o Outcome) *Record {
	if r.finished {
		panic("game: record finished twice")
	}
	r.finished = true
	r.rec.outcome = o
	return r.rec
}
