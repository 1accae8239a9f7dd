package game

import (
	"errors"
	"fmt"
	"io"
)

// Game runs dim×dim, inARow-to-win matches between two players. Player one
// places 1s and moves first.
type Game struct {
	dim     int
	inARow  int
	players [2]Player
	board   Board
	turns   int
}

// New validates the geometry and returns a game ready to play.
func New(dim, inARow int, p1, p2 Player) (*Game, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("game: board size must be > 0 (got %d)", dim)
	}
	if inARow <= 0 || inARow > dim {
		return nil, fmt.Errorf("game: in-a-row must be in 1..%d (got %d)", dim, inARow)
	}
	if p1 == nil || p2 == nil {
		return nil, errors.New("game: both players must be set")
	}
	return &Game{dim: dim, inARow: inARow, players: [2]Player{p1, p2}, board: NewBoard(dim)}, nil
}

// Dim is the board side length.
func (g *Game) Dim() int { return g.dim }

// InARow is the line length needed to win.
func (g *Game) InARow() int { return g.inARow }

// Player returns player pl (1 or 2).
func (g *Game) Player(pl int) Player { return g.players[pl-1] }

// Turns is the number of moves made in the current game.
func (g *Game) Turns() int { return g.turns }

// Play runs one game. When show is non-nil the board is written after every move.
func (g *Game) Play(show io.Writer) (Outcome, error) {
	return g.run(nil, show)
}

// RecordedPlay runs one game and returns its trace.
func (g *Game) RecordedPlay() (*Record, error) {
	rec := NewRecorder(g.dim)
	o, err := g.run(rec, nil)
	if err != nil {
		return nil, err
	}
	return rec.Finish(o), nil
}

// view returns the board as pl sees it: for player two the marks are swapped
// so the mover's own marks are always 1.
func (g *Game) view(pl int) Board {
	if pl == 2 {
		return g.board.Inverted()
	}
	return g.board.Clone()
}

func (g *Game) reset() {
	g.board = NewBoard(g.dim)
	g.turns = 0
}

func (g *Game) run(rec *Recorder, show io.Writer) (Outcome, error) {
	g.reset()
	for {
		pl := g.turns%2 + 1
		p := g.players[pl-1]

		in := g.board.Clone()
		if _, ok := p.(SelfRelative); ok {
			in = g.view(pl)
		}
		m, err := p.Move(in)
		if err != nil {
			return Draw, fmt.Errorf("player %d move: %w", pl, err)
		}
		if !g.board.Legal(m) {
			return Draw, fmt.Errorf("game: player %d played illegal square %v", pl, m)
		}
		if rec != nil {
			enc, err := Encode(g.view(pl))
			if err != nil {
				return Draw, err
			}
			rec.Add(enc, m, pl)
		}

		g.board[m.X][m.Y] = pl
		g.turns++
		if show != nil {
			fmt.Fprintf(show, "Turn %d\n", g.turns)
			Render(show, g.board)
		}

		switch CheckVictory(g.board, m, g.inARow) {
		case Won:
			return WinFor(pl), nil
		case Drawn:
			return Draw, nil
		}
	}
}
