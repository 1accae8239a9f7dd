package game

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Cell values on a Board.
const (
	Empty = 0
	One   = 1
	Two   = 2
)

// ErrBadCell indicates a board cell holding something other than 0, 1 or 2.
var ErrBadCell = errors.New("game: bad board cell")

// Board is a square grid indexed [x][y].
type Board [][]int

// NewBoard returns an empty dim×dim board.
func NewBoard(dim int) Board {
	b := make(Board, dim)
	for i := range b {
		b[i] = make([]int, dim)
	}
	return b
}

// Dim is the side length.
func (b Board) Dim() int { return len(b) }

// Clone returns a deep copy.
func (b Board) Clone() Board {
	out := make(Board, len(b))
	for i, col := range b {
		out[i] = append([]int(nil), col...)
	}
	return out
}

// Inverted returns a copy with the two players' marks swapped.
func (b Board) Inverted() Board {
	out := b.Clone()
	for x := range out {
		for y, v := range out[x] {
			switch v {
			case One:
				out[x][y] = Two
			case Two:
				out[x][y] = One
			}
		}
	}
	return out
}

// IsEmpty reports whether no mark has been placed.
func (b Board) IsEmpty() bool {
	for _, col := range b {
		for _, v := range col {
			if v != Empty {
				return false
			}
		}
	}
	return true
}

// Full reports whether every cell is taken.
func (b Board) Full() bool {
	for _, col := range b {
		for _, v := range col {
			if v == Empty {
				return false
			}
		}
	}
	return true
}

// Legal reports whether c is on the board and empty.
func (b Board) Legal(c Coord) bool {
	return c.X >= 0 && c.X < len(b) && c.Y >= 0 && c.Y < len(b) && b[c.X][c.Y] == Empty
}

// Key encodes the board as a compact string, usable as a map key.
func (b Board) Key() string {
	var sb strings.Builder
	sb.Grow(len(b) * len(b))
	for _, col := range b {
		for _, v := range col {
			sb.WriteByte(byte('0' + v))
		}
	}
	return sb.String()
}

// Encode flattens the board into network input: own marks (1) become -1,
// opponent marks (2) become 1, empty squares 0. Index x*dim+y.
func Encode(b Board) ([]float64, error) {
	dim := len(b)
	out := make([]float64, dim*dim)
	for x := range b {
		for y, v := range b[x] {
			switch v {
			case One:
				out[x*dim+y] = -1
			case Two:
				out[x*dim+y] = 1
			case Empty:
			default:
				return nil, fmt.Errorf("%w: [%d][%d] = %d", ErrBadCell, x, y, v)
			}
		}
	}
	return out, nil
}

// Render writes the board with '.', 'X' and 'O', one row per y.
func Render(w io.Writer, b Board) {
	for y := 0; y < len(b); y++ {
		var row strings.Builder
		for x := 0; x < len(b); x++ {
			switch b[x][y] {
			case One:
				row.WriteByte('X')
			case Two:
				row.WriteByte('O')
			default:
				row.WriteByte('.')
			}
		}
		fmt.Fprintln(w, row.String())
	}
}

// Coord is a square on the board.
type Coord struct {
	X, Y int
}

// Index flattens c to x*dim+y.
func (c Coord) Index(dim int) int { return c.X*dim + c.Y }

// CoordOf is the inverse of Coord.Index.
func CoordOf(index, dim int) Coord { return Coord{X: index / dim, Y: index % dim} }

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }
