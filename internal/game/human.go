package game

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrIllegalMove is reported to the human when the requested square is not playable.
var ErrIllegalMove = errors.New("illegal move")

// Human reads moves as two integers, one per line, reprompting until a legal
// square is entered.
type Human struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewHuman reads from in and prompts on out.
func NewHuman(in io.Reader, out io.Writer) *Human {
	return &Human{in: bufio.NewScanner(in), out: out}
}

// Move implements Player.
func (h *Human) Move(b Board) (Coord, error) {
	if b.Full() {
		return Coord{}, ErrNoMove
	}
	for {
		fmt.Fprintf(h.out, "Input move as pair of integers in the range 0-%d:\n", len(b)-1)
		x, err := h.readInt()
		if err != nil {
			return Coord{}, err
		}
		y, err := h.readInt()
		if err != nil {
			return Coord{}, err
		}
		c := Coord{X: x, Y: y}
		if b.Legal(c) {
			return c, nil
		}
		fmt.Fprintf(h.out, "%v.\n", ErrIllegalMove)
	}
}

func (h *Human) readInt() (int, error) {
	for {
		if !h.in.Scan() {
			if err := h.in.Err(); err != nil {
				return 0, fmt.Errorf("read move: %w", err)
			}
			return 0, fmt.Errorf("read move: %w", io.ErrUnexpectedEOF)
		}
		v, err := strconv.Atoi(strings.TrimSpace(h.in.Text()))
		if err == nil {
			return v, nil
		}
		fmt.Fprintln(h.out, "Not an integer, try again:")
	}
}
