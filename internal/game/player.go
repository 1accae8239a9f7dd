package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/floats"

	"selfplay-forge/internal/model"
)

// ErrNoNetwork is returned when a network player has no network to consult.
var ErrNoNetwork = errors.New("game: network player has no network")

// ErrNoMove is returned when a player is asked to move on a full board.
var ErrNoMove = errors.New("game: no legal move")

// Player picks a legal move for the given board.
type Player interface {
	Move(b Board) (Coord, error)
}

// SelfRelative players expect the board oriented so their own marks are 1.
type SelfRelative interface {
	Player
	SelfRelative()
}

// Kind names the available move sources.
type Kind int

const (
	HumanKind Kind = iota
	NetworkKind
	RandomKind
	MinimaxKind
)

func (k Kind) String() string {
	switch k {
	case HumanKind:
		return "human"
	case NetworkKind:
		return "network"
	case RandomKind:
		return "random"
	case MinimaxKind:
		return "minimax"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a config name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "human":
		return HumanKind, nil
	case "network", "neural network", "nn":
		return NetworkKind, nil
	case "random":
		return RandomKind, nil
	case "minmax", "minimax":
		return MinimaxKind, nil
	}
	return 0, fmt.Errorf("unknown player kind %q", s)
}

// Random plays a uniformly random empty square.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a random player drawing from rng.
func NewRandom(rng *rand.Rand) *Random { return &Random{rng: rng} }

// Move implements Player.
func (p *Random) Move(b Board) (Coord, error) {
	return randomMove(b, p.rng)
}

func randomMove(b Board, rng *rand.Rand) (Coord, error) {
	if b.Full() {
		return Coord{}, ErrNoMove
	}
	for {
		c := Coord{X: rng.Intn(len(b)), Y: rng.Intn(len(b))}
		if b.Legal(c) {
			return c, nil
		}
	}
}

// NetworkPlayer samples moves from a network's output restricted to legal squares.
type NetworkPlayer struct {
	net *model.Network
	rng *rand.Rand
}

// NewNetworkPlayer wraps net. The network may be reloaded in place between games.
func NewNetworkPlayer(net *model.Network, rng *rand.Rand) *NetworkPlayer {
	return &NetworkPlayer{net: net, rng: rng}
}

// Network returns the wrapped network.
func (p *NetworkPlayer) Network() *model.Network { return p.net }

// SelfRelative implements SelfRelative.
func (p *NetworkPlayer) SelfRelative() {}

// Move implements Player.
func (p *NetworkPlayer) Move(b Board) (Coord, error) {
	if p.net == nil {
		return Coord{}, ErrNoNetwork
	}
	if b.Full() {
		return Coord{}, ErrNoMove
	}
	input, err := Encode(b)
	if err != nil {
		return Coord{}, err
	}
	dist := p.net.Forward(input)
	dim := len(b)
	if len(dist) != dim*dim {
		return Coord{}, fmt.Errorf("game: network output %d does not cover a %dx%d board", len(dist), dim, dim)
	}
	for i := range dist {
		if !b.Legal(CoordOf(i, dim)) {
			dist[i] = 0
		}
	}
	total := floats.Sum(dist)
	if total <= 0 {
		// every legal probability underflowed
		return randomMove(b, p.rng)
	}
	floats.Scale(1/total, dist)
	return CoordOf(sampleIndex(dist, p.rng.Float64(), b), dim), nil
}

// sampleIndex inverts the cumulative distribution at u in [0, 1), falling back
// to the last legal square when rounding leaves the total just below u.
func sampleIndex(dist []float64, u float64, b Board) int {
	cumul := floats.CumSum(make([]float64, len(dist)), dist)
	for i, c := range cumul {
		if c > u {
			return i
		}
	}
	dim := len(b)
	for i := len(dist) - 1; i >= 0; i-- {
		if b.Legal(CoordOf(i, dim)) {
			return i
		}
	}
	return len(dist) - 1
}
