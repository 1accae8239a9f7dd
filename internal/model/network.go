package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Layer is one affine transform followed by an activation.
type Layer struct {
	NumNodes int
	InputDim int
	Kind     Activation
	Weights  [][]float64
	Biases   []float64
}

func newLayer(nodes, dim int, kind Activation) Layer {
	weights := make([][]float64, nodes)
	for i := range weights {
		weights[i] = make([]float64, dim)
	}
	return Layer{
		NumNodes: nodes,
		InputDim: dim,
		Kind:     kind,
		Weights:  weights,
		Biases:   make([]float64, nodes),
	}
}

// Network is a stack of layers ending in a softmax output.
type Network struct {
	layers    []Layer
	deltaMode DeltaMode
}

// New constructs a network with Gaussian initialised weights and biases.
// sizes lists the input width followed by every layer width; all layers but
// the last use hidden, the last is always Softmax.
func New(sizes []int, hidden Activation, rng *rand.Rand) (*Network, error) {
	if len(sizes) < 2 {
		return nil, errors.New("model: need an input size and at least one layer")
	}
	if hidden == Softmax {
		return nil, errors.New("model: softmax is reserved for the output layer")
	}
	for i, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("model: size %d must be > 0 (got %d)", i, s)
		}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	layers := make([]Layer, len(sizes)-1)
	for l := range layers {
		kind := hidden
		if l == len(layers)-1 {
			kind = Softmax
		}
		layer := newLayer(sizes[l+1], sizes[l], kind)
		for i := 0; i < layer.NumNodes; i++ {
			for j := 0; j < layer.InputDim; j++ {
				layer.Weights[i][j] = rng.NormFloat64()
			}
			layer.Biases[i] = rng.NormFloat64()
		}
		layers[l] = layer
	}
	return &Network{layers: layers}, nil
}

// SetDeltaMode selects how hidden deltas are handled by Gradient.
func (n *Network) SetDeltaMode(m DeltaMode) { n.deltaMode = m }

// DeltaMode reports the current delta handling.
func (n *Network) DeltaMode() DeltaMode { return n.deltaMode }

// Layers exposes the layer stack. Callers must not resize it.
func (n *Network) Layers() []Layer { return n.layers }

// InputDim is the width of the vector Forward expects.
func (n *Network) InputDim() int {
	if len(n.layers) == 0 {
		return 0
	}
	return n.layers[0].InputDim
}

// OutputDim is the width of the distribution Forward returns.
func (n *Network) OutputDim() int {
	if len(n.layers) == 0 {
		return 0
	}
	return n.layers[len(n.layers)-1].NumNodes
}

// Clone returns a deep copy.
func (n *Network) Clone() *Network {
	out := &Network{layers: make([]Layer, len(n.layers)), deltaMode: n.deltaMode}
	for l, layer := range n.layers {
		c := newLayer(layer.NumNodes, layer.InputDim, layer.Kind)
		for i := range layer.Weights {
			copy(c.Weights[i], layer.Weights[i])
		}
		copy(c.Biases, layer.Biases)
		out.layers[l] = c
	}
	return out
}

// Forward evaluates the network. A length mismatch between the input and the
// first layer panics.
func (n *Network) Forward(input []float64) []float64 {
	out := input
	for l := range n.layers {
		out = activate(&n.layers[l], out)
	}
	return out
}

// activations runs a forward pass and keeps every layer's output.
func (n *Network) activations(input []float64) [][]float64 {
	acts := make([][]float64, len(n.layers))
	out := input
	for l := range n.layers {
		out = activate(&n.layers[l], out)
		acts[l] = out
	}
	return acts
}

func activate(layer *Layer, input []float64) []float64 {
	out := make([]float64, layer.NumNodes)
	for i := range out {
		// floats.Dot panics on mismatched lengths.
		out[i] = floats.Dot(layer.Weights[i], input) + layer.Biases[i]
	}
	switch layer.Kind {
	case Softmax:
		return softmax(out)
	case LeakyReLU:
		for i, z := range out {
			out[i] = leaky(z)
		}
	case Sigmoid:
		for i, z := range out {
			out[i] = sigmoid(z)
		}
	default:
		panic(fmt.Sprintf("model: unknown activation %v", layer.Kind))
	}
	return out
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

func leaky(z float64) float64 {
	if z > 0 {
		return z
	}
	return LeakySlope * z
}

// softmax exponentiates in place without a max shift.
func softmax(logits []float64) []float64 {
	for i, v := range logits {
		logits[i] = math.Exp(v)
	}
	floats.Scale(1/floats.Sum(logits), logits)
	return logits
}

// Step applies one vanilla gradient descent update:
// w -= learningRate * g / batchSize.
func (n *Network) Step(g *Gradient, learningRate, batchSize float64) {
	n.mustMatch(g)
	scale := -learningRate / batchSize
	for l := range n.layers {
		layer := &n.layers[l]
		lg := g.Layers[l]
		for i := 0; i < layer.NumNodes; i++ {
			floats.AddScaled(layer.Weights[i], scale, lg.Weights[i])
		}
		floats.AddScaled(layer.Biases, scale, lg.Biases)
	}
}

func (n *Network) mustMatch(g *Gradient) {
	if len(g.Layers) != len(n.layers) {
		panic(fmt.Sprintf("model: gradient has %d layers, network has %d", len(g.Layers), len(n.layers)))
	}
	for l, layer := range n.layers {
		lg := g.Layers[l]
		if len(lg.Weights) != layer.NumNodes || len(lg.Biases) != layer.NumNodes {
			panic(fmt.Sprintf("model: gradient layer %d has %d rows, want %d", l, len(lg.Weights), layer.NumNodes))
		}
	}
}
