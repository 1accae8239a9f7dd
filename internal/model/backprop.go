package model

import (
	"fmt"
	"math"
)

// Loss returns -log P(target) for input.
func (n *Network) Loss(input []float64, target int) float64 {
	return -math.Log(n.Forward(input)[target])
}

// Gradient returns the derivative of -log P(target) with respect to every
// weight and bias, input held fixed.
//
// The output layer uses the closed log-softmax form: (a_i - 1)·a_prev for the
// target neuron and a_i·a_prev otherwise. The output bias entry for the target
// neuron is (1 - a_i), not (a_i - 1); trained weight files depend on that.
func (n *Network) Gradient(input []float64, target int) *Gradient {
	last := len(n.layers) - 1
	if target < 0 || target >= n.layers[last].NumNodes {
		panic(fmt.Sprintf("model: target %d outside output width %d", target, n.layers[last].NumNodes))
	}
	acts := n.activations(input)
	g := &Gradient{Layers: make([]LayerGradient, len(n.layers))}

	// upstream holds dL/da for layer l+1 while layer l is processed.
	var upstream []float64
	for l := last; l >= 0; l-- {
		layer := &n.layers[l]
		a := acts[l]
		aPrev := input
		if l > 0 {
			aPrev = acts[l-1]
		}
		lg := zeroLayerGradient(layer.NumNodes, layer.InputDim)

		delta := make([]float64, layer.NumNodes)
		if l == last {
			delta[target] = -1 / a[target]
		} else {
			next := &n.layers[l+1]
			for i := range delta {
				for r := 0; r < next.NumNodes; r++ {
					delta[i] += upstream[r] * successorDerivative(next, acts[l+1], r, i)
				}
			}
		}

		for i := 0; i < layer.NumNodes; i++ {
			var coef, bias float64
			switch layer.Kind {
			case Softmax:
				coef, bias = a[i], a[i]
				if i == target {
					coef, bias = a[i]-1, 1-a[i]
				}
			case Sigmoid:
				coef = delta[i] * a[i] * (1 - a[i])
				bias = coef
			case LeakyReLU:
				coef = delta[i] * leakyDerivative(a[i])
				bias = coef
			}
			row := lg.Weights[i]
			for j := range row {
				row[j] = coef * aPrev[j]
			}
			lg.Biases[i] = bias
		}
		g.Layers[l] = lg

		if n.deltaMode == DeltaDiscard {
			upstream = make([]float64, len(delta))
		} else {
			upstream = delta
		}
	}
	return g
}

// successorDerivative is ∂a_{l+1,r}/∂a_{l,i} for the layer l+1 given by next,
// whose activations are aNext.
func successorDerivative(next *Layer, aNext []float64, r, i int) float64 {
	switch next.Kind {
	case Softmax:
		out := 0.0
		for q := 0; q < next.NumNodes; q++ {
			d := -aNext[r] * aNext[q]
			if q == r {
				d = aNext[r] * (1 - aNext[r])
			}
			out += next.Weights[q][i] * d
		}
		return out
	case LeakyReLU:
		return leakyDerivative(aNext[r]) * next.Weights[r][i]
	case Sigmoid:
		return aNext[r] * (1 - aNext[r]) * next.Weights[r][i]
	}
	panic(fmt.Sprintf("model: unknown activation %v", next.Kind))
}

// leakyDerivative works from the activation; its sign matches the pre-activation.
func leakyDerivative(a float64) float64 {
	if a > 0 {
		return 1
	}
	return LeakySlope
}
