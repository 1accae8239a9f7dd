package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LayerGradient holds the weight and bias deltas for one layer.
type LayerGradient struct {
	Weights [][]float64
	Biases  []float64
}

// Gradient holds one LayerGradient per network layer, shaped like the layers.
type Gradient struct {
	Layers []LayerGradient
}

// NewGradient returns a zero gradient shaped to match n.
func (n *Network) NewGradient() *Gradient {
	g := &Gradient{Layers: make([]LayerGradient, len(n.layers))}
	for l, layer := range n.layers {
		g.Layers[l] = zeroLayerGradient(layer.NumNodes, layer.InputDim)
	}
	return g
}

func zeroLayerGradient(nodes, dim int) LayerGradient {
	lg := LayerGradient{
		Weights: make([][]float64, nodes),
		Biases:  make([]float64, nodes),
	}
	for i := range lg.Weights {
		lg.Weights[i] = make([]float64, dim)
	}
	return lg
}

// Accumulate adds other scaled by direction into g. Shapes must match exactly.
func (g *Gradient) Accumulate(other *Gradient, direction float64) {
	if len(g.Layers) != len(other.Layers) {
		panic(fmt.Sprintf("model: accumulate %d layers into %d", len(other.Layers), len(g.Layers)))
	}
	for l := range g.Layers {
		dst, src := g.Layers[l], other.Layers[l]
		if len(dst.Weights) != len(src.Weights) || len(dst.Biases) != len(src.Biases) {
			panic(fmt.Sprintf("model: accumulate layer %d: shape mismatch", l))
		}
		for i := range dst.Weights {
			floats.AddScaled(dst.Weights[i], direction, src.Weights[i])
		}
		floats.AddScaled(dst.Biases, direction, src.Biases)
	}
}

// Clone returns a deep copy.
func (g *Gradient) Clone() *Gradient {
	out := &Gradient{Layers: make([]LayerGradient, len(g.Layers))}
	for l, lg := range g.Layers {
		c := LayerGradient{
			Weights: make([][]float64, len(lg.Weights)),
			Biases:  append([]float64(nil), lg.Biases...),
		}
		for i, row := range lg.Weights {
			c.Weights[i] = append([]float64(nil), row...)
		}
		out.Layers[l] = c
	}
	return out
}

// Equal reports whether g and other have the same shape and every element
// differs by at most tol.
func (g *Gradient) Equal(other *Gradient, tol float64) bool {
	if len(g.Layers) != len(other.Layers) {
		return false
	}
	for l := range g.Layers {
		a, b := g.Layers[l], other.Layers[l]
		if len(a.Weights) != len(b.Weights) || !floats.EqualApprox(a.Biases, b.Biases, tol) {
			return false
		}
		for i := range a.Weights {
			if !floats.EqualApprox(a.Weights[i], b.Weights[i], tol) {
				return false
			}
		}
	}
	return true
}

// MaxAbs returns the largest absolute element in the gradient.
func (g *Gradient) MaxAbs() float64 {
	m := 0.0
	for _, lg := range g.Layers {
		for _, row := range lg.Weights {
			for _, v := range row {
				m = math.Max(m, math.Abs(v))
			}
		}
		for _, v := range lg.Biases {
			m = math.Max(m, math.Abs(v))
		}
	}
	return m
}
