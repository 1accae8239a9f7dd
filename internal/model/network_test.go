package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomInput(rng *rand.Rand, n int) []float64 {
	in := make([]float64, n)
	for i := range in {
		in[i] = rng.Float64()*4 - 2
	}
	return in
}

func TestNewShapes(t *testing.T) {
	net, err := New([]int{9, 20, 20, 9}, Sigmoid, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	layers := net.Layers()
	require.Len(t, layers, 3)
	assert.Equal(t, 9, net.InputDim())
	assert.Equal(t, 9, net.OutputDim())
	for l, layer := range layers {
		if l > 0 {
			assert.Equal(t, layers[l-1].NumNodes, layer.InputDim)
		}
		require.Len(t, layer.Weights, layer.NumNodes)
		require.Len(t, layer.Biases, layer.NumNodes)
		for _, row := range layer.Weights {
			require.Len(t, row, layer.InputDim)
		}
	}
	assert.Equal(t, Sigmoid, layers[0].Kind)
	assert.Equal(t, Sigmoid, layers[1].Kind)
	assert.Equal(t, Softmax, layers[2].Kind)
}

func TestNewRejectsBadTopology(t *testing.T) {
	_, err := New([]int{9}, Sigmoid, nil)
	assert.Error(t, err)
	_, err = New([]int{9, 0, 9}, Sigmoid, nil)
	assert.Error(t, err)
	_, err = New([]int{9, 4, 9}, Softmax, nil)
	assert.Error(t, err)
}

func TestForwardSoftmaxSumsToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, hidden := range []Activation{Sigmoid, LeakyReLU} {
		net, err := New([]int{9, 12, 9}, hidden, rng)
		require.NoError(t, err)
		for k := 0; k < 50; k++ {
			out := net.Forward(randomInput(rng, 9))
			require.Len(t, out, 9)
			sum := 0.0
			for _, p := range out {
				assert.GreaterOrEqual(t, p, 0.0)
				sum += p
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		}
	}
}

func TestForwardSingleSigmoidLayer(t *testing.T) {
	net := &Network{layers: []Layer{
		{NumNodes: 2, InputDim: 2, Kind: Sigmoid, Weights: [][]float64{{1, 0}, {0, -1}}, Biases: []float64{0, 0.5}},
		{NumNodes: 2, InputDim: 2, Kind: Softmax, Weights: [][]float64{{0, 0}, {0, 0}}, Biases: []float64{0, 0}},
	}}
	acts := net.activations([]float64{2, 1})
	assert.InDelta(t, 1/(1+math.Exp(-2)), acts[0][0], 1e-12)
	assert.InDelta(t, 1/(1+math.Exp(0.5)), acts[0][1], 1e-12)
	// equal logits give a uniform distribution
	assert.InDelta(t, 0.5, acts[1][0], 1e-12)
	assert.InDelta(t, 0.5, acts[1][1], 1e-12)
}

func TestLeakyActivation(t *testing.T) {
	for _, z := range []float64{-3, -0.5, -1e-9, 0, 1e-9, 0.5, 3} {
		want := z
		if z <= 0 {
			want = LeakySlope * z
		}
		assert.Equal(t, want, leaky(z), "leaky(%v)", z)
	}
	assert.Equal(t, 0.0, leaky(0))
	assert.InDelta(t, leaky(-1e-12), leaky(1e-12), 1e-11)
}

func TestForwardPanicsOnInputMismatch(t *testing.T) {
	net, err := New([]int{9, 4, 9}, Sigmoid, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Panics(t, func() { net.Forward(make([]float64, 8)) })
}

func TestStepZeroLearningRateIsNoop(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	net, err := New([]int{9, 6, 9}, Sigmoid, rng)
	require.NoError(t, err)
	before := net.Clone()

	g := net.Gradient(randomInput(rng, 9), 4)
	net.Step(g, 0, 1)
	assert.Equal(t, before.Layers(), net.Layers())
}

func TestStepScalesByBatchSize(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	net, err := New([]int{3, 2, 3}, Sigmoid, rng)
	require.NoError(t, err)
	before := net.Clone()

	g := net.NewGradient()
	for l := range g.Layers {
		for i := range g.Layers[l].Weights {
			for j := range g.Layers[l].Weights[i] {
				g.Layers[l].Weights[i][j] = 4
			}
			g.Layers[l].Biases[i] = -8
		}
	}
	net.Step(g, 0.5, 4)
	for l, layer := range net.Layers() {
		old := before.Layers()[l]
		for i := range layer.Weights {
			for j := range layer.Weights[i] {
				assert.InDelta(t, old.Weights[i][j]-0.5, layer.Weights[i][j], 1e-12)
			}
			assert.InDelta(t, old.Biases[i]+1, layer.Biases[i], 1e-12)
		}
	}
}

func TestTrainingStepsReduceLoss(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	net, err := New([]int{4, 6, 3}, Sigmoid, rng)
	require.NoError(t, err)
	inputs := [][]float64{{0.1, 0.2, 0.3, 0.4}, {0.4, 0.3, 0.2, 0.1}}
	targets := []int{1, 2}

	loss := func() float64 {
		total := 0.0
		for i, in := range inputs {
			total += net.Loss(in, targets[i])
		}
		return total
	}
	start := loss()
	for step := 0; step < 50; step++ {
		g := net.NewGradient()
		for i, in := range inputs {
			g.Accumulate(net.Gradient(in, targets[i]), 1)
		}
		// only weights: the output bias term pushes the other way
		for i := range g.Layers[len(g.Layers)-1].Biases {
			g.Layers[len(g.Layers)-1].Biases[i] = 0
		}
		net.Step(g, 0.1, float64(len(inputs)))
	}
	assert.Less(t, loss(), start)
}

func TestCloneIsDeep(t *testing.T) {
	net, err := New([]int{2, 2, 2}, Sigmoid, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	c := net.Clone()
	c.Layers()[0].Weights[0][0] += 1
	assert.NotEqual(t, c.Layers()[0].Weights[0][0], net.Layers()[0].Weights[0][0])
}
