package model

import (
	"bytes"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsRoundTrip(t *testing.T) {
	for _, hidden := range []Activation{Sigmoid, LeakyReLU} {
		net, err := New([]int{9, 20, 20, 9}, hidden, rand.New(rand.NewSource(8)))
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "weights.txt")
		require.NoError(t, net.Save(path))

		loaded, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, net.Layers(), loaded.Layers())
	}
}

func TestWeightsFormat(t *testing.T) {
	net := &Network{layers: []Layer{
		{NumNodes: 1, InputDim: 2, Kind: LeakyReLU, Weights: [][]float64{{0.5, -1.25}}, Biases: []float64{2}},
		{NumNodes: 2, InputDim: 1, Kind: Softmax, Weights: [][]float64{{1e-5}, {3}}, Biases: []float64{0, -0.1}},
	}}
	var buf bytes.Buffer
	n, err := net.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	want := strings.Join([]string{
		"2",
		"1", "2", "ReLU", "0.5", "-1.25", "2",
		"2", "1", "Softmax", "1e-05", "0", "3", "-0.1",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestReadJavaStyleNumbers(t *testing.T) {
	src := "1\n2\n1\nSoftmax\n1.0E-5\n0.0\n-2.5\n3.0\n"
	net := &Network{}
	_, err := net.ReadFrom(strings.NewReader(src))
	require.NoError(t, err)
	layer := net.Layers()[0]
	assert.Equal(t, 1e-5, layer.Weights[0][0])
	assert.Equal(t, 0.0, layer.Biases[0])
	assert.Equal(t, -2.5, layer.Weights[1][0])
	assert.Equal(t, 3.0, layer.Biases[1])
}

func TestReadMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"bad count":      "two\n",
		"truncated":      "1\n2\n1\nSoftmax\n0.1\n",
		"bad kind":       "1\n1\n1\nTanh\n0\n0\n",
		"bad number":     "1\n1\n1\nSoftmax\nabc\n0\n",
		"hidden output":  "1\n1\n1\nSigmoid\n0\n0\n",
		"shape mismatch": "2\n2\n1\nSigmoid\n0\n0\n0\n0\n1\n3\nSoftmax\n0\n0\n0\n0\n",
		"zero count":     "0\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			net, err := New([]int{1, 1}, Sigmoid, rand.New(rand.NewSource(1)))
			require.NoError(t, err)
			before := net.Clone()
			_, err = net.ReadFrom(strings.NewReader(src))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedWeights)
			assert.Equal(t, before.Layers(), net.Layers(), "failed read must not modify the network")
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestLoadKeepsDeltaMode(t *testing.T) {
	net, err := New([]int{3, 2, 3}, Sigmoid, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "w.txt")
	require.NoError(t, net.Save(path))

	other, err := New([]int{3, 3}, Sigmoid, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	other.SetDeltaMode(DeltaDiscard)
	require.NoError(t, other.Load(path))
	assert.Equal(t, DeltaDiscard, other.DeltaMode())
	assert.Equal(t, net.Layers(), other.Layers())
}
