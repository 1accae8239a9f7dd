package model

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedWeights indicates a weights file that cannot be parsed.
var ErrMalformedWeights = errors.New("model: malformed weights")

// WriteTo writes the network in the line-oriented weights format: the layer
// count, then per layer its node count, input width and activation token,
// followed by each neuron's weights and bias, one number per line.
func (n *Network) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	put := func(s string) error {
		c, err := bw.WriteString(s)
		written += int64(c)
		if err != nil {
			return err
		}
		c, err = bw.WriteString("\n")
		written += int64(c)
		return err
	}
	if err := put(strconv.Itoa(len(n.layers))); err != nil {
		return written, err
	}
	for _, layer := range n.layers {
		if err := put(strconv.Itoa(layer.NumNodes)); err != nil {
			return written, err
		}
		if err := put(strconv.Itoa(layer.InputDim)); err != nil {
			return written, err
		}
		if err := put(layer.Kind.String()); err != nil {
			return written, err
		}
		for i := 0; i < layer.NumNodes; i++ {
			for _, v := range layer.Weights[i] {
				if err := put(strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
					return written, err
				}
			}
			if err := put(strconv.FormatFloat(layer.Biases[i], 'g', -1, 64)); err != nil {
				return written, err
			}
		}
	}
	return written, bw.Flush()
}

type lineReader struct {
	scanner *bufio.Scanner
	line    int
	read    int64
}

func (r *lineReader) next() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: unexpected end of file after line %d", ErrMalformedWeights, r.line)
	}
	r.line++
	text := r.scanner.Text()
	r.read += int64(len(text)) + 1
	return strings.TrimSpace(text), nil
}

func (r *lineReader) readInt() (int, error) {
	s, err := r.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: %v", ErrMalformedWeights, r.line, err)
	}
	return v, nil
}

func (r *lineReader) readFloat() (float64, error) {
	s, err := r.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: %v", ErrMalformedWeights, r.line, err)
	}
	return v, nil
}

// ReadFrom replaces every layer of n with the layers encoded in r. On error n
// is left unchanged.
func (n *Network) ReadFrom(r io.Reader) (int64, error) {
	lr := &lineReader{scanner: bufio.NewScanner(r)}
	count, err := lr.readInt()
	if err != nil {
		return lr.read, err
	}
	if count <= 0 {
		return lr.read, fmt.Errorf("%w: layer count %d", ErrMalformedWeights, count)
	}
	layers := make([]Layer, count)
	for l := range layers {
		nodes, err := lr.readInt()
		if err != nil {
			return lr.read, err
		}
		dim, err := lr.readInt()
		if err != nil {
			return lr.read, err
		}
		if nodes <= 0 || dim <= 0 {
			return lr.read, fmt.Errorf("%w: layer %d: shape %dx%d", ErrMalformedWeights, l, nodes, dim)
		}
		tag, err := lr.next()
		if err != nil {
			return lr.read, err
		}
		kind, err := ParseActivation(tag)
		if err != nil {
			return lr.read, fmt.Errorf("%w: line %d: %v", ErrMalformedWeights, lr.line, err)
		}
		layer := newLayer(nodes, dim, kind)
		for i := 0; i < nodes; i++ {
			for j := 0; j < dim; j++ {
				if layer.Weights[i][j], err = lr.readFloat(); err != nil {
					return lr.read, err
				}
			}
			if layer.Biases[i], err = lr.readFloat(); err != nil {
				return lr.read, err
			}
		}
		layers[l] = layer
	}
	if err := validateLayers(layers); err != nil {
		return lr.read, err
	}
	n.layers = layers
	return lr.read, nil
}

func validateLayers(layers []Layer) error {
	for l, layer := range layers {
		if l > 0 && layer.InputDim != layers[l-1].NumNodes {
			return fmt.Errorf("%w: layer %d input %d does not match layer %d width %d",
				ErrMalformedWeights, l, layer.InputDim, l-1, layers[l-1].NumNodes)
		}
		last := l == len(layers)-1
		if last && layer.Kind != Softmax {
			return fmt.Errorf("%w: output layer is %v, want Softmax", ErrMalformedWeights, layer.Kind)
		}
		if !last && layer.Kind == Softmax {
			return fmt.Errorf("%w: hidden layer %d is Softmax", ErrMalformedWeights, l)
		}
	}
	return nil
}

// Save writes the network to path, replacing any existing file.
func (n *Network) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save weights: %w", err)
	}
	if _, err := n.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("save weights %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save weights %s: %w", path, err)
	}
	return nil
}

// Load replaces the layers of n with those stored at path.
func (n *Network) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load weights: %w", err)
	}
	defer f.Close()
	if _, err := n.ReadFrom(f); err != nil {
		return fmt.Errorf("load weights %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a new network from path.
func LoadFile(path string) (*Network, error) {
	n := &Network{}
	if err := n.Load(path); err != nil {
		return nil, err
	}
	return n, nil
}
