package model

import (
	"fmt"
	"strings"
)

// LeakySlope is the LeakyReLU coefficient on the non-positive domain.
const LeakySlope = 0.3

// Activation selects the non-linearity applied by a layer.
type Activation int

const (
	Sigmoid Activation = iota
	LeakyReLU
	Softmax
)

// String returns the token used for the activation in weights files.
func (a Activation) String() string {
	switch a {
	case Sigmoid:
		return "Sigmoid"
	case LeakyReLU:
		return "ReLU"
	case Softmax:
		return "Softmax"
	}
	return fmt.Sprintf("Activation(%d)", int(a))
}

// ParseActivation accepts the weights file tokens and the lower-case config spellings.
func ParseActivation(s string) (Activation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sigmoid":
		return Sigmoid, nil
	case "relu", "leaky_relu", "leakyrelu":
		return LeakyReLU, nil
	case "softmax":
		return Softmax, nil
	}
	return 0, fmt.Errorf("unknown activation %q", s)
}

// DeltaMode controls what reaches a hidden layer during backpropagation.
type DeltaMode int

const (
	// DeltaPropagate passes dL/da down the stack by the chain rule.
	DeltaPropagate DeltaMode = iota
	// DeltaDiscard zeroes the propagated delta before it reaches the next
	// layer down. Hidden layers then receive a zero gradient and only the
	// output layer learns.
	DeltaDiscard
)

func (m DeltaMode) String() string {
	switch m {
	case DeltaPropagate:
		return "propagate"
	case DeltaDiscard:
		return "discard"
	}
	return fmt.Sprintf("DeltaMode(%d)", int(m))
}

// ParseDeltaMode maps a config string to a DeltaMode.
func ParseDeltaMode(s string) (DeltaMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "propagate":
		return DeltaPropagate, nil
	case "discard":
		return DeltaDiscard, nil
	}
	return 0, fmt.Errorf("unknown delta mode %q", s)
}
