package knn

import (
	"fmt"

	"github.com/birdayz/kgrad/kvalue"
)

// Activation is the nonlinearity applied to a neuron's weighted sum.
type Activation int

const (
	Tanh Activation = iota
	ReLU
	Linear
)

func (a Activation) String() string {
	switch a {
	case Tanh:
		return "tanh"
	case ReLU:
		return "relu"
	case Linear:
		return "linear"
	default:
		return "unknown"
	}
}

// ParseActivation is the inverse of Activation.String.
func ParseActivation(s string) (Activation, error) {
	switch s {
	case "tanh", "":
		return Tanh, nil
	case "relu":
		return ReLU, nil
	case "linear":
		return Linear, nil
	default:
		return 0, fmt.Errorf("%w: unknown activation %q", kvalue.ErrInvalidArgument, s)
	}
}

func (a Activation) apply(v *kvalue.Value) *kvalue.Value {
	switch a {
	case ReLU:
		return v.Relu()
	case Linear:
		return v
	default:
		return v.Tanh()
	}
}
