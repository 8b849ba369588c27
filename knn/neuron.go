package knn

import (
	"fmt"

	"github.com/birdayz/kgrad/kvalue"
)

// Neuron computes act(w·x + b).
type Neuron struct {
	w   []*kvalue.Value
	b   *kvalue.Value
	act Activation
}

func newNeuron(nin int, act Activation, init Initializer) *Neuron {
	n := &Neuron{
		w:   make([]*kvalue.Value, nin),
		act: act,
	}
	for i := range n.w {
		n.w[i] = kvalue.New(init.Next(), kvalue.WithLabel(fmt.Sprintf("w%d", i)))
	}
	n.b = kvalue.New(init.Next(), kvalue.WithLabel("b"))
	return n
}

// Forward builds the graph of one activation. len(x) must equal the number
// of weights.
func (n *Neuron) Forward(x []kvalue.Operand) (*kvalue.Value, error) {
	if len(x) != len(n.w) {
		return nil, fmt.Errorf("%w: forward expected %d inputs, %d given",
			kvalue.ErrInvalidArgument, len(n.w), len(x))
	}
	if len(n.w) == 0 {
		return n.act.apply(n.b), nil
	}

	act := n.w[0].Mul(x[0])
	for i := 1; i < len(n.w); i++ {
		act = act.Add(n.w[i].Mul(x[i]))
	}
	return n.act.apply(act.Add(n.b)), nil
}

// Parameters returns the weights followed by the bias.
func (n *Neuron) Parameters() []*kvalue.Value {
	params := make([]*kvalue.Value, 0, len(n.w)+1)
	params = append(params, n.w...)
	return append(params, n.b)
}

// Weights returns the weight nodes.
func (n *Neuron) Weights() []*kvalue.Value {
	return append([]*kvalue.Value(nil), n.w...)
}

// Bias returns the bias node.
func (n *Neuron) Bias() *kvalue.Value {
	return n.b
}

// Activation returns the neuron's nonlinearity.
func (n *Neuron) Activation() Activation {
	return n.act
}

// Nin returns the number of inputs.
func (n *Neuron) Nin() int {
	return len(n.w)
}
