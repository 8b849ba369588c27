package knn

import (
	"github.com/birdayz/kgrad/kvalue"
)

// Layer is a set of neurons sharing the same inputs.
type Layer struct {
	nin     int
	act     Activation
	neurons []*Neuron
}

func newLayer(nin, nout int, act Activation, init Initializer) *Layer {
	l := &Layer{
		nin:     nin,
		act:     act,
		neurons: make([]*Neuron, nout),
	}
	for i := range l.neurons {
		l.neurons[i] = newNeuron(nin, act, init)
	}
	return l
}

// Forward returns one output per neuron.
func (l *Layer) Forward(x []kvalue.Operand) ([]*kvalue.Value, error) {
	outs := make([]*kvalue.Value, len(l.neurons))
	for i, n := range l.neurons {
		out, err := n.Forward(x)
		if err != nil {
			return nil, err
		}
		outs[i] = out
	}
	return outs, nil
}

// Parameters returns the parameters of every neuron in order.
func (l *Layer) Parameters() []*kvalue.Value {
	var params []*kvalue.Value
	for _, n := range l.neurons {
		params = append(params, n.Parameters()...)
	}
	return params
}

// Neurons returns the layer's neurons.
func (l *Layer) Neurons() []*Neuron {
	return append([]*Neuron(nil), l.neurons...)
}

// Nin returns the number of inputs.
func (l *Layer) Nin() int {
	return l.nin
}

// Nout returns the number of neurons.
func (l *Layer) Nout() int {
	return len(l.neurons)
}

// Activation returns the nonlinearity new neurons of this layer get.
func (l *Layer) Activation() Activation {
	return l.act
}

func operands(vs []*kvalue.Value) []kvalue.Operand {
	out := make([]kvalue.Operand, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
