package knn

import (
	"fmt"

	"github.com/birdayz/kgrad/kvalue"
	"golang.org/x/exp/slices"
)

// Structural changes replace or extend parameter nodes. Graphs built by
// earlier Forward calls keep referencing the old nodes and are stale; new
// parameters start with a zero gradient.

// AddNeuron appends a neuron to layer and gives every neuron of the next
// layer one extra input weight for it.
func (m *MLP) AddNeuron(layer int) error {
	if layer < 0 || layer >= len(m.layers) {
		return fmt.Errorf("%w: layer %d out of range [0, %d)", kvalue.ErrInvalidArgument, layer, len(m.layers))
	}

	l := m.layers[layer]
	l.neurons = append(l.neurons, newNeuron(l.nin, l.act, m.init))
	m.sizes[layer+1]++

	if layer+1 < len(m.layers) {
		next := m.layers[layer+1]
		for _, n := range next.neurons {
			n.w = append(n.w, kvalue.New(m.init.Next(), kvalue.WithLabel(fmt.Sprintf("w%d", len(n.w)))))
		}
		next.nin++
	}

	m.log.Debug("Added neuron", "layer", layer, "sizes", m.sizes)
	return nil
}

// AddLayer inserts a layer of nout neurons at layer position pos, where 0
// places it directly after the inputs and len(Layers()) appends it. The
// layer previously at pos is rewired to the new width: its weights are
// redrawn, its biases are kept.
func (m *MLP) AddLayer(pos, nout int) error {
	if pos < 0 || pos > len(m.layers) {
		return fmt.Errorf("%w: layer position %d out of range [0, %d]", kvalue.ErrInvalidArgument, pos, len(m.layers))
	}
	if nout <= 0 {
		return fmt.Errorf("%w: layer width must be positive, got %d", kvalue.ErrInvalidArgument, nout)
	}

	act := m.hidden
	if pos == len(m.layers) {
		// Appended layers become the output and take over its activation.
		act = m.layers[pos-1].act
	}

	nl := newLayer(m.sizes[pos], nout, act, m.init)
	m.layers = slices.Insert(m.layers, pos, nl)
	m.sizes = slices.Insert(m.sizes, pos+1, nout)

	if pos+1 < len(m.layers) {
		next := m.layers[pos+1]
		for _, n := range next.neurons {
			n.w = make([]*kvalue.Value, nout)
			for k := range n.w {
				n.w[k] = kvalue.New(m.init.Next(), kvalue.WithLabel(fmt.Sprintf("w%d", k)))
			}
		}
		next.nin = nout
	}

	m.log.Debug("Added layer", "position", pos, "width", nout, "sizes", m.sizes)
	return nil
}
