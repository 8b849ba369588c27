package knn

import (
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/birdayz/kgrad/kvalue"
)

// MLP is a stack of fully connected layers.
//
// MLP is NOT safe for concurrent mutation. Forward and ForwardBatch only read
// parameter data and may run concurrently with each other.
type MLP struct {
	sizes  []int // [nin, nout of each layer...]
	layers []*Layer

	init    Initializer
	hidden  Activation
	workers int
	log     *slog.Logger
}

// NewMLP creates a network with nin inputs and one layer per entry of nouts.
func NewMLP(nin int, nouts []int, opts ...Option) (*MLP, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validateConfig(nin, nouts, cfg); err != nil {
		return nil, err
	}

	m := &MLP{
		sizes:   append([]int{nin}, nouts...),
		layers:  make([]*Layer, len(nouts)),
		init:    cfg.init,
		hidden:  cfg.hidden,
		workers: cfg.workers,
		log:     cfg.log,
	}
	for i := range nouts {
		m.layers[i] = newLayer(m.sizes[i], m.sizes[i+1], layerActivation(cfg, i, len(nouts)), cfg.init)
	}

	m.log.Debug("Created MLP", "sizes", m.sizes, "parameters", NumParameters(nin, nouts))
	return m, nil
}

// MustNewMLP is like NewMLP but panics on error.
func MustNewMLP(nin int, nouts []int, opts ...Option) *MLP {
	m, err := NewMLP(nin, nouts, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func layerActivation(cfg config, i, n int) Activation {
	if cfg.layerActivations != nil {
		return cfg.layerActivations[i]
	}
	if i == n-1 {
		return cfg.output
	}
	return cfg.hidden
}

// validateConfig reports every problem at once.
func validateConfig(nin int, nouts []int, cfg config) error {
	var err error
	if nin <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: nin must be positive, got %d", kvalue.ErrInvalidArgument, nin))
	}
	if len(nouts) == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: at least one layer is required", kvalue.ErrInvalidArgument))
	}
	for i, n := range nouts {
		if n <= 0 {
			err = multierr.Append(err, fmt.Errorf("%w: layer %d must have a positive width, got %d", kvalue.ErrInvalidArgument, i, n))
		}
	}
	if cfg.layerActivations != nil && len(cfg.layerActivations) != len(nouts) {
		err = multierr.Append(err, fmt.Errorf("%w: %d layer activations given for %d layers",
			kvalue.ErrInvalidArgument, len(cfg.layerActivations), len(nouts)))
	}
	if cfg.init == nil {
		err = multierr.Append(err, fmt.Errorf("%w: initializer must not be nil", kvalue.ErrInvalidArgument))
	}
	if cfg.workers <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: workers must be positive, got %d", kvalue.ErrInvalidArgument, cfg.workers))
	}
	return err
}

// NumParameters returns how many parameters NewMLP(nin, nouts) creates.
func NumParameters(nin int, nouts []int) int {
	total := 0
	prev := nin
	for _, n := range nouts {
		total += n * (prev + 1)
		prev = n
	}
	return total
}

// Forward feeds x through every layer and returns the outputs of the last.
func (m *MLP) Forward(x []kvalue.Operand) ([]*kvalue.Value, error) {
	in := x
	var out []*kvalue.Value
	for i, l := range m.layers {
		var err error
		out, err = l.Forward(in)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		in = operands(out)
	}
	return out, nil
}

// ForwardValues is Forward for plain numeric inputs.
func (m *MLP) ForwardValues(x []float64) ([]*kvalue.Value, error) {
	return m.Forward(kvalue.Values(x...))
}

// ForwardScalar is Forward for networks with a single output.
func (m *MLP) ForwardScalar(x []kvalue.Operand) (*kvalue.Value, error) {
	if n := m.sizes[len(m.sizes)-1]; n != 1 {
		return nil, fmt.Errorf("%w: network has %d outputs, want 1", kvalue.ErrInvalidArgument, n)
	}
	out, err := m.Forward(x)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// Parameters returns every parameter: layer by layer, neuron by neuron,
// weights then bias.
func (m *MLP) Parameters() []*kvalue.Value {
	var params []*kvalue.Value
	for _, l := range m.layers {
		params = append(params, l.Parameters()...)
	}
	return params
}

// NamedParameter is a parameter with its position in the network.
type NamedParameter struct {
	Name  string
	Value *kvalue.Value
}

// NamedParameters returns Parameters with names of the form l<i>.n<j>.w<k>
// and l<i>.n<j>.b.
func (m *MLP) NamedParameters() []NamedParameter {
	var params []NamedParameter
	for i, l := range m.layers {
		for j, n := range l.neurons {
			for k, w := range n.w {
				params = append(params, NamedParameter{Name: fmt.Sprintf("l%d.n%d.w%d", i, j, k), Value: w})
			}
			params = append(params, NamedParameter{Name: fmt.Sprintf("l%d.n%d.b", i, j), Value: n.b})
		}
	}
	return params
}

// ZeroGrad resets the gradient of every parameter.
func (m *MLP) ZeroGrad() {
	kvalue.ZeroGrad(m.Parameters()...)
}

// Sizes returns [nin, nout of each layer...].
func (m *MLP) Sizes() []int {
	return append([]int(nil), m.sizes...)
}

// Layers returns the layers in order.
func (m *MLP) Layers() []*Layer {
	return append([]*Layer(nil), m.layers...)
}

// SetInitializer replaces the initializer used by AddNeuron and AddLayer.
func (m *MLP) SetInitializer(init Initializer) {
	m.init = init
}

// Activations returns the activation of each layer.
func (m *MLP) Activations() []Activation {
	acts := make([]Activation, len(m.layers))
	for i, l := range m.layers {
		acts[i] = l.act
	}
	return acts
}
