package kvalue

import "fmt"

// Value is a node of the computation graph.
//
// Data and the predecessor list are fixed at construction. Only the gradient
// changes, and only through Backward or ZeroGrad.
type Value struct {
	data     float64
	grad     float64
	prev     []*Value
	op       Op
	exponent float64 // only meaningful for OpPow
	label    string
	backward func()
}

// Option configures a leaf created with New.
type Option func(*Value)

// WithLabel attaches a display name to a leaf.
var WithLabel = func(label string) Option {
	return func(v *Value) {
		v.label = label
	}
}

// New creates a leaf node holding data.
func New(data float64, opts ...Option) *Value {
	v := &Value{data: data, backward: func() {}}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// newNode creates an interior node. The backward rule is installed by the
// caller right after, before the node escapes.
func newNode(data float64, op Op, prev ...*Value) *Value {
	return &Value{data: data, op: op, prev: prev}
}

// Data returns the forward value.
func (v *Value) Data() float64 {
	return v.data
}

// Grad returns the accumulated derivative of the last Backward root with
// respect to this node.
func (v *Value) Grad() float64 {
	return v.grad
}

// Op returns the primitive that produced v, OpNone for leaves.
func (v *Value) Op() Op {
	return v.op
}

// Tag returns the provenance label, e.g. "mul" or "pow:2". Empty for leaves.
func (v *Value) Tag() string {
	return tag(v.op, v.exponent)
}

// Label returns the display name set with WithLabel.
func (v *Value) Label() string {
	return v.label
}

// Prev returns the predecessors in the order they were given to the
// operation. The returned slice is a copy.
func (v *Value) Prev() []*Value {
	out := make([]*Value, len(v.prev))
	copy(out, v.prev)
	return out
}

// IsLeaf reports whether v has no predecessors.
func (v *Value) IsLeaf() bool {
	return len(v.prev) == 0
}

func (v *Value) String() string {
	if v.label != "" {
		return fmt.Sprintf("Value(%s data=%g grad=%g)", v.label, v.data, v.grad)
	}
	return fmt.Sprintf("Value(data=%g grad=%g)", v.data, v.grad)
}

// ZeroGrad resets the gradient of every given node.
func ZeroGrad(values ...*Value) {
	for _, v := range values {
		v.grad = 0
	}
}
