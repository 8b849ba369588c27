package kvalue

import "fmt"

// Operand is either a *Value or a Const. The set of implementations is closed.
// A nil Operand, including a nil *Value, is a programming error: operations
// panic on it rather than returning an error.
type Operand interface {
	operand()
}

// Const is a plain number used where an Operand is expected. It becomes a
// new leaf node each time it is used.
type Const float64

func (Const) operand()  {}
func (*Value) operand() {}

// resolve materializes o into a node. Constants always yield a fresh leaf.
func resolve(o Operand) *Value {
	switch v := o.(type) {
	case *Value:
		if v == nil {
			panic("kvalue: nil *Value operand")
		}
		return v
	case Const:
		return New(float64(v))
	case nil:
		panic("kvalue: nil operand")
	default:
		panic(fmt.Sprintf("kvalue: unsupported operand type %T", o))
	}
}

// Values converts a slice of numbers into constant operands.
func Values(xs ...float64) []Operand {
	out := make([]Operand, len(xs))
	for i, x := range xs {
		out[i] = Const(x)
	}
	return out
}
