package kvalue

import (
	"fmt"
	"math"
)

// Add returns a + b.
func Add(a, b Operand) *Value {
	x, y := resolve(a), resolve(b)
	out := newNode(x.data+y.data, OpAdd, x, y)
	out.backward = func() {
		x.grad += out.grad
		y.grad += out.grad
	}
	return out
}

// Mul returns a * b.
func Mul(a, b Operand) *Value {
	x, y := resolve(a), resolve(b)
	out := newNode(x.data*y.data, OpMul, x, y)
	out.backward = func() {
		x.grad += y.data * out.grad
		y.grad += x.data * out.grad
	}
	return out
}

// Pow returns a^k. The exponent must be a Const; a node-valued exponent is
// rejected with ErrInvalidArgument.
func Pow(a, k Operand) (*Value, error) {
	c, ok := k.(Const)
	if !ok {
		return nil, fmt.Errorf("%w: pow exponent must be a number, got %T", ErrInvalidArgument, k)
	}
	return pow(resolve(a), float64(c)), nil
}

// MustPow is like Pow but panics on error.
func MustPow(a, k Operand) *Value {
	out, err := Pow(a, k)
	if err != nil {
		panic(err)
	}
	return out
}

func pow(x *Value, k float64) *Value {
	out := newNode(math.Pow(x.data, k), OpPow, x)
	out.exponent = k
	out.backward = func() {
		x.grad += k * math.Pow(x.data, k-1) * out.grad
	}
	return out
}

// Exp returns e^a.
func Exp(a Operand) *Value {
	x := resolve(a)
	out := newNode(math.Exp(x.data), OpExp, x)
	out.backward = func() {
		x.grad += out.data * out.grad
	}
	return out
}

// Tanh returns the hyperbolic tangent of a, computed as
// (e^(2a)-1)/(e^(2a)+1). For large positive a this yields NaN, not 1.
func Tanh(a Operand) *Value {
	x := resolve(a)
	e2 := math.Exp(2 * x.data)
	out := newNode((e2-1)/(e2+1), OpTanh, x)
	out.backward = func() {
		x.grad += (1 - out.data*out.data) * out.grad
	}
	return out
}

// Relu returns a if a > 0, else 0.
func Relu(a Operand) *Value {
	x := resolve(a)
	data := 0.0
	if x.data > 0 {
		data = x.data
	}
	out := newNode(data, OpRelu, x)
	out.backward = func() {
		if out.data > 0 {
			x.grad += out.grad
		}
	}
	return out
}

// Neg returns a * -1.
func Neg(a Operand) *Value {
	return Mul(a, Const(-1))
}

// Sub returns a + (-b).
func Sub(a, b Operand) *Value {
	return Add(a, Neg(b))
}

// Div returns a * b^-1. Division by zero yields Inf or NaN.
func Div(a, b Operand) *Value {
	return Mul(a, pow(resolve(b), -1))
}

// Method forms of the operations above.

func (v *Value) Add(other Operand) *Value { return Add(v, other) }
func (v *Value) Mul(other Operand) *Value { return Mul(v, other) }
func (v *Value) Sub(other Operand) *Value { return Sub(v, other) }
func (v *Value) Div(other Operand) *Value { return Div(v, other) }
func (v *Value) Pow(k float64) *Value     { return pow(resolve(v), k) }
func (v *Value) Exp() *Value              { return Exp(v) }
func (v *Value) Tanh() *Value             { return Tanh(v) }
func (v *Value) Relu() *Value             { return Relu(v) }
func (v *Value) Neg() *Value              { return Neg(v) }
