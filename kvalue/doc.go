// Package kvalue is a reverse-mode automatic differentiation engine over
// scalar values.
//
// # Overview
//
// Every arithmetic operation on a *Value allocates a new *Value that records
// its operands as predecessors and installs a backward rule for them. The
// resulting structure is a DAG rooted at the last value computed, usually a
// loss:
//
//	a := kvalue.New(-2)
//	b := kvalue.New(3)
//	d := a.Mul(b)
//	e := a.Add(b)
//	f := d.Mul(e)
//	f.Backward()
//
//	f.Data() // -6
//	a.Grad() // -3
//	b.Grad() // -8
//
// # Operands
//
// Operations accept an Operand: either a *Value or a Const. Constants are
// materialized into fresh leaf nodes at the call site, so
//
//	y := x.Mul(kvalue.Const(2))
//
// creates two nodes: the leaf 2 and the product.
//
// # Gradients
//
// Backward seeds the root with 1 and applies the backward rules in reverse
// topological order, so a node shared by several consumers has its gradient
// fully accumulated before it propagates further back. Gradients are never
// reset automatically; calling Backward twice on the same graph doubles the
// leaf gradients. Use ZeroGrad between passes.
//
// # Errors
//
// The only reported failure is Pow with an exponent that is not a Const,
// including a nil one, which returns an error wrapping ErrInvalidArgument.
// Every other nil operand, such as a nil *Value passed to Add or used as the
// base of Pow, panics with a message naming the problem. Arithmetic itself
// follows IEEE 754: Inf and NaN propagate and are never reported.
//
// # Thread Safety
//
// Building graphs only reads operand data, so independent graphs may be built
// concurrently over shared leaves. Backward writes gradients and must not run
// concurrently with another Backward touching the same nodes.
package kvalue
