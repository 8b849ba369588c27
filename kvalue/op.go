package kvalue

import "strconv"

// Op identifies the primitive that produced a Value.
type Op int

const (
	OpNone Op = iota
	OpAdd
	OpMul
	OpPow
	OpExp
	OpTanh
	OpRelu
)

func (o Op) String() string {
	switch o {
	case OpNone:
		return ""
	case OpAdd:
		return "add"
	case OpMul:
		return "mul"
	case OpPow:
		return "pow"
	case OpExp:
		return "exp"
	case OpTanh:
		return "tanh"
	case OpRelu:
		return "relu"
	default:
		return "unknown"
	}
}

// tag renders the provenance label of a node. Pow carries its exponent.
func tag(op Op, exponent float64) string {
	if op == OpPow {
		return op.String() + ":" + strconv.FormatFloat(exponent, 'g', -1, 64)
	}
	return op.String()
}
