package kvalue

import "errors"

// ErrInvalidArgument is returned when an operation is given an operand it
// cannot handle, such as a node-valued exponent.
var ErrInvalidArgument = errors.New("kvalue: invalid argument")
