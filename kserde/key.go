package kserde

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	paramInfix  = "/param/"
	indexDigits = 8
)

// ParamKey addresses one parameter of a named checkpoint.
type ParamKey struct {
	Checkpoint string
	Index      int
}

// ParamPrefix returns the bounds [lower, upper) of every encoded ParamKey of
// checkpoint.
func ParamPrefix(checkpoint string) (lower, upper []byte) {
	p := checkpoint + paramInfix
	upper = []byte(p)
	upper[len(upper)-1]++
	return []byte(p), upper
}

// ParamKeys encodes keys as <checkpoint>/param/<index>, with the index
// zero-padded so byte order equals parameter order.
var ParamKeys = newSerde(encodeParamKey, decodeParamKey)

func encodeParamKey(k ParamKey) ([]byte, error) {
	if k.Index < 0 || k.Index >= 1e8 {
		return nil, fmt.Errorf("parameter index %d out of range", k.Index)
	}
	return fmt.Appendf(nil, "%s%s%0*d", k.Checkpoint, paramInfix, indexDigits, k.Index), nil
}

func decodeParamKey(b []byte) (ParamKey, error) {
	s := string(b)
	i := strings.LastIndex(s, paramInfix)
	if i < 0 {
		return ParamKey{}, fmt.Errorf("malformed parameter key %q", s)
	}
	digits := s[i+len(paramInfix):]
	if len(digits) != indexDigits {
		return ParamKey{}, fmt.Errorf("malformed parameter key %q", s)
	}
	idx, err := strconv.Atoi(digits)
	if err != nil || idx < 0 {
		return ParamKey{}, fmt.Errorf("malformed parameter key %q", s)
	}
	return ParamKey{Checkpoint: s[:i], Index: idx}, nil
}
