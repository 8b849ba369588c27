package kserde

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// String stores the UTF-8 bytes unchanged.
var String = newSerde(
	func(s string) ([]byte, error) { return []byte(s), nil },
	func(b []byte) (string, error) { return string(b), nil },
)

// Float64 stores the IEEE 754 bits big-endian, so NaN payloads and signed
// zeros survive a round trip.
var Float64 = newSerde(encodeFloat64, decodeFloat64)

func encodeFloat64(f float64) ([]byte, error) {
	return binary.BigEndian.AppendUint64(make([]byte, 0, 8), math.Float64bits(f)), nil
}

func decodeFloat64(b []byte) (float64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("float64 needs exactly 8 bytes, got %d", len(b))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

var errEmptyJSON = errors.New("json: empty input")

// JSON encodes T with encoding/json. Empty input is rejected instead of
// decoding to the zero value.
func JSON[T any]() Serde[T] {
	return newSerde(
		func(t T) ([]byte, error) { return json.Marshal(t) },
		func(b []byte) (T, error) {
			var t T
			if len(b) == 0 {
				return t, errEmptyJSON
			}
			err := json.Unmarshal(b, &t)
			return t, err
		},
	)
}
