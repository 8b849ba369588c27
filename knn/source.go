package knn

import (
	"math"
	"math/rand/v2"
)

// Source yields uniformly distributed numbers in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
}

// SourceFunc adapts a function to Source.
type SourceFunc func() float64

func (f SourceFunc) Float64() float64 { return f() }

// NewRandSource returns a PCG-backed Source. The same seed always yields the
// same sequence. It is not safe for concurrent use.
func NewRandSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Initializer produces initial parameter values in construction order:
// for each layer, for each neuron, its weights then its bias.
type Initializer interface {
	Next() float64
}

type uniformInitializer struct {
	src Source
}

// UniformInitializer draws parameters from [-1, 1).
func UniformInitializer(src Source) Initializer {
	return &uniformInitializer{src: src}
}

func (u *uniformInitializer) Next() float64 {
	return u.src.Float64()*2 - 1
}

// ReplayInitializer hands out values in order. Once exhausted it returns NaN;
// check Remaining, or size values with NumParameters.
type ReplayInitializer struct {
	values []float64
	pos    int
}

// NewReplayInitializer replays values. The slice is not copied.
func NewReplayInitializer(values []float64) *ReplayInitializer {
	return &ReplayInitializer{values: values}
}

func (r *ReplayInitializer) Next() float64 {
	if r.pos >= len(r.values) {
		return math.NaN()
	}
	v := r.values[r.pos]
	r.pos++
	return v
}

// Remaining returns how many values have not been handed out yet.
func (r *ReplayInitializer) Remaining() int {
	return len(r.values) - r.pos
}
