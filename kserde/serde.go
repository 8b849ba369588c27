// Package kserde holds the byte codecs used to persist parameters and
// checkpoint metadata.
package kserde

type (
	Serializer[T any]   func(T) ([]byte, error)
	Deserializer[T any] func([]byte) (T, error)
)

// Serde pairs a Serializer with its inverse.
type Serde[T any] struct {
	Serializer   Serializer[T]
	Deserializer Deserializer[T]
}

func newSerde[T any](s Serializer[T], d Deserializer[T]) Serde[T] {
	return Serde[T]{Serializer: s, Deserializer: d}
}
