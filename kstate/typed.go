package kstate

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/birdayz/kgrad/kserde"
)

type keyValueStore[K comparable, V any] struct {
	Backend
	keySerde   kserde.Serde[K]
	valueSerde kserde.Serde[V]
}

// NewKeyValueStore wraps backend with the given serdes. Several typed views
// may share one backend as long as their keys do not collide.
func NewKeyValueStore[K comparable, V any](backend Backend, keySerde kserde.Serde[K], valueSerde kserde.Serde[V]) KeyValueStore[K, V] {
	return &keyValueStore[K, V]{
		Backend:    backend,
		keySerde:   keySerde,
		valueSerde: valueSerde,
	}
}

func (s *keyValueStore[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V

	keyBytes, err := s.keySerde.Serializer(key)
	if err != nil {
		return zero, false, fmt.Errorf("encode key: %w", err)
	}

	valueBytes, err := s.Backend.Get(keyBytes)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("store %s get: %w", s.Name(), err)
	}

	value, err := s.valueSerde.Deserializer(valueBytes)
	if err != nil {
		return zero, false, fmt.Errorf("decode value: %w", err)
	}
	return value, true, nil
}

func (s *keyValueStore[K, V]) Set(ctx context.Context, key K, value V) error {
	keyBytes, err := s.keySerde.Serializer(key)
	if err != nil {
		return fmt.Errorf("encode key: %w", err)
	}
	valueBytes, err := s.valueSerde.Serializer(value)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	if err := s.Backend.Set(keyBytes, valueBytes); err != nil {
		return fmt.Errorf("store %s set: %w", s.Name(), err)
	}
	return nil
}

func (s *keyValueStore[K, V]) Delete(ctx context.Context, key K) error {
	keyBytes, err := s.keySerde.Serializer(key)
	if err != nil {
		return fmt.Errorf("encode key: %w", err)
	}
	if err := s.Backend.Delete(keyBytes); err != nil {
		return fmt.Errorf("store %s delete: %w", s.Name(), err)
	}
	return nil
}

func (s *keyValueStore[K, V]) Range(ctx context.Context, from, to K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		fromBytes, err := s.keySerde.Serializer(from)
		if err != nil {
			return
		}
		toBytes, err := s.keySerde.Serializer(to)
		if err != nil {
			return
		}
		for k, v := range MapIter(s.Backend.Range(fromBytes, toBytes), s.keySerde.Deserializer, s.valueSerde.Deserializer, nil) {
			if !yield(k, v) {
				return
			}
		}
	}
}

func (s *keyValueStore[K, V]) All(ctx context.Context) iter.Seq2[K, V] {
	return MapIter(s.Backend.All(), s.keySerde.Deserializer, s.valueSerde.Deserializer, nil)
}

var _ KeyValueStore[string, float64] = (*keyValueStore[string, float64])(nil)
