package kstate

import (
	"bytes"
	"context"
	"iter"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/birdayz/kgrad/kserde"
)

type entry struct {
	key, value []byte
}

// memoryStore keeps entries sorted by key.
type memoryStore struct {
	name string

	mu      sync.RWMutex
	entries []entry
}

// NewInMemoryBackend returns a Backend that lives only as long as the process.
func NewInMemoryBackend(name string) Backend {
	return &memoryStore{name: name}
}

func (s *memoryStore) Name() string                    { return s.name }
func (s *memoryStore) Flush(ctx context.Context) error { return nil }
func (s *memoryStore) Persistent() bool                { return false }

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

func (s *memoryStore) search(k []byte) (int, bool) {
	return slices.BinarySearchFunc(s.entries, k, func(e entry, k []byte) int {
		return bytes.Compare(e.key, k)
	})
}

func (s *memoryStore) Set(k, v []byte) error {
	if v == nil {
		return s.Delete(k)
	}
	e := entry{key: bytes.Clone(k), value: bytes.Clone(v)}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, found := s.search(k)
	if found {
		s.entries[i] = e
		return nil
	}
	s.entries = slices.Insert(s.entries, i, e)
	return nil
}

func (s *memoryStore) Get(k []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, found := s.search(k)
	if !found {
		return nil, ErrKeyNotFound
	}
	return bytes.Clone(s.entries[i].value), nil
}

func (s *memoryStore) Delete(k []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, found := s.search(k); found {
		s.entries = slices.Delete(s.entries, i, i+1)
	}
	return nil
}

// Range snapshots the matching entries, so the store may be written while
// iterating.
func (s *memoryStore) Range(lower, upper []byte) iter.Seq2[[]byte, []byte] {
	s.mu.RLock()
	start, _ := s.search(lower)
	end := len(s.entries)
	if upper != nil {
		end, _ = s.search(upper)
	}
	var snapshot []entry
	if start < end {
		snapshot = slices.Clone(s.entries[start:end])
	}
	s.mu.RUnlock()

	return func(yield func([]byte, []byte) bool) {
		for _, e := range snapshot {
			if !yield(bytes.Clone(e.key), bytes.Clone(e.value)) {
				return
			}
		}
	}
}

func (s *memoryStore) All() iter.Seq2[[]byte, []byte] {
	return s.Range(nil, nil)
}

// NewInMemoryKeyValueStore is NewKeyValueStore over a fresh in-memory backend.
func NewInMemoryKeyValueStore[K comparable, V any](name string, keySerde kserde.Serde[K], valueSerde kserde.Serde[V]) KeyValueStore[K, V] {
	return NewKeyValueStore(NewInMemoryBackend(name), keySerde, valueSerde)
}

var _ Backend = (*memoryStore)(nil)
