// Package kstate provides the key/value stores checkpoints are written to.
package kstate

import (
	"context"
	"errors"
	"iter"
)

var (
	ErrKeyNotFound = errors.New("store: key not found")
)

// Store is the lifecycle every store shares.
type Store interface {
	// Name returns the store name
	Name() string

	// Flush persists any buffered writes
	Flush(ctx context.Context) error

	// Close releases the store. The store must not be used afterwards.
	Close() error

	// Persistent reports whether the data outlives the process
	Persistent() bool
}

// KeyValueStore is a typed key/value store.
type KeyValueStore[K comparable, V any] interface {
	Store

	// Get retrieves a value by key
	// Returns (value, true, nil) if found
	// Returns (zero, false, nil) if not found
	// Returns (zero, false, err) on error
	Get(ctx context.Context, key K) (V, bool, error)

	// Set stores a key-value pair
	Set(ctx context.Context, key K, value V) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key K) error

	// Range iterates over [from, to) in encoded key order
	Range(ctx context.Context, from, to K) iter.Seq2[K, V]

	// All iterates over every key in encoded key order
	All(ctx context.Context) iter.Seq2[K, V]
}

// Backend is the byte-oriented store underneath a KeyValueStore.
// Get returns ErrKeyNotFound for missing keys. A nil upper bound in Range
// means unbounded.
type Backend interface {
	Store
	Set(k, v []byte) error
	Get(k []byte) ([]byte, error)
	Delete(k []byte) error
	Range(lower, upper []byte) iter.Seq2[[]byte, []byte]
	All() iter.Seq2[[]byte, []byte]
}
