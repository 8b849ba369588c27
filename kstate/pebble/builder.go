package pebble

import (
	"fmt"

	"github.com/birdayz/kgrad/kserde"
	"github.com/birdayz/kgrad/kstate"
)

// KeyValueStoreBuilder builds a Pebble-backed KeyValueStore.
//
// Example usage:
//
//	store, err := pebble.NewKeyValueStoreBuilder[string, float64]("params", "/tmp/state").
//	    WithSerdes(kserde.String, kserde.Float64).
//	    Build()
type KeyValueStoreBuilder[K comparable, V any] struct {
	name       string
	stateDir   string
	sync       bool
	keySerde   *kserde.Serde[K]
	valueSerde *kserde.Serde[V]
}

// NewKeyValueStoreBuilder creates a builder for the store name below
// stateDir. Serdes must be provided via WithSerdes.
func NewKeyValueStoreBuilder[K comparable, V any](name, stateDir string) *KeyValueStoreBuilder[K, V] {
	return &KeyValueStoreBuilder[K, V]{
		name:     name,
		stateDir: stateDir,
	}
}

// WithSerdes configures key and value encoding. Required before Build.
func (b *KeyValueStoreBuilder[K, V]) WithSerdes(keySerde kserde.Serde[K], valueSerde kserde.Serde[V]) *KeyValueStoreBuilder[K, V] {
	b.keySerde = &keySerde
	b.valueSerde = &valueSerde
	return b
}

// WithSync makes every write wait for the WAL to be synced.
func (b *KeyValueStoreBuilder[K, V]) WithSync(sync bool) *KeyValueStoreBuilder[K, V] {
	b.sync = sync
	return b
}

// Name returns the store name
func (b *KeyValueStoreBuilder[K, V]) Name() string {
	return b.name
}

// Build opens the database and returns the typed store.
func (b *KeyValueStoreBuilder[K, V]) Build() (kstate.KeyValueStore[K, V], error) {
	if b.keySerde == nil || b.valueSerde == nil {
		return nil, fmt.Errorf("serdes not configured for store %s (must call WithSerdes)", b.name)
	}

	backend, err := open(b.stateDir, b.name, b.sync)
	if err != nil {
		return nil, err
	}
	return kstate.NewKeyValueStore(backend, *b.keySerde, *b.valueSerde), nil
}
