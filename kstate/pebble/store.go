// Package pebble implements kstate.Backend on cockroachdb/pebble.
package pebble

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"github.com/birdayz/kgrad/kstate"
)

type pebbleStore struct {
	name string
	db   *pebble.DB
	sync bool
}

// Open opens (or creates) the store name below stateDir.
func Open(stateDir, name string) (kstate.Backend, error) {
	return open(stateDir, name, false)
}

func open(stateDir, name string, sync bool) (*pebbleStore, error) {
	if stateDir == "" {
		return nil, fmt.Errorf("state dir for store %s must not be empty", name)
	}
	dir := filepath.Join(stateDir, name)
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dir, err)
	}
	return &pebbleStore{name: name, db: db, sync: sync}, nil
}

func (s *pebbleStore) Name() string {
	return s.name
}

func (s *pebbleStore) Persistent() bool {
	return true
}

func (s *pebbleStore) Flush(ctx context.Context) error {
	return s.db.Flush()
}

func (s *pebbleStore) Close() error {
	if err := s.db.Flush(); err != nil {
		return err
	}
	return s.db.Close()
}

func (s *pebbleStore) writeOptions() *pebble.WriteOptions {
	if s.sync {
		return pebble.Sync
	}
	return pebble.NoSync
}

func (s *pebbleStore) Set(k, v []byte) error {
	if v == nil {
		return s.Delete(k)
	}
	return s.db.Set(k, v, s.writeOptions())
}

func (s *pebbleStore) Get(k []byte) ([]byte, error) {
	v, closer, err := s.db.Get(k)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, kstate.ErrKeyNotFound
		}
		return nil, err
	}
	defer closer.Close()

	res := make([]byte, len(v))
	copy(res, v)
	return res, nil
}

func (s *pebbleStore) Delete(k []byte) error {
	return s.db.Delete(k, s.writeOptions())
}

func (s *pebbleStore) Range(lower, upper []byte) iter.Seq2[[]byte, []byte] {
	return func(yield func([]byte, []byte) bool) {
		it := s.db.NewIter(&pebble.IterOptions{
			LowerBound: lower,
			UpperBound: upper,
		})
		defer it.Close()

		for it.First(); it.Valid(); it.Next() {
			key := make([]byte, len(it.Key()))
			copy(key, it.Key())

			value := make([]byte, len(it.Value()))
			copy(value, it.Value())

			if !yield(key, value) {
				return
			}
		}
	}
}

func (s *pebbleStore) All() iter.Seq2[[]byte, []byte] {
	return s.Range(nil, nil)
}

var _ kstate.Backend = (*pebbleStore)(nil)
