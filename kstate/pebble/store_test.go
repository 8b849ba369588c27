package pebble

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/birdayz/kgrad/kserde"
	"github.com/birdayz/kgrad/kstate"
)

func TestBackend(t *testing.T) {
	dir := t.TempDir()

	b, err := Open(dir, "params")
	assert.NoError(t, err)
	assert.Equal(t, "params", b.Name())
	assert.True(t, b.Persistent())

	assert.NoError(t, b.Set([]byte("b"), []byte("2")))
	assert.NoError(t, b.Set([]byte("a"), []byte("1")))

	v, err := b.Get([]byte("a"))
	assert.NoError(t, err)
	assert.Equal(t, "1", string(v))

	_, err = b.Get([]byte("zz"))
	assert.IsError(t, err, kstate.ErrKeyNotFound)

	var keys []string
	for k := range b.All() {
		keys = append(keys, string(k))
	}
	assert.Equal(t, []string{"a", "b"}, keys)

	assert.NoError(t, b.Set([]byte("a"), nil))
	_, err = b.Get([]byte("a"))
	assert.IsError(t, err, kstate.ErrKeyNotFound)

	assert.NoError(t, b.Close())
}

func TestBackendEmptyDir(t *testing.T) {
	_, err := Open("", "params")
	assert.Error(t, err)
}

func TestBuilderPersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewKeyValueStoreBuilder[string, float64]("params", dir).
		WithSerdes(kserde.String, kserde.Float64).
		WithSync(true).
		Build()
	assert.NoError(t, err)
	assert.NoError(t, s.Set(ctx, "l0.n0.w0", 0.125))
	assert.NoError(t, s.Set(ctx, "l0.n0.b", -2))
	assert.NoError(t, s.Close())

	s, err = NewKeyValueStoreBuilder[string, float64]("params", dir).
		WithSerdes(kserde.String, kserde.Float64).
		Build()
	assert.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, "l0.n0.w0")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.125, v)

	var keys []string
	for k := range s.Range(ctx, "l0.n0.a", "l0.n0.c") {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"l0.n0.b"}, keys)
}

func TestBuilderRequiresSerdes(t *testing.T) {
	b := NewKeyValueStoreBuilder[string, float64]("params", t.TempDir())
	assert.Equal(t, "params", b.Name())
	_, err := b.Build()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "serdes not configured")
}
