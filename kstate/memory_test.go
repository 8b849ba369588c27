package kstate

import (
	"context"
	"iter"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/birdayz/kgrad/kserde"
)

func collect[K, V any](seq iter.Seq2[K, V]) ([]K, []V) {
	var ks []K
	var vs []V
	for k, v := range seq {
		ks = append(ks, k)
		vs = append(vs, v)
	}
	return ks, vs
}

func TestInMemoryBackend(t *testing.T) {
	b := NewInMemoryBackend("params")
	assert.Equal(t, "params", b.Name())
	assert.False(t, b.Persistent())

	assert.NoError(t, b.Set([]byte("b"), []byte("2")))
	assert.NoError(t, b.Set([]byte("a"), []byte("1")))
	assert.NoError(t, b.Set([]byte("c"), []byte("3")))
	assert.NoError(t, b.Set([]byte("b"), []byte("22")))

	v, err := b.Get([]byte("b"))
	assert.NoError(t, err)
	assert.Equal(t, "22", string(v))

	_, err = b.Get([]byte("x"))
	assert.IsError(t, err, ErrKeyNotFound)

	ks, _ := collect(b.All())
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, ks)

	ks, _ = collect(b.Range([]byte("b"), []byte("c")))
	assert.Equal(t, [][]byte{[]byte("b")}, ks)

	assert.NoError(t, b.Delete([]byte("a")))
	assert.NoError(t, b.Delete([]byte("a")))
	assert.NoError(t, b.Set([]byte("c"), nil))
	ks, _ = collect(b.All())
	assert.Equal(t, [][]byte{[]byte("b")}, ks)

	assert.NoError(t, b.Flush(context.Background()))
	assert.NoError(t, b.Close())
}

func TestInMemoryBackendReturnsCopies(t *testing.T) {
	b := NewInMemoryBackend("s")
	k, v := []byte("k"), []byte("v")
	assert.NoError(t, b.Set(k, v))
	v[0] = 'x'

	got, err := b.Get(k)
	assert.NoError(t, err)
	assert.Equal(t, "v", string(got))

	got[0] = 'y'
	again, err := b.Get(k)
	assert.NoError(t, err)
	assert.Equal(t, "v", string(again))
}

func TestInMemoryBackendWriteDuringIteration(t *testing.T) {
	b := NewInMemoryBackend("s")
	assert.NoError(t, b.Set([]byte("a"), []byte("1")))
	assert.NoError(t, b.Set([]byte("b"), []byte("2")))

	n := 0
	for k := range b.All() {
		assert.NoError(t, b.Delete(k))
		n++
	}
	assert.Equal(t, 2, n)
	ks, _ := collect(b.All())
	assert.Equal(t, 0, len(ks))
}

func TestKeyValueStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryKeyValueStore("params", kserde.String, kserde.Float64)

	_, ok, err := s.Get(ctx, "l0.n0.b")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Set(ctx, "l0.n0.w0", 0.5))
	assert.NoError(t, s.Set(ctx, "l0.n0.b", -0.25))
	assert.NoError(t, s.Set(ctx, "l1.n0.w0", 1))

	v, ok, err := s.Get(ctx, "l0.n0.b")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, -0.25, v)

	ks, vs := collect(s.All(ctx))
	assert.Equal(t, []string{"l0.n0.b", "l0.n0.w0", "l1.n0.w0"}, ks)
	assert.Equal(t, []float64{-0.25, 0.5, 1}, vs)

	ks, _ = collect(s.Range(ctx, "l0.", "l1."))
	assert.Equal(t, []string{"l0.n0.b", "l0.n0.w0"}, ks)

	assert.NoError(t, s.Delete(ctx, "l0.n0.b"))
	_, ok, err = s.Get(ctx, "l0.n0.b")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyValueStoreDecodeError(t *testing.T) {
	ctx := context.Background()
	backend := NewInMemoryBackend("s")
	assert.NoError(t, backend.Set([]byte("bad"), []byte{1, 2, 3}))

	s := NewKeyValueStore(backend, kserde.String, kserde.Float64)
	_, _, err := s.Get(ctx, "bad")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "decode value")

	// Iteration stops at the undecodable entry.
	ks, _ := collect(s.All(ctx))
	assert.Equal(t, 0, len(ks))
}

func TestMapIterReportsDecodeError(t *testing.T) {
	b := NewInMemoryBackend("s")
	assert.NoError(t, b.Set([]byte("a"), []byte{0, 0, 0, 0, 0, 0, 0, 0}))
	assert.NoError(t, b.Set([]byte("b"), []byte{1}))
	assert.NoError(t, b.Set([]byte("c"), []byte{0, 0, 0, 0, 0, 0, 0, 0}))

	var err error
	ks, vs := collect(MapIter(b.All(), kserde.String.Deserializer, kserde.Float64.Deserializer, &err))
	assert.Equal(t, []string{"a"}, ks)
	assert.Equal(t, []float64{0}, vs)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `decode value of "b"`)
}
