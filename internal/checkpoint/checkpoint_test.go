package checkpoint

import (
	"context"
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/birdayz/kgrad/knn"
	"github.com/birdayz/kgrad/kserde"
	"github.com/birdayz/kgrad/kstate"
	"github.com/birdayz/kgrad/kstate/pebble"
)

var sample = []float64{2, 3, -1}

func paramKey(t *testing.T, name string, i int) []byte {
	t.Helper()
	k, err := kserde.ParamKeys.Serializer(kserde.ParamKey{Checkpoint: name, Index: i})
	assert.NoError(t, err)
	return k
}

func newNet(t *testing.T) *knn.MLP {
	t.Helper()
	m, err := knn.NewMLP(3, []int{4, 4, 1}, knn.WithSource(knn.NewRandSource(3)),
		knn.WithActivation(knn.ReLU), knn.WithOutputActivation(knn.Linear))
	assert.NoError(t, err)
	return m
}

func assertSameNetwork(t *testing.T, want, got *knn.MLP) {
	t.Helper()
	assert.Equal(t, want.Sizes(), got.Sizes())
	assert.Equal(t, want.Activations(), got.Activations())

	wp, gp := want.Parameters(), got.Parameters()
	assert.Equal(t, len(wp), len(gp))
	for i := range wp {
		assert.Equal(t, wp[i].Data(), gp[i].Data())
	}

	wo, err := want.ForwardValues(sample)
	assert.NoError(t, err)
	goo, err := got.ForwardValues(sample)
	assert.NoError(t, err)
	assert.Equal(t, wo[0].Data(), goo[0].Data())
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	backend := kstate.NewInMemoryBackend("checkpoints")
	m := newNet(t)

	assert.NoError(t, Save(ctx, backend, "net", m))

	meta, err := ReadMetadata(ctx, backend, "net")
	assert.NoError(t, err)
	assert.Equal(t, Metadata{
		Version:     Version,
		Nin:         3,
		Nouts:       []int{4, 4, 1},
		Activations: []string{"relu", "relu", "linear"},
		Count:       41,
	}, meta)

	loaded, err := Load(ctx, backend, "net", WithSource(knn.NewRandSource(1)))
	assert.NoError(t, err)
	assertSameNetwork(t, m, loaded)

	// Loaded parameters are fresh leaves.
	for _, p := range loaded.Parameters() {
		assert.Equal(t, 0.0, p.Grad())
	}

	// Structural changes after loading draw from the new source, not NaN.
	assert.NoError(t, loaded.AddNeuron(0))
	for _, p := range loaded.Parameters() {
		assert.False(t, math.IsNaN(p.Data()))
	}
}

func TestSaveReplacesSmallerNetwork(t *testing.T) {
	ctx := context.Background()
	backend := kstate.NewInMemoryBackend("checkpoints")

	assert.NoError(t, Save(ctx, backend, "net", newNet(t)))

	small := knn.MustNewMLP(1, []int{1}, knn.WithSource(knn.NewRandSource(2)))
	assert.NoError(t, Save(ctx, backend, "net", small))

	loaded, err := Load(ctx, backend, "net")
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 1}, loaded.Sizes())

	want, err := small.ForwardValues([]float64{0.5})
	assert.NoError(t, err)
	got, err := loaded.ForwardValues([]float64{0.5})
	assert.NoError(t, err)
	assert.Equal(t, want[0].Data(), got[0].Data())
}

func TestCheckpointsAreIndependent(t *testing.T) {
	ctx := context.Background()
	backend := kstate.NewInMemoryBackend("checkpoints")
	a := newNet(t)
	b := knn.MustNewMLP(3, []int{4, 4, 1}, knn.WithSource(knn.NewRandSource(99)),
		knn.WithActivation(knn.ReLU), knn.WithOutputActivation(knn.Linear))

	assert.NoError(t, Save(ctx, backend, "a", a))
	assert.NoError(t, Save(ctx, backend, "b", b))
	assert.NoError(t, Delete(ctx, backend, "b"))

	_, err := Load(ctx, backend, "b")
	assert.IsError(t, err, ErrNotFound)

	loaded, err := Load(ctx, backend, "a")
	assert.NoError(t, err)
	assertSameNetwork(t, a, loaded)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(context.Background(), kstate.NewInMemoryBackend("checkpoints"), "net")
	assert.IsError(t, err, ErrNotFound)
}

func TestLoadCorrupt(t *testing.T) {
	ctx := context.Background()

	t.Run("missing parameter", func(t *testing.T) {
		backend := kstate.NewInMemoryBackend("checkpoints")
		assert.NoError(t, Save(ctx, backend, "net", newNet(t)))
		assert.NoError(t, backend.Delete(paramKey(t, "net", 7)))

		_, err := Load(ctx, backend, "net")
		assert.IsError(t, err, ErrCorrupt)
		assert.Contains(t, err.Error(), "found parameter 8, want 7")
	})

	t.Run("truncated", func(t *testing.T) {
		backend := kstate.NewInMemoryBackend("checkpoints")
		assert.NoError(t, Save(ctx, backend, "net", newNet(t)))
		assert.NoError(t, backend.Delete(paramKey(t, "net", 40)))

		_, err := Load(ctx, backend, "net")
		assert.IsError(t, err, ErrCorrupt)
		assert.Contains(t, err.Error(), "40 parameters stored")
	})

	t.Run("invalid metadata", func(t *testing.T) {
		backend := kstate.NewInMemoryBackend("checkpoints")
		metas := kstate.NewKeyValueStore(backend, kserde.String, kserde.JSON[Metadata]())
		assert.NoError(t, metas.Set(ctx, metaKey("net"), Metadata{
			Version:     Version,
			Nin:         0,
			Nouts:       []int{2, -1},
			Activations: []string{"sigmoid"},
		}))

		_, err := Load(ctx, backend, "net")
		assert.IsError(t, err, ErrCorrupt)
		msg := err.Error()
		assert.Contains(t, msg, "nin must be positive")
		assert.Contains(t, msg, "layer 1 has width -1")
		assert.Contains(t, msg, "1 activations for 2 layers")
		assert.Contains(t, msg, "layer 0")
	})

	t.Run("undecodable metadata", func(t *testing.T) {
		backend := kstate.NewInMemoryBackend("checkpoints")
		assert.NoError(t, backend.Set([]byte(metaKey("net")), []byte("{")))
		_, err := ReadMetadata(ctx, backend, "net")
		assert.IsError(t, err, ErrCorrupt)
	})
}

func TestMetadataValidateCount(t *testing.T) {
	meta := Metadata{Version: Version, Nin: 2, Nouts: []int{1}, Activations: []string{"tanh"}, Count: 2}
	err := meta.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not match 3 parameters")

	meta.Count = 3
	assert.NoError(t, meta.Validate())

	meta.Version = 7
	assert.Contains(t, meta.Validate().Error(), "unsupported version 7")
}

func TestSaveInvalidName(t *testing.T) {
	for _, name := range []string{"", "a/b"} {
		assert.Error(t, Save(context.Background(), kstate.NewInMemoryBackend("c"), name, newNet(t)))
	}
}

func TestLoadUndecodableParameter(t *testing.T) {
	ctx := context.Background()
	backend := kstate.NewInMemoryBackend("checkpoints")
	assert.NoError(t, Save(ctx, backend, "net", newNet(t)))
	assert.NoError(t, backend.Set(paramKey(t, "net", 3), []byte{1, 2}))

	_, err := Load(ctx, backend, "net")
	assert.IsError(t, err, ErrCorrupt)
	assert.Contains(t, err.Error(), "float64 needs exactly 8 bytes")
}

func TestPebbleRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := newNet(t)

	backend, err := pebble.Open(dir, "checkpoints")
	assert.NoError(t, err)
	assert.NoError(t, Save(ctx, backend, "net", m))
	assert.NoError(t, backend.Close())

	backend, err = pebble.Open(dir, "checkpoints")
	assert.NoError(t, err)
	defer backend.Close()

	loaded, err := Load(ctx, backend, "net", WithNetworkOptions(knn.WithWorkers(2)))
	assert.NoError(t, err)
	assertSameNetwork(t, m, loaded)
}
