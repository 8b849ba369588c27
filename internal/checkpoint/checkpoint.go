// Package checkpoint persists MLP parameters into a kstate backend and
// rebuilds networks from them.
//
// A checkpoint named n occupies the key n/meta (JSON metadata) and one
// kserde.ParamKey per parameter holding its float64 value.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"strings"

	"go.uber.org/multierr"

	"github.com/birdayz/kgrad/knn"
	"github.com/birdayz/kgrad/kserde"
	"github.com/birdayz/kgrad/kstate"
)

// Version is the metadata format written by Save.
const Version = 1

var (
	ErrNotFound = errors.New("checkpoint not found")
	ErrCorrupt  = errors.New("checkpoint corrupt")
)

// Metadata describes the network a checkpoint was taken from.
type Metadata struct {
	Version     int      `json:"version"`
	Nin         int      `json:"nin"`
	Nouts       []int    `json:"nouts"`
	Activations []string `json:"activations"`
	Count       int      `json:"count"`
}

func metaKey(name string) string {
	return name + "/meta"
}

type stores struct {
	backend kstate.Backend
	meta    kstate.KeyValueStore[string, Metadata]
	params  kstate.KeyValueStore[kserde.ParamKey, float64]
}

func open(backend kstate.Backend) stores {
	return stores{
		backend: backend,
		meta:    kstate.NewKeyValueStore(backend, kserde.String, kserde.JSON[Metadata]()),
		params:  kstate.NewKeyValueStore(backend, kserde.ParamKeys, kserde.Float64),
	}
}

// scanParams iterates the stored parameters of name in index order.
func (s stores) scanParams(name string, errp *error) iter.Seq2[kserde.ParamKey, float64] {
	lower, upper := kserde.ParamPrefix(name)
	return kstate.MapIter(s.backend.Range(lower, upper), kserde.ParamKeys.Deserializer, kserde.Float64.Deserializer, errp)
}

// Save writes the parameters of m as checkpoint name, replacing any
// previous checkpoint of that name.
func Save(ctx context.Context, backend kstate.Backend, name string, m *knn.MLP) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("invalid checkpoint name %q", name)
	}
	s := open(backend)

	if err := s.meta.Delete(ctx, metaKey(name)); err != nil {
		return err
	}
	if err := deleteParams(s, name); err != nil {
		return err
	}

	params := m.Parameters()
	for i, p := range params {
		if err := s.params.Set(ctx, kserde.ParamKey{Checkpoint: name, Index: i}, p.Data()); err != nil {
			return fmt.Errorf("save parameter %d: %w", i, err)
		}
	}

	sizes := m.Sizes()
	meta := Metadata{
		Version: Version,
		Nin:     sizes[0],
		Nouts:   sizes[1:],
		Count:   len(params),
	}
	for _, a := range m.Activations() {
		meta.Activations = append(meta.Activations, a.String())
	}
	// Metadata goes last, a checkpoint without it is not loadable.
	if err := s.meta.Set(ctx, metaKey(name), meta); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	return backend.Flush(ctx)
}

func deleteParams(s stores, name string) error {
	lower, upper := kserde.ParamPrefix(name)
	var stale [][]byte
	for k := range s.backend.Range(lower, upper) {
		stale = append(stale, k)
	}
	for _, k := range stale {
		if err := s.backend.Delete(k); err != nil {
			return fmt.Errorf("delete stale parameter %s: %w", k, err)
		}
	}
	return nil
}

// ReadMetadata returns the metadata of checkpoint name.
func ReadMetadata(ctx context.Context, backend kstate.Backend, name string) (Metadata, error) {
	meta, ok, err := open(backend).meta.Get(ctx, metaKey(name))
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %s: %w", ErrCorrupt, name, err)
	}
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return meta, nil
}

// Validate reports every inconsistency in meta at once.
func (meta Metadata) Validate() error {
	var err error
	if meta.Version != Version {
		err = multierr.Append(err, fmt.Errorf("unsupported version %d", meta.Version))
	}
	if meta.Nin <= 0 {
		err = multierr.Append(err, fmt.Errorf("nin must be positive, got %d", meta.Nin))
	}
	if len(meta.Nouts) == 0 {
		err = multierr.Append(err, fmt.Errorf("no layers"))
	}
	for i, n := range meta.Nouts {
		if n <= 0 {
			err = multierr.Append(err, fmt.Errorf("layer %d has width %d", i, n))
		}
	}
	if len(meta.Activations) != len(meta.Nouts) {
		err = multierr.Append(err, fmt.Errorf("%d activations for %d layers", len(meta.Activations), len(meta.Nouts)))
	}
	for i, a := range meta.Activations {
		if _, perr := knn.ParseActivation(a); perr != nil {
			err = multierr.Append(err, fmt.Errorf("layer %d: %w", i, perr))
		}
	}
	if err == nil {
		if want := knn.NumParameters(meta.Nin, meta.Nouts); meta.Count != want {
			err = fmt.Errorf("count %d does not match %d parameters of the layout", meta.Count, want)
		}
	}
	return err
}

type loadConfig struct {
	src  knn.Source
	opts []knn.Option
}

type LoadOption func(*loadConfig)

// WithSource sets the source used by structural changes after loading.
var WithSource = func(src knn.Source) LoadOption {
	return func(c *loadConfig) {
		c.src = src
	}
}

// WithNetworkOptions passes opts to knn.NewMLP. Initializer and activation
// options are overridden by the checkpoint.
var WithNetworkOptions = func(opts ...knn.Option) LoadOption {
	return func(c *loadConfig) {
		c.opts = append(c.opts, opts...)
	}
}

// Load rebuilds the network saved as checkpoint name.
func Load(ctx context.Context, backend kstate.Backend, name string, opts ...LoadOption) (*knn.MLP, error) {
	cfg := loadConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.src == nil {
		cfg.src = knn.NewRandSource(rand.Uint64())
	}

	meta, err := ReadMetadata(ctx, backend, name)
	if err != nil {
		return nil, err
	}
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, name, err)
	}

	values, err := readParams(open(backend), name, meta.Count)
	if err != nil {
		return nil, err
	}

	acts := make([]knn.Activation, len(meta.Activations))
	for i, a := range meta.Activations {
		acts[i], _ = knn.ParseActivation(a)
	}

	replay := knn.NewReplayInitializer(values)
	netOpts := append(append([]knn.Option(nil), cfg.opts...),
		knn.WithLayerActivations(acts...),
		knn.WithInitializer(replay),
	)
	m, err := knn.NewMLP(meta.Nin, meta.Nouts, netOpts...)
	if err != nil {
		return nil, fmt.Errorf("rebuild %s: %w", name, err)
	}
	if n := replay.Remaining(); n != 0 {
		return nil, fmt.Errorf("%w: %s: %d parameters left after rebuild", ErrCorrupt, name, n)
	}
	m.SetInitializer(knn.UniformInitializer(cfg.src))
	return m, nil
}

func readParams(s stores, name string, count int) ([]float64, error) {
	values := make([]float64, 0, count)
	var scanErr error
	for k, v := range s.scanParams(name, &scanErr) {
		if k.Checkpoint != name || k.Index != len(values) {
			return nil, fmt.Errorf("%w: %s: found parameter %d, want %d", ErrCorrupt, name, k.Index, len(values))
		}
		values = append(values, v)
	}
	if scanErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, name, scanErr)
	}
	if len(values) != count {
		return nil, fmt.Errorf("%w: %s: %d parameters stored, metadata says %d", ErrCorrupt, name, len(values), count)
	}
	return values, nil
}

// Delete removes checkpoint name. Deleting a missing checkpoint is not an
// error.
func Delete(ctx context.Context, backend kstate.Backend, name string) error {
	s := open(backend)
	if err := s.meta.Delete(ctx, metaKey(name)); err != nil {
		return err
	}
	if err := deleteParams(s, name); err != nil {
		return err
	}
	return backend.Flush(ctx)
}
