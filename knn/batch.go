package knn

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/birdayz/kgrad/kvalue"
)

// ForwardBatch runs Forward for every sample. Samples are evaluated
// concurrently, at most WithWorkers at a time. Each sample gets its own graph
// over the shared parameters; no gradient is touched.
func (m *MLP) ForwardBatch(ctx context.Context, xs [][]float64) ([][]*kvalue.Value, error) {
	outs := make([][]*kvalue.Value, len(xs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, x := range xs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := m.ForwardValues(x)
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			outs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m.log.Debug("Evaluated batch", "samples", len(xs), "workers", m.workers)
	return outs, nil
}

// BatchLoss sums SumSquaredError over all samples. ys[i] holds the targets
// for xs[i].
func (m *MLP) BatchLoss(ctx context.Context, xs, ys [][]float64) (*kvalue.Value, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d samples for %d targets", kvalue.ErrInvalidArgument, len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: empty batch", kvalue.ErrInvalidArgument)
	}

	outs, err := m.ForwardBatch(ctx, xs)
	if err != nil {
		return nil, err
	}

	var total *kvalue.Value
	for i, out := range outs {
		loss, err := SumSquaredError(ys[i], out)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		if total == nil {
			total = loss
			continue
		}
		total = total.Add(loss)
	}
	return total, nil
}
