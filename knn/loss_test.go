package knn

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/birdayz/kgrad/kvalue"
)

func TestSumSquaredError(t *testing.T) {
	a, b := kvalue.New(0.5), kvalue.New(-1)
	loss, err := SumSquaredError([]float64{1, 1}, []*kvalue.Value{a, b})
	assert.NoError(t, err)
	assert.Equal(t, 0.25+4, loss.Data())

	loss.Backward()
	assert.Equal(t, 2*(0.5-1), a.Grad())
	assert.Equal(t, 2*(-1.0-1), b.Grad())
}

func TestSumSquaredErrorInvalid(t *testing.T) {
	_, err := SumSquaredError([]float64{1}, []*kvalue.Value{kvalue.New(1), kvalue.New(2)})
	assert.True(t, errors.Is(err, kvalue.ErrInvalidArgument))

	_, err = SumSquaredError(nil, nil)
	assert.True(t, errors.Is(err, kvalue.ErrInvalidArgument))
}

var (
	xs = [][]float64{
		{2, 3, -1},
		{3, -1, 0.5},
		{0.5, 1, 1},
		{1, 1, -1},
	}
	ys = [][]float64{{1}, {-1}, {-1}, {1}}
)

func TestForwardBatchMatchesSequential(t *testing.T) {
	m := MustNewMLP(3, []int{4, 4, 1}, WithSource(NewRandSource(9)), WithWorkers(3))

	outs, err := m.ForwardBatch(context.Background(), xs)
	assert.NoError(t, err)
	assert.Equal(t, len(xs), len(outs))

	for i, x := range xs {
		want, err := m.ForwardValues(x)
		assert.NoError(t, err)
		assert.Equal(t, want[0].Data(), outs[i][0].Data())
	}
}

func TestForwardBatchError(t *testing.T) {
	m := MustNewMLP(3, []int{1}, WithSource(NewRandSource(9)))
	_, err := m.ForwardBatch(context.Background(), [][]float64{{1, 2, 3}, {1}})
	assert.True(t, errors.Is(err, kvalue.ErrInvalidArgument))
	assert.Contains(t, err.Error(), "sample 1")
}

func TestForwardBatchCanceled(t *testing.T) {
	m := MustNewMLP(3, []int{1}, WithSource(NewRandSource(9)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.ForwardBatch(ctx, xs)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBatchLoss(t *testing.T) {
	m := MustNewMLP(3, []int{4, 4, 1}, WithSource(NewRandSource(11)))

	loss, err := m.BatchLoss(context.Background(), xs, ys)
	assert.NoError(t, err)

	want := 0.0
	for i, x := range xs {
		out, err := m.ForwardValues(x)
		assert.NoError(t, err)
		d := out[0].Data() - ys[i][0]
		want += d * d
	}
	assert.True(t, math.Abs(want-loss.Data()) < 1e-12)

	loss.Backward()
	nonZero := 0
	for _, p := range m.Parameters() {
		if p.Grad() != 0 {
			nonZero++
		}
	}
	assert.True(t, nonZero > 0)
}

func TestBatchLossInvalid(t *testing.T) {
	m := MustNewMLP(3, []int{1}, WithSource(NewRandSource(9)))

	_, err := m.BatchLoss(context.Background(), xs, ys[:2])
	assert.True(t, errors.Is(err, kvalue.ErrInvalidArgument))

	_, err = m.BatchLoss(context.Background(), nil, nil)
	assert.True(t, errors.Is(err, kvalue.ErrInvalidArgument))

	_, err = m.BatchLoss(context.Background(), [][]float64{{1, 2, 3}}, [][]float64{{1, 2}})
	assert.True(t, errors.Is(err, kvalue.ErrInvalidArgument))
}
