package knn

import (
	"fmt"

	"github.com/birdayz/kgrad/kvalue"
)

// SumSquaredError returns Σ (yout[i] - ygt[i])^2 as a differentiable node.
func SumSquaredError(ygt []float64, yout []*kvalue.Value) (*kvalue.Value, error) {
	if len(ygt) != len(yout) {
		return nil, fmt.Errorf("%w: %d targets for %d outputs", kvalue.ErrInvalidArgument, len(ygt), len(yout))
	}
	if len(ygt) == 0 {
		return nil, fmt.Errorf("%w: empty loss", kvalue.ErrInvalidArgument)
	}

	loss := yout[0].Sub(kvalue.Const(ygt[0])).Pow(2)
	for i := 1; i < len(yout); i++ {
		loss = loss.Add(yout[i].Sub(kvalue.Const(ygt[i])).Pow(2))
	}
	return loss, nil
}
