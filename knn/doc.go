// Package knn builds small fully connected networks on top of kvalue.
//
// Parameters are kvalue leaves, so a forward pass produces an ordinary
// computation graph and the gradient of any loss with respect to every weight
// is available after kvalue.Backward:
//
//	m := knn.MustNewMLP(3, []int{4, 4, 1}, knn.WithSource(knn.NewRandSource(42)))
//	out, _ := m.Forward(kvalue.Values(2, 3, -1))
//	loss, _ := knn.SumSquaredError([]float64{1}, out)
//	loss.Backward()
//
// Weight initialization is injected through WithSource or WithInitializer so
// construction is reproducible. knn contains no optimizer; updating
// parameters is left to the caller.
package knn
