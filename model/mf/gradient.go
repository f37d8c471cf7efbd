// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mf

import (
	"context"

	"github.com/gorse-io/biasmf/base"
	"github.com/gorse-io/biasmf/common/sparse"
	"github.com/gorse-io/biasmf/dataset"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// ComputeGradients returns gradients of the L2 regularized mean squared error
// with respect to each parameter tensor. Let delta = Y - P be the residual with
// zeros at unobserved positions and N the size of the support of y:
//
//	dU   = -2 * delta * V / N + 2 * reg * U / N
//	dV   = -2 * delta^T * U / N + 2 * reg * V / N
//	db_u = -2 * rowsum(delta) / N
//	db_i = -2 * colsum(delta) / N
//
// Biases are not regularized. The gradients match Cost exactly when every
// (user, item) pair appears once; duplicates are summed in both Y and P.
// Unlike PredictSparse, the residual is
// materialized as a dense nUsers x nItems matrix, which dominates the memory
// and time of a training step.
func ComputeGradients(ctx context.Context, ds *dataset.Dataset, y *sparse.CSR, e *Embeddings, reg float64, jobs int) (*Embeddings, error) {
	nUsers, nItems := ds.CountUsers(), ds.CountItems()
	if err := e.CheckShape(nUsers, nItems); err != nil {
		return nil, errors.Trace(err)
	}
	if rows, cols := y.Dims(); rows != nUsers || cols != nItems {
		return nil, base.ShapeMismatchf("observations are %dx%d, want %dx%d", rows, cols, nUsers, nItems)
	}
	n := float64(y.NNZ())
	if n == 0 {
		return nil, errors.Annotate(base.ErrEmptySupport, "gradients")
	}
	p, err := PredictSparse(ctx, ds, e, jobs)
	if err != nil {
		return nil, errors.Trace(err)
	}
	residual, err := y.Sub(p)
	if err != nil {
		return nil, errors.Trace(err)
	}
	delta := residual.ToDense()

	nFactors := e.NumFactors()
	grads := &Embeddings{
		UserFactor: mat.NewDense(nUsers, nFactors, nil),
		ItemFactor: mat.NewDense(nItems, nFactors, nil),
		UserBias:   mat.NewDense(nUsers, 1, nil),
		ItemBias:   mat.NewDense(nItems, 1, nil),
	}
	var penalty mat.Dense
	// user factor
	grads.UserFactor.Mul(delta, e.ItemFactor)
	grads.UserFactor.Scale(-2/n, grads.UserFactor)
	penalty.Scale(2*reg/n, e.UserFactor)
	grads.UserFactor.Add(grads.UserFactor, &penalty)
	penalty.Reset()
	// item factor
	grads.ItemFactor.Mul(delta.T(), e.UserFactor)
	grads.ItemFactor.Scale(-2/n, grads.ItemFactor)
	penalty.Scale(2*reg/n, e.ItemFactor)
	grads.ItemFactor.Add(grads.ItemFactor, &penalty)
	// biases
	grads.UserBias.Mul(delta, ones(nItems))
	grads.UserBias.Scale(-2/n, grads.UserBias)
	grads.ItemBias.Mul(delta.T(), ones(nUsers))
	grads.ItemBias.Scale(-2/n, grads.ItemBias)
	return grads, nil
}

// ones returns a n x 1 matrix of ones.
func ones(n int) *mat.Dense {
	data := make([]float64, n)
	for i := range data {
		data[i] = 1
	}
	return mat.NewDense(n, 1, data)
}
