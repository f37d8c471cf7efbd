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
	"github.com/gorse-io/biasmf/dataset"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/floats"
)

// Cost returns the mean squared error between ds.Matrix() and the predictions
// at the same positions:
//
//	cost = sum_{(u,i) in support} (P[u,i] - Y[u,i])^2 / N
//
// N is the size of the support of ds itself, so a training set and a
// validation set are each averaged over their own positions.
func Cost(ctx context.Context, ds *dataset.Dataset, e *Embeddings, jobs int) (float64, error) {
	if err := e.CheckShape(ds.CountUsers(), ds.CountItems()); err != nil {
		return 0, errors.Trace(err)
	}
	y, err := ds.Matrix()
	if err != nil {
		return 0, errors.Trace(err)
	}
	n := y.NNZ()
	if n == 0 {
		return 0, errors.Annotate(base.ErrEmptySupport, "cost")
	}
	p, err := PredictSparse(ctx, ds, e, jobs)
	if err != nil {
		return 0, errors.Trace(err)
	}
	residual, err := y.Sub(p)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return floats.Dot(residual.Values(), residual.Values()) / float64(n), nil
}
