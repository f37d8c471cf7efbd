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
	"github.com/gorse-io/biasmf/common/parallel"
	"github.com/gorse-io/biasmf/common/sparse"
	"github.com/gorse-io/biasmf/dataset"
	"github.com/juju/errors"
)

// PredictSparse scores every rating position of ds and packs the scores into a
// matrix of the same shape and support as ds.Matrix(). Only observed positions
// are computed, so the cost is O(ds.Count() * nFactors). Ratings are split into
// jobs chunks scored concurrently. Embeddings must not be modified meanwhile.
func PredictSparse(ctx context.Context, ds *dataset.Dataset, e *Embeddings, jobs int) (*sparse.CSR, error) {
	if err := e.CheckShape(ds.CountUsers(), ds.CountItems()); err != nil {
		return nil, errors.Trace(err)
	}
	users, items := ds.GetUsers(), ds.GetItems()
	scores := make([]float64, ds.Count())
	chunks := parallel.Split(base.RangeInt(ds.Count()), jobs)
	err := parallel.Parallel(ctx, len(chunks), jobs, func(_, chunkId int) error {
		for _, k := range chunks[chunkId] {
			scores[k] = e.predict(int(users[k]), int(items[k]))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	predictions, err := sparse.NewCSR(ds.CountUsers(), ds.CountItems(), users, items, scores)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return predictions, nil
}
