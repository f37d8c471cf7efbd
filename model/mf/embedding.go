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
	"github.com/gorse-io/biasmf/base"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Embeddings holds the parameters of biased matrix factorization:
//
//	UserFactor: nUsers x nFactors
//	ItemFactor: nItems x nFactors
//	UserBias:   nUsers x 1
//	ItemBias:   nItems x 1
//
// Gradients and momentum accumulators share the same layout.
type Embeddings struct {
	UserFactor *mat.Dense
	ItemFactor *mat.Dense
	UserBias   *mat.Dense
	ItemBias   *mat.Dense
}

// Initialize creates a n x k matrix filled with uniform random values on
// (0, 6/k). The values depend only on n, k and seed.
func Initialize(n, k int, seed int64) *mat.Dense {
	rng := base.NewRandomGenerator(seed)
	return mat.NewDense(n, k, rng.UniformMatrix(n, k, 0, 6/float64(k)))
}

// NewEmbeddings initializes factors and biases. Each tensor draws from its own
// stream derived from seed, biases are embeddings of width 1.
func NewEmbeddings(nUsers, nItems, nFactors int, seed int64) *Embeddings {
	return &Embeddings{
		UserFactor: Initialize(nUsers, nFactors, seed),
		ItemFactor: Initialize(nItems, nFactors, seed+1),
		UserBias:   Initialize(nUsers, 1, seed+2),
		ItemBias:   Initialize(nItems, 1, seed+3),
	}
}

func (e *Embeddings) tensors() []*mat.Dense {
	return []*mat.Dense{e.UserFactor, e.ItemFactor, e.UserBias, e.ItemBias}
}

// Clone returns a deep copy.
func (e *Embeddings) Clone() *Embeddings {
	return &Embeddings{
		UserFactor: mat.DenseCopyOf(e.UserFactor),
		ItemFactor: mat.DenseCopyOf(e.ItemFactor),
		UserBias:   mat.DenseCopyOf(e.UserBias),
		ItemBias:   mat.DenseCopyOf(e.ItemBias),
	}
}

// NumFactors returns the width of factors.
func (e *Embeddings) NumFactors() int {
	_, k := e.UserFactor.Dims()
	return k
}

// CheckShape verifies that the embeddings score a nUsers x nItems matrix.
func (e *Embeddings) CheckShape(nUsers, nItems int) error {
	userRows, userCols := e.UserFactor.Dims()
	itemRows, itemCols := e.ItemFactor.Dims()
	userBiasRows, userBiasCols := e.UserBias.Dims()
	itemBiasRows, itemBiasCols := e.ItemBias.Dims()
	switch {
	case userRows != nUsers:
		return base.ShapeMismatchf("user factor has %d rows, want %d users", userRows, nUsers)
	case itemRows != nItems:
		return base.ShapeMismatchf("item factor has %d rows, want %d items", itemRows, nItems)
	case userCols != itemCols:
		return base.ShapeMismatchf("user factor has %d factors, item factor has %d", userCols, itemCols)
	case userBiasRows != nUsers || userBiasCols != 1:
		return base.ShapeMismatchf("user bias is %dx%d, want %dx1", userBiasRows, userBiasCols, nUsers)
	case itemBiasRows != nItems || itemBiasCols != 1:
		return base.ShapeMismatchf("item bias is %dx%d, want %dx1", itemBiasRows, itemBiasCols, nItems)
	}
	return nil
}

// checkLayout verifies that o has the same layout as e.
func (e *Embeddings) checkLayout(o *Embeddings) error {
	names := []string{"user factor", "item factor", "user bias", "item bias"}
	a, b := e.tensors(), o.tensors()
	for i := range a {
		ar, ac := a[i].Dims()
		br, bc := b[i].Dims()
		if ar != br || ac != bc {
			return base.ShapeMismatchf("%s is %dx%d, want %dx%d", names[i], br, bc, ar, ac)
		}
	}
	return nil
}

// predict returns b_u + b_i + <U[u], V[i]>.
func (e *Embeddings) predict(userIndex, itemIndex int) float64 {
	return e.UserBias.At(userIndex, 0) + e.ItemBias.At(itemIndex, 0) +
		floats.Dot(e.UserFactor.RawRowView(userIndex), e.ItemFactor.RawRowView(itemIndex))
}
