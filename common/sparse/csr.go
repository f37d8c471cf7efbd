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

// Package sparse implements the compressed sparse row matrix used to hold
// observed ratings and the predictions made at the same positions.
package sparse

import (
	"sort"

	"github.com/gorse-io/biasmf/base"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	_ mat.Matrix         = (*CSR)(nil)
	_ mat.NonZeroDoer    = (*CSR)(nil)
	_ mat.RowNonZeroDoer = (*CSR)(nil)
)

// CSR is an immutable compressed sparse row matrix. Entries of row i are stored
// in indices[indptr[i]:indptr[i+1]] (column) and data[indptr[i]:indptr[i+1]]
// (value), sorted by column. Every stored entry belongs to the support, even if
// its value is zero.
type CSR struct {
	rows    int
	cols    int
	indptr  []int
	indices []int32
	data    []float64
}

// NewCSR builds a rows x cols matrix from coordinate triples. Entries sharing
// the same (row, col) position are summed, so the support is the set of
// distinct positions and NNZ counts each of them once. A summed value of zero
// stays in the support.
func NewCSR(rows, cols int, rowIndices, colIndices []int32, values []float64) (*CSR, error) {
	if rows < 0 || cols < 0 {
		return nil, base.ShapeMismatchf("negative dimensions %dx%d", rows, cols)
	}
	if len(rowIndices) != len(colIndices) || len(rowIndices) != len(values) {
		return nil, base.ShapeMismatchf("%d row indices, %d column indices and %d values",
			len(rowIndices), len(colIndices), len(values))
	}
	for k := range rowIndices {
		if rowIndices[k] < 0 || int(rowIndices[k]) >= rows || colIndices[k] < 0 || int(colIndices[k]) >= cols {
			return nil, base.ShapeMismatchf("entry (%d, %d) out of %dx%d matrix",
				rowIndices[k], colIndices[k], rows, cols)
		}
	}

	// bucket entries by row
	indptr := make([]int, rows+1)
	for _, i := range rowIndices {
		indptr[i+1]++
	}
	for i := 0; i < rows; i++ {
		indptr[i+1] += indptr[i]
	}
	offset := make([]int, rows)
	copy(offset, indptr[:rows])
	indices := make([]int32, len(values))
	data := make([]float64, len(values))
	for k, i := range rowIndices {
		indices[offset[i]] = colIndices[k]
		data[offset[i]] = values[k]
		offset[i]++
	}

	// sort each row by column and accumulate duplicates
	nnz := 0
	begin := 0
	for i := 0; i < rows; i++ {
		end := indptr[i+1]
		sort.Stable(&rowEntries{indices: indices[begin:end], data: data[begin:end]})
		rowStart := nnz
		for k := begin; k < end; k++ {
			if nnz > rowStart && indices[nnz-1] == indices[k] {
				data[nnz-1] += data[k]
				continue
			}
			indices[nnz] = indices[k]
			data[nnz] = data[k]
			nnz++
		}
		begin = end
		indptr[i+1] = nnz
	}
	return &CSR{
		rows:    rows,
		cols:    cols,
		indptr:  indptr,
		indices: indices[:nnz:nnz],
		data:    data[:nnz:nnz],
	}, nil
}

type rowEntries struct {
	indices []int32
	data    []float64
}

func (r *rowEntries) Len() int { return len(r.indices) }

func (r *rowEntries) Less(i, j int) bool { return r.indices[i] < r.indices[j] }

func (r *rowEntries) Swap(i, j int) {
	r.indices[i], r.indices[j] = r.indices[j], r.indices[i]
	r.data[i], r.data[j] = r.data[j], r.data[i]
}

// Dims returns the number of rows and columns.
func (m *CSR) Dims() (r, c int) {
	return m.rows, m.cols
}

// At returns the value at (i, j). Positions outside the support are zero.
func (m *CSR) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(mat.ErrIndexOutOfRange)
	}
	row := m.indices[m.indptr[i]:m.indptr[i+1]]
	k := sort.Search(len(row), func(k int) bool { return int(row[k]) >= j })
	if k < len(row) && int(row[k]) == j {
		return m.data[m.indptr[i]+k]
	}
	return 0
}

// T returns an implicit transpose.
func (m *CSR) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// NNZ returns the size of the support.
func (m *CSR) NNZ() int {
	return len(m.data)
}

// Values returns stored values in row-major support order. The slice must not
// be modified.
func (m *CSR) Values() []float64 {
	return m.data
}

// DoNonZero calls fn for each entry of the support in row-major order.
func (m *CSR) DoNonZero(fn func(i, j int, v float64)) {
	for i := 0; i < m.rows; i++ {
		m.DoRowNonZero(i, fn)
	}
}

// DoRowNonZero calls fn for each entry of the support in row i.
func (m *CSR) DoRowNonZero(i int, fn func(i, j int, v float64)) {
	for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
		fn(i, int(m.indices[k]), m.data[k])
	}
}

// ToDense materializes the matrix. Positions outside the support are zero.
func (m *CSR) ToDense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return &mat.Dense{}
	}
	dense := mat.NewDense(m.rows, m.cols, nil)
	m.DoNonZero(func(i, j int, v float64) {
		dense.Set(i, j, v)
	})
	return dense
}

// SameSupport checks whether two matrices have the same shape and store
// entries at exactly the same positions.
func (m *CSR) SameSupport(o *CSR) bool {
	if m.rows != o.rows || m.cols != o.cols || len(m.indices) != len(o.indices) {
		return false
	}
	for i := range m.indptr {
		if m.indptr[i] != o.indptr[i] {
			return false
		}
	}
	for k := range m.indices {
		if m.indices[k] != o.indices[k] {
			return false
		}
	}
	return true
}

// Sub returns m - o over the union of both supports.
func (m *CSR) Sub(o *CSR) (*CSR, error) {
	if m.rows != o.rows || m.cols != o.cols {
		return nil, base.ShapeMismatchf("subtract %dx%d matrix from %dx%d matrix", o.rows, o.cols, m.rows, m.cols)
	}
	if m.SameSupport(o) {
		data := make([]float64, len(m.data))
		for k := range data {
			data[k] = m.data[k] - o.data[k]
		}
		return &CSR{rows: m.rows, cols: m.cols, indptr: m.indptr, indices: m.indices, data: data}, nil
	}
	rowIndices := make([]int32, 0, m.NNZ()+o.NNZ())
	colIndices := make([]int32, 0, m.NNZ()+o.NNZ())
	values := make([]float64, 0, m.NNZ()+o.NNZ())
	m.DoNonZero(func(i, j int, v float64) {
		rowIndices = append(rowIndices, int32(i))
		colIndices = append(colIndices, int32(j))
		values = append(values, v)
	})
	o.DoNonZero(func(i, j int, v float64) {
		rowIndices = append(rowIndices, int32(i))
		colIndices = append(colIndices, int32(j))
		values = append(values, -v)
	})
	diff, err := NewCSR(m.rows, m.cols, rowIndices, colIndices, values)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return diff, nil
}
