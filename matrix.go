// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gsla

import "sort"

type matEntry[T Numeric] struct {
	col int
	val T
}

// Matrix is an M x N indexed grid sharing the fill-value contract of
// Vector. Internally it owns the same kind of format-set/validity-bitmap
// storage manager as Vector, generalised to the matrix format ring
// (spec.md §3, §4.2): LIL <-> DOK <-> COO <-> CSR <-> CSC, plus three
// host/device mirror pairs.
type Matrix[T Numeric] struct {
	rows, cols int
	fill       T
	dup        *OpBinary[T, T, T]

	valid bitmap
	graph *formatGraph

	lil []map[int]T // per-row sparse map; kept as a map for O(1) append+overwrite

	dok map[[2]int]T

	cooRow, cooCol []int
	cooVal         []T

	csrIndptr  []int
	csrIndices []int
	csrVal     []T

	cscIndptr  []int
	cscIndices []int
	cscVal     []T

	accCooRow, accCooCol []int
	accCooVal            []T
	accCsrIndptr         []int
	accCsrIndices        []int
	accCsrVal            []T
	accCscIndptr         []int
	accCscIndices        []int
	accCscVal            []T
}

func NewMatrix[T Numeric](rows, cols int) *Matrix[T] {
	return &Matrix[T]{rows: rows, cols: cols, graph: matrixGraph()}
}

func (m *Matrix[T]) Rows() int { return m.rows }
func (m *Matrix[T]) Cols() int { return m.cols }

func (m *Matrix[T]) SetFill(fill T) { m.fill = fill }
func (m *Matrix[T]) Fill() T        { return m.fill }

func (m *Matrix[T]) SetDupReducer(op OpBinary[T, T, T]) { m.dup = &op }

func (m *Matrix[T]) resolveDup(prev, next T) T {
	if m.dup != nil {
		return m.dup.Fn(prev, next)
	}
	return next
}

func (m *Matrix[T]) Clear() {
	m.valid.clearAll()
	m.lil = nil
	m.dok = nil
	m.cooRow, m.cooCol, m.cooVal = nil, nil, nil
	m.csrIndptr, m.csrIndices, m.csrVal = nil, nil, nil
	m.cscIndptr, m.cscIndices, m.cscVal = nil, nil, nil
	m.accCooRow, m.accCooCol, m.accCooVal = nil, nil, nil
	m.accCsrIndptr, m.accCsrIndices, m.accCsrVal = nil, nil, nil
	m.accCscIndptr, m.accCscIndices, m.accCscVal = nil, nil, nil
}

func (m *Matrix[T]) Get(i, j int) T {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return m.fill
	}
	switch {
	case m.valid.has(int(MCpuLil)):
		if m.lil != nil && i < len(m.lil) {
			if v, ok := m.lil[i][j]; ok {
				return v
			}
		}
	case m.valid.has(int(MCpuDok)):
		if v, ok := m.dok[[2]int{i, j}]; ok {
			return v
		}
	case m.valid.has(int(MCpuCsr)):
		if v, ok := csrLookup(m.csrIndptr, m.csrIndices, m.csrVal, i, j); ok {
			return v
		}
	case m.valid.has(int(MCpuCsc)):
		if v, ok := cscLookup(m.cscIndptr, m.cscIndices, m.cscVal, i, j); ok {
			return v
		}
	case m.valid.has(int(MCpuCoo)):
		if v, ok := cooLookup(m.cooRow, m.cooCol, m.cooVal, i, j); ok {
			return v
		}
	case m.valid.has(int(MAccCsr)):
		if v, ok := csrLookup(m.accCsrIndptr, m.accCsrIndices, m.accCsrVal, i, j); ok {
			return v
		}
	case m.valid.has(int(MAccCoo)):
		if v, ok := cooLookup(m.accCooRow, m.accCooCol, m.accCooVal, i, j); ok {
			return v
		}
	}
	return m.fill
}

func csrLookup[T Numeric](indptr, indices []int, val []T, i, j int) (T, bool) {
	var zero T
	if i+1 >= len(indptr) {
		return zero, false
	}
	start, end := indptr[i], indptr[i+1]
	for k := start; k < end; k++ {
		if indices[k] == j {
			return val[k], true
		}
	}
	return zero, false
}

func cscLookup[T Numeric](indptr, indices []int, val []T, i, j int) (T, bool) {
	var zero T
	if j+1 >= len(indptr) {
		return zero, false
	}
	start, end := indptr[j], indptr[j+1]
	for k := start; k < end; k++ {
		if indices[k] == i {
			return val[k], true
		}
	}
	return zero, false
}

func cooLookup[T Numeric](rowIdx, colIdx []int, val []T, i, j int) (T, bool) {
	var zero T
	for k := range rowIdx {
		if rowIdx[k] == i && colIdx[k] == j {
			return val[k], true
		}
	}
	return zero, false
}

// Set appends (i,j)->val to the LIL decoration, invalidating every other
// format (spec.md §3 invariants).
func (m *Matrix[T]) Set(i, j int, val T) {
	m.ValidateRW(MCpuLil)
	if m.lil == nil {
		m.lil = make([]map[int]T, m.rows)
	}
	if m.lil[i] == nil {
		m.lil[i] = make(map[int]T)
	}
	if prev, ok := m.lil[i][j]; ok {
		m.lil[i][j] = m.resolveDup(prev, val)
	} else {
		m.lil[i][j] = val
	}
}

// Build bulk-constructs the matrix from parallel row/col/value arrays,
// short-circuiting to a direct COO construction when the (row,col) keys
// arrive already sorted and unique, exactly like Vector.Build.
func (m *Matrix[T]) Build(rowIdx, colIdx []int, values []T) Status {
	if len(rowIdx) != len(colIdx) || len(rowIdx) != len(values) {
		return InvalidArgument
	}
	m.Clear()
	if len(rowIdx) == 0 {
		return Ok
	}
	if isSortedUniquePairs(rowIdx, colIdx) {
		m.cooRow = append([]int(nil), rowIdx...)
		m.cooCol = append([]int(nil), colIdx...)
		m.cooVal = append([]T(nil), values...)
		m.valid = m.valid.only(int(MCpuCoo))
		return Ok
	}

	type key struct{ r, c int }
	agg := make(map[key]T, len(rowIdx))
	var order []key
	for i := range rowIdx {
		k := key{rowIdx[i], colIdx[i]}
		if prev, ok := agg[k]; ok {
			agg[k] = m.resolveDup(prev, values[i])
		} else {
			agg[k] = values[i]
			order = append(order, k)
		}
	}
	sort.Slice(order, func(a, b int) bool {
		if order[a].r != order[b].r {
			return order[a].r < order[b].r
		}
		return order[a].c < order[b].c
	})
	m.cooRow = make([]int, len(order))
	m.cooCol = make([]int, len(order))
	m.cooVal = make([]T, len(order))
	for i, k := range order {
		m.cooRow[i], m.cooCol[i], m.cooVal[i] = k.r, k.c, agg[k]
	}
	m.valid = m.valid.only(int(MCpuCoo))
	return Ok
}

func isSortedUniquePairs(rowIdx, colIdx []int) bool {
	for i := 1; i < len(rowIdx); i++ {
		if rowIdx[i] < rowIdx[i-1] {
			return false
		}
		if rowIdx[i] == rowIdx[i-1] && colIdx[i] <= colIdx[i-1] {
			return false
		}
	}
	return true
}

// Read performs a bulk read into parallel row/col/value arrays from the
// COO representation, upgrading (not invalidating) whichever format is
// currently authoritative.
func (m *Matrix[T]) Read() ([]int, []int, []T) {
	m.ensureCooReadable()
	return append([]int(nil), m.cooRow...), append([]int(nil), m.cooCol...), append([]T(nil), m.cooVal...)
}

func (m *Matrix[T]) ensureCooReadable() {
	if m.valid.has(int(MCpuCoo)) {
		return
	}
	r, c, v := m.extract(firstValidMatFormat(m.valid))
	m.cooRow, m.cooCol, m.cooVal = r, c, v
	m.valid.set(int(MCpuCoo))
}

func firstValidMatFormat(valid bitmap) MatFormat {
	f, ok := valid.firstSet(int(matFormatCount))
	if !ok {
		return MCpuCoo
	}
	return MatFormat(f)
}

// ValidateRW / ValidateRWD / ValidateWD / ValidateCtor follow the same
// four-verb protocol as Vector (spec.md §4.2).
func (m *Matrix[T]) ValidateRW(f MatFormat) {
	m.materialize(f)
	m.valid = m.valid.only(int(f))
}

func (m *Matrix[T]) ValidateRWD(f MatFormat) {
	m.materialize(f)
	m.valid.set(int(f))
}

func (m *Matrix[T]) ValidateWD(f MatFormat) {
	m.allocate(f)
	m.valid = m.valid.only(int(f))
}

func (m *Matrix[T]) ValidateCtor(f MatFormat) {
	m.allocate(f)
}

func (m *Matrix[T]) SetFormat(f MatFormat) {
	if m.valid.has(int(f)) {
		return
	}
	m.materialize(f)
	m.valid.set(int(f))
}

func (m *Matrix[T]) allocate(f MatFormat) {
	switch f {
	case MCpuLil:
		if m.lil == nil {
			m.lil = make([]map[int]T, m.rows)
		}
	case MCpuDok:
		if m.dok == nil {
			m.dok = make(map[[2]int]T)
		}
	case MCpuCoo, MCpuCsr, MCpuCsc, MAccCoo, MAccCsr, MAccCsc:
		// nil slices are a valid empty representation.
	}
}

func (m *Matrix[T]) materialize(f MatFormat) {
	if m.valid.has(int(f)) {
		return
	}
	m.allocate(f)
	src, ok := m.graph.cheapestSource(m.valid, int(f))
	if !ok {
		// No edge reaches f from any valid format (e.g. an Acc mirror whose
		// CPU counterpart is not valid): read from any valid format instead.
		first, found := m.valid.firstSet(int(matFormatCount))
		if !found {
			return
		}
		src = first
	}
	r, c, v := m.extract(MatFormat(src))
	m.assign(f, r, c, v)
}

func (m *Matrix[T]) extract(f MatFormat) ([]int, []int, []T) {
	switch f {
	case MCpuLil:
		var r, c []int
		var v []T
		for i, row := range m.lil {
			cols := make([]int, 0, len(row))
			for col := range row {
				cols = append(cols, col)
			}
			sort.Ints(cols)
			for _, col := range cols {
				r = append(r, i)
				c = append(c, col)
				v = append(v, row[col])
			}
		}
		return r, c, v
	case MCpuDok:
		type key struct{ r, c int }
		keys := make([]key, 0, len(m.dok))
		for k := range m.dok {
			keys = append(keys, key{k[0], k[1]})
		}
		sort.Slice(keys, func(a, b int) bool {
			if keys[a].r != keys[b].r {
				return keys[a].r < keys[b].r
			}
			return keys[a].c < keys[b].c
		})
		r := make([]int, len(keys))
		c := make([]int, len(keys))
		v := make([]T, len(keys))
		for i, k := range keys {
			r[i], c[i] = k.r, k.c
			v[i] = m.dok[[2]int{k.r, k.c}]
		}
		return r, c, v
	case MCpuCoo:
		return m.cooRow, m.cooCol, m.cooVal
	case MCpuCsr:
		return csrToTriplets(m.csrIndptr, m.csrIndices, m.csrVal)
	case MCpuCsc:
		return cscToTriplets(m.cscIndptr, m.cscIndices, m.cscVal)
	case MAccCoo:
		return m.accCooRow, m.accCooCol, m.accCooVal
	case MAccCsr:
		return csrToTriplets(m.accCsrIndptr, m.accCsrIndices, m.accCsrVal)
	case MAccCsc:
		return cscToTriplets(m.accCscIndptr, m.accCscIndices, m.accCscVal)
	}
	return nil, nil, nil
}

func csrToTriplets[T Numeric](indptr, indices []int, val []T) ([]int, []int, []T) {
	var r []int
	for i := 0; i+1 < len(indptr); i++ {
		for k := indptr[i]; k < indptr[i+1]; k++ {
			r = append(r, i)
		}
	}
	return r, append([]int(nil), indices...), append([]T(nil), val...)
}

func cscToTriplets[T Numeric](indptr, indices []int, val []T) ([]int, []int, []T) {
	var c []int
	for j := 0; j+1 < len(indptr); j++ {
		for k := indptr[j]; k < indptr[j+1]; k++ {
			c = append(c, j)
		}
	}
	return append([]int(nil), indices...), c, append([]T(nil), val...)
}

func (m *Matrix[T]) assign(f MatFormat, rowIdx, colIdx []int, val []T) {
	switch f {
	case MCpuLil:
		lil := make([]map[int]T, m.rows)
		for i := range rowIdx {
			r := rowIdx[i]
			if lil[r] == nil {
				lil[r] = make(map[int]T)
			}
			lil[r][colIdx[i]] = val[i]
		}
		m.lil = lil
	case MCpuDok:
		dok := make(map[[2]int]T, len(rowIdx))
		for i := range rowIdx {
			dok[[2]int{rowIdx[i], colIdx[i]}] = val[i]
		}
		m.dok = dok
	case MCpuCoo:
		r, c, v := sortTriplets(rowIdx, colIdx, val)
		m.cooRow, m.cooCol, m.cooVal = r, c, v
	case MCpuCsr:
		m.csrIndptr, m.csrIndices, m.csrVal = tripletsToCsr(rowIdx, colIdx, val, m.rows)
	case MCpuCsc:
		m.cscIndptr, m.cscIndices, m.cscVal = tripletsToCsc(rowIdx, colIdx, val, m.cols)
	case MAccCoo:
		r, c, v := sortTriplets(rowIdx, colIdx, val)
		m.accCooRow, m.accCooCol, m.accCooVal = r, c, v
	case MAccCsr:
		m.accCsrIndptr, m.accCsrIndices, m.accCsrVal = tripletsToCsr(rowIdx, colIdx, val, m.rows)
	case MAccCsc:
		m.accCscIndptr, m.accCscIndices, m.accCscVal = tripletsToCsc(rowIdx, colIdx, val, m.cols)
	}
}

func sortTriplets[T Numeric](rowIdx, colIdx []int, val []T) ([]int, []int, []T) {
	n := len(rowIdx)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if rowIdx[ia] != rowIdx[ib] {
			return rowIdx[ia] < rowIdx[ib]
		}
		return colIdx[ia] < colIdx[ib]
	})
	r := make([]int, n)
	c := make([]int, n)
	v := make([]T, n)
	for i, idx := range order {
		r[i], c[i], v[i] = rowIdx[idx], colIdx[idx], val[idx]
	}
	return r, c, v
}

// tripletsToCsr groups triplets (already in arbitrary order) by row into
// compressed sparse row form, grounded on the row-major iteration of
// hwy/contrib/matvec/matvec_base.go generalised from a dense row slice to
// a compressed one.
func tripletsToCsr[T Numeric](rowIdx, colIdx []int, val []T, rows int) ([]int, []int, []T) {
	r, c, v := sortTriplets(rowIdx, colIdx, val)
	indptr := make([]int, rows+1)
	for _, row := range r {
		indptr[row+1]++
	}
	for i := 0; i < rows; i++ {
		indptr[i+1] += indptr[i]
	}
	indices := make([]int, len(c))
	vals := make([]T, len(v))
	cursor := append([]int(nil), indptr...)
	for i := range r {
		pos := cursor[r[i]]
		indices[pos] = c[i]
		vals[pos] = v[i]
		cursor[r[i]]++
	}
	return indptr, indices, vals
}

func tripletsToCsc[T Numeric](rowIdx, colIdx []int, val []T, cols int) ([]int, []int, []T) {
	// Build by column instead of by row: sort by (col,row).
	n := len(rowIdx)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if colIdx[ia] != colIdx[ib] {
			return colIdx[ia] < colIdx[ib]
		}
		return rowIdx[ia] < rowIdx[ib]
	})
	indptr := make([]int, cols+1)
	for _, idx := range order {
		indptr[colIdx[idx]+1]++
	}
	for j := 0; j < cols; j++ {
		indptr[j+1] += indptr[j]
	}
	indices := make([]int, n)
	vals := make([]T, n)
	cursor := append([]int(nil), indptr...)
	for _, idx := range order {
		col := colIdx[idx]
		pos := cursor[col]
		indices[pos] = rowIdx[idx]
		vals[pos] = val[idx]
		cursor[col]++
	}
	return indptr, indices, vals
}

// ValidFormats reports which formats currently hold authoritative data.
func (m *Matrix[T]) ValidFormats() []MatFormat {
	var out []MatFormat
	for i := 0; i < int(matFormatCount); i++ {
		if m.valid.has(i) {
			out = append(out, MatFormat(i))
		}
	}
	return out
}

// CSR returns the compressed-sparse-row triplet, forcing (upgrading into)
// CpuCsr if it is not already valid. Kernels use this to get a read-only
// snapshot without destroying whatever else is valid.
func (m *Matrix[T]) CSR() (indptr, indices []int, val []T) {
	m.ValidateRWD(MCpuCsr)
	return m.csrIndptr, m.csrIndices, m.csrVal
}

// AccCSR returns the device-mirror compressed-sparse-row triplet, forcing
// (upgrading into) AccCsr if it is not already valid. Accelerator-backend
// algorithms read through this instead of CSR so that the two mirrors
// (spec.md §3's host/device format pairs) stay independently cached: a
// kernel that only ever runs on the accelerator never has to materialize
// the CPU-resident CSR copy.
func (m *Matrix[T]) AccCSR() (indptr, indices []int, val []T) {
	m.ValidateRWD(MAccCsr)
	return m.accCsrIndptr, m.accCsrIndices, m.accCsrVal
}
