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

// Vector is a length-N indexed sequence over an element type with a fill
// value: Get(i) returns the fill for any coordinate never stored since the
// last Clear (spec.md §3). It internally owns a set of format-specific
// decorations and a validity bitmap, lazily converting between them.
type Vector[T Numeric] struct {
	length int
	fill   T
	dup    *OpBinary[T, T, T]

	valid bitmap
	graph *formatGraph

	dok      map[int]T
	dense    []T
	present  []bool
	cooIdx   []int
	cooVal   []T
	accDense []T
	accIdx   []int
	accVal   []T
}

// NewVector creates a length-N vector with fill value zero and no stored
// entries. Decorations are lazily allocated when first needed.
func NewVector[T Numeric](length int) *Vector[T] {
	return &Vector[T]{length: length, graph: vectorGraph()}
}

func (v *Vector[T]) Len() int { return v.length }

// SetFill reconfigures the fill value. This never rewrites stored entries;
// it only changes the value returned for absent positions.
func (v *Vector[T]) SetFill(fill T) { v.fill = fill }

func (v *Vector[T]) Fill() T { return v.fill }

// SetDupReducer installs the operator used to combine repeated coordinates
// during a future Build or format conversion. The default is SECOND
// ("last write wins").
func (v *Vector[T]) SetDupReducer(op OpBinary[T, T, T]) { v.dup = &op }

func (v *Vector[T]) resolveDup(prev, next T) T {
	if v.dup != nil {
		return v.dup.Fn(prev, next)
	}
	return next // SECOND: last write wins
}

// Clear resets every decoration and the validity bitmap. The fill value is
// left as-is (spec.md §3: fill defaults to zero and "may be reconfigured
// at any time"; Clear is a content reset, not a reconfiguration).
func (v *Vector[T]) Clear() {
	v.valid.clearAll()
	v.dok = nil
	v.dense = nil
	v.present = nil
	v.cooIdx = nil
	v.cooVal = nil
	v.accDense = nil
	v.accIdx = nil
	v.accVal = nil
}

// Get returns the value at i, or the fill value if i has no stored entry.
func (v *Vector[T]) Get(i int) T {
	if i < 0 || i >= v.length {
		return v.fill
	}
	switch {
	case v.valid.has(int(VCpuDense)):
		if v.present[i] {
			return v.dense[i]
		}
	case v.valid.has(int(VCpuDok)):
		if val, ok := v.dok[i]; ok {
			return val
		}
	case v.valid.has(int(VCpuCoo)):
		if j, ok := searchCoo(v.cooIdx, i); ok {
			return v.cooVal[j]
		}
	case v.valid.has(int(VAccDense)):
		if i < len(v.accDense) {
			return v.accDense[i]
		}
	case v.valid.has(int(VAccCoo)):
		if j, ok := searchCoo(v.accIdx, i); ok {
			return v.accVal[j]
		}
	}
	return v.fill
}

func searchCoo(idx []int, target int) (int, bool) {
	j := sort.SearchInts(idx, target)
	if j < len(idx) && idx[j] == target {
		return j, true
	}
	return 0, false
}

// Set stores val at index i. This is a build operation: it invalidates
// every format except CpuDok, the write-destination format it mutated
// (spec.md §3 invariants).
func (v *Vector[T]) Set(i int, val T) {
	v.ValidateRW(VCpuDok)
	if v.dok == nil {
		v.dok = make(map[int]T)
	}
	if prev, ok := v.dok[i]; ok {
		v.dok[i] = v.resolveDup(prev, val)
	} else {
		v.dok[i] = val
	}
}

// Build is equivalent to batched Set, but short-circuits to a direct COO
// construction when keys is already sorted and unique (spec.md §4.2).
func (v *Vector[T]) Build(keys []int, values []T) Status {
	if len(keys) != len(values) {
		return InvalidArgument
	}
	if len(keys) == 0 {
		v.Clear()
		return Ok
	}
	if isSortedUnique(keys) {
		v.Clear()
		v.cooIdx = append([]int(nil), keys...)
		v.cooVal = append([]T(nil), values...)
		v.valid = v.valid.only(int(VCpuCoo))
		return Ok
	}

	v.Clear()
	m := make(map[int]T, len(keys))
	for i, k := range keys {
		if prev, ok := m[k]; ok {
			m[k] = v.resolveDup(prev, values[i])
		} else {
			m[k] = values[i]
		}
	}
	v.dok = m
	v.valid = v.valid.only(int(VCpuDok))
	return Ok
}

func isSortedUnique(keys []int) bool {
	for i := 1; i < len(keys); i++ {
		if keys[i] <= keys[i-1] {
			return false
		}
	}
	return true
}

// Read performs a bulk read of the vector's sparse contents into parallel
// key/value arrays, applying the duplicate reducer to any coordinates that
// were written more than once before the current representation was
// settled (spec.md §8 invariant 3, round-trip).
func (v *Vector[T]) Read() ([]int, []T) {
	v.ensureCooReadable()
	keys := append([]int(nil), v.cooIdx...)
	vals := append([]T(nil), v.cooVal...)
	return keys, vals
}

// ensureCooReadable materialises CpuCoo without invalidating whichever
// format is already authoritative (an "upgrade" conversion per spec.md
// §4.2: it reads from a valid source and sets the target bit in addition
// to the source, since no mutation took place).
func (v *Vector[T]) ensureCooReadable() {
	if v.valid.has(int(VCpuCoo)) {
		return
	}
	switch {
	case v.valid.has(int(VCpuDok)):
		v.cooIdx, v.cooVal = dokToCoo(v.dok)
	case v.valid.has(int(VCpuDense)):
		v.cooIdx, v.cooVal = denseToCoo(v.dense, v.present)
	case v.valid.has(int(VAccCoo)):
		v.cooIdx = append([]int(nil), v.accIdx...)
		v.cooVal = append([]T(nil), v.accVal...)
	case v.valid.has(int(VAccDense)):
		present := make([]bool, len(v.accDense))
		for i := range present {
			present[i] = true
		}
		v.cooIdx, v.cooVal = denseToCoo(v.accDense, present)
	default:
		v.cooIdx, v.cooVal = nil, nil
	}
	v.valid.set(int(VCpuCoo))
}

func dokToCoo[T Numeric](m map[int]T) ([]int, []T) {
	idx := make([]int, 0, len(m))
	for k := range m {
		idx = append(idx, k)
	}
	sort.Ints(idx)
	val := make([]T, len(idx))
	for i, k := range idx {
		val[i] = m[k]
	}
	return idx, val
}

func denseToCoo[T Numeric](dense []T, present []bool) ([]int, []T) {
	var idx []int
	var val []T
	for i, ok := range present {
		if ok {
			idx = append(idx, i)
			val = append(val, dense[i])
		}
	}
	return idx, val
}

// ValidateRW ensures format f is valid, converting from the cheapest
// currently-valid source if necessary, then marks f as the sole valid
// format (every other format is considered mutated-through and therefore
// stale): "I will read from and write to format F" (spec.md §4.2).
func (v *Vector[T]) ValidateRW(f VecFormat) {
	v.materialize(f)
	v.valid = v.valid.only(int(f))
}

// ValidateRWD ensures format f is valid without forcing every other bit to
// clear. This implementation approximates the additive ("keep formats
// that happen to still agree") semantics spec.md §4.2 describes for LIL-
// style appends as plain materialisation without an eager invalidation
// pass — see DESIGN.md for the reasoning.
func (v *Vector[T]) ValidateRWD(f VecFormat) {
	v.materialize(f)
	v.valid.set(int(f))
}

// ValidateWD ensures format f is allocated without reading any other
// format — the caller is about to overwrite it completely.
func (v *Vector[T]) ValidateWD(f VecFormat) {
	v.allocate(f)
	v.valid = v.valid.only(int(f))
}

// ValidateCtor ensures format f is allocated (e.g. to configure a property
// before any data arrives) without asserting it as valid content.
func (v *Vector[T]) ValidateCtor(f VecFormat) {
	v.allocate(f)
}

// SetFormat forces f to become valid, converting if necessary; a no-op if
// f is already valid (spec.md §6 abridged container API).
func (v *Vector[T]) SetFormat(f VecFormat) {
	if v.valid.has(int(f)) {
		return
	}
	v.materialize(f)
	v.valid.set(int(f))
}

func (v *Vector[T]) allocate(f VecFormat) {
	switch f {
	case VCpuDok:
		if v.dok == nil {
			v.dok = make(map[int]T)
		}
	case VCpuDense:
		if v.dense == nil {
			v.dense = make([]T, v.length)
			v.present = make([]bool, v.length)
		}
	case VCpuCoo:
		// nil slices are a valid empty COO; nothing to allocate eagerly.
	case VAccDense:
		if v.accDense == nil {
			v.accDense = make([]T, v.length)
		}
	case VAccCoo:
		// nil slices are a valid empty COO mirror.
	}
}

// materialize ensures format f holds the logical contents, converting from
// whichever currently-valid format the cost graph prefers.
func (v *Vector[T]) materialize(f VecFormat) {
	if v.valid.has(int(f)) {
		return
	}
	v.allocate(f)
	src, ok := v.graph.cheapestSource(v.valid, int(f))
	if !ok {
		// No edge reaches f from any valid format: read from any valid one.
		first, found := v.valid.firstSet(int(vecFormatCount))
		if !found {
			// Fresh container, nothing valid anywhere yet: target starts empty.
			return
		}
		src = first
	}
	keys, vals := v.extract(VecFormat(src))
	v.assign(f, keys, vals)
}

func (v *Vector[T]) extract(f VecFormat) ([]int, []T) {
	switch f {
	case VCpuDok:
		return dokToCoo(v.dok)
	case VCpuDense:
		return denseToCoo(v.dense, v.present)
	case VCpuCoo:
		return v.cooIdx, v.cooVal
	case VAccDense:
		present := make([]bool, len(v.accDense))
		for i := range present {
			present[i] = true
		}
		return denseToCoo(v.accDense, present)
	case VAccCoo:
		return v.accIdx, v.accVal
	}
	return nil, nil
}

func (v *Vector[T]) assign(f VecFormat, keys []int, vals []T) {
	switch f {
	case VCpuDok:
		m := make(map[int]T, len(keys))
		for i, k := range keys {
			m[k] = vals[i]
		}
		v.dok = m
	case VCpuDense:
		dense := make([]T, v.length)
		present := make([]bool, v.length)
		for i := range dense {
			dense[i] = v.fill
		}
		for i, k := range keys {
			if k >= 0 && k < v.length {
				dense[k] = vals[i]
				present[k] = true
			}
		}
		v.dense, v.present = dense, present
	case VCpuCoo:
		v.cooIdx = append([]int(nil), keys...)
		v.cooVal = append([]T(nil), vals...)
	case VAccDense:
		dense := make([]T, v.length)
		for i := range dense {
			dense[i] = v.fill
		}
		for i, k := range keys {
			if k >= 0 && k < v.length {
				dense[k] = vals[i]
			}
		}
		v.accDense = dense
	case VAccCoo:
		v.accIdx = append([]int(nil), keys...)
		v.accVal = append([]T(nil), vals...)
	}
}

// ValidFormats reports which formats currently hold authoritative data,
// for tests exercising spec.md §8 invariant 1 (validity preservation).
func (v *Vector[T]) ValidFormats() []VecFormat {
	var out []VecFormat
	for i := 0; i < int(vecFormatCount); i++ {
		if v.valid.has(i) {
			out = append(out, VecFormat(i))
		}
	}
	return out
}

// Dense returns the fully-materialised dense array, forcing a conversion
// to CpuDense as an upgrade (non-destructive) read.
func (v *Vector[T]) Dense() []T {
	if !v.valid.has(int(VCpuDense)) {
		keys, vals := v.extract(firstValidVecFormat(v.valid))
		v.allocate(VCpuDense)
		v.assign(VCpuDense, keys, vals)
		v.valid.set(int(VCpuDense))
	}
	out := make([]T, v.length)
	copy(out, v.dense)
	for i, ok := range v.present {
		if !ok {
			out[i] = v.fill
		}
	}
	return out
}

// AccDense returns the device-mirror dense array, forcing a conversion to
// AccDense as an upgrade (non-destructive) read. Accelerator-backend
// algorithms read through this instead of Dense so the device mirror is
// materialised independently of the CPU-resident copy.
func (v *Vector[T]) AccDense() []T {
	if !v.valid.has(int(VAccDense)) {
		keys, vals := v.extract(firstValidVecFormat(v.valid))
		v.allocate(VAccDense)
		v.assign(VAccDense, keys, vals)
		v.valid.set(int(VAccDense))
	}
	out := make([]T, v.length)
	copy(out, v.accDense)
	return out
}

func firstValidVecFormat(valid bitmap) VecFormat {
	f, ok := valid.firstSet(int(vecFormatCount))
	if !ok {
		return VCpuCoo
	}
	return VecFormat(f)
}
