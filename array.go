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

// Array is a plain dense 1-D buffer for batch reads and builds where no
// sparsity or format conversion applies. (m_reduce_by_row and
// m_reduce_by_column return key/value slices; they do not write here.)
type Array[T Numeric] struct {
	data []T
}

func NewArray[T Numeric](n int) *Array[T] { return &Array[T]{data: make([]T, n)} }

func NewArrayFrom[T Numeric](data []T) *Array[T] {
	return &Array[T]{data: append([]T(nil), data...)}
}

func (a *Array[T]) Len() int { return len(a.data) }

func (a *Array[T]) Get(i int) T { return a.data[i] }

func (a *Array[T]) Set(i int, v T) { a.data[i] = v }

func (a *Array[T]) Resize(n int) {
	if n == len(a.data) {
		return
	}
	nd := make([]T, n)
	copy(nd, a.data)
	a.data = nd
}

// Slice returns the backing storage directly; kernels use this to write
// their output in place rather than through per-element Set calls.
func (a *Array[T]) Slice() []T { return a.data }
