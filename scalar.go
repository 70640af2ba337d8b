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

// Scalar is a single named value, the destination of reduction kernels
// (v_reduce, m_reduce; m_reduce_by_row/column instead return one value per
// row/column as slices). It carries no format set of its own: a scalar
// has nothing to convert between.
type Scalar[T Numeric] struct {
	val T
	set bool
}

func NewScalar[T Numeric]() *Scalar[T] { return &Scalar[T]{} }

func NewScalarValue[T Numeric](v T) *Scalar[T] { return &Scalar[T]{val: v, set: true} }

func (s *Scalar[T]) Get() T { return s.val }

func (s *Scalar[T]) Set(v T) {
	s.val = v
	s.set = true
}

// HasValue reports whether Set has ever been called; a freshly-constructed
// Scalar used as a reduction accumulator relies on this to decide whether
// the first partial result should overwrite or combine.
func (s *Scalar[T]) HasValue() bool { return s.set }

// Reduce folds v into the scalar's current value with op, treating an
// unset scalar as the operator's identity (i.e. the first value wins
// outright rather than being combined against a zero value the caller
// never asked for).
func (s *Scalar[T]) Reduce(op OpBinary[T, T, T], v T) {
	if !s.set {
		s.val = v
		s.set = true
		return
	}
	s.val = op.Fn(s.val, v)
}
