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

// Package ops provides the submit functions for the nine operation tags
// spec.md §6 requires beyond the four representative kernels (mxv_masked,
// vxm_masked, v_eadd/v_eadd_fdb, m_reduce_by_row/m_reduce_by_column live
// in their own kernels/ packages). These are "mechanical, follows the
// same shape" per spec.md: one reference CPU algorithm each, registered
// into the shared dispatch.Registry the same way the representative
// kernels are.
package ops

import (
	"sort"

	"github.com/ajroetker/gsla"
	"github.com/ajroetker/gsla/internal/dispatch"
	"github.com/ajroetker/gsla/kernels/reduceby"
)

// --- v_map ---

type MapPayload[In, Out gsla.Numeric] struct {
	Src    *gsla.Vector[In]
	Result *gsla.Vector[Out]
	Op     gsla.OpUnary[In, Out]
}

// v_map has no per-row reduction for EarlyExit to shortcut (it applies Op
// once per stored entry, unconditionally), so the algorithm ignores
// task.EarlyExit entirely.
type vMap[In, Out gsla.Numeric] struct{}

func (vMap[In, Out]) Name() string              { return "v_map/scalar_loop" }
func (vMap[In, Out]) Backend() dispatch.Backend { return dispatch.CPU }
func (vMap[In, Out]) CanExecute(task *dispatch.Task) bool {
	return task.Tag == dispatch.VMap
}
func (vMap[In, Out]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*MapPayload[In, Out])
	keys, vals := p.Src.Read()
	for i, k := range keys {
		p.Result.Set(k, p.Op.Fn(vals[i]))
	}
	return nil
}

// RegisterMap installs v_map for a single (In, Out) type pairing, keyed
// on the input type's TypeID (the dispatcher routes by the task's element
// type, which the caller sets to the source vector's type).
func RegisterMap[In, Out gsla.Numeric](reg *dispatch.Registry) {
	id := int(gsla.TypeIDFor[In]())
	reg.Register(dispatch.VMap, id, vMap[In, Out]{})
}

// SubmitMap dispatches v_map against the process-wide registry.
func SubmitMap[In, Out gsla.Numeric](src *gsla.Vector[In], result *gsla.Vector[Out], op gsla.OpUnary[In, Out]) gsla.Status {
	task := &dispatch.Task{
		Tag:     dispatch.VMap,
		TypeID:  int(gsla.TypeIDFor[In]()),
		Payload: &MapPayload[In, Out]{Src: src, Result: result, Op: op},
	}
	return statusOf(gsla.Registry().Execute(task, gsla.ForceNoAcceleration()))
}

// --- v_reduce ---

type ReducePayload[T gsla.Numeric] struct {
	Src    *gsla.Vector[T]
	Result *gsla.Scalar[T]
	Op     gsla.OpBinary[T, T, T]
}

type vReduce[T gsla.Numeric] struct{}

func (vReduce[T]) Name() string              { return "v_reduce/scalar_fold" }
func (vReduce[T]) Backend() dispatch.Backend { return dispatch.CPU }
func (vReduce[T]) CanExecute(task *dispatch.Task) bool { return task.Tag == dispatch.VReduce }
func (vReduce[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*ReducePayload[T])
	_, vals := p.Src.Read()
	for _, v := range vals {
		p.Result.Reduce(p.Op, v)
	}
	return nil
}

func RegisterReduce[T gsla.Numeric](reg *dispatch.Registry) {
	reg.Register(dispatch.VReduce, int(gsla.TypeIDFor[T]()), vReduce[T]{})
}

// SubmitReduce dispatches v_reduce against the process-wide registry.
func SubmitReduce[T gsla.Numeric](src *gsla.Vector[T], result *gsla.Scalar[T], op gsla.OpBinary[T, T, T]) gsla.Status {
	task := &dispatch.Task{
		Tag:     dispatch.VReduce,
		TypeID:  int(gsla.TypeIDFor[T]()),
		Payload: &ReducePayload[T]{Src: src, Result: result, Op: op},
	}
	return statusOf(gsla.Registry().Execute(task, gsla.ForceNoAcceleration()))
}

// --- v_assign_masked ---

// AssignMaskedPayload carries the operands for v_assign_masked: a scalar
// Value is broadcast into every index the mask admits, combined with that
// index's current Dst value through Op (spec.md §8 S3: "value = -5; op =
// SECOND" broadcasts -5 to every masked index — SECOND's (a,b)->b discards
// the old value exactly as a plain overwrite would, but any other binary
// operator folds the broadcast value in instead of overwriting it).
type AssignMaskedPayload[T gsla.Numeric] struct {
	Dst   *gsla.Vector[T]
	Value T
	Mask  *gsla.Vector[T]
	Pred  gsla.OpSelect[T]
	Op    gsla.OpBinary[T, T, T]
}

type vAssignMasked[T gsla.Numeric] struct{}

func (vAssignMasked[T]) Name() string              { return "v_assign_masked/scalar_loop" }
func (vAssignMasked[T]) Backend() dispatch.Backend { return dispatch.CPU }
func (vAssignMasked[T]) CanExecute(task *dispatch.Task) bool {
	return task.Tag == dispatch.VAssignMasked
}
func (vAssignMasked[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*AssignMaskedPayload[T])
	n := p.Mask.Len()
	for k := 0; k < n; k++ {
		if !p.Pred.Fn(p.Mask.Get(k)) {
			continue
		}
		p.Dst.Set(k, p.Op.Fn(p.Dst.Get(k), p.Value))
	}
	return nil
}

func RegisterAssignMasked[T gsla.Numeric](reg *dispatch.Registry) {
	reg.Register(dispatch.VAssignMasked, int(gsla.TypeIDFor[T]()), vAssignMasked[T]{})
}

// SubmitAssignMasked dispatches v_assign_masked against the process-wide
// registry: value is broadcast into every index mask admits under pred,
// combined with the destination's current entry through op.
func SubmitAssignMasked[T gsla.Numeric](dst *gsla.Vector[T], value T, mask *gsla.Vector[T], op gsla.OpBinary[T, T, T], pred gsla.OpSelect[T]) gsla.Status {
	task := &dispatch.Task{
		Tag:     dispatch.VAssignMasked,
		TypeID:  int(gsla.TypeIDFor[T]()),
		HasMask: mask != nil,
		Payload: &AssignMaskedPayload[T]{Dst: dst, Value: value, Mask: mask, Pred: pred, Op: op},
	}
	return statusOf(gsla.Registry().Execute(task, gsla.ForceNoAcceleration()))
}

// --- v_count_mf (count mask-filter: number of coordinates admitted by a
// select predicate over a vector's stored entries) ---

type CountMfPayload[T gsla.Numeric] struct {
	Src    *gsla.Vector[T]
	Pred   gsla.OpSelect[T]
	Result *gsla.Scalar[int32]
}

type vCountMf[T gsla.Numeric] struct{}

func (vCountMf[T]) Name() string              { return "v_count_mf/scalar_loop" }
func (vCountMf[T]) Backend() dispatch.Backend { return dispatch.CPU }
func (vCountMf[T]) CanExecute(task *dispatch.Task) bool { return task.Tag == dispatch.VCountMf }
func (vCountMf[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*CountMfPayload[T])
	_, vals := p.Src.Read()
	var count int32
	for _, v := range vals {
		if p.Pred.Fn(v) {
			count++
		}
	}
	p.Result.Set(count)
	return nil
}

func RegisterCountMf[T gsla.Numeric](reg *dispatch.Registry) {
	reg.Register(dispatch.VCountMf, int(gsla.TypeIDFor[T]()), vCountMf[T]{})
}

// SubmitCountMf dispatches v_count_mf against the process-wide registry.
func SubmitCountMf[T gsla.Numeric](src *gsla.Vector[T], pred gsla.OpSelect[T], result *gsla.Scalar[int32]) gsla.Status {
	task := &dispatch.Task{
		Tag:     dispatch.VCountMf,
		TypeID:  int(gsla.TypeIDFor[T]()),
		Payload: &CountMfPayload[T]{Src: src, Pred: pred, Result: result},
	}
	return statusOf(gsla.Registry().Execute(task, gsla.ForceNoAcceleration()))
}

// --- m_reduce (whole-matrix reduction to a scalar) ---

type MReducePayload[T gsla.Numeric] struct {
	Src    *gsla.Matrix[T]
	Result *gsla.Scalar[T]
	Op     gsla.OpBinary[T, T, T]
}

type mReduce[T gsla.Numeric] struct{}

func (mReduce[T]) Name() string              { return "m_reduce/scalar_fold" }
func (mReduce[T]) Backend() dispatch.Backend { return dispatch.CPU }
func (mReduce[T]) CanExecute(task *dispatch.Task) bool { return task.Tag == dispatch.MReduce }
func (mReduce[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*MReducePayload[T])
	_, _, vals := p.Src.Read()
	for _, v := range vals {
		p.Result.Reduce(p.Op, v)
	}
	return nil
}

func RegisterMReduce[T gsla.Numeric](reg *dispatch.Registry) {
	reg.Register(dispatch.MReduce, int(gsla.TypeIDFor[T]()), mReduce[T]{})
}

// SubmitMReduce dispatches m_reduce against the process-wide registry.
func SubmitMReduce[T gsla.Numeric](src *gsla.Matrix[T], result *gsla.Scalar[T], op gsla.OpBinary[T, T, T]) gsla.Status {
	task := &dispatch.Task{
		Tag:     dispatch.MReduce,
		TypeID:  int(gsla.TypeIDFor[T]()),
		Payload: &MReducePayload[T]{Src: src, Result: result, Op: op},
	}
	return statusOf(gsla.Registry().Execute(task, gsla.ForceNoAcceleration()))
}

// --- m_transpose ---

// TransposePayload carries the operands for m_transpose. Op is applied to
// each value before it lands in its transposed coordinate, so a transpose
// can double as an element-wise transform (e.g. AINV, negating every
// entry as it swaps row and column) instead of a purely structural
// rebuild; callers that want a bare transpose pass gsla.Identity[T]().
type TransposePayload[T gsla.Numeric] struct {
	Src    *gsla.Matrix[T]
	Result *gsla.Matrix[T]
	Op     gsla.OpUnary[T, T]
}

type mTranspose[T gsla.Numeric] struct{}

func (mTranspose[T]) Name() string              { return "m_transpose/rebuild" }
func (mTranspose[T]) Backend() dispatch.Backend { return dispatch.CPU }
func (mTranspose[T]) CanExecute(task *dispatch.Task) bool { return task.Tag == dispatch.MTranspose }
func (mTranspose[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*TransposePayload[T])
	r, c, v := p.Src.Read()
	out := make([]T, len(v))
	for i, x := range v {
		out[i] = p.Op.Fn(x)
	}
	return statusToErr(p.Result.Build(c, r, out))
}

func RegisterTranspose[T gsla.Numeric](reg *dispatch.Registry) {
	reg.Register(dispatch.MTranspose, int(gsla.TypeIDFor[T]()), mTranspose[T]{})
}

// SubmitTranspose dispatches m_transpose against the process-wide registry.
// op is applied to every value as it is carried into the transposed
// position (spec.md §8 S5: AINV-transformed transpose); pass
// gsla.Identity[T]() for a purely structural transpose.
func SubmitTranspose[T gsla.Numeric](src, result *gsla.Matrix[T], op gsla.OpUnary[T, T]) gsla.Status {
	task := &dispatch.Task{
		Tag:     dispatch.MTranspose,
		TypeID:  int(gsla.TypeIDFor[T]()),
		Payload: &TransposePayload[T]{Src: src, Result: result, Op: op},
	}
	return statusOf(gsla.Registry().Execute(task, gsla.ForceNoAcceleration()))
}

// --- mxm (sparse matrix x sparse matrix product) ---

type MxmPayload[T gsla.Numeric] struct {
	A, B   *gsla.Matrix[T]
	Result *gsla.Matrix[T]
	Add    gsla.OpBinary[T, T, T]
	Mul    gsla.OpBinary[T, T, T]
}

type mxm[T gsla.Numeric] struct{}

func (mxm[T]) Name() string              { return "mxm/row_by_row" }
func (mxm[T]) Backend() dispatch.Backend { return dispatch.CPU }
func (mxm[T]) CanExecute(task *dispatch.Task) bool { return task.Tag == dispatch.Mxm }
func (mxm[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*MxmPayload[T])
	return runMxm(p.A, p.B, p.Result, p.Add, p.Mul, nil, gsla.OpSelect[T]{})
}

func RegisterMxm[T gsla.Numeric](reg *dispatch.Registry) {
	reg.Register(dispatch.Mxm, int(gsla.TypeIDFor[T]()), mxm[T]{})
}

// SubmitMxm dispatches mxm against the process-wide registry.
func SubmitMxm[T gsla.Numeric](a, b, result *gsla.Matrix[T], add, mul gsla.OpBinary[T, T, T]) gsla.Status {
	task := &dispatch.Task{
		Tag:     dispatch.Mxm,
		TypeID:  int(gsla.TypeIDFor[T]()),
		Payload: &MxmPayload[T]{A: a, B: b, Result: result, Add: add, Mul: mul},
	}
	return statusOf(gsla.Registry().Execute(task, gsla.ForceNoAcceleration()))
}

// --- mxmT_masked (A * B^T, masked) ---

type MxmTMaskedPayload[T gsla.Numeric] struct {
	A, B   *gsla.Matrix[T]
	Mask   *gsla.Matrix[T]
	Result *gsla.Matrix[T]
	Add    gsla.OpBinary[T, T, T]
	Mul    gsla.OpBinary[T, T, T]
	Pred   gsla.OpSelect[T]
}

type mxmTMasked[T gsla.Numeric] struct{}

func (mxmTMasked[T]) Name() string              { return "mxmT_masked/row_by_row" }
func (mxmTMasked[T]) Backend() dispatch.Backend { return dispatch.CPU }
func (mxmTMasked[T]) CanExecute(task *dispatch.Task) bool { return task.Tag == dispatch.MxmTMasked }
func (mxmTMasked[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*MxmTMaskedPayload[T])
	r, c, v := p.B.Read()
	bt := gsla.NewMatrix[T](p.B.Cols(), p.B.Rows())
	if st := bt.Build(c, r, v); st != gsla.Ok {
		return statusToErr(st)
	}
	return runMxm(p.A, bt, p.Result, p.Add, p.Mul, p.Mask, p.Pred)
}

func RegisterMxmTMasked[T gsla.Numeric](reg *dispatch.Registry) {
	reg.Register(dispatch.MxmTMasked, int(gsla.TypeIDFor[T]()), mxmTMasked[T]{})
}

// SubmitMxmTMasked dispatches mxmT_masked against the process-wide registry.
func SubmitMxmTMasked[T gsla.Numeric](a, b, mask, result *gsla.Matrix[T], add, mul gsla.OpBinary[T, T, T], pred gsla.OpSelect[T]) gsla.Status {
	task := &dispatch.Task{
		Tag:     dispatch.MxmTMasked,
		TypeID:  int(gsla.TypeIDFor[T]()),
		HasMask: mask != nil,
		Payload: &MxmTMaskedPayload[T]{A: a, B: b, Mask: mask, Result: result, Add: add, Mul: mul, Pred: pred},
	}
	return statusOf(gsla.Registry().Execute(task, gsla.ForceNoAcceleration()))
}

func runMxm[T gsla.Numeric](a, b, result *gsla.Matrix[T], add, mul gsla.OpBinary[T, T, T], mask *gsla.Matrix[T], pred gsla.OpSelect[T]) error {
	aIndptr, aIndices, aVals := a.CSR()
	bIndptr, bIndices, bVals := b.CSR()

	var rowIdx, colIdx []int
	var vals []T
	for i := 0; i < a.Rows(); i++ {
		acc := make(map[int]T)
		var order []int
		s, e := aIndptr[i], aIndptr[i+1]
		for k := s; k < e; k++ {
			row := aIndices[k]
			av := aVals[k]
			bs, be := bIndptr[row], bIndptr[row+1]
			for bk := bs; bk < be; bk++ {
				col := bIndices[bk]
				prod := mul.Fn(av, bVals[bk])
				if prev, ok := acc[col]; ok {
					acc[col] = add.Fn(prev, prod)
				} else {
					acc[col] = prod
					order = append(order, col)
				}
			}
		}
		sort.Ints(order)
		for _, col := range order {
			if mask != nil && !pred.Fn(mask.Get(i, col)) {
				continue
			}
			rowIdx = append(rowIdx, i)
			colIdx = append(colIdx, col)
			vals = append(vals, acc[col])
		}
	}
	return statusToErr(result.Build(rowIdx, colIdx, vals))
}

// --- kron (Kronecker product) ---

type KronPayload[T gsla.Numeric] struct {
	A, B   *gsla.Matrix[T]
	Result *gsla.Matrix[T]
	Mul    gsla.OpBinary[T, T, T]
}

type kron[T gsla.Numeric] struct{}

func (kron[T]) Name() string              { return "kron/triplet_product" }
func (kron[T]) Backend() dispatch.Backend { return dispatch.CPU }
func (kron[T]) CanExecute(task *dispatch.Task) bool { return task.Tag == dispatch.Kron }
func (kron[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*KronPayload[T])
	ar, ac, av := p.A.Read()
	br, bc, bv := p.B.Read()
	bRows, bCols := p.B.Rows(), p.B.Cols()

	var rowIdx, colIdx []int
	var vals []T
	for i := range ar {
		for j := range br {
			rowIdx = append(rowIdx, ar[i]*bRows+br[j])
			colIdx = append(colIdx, ac[i]*bCols+bc[j])
			vals = append(vals, p.Mul.Fn(av[i], bv[j]))
		}
	}
	return statusToErr(p.Result.Build(rowIdx, colIdx, vals))
}

func RegisterKron[T gsla.Numeric](reg *dispatch.Registry) {
	reg.Register(dispatch.Kron, int(gsla.TypeIDFor[T]()), kron[T]{})
}

// SubmitKron dispatches kron against the process-wide registry.
func SubmitKron[T gsla.Numeric](a, b, result *gsla.Matrix[T], mul gsla.OpBinary[T, T, T]) gsla.Status {
	task := &dispatch.Task{
		Tag:     dispatch.Kron,
		TypeID:  int(gsla.TypeIDFor[T]()),
		Payload: &KronPayload[T]{A: a, B: b, Result: result, Mul: mul},
	}
	return statusOf(gsla.Registry().Execute(task, gsla.ForceNoAcceleration()))
}

func statusToErr(st gsla.Status) error {
	if st == gsla.Ok {
		return nil
	}
	return &gsla.StatusError{Status: st}
}

func statusOf(err error) gsla.Status {
	if err == nil {
		return gsla.Ok
	}
	if _, ok := err.(*dispatch.ErrNotImplemented); ok {
		return gsla.NotImplemented
	}
	return gsla.Error
}

// ReduceByKey exposes reduceby.Reduce directly for callers
// that want the plain scan without going through the dispatcher — e.g.
// m_reduce_by_row applied to an already-extracted CSR row/value pair.
func ReduceByKey[T gsla.Numeric](keys []int, values []T, op gsla.OpBinary[T, T, T]) ([]int, []T) {
	return reduceby.Reduce(keys, values, op)
}

// RegisterDefaults registers every non-representative operation tag's CPU
// algorithm for int32, uint32 and float32. v_map is registered same-type
// only (In == Out); cross-type maps are rarer and callers needing one
// call RegisterMap[In, Out] directly.
func RegisterDefaults(reg *dispatch.Registry) {
	RegisterMap[int32, int32](reg)
	RegisterMap[uint32, uint32](reg)
	RegisterMap[float32, float32](reg)

	RegisterReduce[int32](reg)
	RegisterReduce[uint32](reg)
	RegisterReduce[float32](reg)

	RegisterAssignMasked[int32](reg)
	RegisterAssignMasked[uint32](reg)
	RegisterAssignMasked[float32](reg)

	RegisterCountMf[int32](reg)
	RegisterCountMf[uint32](reg)
	RegisterCountMf[float32](reg)

	RegisterMReduce[int32](reg)
	RegisterMReduce[uint32](reg)
	RegisterMReduce[float32](reg)

	RegisterTranspose[int32](reg)
	RegisterTranspose[uint32](reg)
	RegisterTranspose[float32](reg)

	RegisterMxm[int32](reg)
	RegisterMxm[uint32](reg)
	RegisterMxm[float32](reg)

	RegisterMxmTMasked[int32](reg)
	RegisterMxmTMasked[uint32](reg)
	RegisterMxmTMasked[float32](reg)

	RegisterKron[int32](reg)
	RegisterKron[uint32](reg)
	RegisterKron[float32](reg)
}
