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

// Package vxm implements masked sparse-vector by sparse-matrix product,
// spec.md's second representative kernel: y^T = x^T * A. The CPU
// algorithm is a three-phase count/collect/reduce pipeline grounded on
// hwy/contrib/sort/radix_base.go's BaseRadixPass, which performs the same
// shape of histogram-count, prefix-sum-offset, then scatter over 256
// digit buckets; here the "buckets" are output columns instead of radix
// digits, and the final scatter step is followed by a per-bucket additive
// reduction instead of a straight copy.
package vxm

import (
	"sort"
	"strings"

	"github.com/ajroetker/gsla"
	"github.com/ajroetker/gsla/internal/accel"
	"github.com/ajroetker/gsla/internal/dispatch"
)

// Payload carries the operands for one vxm_masked dispatch: x is the
// sparse left-hand row vector, Mat the right-hand matrix in CSR form,
// Mask (optional) restricts which output columns are admitted.
type Payload[T gsla.Numeric] struct {
	X      *gsla.Vector[T]
	Mat    *gsla.Matrix[T]
	Mask   *gsla.Vector[T]
	Result *gsla.Vector[T]
	Pred   gsla.OpSelect[T]
	Add    gsla.OpBinary[T, T, T]
	Mul    gsla.OpBinary[T, T, T]
}

type countCollectReduce[T gsla.Numeric] struct{}

func (countCollectReduce[T]) Name() string              { return "vxm_masked/count_collect_reduce" }
func (countCollectReduce[T]) Backend() dispatch.Backend { return dispatch.CPU }

func (countCollectReduce[T]) CanExecute(task *dispatch.Task) bool {
	return task.Tag == dispatch.VxmMasked
}

func (countCollectReduce[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*Payload[T])
	indptr, indices, values := p.Mat.CSR()

	xKeys, xVals := p.X.Read()

	// Phase 1: count. Histogram how many (row, contribution) pairs land on
	// each output column, exactly like BaseRadixPass counts how many keys
	// land in each of the 256 digit buckets.
	counts := make(map[int]int)
	for ri, row := range xKeys {
		_ = ri
		s, e := indptr[row], indptr[row+1]
		for k := s; k < e; k++ {
			counts[indices[k]]++
		}
	}

	// Phase 2: collect. Scatter each contribution into its column's bucket,
	// the scatter step of BaseRadixPass, generalised from "copy src[i] to
	// dst[offset]" to "append a partial product to this column's list".
	buckets := make(map[int][]T, len(counts))
	for col, n := range counts {
		buckets[col] = make([]T, 0, n)
	}
	for ri, row := range xKeys {
		xv := xVals[ri]
		s, e := indptr[row], indptr[row+1]
		for k := s; k < e; k++ {
			col := indices[k]
			buckets[col] = append(buckets[col], p.Mul.Fn(xv, values[k]))
		}
	}

	// Phase 3: reduce. Fold each bucket with Add, then apply the optional
	// output mask before writing the result (spec.md mask-containment
	// invariant: entries the mask rejects are never written).
	cols := make([]int, 0, len(buckets))
	for col := range buckets {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	for _, col := range cols {
		if task.HasMask && !p.Pred.Fn(p.Mask.Get(col)) {
			continue
		}
		vals := buckets[col]
		acc := vals[0]
		for _, v := range vals[1:] {
			acc = p.Add.Fn(acc, v)
		}
		p.Result.Set(col, acc)
	}
	return nil
}

// countCollectReduceAccelerator is the simulated-accelerator vxm_masked
// variant (spec.md §4.5.2's "three-phase vxm pipeline" run here on the
// host): it runs the identical count/collect/reduce pipeline against the
// matrix's device-mirror CSR format (Matrix.AccCSR), compiling and caching
// a kernel program keyed on the semiring's operator fragments, and
// executes inside accel.Queue.Submit with a launch geometry sized from the
// selected device's wavefront width.
type countCollectReduceAccelerator[T gsla.Numeric] struct{}

func (countCollectReduceAccelerator[T]) Name() string {
	return "vxm_masked/count_collect_reduce_accelerator"
}
func (countCollectReduceAccelerator[T]) Backend() dispatch.Backend { return dispatch.Accelerator }

func (countCollectReduceAccelerator[T]) CanExecute(task *dispatch.Task) bool {
	return task.Tag == dispatch.VxmMasked && gsla.Runtime() != nil
}

func (countCollectReduceAccelerator[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*Payload[T])
	rt := gsla.Runtime()
	indptr, indices, values := p.Mat.AccCSR()
	xKeys, xVals := p.X.Read()

	typ := gsla.TypeOf(gsla.TypeIDFor[T]())
	key := accel.CacheKey{
		Source:      "vxm_masked.count_collect_reduce",
		Defines:     []string{typ.KernelName},
		TypeName:    typ.KernelName,
		OpFragments: []string{p.Add.Src, p.Mul.Src},
	}
	if _, err := rt.Cache.Build(key, func(k accel.CacheKey) (*accel.Program, error) {
		return &accel.Program{Key: k, Body: k.Source + "<" + k.TypeName + ">(" + strings.Join(k.OpFragments, ",") + ")"}, nil
	}); err != nil {
		return err
	}

	groups, _ := accel.LaunchGeometry(len(xKeys), rt.DefaultWorkgroupSize())

	rt.Queue.Submit(func() {
		_ = rt.Queue.Temp(groups)

		counts := make(map[int]int)
		for _, row := range xKeys {
			s, e := indptr[row], indptr[row+1]
			for k := s; k < e; k++ {
				counts[indices[k]]++
			}
		}
		buckets := make(map[int][]T, len(counts))
		for col, n := range counts {
			buckets[col] = make([]T, 0, n)
		}
		for ri, row := range xKeys {
			xv := xVals[ri]
			s, e := indptr[row], indptr[row+1]
			for k := s; k < e; k++ {
				col := indices[k]
				buckets[col] = append(buckets[col], p.Mul.Fn(xv, values[k]))
			}
		}
		cols := make([]int, 0, len(buckets))
		for col := range buckets {
			cols = append(cols, col)
		}
		sort.Ints(cols)
		for _, col := range cols {
			if task.HasMask && !p.Pred.Fn(p.Mask.Get(col)) {
				continue
			}
			vals := buckets[col]
			acc := vals[0]
			for _, v := range vals[1:] {
				acc = p.Add.Fn(acc, v)
			}
			p.Result.Set(col, acc)
		}
	})
	return nil
}

// Register installs the vxm_masked accelerator variant followed by the
// CPU fallback for element type T.
func Register[T gsla.Numeric](reg *dispatch.Registry) {
	id := int(gsla.TypeIDFor[T]())
	reg.Register(dispatch.VxmMasked, id, countCollectReduceAccelerator[T]{})
	reg.Register(dispatch.VxmMasked, id, countCollectReduce[T]{})
}

// Submit dispatches a masked vxm against the process-wide registry.
func Submit[T gsla.Numeric](x *gsla.Vector[T], mat *gsla.Matrix[T], mask, result *gsla.Vector[T], pred gsla.OpSelect[T], add, mul gsla.OpBinary[T, T, T]) gsla.Status {
	task := &dispatch.Task{
		Tag:     dispatch.VxmMasked,
		TypeID:  int(gsla.TypeIDFor[T]()),
		HasMask: mask != nil,
		Payload: &Payload[T]{X: x, Mat: mat, Mask: mask, Result: result, Pred: pred, Add: add, Mul: mul},
	}
	err := gsla.Registry().Execute(task, gsla.ForceNoAcceleration())
	if err == nil {
		return gsla.Ok
	}
	if _, ok := err.(*dispatch.ErrNotImplemented); ok {
		return gsla.NotImplemented
	}
	return gsla.Error
}
