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

// Package mxv implements masked sparse-matrix by dense-vector product,
// spec.md's first representative kernel. Three CPU algorithm variants are
// registered per element type, generalising the row-per-warp /
// row-per-thread split that hwy/contrib/matvec/matvec_base.go draws
// between its SIMD-lane loop and its scalar tail, plus a third variant
// that pre-compacts the mask before the row loop, generalising
// hwy/contrib/sort/compress_partition_base.go's partition-by-predicate
// idea from a sort primitive into a row-selection pre-pass.
package mxv

import (
	"runtime"
	"strings"

	"github.com/ajroetker/gsla"
	"github.com/ajroetker/gsla/internal/accel"
	"github.com/ajroetker/gsla/internal/dispatch"
	"golang.org/x/sync/errgroup"
)

// Payload carries the operands for one mxv_masked dispatch. result[i] is
// written only for rows the mask admits; rows the mask rejects are left
// untouched. dispatch.Task.StructOnly is not consulted by these variants:
// admitted rows always get their computed value.
type Payload[T gsla.Numeric] struct {
	Mat    *gsla.Matrix[T]
	X      *gsla.Vector[T]
	Mask   *gsla.Vector[T]
	Result *gsla.Vector[T]
	Pred   gsla.OpSelect[T]
	Add    gsla.OpBinary[T, T, T]
	Mul    gsla.OpBinary[T, T, T]
}

// rowAdmitted reports whether row i passes the mask predicate. An absent
// mask (HasMask=false at the Task level) is handled by the caller not
// invoking this at all — CanExecute always sees HasMask correctly set.
func rowAdmitted[T gsla.Numeric](mask *gsla.Vector[T], pred gsla.OpSelect[T], i int) bool {
	return pred.Fn(mask.Get(i))
}

// dot reduces one row's (indices, values) against x through (add, mul).
// earlyExit implements descriptor.go's EarlyExit: stop accumulating as soon
// as one non-fill contribution has been folded in, rather than walking the
// whole row — a per-row reduction shortcut, not a way to skip later rows.
func dot[T gsla.Numeric](indices []int, values []T, x *gsla.Vector[T], add, mul gsla.OpBinary[T, T, T], earlyExit bool, fill T) T {
	var acc T
	first := true
	for k, col := range indices {
		prod := mul.Fn(values[k], x.Get(col))
		if first {
			acc = prod
			first = false
		} else {
			acc = add.Fn(acc, prod)
		}
		if earlyExit && prod != fill {
			break
		}
	}
	return acc
}

// rowPerThread is the default, simplest CPU variant: one sequential loop in
// the calling goroutine over every row, each row an independent dot product.
// Grounded on BaseMatVec's per-row loop in matvec_base.go, generalised
// from a dense SIMD-lane dot product to a sparse CSR row walk plus an
// arbitrary semiring (add, mul) instead of fixed (+, *).
type rowPerThread[T gsla.Numeric] struct{}

func (rowPerThread[T]) Name() string           { return "mxv_masked/row_per_thread" }
func (rowPerThread[T]) Backend() dispatch.Backend { return dispatch.CPU }

func (rowPerThread[T]) CanExecute(task *dispatch.Task) bool {
	return task.Tag == dispatch.MxvMasked
}

func (rowPerThread[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*Payload[T])
	indptr, indices, values := p.Mat.CSR()
	rows := p.Mat.Rows()
	for i := 0; i < rows; i++ {
		if task.HasMask && !rowAdmitted(p.Mask, p.Pred, i) {
			continue
		}
		start, end := indptr[i], indptr[i+1]
		v := dot(indices[start:end], values[start:end], p.X, p.Add, p.Mul, task.EarlyExit, p.Result.Fill())
		p.Result.Set(i, v)
	}
	return nil
}

// rowPerWarp fans rows out across an errgroup of row-range workers,
// generalising BaseMatVec's lane-parallel dot product into row-parallel
// goroutine chunks — the "vector" analogue of rowPerThread's scalar loop.
// Each chunk writes a disjoint slice of a local row buffer, so no locking is
// needed across goroutines; the buffer is copied into Result after Wait.
// errgroup.Group gives the fan-out a single
// Wait point and propagates the first panic-free error, of which this
// variant never produces one but a future variant might.
type rowPerWarp[T gsla.Numeric] struct{}

func (rowPerWarp[T]) Name() string              { return "mxv_masked/row_per_warp" }
func (rowPerWarp[T]) Backend() dispatch.Backend { return dispatch.CPU }

func (rowPerWarp[T]) CanExecute(task *dispatch.Task) bool {
	return task.Tag == dispatch.MxvMasked && !task.EarlyExit
}

func (rowPerWarp[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*Payload[T])
	indptr, indices, values := p.Mat.CSR()
	rows := p.Mat.Rows()

	workers := runtime.GOMAXPROCS(0)
	if accel.HostWideSIMD() {
		// Wide-SIMD hosts churn through each row's dot product faster, so
		// fewer, larger chunks keep goroutine overhead from dominating.
		workers /= 2
	}
	if workers > rows {
		workers = rows
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (rows + workers - 1) / workers
	fill := p.Result.Fill()
	out := make([]T, rows)
	written := make([]bool, rows)

	var g errgroup.Group
	for start := 0; start < rows; start += chunk {
		start := start
		end := start + chunk
		if end > rows {
			end = rows
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if task.HasMask && !rowAdmitted(p.Mask, p.Pred, i) {
					continue
				}
				s, e := indptr[i], indptr[i+1]
				out[i] = dot(indices[s:e], values[s:e], p.X, p.Add, p.Mul, false, fill)
				written[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, ok := range written {
		if ok {
			p.Result.Set(i, out[i])
		}
	}
	return nil
}

// configuredScalar pre-compacts the admitted row indices before the main
// loop, generalising compress_partition_base.go's predicate-partition
// trick: instead of branching on the mask inside the hot loop, the set of
// admitted rows is computed once up front. Favoured when the caller has
// hinted the mask is sparse (task.MaskSparse), since most rows are then
// skipped and a branch-per-row would waste work scanning rejected rows.
type configuredScalar[T gsla.Numeric] struct{}

func (configuredScalar[T]) Name() string              { return "mxv_masked/configured_scalar" }
func (configuredScalar[T]) Backend() dispatch.Backend { return dispatch.CPU }

func (configuredScalar[T]) CanExecute(task *dispatch.Task) bool {
	return task.Tag == dispatch.MxvMasked && task.HasMask && task.MaskSparse
}

func (configuredScalar[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*Payload[T])
	indptr, indices, values := p.Mat.CSR()
	rows := p.Mat.Rows()
	admitted := make([]int, 0, rows/4+1)
	for i := 0; i < rows; i++ {
		if rowAdmitted(p.Mask, p.Pred, i) {
			admitted = append(admitted, i)
		}
	}
	for _, i := range admitted {
		s, e := indptr[i], indptr[i+1]
		v := dot(indices[s:e], values[s:e], p.X, p.Add, p.Mul, task.EarlyExit, p.Result.Fill())
		p.Result.Set(i, v)
	}
	return nil
}

// accDot mirrors dot but reduces against the device-mirror dense array
// (Vector.AccDense) instead of calling through Vector.Get, so the
// accelerator variant below never touches the CPU-resident dense format.
func accDot[T gsla.Numeric](indices []int, values []T, x []T, add, mul gsla.OpBinary[T, T, T]) T {
	var acc T
	first := true
	for k, col := range indices {
		prod := mul.Fn(values[k], x[col])
		if first {
			acc = prod
			first = false
		} else {
			acc = add.Fn(acc, prod)
		}
	}
	return acc
}

// rowPerWarpAccelerator is the simulated-accelerator mxv_masked variant
// (spec.md §4.5.1's "row-per-warp/wavefront cooperation" shape, run here on
// the host): it compiles and caches a kernel program keyed on the
// semiring's operator fragments via accel.ProgramCache, sizes its launch
// geometry from the selected device's wavefront width via
// accel.LaunchGeometry and Runtime.DefaultWorkgroupSize, and executes one
// goroutine per simulated workgroup inside accel.Queue.Submit against the
// device-mirror CSR/dense formats (Matrix.AccCSR, Vector.AccDense), never
// the CPU-resident ones the CPU variants above read.
type rowPerWarpAccelerator[T gsla.Numeric] struct{}

func (rowPerWarpAccelerator[T]) Name() string              { return "mxv_masked/row_per_warp_accelerator" }
func (rowPerWarpAccelerator[T]) Backend() dispatch.Backend { return dispatch.Accelerator }

func (rowPerWarpAccelerator[T]) CanExecute(task *dispatch.Task) bool {
	// Defers to configuredScalar when the caller hints a sparse mask: that
	// CPU path's row pre-compaction is the better fit for mostly-rejected
	// rows, which is also why configuredScalar is registered ahead of
	// rowPerWarp.
	if task.HasMask && task.MaskSparse {
		return false
	}
	return task.Tag == dispatch.MxvMasked && !task.EarlyExit && gsla.Runtime() != nil
}

func (rowPerWarpAccelerator[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*Payload[T])
	rt := gsla.Runtime()
	indptr, indices, values := p.Mat.AccCSR()
	x := p.X.AccDense()
	rows := p.Mat.Rows()

	typ := gsla.TypeOf(gsla.TypeIDFor[T]())
	key := accel.CacheKey{
		Source:      "mxv_masked.row_per_warp",
		Defines:     []string{typ.KernelName},
		TypeName:    typ.KernelName,
		OpFragments: []string{p.Add.Src, p.Mul.Src},
	}
	if _, err := rt.Cache.Build(key, func(k accel.CacheKey) (*accel.Program, error) {
		return &accel.Program{Key: k, Body: k.Source + "<" + k.TypeName + ">(" + strings.Join(k.OpFragments, ",") + ")"}, nil
	}); err != nil {
		return err
	}

	wg := rt.DefaultWorkgroupSize()
	groups, threadsPerGroup := accel.LaunchGeometry(rows, wg)

	rt.Queue.Submit(func() {
		// One scratch slot per row, standing in for the per-workgroup
		// device buffer a real kernel launch would reserve.
		done := rt.Queue.Temp(rows)
		out := make([]T, rows)
		// The group count is clamped, so each group strides over the rows.
		stride := groups * threadsPerGroup
		var g errgroup.Group
		for gi := 0; gi < groups; gi++ {
			gi := gi
			g.Go(func() error {
				for start := gi * threadsPerGroup; start < rows; start += stride {
					end := start + threadsPerGroup
					if end > rows {
						end = rows
					}
					for i := start; i < end; i++ {
						if task.HasMask && !rowAdmitted(p.Mask, p.Pred, i) {
							continue
						}
						s, e := indptr[i], indptr[i+1]
						out[i] = accDot(indices[s:e], values[s:e], x, p.Add, p.Mul)
						done[i] = 1
					}
				}
				return nil
			})
		}
		_ = g.Wait()
		for i, d := range done {
			if d == 1 {
				p.Result.Set(i, out[i])
			}
		}
	})
	return nil
}

// Register installs the mxv_masked CPU and accelerator variants for
// element type T, in priority order: the accelerator variant first (it
// defers to the CPU path whenever no accelerator runtime is configured or
// the caller asked for EarlyExit), then a mask-aware compacting CPU pass
// (only accepted when the caller hints a sparse mask), then the parallel
// row-per-warp CPU variant, then the always-applicable row-per-thread
// fallback.
func Register[T gsla.Numeric](reg *dispatch.Registry) {
	id := int(gsla.TypeIDFor[T]())
	reg.Register(dispatch.MxvMasked, id, rowPerWarpAccelerator[T]{})
	reg.Register(dispatch.MxvMasked, id, configuredScalar[T]{})
	reg.Register(dispatch.MxvMasked, id, rowPerWarp[T]{})
	reg.Register(dispatch.MxvMasked, id, rowPerThread[T]{})
}

// Submit dispatches a masked mxv against the process-wide registry,
// selecting among the registered variants via their CanExecute
// predicates (spec.md §6's mxv_masked submit function). desc carries the
// advisory EarlyExit/MaskSparse hints described on gsla.Descriptor; its
// zero value runs every row with no early exit.
func Submit[T gsla.Numeric](mat *gsla.Matrix[T], x, mask, result *gsla.Vector[T], pred gsla.OpSelect[T], add, mul gsla.OpBinary[T, T, T], desc gsla.Descriptor) gsla.Status {
	task := &dispatch.Task{
		Tag:     dispatch.MxvMasked,
		TypeID:  int(gsla.TypeIDFor[T]()),
		HasMask: mask != nil,
		Payload: &Payload[T]{Mat: mat, X: x, Mask: mask, Result: result, Pred: pred, Add: add, Mul: mul},
	}
	desc.ApplyTo(task)
	return execStatus(gsla.Registry().Execute(task, gsla.ForceNoAcceleration()))
}

func execStatus(err error) gsla.Status {
	if err == nil {
		return gsla.Ok
	}
	if _, ok := err.(*dispatch.ErrNotImplemented); ok {
		return gsla.NotImplemented
	}
	return gsla.Error
}
