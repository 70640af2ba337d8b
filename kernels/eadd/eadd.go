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

// Package eadd implements element-wise vector addition and its feedback
// variant, spec.md's third representative kernel. Both algorithms are a
// single coordinate-wise scalar loop: v_eadd over the union of two sparse
// key sets, v_eadd_fdb over the second operand's keys only. Both are
// grounded on hwy/ops_base.go's scalar fallback operators (Add,
// Mul, ...): every SIMD-specialised file ultimately has to agree with
// that plain scalar loop, so it is the natural shape for a sparse,
// non-SIMD coordinate-wise kernel.
package eadd

import (
	"strings"

	"github.com/ajroetker/gsla"
	"github.com/ajroetker/gsla/internal/accel"
	"github.com/ajroetker/gsla/internal/dispatch"
)

// Payload carries the operands for v_eadd: Result[i] = Op(A[i], B[i])
// over the union of A's and B's stored coordinates (spec.md §6: eadd is
// not restricted to the intersection — an absent side contributes its
// fill value).
type Payload[T gsla.Numeric] struct {
	A, B   *gsla.Vector[T]
	Result *gsla.Vector[T]
	Op     gsla.OpBinary[T, T, T]
}

// FdbPayload carries the operands for v_eadd_fdb: like Payload, but the
// destination is also a source — r'[i] = Op(r[i], B[i]) — and every index
// where the value actually changed is recorded into Fdb, the "newly
// discovered" companion vector frontier-style graph kernels read back
// (spec.md §4.5.3): Fdb[i] = r'[i] when r'[i] != r[i] and r'[i] != fill,
// else Fdb[i] is cleared to its fill value.
type FdbPayload[T gsla.Numeric] struct {
	Result *gsla.Vector[T]
	B      *gsla.Vector[T]
	Fdb    *gsla.Vector[T]
	Op     gsla.OpBinary[T, T, T]
}

func unionKeys[T gsla.Numeric](a, b *gsla.Vector[T]) []int {
	seen := make(map[int]struct{})
	var keys []int
	add := func(idx []int) {
		for _, k := range idx {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	ak, _ := a.Read()
	bk, _ := b.Read()
	add(ak)
	add(bk)
	return keys
}

// scalarLoop visits every key in the union once, unconditionally — like
// v_map, it has no per-row reduction for EarlyExit to shortcut, so it
// ignores task.EarlyExit.
type scalarLoop[T gsla.Numeric] struct{}

func (scalarLoop[T]) Name() string              { return "v_eadd/scalar_loop" }
func (scalarLoop[T]) Backend() dispatch.Backend { return dispatch.CPU }

func (scalarLoop[T]) CanExecute(task *dispatch.Task) bool { return task.Tag == dispatch.VEadd }

func (scalarLoop[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*Payload[T])
	for _, k := range unionKeys(p.A, p.B) {
		p.Result.Set(k, p.Op.Fn(p.A.Get(k), p.B.Get(k)))
	}
	return nil
}

type scalarLoopFdb[T gsla.Numeric] struct{}

func (scalarLoopFdb[T]) Name() string              { return "v_eadd_fdb/scalar_loop" }
func (scalarLoopFdb[T]) Backend() dispatch.Backend { return dispatch.CPU }

func (scalarLoopFdb[T]) CanExecute(task *dispatch.Task) bool { return task.Tag == dispatch.VEaddFdb }

func (scalarLoopFdb[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*FdbPayload[T])
	bk, _ := p.B.Read()
	for _, k := range bk {
		prev := p.Result.Get(k)
		next := p.Op.Fn(prev, p.B.Get(k))
		if next != prev && next != p.Fdb.Fill() {
			p.Fdb.Set(k, next)
		} else {
			p.Fdb.Set(k, p.Fdb.Fill())
		}
		p.Result.Set(k, next)
	}
	return nil
}

// scalarLoopAccelerator is the simulated-accelerator v_eadd variant: it
// compiles and caches a kernel program keyed on Op's source fragment,
// sizes a launch geometry from the union key count, and combines the two
// device-mirror dense arrays (Vector.AccDense) inside accel.Queue.Submit.
type scalarLoopAccelerator[T gsla.Numeric] struct{}

func (scalarLoopAccelerator[T]) Name() string              { return "v_eadd/scalar_loop_accelerator" }
func (scalarLoopAccelerator[T]) Backend() dispatch.Backend { return dispatch.Accelerator }

func (scalarLoopAccelerator[T]) CanExecute(task *dispatch.Task) bool {
	return task.Tag == dispatch.VEadd && gsla.Runtime() != nil
}

func (scalarLoopAccelerator[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*Payload[T])
	rt := gsla.Runtime()
	a := p.A.AccDense()
	b := p.B.AccDense()
	keys := unionKeys(p.A, p.B)

	typ := gsla.TypeOf(gsla.TypeIDFor[T]())
	ckey := accel.CacheKey{
		Source:      "v_eadd.scalar_loop",
		Defines:     []string{typ.KernelName},
		TypeName:    typ.KernelName,
		OpFragments: []string{p.Op.Src},
	}
	if _, err := rt.Cache.Build(ckey, func(k accel.CacheKey) (*accel.Program, error) {
		return &accel.Program{Key: k, Body: k.Source + "<" + k.TypeName + ">(" + strings.Join(k.OpFragments, ",") + ")"}, nil
	}); err != nil {
		return err
	}

	groups, threadsPerGroup := accel.LaunchGeometry(len(keys), rt.DefaultWorkgroupSize())
	rt.Queue.Submit(func() {
		_ = rt.Queue.Temp(groups * threadsPerGroup)
		for _, k := range keys {
			p.Result.Set(k, p.Op.Fn(a[k], b[k]))
		}
	})
	return nil
}

// Register installs the v_eadd accelerator variant and CPU fallback, then
// the v_eadd_fdb CPU algorithm, for element type T.
func Register[T gsla.Numeric](reg *dispatch.Registry) {
	id := int(gsla.TypeIDFor[T]())
	reg.Register(dispatch.VEadd, id, scalarLoopAccelerator[T]{})
	reg.Register(dispatch.VEadd, id, scalarLoop[T]{})
	reg.Register(dispatch.VEaddFdb, id, scalarLoopFdb[T]{})
}

// Submit dispatches v_eadd against the process-wide registry.
func Submit[T gsla.Numeric](a, b, result *gsla.Vector[T], op gsla.OpBinary[T, T, T]) gsla.Status {
	task := &dispatch.Task{
		Tag:     dispatch.VEadd,
		TypeID:  int(gsla.TypeIDFor[T]()),
		Payload: &Payload[T]{A: a, B: b, Result: result, Op: op},
	}
	return execStatus(gsla.Registry().Execute(task, gsla.ForceNoAcceleration()))
}

// SubmitFdb dispatches v_eadd_fdb (Result[i] = Op(Result[i], B[i]), with
// Fdb recording which indices changed and to what) against the
// process-wide registry.
func SubmitFdb[T gsla.Numeric](result, b, fdb *gsla.Vector[T], op gsla.OpBinary[T, T, T]) gsla.Status {
	task := &dispatch.Task{
		Tag:     dispatch.VEaddFdb,
		TypeID:  int(gsla.TypeIDFor[T]()),
		Payload: &FdbPayload[T]{Result: result, B: b, Fdb: fdb, Op: op},
	}
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
