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

// Package reduceby implements reduce-by-key, spec.md's fourth
// representative kernel: given parallel (key, value) arrays, combine
// every run of equal adjacent keys into one (key, reduced value) pair.
// The algorithm is a segmented inclusive scan, grounded on
// hwy/contrib/algo/prefix_sum_base.go's BasePrefixSum carry-propagation
// loop: BasePrefixSum carries a running sum across the whole array, while
// this one resets the carry to the operator's fresh value whenever the key
// changes, the scalar generalisation of a segmented scan that
// BasePrefixSumVec already hints at (per-lane partial sums combined by
// explicit shift-and-add steps).
package reduceby

import (
	"sort"
	"strings"

	"github.com/ajroetker/gsla"
	"github.com/ajroetker/gsla/internal/accel"
	"github.com/ajroetker/gsla/internal/dispatch"
)

// Payload carries the operands for m_reduce_by_row / m_reduce_by_column:
// Keys and Values are parallel input arrays (need not arrive pre-sorted —
// the algorithm stable-sorts by key first), Op combines values sharing a
// key, and OutKeys/OutValues receive the compacted result.
type Payload[T gsla.Numeric] struct {
	Keys      []int
	Values    []T
	Op        gsla.OpBinary[T, T, T]
	OutKeys   *[]int
	OutValues *[]T
}

// Reduce performs the segmented scan directly, independent of the
// dispatch registry, so kernels with a fixed-shape reduction (e.g. a
// matrix's per-row reduce) can call it without constructing a Task.
func Reduce[T gsla.Numeric](keys []int, values []T, op gsla.OpBinary[T, T, T]) ([]int, []T) {
	n := len(keys)
	if n == 0 {
		return nil, nil
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })

	outKeys := make([]int, 0, n)
	outValues := make([]T, 0, n)

	carry := values[order[0]]
	carryKey := keys[order[0]]
	for i := 1; i < n; i++ {
		idx := order[i]
		k := keys[idx]
		if k == carryKey {
			carry = op.Fn(carry, values[idx])
			continue
		}
		outKeys = append(outKeys, carryKey)
		outValues = append(outValues, carry)
		carryKey = k
		carry = values[idx]
	}
	outKeys = append(outKeys, carryKey)
	outValues = append(outValues, carry)
	return outKeys, outValues
}

type segmentedScan[T gsla.Numeric] struct{}

func (segmentedScan[T]) Name() string              { return "reduce_by_key/segmented_scan" }
func (segmentedScan[T]) Backend() dispatch.Backend { return dispatch.CPU }

func (segmentedScan[T]) CanExecute(task *dispatch.Task) bool {
	return task.Tag == dispatch.MReduceByRow || task.Tag == dispatch.MReduceByColumn
}

func (segmentedScan[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*Payload[T])
	k, v := Reduce(p.Keys, p.Values, p.Op)
	*p.OutKeys = k
	*p.OutValues = v
	return nil
}

// segmentedScanAccelerator is the simulated-accelerator reduce-by-key
// variant: it runs the identical segmented scan, but only after compiling
// and caching a kernel program keyed on Op's source fragment and routing
// execution through accel.Queue.Submit with a launch geometry sized from
// the key count, exactly as a real device-resident segmented-scan kernel
// would be launched and cached.
type segmentedScanAccelerator[T gsla.Numeric] struct{}

func (segmentedScanAccelerator[T]) Name() string {
	return "reduce_by_key/segmented_scan_accelerator"
}
func (segmentedScanAccelerator[T]) Backend() dispatch.Backend { return dispatch.Accelerator }

func (segmentedScanAccelerator[T]) CanExecute(task *dispatch.Task) bool {
	return (task.Tag == dispatch.MReduceByRow || task.Tag == dispatch.MReduceByColumn) && gsla.Runtime() != nil
}

func (segmentedScanAccelerator[T]) Execute(task *dispatch.Task) error {
	p := task.Payload.(*Payload[T])
	rt := gsla.Runtime()

	typ := gsla.TypeOf(gsla.TypeIDFor[T]())
	key := accel.CacheKey{
		Source:      "reduce_by_key.segmented_scan",
		Defines:     []string{typ.KernelName},
		TypeName:    typ.KernelName,
		OpFragments: []string{p.Op.Src},
	}
	if _, err := rt.Cache.Build(key, func(k accel.CacheKey) (*accel.Program, error) {
		return &accel.Program{Key: k, Body: k.Source + "<" + k.TypeName + ">(" + strings.Join(k.OpFragments, ",") + ")"}, nil
	}); err != nil {
		return err
	}

	groups, _ := accel.LaunchGeometry(len(p.Keys), rt.DefaultWorkgroupSize())
	rt.Queue.Submit(func() {
		_ = rt.Queue.Temp(groups)
		k, v := Reduce(p.Keys, p.Values, p.Op)
		*p.OutKeys = k
		*p.OutValues = v
	})
	return nil
}

// Register installs the reduce-by-key accelerator variant followed by the
// CPU algorithm, shared by the m_reduce_by_row and m_reduce_by_column
// operation tags (they differ only in whether the caller fed row or
// column indices as Keys).
func Register[T gsla.Numeric](reg *dispatch.Registry) {
	id := int(gsla.TypeIDFor[T]())
	reg.Register(dispatch.MReduceByRow, id, segmentedScanAccelerator[T]{})
	reg.Register(dispatch.MReduceByRow, id, segmentedScan[T]{})
	reg.Register(dispatch.MReduceByColumn, id, segmentedScanAccelerator[T]{})
	reg.Register(dispatch.MReduceByColumn, id, segmentedScan[T]{})
}

// Submit dispatches m_reduce_by_row or m_reduce_by_column against the
// process-wide registry, depending on byColumn.
func Submit[T gsla.Numeric](keys []int, values []T, op gsla.OpBinary[T, T, T], byColumn bool) ([]int, []T, gsla.Status) {
	var outKeys []int
	var outValues []T
	tag := dispatch.MReduceByRow
	if byColumn {
		tag = dispatch.MReduceByColumn
	}
	task := &dispatch.Task{
		Tag:     tag,
		TypeID:  int(gsla.TypeIDFor[T]()),
		Payload: &Payload[T]{Keys: keys, Values: values, Op: op, OutKeys: &outKeys, OutValues: &outValues},
	}
	err := gsla.Registry().Execute(task, gsla.ForceNoAcceleration())
	if err == nil {
		return outKeys, outValues, gsla.Ok
	}
	if _, ok := err.(*dispatch.ErrNotImplemented); ok {
		return nil, nil, gsla.NotImplemented
	}
	return nil, nil, gsla.Error
}
