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

package eadd

import (
	"testing"

	"github.com/ajroetker/gsla"
	"github.com/ajroetker/gsla/internal/dispatch"
)

func TestVEaddUnion(t *testing.T) {
	reg := dispatch.NewRegistry()
	Register[int32](reg)

	a := gsla.NewVector[int32](4)
	a.Build([]int{0, 1}, []int32{10, 20})
	b := gsla.NewVector[int32](4)
	b.Build([]int{1, 2}, []int32{1, 2})
	result := gsla.NewVector[int32](4)

	task := &dispatch.Task{
		Tag: dispatch.VEadd, TypeID: int(gsla.TypeIDFor[int32]()),
		Payload: &Payload[int32]{A: a, B: b, Result: result, Op: gsla.Plus[int32]()},
	}
	if err := reg.Execute(task, false); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := map[int]int32{0: 10, 1: 21, 2: 2}
	for k, w := range want {
		if got := result.Get(k); got != w {
			t.Errorf("result[%d] = %d, want %d", k, got, w)
		}
	}
}

func TestVEaddFdbAccumulates(t *testing.T) {
	reg := dispatch.NewRegistry()
	Register[int32](reg)

	result := gsla.NewVector[int32](3)
	result.Build([]int{0, 1}, []int32{1, 2})
	b := gsla.NewVector[int32](3)
	b.Build([]int{0, 1}, []int32{10, 20})
	fdb := gsla.NewVector[int32](3)

	task := &dispatch.Task{
		Tag: dispatch.VEaddFdb, TypeID: int(gsla.TypeIDFor[int32]()),
		Payload: &FdbPayload[int32]{Result: result, B: b, Fdb: fdb, Op: gsla.Plus[int32]()},
	}
	if err := reg.Execute(task, false); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := result.Get(0); got != 11 {
		t.Errorf("result[0] = %d, want 11", got)
	}
	if got := result.Get(1); got != 22 {
		t.Errorf("result[1] = %d, want 22", got)
	}
	if got := fdb.Get(0); got != 11 {
		t.Errorf("fdb[0] = %d, want 11 (changed)", got)
	}
	if got := fdb.Get(1); got != 22 {
		t.Errorf("fdb[1] = %d, want 22 (changed)", got)
	}
	if got := fdb.Get(2); got != fdb.Fill() {
		t.Errorf("fdb[2] = %d, want fill (untouched by B)", got)
	}
}

func TestVEaddFdbClearsUnchangedEntries(t *testing.T) {
	reg := dispatch.NewRegistry()
	Register[int32](reg)

	// MIN_INT semantics (spec.md's feedback-vector scenario): result holds
	// 5 everywhere; B supplies values at a handful of indices; only the
	// indices where MIN(5, b) < 5 actually change, and only those survive
	// into fdb.
	n := 6
	result := gsla.NewVector[int32](n)
	for i := 0; i < n; i++ {
		result.Set(i, 5)
	}
	b := gsla.NewVector[int32](n)
	b.Build([]int{0, 2, 3}, []int32{8, 4, 7}) // only index 2 (4 < 5) changes
	fdb := gsla.NewVector[int32](n)

	task := &dispatch.Task{
		Tag: dispatch.VEaddFdb, TypeID: int(gsla.TypeIDFor[int32]()),
		Payload: &FdbPayload[int32]{Result: result, B: b, Fdb: fdb, Op: gsla.Min[int32]()},
	}
	if err := reg.Execute(task, false); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := result.Get(0); got != 5 {
		t.Errorf("result[0] = %d, want 5 (MIN(5,8)=5, unchanged)", got)
	}
	if got := result.Get(2); got != 4 {
		t.Errorf("result[2] = %d, want 4 (MIN(5,4)=4, changed)", got)
	}
	if got := fdb.Get(0); got != fdb.Fill() {
		t.Errorf("fdb[0] = %d, want fill (unchanged entry clears fdb)", got)
	}
	if got := fdb.Get(2); got != 4 {
		t.Errorf("fdb[2] = %d, want 4 (recorded as changed)", got)
	}
	if got := fdb.Get(3); got != fdb.Fill() {
		t.Errorf("fdb[3] = %d, want fill (MIN(5,7)=5, unchanged)", got)
	}
}
