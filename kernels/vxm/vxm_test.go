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

package vxm

import (
	"testing"

	"github.com/ajroetker/gsla"
	"github.com/ajroetker/gsla/internal/dispatch"
)

func TestVxmMaskedBasic(t *testing.T) {
	reg := dispatch.NewRegistry()
	Register[int32](reg)

	// x = [1, 2, 0], A = [[1 0 2] [0 3 0] [4 0 5]]
	// y = x^T * A = [1*1+2*0, 1*0+2*3, 1*2+2*0] = [1, 6, 2]
	m := gsla.NewMatrix[int32](3, 3)
	m.Build([]int{0, 0, 1, 2, 2}, []int{0, 2, 1, 0, 2}, []int32{1, 2, 3, 4, 5})
	x := gsla.NewVector[int32](3)
	x.Build([]int{0, 1}, []int32{1, 2})
	result := gsla.NewVector[int32](3)

	task := &dispatch.Task{
		Tag:    dispatch.VxmMasked,
		TypeID: int(gsla.TypeIDFor[int32]()),
		Payload: &Payload[int32]{
			X: x, Mat: m, Result: result,
			Add: gsla.Plus[int32](), Mul: gsla.Mult[int32](),
		},
	}
	if err := reg.Execute(task, false); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := map[int]int32{0: 1, 1: 6, 2: 2}
	for col, w := range want {
		if got := result.Get(col); got != w {
			t.Errorf("result[%d] = %d, want %d", col, got, w)
		}
	}
}

func TestVxmMaskedRejectsColumns(t *testing.T) {
	reg := dispatch.NewRegistry()
	Register[int32](reg)

	m := gsla.NewMatrix[int32](2, 2)
	m.Build([]int{0, 1}, []int{0, 1}, []int32{2, 3})
	x := gsla.NewVector[int32](2)
	x.Build([]int{0, 1}, []int32{1, 1})
	result := gsla.NewVector[int32](2)
	result.SetFill(-1)
	mask := gsla.NewVector[int32](2)
	mask.Build([]int{0}, []int32{1})

	task := &dispatch.Task{
		Tag: dispatch.VxmMasked, TypeID: int(gsla.TypeIDFor[int32]()), HasMask: true,
		Payload: &Payload[int32]{
			X: x, Mat: m, Mask: mask, Result: result,
			Pred: gsla.NqZero[int32](), Add: gsla.Plus[int32](), Mul: gsla.Mult[int32](),
		},
	}
	if err := reg.Execute(task, false); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := result.Get(0); got != 2 {
		t.Errorf("result[0] = %d, want 2", got)
	}
	if got := result.Get(1); got != -1 {
		t.Errorf("result[1] = %d, want untouched fill -1", got)
	}
}
