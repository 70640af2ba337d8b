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

package ops

import (
	"testing"

	"github.com/ajroetker/gsla"
	"github.com/ajroetker/gsla/internal/dispatch"
	"github.com/stretchr/testify/require"
)

func newReg() *dispatch.Registry {
	reg := dispatch.NewRegistry()
	RegisterMap[int32, int32](reg)
	RegisterReduce[int32](reg)
	RegisterAssignMasked[int32](reg)
	RegisterCountMf[int32](reg)
	RegisterMReduce[int32](reg)
	RegisterTranspose[int32](reg)
	RegisterMxm[int32](reg)
	RegisterMxmTMasked[int32](reg)
	RegisterKron[int32](reg)
	return reg
}

func TestVMap(t *testing.T) {
	reg := newReg()
	src := gsla.NewVector[int32](3)
	src.Build([]int{0, 1, 2}, []int32{1, 2, 3})
	result := gsla.NewVector[int32](3)
	task := &dispatch.Task{Tag: dispatch.VMap, TypeID: int(gsla.TypeIDFor[int32]()), Payload: &MapPayload[int32, int32]{Src: src, Result: result, Op: gsla.Ainv[int32]()}}
	require.NoError(t, reg.Execute(task, false))
	require.Equal(t, int32(-2), result.Get(1))
}

func TestVReduce(t *testing.T) {
	reg := newReg()
	src := gsla.NewVector[int32](3)
	src.Build([]int{0, 1, 2}, []int32{1, 2, 3})
	result := gsla.NewScalar[int32]()
	task := &dispatch.Task{Tag: dispatch.VReduce, TypeID: int(gsla.TypeIDFor[int32]()), Payload: &ReducePayload[int32]{Src: src, Result: result, Op: gsla.Plus[int32]()}}
	require.NoError(t, reg.Execute(task, false))
	require.Equal(t, int32(6), result.Get())
}

func TestVCountMf(t *testing.T) {
	reg := newReg()
	src := gsla.NewVector[int32](4)
	src.Build([]int{0, 1, 2, 3}, []int32{-1, 2, -3, 4})
	result := gsla.NewScalar[int32]()
	task := &dispatch.Task{Tag: dispatch.VCountMf, TypeID: int(gsla.TypeIDFor[int32]()), Payload: &CountMfPayload[int32]{Src: src, Pred: gsla.GtZero[int32](), Result: result}}
	require.NoError(t, reg.Execute(task, false))
	require.Equal(t, int32(2), result.Get())
}

func TestMTranspose(t *testing.T) {
	reg := newReg()
	m := gsla.NewMatrix[int32](2, 3)
	m.Build([]int{0, 1}, []int{2, 0}, []int32{7, 9})
	result := gsla.NewMatrix[int32](3, 2)
	task := &dispatch.Task{Tag: dispatch.MTranspose, TypeID: int(gsla.TypeIDFor[int32]()), Payload: &TransposePayload[int32]{Src: m, Result: result, Op: gsla.Identity[int32]()}}
	require.NoError(t, reg.Execute(task, false))
	require.Equal(t, int32(7), result.Get(2, 0))
	require.Equal(t, int32(9), result.Get(0, 1))
}

func TestMTransposeWithAinv(t *testing.T) {
	reg := newReg()
	m := gsla.NewMatrix[int32](2, 3)
	m.Build([]int{0, 1}, []int{2, 0}, []int32{7, 9})
	result := gsla.NewMatrix[int32](3, 2)
	task := &dispatch.Task{Tag: dispatch.MTranspose, TypeID: int(gsla.TypeIDFor[int32]()), Payload: &TransposePayload[int32]{Src: m, Result: result, Op: gsla.Ainv[int32]()}}
	require.NoError(t, reg.Execute(task, false))
	require.Equal(t, int32(-7), result.Get(2, 0))
	require.Equal(t, int32(-9), result.Get(0, 1))
}

func TestVAssignMasked(t *testing.T) {
	reg := newReg()
	dst := gsla.NewVector[int32](4)
	for i := 0; i < 4; i++ {
		dst.Set(i, int32(i+1))
	}
	mask := gsla.NewVector[int32](4)
	mask.Build([]int{0, 1, 2, 3}, []int32{1, 0, 1, 0})
	task := &dispatch.Task{
		Tag: dispatch.VAssignMasked, TypeID: int(gsla.TypeIDFor[int32]()),
		Payload: &AssignMaskedPayload[int32]{Dst: dst, Value: -5, Mask: mask, Pred: gsla.NqZero[int32](), Op: gsla.Second[int32]()},
	}
	require.NoError(t, reg.Execute(task, false))
	require.Equal(t, int32(-5), dst.Get(0))
	require.Equal(t, int32(2), dst.Get(1))
	require.Equal(t, int32(-5), dst.Get(2))
	require.Equal(t, int32(4), dst.Get(3))
}

func TestMxmIdentity(t *testing.T) {
	reg := newReg()
	a := gsla.NewMatrix[int32](2, 2)
	a.Build([]int{0, 1}, []int{0, 1}, []int32{1, 1}) // identity
	b := gsla.NewMatrix[int32](2, 2)
	b.Build([]int{0, 0, 1}, []int{0, 1, 1}, []int32{2, 3, 4})
	result := gsla.NewMatrix[int32](2, 2)
	task := &dispatch.Task{Tag: dispatch.Mxm, TypeID: int(gsla.TypeIDFor[int32]()), Payload: &MxmPayload[int32]{A: a, B: b, Result: result, Add: gsla.Plus[int32](), Mul: gsla.Mult[int32]()}}
	require.NoError(t, reg.Execute(task, false))
	require.Equal(t, int32(2), result.Get(0, 0))
	require.Equal(t, int32(3), result.Get(0, 1))
	require.Equal(t, int32(4), result.Get(1, 1))
}

func TestKronProduct(t *testing.T) {
	reg := newReg()
	a := gsla.NewMatrix[int32](1, 1)
	a.Build([]int{0}, []int{0}, []int32{2})
	b := gsla.NewMatrix[int32](2, 2)
	b.Build([]int{0, 1}, []int{0, 1}, []int32{3, 5})
	result := gsla.NewMatrix[int32](2, 2)
	task := &dispatch.Task{Tag: dispatch.Kron, TypeID: int(gsla.TypeIDFor[int32]()), Payload: &KronPayload[int32]{A: a, B: b, Result: result, Mul: gsla.Mult[int32]()}}
	require.NoError(t, reg.Execute(task, false))
	require.Equal(t, int32(6), result.Get(0, 0))
	require.Equal(t, int32(10), result.Get(1, 1))
}
