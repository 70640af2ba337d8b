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

// Package gsla provides a GraphBLAS-style programming model for sparse,
// graph-shaped linear algebra over a fixed set of numeric element types.
//
// Algorithms are expressed as sequences of semiring operations over sparse
// vectors and matrices: masked matrix-vector products, element-wise adds
// with feedback, reductions, and masked assignments. Every operation is
// routed through a dispatcher (package gsla/internal/dispatch) that walks a
// priority-ordered list of registered implementations and runs the first
// one whose CanExecute predicate accepts the task. For the representative
// kernels (mxv_masked, vxm_masked, v_eadd, reduce-by-key) that list leads
// with a simulated-accelerator implementation (package gsla/internal/accel)
// reading the device-mirror storage formats, falling back to a reference
// CPU implementation whenever no accelerator runtime is configured or
// force_no_acceleration is set.
//
// Basic usage:
//
//	kernels.RegisterDefaults(gsla.Registry())
//
//	a := gsla.NewMatrix[int32](4, 5)
//	a.Set(0, 1, 7)
//	v := gsla.NewVector[int32](5)
//	v.Build([]int{0, 1, 2, 3, 4}, []int32{3, 0, 3, 0, -1})
//	r := gsla.NewVector[int32](4)
//
//	status := mxv.Submit(a, v, nil, r, gsla.OpSelect[int32]{}, gsla.PlusInt32(), gsla.MultInt32(), gsla.Descriptor{})
package gsla
