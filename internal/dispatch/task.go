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

// Package dispatch routes a scheduled operation to one of its registered
// algorithm implementations, keyed on (operation tag, element type) and
// filtered by a per-candidate predicate over the task's descriptors. It is
// deliberately independent of package gsla's container types — kernels
// construct a Task carrying a type-erased Payload, so this package never
// imports the container layer and stays reusable for every operation tag.
package dispatch

// OpTag names one of the fifteen operation tags spec.md §6 requires a
// submit function for.
type OpTag string

const (
	MxvMasked       OpTag = "mxv_masked"
	VxmMasked       OpTag = "vxm_masked"
	VEadd           OpTag = "v_eadd"
	VEaddFdb        OpTag = "v_eadd_fdb"
	VMap            OpTag = "v_map"
	VReduce         OpTag = "v_reduce"
	VAssignMasked   OpTag = "v_assign_masked"
	VCountMf        OpTag = "v_count_mf"
	MReduceByRow    OpTag = "m_reduce_by_row"
	MReduceByColumn OpTag = "m_reduce_by_column"
	MReduce         OpTag = "m_reduce"
	MTranspose      OpTag = "m_transpose"
	Mxm             OpTag = "mxm"
	MxmTMasked      OpTag = "mxmT_masked"
	Kron            OpTag = "kron"
)

// Backend distinguishes a CPU reference algorithm from a (simulated)
// accelerator algorithm, so force_no_acceleration can filter the
// candidate list (spec.md §4.4).
type Backend int

const (
	CPU Backend = iota
	Accelerator
)

// Task is the type-erased description of one scheduled operation. Kernel
// packages populate Payload with their own argument struct; Algorithm
// implementations type-assert it back after CanExecute has approved the
// task.
type Task struct {
	Tag     OpTag
	TypeID  int
	HasMask bool
	// MaskSparse is set by the caller when the mask is known to admit few
	// rows, favoring the "configured scalar" mxv_masked variant.
	MaskSparse bool
	EarlyExit  bool
	StructOnly bool
	Payload    any
}
