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

package gsla

import "github.com/ajroetker/gsla/internal/dispatch"

// Descriptor carries optional, implementation-advisory hints that an
// operation's caller can attach to a submission. Most of these flags only
// influence which registered algorithm variant the dispatcher prefers;
// EarlyExit also changes mxv_masked's per-row results, since each row's
// reduction stops at its first non-fill product.
type Descriptor struct {
	// PushOnly, PullOnly and PushPull are traversal-mode hints for
	// frontier-style algorithms. The original source's push-pull
	// heuristics were never fully wired; treat these as advisory only
	// (spec.md Open Questions).
	PushOnly bool
	PullOnly bool
	PushPull bool

	// FrontFactor and DiscoveredFactor are non-power-of-two tuning knobs
	// whose effect on sparse/dense variant selection is implementation
	// defined (spec.md Open Questions); the flag surface is preserved so
	// callers that set them are not rejected.
	FrontFactor      float32
	DiscoveredFactor float32

	// EarlyExit permits a row-serial kernel to stop at the first
	// non-fill contribution instead of visiting every entry in the row.
	EarlyExit bool

	// StructOnly is copied onto the task by ApplyTo. No registered
	// algorithm reads it: results are computed from stored values either
	// way.
	StructOnly bool

	// MaskSparse hints that the accompanying mask admits few rows/columns,
	// favoring a variant that compacts the admitted set up front instead of
	// branching on the mask inside the hot loop (e.g. mxv_masked's
	// "configured scalar" variant).
	MaskSparse bool
}

// ApplyTo copies this descriptor's dispatch-relevant hints onto a task,
// letting a kernel's Submit function build one Descriptor instead of
// threading individual bool parameters through its signature.
func (d Descriptor) ApplyTo(task *dispatch.Task) {
	task.EarlyExit = d.EarlyExit
	task.StructOnly = d.StructOnly
	task.MaskSparse = d.MaskSparse
}
