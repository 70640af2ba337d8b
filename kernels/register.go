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

// Package kernels wires every algorithm variant from kernels/mxv,
// kernels/vxm, kernels/eadd, kernels/reduceby and package ops into a
// dispatch.Registry for all three supported element types. Callers
// install the full algorithm set with kernels.RegisterDefaults(gsla.Registry()).
package kernels

import (
	"github.com/ajroetker/gsla/internal/dispatch"
	"github.com/ajroetker/gsla/kernels/eadd"
	"github.com/ajroetker/gsla/kernels/mxv"
	"github.com/ajroetker/gsla/kernels/reduceby"
	"github.com/ajroetker/gsla/kernels/vxm"
	"github.com/ajroetker/gsla/ops"
)

// RegisterDefaults registers the CPU and simulated-accelerator algorithms
// for every operation tag across int32, uint32 and float32. mxv_masked,
// vxm_masked, v_eadd and the reduce-by-key pair each get an
// Accelerator-backend variant ahead of their CPU fallbacks in priority
// order; the accelerator variant defers (via CanExecute) whenever no
// accelerator runtime is configured, so Registry.Select falls through to
// the CPU path automatically. See DESIGN.md for how each accelerator
// variant routes through internal/accel's program cache, launch geometry
// and command queue.
func RegisterDefaults(reg *dispatch.Registry) {
	mxv.Register[int32](reg)
	mxv.Register[uint32](reg)
	mxv.Register[float32](reg)

	vxm.Register[int32](reg)
	vxm.Register[uint32](reg)
	vxm.Register[float32](reg)

	eadd.Register[int32](reg)
	eadd.Register[uint32](reg)
	eadd.Register[float32](reg)

	reduceby.Register[int32](reg)
	reduceby.Register[uint32](reg)
	reduceby.Register[float32](reg)

	ops.RegisterDefaults(reg)
}
