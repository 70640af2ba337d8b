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

package accel

import "golang.org/x/sys/cpu"

// HostWideSIMD reports whether the current CPU exposes wide vector execution
// (AVX2 on amd64), mirroring the feature probe the teacher's
// dispatch_amd64.go runs before selecting a SIMD-level implementation. The
// CPU fallback kernels use this to favour fewer, larger row-per-warp chunks
// on hosts that can churn through a dense dot product faster per goroutine,
// rather than hard-coding a single chunk size for every machine.
func HostWideSIMD() bool {
	return cpu.X86.HasAVX2
}

// WarpsPerGroup is the number of cooperating wavefronts packed into one
// workgroup for the row-per-warp mxv_masked variant. Wider wavefronts
// (AMD) are grouped more tightly to keep the workgroup size in a similar
// ballpark across vendors.
func WarpsPerGroup(v Vendor) int {
	switch v {
	case VendorAMD:
		return 2
	case VendorNVIDIA:
		return 4
	case VendorIntel:
		return 8
	default:
		return 4
	}
}

// DefaultWorkgroupSize returns the vendor's preferred total workgroup size
// (wavefront size times warps-per-group), used by kernels that don't need
// a custom launch geometry.
func (r *Runtime) DefaultWorkgroupSize() int {
	v := r.Device.Vendor
	return v.WavefrontSize() * WarpsPerGroup(v)
}
