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

// Package accel owns the accelerator runtime: device/vendor selection, the
// compiled-program cache, vendor-aware workgroup tuning and a single
// sequential command queue. It plays the role dispatch_amd64.go,
// dispatch_arm64.go and dispatch_other.go play for CPU SIMD level
// detection, but selects a simulated GPU vendor instead of a CPU
// microarchitecture, and the chosen property is wavefront size (8/32/64)
// rather than SIMD width.
package accel

import "strings"

// Vendor identifies the accelerator device vendor detected at runtime.
type Vendor int

const (
	VendorUnknown Vendor = iota
	VendorIntel
	VendorNVIDIA
	VendorAMD
	VendorImagination
)

func (v Vendor) String() string {
	switch v {
	case VendorIntel:
		return "Intel"
	case VendorNVIDIA:
		return "NVIDIA"
	case VendorAMD:
		return "AMD"
	case VendorImagination:
		return "Imagination"
	default:
		return "Unknown"
	}
}

// WavefrontSize returns the lockstep execution width for this vendor.
// Unknown vendors fall back to 8, matching Intel's width, per spec.md §4.3.
func (v Vendor) WavefrontSize() int {
	switch v {
	case VendorIntel:
		return 8
	case VendorNVIDIA:
		return 32
	case VendorAMD:
		return 64
	default:
		return 8
	}
}

func detectVendor(vendorString string) Vendor {
	s := strings.ToLower(vendorString)
	switch {
	case strings.Contains(s, "intel"):
		return VendorIntel
	case strings.Contains(s, "nvidia"):
		return VendorNVIDIA
	case strings.Contains(s, "amd"):
		return VendorAMD
	case strings.Contains(s, "imagination"):
		return VendorImagination
	default:
		return VendorUnknown
	}
}

// Device describes one simulated accelerator device as enumerated by a
// platform. Real OpenCL-like runtimes would populate this from the
// driver; here it is a static catalogue so the rest of the engine can be
// exercised without real hardware.
type Device struct {
	Name       string
	VendorName string
	Vendor     Vendor
}

// Platform groups the devices exposed by one accelerator driver/ICD.
type Platform struct {
	Name    string
	Devices []Device
}

// defaultPlatforms is the static enumeration used when no platform list is
// otherwise configured. Platform 0, device 0 is the library default,
// matching spec.md §4.3.
func defaultPlatforms() []Platform {
	return []Platform{
		{
			Name: "simulated-platform-0",
			Devices: []Device{
				{Name: "simulated-gpu-0", VendorName: "NVIDIA Corporation", Vendor: VendorNVIDIA},
				{Name: "simulated-gpu-1", VendorName: "Advanced Micro Devices, Inc.", Vendor: VendorAMD},
			},
		},
		{
			Name: "simulated-platform-1",
			Devices: []Device{
				{Name: "simulated-igpu-0", VendorName: "Intel(R) Corporation", Vendor: VendorIntel},
			},
		},
	}
}

// Runtime owns everything the accelerator backend needs: the selected
// device, its vendor-derived wavefront size, the program cache, and a
// single sequential command queue.
type Runtime struct {
	Platforms    []Platform
	PlatformIdx  int
	DeviceIdx    int
	Device       Device
	Cache        *ProgramCache
	Queue        *Queue
}

// NewRuntime enumerates the default platform/device catalogue and selects
// platform 0, device 0, matching spec.md §4.3's default selection policy.
func NewRuntime() *Runtime {
	platforms := defaultPlatforms()
	r := &Runtime{
		Platforms: platforms,
		Cache:     NewProgramCache(),
		Queue:     NewQueue(),
	}
	_ = r.SelectDevice(0, 0)
	return r
}

// SelectPlatform switches the active platform index, clamping the device
// index back to 0 of the new platform.
func (r *Runtime) SelectPlatform(index int) error {
	if index < 0 || index >= len(r.Platforms) {
		return errPlatformNotFound
	}
	return r.SelectDevice(index, 0)
}

// SelectDevice switches the active platform and device index and
// refreshes the derived vendor/wavefront state.
func (r *Runtime) SelectDevice(platformIdx, deviceIdx int) error {
	if platformIdx < 0 || platformIdx >= len(r.Platforms) {
		return errPlatformNotFound
	}
	devices := r.Platforms[platformIdx].Devices
	if deviceIdx < 0 || deviceIdx >= len(devices) {
		return errDeviceNotFound
	}
	r.PlatformIdx = platformIdx
	r.DeviceIdx = deviceIdx
	dev := devices[deviceIdx]
	dev.Vendor = detectVendor(dev.VendorName)
	r.Device = dev
	return nil
}

// WavefrontSize returns the lockstep width of the currently selected
// device.
func (r *Runtime) WavefrontSize() int {
	return r.Device.Vendor.WavefrontSize()
}

var (
	errPlatformNotFound = platformError{}
	errDeviceNotFound   = deviceError{}
)

type platformError struct{}

func (platformError) Error() string { return "accel: platform not found" }

type deviceError struct{}

func (deviceError) Error() string { return "accel: device not found" }
