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

import (
	"os"
	"sync"

	"github.com/ajroetker/gsla/internal/accel"
	"github.com/ajroetker/gsla/internal/dispatch"
)

// AcceleratorType selects the backend family used for accelerator-side
// computation.
type AcceleratorType int

const (
	AcceleratorNone AcceleratorType = iota
	AcceleratorOpenCLLike
)

// library is the process-wide singleton state described in spec.md §5:
// device, queue, program cache and algorithm registry. Initialisation is
// lazy on first access; teardown is explicit via Finalize.
type library struct {
	mu sync.Mutex

	initialized bool
	finalized   bool

	accelerator AcceleratorType
	runtime     *accel.Runtime
	registry    *dispatch.Registry

	queuesCount int
	forceNoAcc  bool
	callback    MessageCallback
}

var lib = &library{
	registry: dispatch.NewRegistry(),
}

func (l *library) ensureInit() {
	if l.initialized {
		return
	}
	l.initialized = true
	l.queuesCount = 1
	if noAccelerationEnv() {
		l.forceNoAcc = true
	} else {
		l.accelerator = AcceleratorOpenCLLike
		l.runtime = accel.NewRuntime()
	}
}

func noAccelerationEnv() bool {
	v := os.Getenv("GSLA_FORCE_NO_ACCELERATION")
	return v == "1" || v == "true" || v == "yes"
}

// Registry returns the process-wide algorithm registry, initializing the
// library singleton on first use.
func Registry() *dispatch.Registry {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	lib.ensureInit()
	return lib.registry
}

// Runtime returns the process-wide accelerator runtime, or nil if no
// accelerator is configured (AcceleratorNone, GSLA_FORCE_NO_ACCELERATION
// set at startup, or after Finalize). SetForceNoAcceleration does not
// clear it.
func Runtime() *accel.Runtime {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	lib.ensureInit()
	return lib.runtime
}

// ForceNoAcceleration excludes accelerator algorithms from dispatch when
// set, leaving only CPU variants as candidates (spec.md §4.4, §6).
func ForceNoAcceleration() bool {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	lib.ensureInit()
	return lib.forceNoAcc
}

// SetForceNoAcceleration sets the force_no_acceleration switch.
func SetForceNoAcceleration(v bool) {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	lib.ensureInit()
	lib.forceNoAcc = v
}

// SetAccelerator chooses the backend family for accelerator computations.
func SetAccelerator(t AcceleratorType) Status {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	if lib.finalized {
		return InvalidState
	}
	lib.ensureInit()
	lib.accelerator = t
	if t == AcceleratorNone {
		lib.runtime = nil
		lib.forceNoAcc = true
	} else {
		lib.runtime = accel.NewRuntime()
		lib.forceNoAcc = false
	}
	return Ok
}

// SetPlatform selects a platform index for the current accelerator.
func SetPlatform(index int) Status {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	if lib.finalized {
		return InvalidState
	}
	lib.ensureInit()
	if lib.runtime == nil {
		return NoAcceleration
	}
	if err := lib.runtime.SelectPlatform(index); err != nil {
		lib.report(PlatformNotFound, err.Error())
		return PlatformNotFound
	}
	return Ok
}

// SetDevice selects a device index within the current platform.
func SetDevice(index int) Status {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	if lib.finalized {
		return InvalidState
	}
	lib.ensureInit()
	if lib.runtime == nil {
		return NoAcceleration
	}
	if err := lib.runtime.SelectDevice(lib.runtime.PlatformIdx, index); err != nil {
		lib.report(DeviceNotFound, err.Error())
		return DeviceNotFound
	}
	return Ok
}

// SetQueuesCount reserves command queues. This core uses exactly one.
func SetQueuesCount(count int) Status {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	if lib.finalized {
		return InvalidState
	}
	lib.ensureInit()
	if count < 1 {
		return InvalidArgument
	}
	lib.queuesCount = count
	return Ok
}

// SetMessageCallback registers a callback for diagnostic events.
func SetMessageCallback(cb MessageCallback) Status {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	if lib.finalized {
		return InvalidState
	}
	lib.ensureInit()
	lib.callback = cb
	return Ok
}

// Finalize tears down the library and drops the accelerator runtime. After
// this call SetAccelerator, SetPlatform, SetDevice, SetQueuesCount and
// SetMessageCallback return InvalidState; Registry, Runtime,
// ForceNoAcceleration, SetForceNoAcceleration and the kernel Submit
// functions do not check it and keep working.
func Finalize() {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	lib.finalized = true
	lib.runtime = nil
}

// Finalized reports whether Finalize has been called.
func Finalized() bool {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	return lib.finalized
}

// report invokes the configured message callback, if any, with empty file
// and function names and line 0; no source location is recorded.
func (l *library) report(status Status, message string) {
	if l.callback != nil {
		l.callback(status, message, "", "", 0)
	}
}

// Report invokes the configured diagnostic callback on behalf of a caller
// elsewhere in the package (storage manager, kernels) that cannot reach
// into the unexported library type directly. Like report, it passes empty
// file and function names and line 0.
func Report(status Status, message string) {
	lib.mu.Lock()
	cb := lib.callback
	lib.mu.Unlock()
	if cb != nil {
		cb(status, message, "", "", 0)
	}
}
