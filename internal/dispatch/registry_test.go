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

package dispatch

import "testing"

type fakeAlgo struct {
	name    string
	backend Backend
	accept  bool
	ran     *bool
}

func (f fakeAlgo) Name() string    { return f.name }
func (f fakeAlgo) Backend() Backend { return f.backend }
func (f fakeAlgo) CanExecute(*Task) bool { return f.accept }
func (f fakeAlgo) Execute(*Task) error {
	*f.ran = true
	return nil
}

func TestRegistrySelectsFirstAccepting(t *testing.T) {
	reg := NewRegistry()
	var ranA, ranB bool
	reg.Register(MxvMasked, 0, fakeAlgo{name: "a", backend: CPU, accept: false, ran: &ranA})
	reg.Register(MxvMasked, 0, fakeAlgo{name: "b", backend: CPU, accept: true, ran: &ranB})

	task := &Task{Tag: MxvMasked, TypeID: 0}
	if err := reg.Execute(task, false); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ranA {
		t.Error("algorithm a should not have run (CanExecute false)")
	}
	if !ranB {
		t.Error("algorithm b should have run")
	}
}

func TestRegistryForceNoAccelerationSkipsAccelerator(t *testing.T) {
	reg := NewRegistry()
	var ranAcc, ranCPU bool
	reg.Register(VEadd, 0, fakeAlgo{name: "acc", backend: Accelerator, accept: true, ran: &ranAcc})
	reg.Register(VEadd, 0, fakeAlgo{name: "cpu", backend: CPU, accept: true, ran: &ranCPU})

	task := &Task{Tag: VEadd, TypeID: 0}
	if err := reg.Execute(task, true); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ranAcc {
		t.Error("accelerator algorithm should have been skipped")
	}
	if !ranCPU {
		t.Error("cpu algorithm should have run")
	}
}

func TestRegistryNotImplemented(t *testing.T) {
	reg := NewRegistry()
	task := &Task{Tag: Kron, TypeID: 0}
	err := reg.Execute(task, false)
	if err == nil {
		t.Fatal("expected ErrNotImplemented, got nil")
	}
	if _, ok := err.(*ErrNotImplemented); !ok {
		t.Fatalf("expected *ErrNotImplemented, got %T", err)
	}
}
