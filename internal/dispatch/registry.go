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

import (
	"fmt"
	"sync"
)

// Algorithm is one registered implementation of an operation tag.
type Algorithm interface {
	// Name identifies the algorithm for diagnostics, e.g.
	// "mxv_masked/row_per_warp".
	Name() string
	// Backend reports whether this algorithm runs on the CPU or the
	// (simulated) accelerator.
	Backend() Backend
	// CanExecute is a pure predicate over the task's descriptors; it must
	// not mutate task or any container it references.
	CanExecute(task *Task) bool
	// Execute runs the algorithm against the task's Payload and returns a
	// Go error (the caller maps this onto a gsla.Status).
	Execute(task *Task) error
}

type regKey struct {
	tag    OpTag
	typeID int
}

// Registry maps (tag, element type) to a priority-ordered list of
// candidate algorithms. Registration order is priority order: the first
// registered algorithm that accepts a task wins (spec.md §4.4).
type Registry struct {
	mu    sync.RWMutex
	algos map[regKey][]Algorithm
}

func NewRegistry() *Registry {
	return &Registry{algos: make(map[regKey][]Algorithm)}
}

// Register appends algo to the priority list for (tag, typeID).
func (r *Registry) Register(tag OpTag, typeID int, algo Algorithm) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := regKey{tag, typeID}
	r.algos[key] = append(r.algos[key], algo)
}

// ErrNotImplemented is returned by Select when no registered candidate
// accepts the task.
type ErrNotImplemented struct {
	Tag    OpTag
	TypeID int
}

func (e *ErrNotImplemented) Error() string {
	return fmt.Sprintf("dispatch: no algorithm for tag=%s type=%d", e.Tag, e.TypeID)
}

// Select walks the priority list for (task.Tag, task.TypeID), skipping
// accelerator algorithms when forceNoAcceleration is set, and returns the
// first candidate whose CanExecute accepts the task.
func (r *Registry) Select(task *Task, forceNoAcceleration bool) (Algorithm, error) {
	r.mu.RLock()
	candidates := r.algos[regKey{task.Tag, task.TypeID}]
	r.mu.RUnlock()

	for _, algo := range candidates {
		if forceNoAcceleration && algo.Backend() == Accelerator {
			continue
		}
		if algo.CanExecute(task) {
			return algo, nil
		}
	}
	return nil, &ErrNotImplemented{Tag: task.Tag, TypeID: task.TypeID}
}

// Execute selects and runs an algorithm for task in one call.
func (r *Registry) Execute(task *Task, forceNoAcceleration bool) error {
	algo, err := r.Select(task, forceNoAcceleration)
	if err != nil {
		return err
	}
	return algo.Execute(task)
}
