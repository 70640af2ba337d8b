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
	"github.com/google/uuid"
)

// TaskHandle names a unit of deferred work submitted to a Schedule
// (spec.md §5's supplemented task-handle feature, grounded on
// original_source/include/spla/exec.hpp's `spla::Task` concept). The
// handle is an opaque identity; ordering is controlled entirely by the
// order handles are added to a Schedule, not by submission order.
type TaskHandle struct {
	id uuid.UUID
	fn func() Status
}

// newTaskHandle wraps fn as a deferred, uniquely identified unit of work.
func newTaskHandle(fn func() Status) TaskHandle {
	return TaskHandle{id: uuid.New(), fn: fn}
}

// ID returns the handle's identity, stable for the lifetime of the task.
func (h TaskHandle) ID() uuid.UUID { return h.id }

// Schedule collects TaskHandles and executes them strictly sequentially
// in the order they were added, stopping at the first non-Ok status
// (spec.md §5: "no rollback on failure, no cancellation primitive" — a
// schedule is a simple ordered batch, not a DAG executor).
type Schedule struct {
	tasks []TaskHandle
}

func NewSchedule() *Schedule { return &Schedule{} }

// Add appends a task to the schedule's execution order and returns its
// handle so callers can track which task is responsible if Execute stops
// early.
func (s *Schedule) Add(fn func() Status) TaskHandle {
	h := newTaskHandle(fn)
	s.tasks = append(s.tasks, h)
	return h
}

// Len reports how many tasks are queued.
func (s *Schedule) Len() int { return len(s.tasks) }

// Execute runs every queued task strictly in order, returning the status
// of the first failing task (or Ok if every task succeeded). Tasks already
// executed are not rolled back.
func (s *Schedule) Execute() Status {
	for _, t := range s.tasks {
		if st := t.fn(); st != Ok {
			return st
		}
	}
	return Ok
}
