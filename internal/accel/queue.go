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

import "sync"

// Queue is a single command queue. Every submission blocks until
// completion before returning; there is no inter-task parallelism here
// (spec.md §5) — only a task's own kernel may use goroutines internally
// to simulate cooperating wavefronts.
//
// This is a narrowed form of the teacher's workerpool.Pool: instead of a
// pool of persistent workers draining a shared channel, there is exactly
// one serialized lane of work, and buffers handed out during a submission
// are dropped by reset when it completes.
type Queue struct {
	mu   sync.Mutex
	pool *bufferPool
}

func NewQueue() *Queue {
	return &Queue{pool: newBufferPool()}
}

// Submit runs fn to completion while holding the queue's lock, so callers
// on other goroutines block until their turn, mirroring a hardware command
// queue that only ever executes one kernel at a time.
func (q *Queue) Submit(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	fn()
	q.pool.reset()
}

// Temp returns a scratch int32 buffer of at least n elements from the
// queue's per-task temporary pool.
func (q *Queue) Temp(n int) []int32 {
	return q.pool.get(n)
}

// bufferPool hands out freshly allocated scratch buffers for one task and
// releases them all at once when the task completes, modeling the "temporary
// device-buffer pool that is reset between tasks" of spec.md §5.
type bufferPool struct {
	bufs [][]int32
}

func newBufferPool() *bufferPool {
	return &bufferPool{}
}

func (p *bufferPool) get(n int) []int32 {
	buf := make([]int32, n)
	p.bufs = append(p.bufs, buf)
	return buf
}

func (p *bufferPool) reset() {
	p.bufs = p.bufs[:0]
}
