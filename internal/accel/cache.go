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

import (
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// CacheKey is the 4-tuple a compiled program is keyed on: kernel source
// text, the -D defines list, the element type name, and the operator
// source fragments substituted into the template (spec.md §4.3).
type CacheKey struct {
	Source      string
	Defines     []string
	TypeName    string
	OpFragments []string
}

func (k CacheKey) hash() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(k.Source)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(strings.Join(k.Defines, ","))
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(k.TypeName)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(strings.Join(k.OpFragments, ","))
	return h.Sum64()
}

// Program is an opaque handle to a compiled kernel. In the absence of a
// real device compiler, Body retains the assembled source text so tests
// can assert on what would have been compiled.
type Program struct {
	Key  CacheKey
	Body string
}

type cacheEntry struct {
	program *Program
	err     error
}

// ProgramCache compiles parameterised kernel source exactly once per
// distinct (source, defines, type, op-fragments) parameterisation.
// Build failures are cached too, so repeat requests return the same
// failure without re-compiling (spec.md §4.3, §7).
type ProgramCache struct {
	mu      sync.Mutex
	entries map[uint64]cacheEntry
}

func NewProgramCache() *ProgramCache {
	return &ProgramCache{entries: make(map[uint64]cacheEntry)}
}

// Build returns the cached program for key, compiling it with compile on
// a cache miss. compile is expected to assemble the kernel source (by
// concatenating a template with the operator fragments) and report any
// error that a real accelerator compiler would raise.
func (c *ProgramCache) Build(key CacheKey, compile func(CacheKey) (*Program, error)) (*Program, error) {
	h := key.hash()

	// The lock is held across compile so concurrent first requests for the
	// same key compile it only once.
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[h]; ok {
		return e.program, e.err
	}

	program, err := compile(key)
	c.entries[h] = cacheEntry{program: program, err: err}
	return program, err
}

// Len reports the number of distinct parameterisations compiled so far,
// counting cached failures.
func (c *ProgramCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
