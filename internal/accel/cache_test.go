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
	"errors"
	"testing"
)

func TestProgramCacheBuildsOncePerKey(t *testing.T) {
	c := NewProgramCache()
	key := CacheKey{Source: "mxv.cl", TypeName: "float32"}
	calls := 0
	compile := func(k CacheKey) (*Program, error) {
		calls++
		return &Program{Key: k, Body: "compiled"}, nil
	}

	p1, err1 := c.Build(key, compile)
	p2, err2 := c.Build(key, compile)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if p1 != p2 {
		t.Error("expected same cached *Program instance on repeat Build")
	}
	if calls != 1 {
		t.Errorf("compile called %d times, want 1", calls)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestProgramCacheCachesFailures(t *testing.T) {
	c := NewProgramCache()
	key := CacheKey{Source: "broken.cl"}
	wantErr := errors.New("syntax error")
	calls := 0
	compile := func(k CacheKey) (*Program, error) {
		calls++
		return nil, wantErr
	}

	_, err1 := c.Build(key, compile)
	_, err2 := c.Build(key, compile)
	if err1 != wantErr || err2 != wantErr {
		t.Fatalf("expected cached failure both times, got %v, %v", err1, err2)
	}
	if calls != 1 {
		t.Errorf("compile called %d times on a cached failure, want 1", calls)
	}
}

func TestProgramCacheDistinguishesKeyFields(t *testing.T) {
	c := NewProgramCache()
	base := CacheKey{Source: "v_eadd.cl", TypeName: "int32", OpFragments: []string{"a+b"}}
	variant := base
	variant.TypeName = "float32"

	compile := func(k CacheKey) (*Program, error) { return &Program{Key: k}, nil }
	c.Build(base, compile)
	c.Build(variant, compile)

	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2 distinct cache entries for different TypeName", c.Len())
	}
}
