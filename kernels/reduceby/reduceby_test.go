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

package reduceby

import (
	"reflect"
	"testing"

	"github.com/ajroetker/gsla"
)

func TestReduceGroupsUnsortedKeys(t *testing.T) {
	tests := []struct {
		name       string
		keys       []int
		values     []int32
		wantKeys   []int
		wantValues []int32
	}{
		{
			name:       "already sorted runs",
			keys:       []int{0, 0, 1, 2, 2, 2},
			values:     []int32{1, 2, 10, 1, 1, 1},
			wantKeys:   []int{0, 1, 2},
			wantValues: []int32{3, 10, 3},
		},
		{
			name:       "unsorted input, stable sort groups correctly",
			keys:       []int{2, 0, 2, 1, 0},
			values:     []int32{1, 10, 2, 20, 5},
			wantKeys:   []int{0, 1, 2},
			wantValues: []int32{15, 20, 3},
		},
		{
			name:       "single key",
			keys:       []int{5},
			values:     []int32{7},
			wantKeys:   []int{5},
			wantValues: []int32{7},
		},
		{
			name:       "empty input",
			keys:       nil,
			values:     nil,
			wantKeys:   nil,
			wantValues: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotKeys, gotValues := Reduce(tt.keys, tt.values, gsla.Plus[int32]())
			if !reflect.DeepEqual(gotKeys, tt.wantKeys) {
				t.Errorf("keys = %v, want %v", gotKeys, tt.wantKeys)
			}
			if !reflect.DeepEqual(gotValues, tt.wantValues) {
				t.Errorf("values = %v, want %v", gotValues, tt.wantValues)
			}
		})
	}
}

func TestReduceAssociativityIndependentOfGroupingOrder(t *testing.T) {
	// MAX is associative and commutative; grouping order must not matter.
	keys := []int{3, 1, 3, 1, 3}
	values := []int32{5, 1, 9, 2, 4}
	gotKeys, gotValues := Reduce(keys, values, gsla.Max[int32]())
	want := map[int]int32{1: 2, 3: 9}
	for i, k := range gotKeys {
		if gotValues[i] != want[k] {
			t.Errorf("key %d = %d, want %d", k, gotValues[i], want[k])
		}
	}
}
