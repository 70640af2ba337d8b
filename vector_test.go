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
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/floats"
)

func TestVectorGetSetFill(t *testing.T) {
	tests := []struct {
		name string
		n    int
		fill int32
		sets map[int]int32
		get  int
		want int32
	}{
		{name: "absent returns fill", n: 4, fill: -1, sets: nil, get: 2, want: -1},
		{name: "stored value returned", n: 4, fill: 0, sets: map[int]int32{2: 7}, get: 2, want: 7},
		{name: "out of range returns fill", n: 4, fill: 9, sets: map[int]int32{0: 1}, get: 10, want: 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVector[int32](tt.n)
			v.SetFill(tt.fill)
			for k, val := range tt.sets {
				v.Set(k, val)
			}
			if got := v.Get(tt.get); got != tt.want {
				t.Errorf("Get(%d) = %d, want %d", tt.get, got, tt.want)
			}
		})
	}
}

func TestVectorBuildRoundTrip(t *testing.T) {
	v := NewVector[int32](10)
	keys := []int{5, 1, 3, 1}
	vals := []int32{50, 10, 30, 100}
	if st := v.Build(keys, vals); st != Ok {
		t.Fatalf("Build returned %v, want Ok", st)
	}
	outKeys, outVals := v.Read()
	want := map[int]int32{1: 100, 3: 30, 5: 50} // SECOND: last write wins on duplicate key 1
	if len(outKeys) != len(want) {
		t.Fatalf("Read returned %d keys, want %d", len(outKeys), len(want))
	}
	for i, k := range outKeys {
		if outVals[i] != want[k] {
			t.Errorf("key %d = %d, want %d", k, outVals[i], want[k])
		}
	}
	for i := 1; i < len(outKeys); i++ {
		if outKeys[i] <= outKeys[i-1] {
			t.Errorf("Read() keys not sorted: %v", outKeys)
		}
	}
}

func TestVectorDupReducer(t *testing.T) {
	v := NewVector[int32](4)
	v.SetDupReducer(Plus[int32]())
	v.Set(0, 3)
	v.Set(0, 4)
	if got := v.Get(0); got != 7 {
		t.Errorf("Get(0) = %d, want 7 (3+4 via PLUS reducer)", got)
	}
}

func TestVectorFormatConversionPreservesContent(t *testing.T) {
	v := NewVector[float32](6)
	if st := v.Build([]int{0, 2, 4}, []float32{1, 2, 3}); st != Ok {
		t.Fatalf("Build: %v", st)
	}
	v.SetFormat(VCpuDense)
	if !containsFormat(v.ValidFormats(), VCpuDense) {
		t.Fatalf("ValidFormats() = %v, want to contain VCpuDense", v.ValidFormats())
	}
	dense := v.Dense()
	want := []float32{1, 0, 2, 0, 3, 0}
	for i := range want {
		// Format conversions copy values without arithmetic; the comparison
		// still uses the 0.005 absolute tolerance used elsewhere for
		// floating-point round trips rather than an exact bit match.
		if !floats.EqualWithinAbs(float64(dense[i]), float64(want[i]), 0.005) {
			t.Errorf("Dense()[%d] = %v, want %v", i, dense[i], want[i])
		}
	}
}

// TestVectorCooRoundTripStable builds a vector, forces it through COO, and
// diffs the (keys, values) pair against the expected snapshot with go-cmp
// instead of a manual field walk, catching any reordering or drift a
// hand-written loop might gloss over.
func TestVectorCooRoundTripStable(t *testing.T) {
	v := NewVector[int32](5)
	if st := v.Build([]int{4, 1, 2}, []int32{40, 10, 20}); st != Ok {
		t.Fatalf("Build: %v", st)
	}
	v.ValidateRW(VCpuCoo)
	gotKeys, gotVals := v.Read()

	wantKeys := []int{1, 2, 4}
	wantVals := []int32{10, 20, 40}
	if diff := cmp.Diff(wantKeys, gotKeys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantVals, gotVals); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestVectorValidateRWInvalidatesOthers(t *testing.T) {
	v := NewVector[int32](4)
	v.Set(0, 1)
	v.SetFormat(VCpuDense)
	if f := v.ValidFormats(); len(f) != 2 || !containsFormat(f, VCpuDok) || !containsFormat(f, VCpuDense) {
		t.Fatalf("expected exactly CpuDok and CpuDense valid after SetFormat, got %v", v.ValidFormats())
	}
	v.ValidateRW(VCpuCoo)
	formats := v.ValidFormats()
	if len(formats) != 1 || formats[0] != VCpuCoo {
		t.Errorf("ValidateRW should leave exactly CpuCoo valid, got %v", formats)
	}
}

func TestVectorClearResetsButKeepsFill(t *testing.T) {
	v := NewVector[int32](4)
	v.SetFill(42)
	v.Set(0, 1)
	v.Clear()
	if got := v.Get(0); got != 42 {
		t.Errorf("Get(0) after Clear = %d, want fill 42", got)
	}
	if len(v.ValidFormats()) != 0 {
		t.Errorf("ValidFormats() after Clear = %v, want empty", v.ValidFormats())
	}
}

func containsFormat(formats []VecFormat, target VecFormat) bool {
	for _, f := range formats {
		if f == target {
			return true
		}
	}
	return false
}
