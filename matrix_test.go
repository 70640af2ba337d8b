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
	"github.com/stretchr/testify/require"
)

func TestMatrixBuildAndGet(t *testing.T) {
	m := NewMatrix[int32](3, 3)
	st := m.Build([]int{0, 1, 2}, []int{1, 0, 2}, []int32{10, 20, 30})
	require.Equal(t, Ok, st)
	require.Equal(t, int32(10), m.Get(0, 1))
	require.Equal(t, int32(20), m.Get(1, 0))
	require.Equal(t, int32(30), m.Get(2, 2))
	require.Equal(t, int32(0), m.Get(0, 0)) // fill value, never stored
}

func TestMatrixCSRConversionRoundTrip(t *testing.T) {
	m := NewMatrix[float32](2, 3)
	require.Equal(t, Ok, m.Build([]int{0, 0, 1}, []int{0, 2, 1}, []float32{1, 2, 3}))

	indptr, indices, vals := m.CSR()
	require.Equal(t, []int{0, 2, 3}, indptr)
	require.ElementsMatch(t, []int{0, 2}, indices[indptr[0]:indptr[1]])
	require.Equal(t, []int{1}, indices[indptr[1]:indptr[2]])
	require.Len(t, vals, 3)

	r, c, v := m.Read()
	require.Len(t, r, 3)
	require.Len(t, c, 3)
	require.Len(t, v, 3)
}

func TestMatrixSetViaLilThenConvertToCsc(t *testing.T) {
	m := NewMatrix[int32](2, 2)
	m.Set(0, 0, 5)
	m.Set(1, 1, 9)
	m.Set(0, 1, 1)

	m.SetFormat(MCpuCsc)
	require.True(t, containsMatFormat(m.ValidFormats(), MCpuCsc))
	require.Equal(t, int32(5), m.Get(0, 0))
	require.Equal(t, int32(1), m.Get(0, 1))
	require.Equal(t, int32(9), m.Get(1, 1))
}

func TestMatrixDupReducerOnLil(t *testing.T) {
	m := NewMatrix[int32](2, 2)
	m.SetDupReducer(Plus[int32]())
	m.Set(0, 0, 1)
	m.Set(0, 0, 2)
	require.Equal(t, int32(3), m.Get(0, 0))
}

func TestMatrixValidateWDDoesNotRead(t *testing.T) {
	m := NewMatrix[int32](2, 2)
	require.Equal(t, Ok, m.Build([]int{0}, []int{0}, []int32{7}))
	m.ValidateWD(MCpuCsr)
	formats := m.ValidFormats()
	require.Len(t, formats, 1)
	require.Equal(t, MCpuCsr, formats[0])
}

// TestMatrixCsrCscTripletsAgree drives the same matrix through CSR and CSC
// and diffs the two triplet extractions (sorted the same way) with go-cmp,
// guarding against the two format converters silently disagreeing on content.
func TestMatrixCsrCscTripletsAgree(t *testing.T) {
	m := NewMatrix[int32](3, 3)
	require.Equal(t, Ok, m.Build([]int{0, 1, 2, 2}, []int{1, 0, 0, 2}, []int32{10, 20, 30, 40}))

	m.ValidateRW(MCpuCsr)
	csrRows, csrCols, csrVals := m.Read()

	m.ValidateRW(MCpuCsc)
	cscRows, cscCols, cscVals := m.Read()

	csrTriplets := sortedTriplets(csrRows, csrCols, csrVals)
	cscTriplets := sortedTriplets(cscRows, cscCols, cscVals)
	if diff := cmp.Diff(csrTriplets, cscTriplets); diff != "" {
		t.Errorf("CSR and CSC triplets disagree (-csr +csc):\n%s", diff)
	}
}

type triplet struct {
	Row, Col int
	Val      int32
}

func sortedTriplets(rows, cols []int, vals []int32) []triplet {
	out := make([]triplet, len(rows))
	for i := range rows {
		out[i] = triplet{Row: rows[i], Col: cols[i], Val: vals[i]}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && (out[j].Row < out[j-1].Row || (out[j].Row == out[j-1].Row && out[j].Col < out[j-1].Col)); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func containsMatFormat(formats []MatFormat, target MatFormat) bool {
	for _, f := range formats {
		if f == target {
			return true
		}
	}
	return false
}
