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

// VecFormat names one of the concrete layouts a Vector's storage manager
// may materialise. Ordering matches the original spla project's
// FormatVector enum (original_source/include/spla/config.hpp) so the
// validity bitmap's bit order has a stable, documented meaning.
type VecFormat int

const (
	VCpuDok VecFormat = iota
	VCpuDense
	VCpuCoo
	VAccDense
	VAccCoo
	vecFormatCount
)

func (f VecFormat) String() string {
	switch f {
	case VCpuDok:
		return "CpuDok"
	case VCpuDense:
		return "CpuDense"
	case VCpuCoo:
		return "CpuCoo"
	case VAccDense:
		return "AccDense"
	case VAccCoo:
		return "AccCoo"
	default:
		return "Unknown"
	}
}

// MatFormat names one of the concrete layouts a Matrix's storage manager
// may materialise, ordered as the original spla FormatMatrix enum.
type MatFormat int

const (
	MCpuLil MatFormat = iota
	MCpuDok
	MCpuCoo
	MCpuCsr
	MCpuCsc
	MAccCoo
	MAccCsr
	MAccCsc
	matFormatCount
)

func (f MatFormat) String() string {
	switch f {
	case MCpuLil:
		return "CpuLil"
	case MCpuDok:
		return "CpuDok"
	case MCpuCoo:
		return "CpuCoo"
	case MCpuCsr:
		return "CpuCsr"
	case MCpuCsc:
		return "CpuCsc"
	case MAccCoo:
		return "AccCoo"
	case MAccCsr:
		return "AccCsr"
	case MAccCsc:
		return "AccCsc"
	default:
		return "Unknown"
	}
}

// bitmap is a small fixed-width validity set, one bit per format index.
type bitmap uint16

func (b bitmap) has(i int) bool   { return b&(1<<uint(i)) != 0 }
func (b *bitmap) set(i int)       { *b |= 1 << uint(i) }
func (b *bitmap) clearAll()       { *b = 0 }
func (b bitmap) only(i int) bitmap { var nb bitmap; nb.set(i); return nb }

func (b bitmap) firstSet(count int) (int, bool) {
	for i := 0; i < count; i++ {
		if b.has(i) {
			return i, true
		}
	}
	return 0, false
}
