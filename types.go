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

// Numeric is the closed set of element types the engine supports: signed
// 32-bit integer, unsigned 32-bit integer, and 32-bit floating point.
type Numeric interface {
	int32 | uint32 | float32
}

// TypeID stably identifies one of the closed set of element types.
type TypeID int

const (
	// TypeInt32 identifies signed 32-bit integers.
	TypeInt32 TypeID = iota
	// TypeUint32 identifies unsigned 32-bit integers.
	TypeUint32
	// TypeFloat32 identifies 32-bit floating point.
	TypeFloat32
)

func (t TypeID) String() string {
	switch t {
	case TypeInt32:
		return "int32"
	case TypeUint32:
		return "uint32"
	case TypeFloat32:
		return "float32"
	default:
		return "unknown"
	}
}

// Type describes one element type: its stable identifier, its size in
// bytes, its textual name (used in generated kernel source) and its
// canonical accelerator-side spelling.
type Type struct {
	ID          TypeID
	Name        string
	Size        int
	KernelName  string
	AccSpelling string
}

var (
	typeInt32   = Type{ID: TypeInt32, Name: "int32", Size: 4, KernelName: "int32_t", AccSpelling: "int"}
	typeUint32  = Type{ID: TypeUint32, Name: "uint32", Size: 4, KernelName: "uint32_t", AccSpelling: "uint"}
	typeFloat32 = Type{ID: TypeFloat32, Name: "float32", Size: 4, KernelName: "float", AccSpelling: "float"}
)

// TypeOf returns the Type descriptor for an element type id.
func TypeOf(id TypeID) Type {
	switch id {
	case TypeInt32:
		return typeInt32
	case TypeUint32:
		return typeUint32
	case TypeFloat32:
		return typeFloat32
	default:
		panic("gsla: unknown type id")
	}
}

// TypeIDFor returns the TypeID for a Go numeric type parameter.
func TypeIDFor[T Numeric]() TypeID {
	var zero T
	switch any(zero).(type) {
	case int32:
		return TypeInt32
	case uint32:
		return TypeUint32
	case float32:
		return TypeFloat32
	default:
		panic("gsla: unsupported element type")
	}
}
