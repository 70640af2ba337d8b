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
	"fmt"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Integer is the subset of Numeric that supports bitwise operators.
type Integer interface {
	int32 | uint32
}

// OpKey uniquely identifies an operator's (name, types, source) triple.
// Two built-ins that share a name and source produce the same key; two
// user operators with different source fragments never collide.
type OpKey uint64

func computeKey(name string, types []string, src string) OpKey {
	h := xxhash.New()
	_, _ = h.WriteString(name)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(strings.Join(types, ","))
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(src)
	return OpKey(h.Sum64())
}

// OpUnary is a unary operator T_in -> T_out: a host function plus a
// kernel-source fragment referring to a single named parameter "a".
type OpUnary[In, Out Numeric] struct {
	Name string
	Key  OpKey
	Src  string
	Fn   func(In) Out
}

// OpUnaryNamed constructs a user-defined unary operator. Source fragments
// that fail to compile on the accelerator surface as a CompilationError at
// first dispatch, not at construction time (spec-mandated deferred error).
func OpUnaryNamed[In, Out Numeric](name, src string, fn func(In) Out) OpUnary[In, Out] {
	var in In
	var out Out
	return OpUnary[In, Out]{
		Name: name,
		Key:  computeKey(name, []string{typeName(in), typeName(out)}, src),
		Src:  src,
		Fn:   fn,
	}
}

// OpBinary is a binary operator (T_a, T_b) -> T_c.
type OpBinary[A, B, C Numeric] struct {
	Name string
	Key  OpKey
	Src  string
	Fn   func(A, B) C
}

// OpBinaryNamed constructs a user-defined binary operator.
func OpBinaryNamed[A, B, C Numeric](name, src string, fn func(A, B) C) OpBinary[A, B, C] {
	var a A
	var b B
	var c C
	return OpBinary[A, B, C]{
		Name: name,
		Key:  computeKey(name, []string{typeName(a), typeName(b), typeName(c)}, src),
		Src:  src,
		Fn:   fn,
	}
}

// OpSelect is a predicate T -> bool, used as the mask-admission test σ.
type OpSelect[T Numeric] struct {
	Name string
	Key  OpKey
	Src  string
	Fn   func(T) bool
}

// OpSelectNamed constructs a user-defined select operator.
func OpSelectNamed[T Numeric](name, src string, fn func(T) bool) OpSelect[T] {
	var t T
	return OpSelect[T]{
		Name: name,
		Key:  computeKey(name, []string{typeName(t)}, src),
		Src:  src,
		Fn:   fn,
	}
}

func typeName[T Numeric](_ T) string {
	var zero T
	switch any(zero).(type) {
	case int32:
		return "int32"
	case uint32:
		return "uint32"
	case float32:
		return "float32"
	default:
		return fmt.Sprintf("%T", zero)
	}
}

// --- Built-in binary arithmetic, shared across numeric types ---

func Plus[T Numeric]() OpBinary[T, T, T] {
	return OpBinaryNamed("PLUS", "a + b", func(a, b T) T { return a + b })
}

func Minus[T Numeric]() OpBinary[T, T, T] {
	return OpBinaryNamed("MINUS", "a - b", func(a, b T) T { return a - b })
}

func Mult[T Numeric]() OpBinary[T, T, T] {
	return OpBinaryNamed("MULT", "a * b", func(a, b T) T { return a * b })
}

func Div[T Numeric]() OpBinary[T, T, T] {
	return OpBinaryNamed("DIV", "a / b", func(a, b T) T { return a / b })
}

func Min[T Numeric]() OpBinary[T, T, T] {
	return OpBinaryNamed("MIN", "a < b ? a : b", func(a, b T) T {
		if a < b {
			return a
		}
		return b
	})
}

func Max[T Numeric]() OpBinary[T, T, T] {
	return OpBinaryNamed("MAX", "a > b ? a : b", func(a, b T) T {
		if a > b {
			return a
		}
		return b
	})
}

func First[T Numeric]() OpBinary[T, T, T] {
	return OpBinaryNamed("FIRST", "a", func(a, _ T) T { return a })
}

func Second[T Numeric]() OpBinary[T, T, T] {
	return OpBinaryNamed("SECOND", "b", func(_, b T) T { return b })
}

func One[T Numeric]() OpBinary[T, T, T] {
	return OpBinaryNamed("ONE", "1", func(_, _ T) T { return T(1) })
}

// --- Logical binary operators, integers only ---

func BOr[T Integer]() OpBinary[T, T, T] {
	return OpBinaryNamed("BOR", "a | b", func(a, b T) T { return a | b })
}

func BAnd[T Integer]() OpBinary[T, T, T] {
	return OpBinaryNamed("BAND", "a & b", func(a, b T) T { return a & b })
}

func BXor[T Integer]() OpBinary[T, T, T] {
	return OpBinaryNamed("BXOR", "a ^ b", func(a, b T) T { return a ^ b })
}

// --- Select operators, per numeric type ---

func EqZero[T Numeric]() OpSelect[T] {
	return OpSelectNamed("EQZERO", "a == 0", func(a T) bool { return a == 0 })
}

func NqZero[T Numeric]() OpSelect[T] {
	return OpSelectNamed("NQZERO", "a != 0", func(a T) bool { return a != 0 })
}

func GtZero[T Numeric]() OpSelect[T] {
	return OpSelectNamed("GTZERO", "a > 0", func(a T) bool { return a > 0 })
}

func GeZero[T Numeric]() OpSelect[T] {
	return OpSelectNamed("GEZERO", "a >= 0", func(a T) bool { return a >= 0 })
}

func LtZero[T Numeric]() OpSelect[T] {
	return OpSelectNamed("LTZERO", "a < 0", func(a T) bool { return a < 0 })
}

func LeZero[T Numeric]() OpSelect[T] {
	return OpSelectNamed("LEZERO", "a <= 0", func(a T) bool { return a <= 0 })
}

func Always[T Numeric]() OpSelect[T] {
	return OpSelectNamed("ALWAYS", "true", func(T) bool { return true })
}

func Never[T Numeric]() OpSelect[T] {
	return OpSelectNamed("NEVER", "false", func(T) bool { return false })
}

// --- Unary operators ---

func Identity[T Numeric]() OpUnary[T, T] {
	return OpUnaryNamed("IDENTITY", "a", func(a T) T { return a })
}

// Ainv is the additive inverse. For unsigned types this wraps modulo 2^32,
// matching Go's own unary minus semantics for unsigned integers.
func Ainv[T Numeric]() OpUnary[T, T] {
	return OpUnaryNamed("AINV", "-a", func(a T) T { return -a })
}

func Minv[T Numeric]() OpUnary[T, T] {
	return OpUnaryNamed("MINV", "1 / a", func(a T) T { return T(1) / a })
}

func Abs[T Numeric]() OpUnary[T, T] {
	return OpUnaryNamed("ABS", "a < 0 ? -a : a", func(a T) T {
		if a < 0 {
			return -a
		}
		return a
	})
}

func Bnot[T Integer]() OpUnary[T, T] {
	return OpUnaryNamed("BNOT", "~a", func(a T) T { return ^a })
}

func Sqrt[T Numeric]() OpUnary[T, T] {
	return OpUnaryNamed("SQRT", "sqrt(a)", func(a T) T { return T(math.Sqrt(float64(a))) })
}

func Exp[T Numeric]() OpUnary[T, T] {
	return OpUnaryNamed("EXP", "exp(a)", func(a T) T { return T(math.Exp(float64(a))) })
}

func Log[T Numeric]() OpUnary[T, T] {
	return OpUnaryNamed("LOG", "log(a)", func(a T) T { return T(math.Log(float64(a))) })
}

func Sin[T Numeric]() OpUnary[T, T] {
	return OpUnaryNamed("SIN", "sin(a)", func(a T) T { return T(math.Sin(float64(a))) })
}

func Cos[T Numeric]() OpUnary[T, T] {
	return OpUnaryNamed("COS", "cos(a)", func(a T) T { return T(math.Cos(float64(a))) })
}

func Tan[T Numeric]() OpUnary[T, T] {
	return OpUnaryNamed("TAN", "tan(a)", func(a T) T { return T(math.Tan(float64(a))) })
}

// --- Int32 convenience constructors matching the scenario names used in
// spec.md's end-to-end tests (MULT_INT, PLUS_INT, EQZERO, MIN_INT, ...). ---

func PlusInt32() OpBinary[int32, int32, int32]    { return Plus[int32]() }
func MinusInt32() OpBinary[int32, int32, int32]   { return Minus[int32]() }
func MultInt32() OpBinary[int32, int32, int32]    { return Mult[int32]() }
func MinInt32() OpBinary[int32, int32, int32]     { return Min[int32]() }
func MaxInt32() OpBinary[int32, int32, int32]     { return Max[int32]() }
func SecondInt32() OpBinary[int32, int32, int32]  { return Second[int32]() }
func FirstInt32() OpBinary[int32, int32, int32]   { return First[int32]() }
func EqZeroInt32() OpSelect[int32]                { return EqZero[int32]() }
func NqZeroInt32() OpSelect[int32]                { return NqZero[int32]() }
func AlwaysInt32() OpSelect[int32]                { return Always[int32]() }
func AinvInt32() OpUnary[int32, int32]            { return Ainv[int32]() }
func IdentityInt32() OpUnary[int32, int32]        { return Identity[int32]() }
