//
// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package arith contains the numeric operations used to compute sensitivity
// and privacy bounds.
//
// Bound computations must never underestimate: the Inf* functions round
// towards +∞ and return an error instead of wrapping around on integer
// overflow. Float overflow saturates at +∞, which is a valid (if useless)
// upper bound. The Saturating* functions clamp integers at the limits of
// their type and are meant for data, not for bounds.
package arith

import (
	"math"
	"reflect"

	"github.com/google/differential-privacy/dpcore/dperr"
)

// Integer is the set of built-in integer types.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Float is the set of built-in floating-point types.
type Float interface {
	~float32 | ~float64
}

// Number is the set of types usable as distances and as atomic data.
type Number interface {
	Integer | Float
}

func kindOf[T Number]() reflect.Kind {
	return reflect.TypeOf((*T)(nil)).Elem().Kind()
}

// IsFloat reports whether T is a floating-point type.
func IsFloat[T Number]() bool {
	k := kindOf[T]()
	return k == reflect.Float32 || k == reflect.Float64
}

func is32[T Number]() bool {
	return kindOf[T]() == reflect.Float32
}

// IsSigned reports whether T can hold negative values.
func IsSigned[T Number]() bool {
	var zero T
	return zero-1 < zero
}

func bitsOf[T Number]() int {
	return reflect.TypeOf((*T)(nil)).Elem().Bits()
}

// MaxValue returns the largest finite value of T.
func MaxValue[T Number]() T {
	switch {
	case is32[T]():
		f := float32(math.MaxFloat32)
		return T(f)
	case IsFloat[T]():
		f := float64(math.MaxFloat64)
		return T(f)
	case IsSigned[T]():
		m := uint64(1)<<(bitsOf[T]()-1) - 1
		return T(m)
	}
	m := ^uint64(0) >> (64 - bitsOf[T]())
	return T(m)
}

// MinValue returns the smallest finite value of T.
func MinValue[T Number]() T {
	switch {
	case IsFloat[T]():
		return -MaxValue[T]()
	case IsSigned[T]():
		return -MaxValue[T]() - 1
	}
	return 0
}

// IsNaN reports whether v is a floating-point NaN.
func IsNaN[T Number](v T) bool {
	return v != v
}

// IsInf reports whether v is an infinite float.
func IsInf[T Number](v T) bool {
	return IsFloat[T]() && math.IsInf(float64(v), 0)
}

// Abs returns the absolute value of v, failing for the minimum signed integer.
func Abs[T Number](v T) (T, error) {
	if v >= 0 || IsNaN(v) {
		return v, nil
	}
	if !IsFloat[T]() && v == MinValue[T]() {
		return 0, dperr.New(dperr.FailedFunction, "|%v| overflows", v)
	}
	return -v, nil
}

// TotalCmp compares a and b and fails if either is NaN. It returns -1, 0 or
// +1 as a < b, a == b or a > b.
func TotalCmp[T Number](a, b T) (int, error) {
	if IsNaN(a) || IsNaN(b) {
		return 0, dperr.New(dperr.FailedFunction, "cannot compare NaN: %v and %v", a, b)
	}
	switch {
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	}
	return 0, nil
}

// TotalLE reports whether a ≤ b, failing if either is NaN.
func TotalLE[T Number](a, b T) (bool, error) {
	c, err := TotalCmp(a, b)
	return c <= 0, err
}

// TotalMax returns the larger of a and b, failing if either is NaN.
func TotalMax[T Number](a, b T) (T, error) {
	c, err := TotalCmp(a, b)
	if err != nil {
		return 0, err
	}
	if c < 0 {
		return b, nil
	}
	return a, nil
}

// SaturatingAdd returns a+b, clamped to the range of T for integers.
func SaturatingAdd[T Number](a, b T) T {
	if IsFloat[T]() {
		return a + b
	}
	s := a + b
	if b > 0 && s < a {
		return MaxValue[T]()
	}
	if b < 0 && s > a {
		return MinValue[T]()
	}
	return s
}

// SaturatingMul returns a*b, clamped to the range of T for integers.
func SaturatingMul[T Number](a, b T) T {
	if IsFloat[T]() {
		return a * b
	}
	p, err := checkedMul(a, b)
	if err == nil {
		return p
	}
	if (a < 0) != (b < 0) {
		return MinValue[T]()
	}
	return MaxValue[T]()
}
