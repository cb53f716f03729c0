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

// Package domains contains the domains of dpcore: sets of valid values of a
// carrier type.
package domains

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/differential-privacy/dpcore/arith"
	"github.com/google/differential-privacy/dpcore/checks"
	"github.com/google/differential-privacy/dpcore/core"
	"github.com/google/differential-privacy/dpcore/dperr"
)

// Atom is implemented by the domains of single values. Metrics use it to
// decide whether they are defined on a domain.
type Atom interface {
	// Nullable reports whether the domain contains a null value (NaN).
	Nullable() bool
	atom()
}

// Bounds is a closed interval [lower, upper].
type Bounds[T arith.Number] struct {
	lower, upper T
}

// NewBounds returns the interval [lower, upper].
func NewBounds[T arith.Number](lower, upper T) (Bounds[T], error) {
	if err := checks.CheckBounds(lower, upper); err != nil {
		return Bounds[T]{}, err
	}
	return Bounds[T]{lower: lower, upper: upper}, nil
}

// Lower returns the lower bound.
func (b Bounds[T]) Lower() T { return b.lower }

// Upper returns the upper bound.
func (b Bounds[T]) Upper() T { return b.upper }

// Contains reports whether v is in the interval. It fails for NaN.
func (b Bounds[T]) Contains(v T) (bool, error) {
	lowerOK, err := arith.TotalLE(b.lower, v)
	if err != nil {
		return false, err
	}
	upperOK, err := arith.TotalLE(v, b.upper)
	if err != nil {
		return false, err
	}
	return lowerOK && upperOK, nil
}

func (b Bounds[T]) String() string { return fmt.Sprintf("[%v, %v]", b.lower, b.upper) }

func (b Bounds[T]) interval() (T, T) { return b.lower, b.upper }

// bounder is the type-erased part of Bounds, so that AtomDomain can hold
// bounds of any numeric carrier.
type bounder[T any] interface {
	Contains(v T) (bool, error)
	String() string
	interval() (T, T)
}

// AtomDomain is the domain of single values of type T, optionally restricted
// to an interval and optionally including null.
type AtomDomain[T any] struct {
	bounds   bounder[T]
	nullable bool
}

// NewAtomDomain returns the domain of all non-null values of type T.
func NewAtomDomain[T any]() AtomDomain[T] {
	return AtomDomain[T]{}
}

// NewBoundedAtomDomain returns the domain of the values of T in
// [lower, upper].
func NewBoundedAtomDomain[T arith.Number](lower, upper T) (AtomDomain[T], error) {
	b, err := NewBounds(lower, upper)
	if err != nil {
		return AtomDomain[T]{}, err
	}
	return AtomDomain[T]{bounds: b}, nil
}

// NewNullableAtomDomain returns the domain of all values of a float type,
// including NaN.
func NewNullableAtomDomain[T arith.Float]() AtomDomain[T] {
	return AtomDomain[T]{nullable: true}
}

// Member reports whether v belongs to the domain.
func (d AtomDomain[T]) Member(v T) (bool, error) {
	if isNull(v) {
		return d.nullable, nil
	}
	if d.bounds == nil {
		return true, nil
	}
	return d.bounds.Contains(v)
}

// Bounds returns the interval of the domain, if it is bounded.
func (d AtomDomain[T]) Bounds() (lower, upper T, ok bool) {
	if d.bounds == nil {
		return lower, upper, false
	}
	lower, upper = d.bounds.interval()
	return lower, upper, true
}

// Nullable reports whether NaN is a member of the domain.
func (d AtomDomain[T]) Nullable() bool { return d.nullable }

func (AtomDomain[T]) atom() {}

func (d AtomDomain[T]) String() string {
	var params []string
	if d.bounds != nil {
		params = append(params, "bounds="+d.bounds.String())
	}
	if d.nullable {
		params = append(params, "nullable=true")
	}
	params = append(params, "T="+core.TypeName[T]())
	return "AtomDomain(" + strings.Join(params, ", ") + ")"
}

func isNull(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	}
	return false
}

// AllDomain is the domain of every value of type T.
type AllDomain[T any] struct{}

// NewAllDomain returns the domain of every value of type T.
func NewAllDomain[T any]() AllDomain[T] { return AllDomain[T]{} }

// Member always reports true.
func (AllDomain[T]) Member(T) (bool, error) { return true, nil }

func (AllDomain[T]) String() string { return "AllDomain(" + core.TypeName[T]() + ")" }

// PolyDomain is the domain of type-erased values that hold a T.
type PolyDomain[T any] struct {
	inner core.Domain[T]
}

// NewPolyDomain returns the domain of type-erased values whose dynamic type
// is T and that belong to inner.
func NewPolyDomain[T any](inner core.Domain[T]) PolyDomain[T] {
	return PolyDomain[T]{inner: inner}
}

// Member downcasts v to T and checks it against the inner domain.
func (d PolyDomain[T]) Member(v any) (bool, error) {
	t, ok := v.(T)
	if !ok {
		return false, dperr.New(dperr.FailedCast, "Failed downcast of %T to %s", v, core.TypeName[T]())
	}
	return d.inner.Member(t)
}

func (d PolyDomain[T]) String() string { return fmt.Sprintf("PolyDomain(%v)", d.inner) }
