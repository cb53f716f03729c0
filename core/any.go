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

package core

import (
	"fmt"

	"github.com/google/differential-privacy/dpcore/dperr"
)

// AnyDomain is a Domain over values of any type. It wraps a typed domain and
// fails with FailedCast for values of a different type.
type AnyDomain struct {
	inner  any
	member func(any) (bool, error)
}

// IntoAnyDomain erases the carrier type of d.
func IntoAnyDomain[T any](d Domain[T]) AnyDomain {
	return AnyDomain{
		inner: d,
		member: func(v any) (bool, error) {
			t, err := downcast[T](v, "domain member")
			if err != nil {
				return false, err
			}
			return d.Member(t)
		},
	}
}

// Member reports whether v has the carrier type of the wrapped domain and
// belongs to it.
func (d AnyDomain) Member(v any) (bool, error) {
	if d.member == nil {
		return false, dperr.New(dperr.NotImplemented, "empty AnyDomain")
	}
	return d.member(v)
}

func (d AnyDomain) String() string { return fmt.Sprintf("AnyDomain(%v)", d.inner) }

// Inner returns the wrapped domain.
func (d AnyDomain) Inner() any { return d.inner }

// Equal reports whether the wrapped domains are structurally equal.
func (d AnyDomain) Equal(o AnyDomain) bool { return StructurallyEqual(d.inner, o.inner) }

// AnyMetric is a Metric with distances of any type.
type AnyMetric struct {
	inner     spaceChecker
	lessEqual func(a, b any) (bool, error)
}

// IntoAnyMetric erases the distance type of m.
func IntoAnyMetric[Q any](m Metric[Q]) AnyMetric {
	return AnyMetric{inner: m, lessEqual: eraseLessEqual(m.LessEqual)}
}

func (m AnyMetric) String() string { return fmt.Sprintf("AnyMetric(%v)", m.inner) }

// CheckSpace checks the wrapped metric against domain.
func (m AnyMetric) CheckSpace(domain any) error {
	if m.inner == nil {
		return dperr.New(dperr.NotImplemented, "empty AnyMetric")
	}
	return m.inner.CheckSpace(domain)
}

// LessEqual compares two distances of the wrapped metric's distance type.
func (m AnyMetric) LessEqual(a, b any) (bool, error) {
	if m.lessEqual == nil {
		return false, dperr.New(dperr.NotImplemented, "empty AnyMetric")
	}
	return m.lessEqual(a, b)
}

// Inner returns the wrapped metric.
func (m AnyMetric) Inner() any { return m.inner }

// Equal reports whether the wrapped metrics are structurally equal.
func (m AnyMetric) Equal(o AnyMetric) bool { return StructurallyEqual(m.inner, o.inner) }

// AnyMeasure is a Measure with losses of any type.
type AnyMeasure struct {
	inner     fmt.Stringer
	lessEqual func(a, b any) (bool, error)
	compose   func([]any) (any, error)
}

// IntoAnyMeasure erases the loss type of m.
func IntoAnyMeasure[Q any](m Measure[Q]) AnyMeasure {
	return AnyMeasure{
		inner:     m,
		lessEqual: eraseLessEqual(m.LessEqual),
		compose: func(losses []any) (any, error) {
			typed := make([]Q, len(losses))
			for i, l := range losses {
				q, err := downcast[Q](l, "privacy loss")
				if err != nil {
					return nil, err
				}
				typed[i] = q
			}
			return m.Compose(typed)
		},
	}
}

func (m AnyMeasure) String() string { return fmt.Sprintf("AnyMeasure(%v)", m.inner) }

// LessEqual compares two losses of the wrapped measure's loss type.
func (m AnyMeasure) LessEqual(a, b any) (bool, error) {
	if m.lessEqual == nil {
		return false, dperr.New(dperr.NotImplemented, "empty AnyMeasure")
	}
	return m.lessEqual(a, b)
}

// Compose composes losses of the wrapped measure's loss type.
func (m AnyMeasure) Compose(losses []any) (any, error) {
	if m.compose == nil {
		return nil, dperr.New(dperr.NotImplemented, "empty AnyMeasure")
	}
	return m.compose(losses)
}

// Inner returns the wrapped measure.
func (m AnyMeasure) Inner() any { return m.inner }

// Equal reports whether the wrapped measures are structurally equal.
func (m AnyMeasure) Equal(o AnyMeasure) bool { return StructurallyEqual(m.inner, o.inner) }

func eraseLessEqual[Q any](le func(a, b Q) (bool, error)) func(a, b any) (bool, error) {
	return func(a, b any) (bool, error) {
		qa, err := downcast[Q](a, "distance")
		if err != nil {
			return false, err
		}
		qb, err := downcast[Q](b, "distance")
		if err != nil {
			return false, err
		}
		return le(qa, qb)
	}
}

func eraseFunc[TI, TO any](f func(TI) (TO, error), what string) func(any) (any, error) {
	return func(v any) (any, error) {
		arg, err := downcast[TI](v, what)
		if err != nil {
			return nil, err
		}
		out, err := f(arg)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// IntoAnyTransformation erases all type parameters of t.
func IntoAnyTransformation[TI, TO, QI, QO any](t *Transformation[TI, TO, QI, QO]) (*Transformation[any, any, any, any], error) {
	return NewTransformation[any, any, any, any](
		IntoAnyDomain(t.inputDomain),
		IntoAnyDomain(t.outputDomain),
		NewFallibleFunction(eraseFunc(t.function.Eval, "argument")),
		IntoAnyMetric(t.inputMetric),
		IntoAnyMetric(t.outputMetric),
		NewFallibleStabilityMap(eraseFunc(t.stabilityMap.Eval, "input distance")),
	)
}

// IntoAnyMeasurement erases all type parameters of m.
func IntoAnyMeasurement[TI, TO, QI, QO any](m *Measurement[TI, TO, QI, QO]) (*Measurement[any, any, any, any], error) {
	return NewMeasurement[any, any, any, any](
		IntoAnyDomain(m.inputDomain),
		NewFallibleFunction(eraseFunc(m.function.Eval, "argument")),
		IntoAnyMetric(m.inputMetric),
		IntoAnyMeasure(m.outputMeasure),
		NewFalliblePrivacyMap(eraseFunc(m.privacyMap.Eval, "input distance")),
	)
}
