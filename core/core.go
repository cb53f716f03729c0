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

// Package core contains the building blocks of differentially private
// computations: domains, metrics and measures, the functions and maps that
// relate them, and the Transformation, Measurement and Odometer types built
// from them.
//
// A Transformation is a function with a stability map: given a bound on the
// distance between two inputs, the map returns a bound on the distance
// between the outputs. A Measurement is a randomized function with a privacy
// map, which bounds the privacy loss of releasing its output. The maps must
// be monotone and must never underestimate; constructors of concrete
// transformations and measurements are responsible for that.
package core

import (
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// Domain is the set of valid values of a carrier type T.
type Domain[T any] interface {
	// Member reports whether v belongs to the domain.
	Member(v T) (bool, error)
	String() string
}

// Metric measures the distance between two values of a domain. Distances
// have type Q.
type Metric[Q any] interface {
	String() string
	// CheckSpace returns an error if the metric is not defined on domain.
	CheckSpace(domain any) error
	// LessEqual reports whether distance a is at most distance b.
	LessEqual(a, b Q) (bool, error)
}

// Measure quantifies the privacy loss of a measurement's release. Losses have
// type Q.
type Measure[Q any] interface {
	String() string
	// LessEqual reports whether loss a is at most loss b.
	LessEqual(a, b Q) (bool, error)
	// Compose bounds the total loss of releasing one output with each of the
	// given losses, computed on the same data. Composing no losses yields the
	// zero loss.
	Compose(losses []Q) (Q, error)
}

// spaceChecker is the part of Metric that does not depend on the distance type.
type spaceChecker interface {
	String() string
	CheckSpace(domain any) error
}

// CheckMetricSpace returns an error if metric is not defined on domain.
func CheckMetricSpace(domain any, metric spaceChecker) error {
	if err := metric.CheckSpace(domain); err != nil {
		return fmt.Errorf("%v is not a metric on %v: %w", metric, domain, err)
	}
	return nil
}

// Unwrap returns the value wrapped by a type-erased domain, metric or measure,
// or v itself.
func Unwrap(v any) any {
	for {
		w, ok := v.(interface{ Inner() any })
		if !ok {
			return v
		}
		v = w.Inner()
	}
}

var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

// StructurallyEqual reports whether two domains, metrics or measures denote
// the same set or distance: they have the same type and the same parameters.
func StructurallyEqual(a, b any) bool {
	return cmp.Equal(Unwrap(a), Unwrap(b), exportAll)
}

// StructuralDiff describes the parameters in which a and b differ.
func StructuralDiff(a, b any) string {
	return cmp.Diff(Unwrap(a), Unwrap(b), exportAll)
}

// TypeName returns the name of T, for use in descriptions.
func TypeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
