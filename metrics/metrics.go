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

// Package metrics contains the metrics of dpcore. Each metric declares the
// domains on which it is defined through CheckSpace.
package metrics

import (
	"fmt"

	"github.com/google/differential-privacy/dpcore/arith"
	"github.com/google/differential-privacy/dpcore/core"
	"github.com/google/differential-privacy/dpcore/domains"
)

func lessEqualInt(a, b int) (bool, error) { return a <= b, nil }

func vector(domain any) (domains.Vector, error) {
	v, ok := core.Unwrap(domain).(domains.Vector)
	if !ok {
		return nil, fmt.Errorf("%v is not a vector domain", domain)
	}
	return v, nil
}

func nonNullAtom(domain any) error {
	a, ok := core.Unwrap(domain).(domains.Atom)
	if !ok {
		return fmt.Errorf("%v is not an atom domain", domain)
	}
	if a.Nullable() {
		return fmt.Errorf("%v may contain nulls", domain)
	}
	return nil
}

// SymmetricDistance counts the records that are in one dataset but not in
// the other.
type SymmetricDistance struct{}

func (SymmetricDistance) String() string { return "SymmetricDistance()" }

// CheckSpace accepts vector domains.
func (SymmetricDistance) CheckSpace(domain any) error {
	_, err := vector(domain)
	return err
}

// LessEqual compares two distances.
func (SymmetricDistance) LessEqual(a, b int) (bool, error) { return lessEqualInt(a, b) }

// HammingDistance counts the positions at which two datasets of the same
// size differ.
type HammingDistance struct{}

func (HammingDistance) String() string { return "HammingDistance()" }

// CheckSpace accepts vector domains of fixed size.
func (HammingDistance) CheckSpace(domain any) error {
	v, err := vector(domain)
	if err != nil {
		return err
	}
	if _, sized := v.Size(); !sized {
		return fmt.Errorf("HammingDistance requires datasets of known size, got %v", domain)
	}
	return nil
}

// LessEqual compares two distances.
func (HammingDistance) LessEqual(a, b int) (bool, error) { return lessEqualInt(a, b) }

// DiscreteDistance is 0 between equal values and 1 otherwise.
type DiscreteDistance struct{}

func (DiscreteDistance) String() string { return "DiscreteDistance()" }

// CheckSpace accepts every domain.
func (DiscreteDistance) CheckSpace(any) error { return nil }

// LessEqual compares two distances.
func (DiscreteDistance) LessEqual(a, b int) (bool, error) { return lessEqualInt(a, b) }

// AbsoluteDistance is |x - y| between two numbers, with distances of type Q.
type AbsoluteDistance[Q arith.Number] struct{}

func (AbsoluteDistance[Q]) String() string {
	return "AbsoluteDistance(" + core.TypeName[Q]() + ")"
}

// CheckSpace accepts atom domains without nulls.
func (AbsoluteDistance[Q]) CheckSpace(domain any) error { return nonNullAtom(domain) }

// LessEqual compares two distances. It fails for NaN.
func (AbsoluteDistance[Q]) LessEqual(a, b Q) (bool, error) { return arith.TotalLE(a, b) }

// L1Distance is the sum of the absolute elementwise differences between two
// vectors.
type L1Distance[Q arith.Number] struct{}

func (L1Distance[Q]) String() string { return "L1Distance(" + core.TypeName[Q]() + ")" }

// CheckSpace accepts vector domains of atoms without nulls.
func (L1Distance[Q]) CheckSpace(domain any) error { return vectorOfNonNullAtoms(domain) }

// LessEqual compares two distances. It fails for NaN.
func (L1Distance[Q]) LessEqual(a, b Q) (bool, error) { return arith.TotalLE(a, b) }

// L2Distance is the Euclidean distance between two vectors.
type L2Distance[Q arith.Number] struct{}

func (L2Distance[Q]) String() string { return "L2Distance(" + core.TypeName[Q]() + ")" }

// CheckSpace accepts vector domains of atoms without nulls.
func (L2Distance[Q]) CheckSpace(domain any) error { return vectorOfNonNullAtoms(domain) }

// LessEqual compares two distances. It fails for NaN.
func (L2Distance[Q]) LessEqual(a, b Q) (bool, error) { return arith.TotalLE(a, b) }

func vectorOfNonNullAtoms(domain any) error {
	v, err := vector(domain)
	if err != nil {
		return err
	}
	return nonNullAtom(v.Element())
}
