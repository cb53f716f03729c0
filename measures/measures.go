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

// Package measures contains the privacy measures of dpcore, each with the
// basic composition rule for losses computed on the same data.
package measures

import (
	"fmt"

	"github.com/google/differential-privacy/dpcore/arith"
	"github.com/google/differential-privacy/dpcore/checks"
)

// sum adds nonnegative losses, rounding up.
func sum(losses []float64, name string) (float64, error) {
	var total float64
	for _, l := range losses {
		if err := checks.CheckDistance(l, name); err != nil {
			return 0, err
		}
		var err error
		if total, err = arith.InfAdd(total, l); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// MaxDivergence is pure differential privacy: the loss is ε.
type MaxDivergence struct{}

func (MaxDivergence) String() string { return "MaxDivergence()" }

// LessEqual compares two values of ε.
func (MaxDivergence) LessEqual(a, b float64) (bool, error) { return arith.TotalLE(a, b) }

// Compose returns the sum of the ε, rounded up.
func (MaxDivergence) Compose(losses []float64) (float64, error) { return sum(losses, "epsilon") }

// ZeroConcentratedDivergence is zero-concentrated differential privacy: the
// loss is ρ.
type ZeroConcentratedDivergence struct{}

func (ZeroConcentratedDivergence) String() string { return "ZeroConcentratedDivergence()" }

// LessEqual compares two values of ρ.
func (ZeroConcentratedDivergence) LessEqual(a, b float64) (bool, error) { return arith.TotalLE(a, b) }

// Compose returns the sum of the ρ, rounded up.
func (ZeroConcentratedDivergence) Compose(losses []float64) (float64, error) {
	return sum(losses, "rho")
}

// EpsDelta is the loss of approximate differential privacy.
type EpsDelta struct {
	Epsilon, Delta float64
}

func (p EpsDelta) String() string { return fmt.Sprintf("(ε=%v, δ=%v)", p.Epsilon, p.Delta) }

// FixedSmoothedMaxDivergence is approximate differential privacy with a
// single (ε, δ) pair.
type FixedSmoothedMaxDivergence struct{}

func (FixedSmoothedMaxDivergence) String() string { return "FixedSmoothedMaxDivergence()" }

// LessEqual reports whether a is at most b in both ε and δ.
func (FixedSmoothedMaxDivergence) LessEqual(a, b EpsDelta) (bool, error) {
	epsOK, err := arith.TotalLE(a.Epsilon, b.Epsilon)
	if err != nil {
		return false, err
	}
	deltaOK, err := arith.TotalLE(a.Delta, b.Delta)
	if err != nil {
		return false, err
	}
	return epsOK && deltaOK, nil
}

// Compose sums ε and δ separately, rounding up.
func (FixedSmoothedMaxDivergence) Compose(losses []EpsDelta) (EpsDelta, error) {
	eps := make([]float64, len(losses))
	deltas := make([]float64, len(losses))
	for i, l := range losses {
		eps[i], deltas[i] = l.Epsilon, l.Delta
	}
	e, err := sum(eps, "epsilon")
	if err != nil {
		return EpsDelta{}, err
	}
	d, err := sum(deltas, "delta")
	if err != nil {
		return EpsDelta{}, err
	}
	return EpsDelta{Epsilon: e, Delta: d}, nil
}
