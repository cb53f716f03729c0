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
	"github.com/google/differential-privacy/dpcore/arith"
	"github.com/google/differential-privacy/dpcore/checks"
	"github.com/google/differential-privacy/dpcore/dperr"
)

// StabilityMap bounds the output distance of a transformation given a bound
// on its input distance.
type StabilityMap[QI, QO any] struct {
	m func(QI) (QO, error)
}

// NewStabilityMap returns a StabilityMap that never fails.
func NewStabilityMap[QI, QO any](m func(QI) QO) StabilityMap[QI, QO] {
	return StabilityMap[QI, QO]{m: func(d QI) (QO, error) { return m(d), nil }}
}

// NewFallibleStabilityMap returns a StabilityMap that computes m.
func NewFallibleStabilityMap[QI, QO any](m func(QI) (QO, error)) StabilityMap[QI, QO] {
	return StabilityMap[QI, QO]{m: m}
}

// NewStabilityMapFromConstant returns the map d ↦ c·d, rounded up. The
// constant and the input distance must be nonnegative.
func NewStabilityMapFromConstant[QI, QO arith.Number](c QO) StabilityMap[QI, QO] {
	return StabilityMap[QI, QO]{m: constantMap[QI](c)}
}

// NewStabilityMapFromForward returns the map d ↦ forward(aux, d), where aux
// holds bounds precomputed at construction time.
func NewStabilityMapFromForward[QI, QO, A any](aux A, forward func(aux A, d QI) (QO, error)) StabilityMap[QI, QO] {
	return StabilityMap[QI, QO]{m: func(d QI) (QO, error) { return forward(aux, d) }}
}

// Eval returns the bound on the output distance for input distance d.
func (sm StabilityMap[QI, QO]) Eval(d QI) (QO, error) {
	if sm.m == nil {
		var zero QO
		return zero, dperr.New(dperr.NotImplemented, "stability map is not set")
	}
	return sm.m(d)
}

// ChainStabilityMaps returns d ↦ outer(inner(d)).
func ChainStabilityMaps[QI, QX, QO any](outer StabilityMap[QX, QO], inner StabilityMap[QI, QX]) StabilityMap[QI, QO] {
	return NewFallibleStabilityMap(chainMaps(outer.Eval, inner.Eval))
}

// PrivacyMap bounds the privacy loss of a measurement given a bound on its
// input distance.
type PrivacyMap[QI, QO any] struct {
	m func(QI) (QO, error)
}

// NewPrivacyMap returns a PrivacyMap that never fails.
func NewPrivacyMap[QI, QO any](m func(QI) QO) PrivacyMap[QI, QO] {
	return PrivacyMap[QI, QO]{m: func(d QI) (QO, error) { return m(d), nil }}
}

// NewFalliblePrivacyMap returns a PrivacyMap that computes m.
func NewFalliblePrivacyMap[QI, QO any](m func(QI) (QO, error)) PrivacyMap[QI, QO] {
	return PrivacyMap[QI, QO]{m: m}
}

// NewPrivacyMapFromConstant returns the map d ↦ c·d, rounded up. The
// constant and the input distance must be nonnegative.
func NewPrivacyMapFromConstant[QI, QO arith.Number](c QO) PrivacyMap[QI, QO] {
	return PrivacyMap[QI, QO]{m: constantMap[QI](c)}
}

// NewPrivacyMapFromForward returns the map d ↦ forward(aux, d).
func NewPrivacyMapFromForward[QI, QO, A any](aux A, forward func(aux A, d QI) (QO, error)) PrivacyMap[QI, QO] {
	return PrivacyMap[QI, QO]{m: func(d QI) (QO, error) { return forward(aux, d) }}
}

// Eval returns the bound on the privacy loss for input distance d.
func (pm PrivacyMap[QI, QO]) Eval(d QI) (QO, error) {
	if pm.m == nil {
		var zero QO
		return zero, dperr.New(dperr.NotImplemented, "privacy map is not set")
	}
	return pm.m(d)
}

// ChainPrivacyMap returns d ↦ outer(inner(d)), the privacy map of a
// measurement applied to the output of a transformation.
func ChainPrivacyMap[QI, QX, QO any](outer PrivacyMap[QX, QO], inner StabilityMap[QI, QX]) PrivacyMap[QI, QO] {
	return NewFalliblePrivacyMap(chainMaps(outer.Eval, inner.Eval))
}

func chainMaps[QI, QX, QO any](outer func(QX) (QO, error), inner func(QI) (QX, error)) func(QI) (QO, error) {
	return func(d QI) (QO, error) {
		x, err := inner(d)
		if err != nil {
			var zero QO
			return zero, err
		}
		return outer(x)
	}
}

func constantMap[QI, QO arith.Number](c QO) func(QI) (QO, error) {
	return func(d QI) (QO, error) {
		if err := checks.CheckDistance(c, "constant"); err != nil {
			return 0, err
		}
		if err := checks.CheckDistance(d, "input distance"); err != nil {
			return 0, err
		}
		dOut, err := arith.InfCast[QO](d)
		if err != nil {
			return 0, err
		}
		return arith.InfMul(dOut, c)
	}
}
