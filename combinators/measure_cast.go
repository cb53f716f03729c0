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

package combinators

import (
	"github.com/google/differential-privacy/dpcore/arith"
	"github.com/google/differential-privacy/dpcore/core"
	"github.com/google/differential-privacy/dpcore/dperr"
	"github.com/google/differential-privacy/dpcore/measures"
)

func checkPureDP[TI, TO, QI any](m *core.Measurement[TI, TO, QI, float64]) error {
	return checkMatch(dperr.MeasureMismatch, m.OutputMeasure(), measures.MaxDivergence{})
}

// MakePureDPToFixedApproxDP casts a measurement satisfying ε-DP to one
// satisfying (ε, 0)-DP.
func MakePureDPToFixedApproxDP[TI, TO, QI any](m *core.Measurement[TI, TO, QI, float64]) (*core.Measurement[TI, TO, QI, measures.EpsDelta], error) {
	if err := checkPureDP(m); err != nil {
		return nil, err
	}
	pm := m.PrivacyMap()
	return core.NewMeasurement(
		m.InputDomain(),
		m.Function(),
		m.InputMetric(),
		core.Measure[measures.EpsDelta](measures.FixedSmoothedMaxDivergence{}),
		core.NewFalliblePrivacyMap(func(dIn QI) (measures.EpsDelta, error) {
			eps, err := pm.Eval(dIn)
			if err != nil {
				return measures.EpsDelta{}, err
			}
			return measures.EpsDelta{Epsilon: eps}, nil
		}),
	)
}

// MakePureDPToZCDP casts a measurement satisfying ε-DP to one satisfying
// ρ-zCDP with ρ = ε²/2.
func MakePureDPToZCDP[TI, TO, QI any](m *core.Measurement[TI, TO, QI, float64]) (*core.Measurement[TI, TO, QI, float64], error) {
	if err := checkPureDP(m); err != nil {
		return nil, err
	}
	pm := m.PrivacyMap()
	return core.NewMeasurement(
		m.InputDomain(),
		m.Function(),
		m.InputMetric(),
		core.Measure[float64](measures.ZeroConcentratedDivergence{}),
		core.NewFalliblePrivacyMap(func(dIn QI) (float64, error) {
			eps, err := pm.Eval(dIn)
			if err != nil {
				return 0, err
			}
			sq, err := arith.InfMul(eps, eps)
			if err != nil {
				return 0, err
			}
			return arith.InfDiv(sq, 2)
		}),
	)
}
