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

package measurements

import (
	"math"

	"github.com/google/differential-privacy/dpcore/arith"
	"github.com/google/differential-privacy/dpcore/checks"
	"github.com/google/differential-privacy/dpcore/core"
	"github.com/google/differential-privacy/dpcore/domains"
	"github.com/google/differential-privacy/dpcore/dperr"
	"github.com/google/differential-privacy/dpcore/measures"
	"github.com/google/differential-privacy/dpcore/metrics"
	"github.com/google/differential-privacy/dpcore/rand"
)

// MakeRandomizedResponseBool returns a measurement that releases its boolean
// input with probability prob and its negation otherwise. prob must lie in
// [0.5, 1). Its privacy map is ε = ln(prob / (1 - prob)) for any nonzero
// input distance. With constantTime set, the running time does not depend on
// the outcome.
func MakeRandomizedResponseBool(prob float64, constantTime bool) (*core.Measurement[bool, bool, int, float64], error) {
	if err := checks.CheckResponseProbability(prob); err != nil {
		return nil, dperr.Wrap(dperr.MakeMeasurement, err)
	}
	// 1 - prob is exact for prob in [0.5, 1).
	ratio, err := arith.InfDiv(prob, 1-prob)
	if err != nil {
		return nil, dperr.Wrap(dperr.MakeMeasurement, err)
	}
	epsilon := math.Log(ratio)
	if epsilon > 0 {
		// math.Log is not correctly rounded.
		epsilon = math.Nextafter(epsilon, math.Inf(1))
	}
	return core.NewMeasurement[bool, bool, int, float64](
		domains.NewAtomDomain[bool](),
		core.NewFallibleFunction(func(arg bool) (bool, error) {
			keep, err := rand.Bernoulli(prob, constantTime)
			if err != nil {
				return false, err
			}
			return arg == keep, nil
		}),
		metrics.DiscreteDistance{},
		measures.MaxDivergence{},
		core.NewFalliblePrivacyMap(func(dIn int) (float64, error) {
			if err := checks.CheckDistance(dIn, "input distance"); err != nil {
				return 0, err
			}
			if dIn == 0 {
				return 0, nil
			}
			return epsilon, nil
		}),
	)
}
