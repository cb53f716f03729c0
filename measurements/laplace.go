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

// Package measurements provides noise mechanisms satisfying pure
// differential privacy.
package measurements

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/google/differential-privacy/dpcore/arith"
	"github.com/google/differential-privacy/dpcore/checks"
	"github.com/google/differential-privacy/dpcore/core"
	"github.com/google/differential-privacy/dpcore/domains"
	"github.com/google/differential-privacy/dpcore/dperr"
	"github.com/google/differential-privacy/dpcore/measures"
	"github.com/google/differential-privacy/dpcore/metrics"
	"github.com/google/differential-privacy/dpcore/rand"
)

// granularityParam determines the resolution of the numerical noise that is
// being generated relative to the scale of the noise. Its value ensures that
// the noise is sampled from a grid of at least 2^40 points per scale unit.
var granularityParam = math.Exp2(40.0)

// geometric draws a sample from a geometric distribution with parameter
// p = 1 - e^-λ, i.e., the number of Bernoulli trials until the first success.
// Samples exceeding math.MaxInt64 are truncated to math.MaxInt64.
func geometric(lambda float64) (int64, error) {
	u, err := rand.Uniform()
	if err != nil {
		return 0, err
	}
	if u > -1.0*math.Expm1(-1.0*lambda*math.MaxInt64) {
		return math.MaxInt64, nil
	}

	// Binary search for the sample in (left, right]. Each step keeps the left
	// or the right half with the probability of the sample lying in it.
	var left int64 = 0
	var right int64 = math.MaxInt64
	for left+1 < right {
		// mid splits the probability mass of the interval roughly in half.
		mid := left - int64(math.Floor((math.Log(0.5)+math.Log1p(math.Exp(lambda*float64(left-right))))/lambda))
		if mid <= left {
			mid = left + 1
		} else if mid >= right {
			mid = right - 1
		}

		// q = Pr[X ≤ mid | left < X ≤ right]
		q := math.Expm1(lambda*float64(left-mid)) / math.Expm1(lambda*float64(left-right))
		u, err := rand.Uniform()
		if err != nil {
			return 0, err
		}
		if u <= q {
			right = mid
		} else {
			left = mid
		}
	}
	return right, nil
}

// twoSidedGeometric draws a sample from a distribution with probability mass
// proportional to e^(-λ|k|) on the integers k.
func twoSidedGeometric(lambda float64) (int64, error) {
	var sample int64 = 0
	var sign int64 = -1
	// Keep a sample of 0 only if the sign is positive. Otherwise, the
	// probability of 0 would be twice as high as it should be.
	for sample == 0 && sign == -1 {
		g, err := geometric(lambda)
		if err != nil {
			return 0, err
		}
		if sign, err = rand.Sign(); err != nil {
			return 0, err
		}
		sample = g - 1
	}
	return sample * sign, nil
}

func checkNoiseScale(scale float64) error {
	if err := checks.CheckScale(scale); err != nil {
		return dperr.Wrap(dperr.MakeMeasurement, err)
	}
	if math.IsInf(scale, 1) {
		return dperr.New(dperr.MakeMeasurement, "Scale is +Inf, must be finite")
	}
	return nil
}

// MakeLaplace returns a measurement that adds Laplace noise of the given
// scale to a float64.
//
// The noise is sampled on a grid whose spacing is a power of two, and the
// input is rounded to the same grid first. Rounding can move adjacent inputs
// apart by up to one grid step, so the privacy map charges ε = (d_in + g) /
// scale for a grid step g.
func MakeLaplace(scale float64) (*core.Measurement[float64, float64, float64, float64], error) {
	if err := checkNoiseScale(scale); err != nil {
		return nil, err
	}
	granularity := arith.CeilPowerOfTwo(scale / granularityParam)
	return core.NewMeasurement[float64, float64, float64, float64](
		domains.NewAtomDomain[float64](),
		core.NewFallibleFunction(func(x float64) (float64, error) {
			if scale == 0 {
				return x, nil
			}
			sample, err := twoSidedGeometric(granularity / scale)
			if err != nil {
				return 0, err
			}
			return arith.RoundToMultipleOfPowerOfTwo(x, granularity) + float64(sample)*granularity, nil
		}),
		metrics.AbsoluteDistance[float64]{},
		measures.MaxDivergence{},
		core.NewFalliblePrivacyMap(func(dIn float64) (float64, error) {
			if err := checks.CheckDistance(dIn, "input distance"); err != nil {
				return 0, err
			}
			if dIn == 0 {
				return 0, nil
			}
			if scale == 0 {
				return math.Inf(1), nil
			}
			d, err := arith.InfAdd(dIn, granularity)
			if err != nil {
				return 0, err
			}
			return arith.InfDiv(d, scale)
		}),
	)
}

// MakeDiscreteLaplace returns a measurement that adds noise from the
// two-sided geometric distribution with parameter 1/scale to an int64,
// saturating at the limits of int64. Its privacy map is ε = d_in / scale.
func MakeDiscreteLaplace(scale float64) (*core.Measurement[int64, int64, int64, float64], error) {
	if err := checkNoiseScale(scale); err != nil {
		return nil, err
	}
	return core.NewMeasurement[int64, int64, int64, float64](
		domains.NewAtomDomain[int64](),
		core.NewFallibleFunction(func(x int64) (int64, error) {
			if scale == 0 {
				return x, nil
			}
			sample, err := twoSidedGeometric(1 / scale)
			if err != nil {
				return 0, err
			}
			return arith.SaturatingAdd(x, sample), nil
		}),
		metrics.AbsoluteDistance[int64]{},
		measures.MaxDivergence{},
		core.NewFalliblePrivacyMap(func(dIn int64) (float64, error) {
			if err := checks.CheckDistance(dIn, "input distance"); err != nil {
				return 0, err
			}
			if dIn == 0 {
				return 0, nil
			}
			if scale == 0 {
				return math.Inf(1), nil
			}
			d, err := arith.InfCast[float64](dIn)
			if err != nil {
				return 0, err
			}
			return arith.InfDiv(d, scale)
		}),
	)
}

// LaplacianScaleToAccuracy returns the accuracy a such that Laplace noise of
// the given scale exceeds a in absolute value with probability alpha.
func LaplacianScaleToAccuracy(scale, alpha float64) (float64, error) {
	if err := checks.CheckScale(scale); err != nil {
		return 0, err
	}
	if err := checks.CheckAlpha(alpha); err != nil {
		return 0, err
	}
	return distuv.Laplace{Mu: 0, Scale: scale}.Quantile(1 - alpha/2), nil
}

// AccuracyToLaplacianScale returns the scale of Laplace noise that exceeds
// accuracy in absolute value with probability alpha.
func AccuracyToLaplacianScale(accuracy, alpha float64) (float64, error) {
	if err := checks.CheckScale(accuracy, "accuracy"); err != nil {
		return 0, err
	}
	if err := checks.CheckAlpha(alpha); err != nil {
		return 0, err
	}
	return accuracy / distuv.Laplace{Mu: 0, Scale: 1}.Quantile(1-alpha/2), nil
}
