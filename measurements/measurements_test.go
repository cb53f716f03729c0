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
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/grd/stat"

	"github.com/google/differential-privacy/dpcore/dperr"
)

const ln3 = 1.09861228866810969139524523692252570464749055782274945173469433

func nearEqual(a, b, maxError float64) bool {
	return math.Abs(a-b) < maxError
}

func TestGeometricStatistics(t *testing.T) {
	const numberOfSamples = 125000
	for _, tc := range []struct {
		lambda float64
		mean   float64
		stdDev float64
	}{
		{
			lambda: 0.1,
			mean:   10.50833,
			stdDev: 9.99583,
		},
		{
			lambda: 0.0001,
			mean:   10000.50001,
			stdDev: 9999.99999,
		},
	} {
		samples := make(stat.IntSlice, numberOfSamples)
		for i := 0; i < numberOfSamples; i++ {
			g, err := geometric(tc.lambda)
			if err != nil {
				t.Fatalf("geometric(%f): got err %v", tc.lambda, err)
			}
			samples[i] = g
		}
		sampleMean := stat.Mean(samples)
		// The meanErrorTolerance is set to the 99.9995% quantile of the anticipated distribution
		// of sampleMean. Thus, the test falsely rejects with a probability of 10⁻⁵.
		meanErrorTolerance := 4.41717 * tc.stdDev / math.Sqrt(float64(numberOfSamples))
		if !nearEqual(sampleMean, tc.mean, meanErrorTolerance) {
			t.Errorf("geometric: got mean = %f, want %f (parameters %+v)", sampleMean, tc.mean, tc)
		}
	}
}

func TestLaplaceStatistics(t *testing.T) {
	const numberOfSamples = 125000
	for _, tc := range []struct {
		scale, mean float64
	}{
		{scale: 1.0, mean: 0.0},
		{scale: 1.0 / ln3, mean: 0.0},
		{scale: 1.0 / ln3, mean: 45941223.02107},
		{scale: 2.0, mean: -3.5},
	} {
		m, err := MakeLaplace(tc.scale)
		if err != nil {
			t.Fatalf("MakeLaplace(%f): got err %v", tc.scale, err)
		}
		samples := make(stat.Float64Slice, numberOfSamples)
		for i := 0; i < numberOfSamples; i++ {
			if samples[i], err = m.Invoke(tc.mean); err != nil {
				t.Fatalf("Invoke: got err %v", err)
			}
		}
		variance := 2 * tc.scale * tc.scale
		sampleMean, sampleVariance := stat.Mean(samples), stat.Variance(samples)
		// Both tolerances are the 99.9995% quantiles of the anticipated
		// distributions, so the test falsely rejects with a probability of 10⁻⁵.
		meanErrorTolerance := 4.41717 * math.Sqrt(variance/float64(numberOfSamples))
		varianceErrorTolerance := 4.41717 * math.Sqrt(5.0) * variance / math.Sqrt(float64(numberOfSamples))
		if !nearEqual(sampleMean, tc.mean, meanErrorTolerance) {
			t.Errorf("Laplace: got mean = %f, want %f (parameters %+v)", sampleMean, tc.mean, tc)
		}
		if !nearEqual(sampleVariance, variance, varianceErrorTolerance) {
			t.Errorf("Laplace: got variance = %f, want %f (parameters %+v)", sampleVariance, variance, tc)
		}
	}
}

func TestDiscreteLaplaceStatistics(t *testing.T) {
	const numberOfSamples = 125000
	const scale = 3.0
	m, err := MakeDiscreteLaplace(scale)
	if err != nil {
		t.Fatalf("MakeDiscreteLaplace: got err %v", err)
	}
	samples := make(stat.IntSlice, numberOfSamples)
	for i := 0; i < numberOfSamples; i++ {
		if samples[i], err = m.Invoke(100); err != nil {
			t.Fatalf("Invoke: got err %v", err)
		}
	}
	// The two-sided geometric distribution with parameter λ has variance
	// 2e^-λ / (1 - e^-λ)².
	lambda := 1 / scale
	variance := 2 * math.Exp(-lambda) / math.Pow(-math.Expm1(-lambda), 2)
	meanErrorTolerance := 4.41717 * math.Sqrt(variance/float64(numberOfSamples))
	if got := stat.Mean(samples); !nearEqual(got, 100, meanErrorTolerance) {
		t.Errorf("DiscreteLaplace: got mean = %f, want 100", got)
	}
}

func TestLaplacePrivacyMap(t *testing.T) {
	m, err := MakeLaplace(2)
	if err != nil {
		t.Fatalf("MakeLaplace: got err %v", err)
	}
	eps, err := m.Map(1)
	if err != nil {
		t.Fatalf("Map(1): got err %v", err)
	}
	// The granularity is 2^-39, which inflates ε slightly above 1/2.
	if eps <= 0.5 || eps > 0.5+1e-11 {
		t.Errorf("Map(1): got %v, want slightly above 0.5", eps)
	}
	if eps, err := m.Map(0); err != nil || eps != 0 {
		t.Errorf("Map(0): got (%v, %v), want (0, nil)", eps, err)
	}
	if _, err := m.Map(-1); !errors.Is(err, dperr.ErrInvalidDistance) {
		t.Errorf("Map(-1): got err %v, want InvalidDistance", err)
	}
	ok, err := m.Check(1, 0.5)
	if err != nil || ok {
		t.Errorf("Check(1, 0.5): got (%t, %v), want (false, nil)", ok, err)
	}
}

func TestDiscreteLaplacePrivacyMap(t *testing.T) {
	m, err := MakeDiscreteLaplace(4)
	if err != nil {
		t.Fatalf("MakeDiscreteLaplace: got err %v", err)
	}
	if eps, err := m.Map(2); err != nil || eps != 0.5 {
		t.Errorf("Map(2): got (%v, %v), want (0.5, nil)", eps, err)
	}
}

func TestZeroScale(t *testing.T) {
	m, err := MakeLaplace(0)
	if err != nil {
		t.Fatalf("MakeLaplace(0): got err %v", err)
	}
	if got, err := m.Invoke(1.25); err != nil || got != 1.25 {
		t.Errorf("Invoke(1.25): got (%v, %v), want (1.25, nil)", got, err)
	}
	if eps, err := m.Map(1); err != nil || !math.IsInf(eps, 1) {
		t.Errorf("Map(1): got (%v, %v), want (+Inf, nil)", eps, err)
	}
}

func TestInvalidScale(t *testing.T) {
	for _, scale := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := MakeLaplace(scale); !errors.Is(err, dperr.ErrMakeMeasurement) {
			t.Errorf("MakeLaplace(%v): got err %v, want MakeMeasurement", scale, err)
		}
		if _, err := MakeDiscreteLaplace(scale); !errors.Is(err, dperr.ErrMakeMeasurement) {
			t.Errorf("MakeDiscreteLaplace(%v): got err %v, want MakeMeasurement", scale, err)
		}
	}
}

func TestRandomizedResponseBool(t *testing.T) {
	for _, tc := range []struct {
		desc         string
		prob         float64
		constantTime bool
		wantEps      float64
	}{
		{"coin flip", 0.5, false, 0},
		{"three to one", 0.75, false, ln3},
		{"three to one, constant time", 0.75, true, ln3},
	} {
		m, err := MakeRandomizedResponseBool(tc.prob, tc.constantTime)
		if err != nil {
			t.Fatalf("MakeRandomizedResponseBool: when %s got err %v", tc.desc, err)
		}
		eps, err := m.Map(1)
		if err != nil {
			t.Fatalf("Map(1): when %s got err %v", tc.desc, err)
		}
		if eps < tc.wantEps || !cmp.Equal(eps, tc.wantEps, cmpopts.EquateApprox(0, 1e-15)) {
			t.Errorf("Map(1): when %s got %v, want %v rounded up", tc.desc, eps, tc.wantEps)
		}

		const numberOfSamples = 20000
		kept := make(stat.Float64Slice, numberOfSamples)
		for i := range kept {
			v, err := m.Invoke(true)
			if err != nil {
				t.Fatalf("Invoke: when %s got err %v", tc.desc, err)
			}
			if v {
				kept[i] = 1
			}
		}
		tolerance := 4.41717 * math.Sqrt(tc.prob*(1-tc.prob)/numberOfSamples)
		if got := stat.Mean(kept); !nearEqual(got, tc.prob, tolerance) {
			t.Errorf("Invoke: when %s kept the input with frequency %f, want %f", tc.desc, got, tc.prob)
		}
	}
	for _, prob := range []float64{0.4, 1, math.NaN()} {
		if _, err := MakeRandomizedResponseBool(prob, false); !errors.Is(err, dperr.ErrMakeMeasurement) {
			t.Errorf("MakeRandomizedResponseBool(%v): got err %v, want MakeMeasurement", prob, err)
		}
	}
}

func TestLaplaceAccuracy(t *testing.T) {
	for _, tc := range []struct {
		scale, alpha, accuracy float64
	}{
		{1, 0.05, -math.Log(0.05)},
		{2.5, 0.1, -2.5 * math.Log(0.1)},
	} {
		acc, err := LaplacianScaleToAccuracy(tc.scale, tc.alpha)
		if err != nil || !cmp.Equal(acc, tc.accuracy, cmpopts.EquateApprox(1e-9, 0)) {
			t.Errorf("LaplacianScaleToAccuracy(%v, %v): got (%v, %v), want %v", tc.scale, tc.alpha, acc, err, tc.accuracy)
		}
		scale, err := AccuracyToLaplacianScale(tc.accuracy, tc.alpha)
		if err != nil || !cmp.Equal(scale, tc.scale, cmpopts.EquateApprox(1e-9, 0)) {
			t.Errorf("AccuracyToLaplacianScale(%v, %v): got (%v, %v), want %v", tc.accuracy, tc.alpha, scale, err, tc.scale)
		}
	}
	if _, err := LaplacianScaleToAccuracy(1, 0); err == nil {
		t.Errorf("LaplacianScaleToAccuracy(1, 0): got no error, want error")
	}
}
