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

package rand

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/google/differential-privacy/dpcore/dperr"
	"github.com/grd/stat"
)

// useBytes makes the package read from b until the returned function is called.
func useBytes(b []byte) func() {
	randBufLock.Lock()
	orig := randBuf
	randBuf = bytes.NewReader(b)
	randBufLock.Unlock()
	randBitPos = math.MaxInt8
	return func() {
		randBufLock.Lock()
		randBuf = orig
		randBufLock.Unlock()
		randBitPos = math.MaxInt8
	}
}

func TestBooleanBufIsShifting(t *testing.T) {
	defer useBytes([]byte{
		0b00100100,
		0b10010000,
	})()
	for pos, want := range []bool{
		// first byte
		false,
		false,
		true,
		false,
		false,
		true,
		false,
		false,
		// second byte
		false,
		false,
		false,
		false,
		true,
		false,
		false,
		true,
	} {
		got, err := Boolean()
		if err != nil {
			t.Fatalf("Boolean: got err %v in %v-th iteration", err, pos)
		}
		if got != want {
			t.Errorf("Boolean: got %v, want %v in %v-th iteration", got, want, pos)
		}
	}
}

func TestOutOfRandomness(t *testing.T) {
	defer useBytes(nil)()
	if _, err := U64(); !errors.Is(err, dperr.ErrFailedFunction) {
		t.Errorf("U64: with an exhausted source got err %v, want FailedFunction", err)
	}
	if _, err := Bernoulli(0.5, true); !errors.Is(err, dperr.ErrFailedFunction) {
		t.Errorf("Bernoulli: with an exhausted source got err %v, want FailedFunction", err)
	}
}

func TestGeometric(t *testing.T) {
	defer useBytes([]byte{0, 0, 0b00010000})()
	got, err := Geometric()
	if err != nil {
		t.Fatalf("Geometric: got err %v", err)
	}
	if want := 20.0; got != want {
		t.Errorf("Geometric: got %v, want %v", got, want)
	}
}

func TestBernoulliReadsBinaryExpansion(t *testing.T) {
	for _, tc := range []struct {
		desc         string
		prob         float64
		b            byte
		constantTime bool
		want         bool
	}{
		// 0.75 = 0.11b, 0.5 = 0.1b, 0.625 = 0.101b.
		{"first heads at position 2 of 0.11b", 0.75, 0b01000000, false, true},
		{"first heads at position 2 of 0.1b", 0.5, 0b01000000, false, false},
		{"first heads at position 3 of 0.101b", 0.625, 0b00100000, false, true},
		{"first heads at position 1 of 0.101b", 0.625, 0b10000000, true, true},
		{"first heads at position 2 of 0.101b", 0.625, 0b01000000, true, false},
		{"zero probability", 0, 0b10000000, false, false},
		{"probability one", 1, 0b00000001, false, true},
	} {
		buf := make([]byte, constantTimeBytes)
		buf[0] = tc.b
		restore := useBytes(buf)
		got, err := Bernoulli(tc.prob, tc.constantTime)
		restore()
		if err != nil {
			t.Errorf("Bernoulli: when %s got err %v", tc.desc, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Bernoulli: when %s got %t, want %t", tc.desc, got, tc.want)
		}
	}
}

func TestBernoulliRejectsInvalidProbability(t *testing.T) {
	for _, p := range []float64{-0.1, 1.1, math.NaN()} {
		if _, err := Bernoulli(p, false); !errors.Is(err, dperr.ErrFailedFunction) {
			t.Errorf("Bernoulli(%f): got err %v, want FailedFunction", p, err)
		}
	}
}

func TestBernoulliStatistics(t *testing.T) {
	const numberOfSamples = 100000
	for _, constantTime := range []bool{false, true} {
		for _, prob := range []float64{0.1, 0.5, 0.9} {
			samples := make(stat.Float64Slice, numberOfSamples)
			for i := range samples {
				b, err := Bernoulli(prob, constantTime)
				if err != nil {
					t.Fatalf("Bernoulli(%f): got err %v", prob, err)
				}
				if b {
					samples[i] = 1
				}
			}
			sampleMean := stat.Mean(samples)
			// The tolerance is the 99.9995% quantile of the sample mean's
			// approximately Gaussian distribution.
			tolerance := 4.41717 * math.Sqrt(prob*(1-prob)/numberOfSamples)
			if math.Abs(sampleMean-prob) > tolerance {
				t.Errorf("Bernoulli(%f, %t): got mean %f, want %f", prob, constantTime, sampleMean, prob)
			}
		}
	}
}

func TestUniformRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		u, err := Uniform()
		if err != nil {
			t.Fatalf("Uniform: got err %v", err)
		}
		if u <= 0 || u > 1 {
			t.Fatalf("Uniform: got %f, want a value in (0, 1]", u)
		}
	}
}
