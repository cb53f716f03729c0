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

package measures

import (
	"math"
	"testing"

	"github.com/google/differential-privacy/dpcore/core"
)

// The measures must satisfy the interfaces used by the combinators.
var (
	_ core.Measure[float64]  = MaxDivergence{}
	_ core.Measure[float64]  = ZeroConcentratedDivergence{}
	_ core.Measure[EpsDelta] = FixedSmoothedMaxDivergence{}
)

func TestMaxDivergenceCompose(t *testing.T) {
	for _, tc := range []struct {
		desc    string
		losses  []float64
		want    float64
		wantErr bool
	}{
		{"no losses", nil, 0, false},
		{"budget schedule", []float64{0.1, 0.1, 0.3, 0.5}, 1.0, false},
		{"infinite loss", []float64{1, math.Inf(1)}, math.Inf(1), false},
		{"negative loss", []float64{1, -0.5}, 0, true},
		{"NaN loss", []float64{math.NaN()}, 0, true},
	} {
		got, err := MaxDivergence{}.Compose(tc.losses)
		if (err != nil) != tc.wantErr {
			t.Errorf("Compose: when %s got err %v, want error %t", tc.desc, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got < tc.want {
			t.Errorf("Compose: when %s got %v, want at least %v", tc.desc, got, tc.want)
		}
		if !tc.wantErr && got > math.Nextafter(tc.want, math.Inf(1)) {
			t.Errorf("Compose: when %s got %v, want at most one ulp above %v", tc.desc, got, tc.want)
		}
	}
}

func TestComposeRoundsUp(t *testing.T) {
	// 1 + 1e-17 rounds to 1 in float64 arithmetic.
	got, err := ZeroConcentratedDivergence{}.Compose([]float64{1, 1e-17})
	if err != nil {
		t.Fatalf("Compose: got err %v", err)
	}
	if got <= 1 {
		t.Errorf("Compose(1, 1e-17): got %v, want a value above 1", got)
	}
}

func TestFixedSmoothedMaxDivergence(t *testing.T) {
	m := FixedSmoothedMaxDivergence{}
	got, err := m.Compose([]EpsDelta{{1, 1e-6}, {0.5, 0}, {0.5, 1e-6}})
	if err != nil {
		t.Fatalf("Compose: got err %v", err)
	}
	if got.Epsilon < 2 || got.Delta < 2e-6 {
		t.Errorf("Compose: got %v, want at least (ε=2, δ=2e-06)", got)
	}
	if _, err := m.Compose([]EpsDelta{{1, -1}}); err == nil {
		t.Errorf("Compose: with a negative delta got no error, want error")
	}
	for _, tc := range []struct {
		desc string
		a, b EpsDelta
		want bool
	}{
		{"both smaller", EpsDelta{1, 1e-7}, EpsDelta{2, 1e-6}, true},
		{"equal", EpsDelta{1, 1e-7}, EpsDelta{1, 1e-7}, true},
		{"larger epsilon", EpsDelta{3, 1e-7}, EpsDelta{2, 1e-6}, false},
		{"larger delta", EpsDelta{1, 1e-5}, EpsDelta{2, 1e-6}, false},
	} {
		got, err := m.LessEqual(tc.a, tc.b)
		if err != nil || got != tc.want {
			t.Errorf("LessEqual: when %s got (%t, %v), want (%t, nil)", tc.desc, got, err, tc.want)
		}
	}
}

func TestLessEqualRejectsNaN(t *testing.T) {
	if _, err := (MaxDivergence{}).LessEqual(math.NaN(), 1); err == nil {
		t.Errorf("LessEqual(NaN, 1): got no error, want error")
	}
}
