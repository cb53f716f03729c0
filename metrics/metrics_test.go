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

package metrics

import (
	"math"
	"testing"

	"github.com/google/differential-privacy/dpcore/core"
	"github.com/google/differential-privacy/dpcore/domains"
)

func TestCheckSpace(t *testing.T) {
	atom := domains.NewAtomDomain[float64]()
	nullable := domains.NewNullableAtomDomain[float64]()
	vec := domains.NewVectorDomain[float64](atom)
	nullableVec := domains.NewVectorDomain[float64](nullable)
	sized, _ := domains.NewSizedVectorDomain[float64](atom, 3)
	for _, tc := range []struct {
		desc    string
		metric  interface{ CheckSpace(any) error }
		domain  any
		wantErr bool
	}{
		{"symmetric distance on vectors", SymmetricDistance{}, vec, false},
		{"symmetric distance on atoms", SymmetricDistance{}, atom, true},
		{"hamming distance on sized vectors", HammingDistance{}, sized, false},
		{"hamming distance on unsized vectors", HammingDistance{}, vec, true},
		{"absolute distance on atoms", AbsoluteDistance[float64]{}, atom, false},
		{"absolute distance on nullable atoms", AbsoluteDistance[float64]{}, nullable, true},
		{"absolute distance on vectors", AbsoluteDistance[float64]{}, vec, true},
		{"L1 distance on vectors", L1Distance[float64]{}, vec, false},
		{"L1 distance on nullable vectors", L1Distance[float64]{}, nullableVec, true},
		{"L2 distance on atoms", L2Distance[float64]{}, atom, true},
		{"discrete distance on anything", DiscreteDistance{}, domains.NewAllDomain[string](), false},
		{"symmetric distance on a type-erased vector domain", SymmetricDistance{}, core.IntoAnyDomain[[]float64](vec), false},
		{"absolute distance on a type-erased nullable domain", AbsoluteDistance[float64]{}, core.IntoAnyDomain[float64](nullable), true},
	} {
		if err := tc.metric.CheckSpace(tc.domain); (err != nil) != tc.wantErr {
			t.Errorf("CheckSpace: when %s got err %v, want error %t", tc.desc, err, tc.wantErr)
		}
	}
}

func TestLessEqual(t *testing.T) {
	if le, err := (AbsoluteDistance[float64]{}).LessEqual(1, 1); err != nil || !le {
		t.Errorf("AbsoluteDistance.LessEqual(1, 1): got (%t, %v), want (true, nil)", le, err)
	}
	if _, err := (L1Distance[float64]{}).LessEqual(math.NaN(), 1); err == nil {
		t.Errorf("L1Distance.LessEqual(NaN, 1): got no error, want error")
	}
	if le, err := (SymmetricDistance{}).LessEqual(3, 2); err != nil || le {
		t.Errorf("SymmetricDistance.LessEqual(3, 2): got (%t, %v), want (false, nil)", le, err)
	}
}

func TestString(t *testing.T) {
	for _, tc := range []struct {
		got, want string
	}{
		{SymmetricDistance{}.String(), "SymmetricDistance()"},
		{AbsoluteDistance[int64]{}.String(), "AbsoluteDistance(int64)"},
		{L2Distance[float64]{}.String(), "L2Distance(float64)"},
	} {
		if tc.got != tc.want {
			t.Errorf("String: got %q, want %q", tc.got, tc.want)
		}
	}
}

func TestMetricsAreComparable(t *testing.T) {
	if !core.StructurallyEqual(AbsoluteDistance[int64]{}, AbsoluteDistance[int64]{}) {
		t.Errorf("StructurallyEqual: for equal metrics got false")
	}
	if core.StructurallyEqual(AbsoluteDistance[int64]{}, AbsoluteDistance[float64]{}) {
		t.Errorf("StructurallyEqual: for metrics with different distance types got true")
	}
}
