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
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/google/differential-privacy/dpcore/core"
	"github.com/google/differential-privacy/dpcore/domains"
	"github.com/google/differential-privacy/dpcore/dperr"
	"github.com/google/differential-privacy/dpcore/measures"
	"github.com/google/differential-privacy/dpcore/metrics"
)

// opaqueDomain hides its parameter from its description.
type opaqueDomain struct {
	limit int32
}

func (d opaqueDomain) Member(v int32) (bool, error) { return v <= d.limit, nil }
func (opaqueDomain) String() string { return "opaqueDomain()" }

// looseDistance is defined on every domain.
type looseDistance struct{}

func (looseDistance) String() string { return "looseDistance()" }
func (looseDistance) CheckSpace(any) error { return nil }
func (looseDistance) LessEqual(a, b int32) (bool, error) { return a <= b, nil }

// incrementT maps a uint8 to its successor as an int32, with stability 1 under
// the absolute distance.
func incrementT(t *testing.T) *core.Transformation[uint8, int32, int32, int32] {
	t.Helper()
	tr, err := core.NewTransformation[uint8, int32, int32, int32](
		domains.NewAtomDomain[uint8](),
		domains.NewAtomDomain[int32](),
		core.NewFunction(func(a uint8) int32 { return int32(a) + 1 }),
		metrics.AbsoluteDistance[int32]{},
		metrics.AbsoluteDistance[int32]{},
		core.NewStabilityMapFromConstant[int32, int32](1),
	)
	if err != nil {
		t.Fatalf("NewTransformation: got err %v", err)
	}
	return tr
}

func TestMakeChainMT(t *testing.T) {
	m, err := core.NewMeasurement[int32, float64, int32, float64](
		domains.NewAtomDomain[int32](),
		core.NewFunction(func(a int32) float64 { return float64(a) + 1 }),
		metrics.AbsoluteDistance[int32]{},
		measures.MaxDivergence{},
		core.NewPrivacyMap(func(d int32) float64 { return float64(d) + 1 }),
	)
	if err != nil {
		t.Fatalf("NewMeasurement: got err %v", err)
	}
	chain, err := MakeChainMT(m, incrementT(t))
	if err != nil {
		t.Fatalf("MakeChainMT: got err %v", err)
	}
	if got, err := chain.Invoke(99); err != nil || got != 101 {
		t.Errorf("Invoke(99): got (%v, %v), want (101, nil)", got, err)
	}
	if got, err := chain.Map(99); err != nil || got != 100 {
		t.Errorf("Map(99): got (%v, %v), want (100, nil)", got, err)
	}
}

func TestMakeChainTT(t *testing.T) {
	inner := incrementT(t)
	outer, err := core.NewTransformation[int32, float64, int32, int32](
		domains.NewAtomDomain[int32](),
		domains.NewAtomDomain[float64](),
		core.NewFunction(func(a int32) float64 { return float64(a) + 1 }),
		metrics.AbsoluteDistance[int32]{},
		metrics.AbsoluteDistance[int32]{},
		core.NewStabilityMapFromConstant[int32, int32](3),
	)
	if err != nil {
		t.Fatalf("NewTransformation: got err %v", err)
	}
	chain, err := MakeChainTT(outer, inner)
	if err != nil {
		t.Fatalf("MakeChainTT: got err %v", err)
	}
	for _, x := range []uint8{0, 99, 255} {
		mid, _ := inner.Invoke(x)
		want, _ := outer.Invoke(mid)
		if got, err := chain.Invoke(x); err != nil || got != want {
			t.Errorf("Invoke(%d): got (%v, %v), want (%v, nil)", x, got, err, want)
		}
	}
	for _, d := range []int32{0, 1, 99} {
		mid, _ := inner.Map(d)
		want, _ := outer.Map(mid)
		if got, err := chain.Map(d); err != nil || got != want {
			t.Errorf("Map(%d): got (%v, %v), want (%v, nil)", d, got, err, want)
		}
	}
}

func TestPostprocessingKeepsPrivacyMap(t *testing.T) {
	m, err := core.NewMeasurement[int32, int32, int32, float64](
		domains.NewAtomDomain[int32](),
		core.NewFunction(func(a int32) int32 { return a }),
		metrics.AbsoluteDistance[int32]{},
		measures.MaxDivergence{},
		core.NewPrivacyMapFromConstant[int32, float64](0.5),
	)
	if err != nil {
		t.Fatalf("NewMeasurement: got err %v", err)
	}
	format := core.NewFunction(func(a int32) string { return strconv.Itoa(int(a)) })
	pm, err := MakeChainPM(format, m)
	if err != nil {
		t.Fatalf("MakeChainPM: got err %v", err)
	}
	if got, err := pm.Invoke(7); err != nil || got != "7" {
		t.Errorf("Invoke(7): got (%q, %v), want (\"7\", nil)", got, err)
	}
	toFloat, err := core.NewTransformation[int32, float64, int32, int32](
		domains.NewAtomDomain[int32](),
		domains.NewAtomDomain[float64](),
		core.NewFunction(func(a int32) float64 { return float64(a) }),
		metrics.AbsoluteDistance[int32]{},
		metrics.AbsoluteDistance[int32]{},
		core.NewStabilityMapFromConstant[int32, int32](1000),
	)
	if err != nil {
		t.Fatalf("NewTransformation: got err %v", err)
	}
	tm, err := MakeChainTM(toFloat, m)
	if err != nil {
		t.Fatalf("MakeChainTM: got err %v", err)
	}
	for _, d := range []int32{0, 1, 2, 1000} {
		want, _ := m.Map(d)
		if got, err := pm.Map(d); err != nil || got != want {
			t.Errorf("MakeChainPM: Map(%d) got (%v, %v), want (%v, nil)", d, got, err, want)
		}
		if got, err := tm.Map(d); err != nil || got != want {
			t.Errorf("MakeChainTM: Map(%d) got (%v, %v), want (%v, nil)", d, got, err, want)
		}
	}
}

func TestChainMismatch(t *testing.T) {
	bounded, err := domains.NewBoundedAtomDomain[int32](0, 10)
	if err != nil {
		t.Fatalf("NewBoundedAtomDomain: got err %v", err)
	}
	newOuter := func(d core.Domain[int32], m core.Metric[int32]) *core.Transformation[int32, int32, int32, int32] {
		tr, err := core.NewTransformation[int32, int32, int32, int32](
			d, d,
			core.NewFunction(func(a int32) int32 { return a }),
			m, m,
			core.NewStabilityMapFromConstant[int32, int32](1),
		)
		if err != nil {
			t.Fatalf("NewTransformation: got err %v", err)
		}
		return tr
	}
	for _, tc := range []struct {
		desc    string
		outer   *core.Transformation[int32, int32, int32, int32]
		want    error
		wantMsg string
	}{
		{
			desc:    "different domains",
			outer:   newOuter(bounded, metrics.AbsoluteDistance[int32]{}),
			want:    dperr.ErrDomainMismatch,
			wantMsg: "input_domain:  AtomDomain(bounds=[0, 10], T=int32)",
		},
		{
			desc:    "an opaque domain",
			outer:   newOuter(opaqueDomain{limit: 3}, looseDistance{}),
			want:    dperr.ErrDomainMismatch,
			wantMsg: "output_domain: AtomDomain(T=int32)",
		},
		{
			desc:    "different metrics",
			outer:   newOuter(domains.NewAtomDomain[int32](), looseDistance{}),
			want:    dperr.ErrMetricMismatch,
			wantMsg: "Intermediate metrics don't match",
		},
	} {
		_, err := MakeChainTT(tc.outer, incrementT(t))
		if !errors.Is(err, tc.want) {
			t.Errorf("MakeChainTT: when %s got err %v, want %v", tc.desc, err, tc.want)
			continue
		}
		if !strings.Contains(err.Error(), tc.wantMsg) {
			t.Errorf("MakeChainTT: when %s got message %q, want it to contain %q", tc.desc, err, tc.wantMsg)
		}
	}
}

func TestMismatchOfIdenticallyDescribedComponents(t *testing.T) {
	err := checkMatch(dperr.DomainMismatch, opaqueDomain{limit: 1}, opaqueDomain{limit: 2})
	if !errors.Is(err, dperr.ErrDomainMismatch) {
		t.Fatalf("checkMatch: got err %v, want DomainMismatch", err)
	}
	for _, want := range []string{"the parameters differ", "shared_domain: opaqueDomain()", "limit"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("checkMatch: got message %q, want it to contain %q", err, want)
		}
	}
	if err := checkMatch(dperr.DomainMismatch, opaqueDomain{limit: 1}, opaqueDomain{limit: 1}); err != nil {
		t.Errorf("checkMatch: for equal domains got err %v", err)
	}
}
