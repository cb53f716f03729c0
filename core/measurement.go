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
	"github.com/google/differential-privacy/dpcore/dperr"
)

// Measurement is a randomized function with a privacy map. Releasing its
// output on inputs at distance d under the input metric incurs a privacy loss
// of at most PrivacyMap(d) under the output measure.
//
// The output TO may be an *interactive.Queryable, in which case the privacy
// map bounds the loss of every answer the queryable will ever give.
type Measurement[TI, TO, QI, QO any] struct {
	inputDomain   Domain[TI]
	function      Function[TI, TO]
	inputMetric   Metric[QI]
	outputMeasure Measure[QO]
	privacyMap    PrivacyMap[QI, QO]
}

// NewMeasurement returns a Measurement after checking that the input metric
// is defined on the input domain.
func NewMeasurement[TI, TO, QI, QO any](
	inputDomain Domain[TI],
	function Function[TI, TO],
	inputMetric Metric[QI],
	outputMeasure Measure[QO],
	privacyMap PrivacyMap[QI, QO],
) (*Measurement[TI, TO, QI, QO], error) {
	if err := CheckMetricSpace(inputDomain, inputMetric); err != nil {
		return nil, dperr.Wrap(dperr.MakeMeasurement, err)
	}
	return &Measurement[TI, TO, QI, QO]{
		inputDomain:   inputDomain,
		function:      function,
		inputMetric:   inputMetric,
		outputMeasure: outputMeasure,
		privacyMap:    privacyMap,
	}, nil
}

// Invoke releases the output of the measurement on arg. Membership of arg in
// the input domain is not checked.
func (m *Measurement[TI, TO, QI, QO]) Invoke(arg TI) (TO, error) {
	return m.function.Eval(arg)
}

// Map returns the bound on the privacy loss for input distance dIn.
func (m *Measurement[TI, TO, QI, QO]) Map(dIn QI) (QO, error) {
	return m.privacyMap.Eval(dIn)
}

// Check reports whether releasing the output on inputs at distance dIn incurs
// a privacy loss of at most dOut.
func (m *Measurement[TI, TO, QI, QO]) Check(dIn QI, dOut QO) (bool, error) {
	bound, err := m.Map(dIn)
	if err != nil {
		return checkFailure(err)
	}
	return m.outputMeasure.LessEqual(bound, dOut)
}

// InputDomain returns the input domain.
func (m *Measurement[TI, TO, QI, QO]) InputDomain() Domain[TI] { return m.inputDomain }

// InputMetric returns the input metric.
func (m *Measurement[TI, TO, QI, QO]) InputMetric() Metric[QI] { return m.inputMetric }

// OutputMeasure returns the output measure.
func (m *Measurement[TI, TO, QI, QO]) OutputMeasure() Measure[QO] { return m.outputMeasure }

// Function returns the function of the measurement.
func (m *Measurement[TI, TO, QI, QO]) Function() Function[TI, TO] { return m.function }

// PrivacyMap returns the privacy map of the measurement.
func (m *Measurement[TI, TO, QI, QO]) PrivacyMap() PrivacyMap[QI, QO] { return m.privacyMap }

// IntoPoly erases the output type of the measurement.
func (m *Measurement[TI, TO, QI, QO]) IntoPoly() *Measurement[TI, any, QI, QO] {
	return &Measurement[TI, any, QI, QO]{
		inputDomain:   m.inputDomain,
		function:      m.function.IntoPoly(),
		inputMetric:   m.inputMetric,
		outputMeasure: m.outputMeasure,
		privacyMap:    m.privacyMap,
	}
}

// InvokePoly invokes a measurement with erased output type and downcasts the
// release to TO.
func InvokePoly[TO, TI, QI, QO any](m *Measurement[TI, any, QI, QO], arg TI) (TO, error) {
	return EvalPoly[TO](m.function, arg)
}
