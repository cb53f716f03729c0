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
	"github.com/google/differential-privacy/dpcore/interactive"
)

// OdometerQuery is a query to an odometer queryable: either a query Q to
// answer, or a request for the privacy loss spent so far at input distance
// QI.
type OdometerQuery[Q, QI any] struct {
	invoke Q
	dIn    QI
	isMap  bool
}

// InvokeQuery asks the odometer to answer q.
func InvokeQuery[Q, QI any](q Q) OdometerQuery[Q, QI] {
	return OdometerQuery[Q, QI]{invoke: q}
}

// MapQuery asks the odometer for the privacy loss spent so far on inputs at
// distance dIn.
func MapQuery[Q, QI any](dIn QI) OdometerQuery[Q, QI] {
	return OdometerQuery[Q, QI]{dIn: dIn, isMap: true}
}

// Invoke returns the query to answer, if q is an invoke query.
func (q OdometerQuery[Q, QI]) Invoke() (Q, bool) { return q.invoke, !q.isMap }

// Map returns the input distance, if q is a map query.
func (q OdometerQuery[Q, QI]) Map() (QI, bool) { return q.dIn, q.isMap }

// OdometerAnswer is the answer of an odometer queryable to an OdometerQuery.
type OdometerAnswer[A, QO any] struct {
	invoke A
	dOut   QO
	isMap  bool
}

// InvokeAnswer wraps the answer to an invoke query.
func InvokeAnswer[A, QO any](a A) OdometerAnswer[A, QO] {
	return OdometerAnswer[A, QO]{invoke: a}
}

// MapAnswer wraps the privacy loss returned for a map query.
func MapAnswer[A, QO any](dOut QO) OdometerAnswer[A, QO] {
	return OdometerAnswer[A, QO]{dOut: dOut, isMap: true}
}

// Invoke returns the answer, if a answers an invoke query.
func (a OdometerAnswer[A, QO]) Invoke() (A, bool) { return a.invoke, !a.isMap }

// Map returns the privacy loss, if a answers a map query.
func (a OdometerAnswer[A, QO]) Map() (QO, bool) { return a.dOut, a.isMap }

// Odometer is like a Measurement whose release is a queryable, but the
// privacy loss is not fixed in advance. The queryable reports the loss spent
// so far through map queries, and does not refuse queries that exceed any
// budget: enforcing one is up to the caller.
type Odometer[TI, Q, A, QI, QO any] struct {
	inputDomain   Domain[TI]
	function      Function[TI, *interactive.Queryable[OdometerQuery[Q, QI], OdometerAnswer[A, QO]]]
	inputMetric   Metric[QI]
	outputMeasure Measure[QO]
}

// NewOdometer returns an Odometer after checking that the input metric is
// defined on the input domain.
func NewOdometer[TI, Q, A, QI, QO any](
	inputDomain Domain[TI],
	function Function[TI, *interactive.Queryable[OdometerQuery[Q, QI], OdometerAnswer[A, QO]]],
	inputMetric Metric[QI],
	outputMeasure Measure[QO],
) (*Odometer[TI, Q, A, QI, QO], error) {
	if err := CheckMetricSpace(inputDomain, inputMetric); err != nil {
		return nil, dperr.Wrap(dperr.MakeMeasurement, err)
	}
	return &Odometer[TI, Q, A, QI, QO]{
		inputDomain:   inputDomain,
		function:      function,
		inputMetric:   inputMetric,
		outputMeasure: outputMeasure,
	}, nil
}

// Invoke starts an odometer session on arg.
func (o *Odometer[TI, Q, A, QI, QO]) Invoke(arg TI) (*interactive.Queryable[OdometerQuery[Q, QI], OdometerAnswer[A, QO]], error) {
	return o.function.Eval(arg)
}

// InputDomain returns the input domain.
func (o *Odometer[TI, Q, A, QI, QO]) InputDomain() Domain[TI] { return o.inputDomain }

// InputMetric returns the input metric.
func (o *Odometer[TI, Q, A, QI, QO]) InputMetric() Metric[QI] { return o.inputMetric }

// OutputMeasure returns the output measure.
func (o *Odometer[TI, Q, A, QI, QO]) OutputMeasure() Measure[QO] { return o.outputMeasure }

// Function returns the function that starts a session.
func (o *Odometer[TI, Q, A, QI, QO]) Function() Function[TI, *interactive.Queryable[OdometerQuery[Q, QI], OdometerAnswer[A, QO]]] {
	return o.function
}

// OdometerInvoke submits q to an odometer queryable.
func OdometerInvoke[Q, A, QI, QO any](qbl *interactive.Queryable[OdometerQuery[Q, QI], OdometerAnswer[A, QO]], q Q) (A, error) {
	ans, err := qbl.Eval(InvokeQuery[Q, QI](q))
	if err != nil {
		var zero A
		return zero, err
	}
	a, ok := ans.Invoke()
	if !ok {
		return a, dperr.New(dperr.FailedCast, "odometer answered an invoke query with a privacy loss")
	}
	return a, nil
}

// OdometerMap returns the privacy loss an odometer queryable has spent so far
// on inputs at distance dIn.
func OdometerMap[Q, A, QI, QO any](qbl *interactive.Queryable[OdometerQuery[Q, QI], OdometerAnswer[A, QO]], dIn QI) (QO, error) {
	ans, err := qbl.Eval(MapQuery[Q](dIn))
	if err != nil {
		var zero QO
		return zero, err
	}
	dOut, ok := ans.Map()
	if !ok {
		return dOut, dperr.New(dperr.FailedCast, "odometer answered a map query with a release")
	}
	return dOut, nil
}
