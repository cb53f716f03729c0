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
	"errors"

	log "github.com/golang/glog"

	"github.com/google/differential-privacy/dpcore/dperr"
)

// Transformation is a deterministic function with a stability map. Values of
// the input domain at distance d under the input metric are mapped to values
// of the output domain at distance at most StabilityMap(d) under the output
// metric.
type Transformation[TI, TO, QI, QO any] struct {
	inputDomain  Domain[TI]
	outputDomain Domain[TO]
	function     Function[TI, TO]
	inputMetric  Metric[QI]
	outputMetric Metric[QO]
	stabilityMap StabilityMap[QI, QO]
}

// NewTransformation returns a Transformation after checking that both metrics
// are defined on their domains.
func NewTransformation[TI, TO, QI, QO any](
	inputDomain Domain[TI],
	outputDomain Domain[TO],
	function Function[TI, TO],
	inputMetric Metric[QI],
	outputMetric Metric[QO],
	stabilityMap StabilityMap[QI, QO],
) (*Transformation[TI, TO, QI, QO], error) {
	if err := CheckMetricSpace(inputDomain, inputMetric); err != nil {
		return nil, dperr.Wrap(dperr.MakeTransformation, err)
	}
	if err := CheckMetricSpace(outputDomain, outputMetric); err != nil {
		return nil, dperr.Wrap(dperr.MakeTransformation, err)
	}
	return &Transformation[TI, TO, QI, QO]{
		inputDomain:  inputDomain,
		outputDomain: outputDomain,
		function:     function,
		inputMetric:  inputMetric,
		outputMetric: outputMetric,
		stabilityMap: stabilityMap,
	}, nil
}

// Invoke applies the transformation to arg. Membership of arg in the input
// domain is not checked.
func (t *Transformation[TI, TO, QI, QO]) Invoke(arg TI) (TO, error) {
	return t.function.Eval(arg)
}

// Map returns the bound on the output distance for input distance dIn.
func (t *Transformation[TI, TO, QI, QO]) Map(dIn QI) (QO, error) {
	return t.stabilityMap.Eval(dIn)
}

// Check reports whether inputs at distance dIn are mapped to outputs at
// distance at most dOut.
func (t *Transformation[TI, TO, QI, QO]) Check(dIn QI, dOut QO) (bool, error) {
	bound, err := t.Map(dIn)
	if err != nil {
		return checkFailure(err)
	}
	return t.outputMetric.LessEqual(bound, dOut)
}

// checkFailure turns a RelationDebug error of a map into a failed check.
func checkFailure(err error) (bool, error) {
	if errors.Is(err, dperr.ErrRelationDebug) {
		log.V(1).Infof("Check failed: %v", err)
		return false, nil
	}
	return false, err
}

// InputDomain returns the input domain.
func (t *Transformation[TI, TO, QI, QO]) InputDomain() Domain[TI] { return t.inputDomain }

// OutputDomain returns the output domain.
func (t *Transformation[TI, TO, QI, QO]) OutputDomain() Domain[TO] { return t.outputDomain }

// InputMetric returns the input metric.
func (t *Transformation[TI, TO, QI, QO]) InputMetric() Metric[QI] { return t.inputMetric }

// OutputMetric returns the output metric.
func (t *Transformation[TI, TO, QI, QO]) OutputMetric() Metric[QO] { return t.outputMetric }

// Function returns the function of the transformation.
func (t *Transformation[TI, TO, QI, QO]) Function() Function[TI, TO] { return t.function }

// StabilityMap returns the stability map of the transformation.
func (t *Transformation[TI, TO, QI, QO]) StabilityMap() StabilityMap[QI, QO] { return t.stabilityMap }
