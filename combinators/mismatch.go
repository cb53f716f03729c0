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
	"fmt"

	"github.com/google/differential-privacy/dpcore/core"
	"github.com/google/differential-privacy/dpcore/dperr"
)

var mismatchModes = map[dperr.Variant]string{
	dperr.DomainMismatch:  "domain",
	dperr.MetricMismatch:  "metric",
	dperr.MeasureMismatch: "measure",
}

// checkMatch returns a mismatch error of variant v unless output, the
// component produced by one operand, equals input, the component expected by
// the other.
func checkMatch(v dperr.Variant, output, input any) error {
	if core.StructurallyEqual(output, input) {
		return nil
	}
	return mismatchError(v, output, input)
}

func mismatchError(v dperr.Variant, output, input any) error {
	mode := mismatchModes[v]
	out, in := fmt.Sprint(output), fmt.Sprint(input)
	if out == in {
		return dperr.New(v, "Intermediate %ss don't match.\n"+
			"    The structure of the intermediate %ss are the same, but the parameters differ.\n"+
			"    shared_%s: %s\n"+
			"    diff (-output +input):\n%s",
			mode, mode, mode, out, core.StructuralDiff(output, input))
	}
	return dperr.New(v, "Intermediate %ss don't match.\n"+
		"    output_%s: %s\n"+
		"    input_%s:  %s",
		mode, mode, out, mode, in)
}

// checkComponents verifies that a sub-measurement submitted to an
// interactive compositor has the compositor's input domain, input metric
// and output measure.
func checkComponents[TI, TA, QI, QO any](m *core.Measurement[TI, TA, QI, QO], inputDomain core.Domain[TI], inputMetric core.Metric[QI], outputMeasure core.Measure[QO]) error {
	if err := checkMatch(dperr.DomainMismatch, inputDomain, m.InputDomain()); err != nil {
		return err
	}
	if err := checkMatch(dperr.MetricMismatch, inputMetric, m.InputMetric()); err != nil {
		return err
	}
	return checkMatch(dperr.MeasureMismatch, outputMeasure, m.OutputMeasure())
}
