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

	log "github.com/golang/glog"

	"github.com/google/differential-privacy/dpcore/core"
	"github.com/google/differential-privacy/dpcore/dperr"
	"github.com/google/differential-privacy/dpcore/interactive"
	"github.com/google/differential-privacy/dpcore/monitoring"
)

// Compositor labels used in logs and metrics.
const (
	sequentialLabel = "sequential"
	concurrentLabel = "concurrent"
)

// MakeBasicComposition returns a measurement that releases the output of
// every measurement in ms on the same data. All of ms must share their input
// domain, input metric and output measure, whose composition rule bounds the
// total privacy loss.
func MakeBasicComposition[TI, TO, QI, QO any](ms []*core.Measurement[TI, TO, QI, QO]) (*core.Measurement[TI, []TO, QI, QO], error) {
	if len(ms) == 0 {
		return nil, dperr.New(dperr.MakeMeasurement, "must be at least one measurement")
	}
	first := ms[0]
	for _, m := range ms[1:] {
		if err := checkComponents(m, first.InputDomain(), first.InputMetric(), first.OutputMeasure()); err != nil {
			return nil, err
		}
	}
	ms = append([]*core.Measurement[TI, TO, QI, QO](nil), ms...)
	measure := first.OutputMeasure()
	return core.NewMeasurement(
		first.InputDomain(),
		core.NewFallibleFunction(func(arg TI) ([]TO, error) {
			out := make([]TO, 0, len(ms))
			for _, m := range ms {
				v, err := m.Invoke(arg)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		}),
		first.InputMetric(),
		measure,
		core.NewFalliblePrivacyMap(func(dIn QI) (QO, error) {
			losses := make([]QO, 0, len(ms))
			for _, m := range ms {
				l, err := m.Map(dIn)
				if err != nil {
					var zero QO
					return zero, err
				}
				losses = append(losses, l)
			}
			return measure.Compose(losses)
		}),
	)
}

// compositor is the state of one interactive composition session. The only
// state transition is the consumption of the oldest remaining budget, which
// happens once a sub-measurement passed its privacy check and released its
// answer.
type compositor[TI, TA, QI, QO any] struct {
	label string
	// concurrent compositors let every child change, not only the newest.
	concurrent bool

	arg           TI
	inputDomain   core.Domain[TI]
	answerDomain  core.Domain[TA]
	inputMetric   core.Metric[QI]
	outputMeasure core.Measure[QO]
	dIn           QI

	remaining []QO
}

// Transition implements interactive.Transition.
func (c *compositor[TI, TA, QI, QO]) Transition(self *interactive.Queryable[*core.Measurement[TI, TA, QI, QO], TA], q interactive.Query[*core.Measurement[TI, TA, QI, QO]]) (interactive.Answer[TA], error) {
	if m, ok := q.External(); ok {
		ans, err := c.release(self, m)
		c.observe(self, err)
		return ans, err
	}
	msg, _ := q.Internal()
	ans, err := c.childChange(self, msg)
	if err != nil {
		log.V(1).Infof("%s compositor %s refused a child change: %v", c.label, self.ID(), err)
	}
	return ans, err
}

func (c *compositor[TI, TA, QI, QO]) release(self *interactive.Queryable[*core.Measurement[TI, TA, QI, QO], TA], m *core.Measurement[TI, TA, QI, QO]) (interactive.Answer[TA], error) {
	if m == nil {
		return interactive.Answer[TA]{}, dperr.New(dperr.FailedFunction, "unrecognized query!")
	}
	if err := checkComponents(m, c.inputDomain, c.inputMetric, c.outputMeasure); err != nil {
		return interactive.Answer[TA]{}, err
	}
	if len(c.remaining) == 0 {
		return interactive.Answer[TA]{}, errRejected("out of queries")
	}
	ok, err := m.Check(c.dIn, c.remaining[0])
	if err != nil {
		return interactive.Answer[TA]{}, err
	}
	if !ok {
		return interactive.Answer[TA]{}, errRejected("insufficient budget for query")
	}
	answer, err := m.Invoke(c.arg)
	if err != nil {
		return interactive.Answer[TA]{}, err
	}

	// The answer is released: consume its budget.
	c.remaining = c.remaining[1:]
	monitoring.ObserveBudgetConsumed(c.label)

	if _, err := interactive.Adopt(answer, len(c.remaining), self); err != nil {
		return interactive.Answer[TA]{}, err
	}
	member, err := c.answerDomain.Member(answer)
	if err != nil {
		return interactive.Answer[TA]{}, err
	}
	if !member {
		return interactive.Answer[TA]{}, dperr.New(dperr.FailedFunction, "answer is not a member of %v", c.answerDomain)
	}
	return interactive.ExternalAnswer(answer), nil
}

// childChange approves or refuses a change of a child created when id
// budgets remained.
func (c *compositor[TI, TA, QI, QO]) childChange(self *interactive.Queryable[*core.Measurement[TI, TA, QI, QO], TA], msg any) (interactive.Answer[TA], error) {
	change, ok := msg.(interactive.ChildChange)
	if !ok {
		return interactive.Answer[TA]{}, dperr.New(dperr.FailedFunction, "unrecognized query!")
	}
	if change.ID < len(c.remaining) {
		return interactive.Answer[TA]{}, dperr.New(dperr.FailedFunction, "%s compositor %s has no child with id %d", c.label, self.ID(), change.ID)
	}
	if !c.concurrent && change.ID != len(c.remaining) {
		return interactive.Answer[TA]{}, errRejected("sequential compositor has received a new query")
	}
	return interactive.InternalAnswer[TA](nil), nil
}

// observe records the outcome of an external query. Internal messages are not
// queries and are not counted.
func (c *compositor[TI, TA, QI, QO]) observe(self interactive.Parent, err error) {
	switch {
	case err == nil:
		log.V(1).Infof("%s compositor %s accepted a query, %d budgets remain", c.label, self.ID(), len(c.remaining))
		monitoring.ObserveQuery(c.label, monitoring.Accepted)
	case isRejection(err):
		log.V(1).Infof("%s compositor %s rejected a query: %v", c.label, self.ID(), err)
		monitoring.ObserveQuery(c.label, monitoring.Rejected)
	default:
		log.V(1).Infof("%s compositor %s failed a query: %v", c.label, self.ID(), err)
		monitoring.ObserveQuery(c.label, monitoring.Errored)
	}
}

// rejection is the cause of refusals due to the budget or to the order of
// queries.
type rejection string

func (r rejection) Error() string { return string(r) }

func errRejected(msg string) error {
	return &dperr.Error{Variant: dperr.FailedFunction, Err: rejection(msg)}
}

func isRejection(err error) bool {
	var r rejection
	return errors.As(err, &r)
}

func makeCompositor[TI, TA, QI, QO any](
	label string,
	concurrent bool,
	inputDomain core.Domain[TI],
	answerDomain core.Domain[TA],
	inputMetric core.Metric[QI],
	outputMeasure core.Measure[QO],
	dIn QI,
	dMids []QO,
) (*core.Measurement[TI, *interactive.Queryable[*core.Measurement[TI, TA, QI, QO], TA], QI, QO], error) {
	if len(dMids) == 0 {
		return nil, dperr.New(dperr.MakeMeasurement, "must be at least one d_out")
	}
	dMids = append([]QO(nil), dMids...)
	dOut, err := outputMeasure.Compose(dMids)
	if err != nil {
		return nil, dperr.Wrap(dperr.MakeMeasurement, err)
	}
	return core.NewMeasurement(
		inputDomain,
		core.NewFunction(func(arg TI) *interactive.Queryable[*core.Measurement[TI, TA, QI, QO], TA] {
			return interactive.New[*core.Measurement[TI, TA, QI, QO], TA](&compositor[TI, TA, QI, QO]{
				label:         label,
				concurrent:    concurrent,
				arg:           arg,
				inputDomain:   inputDomain,
				answerDomain:  answerDomain,
				inputMetric:   inputMetric,
				outputMeasure: outputMeasure,
				dIn:           dIn,
				remaining:     append([]QO(nil), dMids...),
			})
		}),
		inputMetric,
		outputMeasure,
		core.NewFalliblePrivacyMap(func(d QI) (QO, error) {
			ok, err := inputMetric.LessEqual(d, dIn)
			if err != nil {
				var zero QO
				return zero, err
			}
			if !ok {
				var zero QO
				return zero, dperr.New(dperr.RelationDebug, "input distance must not be greater than d_in")
			}
			return dOut, nil
		}),
	)
}

// MakeSequentialComposition returns a measurement that, on a dataset, starts
// an interactive session answering at most len(dMids) sub-measurements.
//
// The i-th sub-measurement must satisfy its privacy check at (dIn, dMids[i]),
// and must have the given input domain, input metric and output measure. A
// query that fails any of these checks is refused without consuming any
// budget. Each answer must be a member of answerDomain. An answer that is
// itself a queryable may only change while no later query was answered.
//
// The privacy loss of the session is the composition of all of dMids, for any
// input distance up to dIn, however many queries are actually asked.
func MakeSequentialComposition[TI, TA, QI, QO any](
	inputDomain core.Domain[TI],
	answerDomain core.Domain[TA],
	inputMetric core.Metric[QI],
	outputMeasure core.Measure[QO],
	dIn QI,
	dMids []QO,
) (*core.Measurement[TI, *interactive.Queryable[*core.Measurement[TI, TA, QI, QO], TA], QI, QO], error) {
	return makeCompositor(sequentialLabel, false, inputDomain, answerDomain, inputMetric, outputMeasure, dIn, dMids)
}

// MakeConcurrentComposition is like MakeSequentialComposition, except that
// interactive answers keep answering queries after later siblings were
// created.
func MakeConcurrentComposition[TI, TA, QI, QO any](
	inputDomain core.Domain[TI],
	answerDomain core.Domain[TA],
	inputMetric core.Metric[QI],
	outputMeasure core.Measure[QO],
	dIn QI,
	dMids []QO,
) (*core.Measurement[TI, *interactive.Queryable[*core.Measurement[TI, TA, QI, QO], TA], QI, QO], error) {
	return makeCompositor(concurrentLabel, true, inputDomain, answerDomain, inputMetric, outputMeasure, dIn, dMids)
}
