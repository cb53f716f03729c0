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
	log "github.com/golang/glog"

	"github.com/google/differential-privacy/dpcore/core"
	"github.com/google/differential-privacy/dpcore/dperr"
	"github.com/google/differential-privacy/dpcore/interactive"
	"github.com/google/differential-privacy/dpcore/monitoring"
)

const sequentialOdometerLabel = "sequential_odometer"

// odometerState records the privacy maps of every sub-measurement released
// in one odometer session.
type odometerState[TI, TA, QI, QO any] struct {
	arg           TI
	inputDomain   core.Domain[TI]
	inputMetric   core.Metric[QI]
	outputMeasure core.Measure[QO]

	maps []core.PrivacyMap[QI, QO]
}

// Transition implements interactive.Transition.
func (s *odometerState[TI, TA, QI, QO]) Transition(self *interactive.Queryable[core.OdometerQuery[*core.Measurement[TI, TA, QI, QO], QI], core.OdometerAnswer[TA, QO]], q interactive.Query[core.OdometerQuery[*core.Measurement[TI, TA, QI, QO], QI]]) (interactive.Answer[core.OdometerAnswer[TA, QO]], error) {
	query, ok := q.External()
	if !ok {
		msg, _ := q.Internal()
		ans, err := s.childChange(msg)
		if err != nil {
			log.V(1).Infof("Sequential odometer %s refused a child change: %v", self.ID(), err)
		}
		return ans, err
	}
	var (
		ans interactive.Answer[core.OdometerAnswer[TA, QO]]
		err error
	)
	if m, isInvoke := query.Invoke(); isInvoke {
		ans, err = s.invoke(self, m)
	} else {
		dIn, _ := query.Map()
		ans, err = s.mapLoss(dIn)
	}
	switch {
	case err == nil:
		log.V(1).Infof("Sequential odometer %s answered a query, %d measurements released", self.ID(), len(s.maps))
		monitoring.ObserveQuery(sequentialOdometerLabel, monitoring.Accepted)
	case isRejection(err):
		log.V(1).Infof("Sequential odometer %s rejected a query: %v", self.ID(), err)
		monitoring.ObserveQuery(sequentialOdometerLabel, monitoring.Rejected)
	default:
		log.V(1).Infof("Sequential odometer %s failed a query: %v", self.ID(), err)
		monitoring.ObserveQuery(sequentialOdometerLabel, monitoring.Errored)
	}
	return ans, err
}

func (s *odometerState[TI, TA, QI, QO]) invoke(self *interactive.Queryable[core.OdometerQuery[*core.Measurement[TI, TA, QI, QO], QI], core.OdometerAnswer[TA, QO]], m *core.Measurement[TI, TA, QI, QO]) (interactive.Answer[core.OdometerAnswer[TA, QO]], error) {
	if m == nil {
		return interactive.Answer[core.OdometerAnswer[TA, QO]]{}, dperr.New(dperr.FailedFunction, "unrecognized query!")
	}
	if err := checkComponents(m, s.inputDomain, s.inputMetric, s.outputMeasure); err != nil {
		return interactive.Answer[core.OdometerAnswer[TA, QO]]{}, err
	}
	answer, err := m.Invoke(s.arg)
	if err != nil {
		return interactive.Answer[core.OdometerAnswer[TA, QO]]{}, err
	}
	s.maps = append(s.maps, m.PrivacyMap())
	monitoring.ObserveBudgetConsumed(sequentialOdometerLabel)
	if _, err := interactive.Adopt(answer, len(s.maps)-1, self); err != nil {
		return interactive.Answer[core.OdometerAnswer[TA, QO]]{}, err
	}
	return interactive.ExternalAnswer(core.InvokeAnswer[TA, QO](answer)), nil
}

func (s *odometerState[TI, TA, QI, QO]) mapLoss(dIn QI) (interactive.Answer[core.OdometerAnswer[TA, QO]], error) {
	losses := make([]QO, 0, len(s.maps))
	for _, pm := range s.maps {
		l, err := pm.Eval(dIn)
		if err != nil {
			return interactive.Answer[core.OdometerAnswer[TA, QO]]{}, err
		}
		losses = append(losses, l)
	}
	total, err := s.outputMeasure.Compose(losses)
	if err != nil {
		return interactive.Answer[core.OdometerAnswer[TA, QO]]{}, err
	}
	return interactive.ExternalAnswer(core.MapAnswer[TA](total)), nil
}

// childChange lets only the most recently created child change.
func (s *odometerState[TI, TA, QI, QO]) childChange(msg any) (interactive.Answer[core.OdometerAnswer[TA, QO]], error) {
	change, ok := msg.(interactive.ChildChange)
	if !ok {
		return interactive.Answer[core.OdometerAnswer[TA, QO]]{}, dperr.New(dperr.FailedFunction, "unrecognized query!")
	}
	if change.ID != len(s.maps)-1 {
		return interactive.Answer[core.OdometerAnswer[TA, QO]]{}, errRejected("sequential odometer has received a new query")
	}
	return interactive.InternalAnswer[core.OdometerAnswer[TA, QO]](nil), nil
}

// MakeSequentialOdometer returns an odometer that, on a dataset, starts an
// interactive session answering any number of sub-measurements.
//
// Invoke queries run the sub-measurement unconditionally; it must have the
// given input domain, input metric and output measure. Map queries return the
// composition, under outputMeasure, of the privacy losses at the given input
// distance of every sub-measurement answered so far. Enforcing a budget is
// left to the caller.
func MakeSequentialOdometer[TI, TA, QI, QO any](
	inputDomain core.Domain[TI],
	inputMetric core.Metric[QI],
	outputMeasure core.Measure[QO],
) (*core.Odometer[TI, *core.Measurement[TI, TA, QI, QO], TA, QI, QO], error) {
	return core.NewOdometer(
		inputDomain,
		core.NewFunction(func(arg TI) *interactive.Queryable[core.OdometerQuery[*core.Measurement[TI, TA, QI, QO], QI], core.OdometerAnswer[TA, QO]] {
			return interactive.New[core.OdometerQuery[*core.Measurement[TI, TA, QI, QO], QI], core.OdometerAnswer[TA, QO]](&odometerState[TI, TA, QI, QO]{
				arg:           arg,
				inputDomain:   inputDomain,
				inputMetric:   inputMetric,
				outputMeasure: outputMeasure,
			})
		}),
		inputMetric,
		outputMeasure,
	)
}
