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

// Package combinators composes transformations, measurements and odometers
// while propagating their stability and privacy guarantees.
package combinators

import (
	"github.com/google/uuid"

	"github.com/google/differential-privacy/dpcore/core"
	"github.com/google/differential-privacy/dpcore/dperr"
	"github.com/google/differential-privacy/dpcore/interactive"
)

// MakeChainTT returns the transformation outer ∘ inner. The output domain and
// metric of inner must equal the input domain and metric of outer.
func MakeChainTT[TI, TX, TO, QI, QX, QO any](outer *core.Transformation[TX, TO, QX, QO], inner *core.Transformation[TI, TX, QI, QX]) (*core.Transformation[TI, TO, QI, QO], error) {
	if err := checkMatch(dperr.DomainMismatch, inner.OutputDomain(), outer.InputDomain()); err != nil {
		return nil, err
	}
	if err := checkMatch(dperr.MetricMismatch, inner.OutputMetric(), outer.InputMetric()); err != nil {
		return nil, err
	}
	return core.NewTransformation(
		inner.InputDomain(),
		outer.OutputDomain(),
		core.ChainFunctions(outer.Function(), inner.Function()),
		inner.InputMetric(),
		outer.OutputMetric(),
		core.ChainStabilityMaps(outer.StabilityMap(), inner.StabilityMap()),
	)
}

// MakeChainMT returns the measurement outer ∘ inner, whose privacy map is the
// privacy map of outer applied to the stability map of inner.
func MakeChainMT[TI, TX, TO, QI, QX, QO any](outer *core.Measurement[TX, TO, QX, QO], inner *core.Transformation[TI, TX, QI, QX]) (*core.Measurement[TI, TO, QI, QO], error) {
	if err := checkMatch(dperr.DomainMismatch, inner.OutputDomain(), outer.InputDomain()); err != nil {
		return nil, err
	}
	if err := checkMatch(dperr.MetricMismatch, inner.OutputMetric(), outer.InputMetric()); err != nil {
		return nil, err
	}
	return core.NewMeasurement(
		inner.InputDomain(),
		core.ChainFunctions(outer.Function(), inner.Function()),
		inner.InputMetric(),
		outer.OutputMeasure(),
		core.ChainPrivacyMap(outer.PrivacyMap(), inner.StabilityMap()),
	)
}

// MakeChainPM postprocesses the releases of m with post. The privacy map of m
// is kept unchanged.
func MakeChainPM[TI, TX, TO, QI, QO any](post core.Function[TX, TO], m *core.Measurement[TI, TX, QI, QO]) (*core.Measurement[TI, TO, QI, QO], error) {
	return core.NewMeasurement(
		m.InputDomain(),
		core.ChainFunctions(post, m.Function()),
		m.InputMetric(),
		m.OutputMeasure(),
		m.PrivacyMap(),
	)
}

// MakeChainTM postprocesses the releases of m with the function of post. The
// stability of post plays no part in the guarantee.
func MakeChainTM[TI, TX, TO, QI, QX, QY, QO any](post *core.Transformation[TX, TO, QX, QY], m *core.Measurement[TI, TX, QI, QO]) (*core.Measurement[TI, TO, QI, QO], error) {
	return MakeChainPM(post.Function(), m)
}

// relay is the parent of a queryable wrapped by an odometer chain. Changes
// of the wrapped queryable that happen while the wrapper forwards a query
// were already approved by the wrapper's own parent. Any other change is
// reported to the wrapper, which reports it to its parent in turn.
type relay struct {
	wrapper    interactive.Parent
	forwarding bool
}

func (r *relay) ID() uuid.UUID { return r.wrapper.ID() }

func (r *relay) EvalInternal(msg any) (any, error) {
	if r.forwarding {
		return nil, nil
	}
	return r.wrapper.EvalInternal(msg)
}

func (r *relay) forward(f func() error) error {
	r.forwarding = true
	defer func() { r.forwarding = false }()
	return f()
}

// wrapOdometer returns a queryable answering odometer queries through inner.
// invoke and mapDistance translate the external queries; internal queries
// other than the relay's own notifications are passed to inner unchanged.
func wrapOdometer[Q, A1, A2, QI, QX, QO any](
	inner *interactive.Queryable[core.OdometerQuery[Q, QX], core.OdometerAnswer[A1, QO]],
	invoke func(q Q) (A2, error),
	mapDistance func(dIn QI) (QO, error),
) (*interactive.Queryable[core.OdometerQuery[Q, QI], core.OdometerAnswer[A2, QO]], error) {
	r := &relay{}
	wrapper := interactive.NewFunc(func(_ *interactive.Queryable[core.OdometerQuery[Q, QI], core.OdometerAnswer[A2, QO]], query interactive.Query[core.OdometerQuery[Q, QI]]) (interactive.Answer[core.OdometerAnswer[A2, QO]], error) {
		if msg, ok := query.Internal(); ok {
			if _, isChange := msg.(interactive.ChildChange); isChange {
				// The wrapper's own parent approved the change already.
				return interactive.InternalAnswer[core.OdometerAnswer[A2, QO]](nil), nil
			}
			var reply any
			err := r.forward(func() (err error) {
				reply, err = inner.EvalInternal(msg)
				return err
			})
			if err != nil {
				return interactive.Answer[core.OdometerAnswer[A2, QO]]{}, err
			}
			return interactive.InternalAnswer[core.OdometerAnswer[A2, QO]](reply), nil
		}
		odoQuery, _ := query.External()
		var ans core.OdometerAnswer[A2, QO]
		err := r.forward(func() error {
			if q, ok := odoQuery.Invoke(); ok {
				a, err := invoke(q)
				ans = core.InvokeAnswer[A2, QO](a)
				return err
			}
			dIn, _ := odoQuery.Map()
			dOut, err := mapDistance(dIn)
			ans = core.MapAnswer[A2](dOut)
			return err
		})
		if err != nil {
			return interactive.Answer[core.OdometerAnswer[A2, QO]]{}, err
		}
		return interactive.ExternalAnswer(ans), nil
	})
	r.wrapper = wrapper
	if _, err := interactive.Adopt(inner, 0, r); err != nil {
		return nil, err
	}
	return wrapper, nil
}

// MakeChainOT returns the odometer outer ∘ inner. Invoke queries are passed
// to the odometer of outer, which runs on the output of inner; map queries
// are translated through the stability map of inner.
func MakeChainOT[TI, TX, Q, A, QI, QX, QO any](outer *core.Odometer[TX, Q, A, QX, QO], inner *core.Transformation[TI, TX, QI, QX]) (*core.Odometer[TI, Q, A, QI, QO], error) {
	if err := checkMatch(dperr.DomainMismatch, inner.OutputDomain(), outer.InputDomain()); err != nil {
		return nil, err
	}
	if err := checkMatch(dperr.MetricMismatch, inner.OutputMetric(), outer.InputMetric()); err != nil {
		return nil, err
	}
	stability := inner.StabilityMap()
	return core.NewOdometer(
		inner.InputDomain(),
		core.NewFallibleFunction(func(arg TI) (*interactive.Queryable[core.OdometerQuery[Q, QI], core.OdometerAnswer[A, QO]], error) {
			x, err := inner.Invoke(arg)
			if err != nil {
				return nil, err
			}
			qbl, err := outer.Invoke(x)
			if err != nil {
				return nil, err
			}
			return wrapOdometer(qbl,
				func(q Q) (A, error) { return core.OdometerInvoke(qbl, q) },
				func(dIn QI) (QO, error) {
					dX, err := stability.Eval(dIn)
					if err != nil {
						var zero QO
						return zero, err
					}
					return core.OdometerMap(qbl, dX)
				})
		}),
		inner.InputMetric(),
		outer.OutputMeasure(),
	)
}

// MakeChainPO returns an odometer that postprocesses every invoke answer of
// inner with post. Map queries are answered by inner unchanged.
func MakeChainPO[TI, Q, A1, A2, QI, QO any](post core.Function[A1, A2], inner *core.Odometer[TI, Q, A1, QI, QO]) (*core.Odometer[TI, Q, A2, QI, QO], error) {
	return core.NewOdometer(
		inner.InputDomain(),
		core.NewFallibleFunction(func(arg TI) (*interactive.Queryable[core.OdometerQuery[Q, QI], core.OdometerAnswer[A2, QO]], error) {
			qbl, err := inner.Invoke(arg)
			if err != nil {
				return nil, err
			}
			return wrapOdometer(qbl,
				func(q Q) (A2, error) {
					a, err := core.OdometerInvoke(qbl, q)
					if err != nil {
						var zero A2
						return zero, err
					}
					return post.Eval(a)
				},
				func(dIn QI) (QO, error) { return core.OdometerMap(qbl, dIn) })
		}),
		inner.InputMetric(),
		inner.OutputMeasure(),
	)
}
