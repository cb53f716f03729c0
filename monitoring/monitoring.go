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

// Package monitoring exports Prometheus counters describing the queries
// answered by interactive compositors and odometers.
//
// The collectors are not registered anywhere by default. Binaries that want
// to expose them call Register with their registry.
package monitoring

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome classifies the result of a query.
type Outcome string

const (
	// Accepted queries were answered.
	Accepted Outcome = "accepted"
	// Rejected queries were refused because of the budget or the order in
	// which children were queried.
	Rejected Outcome = "rejected"
	// Errored queries failed for any other reason.
	Errored Outcome = "error"
)

var (
	queries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dpcore_queryable_queries_total",
		Help: "Total number of queries submitted to interactive compositors, by outcome",
	}, []string{"compositor", "outcome"})

	budgetsConsumed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dpcore_queryable_budgets_consumed_total",
		Help: "Total number of privacy budgets consumed by interactive compositors",
	}, []string{"compositor"})
)

// Register installs the collectors on r. Registering the same collectors
// twice on one registry is not an error.
func Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{queries, budgetsConsumed} {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) && are.ExistingCollector == c {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveQuery records the outcome of one query submitted to compositor.
func ObserveQuery(compositor string, o Outcome) {
	queries.WithLabelValues(compositor, string(o)).Inc()
}

// ObserveBudgetConsumed records that compositor released a result and
// consumed one of its budgets.
func ObserveBudgetConsumed(compositor string) {
	budgetsConsumed.WithLabelValues(compositor).Inc()
}
