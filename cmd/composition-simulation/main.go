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

// This is a command line utility which runs a budgeted interactive session
// end to end: a sequential compositor answers noisy bounded sums until its
// budgets are spent, then a sequential odometer answers noisy counts and
// reports the privacy loss spent so far.
//
// Configuration is read from the environment, e.g.
//
//	DPCORE_BUDGETS=0.2,0.3 DPCORE_NUM_RECORDS=1000 go run ./cmd/composition-simulation -v=1 -logtostderr
package main

import (
	"flag"
	"math"

	log "github.com/golang/glog"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/google/differential-privacy/dpcore/combinators"
	"github.com/google/differential-privacy/dpcore/core"
	"github.com/google/differential-privacy/dpcore/domains"
	"github.com/google/differential-privacy/dpcore/measurements"
	"github.com/google/differential-privacy/dpcore/measures"
	"github.com/google/differential-privacy/dpcore/metrics"
	"github.com/google/differential-privacy/dpcore/monitoring"
	"github.com/google/differential-privacy/dpcore/transformations"
)

type config struct {
	NumRecords      int       `split_words:"true" default:"200"`
	Lower           int64     `default:"0"`
	Upper           int64     `default:"10"`
	DIn             int       `envconfig:"d_in" default:"1"`
	Budgets         []float64 `default:"0.1,0.1,0.3,0.5"`
	OdometerQueries int       `split_words:"true" default:"3"`
	OdometerScale   float64   `split_words:"true" default:"50"`
}

type sumQuery = core.Measurement[[]int64, int64, int, float64]

func main() {
	flag.Parse()

	var cfg config
	if err := envconfig.Process("dpcore", &cfg); err != nil {
		log.Exitf("Failed to process environment: %v", err)
	}
	log.Infof("The simulation was run with configuration %+v", cfg)
	if cfg.NumRecords < 0 {
		log.Exitf("DPCORE_NUM_RECORDS is %d, must be nonnegative", cfg.NumRecords)
	}
	if cfg.Upper < cfg.Lower {
		log.Exitf("DPCORE_UPPER (%d) must not be smaller than DPCORE_LOWER (%d)", cfg.Upper, cfg.Lower)
	}

	reg := prometheus.NewRegistry()
	if err := monitoring.Register(reg); err != nil {
		log.Exitf("Couldn't register metrics, err = %v", err)
	}

	data := make([]int64, cfg.NumRecords)
	for i := range data {
		// Some records fall outside the bounds so that clamping matters.
		data[i] = int64(i)%(cfg.Upper-cfg.Lower+3) + cfg.Lower - 1
	}

	if err := runComposition(cfg, data); err != nil {
		log.Exitf("Couldn't execute the composition, err = %v", err)
	}
	if err := runOdometer(cfg, data); err != nil {
		log.Exitf("Couldn't execute the odometer, err = %v", err)
	}
	if err := reportMetrics(reg); err != nil {
		log.Exitf("Couldn't gather metrics, err = %v", err)
	}
	log.Infof("Successfully finished executing the simulation")
}

// boundedSum returns clamp -> bounded sum.
func boundedSum(cfg config) (*core.Transformation[[]int64, int64, int, int64], error) {
	clamp, err := transformations.MakeClamp(cfg.Lower, cfg.Upper)
	if err != nil {
		return nil, err
	}
	sum, err := transformations.MakeBoundedSum(cfg.Lower, cfg.Upper)
	if err != nil {
		return nil, err
	}
	return combinators.MakeChainTT(sum, clamp)
}

// noisySum returns a bounded sum with discrete Laplace noise calibrated so
// that its privacy loss at distance dIn is at most eps.
func noisySum(sum *core.Transformation[[]int64, int64, int, int64], dIn int, eps float64) (*sumQuery, error) {
	sensitivity, err := sum.Map(dIn)
	if err != nil {
		return nil, err
	}
	scale := math.Nextafter(float64(sensitivity)/eps, math.Inf(1))
	lap, err := measurements.MakeDiscreteLaplace(scale)
	if err != nil {
		return nil, err
	}
	return combinators.MakeChainMT(lap, sum)
}

func runComposition(cfg config, data []int64) error {
	sum, err := boundedSum(cfg)
	if err != nil {
		return err
	}
	sc, err := combinators.MakeSequentialComposition[[]int64, int64, int, float64](
		sum.InputDomain(),
		domains.NewAtomDomain[int64](),
		metrics.SymmetricDistance{},
		measures.MaxDivergence{},
		cfg.DIn,
		cfg.Budgets,
	)
	if err != nil {
		return err
	}
	total, err := sc.Map(cfg.DIn)
	if err != nil {
		return err
	}
	log.Infof("Sequential composition of %d queries spends ε = %v at d_in = %d", len(cfg.Budgets), total, cfg.DIn)

	session, err := sc.Invoke(data)
	if err != nil {
		return err
	}
	// One query more than there are budgets, to show the refusal.
	for i := 0; i <= len(cfg.Budgets); i++ {
		eps := cfg.Budgets[min(i, len(cfg.Budgets)-1)]
		query, err := noisySum(sum, cfg.DIn, eps)
		if err != nil {
			return err
		}
		release, err := session.Eval(query)
		if err != nil {
			log.Infof("Query %d (ε = %v) was refused: %v", i, eps, err)
			continue
		}
		log.Infof("Query %d (ε = %v) released a sum of %d", i, eps, release)
	}
	return nil
}

func runOdometer(cfg config, data []int64) error {
	count, err := transformations.MakeCount[int64](domains.NewAtomDomain[int64]())
	if err != nil {
		return err
	}
	lap, err := measurements.MakeDiscreteLaplace(cfg.OdometerScale)
	if err != nil {
		return err
	}
	query, err := combinators.MakeChainMT(lap, count)
	if err != nil {
		return err
	}
	odo, err := combinators.MakeSequentialOdometer[[]int64, int64, int, float64](
		count.InputDomain(),
		metrics.SymmetricDistance{},
		measures.MaxDivergence{},
	)
	if err != nil {
		return err
	}
	session, err := odo.Invoke(data)
	if err != nil {
		return err
	}
	for i := 0; i < cfg.OdometerQueries; i++ {
		release, err := core.OdometerInvoke(session, query)
		if err != nil {
			return err
		}
		spent, err := core.OdometerMap(session, cfg.DIn)
		if err != nil {
			return err
		}
		log.Infof("Odometer query %d released a count of %d, ε spent so far = %v", i, release, spent)
	}
	return nil
}

func reportMetrics(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			labels := make(map[string]string)
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			log.Infof("%s%v = %v", f.GetName(), labels, m.GetCounter().GetValue())
		}
	}
	return nil
}
