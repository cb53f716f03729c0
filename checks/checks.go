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

// Package checks contains parameter checks shared by the constructors of
// transformations and measurements.
//
// Constructors wrap the returned errors in the dperr variant of the component
// they build, except for CheckDistance which reports InvalidDistance itself.
package checks

import (
	"fmt"
	"math"

	log "github.com/golang/glog"

	"github.com/google/differential-privacy/dpcore/arith"
	"github.com/google/differential-privacy/dpcore/dperr"
)

const (
	epsilonName     = "Epsilon"
	deltaName       = "Delta"
	scaleName       = "Scale"
	probabilityName = "Probability"
	distanceName    = "Distance"
)

func verifyName(defaultName string, nameSlice []string) (string, error) {
	switch len(nameSlice) {
	case 0:
		return defaultName, nil
	case 1:
		return nameSlice[0], nil
	}
	return "", fmt.Errorf("there should be 0 or 1 'name' parameter, got %d", len(nameSlice))
}

// CheckEpsilon returns an error if ε is strictly negative, +∞ or NaN.
func CheckEpsilon(epsilon float64, name ...string) error {
	epsName, err := verifyName(epsilonName, name)
	if err != nil {
		return err
	}
	if epsilon < 0 || math.IsInf(epsilon, 0) || math.IsNaN(epsilon) {
		return fmt.Errorf("%s is %f, must be nonnegative and finite", epsName, epsilon)
	}
	return nil
}

// CheckDelta returns an error if δ is negative, NaN or greater than 1.
func CheckDelta(delta float64, name ...string) error {
	delName, err := verifyName(deltaName, name)
	if err != nil {
		return err
	}
	if math.IsNaN(delta) {
		return fmt.Errorf("%s is %e, cannot be NaN", delName, delta)
	}
	if delta < 0 {
		return fmt.Errorf("%s is %e, cannot be negative", delName, delta)
	}
	if delta > 1 {
		return fmt.Errorf("%s is %e, must be at most 1", delName, delta)
	}
	return nil
}

// CheckScale returns an error if a noise scale is negative or NaN. A zero
// scale is accepted with a warning, since it releases the exact value.
func CheckScale[T arith.Number](scale T, name ...string) error {
	sName, err := verifyName(scaleName, name)
	if err != nil {
		return err
	}
	if arith.IsNaN(scale) {
		return fmt.Errorf("%s cannot be NaN", sName)
	}
	if scale < 0 {
		return fmt.Errorf("%s is %v, must be nonnegative", sName, scale)
	}
	if scale == 0 {
		log.Warningf("%s is 0: the exact value will be released and the privacy loss is unbounded", sName)
	}
	return nil
}

// CheckResponseProbability returns an error unless the probability of
// answering truthfully lies in [0.5, 1).
func CheckResponseProbability(prob float64, name ...string) error {
	pName, err := verifyName(probabilityName, name)
	if err != nil {
		return err
	}
	if math.IsNaN(prob) || prob < 0.5 || prob >= 1 {
		return fmt.Errorf("%s is %f, must be in [0.5, 1)", pName, prob)
	}
	return nil
}

// CheckAlpha returns an error unless the significance level α lies in (0, 1).
func CheckAlpha(alpha float64) error {
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return fmt.Errorf("Alpha is %f, must be within (0, 1)", alpha)
	}
	return nil
}

// CheckBounds returns an error if either bound is NaN or if lower is larger
// than upper. Equal bounds are accepted with a warning.
func CheckBounds[T arith.Number](lower, upper T) error {
	if arith.IsNaN(lower) {
		return fmt.Errorf("Lower bound cannot be NaN")
	}
	if arith.IsNaN(upper) {
		return fmt.Errorf("Upper bound cannot be NaN")
	}
	if lower > upper {
		return fmt.Errorf("Upper bound (%v) must be larger than lower bound (%v)", upper, lower)
	}
	if lower == upper {
		log.Warningf("Lower bound is equal to upper bound: all added elements will be clamped to %v", upper)
	}
	return nil
}

// CheckFiniteBounds is like CheckBounds but also rejects infinite bounds.
func CheckFiniteBounds[T arith.Number](lower, upper T) error {
	if arith.IsInf(lower) {
		return fmt.Errorf("Lower bound cannot be infinity")
	}
	if arith.IsInf(upper) {
		return fmt.Errorf("Upper bound cannot be infinity")
	}
	return CheckBounds(lower, upper)
}

// CheckDistance returns an InvalidDistance error if d is NaN or negative.
func CheckDistance[Q arith.Number](d Q, name ...string) error {
	dName, err := verifyName(distanceName, name)
	if err != nil {
		return err
	}
	if arith.IsNaN(d) {
		return dperr.New(dperr.InvalidDistance, "%s cannot be NaN", dName)
	}
	if d < 0 {
		return dperr.New(dperr.InvalidDistance, "%s is %v, must be nonnegative", dName, d)
	}
	return nil
}
