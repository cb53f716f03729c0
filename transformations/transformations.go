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

// Package transformations provides stable transformations of datasets.
package transformations

import (
	"fmt"

	"github.com/google/differential-privacy/dpcore/arith"
	"github.com/google/differential-privacy/dpcore/checks"
	"github.com/google/differential-privacy/dpcore/core"
	"github.com/google/differential-privacy/dpcore/domains"
	"github.com/google/differential-privacy/dpcore/dperr"
	"github.com/google/differential-privacy/dpcore/metrics"
)

// MakeIdentity returns the identity transformation on domain, which is
// 1-stable under metric.
func MakeIdentity[T, Q any](domain core.Domain[T], metric core.Metric[Q]) (*core.Transformation[T, T, Q, Q], error) {
	return core.NewTransformation(
		domain,
		domain,
		core.NewFunction(func(v T) T { return v }),
		metric,
		metric,
		core.NewStabilityMap(func(d Q) Q { return d }),
	)
}

// MakeClamp returns a transformation that clamps every record of a dataset
// to [lower, upper].
func MakeClamp[T arith.Number](lower, upper T) (*core.Transformation[[]T, []T, int, int], error) {
	output, err := domains.NewBoundedAtomDomain(lower, upper)
	if err != nil {
		return nil, dperr.Wrap(dperr.MakeTransformation, err)
	}
	return core.NewTransformation[[]T, []T, int, int](
		domains.NewVectorDomain[T](domains.NewAtomDomain[T]()),
		domains.NewVectorDomain[T](output),
		core.NewFunction(func(v []T) []T {
			out := make([]T, len(v))
			for i, x := range v {
				out[i] = min(max(x, lower), upper)
			}
			return out
		}),
		metrics.SymmetricDistance{},
		metrics.SymmetricDistance{},
		core.NewStabilityMapFromConstant[int, int](1),
	)
}

// MakeCount returns a transformation that counts the records of a dataset.
func MakeCount[T any](element core.Domain[T]) (*core.Transformation[[]T, int64, int, int64], error) {
	return core.NewTransformation[[]T, int64, int, int64](
		domains.NewVectorDomain(element),
		domains.NewAtomDomain[int64](),
		core.NewFunction(func(v []T) int64 { return int64(len(v)) }),
		metrics.SymmetricDistance{},
		metrics.AbsoluteDistance[int64]{},
		core.NewStabilityMapFromConstant[int, int64](1),
	)
}

// sumOf sums the positive and the negative records of v separately, each
// saturating at the limits of T, then adds the two partial sums with
// saturation. Each partial sum is monotone, so the result does not depend on
// the order of the records.
func sumOf[T arith.Integer](v []T) T {
	var pos, neg T
	for _, x := range v {
		if x > 0 {
			pos = arith.SaturatingAdd(pos, x)
		} else {
			neg = arith.SaturatingAdd(neg, x)
		}
	}
	return arith.SaturatingAdd(pos, neg)
}

// MakeBoundedSum returns a transformation that sums a dataset of records in
// [lower, upper], saturating at the limits of T. Adding or removing a record
// changes the sum by at most max(|lower|, |upper|), and reordering the records
// does not change it.
func MakeBoundedSum[T arith.Integer](lower, upper T) (*core.Transformation[[]T, T, int, T], error) {
	element, err := domains.NewBoundedAtomDomain(lower, upper)
	if err != nil {
		return nil, dperr.Wrap(dperr.MakeTransformation, err)
	}
	absLower, err := arith.Abs(lower)
	if err != nil {
		return nil, dperr.Wrap(dperr.MakeTransformation, err)
	}
	absUpper, err := arith.Abs(upper)
	if err != nil {
		return nil, dperr.Wrap(dperr.MakeTransformation, err)
	}
	return core.NewTransformation[[]T, T, int, T](
		domains.NewVectorDomain[T](element),
		domains.NewAtomDomain[T](),
		core.NewFunction(sumOf[T]),
		metrics.SymmetricDistance{},
		metrics.AbsoluteDistance[T]{},
		core.NewStabilityMapFromConstant[int](max(absLower, absUpper)),
	)
}

// MakeSizedBoundedSum returns a transformation that sums a dataset of exactly
// size records in [lower, upper]. Datasets of equal size at symmetric
// distance d differ in d/2 records, each changing the sum by at most
// upper - lower.
func MakeSizedBoundedSum[T arith.Integer](size int, lower, upper T) (*core.Transformation[[]T, T, int, T], error) {
	element, err := domains.NewBoundedAtomDomain(lower, upper)
	if err != nil {
		return nil, dperr.Wrap(dperr.MakeTransformation, err)
	}
	input, err := domains.NewSizedVectorDomain[T](element, size)
	if err != nil {
		return nil, dperr.Wrap(dperr.MakeTransformation, err)
	}
	if err := checkSumFits(size, lower, upper); err != nil {
		return nil, dperr.Wrap(dperr.MakeTransformation, err)
	}
	width, err := arith.InfSub(upper, lower)
	if err != nil {
		return nil, dperr.Wrap(dperr.MakeTransformation, err)
	}
	return core.NewTransformation[[]T, T, int, T](
		input,
		domains.NewAtomDomain[T](),
		core.NewFunction(sumOf[T]),
		metrics.SymmetricDistance{},
		metrics.AbsoluteDistance[T]{},
		core.NewStabilityMapFromForward(width, func(width T, d int) (T, error) {
			if err := checks.CheckDistance(d, "input distance"); err != nil {
				return 0, err
			}
			changed, err := arith.InfCast[T](d / 2)
			if err != nil {
				return 0, err
			}
			return arith.InfMul(changed, width)
		}),
	)
}

// checkSumFits fails if the sum of size records in [lower, upper] can leave
// the range of T.
func checkSumFits[T arith.Integer](size int, lower, upper T) error {
	n, err := arith.InfCast[T](size)
	if err != nil {
		return fmt.Errorf("size %d does not fit in %s: %w", size, core.TypeName[T](), err)
	}
	if _, err := arith.InfMul(n, lower); err != nil {
		return fmt.Errorf("the sum of %d records may underflow: %w", size, err)
	}
	if _, err := arith.InfMul(n, upper); err != nil {
		return fmt.Errorf("the sum of %d records may overflow: %w", size, err)
	}
	return nil
}
