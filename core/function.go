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
)

// Function is an immutable, fallible function from TI to TO. Copies of a
// Function share the underlying closure.
type Function[TI, TO any] struct {
	eval func(TI) (TO, error)
}

// NewFunction returns a Function that never fails.
func NewFunction[TI, TO any](f func(TI) TO) Function[TI, TO] {
	return Function[TI, TO]{eval: func(arg TI) (TO, error) { return f(arg), nil }}
}

// NewFallibleFunction returns a Function that computes f.
func NewFallibleFunction[TI, TO any](f func(TI) (TO, error)) Function[TI, TO] {
	return Function[TI, TO]{eval: f}
}

// Eval applies the function to arg.
func (f Function[TI, TO]) Eval(arg TI) (TO, error) {
	if f.eval == nil {
		var zero TO
		return zero, dperr.New(dperr.NotImplemented, "function is not set")
	}
	return f.eval(arg)
}

// IntoPoly erases the output type of f.
func (f Function[TI, TO]) IntoPoly() Function[TI, any] {
	return NewFallibleFunction(func(arg TI) (any, error) {
		v, err := f.Eval(arg)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
}

// ChainFunctions returns x ↦ outer(inner(x)). An error of inner is returned
// without evaluating outer.
func ChainFunctions[TI, TX, TO any](outer Function[TX, TO], inner Function[TI, TX]) Function[TI, TO] {
	return NewFallibleFunction(func(arg TI) (TO, error) {
		x, err := inner.Eval(arg)
		if err != nil {
			var zero TO
			return zero, err
		}
		return outer.Eval(x)
	})
}

// EvalPoly evaluates a function with erased output type and downcasts the
// result to TO.
func EvalPoly[TO, TI any](f Function[TI, any], arg TI) (TO, error) {
	v, err := f.Eval(arg)
	if err != nil {
		var zero TO
		return zero, err
	}
	return downcast[TO](v, "function result")
}

func downcast[T any](v any, what string) (T, error) {
	t, ok := v.(T)
	if !ok {
		return t, dperr.New(dperr.FailedCast, "failed downcast of %s %T to %s", what, v, TypeName[T]())
	}
	return t, nil
}
