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

// Package dperr defines the error values returned by the dpcore packages.
//
// Every error carries a Variant that classifies the failure. Callers should
// test for a variant with errors.Is and the sentinel values of this package:
//
//	if errors.Is(err, dperr.ErrFailedFunction) {
//		...
//	}
package dperr

import (
	"errors"
	"fmt"
)

// Variant is an enum type. Its values classify why an operation failed.
type Variant int

// Error variants.
const (
	// FailedFunction is a runtime failure of a function or queryable,
	// including budget exhaustion and unrecognized queries.
	FailedFunction Variant = iota
	// FailedCast is a failed downcast of a type-erased value.
	FailedCast
	// DomainMismatch is returned when two combined components disagree on a domain.
	DomainMismatch
	// MetricMismatch is returned when two combined components disagree on a metric.
	MetricMismatch
	// MeasureMismatch is returned when two combined components disagree on a measure.
	MeasureMismatch
	// MakeTransformation is a constructor-time failure of a transformation.
	MakeTransformation
	// MakeMeasurement is a constructor-time failure of a measurement or odometer.
	MakeMeasurement
	// InvalidDistance is returned when a distance violates a precondition.
	InvalidDistance
	// RelationDebug is an expected, user-facing failure of a map's own
	// consistency check.
	RelationDebug
	// NotImplemented is returned by operations that are not supported.
	NotImplemented
)

var variantNames = map[Variant]string{
	FailedFunction:     "FailedFunction",
	FailedCast:         "FailedCast",
	DomainMismatch:     "DomainMismatch",
	MetricMismatch:     "MetricMismatch",
	MeasureMismatch:    "MeasureMismatch",
	MakeTransformation: "MakeTransformation",
	MakeMeasurement:    "MakeMeasurement",
	InvalidDistance:    "InvalidDistance",
	RelationDebug:      "RelationDebug",
	NotImplemented:     "NotImplemented",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// Error is the error type returned by dpcore operations.
type Error struct {
	Variant Variant
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Message == "" && e.Err == nil:
		return e.Variant.String()
	case e.Message == "":
		return fmt.Sprintf("%s: %v", e.Variant, e.Err)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Variant, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Variant, e.Message, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same variant as e. A target
// carrying a message or cause only matches an identical error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" && t.Err == nil {
		return e.Variant == t.Variant
	}
	return e == t
}

// Sentinels for use with errors.Is.
var (
	ErrFailedFunction     = &Error{Variant: FailedFunction}
	ErrFailedCast         = &Error{Variant: FailedCast}
	ErrDomainMismatch     = &Error{Variant: DomainMismatch}
	ErrMetricMismatch     = &Error{Variant: MetricMismatch}
	ErrMeasureMismatch    = &Error{Variant: MeasureMismatch}
	ErrMakeTransformation = &Error{Variant: MakeTransformation}
	ErrMakeMeasurement    = &Error{Variant: MakeMeasurement}
	ErrInvalidDistance    = &Error{Variant: InvalidDistance}
	ErrRelationDebug      = &Error{Variant: RelationDebug}
	ErrNotImplemented     = &Error{Variant: NotImplemented}
)

// New returns an error of the given variant with a formatted message.
func New(v Variant, format string, args ...any) error {
	return &Error{Variant: v, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error of the given variant caused by err. It returns nil if
// err is nil. An err that already carries the variant is returned unchanged.
func Wrap(v Variant, err error) error {
	if err == nil {
		return nil
	}
	if got, ok := VariantOf(err); ok && got == v {
		return err
	}
	return &Error{Variant: v, Err: err}
}

// VariantOf returns the variant of the first *Error in err's chain.
func VariantOf(err error) (Variant, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Variant, true
	}
	return 0, false
}
