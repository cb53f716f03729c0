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

package arith

import (
	"math"
	"math/big"

	"github.com/google/differential-privacy/dpcore/dperr"
)

// nextUp returns the smallest value of T that is larger than v.
func nextUp[T Number](v T) T {
	if is32[T]() {
		return T(math.Nextafter32(float32(v), float32(math.Inf(1))))
	}
	return T(math.Nextafter(float64(v), math.Inf(1)))
}

// roundUpIf moves the rounded result r one step towards +∞ if the exact
// result lies above it. A negative overflow to -∞ is pulled back to the
// smallest finite value, which still bounds the exact result from above.
func roundUpIf[T Number](r T, exactIsLarger bool) T {
	if math.IsInf(float64(r), -1) {
		return MinValue[T]()
	}
	if exactIsLarger {
		return nextUp(r)
	}
	return r
}

func checkNaN[T Number](op string, args ...T) error {
	for _, a := range args {
		if IsNaN(a) {
			return dperr.New(dperr.FailedFunction, "%s of NaN", op)
		}
	}
	return nil
}

// InfAdd returns the sum of a and b, rounded towards +∞.
func InfAdd[T Number](a, b T) (T, error) {
	if IsFloat[T]() {
		if err := checkNaN("addition", a, b); err != nil {
			return 0, err
		}
		s := a + b
		if IsNaN(s) {
			return 0, dperr.New(dperr.FailedFunction, "%v + %v is undefined", a, b)
		}
		if IsInf(s) {
			return roundUpIf(s, false), nil
		}
		// Error-free transformation: a + b == s + e exactly.
		bv := s - a
		e := (a - (s - bv)) + (b - bv)
		return roundUpIf(s, e > 0), nil
	}
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, dperr.New(dperr.FailedFunction, "%v + %v overflows", a, b)
	}
	return s, nil
}

// InfSub returns a - b, rounded towards +∞.
func InfSub[T Number](a, b T) (T, error) {
	if IsFloat[T]() {
		return InfAdd(a, -b)
	}
	d := a - b
	if (b > 0 && d > a) || (b < 0 && d < a) {
		return 0, dperr.New(dperr.FailedFunction, "%v - %v overflows", a, b)
	}
	return d, nil
}

func checkedMul[T Number](a, b T) (T, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	overflow := p/b != a
	if IsSigned[T]() {
		minValue := MinValue[T]()
		negOne := minValue + MaxValue[T]()
		overflow = overflow || (a == negOne && b == minValue) || (b == negOne && a == minValue)
	}
	if overflow {
		return 0, dperr.New(dperr.FailedFunction, "%v * %v overflows", a, b)
	}
	return p, nil
}

// cmpProduct compares the exact product x*y with z. The operands must be finite.
func cmpProduct(x, y, z float64) int {
	p := new(big.Float).SetPrec(128).Mul(big.NewFloat(x), big.NewFloat(y))
	return p.Cmp(big.NewFloat(z))
}

// InfMul returns a*b, rounded towards +∞.
func InfMul[T Number](a, b T) (T, error) {
	if !IsFloat[T]() {
		return checkedMul(a, b)
	}
	if err := checkNaN("multiplication", a, b); err != nil {
		return 0, err
	}
	p := a * b
	if IsNaN(p) {
		return 0, dperr.New(dperr.FailedFunction, "%v * %v is undefined", a, b)
	}
	if IsInf(p) {
		return roundUpIf(p, false), nil
	}
	return roundUpIf(p, cmpProduct(float64(a), float64(b), float64(p)) > 0), nil
}

// InfDiv returns a/b, rounded towards +∞. Division by zero fails.
func InfDiv[T Number](a, b T) (T, error) {
	if b == 0 {
		return 0, dperr.New(dperr.FailedFunction, "division of %v by zero", a)
	}
	if !IsFloat[T]() {
		if IsSigned[T]() && a == MinValue[T]() && b == MinValue[T]()+MaxValue[T]() {
			return 0, dperr.New(dperr.FailedFunction, "%v / %v overflows", a, b)
		}
		q := a / b
		if a-q*b != 0 && (a < 0) == (b < 0) {
			q++
		}
		return q, nil
	}
	if err := checkNaN("division", a, b); err != nil {
		return 0, err
	}
	q := a / b
	if IsNaN(q) {
		return 0, dperr.New(dperr.FailedFunction, "%v / %v is undefined", a, b)
	}
	if IsInf(q) || IsInf(a) || IsInf(b) {
		return roundUpIf(q, false), nil
	}
	// q*b < a means q < a/b when b is positive.
	c := cmpProduct(float64(q), float64(b), float64(a))
	exactIsLarger := (b > 0 && c < 0) || (b < 0 && c > 0)
	return roundUpIf(q, exactIsLarger), nil
}

// InfCast converts v to TO, rounding towards +∞. It fails if v is NaN or if
// the rounded value does not fit in TO.
func InfCast[TO, TI Number](v TI) (TO, error) {
	if IsNaN(v) {
		return 0, dperr.New(dperr.FailedCast, "cannot cast NaN")
	}
	switch {
	case IsFloat[TI]() && IsFloat[TO]():
		out := TO(v)
		if is32[TO]() && !IsInf(out) && float64(out) < float64(v) {
			out = nextUp(out)
		}
		return out, nil
	case IsFloat[TI]():
		c := math.Ceil(float64(v))
		bits := bitsOf[TO]()
		lower, upper := 0.0, math.Ldexp(1, bits)
		if IsSigned[TO]() {
			lower, upper = -math.Ldexp(1, bits-1), math.Ldexp(1, bits-1)
		}
		if c < lower || c >= upper {
			return 0, dperr.New(dperr.FailedCast, "%v does not fit in %v", v, kindOf[TO]())
		}
		return TO(c), nil
	case IsFloat[TO]():
		out := TO(v)
		exact := new(big.Float)
		if IsSigned[TI]() {
			exact.SetInt64(int64(v))
		} else {
			exact.SetUint64(uint64(v))
		}
		if big.NewFloat(float64(out)).Cmp(exact) < 0 {
			out = nextUp(out)
		}
		return out, nil
	}
	out := TO(v)
	if TI(out) != v || (v < 0) != (out < 0) {
		return 0, dperr.New(dperr.FailedCast, "%v does not fit in %v", v, kindOf[TO]())
	}
	return out, nil
}
