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

// Package rand provides the cryptographically secure random bits consumed by
// the measurements of dpcore.
//
// A failure of the underlying source is reported as a FailedFunction error
// instead of terminating the process.
package rand

import (
	"bufio"
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math"
	"math/bits"
	"sync"

	"github.com/google/differential-privacy/dpcore/dperr"
)

var (
	randBufLock sync.Mutex
	// randBuf is created on first use.
	randBuf io.Reader

	randBitLock sync.Mutex
	randBitBuf  uint8
	randBitPos  int8 = math.MaxInt8
)

func readRandBuf(b []byte) error {
	randBufLock.Lock()
	defer randBufLock.Unlock()
	if randBuf == nil {
		randBuf = bufio.NewReaderSize(cryptorand.Reader, 65536)
	}
	if _, err := io.ReadFull(randBuf, b); err != nil {
		return dperr.New(dperr.FailedFunction, "out of randomness: %v", err)
	}
	return nil
}

// U64 returns a uniformly random uint64.
func U64() (uint64, error) {
	var r [8]uint8
	if err := readRandBuf(r[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(r[:]), nil
}

// U8 returns a uniformly random uint8.
func U8() (uint8, error) {
	var r [1]uint8
	if err := readRandBuf(r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}

// Boolean returns true or false with equal probability.
func Boolean() (bool, error) {
	randBitLock.Lock()
	defer randBitLock.Unlock()
	if randBitPos > 7 { // Out of random bits.
		b, err := U8()
		if err != nil {
			return false, err
		}
		randBitBuf = b
		randBitPos = 0
	}
	res := randBitBuf&(1<<randBitPos) > 0
	randBitPos++
	return res, nil
}

// Sign returns +1 or -1 with equal probabilities.
func Sign() (int64, error) {
	b, err := Boolean()
	if err != nil {
		return 0, err
	}
	if b {
		return 1, nil
	}
	return -1, nil
}

// Uniform returns a float64 from the interval (0,1] such that each float
// in the interval is returned with positive probability and the resulting
// distribution simulates a continuous uniform distribution on (0, 1].
func Uniform() (float64, error) {
	u, err := U64()
	if err != nil {
		return 0, err
	}
	g, err := Geometric()
	if err != nil {
		return 0, err
	}
	i := u % (1 << 53)
	r := (1 + float64(i)/(1<<53)) / math.Pow(2, g)
	// Avoid returning 0, callers take the log of the output.
	if r == 0 {
		return 1, nil
	}
	return r, nil
}

// Geometric returns a float64 that counts the number of Bernoulli trials until
// the first success for a success probability of 0.5.
func Geometric() (float64, error) {
	// 1 plus the number of leading zeros from an infinite stream of random bits
	// follows the desired geometric distribution.
	b := 1
	var r uint8
	for r == 0 {
		var err error
		if r, err = U8(); err != nil {
			return 0, err
		}
		b += bits.LeadingZeros8(r)
	}
	return float64(b), nil
}

// constantTimeBytes covers every bit position of a float64 in [0, 1]: the
// lowest set bit of the smallest subnormal is at position 1074.
const constantTimeBytes = 135

// geometricConstantTime is like Geometric but always reads the same number
// of bytes. Positions past the buffer are reported as constantTimeBytes*8+1.
func geometricConstantTime() (int, error) {
	var buf [constantTimeBytes]byte
	if err := readRandBuf(buf[:]); err != nil {
		return 0, err
	}
	k := len(buf)*8 + 1
	for i := len(buf) - 1; i >= 0; i-- {
		if buf[i] != 0 {
			k = i*8 + bits.LeadingZeros8(buf[i]) + 1
		}
	}
	return k, nil
}

// bitOf returns the k-th bit after the binary point of p, for p in [0, 1).
func bitOf(p float64, k int) bool {
	if p == 0 {
		return false
	}
	_, exp := math.Frexp(p)
	// p has 53 significant bits, the last one at position 53-exp.
	if k > 53-exp {
		return false
	}
	return math.Mod(math.Floor(math.Ldexp(p, k)), 2) == 1
}

// Bernoulli returns true with probability prob, which must lie in [0, 1].
// The result is exact: it is the bit of prob's binary expansion at the
// position of the first heads in a sequence of fair coin flips. With
// constantTime set, the number of random bytes read does not depend on
// the outcome.
func Bernoulli(prob float64, constantTime bool) (bool, error) {
	if math.IsNaN(prob) || prob < 0 || prob > 1 {
		return false, dperr.New(dperr.FailedFunction, "probability %v must be in [0, 1]", prob)
	}
	var k int
	if constantTime {
		var err error
		if k, err = geometricConstantTime(); err != nil {
			return false, err
		}
	} else {
		g, err := Geometric()
		if err != nil {
			return false, err
		}
		k = int(g)
	}
	if prob == 1 {
		return true, nil
	}
	return bitOf(prob, k), nil
}
