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

package domains

import (
	"fmt"

	"github.com/google/differential-privacy/dpcore/core"
)

// Vector is implemented by the domains of slices.
type Vector interface {
	// Element returns the domain of the elements.
	Element() any
	// Size returns the length of every member, if it is fixed.
	Size() (int, bool)
}

// VectorDomain is the domain of slices whose elements all belong to an
// element domain, optionally of a fixed length.
type VectorDomain[T any] struct {
	element core.Domain[T]
	size    int
	sized   bool
}

// NewVectorDomain returns the domain of slices of any length with elements in
// element.
func NewVectorDomain[T any](element core.Domain[T]) VectorDomain[T] {
	return VectorDomain[T]{element: element}
}

// NewSizedVectorDomain returns the domain of slices of length size with
// elements in element.
func NewSizedVectorDomain[T any](element core.Domain[T], size int) (VectorDomain[T], error) {
	if size < 0 {
		return VectorDomain[T]{}, fmt.Errorf("Size is %d, must be nonnegative", size)
	}
	return VectorDomain[T]{element: element, size: size, sized: true}, nil
}

// Member reports whether v has the right length and every element belongs to
// the element domain.
func (d VectorDomain[T]) Member(v []T) (bool, error) {
	if d.sized && len(v) != d.size {
		return false, nil
	}
	for _, e := range v {
		ok, err := d.element.Member(e)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// ElementDomain returns the domain of the elements.
func (d VectorDomain[T]) ElementDomain() core.Domain[T] { return d.element }

// Element returns the domain of the elements.
func (d VectorDomain[T]) Element() any { return d.element }

// Size returns the length of every member, if it is fixed.
func (d VectorDomain[T]) Size() (int, bool) { return d.size, d.sized }

func (d VectorDomain[T]) String() string {
	if d.sized {
		return fmt.Sprintf("VectorDomain(%v, size=%d)", d.element, d.size)
	}
	return fmt.Sprintf("VectorDomain(%v)", d.element)
}
