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

// Package interactive provides queryables: stateful objects that answer a
// sequence of typed queries and form the basis of interactive mechanisms.
//
// A queryable answers external queries, which come from the user, and
// internal queries, which are control messages exchanged between queryables.
// When a queryable is released as the answer of another queryable, the
// releasing queryable becomes its parent. Before a child changes state in
// response to a query, it sends a ChildChange to its parent, which may refuse
// the change. See Adopt.
//
// Queryables are not safe for concurrent use.
package interactive

import (
	log "github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/google/differential-privacy/dpcore/dperr"
)

// Query is either an external query of type Q or an internal control message.
type Query[Q any] struct {
	external   Q
	internal   any
	isInternal bool
}

// ExternalQuery wraps a user query.
func ExternalQuery[Q any](q Q) Query[Q] {
	return Query[Q]{external: q}
}

// InternalQuery wraps a control message.
func InternalQuery[Q any](msg any) Query[Q] {
	return Query[Q]{internal: msg, isInternal: true}
}

// External returns the user query, if q is one.
func (q Query[Q]) External() (Q, bool) {
	return q.external, !q.isInternal
}

// Internal returns the control message, if q is one.
func (q Query[Q]) Internal() (any, bool) {
	return q.internal, q.isInternal
}

// Answer is either an external answer of type A or an internal reply to a
// control message.
type Answer[A any] struct {
	external   A
	internal   any
	isInternal bool
}

// ExternalAnswer wraps an answer to a user query.
func ExternalAnswer[A any](a A) Answer[A] {
	return Answer[A]{external: a}
}

// InternalAnswer wraps a reply to a control message.
func InternalAnswer[A any](v any) Answer[A] {
	return Answer[A]{internal: v, isInternal: true}
}

// External returns the answer to a user query, if a is one.
func (a Answer[A]) External() (A, bool) {
	return a.external, !a.isInternal
}

// Internal returns the reply to a control message, if a is one.
func (a Answer[A]) Internal() (any, bool) {
	return a.internal, a.isInternal
}

// ChildChange is the internal query a child queryable sends to its parent
// before it changes state. ID is the identifier the parent assigned to the
// child when adopting it.
type ChildChange struct {
	ID int
}

// Transition computes the answer of a queryable to q and updates the
// queryable's state. The queryable being evaluated is passed as self, so that
// queryables released in the answer can be adopted by it.
type Transition[Q, A any] interface {
	Transition(self *Queryable[Q, A], q Query[Q]) (Answer[A], error)
}

// TransitionFunc adapts a function to the Transition interface.
type TransitionFunc[Q, A any] func(self *Queryable[Q, A], q Query[Q]) (Answer[A], error)

// Transition calls f(self, q).
func (f TransitionFunc[Q, A]) Transition(self *Queryable[Q, A], q Query[Q]) (Answer[A], error) {
	return f(self, q)
}

// Parent is a queryable that receives ChildChange notifications.
type Parent interface {
	ID() uuid.UUID
	EvalInternal(msg any) (any, error)
}

// Queryable holds the state of one interactive session.
type Queryable[Q, A any] struct {
	id         uuid.UUID
	transition Transition[Q, A]

	parent  Parent
	childID int

	busy bool
}

// New returns a queryable whose state machine is t.
func New[Q, A any](t Transition[Q, A]) *Queryable[Q, A] {
	id := uuid.New()
	log.V(2).Infof("Created queryable %s", id)
	return &Queryable[Q, A]{id: id, transition: t}
}

// NewFunc returns a queryable whose state machine is fn.
func NewFunc[Q, A any](fn func(self *Queryable[Q, A], q Query[Q]) (Answer[A], error)) *Queryable[Q, A] {
	return New[Q, A](TransitionFunc[Q, A](fn))
}

// ID returns the session id of the queryable.
func (qbl *Queryable[Q, A]) ID() uuid.UUID {
	return qbl.id
}

// Eval submits a user query and returns its answer.
func (qbl *Queryable[Q, A]) Eval(q Q) (A, error) {
	var zero A
	ans, err := qbl.EvalQuery(ExternalQuery(q))
	if err != nil {
		return zero, err
	}
	a, ok := ans.External()
	if !ok {
		return zero, dperr.New(dperr.FailedCast, "queryable %s returned an internal answer to an external query", qbl.id)
	}
	return a, nil
}

// EvalInternal submits a control message and returns the reply.
func (qbl *Queryable[Q, A]) EvalInternal(msg any) (any, error) {
	ans, err := qbl.EvalQuery(InternalQuery[Q](msg))
	if err != nil {
		return nil, err
	}
	v, ok := ans.Internal()
	if !ok {
		return nil, dperr.New(dperr.FailedCast, "queryable %s returned an external answer to an internal query", qbl.id)
	}
	return v, nil
}

// EvalQuery runs one transition of the queryable. If the queryable has a
// parent and q may change its state, the parent is asked for permission
// first, and a refusal is returned as is.
func (qbl *Queryable[Q, A]) EvalQuery(q Query[Q]) (Answer[A], error) {
	if qbl.transition == nil {
		return Answer[A]{}, dperr.New(dperr.NotImplemented, "queryable %s has no transition", qbl.id)
	}
	if qbl.busy {
		return Answer[A]{}, dperr.New(dperr.FailedFunction, "queryable %s is already evaluating a query", qbl.id)
	}
	if qbl.parent != nil && changesState(q) {
		if _, err := qbl.parent.EvalInternal(ChildChange{ID: qbl.childID}); err != nil {
			return Answer[A]{}, err
		}
	}
	qbl.busy = true
	defer func() { qbl.busy = false }()
	return qbl.transition.Transition(qbl, q)
}

// changesState reports whether q must be approved by the parent. Nested
// ChildChange notifications are forwarded up the whole ancestry.
func changesState[Q any](q Query[Q]) bool {
	msg, internal := q.Internal()
	if !internal {
		return true
	}
	_, ok := msg.(ChildChange)
	return ok
}

// adoptable is implemented by every *Queryable.
type adoptable interface {
	setParent(parent Parent, id int) error
}

func (qbl *Queryable[Q, A]) setParent(parent Parent, id int) error {
	if qbl.parent != nil {
		return dperr.New(dperr.FailedFunction, "queryable %s already has parent %s", qbl.id, qbl.parent.ID())
	}
	qbl.parent = parent
	qbl.childID = id
	log.V(2).Infof("Queryable %s adopted by %s with id %d", qbl.id, parent.ID(), id)
	return nil
}

// Adopt makes parent the parent of child if child is a queryable, assigning
// it the given id. It reports whether child is a queryable, and fails if the
// queryable already has a parent.
func Adopt(child any, id int, parent Parent) (bool, error) {
	a, ok := child.(adoptable)
	if !ok {
		return false, nil
	}
	return true, a.setParent(parent, id)
}

// EvalPoly submits q to a queryable with type-erased answers and downcasts
// the answer to T.
func EvalPoly[T, Q any](qbl *Queryable[Q, any], q Q) (T, error) {
	var zero T
	a, err := qbl.Eval(q)
	if err != nil {
		return zero, err
	}
	t, ok := a.(T)
	if !ok {
		return zero, dperr.New(dperr.FailedCast, "failed downcast of queryable answer %T to %T", a, zero)
	}
	return t, nil
}
