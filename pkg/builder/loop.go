// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
package builder

import (
	"fmt"

	"github.com/carbynestack/lockstep/pkg/dres"
	"github.com/carbynestack/lockstep/pkg/protocol"
)

// WhileLoop appends a loop: as long as cond holds for the current state, body builds one more sequential iteration
// producing the next state. An iteration is only built once the state produced by the previous one is resolved. The
// returned result is the first state for which cond does not hold.
func WhileLoop[S any](b *Builder, cond func(S) bool, body func(b *Builder, state S) dres.Deferred[S], initial dres.Deferred[S]) dres.Deferred[S] {
	l := &loop[S]{
		b:     b,
		cond:  cond,
		body:  body,
		state: initial,
		out:   dres.NewCell[S]("while loop"),
	}
	b.node.Append(l)
	return l.out
}

type loop[S any] struct {
	b          *Builder
	cond       func(S) bool
	body       func(*Builder, S) dres.Deferred[S]
	state      dres.Deferred[S]
	current    protocol.Producer
	out        *dres.Cell[S]
	iterations int
	done       bool
}

// HasNext builds iterations until one of them has protocols or the condition fails.
func (l *loop[S]) HasNext() bool {
	for !l.done {
		if l.current != nil && l.current.HasNext() {
			return true
		}
		state := dres.Must(l.state)
		if !l.cond(state) {
			l.finish(state)
			return false
		}
		child := l.b.child(protocol.NewSequential())
		next := l.body(child, state)
		if next == nil {
			panic(fmt.Errorf("%w: loop body returned no state in iteration %d", protocol.ErrContract, l.iterations))
		}
		l.state = next
		l.current = child.node
		l.iterations++
	}
	return false
}

// Next delegates to the current iteration.
func (l *loop[S]) Next(c *protocol.Collection) {
	if l.HasNext() {
		l.current.Next(c)
	}
}

func (l *loop[S]) finish(state S) {
	l.done = true
	l.current = nil
	l.body = nil
	if err := l.out.Set(state); err != nil {
		panic(fmt.Errorf("%w: %s", protocol.ErrContract, err))
	}
}
