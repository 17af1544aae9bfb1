// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
package builder

import (
	"github.com/carbynestack/lockstep/pkg/dres"
	"github.com/carbynestack/lockstep/pkg/protocol"
)

// Step is a link in a chain of sequential computations where every link receives the resolved result of the
// previous one.
type Step[T any] struct {
	scope *Builder
	out   dres.Deferred[T]
}

// Start begins a chain with c. The chain occupies its own sequential child of b, so it keeps its order even when b
// builds a parallel node.
func Start[T any](b *Builder, c Computation[T]) *Step[T] {
	scope := b.child(protocol.NewSequential())
	b.node.Append(scope.node)
	return &Step[T]{scope: scope, out: Seq(scope, c)}
}

// Then continues the chain with f, evaluated sequentially after the previous step. A chain must be completed before
// the evaluator reaches it: continuing it afterwards, e.g. from a later Seq, panics with an error wrapping
// protocol.ErrContract.
func Then[T, U any](s *Step[T], f func(b *Builder, prev T) dres.Deferred[U]) *Step[U] {
	prev := s.out
	return &Step[U]{scope: s.scope, out: Seq(s.scope, func(b *Builder) dres.Deferred[U] {
		return f(b, dres.Must(prev))
	})}
}

// ThenPar continues the chain with f whose protocols may be evaluated in parallel.
func ThenPar[T, U any](s *Step[T], f func(b *Builder, prev T) dres.Deferred[U]) *Step[U] {
	prev := s.out
	return &Step[U]{scope: s.scope, out: Par(s.scope, func(b *Builder) dres.Deferred[U] {
		return f(b, dres.Must(prev))
	})}
}

// Out returns the result of the last step of the chain.
func (s *Step[T]) Out() dres.Deferred[T] {
	return s.out
}
