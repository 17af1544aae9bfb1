// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0

// Package builder composes computations into a producer tree. Computations are functions from a builder to a deferred
// result; they are invoked lazily, when the evaluator reaches the part of the tree they build, so they may read the
// results of everything evaluated before them.
package builder

import (
	"fmt"

	"github.com/carbynestack/lockstep/pkg/dres"
	"github.com/carbynestack/lockstep/pkg/protocol"
)

// Computation builds a part of the producer tree and returns its result.
type Computation[T any] func(b *Builder) dres.Deferred[T]

type node interface {
	protocol.Producer
	Append(protocol.Producer)
}

// Builder appends producers to one node of the tree. Builders handed to computations by Seq and Par build a
// sequential or parallel node respectively.
type Builder struct {
	node   node
	values map[interface{}]interface{}
}

// Option configures the root builder.
type Option func(map[interface{}]interface{})

// WithValue attaches a value to the builders of a tree, e.g. the factory of a protocol suite.
func WithValue(key, value interface{}) Option {
	return func(m map[interface{}]interface{}) {
		m[key] = value
	}
}

// Build returns the root of the producer tree of c and its result. The computation itself runs when the root is
// first pulled.
func Build[T any](c Computation[T], opts ...Option) (protocol.Producer, dres.Deferred[T]) {
	values := map[interface{}]interface{}{}
	for _, opt := range opts {
		opt(values)
	}
	root := &Builder{node: protocol.NewSequential(), values: values}
	out := Seq(root, c)
	return root.node, out
}

// Value returns the value attached to the tree under key or nil.
func (b *Builder) Value(key interface{}) interface{} {
	return b.values[key]
}

func (b *Builder) child(n node) *Builder {
	return &Builder{node: n, values: b.values}
}

// Seq appends the tree built by c as a sequential child.
func Seq[T any](b *Builder, c Computation[T]) dres.Deferred[T] {
	return appendLazy(b, c, func() node { return protocol.NewSequential() })
}

// Par appends the tree built by c as a parallel child: the producers c appends may be evaluated in any interleaving.
func Par[T any](b *Builder, c Computation[T]) dres.Deferred[T] {
	return appendLazy(b, c, func() node { return protocol.NewParallel() })
}

func appendLazy[T any](b *Builder, c Computation[T], newNode func() node) dres.Deferred[T] {
	out := &dres.Forward[T]{}
	b.node.Append(protocol.NewLazy(func() protocol.Producer {
		child := b.child(newNode())
		bind(out, c(child))
		return child.node
	}))
	return out
}

func bind[T any](f *dres.Forward[T], d dres.Deferred[T]) {
	if d == nil {
		var zero T
		d = dres.Known(zero)
	}
	if err := f.Bind(d); err != nil {
		panic(fmt.Errorf("%w: %s", protocol.ErrContract, err))
	}
}

// Append adds a native protocol as a leaf. Protocol suites use it to emit their protocols.
func Append(b *Builder, p protocol.NativeProtocol) {
	b.node.Append(protocol.NewSingle(p))
}

// AppendProducer adds an arbitrary producer as a child.
func AppendProducer(b *Builder, p protocol.Producer) {
	b.node.Append(p)
}
