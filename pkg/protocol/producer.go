// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
package protocol

import (
	"fmt"

	"github.com/ef-ds/deque"
)

// Producer is a node of the producer tree. The evaluator pulls native protocols from the root of the tree until it
// is exhausted.
//
// HasNext of a producer is only called when every protocol the producer handed out before is done. This allows
// producers to build their sub-trees lazily from results of earlier protocols.
type Producer interface {
	// HasNext reports whether the producer has protocols left to hand out.
	HasNext() bool
	// Next adds protocols to the batch without exceeding its capacity.
	Next(c *Collection)
}

// Single is a leaf of the producer tree holding exactly one native protocol.
type Single struct {
	protocol NativeProtocol
	emitted  bool
}

// NewSingle returns a leaf for p.
func NewSingle(p NativeProtocol) *Single {
	return &Single{protocol: p}
}

// HasNext reports whether the protocol is still to be handed out.
func (s *Single) HasNext() bool {
	return !s.emitted
}

// Next adds the protocol to the batch if it has room.
func (s *Single) Next(c *Collection) {
	if s.emitted || c.Full() {
		return
	}
	c.Add(s.protocol)
	s.emitted = true
	// The leaf no longer needs the protocol, the batch holds the only reference.
	s.protocol = nil
}

// Lazy builds its producer on first use.
type Lazy struct {
	build    func() Producer
	producer Producer
}

// NewLazy returns a producer built by build when it is first touched.
func NewLazy(build func() Producer) *Lazy {
	return &Lazy{build: build}
}

// Producer builds the wrapped producer if necessary and returns it.
func (l *Lazy) Producer() Producer {
	if l.producer == nil {
		l.producer = l.build()
		l.build = nil
	}
	return l.producer
}

// HasNext builds the producer and delegates.
func (l *Lazy) HasNext() bool {
	return l.Producer().HasNext()
}

// Next builds the producer and delegates.
func (l *Lazy) Next(c *Collection) {
	l.Producer().Next(c)
}

// Sequential evaluates its children strictly one after the other: protocols of a child are only handed out once
// every protocol of the preceding children is done. Nested sequential children are flattened into this node when they
// reach the front, so deep chains of sequential compositions do not lead to deep recursion. A flattened node is
// sealed: appending to it panics with an error wrapping ErrContract.
type Sequential struct {
	children  deque.Deque
	flattened bool
}

// NewSequential returns a sequential node with the given children.
func NewSequential(children ...Producer) *Sequential {
	s := &Sequential{}
	for _, c := range children {
		s.Append(c)
	}
	return s
}

// Append adds a child at the end.
func (s *Sequential) Append(p Producer) {
	if s.flattened {
		panic(fmt.Errorf("%w: appending to a sequential node that was already evaluated", ErrContract))
	}
	s.children.PushBack(p)
}

// HasNext reports whether any child has protocols left.
func (s *Sequential) HasNext() bool {
	return s.current() != nil
}

// Next delegates to the current child only. Delegating once per pull keeps later children hidden until the
// protocols of the current child have been evaluated.
func (s *Sequential) Next(c *Collection) {
	if cur := s.current(); cur != nil {
		cur.Next(c)
	}
}

// current returns the first child with protocols left, dropping exhausted children and expanding lazy and nested
// sequential children on the way.
func (s *Sequential) current() Producer {
	for {
		v, ok := s.children.Front()
		if !ok {
			return nil
		}
		switch p := v.(type) {
		case *Lazy:
			s.children.PopFront()
			s.children.PushFront(p.Producer())
		case *Sequential:
			s.children.PopFront()
			p.flattened = true
			for {
				child, ok := p.children.PopBack()
				if !ok {
					break
				}
				s.children.PushFront(child)
			}
		default:
			producer := v.(Producer)
			if producer.HasNext() {
				return producer
			}
			s.children.PopFront()
		}
	}
}

// Parallel evaluates its children in any interleaving. A pull visits each active child at most once, in order, as
// long as the batch has room.
type Parallel struct {
	children []Producer
}

// NewParallel returns a parallel node with the given children.
func NewParallel(children ...Producer) *Parallel {
	return &Parallel{children: children}
}

// Append adds a child at the end.
func (p *Parallel) Append(child Producer) {
	p.children = append(p.children, child)
}

// HasNext reports whether any child has protocols left.
func (p *Parallel) HasNext() bool {
	active := p.children[:0]
	for _, c := range p.children {
		if c.HasNext() {
			active = append(active, c)
		}
	}
	for i := len(active); i < len(p.children); i++ {
		p.children[i] = nil
	}
	p.children = active
	return len(p.children) > 0
}

// Next pulls from every active child once while the batch has room.
func (p *Parallel) Next(c *Collection) {
	active := p.children[:0]
	for i, child := range p.children {
		if c.Full() {
			active = append(active, p.children[i:]...)
			break
		}
		if child.HasNext() {
			child.Next(c)
			active = append(active, child)
		}
	}
	for i := len(active); i < len(p.children); i++ {
		p.children[i] = nil
	}
	p.children = active
}
