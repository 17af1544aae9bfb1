//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//

// Package spdz is a protocol suite for dishonest majority computation on additive secret shares with information
// theoretic MACs. Multiplications consume Beaver triples from a DataSupplier. Opened values are collected and their
// MACs are verified in batches by the round synchronization, so a cheating party is detected at the latest when the
// evaluation finishes.
package spdz

import (
	"math/big"

	"github.com/carbynestack/lockstep/pkg/builder"
	"github.com/carbynestack/lockstep/pkg/dres"
	"github.com/carbynestack/lockstep/pkg/numeric"
	"github.com/carbynestack/lockstep/pkg/suite"
)

// DefaultCheckThreshold makes every batch which opened values end with a MAC check.
const DefaultCheckThreshold = 1

// Suite is the SPDZ protocol suite of one party.
type Suite struct {
	pool *ResourcePool
	sync *RoundSync
}

// New returns the suite for the party owning pool.
func New(pool *ResourcePool, checkThreshold int) (*Suite, error) {
	sync, err := NewRoundSync(checkThreshold)
	if err != nil {
		return nil, err
	}
	return &Suite{pool: pool, sync: sync}, nil
}

// Pool returns the resource pool the suite's protocols must be evaluated with.
func (s *Suite) Pool() *ResourcePool {
	return s.pool
}

// RoundSynchronization returns the MAC checking hooks.
func (s *Suite) RoundSynchronization() suite.RoundSynchronization {
	return s.sync
}

// Sync returns the hooks with their statistics.
func (s *Suite) Sync() *RoundSync {
	return s.sync
}

// BuilderFactory returns the suite itself.
func (s *Suite) BuilderFactory() numeric.Factory {
	return s
}

// Numeric returns the facade appending to b.
func (s *Suite) Numeric(b *builder.Builder) numeric.Numeric {
	return &facade{pool: s.pool, b: b}
}

type facade struct {
	pool *ResourcePool
	b    *builder.Builder
}

func (n *facade) Known(v *big.Int) numeric.SInt {
	return dres.Known[numeric.Share](Constant(n.pool.Field, v, n.pool.KeyShare(), n.pool.MyID()))
}

func (n *facade) Input(v *big.Int, inputter int) numeric.SInt {
	p := &input{inputter: inputter, value: v, out: dres.NewCell[numeric.Share]("spdz input")}
	builder.Append(n.b, p)
	return p.out
}

func (n *facade) Add(a, b numeric.SInt) numeric.SInt {
	return derive(func(xs ...*SInt) *SInt { return xs[0].Add(n.pool.Field, xs[1]) }, a, b)
}

func (n *facade) Sub(a, b numeric.SInt) numeric.SInt {
	return derive(func(xs ...*SInt) *SInt { return xs[0].Sub(n.pool.Field, xs[1]) }, a, b)
}

func (n *facade) Mult(a, b numeric.SInt) numeric.SInt {
	p := &mult{left: a, right: b, out: dres.NewCell[numeric.Share]("spdz mult")}
	builder.Append(n.b, p)
	return p.out
}

func (n *facade) MultByConst(a numeric.SInt, c *big.Int) numeric.SInt {
	return derive(func(xs ...*SInt) *SInt { return xs[0].MulConst(n.pool.Field, c) }, a)
}

func (n *facade) Open(a numeric.SInt) dres.Deferred[*big.Int] {
	p := &open{in: a, out: dres.NewCell[*big.Int]("spdz open")}
	builder.Append(n.b, p)
	return p.out
}

func (n *facade) OpenTo(a numeric.SInt, party int) dres.Deferred[*big.Int] {
	p := &openTo{party: party, in: a, out: dres.NewCell[*big.Int]("spdz open to")}
	builder.Append(n.b, p)
	return p.out
}
