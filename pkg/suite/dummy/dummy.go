//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//

// Package dummy is an insecure protocol suite computing on clear values. Every party holds the actual value of every
// secret, only inputs are communicated. It is meant for testing applications and the evaluator.
package dummy

import (
	"fmt"
	"math/big"

	"github.com/carbynestack/lockstep/pkg/builder"
	"github.com/carbynestack/lockstep/pkg/dres"
	"github.com/carbynestack/lockstep/pkg/network"
	"github.com/carbynestack/lockstep/pkg/numeric"
	"github.com/carbynestack/lockstep/pkg/protocol"
	"github.com/carbynestack/lockstep/pkg/resource"
	"github.com/carbynestack/lockstep/pkg/suite"
)

// Suite is the clear value protocol suite.
type Suite struct {
	field *numeric.Field
}

// New returns a suite computing modulo the given prime.
func New(modulus *big.Int) (*Suite, error) {
	f, err := numeric.NewField(modulus)
	if err != nil {
		return nil, err
	}
	return &Suite{field: f}, nil
}

// RoundSynchronization returns hooks doing nothing.
func (s *Suite) RoundSynchronization() suite.RoundSynchronization {
	return suite.NoopSync{}
}

// BuilderFactory returns the suite itself.
func (s *Suite) BuilderFactory() numeric.Factory {
	return s
}

// Numeric returns the facade appending to b.
func (s *Suite) Numeric(b *builder.Builder) numeric.Numeric {
	return &facade{field: s.field, b: b}
}

type facade struct {
	field *numeric.Field
	b     *builder.Builder
}

func value(a numeric.SInt) (*big.Int, error) {
	s, err := a.Get()
	if err != nil {
		return nil, err
	}
	v, ok := s.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: share of type %T does not belong to the dummy suite", protocol.ErrContract, s)
	}
	return v, nil
}

// derive returns a share computed by f from the values of args.
func derive(f func(vs ...*big.Int) *big.Int, args ...numeric.SInt) numeric.SInt {
	return dres.Memo(func() (numeric.Share, error) {
		vs := make([]*big.Int, len(args))
		for i, a := range args {
			v, err := value(a)
			if err != nil {
				return nil, err
			}
			vs[i] = v
		}
		return f(vs...), nil
	})
}

func (n *facade) Known(v *big.Int) numeric.SInt {
	return dres.Known[numeric.Share](n.field.Reduce(v))
}

func (n *facade) Input(v *big.Int, inputter int) numeric.SInt {
	p := &input{field: n.field, value: v, inputter: inputter, out: dres.NewCell[numeric.Share]("dummy input")}
	builder.Append(n.b, p)
	return p.out
}

func (n *facade) Add(a, b numeric.SInt) numeric.SInt {
	return derive(func(vs ...*big.Int) *big.Int { return n.field.Add(vs[0], vs[1]) }, a, b)
}

func (n *facade) Sub(a, b numeric.SInt) numeric.SInt {
	return derive(func(vs ...*big.Int) *big.Int { return n.field.Sub(vs[0], vs[1]) }, a, b)
}

func (n *facade) Mult(a, b numeric.SInt) numeric.SInt {
	return derive(func(vs ...*big.Int) *big.Int { return n.field.Mul(vs[0], vs[1]) }, a, b)
}

func (n *facade) MultByConst(a numeric.SInt, c *big.Int) numeric.SInt {
	return derive(func(vs ...*big.Int) *big.Int { return n.field.Mul(vs[0], c) }, a)
}

func (n *facade) Open(a numeric.SInt) dres.Deferred[*big.Int] {
	return dres.Memo(func() (*big.Int, error) {
		return value(a)
	})
}

func (n *facade) OpenTo(a numeric.SInt, party int) dres.Deferred[*big.Int] {
	p := &openTo{party: party, in: a, out: dres.NewCell[*big.Int]("dummy open")}
	builder.Append(n.b, p)
	return p.out
}

// input sends the clear value from the inputter to every party in round 0 and reads it in round 1.
type input struct {
	field    *numeric.Field
	value    *big.Int
	inputter int
	out      *dres.Cell[numeric.Share]
}

func (p *input) Evaluate(round int, pool resource.Pool, net network.Network) (protocol.Status, error) {
	switch round {
	case 0:
		if pool.MyID() != p.inputter {
			return protocol.HasMoreRounds, nil
		}
		if p.value == nil {
			return protocol.Done, fmt.Errorf("%w: party %d inputs no value", protocol.ErrContract, p.inputter)
		}
		return protocol.HasMoreRounds, net.SendToAll(p.field.Encode(p.value))
	default:
		data, err := net.Receive(p.inputter)
		if err != nil {
			return protocol.Done, err
		}
		v, err := p.field.Decode(data)
		if err != nil {
			return protocol.Done, network.CommunicationError(p.inputter, err)
		}
		return protocol.Done, p.out.Set(v)
	}
}

// openTo resolves the value at the receiving party only. All parties know it anyway, so there is nothing to send.
type openTo struct {
	party int
	in    numeric.SInt
	out   *dres.Cell[*big.Int]
}

func (p *openTo) Evaluate(round int, pool resource.Pool, net network.Network) (protocol.Status, error) {
	if pool.MyID() != p.party {
		return protocol.Done, p.out.Set(nil)
	}
	v, err := value(p.in)
	if err != nil {
		return protocol.Done, err
	}
	return protocol.Done, p.out.Set(v)
}
