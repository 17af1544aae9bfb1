//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package spdz

import (
	"fmt"
	"math/big"

	"github.com/carbynestack/lockstep/pkg/dres"
	"github.com/carbynestack/lockstep/pkg/network"
	"github.com/carbynestack/lockstep/pkg/numeric"
	"github.com/carbynestack/lockstep/pkg/protocol"
	"github.com/carbynestack/lockstep/pkg/resource"
)

// receiveSum receives one field element from every party and returns their sum.
func receiveSum(p *ResourcePool, net network.Network, elements int) ([]*big.Int, error) {
	msgs, err := net.ReceiveFromAll()
	if err != nil {
		return nil, err
	}
	sums := make([]*big.Int, elements)
	for i := range sums {
		sums[i] = new(big.Int)
	}
	for j, m := range msgs {
		vs, err := p.Field.DecodeAll(m, elements)
		if err != nil {
			return nil, network.CommunicationError(j, err)
		}
		for i, v := range vs {
			sums[i] = p.Field.Add(sums[i], v)
		}
	}
	return sums, nil
}

// input secret shares the value of the inputter. The inputter broadcasts the value masked with an input mask only it
// knows in round 0, everybody adds the received difference to its share of the mask in round 1.
type input struct {
	inputter int
	value    *big.Int
	mask     *InputMask
	out      *dres.Cell[numeric.Share]
}

func (x *input) Evaluate(round int, pool resource.Pool, net network.Network) (protocol.Status, error) {
	p, err := spdzPool(pool)
	if err != nil {
		return protocol.Done, err
	}
	switch round {
	case 0:
		if x.mask, err = p.Supplier.NextInputMask(x.inputter); err != nil {
			return protocol.Done, err
		}
		if p.MyID() != x.inputter {
			return protocol.HasMoreRounds, nil
		}
		if x.value == nil {
			return protocol.Done, fmt.Errorf("%w: party %d inputs no value", protocol.ErrContract, x.inputter)
		}
		return protocol.HasMoreRounds, net.SendToAll(p.Field.Encode(p.Field.Sub(x.value, x.mask.Value)))
	default:
		data, err := net.Receive(x.inputter)
		if err != nil {
			return protocol.Done, err
		}
		e, err := p.Field.Decode(data)
		if err != nil {
			return protocol.Done, network.CommunicationError(x.inputter, err)
		}
		p.Store.AddBroadcast(data)
		return protocol.Done, x.out.Set(x.mask.Mask.AddConst(p.Field, e, p.KeyShare(), p.MyID()))
	}
}

// mult multiplies with a Beaver triple: the parties open ε = x - a and δ = y - b and compute
// z = c + εb + δa + εδ locally.
type mult struct {
	left, right numeric.SInt
	triple      *Triple
	epsilon     *SInt
	delta       *SInt
	out         *dres.Cell[numeric.Share]
}

func (m *mult) Evaluate(round int, pool resource.Pool, net network.Network) (protocol.Status, error) {
	p, err := spdzPool(pool)
	if err != nil {
		return protocol.Done, err
	}
	f := p.Field
	switch round {
	case 0:
		x, err := sint(m.left)
		if err != nil {
			return protocol.Done, err
		}
		y, err := sint(m.right)
		if err != nil {
			return protocol.Done, err
		}
		if m.triple, err = p.Supplier.NextTriple(); err != nil {
			return protocol.Done, err
		}
		m.epsilon, m.delta = x.Sub(f, m.triple.A), y.Sub(f, m.triple.B)
		return protocol.HasMoreRounds, net.SendToAll(f.EncodeAll(m.epsilon.Share, m.delta.Share))
	default:
		opened, err := receiveSum(p, net, 2)
		if err != nil {
			return protocol.Done, err
		}
		e, d := opened[0], opened[1]
		p.Store.Add(e, m.epsilon.Mac, f.Encode(e))
		p.Store.Add(d, m.delta.Mac, f.Encode(d))
		t := m.triple
		z := t.C.Add(f, t.B.MulConst(f, e)).Add(f, t.A.MulConst(f, d)).AddConst(f, f.Mul(e, d), p.KeyShare(), p.MyID())
		m.triple, m.epsilon, m.delta = nil, nil, nil
		return protocol.Done, m.out.Set(z)
	}
}

// open reveals a value to all parties. The MAC of the value is checked later by the round synchronization.
type open struct {
	in  numeric.SInt
	mac *big.Int
	out *dres.Cell[*big.Int]
}

func (o *open) Evaluate(round int, pool resource.Pool, net network.Network) (protocol.Status, error) {
	p, err := spdzPool(pool)
	if err != nil {
		return protocol.Done, err
	}
	switch round {
	case 0:
		x, err := sint(o.in)
		if err != nil {
			return protocol.Done, err
		}
		o.mac = x.Mac
		return protocol.HasMoreRounds, net.SendToAll(p.Field.Encode(x.Share))
	default:
		opened, err := receiveSum(p, net, 1)
		if err != nil {
			return protocol.Done, err
		}
		p.Store.Add(opened[0], o.mac, p.Field.Encode(opened[0]))
		return protocol.Done, o.out.Set(opened[0])
	}
}

// openTo reveals a value to one party: all parties open the value minus an input mask of the receiver, who removes
// the mask afterwards.
type openTo struct {
	party  int
	in     numeric.SInt
	mask   *InputMask
	masked *SInt
	out    *dres.Cell[*big.Int]
}

func (o *openTo) Evaluate(round int, pool resource.Pool, net network.Network) (protocol.Status, error) {
	p, err := spdzPool(pool)
	if err != nil {
		return protocol.Done, err
	}
	switch round {
	case 0:
		x, err := sint(o.in)
		if err != nil {
			return protocol.Done, err
		}
		if o.mask, err = p.Supplier.NextInputMask(o.party); err != nil {
			return protocol.Done, err
		}
		o.masked = x.Sub(p.Field, o.mask.Mask)
		return protocol.HasMoreRounds, net.SendToAll(p.Field.Encode(o.masked.Share))
	default:
		opened, err := receiveSum(p, net, 1)
		if err != nil {
			return protocol.Done, err
		}
		p.Store.Add(opened[0], o.masked.Mac, p.Field.Encode(opened[0]))
		if p.MyID() != o.party {
			return protocol.Done, o.out.Set(nil)
		}
		return protocol.Done, o.out.Set(p.Field.Add(opened[0], o.mask.Value))
	}
}
