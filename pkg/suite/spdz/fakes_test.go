//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package spdz_test

import (
	"context"
	"math/big"
	"time"

	"github.com/carbynestack/lockstep/pkg/builder"
	"github.com/carbynestack/lockstep/pkg/drbg"
	"github.com/carbynestack/lockstep/pkg/engine"
	"github.com/carbynestack/lockstep/pkg/network"
	"github.com/carbynestack/lockstep/pkg/network/loopback"
	"github.com/carbynestack/lockstep/pkg/numeric"
	"github.com/carbynestack/lockstep/pkg/resource"
	. "github.com/carbynestack/lockstep/pkg/suite/spdz"
)

var testSeed = [drbg.SeedSize]byte{42}

func testField() *numeric.Field {
	f, err := numeric.NewField(numeric.DefaultModulus)
	if err != nil {
		panic(err)
	}
	return f
}

// localRun holds the suites of all parties of a local run for inspection.
type localRun struct {
	parties   int
	threshold int
	suites    []*Suite
	wrap      func(party int, net network.Network) network.Network
}

func newLocalRun(parties, threshold int) *localRun {
	return &localRun{parties: parties, threshold: threshold, suites: make([]*Suite, parties)}
}

func (r *localRun) setup(i int) (*engine.Party, error) {
	field := testField()
	supplier, err := NewDummySupplier(field, testSeed, i, r.parties, 2)
	if err != nil {
		return nil, err
	}
	base, err := resource.NewBasePool(i, r.parties, nil, nil)
	if err != nil {
		return nil, err
	}
	pool, err := NewResourcePool(base, field, supplier)
	if err != nil {
		return nil, err
	}
	s, err := New(pool, r.threshold)
	if err != nil {
		return nil, err
	}
	r.suites[i] = s
	p := &engine.Party{Engine: engine.New(s, nil), Pool: pool}
	if r.wrap != nil {
		p.Network = func(net network.Network) network.Network {
			return r.wrap(i, net)
		}
	}
	return p, nil
}

func runLocal[T any](r *localRun, app func(party int) builder.Computation[T]) ([]*engine.Result[T], error) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	defer func() {
		for _, s := range r.suites {
			if s != nil {
				s.Pool().Supplier.Close()
			}
		}
	}()
	return engine.RunLocal(ctx, r.parties, r.setup, app, loopback.WithTimeout(10*time.Second))
}

// TamperingNetwork adds one to the first field element of the first message sent to each of the targeted parties.
type TamperingNetwork struct {
	network.Broadcast
	net      network.Network
	field    *numeric.Field
	targets  map[int]bool
	tampered map[int]bool
}

func NewTamperingNetwork(net network.Network, field *numeric.Field, targets ...int) *TamperingNetwork {
	t := &TamperingNetwork{net: net, field: field, targets: map[int]bool{}, tampered: map[int]bool{}}
	for _, target := range targets {
		t.targets[target] = true
	}
	t.Broadcast = network.Broadcast{PointToPoint: t}
	return t
}

func (t *TamperingNetwork) Send(to int, data []byte) error {
	size := t.field.ElementSize()
	if t.targets[to] && !t.tampered[to] && len(data) >= size {
		if v, err := t.field.Decode(data[:size]); err == nil {
			t.tampered[to] = true
			data = append(t.field.Encode(t.field.Add(v, big.NewInt(1))), data[size:]...)
		}
	}
	return t.net.Send(to, data)
}

func (t *TamperingNetwork) Receive(from int) ([]byte, error) {
	return t.net.Receive(from)
}

func (t *TamperingNetwork) NoOfParties() int {
	return t.net.NoOfParties()
}
