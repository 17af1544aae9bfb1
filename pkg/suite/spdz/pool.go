//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package spdz

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/carbynestack/lockstep/pkg/numeric"
	"github.com/carbynestack/lockstep/pkg/protocol"
	"github.com/carbynestack/lockstep/pkg/resource"
)

// ResourcePool extends the base pool with the state of the SPDZ online phase.
type ResourcePool struct {
	*resource.BasePool
	Field    *numeric.Field
	Supplier DataSupplier
	Store    *OpenedValueStore
}

// NewResourcePool returns a pool with an empty opened value store.
func NewResourcePool(base *resource.BasePool, field *numeric.Field, supplier DataSupplier) (*ResourcePool, error) {
	if base == nil || field == nil || supplier == nil {
		return nil, errors.New("base pool, field and supplier must not be nil")
	}
	return &ResourcePool{
		BasePool: base,
		Field:    field,
		Supplier: supplier,
		Store:    NewOpenedValueStore(),
	}, nil
}

// KeyShare returns this party's MAC key share.
func (p *ResourcePool) KeyShare() *big.Int {
	return p.Supplier.MacKeyShare()
}

func spdzPool(pool resource.Pool) (*ResourcePool, error) {
	p, ok := pool.(*ResourcePool)
	if !ok {
		return nil, fmt.Errorf("%w: spdz protocols need a spdz resource pool, got %T", protocol.ErrContract, pool)
	}
	return p, nil
}
