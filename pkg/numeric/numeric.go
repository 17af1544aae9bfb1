//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//

// Package numeric is the arithmetic facade applications are written against. A protocol suite provides the Factory
// creating the facade for a builder, the facade appends the suite's native protocols to that builder.
package numeric

import (
	"fmt"
	"math/big"

	"github.com/carbynestack/lockstep/pkg/builder"
	"github.com/carbynestack/lockstep/pkg/dres"
	"github.com/carbynestack/lockstep/pkg/protocol"
)

// Share is the suite specific representation of a secret shared value.
type Share interface{}

// SInt is a deferred secret shared integer.
type SInt = dres.Deferred[Share]

// Numeric emits arithmetic on secret shared integers. Linear operations are local and do not add protocols.
type Numeric interface {
	// Known shares a public constant.
	Known(v *big.Int) SInt
	// Input secret shares v held by the inputter. Other parties pass nil.
	Input(v *big.Int, inputter int) SInt
	Add(a, b SInt) SInt
	Sub(a, b SInt) SInt
	Mult(a, b SInt) SInt
	MultByConst(a SInt, c *big.Int) SInt
	// Open reveals a to all parties.
	Open(a SInt) dres.Deferred[*big.Int]
	// OpenTo reveals a to the given party only, the others get a nil value.
	OpenTo(a SInt, party int) dres.Deferred[*big.Int]
}

// Factory creates the facade appending to the given builder.
type Factory interface {
	Numeric(b *builder.Builder) Numeric
}

type factoryKey struct{}

// WithFactory attaches f to a producer tree so that computations can obtain the facade with Using.
func WithFactory(f Factory) builder.Option {
	return builder.WithValue(factoryKey{}, f)
}

// Using returns the facade for b. It panics if the tree was built without a factory.
func Using(b *builder.Builder) Numeric {
	f, ok := b.Value(factoryKey{}).(Factory)
	if !ok {
		panic(fmt.Errorf("%w: no numeric factory attached to the builder", protocol.ErrContract))
	}
	return f.Numeric(b)
}

// Sum adds all values. The sum of no values is the shared constant zero.
func Sum(num Numeric, values []SInt) SInt {
	if len(values) == 0 {
		return num.Known(big.NewInt(0))
	}
	acc := values[0]
	for _, v := range values[1:] {
		acc = num.Add(acc, v)
	}
	return acc
}
