//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package spdz

import (
	"math/big"
)

// Triple is a share of a multiplication triple c = ab.
type Triple struct {
	A, B, C *SInt
}

// InputMask is a share of a random value r. Value is r in the clear for the party the mask belongs to and nil for
// all others.
type InputMask struct {
	Mask  *SInt
	Value *big.Int
}

// DataSupplier provides the preprocessed material of the online phase. All parties must consume it in the same order.
type DataSupplier interface {
	// MacKeyShare returns this party's share of the MAC key.
	MacKeyShare() *big.Int
	// NextTriple returns the next multiplication triple.
	NextTriple() (*Triple, error)
	// NextInputMask returns the next input mask of the given party.
	NextInputMask(party int) (*InputMask, error)
	// Prefetch makes material for about n protocols available ahead of use.
	Prefetch(n int) error
	// Close releases the resources of the supplier.
	Close() error
}
