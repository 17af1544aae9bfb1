//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package spdz

import (
	"hash"
	"math/big"

	"golang.org/x/crypto/sha3"
)

// OpenedValueStore collects the values opened since the last MAC check together with this party's MAC shares, and a
// digest of everything that every party must have received identically.
type OpenedValueStore struct {
	values     []*big.Int
	macs       []*big.Int
	digest     hash.Hash
	broadcasts int
}

// NewOpenedValueStore returns an empty store.
func NewOpenedValueStore() *OpenedValueStore {
	return &OpenedValueStore{digest: sha3.New256()}
}

// Add records an opened value and this party's share of its MAC.
func (s *OpenedValueStore) Add(value, mac *big.Int, encoded []byte) {
	s.values = append(s.values, value)
	s.macs = append(s.macs, mac)
	s.digest.Write(encoded)
}

// AddBroadcast records data that was sent to all parties and must be the same everywhere.
func (s *OpenedValueStore) AddBroadcast(data []byte) {
	s.broadcasts++
	s.digest.Write(data)
}

// Pending returns the number of values and broadcasts not checked yet.
func (s *OpenedValueStore) Pending() int {
	return len(s.values) + s.broadcasts
}

// Drain returns the pending values, MAC shares and the digest and resets the store.
func (s *OpenedValueStore) Drain() (values, macs []*big.Int, digest []byte) {
	values, macs, digest = s.values, s.macs, s.digest.Sum(nil)
	s.values, s.macs, s.broadcasts = nil, nil, 0
	s.digest.Reset()
	return values, macs, digest
}
