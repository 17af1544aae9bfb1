// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
package drbg

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"

	"golang.org/x/crypto/chacha20"
)

// SeedSize is the size of a DRBG seed in bytes.
const SeedSize = chacha20.KeySize

// Drbg is a deterministic random bit generator backed by the ChaCha20 key stream.
// Two generators created from the same seed and stream id produce the same output.
type Drbg struct {
	cipher *chacha20.Cipher
}

// New returns a generator for the given seed using stream 0.
func New(seed [SeedSize]byte) (*Drbg, error) {
	return NewStream(seed, 0)
}

// NewStream returns a generator for an independent stream of the given seed.
// Distinct stream ids never overlap, which allows deriving many generators from one seed.
func NewStream(seed [SeedSize]byte, stream uint64) (*Drbg, error) {
	nonce := make([]byte, chacha20.NonceSize)
	binary.LittleEndian.PutUint64(nonce[4:], stream)
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to create chacha20 stream: %w", err)
	}
	return &Drbg{cipher: c}, nil
}

// NewRandom returns a generator seeded from crypto/rand.
func NewRandom() (*Drbg, error) {
	var seed [SeedSize]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}
	return New(seed)
}

// Read fills p with pseudo-random bytes. It never fails.
func (d *Drbg) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	d.cipher.XORKeyStream(p, p)
	return len(p), nil
}

// Bytes returns n pseudo-random bytes.
func (d *Drbg) Bytes(n int) []byte {
	b := make([]byte, n)
	_, _ = d.Read(b)
	return b
}

// Seed returns a fresh seed drawn from the generator.
func (d *Drbg) Seed() [SeedSize]byte {
	var s [SeedSize]byte
	_, _ = d.Read(s[:])
	return s
}

// BigInt returns a uniformly distributed value in [0, modulus).
func (d *Drbg) BigInt(modulus *big.Int) *big.Int {
	// 8 extra bytes keep the modular bias below 2^-64.
	buf := d.Bytes((modulus.BitLen()+7)/8 + 8)
	v := new(big.Int).SetBytes(buf)
	return v.Mod(v, modulus)
}

// Intn returns a value in [0, n).
func (d *Drbg) Intn(n int) int {
	return int(d.BigInt(big.NewInt(int64(n))).Int64())
}
