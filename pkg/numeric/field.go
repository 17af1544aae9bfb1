//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package numeric

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/carbynestack/lockstep/pkg/drbg"
)

// DefaultModulus is the 128 bit prime used by the SPDZ runtime of Carbyne Stack.
var DefaultModulus, _ = new(big.Int).SetString("198766463529478683931867765928436695041", 10)

// Field is the prime field elements are shared in. Elements are encoded big endian with a fixed width.
type Field struct {
	modulus *big.Int
	size    int
}

// NewField returns the field of integers modulo the given prime.
func NewField(modulus *big.Int) (*Field, error) {
	if modulus == nil || modulus.Cmp(big.NewInt(2)) < 0 {
		return nil, errors.New("modulus must be at least 2")
	}
	if !modulus.ProbablyPrime(20) {
		return nil, fmt.Errorf("modulus %s is not prime", modulus)
	}
	return &Field{
		modulus: new(big.Int).Set(modulus),
		size:    (modulus.BitLen() + 7) / 8,
	}, nil
}

// Modulus returns a copy of the modulus.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.modulus)
}

// ElementSize is the number of bytes of an encoded element.
func (f *Field) ElementSize() int {
	return f.size
}

// Reduce maps any integer, including negative ones, to its representative in [0, modulus).
func (f *Field) Reduce(v *big.Int) *big.Int {
	return new(big.Int).Mod(v, f.modulus)
}

func (f *Field) Add(a, b *big.Int) *big.Int {
	return f.Reduce(new(big.Int).Add(a, b))
}

func (f *Field) Sub(a, b *big.Int) *big.Int {
	return f.Reduce(new(big.Int).Sub(a, b))
}

func (f *Field) Mul(a, b *big.Int) *big.Int {
	return f.Reduce(new(big.Int).Mul(a, b))
}

// Random draws a uniform element.
func (f *Field) Random(d *drbg.Drbg) *big.Int {
	return d.BigInt(f.modulus)
}

// Encode writes the reduced value with the fixed element size.
func (f *Field) Encode(v *big.Int) []byte {
	return f.Reduce(v).FillBytes(make([]byte, f.size))
}

// EncodeAll concatenates the encodings of values.
func (f *Field) EncodeAll(values ...*big.Int) []byte {
	out := make([]byte, 0, len(values)*f.size)
	for _, v := range values {
		out = append(out, f.Encode(v)...)
	}
	return out
}

// Decode reads one element. It fails if data has the wrong length or is not reduced.
func (f *Field) Decode(data []byte) (*big.Int, error) {
	if len(data) != f.size {
		return nil, fmt.Errorf("element must have %d bytes, got %d", f.size, len(data))
	}
	v := new(big.Int).SetBytes(data)
	if v.Cmp(f.modulus) >= 0 {
		return nil, fmt.Errorf("element %s is not reduced", v)
	}
	return v, nil
}

// DecodeAll reads exactly n elements.
func (f *Field) DecodeAll(data []byte, n int) ([]*big.Int, error) {
	if len(data) != n*f.size {
		return nil, fmt.Errorf("expected %d elements of %d bytes, got %d bytes", n, f.size, len(data))
	}
	out := make([]*big.Int, n)
	for i := range out {
		v, err := f.Decode(data[i*f.size : (i+1)*f.size])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
