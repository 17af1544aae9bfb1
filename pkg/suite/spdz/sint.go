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
	"github.com/carbynestack/lockstep/pkg/numeric"
	"github.com/carbynestack/lockstep/pkg/protocol"
)

// SInt is one party's additive share of a value x together with its share of the MAC αx, where α is the global MAC
// key nobody knows in the clear.
type SInt struct {
	Share *big.Int
	Mac   *big.Int
}

func (s *SInt) String() string {
	return fmt.Sprintf("SInt{share: %s, mac: %s}", s.Share, s.Mac)
}

// Add returns the share of the sum.
func (s *SInt) Add(f *numeric.Field, o *SInt) *SInt {
	return &SInt{Share: f.Add(s.Share, o.Share), Mac: f.Add(s.Mac, o.Mac)}
}

// Sub returns the share of the difference.
func (s *SInt) Sub(f *numeric.Field, o *SInt) *SInt {
	return &SInt{Share: f.Sub(s.Share, o.Share), Mac: f.Sub(s.Mac, o.Mac)}
}

// MulConst returns the share of the product with a public constant.
func (s *SInt) MulConst(f *numeric.Field, c *big.Int) *SInt {
	return &SInt{Share: f.Mul(s.Share, c), Mac: f.Mul(s.Mac, c)}
}

// AddConst returns the share of the sum with a public constant. Party 0 adds c to its share, every party adds its
// MAC key share times c to the MAC share.
func (s *SInt) AddConst(f *numeric.Field, c *big.Int, keyShare *big.Int, myID int) *SInt {
	share := s.Share
	if myID == 0 {
		share = f.Add(share, c)
	}
	return &SInt{Share: share, Mac: f.Add(s.Mac, f.Mul(keyShare, c))}
}

// Constant returns the share of a public constant.
func Constant(f *numeric.Field, c *big.Int, keyShare *big.Int, myID int) *SInt {
	zero := &SInt{Share: new(big.Int), Mac: new(big.Int)}
	return zero.AddConst(f, c, keyShare, myID)
}

func sint(d numeric.SInt) (*SInt, error) {
	v, err := d.Get()
	if err != nil {
		return nil, err
	}
	s, ok := v.(*SInt)
	if !ok {
		return nil, fmt.Errorf("%w: share of type %T does not belong to the spdz suite", protocol.ErrContract, v)
	}
	return s, nil
}

func derive(f func(xs ...*SInt) *SInt, args ...numeric.SInt) numeric.SInt {
	return dres.Memo(func() (numeric.Share, error) {
		xs := make([]*SInt, len(args))
		for i, a := range args {
			x, err := sint(a)
			if err != nil {
				return nil, err
			}
			xs[i] = x
		}
		return f(xs...), nil
	})
}
