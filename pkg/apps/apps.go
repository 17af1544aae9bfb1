//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//

// Package apps contains demo applications. Every application is a function of the local party's id and private
// inputs returning the computation this party evaluates. All parties must evaluate the same application with the
// same public parameters.
package apps

import (
	"fmt"
	"math/big"

	"github.com/carbynestack/lockstep/pkg/builder"
	"github.com/carbynestack/lockstep/pkg/dres"
	"github.com/carbynestack/lockstep/pkg/numeric"
	"github.com/carbynestack/lockstep/pkg/protocol"
)

// inputs lets every party in owners input one value in parallel. value returns the private value of the local party.
func inputs(b *builder.Builder, party int, owners []int, value func(i int) *big.Int) dres.Deferred[[]numeric.SInt] {
	return builder.Par(b, func(b *builder.Builder) dres.Deferred[[]numeric.SInt] {
		num := numeric.Using(b)
		xs := make([]numeric.SInt, len(owners))
		for i, owner := range owners {
			var v *big.Int
			if owner == party {
				v = value(i)
			}
			xs[i] = num.Input(v, owner)
		}
		return dres.Known(xs)
	})
}

// Sum opens the sum of one private value per party.
func Sum(party, parties int, value *big.Int) builder.Computation[*big.Int] {
	return func(b *builder.Builder) dres.Deferred[*big.Int] {
		owners := make([]int, parties)
		for i := range owners {
			owners[i] = i
		}
		xs := inputs(b, party, owners, func(int) *big.Int { return value })
		return builder.Seq(b, func(b *builder.Builder) dres.Deferred[*big.Int] {
			num := numeric.Using(b)
			return num.Open(numeric.Sum(num, dres.Must(xs)))
		})
	}
}

// InnerProduct opens the inner product of a vector of party 0 and a vector of party 1, both of length n. values is
// ignored for all other parties.
func InnerProduct(party, n int, values []*big.Int) builder.Computation[*big.Int] {
	return func(b *builder.Builder) dres.Deferred[*big.Int] {
		if (party == 0 || party == 1) && len(values) != n {
			panic(fmt.Errorf("%w: party %d has %d values, expected %d", protocol.ErrContract, party, len(values), n))
		}
		owners := make([]int, 2*n)
		for i := n; i < 2*n; i++ {
			owners[i] = 1
		}
		xs := inputs(b, party, owners, func(i int) *big.Int { return values[i%n] })
		products := builder.Seq(b, func(b *builder.Builder) dres.Deferred[[]numeric.SInt] {
			return builder.Par(b, func(b *builder.Builder) dres.Deferred[[]numeric.SInt] {
				num := numeric.Using(b)
				shares := dres.Must(xs)
				ps := make([]numeric.SInt, n)
				for i := range ps {
					ps[i] = num.Mult(shares[i], shares[n+i])
				}
				return dres.Known(ps)
			})
		})
		return builder.Seq(b, func(b *builder.Builder) dres.Deferred[*big.Int] {
			num := numeric.Using(b)
			return num.Open(numeric.Sum(num, dres.Must(products)))
		})
	}
}

type powerState struct {
	acc, base numeric.SInt
	exponent  uint64
}

// Power opens x^k for a private x of party 0 and a public k. It squares and multiplies, one loop iteration per bit of k.
func Power(party int, x *big.Int, k uint64) builder.Computation[*big.Int] {
	return func(b *builder.Builder) dres.Deferred[*big.Int] {
		num := numeric.Using(b)
		var v *big.Int
		if party == 0 {
			v = x
		}
		initial := powerState{acc: num.Known(big.NewInt(1)), base: num.Input(v, 0), exponent: k}
		result := builder.WhileLoop(b, func(s powerState) bool {
			return s.exponent > 0
		}, func(b *builder.Builder, s powerState) dres.Deferred[powerState] {
			return builder.Par(b, func(b *builder.Builder) dres.Deferred[powerState] {
				num := numeric.Using(b)
				next := powerState{acc: s.acc, base: s.base, exponent: s.exponent >> 1}
				if s.exponent&1 == 1 {
					next.acc = num.Mult(s.acc, s.base)
				}
				if next.exponent > 0 {
					next.base = num.Mult(s.base, s.base)
				}
				return dres.Known(next)
			})
		}, dres.Known(initial))
		return builder.Seq(b, func(b *builder.Builder) dres.Deferred[*big.Int] {
			return numeric.Using(b).Open(dres.Must(result).acc)
		})
	}
}

type countdownState struct {
	value  numeric.SInt
	opened *big.Int
	steps  int
}

// Countdown decrements a private start value of party 0 and opens it after every step until it reaches zero. It
// returns the number of steps. The number of iterations depends on opened values only.
func Countdown(party int, start *big.Int) builder.Computation[int] {
	return func(b *builder.Builder) dres.Deferred[int] {
		num := numeric.Using(b)
		var v *big.Int
		if party == 0 {
			v = start
		}
		x := num.Input(v, 0)
		opened := num.Open(x)
		initial := dres.Map(opened, func(o *big.Int) countdownState {
			return countdownState{value: x, opened: o}
		})
		final := builder.WhileLoop(b, func(s countdownState) bool {
			return s.opened.Sign() > 0
		}, func(b *builder.Builder, s countdownState) dres.Deferred[countdownState] {
			num := numeric.Using(b)
			next := num.Sub(s.value, num.Known(big.NewInt(1)))
			return dres.Map(num.Open(next), func(o *big.Int) countdownState {
				return countdownState{value: next, opened: o, steps: s.steps + 1}
			})
		}, initial)
		return dres.Map(final, func(s countdownState) int { return s.steps })
	}
}
