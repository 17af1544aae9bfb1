//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package spdz

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/carbynestack/lockstep/pkg/drbg"
	"github.com/carbynestack/lockstep/pkg/network"
	"github.com/carbynestack/lockstep/pkg/protocol"
	"github.com/carbynestack/lockstep/pkg/resource"

	"golang.org/x/crypto/sha3"
)

const nonceSize = 32

// commit returns a hash commitment to data and the opening revealing it.
func commit(random *drbg.Drbg, data []byte) (commitment, opening []byte) {
	opening = append(random.Bytes(nonceSize), data...)
	c := sha3.Sum256(opening)
	return c[:], opening
}

// openCommitment returns the committed data if opening matches commitment.
func openCommitment(commitment, opening []byte) ([]byte, bool) {
	if len(opening) < nonceSize {
		return nil, false
	}
	c := sha3.Sum256(opening)
	if !bytes.Equal(c[:], commitment) {
		return nil, false
	}
	return opening[nonceSize:], true
}

// macCheck verifies the MACs of a list of opened values and that all parties saw the same broadcasts.
//
// The parties jointly sample a seed by committing to and then revealing seed shares. The seed determines random
// coefficients ρ. Each party computes σ = Σ ρ·mac - α_i·Σ ρ·value, commits to σ together with its broadcast digest
// and reveals both. The check passes if the σ sum to zero and all digests are equal.
type macCheck struct {
	values, macs []*big.Int
	digest       []byte
	opening      []byte
	commitments  [][]byte
	seed         [drbg.SeedSize]byte
}

func newMacCheck(values, macs []*big.Int, digest []byte) *macCheck {
	return &macCheck{values: values, macs: macs, digest: digest}
}

// openAll receives the openings of the commitments received in the previous round and verifies them.
func (c *macCheck) openAll(net network.Network, size int, what string) ([][]byte, error) {
	openings, err := net.ReceiveFromAll()
	if err != nil {
		return nil, err
	}
	data := make([][]byte, len(openings))
	for j, o := range openings {
		d, ok := openCommitment(c.commitments[j], o)
		if !ok || len(d) != size {
			return nil, protocol.NewMaliciousError("party %d opened its %s commitment incorrectly", j, what)
		}
		data[j] = d
	}
	return data, nil
}

func (c *macCheck) Evaluate(round int, pool resource.Pool, net network.Network) (protocol.Status, error) {
	p, err := spdzPool(pool)
	if err != nil {
		return protocol.Done, err
	}
	f := p.Field
	switch round {
	case 0:
		seedShare := p.Random().Seed()
		var commitment []byte
		commitment, c.opening = commit(p.Random(), seedShare[:])
		return protocol.HasMoreRounds, net.SendToAll(commitment)
	case 1, 3:
		if c.commitments, err = net.ReceiveFromAll(); err != nil {
			return protocol.Done, err
		}
		return protocol.HasMoreRounds, net.SendToAll(c.opening)
	case 2:
		shares, err := c.openAll(net, drbg.SeedSize, "seed")
		if err != nil {
			return protocol.Done, err
		}
		for _, s := range shares {
			for i := range c.seed {
				c.seed[i] ^= s[i]
			}
		}
		coefficients, err := drbg.New(c.seed)
		if err != nil {
			return protocol.Done, err
		}
		value, mac := new(big.Int), new(big.Int)
		for k := range c.values {
			rho := f.Random(coefficients)
			value = f.Add(value, f.Mul(rho, c.values[k]))
			mac = f.Add(mac, f.Mul(rho, c.macs[k]))
		}
		sigma := f.Sub(mac, f.Mul(p.KeyShare(), value))
		var commitment []byte
		commitment, c.opening = commit(p.Random(), append(f.Encode(sigma), c.digest...))
		return protocol.HasMoreRounds, net.SendToAll(commitment)
	default:
		reveals, err := c.openAll(net, f.ElementSize()+len(c.digest), "mac check")
		if err != nil {
			return protocol.Done, err
		}
		sum := new(big.Int)
		for j, r := range reveals {
			if !bytes.Equal(r[f.ElementSize():], c.digest) {
				return protocol.Done, protocol.NewMaliciousError("broadcast validation failed, party %d received different values", j)
			}
			sigma, err := f.Decode(r[:f.ElementSize()])
			if err != nil {
				return protocol.Done, protocol.NewMaliciousError("party %d revealed an invalid mac check value: %s", j, err)
			}
			sum = f.Add(sum, sigma)
		}
		if sum.Sign() != 0 {
			return protocol.Done, protocol.NewMaliciousError("mac check failed for %d opened values", len(c.values))
		}
		return protocol.Done, nil
	}
}

func (c *macCheck) String() string {
	return fmt.Sprintf("macCheck{values: %d}", len(c.values))
}
