//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package spdz

import (
	"fmt"

	"github.com/carbynestack/lockstep/pkg/evaluator"
	"github.com/carbynestack/lockstep/pkg/network"
	"github.com/carbynestack/lockstep/pkg/protocol"
	"github.com/carbynestack/lockstep/pkg/resource"
)

// RoundSync prefetches preprocessed material before every batch and checks the MACs of opened values after batches.
// A check covers everything opened since the previous check. It runs after a batch once at least threshold values
// are pending and after the last batch for whatever remains.
type RoundSync struct {
	threshold int
	checks    int
	checked   int
}

// NewRoundSync returns the hooks checking once threshold values are pending.
func NewRoundSync(threshold int) (*RoundSync, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("check threshold must be positive, got %d", threshold)
	}
	return &RoundSync{threshold: threshold}, nil
}

// BeforeBatch prefetches material for the batch.
func (s *RoundSync) BeforeBatch(pool resource.Pool, net network.Network, size int) error {
	p, err := spdzPool(pool)
	if err != nil {
		return err
	}
	return p.Supplier.Prefetch(size)
}

// FinishedBatch checks the pending values if there are enough of them.
func (s *RoundSync) FinishedBatch(protocols int, pool resource.Pool, net network.Network) error {
	p, err := spdzPool(pool)
	if err != nil {
		return err
	}
	if p.Store.Pending() < s.threshold {
		return nil
	}
	return s.check(p, net)
}

// FinishedEval checks all remaining values.
func (s *RoundSync) FinishedEval(pool resource.Pool, net network.Network) error {
	p, err := spdzPool(pool)
	if err != nil {
		return err
	}
	if p.Store.Pending() == 0 {
		return nil
	}
	return s.check(p, net)
}

// check evaluates the MAC check protocol on its own, outside of any batch.
func (s *RoundSync) check(p *ResourcePool, net network.Network) error {
	pending := p.Store.Pending()
	values, macs, digest := p.Store.Drain()
	check := newMacCheck(values, macs, digest)
	if _, err := (evaluator.BatchedStrategy{}).ProcessBatch([]protocol.NativeProtocol{check}, p, net); err != nil {
		p.Logger().Errorw("MAC check failed", "check", s.checks, "pending", pending, "error", err)
		return err
	}
	s.checks++
	s.checked += len(values)
	p.Logger().Debugw("MAC check passed", "check", s.checks, "pending", pending)
	return nil
}

// Checks returns the number of passed MAC checks.
func (s *RoundSync) Checks() int {
	return s.checks
}

// Checked returns the number of opened values covered by passed MAC checks.
func (s *RoundSync) Checked() int {
	return s.checked
}
