//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package suite

import (
	"github.com/carbynestack/lockstep/pkg/network"
	"github.com/carbynestack/lockstep/pkg/resource"

	"go.uber.org/atomic"
)

// Counting decorates a RoundSynchronization and counts the hook invocations.
type Counting struct {
	next RoundSynchronization

	before    atomic.Int64
	finished  atomic.Int64
	evals     atomic.Int64
	protocols atomic.Int64
}

// NewCounting wraps next. A nil next behaves like NoopSync.
func NewCounting(next RoundSynchronization) *Counting {
	if next == nil {
		next = NoopSync{}
	}
	return &Counting{next: next}
}

// BeforeBatch counts and delegates.
func (c *Counting) BeforeBatch(pool resource.Pool, net network.Network, size int) error {
	c.before.Inc()
	return c.next.BeforeBatch(pool, net, size)
}

// FinishedBatch counts and delegates.
func (c *Counting) FinishedBatch(protocols int, pool resource.Pool, net network.Network) error {
	c.finished.Inc()
	c.protocols.Add(int64(protocols))
	return c.next.FinishedBatch(protocols, pool, net)
}

// FinishedEval counts and delegates.
func (c *Counting) FinishedEval(pool resource.Pool, net network.Network) error {
	c.evals.Inc()
	return c.next.FinishedEval(pool, net)
}

// BeforeBatchCalls returns the number of BeforeBatch invocations.
func (c *Counting) BeforeBatchCalls() int64 {
	return c.before.Load()
}

// FinishedBatchCalls returns the number of FinishedBatch invocations.
func (c *Counting) FinishedBatchCalls() int64 {
	return c.finished.Load()
}

// FinishedEvalCalls returns the number of FinishedEval invocations.
func (c *Counting) FinishedEvalCalls() int64 {
	return c.evals.Load()
}

// Protocols returns the number of protocols reported by FinishedBatch.
func (c *Counting) Protocols() int64 {
	return c.protocols.Load()
}
