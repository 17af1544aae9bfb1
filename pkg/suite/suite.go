//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//

// Package suite defines what a protocol suite contributes to an evaluation: the round synchronization hooks invoked
// at batch boundaries and the factory applications use to emit the suite's protocols.
package suite

import (
	"github.com/carbynestack/lockstep/pkg/network"
	"github.com/carbynestack/lockstep/pkg/numeric"
	"github.com/carbynestack/lockstep/pkg/resource"
)

// RoundSynchronization is invoked by the evaluator around every batch and once after the producer tree is exhausted.
// Hooks may communicate through the network, e.g. to run consistency checks. Any error aborts the evaluation.
type RoundSynchronization interface {
	// BeforeBatch is called before a batch of the given size is evaluated.
	BeforeBatch(pool resource.Pool, net network.Network, size int) error
	// FinishedBatch is called after every protocol of a batch is done.
	FinishedBatch(protocols int, pool resource.Pool, net network.Network) error
	// FinishedEval is called exactly once after the last batch.
	FinishedEval(pool resource.Pool, net network.Network) error
}

// ProtocolSuite bundles the hooks and the builder factory of a suite.
type ProtocolSuite interface {
	RoundSynchronization() RoundSynchronization
	BuilderFactory() numeric.Factory
}

// NoopSync does nothing at batch boundaries.
type NoopSync struct{}

// BeforeBatch does nothing.
func (NoopSync) BeforeBatch(resource.Pool, network.Network, int) error {
	return nil
}

// FinishedBatch does nothing.
func (NoopSync) FinishedBatch(int, resource.Pool, network.Network) error {
	return nil
}

// FinishedEval does nothing.
func (NoopSync) FinishedEval(resource.Pool, network.Network) error {
	return nil
}
