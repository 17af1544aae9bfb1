//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//

// Package evaluator drives a producer tree to completion. It pulls bounded batches of native protocols, evaluates
// every batch in rounds and invokes the round synchronization hooks of the protocol suite between batches.
package evaluator

import (
	"errors"
	"fmt"

	"github.com/carbynestack/lockstep/pkg/dres"
	"github.com/carbynestack/lockstep/pkg/network"
	"github.com/carbynestack/lockstep/pkg/protocol"
	"github.com/carbynestack/lockstep/pkg/resource"
	"github.com/carbynestack/lockstep/pkg/suite"

	"go.uber.org/zap"
)

// DefaultBatchSize is the maximum number of protocols in flight if no batch size is configured.
const DefaultBatchSize = 4096

// Stats describe a finished evaluation.
type Stats struct {
	Batches     int
	Protocols   int
	Rounds      int
	MaxInFlight int
}

// Evaluator evaluates producer trees. It is not safe for concurrent use, but distinct evaluations may run one after
// the other.
type Evaluator struct {
	batchSize int
	strategy  Strategy
	sync      suite.RoundSynchronization
	batching  bool
	logger    *zap.SugaredLogger
}

// Option configures an evaluator.
type Option func(*Evaluator)

// WithBatchSize bounds the number of protocols in flight.
func WithBatchSize(n int) Option {
	return func(e *Evaluator) {
		e.batchSize = n
	}
}

// WithStrategy replaces the default BatchedStrategy.
func WithStrategy(s Strategy) Option {
	return func(e *Evaluator) {
		e.strategy = s
	}
}

// WithSync sets the round synchronization of the protocol suite.
func WithSync(s suite.RoundSynchronization) Option {
	return func(e *Evaluator) {
		e.sync = s
	}
}

// WithBatchingNetwork makes the evaluator wrap the network into a BatchingNetwork.
func WithBatchingNetwork(enabled bool) Option {
	return func(e *Evaluator) {
		e.batching = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// New returns an evaluator with the given options applied.
func New(opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		batchSize: DefaultBatchSize,
		strategy:  BatchedStrategy{},
		sync:      suite.NoopSync{},
		logger:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.batchSize < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", e.batchSize)
	}
	if e.strategy == nil || e.sync == nil || e.logger == nil {
		return nil, errors.New("strategy, round synchronization and logger must not be nil")
	}
	return e, nil
}

// Named returns a copy of the evaluator logging with the given run id.
func (e *Evaluator) Named(runID string) *Evaluator {
	c := *e
	c.logger = e.logger.With("runID", runID)
	return &c
}

// BatchSize returns the maximum number of protocols in flight.
func (e *Evaluator) BatchSize() int {
	return e.batchSize
}

// Eval evaluates the tree rooted at producer. The first error of a protocol, a hook or the network aborts the
// evaluation. Reading an unresolved result while building the tree is reported as an error wrapping
// protocol.ErrContract, as is a missing pool or network.
func (e *Evaluator) Eval(producer protocol.Producer, pool resource.Pool, net network.Network) (stats *Stats, err error) {
	if pool == nil {
		return nil, fmt.Errorf("%w: no resource pool bound", protocol.ErrContract)
	}
	if net == nil {
		return nil, fmt.Errorf("%w: no network bound", protocol.ErrContract)
	}
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(error)
			if !ok || !(errors.Is(perr, dres.ErrUnresolved) || errors.Is(perr, protocol.ErrContract)) {
				panic(r)
			}
			perr = asContractError(perr)
			e.logger.Errorw("Evaluation aborted", "error", perr)
			stats, err = nil, perr
		}
	}()
	if e.batching {
		if _, ok := net.(Flusher); !ok {
			net = NewBatchingNetwork(net)
		}
	}
	stats = &Stats{}
	batch := protocol.NewCollection(e.batchSize)
	for producer.HasNext() {
		batch.Reset()
		producer.Next(batch)
		size := batch.Len()
		if size == 0 {
			return nil, fmt.Errorf("%w: producer has protocols left but handed out none", protocol.ErrContract)
		}
		if err := e.sync.BeforeBatch(pool, net, size); err != nil {
			return nil, fmt.Errorf("before batch %d: %w", stats.Batches, err)
		}
		rounds, err := e.strategy.ProcessBatch(batch.Protocols(), pool, net)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", stats.Batches, asContractError(err))
		}
		if err := e.sync.FinishedBatch(size, pool, net); err != nil {
			return nil, fmt.Errorf("after batch %d: %w", stats.Batches, err)
		}
		e.logger.Debugw("Batch done", "batch", stats.Batches, "protocols", size, "rounds", rounds)
		stats.Batches++
		stats.Protocols += size
		stats.Rounds += rounds
		if size > stats.MaxInFlight {
			stats.MaxInFlight = size
		}
	}
	batch.Reset()
	if err := e.sync.FinishedEval(pool, net); err != nil {
		return nil, fmt.Errorf("finishing evaluation: %w", err)
	}
	if err := endOfRound(net); err != nil {
		return nil, err
	}
	e.logger.Debugw("Evaluation done", "batches", stats.Batches, "protocols", stats.Protocols, "rounds", stats.Rounds)
	return stats, nil
}

// asContractError marks reads of unresolved results as contract violations.
func asContractError(err error) error {
	if errors.Is(err, dres.ErrUnresolved) && !errors.Is(err, protocol.ErrContract) {
		return fmt.Errorf("%w: %w", protocol.ErrContract, err)
	}
	return err
}
