//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//

// Package engine runs applications: it builds the producer tree of an application with the builder factory of a
// protocol suite and evaluates it with the suite's round synchronization.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/carbynestack/lockstep/pkg/builder"
	"github.com/carbynestack/lockstep/pkg/evaluator"
	"github.com/carbynestack/lockstep/pkg/network"
	"github.com/carbynestack/lockstep/pkg/numeric"
	"github.com/carbynestack/lockstep/pkg/resource"
	"github.com/carbynestack/lockstep/pkg/suite"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrTimeout is returned when an evaluation does not finish before the context is done.
var ErrTimeout = errors.New("computation timed out")

// Engine evaluates applications of one party with one protocol suite. It is not safe for concurrent use.
type Engine struct {
	suite  suite.ProtocolSuite
	opts   []evaluator.Option
	logger *zap.SugaredLogger
}

// New returns an engine for the given suite. The evaluator options apply to every run, the round synchronization is
// always the suite's.
func New(s suite.ProtocolSuite, logger *zap.SugaredLogger, opts ...evaluator.Option) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{suite: s, opts: opts, logger: logger}
}

// Result is the outcome of a run.
type Result[T any] struct {
	RunID string
	Value T
	Stats *evaluator.Stats
}

// Run builds app, evaluates it and returns its result. If ctx is done before the evaluation finishes, Run returns
// ErrTimeout. The evaluation itself cannot be interrupted within a round, it stops at the next failing network
// operation.
func Run[T any](ctx context.Context, e *Engine, app builder.Computation[T], pool resource.Pool, net network.Network) (*Result[T], error) {
	runID := uuid.New().String()
	logger := e.logger.With("runID", runID)
	opts := append([]evaluator.Option{evaluator.WithLogger(e.logger)}, e.opts...)
	opts = append(opts, evaluator.WithSync(e.suite.RoundSynchronization()))
	ev, err := evaluator.New(opts...)
	if err != nil {
		return nil, err
	}
	ev = ev.Named(runID)

	type outcome struct {
		res *Result[T]
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		tree, out := builder.Build(app, numeric.WithFactory(e.suite.BuilderFactory()))
		stats, err := ev.Eval(tree, pool, net)
		if err != nil {
			done <- outcome{err: err}
			return
		}
		v, err := out.Get()
		if err != nil {
			done <- outcome{err: fmt.Errorf("reading result: %w", err)}
			return
		}
		done <- outcome{res: &Result[T]{RunID: runID, Value: v, Stats: stats}}
	}()

	logger.Debug("Computation started")
	select {
	case o := <-done:
		if o.err != nil {
			logger.Errorw("Computation failed", "error", o.err)
			return nil, o.err
		}
		logger.Infow("Computation finished", "batches", o.res.Stats.Batches, "rounds", o.res.Stats.Rounds)
		return o.res, nil
	case <-ctx.Done():
		logger.Errorw("Computation timed out", "error", ctx.Err())
		return nil, fmt.Errorf("%w: %s", ErrTimeout, ctx.Err())
	}
}
