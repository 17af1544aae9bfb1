//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package evaluator

import (
	"github.com/carbynestack/lockstep/pkg/network"
	"github.com/carbynestack/lockstep/pkg/protocol"
	"github.com/carbynestack/lockstep/pkg/resource"
)

// Strategy evaluates the protocols of one batch until all of them are done.
type Strategy interface {
	// ProcessBatch returns the number of rounds it took to finish the batch.
	ProcessBatch(batch []protocol.NativeProtocol, pool resource.Pool, net network.Network) (int, error)
}

// Flusher is implemented by networks that buffer messages until the end of a round.
type Flusher interface {
	Flush() error
}

func endOfRound(net network.Network) error {
	if f, ok := net.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// BatchedStrategy evaluates all protocols of a batch in lock step: round r of every protocol that is not done yet is
// evaluated before round r+1 of any of them. Within a round the protocols are evaluated in batch order.
type BatchedStrategy struct{}

// ProcessBatch runs rounds until every protocol reports Done.
func (BatchedStrategy) ProcessBatch(batch []protocol.NativeProtocol, pool resource.Pool, net network.Network) (int, error) {
	active := make([]protocol.NativeProtocol, len(batch))
	copy(active, batch)
	round := 0
	for ; len(active) > 0; round++ {
		remaining := active[:0]
		for _, p := range active {
			status, err := p.Evaluate(round, pool, net)
			if err != nil {
				return round + 1, err
			}
			if status == protocol.HasMoreRounds {
				remaining = append(remaining, p)
			}
		}
		for i := len(remaining); i < len(active); i++ {
			active[i] = nil
		}
		active = remaining
		if err := endOfRound(net); err != nil {
			return round + 1, err
		}
	}
	return round, nil
}

// SequentialStrategy evaluates the protocols of a batch one after the other, each until it is done. It needs more
// rounds than BatchedStrategy but keeps a single protocol in flight.
type SequentialStrategy struct{}

// ProcessBatch runs every protocol to completion in batch order.
func (SequentialStrategy) ProcessBatch(batch []protocol.NativeProtocol, pool resource.Pool, net network.Network) (int, error) {
	rounds := 0
	for _, p := range batch {
		for round := 0; ; round++ {
			rounds++
			status, err := p.Evaluate(round, pool, net)
			if err != nil {
				return rounds, err
			}
			if err := endOfRound(net); err != nil {
				return rounds, err
			}
			if status == protocol.Done {
				break
			}
		}
	}
	return rounds, nil
}
