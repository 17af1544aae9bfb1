// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0

// Package protocol contains the atomic, round based native protocols and the producer tree that hands them out to
// the evaluator.
package protocol

import (
	"fmt"

	"github.com/carbynestack/lockstep/pkg/network"
	"github.com/carbynestack/lockstep/pkg/resource"
)

// Status is the outcome of evaluating a single round of a native protocol.
type Status int

const (
	// HasMoreRounds indicates the protocol expects to be evaluated with the next round number.
	HasMoreRounds Status = iota
	// Done indicates the protocol has finished and its outputs are resolved.
	Done
)

func (s Status) String() string {
	switch s {
	case HasMoreRounds:
		return "HasMoreRounds"
	case Done:
		return "Done"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// NativeProtocol is an atomic operation implemented by a protocol suite.
//
// Evaluate is called with the round numbers 0, 1, 2, ... without gaps until it returns Done. Within a round a protocol
// may read its resolved inputs, send to any subset of parties and receive data sent to it in the same or an earlier
// round. A protocol must set its outputs before it returns Done.
type NativeProtocol interface {
	Evaluate(round int, pool resource.Pool, net network.Network) (Status, error)
}

// EvaluateFunc adapts a function to the NativeProtocol interface.
type EvaluateFunc func(round int, pool resource.Pool, net network.Network) (Status, error)

// Evaluate calls f.
func (f EvaluateFunc) Evaluate(round int, pool resource.Pool, net network.Network) (Status, error) {
	return f(round, pool, net)
}

// Checked decorates a native protocol and verifies it is evaluated with consecutive round numbers starting at 0 and
// never after it reported Done. A violation is a defect of the evaluator and panics.
type Checked struct {
	NativeProtocol
	next int
	done bool
}

// NewChecked wraps p.
func NewChecked(p NativeProtocol) *Checked {
	return &Checked{NativeProtocol: p}
}

// Evaluate checks the round number and evaluates the wrapped protocol.
func (c *Checked) Evaluate(round int, pool resource.Pool, net network.Network) (Status, error) {
	if c.done {
		panic(fmt.Errorf("%w: protocol evaluated in round %d after it was done", ErrContract, round))
	}
	if round != c.next {
		panic(fmt.Errorf("%w: protocol evaluated in round %d, expected round %d", ErrContract, round, c.next))
	}
	c.next++
	st, err := c.NativeProtocol.Evaluate(round, pool, net)
	if st == Done {
		c.done = true
	}
	return st, err
}

// Rounds returns the number of rounds evaluated so far.
func (c *Checked) Rounds() int {
	return c.next
}

// IsDone reports whether the wrapped protocol reported Done.
func (c *Checked) IsDone() bool {
	return c.done
}
