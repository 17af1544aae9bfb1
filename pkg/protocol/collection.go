// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
package protocol

import "fmt"

// Collection is a bounded batch of native protocols pulled from a producer tree.
type Collection struct {
	protocols []NativeProtocol
	capacity  int
}

// NewCollection returns an empty batch holding at most capacity protocols. Capacity must be positive.
func NewCollection(capacity int) *Collection {
	if capacity < 1 {
		panic(fmt.Errorf("%w: batch capacity must be positive, got %d", ErrContract, capacity))
	}
	return &Collection{
		protocols: make([]NativeProtocol, 0, capacity),
		capacity:  capacity,
	}
}

// Add appends a protocol. Adding to a full batch is a programming error.
func (c *Collection) Add(p NativeProtocol) {
	if c.Full() {
		panic(fmt.Errorf("%w: batch of capacity %d is full", ErrContract, c.capacity))
	}
	c.protocols = append(c.protocols, p)
}

// Full reports whether no more protocols fit.
func (c *Collection) Full() bool {
	return len(c.protocols) >= c.capacity
}

// Len returns the number of protocols in the batch.
func (c *Collection) Len() int {
	return len(c.protocols)
}

// Capacity returns the batch bound.
func (c *Collection) Capacity() int {
	return c.capacity
}

// Protocols returns the protocols in the order they were pulled.
func (c *Collection) Protocols() []NativeProtocol {
	return c.protocols
}

// Reset empties the batch while keeping its capacity.
func (c *Collection) Reset() {
	for i := range c.protocols {
		c.protocols[i] = nil
	}
	c.protocols = c.protocols[:0]
}
