//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package evaluator

import (
	"github.com/carbynestack/lockstep/pkg/network"

	"github.com/ef-ds/deque"
)

// BatchingNetwork buffers the messages sent during a round and sends them as one frame per party when the round
// ends. Protocols evaluated over it must only receive in a round what was sent in an earlier round.
type BatchingNetwork struct {
	network.Broadcast
	net      network.Network
	outgoing [][][]byte
	incoming []deque.Deque
}

// NewBatchingNetwork decorates net.
func NewBatchingNetwork(net network.Network) *BatchingNetwork {
	n := &BatchingNetwork{
		net:      net,
		outgoing: make([][][]byte, net.NoOfParties()),
		incoming: make([]deque.Deque, net.NoOfParties()),
	}
	n.Broadcast = network.Broadcast{PointToPoint: n}
	return n
}

// NoOfParties returns the number of parties of the decorated network.
func (n *BatchingNetwork) NoOfParties() int {
	return n.net.NoOfParties()
}

// Send buffers data until the next Flush.
func (n *BatchingNetwork) Send(to int, data []byte) error {
	if err := network.CheckParty(to, n.NoOfParties()); err != nil {
		return err
	}
	n.outgoing[to] = append(n.outgoing[to], append([]byte(nil), data...))
	return nil
}

// Receive returns the next buffered message from the given party, reading a new frame when the buffer is empty.
func (n *BatchingNetwork) Receive(from int) ([]byte, error) {
	if err := network.CheckParty(from, n.NoOfParties()); err != nil {
		return nil, err
	}
	queue := &n.incoming[from]
	for queue.Len() == 0 {
		frame, err := n.net.Receive(from)
		if err != nil {
			return nil, err
		}
		messages, err := network.Unpack(frame)
		if err != nil {
			return nil, network.CommunicationError(from, err)
		}
		for _, m := range messages {
			queue.PushBack(m)
		}
	}
	v, _ := queue.PopFront()
	return v.([]byte), nil
}

// Flush sends one frame to every party messages were buffered for.
func (n *BatchingNetwork) Flush() error {
	for to, messages := range n.outgoing {
		if len(messages) == 0 {
			continue
		}
		frame, err := network.Pack(messages)
		if err != nil {
			return err
		}
		if err := n.net.Send(to, frame); err != nil {
			return err
		}
		for i := range messages {
			messages[i] = nil
		}
		n.outgoing[to] = messages[:0]
	}
	return nil
}

// Pending returns the number of buffered outgoing messages.
func (n *BatchingNetwork) Pending() int {
	pending := 0
	for _, messages := range n.outgoing {
		pending += len(messages)
	}
	return pending
}
