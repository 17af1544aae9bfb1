// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0

// Package network defines the collaborator that moves opaque byte messages between parties.
// Party ids are zero based. Messages between a pair of parties are delivered in order, there is no ordering guarantee
// across pairs. Sending to oneself is allowed.
package network

import (
	"errors"
	"fmt"
)

// ErrCommunication is wrapped by every transport failure, e.g. an unreachable peer, a timeout or a malformed frame.
var ErrCommunication = errors.New("communication failure")

// Network is the blocking message transport used by native protocols.
type Network interface {
	// Send queues data for the given party.
	Send(to int, data []byte) error
	// Receive blocks until the next message from the given party arrives.
	Receive(from int) ([]byte, error)
	// SendToAll sends data to every party including the sender.
	SendToAll(data []byte) error
	// ReceiveFromAll receives one message from every party. The result is indexed by party id.
	ReceiveFromAll() ([][]byte, error)
	// NoOfParties returns the number of parties.
	NoOfParties() int
}

// PointToPoint is the subset of Network a transport has to implement, Broadcast derives the rest.
type PointToPoint interface {
	Send(to int, data []byte) error
	Receive(from int) ([]byte, error)
	NoOfParties() int
}

// Broadcast implements SendToAll and ReceiveFromAll on top of point to point messaging.
type Broadcast struct {
	PointToPoint
}

// SendToAll sends data to every party in order of the party id.
func (b Broadcast) SendToAll(data []byte) error {
	for i := 0; i < b.NoOfParties(); i++ {
		if err := b.Send(i, data); err != nil {
			return err
		}
	}
	return nil
}

// ReceiveFromAll receives from every party in order of the party id.
func (b Broadcast) ReceiveFromAll() ([][]byte, error) {
	res := make([][]byte, b.NoOfParties())
	for i := range res {
		data, err := b.Receive(i)
		if err != nil {
			return nil, err
		}
		res[i] = data
	}
	return res, nil
}

// CommunicationError wraps err into ErrCommunication unless it already is one.
func CommunicationError(party int, err error) error {
	if err == nil || errors.Is(err, ErrCommunication) {
		return err
	}
	return fmt.Errorf("%w with party %d: %s", ErrCommunication, party, err)
}

// CheckParty validates a party id.
func CheckParty(party, parties int) error {
	if party < 0 || party >= parties {
		return fmt.Errorf("%w: party id %d out of range [0, %d)", ErrCommunication, party, parties)
	}
	return nil
}
