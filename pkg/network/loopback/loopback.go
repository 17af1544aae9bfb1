//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//

// Package loopback connects parties living in the same process through a message bus.
package loopback

import (
	"fmt"
	"time"

	"github.com/carbynestack/lockstep/pkg/network"

	"github.com/hashicorp/go-multierror"
	mb "github.com/vardius/message-bus"
	"go.uber.org/atomic"
)

const defaultQueueSize = 10000

// Config holds the settings of a set of loopback networks.
type Config struct {
	// Timeout bounds how long Receive waits for a message. Zero waits forever.
	Timeout time.Duration
	// QueueSize is the number of messages the bus buffers per receiver.
	QueueSize int
}

// Option configures the loopback networks.
type Option func(*Config)

// WithTimeout sets the receive timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithQueueSize sets the bus buffer size.
func WithQueueSize(n int) Option {
	return func(c *Config) {
		c.QueueSize = n
	}
}

type envelope struct {
	from int
	data []byte
}

// New returns one network per party, all connected through a shared bus.
func New(parties int, opts ...Option) ([]*Network, error) {
	if parties < 1 {
		return nil, fmt.Errorf("number of parties must be positive, got %d", parties)
	}
	conf := &Config{QueueSize: defaultQueueSize}
	for _, opt := range opts {
		opt(conf)
	}
	bus := mb.New(conf.QueueSize)
	nets := make([]*Network, parties)
	for i := range nets {
		n := &Network{
			me:      i,
			parties: parties,
			conf:    conf,
			bus:     bus,
			inboxes: make([]*network.Inbox, parties),
		}
		for j := range n.inboxes {
			n.inboxes[j] = network.NewInbox()
		}
		n.handler = n.deliver
		if err := bus.Subscribe(topic(i), n.handler); err != nil {
			return nil, err
		}
		n.Broadcast = network.Broadcast{PointToPoint: n}
		nets[i] = n
	}
	return nets, nil
}

func topic(party int) string {
	return fmt.Sprintf("party-%d", party)
}

// Network is the view of one party on the loopback bus.
type Network struct {
	network.Broadcast
	me      int
	parties int
	conf    *Config
	bus     mb.MessageBus
	handler func(e interface{})
	inboxes []*network.Inbox
	closed  atomic.Bool

	sentMessages atomic.Int64
	sentBytes    atomic.Int64
}

// NoOfParties returns the number of parties on the bus.
func (n *Network) NoOfParties() int {
	return n.parties
}

// MyID returns the party id of this network.
func (n *Network) MyID() int {
	return n.me
}

// Send publishes a copy of data on the topic of the receiving party.
func (n *Network) Send(to int, data []byte) error {
	if err := network.CheckParty(to, n.parties); err != nil {
		return err
	}
	if n.closed.Load() {
		return fmt.Errorf("%w: network of party %d is closed", network.ErrCommunication, n.me)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	n.sentMessages.Inc()
	n.sentBytes.Add(int64(len(data)))
	n.bus.Publish(topic(to), envelope{from: n.me, data: buf})
	return nil
}

// Receive blocks until a message from the given party arrives or the timeout elapses.
func (n *Network) Receive(from int) ([]byte, error) {
	if err := network.CheckParty(from, n.parties); err != nil {
		return nil, err
	}
	data, err := n.inboxes[from].Pop(n.conf.Timeout)
	if err != nil {
		return nil, fmt.Errorf("party %d receiving from party %d: %w", n.me, from, err)
	}
	return data, nil
}

func (n *Network) deliver(e interface{}) {
	env := e.(envelope)
	n.inboxes[env.from].Push(env.data)
}

// SentMessages returns the number of messages sent so far.
func (n *Network) SentMessages() int64 {
	return n.sentMessages.Load()
}

// SentBytes returns the number of payload bytes sent so far.
func (n *Network) SentBytes() int64 {
	return n.sentBytes.Load()
}

// Close detaches the party from the bus. Messages still in flight are dropped, pending receives fail with
// network.ErrCommunication once the already delivered messages are read.
func (n *Network) Close() error {
	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := n.bus.Unsubscribe(topic(n.me), n.handler)
	for _, inbox := range n.inboxes {
		inbox.Fail(fmt.Errorf("%w: network of party %d is closed", network.ErrCommunication, n.me))
	}
	return err
}

// CloseAll closes all networks and collects the errors.
func CloseAll(nets []*Network) error {
	var result error
	for _, n := range nets {
		if err := n.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}
