//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//

// Package tcp connects parties through a full mesh of TCP connections. Party i dials every party with a lower id and
// accepts connections from every party with a higher id. Each message is sent as one length prefixed frame.
package tcp

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/carbynestack/lockstep/pkg/network"

	"github.com/hashicorp/go-multierror"
	"github.com/sethvargo/go-retry"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Config holds the addresses of all parties and the connection settings.
type Config struct {
	// MyID is the id of the local party, an index into Addresses.
	MyID int
	// Addresses are the host:port pairs every party listens on.
	Addresses []string
	// RetryInterval is the pause between two connection attempts.
	RetryInterval time.Duration
	// ConnectTimeout bounds the time to establish the whole mesh.
	ConnectTimeout time.Duration
	// ReceiveTimeout bounds how long Receive waits for a message. Zero waits forever.
	ReceiveTimeout time.Duration
}

func (c *Config) validate() error {
	if len(c.Addresses) < 1 {
		return errors.New("at least one party address is required")
	}
	if c.MyID < 0 || c.MyID >= len(c.Addresses) {
		return fmt.Errorf("party id %d out of range [0, %d)", c.MyID, len(c.Addresses))
	}
	if c.RetryInterval <= 0 {
		return fmt.Errorf("retry interval must be positive, got %s", c.RetryInterval)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive, got %s", c.ConnectTimeout)
	}
	return nil
}

type peer struct {
	conn    net.Conn
	writeMu sync.Mutex
}

// Network is the view of one party on the mesh.
type Network struct {
	network.Broadcast
	conf    *Config
	logger  *zap.SugaredLogger
	peers   []*peer
	inboxes []*network.Inbox
	wg      sync.WaitGroup
	closed  atomic.Bool

	sentBytes     atomic.Int64
	receivedBytes atomic.Int64
}

// Connect establishes connections to all other parties. It blocks until the mesh is complete, the connect timeout
// elapses or ctx is cancelled.
func Connect(ctx context.Context, conf *Config, logger *zap.SugaredLogger) (*Network, error) {
	if err := conf.validate(); err != nil {
		return nil, err
	}
	parties := len(conf.Addresses)
	n := &Network{
		conf:    conf,
		logger:  logger.With("party", conf.MyID),
		peers:   make([]*peer, parties),
		inboxes: make([]*network.Inbox, parties),
	}
	for i := range n.inboxes {
		n.inboxes[i] = network.NewInbox()
	}
	n.Broadcast = network.Broadcast{PointToPoint: n}

	ctx, cancel := context.WithTimeout(ctx, conf.ConnectTimeout)
	defer cancel()

	lis, err := net.Listen("tcp", conf.Addresses[conf.MyID])
	if err != nil {
		return nil, network.CommunicationError(conf.MyID, err)
	}
	defer lis.Close()
	go func() {
		<-ctx.Done()
		lis.Close()
	}()

	var (
		mu     sync.Mutex
		result error
		wg     sync.WaitGroup
	)
	fail := func(err error) {
		mu.Lock()
		result = multierror.Append(result, err)
		mu.Unlock()
		cancel()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := n.accept(ctx, lis, parties-conf.MyID-1); err != nil {
			fail(err)
		}
	}()
	for j := 0; j < conf.MyID; j++ {
		wg.Add(1)
		go func(j int) {
			defer wg.Done()
			conn, err := n.dial(ctx, j)
			if err != nil {
				fail(network.CommunicationError(j, err))
				return
			}
			mu.Lock()
			n.peers[j] = &peer{conn: conn}
			mu.Unlock()
		}(j)
	}
	wg.Wait()
	if result != nil {
		n.closeConns()
		return nil, result
	}
	for j, p := range n.peers {
		if p != nil {
			n.wg.Add(1)
			go n.read(j, p.conn)
		}
	}
	n.logger.Debugw("Mesh established", "parties", parties)
	return n, nil
}

// dial connects to a party with a lower id, retrying until ctx is done, and announces the local party id.
func (n *Network) dial(ctx context.Context, to int) (net.Conn, error) {
	backoff, err := retry.NewConstant(n.conf.RetryInterval)
	if err != nil {
		return nil, err
	}
	var conn net.Conn
	attempts := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		var d net.Dialer
		c, err := d.DialContext(ctx, "tcp", n.conf.Addresses[to])
		if err != nil {
			if attempts%10 == 0 {
				n.logger.Debugw("Connection attempt failed", "to", to, "attempts", attempts, "error", err)
			}
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.SetKeepAlive(true); err != nil {
			conn.Close()
			return nil, err
		}
	}
	hello := make([]byte, network.SizeLength)
	binary.LittleEndian.PutUint32(hello, uint32(n.conf.MyID))
	if _, err := conn.Write(hello); err != nil {
		conn.Close()
		return nil, err
	}
	n.logger.Debugw("Dialer done", "to", to, "attempts", attempts)
	return conn, nil
}

// accept waits for the given number of parties with higher ids to connect. The handshake of a connection must
// arrive before ctx is done.
func (n *Network) accept(ctx context.Context, lis net.Listener, expected int) error {
	deadline, _ := ctx.Deadline()
	for accepted := 0; accepted < expected; {
		conn, err := lis.Accept()
		if err != nil {
			return network.CommunicationError(n.conf.MyID, fmt.Errorf("accepting connections: %w", err))
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			conn.Close()
			return network.CommunicationError(n.conf.MyID, err)
		}
		hello := make([]byte, network.SizeLength)
		if _, err := io.ReadFull(conn, hello); err != nil {
			conn.Close()
			return network.CommunicationError(n.conf.MyID, fmt.Errorf("reading handshake: %w", err))
		}
		if err := conn.SetReadDeadline(time.Time{}); err != nil {
			conn.Close()
			return network.CommunicationError(n.conf.MyID, err)
		}
		from := int(binary.LittleEndian.Uint32(hello))
		if from <= n.conf.MyID || from >= len(n.peers) {
			conn.Close()
			return fmt.Errorf("%w: unexpected handshake from party %d", network.ErrCommunication, from)
		}
		if n.peers[from] != nil {
			conn.Close()
			return fmt.Errorf("%w: duplicate connection from party %d", network.ErrCommunication, from)
		}
		n.peers[from] = &peer{conn: conn}
		accepted++
		n.logger.Debugw("Accepted connection", "from", from)
	}
	return nil
}

func (n *Network) read(from int, conn net.Conn) {
	defer n.wg.Done()
	for {
		data, err := network.ReadFrame(conn)
		if err != nil {
			if !n.closed.Load() {
				n.logger.Debugw("Connection lost", "from", from, "error", err)
			}
			n.inboxes[from].Fail(network.CommunicationError(from, err))
			return
		}
		n.receivedBytes.Add(int64(len(data)))
		n.inboxes[from].Push(data)
	}
}

// NoOfParties returns the number of parties in the mesh.
func (n *Network) NoOfParties() int {
	return len(n.peers)
}

// MyID returns the id of the local party.
func (n *Network) MyID() int {
	return n.conf.MyID
}

// Send writes data as one frame to the given party. Messages to the local party are queued directly.
func (n *Network) Send(to int, data []byte) error {
	if err := network.CheckParty(to, len(n.peers)); err != nil {
		return err
	}
	if n.closed.Load() {
		return fmt.Errorf("%w: network of party %d is closed", network.ErrCommunication, n.conf.MyID)
	}
	if to == n.conf.MyID {
		buf := make([]byte, len(data))
		copy(buf, data)
		n.inboxes[to].Push(buf)
		return nil
	}
	p := n.peers[to]
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := network.WriteFrame(p.conn, data); err != nil {
		return network.CommunicationError(to, err)
	}
	n.sentBytes.Add(int64(len(data)))
	return nil
}

// Receive blocks until the next frame from the given party arrives.
func (n *Network) Receive(from int) ([]byte, error) {
	if err := network.CheckParty(from, len(n.peers)); err != nil {
		return nil, err
	}
	data, err := n.inboxes[from].Pop(n.conf.ReceiveTimeout)
	if err != nil {
		return nil, network.CommunicationError(from, err)
	}
	return data, nil
}

// SentBytes returns the number of payload bytes written to peers.
func (n *Network) SentBytes() int64 {
	return n.sentBytes.Load()
}

// ReceivedBytes returns the number of payload bytes read from peers.
func (n *Network) ReceivedBytes() int64 {
	return n.receivedBytes.Load()
}

// Close closes all connections and waits for the receiving goroutines to stop.
func (n *Network) Close() error {
	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := n.closeConns()
	n.wg.Wait()
	return err
}

func (n *Network) closeConns() error {
	var result error
	for j, p := range n.peers {
		if p == nil {
			continue
		}
		if err := p.conn.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing connection to party %d: %w", j, err))
		}
	}
	return result
}
