//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package network

import (
	"fmt"
	"sync"
	"time"

	"github.com/ef-ds/deque"
)

// Inbox is an unbounded queue of messages received from one party. Transports push from their receiving goroutines,
// Receive pops.
type Inbox struct {
	mu     sync.Mutex
	queue  deque.Deque
	err    error
	notify chan struct{}
}

// NewInbox returns an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{notify: make(chan struct{}, 1)}
}

// Push appends a message.
func (b *Inbox) Push(data []byte) {
	b.mu.Lock()
	b.queue.PushBack(data)
	b.mu.Unlock()
	b.signal()
}

// Fail marks the inbox as broken. Messages queued before remain readable, afterwards Pop returns err.
func (b *Inbox) Fail(err error) {
	b.mu.Lock()
	if b.err == nil {
		b.err = err
	}
	b.mu.Unlock()
	b.signal()
}

func (b *Inbox) signal() {
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

func (b *Inbox) tryPop() ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.queue.PopFront(); ok {
		return v.([]byte), true, nil
	}
	return nil, false, b.err
}

// Pop blocks until a message is available. A positive timeout bounds the wait.
func (b *Inbox) Pop(timeout time.Duration) ([]byte, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	for {
		data, ok, err := b.tryPop()
		if ok {
			return data, nil
		}
		if err != nil {
			return nil, err
		}
		select {
		case <-b.notify:
		case <-expired:
			return nil, fmt.Errorf("%w: no message within %s", ErrCommunication, timeout)
		}
	}
}

// Len returns the number of queued messages.
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.Len()
}
