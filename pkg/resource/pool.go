// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
package resource

import (
	"errors"
	"fmt"

	"github.com/carbynestack/lockstep/pkg/drbg"

	"go.uber.org/zap"
)

// Pool is the per party context handed to every native protocol and round synchronization hook.
// A pool belongs to exactly one evaluation at a time and is not safe for concurrent use.
// Protocol suites embed BasePool into their own pool type to add suite specific resources.
type Pool interface {
	// MyID returns the zero based id of this party.
	MyID() int
	// NoOfParties returns the number of parties taking part in the computation.
	NoOfParties() int
	// Random returns the randomness source of this party.
	Random() *drbg.Drbg
	// Logger returns the logger of this party.
	Logger() *zap.SugaredLogger
}

// BasePool holds the party metadata shared by all suites.
type BasePool struct {
	myID    int
	parties int
	random  *drbg.Drbg
	logger  *zap.SugaredLogger
}

// NewBasePool returns a pool for party myID out of parties.
func NewBasePool(myID, parties int, random *drbg.Drbg, logger *zap.SugaredLogger) (*BasePool, error) {
	if parties < 1 {
		return nil, errors.New("at least one party is required")
	}
	if myID < 0 || myID >= parties {
		return nil, fmt.Errorf("party id %d out of range [0, %d)", myID, parties)
	}
	if random == nil {
		var err error
		random, err = drbg.NewRandom()
		if err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &BasePool{
		myID:    myID,
		parties: parties,
		random:  random,
		logger:  logger.With("party", myID),
	}, nil
}

// MyID returns the id of this party.
func (p *BasePool) MyID() int {
	return p.myID
}

// NoOfParties returns the number of parties.
func (p *BasePool) NoOfParties() int {
	return p.parties
}

// Random returns the randomness source.
func (p *BasePool) Random() *drbg.Drbg {
	return p.random
}

// Logger returns the party logger.
func (p *BasePool) Logger() *zap.SugaredLogger {
	return p.logger
}
