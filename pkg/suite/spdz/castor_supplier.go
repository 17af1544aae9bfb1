//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package spdz

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/carbynestack/lockstep/pkg/castor"
	"github.com/carbynestack/lockstep/pkg/numeric"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CastorSupplier downloads preprocessed material from a Castor service. All parties derive the same reservation ids
// from the shared game id, so they consume the same tuples.
type CastorSupplier struct {
	client    castor.AbstractClient
	field     *numeric.Field
	keyShare  *big.Int
	myID      int
	parties   int
	gameID    uuid.UUID
	chunkSize int
	logger    *zap.SugaredLogger

	requests int
	triples  []*Triple
	masks    [][]*InputMask
}

// NewCastorSupplier returns a supplier fetching tuples in chunks of at least chunkSize.
func NewCastorSupplier(client castor.AbstractClient, field *numeric.Field, keyShare *big.Int, myID, parties int, gameID uuid.UUID, chunkSize int, logger *zap.SugaredLogger) (*CastorSupplier, error) {
	if client == nil {
		return nil, errors.New("castor client must not be nil")
	}
	if keyShare == nil {
		return nil, errors.New("mac key share must not be nil")
	}
	if chunkSize < 1 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	return &CastorSupplier{
		client:    client,
		field:     field,
		keyShare:  field.Reduce(keyShare),
		myID:      myID,
		parties:   parties,
		gameID:    gameID,
		chunkSize: chunkSize,
		logger:    logger,
		masks:     make([][]*InputMask, parties),
	}, nil
}

// MacKeyShare returns the configured MAC key share.
func (s *CastorSupplier) MacKeyShare() *big.Int {
	return s.keyShare
}

// reservationID derives the id of the next request. Requests are issued in the same order by all parties.
func (s *CastorSupplier) reservationID() uuid.UUID {
	id := uuid.NewSHA1(s.gameID, []byte(fmt.Sprintf("request-%d", s.requests)))
	s.requests++
	return id
}

func (s *CastorSupplier) decode(share castor.Share) (*SInt, error) {
	value, mac, err := share.Decode()
	if err != nil {
		return nil, err
	}
	v, err := s.field.Decode(value)
	if err != nil {
		return nil, fmt.Errorf("invalid share value: %w", err)
	}
	m, err := s.field.Decode(mac)
	if err != nil {
		return nil, fmt.Errorf("invalid share mac: %w", err)
	}
	return &SInt{Share: v, Mac: m}, nil
}

func (s *CastorSupplier) fetchTriples(n int) error {
	n = max(n, s.chunkSize)
	list, err := s.client.GetTuples(n, castor.MultiplicationTripleGfp, s.reservationID())
	if err != nil {
		return err
	}
	for _, t := range list.Tuples {
		var abc [3]*SInt
		for i := range abc {
			if abc[i], err = s.decode(t.Shares[i]); err != nil {
				return err
			}
		}
		s.triples = append(s.triples, &Triple{A: abc[0], B: abc[1], C: abc[2]})
	}
	s.logger.Debugw("Fetched triples", "count", n)
	return nil
}

// fetchMasks downloads input masks of party. The first share of a mask tuple is the sharing of the mask, the value of
// the second share is the mask in the clear and only present in the tuples of the owner.
func (s *CastorSupplier) fetchMasks(party, n int) error {
	n = max(n, s.chunkSize)
	list, err := s.client.GetTuples(n, castor.InputMaskGfp, s.reservationID())
	if err != nil {
		return err
	}
	for i, t := range list.Tuples {
		mask, err := s.decode(t.Shares[0])
		if err != nil {
			return err
		}
		m := &InputMask{Mask: mask}
		if party == s.myID {
			value, _, err := t.Shares[1].Decode()
			if err != nil {
				return err
			}
			if m.Value, err = s.field.Decode(value); err != nil {
				return fmt.Errorf("input mask %d lacks the clear value: %w", i, err)
			}
		}
		s.masks[party] = append(s.masks[party], m)
	}
	s.logger.Debugw("Fetched input masks", "party", party, "count", n)
	return nil
}

// NextTriple returns the next downloaded triple, downloading a chunk if none is left.
func (s *CastorSupplier) NextTriple() (*Triple, error) {
	if len(s.triples) == 0 {
		if err := s.fetchTriples(s.chunkSize); err != nil {
			return nil, err
		}
	}
	t := s.triples[0]
	s.triples = s.triples[1:]
	return t, nil
}

// NextInputMask returns the next downloaded input mask of party, downloading a chunk if none is left.
func (s *CastorSupplier) NextInputMask(party int) (*InputMask, error) {
	if party < 0 || party >= s.parties {
		return nil, fmt.Errorf("party id %d out of range [0, %d)", party, s.parties)
	}
	if len(s.masks[party]) == 0 {
		if err := s.fetchMasks(party, s.chunkSize); err != nil {
			return nil, err
		}
	}
	m := s.masks[party][0]
	s.masks[party] = s.masks[party][1:]
	return m, nil
}

// Prefetch downloads triples until at least n are buffered. Input masks are fetched on demand since their owners are
// not known ahead.
func (s *CastorSupplier) Prefetch(n int) error {
	if missing := n - len(s.triples); missing > 0 {
		return s.fetchTriples(missing)
	}
	return nil
}

// Close does nothing.
func (s *CastorSupplier) Close() error {
	return nil
}
