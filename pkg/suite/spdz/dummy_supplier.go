//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package spdz

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/carbynestack/lockstep/pkg/drbg"
	"github.com/carbynestack/lockstep/pkg/numeric"

	"github.com/gammazero/workerpool"
)

const (
	macKeyStream uint64 = iota
	tripleStream
	maskStream
)

func streamID(kind uint64, party int, index uint64) uint64 {
	return kind<<56 | uint64(party)<<40 | index
}

// DummySupplier derives all preprocessed material from a seed shared by all parties. Every party computes the
// sharings of every item and keeps its own share. It is insecure and meant for testing and demos only.
type DummySupplier struct {
	field   *numeric.Field
	seed    [drbg.SeedSize]byte
	myID    int
	parties int
	keys    []*big.Int
	key     *big.Int
	workers *workerpool.WorkerPool

	mu         sync.Mutex
	triples    map[uint64]*Triple
	nextTriple uint64
	tripleEnd  uint64
	masks      []map[uint64]*InputMask
	nextMask   []uint64
	maskEnd    []uint64
}

// NewDummySupplier returns a supplier for the given party precomputing material with the given number of workers.
func NewDummySupplier(field *numeric.Field, seed [drbg.SeedSize]byte, myID, parties, workers int) (*DummySupplier, error) {
	if myID < 0 || myID >= parties {
		return nil, fmt.Errorf("party id %d out of range [0, %d)", myID, parties)
	}
	if workers < 1 {
		workers = 1
	}
	s := &DummySupplier{
		field:    field,
		seed:     seed,
		myID:     myID,
		parties:  parties,
		keys:     make([]*big.Int, parties),
		key:      new(big.Int),
		workers:  workerpool.New(workers),
		triples:  map[uint64]*Triple{},
		masks:    make([]map[uint64]*InputMask, parties),
		nextMask: make([]uint64, parties),
		maskEnd:  make([]uint64, parties),
	}
	d, err := drbg.NewStream(seed, streamID(macKeyStream, 0, 0))
	if err != nil {
		return nil, err
	}
	for j := range s.keys {
		s.keys[j] = field.Random(d)
		s.key = field.Add(s.key, s.keys[j])
	}
	for p := range s.masks {
		s.masks[p] = map[uint64]*InputMask{}
	}
	return s, nil
}

// MacKeyShare returns this party's share of the MAC key.
func (s *DummySupplier) MacKeyShare() *big.Int {
	return s.keys[s.myID]
}

// share draws the shares of v for all parties from d and returns the one of this party.
func (s *DummySupplier) share(d *drbg.Drbg, v *big.Int) *SInt {
	f := s.field
	mine := &SInt{}
	share, mac := new(big.Int), new(big.Int)
	for j := 0; j < s.parties-1; j++ {
		x, m := f.Random(d), f.Random(d)
		if j == s.myID {
			mine.Share, mine.Mac = x, m
		}
		share, mac = f.Add(share, x), f.Add(mac, m)
	}
	if s.myID == s.parties-1 {
		mine.Share = f.Sub(v, share)
		mine.Mac = f.Sub(f.Mul(s.key, v), mac)
	}
	return mine
}

func (s *DummySupplier) triple(index uint64) (*Triple, error) {
	d, err := drbg.NewStream(s.seed, streamID(tripleStream, 0, index))
	if err != nil {
		return nil, err
	}
	a, b := s.field.Random(d), s.field.Random(d)
	return &Triple{
		A: s.share(d, a),
		B: s.share(d, b),
		C: s.share(d, s.field.Mul(a, b)),
	}, nil
}

func (s *DummySupplier) inputMask(party int, index uint64) (*InputMask, error) {
	d, err := drbg.NewStream(s.seed, streamID(maskStream, party, index))
	if err != nil {
		return nil, err
	}
	r := s.field.Random(d)
	m := &InputMask{Mask: s.share(d, r)}
	if party == s.myID {
		m.Value = r
	}
	return m, nil
}

// NextTriple returns the next triple, computing it if it was not prefetched.
func (s *DummySupplier) NextTriple() (*Triple, error) {
	s.mu.Lock()
	index := s.nextTriple
	s.nextTriple++
	t, ok := s.triples[index]
	delete(s.triples, index)
	s.mu.Unlock()
	if ok {
		return t, nil
	}
	return s.triple(index)
}

// NextInputMask returns the next input mask of party, computing it if it was not prefetched.
func (s *DummySupplier) NextInputMask(party int) (*InputMask, error) {
	if party < 0 || party >= s.parties {
		return nil, fmt.Errorf("party id %d out of range [0, %d)", party, s.parties)
	}
	s.mu.Lock()
	index := s.nextMask[party]
	s.nextMask[party]++
	m, ok := s.masks[party][index]
	delete(s.masks[party], index)
	s.mu.Unlock()
	if ok {
		return m, nil
	}
	return s.inputMask(party, index)
}

// Prefetch computes n triples and n input masks per party ahead of the items consumed so far. The work is spread
// over the worker pool, Prefetch returns when it is done.
func (s *DummySupplier) Prefetch(n int) error {
	var (
		wg     sync.WaitGroup
		errMu  sync.Mutex
		result error
	)
	submit := func(job func() error) {
		wg.Add(1)
		s.workers.Submit(func() {
			defer wg.Done()
			if err := job(); err != nil {
				errMu.Lock()
				result = err
				errMu.Unlock()
			}
		})
	}

	s.mu.Lock()
	start, end := max(s.tripleEnd, s.nextTriple), s.nextTriple+uint64(n)
	if end > s.tripleEnd {
		s.tripleEnd = end
	}
	for index := start; index < end; index++ {
		index := index
		submit(func() error {
			t, err := s.triple(index)
			if err != nil {
				return err
			}
			s.mu.Lock()
			if index >= s.nextTriple {
				s.triples[index] = t
			}
			s.mu.Unlock()
			return nil
		})
	}
	for p := 0; p < s.parties; p++ {
		start, end := max(s.maskEnd[p], s.nextMask[p]), s.nextMask[p]+uint64(n)
		if end > s.maskEnd[p] {
			s.maskEnd[p] = end
		}
		for index := start; index < end; index++ {
			p, index := p, index
			submit(func() error {
				m, err := s.inputMask(p, index)
				if err != nil {
					return err
				}
				s.mu.Lock()
				if index >= s.nextMask[p] {
					s.masks[p][index] = m
				}
				s.mu.Unlock()
				return nil
			})
		}
	}
	s.mu.Unlock()
	wg.Wait()
	return result
}

// Close stops the worker pool.
func (s *DummySupplier) Close() error {
	s.workers.StopWait()
	return nil
}
