//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package spdz_test

import (
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/url"

	"github.com/carbynestack/lockstep/pkg/castor"
	"github.com/carbynestack/lockstep/pkg/numeric"
	. "github.com/carbynestack/lockstep/pkg/suite/spdz"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

// reconstruct sums the shares and MAC shares of all parties.
func reconstruct(f *numeric.Field, shares ...*SInt) (value, mac *big.Int) {
	value, mac = new(big.Int), new(big.Int)
	for _, s := range shares {
		value, mac = f.Add(value, s.Share), f.Add(mac, s.Mac)
	}
	return value, mac
}

var _ = Describe("Data suppliers", func() {
	field := testField()

	Context("when using the dummy supplier", func() {
		const parties = 3
		var (
			suppliers []*DummySupplier
			key       *big.Int
		)
		BeforeEach(func() {
			suppliers = make([]*DummySupplier, parties)
			key = new(big.Int)
			for i := range suppliers {
				s, err := NewDummySupplier(field, testSeed, i, parties, 2)
				Expect(err).NotTo(HaveOccurred())
				suppliers[i] = s
				key = field.Add(key, s.MacKeyShare())
			}
		})
		AfterEach(func() {
			for _, s := range suppliers {
				Expect(s.Close()).To(Succeed())
			}
		})
		It("shares valid multiplication triples", func() {
			for k := 0; k < 5; k++ {
				var as, bs, cs []*SInt
				for _, s := range suppliers {
					t, err := s.NextTriple()
					Expect(err).NotTo(HaveOccurred())
					as, bs, cs = append(as, t.A), append(bs, t.B), append(cs, t.C)
				}
				a, macA := reconstruct(field, as...)
				b, _ := reconstruct(field, bs...)
				c, macC := reconstruct(field, cs...)
				Expect(c.Cmp(field.Mul(a, b))).To(Equal(0))
				Expect(macA.Cmp(field.Mul(key, a))).To(Equal(0))
				Expect(macC.Cmp(field.Mul(key, c))).To(Equal(0))
			}
		})
		It("reveals an input mask to its owner only", func() {
			var masks []*SInt
			for i, s := range suppliers {
				m, err := s.NextInputMask(1)
				Expect(err).NotTo(HaveOccurred())
				if i == 1 {
					Expect(m.Value).NotTo(BeNil())
				} else {
					Expect(m.Value).To(BeNil())
				}
				masks = append(masks, m.Mask)
			}
			r, mac := reconstruct(field, masks...)
			owned, err := NewDummySupplier(field, testSeed, 1, parties, 1)
			Expect(err).NotTo(HaveOccurred())
			defer owned.Close()
			m, err := owned.NextInputMask(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Value.Cmp(r)).To(Equal(0))
			Expect(mac.Cmp(field.Mul(key, r))).To(Equal(0))
		})
		It("hands out the same material with and without prefetching", func() {
			other, err := NewDummySupplier(field, testSeed, 0, parties, 4)
			Expect(err).NotTo(HaveOccurred())
			defer other.Close()
			Expect(other.Prefetch(8)).To(Succeed())
			for k := 0; k < 10; k++ {
				want, err := suppliers[0].NextTriple()
				Expect(err).NotTo(HaveOccurred())
				got, err := other.NextTriple()
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(want))
			}
			want, err := suppliers[0].NextInputMask(2)
			Expect(err).NotTo(HaveOccurred())
			got, err := other.NextInputMask(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		})
		It("rejects unknown parties", func() {
			_, err := suppliers[0].NextInputMask(parties)
			Expect(err).To(HaveOccurred())
			_, err = NewDummySupplier(field, testSeed, parties, parties, 1)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("when using the castor supplier", func() {
		var (
			gameID = uuid.MustParse("7f1d9c3e-2d5a-4f39-8c51-6a0e8b2f4d17")
			logger = zap.NewNop().Sugar()
		)
		encode := func(v, mac int64) castor.Share {
			return castor.Share{
				Value: base64.StdEncoding.EncodeToString(field.Encode(big.NewInt(v))),
				Mac:   base64.StdEncoding.EncodeToString(field.Encode(big.NewInt(mac))),
			}
		}
		clientFor := func(tuples ...castor.Tuple) (*castor.Client, *castor.MockedRoundTripper) {
			jsn, err := json.Marshal(castor.TupleList{Tuples: tuples})
			Expect(err).NotTo(HaveOccurred())
			rt := &castor.MockedRoundTripper{ExpectedPath: "/intra-vcp/tuples", ReturnJSON: jsn}
			return &castor.Client{URL: url.URL{Host: "castor:10100", Scheme: "http"}, HTTPClient: &http.Client{Transport: rt}}, rt
		}

		It("downloads triples in chunks", func() {
			triple := castor.Tuple{Shares: []castor.Share{encode(1, 11), encode(2, 12), encode(3, 13)}}
			client, rt := clientFor(triple, triple)
			s, err := NewCastorSupplier(client, field, big.NewInt(7), 0, 2, gameID, 2, logger)
			Expect(err).NotTo(HaveOccurred())
			for k := 0; k < 3; k++ {
				t, err := s.NextTriple()
				Expect(err).NotTo(HaveOccurred())
				Expect(t.C.Share.Int64()).To(Equal(int64(3)))
				Expect(t.A.Mac.Int64()).To(Equal(int64(11)))
			}
			Expect(rt.Requests).To(HaveLen(2))
			Expect(rt.Requests[0].URL.Query().Get("tupletype")).To(Equal(castor.MultiplicationTripleGfp.Name))
			Expect(rt.Requests[0].URL.Query().Get("count")).To(Equal("2"))
			Expect(rt.Requests[0].URL.Query().Get("reservationId")).NotTo(Equal(rt.Requests[1].URL.Query().Get("reservationId")))
			Expect(s.MacKeyShare().Int64()).To(Equal(int64(7)))
		})
		It("derives the same reservation ids for all parties", func() {
			triple := castor.Tuple{Shares: []castor.Share{encode(1, 1), encode(2, 2), encode(3, 3)}}
			var ids []string
			for party := 0; party < 2; party++ {
				client, rt := clientFor(triple)
				s, err := NewCastorSupplier(client, field, big.NewInt(1), party, 2, gameID, 1, logger)
				Expect(err).NotTo(HaveOccurred())
				Expect(s.Prefetch(1)).To(Succeed())
				ids = append(ids, rt.Requests[0].URL.Query().Get("reservationId"))
			}
			Expect(ids[0]).To(Equal(ids[1]))
		})
		It("reveals the clear input mask to its owner", func() {
			mask := castor.Tuple{Shares: []castor.Share{encode(4, 40), encode(9, 0)}}
			client, _ := clientFor(mask)
			s, err := NewCastorSupplier(client, field, big.NewInt(1), 1, 2, gameID, 1, logger)
			Expect(err).NotTo(HaveOccurred())
			m, err := s.NextInputMask(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Mask.Share.Int64()).To(Equal(int64(4)))
			Expect(m.Value.Int64()).To(Equal(int64(9)))
			m, err = s.NextInputMask(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Value).To(BeNil())
		})
		It("fails when castor is unreachable", func() {
			client := &castor.Client{URL: url.URL{Host: "castor:10100", Scheme: "http"}, HTTPClient: &http.Client{Transport: &castor.MockedBrokenRoundTripper{}}}
			s, err := NewCastorSupplier(client, field, big.NewInt(1), 0, 2, gameID, 4, logger)
			Expect(err).NotTo(HaveOccurred())
			_, err = s.NextTriple()
			Expect(err).To(MatchError(ContainSubstring("communication with castor failed")))
		})
		It("rejects an invalid configuration", func() {
			_, err := NewCastorSupplier(nil, field, big.NewInt(1), 0, 2, gameID, 4, logger)
			Expect(err).To(HaveOccurred())
			client, _ := clientFor()
			_, err = NewCastorSupplier(client, field, big.NewInt(1), 0, 2, gameID, 0, logger)
			Expect(err).To(HaveOccurred())
		})
	})
})
