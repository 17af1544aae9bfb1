//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	. "github.com/carbynestack/lockstep/cmd/lockstep"
	"github.com/carbynestack/lockstep/pkg/numeric"
	. "github.com/carbynestack/lockstep/pkg/types"
	"github.com/carbynestack/lockstep/pkg/utils"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

var _ = Describe("Main", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		logger = zap.NewNop().Sugar()
	)
	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 20*time.Second)
	})
	AfterEach(func() {
		cancel()
	})

	Context("when loading the configuration", func() {
		It("uses defaults for local runs without a config file", func() {
			conf, err := LoadConfig(&Options{Local: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(conf.NoOfParties()).To(Equal(3))
			Expect(conf.Suite).To(Equal(SpdzSuite))
			Expect(conf.CastorClient).To(BeNil())
		})
		It("fails if the config file does not exist", func() {
			_, err := LoadConfig(&Options{ConfigPath: "/does/not/exist.json"})
			Expect(err).To(HaveOccurred())
		})
	})

	Context("when parsing inputs", func() {
		It("accepts comma separated integers", func() {
			values, err := ParseInputs(" 1, -2,,30 ")
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(HaveLen(3))
			Expect(values[1].Int64()).To(Equal(int64(-2)))
		})
		It("rejects anything else", func() {
			_, err := ParseInputs("1,two")
			Expect(err).To(MatchError(ContainSubstring(`invalid input "two"`)))
		})
	})

	Context("when creating applications", func() {
		It("rejects unknown applications", func() {
			_, err := NewApp(&Options{App: "sort"}, 0, 2, nil)
			Expect(err).To(MatchError(ContainSubstring("unknown application")))
		})
		It("needs two parties for the inner product", func() {
			_, err := NewApp(&Options{App: InnerProductApp}, 0, 1, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("when running locally", func() {
		for _, s := range []string{SpdzSuite, DummySuite} {
			s := s
			It("computes the sum with the "+s+" suite", func() {
				conf, err := InitTypedConfig(&EngineConfig{
					Suite:          s,
					Parties:        []PartyConfig{{Host: "localhost", Port: "9000"}, {Host: "localhost", Port: "9001"}, {Host: "localhost", Port: "9002"}},
					ReceiveTimeout: "10s",
				})
				Expect(err).NotTo(HaveOccurred())
				opts := &Options{Local: 3, App: SumApp, Inputs: []string{"1", "2", "3"}}
				results, err := Execute(ctx, conf, opts, logger)
				Expect(err).NotTo(HaveOccurred())
				Expect(results).To(HaveLen(3))
				for i, r := range results {
					Expect(r.Party).To(Equal(i))
					Expect(r.Value).To(Equal("6"))
				}
			})
		}
		It("computes an inner product with vectors given per party", func() {
			conf, err := LoadConfig(&Options{Local: 2})
			Expect(err).NotTo(HaveOccurred())
			opts := &Options{Local: 2, App: InnerProductApp, Inputs: []string{"1,2", "3,4"}}
			results, err := Execute(ctx, conf, opts, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[1].Value).To(Equal("11"))
		})
		It("counts down", func() {
			conf, err := LoadConfig(&Options{Local: 2})
			Expect(err).NotTo(HaveOccurred())
			opts := &Options{Local: 2, App: CountdownApp, Inputs: []string{"3"}}
			results, err := Execute(ctx, conf, opts, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].Value).To(Equal("3"))
		})
	})

	Context("when running a single party over TCP", func() {
		It("computes a power", func() {
			conf := &EngineTypedConfig{
				Addresses:               []string{"127.0.0.1:0"},
				Suite:                   SpdzSuite,
				Prime:                   numeric.DefaultModulus,
				Workers:                 1,
				BatchSize:               16,
				BatchingNetwork:         true,
				CheckThreshold:          1,
				RetrySleep:              10 * time.Millisecond,
				NetworkEstablishTimeout: 5 * time.Second,
				ReceiveTimeout:          5 * time.Second,
				ComputationTimeout:      10 * time.Second,
			}
			opts := &Options{App: PowerApp, Inputs: []string{"2"}, Exponent: 10}
			results, err := Execute(ctx, conf, opts, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Value).To(Equal("1024"))
		})
	})

	Context("when writing results", func() {
		It("writes them as JSON", func() {
			path := filepath.Join(os.TempDir(), fmt.Sprintf("lockstep-result-%d.json", rand.Int63()))
			defer utils.Fio.Delete(path)
			Expect(WriteResults(path, []*Result{{Party: 1, RunID: "id", Value: "42", Rounds: 4}})).To(Succeed())
			data, err := utils.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			var results []*Result
			Expect(json.Unmarshal(data, &results)).To(Succeed())
			Expect(results[0].Value).To(Equal("42"))
		})
	})
})
