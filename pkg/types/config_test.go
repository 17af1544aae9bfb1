//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package types_test

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/carbynestack/lockstep/pkg/evaluator"
	"github.com/carbynestack/lockstep/pkg/numeric"
	. "github.com/carbynestack/lockstep/pkg/types"
	"github.com/carbynestack/lockstep/pkg/utils"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	var conf *EngineConfig

	BeforeEach(func() {
		conf = &EngineConfig{
			PlayerID: 1,
			Parties:  []PartyConfig{{Host: "localhost", Port: "9000"}, {Host: "10.0.0.2", Port: "9000"}},
		}
	})

	Context("when parsing a config file", func() {
		var path string
		BeforeEach(func() {
			path = filepath.Join(os.TempDir(), fmt.Sprintf("lockstep-config-%d.json", rand.Int63()))
		})
		AfterEach(func() {
			_ = utils.Fio.Delete(path)
		})
		It("initializes the config", func() {
			data := []byte(`{
				"playerID": 0,
				"parties": [{"host": "party0", "port": "9000"}, {"host": "party1", "port": "9001"}],
				"suite": "spdz",
				"prime": "198766463529478683931867765928436695041",
				"gfpMacKey": "-88222337191559387830816715872691188861",
				"gameID": "7f1d9c3e-2d5a-4f39-8c51-6a0e8b2f4d17",
				"castorConfig": {"host": "castor:10100", "scheme": "http", "path": "/", "tupleStock": 500},
				"batchSize": 128,
				"checkThreshold": 16,
				"retrySleep": "10ms",
				"networkEstablishTimeout": "30s",
				"receiveTimeout": "5s",
				"computationTimeout": "1m"
			}`)
			Expect(utils.WriteFile(path, data)).To(Succeed())
			parsed, err := ParseConfig(path)
			Expect(err).NotTo(HaveOccurred())
			typed, err := InitTypedConfig(parsed)
			Expect(err).NotTo(HaveOccurred())
			Expect(typed.Addresses).To(Equal([]string{"party0:9000", "party1:9001"}))
			Expect(typed.Prime.Cmp(numeric.DefaultModulus)).To(Equal(0))
			Expect(typed.GfpMacKey.Sign()).To(Equal(-1))
			Expect(typed.CastorClient).NotTo(BeNil())
			Expect(typed.TupleStock).To(Equal(500))
			Expect(typed.BatchSize).To(Equal(128))
			Expect(typed.CheckThreshold).To(Equal(16))
			Expect(typed.RetrySleep).To(Equal(10 * time.Millisecond))
			Expect(typed.NetworkEstablishTimeout).To(Equal(30 * time.Second))
			Expect(typed.ReceiveTimeout).To(Equal(5 * time.Second))
			Expect(typed.ComputationTimeout).To(Equal(time.Minute))
			Expect(typed.GameID).To(Equal(uuid.MustParse("7f1d9c3e-2d5a-4f39-8c51-6a0e8b2f4d17")))
		})
		It("returns an error if the file is missing", func() {
			_, err := ParseConfig(path)
			Expect(err).To(HaveOccurred())
		})
		It("returns an error if the file is no JSON", func() {
			Expect(utils.WriteFile(path, []byte("playerID: 0"))).To(Succeed())
			_, err := ParseConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("when fields are left empty", func() {
		It("applies the defaults", func() {
			typed, err := InitTypedConfig(conf)
			Expect(err).NotTo(HaveOccurred())
			Expect(typed.Suite).To(Equal(SpdzSuite))
			Expect(typed.NoOfParties()).To(Equal(2))
			Expect(typed.BatchSize).To(Equal(evaluator.DefaultBatchSize))
			Expect(typed.CheckThreshold).To(Equal(1))
			Expect(typed.Workers).To(Equal(1))
			Expect(typed.CastorClient).To(BeNil())
			Expect(typed.RetrySleep).To(Equal(DefaultRetrySleep))
			Expect(typed.ComputationTimeout).To(Equal(DefaultComputationTimeout))
			Expect(typed.ReceiveTimeout).To(BeZero())
			Expect(typed.LogLevel).To(Equal(DefaultLogLevel))
		})
	})

	Context("when the config is invalid", func() {
		It("reports all problems at once", func() {
			conf.PlayerID = 2
			conf.Suite = "yao"
			conf.Parties[1].Port = "port"
			conf.Prime = "p"
			conf.Seed = "00ff"
			conf.RetrySleep = "fast"
			_, err := InitTypedConfig(conf)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("player id 2 out of range"))
			Expect(err.Error()).To(ContainSubstring(`unknown suite "yao"`))
			Expect(err.Error()).To(ContainSubstring(`party 1 has an invalid port "port"`))
			Expect(err.Error()).To(ContainSubstring("wrong prime number format"))
			Expect(err.Error()).To(ContainSubstring("seed must be 32 hex encoded bytes"))
			Expect(err.Error()).To(ContainSubstring("invalid retrySleep"))
		})
		It("requires a mac key and game id for castor", func() {
			conf.CastorConfig = CastorConfig{Host: "castor:10100", Scheme: "http"}
			_, err := InitTypedConfig(conf)
			Expect(err).To(MatchError(ContainSubstring("gfpMacKey is required")))
			Expect(err).To(MatchError(ContainSubstring("gameID is required")))
		})
		It("rejects hosts which are no host names", func() {
			conf.Parties[0].Host = "not a host"
			_, err := InitTypedConfig(conf)
			Expect(err).To(MatchError(ContainSubstring("party 0 has an invalid host")))
		})
	})
})
