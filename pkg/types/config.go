//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package types

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/url"
	"time"

	"github.com/carbynestack/lockstep/pkg/castor"
	"github.com/carbynestack/lockstep/pkg/drbg"
	"github.com/carbynestack/lockstep/pkg/evaluator"
	"github.com/carbynestack/lockstep/pkg/numeric"
	"github.com/carbynestack/lockstep/pkg/utils"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// Defaults applied to empty configuration fields.
const (
	DefaultRetrySleep              = 50 * time.Millisecond
	DefaultNetworkEstablishTimeout = time.Minute
	DefaultComputationTimeout      = 10 * time.Minute
	DefaultTupleStock              = 1000
	DefaultLogLevel                = "info"
)

// ParseConfig reads the configuration file content.
func ParseConfig(path string) (*EngineConfig, error) {
	bytes, err := utils.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf EngineConfig
	err = json.Unmarshal(bytes, &conf)
	if err != nil {
		return nil, err
	}
	return &conf, nil
}

func parseDuration(name, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", name, d)
	}
	return d, nil
}

// InitTypedConfig converts the string parameters that were parsed by standard json parser to
// the parameters which are used internally, e.g. string -> time.Duration. All invalid parameters are reported at once.
func InitTypedConfig(conf *EngineConfig) (*EngineTypedConfig, error) {
	var result error
	fail := func(err error) {
		result = multierror.Append(result, err)
	}

	typed := &EngineTypedConfig{
		PlayerID:        conf.PlayerID,
		Suite:           conf.Suite,
		Workers:         conf.Workers,
		BatchSize:       conf.BatchSize,
		BatchingNetwork: conf.BatchingNetwork,
		CheckThreshold:  conf.CheckThreshold,
		TupleStock:      conf.CastorConfig.TupleStock,
		LogLevel:        conf.LogLevel,
	}
	if typed.Suite == "" {
		typed.Suite = SpdzSuite
	}
	if typed.Suite != SpdzSuite && typed.Suite != DummySuite {
		fail(fmt.Errorf("unknown suite %q", conf.Suite))
	}
	if typed.BatchSize == 0 {
		typed.BatchSize = evaluator.DefaultBatchSize
	}
	if typed.BatchSize < 0 {
		fail(fmt.Errorf("batch size must be positive, got %d", conf.BatchSize))
	}
	if typed.CheckThreshold == 0 {
		typed.CheckThreshold = 1
	}
	if typed.CheckThreshold < 0 {
		fail(fmt.Errorf("check threshold must be positive, got %d", conf.CheckThreshold))
	}
	if typed.Workers < 1 {
		typed.Workers = 1
	}
	if typed.TupleStock == 0 {
		typed.TupleStock = DefaultTupleStock
	}
	if typed.LogLevel == "" {
		typed.LogLevel = DefaultLogLevel
	}

	if len(conf.Parties) == 0 {
		fail(errors.New("no parties configured"))
	}
	for i, p := range conf.Parties {
		if !govalidator.IsHost(p.Host) {
			fail(fmt.Errorf("party %d has an invalid host %q", i, p.Host))
		}
		if !govalidator.IsPort(p.Port) {
			fail(fmt.Errorf("party %d has an invalid port %q", i, p.Port))
		}
		typed.Addresses = append(typed.Addresses, net.JoinHostPort(p.Host, p.Port))
	}
	if conf.PlayerID < 0 || conf.PlayerID >= len(conf.Parties) {
		fail(fmt.Errorf("player id %d out of range [0, %d)", conf.PlayerID, len(conf.Parties)))
	}

	typed.Prime = numeric.DefaultModulus
	if conf.Prime != "" {
		p, ok := new(big.Int).SetString(conf.Prime, 10)
		if !ok {
			fail(errors.New("wrong prime number format"))
		}
		typed.Prime = p
	}
	if conf.GfpMacKey != "" {
		k, ok := new(big.Int).SetString(conf.GfpMacKey, 10)
		if !ok {
			fail(errors.New("wrong gfpMacKey format"))
		}
		typed.GfpMacKey = k
	}
	if conf.Seed != "" {
		seed, err := hex.DecodeString(conf.Seed)
		if err != nil || len(seed) != drbg.SeedSize {
			fail(fmt.Errorf("seed must be %d hex encoded bytes", drbg.SeedSize))
		} else {
			copy(typed.Seed[:], seed)
		}
	}
	if conf.GameID != "" {
		id, err := uuid.Parse(conf.GameID)
		if err != nil {
			fail(fmt.Errorf("invalid game id: %w", err))
		}
		typed.GameID = id
	}

	if conf.CastorConfig.Host != "" {
		castorURL := url.URL{
			Host:   conf.CastorConfig.Host,
			Scheme: conf.CastorConfig.Scheme,
			Path:   conf.CastorConfig.Path,
		}
		client, err := castor.NewClient(castorURL)
		if err != nil {
			fail(err)
		} else {
			typed.CastorClient = client
		}
		if typed.GfpMacKey == nil {
			fail(errors.New("gfpMacKey is required to use castor"))
		}
		if typed.GameID == uuid.Nil {
			fail(errors.New("gameID is required to use castor"))
		}
	}

	var err error
	if typed.RetrySleep, err = parseDuration("retrySleep", conf.RetrySleep, DefaultRetrySleep); err != nil {
		fail(err)
	}
	if typed.RetrySleep == 0 {
		typed.RetrySleep = DefaultRetrySleep
	}
	if typed.NetworkEstablishTimeout, err = parseDuration("networkEstablishTimeout", conf.NetworkEstablishTimeout, DefaultNetworkEstablishTimeout); err != nil {
		fail(err)
	}
	if typed.ReceiveTimeout, err = parseDuration("receiveTimeout", conf.ReceiveTimeout, 0); err != nil {
		fail(err)
	}
	if typed.ComputationTimeout, err = parseDuration("computationTimeout", conf.ComputationTimeout, DefaultComputationTimeout); err != nil {
		fail(err)
	}

	if result != nil {
		return nil, result
	}
	return typed, nil
}
