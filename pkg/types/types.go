//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//

// Package types holds the configuration of a party.
package types

import (
	"math/big"
	"time"

	"github.com/carbynestack/lockstep/pkg/castor"
	"github.com/carbynestack/lockstep/pkg/drbg"

	"github.com/google/uuid"
)

const (
	// DummySuite computes on clear values.
	DummySuite = "dummy"
	// SpdzSuite computes on authenticated additive shares.
	SpdzSuite = "spdz"
)

// EngineConfig is the JSON configuration of a party.
type EngineConfig struct {
	PlayerID int           `json:"playerID"`
	Parties  []PartyConfig `json:"parties"`
	Suite    string        `json:"suite"`
	Prime    string        `json:"prime"`
	// GfpMacKey is the MAC key share of this party. It is required when tuples are fetched from Castor.
	GfpMacKey string `json:"gfpMacKey"`
	// Seed is the hex encoded seed shared by all parties to derive dummy preprocessing material.
	Seed            string       `json:"seed"`
	Workers         int          `json:"workers"`
	GameID          string       `json:"gameID"`
	CastorConfig    CastorConfig `json:"castorConfig"`
	BatchSize       int          `json:"batchSize"`
	BatchingNetwork bool         `json:"batchingNetwork"`
	CheckThreshold  int          `json:"checkThreshold"`
	RetrySleep      string       `json:"retrySleep"`
	// NetworkEstablishTimeout bounds the time to connect to all other parties.
	NetworkEstablishTimeout string `json:"networkEstablishTimeout"`
	ReceiveTimeout          string `json:"receiveTimeout"`
	ComputationTimeout      string `json:"computationTimeout"`
	LogLevel                string `json:"logLevel"`
}

// PartyConfig is the address a party listens on.
type PartyConfig struct {
	Host string `json:"host"`
	Port string `json:"port"`
}

// CastorConfig specifies the castor host and tuple stock parameters.
type CastorConfig struct {
	Host       string `json:"host"`
	Scheme     string `json:"scheme"`
	Path       string `json:"path"`
	TupleStock int    `json:"tupleStock"`
}

// EngineTypedConfig reflects EngineConfig, but it contains the real property types.
// We need this type, since the default json decoder doesn't know how to deserialize big.Int.
type EngineTypedConfig struct {
	PlayerID  int
	Addresses []string
	Suite     string
	Prime     *big.Int
	GfpMacKey *big.Int
	Seed      [drbg.SeedSize]byte
	Workers   int
	GameID    uuid.UUID
	// CastorClient is nil if no castor host is configured.
	CastorClient            castor.AbstractClient
	TupleStock              int
	BatchSize               int
	BatchingNetwork         bool
	CheckThreshold          int
	RetrySleep              time.Duration
	NetworkEstablishTimeout time.Duration
	ReceiveTimeout          time.Duration
	ComputationTimeout      time.Duration
	LogLevel                string
}

// NoOfParties returns the number of configured parties.
func (c *EngineTypedConfig) NoOfParties() int {
	return len(c.Addresses)
}
