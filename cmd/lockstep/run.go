//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/carbynestack/lockstep/pkg/apps"
	"github.com/carbynestack/lockstep/pkg/builder"
	"github.com/carbynestack/lockstep/pkg/dres"
	"github.com/carbynestack/lockstep/pkg/engine"
	"github.com/carbynestack/lockstep/pkg/evaluator"
	"github.com/carbynestack/lockstep/pkg/network/loopback"
	"github.com/carbynestack/lockstep/pkg/network/tcp"
	"github.com/carbynestack/lockstep/pkg/numeric"
	"github.com/carbynestack/lockstep/pkg/resource"
	"github.com/carbynestack/lockstep/pkg/suite"
	"github.com/carbynestack/lockstep/pkg/suite/dummy"
	"github.com/carbynestack/lockstep/pkg/suite/spdz"
	. "github.com/carbynestack/lockstep/pkg/types"
	"github.com/carbynestack/lockstep/pkg/utils"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Names of the demo applications.
const (
	SumApp          = "sum"
	InnerProductApp = "inner"
	PowerApp        = "power"
	CountdownApp    = "countdown"
)

// Options are the command line options.
type Options struct {
	ConfigPath string
	Local      int
	App        string
	Inputs     []string
	Length     int
	Exponent   uint64
	Output     string
}

// LoadConfig reads the configuration file, or uses defaults for local runs without one.
func LoadConfig(opts *Options) (*EngineTypedConfig, error) {
	var conf *EngineConfig
	if opts.ConfigPath != "" {
		var err error
		if conf, err = ParseConfig(opts.ConfigPath); err != nil {
			return nil, err
		}
	} else {
		conf = &EngineConfig{Suite: SpdzSuite}
	}
	if opts.Local > 0 {
		// Addresses are not used by local runs, but the party count is.
		conf.PlayerID = 0
		conf.Parties = make([]PartyConfig, opts.Local)
		for i := range conf.Parties {
			conf.Parties[i] = PartyConfig{Host: "localhost", Port: strconv.Itoa(9000 + i)}
		}
	}
	return InitTypedConfig(conf)
}

// Result is the output of one party.
type Result struct {
	Party  int    `json:"party"`
	RunID  string `json:"runID"`
	Value  string `json:"value"`
	Rounds int    `json:"rounds"`
}

// WriteResults prints the results as JSON to the given file or stdout.
func WriteResults(path string, results []*Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		_, err = fmt.Fprintln(os.Stdout, string(data))
		return err
	}
	return utils.WriteFile(path, data)
}

// ParseInputs parses comma separated integers.
func ParseInputs(s string) ([]*big.Int, error) {
	var res []*big.Int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, ok := new(big.Int).SetString(field, 10)
		if !ok {
			return nil, fmt.Errorf("invalid input %q", field)
		}
		res = append(res, v)
	}
	return res, nil
}

func stringResult[T any](c builder.Computation[T]) builder.Computation[string] {
	return func(b *builder.Builder) dres.Deferred[string] {
		return dres.Map(c(b), func(v T) string {
			return fmt.Sprint(v)
		})
	}
}

func first(values []*big.Int) *big.Int {
	if len(values) == 0 {
		return new(big.Int)
	}
	return values[0]
}

// NewApp returns the computation of the given party for the named application.
func NewApp(opts *Options, party, parties int, inputs []*big.Int) (builder.Computation[string], error) {
	switch opts.App {
	case SumApp:
		return stringResult(apps.Sum(party, parties, first(inputs))), nil
	case InnerProductApp:
		if parties < 2 {
			return nil, fmt.Errorf("the inner product needs at least 2 parties, got %d", parties)
		}
		n := opts.Length
		if n == 0 {
			n = len(inputs)
		}
		if n == 0 {
			return nil, fmt.Errorf("the inner product needs a vector length")
		}
		return stringResult(apps.InnerProduct(party, n, inputs)), nil
	case PowerApp:
		return stringResult(apps.Power(party, first(inputs), opts.Exponent)), nil
	case CountdownApp:
		return stringResult(apps.Countdown(party, first(inputs))), nil
	default:
		return nil, fmt.Errorf("unknown application %q", opts.App)
	}
}

// NewParty creates the protocol suite and resource pool of a party. The returned suite must be closed after the run.
func NewParty(conf *EngineTypedConfig, party int, logger *zap.SugaredLogger) (*engine.Party, func() error, error) {
	parties := conf.NoOfParties()
	field, err := numeric.NewField(conf.Prime)
	if err != nil {
		return nil, nil, err
	}
	base, err := resource.NewBasePool(party, parties, nil, logger)
	if err != nil {
		return nil, nil, err
	}
	closer := func() error { return nil }

	var (
		s    suite.ProtocolSuite
		pool resource.Pool = base
	)
	switch conf.Suite {
	case DummySuite:
		if s, err = dummy.New(conf.Prime); err != nil {
			return nil, nil, err
		}
	default:
		var supplier spdz.DataSupplier
		if conf.CastorClient != nil {
			supplier, err = spdz.NewCastorSupplier(conf.CastorClient, field, conf.GfpMacKey, party, parties, conf.GameID, conf.TupleStock, logger)
		} else {
			supplier, err = spdz.NewDummySupplier(field, conf.Seed, party, parties, conf.Workers)
		}
		if err != nil {
			return nil, nil, err
		}
		p, err := spdz.NewResourcePool(base, field, supplier)
		if err != nil {
			return nil, nil, err
		}
		if s, err = spdz.New(p, conf.CheckThreshold); err != nil {
			return nil, nil, err
		}
		pool, closer = p, supplier.Close
	}
	e := engine.New(s, logger.With("party", party),
		evaluator.WithBatchSize(conf.BatchSize),
		evaluator.WithBatchingNetwork(conf.BatchingNetwork))
	return &engine.Party{Engine: e, Pool: pool}, closer, nil
}

// Execute runs the application either for all parties in this process or for the configured party over TCP.
func Execute(ctx context.Context, conf *EngineTypedConfig, opts *Options, logger *zap.SugaredLogger) ([]*Result, error) {
	if opts.Local > 0 {
		return runLocal(ctx, conf, opts, logger)
	}
	return runParty(ctx, conf, opts, logger)
}

func inputsOf(opts *Options, i int) ([]*big.Int, error) {
	if i >= len(opts.Inputs) {
		return nil, nil
	}
	return ParseInputs(opts.Inputs[i])
}

func runLocal(ctx context.Context, conf *EngineTypedConfig, opts *Options, logger *zap.SugaredLogger) ([]*Result, error) {
	parties := conf.NoOfParties()
	computations := make([]builder.Computation[string], parties)
	for i := range computations {
		inputs, err := inputsOf(opts, i)
		if err != nil {
			return nil, err
		}
		if computations[i], err = NewApp(opts, i, parties, inputs); err != nil {
			return nil, err
		}
	}
	closers := make([]func() error, parties)
	defer func() {
		for _, c := range closers {
			if c != nil {
				c()
			}
		}
	}()
	setup := func(i int) (*engine.Party, error) {
		p, closer, err := NewParty(conf, i, logger)
		if err != nil {
			return nil, err
		}
		closers[i] = closer
		return p, nil
	}
	app := func(i int) builder.Computation[string] {
		return computations[i]
	}
	results, err := engine.RunLocal(ctx, parties, setup, app, loopback.WithTimeout(conf.ReceiveTimeout))
	if err != nil {
		return nil, err
	}
	res := make([]*Result, parties)
	for i, r := range results {
		res[i] = &Result{Party: i, RunID: r.RunID, Value: r.Value, Rounds: r.Stats.Rounds}
	}
	return res, nil
}

func runParty(ctx context.Context, conf *EngineTypedConfig, opts *Options, logger *zap.SugaredLogger) (res []*Result, err error) {
	inputs, err := inputsOf(opts, 0)
	if err != nil {
		return nil, err
	}
	app, err := NewApp(opts, conf.PlayerID, conf.NoOfParties(), inputs)
	if err != nil {
		return nil, err
	}
	p, closer, err := NewParty(conf, conf.PlayerID, logger)
	if err != nil {
		return nil, err
	}
	net, err := tcp.Connect(ctx, &tcp.Config{
		MyID:           conf.PlayerID,
		Addresses:      conf.Addresses,
		RetryInterval:  conf.RetrySleep,
		ConnectTimeout: conf.NetworkEstablishTimeout,
		ReceiveTimeout: conf.ReceiveTimeout,
	}, logger)
	if err != nil {
		closer()
		return nil, err
	}
	defer func() {
		if cerr := multierror.Append(nil, net.Close(), closer()).ErrorOrNil(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, conf.ComputationTimeout)
	defer cancel()
	r, err := engine.Run(ctx, p.Engine, app, p.Pool, net)
	if err != nil {
		return nil, err
	}
	logger.Infow("Result", "party", conf.PlayerID, "value", r.Value, "sentBytes", net.SentBytes())
	return []*Result{{Party: conf.PlayerID, RunID: r.RunID, Value: r.Value, Rounds: r.Stats.Rounds}}, nil
}
