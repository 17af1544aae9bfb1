//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package main

import (
	"context"
	"fmt"
	"os"

	l "github.com/carbynestack/lockstep/pkg/logger"

	"github.com/spf13/pflag"
)

const defaultConfig = "/etc/config/config.json"

func main() {
	flags := pflag.NewFlagSet("lockstep", pflag.ExitOnError)
	opts := &Options{}
	flags.StringVarP(&opts.ConfigPath, "config", "c", defaultConfig, "path of the JSON configuration")
	flags.IntVarP(&opts.Local, "local", "l", 0, "run the given number of parties in this process instead of one party over TCP")
	flags.StringVarP(&opts.App, "app", "a", SumApp, "application to run: sum, inner, power or countdown")
	flags.StringArrayVarP(&opts.Inputs, "input", "i", nil, "comma separated private inputs, repeated once per party with --local")
	flags.IntVar(&opts.Length, "length", 0, "vector length of the inner product, defaults to the number of own inputs")
	flags.Uint64Var(&opts.Exponent, "exponent", 2, "public exponent of the power application")
	flags.StringVarP(&opts.Output, "output", "o", "", "file to write the result to")
	if err := flags.Parse(os.Args[1:]); err != nil {
		panic(err)
	}
	if !flags.Changed("config") && opts.Local > 0 {
		opts.ConfigPath = ""
	}

	conf, err := LoadConfig(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := l.NewLogger(conf.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger.Debugf("Starting with the config:\n%+v", conf)

	ctx, cancel := context.WithTimeout(context.Background(), conf.ComputationTimeout+conf.NetworkEstablishTimeout)
	defer cancel()
	results, err := Execute(ctx, conf, opts, logger)
	if err != nil {
		logger.Errorw("Execution failed", "error", err)
		os.Exit(1)
	}
	if err := WriteResults(opts.Output, results); err != nil {
		logger.Errorw("Writing results failed", "error", err)
		os.Exit(1)
	}
}
