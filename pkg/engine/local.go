//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/carbynestack/lockstep/pkg/builder"
	"github.com/carbynestack/lockstep/pkg/network"
	"github.com/carbynestack/lockstep/pkg/network/loopback"
	"github.com/carbynestack/lockstep/pkg/resource"

	"github.com/hashicorp/go-multierror"
)

// Party is everything one party needs to take part in a local run.
type Party struct {
	Engine *Engine
	Pool   resource.Pool
	// Network optionally wraps the party's end of the loopback network, e.g. to observe or drop messages.
	Network func(network.Network) network.Network
}

// RunLocal runs app for the given number of parties in this process, connected through a loopback network. setup
// creates the engine and pool of every party, app the computation of every party. The results are indexed by party
// id. If any party fails, the errors of all failing parties are returned.
func RunLocal[T any](ctx context.Context, parties int, setup func(party int) (*Party, error), app func(party int) builder.Computation[T], opts ...loopback.Option) ([]*Result[T], error) {
	nets, err := loopback.New(parties, opts...)
	if err != nil {
		return nil, err
	}
	defer loopback.CloseAll(nets)

	results := make([]*Result[T], parties)
	errs := make([]error, parties)
	var wg sync.WaitGroup
	for i := 0; i < parties; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := setup(i)
			if err != nil {
				errs[i] = err
				return
			}
			var net network.Network = nets[i]
			if p.Network != nil {
				net = p.Network(net)
			}
			results[i], errs[i] = Run(ctx, p.Engine, app(i), p.Pool, net)
		}(i)
	}
	wg.Wait()

	var result error
	for i, err := range errs {
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("party %d: %w", i, err))
		}
	}
	if result != nil {
		return nil, result
	}
	return results, nil
}
