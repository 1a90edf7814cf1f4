// Package rpc probes candidate JSON-RPC endpoints and picks the one byfin
// talks to.
package rpc

import (
	"context"
	"errors"
	"time"

	"github.com/TechyByFin/byfin-dashboard/internal/chain"
	"golang.org/x/sync/errgroup"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

const (
	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
	probeTimeout        = 5 * time.Second
	maxParallelProbes   = 4
)

// Endpoint is one probed RPC endpoint.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Healthy reports whether the endpoint answered.
func (e Endpoint) Healthy() bool { return e.Err == nil }

// Pinger measures one endpoint.
type Pinger func(ctx context.Context, url string) (time.Duration, uint64, error)

// EVMPing pings url with a fresh chain.EVMClient.
func EVMPing(ctx context.Context, url string) (time.Duration, uint64, error) {
	return chain.NewEVMClient(url).Ping(ctx)
}

// Probe pings every url in parallel and returns the results in input order.
func Probe(ctx context.Context, urls []string, ping Pinger) []Endpoint {
	out := make([]Endpoint, len(urls))
	var g errgroup.Group
	g.SetLimit(maxParallelProbes)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()
			latency, block, err := ping(pctx, u)
			out[i] = Endpoint{URL: u, Latency: latency, BlockNumber: block, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Best returns the fastest healthy endpoint that is not stale. Ties keep the
// earlier endpoint, so the configured order acts as a preference.
func Best(endpoints []Endpoint) (*Endpoint, error) {
	var head uint64
	for _, e := range endpoints {
		if e.Healthy() && e.BlockNumber > head {
			head = e.BlockNumber
		}
	}

	var winner *Endpoint
	for i := range endpoints {
		e := &endpoints[i]
		if !e.Healthy() || Stale(*e, head) {
			continue
		}
		if winner == nil || e.Latency < winner.Latency {
			winner = e
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}
	return winner, nil
}

// Stale reports whether e lags more than a few blocks behind head.
func Stale(e Endpoint, head uint64) bool {
	return head > e.BlockNumber && head-e.BlockNumber > staleBlockThreshold
}

// Select probes urls and returns the best one. A single candidate is
// returned as is without probing.
func Select(ctx context.Context, urls []string, ping Pinger) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}
	best, err := Best(Probe(ctx, urls, ping))
	if err != nil {
		return "", err
	}
	return best.URL, nil
}
