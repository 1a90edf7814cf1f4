// Package providers fetches an account's transaction history from block
// explorer APIs, trying each configured explorer in turn.
package providers

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ErrAllFailed is returned when every provider in the registry fails.
var ErrAllFailed = errors.New("all providers failed")

// Tx is one transaction sent by or to the account.
type Tx struct {
	Hash        common.Hash
	BlockNumber uint64
	Time        time.Time
	From        common.Address
	To          common.Address // zero for contract creation
	Value       *big.Int
	Input       []byte
	Failed      bool
}

// Provider fetches transaction history for an address.
type Provider interface {
	Name() string
	Transactions(ctx context.Context, addr common.Address, n int) ([]Tx, error)
}

// Registry tries providers in order and returns the first successful result.
type Registry struct {
	providers []Provider
}

// New creates a Registry from an ordered list of providers. Nil entries are
// skipped so that key-gated constructors can be passed directly.
func New(ps ...Provider) *Registry {
	r := &Registry{}
	for _, p := range ps {
		if p != nil {
			r.providers = append(r.providers, p)
		}
	}
	return r
}

// Result carries the fetched transactions and the provider that supplied them.
type Result struct {
	Txs      []Tx
	Source   string
	Warnings []string // non-fatal provider errors
}

// Transactions tries each provider in order and returns on the first one
// that answers with data. An empty history from every provider is not an
// error.
func (r *Registry) Transactions(ctx context.Context, addr common.Address, n int) (*Result, error) {
	res := &Result{}
	failed := 0
	for _, p := range r.providers {
		txs, err := p.Transactions(ctx, addr, n)
		if err != nil {
			failed++
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", p.Name(), err))
			continue
		}
		if len(txs) == 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: no transactions found", p.Name()))
			continue
		}
		res.Txs = txs
		res.Source = p.Name()
		return res, nil
	}
	if failed == len(r.providers) {
		return res, ErrAllFailed
	}
	return res, nil
}

// Names returns the names of all registered providers (for display).
func (r *Registry) Names() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}
