package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/TechyByFin/byfin-dashboard/internal/config"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Book maps the ByFin logical contracts to their deployed addresses.
type Book struct {
	Token     common.Address
	USDC      common.Address
	Vault     common.Address
	Staking   common.Address
	Market    common.Address
	Launchpad common.Address
}

// LoadBook resolves every logical contract from the config.
func LoadBook(cfg *config.Config) (Book, error) {
	var b Book
	targets := map[string]*common.Address{
		config.ContractToken:     &b.Token,
		config.ContractUSDC:      &b.USDC,
		config.ContractVault:     &b.Vault,
		config.ContractStaking:   &b.Staking,
		config.ContractMarket:    &b.Market,
		config.ContractLaunchpad: &b.Launchpad,
	}
	for _, name := range config.ContractNames {
		addr, err := cfg.ContractAddress(name)
		if err != nil {
			return Book{}, err
		}
		*targets[name] = addr
	}
	return b, nil
}

// NameOf returns the logical name of addr, if it is one of the book's contracts.
func (b Book) NameOf(addr common.Address) (string, bool) {
	for name, a := range map[string]common.Address{
		config.ContractToken:     b.Token,
		config.ContractUSDC:      b.USDC,
		config.ContractVault:     b.Vault,
		config.ContractStaking:   b.Staking,
		config.ContractMarket:    b.Market,
		config.ContractLaunchpad: b.Launchpad,
	} {
		if a == addr && a != (common.Address{}) {
			return name, true
		}
	}
	return "", false
}

// Listing is one secondary-market listing.
type Listing struct {
	ID         uint64
	Seller     common.Address
	TokenID    *big.Int
	Amount     *big.Int
	FloorPrice *big.Int // WAD, quoted in USDC
	Active     bool
}

// listingTuple mirrors the listings(uint256) output tuple.
type listingTuple struct {
	Seller     common.Address `abi:"seller"`
	TokenID    *big.Int       `abi:"tokenId"`
	Amount     *big.Int       `abi:"amount"`
	FloorPrice *big.Int       `abi:"floorPrice"`
	Active     bool           `abi:"active"`
}

// StakingPosition is an account's view of the staking contract.
type StakingPosition struct {
	Staked      *big.Int
	Earned      *big.Int
	TotalStaked *big.Int
	Tier        uint8
}

// MarketStats are the market-wide parameters shown above the listings.
type MarketStats struct {
	ListingCount uint64
	FeePercent   *big.Int
	SpreadBps    *big.Int
}

// Portfolio groups the balances shown on the portfolio page.
type Portfolio struct {
	ETH    *big.Int
	BYFN   *big.Int
	USDC   *big.Int
	Staked *big.Int
	Earned *big.Int
}

// NativeBackend reads native balances.
type NativeBackend interface {
	GetBalance(ctx context.Context, addr common.Address) (*big.Int, error)
}

// Reader decodes ByFin contract state into typed records.
type Reader struct {
	caller *Caller
	native NativeBackend
	book   Book
}

// Backend is what a Reader needs from the JSON-RPC client.
type Backend interface {
	ReadBackend
	NativeBackend
}

// NewReader creates a Reader over backend for the contracts in book.
func NewReader(backend Backend, book Book) *Reader {
	return &Reader{caller: NewCaller(backend), native: backend, book: book}
}

// Book returns the address book the reader was built with.
func (r *Reader) Book() Book {
	return r.book
}

// TokenBalance returns the ERC-20 balance of owner in base units.
func (r *Reader) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	return r.uint(ctx, token, ERC20ABI, "balanceOf", owner)
}

// AssetBalance returns the vault balance of owner for one OPR token id.
func (r *Reader) AssetBalance(ctx context.Context, owner common.Address, tokenID *big.Int) (*big.Int, error) {
	return r.uint(ctx, r.book.Vault, ERC1155ABI, "balanceOf", owner, tokenID)
}

// Allowance returns how much of token spender may move on behalf of owner.
func (r *Reader) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	return r.uint(ctx, token, ERC20ABI, "allowance", owner, spender)
}

// StakingPosition reads staked, earned, total staked and tier for owner.
func (r *Reader) StakingPosition(ctx context.Context, owner common.Address) (*StakingPosition, error) {
	staked, err := r.uint(ctx, r.book.Staking, StakingABI, "stakedBalance", owner)
	if err != nil {
		return nil, err
	}
	earned, err := r.uint(ctx, r.book.Staking, StakingABI, "earned", owner)
	if err != nil {
		return nil, err
	}
	total, err := r.uint(ctx, r.book.Staking, StakingABI, "totalStaked")
	if err != nil {
		return nil, err
	}

	out, err := r.caller.Call(ctx, r.book.Staking, StakingABI, "getStakingTier", owner)
	if err != nil {
		return nil, err
	}
	tier, ok := out[0].(uint8)
	if !ok {
		return nil, fmt.Errorf("unexpected getStakingTier result %T", out[0])
	}

	return &StakingPosition{Staked: staked, Earned: earned, TotalStaked: total, Tier: tier}, nil
}

// MarketStats reads the listing counter, fee and instant-sell spread.
func (r *Reader) MarketStats(ctx context.Context) (*MarketStats, error) {
	count, err := r.uint(ctx, r.book.Market, MarketABI, "listingCounter")
	if err != nil {
		return nil, err
	}
	fee, err := r.uint(ctx, r.book.Market, MarketABI, "feePercent")
	if err != nil {
		return nil, err
	}
	spread, err := r.uint(ctx, r.book.Market, MarketABI, "spreadBps")
	if err != nil {
		return nil, err
	}
	return &MarketStats{ListingCount: count.Uint64(), FeePercent: fee, SpreadBps: spread}, nil
}

// Listing reads a single listing by id.
func (r *Reader) Listing(ctx context.Context, id uint64) (*Listing, error) {
	var t listingTuple
	if err := r.caller.CallInto(ctx, &t, r.book.Market, MarketABI, "listings", new(big.Int).SetUint64(id)); err != nil {
		return nil, err
	}
	return &Listing{
		ID:         id,
		Seller:     t.Seller,
		TokenID:    t.TokenID,
		Amount:     t.Amount,
		FloorPrice: t.FloorPrice,
		Active:     t.Active,
	}, nil
}

// ActiveListings scans the first min(count, limit) listing ids and returns
// the active ones.
func (r *Reader) ActiveListings(ctx context.Context, count uint64, limit int) ([]Listing, error) {
	if limit > 0 && count > uint64(limit) {
		count = uint64(limit)
	}
	var out []Listing
	for id := uint64(0); id < count; id++ {
		l, err := r.Listing(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("listing %d: %w", id, err)
		}
		if l.Active {
			out = append(out, *l)
		}
	}
	return out, nil
}

// Portfolio reads every balance shown on the portfolio page.
func (r *Reader) Portfolio(ctx context.Context, owner common.Address) (*Portfolio, error) {
	eth, err := r.native.GetBalance(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("native balance: %w", err)
	}
	byfn, err := r.TokenBalance(ctx, r.book.Token, owner)
	if err != nil {
		return nil, err
	}
	usdc, err := r.TokenBalance(ctx, r.book.USDC, owner)
	if err != nil {
		return nil, err
	}
	staked, err := r.uint(ctx, r.book.Staking, StakingABI, "stakedBalance", owner)
	if err != nil {
		return nil, err
	}
	earned, err := r.uint(ctx, r.book.Staking, StakingABI, "earned", owner)
	if err != nil {
		return nil, err
	}
	return &Portfolio{ETH: eth, BYFN: byfn, USDC: usdc, Staked: staked, Earned: earned}, nil
}

// uint calls a view that returns a single uint256.
func (r *Reader) uint(ctx context.Context, to common.Address, iface *abi.ABI, method string, args ...interface{}) (*big.Int, error) {
	out, err := r.caller.Call(ctx, to, iface, method, args...)
	if err != nil {
		return nil, err
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s result %T", method, out[0])
	}
	return v, nil
}
