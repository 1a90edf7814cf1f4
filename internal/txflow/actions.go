package txflow

import (
	"context"
	"fmt"
	"math/big"

	"github.com/TechyByFin/byfin-dashboard/internal/config"
	"github.com/TechyByFin/byfin-dashboard/internal/contract"
)

// StakeSteps approves the staking contract for amount BYFN, then stakes it.
func StakeSteps(book contract.Book, amount string) ([]Step, error) {
	amt, err := contract.ParseUnits(amount, config.DecimalsBYFN)
	if err != nil {
		return nil, err
	}
	return []Step{
		{Label: "Approve BYFN", Contract: book.Token, ABI: contract.ERC20ABI, Method: "approve", Args: []interface{}{book.Staking, amt}},
		{Label: "Stake BYFN", Contract: book.Staking, ABI: contract.StakingABI, Method: "stake", Args: []interface{}{amt}},
	}, nil
}

// UnstakeSteps withdraws amount BYFN from staking.
func UnstakeSteps(book contract.Book, amount string) ([]Step, error) {
	amt, err := contract.ParseUnits(amount, config.DecimalsBYFN)
	if err != nil {
		return nil, err
	}
	return []Step{
		{Label: "Unstake BYFN", Contract: book.Staking, ABI: contract.StakingABI, Method: "unstake", Args: []interface{}{amt}},
	}, nil
}

// ClaimSteps claims accrued staking rewards.
func ClaimSteps(book contract.Book) []Step {
	return []Step{
		{Label: "Claim rewards", Contract: book.Staking, ABI: contract.StakingABI, Method: "claimRewards"},
	}
}

// CreateListingSteps approves the market as vault operator, then lists amount
// units of tokenID.
func CreateListingSteps(book contract.Book, tokenID, amount string) ([]Step, error) {
	id, amt, err := parseAsset(tokenID, amount)
	if err != nil {
		return nil, err
	}
	return []Step{
		approveVaultStep(book),
		{Label: "Create listing", Contract: book.Market, ABI: contract.MarketABI, Method: "createListing", Args: []interface{}{id, amt}},
	}, nil
}

// InstantSellSteps approves the market as vault operator, then sells amount
// units of tokenID to the protocol for USDC.
func InstantSellSteps(book contract.Book, tokenID, amount string) ([]Step, error) {
	id, amt, err := parseAsset(tokenID, amount)
	if err != nil {
		return nil, err
	}
	return []Step{
		approveVaultStep(book),
		{Label: "Sell to protocol", Contract: book.Market, ABI: contract.MarketABI, Method: "sellToProtocol", Args: []interface{}{id, amt, book.USDC}},
	}, nil
}

// BuyListingSteps buys a market listing with USDC.
func BuyListingSteps(book contract.Book, listingID string) ([]Step, error) {
	id, err := contract.ParseInteger(listingID)
	if err != nil {
		return nil, fmt.Errorf("listing id: %w", err)
	}
	return []Step{
		{Label: fmt.Sprintf("Buy listing #%s", id), Contract: book.Market, ABI: contract.MarketABI, Method: "buyListing", Args: []interface{}{id, book.USDC}},
	}, nil
}

// InvestSteps approves the launchpad to pull amount USDC for an active
// offering. The subscription itself is not chained.
func InvestSteps(book contract.Book, offering Offering, amount string) ([]Step, error) {
	if offering.Status != StatusActive {
		return nil, fmt.Errorf("%w: %s is %s", ErrOfferingClosed, offering.Symbol, offering.Status)
	}
	amt, err := contract.ParseUnits(amount, config.DecimalsUSDC)
	if err != nil {
		return nil, err
	}
	return []Step{
		{Label: "Approve USDC for " + offering.Symbol, Contract: book.USDC, ABI: contract.ERC20ABI, Method: "approve", Args: []interface{}{book.Launchpad, amt}},
	}, nil
}

func approveVaultStep(book contract.Book) Step {
	return Step{Label: "Approve market", Contract: book.Vault, ABI: contract.ERC1155ABI, Method: "setApprovalForAll", Args: []interface{}{book.Market, true}}
}

func parseAsset(tokenID, amount string) (*big.Int, *big.Int, error) {
	id, err := contract.ParseInteger(tokenID)
	if err != nil {
		return nil, nil, fmt.Errorf("token id: %w", err)
	}
	amt, err := contract.ParseInteger(amount)
	if err != nil {
		return nil, nil, fmt.Errorf("amount: %w", err)
	}
	if amt.Sign() == 0 {
		return nil, nil, fmt.Errorf("amount: %w: must be greater than zero", contract.ErrInvalidAmount)
	}
	return id, amt, nil
}

// Group is one logical action group: every flow it runs shares the
// PendingAction of its orchestrator.
type Group struct {
	orch *Orchestrator
	book contract.Book
	wait bool
}

// NewGroup binds orch to the contracts in book. waitForIntermediate selects
// confirmation-aware (true) or legacy (false) sequencing for two-step flows.
func NewGroup(orch *Orchestrator, book contract.Book, waitForIntermediate bool) *Group {
	return &Group{orch: orch, book: book, wait: waitForIntermediate}
}

// State returns the group's pending state.
func (g *Group) State() State {
	return g.orch.Pending().State()
}

// Stake runs StakeSteps.
func (g *Group) Stake(ctx context.Context, amount string, onSuccess func()) error {
	steps, err := StakeSteps(g.book, amount)
	if err != nil {
		return err
	}
	return g.orch.RunAction(ctx, steps, g.wait, onSuccess)
}

// Unstake runs UnstakeSteps.
func (g *Group) Unstake(ctx context.Context, amount string, onSuccess func()) error {
	steps, err := UnstakeSteps(g.book, amount)
	if err != nil {
		return err
	}
	return g.orch.RunAction(ctx, steps, g.wait, onSuccess)
}

// Claim runs ClaimSteps.
func (g *Group) Claim(ctx context.Context, onSuccess func()) error {
	return g.orch.RunAction(ctx, ClaimSteps(g.book), g.wait, onSuccess)
}

// CreateListing runs CreateListingSteps.
func (g *Group) CreateListing(ctx context.Context, tokenID, amount string, onSuccess func()) error {
	steps, err := CreateListingSteps(g.book, tokenID, amount)
	if err != nil {
		return err
	}
	return g.orch.RunAction(ctx, steps, g.wait, onSuccess)
}

// InstantSell runs InstantSellSteps.
func (g *Group) InstantSell(ctx context.Context, tokenID, amount string, onSuccess func()) error {
	steps, err := InstantSellSteps(g.book, tokenID, amount)
	if err != nil {
		return err
	}
	return g.orch.RunAction(ctx, steps, g.wait, onSuccess)
}

// BuyListing runs BuyListingSteps.
func (g *Group) BuyListing(ctx context.Context, listingID string, onSuccess func()) error {
	steps, err := BuyListingSteps(g.book, listingID)
	if err != nil {
		return err
	}
	return g.orch.RunAction(ctx, steps, g.wait, onSuccess)
}

// Invest runs InvestSteps for the offering with the given id.
func (g *Group) Invest(ctx context.Context, offeringID int, amount string, onSuccess func()) error {
	offering, err := OfferingByID(offeringID)
	if err != nil {
		return err
	}
	steps, err := InvestSteps(g.book, offering, amount)
	if err != nil {
		return err
	}
	return g.orch.RunAction(ctx, steps, g.wait, onSuccess)
}
