package txflow

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/TechyByFin/byfin-dashboard/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wad(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func methods(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Method
	}
	return out
}

// Every step must pack against its ABI, or the gateway would reject it.
func requirePackable(t *testing.T, steps []Step) {
	t.Helper()
	for _, s := range steps {
		_, err := s.ABI.Pack(s.Method, s.Args...)
		require.NoError(t, err, s.Method)
	}
}

func TestStakeSteps(t *testing.T) {
	steps, err := StakeSteps(testBook, "2.5")
	require.NoError(t, err)
	requirePackable(t, steps)

	amt, _ := new(big.Int).SetString("2500000000000000000", 10)
	assert.Equal(t, []string{"approve", "stake"}, methods(steps))
	assert.Equal(t, testBook.Token, steps[0].Contract)
	assert.Equal(t, []interface{}{testBook.Staking, amt}, steps[0].Args)
	assert.Equal(t, testBook.Staking, steps[1].Contract)
	assert.Equal(t, []interface{}{amt}, steps[1].Args)
}

func TestUnstakeAndClaimSteps(t *testing.T) {
	steps, err := UnstakeSteps(testBook, "10")
	require.NoError(t, err)
	requirePackable(t, steps)
	assert.Equal(t, []string{"unstake"}, methods(steps))
	assert.Equal(t, []interface{}{wad(10)}, steps[0].Args)

	claim := ClaimSteps(testBook)
	requirePackable(t, claim)
	assert.Equal(t, []string{"claimRewards"}, methods(claim))
	assert.Equal(t, testBook.Staking, claim[0].Contract)
}

func TestMarketSteps(t *testing.T) {
	list, err := CreateListingSteps(testBook, "3", "25")
	require.NoError(t, err)
	requirePackable(t, list)
	assert.Equal(t, []string{"setApprovalForAll", "createListing"}, methods(list))
	assert.Equal(t, testBook.Vault, list[0].Contract)
	assert.Equal(t, []interface{}{testBook.Market, true}, list[0].Args)
	assert.Equal(t, []interface{}{big.NewInt(3), big.NewInt(25)}, list[1].Args)

	sell, err := InstantSellSteps(testBook, "2", "1")
	require.NoError(t, err)
	requirePackable(t, sell)
	assert.Equal(t, []string{"setApprovalForAll", "sellToProtocol"}, methods(sell))
	assert.Equal(t, []interface{}{big.NewInt(2), big.NewInt(1), testBook.USDC}, sell[1].Args)

	buy, err := BuyListingSteps(testBook, "7")
	require.NoError(t, err)
	requirePackable(t, buy)
	assert.Equal(t, testBook.Market, buy[0].Contract)
	assert.Equal(t, []interface{}{big.NewInt(7), testBook.USDC}, buy[0].Args)
	assert.Equal(t, "Buy listing #7", buy[0].Label)
}

// 2^256 + 7, which abi packing would silently reduce to 7.
const beyondUint256 = "115792089237316195423570985008687907853269984665640564039457584007913129639943"

func TestStepsRejectBadInput(t *testing.T) {
	cases := map[string]func() ([]Step, error){
		"stake empty":        func() ([]Step, error) { return StakeSteps(testBook, "") },
		"stake zero":         func() ([]Step, error) { return StakeSteps(testBook, "0") },
		"unstake text":       func() ([]Step, error) { return UnstakeSteps(testBook, "lots") },
		"listing token id":   func() ([]Step, error) { return CreateListingSteps(testBook, "x", "1") },
		"listing zero":       func() ([]Step, error) { return CreateListingSteps(testBook, "1", "0") },
		"sell fractional":    func() ([]Step, error) { return InstantSellSteps(testBook, "1", "1.5") },
		"buy negative":       func() ([]Step, error) { return BuyListingSteps(testBook, "-1") },
		"invest too precise": func() ([]Step, error) { return InvestSteps(testBook, Offerings[0], "1.0000001") },
		"listing id wraps":   func() ([]Step, error) { return CreateListingSteps(testBook, beyondUint256, "1") },
		"sell amount wraps":  func() ([]Step, error) { return InstantSellSteps(testBook, "1", beyondUint256) },
		"buy id wraps":       func() ([]Step, error) { return BuyListingSteps(testBook, beyondUint256) },
		"stake overflow":     func() ([]Step, error) { return StakeSteps(testBook, "1"+strings.Repeat("0", 60)) },
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			steps, err := build()
			assert.ErrorIs(t, err, contract.ErrInvalidAmount)
			assert.Nil(t, steps)
		})
	}
}

func TestInvestSteps(t *testing.T) {
	steps, err := InvestSteps(testBook, Offerings[0], "150.5")
	require.NoError(t, err)
	requirePackable(t, steps)
	assert.Equal(t, testBook.USDC, steps[0].Contract)
	assert.Equal(t, []interface{}{testBook.Launchpad, big.NewInt(150_500_000)}, steps[0].Args)
	assert.Equal(t, "Approve USDC for DCRE-OPR", steps[0].Label)
}

func TestInvestUpcomingOffering(t *testing.T) {
	upcoming, err := OfferingByID(3)
	require.NoError(t, err)
	require.Equal(t, StatusUpcoming, upcoming.Status)

	_, err = InvestSteps(testBook, upcoming, "100")
	assert.ErrorIs(t, err, ErrOfferingClosed)
}

func TestOfferingByID(t *testing.T) {
	o, err := OfferingByID(2)
	require.NoError(t, err)
	assert.Equal(t, "STFP-OPR", o.Symbol)
	assert.Equal(t, 92, o.RaisedPct)

	_, err = OfferingByID(99)
	assert.ErrorIs(t, err, ErrOfferingNotFound)
}

func TestGroupRunsEveryFlow(t *testing.T) {
	gw := newFakeGateway()
	g := NewGroup(New(gw, connected()), testBook, false)
	ctx := context.Background()
	resets := 0
	reset := func() { resets++ }

	require.NoError(t, g.Stake(ctx, "1", reset))
	require.NoError(t, g.Unstake(ctx, "1", reset))
	require.NoError(t, g.Claim(ctx, reset))
	require.NoError(t, g.CreateListing(ctx, "1", "2", reset))
	require.NoError(t, g.InstantSell(ctx, "1", "2", reset))
	require.NoError(t, g.BuyListing(ctx, "4", reset))
	require.NoError(t, g.Invest(ctx, 1, "100", reset))

	assert.Equal(t, 7, resets)
	assert.Equal(t, []string{
		"submit:approve", "submit:stake",
		"submit:unstake",
		"submit:claimRewards",
		"submit:setApprovalForAll", "submit:createListing",
		"submit:setApprovalForAll", "submit:sellToProtocol",
		"submit:buyListing",
		"submit:approve",
	}, gw.Events())
}

func TestGroupInvestUnknownOffering(t *testing.T) {
	gw := newFakeGateway()
	g := NewGroup(New(gw, connected()), testBook, true)

	assert.ErrorIs(t, g.Invest(context.Background(), 42, "100", nil), ErrOfferingNotFound)
	assert.ErrorIs(t, g.Invest(context.Background(), 3, "100", nil), ErrOfferingClosed)
	assert.Empty(t, gw.Events())
}

func TestTiers(t *testing.T) {
	_, ok := TierByLevel(0)
	assert.False(t, ok)

	gold, ok := TierByLevel(3)
	require.True(t, ok)
	assert.Equal(t, "Gold", gold.Name)
	assert.Contains(t, gold.Benefits, "Governance votes")

	next, missing, ok := NextTier(nil)
	require.True(t, ok)
	assert.Equal(t, "Bronze", next.Name)
	assert.Equal(t, wad(1_000), missing)

	next, missing, ok = NextTier(wad(12_000))
	require.True(t, ok)
	assert.Equal(t, "Gold", next.Name)
	assert.Equal(t, wad(38_000), missing)

	_, _, ok = NextTier(wad(100_000))
	assert.False(t, ok)
}
