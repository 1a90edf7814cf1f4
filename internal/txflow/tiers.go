package txflow

import (
	"math/big"

	"github.com/TechyByFin/byfin-dashboard/internal/config"
)

// Tier is a staking tier as reported by getStakingTier (1..4).
type Tier struct {
	Level    uint8
	Name     string
	MinStake int64 // whole BYFN
	Color    string
	Benefits []string
}

// Tiers lists the staking tiers from lowest to highest.
var Tiers = []Tier{
	{Level: 1, Name: "Bronze", MinStake: 1_000, Color: "#CD7F32", Benefits: []string{"5% fee discount", "Basic analytics"}},
	{Level: 2, Name: "Silver", MinStake: 10_000, Color: "#C0C0C0", Benefits: []string{"10% fee discount", "Priority listings", "Advanced analytics"}},
	{Level: 3, Name: "Gold", MinStake: 50_000, Color: "#FFD700", Benefits: []string{"15% fee discount", "Early access", "Premium analytics", "Governance votes"}},
	{Level: 4, Name: "Diamond", MinStake: 100_000, Color: "#B9F2FF", Benefits: []string{"20% fee discount", "Exclusive pools", "All benefits", "Fee sharing"}},
}

// TierByLevel returns the tier for an on-chain level. ok is false for 0 (no
// tier) and unknown levels.
func TierByLevel(level uint8) (Tier, bool) {
	for _, t := range Tiers {
		if t.Level == level {
			return t, true
		}
	}
	return Tier{}, false
}

// NextTier returns the lowest tier whose minimum exceeds staked (base units),
// and how many more base units are needed to reach it. ok is false once the
// top tier is reached.
func NextTier(staked *big.Int) (tier Tier, missing *big.Int, ok bool) {
	if staked == nil {
		staked = new(big.Int)
	}
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(config.DecimalsBYFN), nil)
	for _, t := range Tiers {
		floor := new(big.Int).Mul(big.NewInt(t.MinStake), unit)
		if staked.Cmp(floor) < 0 {
			return t, floor.Sub(floor, staked), true
		}
	}
	return Tier{}, nil, false
}
