package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/TechyByFin/byfin-dashboard/internal/config"
	"github.com/TechyByFin/byfin-dashboard/internal/contract"
	"github.com/TechyByFin/byfin-dashboard/internal/txflow"
	"github.com/TechyByFin/byfin-dashboard/internal/ui"
	"github.com/spf13/cobra"
)

var stakingCmd = &cobra.Command{
	Use:     "staking",
	Aliases: []string{"stk"},
	Short:   "Stake BYFN for fee tiers and rewards",
}

var stakeCmd = &cobra.Command{
	Use:   "stake <amount>",
	Short: "Approve and stake BYFN",
	Long: `Approve the staking contract for <amount> BYFN, then stake it.

In "confirm" wait mode the stake is sent only after the approval is mined.

Example:
  byfin staking stake 100`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form := ui.NewForm("amount")
		form.Set("amount", args[0])
		return runAction(cmd, actionSpec{
			title: "Stake BYFN",
			form:  form,
			run: func(ctx context.Context, g *txflow.Group, onSuccess func()) error {
				return g.Stake(ctx, form.Get("amount"), onSuccess)
			},
		})
	},
}

var unstakeCmd = &cobra.Command{
	Use:   "unstake <amount>",
	Short: "Withdraw staked BYFN",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form := ui.NewForm("amount")
		form.Set("amount", args[0])
		return runAction(cmd, actionSpec{
			title: "Unstake BYFN",
			form:  form,
			run: func(ctx context.Context, g *txflow.Group, onSuccess func()) error {
				return g.Unstake(ctx, form.Get("amount"), onSuccess)
			},
		})
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim staking rewards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, actionSpec{
			title: "Claim rewards",
			form:  ui.NewForm(),
			run: func(ctx context.Context, g *txflow.Group, onSuccess func()) error {
				return g.Claim(ctx, onSuccess)
			},
		})
	},
}

var stakingStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show staked balance, rewards and tier",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := readContext(cmd)
		defer cancel()
		e, err := openEnv(ctx, false)
		if err != nil {
			return err
		}
		owner, err := e.owner()
		if err != nil {
			return err
		}

		spin := ui.NewSpinner("Reading staking position...")
		spin.Start()
		pos, err := e.reader.StakingPosition(ctx, owner)
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock("Staking · "+ui.TruncateAddr(owner.Hex()), [][2]string{
			{"Staked", byfn(pos.Staked)},
			{"Earned", byfn(pos.Earned)},
			{"Total staked", byfn(pos.TotalStaked)},
			{"Tier", tierLabel(pos.Tier)},
		}))
		if next, missing, ok := txflow.NextTier(pos.Staked); ok {
			fmt.Println(ui.Hint(fmt.Sprintf("Stake %s more to reach %s.", byfn(missing), next.Name)))
		}
		fmt.Println()
		fmt.Println(tierTable(pos.Tier))
		return nil
	},
}

// byfn formats a BYFN base-unit amount for display.
func byfn(v *big.Int) string {
	return contract.FormatUnits(v, config.DecimalsBYFN, 4) + " BYFN"
}

func tierLabel(level uint8) string {
	t, ok := txflow.TierByLevel(level)
	if !ok {
		return ui.Meta("None")
	}
	return ui.TierBadge(t.Name, t.Color)
}

// tierTable renders every tier with its minimum stake, marking the current one.
func tierTable(current uint8) string {
	t := ui.NewTable([]ui.Column{
		{Title: "Tier", Width: 12},
		{Title: "Min stake", Width: 14, Right: true},
		{Title: "Benefits", Width: 60},
	})
	for i, tier := range txflow.Tiers {
		t.AddRow(ui.Row{
			ui.TierBadge(tier.Name, tier.Color),
			fmt.Sprintf("%d BYFN", tier.MinStake),
			strings.Join(tier.Benefits, ", "),
		})
		if tier.Level == current {
			t.Mark(i)
		}
	}
	return t.Render()
}

func init() {
	stakingCmd.AddCommand(stakeCmd, unstakeCmd, claimCmd, stakingStatusCmd)
}
