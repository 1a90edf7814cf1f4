package cmd

import (
	"context"
	"fmt"

	"github.com/TechyByFin/byfin-dashboard/internal/chain"
	"github.com/TechyByFin/byfin-dashboard/internal/config"
	"github.com/TechyByFin/byfin-dashboard/internal/contract"
	"github.com/TechyByFin/byfin-dashboard/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	portfolioLive bool
	portfolioOpen bool
)

var portfolioCmd = &cobra.Command{
	Use:     "portfolio",
	Aliases: []string{"pf"},
	Short:   "Show BYFN, USDC and staking balances",
	Long: `Show the balances of the selected wallet.

With --live a dashboard refreshes every 15 seconds; press r to refresh now
and q to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := readContext(cmd)
		e, err := openEnv(ctx, false)
		cancel()
		if err != nil {
			return err
		}
		owner, err := e.owner()
		if err != nil {
			return err
		}

		fetch := func() (*ui.PortfolioSnapshot, error) {
			ctx, cancel := readContext(cmd)
			defer cancel()
			return fetchPortfolio(ctx, e.reader, e.net, owner)
		}

		if portfolioLive {
			_, err := ui.NewDashboard(config.DashboardInterval, fetch).Run()
			return err
		}

		spin := ui.NewSpinner("Reading balances...")
		spin.Start()
		snap, err := fetch()
		spin.Stop()
		if err != nil {
			return err
		}
		fmt.Println(renderSnapshot(snap))
		fmt.Println(ui.Link("Explorer", e.net.AddressURL(owner.Hex())))
		if portfolioOpen {
			ui.OpenURL(e.net.AddressURL(owner.Hex()))
		}
		return nil
	},
}

func fetchPortfolio(ctx context.Context, r *contract.Reader, net chain.Network, owner common.Address) (*ui.PortfolioSnapshot, error) {
	p, err := r.Portfolio(ctx, owner)
	if err != nil {
		return nil, err
	}
	pos, err := r.StakingPosition(ctx, owner)
	if err != nil {
		return nil, err
	}
	return portfolioSnapshot(p, pos.Tier, net, owner), nil
}

func portfolioSnapshot(p *contract.Portfolio, tier uint8, net chain.Network, owner common.Address) *ui.PortfolioSnapshot {
	return &ui.PortfolioSnapshot{
		Account: ui.TruncateAddr(owner.Hex()),
		Network: net.Name,
		Tier:    tierLabel(tier),
		Entries: []ui.PortfolioEntry{
			{Asset: net.NativeCurrency, Balance: contract.FormatUnits(p.ETH, 18, 6), Note: "gas"},
			{Asset: "BYFN", Balance: contract.FormatUnits(p.BYFN, config.DecimalsBYFN, 4), Note: "wallet"},
			{Asset: "USDC", Balance: contract.FormatUnits(p.USDC, config.DecimalsUSDC, 2), Note: "wallet"},
			{Asset: "BYFN", Balance: contract.FormatUnits(p.Staked, config.DecimalsBYFN, 4), Note: "staked"},
			{Asset: "BYFN", Balance: contract.FormatUnits(p.Earned, config.DecimalsBYFN, 4), Note: "rewards"},
		},
	}
}

func renderSnapshot(s *ui.PortfolioSnapshot) string {
	t := ui.NewTable([]ui.Column{
		{Title: "Asset", Width: 8},
		{Title: "Balance", Width: 22, Right: true},
		{Title: "", Width: 10},
	})
	for _, e := range s.Entries {
		t.AddRow(ui.Row{e.Asset, e.Balance, ui.Meta(e.Note)})
	}
	header := ui.Addr(s.Account) + "  " + ui.Network(s.Network) + "  " + s.Tier
	return header + "\n\n" + t.Render()
}

func init() {
	portfolioCmd.Flags().BoolVar(&portfolioLive, "live", false, "refresh in a live dashboard")
	portfolioCmd.Flags().BoolVar(&portfolioOpen, "open", false, "open the account in the block explorer")
}
