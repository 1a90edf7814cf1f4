package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/TechyByFin/byfin-dashboard/internal/contract"
	"github.com/TechyByFin/byfin-dashboard/internal/txflow"
	"github.com/TechyByFin/byfin-dashboard/internal/ui"
	"github.com/spf13/cobra"
)

// maxListings is how many listing ids the market view scans.
const maxListings = 10

var marketCmd = &cobra.Command{
	Use:     "market",
	Aliases: []string{"mkt"},
	Short:   "Trade OPR asset tokens on the secondary market",
}

var marketListingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Show market parameters and active listings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := readContext(cmd)
		defer cancel()
		e, err := openEnv(ctx, false)
		if err != nil {
			return err
		}

		spin := ui.NewSpinner("Reading market...")
		spin.Start()
		stats, listings, err := readMarket(ctx, e.reader)
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock("OPR Market", [][2]string{
			{"Listings", strconv.FormatUint(stats.ListingCount, 10)},
			{"Fee", stats.FeePercent.String() + "%"},
			{"Spread", contract.FormatBps(stats.SpreadBps)},
		}))
		if len(listings) == 0 {
			fmt.Println(ui.Info("No active listings."))
			return nil
		}
		fmt.Println(listingTable(listings))
		return nil
	},
}

var marketListCmd = &cobra.Command{
	Use:   "list <token-id> <amount>",
	Short: "Approve the vault and create a listing",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		form := ui.NewForm("token id", "amount")
		form.Set("token id", args[0])
		form.Set("amount", args[1])
		return runAction(cmd, actionSpec{
			title: "Create listing",
			form:  form,
			run: func(ctx context.Context, g *txflow.Group, onSuccess func()) error {
				return g.CreateListing(ctx, form.Get("token id"), form.Get("amount"), onSuccess)
			},
		})
	},
}

var marketSellCmd = &cobra.Command{
	Use:   "sell <token-id> <amount>",
	Short: "Approve the vault and sell to the protocol for USDC",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		form := ui.NewForm("token id", "amount")
		form.Set("token id", args[0])
		form.Set("amount", args[1])
		return runAction(cmd, actionSpec{
			title: "Instant sell",
			form:  form,
			run: func(ctx context.Context, g *txflow.Group, onSuccess func()) error {
				return g.InstantSell(ctx, form.Get("token id"), form.Get("amount"), onSuccess)
			},
		})
	},
}

var marketBuyCmd = &cobra.Command{
	Use:   "buy [listing-id]",
	Short: "Buy a listing with USDC",
	Long: `Buy a listing with USDC. Without an id, pick one of the active listings
interactively.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) == 1 {
			id = args[0]
		} else {
			picked, err := pickListing(cmd)
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			id = picked
		}

		form := ui.NewForm("listing id")
		form.Set("listing id", id)
		return runAction(cmd, actionSpec{
			title: "Buy listing #" + id,
			form:  form,
			run: func(ctx context.Context, g *txflow.Group, onSuccess func()) error {
				return g.BuyListing(ctx, form.Get("listing id"), onSuccess)
			},
		})
	},
}

func readMarket(ctx context.Context, r *contract.Reader) (*contract.MarketStats, []contract.Listing, error) {
	stats, err := r.MarketStats(ctx)
	if err != nil {
		return nil, nil, err
	}
	listings, err := r.ActiveListings(ctx, stats.ListingCount, maxListings)
	if err != nil {
		return nil, nil, err
	}
	return stats, listings, nil
}

func listingTable(listings []contract.Listing) string {
	t := ui.NewTable([]ui.Column{
		{Title: "ID", Width: 5, Right: true},
		{Title: "Seller", Width: 14},
		{Title: "Token", Width: 7, Right: true},
		{Title: "Amount", Width: 10, Right: true},
		{Title: "Floor (USDC)", Width: 14, Right: true},
	})
	for _, l := range listings {
		t.AddRow(ui.Row{
			strconv.FormatUint(l.ID, 10),
			contract.ShortenAddress(l.Seller),
			l.TokenID.String(),
			l.Amount.String(),
			contract.FormatUnits(l.FloorPrice, 18, 4),
		})
	}
	return t.Render()
}

func listingItems(listings []contract.Listing) []ui.PickerItem {
	items := make([]ui.PickerItem, len(listings))
	for i, l := range listings {
		items[i] = ui.PickerItem{
			Label: fmt.Sprintf("#%d  token %s × %s", l.ID, l.TokenID, l.Amount),
			SubLabel: fmt.Sprintf("floor %s USDC · %s",
				contract.FormatUnits(l.FloorPrice, 18, 4), contract.ShortenAddress(l.Seller)),
			Value: strconv.FormatUint(l.ID, 10),
		}
	}
	return items
}

func pickListing(cmd *cobra.Command) (string, error) {
	ctx, cancel := readContext(cmd)
	defer cancel()
	e, err := openEnv(ctx, false)
	if err != nil {
		return "", err
	}
	_, listings, err := readMarket(ctx, e.reader)
	if err != nil {
		return "", err
	}
	return ui.PickItem("Buy listing  ·  select to continue", listingItems(listings))
}

func init() {
	marketCmd.AddCommand(marketListingsCmd, marketListCmd, marketSellCmd, marketBuyCmd)
}
