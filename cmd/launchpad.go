package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/TechyByFin/byfin-dashboard/internal/txflow"
	"github.com/TechyByFin/byfin-dashboard/internal/ui"
	"github.com/spf13/cobra"
)

var investOffering int

var launchpadCmd = &cobra.Command{
	Use:     "launchpad",
	Aliases: []string{"lp"},
	Short:   "Invest in tokenized real-world asset offerings",
}

var launchpadOfferingsCmd = &cobra.Command{
	Use:   "offerings",
	Short: "List launchpad offerings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(offeringTable(txflow.Offerings))
		return nil
	},
}

var launchpadInvestCmd = &cobra.Command{
	Use:   "invest <amount>",
	Short: "Approve USDC for an offering",
	Long: `Approve the launchpad to spend <amount> USDC for an active offering.
Without --offering, pick one interactively.

Example:
  byfin launchpad invest 250 --offering 1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := investOffering
		if id == 0 {
			picked, err := ui.PickItem("Invest  ·  select an offering", offeringItems(txflow.Offerings))
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			id, _ = strconv.Atoi(picked)
		}
		offering, err := txflow.OfferingByID(id)
		if err != nil {
			return err
		}

		form := ui.NewForm("amount (USDC)")
		form.Set("amount (USDC)", args[0])
		return runAction(cmd, actionSpec{
			title: "Invest in " + offering.Symbol,
			form:  form,
			run: func(ctx context.Context, g *txflow.Group, onSuccess func()) error {
				return g.Invest(ctx, offering.ID, form.Get("amount (USDC)"), onSuccess)
			},
		})
	},
}

func offeringTable(offerings []txflow.Offering) string {
	t := ui.NewTable([]ui.Column{
		{Title: "#", Width: 2},
		{Title: "Offering", Width: 34},
		{Title: "Symbol", Width: 9},
		{Title: "Yield", Width: 6, Right: true},
		{Title: "Maturity", Width: 10},
		{Title: "Raised", Width: 25},
		{Title: "Status", Width: 9},
	})
	for _, o := range offerings {
		status := ui.StyleSuccess.Render(o.Status)
		if o.Status != txflow.StatusActive {
			status = ui.Meta(o.Status)
		}
		t.AddRow(ui.Row{
			strconv.Itoa(o.ID),
			o.Name,
			o.Symbol,
			o.Yield,
			o.Maturity,
			ui.ProgressBar(o.RaisedPct, 20),
			status,
		})
	}
	return t.Render()
}

func offeringItems(offerings []txflow.Offering) []ui.PickerItem {
	items := make([]ui.PickerItem, len(offerings))
	for i, o := range offerings {
		sub := fmt.Sprintf("%s · %s yield · min %s", o.Symbol, o.Yield, o.MinInvest)
		if o.Status != txflow.StatusActive {
			sub += " · " + o.Status
		}
		items[i] = ui.PickerItem{
			Label:    o.Name,
			SubLabel: sub,
			Value:    strconv.Itoa(o.ID),
			Disabled: o.Status != txflow.StatusActive,
		}
	}
	return items
}

func init() {
	launchpadInvestCmd.Flags().IntVar(&investOffering, "offering", 0, "offering id (see `byfin launchpad offerings`)")
	launchpadCmd.AddCommand(launchpadOfferingsCmd, launchpadInvestCmd)
}
