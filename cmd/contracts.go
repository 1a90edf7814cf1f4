package cmd

import (
	"fmt"
	"strings"

	"github.com/TechyByFin/byfin-dashboard/internal/chain"
	"github.com/TechyByFin/byfin-dashboard/internal/config"
	"github.com/TechyByFin/byfin-dashboard/internal/contract"
	"github.com/TechyByFin/byfin-dashboard/internal/ui"
	"github.com/spf13/cobra"
)

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "Show the contract address book and the write methods byfin calls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n := chain.FromConfig(cfg)
		book := ui.NewTable([]ui.Column{
			{Title: "Contract", Width: 10},
			{Title: "Address", Width: 44},
		})
		for _, name := range config.ContractNames {
			addr, err := cfg.ContractAddress(name)
			cell := ui.Meta("not configured")
			if err == nil {
				cell = ui.Addr(addr.Hex())
			}
			book.AddRow(ui.Row{name, cell})
		}
		fmt.Println(book.Render())
		if addr, err := cfg.ContractAddress(config.ContractMarket); err == nil {
			fmt.Println(ui.Link("Market", n.AddressURL(addr.Hex())))
		}
		fmt.Println()

		for _, b := range contract.AllBuiltins() {
			fmt.Println(ui.KeyValueBlock(b.Name+" · "+b.Description, methodRows(b)))
		}
		return nil
	},
}

// methodRows lists the write methods of a built-in with their selectors.
func methodRows(b contract.Builtin) [][2]string {
	var rows [][2]string
	for _, m := range contract.WriteMethods(&b.ABI) {
		sig := strings.ReplaceAll(m.Sig, ",", ", ")
		rows = append(rows, [2]string{contract.Selector(m.Sig), sig})
	}
	return rows
}
