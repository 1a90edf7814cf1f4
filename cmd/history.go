package cmd

import (
	"errors"
	"fmt"

	"github.com/TechyByFin/byfin-dashboard/internal/chain"
	"github.com/TechyByFin/byfin-dashboard/internal/contract"
	"github.com/TechyByFin/byfin-dashboard/internal/providers"
	"github.com/TechyByFin/byfin-dashboard/internal/ui"
	"github.com/TechyByFin/byfin-dashboard/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	historyCount int
	historyAll   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent ByFin transactions of the selected wallet",
	Long: `List the wallet's recent transactions from the block explorer, with the
ByFin method each one called. Only calls to the configured ByFin contracts are
shown unless --all is set.

Etherscan V2 is used when BYFIN_ETHERSCAN_KEY is set, Blockscout otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, _, err := resolveSession(false)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("%w\n  Add one with: byfin wallet add <name> <address>", wallet.ErrNoWallet)
		}
		owner := common.HexToAddress(w.Address)
		book, err := contract.LoadBook(cfg)
		if err != nil {
			return err
		}
		net := chain.FromConfig(cfg)

		ctx, cancel := readContext(cmd)
		defer cancel()

		reg := providers.BuildRegistry(cfg)
		spin := ui.NewSpinner("Fetching history...")
		spin.Start()
		res, err := reg.Transactions(ctx, owner, historyCount)
		spin.Stop()
		for _, warn := range res.Warnings {
			logger.Sugar().Debugw("history provider", "warning", warn)
		}
		if errors.Is(err, providers.ErrAllFailed) {
			for _, warn := range res.Warnings {
				fmt.Println(ui.Warn(warn))
			}
			return err
		}

		rows := historyRows(res.Txs, book, historyAll)
		if len(rows) == 0 {
			fmt.Println(ui.Info("No ByFin transactions found."))
			return nil
		}
		t := ui.NewTable([]ui.Column{
			{Title: "Time", Width: 16},
			{Title: "Contract", Width: 10},
			{Title: "Method", Width: 18},
			{Title: "Status", Width: 8},
			{Title: "Hash", Width: 14},
		})
		for _, r := range rows {
			t.AddRow(r)
		}
		t.Caption = "source: " + res.Source
		fmt.Println(t.Render())
		fmt.Println(ui.Link("Explorer", net.AddressURL(owner.Hex())))
		return nil
	},
}

// historyRows renders transactions to table rows. Unless all is set, only
// calls to contracts of the book are kept.
func historyRows(txs []providers.Tx, book contract.Book, all bool) []ui.Row {
	var rows []ui.Row
	for _, tx := range txs {
		target, known := book.NameOf(tx.To)
		if !known && !all {
			continue
		}
		if !known {
			target = contract.ShortenAddress(tx.To)
		}
		method := "transfer"
		if _, m, ok := contract.MethodByData(tx.Input); ok {
			method = m.Name
		} else if len(tx.Input) >= 4 {
			method = fmt.Sprintf("0x%x", tx.Input[:4])
		}
		status := ui.StyleSuccess.Render("ok")
		if tx.Failed {
			status = ui.StyleError.Render("failed")
		}
		rows = append(rows, ui.Row{
			tx.Time.Format("2006-01-02 15:04"),
			target,
			method,
			status,
			ui.TruncateAddr(tx.Hash.Hex()),
		})
	}
	return rows
}

func init() {
	historyCmd.Flags().IntVarP(&historyCount, "count", "n", 20, "number of transactions to fetch")
	historyCmd.Flags().BoolVar(&historyAll, "all", false, "include transactions to other contracts")
}
