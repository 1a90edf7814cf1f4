package cmd

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/TechyByFin/byfin-dashboard/internal/chain"
	"github.com/TechyByFin/byfin-dashboard/internal/config"
	"github.com/TechyByFin/byfin-dashboard/internal/rpc"
	"github.com/TechyByFin/byfin-dashboard/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Inspect the target network",
}

var networkInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the configured network",
	RunE: func(cmd *cobra.Command, args []string) error {
		n := chain.FromConfig(cfg)
		fmt.Println(ui.KeyValueBlock("Network", [][2]string{
			{"Name", n.Name},
			{"Chain ID", fmt.Sprintf("%d", n.ChainID)},
			{"Currency", n.NativeCurrency},
			{"RPC", cfg.RPCEndpoint()},
			{"Explorer", n.Explorer},
		}))
		return nil
	},
}

var networkPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Probe every RPC endpoint: latency, head block and chain id",
	RunE: func(cmd *cobra.Command, args []string) error {
		n := chain.FromConfig(cfg)
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCTimeout)
		defer cancel()

		spin := ui.NewSpinner("Probing RPC endpoints...")
		spin.Start()
		endpoints := rpc.Probe(ctx, cfg.Endpoints(), rpc.EVMPing)
		best, err := rpc.Best(endpoints)
		var id *big.Int
		if err == nil {
			id, err = chain.NewEVMClient(best.URL).ChainID(ctx)
		}
		spin.Stop()

		fmt.Println(endpointTable(endpoints, best))
		if err != nil {
			return err
		}
		if err := n.CheckChainID(id); err != nil {
			fmt.Println(ui.Warn(err.Error()))
			return nil
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s reachable via %s", n.Name, best.URL)))
		return nil
	},
}

func endpointTable(endpoints []rpc.Endpoint, best *rpc.Endpoint) string {
	var head uint64
	for _, e := range endpoints {
		head = max(head, e.BlockNumber)
	}
	t := ui.NewTable([]ui.Column{
		{Title: "Endpoint", Width: 48},
		{Title: "Latency", Width: 10, Right: true},
		{Title: "Block", Width: 12, Right: true},
		{Title: "Status", Width: 10},
	})
	for i, e := range endpoints {
		status := ui.StyleSuccess.Render("ok")
		switch {
		case !e.Healthy():
			status = ui.StyleError.Render("down")
		case rpc.Stale(e, head):
			status = ui.StyleWarning.Render("stale")
		}
		latency, block := "-", "-"
		if e.Healthy() {
			latency = e.Latency.Round(time.Millisecond).String()
			block = fmt.Sprintf("%d", e.BlockNumber)
		}
		t.AddRow(ui.Row{e.URL, latency, block, status})
		if best != nil && e.URL == best.URL {
			t.Mark(i)
		}
	}
	return t.Render()
}

func init() {
	networkCmd.AddCommand(networkInfoCmd, networkPingCmd)
}
