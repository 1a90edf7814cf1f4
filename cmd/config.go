package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/TechyByFin/byfin-dashboard/internal/config"
	deploysync "github.com/TechyByFin/byfin-dashboard/internal/sync"
	"github.com/TechyByFin/byfin-dashboard/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		fmt.Println(ui.Meta("RPC endpoint:     " + cfg.RPCEndpoint()))
		for _, name := range config.ContractNames {
			if _, err := cfg.ContractAddress(name); err != nil {
				fmt.Println(ui.Warn(fmt.Sprintf("%s contract not configured", name)))
			}
		}
		return nil
	},
}

var configSetRPCCmd = &cobra.Command{
	Use:   "set-rpc <url>",
	Short: "Override the Base Sepolia RPC endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.RPCURL = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("RPC set to " + args[0]))
		return nil
	},
}

var configSetContractCmd = &cobra.Command{
	Use:   "set-contract <name> <address>",
	Short: "Set a contract address (token, usdc, vault, staking, market, launchpad)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.SetContract(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s contract set to %s", args[0], ui.Addr(cfg.Contracts[args[0]]))))
		return nil
	},
}

var configSetWaitModeCmd = &cobra.Command{
	Use:   "set-wait-mode <confirm|legacy>",
	Short: "Choose how approve-then-act flows are sequenced",
	Long: `confirm  wait for every approval to be mined before sending the dependent call
legacy   send the dependent call as soon as the approval is broadcast`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.SetWaitMode(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Wait mode set to " + cfg.WaitMode))
		return nil
	},
}

var configSetConfirmFinalCmd = &cobra.Command{
	Use:   "set-confirm-final <true|false>",
	Short: "Also wait for the last step's receipt before reporting success",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseBool(args[0])
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", args[0])
		}
		cfg.ConfirmFinal = v
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Confirm final step: %t", v)))
		return nil
	},
}

var configSyncCmd = &cobra.Command{
	Use:   "sync [manifest-url]",
	Short: "Pull contract addresses from a deployments manifest",
	Long: `Fetch a deployments.json manifest and record the addresses listed for the
configured chain id. A URL given here becomes the saved sync source.

Manifest format:
  {"contracts": {"staking": {"84532": {"address": "0x..."}}}}`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := deploysync.New(cfg, deploysync.WithLogger(logger))
		if len(args) == 1 {
			if err := s.SetSource(args[0]); err != nil {
				return err
			}
		}
		ctx, cancel := readContext(cmd)
		defer cancel()

		spin := ui.NewSpinner("Fetching manifest...")
		spin.Start()
		rep, err := s.Run(ctx)
		spin.Stop()
		if err != nil {
			return err
		}
		fmt.Println(syncSummary(rep))
		return nil
	},
}

func syncSummary(rep *deploysync.Report) string {
	if len(rep.Updated)+len(rep.Unchanged)+len(rep.Skipped) == 0 {
		return ui.Info(fmt.Sprintf("Manifest lists no contracts for chain %d.", cfg.ChainID))
	}
	var lines []string
	for _, name := range rep.Updated {
		lines = append(lines, ui.Success(fmt.Sprintf("%s -> %s", name, cfg.Contracts[name])))
	}
	for _, name := range rep.Unchanged {
		lines = append(lines, ui.Meta(name+" unchanged"))
	}
	for _, name := range rep.Skipped {
		lines = append(lines, ui.Warn(name+" skipped (unknown name or bad address)"))
	}
	return strings.Join(lines, "\n")
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetRPCCmd, configSetContractCmd, configSetWaitModeCmd, configSetConfirmFinalCmd, configSyncCmd)
}
