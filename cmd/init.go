package cmd

import (
	"fmt"

	"github.com/TechyByFin/byfin-dashboard/internal/config"
	"github.com/TechyByFin/byfin-dashboard/internal/ui"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long:  "Launch the interactive setup wizard to configure contracts, wait mode and a wallet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Banner())

		result, err := ui.RunWizard(ui.SetupQuestions(
			[]string{config.WaitModeConfirm, config.WaitModeLegacy},
			config.ContractNames,
		))
		if err != nil {
			return err
		}
		if result == nil {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := applyWizard(cfg, result); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		if result.WalletAddress != "" {
			mgr := newWalletManager()
			if _, err := mgr.AddWatchOnly(result.WalletName, result.WalletAddress); err != nil {
				fmt.Println(ui.Warn(fmt.Sprintf("Could not add wallet: %v", err)))
			} else if err := mgr.SetDefault(result.WalletName); err != nil {
				fmt.Println(ui.Warn(fmt.Sprintf("Could not set default wallet: %v", err)))
			}
		}

		fmt.Println(ui.Success("byfin configured! Run `byfin --help` to explore commands."))
		return nil
	},
}

// applyWizard copies the wizard answers into c. Skipped answers keep the
// current values.
func applyWizard(c *config.Config, r *ui.WizardResult) error {
	if r.WaitMode != "" {
		if err := c.SetWaitMode(r.WaitMode); err != nil {
			return err
		}
	}
	for name, addr := range r.Contracts {
		if err := c.SetContract(name, addr); err != nil {
			return err
		}
	}
	return nil
}
