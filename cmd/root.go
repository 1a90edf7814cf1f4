package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/TechyByFin/byfin-dashboard/internal/config"
	"github.com/TechyByFin/byfin-dashboard/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/TechyByFin/byfin-dashboard/cmd.Version=0.2.0" .
var Version = "0.1.0"

var (
	cfgDir     string
	cfg        *config.Config
	logger     = zap.NewNop()
	verbose    bool
	walletFlag string
	assumeYes  bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "byfin",
	Short: "ByFin dashboard in your terminal",
	Long: `byfin: stake BYFN, trade tokenized real-world assets and invest in
launchpad offerings on Base Sepolia from the terminal.

Multi-step actions (approve, then stake / list / sell) run through one
orchestrator. With wait mode "confirm" (default) every approval is mined
before the dependent call is sent; "legacy" submits them back to back.
Persist with: byfin config set-wait-mode <confirm|legacy>`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			l, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			logger = l
		}
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		}
		os.Exit(1)
	}
}

func init() {
	// BYFIN_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("BYFIN_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.byfin)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every step to stderr")
	rootCmd.PersistentFlags().StringVarP(&walletFlag, "wallet", "w", "", "wallet name (default: config)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompts")

	// Register all sub-commands.
	rootCmd.AddCommand(
		initCmd,
		networkCmd,
		walletCmd,
		configCmd,
		contractsCmd,
		portfolioCmd,
		stakingCmd,
		marketCmd,
		launchpadCmd,
		historyCmd,
	)
}
