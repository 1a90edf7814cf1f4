package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
const (
	GasLimitApprove      = uint64(60_000)  // ERC-20 approve / ERC-1155 setApprovalForAll
	GasLimitContractCall = uint64(250_000) // stake, createListing, sellToProtocol, buyListing
)

// Timeouts and intervals used by the chain client and the orchestrator.
const (
	RPCTimeout          = 15 * time.Second
	ReceiptPollInterval = 2 * time.Second
	DashboardInterval   = 15 * time.Second
)

// Token decimals as declared by the deployed contracts.
const (
	DecimalsBYFN = 18
	DecimalsUSDC = 6
)

// Base Sepolia, the only network the dashboard targets.
const (
	DefaultChainID  = int64(84532)
	DefaultRPCURL   = "https://sepolia.base.org"
	DefaultExplorer = "https://sepolia.basescan.org"

	DefaultBlockscoutAPI = "https://base-sepolia.blockscout.com/api"
	EtherscanAPI         = "https://api.etherscan.io/v2/api"

	alchemyURLFormat = "https://base-sepolia.g.alchemy.com/v2/%s"
	etherscanKeyEnv  = "BYFIN_ETHERSCAN_KEY"
)
