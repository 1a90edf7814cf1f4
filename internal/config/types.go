package config

// Wait modes select how the orchestrator sequences dependent steps.
const (
	WaitModeConfirm = "confirm" // wait for each intermediate receipt before the next step
	WaitModeLegacy  = "legacy"  // submit the next step as soon as the previous one is broadcast
)

// Logical contract names used in the address book.
const (
	ContractToken     = "token"
	ContractUSDC      = "usdc"
	ContractStaking   = "staking"
	ContractMarket    = "market"
	ContractVault     = "vault"
	ContractLaunchpad = "launchpad"
)

// ContractNames lists every logical contract in display order.
var ContractNames = []string{
	ContractToken,
	ContractUSDC,
	ContractVault,
	ContractStaking,
	ContractMarket,
	ContractLaunchpad,
}

// Config holds all byfin configuration.
type Config struct {
	RPCURL        string            `json:"rpc_url"`
	RPCFallbacks  []string          `json:"rpc_fallbacks,omitempty"` // probed together with RPCURL
	ChainID       int64             `json:"chain_id"`
	Explorer      string            `json:"explorer"`
	DefaultWallet string            `json:"default_wallet"`
	WaitMode      string            `json:"wait_mode"`             // "confirm" | "legacy"
	ConfirmFinal  bool              `json:"confirm_final"`         // also wait for the last step's receipt
	Contracts     map[string]string `json:"contracts"`             // logical name -> 0x address
	SyncSource    string            `json:"sync_source,omitempty"` // deployments manifest URL
	LastSynced    string            `json:"last_synced,omitempty"` // RFC 3339

	// internal: config dir path used for Save()
	configDir string
}
