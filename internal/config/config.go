package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

const (
	configFile  = "config.json"
	walletsFile = "wallets.json"

	alchemyKeyEnv = "BYFIN_ALCHEMY_KEY"
)

// Errors.
var (
	ErrUnknownContract       = errors.New("unknown contract name")
	ErrContractNotConfigured = errors.New("contract address not configured")
	ErrInvalidAddress        = errors.New("invalid contract address")
	ErrInvalidWaitMode       = errors.New("invalid wait mode")
)

// Load reads config from dir (or creates defaults). dir defaults to ~/.byfin.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".byfin")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.Contracts == nil {
		cfg.Contracts = make(map[string]string)
	}
	if cfg.WaitMode == "" {
		cfg.WaitMode = WaitModeConfirm
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = DefaultChainID
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	return saveJSON(filepath.Join(c.configDir, configFile), c)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the path of the wallet store inside the config dir.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// RPCEndpoint returns the configured RPC URL. Without one, an Alchemy endpoint
// is used when BYFIN_ALCHEMY_KEY is set, else the public Base Sepolia RPC.
func (c *Config) RPCEndpoint() string {
	if c.RPCURL != "" {
		return c.RPCURL
	}
	if key := os.Getenv(alchemyKeyEnv); key != "" {
		return fmt.Sprintf(alchemyURLFormat, key)
	}
	return DefaultRPCURL
}

// Endpoints returns every RPC candidate without duplicates: the primary
// endpoint, the configured fallbacks, then the public Base Sepolia RPC.
func (c *Config) Endpoints() []string {
	var out []string
	for _, u := range append(append([]string{c.RPCEndpoint()}, c.RPCFallbacks...), DefaultRPCURL) {
		if u != "" && !slices.Contains(out, u) {
			out = append(out, u)
		}
	}
	return out
}

// EtherscanKey returns the Etherscan V2 API key from the environment, or "".
func (c *Config) EtherscanKey() string {
	return os.Getenv(etherscanKeyEnv)
}

// ExplorerURL returns the block explorer base URL.
func (c *Config) ExplorerURL() string {
	if c.Explorer != "" {
		return c.Explorer
	}
	return DefaultExplorer
}

// SetContract records the address of a logical contract.
func (c *Config) SetContract(name, addr string) error {
	if !slices.Contains(ContractNames, name) {
		return fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownContract, name, ContractNames)
	}
	if !common.IsHexAddress(addr) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	if c.Contracts == nil {
		c.Contracts = make(map[string]string)
	}
	c.Contracts[name] = common.HexToAddress(addr).Hex()
	return nil
}

// ContractAddress resolves a logical contract name to its address.
func (c *Config) ContractAddress(name string) (common.Address, error) {
	if !slices.Contains(ContractNames, name) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrUnknownContract, name)
	}
	addr, ok := c.Contracts[name]
	if !ok || addr == "" {
		return common.Address{}, fmt.Errorf("%w: %s (set it with: byfin config set-contract %s <address>)",
			ErrContractNotConfigured, name, name)
	}
	if !common.IsHexAddress(addr) {
		return common.Address{}, fmt.Errorf("%w: %s=%q", ErrInvalidAddress, name, addr)
	}
	return common.HexToAddress(addr), nil
}

// SetWaitMode switches between confirmation-aware and legacy sequencing.
func (c *Config) SetWaitMode(mode string) error {
	switch mode {
	case WaitModeConfirm, WaitModeLegacy:
		c.WaitMode = mode
		return nil
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidWaitMode, mode, WaitModeConfirm, WaitModeLegacy)
	}
}

// WaitForIntermediate reports whether dependent steps wait for the
// prerequisite's receipt.
func (c *Config) WaitForIntermediate() bool {
	return c.WaitMode != WaitModeLegacy
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		ChainID:   DefaultChainID,
		WaitMode:  WaitModeConfirm,
		Contracts: make(map[string]string),
		configDir: dir,
	}
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
