package chain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/TechyByFin/byfin-dashboard/internal/config"
)

// ErrChainMismatch is returned when the RPC endpoint serves another chain.
var ErrChainMismatch = errors.New("RPC endpoint serves a different chain")

// Network holds the metadata byfin needs about the target chain.
type Network struct {
	Name           string
	ChainID        int64
	NativeCurrency string
	Explorer       string
}

// FromConfig builds the target network from the loaded configuration.
func FromConfig(cfg *config.Config) Network {
	name := "Base Sepolia"
	if cfg.ChainID != config.DefaultChainID {
		name = fmt.Sprintf("chain %d", cfg.ChainID)
	}
	return Network{
		Name:           name,
		ChainID:        cfg.ChainID,
		NativeCurrency: "ETH",
		Explorer:       strings.TrimRight(cfg.ExplorerURL(), "/"),
	}
}

// TxURL returns the explorer page for a transaction hash.
func (n Network) TxURL(hash string) string {
	return n.Explorer + "/tx/" + hash
}

// AddressURL returns the explorer page for an address.
func (n Network) AddressURL(addr string) string {
	return n.Explorer + "/address/" + addr
}

// CheckChainID verifies that the endpoint reports the expected chain id.
func (n Network) CheckChainID(got *big.Int) error {
	if got == nil || got.Cmp(big.NewInt(n.ChainID)) != 0 {
		return fmt.Errorf("%w: expected %d, got %v", ErrChainMismatch, n.ChainID, got)
	}
	return nil
}
