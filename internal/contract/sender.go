package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/TechyByFin/byfin-dashboard/internal/chain"
	"github.com/TechyByFin/byfin-dashboard/internal/config"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Errors.
var (
	ErrUnknownMethod = errors.New("method not found in ABI")
	ErrReadMethod    = errors.New("method is not a write function")
)

// WriteBackend is the subset of the JSON-RPC client a Sender needs.
type WriteBackend interface {
	GasPrice(ctx context.Context) (*big.Int, error)
	PendingNonce(ctx context.Context, addr common.Address) (uint64, error)
	EstimateGas(ctx context.Context, from, to common.Address, data []byte) (uint64, error)
	SendRawTransaction(ctx context.Context, rawTx []byte) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*chain.TxReceipt, error)
}

// TxSigner signs transactions for one address.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error)
}

// Sender submits write transactions to contracts and waits for their receipts.
type Sender struct {
	backend      WriteBackend
	signer       TxSigner
	chainID      *big.Int
	pollInterval time.Duration
	gasFallback  bool
}

// NewSender creates a Sender.
func NewSender(backend WriteBackend, signer TxSigner, chainID *big.Int) *Sender {
	return &Sender{
		backend:      backend,
		signer:       signer,
		chainID:      chainID,
		pollInterval: config.ReceiptPollInterval,
	}
}

// WithPollInterval overrides the receipt polling interval.
func (s *Sender) WithPollInterval(d time.Duration) *Sender {
	s.pollInterval = d
	return s
}

// WithGasFallback makes Submit use a fixed gas limit when estimation fails.
// Only legacy sequencing needs it: a dependent step broadcast before its
// approval is mined cannot be simulated. Otherwise a failed estimate is the
// revert the transaction would hit on chain and Submit returns it.
func (s *Sender) WithGasFallback(on bool) *Sender {
	s.gasFallback = on
	return s
}

// Submit packs method(args...) against iface, signs it and broadcasts it to
// contractAddr. It returns the transaction hash as soon as the node accepts
// the transaction.
func (s *Sender) Submit(ctx context.Context, contractAddr common.Address, iface *abi.ABI, method string, args ...interface{}) (common.Hash, error) {
	m, ok := iface.Methods[method]
	if !ok {
		return common.Hash{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if m.IsConstant() {
		return common.Hash{}, fmt.Errorf("%w: %q (stateMutability: %s)", ErrReadMethod, method, m.StateMutability)
	}

	calldata, err := iface.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding call: %w", err)
	}

	from := s.signer.Address()

	gas, err := s.backend.EstimateGas(ctx, from, contractAddr, calldata)
	switch {
	case err == nil:
		gas += gas / 5
	case s.gasFallback:
		gas = fallbackGas(method)
	default:
		return common.Hash{}, fmt.Errorf("estimating gas: %w", err)
	}

	gasPrice, err := s.backend.GasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := s.backend.PendingNonce(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &contractAddr,
		Value:     big.NewInt(0),
		Data:      calldata,
	})

	raw, err := s.signer.SignTx(tx, s.chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := s.backend.SendRawTransaction(ctx, raw)
	if err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", err)
	}
	return hash, nil
}

// WaitForConfirmation blocks until hash is mined. A reverted transaction is
// returned as an error wrapping chain.ErrReverted.
func (s *Sender) WaitForConfirmation(ctx context.Context, hash common.Hash) (*chain.TxReceipt, error) {
	return s.backend.WaitForReceipt(ctx, hash, s.pollInterval)
}

func fallbackGas(method string) uint64 {
	switch method {
	case "approve", "setApprovalForAll":
		return config.GasLimitApprove
	default:
		return config.GasLimitContractCall
	}
}
