package txflow

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/TechyByFin/byfin-dashboard/internal/chain"
	"github.com/TechyByFin/byfin-dashboard/internal/config"
	"github.com/TechyByFin/byfin-dashboard/internal/contract"
	"github.com/TechyByFin/byfin-dashboard/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hardhat/Anvil test account #0.
const senderKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// chainBackend is a contract.WriteBackend that fails estimation or mines a
// reverted receipt for chosen methods.
type chainBackend struct {
	estimateErr map[string]error // by method name
	revert      map[string]bool  // by method name

	sent   []string
	waited []string
	byHash map[common.Hash]string
}

func newChainBackend() *chainBackend {
	return &chainBackend{
		estimateErr: map[string]error{},
		revert:      map[string]bool{},
		byHash:      map[common.Hash]string{},
	}
}

func methodName(data []byte) string {
	if _, m, ok := contract.MethodByData(data); ok {
		return m.Name
	}
	return "unknown"
}

func (b *chainBackend) GasPrice(context.Context) (*big.Int, error) { return big.NewInt(1_000_000), nil }

func (b *chainBackend) PendingNonce(context.Context, common.Address) (uint64, error) {
	return uint64(len(b.sent)), nil
}

func (b *chainBackend) EstimateGas(_ context.Context, _, _ common.Address, data []byte) (uint64, error) {
	if err := b.estimateErr[methodName(data)]; err != nil {
		return 0, err
	}
	return 60_000, nil
}

func (b *chainBackend) SendRawTransaction(_ context.Context, raw []byte) (common.Hash, error) {
	var tx types.Transaction
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	name := methodName(tx.Data())
	b.sent = append(b.sent, name)
	b.byHash[tx.Hash()] = name
	return tx.Hash(), nil
}

func (b *chainBackend) WaitForReceipt(_ context.Context, hash common.Hash, _ time.Duration) (*chain.TxReceipt, error) {
	name := b.byHash[hash]
	b.waited = append(b.waited, name)
	if b.revert[name] {
		r := &chain.TxReceipt{Status: 0, BlockNumber: 2}
		return r, fmt.Errorf("%w (hash: %s)", chain.ErrReverted, hash.Hex())
	}
	return &chain.TxReceipt{Status: 1, BlockNumber: 1}, nil
}

func chainSender(t *testing.T, b *chainBackend) *contract.Sender {
	t.Helper()
	signer, err := wallet.NewSigner(senderKeyHex)
	require.NoError(t, err)
	return contract.NewSender(b, signer, big.NewInt(config.DefaultChainID)).WithPollInterval(time.Millisecond)
}

func TestSenderStakeRevertAtEstimation(t *testing.T) {
	b := newChainBackend()
	b.estimateErr["stake"] = errors.New("execution reverted: insufficient balance")
	g := NewGroup(New(chainSender(t, b), connected()), testBook, true)
	in := &form{Amount: "100"}

	err := g.Stake(context.Background(), in.Amount, in.Reset)
	require.Error(t, err)

	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Index)
	assert.Equal(t, "stake", se.Method)

	assert.Equal(t, []string{"approve"}, b.sent, "the reverting stake is never broadcast")
	assert.Equal(t, []string{"approve"}, b.waited)
	state := g.State()
	assert.False(t, state.Running)
	assert.Contains(t, state.LastError, "insufficient balance")
	assert.Equal(t, "100", in.Amount)
	assert.Equal(t, 0, in.resets)
}

func TestSenderLegacyModeFallsBackToFixedGas(t *testing.T) {
	b := newChainBackend()
	b.estimateErr["stake"] = errors.New("execution reverted: ERC20: insufficient allowance")
	sender := chainSender(t, b).WithGasFallback(true)
	g := NewGroup(New(sender, connected()), testBook, false)
	in := &form{Amount: "100"}

	require.NoError(t, g.Stake(context.Background(), in.Amount, in.Reset))
	assert.Equal(t, []string{"approve", "stake"}, b.sent)
	assert.Empty(t, b.waited)
	assert.Equal(t, 1, in.resets)
}

func TestSenderRevertedFinalReceipt(t *testing.T) {
	b := newChainBackend()
	b.revert["stake"] = true
	g := NewGroup(New(chainSender(t, b), connected(), WithConfirmFinal(true)), testBook, true)
	in := &form{Amount: "100"}

	err := g.Stake(context.Background(), in.Amount, in.Reset)
	require.ErrorIs(t, err, chain.ErrReverted)

	assert.Equal(t, []string{"approve", "stake"}, b.sent)
	assert.Equal(t, []string{"approve", "stake"}, b.waited)
	assert.Contains(t, g.State().LastError, "transaction reverted")
	assert.Equal(t, "100", in.Amount)
	assert.Equal(t, 0, in.resets)
}

func TestSenderStakeSucceeds(t *testing.T) {
	b := newChainBackend()
	g := NewGroup(New(chainSender(t, b), connected()), testBook, true)
	in := &form{Amount: "100"}

	require.NoError(t, g.Stake(context.Background(), in.Amount, in.Reset))
	assert.Equal(t, []string{"approve", "stake"}, b.sent)
	assert.Equal(t, []string{"approve"}, b.waited, "the final step is not awaited by default")
	assert.Equal(t, State{}, g.State())
	assert.Equal(t, 1, in.resets)
}
