package contract

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/TechyByFin/byfin-dashboard/internal/chain"
	"github.com/TechyByFin/byfin-dashboard/internal/config"
	"github.com/TechyByFin/byfin-dashboard/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var (
	tokenAddr   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	usdcAddr    = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	vaultAddr   = common.HexToAddress("0x00000000000000000000000000000000000000a3")
	stakingAddr = common.HexToAddress("0x00000000000000000000000000000000000000a4")
	marketAddr  = common.HexToAddress("0x00000000000000000000000000000000000000a5")
	launchAddr  = common.HexToAddress("0x00000000000000000000000000000000000000a6")
	ownerAddr   = common.HexToAddress("0x00000000000000000000000000000000000000b0")
)

func testBook() Book {
	return Book{Token: tokenAddr, USDC: usdcAddr, Vault: vaultAddr, Staking: stakingAddr, Market: marketAddr, Launchpad: launchAddr}
}

// ---------------------------------------------------------------------------
// Fake backends
// ---------------------------------------------------------------------------

// fakeReadBackend answers eth_call by (contract, method selector).
type fakeReadBackend struct {
	results map[common.Address]map[string][]byte
	native  *big.Int
	calls   [][]byte
}

func newFakeReadBackend() *fakeReadBackend {
	return &fakeReadBackend{results: map[common.Address]map[string][]byte{}, native: big.NewInt(0)}
}

func (f *fakeReadBackend) set(t *testing.T, to common.Address, method string, values ...interface{}) {
	t.Helper()
	a := ERC20ABI
	switch to {
	case stakingAddr:
		a = StakingABI
	case marketAddr:
		a = MarketABI
	case vaultAddr:
		a = ERC1155ABI
	}
	m := a.Methods[method]
	out, err := m.Outputs.Pack(values...)
	require.NoError(t, err)
	if f.results[to] == nil {
		f.results[to] = map[string][]byte{}
	}
	f.results[to][hex.EncodeToString(m.ID)] = out
}

func (f *fakeReadBackend) CallContract(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	f.calls = append(f.calls, data)
	out, ok := f.results[to][hex.EncodeToString(data[:4])]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return out, nil
}

func (f *fakeReadBackend) GetBalance(context.Context, common.Address) (*big.Int, error) {
	return f.native, nil
}

// fakeWriteBackend records raw transactions.
type fakeWriteBackend struct {
	estimateErr error
	estimate    uint64
	sent        [][]byte
	receipt     *chain.TxReceipt
	waitErr     error
	waited      []common.Hash
}

func (f *fakeWriteBackend) GasPrice(context.Context) (*big.Int, error) { return big.NewInt(1_000_000), nil }

func (f *fakeWriteBackend) PendingNonce(context.Context, common.Address) (uint64, error) {
	return uint64(len(f.sent)), nil
}

func (f *fakeWriteBackend) EstimateGas(context.Context, common.Address, common.Address, []byte) (uint64, error) {
	return f.estimate, f.estimateErr
}

func (f *fakeWriteBackend) SendRawTransaction(_ context.Context, raw []byte) (common.Hash, error) {
	f.sent = append(f.sent, raw)
	var tx types.Transaction
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

func (f *fakeWriteBackend) WaitForReceipt(_ context.Context, hash common.Hash, _ time.Duration) (*chain.TxReceipt, error) {
	f.waited = append(f.waited, hash)
	return f.receipt, f.waitErr
}

func decodeTx(t *testing.T, raw []byte) *types.Transaction {
	t.Helper()
	var tx types.Transaction
	require.NoError(t, tx.UnmarshalBinary(raw))
	return &tx
}

func testSender(t *testing.T, backend *fakeWriteBackend) *Sender {
	t.Helper()
	signer, err := wallet.NewSigner(testPrivKeyHex)
	require.NoError(t, err)
	return NewSender(backend, signer, big.NewInt(config.DefaultChainID))
}

// ---------------------------------------------------------------------------
// Builtins / selectors
// ---------------------------------------------------------------------------

func TestBuiltinsRegistered(t *testing.T) {
	ids := []string{}
	for _, b := range AllBuiltins() {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"erc1155", "erc20", "market", "staking"}, ids)

	b, ok := GetBuiltin("staking")
	require.True(t, ok)
	assert.Equal(t, "BYFN Staking", b.Name)

	_, ok = GetBuiltin("nope")
	assert.False(t, ok)
}

func TestWriteMethods(t *testing.T) {
	var names []string
	for _, m := range WriteMethods(StakingABI) {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"claimRewards", "stake", "unstake"}, names)
}

func TestSelectorMatchesABI(t *testing.T) {
	assert.Equal(t, "0x095ea7b3", Selector("approve(address,uint256)"))
	assert.Equal(t, "0x70a08231", Selector("balanceOf(address)"))
	assert.Equal(t, "0x095ea7b3", Selector("approve(address, uint256)"), "spaces are ignored")

	for _, sig := range []struct{ abi, method string }{
		{"staking", "stake"},
		{"market", "createListing"},
		{"market", "sellToProtocol"},
		{"erc1155", "setApprovalForAll"},
	} {
		b, _ := GetBuiltin(sig.abi)
		m := b.ABI.Methods[sig.method]
		assert.Equal(t, "0x"+hex.EncodeToString(m.ID), Selector(m.Sig), sig.method)
	}
}

// ---------------------------------------------------------------------------
// Units
// ---------------------------------------------------------------------------

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in       string
		decimals int
		want     string
	}{
		{"100", 18, "100000000000000000000"},
		{"1.5", 6, "1500000"},
		{"0.000001", 6, "1"},
		{".5", 6, "500000"},
		{" 2 ", 18, "2000000000000000000"},
		{"1.500000", 6, "1500000"},
	}
	for _, tt := range tests {
		got, err := ParseUnits(tt.in, tt.decimals)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.String(), tt.in)
	}
}

// Smallest values that no longer fit in uint256.
const (
	twoPow256     = "115792089237316195423570985008687907853269984665640564039457584007913129639936"
	twoPow256Plus = "115792089237316195423570985008687907853269984665640564039457584007913129639943"
	maxUint256    = "115792089237316195423570985008687907853269984665640564039457584007913129639935"
)

func TestParseUnitsRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "-1", "0", "0.0", "1.", ".", "1e18", "1.0000001", "1,5", twoPow256, "1" + strings.Repeat("0", 60)} {
		_, err := ParseUnits(in, 18)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
	_, err := ParseUnits("1.0000001", 6)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	v, err := ParseUnits(maxUint256, 0)
	require.NoError(t, err)
	assert.Equal(t, 256, v.BitLen())
}

func TestParseInteger(t *testing.T) {
	v, err := ParseInteger("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int64())

	v, err = ParseInteger("0")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.Int64())

	v, err = ParseInteger(maxUint256)
	require.NoError(t, err)
	assert.Equal(t, maxUint256, v.String())

	for _, in := range []string{"", "1.5", "-3", "x", twoPow256, twoPow256Plus} {
		_, err := ParseInteger(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}

func TestFormatUnits(t *testing.T) {
	v, _ := new(big.Int).SetString("1234567890000000000000", 10)
	assert.Equal(t, "1234.56", FormatUnits(v, 18, 2))
	assert.Equal(t, "1234.56789", FormatUnits(v, 18, 6))
	assert.Equal(t, "1.5", FormatUnits(big.NewInt(1_500_000), 6, 2))
	assert.Equal(t, "0.000001", FormatUnits(big.NewInt(1), 6, 6))
	assert.Equal(t, "0", FormatUnits(big.NewInt(1), 6, 2))
	assert.Equal(t, "-2", FormatUnits(big.NewInt(-2_000_000), 6, 2))
	assert.Equal(t, "7", FormatUnits(big.NewInt(7), 0, 2))
	assert.Equal(t, "0", FormatUnits(nil, 18, 2))
}

func TestFormatBpsAndShortenAddress(t *testing.T) {
	assert.Equal(t, "2.5%", FormatBps(big.NewInt(250)))
	assert.Equal(t, "1%", FormatBps(big.NewInt(100)))
	assert.Equal(t, "0.05%", FormatBps(big.NewInt(5)))

	addr := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	assert.Equal(t, "0xf39F...2266", ShortenAddress(addr))
}

// ---------------------------------------------------------------------------
// Sender
// ---------------------------------------------------------------------------

func TestSenderSubmitPacksCall(t *testing.T) {
	backend := &fakeWriteBackend{estimate: 50_000}
	s := testSender(t, backend)

	amount, _ := new(big.Int).SetString("100000000000000000000", 10)
	hash, err := s.Submit(context.Background(), tokenAddr, ERC20ABI, "approve", stakingAddr, amount)
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)

	tx := decodeTx(t, backend.sent[0])
	assert.Equal(t, hash, tx.Hash())
	assert.Equal(t, tokenAddr, *tx.To())
	assert.Equal(t, uint64(60_000), tx.Gas(), "estimate plus 20%")
	assert.Equal(t, big.NewInt(config.DefaultChainID), tx.ChainId())

	want, err := ERC20ABI.Pack("approve", stakingAddr, amount)
	require.NoError(t, err)
	assert.Equal(t, want, tx.Data())
}

func TestSenderFallbackGas(t *testing.T) {
	backend := &fakeWriteBackend{estimateErr: errors.New("execution reverted: allowance")}
	s := testSender(t, backend).WithGasFallback(true)

	_, err := s.Submit(context.Background(), stakingAddr, StakingABI, "stake", big.NewInt(1))
	require.NoError(t, err)
	_, err = s.Submit(context.Background(), vaultAddr, ERC1155ABI, "setApprovalForAll", marketAddr, true)
	require.NoError(t, err)

	assert.Equal(t, uint64(config.GasLimitContractCall), decodeTx(t, backend.sent[0]).Gas())
	assert.Equal(t, uint64(config.GasLimitApprove), decodeTx(t, backend.sent[1]).Gas())
	assert.Equal(t, uint64(1), decodeTx(t, backend.sent[1]).Nonce())
}

func TestSenderEstimateRevertIsFatal(t *testing.T) {
	backend := &fakeWriteBackend{estimateErr: errors.New("execution reverted: insufficient balance")}
	s := testSender(t, backend)

	_, err := s.Submit(context.Background(), stakingAddr, StakingABI, "stake", big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "estimating gas")
	assert.Contains(t, err.Error(), "insufficient balance")
	assert.Empty(t, backend.sent, "nothing is broadcast after a failed estimate")
}

func TestSenderRejectsBadMethods(t *testing.T) {
	backend := &fakeWriteBackend{}
	s := testSender(t, backend)

	_, err := s.Submit(context.Background(), stakingAddr, StakingABI, "nope")
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = s.Submit(context.Background(), stakingAddr, StakingABI, "earned", ownerAddr)
	assert.ErrorIs(t, err, ErrReadMethod)

	_, err = s.Submit(context.Background(), stakingAddr, StakingABI, "stake", "not-a-number")
	assert.Error(t, err)
	assert.Empty(t, backend.sent)
}

func TestSenderWaitForConfirmation(t *testing.T) {
	want := &chain.TxReceipt{Status: 1, BlockNumber: 10}
	backend := &fakeWriteBackend{receipt: want}
	s := testSender(t, backend).WithPollInterval(time.Millisecond)

	hash := common.HexToHash("0xA")
	got, err := s.WaitForConfirmation(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, []common.Hash{hash}, backend.waited)
}

// ---------------------------------------------------------------------------
// Reader
// ---------------------------------------------------------------------------

func TestReaderStakingPosition(t *testing.T) {
	b := newFakeReadBackend()
	b.set(t, stakingAddr, "stakedBalance", big.NewInt(500))
	b.set(t, stakingAddr, "earned", big.NewInt(7))
	b.set(t, stakingAddr, "totalStaked", big.NewInt(9000))
	b.set(t, stakingAddr, "getStakingTier", uint8(2))

	pos, err := NewReader(b, testBook()).StakingPosition(context.Background(), ownerAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(500), pos.Staked.Int64())
	assert.Equal(t, int64(7), pos.Earned.Int64())
	assert.Equal(t, int64(9000), pos.TotalStaked.Int64())
	assert.Equal(t, uint8(2), pos.Tier)
}

func TestReaderListingDecodesTuple(t *testing.T) {
	seller := common.HexToAddress("0x00000000000000000000000000000000000000c1")
	b := newFakeReadBackend()
	b.set(t, marketAddr, "listings", seller, big.NewInt(3), big.NewInt(25), big.NewInt(1e18), true)

	l, err := NewReader(b, testBook()).Listing(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), l.ID)
	assert.Equal(t, seller, l.Seller)
	assert.Equal(t, int64(3), l.TokenID.Int64())
	assert.Equal(t, int64(25), l.Amount.Int64())
	assert.Equal(t, int64(1e18), l.FloorPrice.Int64())
	assert.True(t, l.Active)

	want, err := MarketABI.Pack("listings", big.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, want, b.calls[0])
}

func TestReaderActiveListingsCapsAndFilters(t *testing.T) {
	b := newFakeReadBackend()
	b.set(t, marketAddr, "listings", ownerAddr, big.NewInt(1), big.NewInt(1), big.NewInt(1), false)

	got, err := NewReader(b, testBook()).ActiveListings(context.Background(), 25, 10)
	require.NoError(t, err)
	assert.Empty(t, got, "inactive listings are skipped")
	assert.Len(t, b.calls, 10, "scan stops at the limit")
}

func TestReaderListingError(t *testing.T) {
	_, err := NewReader(newFakeReadBackend(), testBook()).ActiveListings(context.Background(), 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing 0")
}

func TestReaderMarketStats(t *testing.T) {
	b := newFakeReadBackend()
	b.set(t, marketAddr, "listingCounter", big.NewInt(12))
	b.set(t, marketAddr, "feePercent", big.NewInt(2))
	b.set(t, marketAddr, "spreadBps", big.NewInt(250))

	stats, err := NewReader(b, testBook()).MarketStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(12), stats.ListingCount)
	assert.Equal(t, "2.5%", FormatBps(stats.SpreadBps))
}

func TestReaderPortfolio(t *testing.T) {
	b := newFakeReadBackend()
	b.native = big.NewInt(42)
	b.set(t, tokenAddr, "balanceOf", big.NewInt(100))
	b.set(t, usdcAddr, "balanceOf", big.NewInt(200))
	b.set(t, stakingAddr, "stakedBalance", big.NewInt(300))
	b.set(t, stakingAddr, "earned", big.NewInt(4))

	p, err := NewReader(b, testBook()).Portfolio(context.Background(), ownerAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ETH.Int64())
	assert.Equal(t, int64(100), p.BYFN.Int64())
	assert.Equal(t, int64(200), p.USDC.Int64())
	assert.Equal(t, int64(300), p.Staked.Int64())
	assert.Equal(t, int64(4), p.Earned.Int64())
}

func TestReaderAssetBalanceAndAllowance(t *testing.T) {
	b := newFakeReadBackend()
	b.set(t, vaultAddr, "balanceOf", big.NewInt(11))
	b.set(t, usdcAddr, "allowance", big.NewInt(5))

	r := NewReader(b, testBook())
	bal, err := r.AssetBalance(context.Background(), ownerAddr, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, int64(11), bal.Int64())

	allowance, err := r.Allowance(context.Background(), usdcAddr, ownerAddr, launchAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(5), allowance.Int64())
}

func TestCallerRejectsWriteMethod(t *testing.T) {
	_, err := NewCaller(newFakeReadBackend()).Call(context.Background(), stakingAddr, StakingABI, "stake", big.NewInt(1))
	assert.Error(t, err)
}

func TestLoadBook(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	_, err = LoadBook(cfg)
	assert.ErrorIs(t, err, config.ErrContractNotConfigured)

	book := testBook()
	for name, addr := range map[string]common.Address{
		config.ContractToken:     book.Token,
		config.ContractUSDC:      book.USDC,
		config.ContractVault:     book.Vault,
		config.ContractStaking:   book.Staking,
		config.ContractMarket:    book.Market,
		config.ContractLaunchpad: book.Launchpad,
	} {
		require.NoError(t, cfg.SetContract(name, addr.Hex()))
	}

	got, err := LoadBook(cfg)
	require.NoError(t, err)
	assert.Equal(t, book, got)
}

func TestMethodByData(t *testing.T) {
	data, err := StakingABI.Pack("stake", big.NewInt(5))
	require.NoError(t, err)
	b, m, ok := MethodByData(data)
	require.True(t, ok)
	assert.Equal(t, "staking", b.ID)
	assert.Equal(t, "stake", m.Name)

	data, err = ERC20ABI.Pack("approve", stakingAddr, big.NewInt(5))
	require.NoError(t, err)
	b, m, ok = MethodByData(data)
	require.True(t, ok)
	assert.Equal(t, "erc20", b.ID)
	assert.Equal(t, "approve", m.Name)

	_, _, ok = MethodByData([]byte{0xde, 0xad, 0xbe, 0xef})
	assert.False(t, ok)
	_, _, ok = MethodByData(nil)
	assert.False(t, ok)
}

func TestBookNameOf(t *testing.T) {
	book := testBook()
	name, ok := book.NameOf(marketAddr)
	assert.True(t, ok)
	assert.Equal(t, config.ContractMarket, name)

	_, ok = book.NameOf(ownerAddr)
	assert.False(t, ok)
	_, ok = Book{}.NameOf(common.Address{})
	assert.False(t, ok, "unset entries never match")
}
