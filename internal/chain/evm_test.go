package chain

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TechyByFin/byfin-dashboard/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// rpcMock creates a test HTTP server that returns fixed results per method.
func rpcMock(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int    `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if result, ok := responses[req.Method]; ok {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  result,
			})
		} else {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
			})
		}
	}))
}

// rpcErrorServer creates a test HTTP server that always returns a JSON-RPC error.
func rpcErrorServer(t *testing.T, code int, msg string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct{ ID int `json:"id"` }
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": code, "message": msg},
		})
	}))
}

// rpcBadJSON creates a server that returns malformed JSON.
func rpcBadJSON(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{not valid json`)) //nolint:errcheck
	}))
}

var testAddr = common.HexToAddress("0xd8da6bf26964af9d7eed9e03e53415d37aa96045")

// ---------------------------------------------------------------------------
// parseBigHex
// ---------------------------------------------------------------------------

func TestParseBigHexValid(t *testing.T) {
	n, ok := parseBigHex("0x1a")
	require.True(t, ok)
	assert.Equal(t, int64(26), n.Int64())
}

func TestParseBigHexNoPrefix(t *testing.T) {
	n, ok := parseBigHex("ff")
	require.True(t, ok)
	assert.Equal(t, int64(255), n.Int64())
}

func TestParseBigHexEmpty(t *testing.T) {
	_, ok := parseBigHex("")
	assert.False(t, ok)
	_, ok = parseBigHex("0x")
	assert.False(t, ok)
}

func TestParseBigHexInvalidString(t *testing.T) {
	_, ok := parseBigHex("0xzz")
	assert.False(t, ok)
}

// ---------------------------------------------------------------------------
// Quantity calls
// ---------------------------------------------------------------------------

func TestChainIDSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_chainId": "0x14a34"})
	defer srv.Close()

	id, err := NewEVMClient(srv.URL).ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(84532), id.Int64())
}

func TestChainIDRPCError(t *testing.T) {
	srv := rpcErrorServer(t, -32000, "server error")
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).ChainID(context.Background())
	require.Error(t, err)

	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32000, rpcErr.Code)
	assert.Equal(t, "RPC error -32000: server error", err.Error())
}

func TestBlockNumberSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x1388"})
	defer srv.Close()

	n, err := NewEVMClient(srv.URL).BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), n)
}

func TestGetBalanceSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getBalance": "0xde0b6b3a7640000"})
	defer srv.Close()

	bal, err := NewEVMClient(srv.URL).GetBalance(context.Background(), testAddr)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", bal.String())
}

func TestGetBalanceInvalidJSON(t *testing.T) {
	srv := rpcBadJSON(t)
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).GetBalance(context.Background(), testAddr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing response")
}

func TestGetBalanceConnectionRefused(t *testing.T) {
	_, err := NewEVMClient("http://127.0.0.1:1").GetBalance(context.Background(), testAddr)
	require.Error(t, err)
}

func TestGasPriceSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_gasPrice": "0x3b9aca00"})
	defer srv.Close()

	gp, err := NewEVMClient(srv.URL).GasPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000_000), gp.Int64())
}

func TestGasPriceUnparseable(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_gasPrice": "not-hex"})
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).GasPrice(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not parse gas price")
}

func TestPendingNonceSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionCount": "0x7"})
	defer srv.Close()

	n, err := NewEVMClient(srv.URL).PendingNonce(context.Background(), testAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)
}

func TestEstimateGasSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_estimateGas": "0xb411"})
	defer srv.Close()

	gas, err := NewEVMClient(srv.URL).EstimateGas(context.Background(), testAddr, testAddr, []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, uint64(46097), gas)
}

func TestEstimateGasRevert(t *testing.T) {
	srv := rpcErrorServer(t, 3, "execution reverted: insufficient allowance")
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).EstimateGas(context.Background(), testAddr, testAddr, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient allowance")
}

// ---------------------------------------------------------------------------
// eth_call / eth_sendRawTransaction
// ---------------------------------------------------------------------------

func TestCallContractSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_call": "0x0000000000000000000000000000000000000000000000000000000000000064",
	})
	defer srv.Close()

	out, err := NewEVMClient(srv.URL).CallContract(context.Background(), testAddr, []byte{0x70, 0xa0, 0x82, 0x31})
	require.NoError(t, err)
	require.Len(t, out, 32)
	assert.Equal(t, int64(100), new(big.Int).SetBytes(out).Int64())
}

func TestCallContractEmptyResult(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_call": "0x"})
	defer srv.Close()

	out, err := NewEVMClient(srv.URL).CallContract(context.Background(), testAddr, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSendRawTransactionSuccess(t *testing.T) {
	hash := "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b"
	srv := rpcMock(t, map[string]interface{}{"eth_sendRawTransaction": hash})
	defer srv.Close()

	got, err := NewEVMClient(srv.URL).SendRawTransaction(context.Background(), []byte{0x02, 0xf8})
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash(hash), got)
}

func TestSendRawTransactionRPCError(t *testing.T) {
	srv := rpcErrorServer(t, -32000, "nonce too low")
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).SendRawTransaction(context.Background(), []byte{0x02})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonce too low")
}

// ---------------------------------------------------------------------------
// Receipts
// ---------------------------------------------------------------------------

func TestGetTransactionReceiptSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":      "0x1",
			"blockNumber": "0x100",
			"gasUsed":     "0x5208",
		},
	})
	defer srv.Close()

	hash := common.HexToHash("0xabc")
	receipt, err := NewEVMClient(srv.URL).GetTransactionReceipt(context.Background(), hash)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, uint64(1), receipt.Status)
	assert.Equal(t, uint64(256), receipt.BlockNumber)
	assert.Equal(t, uint64(21000), receipt.GasUsed)
	assert.Equal(t, hash, receipt.Hash)
}

func TestGetTransactionReceiptPending(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).GetTransactionReceipt(context.Background(), common.HexToHash("0x1"))
	require.NoError(t, err)
	assert.Nil(t, receipt, "pending tx should return nil receipt")
}

func TestWaitForReceiptImmediate(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":      "0x1",
			"blockNumber": "0xA",
			"gasUsed":     "0x5208",
		},
	})
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).WaitForReceipt(context.Background(), common.HexToHash("0x1"), time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), receipt.BlockNumber)
}

func TestWaitForReceiptAfterPendingPolls(t *testing.T) {
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var result interface{}
		if atomic.AddInt32(&polls, 1) >= 3 {
			result = map[string]interface{}{"status": "0x1", "blockNumber": "0x2", "gasUsed": "0x1"}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": 1, "result": result,
		})
	}))
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).WaitForReceipt(context.Background(), common.HexToHash("0x2"), time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), receipt.BlockNumber)
	assert.Equal(t, int32(3), atomic.LoadInt32(&polls))
}

func TestWaitForReceiptReverted(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":      "0x0",
			"blockNumber": "0xA",
			"gasUsed":     "0x5208",
		},
	})
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).WaitForReceipt(context.Background(), common.HexToHash("0x3"), time.Millisecond)
	require.ErrorIs(t, err, ErrReverted)
	require.NotNil(t, receipt)
	assert.Equal(t, uint64(0), receipt.Status)
}

func TestWaitForReceiptContextCancelled(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewEVMClient(srv.URL).WaitForReceipt(ctx, common.HexToHash("0x4"), 5*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled))
}

// ---------------------------------------------------------------------------
// Ping / Network
// ---------------------------------------------------------------------------

func TestPingSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x1388"})
	defer srv.Close()

	latency, blockNum, err := NewEVMClient(srv.URL).Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), blockNum)
	assert.Greater(t, latency, time.Duration(0))
}

func TestNetworkFromConfig(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	n := FromConfig(cfg)
	assert.Equal(t, "Base Sepolia", n.Name)
	assert.Equal(t, "https://sepolia.basescan.org/tx/0xabc", n.TxURL("0xabc"))
	assert.Equal(t, "https://sepolia.basescan.org/address/0xdef", n.AddressURL("0xdef"))
	assert.NoError(t, n.CheckChainID(big.NewInt(84532)))
	assert.ErrorIs(t, n.CheckChainID(big.NewInt(1)), ErrChainMismatch)
}
