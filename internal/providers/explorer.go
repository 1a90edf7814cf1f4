package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/TechyByFin/byfin-dashboard/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Explorer reads the Etherscan-compatible `account/txlist` endpoint served by
// Etherscan V2 and Blockscout.
type Explorer struct {
	name    string
	baseURL string
	params  url.Values // extra query parameters (chainid, apikey)
	client  *http.Client
}

// NewEtherscan creates an Etherscan V2 provider for chainID. Returns nil if
// apiKey is empty.
func NewEtherscan(baseURL, apiKey string, chainID int64) *Explorer {
	if apiKey == "" {
		return nil
	}
	return newExplorer("etherscan", baseURL, url.Values{
		"chainid": {strconv.FormatInt(chainID, 10)},
		"apikey":  {apiKey},
	})
}

// NewBlockscout creates a keyless Blockscout provider.
func NewBlockscout(baseURL string) *Explorer {
	return newExplorer("blockscout", baseURL, url.Values{})
}

func newExplorer(name, baseURL string, params url.Values) *Explorer {
	return &Explorer{
		name:    name,
		baseURL: baseURL,
		params:  params,
		client:  &http.Client{Timeout: config.RPCTimeout},
	}
}

func (e *Explorer) Name() string { return e.name }

type explorerResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type explorerTx struct {
	Hash        string `json:"hash"`
	BlockNumber string `json:"blockNumber"`
	TimeStamp   string `json:"timeStamp"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	Input       string `json:"input"`
	IsError     string `json:"isError"`
}

// Transactions returns the n most recent transactions of addr, newest first.
func (e *Explorer) Transactions(ctx context.Context, addr common.Address, n int) ([]Tx, error) {
	q := url.Values{}
	for k, v := range e.params {
		q[k] = v
	}
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", addr.Hex())
	q.Set("sort", "desc")
	q.Set("page", "1")
	q.Set("offset", strconv.Itoa(n))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var body explorerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if body.Status != "1" {
		if strings.Contains(strings.ToLower(body.Message), "no transactions found") {
			return nil, nil
		}
		var msg string
		if json.Unmarshal(body.Result, &msg) != nil || msg == "" {
			msg = body.Message
		}
		return nil, fmt.Errorf("API error: %s", msg)
	}

	var raw []explorerTx
	if err := json.Unmarshal(body.Result, &raw); err != nil {
		return nil, fmt.Errorf("decoding transactions: %w", err)
	}
	out := make([]Tx, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toTx())
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (r explorerTx) toTx() Tx {
	block, _ := strconv.ParseUint(r.BlockNumber, 10, 64)
	ts, _ := strconv.ParseInt(r.TimeStamp, 10, 64)
	value, ok := new(big.Int).SetString(r.Value, 10)
	if !ok {
		value = new(big.Int)
	}
	input, _ := hexutil.Decode(r.Input)
	tx := Tx{
		Hash:        common.HexToHash(r.Hash),
		BlockNumber: block,
		Time:        time.Unix(ts, 0),
		From:        common.HexToAddress(r.From),
		Value:       value,
		Input:       input,
		Failed:      r.IsError == "1",
	}
	if r.To != "" {
		tx.To = common.HexToAddress(r.To)
	}
	return tx
}

// BuildRegistry assembles the explorers for the configured chain in priority
// order: Etherscan V2 when a key is set, then Blockscout.
func BuildRegistry(cfg *config.Config) *Registry {
	var ps []Provider
	if e := NewEtherscan(config.EtherscanAPI, cfg.EtherscanKey(), cfg.ChainID); e != nil {
		ps = append(ps, e)
	}
	ps = append(ps, NewBlockscout(config.DefaultBlockscoutAPI))
	return New(ps...)
}
