// Package chaindata implements the chain-data service consumed by the
// transaction engine: a REST gateway client keyed by chain ID and address,
// with per-endpoint rate limiting and retry at the transport edge.
package chaindata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/nexawallet/txcore/internal/chain"
	"github.com/nexawallet/txcore/internal/metrics"
	"github.com/nexawallet/txcore/internal/version"
	txerr "github.com/nexawallet/txcore/pkg/errors"
)

const (
	// defaultTimeout is the default HTTP request timeout.
	defaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 4 << 20
)

// ClientOptions contains optional configuration for the chain-data client.
type ClientOptions struct {
	// BaseURL overrides the gateway URL.
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// RatePerSecond and Burst tune the per-endpoint rate limiter.
	RatePerSecond float64
	Burst         int

	// Retry overrides the retry configuration.
	Retry *RetryConfig

	// Log receives transport-level debug output.
	Log *logrus.Logger
}

// Client is the REST implementation of chain.DataSource.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *RateLimiter
	retryCfg   RetryConfig
	log        *logrus.Logger
}

// Compile-time interface check
var _ chain.DataSource = (*Client)(nil)

// NewClient creates a new chain-data client.
func NewClient(opts *ClientOptions) *Client {
	c := &Client{
		baseURL: "https://gateway.nexawallet.io/chaindata",
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter:  DefaultRateLimiter(),
		retryCfg: DefaultRetryConfig(),
		log:      logrus.New(),
	}
	c.log.SetLevel(logrus.PanicLevel)

	if opts != nil {
		c.applyOptions(opts)
	}

	return c
}

func (c *Client) applyOptions(opts *ClientOptions) {
	if opts.BaseURL != "" {
		c.baseURL = opts.BaseURL
	}
	if opts.APIKey != "" {
		c.apiKey = opts.APIKey
	}
	if opts.RatePerSecond > 0 && opts.Burst > 0 {
		c.limiter = NewRateLimiter(opts.RatePerSecond, opts.Burst)
	}
	if opts.Retry != nil {
		c.retryCfg = *opts.Retry
	}
	if opts.Log != nil {
		c.log = opts.Log
	}
}

// get performs a rate-limited, retried GET and parses the JSON body.
func (c *Client) get(ctx context.Context, endpoint, path string) (gjson.Result, error) {
	return c.do(ctx, endpoint, http.MethodGet, path, nil)
}

// post performs a rate-limited, retried POST with a JSON body.
func (c *Client) post(ctx context.Context, endpoint, path string, body any) (gjson.Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("marshaling request: %w", err)
	}
	return c.do(ctx, endpoint, http.MethodPost, path, payload)
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, body []byte) (gjson.Result, error) {
	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		return gjson.Result{}, err
	}

	var attempt int
	return RetryWithConfig(ctx, c.retryCfg, func() (gjson.Result, error) {
		if attempt++; attempt > 1 {
			metrics.Global.RecordRetry()
		}
		start := time.Now()
		res, err := c.doOnce(ctx, method, path, body)
		metrics.Global.RecordRequest(endpoint, time.Since(start), err)
		if errors.Is(err, txerr.ErrRateLimited) {
			metrics.Global.RecordRateLimited()
		}
		return res, err
	})
}

func (c *Client) doOnce(ctx context.Context, method, path string, body []byte) (gjson.Result, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, WrapRetryable(fmt.Errorf("%w: %w", txerr.ErrNetworkError, err))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return gjson.Result{}, txerr.WithDetails(txerr.ErrAccountNotFound, map[string]string{
			"path": path,
		})
	case resp.StatusCode == http.StatusTooManyRequests:
		if d := ParseRetryAfter(resp.Header.Get("Retry-After")); d > 0 {
			c.log.WithField("retry_after", d).Debug("chaindata: rate limited")
		}
		return gjson.Result{}, txerr.ErrRateLimited
	case resp.StatusCode >= 500:
		return gjson.Result{}, WrapRetryable(fmt.Errorf("%w: status %d", txerr.ErrNetworkError, resp.StatusCode))
	default:
		return gjson.Result{}, fmt.Errorf("%w: status %d, body: %s", txerr.ErrNetworkError, resp.StatusCode, string(raw))
	}

	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w: malformed response body", txerr.ErrNetworkError)
	}

	return gjson.ParseBytes(raw), nil
}

// parseBigInt parses a decimal integer field, accepting string or number
// encodings.
func parseBigInt(v gjson.Result) (*big.Int, error) {
	if !v.Exists() {
		return nil, fmt.Errorf("%w: missing numeric field", txerr.ErrNetworkError)
	}
	n, ok := new(big.Int).SetString(v.String(), 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad numeric field %q", txerr.ErrNetworkError, v.String())
	}
	return n, nil
}

// Balance returns the native-coin balance for an address in atomic units.
func (c *Client) Balance(ctx context.Context, id chain.ID, address string) (*big.Int, error) {
	res, err := c.get(ctx, "balance", fmt.Sprintf("/v1/%s/account/%s/balance", id, address))
	if err != nil {
		return nil, err
	}
	return parseBigInt(res.Get("balance"))
}

// TokenBalance returns a token balance in atomic units.
func (c *Client) TokenBalance(ctx context.Context, id chain.ID, address, contract string) (*big.Int, error) {
	res, err := c.get(ctx, "token_balance",
		fmt.Sprintf("/v1/%s/account/%s/token/%s/balance", id, address, contract))
	if err != nil {
		return nil, err
	}
	return parseBigInt(res.Get("balance"))
}

// UTXOs lists spendable units for an address.
func (c *Client) UTXOs(ctx context.Context, id chain.ID, address, contract string) ([]chain.SpendableUnit, error) {
	path := fmt.Sprintf("/v1/%s/account/%s/utxos", id, address)
	if contract != "" {
		path += "?contract=" + contract
	}
	res, err := c.get(ctx, "utxos", path)
	if err != nil {
		return nil, err
	}

	var units []chain.SpendableUnit
	for _, u := range res.Get("utxos").Array() {
		value, perr := parseBigInt(u.Get("value"))
		if perr != nil {
			return nil, perr
		}
		units = append(units, chain.SpendableUnit{
			ID:     u.Get("txid").String(),
			Vout:   uint32(u.Get("vout").Uint()),
			Value:  value,
			Script: u.Get("script").String(),
		})
	}
	return units, nil
}

// FeeRate returns the chain's fee rate in its native unit.
func (c *Client) FeeRate(ctx context.Context, id chain.ID) (uint64, error) {
	res, err := c.get(ctx, "fee_rate", fmt.Sprintf("/v1/%s/fee-rate", id))
	if err != nil {
		return 0, err
	}
	rate := res.Get("rate")
	if !rate.Exists() {
		return 0, fmt.Errorf("%w: fee rate missing", txerr.ErrNetworkError)
	}
	return rate.Uint(), nil
}

// Nonce returns the next account nonce.
func (c *Client) Nonce(ctx context.Context, id chain.ID, address string) (uint64, error) {
	res, err := c.get(ctx, "nonce", fmt.Sprintf("/v1/%s/account/%s/nonce", id, address))
	if err != nil {
		return 0, err
	}
	return res.Get("nonce").Uint(), nil
}

// GasEstimate returns a gas limit and gas price for a transfer.
func (c *Client) GasEstimate(ctx context.Context, id chain.ID, from, to string, value *big.Int, data []byte) (uint64, *big.Int, error) {
	body := map[string]string{
		"from": from,
		"to":   to,
	}
	if value != nil {
		body["value"] = value.String()
	}
	if len(data) > 0 {
		body["data"] = fmt.Sprintf("0x%x", data)
	}

	res, err := c.post(ctx, "gas_estimate", fmt.Sprintf("/v1/%s/gas/estimate", id), body)
	if err != nil {
		return 0, nil, err
	}

	limit := res.Get("gas_limit")
	if !limit.Exists() || limit.Uint() == 0 {
		return 0, nil, fmt.Errorf("%w: gas limit missing", txerr.ErrNetworkError)
	}
	price, perr := parseBigInt(res.Get("gas_price"))
	if perr != nil {
		return 0, nil, perr
	}
	return limit.Uint(), price, nil
}

// BlockHeader returns the current block/ledger head.
func (c *Client) BlockHeader(ctx context.Context, id chain.ID) (*chain.BlockHeader, error) {
	res, err := c.get(ctx, "block_header", fmt.Sprintf("/v1/%s/block/head", id))
	if err != nil {
		return nil, err
	}
	hash := res.Get("hash").String()
	if hash == "" {
		return nil, fmt.Errorf("%w: block hash missing", txerr.ErrNetworkError)
	}
	return &chain.BlockHeader{
		Hash:      hash,
		Number:    res.Get("number").Uint(),
		Timestamp: res.Get("timestamp").Int(),
	}, nil
}

// AccountResources returns bandwidth/energy resources for an account.
func (c *Client) AccountResources(ctx context.Context, id chain.ID, address string) (*chain.AccountResources, error) {
	res, err := c.get(ctx, "resources", fmt.Sprintf("/v1/%s/account/%s/resources", id, address))
	if err != nil {
		return nil, err
	}
	return &chain.AccountResources{
		Exists:              res.Get("exists").Bool(),
		FreeBandwidth:       res.Get("free_bandwidth").Int(),
		UsedBandwidth:       res.Get("used_bandwidth").Int(),
		StakedBandwidth:     res.Get("staked_bandwidth").Int(),
		UsedStakedBandwidth: res.Get("used_staked_bandwidth").Int(),
		Energy:              res.Get("energy").Int(),
		UsedEnergy:          res.Get("used_energy").Int(),
	}, nil
}

// TokenHolder reports whether an address already holds the token.
func (c *Client) TokenHolder(ctx context.Context, id chain.ID, address, contract string) (bool, error) {
	res, err := c.get(ctx, "token_holder",
		fmt.Sprintf("/v1/%s/token/%s/holder/%s", id, contract, address))
	if err != nil {
		return false, err
	}
	return res.Get("holds").Bool(), nil
}

// AccountStatus returns sequence number and deployment status.
func (c *Client) AccountStatus(ctx context.Context, id chain.ID, address string) (*chain.AccountStatus, error) {
	res, err := c.get(ctx, "account_status", fmt.Sprintf("/v1/%s/account/%s/status", id, address))
	if err != nil {
		return nil, err
	}
	return &chain.AccountStatus{
		Seqno:    uint32(res.Get("seqno").Uint()),
		Deployed: res.Get("deployed").Bool(),
	}, nil
}

// EstimateFee returns an estimated total fee for a native transfer.
func (c *Client) EstimateFee(ctx context.Context, id chain.ID, from, to string, amount *big.Int) (*big.Int, error) {
	body := map[string]string{
		"from": from,
		"to":   to,
	}
	if amount != nil {
		body["amount"] = amount.String()
	}
	res, err := c.post(ctx, "estimate_fee", fmt.Sprintf("/v1/%s/fee/estimate", id), body)
	if err != nil {
		return nil, err
	}
	return parseBigInt(res.Get("fee"))
}

// LatestBlockhash returns the most recent block hash.
func (c *Client) LatestBlockhash(ctx context.Context, id chain.ID) (string, error) {
	res, err := c.get(ctx, "blockhash", fmt.Sprintf("/v1/%s/blockhash/latest", id))
	if err != nil {
		return "", err
	}
	hash := res.Get("blockhash").String()
	if hash == "" {
		return "", fmt.Errorf("%w: blockhash missing", txerr.ErrNetworkError)
	}
	return hash, nil
}

// AccountInfo returns an account aggregate.
func (c *Client) AccountInfo(ctx context.Context, id chain.ID, address string) (*chain.AccountInfo, error) {
	res, err := c.get(ctx, "account_info", fmt.Sprintf("/v1/%s/account/%s/info", id, address))
	if err != nil {
		return nil, err
	}
	balance, perr := parseBigInt(res.Get("balance"))
	if perr != nil {
		return nil, perr
	}
	reserve, perr := parseBigInt(res.Get("reserve"))
	if perr != nil {
		return nil, perr
	}
	return &chain.AccountInfo{
		Exists:      res.Get("exists").Bool(),
		Balance:     balance,
		Sequence:    uint32(res.Get("sequence").Uint()),
		Reserve:     reserve,
		LedgerIndex: res.Get("ledger_index").Uint(),
	}, nil
}

// GasPrice returns the chain's reference gas price.
func (c *Client) GasPrice(ctx context.Context, id chain.ID) (*big.Int, error) {
	res, err := c.get(ctx, "gas_price", fmt.Sprintf("/v1/%s/gas/price", id))
	if err != nil {
		return nil, err
	}
	return parseBigInt(res.Get("price"))
}

// Objects lists owned coin objects for an address.
func (c *Client) Objects(ctx context.Context, id chain.ID, address, coinType string) ([]chain.SpendableUnit, error) {
	path := fmt.Sprintf("/v1/%s/account/%s/objects", id, address)
	if coinType != "" {
		path += "?coin_type=" + coinType
	}
	res, err := c.get(ctx, "objects", path)
	if err != nil {
		return nil, err
	}

	var units []chain.SpendableUnit
	for _, o := range res.Get("objects").Array() {
		value, perr := parseBigInt(o.Get("value"))
		if perr != nil {
			return nil, perr
		}
		units = append(units, chain.SpendableUnit{
			ID:      o.Get("object_id").String(),
			Value:   value,
			Version: o.Get("version").Uint(),
			Digest:  o.Get("digest").String(),
		})
	}
	return units, nil
}

// Broadcast submits an encoded, signed transaction and returns its hash.
func (c *Client) Broadcast(ctx context.Context, id chain.ID, payload []byte) (string, error) {
	body := map[string]string{
		"payload": fmt.Sprintf("%x", payload),
	}
	res, err := c.post(ctx, "broadcast", fmt.Sprintf("/v1/%s/broadcast", id), body)
	if err != nil {
		return "", err
	}
	hash := res.Get("hash").String()
	if hash == "" {
		return "", fmt.Errorf("%w: broadcast returned no hash", txerr.ErrNetworkError)
	}
	return hash, nil
}
