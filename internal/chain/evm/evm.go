// Package evm builds signable transfer parameters for account/nonce-model
// chains (Ethereum and its derivatives).
package evm

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nexawallet/txcore/internal/chain"
	txerr "github.com/nexawallet/txcore/pkg/errors"
)

// Gas limit safety margin: the network estimate is scaled by 110/100 so a
// mildly underestimated limit does not strand the transaction.
const (
	gasSafetyNum = 110
	gasSafetyDen = 100
)

// TxData is the EVM transaction record carried by a SignablePlan.
type TxData struct {
	Chain    chain.ID // Owning chain
	To       string   // Recipient (token contract for token transfers)
	Value    *big.Int // Native value in atomic units (0 for token transfers)
	GasLimit uint64   // Safety-adjusted gas limit
	GasPrice *big.Int // Gas price in atomic units
	Nonce    uint64   // Account nonce
	Data     []byte   // ABI-encoded calldata (token transfers)
	Contract string   // Token contract, empty for native
}

// ChainID implements chain.TxData.
func (d *TxData) ChainID() chain.ID { return d.Chain }

// Strategy builds EVM transfers.
type Strategy struct {
	asset   chain.Asset
	data    chain.DataSource
	assets  chain.AssetStore
	scripts chain.ScriptProvider
	log     *logrus.Entry
}

// New creates an EVM strategy for the asset.
func New(asset chain.Asset, deps chain.Deps) *Strategy {
	return &Strategy{
		asset:   asset,
		data:    deps.Data,
		assets:  deps.Assets,
		scripts: deps.Scripts,
		log:     deps.Logger().WithField("strategy", "evm"),
	}
}

// ChainID returns the chain this strategy builds for.
func (s *Strategy) ChainID() chain.ID { return s.asset.Chain }

// HasMemo reports memo support from the classification tables.
func (s *Strategy) HasMemo() bool { return s.asset.Chain.SupportsMemo() }

// ValidateAddress checks a destination address against the chain coin type.
func (s *Strategy) ValidateAddress(address string) bool {
	return s.scripts.Validate(s.asset.Chain.CoinType(), address)
}

// FetchNetworkData resolves nonce and gas estimate in parallel; for token
// transfers it also resolves the native-coin balance that pays gas.
func (s *Strategy) FetchNetworkData(ctx context.Context, amount *big.Int, toAddress string) (*chain.NetworkParams, error) {
	np := &chain.NetworkParams{}

	var estData []byte
	estValue := amount
	estTo := toAddress
	if s.asset.IsToken() {
		// Gas estimation for a token transfer targets the contract with
		// transfer calldata; the calldata amount is provisional and is
		// regenerated at build time after clamping.
		estData = TransferCalldata(toAddress, amount)
		estValue = big.NewInt(0)
		estTo = s.asset.Contract
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		nonce, err := s.data.Nonce(gctx, s.asset.Chain, s.asset.Address)
		if err != nil {
			return txerr.Wrap(err, "fetching nonce")
		}
		np.Nonce = nonce
		return nil
	})

	g.Go(func() error {
		limit, price, err := s.data.GasEstimate(gctx, s.asset.Chain, s.asset.Address, estTo, estValue, estData)
		if err != nil {
			return txerr.Wrap(err, "estimating gas")
		}
		np.GasLimit = limit
		np.GasPrice = price
		return nil
	})

	if s.asset.IsToken() {
		g.Go(func() error {
			feeAsset, err := s.assets.FeeAsset(s.asset)
			if err != nil {
				return err
			}
			bal, err := s.data.Balance(gctx, feeAsset.Chain, feeAsset.Address)
			if err != nil {
				return txerr.Wrap(err, "fetching native balance for gas")
			}
			np.FeeBalance = bal
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", txerr.ErrMissingNetworkData, err)
	}
	if np.GasPrice == nil || np.GasLimit == 0 {
		return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
			"chain": s.asset.Chain.String(),
			"field": "gas estimate",
		})
	}

	np.FetchedAt = time.Now()
	return np, nil
}

// totalFee returns the safety-adjusted gas limit and the resulting fee.
func totalFee(np *chain.NetworkParams) (uint64, *big.Int) {
	limit := np.GasLimit * gasSafetyNum / gasSafetyDen
	fee := new(big.Int).Mul(np.GasPrice, new(big.Int).SetUint64(limit))
	return limit, fee
}

// DisplayFee returns the fee as a decimal string of the native coin.
// Returns "0" before a successful fetch.
func (s *Strategy) DisplayFee(np *chain.NetworkParams) string {
	if np == nil || np.GasPrice == nil || np.GasLimit == 0 {
		return "0"
	}
	_, fee := totalFee(np)
	return chain.FormatDecimalAmount(fee, s.asset.Chain.Decimals())
}

// BuildParams assembles the final EVM transfer parameters.
func (s *Strategy) BuildParams(_ context.Context, np *chain.NetworkParams, req chain.TxRequest, credential string, mode chain.WalletMode) (*chain.SignablePlan, error) {
	if np == nil || np.GasPrice == nil || np.GasLimit == 0 {
		return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
			"chain": s.asset.Chain.String(),
		})
	}
	if !s.ValidateAddress(req.To) {
		return nil, txerr.WithDetails(txerr.ErrInvalidAddress, map[string]string{
			"address": req.To,
		})
	}

	amount := chain.ToAtomicInt(req.Amount, s.asset.Decimals)
	limit, fee := totalFee(np)

	if s.asset.IsToken() {
		return s.buildToken(np, req, amount, limit, fee, credential, mode)
	}
	return s.buildNative(np, req, amount, limit, fee, credential, mode)
}

func (s *Strategy) buildNative(np *chain.NetworkParams, req chain.TxRequest, amount *big.Int, limit uint64, fee *big.Int, credential string, mode chain.WalletMode) (*chain.SignablePlan, error) {
	balance := s.asset.AtomicBalance()

	available := new(big.Int).Sub(balance, fee)
	if available.Sign() < 0 {
		return nil, txerr.WithDetails(txerr.ErrInsufficientFeeBalance, map[string]string{
			"balance": balance.String(),
			"fee":     fee.String(),
		})
	}

	// Send-max semantics trigger implicitly whenever the request meets or
	// exceeds what the balance can cover after gas.
	if req.SendMax || amount.Cmp(available) >= 0 {
		amount = available
	}

	return &chain.SignablePlan{
		Asset: s.asset,
		TxData: &TxData{
			Chain:    s.asset.Chain,
			To:       req.To,
			Value:    amount,
			GasLimit: limit,
			GasPrice: np.GasPrice,
			Nonce:    np.Nonce,
		},
		Mode:       mode,
		Credential: credential,
	}, nil
}

func (s *Strategy) buildToken(np *chain.NetworkParams, req chain.TxRequest, amount *big.Int, limit uint64, fee *big.Int, credential string, mode chain.WalletMode) (*chain.SignablePlan, error) {
	if np.FeeBalance == nil {
		return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
			"chain": s.asset.Chain.String(),
			"field": "native balance",
		})
	}

	// Strict: the native balance must cover the whole fee. One unit short
	// is a gas failure, never a silent downgrade.
	if np.FeeBalance.Cmp(fee) < 0 {
		return nil, txerr.WithDetails(txerr.ErrInsufficientFeeBalance, map[string]string{
			"native_balance": np.FeeBalance.String(),
			"fee":            fee.String(),
		})
	}

	tokenBalance := s.asset.AtomicBalance()
	if req.SendMax || amount.Cmp(tokenBalance) > 0 {
		s.log.WithFields(logrus.Fields{
			"requested": amount.String(),
			"balance":   tokenBalance.String(),
		}).Debug("clamping token amount to balance")
		amount = tokenBalance
	}

	// Calldata depends on the amount, so it is regenerated after clamping.
	data := TransferCalldata(req.To, amount)

	return &chain.SignablePlan{
		Asset: s.asset,
		TxData: &TxData{
			Chain:    s.asset.Chain,
			To:       s.asset.Contract,
			Value:    big.NewInt(0),
			GasLimit: limit,
			GasPrice: np.GasPrice,
			Nonce:    np.Nonce,
			Data:     data,
			Contract: s.asset.Contract,
		},
		Mode:       mode,
		Credential: credential,
	}, nil
}
