// Package solana builds signable transfer parameters for Solana, where the
// fee is a fixed per-signature constant and every transaction must
// reference a recent block hash.
package solana

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

// LamportsPerSignature is the protocol fee per signature. Single-signer
// transfers pay exactly this.
const LamportsPerSignature = 5000

// TxData is the Solana transaction record carried by a SignablePlan.
type TxData struct {
	Chain           chain.ID // Owning chain
	To              string   // Recipient address
	Amount          *big.Int // Value in lamports (token atomic units for SPL)
	Contract        string   // SPL token mint, empty for native
	RecentBlockhash string   // Required recency anchor
	Fee             *big.Int // Fee in lamports
}

// ChainID implements chain.TxData.
func (d *TxData) ChainID() chain.ID { return d.Chain }

// Strategy builds Solana transfers.
type Strategy struct {
	asset   chain.Asset
	data    chain.DataSource
	assets  chain.AssetStore
	scripts chain.ScriptProvider
	log     *logrus.Entry
}

// New creates a Solana strategy for the asset.
func New(asset chain.Asset, deps chain.Deps) *Strategy {
	return &Strategy{
		asset:   asset,
		data:    deps.Data,
		assets:  deps.Assets,
		scripts: deps.Scripts,
		log:     deps.Logger().WithField("strategy", "solana"),
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

// FetchNetworkData resolves the latest block hash; a transaction cannot be
// assembled without it, so failure is fatal. Token transfers also resolve
// the native balance that pays the fee.
func (s *Strategy) FetchNetworkData(ctx context.Context, _ *big.Int, _ string) (*chain.NetworkParams, error) {
	np := &chain.NetworkParams{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hash, err := s.data.LatestBlockhash(gctx, s.asset.Chain)
		if err != nil {
			return txerr.Wrap(err, "fetching latest blockhash")
		}
		np.Blockhash = hash
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
				return txerr.Wrap(err, "fetching native balance for fee")
			}
			np.FeeBalance = bal
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", txerr.ErrMissingNetworkData, err)
	}
	if np.Blockhash == "" {
		return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
			"chain": s.asset.Chain.String(),
			"field": "blockhash",
		})
	}

	np.FetchedAt = time.Now()
	return np, nil
}

// DisplayFee returns the fixed per-signature fee as a decimal SOL string.
func (s *Strategy) DisplayFee(_ *chain.NetworkParams) string {
	return chain.FormatDecimalAmount(big.NewInt(LamportsPerSignature), s.asset.Chain.Decimals())
}

// BuildParams assembles the final Solana transfer parameters.
func (s *Strategy) BuildParams(_ context.Context, np *chain.NetworkParams, req chain.TxRequest, credential string, mode chain.WalletMode) (*chain.SignablePlan, error) {
	if np == nil || np.Blockhash == "" {
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
	fee := big.NewInt(LamportsPerSignature)

	if s.asset.IsToken() {
		if np.FeeBalance == nil {
			return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
				"chain": s.asset.Chain.String(),
				"field": "native balance",
			})
		}
		if np.FeeBalance.Cmp(fee) < 0 {
			return nil, txerr.WithDetails(txerr.ErrInsufficientFeeBalance, map[string]string{
				"native_balance": np.FeeBalance.String(),
				"fee":            fee.String(),
			})
		}
		if tokenBalance := s.asset.AtomicBalance(); req.SendMax || amount.Cmp(tokenBalance) > 0 {
			amount = tokenBalance
		}
	} else {
		available := new(big.Int).Sub(s.asset.AtomicBalance(), fee)
		if available.Sign() < 0 {
			return nil, txerr.WithDetails(txerr.ErrInsufficientFeeBalance, map[string]string{
				"balance": s.asset.Balance,
				"fee":     fee.String(),
			})
		}
		if req.SendMax || amount.Cmp(available) > 0 {
			s.log.WithFields(logrus.Fields{
				"requested": amount.String(),
				"available": available.String(),
			}).Debug("clamping amount to balance minus fee")
			amount = available
		}
	}

	return &chain.SignablePlan{
		Asset: s.asset,
		TxData: &TxData{
			Chain:           s.asset.Chain,
			To:              req.To,
			Amount:          amount,
			Contract:        s.asset.Contract,
			RecentBlockhash: np.Blockhash,
			Fee:             fee,
		},
		Mode:       mode,
		Credential: credential,
	}, nil
}
