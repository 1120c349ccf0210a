// Package tron builds signable transfer parameters for Tron, whose fees
// are metered in bandwidth and energy resources rather than gas.
package tron

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

// Resource pricing in sun (1 TRX = 1,000,000 sun). Deficits below the
// account's staked/free quotas burn TRX at these rates.
const (
	// BandwidthPrice is the cost per byte of bandwidth deficit.
	BandwidthPrice = 1000

	// EnergyPrice is the cost per unit of energy deficit.
	EnergyPrice = 420

	// ActivationFee is burned when a native transfer targets an address
	// that does not yet exist on chain.
	ActivationFee = 1_000_000

	// nativeTxBytes and tokenTxBytes are bandwidth estimates for the two
	// transfer shapes.
	nativeTxBytes = 270
	tokenTxBytes  = 350

	// tokenTransferEnergy is the energy a TRC-20 transfer consumes when
	// the recipient already holds the token. A first-time recipient pays
	// for a new storage slot, doubling the requirement.
	tokenTransferEnergy = 65_000

	// txLifetime bounds how long a built transaction stays broadcastable.
	txLifetime = 60 * time.Second
)

// TxData is the Tron transaction record carried by a SignablePlan.
type TxData struct {
	Chain       chain.ID // Owning chain
	To          string   // Recipient address
	Amount      *big.Int // Value in sun (token atomic units for TRC-20)
	Contract    string   // TRC-20 contract, empty for native
	Fee         *big.Int // Estimated fee in sun
	RefBlockNum uint64   // Reference block for the TAPOS check
	RefBlockID  string
	Timestamp   int64 // Milliseconds since epoch
	Expiration  int64 // Milliseconds since epoch
}

// ChainID implements chain.TxData.
func (d *TxData) ChainID() chain.ID { return d.Chain }

// Strategy builds Tron transfers.
type Strategy struct {
	asset   chain.Asset
	data    chain.DataSource
	assets  chain.AssetStore
	scripts chain.ScriptProvider
	log     *logrus.Entry
}

// New creates a Tron strategy for the asset.
func New(asset chain.Asset, deps chain.Deps) *Strategy {
	return &Strategy{
		asset:   asset,
		data:    deps.Data,
		assets:  deps.Assets,
		scripts: deps.Scripts,
		log:     deps.Logger().WithField("strategy", "tron"),
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

// FetchNetworkData resolves the block header and both parties' resource
// snapshots in parallel. Token transfers also resolve whether the recipient
// holds the token and the TRX balance that pays the fee.
func (s *Strategy) FetchNetworkData(ctx context.Context, _ *big.Int, toAddress string) (*chain.NetworkParams, error) {
	np := &chain.NetworkParams{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		header, err := s.data.BlockHeader(gctx, s.asset.Chain)
		if err != nil {
			return txerr.Wrap(err, "fetching block header")
		}
		np.Header = header
		return nil
	})

	g.Go(func() error {
		res, err := s.data.AccountResources(gctx, s.asset.Chain, s.asset.Address)
		if err != nil {
			return txerr.Wrap(err, "fetching sender resources")
		}
		np.SenderResources = res
		return nil
	})

	g.Go(func() error {
		res, err := s.data.AccountResources(gctx, s.asset.Chain, toAddress)
		if err != nil {
			return txerr.Wrap(err, "fetching recipient resources")
		}
		np.RecipientResources = res
		return nil
	})

	if s.asset.IsToken() {
		g.Go(func() error {
			holds, err := s.data.TokenHolder(gctx, s.asset.Chain, toAddress, s.asset.Contract)
			if err != nil {
				return txerr.Wrap(err, "probing recipient token holding")
			}
			np.RecipientHoldsToken = holds
			return nil
		})

		g.Go(func() error {
			feeAsset, err := s.assets.FeeAsset(s.asset)
			if err != nil {
				return err
			}
			bal, err := s.data.Balance(gctx, feeAsset.Chain, feeAsset.Address)
			if err != nil {
				return txerr.Wrap(err, "fetching TRX balance for fee")
			}
			np.FeeBalance = bal
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", txerr.ErrMissingNetworkData, err)
	}
	// Fee components derive strictly from fetched resource data; a missing
	// snapshot must never default to a zero fee.
	if np.Header == nil || np.SenderResources == nil || np.RecipientResources == nil {
		return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
			"chain": s.asset.Chain.String(),
			"field": "account resources",
		})
	}

	np.FetchedAt = time.Now()
	return np, nil
}

// estimateFee computes the burn in sun from the fetched resource snapshots.
func (s *Strategy) estimateFee(np *chain.NetworkParams) *big.Int {
	fee := new(big.Int)

	txBytes := int64(nativeTxBytes)
	if s.asset.IsToken() {
		txBytes = tokenTxBytes
	}

	if deficit := txBytes - np.SenderResources.AvailableBandwidth(); deficit > 0 {
		fee.Add(fee, new(big.Int).SetInt64(deficit*BandwidthPrice))
	}

	if s.asset.IsToken() {
		needed := int64(tokenTransferEnergy)
		if !np.RecipientHoldsToken {
			// New token holder means a fresh storage slot.
			needed *= 2
		}
		if deficit := needed - np.SenderResources.AvailableEnergy(); deficit > 0 {
			fee.Add(fee, new(big.Int).SetInt64(deficit*EnergyPrice))
		}
	} else if !np.RecipientResources.Exists {
		fee.Add(fee, big.NewInt(ActivationFee))
	}

	return fee
}

// DisplayFee returns the estimated fee as a decimal TRX string.
// Returns "0" before a successful fetch.
func (s *Strategy) DisplayFee(np *chain.NetworkParams) string {
	if np == nil || np.SenderResources == nil || np.RecipientResources == nil {
		return "0"
	}
	return chain.FormatDecimalAmount(s.estimateFee(np), s.asset.Chain.Decimals())
}

// BuildParams assembles the final Tron transfer parameters.
func (s *Strategy) BuildParams(_ context.Context, np *chain.NetworkParams, req chain.TxRequest, credential string, mode chain.WalletMode) (*chain.SignablePlan, error) {
	if np == nil || np.Header == nil || np.SenderResources == nil || np.RecipientResources == nil {
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
	fee := s.estimateFee(np)

	if s.asset.IsToken() {
		if np.FeeBalance == nil {
			return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
				"chain": s.asset.Chain.String(),
				"field": "TRX balance",
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
			Chain:       s.asset.Chain,
			To:          req.To,
			Amount:      amount,
			Contract:    s.asset.Contract,
			Fee:         fee,
			RefBlockNum: np.Header.Number,
			RefBlockID:  np.Header.Hash,
			Timestamp:   np.Header.Timestamp,
			Expiration:  np.Header.Timestamp + txLifetime.Milliseconds(),
		},
		Mode:       mode,
		Credential: credential,
	}, nil
}
