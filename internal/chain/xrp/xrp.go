// Package xrp builds signable transfer parameters for the XRP Ledger,
// where every account must retain a base reserve and unactivated
// destinations must be funded with at least that reserve.
package xrp

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nexawallet/txcore/internal/chain"
	txerr "github.com/nexawallet/txcore/pkg/errors"
)

const (
	// MinFeeDrops is the protocol-minimum fee, used when the network does
	// not supply a suggestion.
	MinFeeDrops = 10

	// ledgerWindow is how many ledgers past the current index a built
	// transaction remains valid.
	ledgerWindow = 60
)

// TxData is the XRP transaction record carried by a SignablePlan.
type TxData struct {
	Chain              chain.ID // Owning chain
	To                 string   // Recipient address
	Amount             *big.Int // Value in drops (issued-asset units for tokens)
	Contract           string   // Issued-asset identifier, empty for native
	Fee                *big.Int // Fee in drops
	Sequence           uint32   // Sender's next sequence
	LastLedgerSequence uint64   // Expiry ledger index
	DestinationTag     *uint32  // Numeric tag, nil when absent
}

// ChainID implements chain.TxData.
func (d *TxData) ChainID() chain.ID { return d.Chain }

// Strategy builds XRP transfers.
type Strategy struct {
	asset   chain.Asset
	data    chain.DataSource
	assets  chain.AssetStore
	scripts chain.ScriptProvider
	log     *logrus.Entry
}

// New creates an XRP strategy for the asset.
func New(asset chain.Asset, deps chain.Deps) *Strategy {
	return &Strategy{
		asset:   asset,
		data:    deps.Data,
		assets:  deps.Assets,
		scripts: deps.Scripts,
		log:     deps.Logger().WithField("strategy", "xrp"),
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

// FetchNetworkData resolves the sender's account aggregate, the suggested
// fee, and the destination's activation status in parallel. A destination
// that does not exist on the ledger is not an error here; it tightens the
// build rules instead.
func (s *Strategy) FetchNetworkData(ctx context.Context, _ *big.Int, toAddress string) (*chain.NetworkParams, error) {
	np := &chain.NetworkParams{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		info, err := s.data.AccountInfo(gctx, s.asset.Chain, s.asset.Address)
		if err != nil {
			return txerr.Wrap(err, "fetching account info")
		}
		np.Account = info
		return nil
	})

	g.Go(func() error {
		rate, err := s.data.FeeRate(gctx, s.asset.Chain)
		if err != nil || rate == 0 {
			np.Fee = big.NewInt(MinFeeDrops)
			return nil
		}
		np.Fee = new(big.Int).SetUint64(rate)
		return nil
	})

	g.Go(func() error {
		info, err := s.data.AccountInfo(gctx, s.asset.Chain, toAddress)
		if errors.Is(err, txerr.ErrAccountNotFound) {
			np.DestActive = false
			return nil
		}
		if err != nil {
			return txerr.Wrap(err, "probing destination activation")
		}
		np.DestActive = info.Exists
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
	if np.Account == nil || np.Account.Balance == nil || np.Account.Reserve == nil {
		return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
			"chain": s.asset.Chain.String(),
			"field": "account info",
		})
	}

	np.FetchedAt = time.Now()
	return np, nil
}

// DisplayFee returns the suggested fee as a decimal XRP string.
// Returns "0" before a successful fetch.
func (s *Strategy) DisplayFee(np *chain.NetworkParams) string {
	if np == nil || np.Fee == nil {
		return "0"
	}
	return chain.FormatDecimalAmount(np.Fee, s.asset.Chain.Decimals())
}

// destinationTag parses a numeric memo; anything non-numeric is dropped
// without error.
func (s *Strategy) destinationTag(memo string) *uint32 {
	if memo == "" {
		return nil
	}
	tag, err := strconv.ParseUint(memo, 10, 32)
	if err != nil {
		s.log.WithField("memo", memo).Debug("dropping non-numeric destination tag")
		return nil
	}
	t := uint32(tag)
	return &t
}

// BuildParams assembles the final XRP payment parameters.
func (s *Strategy) BuildParams(_ context.Context, np *chain.NetworkParams, req chain.TxRequest, credential string, mode chain.WalletMode) (*chain.SignablePlan, error) {
	if np == nil || np.Account == nil || np.Fee == nil {
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

	if s.asset.IsToken() {
		if np.FeeBalance == nil {
			return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
				"chain": s.asset.Chain.String(),
				"field": "native balance",
			})
		}
		if np.FeeBalance.Cmp(np.Fee) < 0 {
			return nil, txerr.WithDetails(txerr.ErrInsufficientFeeBalance, map[string]string{
				"native_balance": np.FeeBalance.String(),
				"fee":            np.Fee.String(),
			})
		}
		if tokenBalance := s.asset.AtomicBalance(); req.SendMax || amount.Cmp(tokenBalance) > 0 {
			amount = tokenBalance
		}
	} else {
		// The base reserve stays locked in the account after the send.
		available := new(big.Int).Sub(np.Account.Balance, np.Fee)
		available.Sub(available, np.Account.Reserve)
		if available.Sign() < 0 {
			return nil, txerr.WithDetails(txerr.ErrReserveNotMet, map[string]string{
				"balance": np.Account.Balance.String(),
				"reserve": np.Account.Reserve.String(),
				"fee":     np.Fee.String(),
			})
		}
		if req.SendMax || amount.Cmp(available) > 0 {
			s.log.WithFields(logrus.Fields{
				"requested": amount.String(),
				"available": available.String(),
			}).Debug("clamping amount to retain reserve")
			amount = available
		}
		// A first payment to a fresh address must fund its base reserve.
		if !np.DestActive && amount.Cmp(np.Account.Reserve) < 0 {
			return nil, txerr.WithDetails(txerr.ErrReserveNotMet, map[string]string{
				"destination": req.To,
				"amount":      amount.String(),
				"reserve":     np.Account.Reserve.String(),
			})
		}
	}

	return &chain.SignablePlan{
		Asset: s.asset,
		TxData: &TxData{
			Chain:              s.asset.Chain,
			To:                 req.To,
			Amount:             amount,
			Contract:           s.asset.Contract,
			Fee:                np.Fee,
			Sequence:           np.Account.Sequence,
			LastLedgerSequence: np.Account.LedgerIndex + ledgerWindow,
			DestinationTag:     s.destinationTag(req.Memo),
		},
		Mode:       mode,
		Credential: credential,
	}, nil
}
