// Package utxo builds signable transfer parameters for Bitcoin-family
// chains, where every transfer spends discrete units and returns change.
package utxo

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

// TxData is the UTXO transaction record carried by a SignablePlan.
type TxData struct {
	Chain    chain.ID              // Owning chain
	To       string                // Recipient address
	Script   []byte                // Recipient locking script
	Amount   *big.Int              // Value sent to the recipient
	Inputs   []chain.SpendableUnit // Units being spent, largest first
	Fee      *big.Int              // Fee paid to miners
	Change   *big.Int              // Value returned to the sender
	NoChange bool                  // Transaction has no change output
	Contract string                // Token/inscription identifier, empty for native
}

// ChainID implements chain.TxData.
func (d *TxData) ChainID() chain.ID { return d.Chain }

// Strategy builds UTXO-model transfers.
type Strategy struct {
	asset   chain.Asset
	data    chain.DataSource
	assets  chain.AssetStore
	scripts chain.ScriptProvider
	log     *logrus.Entry
}

// New creates a UTXO strategy for the asset.
func New(asset chain.Asset, deps chain.Deps) *Strategy {
	return &Strategy{
		asset:   asset,
		data:    deps.Data,
		assets:  deps.Assets,
		scripts: deps.Scripts,
		log:     deps.Logger().WithField("strategy", "utxo"),
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

// FetchNetworkData lists the spendable units and resolves the fee rate.
// Bitcoin's rate comes from the network; the other chains use fixed rates.
// For token transfers the native balance that pays the fee is fetched too.
func (s *Strategy) FetchNetworkData(ctx context.Context, _ *big.Int, _ string) (*chain.NetworkParams, error) {
	np := &chain.NetworkParams{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		units, err := s.data.UTXOs(gctx, s.asset.Chain, s.asset.Address, s.asset.Contract)
		if err != nil {
			return txerr.Wrap(err, "listing spendable units")
		}
		np.Units = units
		return nil
	})

	if rate, ok := fixedFeeRates[s.asset.Chain]; ok {
		np.FeeRate = rate
	} else {
		g.Go(func() error {
			rate, err := s.data.FeeRate(gctx, s.asset.Chain)
			if err != nil {
				return txerr.Wrap(err, "fetching fee rate")
			}
			np.FeeRate = rate
			return nil
		})
	}

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
	if np.FeeRate == 0 {
		return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
			"chain": s.asset.Chain.String(),
			"field": "fee rate",
		})
	}

	np.FetchedAt = time.Now()
	return np, nil
}

// DisplayFee returns the estimated fee for a typical one-input two-output
// transfer as a decimal string. Returns "0" before a successful fetch.
func (s *Strategy) DisplayFee(np *chain.NetworkParams) string {
	if np == nil || np.FeeRate == 0 {
		return "0"
	}
	fee := EstimateFee(1, 2, np.FeeRate)
	return chain.FormatDecimalAmount(fee, s.asset.Chain.Decimals())
}

// BuildParams selects units and assembles the final transfer parameters.
func (s *Strategy) BuildParams(_ context.Context, np *chain.NetworkParams, req chain.TxRequest, credential string, mode chain.WalletMode) (*chain.SignablePlan, error) {
	if np == nil || np.FeeRate == 0 {
		return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
			"chain": s.asset.Chain.String(),
		})
	}
	if !s.ValidateAddress(req.To) {
		return nil, txerr.WithDetails(txerr.ErrInvalidAddress, map[string]string{
			"address": req.To,
		})
	}

	// A transaction that cannot produce the recipient's locking script
	// cannot be signed; this is fatal, not a warning.
	script, err := s.scripts.LockingScript(s.asset.Chain, req.To)
	if err != nil {
		return nil, err
	}

	amount := chain.ToAtomicInt(req.Amount, s.asset.Decimals)

	if s.asset.IsToken() {
		return s.buildToken(np, req, amount, script, credential, mode)
	}
	return s.buildNative(np, req, amount, script, credential, mode)
}

func (s *Strategy) buildNative(np *chain.NetworkParams, req chain.TxRequest, amount *big.Int, script []byte, credential string, mode chain.WalletMode) (*chain.SignablePlan, error) {
	dust := s.asset.Chain.DustLimit()

	if req.SendMax {
		return s.buildSweep(np, req, script, credential, mode)
	}

	if amount.Cmp(new(big.Int).SetUint64(dust)) < 0 {
		return nil, txerr.WithDetails(txerr.ErrDustAmount, map[string]string{
			"amount": amount.String(),
			"dust":   new(big.Int).SetUint64(dust).String(),
		})
	}

	sel := Select(np.Units, amount, np.FeeRate, dust, true)
	if sel.Exhausted {
		total := sel.Total()
		need := new(big.Int).Add(amount, sel.Fee)
		return nil, txerr.WithDetails(txerr.ErrInsufficientFunds, map[string]string{
			"available": total.String(),
			"required":  need.String(),
		})
	}

	return &chain.SignablePlan{
		Asset: s.asset,
		TxData: &TxData{
			Chain:    s.asset.Chain,
			To:       req.To,
			Script:   script,
			Amount:   amount,
			Inputs:   sel.Units,
			Fee:      sel.Fee,
			Change:   sel.Change,
			NoChange: sel.NoChange,
		},
		Mode:       mode,
		Credential: credential,
	}, nil
}

// buildSweep spends every unit with no change output; the amount is the
// total minus the no-change fee.
func (s *Strategy) buildSweep(np *chain.NetworkParams, req chain.TxRequest, script []byte, credential string, mode chain.WalletMode) (*chain.SignablePlan, error) {
	if len(np.Units) == 0 {
		return nil, txerr.WithDetails(txerr.ErrInsufficientFunds, map[string]string{
			"available": "0",
		})
	}

	total := new(big.Int)
	for _, u := range np.Units {
		total.Add(total, u.Value)
	}
	fee := EstimateFee(len(np.Units), 1, np.FeeRate)

	amount := new(big.Int).Sub(total, fee)
	if amount.Sign() <= 0 {
		return nil, txerr.WithDetails(txerr.ErrInsufficientFeeBalance, map[string]string{
			"available": total.String(),
			"fee":       fee.String(),
		})
	}
	if amount.Cmp(new(big.Int).SetUint64(s.asset.Chain.DustLimit())) < 0 {
		return nil, txerr.WithDetails(txerr.ErrDustAmount, map[string]string{
			"amount": amount.String(),
		})
	}

	s.log.WithFields(logrus.Fields{
		"inputs": len(np.Units),
		"amount": amount.String(),
		"fee":    fee.String(),
	}).Debug("sweeping all spendable units")

	return &chain.SignablePlan{
		Asset: s.asset,
		TxData: &TxData{
			Chain:    s.asset.Chain,
			To:       req.To,
			Script:   script,
			Amount:   amount,
			Inputs:   np.Units,
			Fee:      fee,
			Change:   new(big.Int),
			NoChange: true,
		},
		Mode:       mode,
		Credential: credential,
	}, nil
}

// buildToken moves token/inscription units; the fee is paid from the native
// balance rather than the selected units.
func (s *Strategy) buildToken(np *chain.NetworkParams, req chain.TxRequest, amount *big.Int, script []byte, credential string, mode chain.WalletMode) (*chain.SignablePlan, error) {
	if np.FeeBalance == nil {
		return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
			"chain": s.asset.Chain.String(),
			"field": "native balance",
		})
	}

	if req.SendMax {
		amount = s.asset.AtomicBalance()
	}

	sel := Select(np.Units, amount, np.FeeRate, 0, false)
	if sel.Exhausted {
		return nil, txerr.WithDetails(txerr.ErrInsufficientFunds, map[string]string{
			"available": sel.Total().String(),
			"required":  amount.String(),
		})
	}

	if np.FeeBalance.Cmp(sel.Fee) < 0 {
		return nil, txerr.WithDetails(txerr.ErrInsufficientFeeBalance, map[string]string{
			"native_balance": np.FeeBalance.String(),
			"fee":            sel.Fee.String(),
		})
	}

	return &chain.SignablePlan{
		Asset: s.asset,
		TxData: &TxData{
			Chain:    s.asset.Chain,
			To:       req.To,
			Script:   script,
			Amount:   amount,
			Inputs:   sel.Units,
			Fee:      sel.Fee,
			Change:   sel.Change,
			Contract: s.asset.Contract,
		},
		Mode:       mode,
		Credential: credential,
	}, nil
}
