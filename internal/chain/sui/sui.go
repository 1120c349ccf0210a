// Package sui builds signable transfer parameters for Sui, where balances
// live in discrete owned objects and input count is capped by hardware
// signing limits.
package sui

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nexawallet/txcore/internal/chain"
	txerr "github.com/nexawallet/txcore/pkg/errors"
)

const (
	// MaxInputObjects is the hardware-signing limit on transaction inputs.
	MaxInputObjects = 50

	// ComputationUnits is the computation charge for a simple transfer,
	// multiplied by the reference gas price.
	ComputationUnits = 1000

	// StorageBudget is the fixed storage component of the gas budget in
	// MIST. It is waived on a full sweep since swept objects are
	// destroyed rather than rewritten.
	StorageBudget = 2_000_000
)

// TxData is the Sui transaction record carried by a SignablePlan.
type TxData struct {
	Chain     chain.ID              // Owning chain
	To        string                // Recipient address
	Amount    *big.Int              // Value in MIST (token atomic units for coins)
	Contract  string                // Coin type tag, empty for native SUI
	Objects   []chain.SpendableUnit // Input objects, largest first
	GasBudget *big.Int              // Total gas budget in MIST
	GasPrice  *big.Int              // Reference gas price
}

// ChainID implements chain.TxData.
func (d *TxData) ChainID() chain.ID { return d.Chain }

// Strategy builds Sui transfers.
type Strategy struct {
	asset   chain.Asset
	data    chain.DataSource
	assets  chain.AssetStore
	scripts chain.ScriptProvider
	log     *logrus.Entry
}

// New creates a Sui strategy for the asset.
func New(asset chain.Asset, deps chain.Deps) *Strategy {
	return &Strategy{
		asset:   asset,
		data:    deps.Data,
		assets:  deps.Assets,
		scripts: deps.Scripts,
		log:     deps.Logger().WithField("strategy", "sui"),
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

// FetchNetworkData resolves the reference gas price and the owned coin
// objects in parallel. Token transfers also resolve the native balance
// that pays gas.
func (s *Strategy) FetchNetworkData(ctx context.Context, _ *big.Int, _ string) (*chain.NetworkParams, error) {
	np := &chain.NetworkParams{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		price, err := s.data.GasPrice(gctx, s.asset.Chain)
		if err != nil {
			return txerr.Wrap(err, "fetching reference gas price")
		}
		np.GasPrice = price
		return nil
	})

	g.Go(func() error {
		objects, err := s.data.Objects(gctx, s.asset.Chain, s.asset.Address, s.asset.Contract)
		if err != nil {
			return txerr.Wrap(err, "listing coin objects")
		}
		np.Units = objects
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
	if np.GasPrice == nil {
		return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
			"chain": s.asset.Chain.String(),
			"field": "gas price",
		})
	}

	np.FetchedAt = time.Now()
	return np, nil
}

// gasBudget computes computation plus storage. The storage component is
// waived when sweeping since the inputs are destroyed, not rewritten.
func gasBudget(gasPrice *big.Int, sweep bool) *big.Int {
	budget := new(big.Int).Mul(gasPrice, big.NewInt(ComputationUnits))
	if !sweep {
		budget.Add(budget, big.NewInt(StorageBudget))
	}
	return budget
}

// DisplayFee returns the gas budget as a decimal SUI string.
// Returns "0" before a successful fetch.
func (s *Strategy) DisplayFee(np *chain.NetworkParams) string {
	if np == nil || np.GasPrice == nil {
		return "0"
	}
	return chain.FormatDecimalAmount(gasBudget(np.GasPrice, false), s.asset.Chain.Decimals())
}

// selectObjects accumulates the largest objects until target is met,
// bounded by the hardware input cap. For a sweep it takes the cap's worth
// of the largest objects outright.
func (s *Strategy) selectObjects(units []chain.SpendableUnit, target *big.Int, sweep bool) ([]chain.SpendableUnit, *big.Int, error) {
	sorted := make([]chain.SpendableUnit, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Value.Cmp(sorted[j].Value) > 0
	})

	if sweep {
		if len(sorted) > MaxInputObjects {
			s.log.WithFields(logrus.Fields{
				"objects": len(sorted),
				"cap":     MaxInputObjects,
			}).Warn("balance fragmented beyond input cap; sweeping largest objects only")
			sorted = sorted[:MaxInputObjects]
		}
		total := new(big.Int)
		for _, u := range sorted {
			total.Add(total, u.Value)
		}
		return sorted, total, nil
	}

	selected := make([]chain.SpendableUnit, 0, len(sorted))
	total := new(big.Int)
	for _, u := range sorted {
		if len(selected) == MaxInputObjects {
			return nil, nil, txerr.WithDetails(txerr.ErrInsufficientFunds, map[string]string{
				"reason":   "balance insufficient or too fragmented",
				"selected": total.String(),
				"required": target.String(),
			})
		}
		selected = append(selected, u)
		total.Add(total, u.Value)
		if total.Cmp(target) >= 0 {
			return selected, total, nil
		}
	}

	return nil, nil, txerr.WithDetails(txerr.ErrInsufficientFunds, map[string]string{
		"available": total.String(),
		"required":  target.String(),
	})
}

// BuildParams selects coin objects and assembles the final transfer
// parameters.
func (s *Strategy) BuildParams(_ context.Context, np *chain.NetworkParams, req chain.TxRequest, credential string, mode chain.WalletMode) (*chain.SignablePlan, error) {
	if np == nil || np.GasPrice == nil {
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
	sweep := req.SendMax && !s.asset.IsToken()
	budget := gasBudget(np.GasPrice, sweep)

	if s.asset.IsToken() {
		return s.buildToken(np, req, amount, budget, credential, mode)
	}

	if sweep {
		objects, total, err := s.selectObjects(np.Units, nil, true)
		if err != nil {
			return nil, err
		}
		amount = new(big.Int).Sub(total, budget)
		if amount.Sign() <= 0 {
			return nil, txerr.WithDetails(txerr.ErrInsufficientFeeBalance, map[string]string{
				"available": total.String(),
				"budget":    budget.String(),
			})
		}
		return s.plan(req, amount, objects, budget, np.GasPrice, credential, mode), nil
	}

	target := new(big.Int).Add(amount, budget)
	objects, _, err := s.selectObjects(np.Units, target, false)
	if err != nil {
		return nil, err
	}
	return s.plan(req, amount, objects, budget, np.GasPrice, credential, mode), nil
}

// buildToken moves token coin objects; gas is never paid from them, so the
// native balance must cover the budget.
func (s *Strategy) buildToken(np *chain.NetworkParams, req chain.TxRequest, amount, budget *big.Int, credential string, mode chain.WalletMode) (*chain.SignablePlan, error) {
	if np.FeeBalance == nil {
		return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
			"chain": s.asset.Chain.String(),
			"field": "native balance",
		})
	}
	if np.FeeBalance.Cmp(budget) < 0 {
		return nil, txerr.WithDetails(txerr.ErrInsufficientFeeBalance, map[string]string{
			"native_balance": np.FeeBalance.String(),
			"budget":         budget.String(),
		})
	}

	if tokenBalance := s.asset.AtomicBalance(); req.SendMax || amount.Cmp(tokenBalance) > 0 {
		amount = tokenBalance
	}

	objects, _, err := s.selectObjects(np.Units, amount, false)
	if err != nil {
		return nil, err
	}
	return s.plan(req, amount, objects, budget, np.GasPrice, credential, mode), nil
}

func (s *Strategy) plan(req chain.TxRequest, amount *big.Int, objects []chain.SpendableUnit, budget, gasPrice *big.Int, credential string, mode chain.WalletMode) *chain.SignablePlan {
	return &chain.SignablePlan{
		Asset: s.asset,
		TxData: &TxData{
			Chain:     s.asset.Chain,
			To:        req.To,
			Amount:    amount,
			Contract:  s.asset.Contract,
			Objects:   objects,
			GasBudget: budget,
			GasPrice:  gasPrice,
		},
		Mode:       mode,
		Credential: credential,
	}
}
