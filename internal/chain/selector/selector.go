// Package selector maps an asset to the chain strategy that can build
// transfers for it.
package selector

import (
	"github.com/agnivade/levenshtein"

	"github.com/nexawallet/txcore/internal/chain"
	"github.com/nexawallet/txcore/internal/chain/evm"
	"github.com/nexawallet/txcore/internal/chain/solana"
	"github.com/nexawallet/txcore/internal/chain/sui"
	"github.com/nexawallet/txcore/internal/chain/ton"
	"github.com/nexawallet/txcore/internal/chain/tron"
	"github.com/nexawallet/txcore/internal/chain/utxo"
	"github.com/nexawallet/txcore/internal/chain/xrp"
	txerr "github.com/nexawallet/txcore/pkg/errors"
)

// Select returns the strategy for the asset's chain. Account-model chains
// share the EVM strategy and UTXO-model chains share the UTXO strategy;
// the remaining chains each have their own. An unrecognized chain is a
// hard, user-visible failure carrying a nearest-match suggestion.
func Select(asset chain.Asset, deps chain.Deps) (chain.Strategy, error) {
	switch {
	case asset.Chain.IsAccountModel():
		return evm.New(asset, deps), nil
	case asset.Chain.IsUTXOModel():
		return utxo.New(asset, deps), nil
	}

	switch asset.Chain {
	case chain.TRX:
		return tron.New(asset, deps), nil
	case chain.TON:
		return ton.New(asset, deps), nil
	case chain.SOL:
		return solana.New(asset, deps), nil
	case chain.XRP:
		return xrp.New(asset, deps), nil
	case chain.SUI:
		return sui.New(asset, deps), nil
	}

	err := txerr.WithDetails(txerr.ErrUnsupportedChain, map[string]string{
		"chain": asset.Chain.String(),
	})
	if nearest := nearestChain(asset.Chain.String()); nearest != "" {
		err = txerr.WithSuggestion(err, "did you mean \""+nearest+"\"?")
	}
	return nil, err
}

// nearestChain returns the supported chain identifier closest to s, or ""
// when nothing is plausibly close.
func nearestChain(s string) string {
	best := ""
	bestDist := 3 // Anything further is noise, not a typo
	for _, id := range chain.AllChains() {
		if d := levenshtein.ComputeDistance(s, id.String()); d < bestDist {
			best = id.String()
			bestDist = d
		}
	}
	return best
}
