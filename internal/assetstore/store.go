// Package assetstore resolves asset relationships from local metadata. The
// engine only needs one lookup: the native fee-paying counterpart of a token
// asset.
package assetstore

import (
	"fmt"

	"github.com/nexawallet/txcore/internal/chain"
	txerr "github.com/nexawallet/txcore/pkg/errors"
)

// Store resolves native fee assets from the static chain tables.
type Store struct{}

// Compile-time interface check
var _ chain.AssetStore = (*Store)(nil)

// New creates an asset store.
func New() *Store {
	return &Store{}
}

// FeeAsset returns the native-coin counterpart of a token asset, owned by
// the same address. A native asset resolves to itself.
func (s *Store) FeeAsset(asset chain.Asset) (chain.Asset, error) {
	if !asset.Chain.IsValid() {
		return chain.Asset{}, fmt.Errorf("%w: %s", txerr.ErrUnsupportedChain, asset.Chain)
	}
	if !asset.IsToken() {
		return asset, nil
	}
	return chain.Asset{
		Chain:    asset.Chain,
		Symbol:   asset.Chain.Symbol(),
		Decimals: asset.Chain.Decimals(),
		Address:  asset.Address,
	}, nil
}

// NativeAsset builds the native-coin asset for a chain and owner address.
func NativeAsset(id chain.ID, address string) chain.Asset {
	return chain.Asset{
		Chain:    id,
		Symbol:   id.Symbol(),
		Decimals: id.Decimals(),
		Address:  address,
	}
}
