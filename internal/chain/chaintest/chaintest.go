// Package chaintest provides stub implementations of the engine's external
// capabilities for strategy tests.
package chaintest

import (
	"context"
	"fmt"
	"math/big"

	"github.com/nexawallet/txcore/internal/chain"
)

// Source is a chain.DataSource stub. Any method without a function field
// set fails, so tests only stub what a strategy is expected to call.
type Source struct {
	BalanceFn          func(ctx context.Context, id chain.ID, address string) (*big.Int, error)
	TokenBalanceFn     func(ctx context.Context, id chain.ID, address, contract string) (*big.Int, error)
	UTXOsFn            func(ctx context.Context, id chain.ID, address, contract string) ([]chain.SpendableUnit, error)
	FeeRateFn          func(ctx context.Context, id chain.ID) (uint64, error)
	NonceFn            func(ctx context.Context, id chain.ID, address string) (uint64, error)
	GasEstimateFn      func(ctx context.Context, id chain.ID, from, to string, value *big.Int, data []byte) (uint64, *big.Int, error)
	BlockHeaderFn      func(ctx context.Context, id chain.ID) (*chain.BlockHeader, error)
	AccountResourcesFn func(ctx context.Context, id chain.ID, address string) (*chain.AccountResources, error)
	TokenHolderFn      func(ctx context.Context, id chain.ID, address, contract string) (bool, error)
	AccountStatusFn    func(ctx context.Context, id chain.ID, address string) (*chain.AccountStatus, error)
	EstimateFeeFn      func(ctx context.Context, id chain.ID, from, to string, amount *big.Int) (*big.Int, error)
	LatestBlockhashFn  func(ctx context.Context, id chain.ID) (string, error)
	AccountInfoFn      func(ctx context.Context, id chain.ID, address string) (*chain.AccountInfo, error)
	GasPriceFn         func(ctx context.Context, id chain.ID) (*big.Int, error)
	ObjectsFn          func(ctx context.Context, id chain.ID, address, coinType string) ([]chain.SpendableUnit, error)
	BroadcastFn        func(ctx context.Context, id chain.ID, payload []byte) (string, error)
}

// Compile-time interface check
var _ chain.DataSource = (*Source)(nil)

func unstubbed(name string) error {
	return fmt.Errorf("chaintest: %s not stubbed", name)
}

// Balance implements chain.DataSource.
func (s *Source) Balance(ctx context.Context, id chain.ID, address string) (*big.Int, error) {
	if s.BalanceFn == nil {
		return nil, unstubbed("Balance")
	}
	return s.BalanceFn(ctx, id, address)
}

// TokenBalance implements chain.DataSource.
func (s *Source) TokenBalance(ctx context.Context, id chain.ID, address, contract string) (*big.Int, error) {
	if s.TokenBalanceFn == nil {
		return nil, unstubbed("TokenBalance")
	}
	return s.TokenBalanceFn(ctx, id, address, contract)
}

// UTXOs implements chain.DataSource.
func (s *Source) UTXOs(ctx context.Context, id chain.ID, address, contract string) ([]chain.SpendableUnit, error) {
	if s.UTXOsFn == nil {
		return nil, unstubbed("UTXOs")
	}
	return s.UTXOsFn(ctx, id, address, contract)
}

// FeeRate implements chain.DataSource.
func (s *Source) FeeRate(ctx context.Context, id chain.ID) (uint64, error) {
	if s.FeeRateFn == nil {
		return 0, unstubbed("FeeRate")
	}
	return s.FeeRateFn(ctx, id)
}

// Nonce implements chain.DataSource.
func (s *Source) Nonce(ctx context.Context, id chain.ID, address string) (uint64, error) {
	if s.NonceFn == nil {
		return 0, unstubbed("Nonce")
	}
	return s.NonceFn(ctx, id, address)
}

// GasEstimate implements chain.DataSource.
func (s *Source) GasEstimate(ctx context.Context, id chain.ID, from, to string, value *big.Int, data []byte) (uint64, *big.Int, error) {
	if s.GasEstimateFn == nil {
		return 0, nil, unstubbed("GasEstimate")
	}
	return s.GasEstimateFn(ctx, id, from, to, value, data)
}

// BlockHeader implements chain.DataSource.
func (s *Source) BlockHeader(ctx context.Context, id chain.ID) (*chain.BlockHeader, error) {
	if s.BlockHeaderFn == nil {
		return nil, unstubbed("BlockHeader")
	}
	return s.BlockHeaderFn(ctx, id)
}

// AccountResources implements chain.DataSource.
func (s *Source) AccountResources(ctx context.Context, id chain.ID, address string) (*chain.AccountResources, error) {
	if s.AccountResourcesFn == nil {
		return nil, unstubbed("AccountResources")
	}
	return s.AccountResourcesFn(ctx, id, address)
}

// TokenHolder implements chain.DataSource.
func (s *Source) TokenHolder(ctx context.Context, id chain.ID, address, contract string) (bool, error) {
	if s.TokenHolderFn == nil {
		return false, unstubbed("TokenHolder")
	}
	return s.TokenHolderFn(ctx, id, address, contract)
}

// AccountStatus implements chain.DataSource.
func (s *Source) AccountStatus(ctx context.Context, id chain.ID, address string) (*chain.AccountStatus, error) {
	if s.AccountStatusFn == nil {
		return nil, unstubbed("AccountStatus")
	}
	return s.AccountStatusFn(ctx, id, address)
}

// EstimateFee implements chain.DataSource.
func (s *Source) EstimateFee(ctx context.Context, id chain.ID, from, to string, amount *big.Int) (*big.Int, error) {
	if s.EstimateFeeFn == nil {
		return nil, unstubbed("EstimateFee")
	}
	return s.EstimateFeeFn(ctx, id, from, to, amount)
}

// LatestBlockhash implements chain.DataSource.
func (s *Source) LatestBlockhash(ctx context.Context, id chain.ID) (string, error) {
	if s.LatestBlockhashFn == nil {
		return "", unstubbed("LatestBlockhash")
	}
	return s.LatestBlockhashFn(ctx, id)
}

// AccountInfo implements chain.DataSource.
func (s *Source) AccountInfo(ctx context.Context, id chain.ID, address string) (*chain.AccountInfo, error) {
	if s.AccountInfoFn == nil {
		return nil, unstubbed("AccountInfo")
	}
	return s.AccountInfoFn(ctx, id, address)
}

// GasPrice implements chain.DataSource.
func (s *Source) GasPrice(ctx context.Context, id chain.ID) (*big.Int, error) {
	if s.GasPriceFn == nil {
		return nil, unstubbed("GasPrice")
	}
	return s.GasPriceFn(ctx, id)
}

// Objects implements chain.DataSource.
func (s *Source) Objects(ctx context.Context, id chain.ID, address, coinType string) ([]chain.SpendableUnit, error) {
	if s.ObjectsFn == nil {
		return nil, unstubbed("Objects")
	}
	return s.ObjectsFn(ctx, id, address, coinType)
}

// Broadcast implements chain.DataSource.
func (s *Source) Broadcast(ctx context.Context, id chain.ID, payload []byte) (string, error) {
	if s.BroadcastFn == nil {
		return "", unstubbed("Broadcast")
	}
	return s.BroadcastFn(ctx, id, payload)
}

// Scripts is a chain.ScriptProvider stub. By default every address
// validates and locking scripts succeed with a fixed placeholder.
type Scripts struct {
	ValidateFn      func(coinType uint32, address string) bool
	LockingScriptFn func(id chain.ID, address string) ([]byte, error)
}

// Compile-time interface check
var _ chain.ScriptProvider = (*Scripts)(nil)

// Validate implements chain.ScriptProvider.
func (s *Scripts) Validate(coinType uint32, address string) bool {
	if s.ValidateFn == nil {
		return true
	}
	return s.ValidateFn(coinType, address)
}

// LockingScript implements chain.ScriptProvider.
func (s *Scripts) LockingScript(id chain.ID, address string) ([]byte, error) {
	if s.LockingScriptFn == nil {
		return []byte{0x76, 0xa9, 0x14}, nil
	}
	return s.LockingScriptFn(id, address)
}
