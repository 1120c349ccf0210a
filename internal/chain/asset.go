package chain

import "math/big"

// Asset identifies a holding: a native coin or a token on a specific chain.
// It is an immutable input to a build. Balance is advisory; the
// authoritative balance lives in the caller's storage.
type Asset struct {
	Chain    ID     // Owning chain
	Symbol   string // Display symbol
	Contract string // Token/contract address, empty for the native coin
	Decimals int    // Atomic precision
	Balance  string // Advisory decimal balance
	Address  string // Owning wallet address
}

// IsToken returns true if the asset is a contract token rather than the
// chain's native coin.
func (a Asset) IsToken() bool {
	return a.Contract != ""
}

// AtomicBalance returns the advisory balance in atomic units. Invalid or
// empty balances yield zero.
func (a Asset) AtomicBalance() *big.Int {
	return ToAtomicInt(a.Balance, a.Decimals)
}
