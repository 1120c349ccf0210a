// Package chain defines the chain classification tables, the strategy
// contract every chain implementation satisfies, and the common value
// types (assets, network params, spendable units, signable plans) that
// flow through a transaction build.
package chain

import "strings"

// ID represents a supported blockchain.
type ID string

// Supported blockchain identifiers.
const (
	// Account/nonce model (EVM).
	ETH       ID = "eth"
	BSC       ID = "bsc"
	Polygon   ID = "polygon"
	Arbitrum  ID = "arbitrum"
	Optimism  ID = "optimism"
	Avalanche ID = "avax"

	// UTXO model.
	BTC  ID = "btc"
	LTC  ID = "ltc"
	DOGE ID = "doge"
	BCH  ID = "bch"

	// Single-strategy chains.
	TRX ID = "trx"
	TON ID = "ton"
	SOL ID = "sol"
	XRP ID = "xrp"
	SUI ID = "sui"
)

// Info holds static per-chain metadata.
type Info struct {
	Symbol    string // Native coin symbol
	Name      string // Display name
	Decimals  int    // Native coin decimals
	CoinType  uint32 // BIP44/SLIP-44 coin type
	DustLimit uint64 // Minimum output value (UTXO chains only)
}

// infos is the static per-chain metadata table.
//
//nolint:gochecknoglobals // Static lookup table
var infos = map[ID]Info{
	ETH:       {Symbol: "ETH", Name: "Ethereum", Decimals: 18, CoinType: 60},
	BSC:       {Symbol: "BNB", Name: "BNB Smart Chain", Decimals: 18, CoinType: 60},
	Polygon:   {Symbol: "POL", Name: "Polygon", Decimals: 18, CoinType: 60},
	Arbitrum:  {Symbol: "ETH", Name: "Arbitrum One", Decimals: 18, CoinType: 60},
	Optimism:  {Symbol: "ETH", Name: "OP Mainnet", Decimals: 18, CoinType: 60},
	Avalanche: {Symbol: "AVAX", Name: "Avalanche C-Chain", Decimals: 18, CoinType: 60},

	BTC:  {Symbol: "BTC", Name: "Bitcoin", Decimals: 8, CoinType: 0, DustLimit: 546},
	LTC:  {Symbol: "LTC", Name: "Litecoin", Decimals: 8, CoinType: 2, DustLimit: 546},
	DOGE: {Symbol: "DOGE", Name: "Dogecoin", Decimals: 8, CoinType: 3, DustLimit: 1000000},
	BCH:  {Symbol: "BCH", Name: "Bitcoin Cash", Decimals: 8, CoinType: 145, DustLimit: 546},

	TRX: {Symbol: "TRX", Name: "Tron", Decimals: 6, CoinType: 195},
	TON: {Symbol: "TON", Name: "TON", Decimals: 9, CoinType: 607},
	SOL: {Symbol: "SOL", Name: "Solana", Decimals: 9, CoinType: 501},
	XRP: {Symbol: "XRP", Name: "XRP Ledger", Decimals: 6, CoinType: 144},
	SUI: {Symbol: "SUI", Name: "Sui", Decimals: 9, CoinType: 784},
}

// accountModel marks chains that use the account/nonce transaction model.
//
//nolint:gochecknoglobals // Static lookup table
var accountModel = map[ID]bool{
	ETH: true, BSC: true, Polygon: true, Arbitrum: true, Optimism: true, Avalanche: true,
}

// utxoModel marks chains that use the UTXO transaction model.
//
//nolint:gochecknoglobals // Static lookup table
var utxoModel = map[ID]bool{
	BTC: true, LTC: true, DOGE: true, BCH: true,
}

// memoSupport marks chains that accept a memo or destination tag.
//
//nolint:gochecknoglobals // Static lookup table
var memoSupport = map[ID]bool{
	XRP: true, TON: true,
}

// IsAccountModel returns true for account/nonce-model chains.
func (id ID) IsAccountModel() bool {
	return accountModel[id]
}

// IsUTXOModel returns true for UTXO-model chains.
func (id ID) IsUTXOModel() bool {
	return utxoModel[id]
}

// SupportsMemo returns true if the chain accepts a memo or destination tag.
func (id ID) SupportsMemo() bool {
	return memoSupport[id]
}

// IsValid returns true if the chain ID is a known chain.
func (id ID) IsValid() bool {
	_, ok := infos[id]
	return ok
}

// String returns the chain identifier string.
func (id ID) String() string {
	return string(id)
}

// CoinType returns the SLIP-44 coin type for a chain.
func (id ID) CoinType() uint32 {
	return infos[id].CoinType
}

// Decimals returns the native coin decimals for a chain.
func (id ID) Decimals() int {
	return infos[id].Decimals
}

// Symbol returns the native coin symbol for a chain.
func (id ID) Symbol() string {
	return infos[id].Symbol
}

// DisplayName returns the human-readable chain name.
func (id ID) DisplayName() string {
	return infos[id].Name
}

// DustLimit returns the minimum output value in atomic units for
// UTXO-based chains. Non-UTXO chains return 0.
func (id ID) DustLimit() uint64 {
	return infos[id].DustLimit
}

// ParseID parses a string into a chain ID. Matching is case-insensitive.
func ParseID(s string) (ID, bool) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	return id, id.IsValid()
}

// AllChains returns all known chain IDs in stable order.
func AllChains() []ID {
	return []ID{
		ETH, BSC, Polygon, Arbitrum, Optimism, Avalanche,
		BTC, LTC, DOGE, BCH,
		TRX, TON, SOL, XRP, SUI,
	}
}
