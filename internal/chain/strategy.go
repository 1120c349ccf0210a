package chain

import (
	"context"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"
)

// WalletMode identifies how the resulting plan will be authorized.
type WalletMode string

// Wallet authorization modes.
const (
	ModeStandard WalletMode = "standard"
	ModeHardware WalletMode = "hardware"
)

// TxRequest is the caller-supplied transfer form.
type TxRequest struct {
	To      string // Destination address
	Amount  string // Decimal amount string
	Memo    string // Optional memo / destination tag
	SendMax bool   // Sweep the entire spendable balance
}

// SpendableUnit is a chain-specific atomic spendable record: a UTXO, a coin
// object, or an inscription input. Selection never mutates a source list,
// only produces subsets.
type SpendableUnit struct {
	ID      string   // Transaction hash or object ID
	Vout    uint32   // Output index (UTXO chains)
	Value   *big.Int // Atomic value
	Version uint64   // Object version (object chains)
	Digest  string   // Object digest (object chains)
	Script  string   // Locking script hint, when the source provides one
}

// TxData is the chain-specific transaction record carried by a SignablePlan.
type TxData interface {
	// ChainID reports which chain the record is encoded for.
	ChainID() ID
}

// SignablePlan is the sole artifact crossing the engine/signing boundary.
type SignablePlan struct {
	Asset      Asset      // Asset being transferred
	TxData     TxData     // Chain-specific transaction record
	Mode       WalletMode // Wallet authorization mode
	Credential string     // Optional signing credential reference
}

// BlockHeader is a chain block/ledger head snapshot.
type BlockHeader struct {
	Hash      string
	Number    uint64
	Timestamp int64 // Milliseconds since epoch
}

// AccountResources is a Tron-style resource snapshot for one account.
type AccountResources struct {
	Exists              bool  // Account is activated on chain
	FreeBandwidth       int64 // Free bandwidth quota
	UsedBandwidth       int64 // Free bandwidth consumed
	StakedBandwidth     int64 // Bandwidth from staking
	UsedStakedBandwidth int64
	Energy              int64 // Energy quota from staking
	UsedEnergy          int64
}

// AvailableBandwidth returns the bandwidth still spendable.
func (r *AccountResources) AvailableBandwidth() int64 {
	free := r.FreeBandwidth - r.UsedBandwidth
	if free < 0 {
		free = 0
	}
	staked := r.StakedBandwidth - r.UsedStakedBandwidth
	if staked < 0 {
		staked = 0
	}
	return free + staked
}

// AvailableEnergy returns the energy still spendable.
func (r *AccountResources) AvailableEnergy() int64 {
	e := r.Energy - r.UsedEnergy
	if e < 0 {
		e = 0
	}
	return e
}

// AccountInfo is an XRP-style account aggregate.
type AccountInfo struct {
	Exists      bool
	Balance     *big.Int // Atomic native balance
	Sequence    uint32   // Next transaction sequence
	Reserve     *big.Int // Base reserve the account must retain
	LedgerIndex uint64   // Current validated ledger index
}

// AccountStatus is a TON-style account snapshot.
type AccountStatus struct {
	Seqno    uint32 // Wallet contract sequence number
	Deployed bool   // Wallet contract is deployed
}

// NetworkParams is the per-build scratch state populated by a strategy's
// fetch step and consumed by its build step. It is created fresh for every
// build and never shared: a build is pure given its asset, request, and
// NetworkParams.
type NetworkParams struct {
	FetchedAt time.Time // When the fetch completed; informational only

	// Account model.
	Nonce    uint64
	GasPrice *big.Int
	GasLimit uint64

	// Native-coin balance available to pay fees for a token transfer.
	FeeBalance *big.Int

	// UTXO / object model.
	Units   []SpendableUnit
	FeeRate uint64

	// Tron.
	Header              *BlockHeader
	SenderResources     *AccountResources
	RecipientResources  *AccountResources
	RecipientHoldsToken bool

	// TON.
	Seqno        uint32
	Deployed     bool
	EstimatedFee *big.Int

	// Solana.
	Blockhash string

	// XRP.
	Account    *AccountInfo
	Fee        *big.Int // Suggested fee in atomic units
	DestActive bool
}

// Strategy is the operation set every chain implementation satisfies.
// FetchNetworkData returns an explicit NetworkParams value that the caller
// threads into BuildParams; strategies themselves hold no per-build state.
type Strategy interface {
	// ChainID returns the chain this strategy builds for.
	ChainID() ID

	// FetchNetworkData fetches the minimal chain state needed to build a
	// transfer of amount to toAddress. It fails with a missing-network-data
	// error when a critical field cannot be resolved; it never defaults
	// critical fee inputs.
	FetchNetworkData(ctx context.Context, amount *big.Int, toAddress string) (*NetworkParams, error)

	// DisplayFee returns a decimal fee string for the UI from whatever np
	// currently holds. It returns "0" when np is nil or unfetched and
	// never fails.
	DisplayFee(np *NetworkParams) string

	// BuildParams performs the authoritative amount clamping, input
	// selection, and parameter assembly. It either returns a complete
	// SignablePlan or fails; partial results are never returned.
	BuildParams(ctx context.Context, np *NetworkParams, req TxRequest, credential string, mode WalletMode) (*SignablePlan, error)

	// ValidateAddress checks a destination address against the chain's
	// coin type.
	ValidateAddress(address string) bool

	// HasMemo reports whether the chain accepts a memo or destination tag.
	HasMemo() bool
}

// DataSource is the abstract chain-data service the engine consumes. Every
// call is keyed by chain ID and address (plus optional contract) and is
// independently fallible. Retry policy belongs to implementations, never to
// the strategies.
type DataSource interface {
	// Balance returns the native-coin balance in atomic units.
	Balance(ctx context.Context, id ID, address string) (*big.Int, error)

	// TokenBalance returns a token balance in atomic units.
	TokenBalance(ctx context.Context, id ID, address, contract string) (*big.Int, error)

	// UTXOs lists spendable units for an address. For token/inscription
	// assets contract narrows the listing.
	UTXOs(ctx context.Context, id ID, address, contract string) ([]SpendableUnit, error)

	// FeeRate returns the chain's fee rate in its native unit
	// (satoshis/vbyte for UTXO chains, drops for XRP).
	FeeRate(ctx context.Context, id ID) (uint64, error)

	// Nonce returns the next account nonce.
	Nonce(ctx context.Context, id ID, address string) (uint64, error)

	// GasEstimate returns a gas limit and gas price for a transfer.
	GasEstimate(ctx context.Context, id ID, from, to string, value *big.Int, data []byte) (gasLimit uint64, gasPrice *big.Int, err error)

	// BlockHeader returns the current block/ledger head.
	BlockHeader(ctx context.Context, id ID) (*BlockHeader, error)

	// AccountResources returns bandwidth/energy resources for an account.
	AccountResources(ctx context.Context, id ID, address string) (*AccountResources, error)

	// TokenHolder reports whether an address already holds the token.
	TokenHolder(ctx context.Context, id ID, address, contract string) (bool, error)

	// AccountStatus returns sequence number and deployment status.
	AccountStatus(ctx context.Context, id ID, address string) (*AccountStatus, error)

	// EstimateFee returns an estimated total fee for a native transfer.
	EstimateFee(ctx context.Context, id ID, from, to string, amount *big.Int) (*big.Int, error)

	// LatestBlockhash returns the most recent block hash.
	LatestBlockhash(ctx context.Context, id ID) (string, error)

	// AccountInfo returns an account aggregate (balance, sequence,
	// reserve, ledger index).
	AccountInfo(ctx context.Context, id ID, address string) (*AccountInfo, error)

	// GasPrice returns the chain's reference gas price.
	GasPrice(ctx context.Context, id ID) (*big.Int, error)

	// Objects lists owned coin objects for an address.
	Objects(ctx context.Context, id ID, address, coinType string) ([]SpendableUnit, error)

	// Broadcast submits an encoded, signed transaction and returns its hash.
	Broadcast(ctx context.Context, id ID, payload []byte) (string, error)
}

// AssetStore resolves asset relationships from the caller's local storage.
type AssetStore interface {
	// FeeAsset returns the native-coin counterpart of a token asset, used
	// for every strategy's gas/fee-sufficiency check. For a native asset
	// it returns the asset itself.
	FeeAsset(asset Asset) (Asset, error)
}

// ScriptProvider validates addresses and derives locking scripts. It wraps
// the external cryptographic library; the engine never implements script
// primitives itself.
type ScriptProvider interface {
	// Validate checks an address against a SLIP-44 coin type.
	Validate(coinType uint32, address string) bool

	// LockingScript derives the locking script for a destination address.
	// Only meaningful for UTXO-model chains.
	LockingScript(id ID, address string) ([]byte, error)
}

// Deps bundles the external capabilities a strategy consumes.
type Deps struct {
	Data    DataSource
	Assets  AssetStore
	Scripts ScriptProvider
	Log     *logrus.Logger
}

// Logger returns the configured logger or a discard-level default, so
// strategies can log unconditionally.
func (d Deps) Logger() *logrus.Logger {
	if d.Log != nil {
		return d.Log
	}
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}
