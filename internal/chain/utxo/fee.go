package utxo

import (
	"math/big"

	"github.com/nexawallet/txcore/internal/chain"
)

const (
	// P2PKHInputSize is the size of a P2PKH input in bytes.
	P2PKHInputSize = 148

	// P2PKHOutputSize is the size of a P2PKH output in bytes.
	P2PKHOutputSize = 34

	// TxOverhead is the fixed overhead for a transaction in bytes.
	TxOverhead = 10
)

// fixedFeeRates holds the fee rate in atomic units per byte for chains
// where a network estimate is not worth a round trip. Bitcoin itself uses
// the network-estimated rate.
//
//nolint:gochecknoglobals // Static lookup table
var fixedFeeRates = map[chain.ID]uint64{
	chain.LTC:  2,
	chain.DOGE: 1000,
	chain.BCH:  1,
}

// EstimateTxSize estimates the transaction size in bytes.
// P2PKH transaction size estimate:
//   - Fixed overhead: 10 bytes (version: 4, locktime: 4, vin count: 1, vout count: 1)
//   - Per input: ~148 bytes (outpoint: 36, scriptSig: 107, sequence: 4)
//   - Per output: ~34 bytes (value: 8, scriptPubKey: 25)
func EstimateTxSize(numInputs, numOutputs int) uint64 {
	//nolint:gosec // Transaction sizes are always positive and within bounds
	return uint64(TxOverhead + (numInputs * P2PKHInputSize) + (numOutputs * P2PKHOutputSize))
}

// EstimateFee estimates the fee for a transaction with the given shape at a
// fee rate in atomic units per byte.
func EstimateFee(numInputs, numOutputs int, feeRate uint64) *big.Int {
	return new(big.Int).SetUint64(EstimateTxSize(numInputs, numOutputs) * feeRate)
}
