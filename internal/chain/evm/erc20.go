package evm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ERC-20 transfer function selector: keccak256("transfer(address,uint256)")[0:4]
//
//nolint:gochecknoglobals // ERC-20 constant
var erc20TransferSelector = []byte{0xa9, 0x05, 0x9c, 0xbb}

// TransferCalldata builds the ABI-encoded calldata for an ERC-20 transfer.
// transfer(address,uint256) = 0xa9059cbb
func TransferCalldata(to string, amount *big.Int) []byte {
	// 4-byte selector + two 32-byte arguments
	data := make([]byte, 68)
	copy(data[:4], erc20TransferSelector)

	// Pad address to 32 bytes (left-pad with zeros)
	toAddr := common.HexToAddress(to)
	copy(data[16:36], toAddr.Bytes())

	// Pad amount to 32 bytes (left-pad with zeros)
	amountBytes := amount.Bytes()
	copy(data[68-len(amountBytes):68], amountBytes)

	return data
}
