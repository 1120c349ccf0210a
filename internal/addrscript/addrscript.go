// Package addrscript wraps the external address/script capability: address
// validation keyed by SLIP-44 coin type and locking-script derivation for
// UTXO-model chains. The engine itself never implements script primitives.
package addrscript

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"

	"github.com/nexawallet/txcore/internal/chain"
	txerr "github.com/nexawallet/txcore/pkg/errors"
)

var (
	// Base58 shapes for chains whose script layer lives outside btcd.
	tronRegex   = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)
	solanaRegex = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
	xrpRegex    = regexp.MustCompile(`^r[1-9A-HJ-NP-Za-km-z]{24,34}$`)
	tonRegex    = regexp.MustCompile(`^(?:EQ|UQ|kQ|0Q)[A-Za-z0-9_-]{46}$`)
	suiRegex    = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
)

// litecoinParams carries the Litecoin address version bytes so btcutil can
// decode and txscript can encode LTC destinations.
//
//nolint:gochecknoglobals // Static network parameters
var litecoinParams = chaincfg.Params{
	Name:             "litecoin",
	PubKeyHashAddrID: 0x30,
	ScriptHashAddrID: 0x32,
	Bech32HRPSegwit:  "ltc",
}

// dogecoinParams carries the Dogecoin address version bytes.
//
//nolint:gochecknoglobals // Static network parameters
var dogecoinParams = chaincfg.Params{
	Name:             "dogecoin",
	PubKeyHashAddrID: 0x1e,
	ScriptHashAddrID: 0x16,
}

// Provider implements chain.ScriptProvider on top of btcd and go-ethereum.
type Provider struct{}

// Compile-time interface check
var _ chain.ScriptProvider = (*Provider)(nil)

// New creates a script provider.
func New() *Provider {
	return &Provider{}
}

// netParams returns the btcd network parameters for a UTXO chain.
func netParams(id chain.ID) (*chaincfg.Params, bool) {
	switch id {
	case chain.BTC, chain.BCH:
		// BCH legacy addresses share the Bitcoin version bytes.
		return &chaincfg.MainNetParams, true
	case chain.LTC:
		return &litecoinParams, true
	case chain.DOGE:
		return &dogecoinParams, true
	default:
		return nil, false
	}
}

// utxoChainForCoinType maps a SLIP-44 coin type back to its UTXO chain.
func utxoChainForCoinType(coinType uint32) (chain.ID, bool) {
	switch coinType {
	case 0:
		return chain.BTC, true
	case 2:
		return chain.LTC, true
	case 3:
		return chain.DOGE, true
	case 145:
		return chain.BCH, true
	default:
		return "", false
	}
}

// Validate checks an address against a SLIP-44 coin type.
func (p *Provider) Validate(coinType uint32, address string) bool {
	if address == "" {
		return false
	}

	if id, ok := utxoChainForCoinType(coinType); ok {
		params, _ := netParams(id)
		addr, err := btcutil.DecodeAddress(address, params)
		return err == nil && addr.IsForNet(params)
	}

	switch coinType {
	case 60: // EVM family
		return validEVMAddress(address)
	case 195: // Tron
		return tronRegex.MatchString(address)
	case 501: // Solana
		return solanaRegex.MatchString(address)
	case 144: // XRP
		return xrpRegex.MatchString(address)
	case 607: // TON
		return tonRegex.MatchString(address)
	case 784: // Sui
		return suiRegex.MatchString(address)
	default:
		return false
	}
}

// validEVMAddress accepts a 20-byte hex address. All-lowercase and
// all-uppercase forms carry no checksum; a mixed-case form must match its
// EIP-55 checksum exactly.
func validEVMAddress(address string) bool {
	if !common.IsHexAddress(address) {
		return false
	}

	hexPart := strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X")
	if hexPart == strings.ToLower(hexPart) || hexPart == strings.ToUpper(hexPart) {
		return true
	}
	return checksumEVMAddress(hexPart) == hexPart
}

// checksumEVMAddress returns the EIP-55 mixed-case form of a 40-char hex
// address (without the 0x prefix).
func checksumEVMAddress(hexPart string) string {
	lower := strings.ToLower(hexPart)

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := hex.EncodeToString(h.Sum(nil))

	out := []byte(lower)
	for i, c := range out {
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			out[i] = c - ('a' - 'A')
		}
	}
	return string(out)
}

// LockingScript derives the locking script for a destination address on a
// UTXO-model chain.
func (p *Provider) LockingScript(id chain.ID, address string) ([]byte, error) {
	params, ok := netParams(id)
	if !ok {
		return nil, txerr.WithDetails(txerr.ErrScriptGeneration, map[string]string{
			"chain":  id.String(),
			"reason": "not a UTXO chain",
		})
	}

	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", txerr.ErrScriptGeneration, err)
	}
	if !addr.IsForNet(params) {
		return nil, txerr.WithDetails(txerr.ErrScriptGeneration, map[string]string{
			"chain":   id.String(),
			"address": address,
			"reason":  "address is for a different network",
		})
	}

	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", txerr.ErrScriptGeneration, err)
	}
	return script, nil
}
