package addrscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexawallet/txcore/internal/chain"
	txerr "github.com/nexawallet/txcore/pkg/errors"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	p := New()

	tests := []struct {
		name     string
		coinType uint32
		address  string
		valid    bool
	}{
		{"bitcoin p2pkh", 0, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", true},
		{"bitcoin bech32", 0, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", true},
		{"bitcoin bad checksum", 0, "1A1zP1eP5QGefi2DMPTfTL5SLmv7Divfxx", false},
		{"litecoin p2pkh", 2, "LM2WMpR1Rp6j3Sa59cMXMs1SPzj9eXpGc1", true},
		{"litecoin rejects bitcoin address", 2, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", false},
		{"dogecoin p2pkh", 3, "DH5yaieqoZN36fDVciNyRueRGvGLR3mr7L", true},
		{"bch legacy shares bitcoin version bytes", 145, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", true},
		{"evm checksummed", 60, "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", true},
		{"evm all lowercase", 60, "0x742d35cc6634c0532925a3b844bc454e4438f44e", true},
		{"evm all uppercase", 60, "0x742D35CC6634C0532925A3B844BC454E4438F44E", true},
		{"evm bad checksum", 60, "0x742d35cC6634C0532925a3b844Bc454e4438f44e", false},
		{"evm missing prefix", 60, "742d35Cc6634C0532925a3b844Bc454e4438f44e", false},
		{"tron", 195, "TJRabPrwbZy45sbavfcjinPJC18kjpRTv8", true},
		{"tron wrong prefix", 195, "AJRabPrwbZy45sbavfcjinPJC18kjpRTv8", false},
		{"solana", 501, "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T", true},
		{"solana forbidden base58 char", 501, "0Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T", false},
		{"xrp", 144, "rPEPPER7kfTD9w2To4CQk6UCfuHM9c6GDY", true},
		{"xrp wrong prefix", 144, "xPEPPER7kfTD9w2To4CQk6UCfuHM9c6GDY", false},
		{"ton bounceable", 607, "EQDrjaLahLkMB-hMCmkzOyBuHJ139ZUYmPHu6RRBKnbdLIYI", true},
		{"ton too short", 607, "EQDrjaLahLkMB-hMCmkzOyBu", false},
		{"sui", 784, "0x0000000000000000000000000000000000000000000000000000000000000002", true},
		{"sui short hex", 784, "0x02", false},
		{"empty address", 60, "", false},
		{"unknown coin type", 118, "cosmos1qqqsyqcyq5rqwzqfpg9scrgwpugpzysn8lvhf5", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.valid, p.Validate(tc.coinType, tc.address))
		})
	}
}

func TestLockingScript(t *testing.T) {
	t.Parallel()

	p := New()

	t.Run("p2pkh script", func(t *testing.T) {
		t.Parallel()

		script, err := p.LockingScript(chain.BTC, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")
		require.NoError(t, err)

		// OP_DUP OP_HASH160 <20 bytes> OP_EQUALVERIFY OP_CHECKSIG
		require.Len(t, script, 25)
		assert.Equal(t, byte(0x76), script[0])
		assert.Equal(t, byte(0xa9), script[1])
		assert.Equal(t, byte(0x14), script[2])
		assert.Equal(t, byte(0x88), script[23])
		assert.Equal(t, byte(0xac), script[24])
	})

	t.Run("p2wpkh script", func(t *testing.T) {
		t.Parallel()

		script, err := p.LockingScript(chain.BTC, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")
		require.NoError(t, err)

		// OP_0 <20-byte witness program>
		require.Len(t, script, 22)
		assert.Equal(t, byte(0x00), script[0])
		assert.Equal(t, byte(0x14), script[1])
	})

	t.Run("litecoin address uses litecoin version bytes", func(t *testing.T) {
		t.Parallel()

		script, err := p.LockingScript(chain.LTC, "LM2WMpR1Rp6j3Sa59cMXMs1SPzj9eXpGc1")
		require.NoError(t, err)
		require.Len(t, script, 25)
	})

	t.Run("wrong-network address fails", func(t *testing.T) {
		t.Parallel()

		_, err := p.LockingScript(chain.LTC, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")
		assert.ErrorIs(t, err, txerr.ErrScriptGeneration)
	})

	t.Run("non-utxo chain fails", func(t *testing.T) {
		t.Parallel()

		_, err := p.LockingScript(chain.ETH, "0x742d35Cc6634C0532925a3b844Bc454e4438f44e")
		assert.ErrorIs(t, err, txerr.ErrScriptGeneration)
	})
}
