package utxo

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexawallet/txcore/internal/chain"
	"github.com/nexawallet/txcore/internal/chain/chaintest"
	txerr "github.com/nexawallet/txcore/pkg/errors"
)

const (
	testSender    = "1SenderAddressXXXXXXXXXXXXXXXXXXXX"
	testRecipient = "1RecipientAddressXXXXXXXXXXXXXXXXX"
)

func units(values ...int64) []chain.SpendableUnit {
	out := make([]chain.SpendableUnit, len(values))
	for i, v := range values {
		out[i] = chain.SpendableUnit{
			ID:    "txid",
			Vout:  uint32(i),
			Value: big.NewInt(v),
		}
	}
	return out
}

func TestEstimateTxSize(t *testing.T) {
	t.Parallel()

	// 10 + 148 + 2*34 = 226 bytes for the canonical 1-in 2-out shape.
	assert.Equal(t, uint64(226), EstimateTxSize(1, 2))
	assert.Equal(t, uint64(192), EstimateTxSize(1, 1))
	assert.Equal(t, uint64(374), EstimateTxSize(2, 2))
}

func TestSelect(t *testing.T) {
	t.Parallel()

	t.Run("largest first stops at target", func(t *testing.T) {
		t.Parallel()

		// Units [100000, 60000, 30000, 5000] at rate 1 with target 80000:
		// the single largest unit covers target plus the 226-byte fee.
		sel := Select(units(5000, 30000, 100000, 60000), big.NewInt(80000), 1, 546, true)

		require.Len(t, sel.Units, 1)
		assert.Equal(t, big.NewInt(100000), sel.Units[0].Value)
		assert.Equal(t, big.NewInt(226), sel.Fee)
		assert.Equal(t, big.NewInt(19774), sel.Change)
		assert.False(t, sel.NoChange)
		assert.False(t, sel.Exhausted)
	})

	t.Run("fee recomputed per added input", func(t *testing.T) {
		t.Parallel()

		// Two inputs needed: fee grows to 374 bytes at rate 1.
		sel := Select(units(60000, 50000), big.NewInt(80000), 1, 546, true)

		require.Len(t, sel.Units, 2)
		assert.Equal(t, big.NewInt(374), sel.Fee)
		assert.Equal(t, big.NewInt(29626), sel.Change)
	})

	t.Run("sub-dust change collapses into fee", func(t *testing.T) {
		t.Parallel()

		// 100000 covers 99500 + 226 fee with change 274 < 546 dust: the
		// change output is dropped and the remainder goes to the miner.
		sel := Select(units(100000), big.NewInt(99500), 1, 546, true)

		require.Len(t, sel.Units, 1)
		assert.True(t, sel.NoChange)
		assert.Zero(t, sel.Change.Sign())
		assert.Equal(t, big.NewInt(500), sel.Fee)
	})

	t.Run("exhausted returns all units with no-change fee", func(t *testing.T) {
		t.Parallel()

		sel := Select(units(1000, 2000), big.NewInt(50000), 1, 546, true)

		assert.True(t, sel.Exhausted)
		assert.True(t, sel.NoChange)
		require.Len(t, sel.Units, 2)
		// Two inputs, one output: 10 + 296 + 34 = 340 bytes.
		assert.Equal(t, big.NewInt(340), sel.Fee)
	})

	t.Run("token selection ignores fee in target", func(t *testing.T) {
		t.Parallel()

		sel := Select(units(100, 50), big.NewInt(120), 1, 0, false)

		require.Len(t, sel.Units, 2)
		assert.Equal(t, big.NewInt(30), sel.Change)
		assert.False(t, sel.Exhausted)
	})

	t.Run("source list is not mutated", func(t *testing.T) {
		t.Parallel()

		src := units(5000, 100000, 30000)
		_ = Select(src, big.NewInt(1000), 1, 546, true)

		assert.Equal(t, big.NewInt(5000), src[0].Value)
		assert.Equal(t, big.NewInt(100000), src[1].Value)
		assert.Equal(t, big.NewInt(30000), src[2].Value)
	})
}

func testDeps(src *chaintest.Source) chain.Deps {
	return chain.Deps{
		Data:    src,
		Assets:  feeAssetSelf{},
		Scripts: &chaintest.Scripts{},
	}
}

type feeAssetSelf struct{}

func (feeAssetSelf) FeeAsset(asset chain.Asset) (chain.Asset, error) {
	return chain.Asset{
		Chain:    asset.Chain,
		Symbol:   asset.Chain.Symbol(),
		Decimals: asset.Chain.Decimals(),
		Address:  asset.Address,
	}, nil
}

func btcAsset() chain.Asset {
	return chain.Asset{
		Chain:    chain.BTC,
		Symbol:   "BTC",
		Decimals: 8,
		Balance:  "0.002",
		Address:  testSender,
	}
}

func TestFetchNetworkData(t *testing.T) {
	t.Parallel()

	t.Run("bitcoin uses the network rate", func(t *testing.T) {
		t.Parallel()

		src := &chaintest.Source{
			UTXOsFn: func(_ context.Context, _ chain.ID, _, _ string) ([]chain.SpendableUnit, error) {
				return units(100000), nil
			},
			FeeRateFn: func(_ context.Context, _ chain.ID) (uint64, error) {
				return 12, nil
			},
		}

		s := New(btcAsset(), testDeps(src))
		np, err := s.FetchNetworkData(context.Background(), nil, testRecipient)
		require.NoError(t, err)

		assert.Equal(t, uint64(12), np.FeeRate)
		assert.Len(t, np.Units, 1)
	})

	t.Run("litecoin uses the fixed rate", func(t *testing.T) {
		t.Parallel()

		src := &chaintest.Source{
			UTXOsFn: func(_ context.Context, _ chain.ID, _, _ string) ([]chain.SpendableUnit, error) {
				return units(100000), nil
			},
			// FeeRateFn deliberately unset: the strategy must not call it.
		}

		asset := chain.Asset{Chain: chain.LTC, Symbol: "LTC", Decimals: 8, Balance: "1", Address: testSender}
		s := New(asset, testDeps(src))
		np, err := s.FetchNetworkData(context.Background(), nil, testRecipient)
		require.NoError(t, err)

		assert.Equal(t, uint64(2), np.FeeRate)
	})

	t.Run("utxo listing failure is missing network data", func(t *testing.T) {
		t.Parallel()

		src := &chaintest.Source{
			UTXOsFn: func(_ context.Context, _ chain.ID, _, _ string) ([]chain.SpendableUnit, error) {
				return nil, txerr.ErrNetworkError
			},
			FeeRateFn: func(_ context.Context, _ chain.ID) (uint64, error) {
				return 1, nil
			},
		}

		s := New(btcAsset(), testDeps(src))
		_, err := s.FetchNetworkData(context.Background(), nil, testRecipient)
		assert.ErrorIs(t, err, txerr.ErrMissingNetworkData)
	})
}

func TestBuildParamsNative(t *testing.T) {
	t.Parallel()

	s := New(btcAsset(), testDeps(&chaintest.Source{}))

	np := &chain.NetworkParams{
		FeeRate: 1,
		Units:   units(100000, 60000, 30000, 5000),
	}

	t.Run("selects and carries the locking script", func(t *testing.T) {
		t.Parallel()

		req := chain.TxRequest{To: testRecipient, Amount: "0.0008"}
		plan, err := s.BuildParams(context.Background(), np, req, "", chain.ModeStandard)
		require.NoError(t, err)

		data, ok := plan.TxData.(*TxData)
		require.True(t, ok)
		assert.Equal(t, big.NewInt(80000), data.Amount)
		require.Len(t, data.Inputs, 1)
		assert.Equal(t, big.NewInt(100000), data.Inputs[0].Value)
		assert.NotEmpty(t, data.Script)
	})

	t.Run("dust amount is rejected", func(t *testing.T) {
		t.Parallel()

		req := chain.TxRequest{To: testRecipient, Amount: "0.000005"} // 500 sat < 546
		_, err := s.BuildParams(context.Background(), np, req, "", chain.ModeStandard)
		assert.ErrorIs(t, err, txerr.ErrDustAmount)
	})

	t.Run("insufficient units fail", func(t *testing.T) {
		t.Parallel()

		req := chain.TxRequest{To: testRecipient, Amount: "1"}
		_, err := s.BuildParams(context.Background(), np, req, "", chain.ModeStandard)
		assert.ErrorIs(t, err, txerr.ErrInsufficientFunds)
	})

	t.Run("script failure is fatal", func(t *testing.T) {
		t.Parallel()

		deps := testDeps(&chaintest.Source{})
		deps.Scripts = &chaintest.Scripts{
			LockingScriptFn: func(_ chain.ID, _ string) ([]byte, error) {
				return nil, txerr.ErrScriptGeneration
			},
		}
		st := New(btcAsset(), deps)

		req := chain.TxRequest{To: testRecipient, Amount: "0.0008"}
		_, err := st.BuildParams(context.Background(), np, req, "", chain.ModeStandard)
		assert.ErrorIs(t, err, txerr.ErrScriptGeneration)
	})

	t.Run("send max sweeps every unit", func(t *testing.T) {
		t.Parallel()

		req := chain.TxRequest{To: testRecipient, SendMax: true}
		plan, err := s.BuildParams(context.Background(), np, req, "", chain.ModeStandard)
		require.NoError(t, err)

		data := plan.TxData.(*TxData)
		assert.Len(t, data.Inputs, 4)
		assert.True(t, data.NoChange)

		// 4 inputs, 1 output: 10 + 592 + 34 = 636 bytes at rate 1.
		total := big.NewInt(195000)
		wantFee := big.NewInt(636)
		assert.Equal(t, wantFee, data.Fee)
		assert.Equal(t, new(big.Int).Sub(total, wantFee), data.Amount)
	})

	t.Run("send max with no units fails", func(t *testing.T) {
		t.Parallel()

		empty := &chain.NetworkParams{FeeRate: 1}
		req := chain.TxRequest{To: testRecipient, SendMax: true}
		_, err := s.BuildParams(context.Background(), empty, req, "", chain.ModeStandard)
		assert.ErrorIs(t, err, txerr.ErrInsufficientFunds)
	})
}

func TestBuildParamsToken(t *testing.T) {
	t.Parallel()

	asset := chain.Asset{
		Chain:    chain.BTC,
		Symbol:   "ORDI",
		Contract: "ordi-inscription",
		Decimals: 8,
		Balance:  "0.001",
		Address:  testSender,
	}
	s := New(asset, testDeps(&chaintest.Source{}))

	np := func(feeBalance *big.Int) *chain.NetworkParams {
		return &chain.NetworkParams{
			FeeRate:    1,
			Units:      units(60000, 50000),
			FeeBalance: feeBalance,
		}
	}

	t.Run("fee paid from native balance", func(t *testing.T) {
		t.Parallel()

		req := chain.TxRequest{To: testRecipient, Amount: "0.0008"}
		plan, err := s.BuildParams(context.Background(), np(big.NewInt(10000)), req, "", chain.ModeStandard)
		require.NoError(t, err)

		data := plan.TxData.(*TxData)
		assert.Equal(t, "ordi-inscription", data.Contract)
		assert.Len(t, data.Inputs, 2)
	})

	t.Run("native balance below fee fails", func(t *testing.T) {
		t.Parallel()

		req := chain.TxRequest{To: testRecipient, Amount: "0.0008"}
		_, err := s.BuildParams(context.Background(), np(big.NewInt(10)), req, "", chain.ModeStandard)
		assert.ErrorIs(t, err, txerr.ErrInsufficientFeeBalance)
	})

	t.Run("missing native balance is missing network data", func(t *testing.T) {
		t.Parallel()

		req := chain.TxRequest{To: testRecipient, Amount: "0.0008"}
		_, err := s.BuildParams(context.Background(), np(nil), req, "", chain.ModeStandard)
		assert.ErrorIs(t, err, txerr.ErrMissingNetworkData)
	})
}
