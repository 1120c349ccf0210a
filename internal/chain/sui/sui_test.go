package sui

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexawallet/txcore/internal/chain"
	"github.com/nexawallet/txcore/internal/chain/chaintest"
	txerr "github.com/nexawallet/txcore/pkg/errors"
)

const (
	testSender    = "0xaaaa000000000000000000000000000000000000000000000000000000000001"
	testRecipient = "0xbbbb000000000000000000000000000000000000000000000000000000000002"
)

func suiAsset(balance string) chain.Asset {
	return chain.Asset{
		Chain:    chain.SUI,
		Symbol:   "SUI",
		Decimals: 9,
		Balance:  balance,
		Address:  testSender,
	}
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

func objects(values ...int64) []chain.SpendableUnit {
	units := make([]chain.SpendableUnit, len(values))
	for i, v := range values {
		units[i] = chain.SpendableUnit{
			ID:      fmt.Sprintf("0xobj%04d", i),
			Value:   big.NewInt(v),
			Version: uint64(i + 1),
			Digest:  fmt.Sprintf("digest-%d", i),
		}
	}
	return units
}

func TestFetchNetworkData(t *testing.T) {
	t.Parallel()

	t.Run("resolves gas price and coin objects", func(t *testing.T) {
		t.Parallel()

		src := &chaintest.Source{
			GasPriceFn: func(_ context.Context, _ chain.ID) (*big.Int, error) {
				return big.NewInt(1000), nil
			},
			ObjectsFn: func(_ context.Context, _ chain.ID, _, _ string) ([]chain.SpendableUnit, error) {
				return objects(5_000_000_000, 1_000_000_000), nil
			},
		}

		s := New(suiAsset("6"), testDeps(src))
		np, err := s.FetchNetworkData(context.Background(), big.NewInt(1), testRecipient)
		require.NoError(t, err)

		assert.Equal(t, big.NewInt(1000), np.GasPrice)
		assert.Len(t, np.Units, 2)
	})

	t.Run("gas price failure is fatal", func(t *testing.T) {
		t.Parallel()

		src := &chaintest.Source{
			GasPriceFn: func(_ context.Context, _ chain.ID) (*big.Int, error) {
				return nil, txerr.ErrNetworkError
			},
			ObjectsFn: func(_ context.Context, _ chain.ID, _, _ string) ([]chain.SpendableUnit, error) {
				return objects(5_000_000_000), nil
			},
		}

		s := New(suiAsset("5"), testDeps(src))
		_, err := s.FetchNetworkData(context.Background(), big.NewInt(1), testRecipient)
		assert.ErrorIs(t, err, txerr.ErrMissingNetworkData)
	})
}

func TestGasBudget(t *testing.T) {
	t.Parallel()

	// 1000 price x 1000 computation units, plus fixed storage when the
	// inputs survive the transaction.
	assert.Equal(t, big.NewInt(3_000_000), gasBudget(big.NewInt(1000), false))
	assert.Equal(t, big.NewInt(1_000_000), gasBudget(big.NewInt(1000), true))
}

func TestSelectObjects(t *testing.T) {
	t.Parallel()

	s := New(suiAsset("10"), testDeps(&chaintest.Source{}))

	t.Run("accumulates largest objects first", func(t *testing.T) {
		t.Parallel()

		units := objects(1_000_000_000, 4_000_000_000, 2_000_000_000)
		selected, total, err := s.selectObjects(units, big.NewInt(5_000_000_000), false)
		require.NoError(t, err)

		require.Len(t, selected, 2)
		assert.Equal(t, big.NewInt(4_000_000_000), selected[0].Value)
		assert.Equal(t, big.NewInt(2_000_000_000), selected[1].Value)
		assert.Equal(t, big.NewInt(6_000_000_000), total)
	})

	t.Run("hitting the input cap without the target fails", func(t *testing.T) {
		t.Parallel()

		values := make([]int64, MaxInputObjects+10)
		for i := range values {
			values[i] = 1
		}
		_, _, err := s.selectObjects(objects(values...), big.NewInt(1_000_000), false)
		assert.ErrorIs(t, err, txerr.ErrInsufficientFunds)
	})

	t.Run("exhausting all objects without the target fails", func(t *testing.T) {
		t.Parallel()

		_, _, err := s.selectObjects(objects(100, 200), big.NewInt(1_000_000), false)
		assert.ErrorIs(t, err, txerr.ErrInsufficientFunds)
	})

	t.Run("sweep beyond the cap keeps the largest objects", func(t *testing.T) {
		t.Parallel()

		values := make([]int64, MaxInputObjects+5)
		for i := range values {
			values[i] = int64(i + 1)
		}
		selected, total, err := s.selectObjects(objects(values...), nil, true)
		require.NoError(t, err)

		assert.Len(t, selected, MaxInputObjects)
		// Sum of 6..55: the five smallest objects are left behind.
		assert.Equal(t, big.NewInt(1525), total)
	})
}

func TestBuildParams(t *testing.T) {
	t.Parallel()

	native := New(suiAsset("10"), testDeps(&chaintest.Source{}))

	np := func(values ...int64) *chain.NetworkParams {
		return &chain.NetworkParams{
			GasPrice: big.NewInt(1000),
			Units:    objects(values...),
		}
	}

	t.Run("native transfer selects objects covering amount plus budget", func(t *testing.T) {
		t.Parallel()

		// Budget 3_000_000; 1 SUI + budget needs both objects.
		params := np(1_000_000_000, 2_500_000)
		req := chain.TxRequest{To: testRecipient, Amount: "1"}
		plan, err := native.BuildParams(context.Background(), params, req, "", chain.ModeStandard)
		require.NoError(t, err)

		data, ok := plan.TxData.(*TxData)
		require.True(t, ok)
		assert.Equal(t, big.NewInt(1_000_000_000), data.Amount)
		assert.Len(t, data.Objects, 2)
		assert.Equal(t, big.NewInt(3_000_000), data.GasBudget)
		assert.Equal(t, big.NewInt(1000), data.GasPrice)
	})

	t.Run("sweep sends everything minus the waived-storage budget", func(t *testing.T) {
		t.Parallel()

		params := np(4_000_000_000, 1_000_000_000)
		req := chain.TxRequest{To: testRecipient, Amount: "0", SendMax: true}
		plan, err := native.BuildParams(context.Background(), params, req, "", chain.ModeStandard)
		require.NoError(t, err)

		data := plan.TxData.(*TxData)
		assert.Equal(t, big.NewInt(5_000_000_000-1_000_000), data.Amount)
		assert.Equal(t, big.NewInt(1_000_000), data.GasBudget)
	})

	t.Run("sweep smaller than the budget fails", func(t *testing.T) {
		t.Parallel()

		req := chain.TxRequest{To: testRecipient, Amount: "0", SendMax: true}
		_, err := native.BuildParams(context.Background(), np(500_000), req, "", chain.ModeStandard)
		assert.ErrorIs(t, err, txerr.ErrInsufficientFeeBalance)
	})

	t.Run("missing gas price fails", func(t *testing.T) {
		t.Parallel()

		req := chain.TxRequest{To: testRecipient, Amount: "1"}
		_, err := native.BuildParams(context.Background(), &chain.NetworkParams{}, req, "", chain.ModeStandard)
		assert.ErrorIs(t, err, txerr.ErrMissingNetworkData)
	})

	t.Run("token gas comes from the native balance", func(t *testing.T) {
		t.Parallel()

		token := suiAsset("100")
		token.Symbol = "USDC"
		token.Decimals = 6
		token.Contract = "0xusdc::coin::USDC"
		s := New(token, testDeps(&chaintest.Source{}))

		params := &chain.NetworkParams{
			GasPrice:   big.NewInt(1000),
			Units:      objects(60_000_000, 50_000_000),
			FeeBalance: big.NewInt(3_000_000),
		}
		req := chain.TxRequest{To: testRecipient, Amount: "100"}
		plan, err := s.BuildParams(context.Background(), params, req, "", chain.ModeStandard)
		require.NoError(t, err)

		data := plan.TxData.(*TxData)
		assert.Equal(t, big.NewInt(100_000_000), data.Amount)
		assert.Len(t, data.Objects, 2)

		// Storage is never waived for token moves.
		params.FeeBalance = big.NewInt(2_999_999)
		_, err = s.BuildParams(context.Background(), params, req, "", chain.ModeStandard)
		assert.ErrorIs(t, err, txerr.ErrInsufficientFeeBalance)
	})
}

func TestDisplayFee(t *testing.T) {
	t.Parallel()

	s := New(suiAsset("10"), testDeps(&chaintest.Source{}))
	assert.Equal(t, "0", s.DisplayFee(nil))
	assert.Equal(t, "0.003", s.DisplayFee(&chain.NetworkParams{GasPrice: big.NewInt(1000)}))
}
