package xrp

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
	testSender    = "rSenderXXXXXXXXXXXXXXXXXXXXXXXXXX"
	testRecipient = "rRecipientXXXXXXXXXXXXXXXXXXXXXXX"
)

func xrpAsset(balance string) chain.Asset {
	return chain.Asset{
		Chain:    chain.XRP,
		Symbol:   "XRP",
		Decimals: 6,
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

// account returns a funded sender aggregate: 100 XRP balance, 10 XRP
// reserve, sequence 7.
func account() *chain.AccountInfo {
	return &chain.AccountInfo{
		Exists:      true,
		Balance:     big.NewInt(100_000_000),
		Sequence:    7,
		Reserve:     big.NewInt(10_000_000),
		LedgerIndex: 90_000_000,
	}
}

func TestFetchNetworkData(t *testing.T) {
	t.Parallel()

	t.Run("resolves account, fee, and destination status", func(t *testing.T) {
		t.Parallel()

		src := &chaintest.Source{
			AccountInfoFn: func(_ context.Context, _ chain.ID, address string) (*chain.AccountInfo, error) {
				if address == testSender {
					return account(), nil
				}
				return &chain.AccountInfo{Exists: true, Balance: big.NewInt(50_000_000)}, nil
			},
			FeeRateFn: func(_ context.Context, _ chain.ID) (uint64, error) {
				return 12, nil
			},
		}

		s := New(xrpAsset("100"), testDeps(src))
		np, err := s.FetchNetworkData(context.Background(), big.NewInt(1), testRecipient)
		require.NoError(t, err)

		assert.Equal(t, uint32(7), np.Account.Sequence)
		assert.Equal(t, big.NewInt(12), np.Fee)
		assert.True(t, np.DestActive)
	})

	t.Run("unknown destination is not an error", func(t *testing.T) {
		t.Parallel()

		src := &chaintest.Source{
			AccountInfoFn: func(_ context.Context, _ chain.ID, address string) (*chain.AccountInfo, error) {
				if address == testSender {
					return account(), nil
				}
				return nil, txerr.ErrAccountNotFound
			},
			FeeRateFn: func(_ context.Context, _ chain.ID) (uint64, error) {
				return 12, nil
			},
		}

		s := New(xrpAsset("100"), testDeps(src))
		np, err := s.FetchNetworkData(context.Background(), big.NewInt(1), testRecipient)
		require.NoError(t, err)

		assert.False(t, np.DestActive)
	})

	t.Run("fee rate failure falls back to the protocol minimum", func(t *testing.T) {
		t.Parallel()

		src := &chaintest.Source{
			AccountInfoFn: func(_ context.Context, _ chain.ID, address string) (*chain.AccountInfo, error) {
				if address == testSender {
					return account(), nil
				}
				return &chain.AccountInfo{Exists: true}, nil
			},
			FeeRateFn: func(_ context.Context, _ chain.ID) (uint64, error) {
				return 0, txerr.ErrNetworkError
			},
		}

		s := New(xrpAsset("100"), testDeps(src))
		np, err := s.FetchNetworkData(context.Background(), big.NewInt(1), testRecipient)
		require.NoError(t, err)

		assert.Equal(t, big.NewInt(MinFeeDrops), np.Fee)
	})
}

func TestBuildParams(t *testing.T) {
	t.Parallel()

	np := func(destActive bool) *chain.NetworkParams {
		return &chain.NetworkParams{
			Account:    account(),
			Fee:        big.NewInt(12),
			DestActive: destActive,
		}
	}

	s := New(xrpAsset("100"), testDeps(&chaintest.Source{}))

	t.Run("reserve is retained after the send", func(t *testing.T) {
		t.Parallel()

		// Request the whole 100 XRP: clamp to 100 - fee - 10 reserve.
		req := chain.TxRequest{To: testRecipient, Amount: "100"}
		plan, err := s.BuildParams(context.Background(), np(true), req, "", chain.ModeStandard)
		require.NoError(t, err)

		data, ok := plan.TxData.(*TxData)
		require.True(t, ok)
		assert.Equal(t, big.NewInt(100_000_000-12-10_000_000), data.Amount)
		assert.Equal(t, uint32(7), data.Sequence)
		assert.Equal(t, uint64(90_000_060), data.LastLedgerSequence)
	})

	t.Run("unactivated destination below reserve fails", func(t *testing.T) {
		t.Parallel()

		req := chain.TxRequest{To: testRecipient, Amount: "9.999999"}
		_, err := s.BuildParams(context.Background(), np(false), req, "", chain.ModeStandard)
		assert.ErrorIs(t, err, txerr.ErrReserveNotMet)
	})

	t.Run("unactivated destination at exactly the reserve succeeds", func(t *testing.T) {
		t.Parallel()

		req := chain.TxRequest{To: testRecipient, Amount: "10"}
		plan, err := s.BuildParams(context.Background(), np(false), req, "", chain.ModeStandard)
		require.NoError(t, err)

		assert.Equal(t, big.NewInt(10_000_000), plan.TxData.(*TxData).Amount)
	})

	t.Run("balance below fee plus reserve fails", func(t *testing.T) {
		t.Parallel()

		poor := &chain.NetworkParams{
			Account: &chain.AccountInfo{
				Exists:      true,
				Balance:     big.NewInt(9_000_000),
				Sequence:    1,
				Reserve:     big.NewInt(10_000_000),
				LedgerIndex: 1,
			},
			Fee:        big.NewInt(12),
			DestActive: true,
		}

		req := chain.TxRequest{To: testRecipient, Amount: "1"}
		_, err := s.BuildParams(context.Background(), poor, req, "", chain.ModeStandard)
		assert.ErrorIs(t, err, txerr.ErrReserveNotMet)
	})

	t.Run("numeric memo becomes the destination tag", func(t *testing.T) {
		t.Parallel()

		req := chain.TxRequest{To: testRecipient, Amount: "1", Memo: "12345"}
		plan, err := s.BuildParams(context.Background(), np(true), req, "", chain.ModeStandard)
		require.NoError(t, err)

		tag := plan.TxData.(*TxData).DestinationTag
		require.NotNil(t, tag)
		assert.Equal(t, uint32(12345), *tag)
	})

	t.Run("non-numeric memo is silently dropped", func(t *testing.T) {
		t.Parallel()

		req := chain.TxRequest{To: testRecipient, Amount: "1", Memo: "invoice-42"}
		plan, err := s.BuildParams(context.Background(), np(true), req, "", chain.ModeStandard)
		require.NoError(t, err)

		assert.Nil(t, plan.TxData.(*TxData).DestinationTag)
	})
}
