// Package ton builds signable transfer parameters for TON, where transfers
// are messages from a wallet contract and fee behavior is chosen by a
// send mode rather than computed exactly.
package ton

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nexawallet/txcore/internal/chain"
	txerr "github.com/nexawallet/txcore/pkg/errors"
)

// Send modes per the TON message specification.
const (
	// SendModePayFeesSeparately charges fees on top of the message value.
	SendModePayFeesSeparately = 3

	// SendModeCarryAllBalance sweeps the wallet's entire remaining
	// balance; the message value becomes advisory.
	SendModeCarryAllBalance = 128
)

// JettonAttachAmount is the native value in nanoton attached to a Jetton
// transfer to fund contract execution (0.05 TON). Unused remainder is
// refunded, so this is a minimum-balance requirement, not an exact fee.
const JettonAttachAmount = 50_000_000

// TxData is the TON transaction record carried by a SignablePlan.
type TxData struct {
	Chain         chain.ID // Owning chain
	To            string   // Recipient address
	Amount        *big.Int // Value in nanoton (token atomic units for Jettons)
	Contract      string   // Jetton master contract, empty for native
	Seqno         uint32   // Wallet contract sequence number
	SendMode      uint8    // Message send mode
	AttachedValue *big.Int // Native value attached to a Jetton message
	Memo          string   // Optional transfer comment
	NeedsDeploy   bool     // Wallet contract state init must accompany the message
}

// ChainID implements chain.TxData.
func (d *TxData) ChainID() chain.ID { return d.Chain }

// Strategy builds TON transfers.
type Strategy struct {
	asset   chain.Asset
	data    chain.DataSource
	assets  chain.AssetStore
	scripts chain.ScriptProvider
	log     *logrus.Entry
}

// New creates a TON strategy for the asset.
func New(asset chain.Asset, deps chain.Deps) *Strategy {
	return &Strategy{
		asset:   asset,
		data:    deps.Data,
		assets:  deps.Assets,
		scripts: deps.Scripts,
		log:     deps.Logger().WithField("strategy", "ton"),
	}
}

// ChainID returns the chain this strategy builds for.
func (s *Strategy) ChainID() chain.ID { return s.asset.Chain }

// HasMemo reports memo support from the classification tables.
func (s *Strategy) HasMemo() bool { return s.asset.Chain.SupportsMemo() }

// ValidateAddress checks a destination address against the chain coin type.
func (s *Strategy) ValidateAddress(address string) bool {
	return s.scripts.Validate(s.asset.Chain.CoinType(), address)
}

// FetchNetworkData resolves the wallet's seqno and deployment status.
// Native transfers also resolve a fee estimate; Jetton transfers resolve
// the native balance checked against the attach buffer.
func (s *Strategy) FetchNetworkData(ctx context.Context, amount *big.Int, toAddress string) (*chain.NetworkParams, error) {
	np := &chain.NetworkParams{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		status, err := s.data.AccountStatus(gctx, s.asset.Chain, s.asset.Address)
		if err != nil {
			return txerr.Wrap(err, "fetching account status")
		}
		np.Seqno = status.Seqno
		np.Deployed = status.Deployed
		return nil
	})

	if s.asset.IsToken() {
		g.Go(func() error {
			feeAsset, err := s.assets.FeeAsset(s.asset)
			if err != nil {
				return err
			}
			bal, err := s.data.Balance(gctx, feeAsset.Chain, feeAsset.Address)
			if err != nil {
				return txerr.Wrap(err, "fetching native balance for attach value")
			}
			np.FeeBalance = bal
			return nil
		})
	} else {
		g.Go(func() error {
			fee, err := s.data.EstimateFee(gctx, s.asset.Chain, s.asset.Address, toAddress, amount)
			if err != nil {
				return txerr.Wrap(err, "estimating fee")
			}
			np.EstimatedFee = fee
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", txerr.ErrMissingNetworkData, err)
	}

	np.FetchedAt = time.Now()
	return np, nil
}

// DisplayFee returns the estimated fee (native) or the attach buffer
// (Jetton) as a decimal TON string. Returns "0" before a successful fetch.
func (s *Strategy) DisplayFee(np *chain.NetworkParams) string {
	if np == nil {
		return "0"
	}
	if s.asset.IsToken() {
		return chain.FormatDecimalAmount(big.NewInt(JettonAttachAmount), s.asset.Chain.Decimals())
	}
	if np.EstimatedFee == nil {
		return "0"
	}
	return chain.FormatDecimalAmount(np.EstimatedFee, s.asset.Chain.Decimals())
}

// BuildParams assembles the final TON transfer message parameters.
func (s *Strategy) BuildParams(_ context.Context, np *chain.NetworkParams, req chain.TxRequest, credential string, mode chain.WalletMode) (*chain.SignablePlan, error) {
	if np == nil {
		return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
			"chain": s.asset.Chain.String(),
		})
	}
	if !s.ValidateAddress(req.To) {
		return nil, txerr.WithDetails(txerr.ErrInvalidAddress, map[string]string{
			"address": req.To,
		})
	}

	amount := chain.ToAtomicInt(req.Amount, s.asset.Decimals)

	if s.asset.IsToken() {
		return s.buildJetton(np, req, amount, credential, mode)
	}
	return s.buildNative(np, req, amount, credential, mode)
}

func (s *Strategy) buildNative(np *chain.NetworkParams, req chain.TxRequest, amount *big.Int, credential string, mode chain.WalletMode) (*chain.SignablePlan, error) {
	balance := s.asset.AtomicBalance()

	sendMode := uint8(SendModePayFeesSeparately)
	if req.SendMax {
		// Carry-all lets the network compute the sweep; the amount is
		// advisory and never derived client-side.
		sendMode = SendModeCarryAllBalance
		amount = balance
	} else {
		if np.EstimatedFee == nil {
			return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
				"chain": s.asset.Chain.String(),
				"field": "fee estimate",
			})
		}
		if balance.Cmp(amount) < 0 {
			return nil, txerr.WithDetails(txerr.ErrInsufficientFunds, map[string]string{
				"balance": balance.String(),
				"amount":  amount.String(),
			})
		}
		need := new(big.Int).Add(amount, np.EstimatedFee)
		if balance.Cmp(need) < 0 {
			return nil, txerr.WithDetails(txerr.ErrInsufficientFeeBalance, map[string]string{
				"balance": balance.String(),
				"fee":     np.EstimatedFee.String(),
			})
		}
	}

	return &chain.SignablePlan{
		Asset: s.asset,
		TxData: &TxData{
			Chain:       s.asset.Chain,
			To:          req.To,
			Amount:      amount,
			Seqno:       np.Seqno,
			SendMode:    sendMode,
			Memo:        req.Memo,
			NeedsDeploy: !np.Deployed,
		},
		Mode:       mode,
		Credential: credential,
	}, nil
}

// buildJetton always uses the normal send mode: carry-all would sweep the
// native coin, not the token.
func (s *Strategy) buildJetton(np *chain.NetworkParams, req chain.TxRequest, amount *big.Int, credential string, mode chain.WalletMode) (*chain.SignablePlan, error) {
	if np.FeeBalance == nil {
		return nil, txerr.WithDetails(txerr.ErrMissingNetworkData, map[string]string{
			"chain": s.asset.Chain.String(),
			"field": "native balance",
		})
	}

	attach := big.NewInt(JettonAttachAmount)
	if np.FeeBalance.Cmp(attach) < 0 {
		return nil, txerr.WithDetails(txerr.ErrInsufficientFeeBalance, map[string]string{
			"native_balance": np.FeeBalance.String(),
			"required":       attach.String(),
		})
	}

	if tokenBalance := s.asset.AtomicBalance(); req.SendMax || amount.Cmp(tokenBalance) > 0 {
		s.log.WithFields(logrus.Fields{
			"requested": amount.String(),
			"balance":   tokenBalance.String(),
		}).Debug("clamping token amount to balance")
		amount = tokenBalance
	}

	return &chain.SignablePlan{
		Asset: s.asset,
		TxData: &TxData{
			Chain:         s.asset.Chain,
			To:            req.To,
			Amount:        amount,
			Contract:      s.asset.Contract,
			Seqno:         np.Seqno,
			SendMode:      SendModePayFeesSeparately,
			AttachedValue: attach,
			Memo:          req.Memo,
			NeedsDeploy:   !np.Deployed,
		},
		Mode:       mode,
		Credential: credential,
	}, nil
}
