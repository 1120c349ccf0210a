package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/nexawallet/txcore/internal/chain"
	"github.com/nexawallet/txcore/internal/chain/selector"
	txerr "github.com/nexawallet/txcore/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	planChain      string
	planAddress    string
	planSymbol     string
	planContract   string
	planDecimals   int
	planBalance    string
	planTo         string
	planAmount     string
	planMemo       string
	planSendMax    bool
	planHardware   bool
	planCredential string
	planBroadcast  bool
)

// PlanResult is the CLI representation of a built plan.
type PlanResult struct {
	Chain  string       `json:"chain"`
	Symbol string       `json:"symbol"`
	To     string       `json:"to"`
	Fee    string       `json:"fee"`
	Mode   string       `json:"mode"`
	TxData chain.TxData `json:"tx_data"`
	TxHash string       `json:"tx_hash,omitempty"`
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build signable transfer parameters",
	Long: `Build the chain-specific, signable parameter bundle for a transfer.

The command fetches the network state the chain needs (nonce, gas, UTXOs,
resources, reserves), applies fee and dust rules, selects inputs, and
prints the resulting plan. Nothing is signed.`,
	Example: `  txcore plan --chain eth --address 0xSender --to 0xDest --amount 0.5 --balance 1.2
  txcore plan --chain btc --address bc1qSender --to bc1qDest --send-max --balance 0.01
  txcore plan --chain eth --address 0xSender --to 0xDest --amount 25 \
    --symbol USDC --contract 0xA0b8... --decimals 6 --balance 100`,
	RunE: runPlan,
}

// planAsset assembles the asset under construction from the flag set.
func planAsset() (chain.Asset, error) {
	id, ok := chain.ParseID(planChain)
	if !ok {
		return chain.Asset{}, txerr.WithDetails(txerr.ErrUnsupportedChain, map[string]string{
			"chain": planChain,
		})
	}

	asset := chain.Asset{
		Chain:    id,
		Symbol:   planSymbol,
		Contract: planContract,
		Decimals: planDecimals,
		Balance:  planBalance,
		Address:  planAddress,
	}
	if asset.Symbol == "" {
		asset.Symbol = id.Symbol()
	}
	if asset.Decimals == 0 {
		asset.Decimals = id.Decimals()
	}
	return asset, nil
}

func runPlan(cmd *cobra.Command, _ []string) error {
	asset, err := planAsset()
	if err != nil {
		return err
	}

	strat, err := selector.Select(asset, deps)
	if err != nil {
		return err
	}

	req := chain.TxRequest{
		To:      planTo,
		Amount:  planAmount,
		Memo:    planMemo,
		SendMax: planSendMax,
	}

	amount := chain.ToAtomicInt(req.Amount, asset.Decimals)
	np, err := strat.FetchNetworkData(cmd.Context(), amount, req.To)
	if err != nil {
		return err
	}

	mode := chain.ModeStandard
	if planHardware {
		mode = chain.ModeHardware
	}

	plan, err := strat.BuildParams(cmd.Context(), np, req, planCredential, mode)
	if err != nil {
		return err
	}

	result := &PlanResult{
		Chain:  asset.Chain.String(),
		Symbol: asset.Symbol,
		To:     req.To,
		Fee:    strat.DisplayFee(np),
		Mode:   string(mode),
		TxData: plan.TxData,
	}

	if planBroadcast {
		payload, merr := json.Marshal(plan.TxData)
		if merr != nil {
			return txerr.Wrap(merr, "encoding plan for broadcast")
		}
		hash, berr := deps.Data.Broadcast(cmd.Context(), asset.Chain, payload)
		if berr != nil {
			return berr
		}
		result.TxHash = hash
	}

	if formatter.IsJSON() {
		return formatter.Print(result)
	}

	if err := formatter.Printf("Chain:  %s\nAsset:  %s\nTo:     %s\nFee:    %s %s\nMode:   %s\n",
		result.Chain, result.Symbol, result.To, result.Fee, asset.Chain.Symbol(), result.Mode); err != nil {
		return err
	}
	if result.TxHash != "" {
		if err := formatter.Printf("TxHash: %s\n", result.TxHash); err != nil {
			return err
		}
	}
	encoded, err := json.MarshalIndent(plan.TxData, "", "  ")
	if err != nil {
		return err
	}
	return formatter.Printf("\n%s\n", string(encoded))
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	planCmd.Flags().StringVar(&planChain, "chain", "", "chain identifier (eth, btc, trx, ...)")
	planCmd.Flags().StringVar(&planAddress, "address", "", "sender address owning the asset")
	planCmd.Flags().StringVar(&planSymbol, "symbol", "", "asset symbol (defaults to the native coin)")
	planCmd.Flags().StringVar(&planContract, "contract", "", "token contract for token transfers")
	planCmd.Flags().IntVar(&planDecimals, "decimals", 0, "asset decimals (defaults to the chain's)")
	planCmd.Flags().StringVar(&planBalance, "balance", "0", "current asset balance as a decimal string")
	planCmd.Flags().StringVar(&planTo, "to", "", "destination address")
	planCmd.Flags().StringVar(&planAmount, "amount", "0", "amount to send as a decimal string")
	planCmd.Flags().StringVar(&planMemo, "memo", "", "memo or destination tag, where supported")
	planCmd.Flags().BoolVar(&planSendMax, "send-max", false, "sweep the entire spendable balance")
	planCmd.Flags().BoolVar(&planHardware, "hardware", false, "build for a hardware wallet")
	planCmd.Flags().StringVar(&planCredential, "credential", "", "signing credential reference")
	planCmd.Flags().BoolVar(&planBroadcast, "broadcast", false, "hand the encoded plan to the gateway after building")

	_ = planCmd.MarkFlagRequired("chain")
	_ = planCmd.MarkFlagRequired("address")
	_ = planCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(planCmd)
}
