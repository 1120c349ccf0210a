package cli

import (
	"github.com/spf13/cobra"

	"github.com/nexawallet/txcore/internal/chain"
	"github.com/nexawallet/txcore/internal/chain/selector"
	txerr "github.com/nexawallet/txcore/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	feeChain    string
	feeAddress  string
	feeContract string
	feeTo       string
	feeAmount   string
)

// FeeResult is the CLI representation of a fee estimate.
type FeeResult struct {
	Chain  string `json:"chain"`
	Fee    string `json:"fee"`
	Symbol string `json:"symbol"`
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var feeCmd = &cobra.Command{
	Use:   "fee",
	Short: "Estimate the fee for a transfer",
	Long: `Fetch current network state and print the fee a transfer would pay,
denominated in the chain's native coin.`,
	Example: `  txcore fee --chain eth --address 0xSender --to 0xDest --amount 0.5
  txcore fee --chain sol --address Sender111 --to Dest111 --amount 2`,
	RunE: runFee,
}

func runFee(cmd *cobra.Command, _ []string) error {
	id, ok := chain.ParseID(feeChain)
	if !ok {
		return txerr.WithDetails(txerr.ErrUnsupportedChain, map[string]string{
			"chain": feeChain,
		})
	}

	asset := chain.Asset{
		Chain:    id,
		Symbol:   id.Symbol(),
		Contract: feeContract,
		Decimals: id.Decimals(),
		Address:  feeAddress,
	}

	strat, err := selector.Select(asset, deps)
	if err != nil {
		return err
	}

	amount := chain.ToAtomicInt(feeAmount, asset.Decimals)
	np, err := strat.FetchNetworkData(cmd.Context(), amount, feeTo)
	if err != nil {
		return err
	}

	result := &FeeResult{
		Chain:  id.String(),
		Fee:    strat.DisplayFee(np),
		Symbol: id.Symbol(),
	}

	if formatter.IsJSON() {
		return formatter.Print(result)
	}
	return formatter.Printf("%s %s\n", result.Fee, result.Symbol)
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	feeCmd.Flags().StringVar(&feeChain, "chain", "", "chain identifier (eth, btc, trx, ...)")
	feeCmd.Flags().StringVar(&feeAddress, "address", "", "sender address")
	feeCmd.Flags().StringVar(&feeContract, "contract", "", "token contract for token transfers")
	feeCmd.Flags().StringVar(&feeTo, "to", "", "destination address")
	feeCmd.Flags().StringVar(&feeAmount, "amount", "0", "amount to send as a decimal string")

	_ = feeCmd.MarkFlagRequired("chain")
	_ = feeCmd.MarkFlagRequired("address")
	_ = feeCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(feeCmd)
}
