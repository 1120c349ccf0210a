package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nexawallet/txcore/internal/chain"
	"github.com/nexawallet/txcore/internal/output"
)

// ChainInfo is the CLI representation of one supported chain.
type ChainInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Model    string `json:"model"`
	Memo     bool   `json:"memo"`
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List supported chains",
	Long:  `List every supported chain with its transaction model and display metadata.`,
	RunE:  runChains,
}

func chainModel(id chain.ID) string {
	switch {
	case id.IsAccountModel():
		return "account"
	case id.IsUTXOModel():
		return "utxo"
	default:
		return id.String()
	}
}

func runChains(_ *cobra.Command, _ []string) error {
	infos := make([]ChainInfo, 0, len(chain.AllChains()))
	for _, id := range chain.AllChains() {
		infos = append(infos, ChainInfo{
			ID:       id.String(),
			Name:     id.DisplayName(),
			Symbol:   id.Symbol(),
			Decimals: id.Decimals(),
			Model:    chainModel(id),
			Memo:     id.SupportsMemo(),
		})
	}

	if formatter.IsJSON() {
		return formatter.Print(infos)
	}

	table := output.NewTable("CHAIN", "NAME", "SYMBOL", "DECIMALS", "MODEL", "MEMO")
	for _, info := range infos {
		memo := ""
		if info.Memo {
			memo = "yes"
		}
		table.AddRow(info.ID, info.Name, info.Symbol, strconv.Itoa(info.Decimals), info.Model, memo)
	}
	return table.Render(formatter.Writer())
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(chainsCmd)
}
