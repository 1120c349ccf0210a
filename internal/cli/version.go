package cli

import (
	"github.com/spf13/cobra"

	"github.com/nexawallet/txcore/internal/version"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	RunE: func(_ *cobra.Command, _ []string) error {
		info := version.Get()
		if formatter.IsJSON() {
			return formatter.Print(info)
		}
		return formatter.Printf("%s\n", info)
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
}
