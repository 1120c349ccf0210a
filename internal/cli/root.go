// Package cli implements the txcore command-line interface.
//
// This package uses global variables to manage CLI state, which is the
// standard pattern for Cobra-based CLI applications. The globals are
// initialized in PersistentPreRunE.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nexawallet/txcore/internal/addrscript"
	"github.com/nexawallet/txcore/internal/assetstore"
	"github.com/nexawallet/txcore/internal/chain"
	"github.com/nexawallet/txcore/internal/chaindata"
	"github.com/nexawallet/txcore/internal/config"
	"github.com/nexawallet/txcore/internal/output"
	txerr "github.com/nexawallet/txcore/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *logrus.Logger
	formatter *output.Formatter
	deps      chain.Deps
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "txcore",
	Short: "Multi-chain transaction construction engine",
	Long: `txcore builds signable transaction parameters for assets across
EVM, UTXO, Tron, TON, Solana, XRP, and Sui chains.

It fetches the minimal network state each chain needs, applies fee,
reserve, and dust rules, selects inputs, and emits a canonical parameter
bundle ready for signing. It never signs and never holds keys.

Example:
  txcore fee --chain eth --address 0x... --to 0x... --amount 0.1
  txcore plan --chain btc --address bc1... --to bc1... --amount 0.002 --balance 0.01
  txcore chains`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initGlobals()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		if formatter != nil {
			_ = output.FormatError(os.Stderr, err, formatter.Format())
		} else {
			_ = output.FormatError(os.Stderr, err, output.FormatText)
		}
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return txerr.ExitCode(err)
}

// initGlobals initializes configuration, logging, and the engine
// dependencies shared by every command.
func initGlobals() error {
	config.LoadDotEnv()

	home := homeDir
	if home == "" {
		home = config.DefaultHome()
	}

	var err error
	cfg, err = config.Load(config.Path(home))
	if err != nil {
		// Missing config is not an error; defaults cover everything.
		cfg = config.Defaults()
	}

	config.ApplyEnvironment(cfg)

	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.Format = outputFormat
	}

	logger = config.NewLogger(cfg.Logging)

	explicitFormat := output.ParseFormat(cfg.Output.Format)
	formatter = output.NewFormatter(output.DetectFormat(os.Stdout, explicitFormat), os.Stdout)

	retry := chaindata.DefaultRetryConfig()
	if cfg.Service.MaxRetries > 0 {
		retry.MaxAttempts = cfg.Service.MaxRetries
	}

	deps = chain.Deps{
		Data: chaindata.NewClient(&chaindata.ClientOptions{
			BaseURL:       cfg.Service.BaseURL,
			APIKey:        cfg.Service.APIKey,
			RatePerSecond: cfg.Service.RatePerSecond,
			Burst:         cfg.Service.Burst,
			Retry:         &retry,
			Log:           logger,
		}),
		Assets:  assetstore.New(),
		Scripts: addrscript.New(),
		Log:     logger,
	}

	return nil
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "txcore data directory (default: ~/.txcore)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
