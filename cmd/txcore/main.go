// Command txcore is the multi-chain transaction construction CLI.
package main

import (
	"os"

	"github.com/nexawallet/txcore/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
