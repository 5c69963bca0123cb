// Command starfront runs the reward and progression ledger.
package main

import (
	"os"

	"github.com/starfront/starfront/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
