// Command prodrisk is the entry point for the product search and risk
// analysis service. It provides a CLI interface (via Cobra) and an optional
// HTTP server exposing the same operations as a REST API.
package main

import (
	"fmt"
	"os"

	"github.com/furkancmc/prodrisk/cmd/prodrisk/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
