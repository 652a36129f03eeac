// Package main is the entrypoint for the starbridge CLI.
package main

import (
	"os"

	"github.com/starbridge-labs/starbridge/internal/cli"
)

func main() {
	// Execute prints the error itself; main only sets the exit code.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
