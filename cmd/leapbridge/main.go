// Package main provides the CLI entry point for the bridge service.
package main

import (
	"os"

	"github.com/leapstack-labs/leapbridge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
