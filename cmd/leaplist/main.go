// Package main provides the leaplist command.
package main

import (
	"os"

	"github.com/leapstack-labs/leaplist/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
