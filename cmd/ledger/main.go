// Package main is the entry point for the ledger CLI.
package main

import (
	"fmt"
	"os"

	"expensetracker/cmd/ledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
