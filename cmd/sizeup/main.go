// Package main is the entrypoint for the sizeup CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/sizeup-ci/sizeup/cmd"
	"github.com/sizeup-ci/sizeup/internal/history"
)

func main() {
	// A .env file is optional; CI agents usually inject real variables.
	_ = godotenv.Load()

	cmd.SetHistoryManager(history.Manager)

	// os.Exit skips deferred calls, so close the store before exiting.
	err := cmd.Execute()
	history.CloseStores()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
