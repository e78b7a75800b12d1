package main

import (
	"fmt"
	"os"

	"github.com/subosito/gotenv"
)

var version = "dev"

func main() {
	// Local .env is optional; real deployments configure via the
	// environment directly.
	_ = gotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
