// Package main provides the entry point for the price intelligence CLI and
// HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "price_agent",
	Short: "Marketplace price intelligence",
	Long:  "Price Agent scans Mercado Libre for offers comparable to a target product, filters out accessories and bundles, and recommends a selling price backed by distribution statistics and a fee breakdown.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
