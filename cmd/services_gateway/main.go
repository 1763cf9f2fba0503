// Package main provides the entry point for the services gateway.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "services_gateway",
	Short: "Services catalogue HTTP gateway",
	Long:  "Serves a tree of page.json documents either as HTML views or as raw JSON downloads.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
