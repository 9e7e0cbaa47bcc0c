// Package main provides the sheetpress CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sheetpress",
	Short: "Publish spreadsheet rows to WordPress and Facebook",
	Long:  "sheetpress reads editorial rows from a Google Sheet, creates or updates WordPress drafts, optionally waits for manual publication, posts captions to a Facebook Page, and writes results back to the sheet.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
