// Package main provides the cvtailor command: the HTTP API behind the CV
// tailoring frontend plus local keyword, upload and schema tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cvtailor",
	Short: "CV tailoring API server and tools",
	Long: "cvtailor accepts CV uploads, extracts keywords from job descriptions and " +
		"checks whether a tailoring request is ready, over HTTP or from the command line.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
