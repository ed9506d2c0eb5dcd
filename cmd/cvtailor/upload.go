package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-tailor/internal/client"
	"github.com/jonathan/cv-tailor/internal/observability"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a CV to a running cvtailor server",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var (
	uploadEndpoint string
	uploadLegacy   bool
	uploadJSON     bool
	uploadVerbose  bool
	uploadTimeout  time.Duration
)

func init() {
	uploadCmd.Flags().StringVarP(&uploadEndpoint, "endpoint", "e", defaultEndpoint(), "Base URL of the API (env CVTAILOR_ENDPOINT)")
	uploadCmd.Flags().BoolVar(&uploadLegacy, "legacy", false, "Use the legacy /api/analyze_cv route")
	uploadCmd.Flags().BoolVar(&uploadJSON, "json", false, "Print the upload metadata as JSON")
	uploadCmd.Flags().BoolVarP(&uploadVerbose, "verbose", "v", false, "Print a summary box")
	uploadCmd.Flags().DurationVar(&uploadTimeout, "timeout", client.DefaultTimeout, "Request timeout")
	rootCmd.AddCommand(uploadCmd)
}

func defaultEndpoint() string {
	if v := os.Getenv("CVTAILOR_ENDPOINT"); v != "" {
		return v
	}
	return client.DefaultBaseURL
}

func runUpload(cmd *cobra.Command, args []string) error {
	c := client.New(uploadEndpoint)
	if uploadLegacy {
		c.UploadPath = "/api/analyze_cv"
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	result, err := c.UploadCV(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if uploadVerbose {
		observability.NewPrinter(out).PrintUpload(&result.File)
	}
	if uploadJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.File)
	}

	fmt.Fprintln(out, result.Message)
	fmt.Fprintf(out, "Upload ID: %s\n", result.File.ID)
	return nil
}
