package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-tailor/internal/client"
	"github.com/jonathan/cv-tailor/internal/ingestion"
	"github.com/jonathan/cv-tailor/internal/observability"
	"github.com/jonathan/cv-tailor/internal/tailoring"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Ask a running server whether a tailored CV can be generated",
	Long: "Send an upload ID, a job description and an optional custom prompt to the server " +
		"and print whether the request is ready, or what is still missing.",
	RunE: runCheck,
}

var (
	checkEndpoint string
	checkUploadID string
	checkJobFile  string
	checkJobURL   string
	checkPrompt   string
	checkJSON     bool
	checkVerbose  bool
)

func init() {
	checkCmd.Flags().StringVarP(&checkEndpoint, "endpoint", "e", defaultEndpoint(), "Base URL of the API (env CVTAILOR_ENDPOINT)")
	checkCmd.Flags().StringVar(&checkUploadID, "upload-id", "", "Upload ID returned by the upload command")
	checkCmd.Flags().StringVarP(&checkJobFile, "job-file", "j", "", "Path to the job description (.txt, .md or .html)")
	checkCmd.Flags().StringVarP(&checkJobURL, "job-url", "u", "", "URL of the job posting")
	checkCmd.Flags().StringVarP(&checkPrompt, "prompt", "p", "", "Custom tailoring prompt (empty uses the default)")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the readiness as JSON")
	checkCmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false, "Print a summary box")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	if checkJobFile != "" && checkJobURL != "" {
		return fmt.Errorf("--job-file and --job-url are mutually exclusive; provide only one")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	var jobDescription string
	switch {
	case checkJobFile != "":
		doc, err := ingestion.FromFile(checkJobFile)
		if err != nil {
			return fmt.Errorf("failed to ingest job description: %w", err)
		}
		jobDescription = doc.Text
	case checkJobURL != "":
		doc, err := ingestion.FromURL(ctx, checkJobURL, nil)
		if err != nil {
			return fmt.Errorf("failed to ingest job description: %w", err)
		}
		jobDescription = doc.Text
	}

	readiness, err := client.New(checkEndpoint).CheckTailoring(ctx, tailoring.Request{
		UploadID:       checkUploadID,
		JobDescription: jobDescription,
		Prompt:         checkPrompt,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if checkVerbose {
		observability.NewPrinter(out).PrintReadiness(readiness)
	}
	if checkJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(readiness)
	}
	fmt.Fprintln(out, readiness.Reason)
	return nil
}
