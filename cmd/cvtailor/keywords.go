package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-tailor/internal/ingestion"
	"github.com/jonathan/cv-tailor/internal/keywords"
	"github.com/jonathan/cv-tailor/internal/observability"
)

// maxConcurrentSources bounds parallel file reads and URL fetches.
const maxConcurrentSources = 4

var keywordsCmd = &cobra.Command{
	Use:   "keywords [files...]",
	Short: "Extract the top keywords from job descriptions",
	Long: "Extract the most frequent meaningful words from job descriptions read from files, " +
		"URLs or standard input. Several sources are processed concurrently; output is one line per source.",
	RunE: runKeywords,
}

var (
	keywordsURLs    []string
	keywordsLimit   int
	keywordsJSON    bool
	keywordsVerbose bool
)

func init() {
	keywordsCmd.Flags().StringSliceVarP(&keywordsURLs, "url", "u", nil, "Job posting URL to fetch (repeatable)")
	keywordsCmd.Flags().IntVarP(&keywordsLimit, "limit", "n", keywords.DefaultLimit, "Maximum keywords per source (0 uses the default)")
	keywordsCmd.Flags().BoolVar(&keywordsJSON, "json", false, "Print results as JSON")
	keywordsCmd.Flags().BoolVarP(&keywordsVerbose, "verbose", "v", false, "Print ranked counts and source details to stderr")
	rootCmd.AddCommand(keywordsCmd)
}

// keywordSource is one job description to read.
type keywordSource struct {
	Name string
	URL  bool
}

// keywordResult is the outcome for one source.
type keywordResult struct {
	Source   string              `json:"source"`
	Keywords []string            `json:"keywords"`
	Counts   []keywords.Term     `json:"counts,omitempty"`
	Metadata *ingestion.Metadata `json:"metadata,omitempty"`
}

func runKeywords(cmd *cobra.Command, args []string) error {
	if keywordsLimit < 0 {
		return fmt.Errorf("--limit must be zero or positive")
	}
	limit := keywordsLimit
	if limit == 0 {
		limit = keywords.DefaultLimit
	}

	sources := make([]keywordSource, 0, len(args)+len(keywordsURLs))
	for _, path := range args {
		sources = append(sources, keywordSource{Name: path})
	}
	for _, u := range keywordsURLs {
		sources = append(sources, keywordSource{Name: u, URL: true})
	}

	var results []keywordResult
	var err error
	if len(sources) == 0 {
		var doc *ingestion.Document
		doc, err = ingestion.FromReader(cmd.InOrStdin(), "stdin")
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		results = []keywordResult{rankDocument("stdin", doc, limit)}
	} else {
		results, err = extractAll(cmd.Context(), sources, limit)
		if err != nil {
			return err
		}
	}

	if keywordsVerbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		for _, r := range results {
			printer.PrintSource(r.Metadata)
			printer.PrintKeywords(r.Counts, limit)
		}
	}

	return writeKeywords(cmd.OutOrStdout(), results, keywordsJSON)
}

// extractAll ingests every source concurrently. Results keep the order of
// sources; the first failure cancels the rest.
func extractAll(ctx context.Context, sources []keywordSource, limit int) ([]keywordResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]keywordResult, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSources)
	for i, src := range sources {
		g.Go(func() error {
			var doc *ingestion.Document
			var err error
			if src.URL {
				doc, err = ingestion.FromURL(ctx, src.Name, nil)
			} else {
				doc, err = ingestion.FromFile(src.Name)
			}
			if err != nil {
				return fmt.Errorf("failed to ingest %s: %w", src.Name, err)
			}
			results[i] = rankDocument(src.Name, doc, limit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func rankDocument(name string, doc *ingestion.Document, limit int) keywordResult {
	ranked := keywords.Rank(doc.Text)
	return keywordResult{
		Source:   name,
		Keywords: keywords.Tokens(keywords.Top(ranked, limit)),
		Counts:   ranked,
		Metadata: doc.Metadata,
	}
}

// writeKeywords prints one line per source, prefixed with the source name
// when there is more than one. JSON output omits the full counts.
func writeKeywords(w io.Writer, results []keywordResult, asJSON bool) error {
	if asJSON {
		out := make([]keywordResult, len(results))
		for i, r := range results {
			out[i] = keywordResult{Source: r.Source, Keywords: r.Keywords, Metadata: r.Metadata}
			if len(r.Counts) > len(r.Keywords) {
				out[i].Counts = r.Counts[:len(r.Keywords)]
			} else {
				out[i].Counts = r.Counts
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, r := range results {
		line := strings.Join(r.Keywords, ", ")
		if len(results) > 1 {
			line = r.Source + ": " + line
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
