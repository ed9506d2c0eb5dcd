package ingestion

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/cv-tailor/internal/fetch"
)

// Document is a cleaned job description and where it came from.
type Document struct {
	Text     string
	Metadata *Metadata
}

// FromText cleans text supplied directly, e.g. pasted into a form.
func FromText(text string) *Document {
	cleaned := CleanText(text)
	return &Document{Text: cleaned, Metadata: NewMetadata(SourceText, "", cleaned)}
}

// FromReader reads r fully and cleans it. HTML input is reduced to its main text.
func FromReader(r io.Reader, name string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Source: name, Cause: err}
	}

	text := string(data)
	if isHTML(text) {
		text, err = fetch.ExtractMainText(text, fetch.JobPostingSelectors())
		if err != nil {
			return nil, &Error{Source: name, Cause: err}
		}
	}

	cleaned := CleanText(text)
	return &Document{Text: cleaned, Metadata: NewMetadata(SourceText, name, cleaned)}, nil
}

// FromFile reads a .txt, .md or .html job description from disk.
func FromFile(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md", ".markdown", ".text", "":
	case ".html", ".htm":
	default:
		return nil, &Error{Source: path, Cause: fmt.Errorf("%w: %s", ErrUnsupportedFile, ext)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Source: path, Cause: err}
	}

	text := string(data)
	if ext == ".html" || ext == ".htm" || isHTML(text) {
		text, err = fetch.ExtractMainText(text, fetch.JobPostingSelectors())
		if err != nil {
			return nil, &Error{Source: path, Cause: err}
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return nil, &Error{Source: path, Cause: ErrEmptyContent}
	}
	return &Document{Text: cleaned, Metadata: NewMetadata(SourceFile, path, cleaned)}, nil
}

// FromURL fetches a job posting and extracts its text using selectors for the
// hosting job board when it is recognized.
func FromURL(ctx context.Context, urlStr string, opts *fetch.Options) (*Document, error) {
	platform := fetch.DetectPlatform(urlStr)

	result, err := fetch.URL(ctx, urlStr, opts)
	if err != nil {
		return nil, &Error{Source: urlStr, Cause: err}
	}

	text, err := fetch.ExtractMainText(result.HTML, platform.ContentSelectors(), platform.NoiseSelectors()...)
	if err != nil {
		return nil, &Error{Source: urlStr, Cause: err}
	}
	log.Printf("[ingest] %s: platform=%s html=%d bytes text=%d chars", urlStr, platform, len(result.HTML), len(text))

	cleaned := CleanText(text)
	if cleaned == "" {
		return nil, &Error{Source: urlStr, Cause: ErrEmptyContent}
	}

	meta := NewMetadata(SourceURL, urlStr, cleaned)
	meta.Platform = string(platform)
	return &Document{Text: cleaned, Metadata: meta}, nil
}
