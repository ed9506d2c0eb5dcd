// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cv-tailor/internal/ingestion"
	"github.com/jonathan/cv-tailor/internal/keywords"
	"github.com/jonathan/cv-tailor/internal/tailoring"
	"github.com/jonathan/cv-tailor/internal/upload"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens line to fit the box, counting runes so multi-byte
// characters are never split.
func truncate(line string) string {
	r := []rune(line)
	if len(r) > boxWidth-4 {
		return string(r[:boxWidth-7]) + "..."
	}
	return line
}

// PrintSource outputs where a job description came from.
func (p *Printer) PrintSource(meta *ingestion.Metadata) {
	if meta == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Kind:       %s\n", meta.Kind))
	if meta.Source != "" {
		sb.WriteString(fmt.Sprintf("Source:     %s\n", meta.Source))
	}
	if meta.Platform != "" {
		sb.WriteString(fmt.Sprintf("Platform:   %s\n", meta.Platform))
	}
	sb.WriteString(fmt.Sprintf("Characters: %d\n", meta.Characters))
	if len(meta.Hash) >= 12 {
		sb.WriteString(fmt.Sprintf("Hash:       %s\n", meta.Hash[:12]))
	}

	p.printBox("JOB DESCRIPTION", sb.String())
}

// PrintKeywords outputs the ranked terms, marking the ones inside limit.
func (p *Printer) PrintKeywords(terms []keywords.Term, limit int) {
	var sb strings.Builder

	if len(terms) == 0 {
		sb.WriteString("No keywords found")
	} else {
		count := min(len(terms), maxItemsToShow)
		for i := 0; i < count; i++ {
			marker := " "
			if i < limit {
				marker = "✓"
			}
			sb.WriteString(fmt.Sprintf("%s %2d. %-30s x%d\n", marker, i+1, terms[i].Token, terms[i].Count))
		}
		if len(terms) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(terms)-maxItemsToShow))
		}
	}

	p.printBox(fmt.Sprintf("KEYWORDS (%d distinct, top %d kept)", len(terms), min(limit, len(terms))), sb.String())
}

// PrintUpload outputs a summary of an accepted CV upload.
func (p *Printer) PrintUpload(f *upload.File) {
	if f == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Upload ID: %s\n", f.ID))
	sb.WriteString(fmt.Sprintf("Filename:  %s\n", f.Filename))
	if f.OriginalName != "" && f.OriginalName != f.Filename {
		sb.WriteString(fmt.Sprintf("Original:  %s\n", f.OriginalName))
	}
	sb.WriteString(fmt.Sprintf("Type:      %s (%s)\n", f.FileType, f.MIMEType))
	sb.WriteString(fmt.Sprintf("Size:      %.2f MB\n", f.SizeMB))

	p.printBox("CV UPLOADED", sb.String())
}

// PrintReadiness outputs whether a tailored CV can be generated.
func (p *Printer) PrintReadiness(r *tailoring.Readiness) {
	if r == nil {
		return
	}

	var sb strings.Builder
	status := "✗ Not ready"
	if r.Ready {
		status = "✓ Ready"
	}
	sb.WriteString(fmt.Sprintf("%s: %s\n", status, r.Reason))
	sb.WriteString(fmt.Sprintf("Job description: %d/%d characters\n", r.JobDescriptionLength, tailoring.MinJobDescriptionLength))
	if len(r.Keywords) > 0 {
		sb.WriteString(fmt.Sprintf("Keywords: %s\n", strings.Join(r.Keywords, ", ")))
	}
	if r.CustomPrompt {
		sb.WriteString("Prompt: custom\n")
	} else {
		sb.WriteString("Prompt: default\n")
	}

	p.printBox("TAILORING READINESS", sb.String())
}
