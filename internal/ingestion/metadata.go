package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
	"unicode/utf8"
)

// SourceKind identifies where a job description came from.
type SourceKind string

const (
	SourceText SourceKind = "text"
	SourceFile SourceKind = "file"
	SourceURL  SourceKind = "url"
)

// Metadata describes an ingested job description.
type Metadata struct {
	Kind       SourceKind `json:"kind"`
	Source     string     `json:"source,omitempty"` // file path or URL
	Platform   string     `json:"platform,omitempty"`
	Timestamp  string     `json:"timestamp"` // RFC3339
	Hash       string     `json:"hash"`      // SHA256 hex digest of the cleaned text
	Characters int        `json:"characters"`
}

// NewMetadata creates a Metadata stamped with the current time.
func NewMetadata(kind SourceKind, source, content string) *Metadata {
	sum := sha256.Sum256([]byte(content))
	return &Metadata{
		Kind:       kind,
		Source:     source,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Hash:       hex.EncodeToString(sum[:]),
		Characters: utf8.RuneCountInString(content),
	}
}
