package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFile is returned for file extensions that cannot hold a job description.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrEmptyContent is returned when nothing readable was left after cleaning.
	ErrEmptyContent = errors.New("no readable text")
)

// Error wraps a failure to ingest a single source.
type Error struct {
	Source string
	Cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Source, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
