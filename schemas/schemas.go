// Package schemas holds the JSON Schema documents describing the API responses.
package schemas

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.schema.json
var files embed.FS

const suffix = ".schema.json"

// Names of the bundled schemas.
const (
	UploadSuccess    = "upload_success"
	ErrorResponse    = "error_response"
	KeywordsResponse = "keywords_response"
)

// Get returns the schema document called name.
func Get(name string) ([]byte, error) {
	data, err := files.ReadFile(name + suffix)
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}
	return data, nil
}

// Names lists the bundled schemas.
func Names() []string {
	entries, _ := fs.Glob(files, "*"+suffix)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e, suffix))
	}
	sort.Strings(names)
	return names
}
