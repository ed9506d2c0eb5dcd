// Package upload validates and stores CV files sent by the web frontend.
// Files are checked for extension, size and content type; their contents are
// never parsed.
package upload

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxSizeMB is the largest accepted upload.
const DefaultMaxSizeMB = 10

// AllowedExtensions are the CV formats the frontend may upload.
var AllowedExtensions = map[string]bool{"pdf": true, "doc": true, "docx": true}

// File is an accepted upload.
type File struct {
	ID           uuid.UUID `json:"upload_id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_filename"`
	SizeBytes    int64     `json:"size_bytes"`
	SizeMB       float64   `json:"file_size_mb"`
	FileType     string    `json:"file_type"`
	MIMEType     string    `json:"mime_type"`
	Path         string    `json:"-"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Input is a file received from a client. Size is the size the client
// declared; the bytes actually read are checked as well.
type Input struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// Processor validates uploads, stores them under Dir and records them in a Registry.
type Processor struct {
	dir      string
	maxBytes int64
	registry *Registry
	now      func() time.Time
}

// NewProcessor creates a Processor. A maxSizeMB of zero or less uses DefaultMaxSizeMB.
func NewProcessor(dir string, maxSizeMB int, registry *Registry) *Processor {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Processor{
		dir:      dir,
		maxBytes: int64(maxSizeMB) << 20,
		registry: registry,
		now:      time.Now,
	}
}

// Registry returns the registry accepted uploads are recorded in.
func (p *Processor) Registry() *Registry {
	return p.registry
}

// MaxSizeMB returns the configured size limit in megabytes.
func (p *Processor) MaxSizeMB() int {
	return int(p.maxBytes >> 20)
}

// Process validates in and stores it. Failures are returned as *Error.
func (p *Processor) Process(in Input) (*File, error) {
	if in.Content == nil || in.Filename == "" {
		return nil, newError(CodeMissingFile, "No file selected. Please choose a CV file to upload.", nil)
	}

	ext := Extension(in.Filename)
	if !AllowedExtensions[ext] {
		return nil, newError(CodeInvalidFileType,
			"File type not supported. Please upload a PDF, DOCX, or DOC file.",
			map[string]any{
				"uploaded_filename": in.Filename,
				"supported_formats": supportedFormats(),
			})
	}

	// The declared size only short-circuits oversized uploads; emptiness is
	// judged on what was actually received.
	if in.Size > p.maxBytes {
		return nil, p.checkSize(in.Size)
	}

	data, err := io.ReadAll(io.LimitReader(in.Content, p.maxBytes+1))
	if err != nil {
		return nil, newError(CodeServerError, "Failed to read uploaded file", map[string]any{"error_detail": err.Error()})
	}
	size := int64(len(data))
	if err := p.checkSize(size); err != nil {
		return nil, err
	}

	mimeType, ok := sniff(ext, data)
	if !ok {
		return nil, newError(CodeCorruptedFile,
			fmt.Sprintf("File content does not look like a %s document. It may be corrupted.", ext),
			map[string]any{"file_type": ext, "detected_type": mimeType})
	}

	name := SecureFilename(in.Filename)
	if name == "" || name == ext {
		name = "cv." + ext
	}

	f := &File{
		ID:           uuid.New(),
		Filename:     name,
		OriginalName: in.Filename,
		SizeBytes:    size,
		SizeMB:       toMB(size),
		FileType:     ext,
		MIMEType:     mimeType,
		UploadedAt:   p.now().UTC(),
	}
	f.Path = p.store(f, data)
	p.registry.Add(f)

	log.Printf("[upload] accepted %s (%s, %.2f MB) as %s", f.Filename, f.MIMEType, f.SizeMB, f.ID)
	return f, nil
}

func (p *Processor) checkSize(size int64) error {
	if size == 0 {
		return newError(CodeEmptyFile, "The uploaded file is empty", map[string]any{"file_size_bytes": 0})
	}
	if size > p.maxBytes {
		return newError(CodeFileTooLarge,
			fmt.Sprintf("File size exceeds maximum limit of %dMB", p.MaxSizeMB()),
			map[string]any{"max_size_mb": p.MaxSizeMB(), "file_size_mb": toMB(size)})
	}
	return nil
}

// store writes data under the upload directory. Storage is best effort: on
// failure the upload is still accepted and a temporary path is reported.
func (p *Processor) store(f *File, data []byte) string {
	fallback := "temporary-" + f.Filename
	if p.dir == "" {
		return fallback
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		log.Printf("[upload] cannot create %s: %v", p.dir, err)
		return fallback
	}

	path := filepath.Join(p.dir, f.ID.String()+"_"+f.Filename)
	if err := writeFile(path, data); err != nil {
		log.Printf("[upload] cannot store %s: %v", path, err)
		return fallback
	}
	return path
}

func writeFile(path string, data []byte) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func toMB(size int64) float64 {
	return math.Round(float64(size)/(1<<20)*100) / 100
}

func supportedFormats() []string {
	out := make([]string, 0, len(AllowedExtensions))
	for ext := range AllowedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
