package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/cv-tailor/internal/ingestion"
	"github.com/jonathan/cv-tailor/internal/keywords"
	"github.com/jonathan/cv-tailor/internal/tailoring"
	"github.com/jonathan/cv-tailor/internal/upload"
)

// maxJSONBodyBytes bounds JSON request bodies.
const maxJSONBodyBytes = 1 << 20

// multipartOverhead is allowed on top of the file size limit for multipart
// boundaries and headers.
const multipartOverhead = 1 << 20

// KeywordsRequest represents the request body for /api/keywords
type KeywordsRequest struct {
	Text   string `json:"text"`
	Limit  int    `json:"limit" validate:"min=0,max=100"`
	Counts bool   `json:"counts"`
}

// KeywordsResponse is the data of a /api/keywords response.
type KeywordsResponse struct {
	Keywords []string        `json:"keywords"`
	Counts   []keywords.Term `json:"counts,omitempty"`
}

// HealthResponse is the data of a /api/health response.
type HealthResponse struct {
	Status string `json:"status"`
}

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.successResponse(w, "Backend is running", HealthResponse{Status: "healthy"})
}

// handleUploadCV validates and stores a CV sent as the multipart field "file".
func (s *Server) handleUploadCV(w http.ResponseWriter, r *http.Request) {
	maxBody := int64(s.uploads.MaxSizeMB())<<20 + multipartOverhead
	if r.ContentLength > maxBody {
		s.errorResponse(w, s.bodyTooLarge())
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, s.bodyTooLarge())
			return
		}
		s.errorResponse(w, missingFile("No file provided. Please upload a CV file."))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, missingFile("No file provided. Please upload a CV file."))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.errorResponse(w, missingFile("No file selected. Please choose a CV file to upload."))
		return
	}

	f, err := s.uploads.Process(upload.Input{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.successResponse(w, fmt.Sprintf("CV '%s' uploaded successfully", f.Filename), f)
}

// handleGetUpload returns the metadata of an accepted upload.
func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, &ErrNotFound{Resource: "upload", ID: idStr})
		return
	}

	f, ok := s.uploads.Registry().Get(id)
	if !ok {
		s.errorResponse(w, &ErrNotFound{Resource: "upload", ID: idStr})
		return
	}
	s.successResponse(w, "Upload found", f)
}

// handleKeywords extracts the top keywords from a job description.
func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	var req KeywordsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := requestValidator.Struct(&req); err != nil {
		s.errorResponse(w, fromValidator(err))
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = s.keywordLimit
	}

	top := keywords.Top(keywords.Rank(ingestion.FromText(req.Text).Text), limit)
	resp := KeywordsResponse{Keywords: keywords.Tokens(top)}
	if req.Counts {
		resp.Counts = top
	}

	s.successResponse(w, fmt.Sprintf("Extracted %d keywords", len(resp.Keywords)), resp)
}

// handleTailorCheck reports whether a tailored CV can be generated.
func (s *Server) handleTailorCheck(w http.ResponseWriter, r *http.Request) {
	var req tailoring.Request
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	readiness, err := tailoring.Check(req, s.uploads.Registry())
	if err != nil {
		s.errorResponse(w, fromValidator(err))
		return
	}
	s.successResponse(w, readiness.Reason, readiness)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, &ErrMethodNotAllowed{Method: r.Method, Path: r.URL.Path})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, &ErrNotFound{Resource: "route", ID: r.URL.Path})
}

// decodeJSON decodes a bounded JSON body into dst.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return &ErrInvalidRequest{Cause: err}
	}
	return nil
}

func (s *Server) bodyTooLarge() *upload.Error {
	return &upload.Error{
		Code:    upload.CodeFileTooLarge,
		Message: fmt.Sprintf("File size exceeds maximum limit of %dMB", s.uploads.MaxSizeMB()),
		Details: map[string]any{"max_size_mb": s.uploads.MaxSizeMB()},
	}
}

func missingFile(message string) *upload.Error {
	return &upload.Error{Code: upload.CodeMissingFile, Message: message, Details: map[string]any{}}
}
