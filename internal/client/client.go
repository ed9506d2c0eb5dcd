// Package client talks to the cv-tailor HTTP API. Every response body is
// checked against the bundled JSON schemas before it is decoded.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/cv-tailor/internal/keywords"
	"github.com/jonathan/cv-tailor/internal/schemas"
	"github.com/jonathan/cv-tailor/internal/tailoring"
	"github.com/jonathan/cv-tailor/internal/upload"
	bundled "github.com/jonathan/cv-tailor/schemas"
)

const (
	// DefaultBaseURL is where `cvtailor serve` listens by default.
	DefaultBaseURL = "http://localhost:8080"
	// DefaultUploadPath is the upload route used by the current frontend.
	DefaultUploadPath = "/api/upload-cv"
	// DefaultTimeout bounds each request.
	DefaultTimeout = 60 * time.Second

	maxResponseBytes = 1 << 20
)

// Client calls the API at BaseURL.
type Client struct {
	BaseURL    string
	UploadPath string
	HTTPClient *http.Client
}

// New creates a Client for baseURL. An empty baseURL uses DefaultBaseURL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		UploadPath: DefaultUploadPath,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// UploadResult is a successful upload response.
type UploadResult struct {
	Message string
	File    upload.File
}

// KeywordsResult is a successful keywords response.
type KeywordsResult struct {
	Keywords []string        `json:"keywords"`
	Counts   []keywords.Term `json:"counts,omitempty"`
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// UploadCV uploads the file at path as the multipart field "file".
func (c *Client) UploadCV(ctx context.Context, path string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CV: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read CV: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	env, err := c.do(ctx, http.MethodPost, c.uploadPath(), mw.FormDataContentType(), &body, bundled.UploadSuccess)
	if err != nil {
		return nil, err
	}

	result := &UploadResult{Message: env.Message}
	if err := json.Unmarshal(env.Data, &result.File); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return result, nil
}

// Keywords asks the server for the top keywords of text. A limit of zero
// uses the server's default.
func (c *Client) Keywords(ctx context.Context, text string, limit int, counts bool) (*KeywordsResult, error) {
	payload, err := json.Marshal(map[string]any{"text": text, "limit": limit, "counts": counts})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	env, err := c.do(ctx, http.MethodPost, "/api/keywords", "application/json", bytes.NewReader(payload), bundled.KeywordsResponse)
	if err != nil {
		return nil, err
	}

	var result KeywordsResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode keywords response: %w", err)
	}
	return &result, nil
}

// CheckTailoring asks whether a tailored CV can be generated for req.
func (c *Client) CheckTailoring(ctx context.Context, req tailoring.Request) (*tailoring.Readiness, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	env, err := c.do(ctx, http.MethodPost, "/api/tailor/check", "application/json", bytes.NewReader(payload), "")
	if err != nil {
		return nil, err
	}

	var result tailoring.Readiness
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode readiness response: %w", err)
	}
	return &result, nil
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/health", "", nil, "")
	return err
}

func (c *Client) uploadPath() string {
	if c.UploadPath == "" {
		return DefaultUploadPath
	}
	return c.UploadPath
}

// do sends a request and returns the success envelope. A non-empty
// successSchema is checked against 200 bodies; other statuses are decoded as
// *APIError.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, successSchema string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, data)
	}

	if successSchema != "" {
		if err := schemas.ValidateNamed(successSchema, data); err != nil {
			return nil, &ResponseError{StatusCode: resp.StatusCode, Body: string(data), Cause: err}
		}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: string(data), Cause: err}
	}
	if !env.Success {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: string(data), Cause: fmt.Errorf("success flag not set")}
	}
	return &env, nil
}
