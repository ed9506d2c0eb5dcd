package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-tailor/internal/schemas"
	"github.com/jonathan/cv-tailor/internal/server/ratelimit"
	"github.com/jonathan/cv-tailor/internal/tailoring"
	bundled "github.com/jonathan/cv-tailor/schemas"
)

func newTestServer(t *testing.T, mutate ...func(*Config)) *Server {
	t.Helper()
	cfg := Config{
		UploadDir:   t.TempDir(),
		MaxUploadMB: 1,
		RateLimit:   &ratelimit.Config{Enabled: false},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func pdfBytes() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
}

func multipartRequest(t *testing.T, path, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file here"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func requireSchema(t *testing.T, name string, w *httptest.ResponseRecorder) {
	t.Helper()
	require.NoError(t, schemas.ValidateNamed(name, w.Body.Bytes()), w.Body.String())
}

type errorBody struct {
	Success   bool           `json:"success"`
	ErrorCode string         `json:"error_code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	requireSchema(t, bundled.ErrorResponse, w)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{Port: 70000, RateLimit: &ratelimit.Config{}})
	assert.Error(t, err)

	_, err = New(Config{MaxUploadMB: -1, RateLimit: &ratelimit.Config{}})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		Data    HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Backend is running", resp.Message)
	assert.Equal(t, "healthy", resp.Data.Status)
}

func TestCORS(t *testing.T) {
	t.Run("default origin", func(t *testing.T) {
		s := newTestServer(t)
		w := serve(s, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("configured origin and preflight", func(t *testing.T) {
		s := newTestServer(t, func(c *Config) { c.AllowOrigin = "http://localhost:3000" })
		w := serve(s, httptest.NewRequest(http.MethodOptions, "/api/upload-cv", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Body.String())
	})
}

func TestUploadCV_Success(t *testing.T) {
	for _, path := range []string{"/api/upload-cv", "/api/analyze_cv"} {
		t.Run(path, func(t *testing.T) {
			s := newTestServer(t)

			w := serve(s, multipartRequest(t, path, "file", "My Resume.pdf", pdfBytes()))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			requireSchema(t, bundled.UploadSuccess, w)

			var resp struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
				Data    struct {
					UploadID string  `json:"upload_id"`
					Filename string  `json:"filename"`
					SizeMB   float64 `json:"file_size_mb"`
					FileType string  `json:"file_type"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "CV 'My_Resume.pdf' uploaded successfully", resp.Message)
			assert.Equal(t, "My_Resume.pdf", resp.Data.Filename)
			assert.Equal(t, "pdf", resp.Data.FileType)
			assert.Equal(t, 0.0, resp.Data.SizeMB)

			id, err := uuid.Parse(resp.Data.UploadID)
			require.NoError(t, err)
			_, ok := s.Uploads().Registry().Get(id)
			assert.True(t, ok)
		})
	}
}

func TestUploadCV_Errors(t *testing.T) {
	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		status   int
		code     string
		contains string
	}{
		{
			name: "no file field",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/upload-cv", "", "", nil)
			},
			status:   http.StatusBadRequest,
			code:     "missing_file",
			contains: "No file provided",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/upload-cv", strings.NewReader("hello"))
			},
			status: http.StatusBadRequest,
			code:   "missing_file",
		},
		{
			name: "wrong extension",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/upload-cv", "file", "cv.txt", []byte("plain text"))
			},
			status:   http.StatusBadRequest,
			code:     "invalid_file_type",
			contains: "PDF, DOCX, or DOC",
		},
		{
			name: "empty file",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/upload-cv", "file", "cv.pdf", nil)
			},
			status: http.StatusBadRequest,
			code:   "empty_file",
		},
		{
			name: "content is not a pdf",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/upload-cv", "file", "cv.pdf", []byte("just some text pretending"))
			},
			status: http.StatusUnprocessableEntity,
			code:   "corrupted_file",
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				big := append(pdfBytes(), bytes.Repeat([]byte("a"), 3<<20)...)
				return multipartRequest(t, "/api/upload-cv", "file", "cv.pdf", big)
			},
			status:   http.StatusRequestEntityTooLarge,
			code:     "file_too_large",
			contains: "1MB",
		},
		{
			name: "slightly too large",
			req: func(t *testing.T) *http.Request {
				big := append(pdfBytes(), bytes.Repeat([]byte("a"), 1<<20)...)
				return multipartRequest(t, "/api/upload-cv", "file", "cv.pdf", big)
			},
			status: http.StatusRequestEntityTooLarge,
			code:   "file_too_large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			w := serve(s, tt.req(t))

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			body := decodeError(t, w)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.ErrorCode)
			assert.Contains(t, body.Message, tt.contains)
			assert.Equal(t, 0, s.Uploads().Registry().Len())
		})
	}
}

func TestGetUpload(t *testing.T) {
	s := newTestServer(t)

	w := serve(s, multipartRequest(t, "/api/upload-cv", "file", "cv.pdf", pdfBytes()))
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		Data struct {
			UploadID string `json:"upload_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = serve(s, httptest.NewRequest(http.MethodGet, "/api/uploads/"+created.Data.UploadID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	requireSchema(t, bundled.UploadSuccess, w)

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		w = serve(s, httptest.NewRequest(http.MethodGet, "/api/uploads/"+id, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, CodeNotFound, decodeError(t, w).ErrorCode)
	}
}

func TestKeywordsEndpoint(t *testing.T) {
	text := "Python python PYTHON java. We need Go and Kubernetes; kubernetes experience is a plus."

	tests := []struct {
		name     string
		body     any
		expected []string
		counts   bool
	}{
		{
			name:     "default limit",
			body:     map[string]any{"text": text},
			expected: []string{"python", "kubernetes", "java", "need", "experience", "plus"},
		},
		{
			name:     "explicit limit",
			body:     map[string]any{"text": text, "limit": 2},
			expected: []string{"python", "kubernetes"},
		},
		{
			name:     "zero limit means default",
			body:     map[string]any{"text": "cat dog cat", "limit": 0},
			expected: []string{"cat", "dog"},
		},
		{
			name:     "missing text",
			body:     map[string]any{},
			expected: []string{},
		},
		{
			name:     "pasted text with CRLF and tabs",
			body:     map[string]any{"text": "Terraform\r\n\r\n\r\n\tterraform   AWS\r\naws\tterraform"},
			expected: []string{"terraform", "aws"},
		},
		{
			name:     "with counts",
			body:     map[string]any{"text": "cat dog cat bird dog cat", "limit": 2, "counts": true},
			expected: []string{"cat", "dog"},
			counts:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			w := serve(s, jsonRequest(t, "/api/keywords", tt.body))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			requireSchema(t, bundled.KeywordsResponse, w)

			var resp struct {
				Data struct {
					Keywords []string `json:"keywords"`
					Counts   []struct {
						Token string `json:"token"`
						Count int    `json:"count"`
					} `json:"counts"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expected, resp.Data.Keywords)

			if tt.counts {
				require.Len(t, resp.Data.Counts, 2)
				assert.Equal(t, "cat", resp.Data.Counts[0].Token)
				assert.Equal(t, 3, resp.Data.Counts[0].Count)
				assert.Equal(t, 2, resp.Data.Counts[1].Count)
			} else {
				assert.Empty(t, resp.Data.Counts)
			}
		})
	}
}

func TestKeywordsEndpoint_ConfiguredDefault(t *testing.T) {
	s := newTestServer(t, func(c *Config) { c.KeywordLimit = 1 })
	w := serve(s, jsonRequest(t, "/api/keywords", map[string]any{"text": "cat dog cat"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"keywords":["cat"]`)
}

func TestKeywordsEndpoint_BadRequests(t *testing.T) {
	s := newTestServer(t)

	w := serve(s, httptest.NewRequest(http.MethodPost, "/api/keywords", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeInvalidRequest, decodeError(t, w).ErrorCode)

	for _, limit := range []int{-1, 101} {
		w = serve(s, jsonRequest(t, "/api/keywords", map[string]any{"text": "cat", "limit": limit}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, CodeValidation, body.ErrorCode)
		assert.Equal(t, "limit", body.Details["field"])
	}
}

func TestTailorCheck(t *testing.T) {
	s := newTestServer(t)

	w := serve(s, multipartRequest(t, "/api/upload-cv", "file", "cv.pdf", pdfBytes()))
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		Data struct {
			UploadID string `json:"upload_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	longJD := strings.Repeat("Senior Go engineer building distributed systems. ", 4)

	tests := []struct {
		name   string
		req    tailoring.Request
		ready  bool
		reason string
	}{
		{"no upload", tailoring.Request{JobDescription: longJD}, false, tailoring.ReasonNoUpload},
		{"unknown upload", tailoring.Request{UploadID: uuid.NewString(), JobDescription: longJD}, false, tailoring.ReasonUploadPending},
		{"short description", tailoring.Request{UploadID: created.Data.UploadID, JobDescription: "Go engineer"}, false, tailoring.JobDescriptionReason(11)},
		{"ready", tailoring.Request{UploadID: created.Data.UploadID, JobDescription: longJD}, true, tailoring.ReasonReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(s, jsonRequest(t, "/api/tailor/check", tt.req))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp struct {
				Success bool                `json:"success"`
				Message string              `json:"message"`
				Data    tailoring.Readiness `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.ready, resp.Data.Ready)
			assert.Equal(t, tt.reason, resp.Data.Reason)
			assert.Equal(t, tt.reason, resp.Message)
			assert.Equal(t, tailoring.DefaultPrompt, resp.Data.Prompt)
		})
	}
}

func TestTailorCheck_Validation(t *testing.T) {
	s := newTestServer(t)

	w := serve(s, jsonRequest(t, "/api/tailor/check", tailoring.Request{UploadID: "nope"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, CodeValidation, body.ErrorCode)
	assert.Equal(t, "upload_id", body.Details["field"])
	assert.Equal(t, "uuid", body.Details["tag"])
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/upload-cv"},
		{http.MethodGet, "/api/keywords"},
		{http.MethodPost, "/api/health"},
		{http.MethodDelete, "/api/uploads/" + uuid.NewString()},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(s, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
			assert.Equal(t, CodeMethodNotAllowed, decodeError(t, w).ErrorCode)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	w := serve(s, httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, w).ErrorCode)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *Config) {
		c.RateLimit = &ratelimit.Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			EndpointConfigs: ratelimit.DefaultEndpointConfigs(),
		}
	})

	for i := 0; i < 5; i++ {
		w := serve(s, multipartRequest(t, "/api/upload-cv", "file", "cv.pdf", pdfBytes()))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "20", w.Header().Get("X-RateLimit-Limit"))
	}

	w := serve(s, multipartRequest(t, "/api/upload-cv", "file", "cv.pdf", pdfBytes()))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	body := decodeError(t, w)
	assert.Equal(t, CodeRateLimited, body.ErrorCode)
	assert.EqualValues(t, 20, body.Details["limit"])
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	// Health checks stay available.
	w = serve(s, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_PreflightNotCounted(t *testing.T) {
	s := newTestServer(t, func(c *Config) {
		c.AllowOrigin = "http://localhost:3000"
		c.RateLimit = &ratelimit.Config{
			Enabled:       true,
			DefaultLimit:  1,
			DefaultWindow: time.Hour,
		}
	})

	for i := 0; i < 3; i++ {
		w := serve(s, httptest.NewRequest(http.MethodOptions, "/api/keywords", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := serve(s, httptest.NewRequest(http.MethodGet, "/api/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(s, httptest.NewRequest(http.MethodGet, "/api/other", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestExtractClientID(t *testing.T) {
	s := &Server{}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:4321"
	assert.Equal(t, "203.0.113.7", s.extractClientID(req))

	req.RemoteAddr = "not-an-addr"
	assert.Equal(t, "not-an-addr", s.extractClientID(req))
}
