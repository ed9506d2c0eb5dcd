package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-tailor/internal/server"
	"github.com/jonathan/cv-tailor/internal/server/ratelimit"
	"github.com/jonathan/cv-tailor/internal/tailoring"
)

func newAPI(t *testing.T) *Client {
	t.Helper()
	s, err := server.New(server.Config{
		UploadDir:   t.TempDir(),
		MaxUploadMB: 1,
		RateLimit:   &ratelimit.Config{Enabled: false},
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL + "/")
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestNew_Defaults(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.Equal(t, DefaultUploadPath, c.UploadPath)
	assert.Equal(t, DefaultTimeout, c.HTTPClient.Timeout)

	assert.Equal(t, "http://example.com", New("http://example.com///").BaseURL)
}

func TestUploadCV(t *testing.T) {
	c := newAPI(t)
	path := writeFile(t, "Jane Doe CV.pdf", []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n"))

	result, err := c.UploadCV(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "CV 'Jane_Doe_CV.pdf' uploaded successfully", result.Message)
	assert.Equal(t, "Jane_Doe_CV.pdf", result.File.Filename)
	assert.Equal(t, "pdf", result.File.FileType)
	assert.NotEmpty(t, result.File.ID.String())

	readiness, err := c.CheckTailoring(context.Background(), tailoring.Request{
		UploadID:       result.File.ID.String(),
		JobDescription: "Go engineer",
	})
	require.NoError(t, err)
	assert.False(t, readiness.Ready)
	assert.Equal(t, tailoring.JobDescriptionReason(11), readiness.Reason)
}

func TestUploadCV_LegacyPath(t *testing.T) {
	c := newAPI(t)
	c.UploadPath = "/api/analyze_cv"
	path := writeFile(t, "cv.pdf", []byte("%PDF-1.7\n%%EOF\n"))

	_, err := c.UploadCV(context.Background(), path)
	require.NoError(t, err)
}

func TestUploadCV_APIError(t *testing.T) {
	c := newAPI(t)
	path := writeFile(t, "cv.txt", []byte("not a cv"))

	_, err := c.UploadCV(context.Background(), path)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid_file_type", apiErr.Code)
	assert.Contains(t, apiErr.Details, "supported_formats")
	assert.Contains(t, apiErr.Error(), "invalid_file_type (HTTP 400)")
}

func TestUploadCV_MissingLocalFile(t *testing.T) {
	c := New("http://127.0.0.1:1")
	_, err := c.UploadCV(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestKeywords(t *testing.T) {
	c := newAPI(t)

	result, err := c.Keywords(context.Background(), "cat dog cat bird dog cat", 2, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog"}, result.Keywords)
	require.Len(t, result.Counts, 2)
	assert.Equal(t, 3, result.Counts[0].Count)

	result, err = c.Keywords(context.Background(), "", 0, false)
	require.NoError(t, err)
	assert.Empty(t, result.Keywords)
}

func TestHealth(t *testing.T) {
	c := newAPI(t)
	assert.NoError(t, c.Health(context.Background()))
}

func TestContractViolations(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantAPI bool
	}{
		{"success missing data", http.StatusOK, `{"success":true,"message":"ok"}`, false},
		{"wrong file type in data", http.StatusOK, `{"success":true,"message":"ok","data":{"filename":"a.exe","file_size_mb":1,"file_type":"exe"}}`, false},
		{"plain text error", http.StatusBadGateway, "bad gateway", false},
		{"error envelope", http.StatusRequestEntityTooLarge, `{"success":false,"error_code":"file_too_large","message":"too big","details":{"max_size_mb":10}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			path := writeFile(t, "cv.pdf", []byte("%PDF-1.4\n"))
			_, err := New(ts.URL).UploadCV(context.Background(), path)
			require.Error(t, err)

			var apiErr *APIError
			var respErr *ResponseError
			if tt.wantAPI {
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.status, apiErr.StatusCode)
				assert.Equal(t, "file_too_large", apiErr.Code)
				assert.EqualValues(t, 10, apiErr.Details["max_size_mb"])
			} else {
				require.ErrorAs(t, err, &respErr)
				assert.Equal(t, tt.status, respErr.StatusCode)
				assert.Equal(t, tt.body, respErr.Body)
			}
		})
	}
}
