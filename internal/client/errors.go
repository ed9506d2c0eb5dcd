package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/cv-tailor/internal/schemas"
	bundled "github.com/jonathan/cv-tailor/schemas"
)

// APIError is an error envelope returned by the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

// ResponseError is a response that does not follow the API contract.
type ResponseError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("unexpected response (HTTP %d): %v", e.StatusCode, e.Cause)
}

func (e *ResponseError) Unwrap() error {
	return e.Cause
}

// decodeAPIError turns a non-200 body into *APIError, or *ResponseError when
// the body is not a valid error envelope.
func decodeAPIError(status int, data []byte) error {
	if err := schemas.ValidateNamed(bundled.ErrorResponse, data); err != nil {
		return &ResponseError{
			StatusCode: status,
			Body:       string(data),
			Cause:      fmt.Errorf("%s: %w", http.StatusText(status), err),
		}
	}

	var body struct {
		ErrorCode string         `json:"error_code"`
		Message   string         `json:"message"`
		Details   map[string]any `json:"details"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return &ResponseError{StatusCode: status, Body: string(data), Cause: err}
	}
	return &APIError{
		StatusCode: status,
		Code:       body.ErrorCode,
		Message:    body.Message,
		Details:    body.Details,
	}
}
