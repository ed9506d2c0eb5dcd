package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/cv-tailor/internal/upload"
)

// Error codes returned in the error envelope besides the upload codes.
const (
	CodeInvalidRequest   = "invalid_request"
	CodeValidation       = "validation_error"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeRateLimited      = "rate_limit_exceeded"
	CodeServerError      = "server_error"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Tag     string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrInvalidRequest indicates a body that could not be decoded.
type ErrInvalidRequest struct {
	Cause error
}

func (e *ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid request body: %v", e.Cause)
}

func (e *ErrInvalidRequest) Unwrap() error {
	return e.Cause
}

// ErrNotFound indicates a missing resource or route.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrMethodNotAllowed indicates a known path requested with the wrong method.
type ErrMethodNotAllowed struct {
	Method string
	Path   string
}

func (e *ErrMethodNotAllowed) Error() string {
	return fmt.Sprintf("method %s not allowed on %s", e.Method, e.Path)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		upErr       *upload.Error
		validErr    *ErrValidation
		invalidErr  *ErrInvalidRequest
		notFoundErr *ErrNotFound
		methodErr   *ErrMethodNotAllowed
	)
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &upErr):
		return upload.HTTPStatus(upErr)
	case errors.As(err, &validErr), errors.As(err, &invalidErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &methodErr):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns the error_code reported to clients for err.
func ErrorCode(err error) string {
	var (
		upErr       *upload.Error
		validErr    *ErrValidation
		invalidErr  *ErrInvalidRequest
		notFoundErr *ErrNotFound
		methodErr   *ErrMethodNotAllowed
	)
	switch {
	case errors.As(err, &upErr):
		return string(upErr.Code)
	case errors.As(err, &validErr):
		return CodeValidation
	case errors.As(err, &invalidErr):
		return CodeInvalidRequest
	case errors.As(err, &notFoundErr):
		return CodeNotFound
	case errors.As(err, &methodErr):
		return CodeMethodNotAllowed
	default:
		return CodeServerError
	}
}

// ErrorMessage returns the human-readable message for err. Internal errors
// get a generic message so no server detail leaks to clients.
func ErrorMessage(err error) string {
	var upErr *upload.Error
	if errors.As(err, &upErr) {
		return upErr.Message
	}
	if HTTPStatus(err) >= http.StatusInternalServerError {
		return "An unexpected error occurred"
	}
	return err.Error()
}

// ErrorDetails returns structured context for err, or nil.
func ErrorDetails(err error) map[string]any {
	var (
		upErr    *upload.Error
		validErr *ErrValidation
	)
	switch {
	case errors.As(err, &upErr):
		return upErr.Details
	case errors.As(err, &validErr):
		return map[string]any{"field": validErr.Field, "tag": validErr.Tag}
	default:
		return nil
	}
}

// fromValidator converts go-playground validation errors into *ErrValidation,
// reporting the first failing field. Other errors pass through.
func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	msg := fmt.Sprintf("failed '%s' validation", fe.Tag())
	if fe.Param() != "" {
		msg = fmt.Sprintf("failed '%s=%s' validation", fe.Tag(), fe.Param())
	}
	return &ErrValidation{Field: fe.Field(), Tag: fe.Tag(), Message: msg}
}
