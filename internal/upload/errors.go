package upload

import (
	"errors"
	"net/http"
)

// Code is the machine-readable reason an upload was rejected.
type Code string

const (
	CodeMissingFile     Code = "missing_file"
	CodeInvalidFileType Code = "invalid_file_type"
	CodeFileTooLarge    Code = "file_too_large"
	CodeEmptyFile       Code = "empty_file"
	CodeCorruptedFile   Code = "corrupted_file"
	CodeServerError     Code = "server_error"
)

// Error is a rejected upload. Details carries extra context for the client,
// such as the size limit or the supported formats.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func newError(code Code, message string, details map[string]any) *Error {
	if details == nil {
		details = map[string]any{}
	}
	return &Error{Code: code, Message: message, Details: details}
}

// HTTPStatus returns the response status for err. Errors that are not upload
// errors map to 500.
func HTTPStatus(err error) int {
	var upErr *Error
	if !errors.As(err, &upErr) {
		return http.StatusInternalServerError
	}

	switch upErr.Code {
	case CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeCorruptedFile:
		return http.StatusUnprocessableEntity
	case CodeServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
