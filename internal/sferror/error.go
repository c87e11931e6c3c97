package sferror

import (
	"net/http"

	"github.com/pkg/errors"
)

type (
	// An SFError represents the error format that can be rendered by the server.
	SFError struct {
		HTTPCode   int `json:"-"`
		FieldError err `json:"error"`
	}

	err struct {
		Tag     string `json:"tag,omitempty"`
		Message string `json:"message"`
		Details any    `json:"details,omitempty"`
	}
)

// StatusCode returns the HTTP status code.
func StatusCode(e error) int {
	if sferr, ok := errors.Cause(e).(*SFError); ok {
		return sferr.HTTPCode
	}
	return http.StatusInternalServerError
}

// New returns a new SFError with the given message.
func New(message string) *SFError {
	return &SFError{FieldError: err{Message: message}}
}

// NewWithTagCode returns a new SFError with the given code, tag and message.
func NewWithTagCode(code int, tag, message string) *SFError {
	return &SFError{HTTPCode: code, FieldError: err{Tag: tag, Message: message}}
}

// NotFound returns a 404 error.
// It is also used when a resource exists but belongs to someone else.
func NotFound(message string) *SFError {
	return NewWithTagCode(http.StatusNotFound, "not-found", message)
}

// BadRequest returns a 400 error.
func BadRequest(message string) *SFError {
	return NewWithTagCode(http.StatusBadRequest, "invalid-parameters", message)
}

// Unauthorized returns a 401 error.
func Unauthorized(message string) *SFError {
	return NewWithTagCode(http.StatusUnauthorized, "invalid-auth", message)
}

// WithDetails attaches extra rendered information to the error.
func (e *SFError) WithDetails(details any) *SFError {
	e.FieldError.Details = details
	return e
}

// Error implements error interface.
func (e *SFError) Error() string {
	return e.FieldError.Message
}
