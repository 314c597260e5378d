// Package errors provides the API error envelope shared by all handlers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// APIError is the error body returned to clients.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// WithMessage returns a copy of the error with a custom message.
func (e *APIError) WithMessage(message string) *APIError {
	return &APIError{Code: e.Code, Message: message, StatusCode: e.StatusCode, Details: e.Details}
}

// WithDetails returns a copy of the error with additional details.
func (e *APIError) WithDetails(details any) *APIError {
	return &APIError{Code: e.Code, Message: e.Message, StatusCode: e.StatusCode, Details: details}
}

var (
	ErrUnauthorized = &APIError{
		Code:       "unauthenticated",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrForbidden = &APIError{
		Code:       "forbidden",
		Message:    "You don't have permission to perform this action",
		StatusCode: http.StatusForbidden,
	}

	ErrNotFound = &APIError{
		Code:       "not_found",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &APIError{
		Code:       "bad_request",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInsufficientCredit = &APIError{
		Code:       "insufficient_credit",
		Message:    "Insufficient credit",
		StatusCode: http.StatusPaymentRequired,
	}

	ErrNoProvider = &APIError{
		Code:       "no_provider",
		Message:    "No active LLM provider configured",
		StatusCode: http.StatusBadRequest,
	}

	ErrBadConfig = &APIError{
		Code:       "bad_config",
		Message:    "The active LLM provider is misconfigured",
		StatusCode: http.StatusBadRequest,
	}

	ErrGenerationFailed = &APIError{
		Code:       "generation_failed",
		Message:    "Slide content generation failed",
		StatusCode: http.StatusBadGateway,
	}

	ErrRenderFailed = &APIError{
		Code:       "render_failed",
		Message:    "Presentation rendering failed",
		StatusCode: http.StatusInternalServerError,
	}

	ErrConflict = &APIError{
		Code:       "conflict",
		Message:    "Resource already exists",
		StatusCode: http.StatusConflict,
	}

	ErrInternal = &APIError{
		Code:       "internal_error",
		Message:    "An internal error occurred",
		StatusCode: http.StatusInternalServerError,
	}
)

// NewValidationError creates a validation error for a specific field.
func NewValidationError(field, message string) *APIError {
	return &APIError{
		Code:       "validation_error",
		Message:    fmt.Sprintf("Validation failed: %s", message),
		StatusCode: http.StatusBadRequest,
		Details:    map[string]string{"field": field, "error": message},
	}
}

// NewValidationErrors creates a validation error with multiple field errors.
func NewValidationErrors(fields map[string]string) *APIError {
	return &APIError{
		Code:       "validation_error",
		Message:    "One or more fields failed validation",
		StatusCode: http.StatusBadRequest,
		Details:    fields,
	}
}

// NewNotFoundError creates a not found error for a specific resource type.
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:       "not_found",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

// AsAPIError unwraps err to an APIError, falling back to ErrInternal.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	return ErrInternal
}
