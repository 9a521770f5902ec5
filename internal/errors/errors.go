package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// ErrRateLimitExceeded is answered when a client exceeds the request rate.
var ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")

// ErrValidation reports one invalid query parameter.
func ErrValidation(field, message string) *APIError {
	return NewValidationErrors([]ValidationError{{Field: field, Message: message}})
}

// NewValidationErrors reports every invalid query parameter at once.
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", errs)
}

// DataNotLoadedError reports that the dataset could not be loaded.
// hint is shown to the user as the remedy.
func DataNotLoadedError(hint string, err error) *APIError {
	details := map[string]string{"hint": hint}
	if err != nil {
		details["cause"] = err.Error()
	}
	return NewWithDetails(http.StatusServiceUnavailable, "DATA_NOT_LOADED", "Financial data is not available", details)
}

// UnknownCategoryError creates a not found error for a category label
func UnknownCategoryError(label string) *APIError {
	return NewWithDetails(http.StatusNotFound, "UNKNOWN_CATEGORY", fmt.Sprintf("category %q not found", label), label)
}

// UnknownViewError creates a not found error for a dashboard view id
func UnknownViewError(view string) *APIError {
	return NewWithDetails(http.StatusNotFound, "UNKNOWN_VIEW", fmt.Sprintf("view %q not found", view), view)
}

// UnsupportedFormatError creates a bad request error for an export format
func UnsupportedFormatError(format string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "UNSUPPORTED_FORMAT", fmt.Sprintf("export format %q is not supported", format), format)
}

// NothingToExportError is returned for a view with no rows for the selection.
func NothingToExportError(view string) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, "NOTHING_TO_EXPORT",
		fmt.Sprintf("view %q has no data for this selection", view), view)
}

// ExportError wraps a failed export
func ExportError(err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, "EXPORT_FAILED", "Report export failed", err.Error())
}
