package errors

import (
	"fmt"
)

// ErrorType classifies failures below the HTTP layer. The error handler
// maps each type to a status code.
type ErrorType string

const (
	// ErrTypeNetwork is a failed call to a remote data source (Sheets API).
	ErrTypeNetwork ErrorType = "NETWORK"
	// ErrTypeParsing is a workbook whose header or cells cannot be read.
	ErrTypeParsing ErrorType = "PARSING"
	// ErrTypeStorage is a local file that cannot be opened or written.
	ErrTypeStorage ErrorType = "STORAGE"
	// ErrTypeConfig is a data source configured inconsistently.
	ErrTypeConfig ErrorType = "CONFIG"
	// ErrTypeRender is a chart or report that failed to render.
	ErrTypeRender ErrorType = "RENDER"
)

// AppError carries a type, a message and optional key/value context for logs.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithContext records key=value on the error and returns it.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates an error of errType. cause may be nil.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

func NewRenderError(message string, cause error) *AppError {
	return NewAppError(ErrTypeRender, message, cause)
}
