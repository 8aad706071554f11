package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeUnsupportedExtension ErrorType = "UNSUPPORTED_EXTENSION"
	ErrTypeUnreadableDocument   ErrorType = "UNREADABLE_DOCUMENT"
	ErrTypeFormatMismatch       ErrorType = "FORMAT_MISMATCH"
	ErrTypeAppendixNotFound     ErrorType = "APPENDIX_NOT_FOUND"
	ErrTypeEmptyResultSet       ErrorType = "EMPTY_RESULT_SET"
	ErrTypeInsufficientColumns  ErrorType = "INSUFFICIENT_COLUMNS"
	ErrTypeValidation           ErrorType = "VALIDATION"
	ErrTypeConfig               ErrorType = "CONFIG"
	ErrTypeStorage              ErrorType = "STORAGE"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or "" if none
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err's chain contains an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}

// Helper functions for common error types

// NewUnsupportedExtensionError reports a file whose extension is not a known document kind
func NewUnsupportedExtensionError(path string) *AppError {
	return NewAppError(ErrTypeUnsupportedExtension, "unsupported file extension", nil).
		WithContext("path", path)
}

// NewUnreadableDocumentError reports an I/O or structural failure while reading a document
func NewUnreadableDocumentError(path string, cause error) *AppError {
	return NewAppError(ErrTypeUnreadableDocument, "document could not be read", cause).
		WithContext("path", path)
}

// NewFormatMismatchError reports a document whose declared format is not the expected one
func NewFormatMismatchError(expected, found string) *AppError {
	return NewAppError(ErrTypeFormatMismatch,
		fmt.Sprintf("expected format %q, found %q", expected, found), nil).
		WithContext("expected", expected).
		WithContext("found", found)
}

// NewAppendixNotFoundError reports a secondary table that could not be located
func NewAppendixNotFoundError(identifier string) *AppError {
	return NewAppError(ErrTypeAppendixNotFound,
		fmt.Sprintf("appendix table %q not found", identifier), nil).
		WithContext("identifier", identifier)
}

// NewEmptyResultSetError reports a run in which no document was accepted
func NewEmptyResultSetError() *AppError {
	return NewAppError(ErrTypeEmptyResultSet, "no document produced primary records", nil)
}

// NewInsufficientColumnsError reports a table too narrow for repositioning
func NewInsufficientColumnsError(got, want int) *AppError {
	return NewAppError(ErrTypeInsufficientColumns,
		fmt.Sprintf("table has %d columns, need at least %d", got, want), nil)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}
