// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors for surfacing and retry decisions.
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation_error"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeProcessing    ErrorType = "processing_error"
	ErrorTypeConfiguration ErrorType = "configuration_error" // missing credential; never retried
	ErrorTypeUpstream      ErrorType = "upstream_error"      // external service failure
	ErrorTypeTimeout       ErrorType = "timeout"
)

// AppError carries a type and a user-presentable message around a cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with a code derived from the type.
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

func NewProcessingError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeProcessing, message, originalError)
}

// NewConfigurationError marks a fail-fast misconfiguration, typically a
// missing API credential. Configuration errors are surfaced before any
// network call and are never retried.
func NewConfigurationError(message string) *AppError {
	return NewAppError(ErrorTypeConfiguration, message, nil)
}

func NewUpstreamError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeUpstream, message, originalError)
}

func NewTimeoutError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeTimeout, message, originalError)
}

func isType(err error, t ErrorType) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == t
	}
	return false
}

func IsValidationError(err error) bool    { return isType(err, ErrorTypeValidation) }
func IsNotFoundError(err error) bool      { return isType(err, ErrorTypeNotFound) }
func IsConfigurationError(err error) bool { return isType(err, ErrorTypeConfiguration) }
func IsUpstreamError(err error) bool      { return isType(err, ErrorTypeUpstream) }
func IsTimeoutError(err error) bool       { return isType(err, ErrorTypeTimeout) }

func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeProcessing:
		return "PROCESSING_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	case ErrorTypeUpstream:
		return "UPSTREAM_ERROR"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError wraps an existing error, preserving the AppError type if the
// chain already carries one.
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError,
			Code:    appError.Code,
		}
	}

	return NewAppError(errType, message, err)
}
