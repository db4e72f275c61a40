package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for the failure taxonomy. TransportError means the remote
// call could not complete after the client's retry budget was exhausted;
// ValidationError covers schema and extracted-data shape violations;
// IOError covers filesystem read/write failures; UnsupportedFormatError is
// raised for file extensions the service does not accept.
var (
	ErrTransport         = errors.New("transport error")
	ErrValidation        = errors.New("validation failed")
	ErrIO                = errors.New("io error")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func TransportError(message string, cause error) error {
	return NewAppError("TRANSPORT_ERROR", message, fmt.Errorf("%w: %w", ErrTransport, cause))
}

func ValidationError(message string, cause error) error {
	if cause == nil {
		cause = ErrValidation
	} else {
		cause = fmt.Errorf("%w: %w", ErrValidation, cause)
	}
	return NewAppError("VALIDATION_ERROR", message, cause)
}

func IOError(message string, cause error) error {
	return NewAppError("IO_ERROR", message, fmt.Errorf("%w: %w", ErrIO, cause))
}

func UnsupportedFormatError(ext string) error {
	return NewAppError("UNSUPPORTED_FORMAT", fmt.Sprintf("extension %q is not a supported document format", ext), ErrUnsupportedFormat)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
