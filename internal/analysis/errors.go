package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the kind of a session-level failure
type ErrorType string

const (
	// ErrTypeValidation indicates the source was rejected before any request
	ErrTypeValidation ErrorType = "validation"

	// ErrTypeService indicates a transport failure or non-success response
	ErrTypeService ErrorType = "service"

	// ErrTypeSchema indicates a response that matches no known payload shape
	ErrTypeSchema ErrorType = "schema"
)

// ErrRequestInFlight is returned when a submission is attempted while another is unresolved
var ErrRequestInFlight = errors.New("an analysis request is already in progress")

// ValidationError represents a locally rejected submission
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ServiceError represents a failed exchange with the analysis service
type ServiceError struct {
	// Message provides human-readable error description
	Message string `json:"message"`

	// Endpoint is the service address that was called
	Endpoint string `json:"endpoint,omitempty"`

	// StatusCode for non-success HTTP responses, zero for transport failures
	StatusCode int `json:"status_code,omitempty"`

	// RequestID correlates the failure with service-side logs
	RequestID string `json:"request_id,omitempty"`

	// Underlying error that caused this error
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	parts := []string{fmt.Sprintf("type=%s", ErrTypeService)}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// SchemaError represents a payload that could not be interpreted
type SchemaError struct {
	// Field names the first missing or ill-typed field, e.g. "tokens[2].value"
	Field string `json:"field"`

	// Reason describes what was expected
	Reason string `json:"reason"`
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("unable to interpret analysis result: field '%s' %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewServiceError creates a service error
func NewServiceError(message, endpoint string, statusCode int) *ServiceError {
	return &ServiceError{
		Message:    message,
		Endpoint:   endpoint,
		StatusCode: statusCode,
	}
}

// NewServiceErrorWithCause creates a service error with an underlying cause
func NewServiceErrorWithCause(message, endpoint string, cause error) *ServiceError {
	return &ServiceError{
		Message:  message,
		Endpoint: endpoint,
		Cause:    cause,
	}
}

// NewSchemaError creates a schema error
func NewSchemaError(field, reason string) *SchemaError {
	return &SchemaError{
		Field:  field,
		Reason: reason,
	}
}

// missingField creates a schema error for an absent required field
func missingField(field string) *SchemaError {
	return NewSchemaError(field, "is missing")
}

// invalidField creates a schema error for a field of the wrong type
func invalidField(field, expected string) *SchemaError {
	return NewSchemaError(field, "must be "+expected)
}

// TypeOf classifies an error into one of the session error kinds
func TypeOf(err error) (ErrorType, bool) {
	switch {
	case IsValidationError(err):
		return ErrTypeValidation, true
	case IsServiceError(err):
		return ErrTypeService, true
	case IsSchemaError(err):
		return ErrTypeSchema, true
	default:
		return "", false
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsServiceError checks if an error is a service error
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// IsSchemaError checks if an error is a schema error
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
