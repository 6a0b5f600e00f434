// Package apperrors defines the error kinds shared by services and handlers.
package apperrors

import "errors"

// Error kinds. Services return them directly, wrapped with fmt.Errorf, or
// carried by *Error when the client needs a specific message.
var (
	ErrValidation               = errors.New("validation failed")
	ErrDuplicateEnrollment      = errors.New("already enrolled in this course")
	ErrNotEnrolled              = errors.New("you are not enrolled in this course")
	ErrQuizUnavailable          = errors.New("quiz is not available for this course")
	ErrQuizSubmissionIncomplete = errors.New("all quiz questions must be answered")
	ErrQuizNotPending           = errors.New("no quiz is pending for this course")
	ErrUnauthorized             = errors.New("authentication required")
	ErrForbidden                = errors.New("insufficient permissions")
	ErrNotFound                 = errors.New("not found")
	ErrCertificateRefused       = errors.New("certificate requirements not met")
)

// Error is an error of a known kind with a client-facing message.
type Error struct {
	Kind    error
	Message string
	// Reason is a machine-readable detail, set for certificate refusals.
	Reason string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New creates an error of the given kind with a client-facing message
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation creates a validation error with the given message
func Validation(message string) *Error {
	return New(ErrValidation, message)
}

// NotFound creates a not found error for the named entity
func NotFound(entity string) *Error {
	return New(ErrNotFound, entity+" not found")
}

// Forbidden creates a forbidden error with the given message
func Forbidden(message string) *Error {
	return New(ErrForbidden, message)
}

// Refusal creates a certificate refusal carrying a machine-readable reason
func Refusal(reason, message string) *Error {
	return &Error{Kind: ErrCertificateRefused, Message: message, Reason: reason}
}
