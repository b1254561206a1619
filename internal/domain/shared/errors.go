// Package shared contains common domain types and errors used across all
// domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidInput    = errors.New("invalid input")

	// Write-conflict errors
	ErrConflict = errors.New("uniqueness conflict")

	// Referential-integrity errors
	ErrReferential = errors.New("delete blocked by existing references")

	// Persistence errors. Store errors are never retried within the same
	// logical operation; the operation must be treated as not applied.
	ErrStore = errors.New("store error")

	// Authentication errors
	ErrUnauthorized = errors.New("unauthorized")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "student", "subject", "mark"
	Op      string // Operation that failed, e.g., "Create", "Update"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Student domain errors
var (
	ErrStudentNotFound   = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrRollNumberTaken   = NewDomainError("student", "Save", ErrConflict, "roll number already in use")
	ErrStudentNameEmpty  = NewDomainError("student", "Validate", ErrEmptyValue, "student name is required")
	ErrRollNumberEmpty   = NewDomainError("student", "Validate", ErrEmptyValue, "roll number is required")
	ErrStudentClassEmpty = NewDomainError("student", "Validate", ErrEmptyValue, "class is required")
)

// Subject domain errors
var (
	ErrSubjectNotFound   = NewDomainError("subject", "Find", ErrNotFound, "subject not found")
	ErrSubjectNameTaken  = NewDomainError("subject", "Save", ErrConflict, "subject name already in use")
	ErrSubjectNameEmpty  = NewDomainError("subject", "Validate", ErrEmptyValue, "subject name is required")
	ErrInvalidMaxMarks   = NewDomainError("subject", "Validate", ErrValueOutOfRange, "maximum marks must be positive")
	ErrSubjectReferenced = NewDomainError("subject", "Delete", ErrReferential, "subject has marks recorded against it")
)

// Mark domain errors
var (
	ErrMarkNotFound      = NewDomainError("mark", "Find", ErrNotFound, "mark not found")
	ErrDuplicateMark     = NewDomainError("mark", "Save", ErrConflict, "a mark for this student and subject already exists")
	ErrMarksOutOfRange   = NewDomainError("mark", "Validate", ErrValueOutOfRange, "marks obtained must be between 0 and 100")
	ErrInvalidMarkTarget = NewDomainError("mark", "Validate", ErrInvalidInput, "mark must reference a student and a subject")
)

// User domain errors
var (
	ErrUserNotFound       = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrUsernameTaken      = NewDomainError("user", "Create", ErrConflict, "username already in use")
	ErrInvalidCredentials = NewDomainError("user", "Authenticate", ErrUnauthorized, "invalid username or password")
	ErrUnknownRole        = NewDomainError("user", "Authenticate", ErrInvalidInput, "unknown user role")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidInput)
}

// IsConflict checks if the error is a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsReferential checks if the error is a referential-integrity rejection.
func IsReferential(err error) bool {
	return errors.Is(err, ErrReferential)
}

// IsStore checks if the error is an unexpected persistence failure.
func IsStore(err error) bool {
	return errors.Is(err, ErrStore)
}
