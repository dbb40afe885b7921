package services

import (
	"errors"

	"github.com/fitsync/routine-service/internal/validator"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// ErrNotFound covers both genuinely absent resources and resources the caller
	// does not own or is not assigned; the two are indistinguishable on purpose so
	// responses never confirm another user's data exists.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized means the request carries no usable identity (missing,
	// invalid or expired token, or bad credentials).
	ErrUnauthorized = errors.New("unauthorized access")

	// ErrForbidden means the identity is valid but the role is wrong for the route.
	ErrForbidden = errors.New("forbidden - insufficient permissions")

	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")
	ErrInternalError    = errors.New("internal server error")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from the validator package
type ValidationError = validator.ValidationError
type ValidationErrors = validator.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return validator.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden checks if error represents a role mismatch
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
