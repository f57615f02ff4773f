package domain

import "errors"

// Sentinel errors shared across the service and repository layers.
// Handlers translate these into the HTTP error taxonomy; anything
// not in this list surfaces as a server error.
var (
	// ErrNotFound covers both a missing record and a record owned by
	// another user. The two cases must stay indistinguishable.
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicateEmail signals the email uniqueness constraint.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials is returned for any login failure without
	// revealing which check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidStatus marks an unknown application status value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidSortField marks a sort field outside the whitelist.
	ErrInvalidSortField = errors.New("invalid sort field")

	// ErrLockedOut signals too many consecutive failed logins.
	ErrLockedOut = errors.New("account temporarily locked")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// NewValidationError builds a field-level validation failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
