package service

import "errors"

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	// ErrNotFound covers both missing records and records owned by someone else.
	ErrNotFound        = errors.New("not found")
	ErrQuotaExceeded   = errors.New("daily generation limit reached")
	ErrFeatureDisabled = errors.New("feature not configured on this server")
)
