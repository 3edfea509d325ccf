package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by every service. Handlers map them with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrRefused            = errors.New("operation refused")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionExpired     = errors.New("session expired")
)

// ValidationError is a structured rejection raised before anything is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// RefusalError reports a guarded operation that was refused to keep an invariant.
// A matching "Error" history entry is always written alongside it.
type RefusalError struct {
	Entity string
	Reason string
}

func (e *RefusalError) Error() string {
	return fmt.Sprintf("refused: %s", e.Reason)
}

func (e *RefusalError) Unwrap() error { return ErrRefused }

func notFound(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}
