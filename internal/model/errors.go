package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a missing or malformed field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidEnum marks a value outside a closed enumeration.
	ErrInvalidEnum = errors.New("invalid enum value")
)

// ValidationError describes a single rejected field. Kind is ErrInvalidInput
// or ErrInvalidEnum so callers can use errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Kind    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// InvalidInput builds a ValidationError of kind ErrInvalidInput.
func InvalidInput(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message, Kind: ErrInvalidInput}
}
