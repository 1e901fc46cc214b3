package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrGroupNotFound indicates that no group has the requested code or id.
	ErrGroupNotFound = errors.New("group not found")
	// ErrProfileNotFound indicates that the username or id is unknown in the group.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrLogNotFound indicates that no log exists for the requested day.
	ErrLogNotFound = errors.New("log not found")
	// ErrGroupCodeTaken is returned by the store on an invite-code collision.
	ErrGroupCodeTaken = errors.New("group code already in use")
	// ErrUsernameTaken is returned when the username already exists in the group.
	ErrUsernameTaken = errors.New("username already taken in this group")
	// ErrMalformedRecord is returned when a store row or notification has the wrong shape.
	ErrMalformedRecord = errors.New("malformed record")
)

// ValidationError reports user input that was rejected before any store call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Malformed wraps ErrMalformedRecord with detail.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...))
}
