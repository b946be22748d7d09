// Package common defines shared constants, the mood enumeration and sentinel
// errors used across client and server layers of moodkeeper. Callers should
// use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Input errors.
	ErrValidation = errors.New("validation error")

	// Auth errors (missing/invalid/expired token, bad credentials).
	ErrUnauthorized = errors.New("unauthorized")

	// Repository-level errors. Rows owned by another user are reported
	// as not found as well.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// Client-side transport errors (unreachable host, timeout).
	ErrNetwork = errors.New("network error")

	ErrRateLimited = errors.New("rate limited")

	// Local persistence failure. Fatal to the calling operation.
	ErrStorage = errors.New("storage error")

	ErrInternal = errors.New("internal error")

	// Token lifecycle errors. Both match ErrUnauthorized.
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrUnauthorized)
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrUnauthorized)
)

// ValidationError describes a single rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PublicError pairs a sentinel kind with a message that is safe to return to
// API clients. errors.Is matches Kind.
type PublicError struct {
	Kind    error
	Message string
}

func NewPublicError(kind error, message string) *PublicError {
	return &PublicError{Kind: kind, Message: message}
}

func (e *PublicError) Error() string {
	return e.Message
}

func (e *PublicError) Unwrap() error {
	return e.Kind
}
