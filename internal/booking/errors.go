package booking

import (
	"errors"
	"fmt"
)

// Sentinel errors for the five failure kinds of the booking core.  Typed
// errors below unwrap to one of these so callers can use errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("lane not available")
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("reservation not found")
)

// ValidationError reports the first request field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError is returned when the requested interval overlaps an
// existing reservation on the same date and lane.
type ConflictError struct {
	Date      string
	Lane      string
	StartTime string
	EndTime   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is already booked on %s between %s and %s", e.Lane, e.Date, e.StartTime, e.EndTime)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }
