package shared

import "fmt"

// ErrorKind classifies domain errors so the transport layer can map them
// to status codes without inspecting message strings.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation_failed"
	KindNotFound          ErrorKind = "not_found"
	KindConflict          ErrorKind = "conflict"
	KindHasActiveBookings ErrorKind = "has_active_bookings"
	KindForbidden         ErrorKind = "forbidden"
	KindInvalidState      ErrorKind = "invalid_state"
)

// DomainError is the base type for all expected business errors.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return e.Message
}

// NewValidationError creates an error for invalid caller-supplied data.
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message}
}

// NewNotFoundError creates an error for a missing or foreign-owned entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewConflictError creates an error for a state conflict (e.g. optimistic
// locking failure or a date overlap detected at write time).
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: message}
}

// NewHasActiveBookingsError creates the error returned when a property
// deletion is blocked by bookings in an occupying status.
func NewHasActiveBookingsError(propertyID string) *DomainError {
	return &DomainError{
		Kind:    KindHasActiveBookings,
		Message: fmt.Sprintf("property %s has bookings in an active status", propertyID),
	}
}

// NewForbiddenError creates an error for an operation on an entity the
// caller does not own.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Kind: KindForbidden, Message: message}
}

// NewInvalidStateError creates an error for a disallowed status transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Kind:    KindInvalidState,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// KindOf returns the error kind if err is a DomainError, or empty otherwise.
func KindOf(err error) ErrorKind {
	if de, ok := err.(*DomainError); ok {
		return de.Kind
	}
	return ""
}
