// Package scheduler implements the reservation scheduling and
// conflict-resolution engine: it decides whether a book, assign, modify or
// cancel request is legal given every other reservation, and applies the
// state change atomically through an injected Store.  Handlers translate
// the sentinel errors below into HTTP responses.
package scheduler

import "errors"

var (
	// ErrInvalidTime is returned when a slot has already started or does
	// not respect the configured minimum lead time.
	ErrInvalidTime = errors.New("invalid reservation time")

	// ErrConflict is returned when seat or intern exclusivity would be
	// violated.  The caller may retry with different parameters; the
	// engine never re-slots automatically.
	ErrConflict = errors.New("reservation conflict")

	// ErrForbidden is returned when the caller's role or ownership does
	// not permit the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when the referenced reservation does not
	// exist or has already been cancelled.
	ErrNotFound = errors.New("reservation not found")

	// ErrSeatNotFound is returned when the referenced seat does not exist.
	ErrSeatNotFound = errors.New("seat not found")

	// ErrUserNotFound is returned when an assignment targets an unknown
	// intern.
	ErrUserNotFound = errors.New("user not found")

	// ErrStoreUnavailable wraps transport failures of the underlying
	// store.  It is deliberately distinct from ErrConflict: a broken
	// connection must never masquerade as a booking collision.
	ErrStoreUnavailable = errors.New("reservation store unavailable")
)
