package scheduler

import (
	"context"
	"time"

	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/model"
)

// Store is the durable source of truth the engine runs against.  The MySQL
// implementation lives in internal/repository; tests supply an in-memory
// fake.  Every mutating engine operation executes inside WithTx so the
// conflict query and the subsequent write commit (or roll back) as one
// unit.  On top of that, implementations must guarantee at commit time
// that no two non-cancelled reservations share a (seat, date, hour) key —
// CreateReservation returns ErrConflict when a concurrent writer got
// there first, even if the earlier SeatTaken check said the slot was free.
type Store interface {
	// WithTx runs fn within a transaction.  The transaction is carried in
	// the context passed to fn; nested calls join the outer transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// GetSeat returns the seat or ErrSeatNotFound.
	GetSeat(ctx context.Context, seatID uint64) (*model.Seat, error)

	// UserExists reports whether a user with the given id exists.
	UserExists(ctx context.Context, userID uint64) (bool, error)

	// GetReservation returns the reservation (any status) or ErrNotFound.
	GetReservation(ctx context.Context, id uint64) (*model.Reservation, error)

	// SeatTaken reports whether a non-cancelled reservation other than
	// excludeID occupies (seatID, slot).  excludeID 0 excludes nothing.
	SeatTaken(ctx context.Context, seatID uint64, slot model.TimeSlot, excludeID uint64) (bool, error)

	// UserTaken reports whether the user holds a non-cancelled
	// reservation other than excludeID at the exact slot, any seat.
	UserTaken(ctx context.Context, userID uint64, slot model.TimeSlot, excludeID uint64) (bool, error)

	// UserTakenOnDate reports whether the user holds any non-cancelled
	// reservation on the given calendar date, regardless of hour.
	UserTakenOnDate(ctx context.Context, userID uint64, date time.Time) (bool, error)

	// UserAssignedOnDate reports whether the user holds an assigned
	// (admin-placed) reservation on the given calendar date.  Assigned
	// reservations block the whole day, not just their hour.
	UserAssignedOnDate(ctx context.Context, userID uint64, date time.Time) (bool, error)

	// CreateReservation inserts r and populates its ID.  Returns
	// ErrConflict when the commit-time occupancy constraint fires.
	CreateReservation(ctx context.Context, r *model.Reservation) error

	// RewriteReservation updates seat and slot of a non-cancelled
	// reservation in place.  Returns ErrNotFound when the row is missing
	// or already cancelled, so a modify racing a cancel cannot revive it.
	RewriteReservation(ctx context.Context, r *model.Reservation) error

	// CancelReservation transitions a non-cancelled reservation to
	// cancelled.  Returns ErrNotFound when the row is missing or already
	// cancelled.
	CancelReservation(ctx context.Context, id uint64) error

	// ListByUser returns the user's reservations, newest slot first.
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)

	// ListAll returns every reservation, newest slot first.
	ListAll(ctx context.Context) ([]model.Reservation, error)

	// ListBySlot returns all reservations (any status) at the slot.
	ListBySlot(ctx context.Context, slot model.TimeSlot) ([]model.Reservation, error)

	// ListSeats returns the full seat inventory ordered by number.
	ListSeats(ctx context.Context) ([]model.Seat, error)
}
