package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/model"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/scheduler"
)

// ReservationStore is the MySQL implementation of scheduler.Store.
//
// Conflict safety relies on two layers.  The occupancy column on the
// reservations table is a generated column that is 1 for every
// non-cancelled row and NULL for cancelled ones; together with the
// unique index on (seat_id, slot_date, slot_hour, occupancy) it makes
// the database reject a second occupying reservation for a slot even
// when two transactions passed the SeatTaken check concurrently.  The
// losing insert surfaces as scheduler.ErrConflict.  Cancel and rewrite
// are guarded UPDATEs keyed on status <> 'cancelled', so a transition
// applies exactly once regardless of interleaving.
type ReservationStore struct {
	db *sql.DB
}

// NewReservationStore binds a store to the given database handle.
func NewReservationStore(db *sql.DB) *ReservationStore { return &ReservationStore{db: db} }

type txKey struct{}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q returns the transaction carried in ctx, or the bare handle when the
// call runs outside WithTx.
func (s *ReservationStore) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// WithTx opens a transaction, stores it in the context passed to fn and
// commits when fn returns nil.  A nested call joins the outer
// transaction instead of opening a second one.
func (s *ReservationStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		if isDuplicateKey(err) {
			return scheduler.ErrConflict
		}
		return storeErr(err)
	}
	committed = true
	return nil
}

// storeErr wraps infrastructure failures so callers can distinguish a
// broken database from a domain outcome.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", scheduler.ErrStoreUnavailable, err)
}

const reservationColumns = `id, user_id, seat_id, slot_date, slot_hour, status, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var (
		r    model.Reservation
		date time.Time
		hour int
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.SeatID, &date, &hour, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	slot, err := model.NewTimeSlot(date, hour)
	if err != nil {
		return nil, err
	}
	r.Slot = slot
	return &r, nil
}

// GetSeat returns the seat or scheduler.ErrSeatNotFound.
func (s *ReservationStore) GetSeat(ctx context.Context, seatID uint64) (*model.Seat, error) {
	const q = `SELECT id, seat_number, location, status, created_at, updated_at FROM seats WHERE id = ?`
	var seat model.Seat
	err := s.q(ctx).QueryRowContext(ctx, q, seatID).
		Scan(&seat.ID, &seat.Number, &seat.Location, &seat.Status, &seat.CreatedAt, &seat.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scheduler.ErrSeatNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &seat, nil
}

// UserExists reports whether an active intern account with the id exists.
func (s *ReservationStore) UserExists(ctx context.Context, userID uint64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM users WHERE id = ? AND is_active = 1)`
	var exists bool
	if err := s.q(ctx).QueryRowContext(ctx, q, userID).Scan(&exists); err != nil {
		return false, storeErr(err)
	}
	return exists, nil
}

// GetReservation returns the reservation regardless of status, or
// scheduler.ErrNotFound.
func (s *ReservationStore) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	r, err := scanReservation(s.q(ctx).QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scheduler.ErrNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return r, nil
}

// SeatTaken reports whether a non-cancelled reservation other than
// excludeID occupies the seat at the slot.
func (s *ReservationStore) SeatTaken(ctx context.Context, seatID uint64, slot model.TimeSlot, excludeID uint64) (bool, error) {
	const q = `SELECT EXISTS(
	             SELECT 1 FROM reservations
	             WHERE seat_id = ? AND slot_date = ? AND slot_hour = ?
	               AND status <> 'cancelled' AND id <> ?)`
	var taken bool
	if err := s.q(ctx).QueryRowContext(ctx, q, seatID, slot.DateString(), slot.Hour, excludeID).Scan(&taken); err != nil {
		return false, storeErr(err)
	}
	return taken, nil
}

// UserTaken reports whether the user holds a non-cancelled reservation at
// the exact slot on any seat, other than excludeID.
func (s *ReservationStore) UserTaken(ctx context.Context, userID uint64, slot model.TimeSlot, excludeID uint64) (bool, error) {
	const q = `SELECT EXISTS(
	             SELECT 1 FROM reservations
	             WHERE user_id = ? AND slot_date = ? AND slot_hour = ?
	               AND status <> 'cancelled' AND id <> ?)`
	var taken bool
	if err := s.q(ctx).QueryRowContext(ctx, q, userID, slot.DateString(), slot.Hour, excludeID).Scan(&taken); err != nil {
		return false, storeErr(err)
	}
	return taken, nil
}

// UserTakenOnDate reports whether the user holds any non-cancelled
// reservation on the calendar date.
func (s *ReservationStore) UserTakenOnDate(ctx context.Context, userID uint64, date time.Time) (bool, error) {
	const q = `SELECT EXISTS(
	             SELECT 1 FROM reservations
	             WHERE user_id = ? AND slot_date = ? AND status <> 'cancelled')`
	var taken bool
	if err := s.q(ctx).QueryRowContext(ctx, q, userID, date.UTC().Format(model.DateLayout)).Scan(&taken); err != nil {
		return false, storeErr(err)
	}
	return taken, nil
}

// UserAssignedOnDate reports whether the user holds an admin-assigned
// reservation on the calendar date.
func (s *ReservationStore) UserAssignedOnDate(ctx context.Context, userID uint64, date time.Time) (bool, error) {
	const q = `SELECT EXISTS(
	             SELECT 1 FROM reservations
	             WHERE user_id = ? AND slot_date = ? AND status = 'assigned')`
	var assigned bool
	if err := s.q(ctx).QueryRowContext(ctx, q, userID, date.UTC().Format(model.DateLayout)).Scan(&assigned); err != nil {
		return false, storeErr(err)
	}
	return assigned, nil
}

// CreateReservation inserts r and populates its ID and timestamps.  A
// duplicate-key failure from the occupancy index means a concurrent
// writer claimed the slot first and maps to scheduler.ErrConflict.
func (s *ReservationStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, seat_id, slot_date, slot_hour, status)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := s.q(ctx).ExecContext(ctx, q, r.UserID, r.SeatID, r.Slot.DateString(), r.Slot.Hour, r.Status)
	if err != nil {
		if isDuplicateKey(err) {
			return scheduler.ErrConflict
		}
		return storeErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storeErr(err)
	}
	r.ID = uint64(id)
	sel := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	full, err := scanReservation(s.q(ctx).QueryRowContext(ctx, sel, r.ID))
	if err != nil {
		return storeErr(err)
	}
	*r = *full
	return nil
}

// RewriteReservation moves a non-cancelled reservation to a new seat and
// slot.  Zero affected rows means the row is gone or already cancelled.
func (s *ReservationStore) RewriteReservation(ctx context.Context, r *model.Reservation) error {
	const q = `UPDATE reservations
	           SET seat_id = ?, slot_date = ?, slot_hour = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND status <> 'cancelled'`
	res, err := s.q(ctx).ExecContext(ctx, q, r.SeatID, r.Slot.DateString(), r.Slot.Hour, r.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return scheduler.ErrConflict
		}
		return storeErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return scheduler.ErrNotFound
	}
	return nil
}

// CancelReservation transitions a non-cancelled reservation to
// cancelled.  The guarded UPDATE makes a second cancel a no-op that
// reports scheduler.ErrNotFound.
func (s *ReservationStore) CancelReservation(ctx context.Context, id uint64) error {
	const q = `UPDATE reservations
	           SET status = 'cancelled', updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND status <> 'cancelled'`
	res, err := s.q(ctx).ExecContext(ctx, q, id)
	if err != nil {
		return storeErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return scheduler.ErrNotFound
	}
	return nil
}

func (s *ReservationStore) listReservations(ctx context.Context, query string, args ...any) ([]model.Reservation, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

// ListByUser returns the user's reservations, newest slot first.
func (s *ReservationStore) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations
	      WHERE user_id = ?
	      ORDER BY slot_date DESC, slot_hour DESC, id DESC`
	return s.listReservations(ctx, q, userID)
}

// ListAll returns every reservation, newest slot first.
func (s *ReservationStore) ListAll(ctx context.Context) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations
	      ORDER BY slot_date DESC, slot_hour DESC, id DESC`
	return s.listReservations(ctx, q)
}

// ListBySlot returns every reservation at the slot, any status.
func (s *ReservationStore) ListBySlot(ctx context.Context, slot model.TimeSlot) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations
	      WHERE slot_date = ? AND slot_hour = ?
	      ORDER BY id`
	return s.listReservations(ctx, q, slot.DateString(), slot.Hour)
}

// ListSeats returns the full seat inventory ordered by seat number.
func (s *ReservationStore) ListSeats(ctx context.Context) ([]model.Seat, error) {
	const q = `SELECT id, seat_number, location, status, created_at, updated_at
	           FROM seats ORDER BY seat_number, id`
	rows, err := s.q(ctx).QueryContext(ctx, q)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()
	out := make([]model.Seat, 0)
	for rows.Next() {
		var seat model.Seat
		if err := rows.Scan(&seat.ID, &seat.Number, &seat.Location, &seat.Status, &seat.CreatedAt, &seat.UpdatedAt); err != nil {
			return nil, storeErr(err)
		}
		out = append(out, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}
