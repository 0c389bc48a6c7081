package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/model"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/scheduler"
)

func newMockStore(t *testing.T) (*ReservationStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReservationStore(db), mock
}

func testSlot(t *testing.T) model.TimeSlot {
	t.Helper()
	slot, err := model.ParseTimeSlot("2025-06-01", "14")
	require.NoError(t, err)
	return slot
}

func TestReservationStore_WithTx(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations")).
			WithArgs(uint64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.WithTx(context.Background(), func(ctx context.Context) error {
			return store.CancelReservation(ctx, 7)
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := store.WithTx(context.Background(), func(ctx context.Context) error {
			return scheduler.ErrConflict
		})
		assert.ErrorIs(t, err, scheduler.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := store.WithTx(context.Background(), func(ctx context.Context) error {
			return store.WithTx(ctx, func(ctx context.Context) error { return nil })
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReservationStore_CreateReservation(t *testing.T) {
	slotDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("populates the row after insert", func(t *testing.T) {
		store, mock := newMockStore(t)
		slot := testSlot(t)
		now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
			WithArgs(uint64(1), uint64(2), "2025-06-01", 14, model.StatusActive).
			WillReturnResult(sqlmock.NewResult(42, 1))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, seat_id, slot_date, slot_hour, status, created_at, updated_at FROM reservations WHERE id = ?")).
			WithArgs(uint64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "seat_id", "slot_date", "slot_hour", "status", "created_at", "updated_at"}).
				AddRow(42, 1, 2, slotDate, 14, "active", now, now))

		r := &model.Reservation{UserID: 1, SeatID: 2, Slot: slot, Status: model.StatusActive}
		err := store.CreateReservation(context.Background(), r)
		require.NoError(t, err)
		assert.Equal(t, uint64(42), r.ID)
		assert.Equal(t, model.StatusActive, r.Status)
		assert.True(t, r.Slot.Equal(slot))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate occupancy key maps to conflict", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		r := &model.Reservation{UserID: 1, SeatID: 2, Slot: testSlot(t), Status: model.StatusActive}
		err := store.CreateReservation(context.Background(), r)
		assert.ErrorIs(t, err, scheduler.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("transport failure is not a conflict", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
			WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})

		r := &model.Reservation{UserID: 1, SeatID: 2, Slot: testSlot(t), Status: model.StatusActive}
		err := store.CreateReservation(context.Background(), r)
		assert.ErrorIs(t, err, scheduler.ErrStoreUnavailable)
		assert.NotErrorIs(t, err, scheduler.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReservationStore_CancelReservation(t *testing.T) {
	t.Run("zero affected rows means not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations")).
			WithArgs(uint64(7)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.CancelReservation(context.Background(), 7)
		assert.ErrorIs(t, err, scheduler.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReservationStore_RewriteReservation(t *testing.T) {
	t.Run("cancelled row cannot be rewritten", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations")).
			WithArgs(uint64(3), "2025-06-01", 14, uint64(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		r := &model.Reservation{ID: 9, SeatID: 3, Slot: testSlot(t)}
		err := store.RewriteReservation(context.Background(), r)
		assert.ErrorIs(t, err, scheduler.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate key on new slot maps to conflict", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations")).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		r := &model.Reservation{ID: 9, SeatID: 3, Slot: testSlot(t)}
		err := store.RewriteReservation(context.Background(), r)
		assert.ErrorIs(t, err, scheduler.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReservationStore_SeatTaken(t *testing.T) {
	store, mock := newMockStore(t)
	slot := testSlot(t)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint64(2), "2025-06-01", 14, uint64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := store.SeatTaken(context.Background(), 2, slot, 0)
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationStore_GetSeat(t *testing.T) {
	t.Run("missing seat", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, seat_number, location, status, created_at, updated_at FROM seats WHERE id = ?")).
			WithArgs(uint64(55)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "seat_number", "location", "status", "created_at", "updated_at"}))

		_, err := store.GetSeat(context.Background(), 55)
		assert.ErrorIs(t, err, scheduler.ErrSeatNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReservationStore_GetReservation(t *testing.T) {
	t.Run("missing id", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("SELECT .* FROM reservations WHERE id").
			WithArgs(uint64(404)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "seat_id", "slot_date", "slot_hour", "status", "created_at", "updated_at"}))

		_, err := store.GetReservation(context.Background(), 404)
		assert.ErrorIs(t, err, scheduler.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
