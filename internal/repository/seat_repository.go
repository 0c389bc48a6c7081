package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/model"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/scheduler"
)

// SeatRepo manages the seat inventory.  It serves the admin CRUD
// endpoints; availability questions go through the reservation store.
type SeatRepo struct {
	db *sql.DB
}

func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

const seatColumns = `id, seat_number, location, status, created_at, updated_at`

// ErrSeatNumberExists is returned when a create or update collides with
// the unique seat number index.
var ErrSeatNumberExists = errors.New("seat number already exists")

// Create inserts a seat record. On success the seat's ID is populated.
func (r *SeatRepo) Create(ctx context.Context, s *model.Seat) error {
	const q = `INSERT INTO seats (seat_number, location, status) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Number, s.Location, s.Status)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrSeatNumberExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// List retrieves the whole inventory ordered by seat number.
func (r *SeatRepo) List(ctx context.Context) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats ORDER BY seat_number, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.Number, &s.Location, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID retrieves a seat by its id.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats WHERE id = ?`
	var s model.Seat
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.Number, &s.Location, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduler.ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Update rewrites number, location and status.  Returns
// scheduler.ErrSeatNotFound when the seat does not exist.
func (r *SeatRepo) Update(ctx context.Context, id uint64, number, location, status string) error {
	const q = `UPDATE seats
	           SET seat_number = ?, location = ?, status = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, number, location, status, id)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrSeatNumberExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return scheduler.ErrSeatNotFound
	}
	return nil
}

// Delete removes a seat.  Seats with reservation history cannot be
// deleted; the foreign key keeps the usage report consistent, so the
// violation maps to scheduler.ErrConflict.
func (r *SeatRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM seats WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		if isForeignKeyInUse(err) {
			return scheduler.ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return scheduler.ErrSeatNotFound
	}
	return nil
}
