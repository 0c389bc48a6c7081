package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/model"
)

// Subject is the authenticated party a request acts on behalf of.  It is
// resolved by the identity layer (JWT middleware); the engine only reads
// it.
type Subject struct {
	ID   uint64
	Role string
}

// IsAdmin reports whether the subject carries the administrator role.
func (s Subject) IsAdmin() bool { return s.Role == model.RoleAdmin }

// IsIntern reports whether the subject carries the intern role.
func (s Subject) IsIntern() bool { return s.Role == model.RoleIntern }

// DefaultLeadTime is the minimum interval between "now" and a slot's
// start required to accept a new booking.  Configurable down to zero,
// which degrades to a strictly-in-the-future rule.
const DefaultLeadTime = time.Hour

// Engine orchestrates all reservation state transitions.  It holds no
// package-level state: the store, clock and lead-time policy are injected
// at construction, so tests can run it against a fake store and a fixed
// clock.
type Engine struct {
	store    Store
	clock    Clock
	leadTime time.Duration
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLeadTime overrides the default minimum booking lead time.  Negative
// values are ignored.
func WithLeadTime(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.leadTime = d
		}
	}
}

// NewEngine constructs an Engine bound to the given store and clock.
func NewEngine(store Store, clk Clock, opts ...Option) *Engine {
	e := &Engine{store: store, clock: clk, leadTime: DefaultLeadTime}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// checkBookable rejects slots that start at or before now+leadTime.
func (e *Engine) checkBookable(slot model.TimeSlot) error {
	if slot.Before(e.clock.Now().Add(e.leadTime)) {
		return ErrInvalidTime
	}
	return nil
}

// checkSeatUsable loads the seat and rejects disabled ones.
func (e *Engine) checkSeatUsable(ctx context.Context, seatID uint64) error {
	seat, err := e.store.GetSeat(ctx, seatID)
	if err != nil {
		return err
	}
	if seat.Status != model.SeatAvailable {
		return ErrConflict
	}
	return nil
}

// Book creates an active reservation for the calling intern.  It fails
// with ErrConflict when the intern already holds a non-cancelled
// reservation at the slot (any seat), holds an admin assignment anywhere
// on that day, or the seat is occupied at the slot, and with
// ErrInvalidTime when the slot does not respect the lead time.
// First writer to commit wins; a losing concurrent booking observes
// ErrConflict from the store's occupancy constraint.
func (e *Engine) Book(ctx context.Context, subject Subject, seatID uint64, slot model.TimeSlot) (*model.Reservation, error) {
	if !subject.IsIntern() {
		return nil, ErrForbidden
	}
	if err := e.checkBookable(slot); err != nil {
		return nil, err
	}
	var created *model.Reservation
	err := e.store.WithTx(ctx, func(ctx context.Context) error {
		if err := e.checkSeatUsable(ctx, seatID); err != nil {
			return err
		}
		if taken, err := e.store.UserTaken(ctx, subject.ID, slot, 0); err != nil {
			return err
		} else if taken {
			return ErrConflict
		}
		// An admin assignment reserves the intern for the whole day.
		if assigned, err := e.store.UserAssignedOnDate(ctx, subject.ID, slot.Date); err != nil {
			return err
		} else if assigned {
			return ErrConflict
		}
		if taken, err := e.store.SeatTaken(ctx, seatID, slot, 0); err != nil {
			return err
		} else if taken {
			return ErrConflict
		}
		r := &model.Reservation{
			UserID: subject.ID,
			SeatID: seatID,
			Slot:   slot,
			Status: model.StatusActive,
		}
		if err := e.store.CreateReservation(ctx, r); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Assign places an intern on a seat on behalf of an administrator and
// creates an assigned reservation.  Beyond the seat-slot exclusivity rule
// it enforces the stricter per-day rule: the target intern may not hold
// any other non-cancelled reservation on the same calendar date.
func (e *Engine) Assign(ctx context.Context, admin Subject, internID, seatID uint64, slot model.TimeSlot) (*model.Reservation, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := e.checkBookable(slot); err != nil {
		return nil, err
	}
	var created *model.Reservation
	err := e.store.WithTx(ctx, func(ctx context.Context) error {
		ok, err := e.store.UserExists(ctx, internID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUserNotFound
		}
		if err := e.checkSeatUsable(ctx, seatID); err != nil {
			return err
		}
		if taken, err := e.store.SeatTaken(ctx, seatID, slot, 0); err != nil {
			return err
		} else if taken {
			return ErrConflict
		}
		if taken, err := e.store.UserTakenOnDate(ctx, internID, slot.Date); err != nil {
			return err
		} else if taken {
			return ErrConflict
		}
		r := &model.Reservation{
			UserID: internID,
			SeatID: seatID,
			Slot:   slot,
			Status: model.StatusAssigned,
		}
		if err := e.store.CreateReservation(ctx, r); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Cancel transitions a reservation to cancelled.  Only the owning intern
// may cancel; administrators cannot cancel on an intern's behalf.
// Reservations whose slot has already started cannot be cancelled, and a
// reservation that is already cancelled reports ErrNotFound rather than
// transitioning twice.
func (e *Engine) Cancel(ctx context.Context, subject Subject, id uint64) (*model.Reservation, error) {
	var out *model.Reservation
	err := e.store.WithTx(ctx, func(ctx context.Context) error {
		r, err := e.store.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		if !subject.IsIntern() || r.UserID != subject.ID {
			return ErrForbidden
		}
		if r.Status == model.StatusCancelled {
			return ErrNotFound
		}
		if r.Slot.Before(e.clock.Now()) {
			return ErrInvalidTime
		}
		if err := e.store.CancelReservation(ctx, r.ID); err != nil {
			return err
		}
		r.Status = model.StatusCancelled
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Modify rewrites an existing reservation's seat and slot in place,
// re-validating every invariant as if it were a fresh booking, while
// excluding the reservation itself from the seat conflict check so a
// no-op modify succeeds.  The status is left untouched; a cancelled
// reservation cannot be modified.
func (e *Engine) Modify(ctx context.Context, subject Subject, id, newSeatID uint64, newSlot model.TimeSlot) (*model.Reservation, error) {
	if err := e.checkBookable(newSlot); err != nil {
		return nil, err
	}
	var out *model.Reservation
	err := e.store.WithTx(ctx, func(ctx context.Context) error {
		r, err := e.store.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		if r.UserID != subject.ID {
			return ErrForbidden
		}
		if r.Status == model.StatusCancelled {
			return ErrNotFound
		}
		if err := e.checkSeatUsable(ctx, newSeatID); err != nil {
			return err
		}
		if taken, err := e.store.SeatTaken(ctx, newSeatID, newSlot, r.ID); err != nil {
			return err
		} else if taken {
			return ErrConflict
		}
		r.SeatID = newSeatID
		r.Slot = newSlot
		if err := e.store.RewriteReservation(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListForSubject returns the caller's own reservations.
func (e *Engine) ListForSubject(ctx context.Context, subject Subject) ([]model.Reservation, error) {
	return e.store.ListByUser(ctx, subject.ID)
}

// ListAll returns every reservation.  Administrator only.
func (e *Engine) ListAll(ctx context.Context, subject Subject) ([]model.Reservation, error) {
	if !subject.IsAdmin() {
		return nil, ErrForbidden
	}
	return e.store.ListAll(ctx)
}

// Seat slot statuses reported by SeatStatusForSlot.
const (
	SlotAvailable    = "available"
	SlotUnavailable  = "unavailable"
	SlotReservedByMe = "reserved-by-me"
)

// SeatStatus pairs a seat with its availability at one slot, from the
// caller's point of view.
type SeatStatus struct {
	Seat   model.Seat
	Status string
}

// SeatStatusForSlot reports, for every seat in the inventory, whether it
// is free at the slot, taken by someone else, or held by the caller.
// Disabled seats always report unavailable.  Cancelled reservations do
// not mark a seat as taken.  The seat list and the slot's reservations
// are read inside one transaction so the view is a consistent snapshot.
func (e *Engine) SeatStatusForSlot(ctx context.Context, subject Subject, slot model.TimeSlot) ([]SeatStatus, error) {
	var statuses []SeatStatus
	err := e.store.WithTx(ctx, func(ctx context.Context) error {
		seats, err := e.store.ListSeats(ctx)
		if err != nil {
			return err
		}
		reservations, err := e.store.ListBySlot(ctx, slot)
		if err != nil {
			return err
		}
		bySeat := make(map[uint64]model.Reservation, len(reservations))
		for _, r := range reservations {
			if r.Status.Occupies() {
				bySeat[r.SeatID] = r
			}
		}
		statuses = make([]SeatStatus, 0, len(seats))
		for _, seat := range seats {
			status := SlotAvailable
			if seat.Status != model.SeatAvailable {
				status = SlotUnavailable
			} else if r, ok := bySeat[seat.ID]; ok {
				if r.UserID == subject.ID {
					status = SlotReservedByMe
				} else {
					status = SlotUnavailable
				}
			}
			statuses = append(statuses, SeatStatus{Seat: seat, Status: status})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

// UsageEntry is one reservation inside a usage report row.
type UsageEntry struct {
	Date   string       `json:"date"`
	Hour   int          `json:"hour"`
	Status model.Status `json:"status"`
}

// UsageRow aggregates all reservations ever made for one seat.
type UsageRow struct {
	SeatID            uint64       `json:"seat_id"`
	SeatNumber        string       `json:"seat_number"`
	SeatLocation      string       `json:"seat_location"`
	TotalReservations int          `json:"total_reservations"`
	AssignedCount     int          `json:"assigned_count"`
	ActiveCount       int          `json:"active_count"`
	CancelledCount    int          `json:"cancelled_count"`
	Reservations      []UsageEntry `json:"reservations"`
}

// SeatUsage folds the full reservation history into per-seat statistics.
// Administrator only.  Seats that were never reserved are omitted.  Rows
// are ordered by total reservation count descending, ties broken by seat
// number ascending, so repeated report runs over the same data are
// byte-identical.  The fold reads seats and reservations inside one
// transaction: counts can never go negative or double-count a row.
func (e *Engine) SeatUsage(ctx context.Context, subject Subject) ([]UsageRow, error) {
	if !subject.IsAdmin() {
		return nil, ErrForbidden
	}
	var rows []UsageRow
	err := e.store.WithTx(ctx, func(ctx context.Context) error {
		seats, err := e.store.ListSeats(ctx)
		if err != nil {
			return err
		}
		reservations, err := e.store.ListAll(ctx)
		if err != nil {
			return err
		}
		seatByID := make(map[uint64]model.Seat, len(seats))
		for _, s := range seats {
			seatByID[s.ID] = s
		}
		bySeat := make(map[uint64]*UsageRow)
		order := make([]uint64, 0)
		for _, r := range reservations {
			row, ok := bySeat[r.SeatID]
			if !ok {
				seat := seatByID[r.SeatID]
				row = &UsageRow{
					SeatID:       r.SeatID,
					SeatNumber:   seat.Number,
					SeatLocation: seat.Location,
					Reservations: []UsageEntry{},
				}
				bySeat[r.SeatID] = row
				order = append(order, r.SeatID)
			}
			row.TotalReservations++
			switch r.Status {
			case model.StatusAssigned:
				row.AssignedCount++
			case model.StatusActive:
				row.ActiveCount++
			case model.StatusCancelled:
				row.CancelledCount++
			}
			row.Reservations = append(row.Reservations, UsageEntry{
				Date:   r.Slot.DateString(),
				Hour:   r.Slot.Hour,
				Status: r.Status,
			})
		}
		rows = make([]UsageRow, 0, len(order))
		for _, id := range order {
			rows = append(rows, *bySeat[id])
		}
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].TotalReservations != rows[j].TotalReservations {
				return rows[i].TotalReservations > rows[j].TotalReservations
			}
			if rows[i].SeatNumber != rows[j].SeatNumber {
				return rows[i].SeatNumber < rows[j].SeatNumber
			}
			return rows[i].SeatID < rows[j].SeatID
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
