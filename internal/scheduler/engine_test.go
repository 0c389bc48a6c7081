package scheduler

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/model"
)

func mustSlot(t *testing.T, date string, hour int) model.TimeSlot {
	t.Helper()
	slot, err := model.ParseTimeSlot(date, strconv.Itoa(hour))
	if err != nil {
		t.Fatalf("bad slot %s %d: %v", date, hour, err)
	}
	return slot
}

func TestEngine_Book(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	intern := Subject{ID: 1, Role: model.RoleIntern}
	otherIntern := Subject{ID: 2, Role: model.RoleIntern}
	admin := Subject{ID: 9, Role: model.RoleAdmin}

	makeEngine := func(seats []model.Seat, reservations []model.Reservation) (*Engine, *fakeStore) {
		store := newFakeStore(seats, reservations)
		eng := NewEngine(store, NewFixedClock(now), WithLeadTime(time.Hour))
		return eng, store
	}

	seatPool := []model.Seat{
		{ID: 1, Number: "S1", Location: "Floor 1", Status: model.SeatAvailable},
		{ID: 2, Number: "S2", Location: "Floor 1", Status: model.SeatAvailable},
		{ID: 3, Number: "S3", Location: "Floor 2", Status: model.SeatUnavailable},
	}

	t.Run("creates active reservation", func(t *testing.T) {
		eng, store := makeEngine(seatPool, nil)
		slot := mustSlot(t, "2025-06-01", 14)

		r, err := eng.Book(context.Background(), intern, 1, slot)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if r.ID == 0 {
			t.Fatalf("expected reservation ID to be set")
		}
		if r.Status != model.StatusActive {
			t.Fatalf("expected status %s, got %s", model.StatusActive, r.Status)
		}
		if len(store.reservations) != 1 {
			t.Fatalf("expected 1 reservation in store, got %d", len(store.reservations))
		}
	})

	t.Run("rejects non-intern caller", func(t *testing.T) {
		eng, _ := makeEngine(seatPool, nil)
		_, err := eng.Book(context.Background(), admin, 1, mustSlot(t, "2025-06-01", 14))
		if err != ErrForbidden {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("rejects slot in the past", func(t *testing.T) {
		eng, _ := makeEngine(seatPool, nil)
		_, err := eng.Book(context.Background(), intern, 1, mustSlot(t, "2025-05-29", 14))
		if err != ErrInvalidTime {
			t.Fatalf("expected ErrInvalidTime, got %v", err)
		}
	})

	t.Run("rejects slot inside the lead time", func(t *testing.T) {
		eng, _ := makeEngine(seatPool, nil)
		// now is 12:00, lead time 1h: the 13:00 slot starts exactly at
		// now+lead and is still too close.
		_, err := eng.Book(context.Background(), intern, 1, mustSlot(t, "2025-05-30", 13))
		if err != ErrInvalidTime {
			t.Fatalf("expected ErrInvalidTime, got %v", err)
		}
	})

	t.Run("zero lead time accepts the next hour", func(t *testing.T) {
		store := newFakeStore(seatPool, nil)
		eng := NewEngine(store, NewFixedClock(now), WithLeadTime(0))
		if _, err := eng.Book(context.Background(), intern, 1, mustSlot(t, "2025-05-30", 13)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("rejects unknown seat", func(t *testing.T) {
		eng, _ := makeEngine(seatPool, nil)
		_, err := eng.Book(context.Background(), intern, 77, mustSlot(t, "2025-06-01", 14))
		if err != ErrSeatNotFound {
			t.Fatalf("expected ErrSeatNotFound, got %v", err)
		}
	})

	t.Run("rejects disabled seat", func(t *testing.T) {
		eng, _ := makeEngine(seatPool, nil)
		_, err := eng.Book(context.Background(), intern, 3, mustSlot(t, "2025-06-01", 14))
		if err != ErrConflict {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("seat exclusivity per slot", func(t *testing.T) {
		// Scenario: U books S1; V's booking for the same (S1, slot)
		// conflicts; V succeeds on S2 at the same slot.
		eng, _ := makeEngine(seatPool, nil)
		slot := mustSlot(t, "2025-06-01", 14)

		if _, err := eng.Book(context.Background(), intern, 1, slot); err != nil {
			t.Fatalf("first booking failed: %v", err)
		}
		if _, err := eng.Book(context.Background(), otherIntern, 1, slot); err != ErrConflict {
			t.Fatalf("expected ErrConflict for same seat, got %v", err)
		}
		if _, err := eng.Book(context.Background(), otherIntern, 2, slot); err != nil {
			t.Fatalf("booking a different seat failed: %v", err)
		}
	})

	t.Run("intern cannot double-book the same slot", func(t *testing.T) {
		eng, _ := makeEngine(seatPool, nil)
		slot := mustSlot(t, "2025-06-01", 14)

		if _, err := eng.Book(context.Background(), intern, 1, slot); err != nil {
			t.Fatalf("first booking failed: %v", err)
		}
		if _, err := eng.Book(context.Background(), intern, 2, slot); err != ErrConflict {
			t.Fatalf("expected ErrConflict for second seat same slot, got %v", err)
		}
	})

	t.Run("cancelled reservation frees the slot", func(t *testing.T) {
		eng, _ := makeEngine(seatPool, nil)
		slot := mustSlot(t, "2025-06-01", 14)

		r, err := eng.Book(context.Background(), intern, 1, slot)
		if err != nil {
			t.Fatalf("booking failed: %v", err)
		}
		if _, err := eng.Cancel(context.Background(), intern, r.ID); err != nil {
			t.Fatalf("cancel failed: %v", err)
		}
		if _, err := eng.Book(context.Background(), otherIntern, 1, slot); err != nil {
			t.Fatalf("expected freed slot to be bookable, got %v", err)
		}
	})
}

func TestEngine_Assign(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	admin := Subject{ID: 9, Role: model.RoleAdmin}
	intern := Subject{ID: 1, Role: model.RoleIntern}

	seats := []model.Seat{
		{ID: 1, Number: "S1", Status: model.SeatAvailable},
		{ID: 2, Number: "S2", Status: model.SeatAvailable},
	}

	makeEngine := func(reservations []model.Reservation) (*Engine, *fakeStore) {
		store := newFakeStore(seats, reservations)
		store.users = map[uint64]bool{1: true, 2: true}
		eng := NewEngine(store, NewFixedClock(now), WithLeadTime(time.Hour))
		return eng, store
	}

	t.Run("creates assigned reservation", func(t *testing.T) {
		eng, _ := makeEngine(nil)
		r, err := eng.Assign(context.Background(), admin, 1, 1, mustSlot(t, "2025-06-01", 9))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if r.Status != model.StatusAssigned {
			t.Fatalf("expected status %s, got %s", model.StatusAssigned, r.Status)
		}
	})

	t.Run("rejects non-admin caller", func(t *testing.T) {
		eng, _ := makeEngine(nil)
		_, err := eng.Assign(context.Background(), intern, 2, 1, mustSlot(t, "2025-06-01", 9))
		if err != ErrForbidden {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("rejects unknown intern", func(t *testing.T) {
		eng, _ := makeEngine(nil)
		_, err := eng.Assign(context.Background(), admin, 42, 1, mustSlot(t, "2025-06-01", 9))
		if err != ErrUserNotFound {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("same-day exclusivity blocks another assignment", func(t *testing.T) {
		eng, _ := makeEngine(nil)
		if _, err := eng.Assign(context.Background(), admin, intern.ID, 1, mustSlot(t, "2025-06-01", 9)); err != nil {
			t.Fatalf("assign failed: %v", err)
		}
		// The stricter rule also blocks further assignment that day.
		if _, err := eng.Assign(context.Background(), admin, intern.ID, 2, mustSlot(t, "2025-06-01", 15)); err != ErrConflict {
			t.Fatalf("expected ErrConflict for same-day assign, got %v", err)
		}
	})

	t.Run("seat exclusivity still applies", func(t *testing.T) {
		eng, _ := makeEngine(nil)
		slot := mustSlot(t, "2025-06-01", 9)
		if _, err := eng.Assign(context.Background(), admin, 1, 1, slot); err != nil {
			t.Fatalf("assign failed: %v", err)
		}
		if _, err := eng.Assign(context.Background(), admin, 2, 1, slot); err != ErrConflict {
			t.Fatalf("expected ErrConflict for occupied seat, got %v", err)
		}
	})
}

func TestEngine_SameDayRuleAfterAssign(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	admin := Subject{ID: 9, Role: model.RoleAdmin}
	intern := Subject{ID: 1, Role: model.RoleIntern}
	seats := []model.Seat{
		{ID: 1, Number: "S1", Status: model.SeatAvailable},
		{ID: 2, Number: "S2", Status: model.SeatAvailable},
	}
	store := newFakeStore(seats, nil)
	store.users = map[uint64]bool{1: true}
	eng := NewEngine(store, NewFixedClock(now), WithLeadTime(time.Hour))

	if _, err := eng.Assign(context.Background(), admin, intern.ID, 1, mustSlot(t, "2025-06-01", 9)); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	// An assignment blocks the intern for the whole day, so even a
	// different hour on a different seat is rejected.
	if _, err := eng.Book(context.Background(), intern, 2, mustSlot(t, "2025-06-01", 10)); err != ErrConflict {
		t.Fatalf("expected ErrConflict booking on an assigned day, got %v", err)
	}
	// Assigning again that day conflicts too.
	if _, err := eng.Assign(context.Background(), admin, intern.ID, 2, mustSlot(t, "2025-06-01", 16)); err != ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	// The next day is clear again.
	if _, err := eng.Book(context.Background(), intern, 2, mustSlot(t, "2025-06-02", 10)); err != nil {
		t.Fatalf("book on the next day failed: %v", err)
	}
}

func TestEngine_SelfBookingsShareADay(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	intern := Subject{ID: 1, Role: model.RoleIntern}
	seats := []model.Seat{
		{ID: 1, Number: "S1", Status: model.SeatAvailable},
		{ID: 2, Number: "S2", Status: model.SeatAvailable},
	}
	store := newFakeStore(seats, nil)
	eng := NewEngine(store, NewFixedClock(now), WithLeadTime(time.Hour))

	// Day-wide exclusivity applies only to admin assignments; an intern's
	// own bookings at different hours of one day coexist.
	if _, err := eng.Book(context.Background(), intern, 1, mustSlot(t, "2025-06-01", 9)); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if _, err := eng.Book(context.Background(), intern, 2, mustSlot(t, "2025-06-01", 10)); err != nil {
		t.Fatalf("second booking same day failed: %v", err)
	}
}

func TestEngine_Cancel(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	intern := Subject{ID: 1, Role: model.RoleIntern}
	other := Subject{ID: 2, Role: model.RoleIntern}
	admin := Subject{ID: 9, Role: model.RoleAdmin}
	seats := []model.Seat{{ID: 1, Number: "S1", Status: model.SeatAvailable}}

	book := func(t *testing.T, eng *Engine, slot model.TimeSlot) *model.Reservation {
		t.Helper()
		r, err := eng.Book(context.Background(), intern, 1, slot)
		if err != nil {
			t.Fatalf("booking failed: %v", err)
		}
		return r
	}

	t.Run("owner cancels future reservation", func(t *testing.T) {
		store := newFakeStore(seats, nil)
		eng := NewEngine(store, NewFixedClock(now))
		r := book(t, eng, mustSlot(t, "2025-06-01", 14))

		cancelled, err := eng.Cancel(context.Background(), intern, r.ID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cancelled.Status != model.StatusCancelled {
			t.Fatalf("expected status cancelled, got %s", cancelled.Status)
		}
	})

	t.Run("unknown id reports not found", func(t *testing.T) {
		store := newFakeStore(seats, nil)
		eng := NewEngine(store, NewFixedClock(now))
		if _, err := eng.Cancel(context.Background(), intern, 404); err != ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("only the owning intern may cancel", func(t *testing.T) {
		store := newFakeStore(seats, nil)
		eng := NewEngine(store, NewFixedClock(now))
		r := book(t, eng, mustSlot(t, "2025-06-01", 14))

		if _, err := eng.Cancel(context.Background(), other, r.ID); err != ErrForbidden {
			t.Fatalf("expected ErrForbidden for other intern, got %v", err)
		}
		if _, err := eng.Cancel(context.Background(), admin, r.ID); err != ErrForbidden {
			t.Fatalf("expected ErrForbidden for admin, got %v", err)
		}
	})

	t.Run("cancel of an elapsed reservation fails", func(t *testing.T) {
		store := newFakeStore(seats, []model.Reservation{{
			ID: 5, UserID: intern.ID, SeatID: 1,
			Slot:   mustSlot(t, "2025-05-30", 11),
			Status: model.StatusActive,
		}})
		eng := NewEngine(store, NewFixedClock(now))
		if _, err := eng.Cancel(context.Background(), intern, 5); err != ErrInvalidTime {
			t.Fatalf("expected ErrInvalidTime, got %v", err)
		}
	})

	t.Run("double cancel reports not found", func(t *testing.T) {
		store := newFakeStore(seats, nil)
		eng := NewEngine(store, NewFixedClock(now))
		r := book(t, eng, mustSlot(t, "2025-06-01", 14))

		if _, err := eng.Cancel(context.Background(), intern, r.ID); err != nil {
			t.Fatalf("first cancel failed: %v", err)
		}
		if _, err := eng.Cancel(context.Background(), intern, r.ID); err != ErrNotFound {
			t.Fatalf("expected ErrNotFound on second cancel, got %v", err)
		}
	})
}

func TestEngine_Modify(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	intern := Subject{ID: 1, Role: model.RoleIntern}
	other := Subject{ID: 2, Role: model.RoleIntern}
	seats := []model.Seat{
		{ID: 1, Number: "S1", Status: model.SeatAvailable},
		{ID: 2, Number: "S2", Status: model.SeatAvailable},
	}

	setup := func(t *testing.T) (*Engine, *model.Reservation) {
		store := newFakeStore(seats, nil)
		eng := NewEngine(store, NewFixedClock(now))
		r, err := eng.Book(context.Background(), intern, 1, mustSlot(t, "2025-06-01", 14))
		if err != nil {
			t.Fatalf("booking failed: %v", err)
		}
		return eng, r
	}

	t.Run("moves to a free seat and slot", func(t *testing.T) {
		eng, r := setup(t)
		updated, err := eng.Modify(context.Background(), intern, r.ID, 2, mustSlot(t, "2025-06-02", 9))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if updated.SeatID != 2 || updated.Slot.Hour != 9 {
			t.Fatalf("expected rewritten fields, got seat=%d hour=%d", updated.SeatID, updated.Slot.Hour)
		}
		if updated.Status != model.StatusActive {
			t.Fatalf("modify must not change status, got %s", updated.Status)
		}
	})

	t.Run("no-op modify succeeds by excluding itself", func(t *testing.T) {
		eng, r := setup(t)
		if _, err := eng.Modify(context.Background(), intern, r.ID, r.SeatID, r.Slot); err != nil {
			t.Fatalf("expected no-op modify to succeed, got %v", err)
		}
	})

	t.Run("conflicting target slot is rejected", func(t *testing.T) {
		eng, r := setup(t)
		slot := mustSlot(t, "2025-06-01", 14)
		if _, err := eng.Book(context.Background(), other, 2, slot); err != nil {
			t.Fatalf("other booking failed: %v", err)
		}
		if _, err := eng.Modify(context.Background(), intern, r.ID, 2, slot); err != ErrConflict {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("owner check", func(t *testing.T) {
		eng, r := setup(t)
		if _, err := eng.Modify(context.Background(), other, r.ID, 2, mustSlot(t, "2025-06-02", 9)); err != ErrForbidden {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("cancelled reservation cannot be modified", func(t *testing.T) {
		eng, r := setup(t)
		if _, err := eng.Cancel(context.Background(), intern, r.ID); err != nil {
			t.Fatalf("cancel failed: %v", err)
		}
		if _, err := eng.Modify(context.Background(), intern, r.ID, 2, mustSlot(t, "2025-06-02", 9)); err != ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("lead time applies to the new slot", func(t *testing.T) {
		eng, r := setup(t)
		if _, err := eng.Modify(context.Background(), intern, r.ID, 2, mustSlot(t, "2025-05-30", 12)); err != ErrInvalidTime {
			t.Fatalf("expected ErrInvalidTime, got %v", err)
		}
	})
}

func TestEngine_ConcurrentBookSameSlot(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	seats := []model.Seat{{ID: 1, Number: "S1", Status: model.SeatAvailable}}
	store := newFakeStore(seats, nil)
	eng := NewEngine(store, NewFixedClock(now))
	slot := mustSlot(t, "2025-06-01", 14)

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			subject := Subject{ID: uint64(i + 1), Role: model.RoleIntern}
			_, errs[i] = eng.Book(context.Background(), subject, 1, slot)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one successful booking, got %d", winners)
	}
	occupied := 0
	for _, r := range store.reservations {
		if r.Status.Occupies() {
			occupied++
		}
	}
	if occupied != 1 {
		t.Fatalf("expected one occupying reservation for the slot, got %d", occupied)
	}
}

func TestEngine_SeatStatusForSlot(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	me := Subject{ID: 1, Role: model.RoleIntern}
	slot := mustSlot(t, "2025-06-01", 14)
	seats := []model.Seat{
		{ID: 1, Number: "S1", Status: model.SeatAvailable},
		{ID: 2, Number: "S2", Status: model.SeatAvailable},
		{ID: 3, Number: "S3", Status: model.SeatAvailable},
		{ID: 4, Number: "S4", Status: model.SeatUnavailable},
	}
	store := newFakeStore(seats, []model.Reservation{
		{ID: 1, UserID: 1, SeatID: 1, Slot: slot, Status: model.StatusActive},
		{ID: 2, UserID: 2, SeatID: 2, Slot: slot, Status: model.StatusAssigned},
		{ID: 3, UserID: 3, SeatID: 3, Slot: slot, Status: model.StatusCancelled},
	})
	eng := NewEngine(store, NewFixedClock(now))

	statuses, err := eng.SeatStatusForSlot(context.Background(), me, slot)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := map[uint64]string{
		1: SlotReservedByMe, // mine
		2: SlotUnavailable,  // someone else's assignment
		3: SlotAvailable,    // cancelled does not occupy
		4: SlotUnavailable,  // seat disabled
	}
	if len(statuses) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(statuses))
	}
	for _, st := range statuses {
		if st.Status != want[st.Seat.ID] {
			t.Fatalf("seat %d: expected %s, got %s", st.Seat.ID, want[st.Seat.ID], st.Status)
		}
	}
}

func TestEngine_SeatUsage(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	admin := Subject{ID: 9, Role: model.RoleAdmin}
	intern := Subject{ID: 1, Role: model.RoleIntern}
	v := Subject{ID: 2, Role: model.RoleIntern}
	seats := []model.Seat{
		{ID: 1, Number: "S1", Location: "Floor 1", Status: model.SeatAvailable},
		{ID: 2, Number: "S2", Location: "Floor 1", Status: model.SeatAvailable},
	}

	t.Run("counts and frees after cancel", func(t *testing.T) {
		// U books S1, cancels, then V books the same freed slot: S1 ends
		// with two rows, one cancelled and one active.
		store := newFakeStore(seats, nil)
		eng := NewEngine(store, NewFixedClock(now))
		slot := mustSlot(t, "2025-06-01", 14)

		r, err := eng.Book(context.Background(), intern, 1, slot)
		if err != nil {
			t.Fatalf("book failed: %v", err)
		}
		if _, err := eng.Cancel(context.Background(), intern, r.ID); err != nil {
			t.Fatalf("cancel failed: %v", err)
		}
		if _, err := eng.Book(context.Background(), v, 1, slot); err != nil {
			t.Fatalf("rebook failed: %v", err)
		}

		rows, err := eng.SeatUsage(context.Background(), admin)
		if err != nil {
			t.Fatalf("usage failed: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("expected a single seat row, got %d", len(rows))
		}
		got := rows[0]
		if got.SeatNumber != "S1" || got.TotalReservations != 2 || got.CancelledCount != 1 || got.ActiveCount != 1 || got.AssignedCount != 0 {
			t.Fatalf("unexpected row: %+v", got)
		}
		if len(got.Reservations) != 2 {
			t.Fatalf("expected 2 reservation entries, got %d", len(got.Reservations))
		}
	})

	t.Run("ordering is deterministic", func(t *testing.T) {
		slotA := mustSlot(t, "2025-06-01", 9)
		slotB := mustSlot(t, "2025-06-01", 10)
		slotC := mustSlot(t, "2025-06-02", 9)
		store := newFakeStore(seats, []model.Reservation{
			{ID: 1, UserID: 1, SeatID: 2, Slot: slotA, Status: model.StatusActive},
			{ID: 2, UserID: 2, SeatID: 2, Slot: slotB, Status: model.StatusCancelled},
			{ID: 3, UserID: 1, SeatID: 1, Slot: slotC, Status: model.StatusAssigned},
		})
		eng := NewEngine(store, NewFixedClock(now))

		rows, err := eng.SeatUsage(context.Background(), admin)
		if err != nil {
			t.Fatalf("usage failed: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0].SeatNumber != "S2" || rows[1].SeatNumber != "S1" {
			t.Fatalf("expected S2 before S1, got %s then %s", rows[0].SeatNumber, rows[1].SeatNumber)
		}
	})

	t.Run("admin only", func(t *testing.T) {
		store := newFakeStore(seats, nil)
		eng := NewEngine(store, NewFixedClock(now))
		if _, err := eng.SeatUsage(context.Background(), intern); err != ErrForbidden {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestEngine_ListAll(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(nil, nil)
	eng := NewEngine(store, NewFixedClock(now))

	if _, err := eng.ListAll(context.Background(), Subject{ID: 1, Role: model.RoleIntern}); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for intern, got %v", err)
	}
	if _, err := eng.ListAll(context.Background(), Subject{ID: 9, Role: model.RoleAdmin}); err != nil {
		t.Fatalf("expected no error for admin, got %v", err)
	}
}

// fakeStore is an in-memory Store with transactional semantics: WithTx
// serializes whole operations behind a mutex and CreateReservation
// enforces the occupancy constraint the MySQL unique index provides.
type fakeStore struct {
	mu           sync.Mutex
	seats        map[uint64]model.Seat
	users        map[uint64]bool
	reservations []model.Reservation
	nextID       uint64
}

func newFakeStore(seats []model.Seat, reservations []model.Reservation) *fakeStore {
	s := &fakeStore{
		seats:        make(map[uint64]model.Seat, len(seats)),
		users:        map[uint64]bool{},
		reservations: append([]model.Reservation{}, reservations...),
		nextID:       100,
	}
	for _, seat := range seats {
		s.seats[seat.ID] = seat
	}
	return s
}

type fakeTxKey struct{}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(context.WithValue(ctx, fakeTxKey{}, struct{}{}))
}

func (f *fakeStore) GetSeat(_ context.Context, seatID uint64) (*model.Seat, error) {
	seat, ok := f.seats[seatID]
	if !ok {
		return nil, ErrSeatNotFound
	}
	return &seat, nil
}

func (f *fakeStore) UserExists(_ context.Context, userID uint64) (bool, error) {
	return f.users[userID], nil
}

func (f *fakeStore) GetReservation(_ context.Context, id uint64) (*model.Reservation, error) {
	for i := range f.reservations {
		if f.reservations[i].ID == id {
			r := f.reservations[i]
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) SeatTaken(_ context.Context, seatID uint64, slot model.TimeSlot, excludeID uint64) (bool, error) {
	for _, r := range f.reservations {
		if r.ID != excludeID && r.SeatID == seatID && r.Slot.Equal(slot) && r.Status.Occupies() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UserTaken(_ context.Context, userID uint64, slot model.TimeSlot, excludeID uint64) (bool, error) {
	for _, r := range f.reservations {
		if r.ID != excludeID && r.UserID == userID && r.Slot.Equal(slot) && r.Status.Occupies() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UserTakenOnDate(_ context.Context, userID uint64, date time.Time) (bool, error) {
	for _, r := range f.reservations {
		if r.UserID == userID && r.Slot.Date.Equal(date) && r.Status.Occupies() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UserAssignedOnDate(_ context.Context, userID uint64, date time.Time) (bool, error) {
	for _, r := range f.reservations {
		if r.UserID == userID && r.Slot.Date.Equal(date) && r.Status == model.StatusAssigned {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	if taken, _ := f.SeatTaken(ctx, r.SeatID, r.Slot, 0); taken {
		return ErrConflict
	}
	f.nextID++
	r.ID = f.nextID
	f.reservations = append(f.reservations, *r)
	return nil
}

func (f *fakeStore) RewriteReservation(_ context.Context, r *model.Reservation) error {
	for i := range f.reservations {
		if f.reservations[i].ID == r.ID && f.reservations[i].Status != model.StatusCancelled {
			f.reservations[i].SeatID = r.SeatID
			f.reservations[i].Slot = r.Slot
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) CancelReservation(_ context.Context, id uint64) error {
	for i := range f.reservations {
		if f.reservations[i].ID == id && f.reservations[i].Status != model.StatusCancelled {
			f.reservations[i].Status = model.StatusCancelled
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) ListByUser(_ context.Context, userID uint64) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range f.reservations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]model.Reservation, error) {
	return append([]model.Reservation{}, f.reservations...), nil
}

func (f *fakeStore) ListBySlot(_ context.Context, slot model.TimeSlot) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range f.reservations {
		if r.Slot.Equal(slot) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSeats(_ context.Context) ([]model.Seat, error) {
	out := make([]model.Seat, 0, len(f.seats))
	for _, seat := range f.seats {
		out = append(out, seat)
	}
	return out, nil
}
