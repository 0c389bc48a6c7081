package model

import "time"

// Status is the closed set of reservation states.  A reservation is
// created as StatusActive (self-service booking) or StatusAssigned
// (administrative assignment) and can only ever transition to
// StatusCancelled, which is terminal.  Cancelled rows are kept for
// reporting and never deleted.
type Status string

const (
	StatusActive    Status = "active"   // booked by the intern themselves
	StatusAssigned  Status = "assigned" // placed by an administrator
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusAssigned, StatusCancelled:
		return true
	}
	return false
}

// Occupies reports whether a reservation in this state counts toward
// seat/intern exclusivity.  Only cancelled reservations free their slot.
func (s Status) Occupies() bool {
	return s == StatusActive || s == StatusAssigned
}

// Reservation records an intern's claim on a seat for one time slot.
// It corresponds to a row in the `reservations` table.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – intern holding the reservation.
//  SeatID    – seat being reserved.
//  Slot      – (date, hour) window of the reservation.
//  Status    – active, assigned or cancelled.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
	ID        uint64
	UserID    uint64
	SeatID    uint64
	Slot      TimeSlot
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}
