package model

import "time"

// Seat availability states.  An unavailable seat is kept out of the
// booking pool but remains visible in listings and usage reports.
const (
	SeatAvailable   = "available"
	SeatUnavailable = "unavailable"
)

// Seat describes a physical seat in the office.  Seats are identified by
// their number and location; the status flag lets administrators pull a
// seat from circulation without deleting its history.
//
// Fields:
//  ID        – primary key identifier.
//  Number    – seat label as printed on the desk (e.g. "A-12").
//  Location  – free-form placement description (floor, wing, ...).
//  Status    – available or unavailable.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Seat struct {
	ID        uint64    // seats.id
	Number    string    // seats.number
	Location  string    // seats.location
	Status    string    // seats.status
	CreatedAt time.Time // seats.created_at
	UpdatedAt time.Time // seats.updated_at
}
