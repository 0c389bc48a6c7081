// Package queue defines message payloads exchanged over the message broker.
package queue

// Reservation event actions.
const (
	ActionBooked    = "booked"
	ActionAssigned  = "assigned"
	ActionModified  = "modified"
	ActionCancelled = "cancelled"
)

// ReservationEvent is published whenever a reservation changes state.
// It carries enough information for downstream consumers to log, notify
// or feed analytics without querying the primary database.
type ReservationEvent struct {
	Action        string `json:"action"`
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	SeatID        uint64 `json:"seat_id"`
	SeatNumber    string `json:"seat_number"`
	Date          string `json:"date"` // 2006-01-02
	Hour          int    `json:"hour"` // 0-23
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"` // RFC3339
}
