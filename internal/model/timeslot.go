package model

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the wire format for reservation dates.  All dates are
// interpreted in UTC at day granularity.
const DateLayout = "2006-01-02"

// ErrBadTimeSlot is returned when a date or hour cannot be parsed into a
// valid TimeSlot.
var ErrBadTimeSlot = errors.New("invalid time slot")

// TimeSlot identifies a one-hour reservation window: a calendar date plus
// an hour index (0–23).  Two slots are equal iff both date and hour match.
// The zero value is not a valid slot.
type TimeSlot struct {
	Date time.Time // midnight UTC of the slot's day
	Hour int       // 0–23
}

// NewTimeSlot builds a TimeSlot from an instant and an hour index.  The
// time portion of date is discarded; only its UTC calendar day is kept.
func NewTimeSlot(date time.Time, hour int) (TimeSlot, error) {
	if hour < 0 || hour > 23 {
		return TimeSlot{}, ErrBadTimeSlot
	}
	d := date.UTC()
	return TimeSlot{
		Date: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
		Hour: hour,
	}, nil
}

// ParseTimeSlot parses a "2006-01-02" date string and an hour string into a
// TimeSlot.  It is used by handlers when binding query/body parameters.
func ParseTimeSlot(dateStr, hourStr string) (TimeSlot, error) {
	d, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return TimeSlot{}, ErrBadTimeSlot
	}
	h, err := strconv.Atoi(hourStr)
	if err != nil {
		return TimeSlot{}, ErrBadTimeSlot
	}
	return NewTimeSlot(d, h)
}

// StartAt returns the instant at which the slot begins.
func (s TimeSlot) StartAt() time.Time {
	return s.Date.Add(time.Duration(s.Hour) * time.Hour)
}

// Equal reports whether two slots denote the same (date, hour) window.
func (s TimeSlot) Equal(o TimeSlot) bool {
	return s.Hour == o.Hour && s.Date.Equal(o.Date)
}

// SameDay reports whether both slots fall on the same calendar date,
// regardless of hour.
func (s TimeSlot) SameDay(o TimeSlot) bool {
	return s.Date.Equal(o.Date)
}

// Before reports whether the slot's start instant is at or before ref.
// A slot that has already begun cannot be booked or cancelled.
func (s TimeSlot) Before(ref time.Time) bool {
	return !s.StartAt().After(ref)
}

// DateString renders the slot's date in wire format.
func (s TimeSlot) DateString() string {
	return s.Date.Format(DateLayout)
}

func (s TimeSlot) String() string {
	return fmt.Sprintf("%s %02d:00", s.DateString(), s.Hour)
}
